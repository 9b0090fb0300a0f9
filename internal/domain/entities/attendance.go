package entities

// UnknownValue is substituted for a group or date the speaker did not mention.
const UnknownValue = "неизвестно"

// Cyberons is the reward point breakdown for one attendee.
// Total is reported by the extractor and is not guaranteed to equal the sum
// of the other three.
type Cyberons struct {
	Base        float64 `json:"base"`
	Activity    float64 `json:"activity"`
	Achievement float64 `json:"achievement"`
	Total       float64 `json:"total"`
}

// Sum returns base + activity + achievement.
func (c Cyberons) Sum() float64 {
	return c.Base + c.Activity + c.Achievement
}

// AttendeeEntry is one person mentioned in the attendance report
type AttendeeEntry struct {
	Name       string   `json:"name"`
	WasPresent bool     `json:"was_present"`
	Cyberons   Cyberons `json:"cyberons"`
}

// AttendanceRecord is the structured extraction of a spoken attendance report.
// Attendees keep the order in which they were dictated.
type AttendanceRecord struct {
	Group     string          `json:"group"`
	Date      string          `json:"date"`
	Attendees []AttendeeEntry `json:"attendees"`
}

// NewAttendanceRecord creates a record with sentinel group and date
func NewAttendanceRecord() *AttendanceRecord {
	return &AttendanceRecord{
		Group:     UnknownValue,
		Date:      UnknownValue,
		Attendees: make([]AttendeeEntry, 0),
	}
}

// PresentCount returns how many attendees were marked present
func (r *AttendanceRecord) PresentCount() int {
	n := 0
	for _, a := range r.Attendees {
		if a.WasPresent {
			n++
		}
	}
	return n
}

// RecomputeTotals overwrites every attendee's total with the sum of its parts.
func (r *AttendanceRecord) RecomputeTotals() {
	for i := range r.Attendees {
		r.Attendees[i].Cyberons.Total = r.Attendees[i].Cyberons.Sum()
	}
}
