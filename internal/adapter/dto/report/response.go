package report

import "time"

// RunResponse represents one report run in history listings
type RunResponse struct {
	ID               string    `json:"id"`
	Source           string    `json:"source"`
	Outcome          string    `json:"outcome"`
	TranscriptStatus string    `json:"transcript_status,omitempty"`
	Group            string    `json:"group,omitempty"`
	Date             string    `json:"date,omitempty"`
	AttendeeCount    int       `json:"attendee_count"`
	PresentCount     int       `json:"present_count"`
	Excerpt          string    `json:"excerpt,omitempty"`
	Detail           string    `json:"detail,omitempty"`
	Filename         string    `json:"filename,omitempty"`
	Archived         bool      `json:"archived"`
	DurationMs       int64     `json:"duration_ms"`
	CreatedAt        time.Time `json:"created_at"`
}
