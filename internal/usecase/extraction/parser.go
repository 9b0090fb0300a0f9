package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/johnquangdev/cyberon-reporter/internal/domain/entities"
)

// flexNumber accepts a JSON number, a numeric string or null
type flexNumber struct {
	value float64
	set   bool
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("cyberon value %q is not a number", s)
		}
		n.value, n.set = v, true
		return nil
	}

	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("cyberon value %s is not a number", b)
	}
	n.value, n.set = v, true
	return nil
}

type cyberonsReply struct {
	Base        flexNumber `json:"base"`
	Activity    flexNumber `json:"activity"`
	Achievement flexNumber `json:"achievement"`
	Total       flexNumber `json:"total"`
}

type attendeeReply struct {
	Name       string         `json:"name"`
	Was        *bool          `json:"was"`
	WasPresent *bool          `json:"was_present"`
	Cyberons   *cyberonsReply `json:"cyberons"`
}

type recordReply struct {
	Group     *string          `json:"group"`
	Date      *string          `json:"date"`
	Attendees []*attendeeReply `json:"attendees"`
}

// ParseRecord parses a model reply into an attendance record. The reply must
// be a single JSON object, optionally wrapped in a Markdown code fence.
func ParseRecord(reply string) (*entities.AttendanceRecord, error) {
	content := extractJSON(reply)
	if content == "" {
		return nil, fmt.Errorf("empty reply")
	}
	if !strings.HasPrefix(content, "{") {
		return nil, fmt.Errorf("reply is not a JSON object")
	}

	var parsed recordReply
	dec := json.NewDecoder(strings.NewReader(content))
	if err := dec.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	record := entities.NewAttendanceRecord()
	if v := clean(parsed.Group); v != "" {
		record.Group = v
	}
	if v := clean(parsed.Date); v != "" {
		record.Date = v
	}

	for i, a := range parsed.Attendees {
		if a == nil {
			return nil, fmt.Errorf("attendee %d is null", i)
		}
		record.Attendees = append(record.Attendees, a.toEntry())
	}

	return record, nil
}

func (a *attendeeReply) toEntry() entities.AttendeeEntry {
	entry := entities.AttendeeEntry{Name: strings.TrimSpace(a.Name)}

	switch {
	case a.Was != nil:
		entry.WasPresent = *a.Was
	case a.WasPresent != nil:
		entry.WasPresent = *a.WasPresent
	}

	if a.Cyberons != nil {
		entry.Cyberons = entities.Cyberons{
			Base:        a.Cyberons.Base.value,
			Activity:    a.Cyberons.Activity.value,
			Achievement: a.Cyberons.Achievement.value,
			Total:       a.Cyberons.Total.value,
		}
	}
	return entry
}

func clean(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// extractJSON strips a Markdown code fence and any prose around the object.
// Models often wrap JSON replies in ```json blocks.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Check if wrapped in markdown code block
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}
	content = strings.TrimSpace(content)

	if !strings.HasPrefix(content, "{") && !strings.HasPrefix(content, "[") {
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start != -1 && end > start {
			content = content[start : end+1]
		}
	}

	return content
}
