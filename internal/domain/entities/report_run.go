package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RunSource identifies the delivery channel that triggered a run
type RunSource string

const (
	RunSourceTelegram RunSource = "telegram"
	RunSourceHTTP     RunSource = "http"
)

// ReportRun is the stored history row for one pipeline run
type ReportRun struct {
	ID               uuid.UUID                             `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID           int64                                 `json:"user_id" gorm:"not null;index"`
	Source           RunSource                             `json:"source" gorm:"type:varchar(20);not null"`
	Outcome          OutcomeKind                           `json:"outcome" gorm:"type:varchar(50);not null;index"`
	TranscriptStatus TranscriptStatus                      `json:"transcript_status,omitempty" gorm:"type:varchar(50)"`
	GroupName        string                                `json:"group,omitempty" gorm:"column:group_name;type:varchar(255)"`
	SessionDate      string                                `json:"date,omitempty" gorm:"type:varchar(100)"`
	AttendeeCount    int                                   `json:"attendee_count" gorm:"default:0"`
	PresentCount     int                                   `json:"present_count" gorm:"default:0"`
	Excerpt          string                                `json:"excerpt,omitempty" gorm:"type:text"`
	Detail           string                                `json:"detail,omitempty" gorm:"type:text"`
	Filename         string                                `json:"filename,omitempty" gorm:"type:varchar(512)"`
	ArchiveKey       string                                `json:"archive_key,omitempty" gorm:"type:varchar(512)"`
	DurationMs       int64                                 `json:"duration_ms"`
	Record           *datatypes.JSONType[AttendanceRecord] `json:"record,omitempty" gorm:"type:jsonb"`
	CreatedAt        time.Time                             `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (ReportRun) TableName() string {
	return "report_runs"
}

// NewReportRun creates a history row for the given caller
func NewReportRun(userID int64, source RunSource) *ReportRun {
	return &ReportRun{
		ID:        uuid.New(),
		UserID:    userID,
		Source:    source,
		CreatedAt: time.Now(),
	}
}

// ApplyOutcome copies the interesting parts of a pipeline outcome into the row
func (r *ReportRun) ApplyOutcome(o Outcome, elapsed time.Duration) {
	r.Outcome = o.Kind()
	r.DurationMs = elapsed.Milliseconds()

	switch v := o.(type) {
	case Success:
		r.TranscriptStatus = TranscriptStatusRecognized
		r.Excerpt = v.Excerpt
		if v.Artifact != nil {
			r.Filename = v.Artifact.Filename
		}
		if v.Record != nil {
			r.GroupName = v.Record.Group
			r.SessionDate = v.Record.Date
			r.AttendeeCount = len(v.Record.Attendees)
			r.PresentCount = v.Record.PresentCount()
			rec := datatypes.NewJSONType(*v.Record)
			r.Record = &rec
		}
	case NoSpeechRecognized:
		r.TranscriptStatus = v.Status
		if v.Cause != nil {
			r.Detail = v.Cause.Error()
		}
	case ExtractionFailed:
		r.TranscriptStatus = TranscriptStatusRecognized
		r.Detail = v.Detail
	case RenderFailed:
		r.TranscriptStatus = TranscriptStatusRecognized
		r.Detail = v.Detail
	}
}
