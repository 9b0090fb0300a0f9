package presenter

import (
	reportDTO "github.com/johnquangdev/cyberon-reporter/internal/adapter/dto/report"
	"github.com/johnquangdev/cyberon-reporter/internal/domain/entities"
)

// ToRunResponse converts a ReportRun entity to RunResponse DTO
func ToRunResponse(r *entities.ReportRun) *reportDTO.RunResponse {
	if r == nil {
		return nil
	}

	return &reportDTO.RunResponse{
		ID:               r.ID.String(),
		Source:           string(r.Source),
		Outcome:          string(r.Outcome),
		TranscriptStatus: string(r.TranscriptStatus),
		Group:            r.GroupName,
		Date:             r.SessionDate,
		AttendeeCount:    r.AttendeeCount,
		PresentCount:     r.PresentCount,
		Excerpt:          r.Excerpt,
		Detail:           r.Detail,
		Filename:         r.Filename,
		Archived:         r.ArchiveKey != "",
		DurationMs:       r.DurationMs,
		CreatedAt:        r.CreatedAt,
	}
}

// ToRunResponses converts a list of runs, skipping nil entries
func ToRunResponses(runs []*entities.ReportRun) []*reportDTO.RunResponse {
	out := make([]*reportDTO.RunResponse, 0, len(runs))
	for _, r := range runs {
		if resp := ToRunResponse(r); resp != nil {
			out = append(out, resp)
		}
	}
	return out
}
