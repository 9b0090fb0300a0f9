package presenter

import (
	"testing"

	"github.com/johnquangdev/cyberon-reporter/internal/domain/entities"
)

func TestToRunResponses(t *testing.T) {
	run := entities.NewReportRun(3, entities.RunSourceTelegram)
	run.Outcome = entities.OutcomeSuccess
	run.GroupName = "Б-12"
	run.ArchiveKey = "reports/3/x.xlsx"

	got := ToRunResponses([]*entities.ReportRun{run, nil})
	if len(got) != 1 {
		t.Fatalf("expected nil entries to be skipped, got %d", len(got))
	}
	r := got[0]
	if r.ID != run.ID.String() || r.Source != "telegram" || r.Outcome != "success" || r.Group != "Б-12" || !r.Archived {
		t.Fatalf("unexpected response %+v", r)
	}
}
