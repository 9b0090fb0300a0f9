package reporting

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/cyberon-reporter/internal/domain/entities"
	"github.com/johnquangdev/cyberon-reporter/pkg/jobcontext"
)

type fakeRunner struct {
	outcome entities.Outcome
	runID   uuid.UUID
	userID  int64
}

func (f *fakeRunner) Run(ctx context.Context, clip entities.AudioClip) entities.Outcome {
	f.runID, _ = jobcontext.GetRunID(ctx)
	f.userID = jobcontext.GetUserID(ctx)
	return f.outcome
}

type fakeRuns struct {
	created []*entities.ReportRun
	err     error
}

func (f *fakeRuns) Create(ctx context.Context, run *entities.ReportRun) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, run)
	return nil
}

func (f *fakeRuns) GetByID(ctx context.Context, id uuid.UUID) (*entities.ReportRun, error) {
	for _, r := range f.created {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRuns) ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.ReportRun, error) {
	var out []*entities.ReportRun
	for _, r := range f.created {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeArchive struct {
	keys      []string
	err       error
	signErr   error
	signedFor string
}

func (f *fakeArchive) Archive(ctx context.Context, key string, artifact *entities.ReportArtifact) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeArchive) DownloadURL(ctx context.Context, key string) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	f.signedFor = key
	return "https://files.example.com/" + key, nil
}

func testKey(userID int64, runID uuid.UUID, filename string, at time.Time) string {
	return fmt.Sprintf("reports/%d/%s/%s", userID, runID, filename)
}

func successOutcome() entities.Success {
	return entities.Success{
		Artifact: &entities.ReportArtifact{Filename: "отчет_A_01.01.2024.xlsx", Content: []byte("x")},
		Record: &entities.AttendanceRecord{Group: "A", Date: "01.01.2024", Attendees: []entities.AttendeeEntry{
			{Name: "Иван", WasPresent: true},
		}},
		Excerpt: "Группа А",
	}
}

func TestCreateReport_RecordsAndArchives(t *testing.T) {
	runner := &fakeRunner{outcome: successOutcome()}
	runs := &fakeRuns{}
	archive := &fakeArchive{}
	s := NewService(runner, runs, archive, testKey, nil)

	res := s.CreateReport(context.Background(), 42, entities.RunSourceHTTP, entities.AudioClip("ogg"))

	if res.Outcome.Kind() != entities.OutcomeSuccess {
		t.Fatalf("unexpected outcome %s", res.Outcome.Kind())
	}
	if runner.runID != res.RunID || runner.userID != 42 {
		t.Fatalf("pipeline did not see run metadata: %s/%d", runner.runID, runner.userID)
	}
	wantKey := fmt.Sprintf("reports/42/%s/отчет_A_01.01.2024.xlsx", res.RunID)
	if res.ArchiveKey != wantKey || res.DownloadURL != "https://files.example.com/"+wantKey {
		t.Fatalf("unexpected archive result %+v", res)
	}

	if len(runs.created) != 1 {
		t.Fatalf("expected one stored run, got %d", len(runs.created))
	}
	stored := runs.created[0]
	if stored.ID != res.RunID || stored.ArchiveKey != wantKey || stored.GroupName != "A" || stored.Source != entities.RunSourceHTTP {
		t.Fatalf("unexpected stored run %+v", stored)
	}
}

func TestCreateReport_FailureIsRecordedNotArchived(t *testing.T) {
	runner := &fakeRunner{outcome: entities.ExtractionFailed{Detail: "bad reply"}}
	runs := &fakeRuns{}
	archive := &fakeArchive{}
	s := NewService(runner, runs, archive, testKey, nil)

	res := s.CreateReport(context.Background(), 1, entities.RunSourceTelegram, entities.AudioClip("ogg"))

	if res.Outcome.Kind() != entities.OutcomeExtractionFailed {
		t.Fatalf("unexpected outcome %s", res.Outcome.Kind())
	}
	if len(archive.keys) != 0 {
		t.Fatal("failed runs must not be archived")
	}
	if len(runs.created) != 1 || runs.created[0].Outcome != entities.OutcomeExtractionFailed {
		t.Fatalf("expected failed run to be recorded, got %+v", runs.created)
	}
}

func TestCreateReport_SideEffectFailuresKeepOutcome(t *testing.T) {
	runner := &fakeRunner{outcome: successOutcome()}
	s := NewService(runner, &fakeRuns{err: errors.New("db down")}, &fakeArchive{err: errors.New("s3 down")}, testKey, nil)

	res := s.CreateReport(context.Background(), 1, entities.RunSourceHTTP, entities.AudioClip("ogg"))
	if res.Outcome.Kind() != entities.OutcomeSuccess {
		t.Fatalf("unexpected outcome %s", res.Outcome.Kind())
	}
	if res.ArchiveKey != "" || res.DownloadURL != "" {
		t.Fatalf("no archive data expected, got %+v", res)
	}
}

func TestCreateReport_SignFailureKeepsKey(t *testing.T) {
	runner := &fakeRunner{outcome: successOutcome()}
	s := NewService(runner, nil, &fakeArchive{signErr: errors.New("no creds")}, testKey, nil)

	res := s.CreateReport(context.Background(), 1, entities.RunSourceHTTP, entities.AudioClip("ogg"))
	if res.ArchiveKey == "" || res.DownloadURL != "" {
		t.Fatalf("expected key without link, got %+v", res)
	}
}

func TestListRuns(t *testing.T) {
	s := NewService(&fakeRunner{}, nil, nil, nil, nil)
	if _, err := s.ListRuns(context.Background(), 1, 10); !errors.Is(err, ErrHistoryDisabled) {
		t.Fatalf("expected ErrHistoryDisabled, got %v", err)
	}

	runs := &fakeRuns{}
	s = NewService(&fakeRunner{outcome: successOutcome()}, runs, nil, nil, nil)
	s.CreateReport(context.Background(), 5, entities.RunSourceHTTP, entities.AudioClip("ogg"))
	s.CreateReport(context.Background(), 6, entities.RunSourceHTTP, entities.AudioClip("ogg"))

	got, err := s.ListRuns(context.Background(), 5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].UserID != 5 {
		t.Fatalf("unexpected runs %+v", got)
	}
}

func TestGetRun(t *testing.T) {
	runs := &fakeRuns{}
	s := NewService(&fakeRunner{outcome: successOutcome()}, runs, nil, nil, nil)
	res := s.CreateReport(context.Background(), 5, entities.RunSourceHTTP, entities.AudioClip("ogg"))

	run, err := s.GetRun(context.Background(), 5, res.RunID)
	if err != nil || run.ID != res.RunID {
		t.Fatalf("unexpected run %+v / %v", run, err)
	}
	if _, err := s.GetRun(context.Background(), 6, res.RunID); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("other users must not see the run, got %v", err)
	}
	if _, err := s.GetRun(context.Background(), 5, uuid.New()); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}
