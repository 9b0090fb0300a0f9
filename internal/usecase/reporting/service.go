package reporting

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/cyberon-reporter/internal/domain/entities"
	"github.com/johnquangdev/cyberon-reporter/internal/domain/repositories"
	"github.com/johnquangdev/cyberon-reporter/pkg/jobcontext"
)

var (
	// ErrHistoryDisabled is returned by history lookups when no database is configured
	ErrHistoryDisabled = errors.New("run history is disabled")
	// ErrRunNotFound is returned when a run does not exist or belongs to someone else
	ErrRunNotFound = errors.New("report run not found")
)

// Runner runs the report pipeline for one voice note
type Runner interface {
	Run(ctx context.Context, clip entities.AudioClip) entities.Outcome
}

// Archiver stores rendered reports and returns download links
type Archiver interface {
	Archive(ctx context.Context, key string, artifact *entities.ReportArtifact) error
	DownloadURL(ctx context.Context, key string) (string, error)
}

// KeyFunc builds the archive object key of a run
type KeyFunc func(userID int64, runID uuid.UUID, filename string, at time.Time) string

// Result is what transports get back for one report request
type Result struct {
	RunID       uuid.UUID
	Outcome     entities.Outcome
	ArchiveKey  string
	DownloadURL string
}

// Service runs the pipeline on behalf of a user and records what happened.
// History and archive are optional; their failures never change the outcome.
type Service struct {
	pipeline Runner
	runs     repositories.ReportRunRepository
	archive  Archiver
	keyFunc  KeyFunc
	logger   *zap.Logger
}

// NewService creates a reporting service. runs and archive may be nil.
func NewService(pipeline Runner, runs repositories.ReportRunRepository, archive Archiver, keyFunc KeyFunc, logger *zap.Logger) *Service {
	return &Service{
		pipeline: pipeline,
		runs:     runs,
		archive:  archive,
		keyFunc:  keyFunc,
		logger:   logger,
	}
}

// CreateReport runs the pipeline for clip
func (s *Service) CreateReport(ctx context.Context, userID int64, source entities.RunSource, clip entities.AudioClip) *Result {
	run := entities.NewReportRun(userID, source)
	ctx = jobcontext.RunBegin(ctx, run.ID, string(source), userID)

	start := time.Now()
	outcome := s.pipeline.Run(ctx, clip)
	run.ApplyOutcome(outcome, time.Since(start))

	result := &Result{RunID: run.ID, Outcome: outcome}

	if success, ok := outcome.(entities.Success); ok && s.archive != nil && s.keyFunc != nil {
		s.archiveReport(ctx, run, success, result)
	}

	if s.runs != nil {
		// Recording must survive a caller that already went away.
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.runs.Create(saveCtx, run); err != nil && s.logger != nil {
			s.logger.Error("❌ Failed to record report run",
				zap.String("run_id", run.ID.String()),
				zap.Error(err),
			)
		}
	}

	return result
}

func (s *Service) archiveReport(ctx context.Context, run *entities.ReportRun, success entities.Success, result *Result) {
	key := s.keyFunc(run.UserID, run.ID, success.Artifact.Filename, run.CreatedAt)

	if err := s.archive.Archive(ctx, key, success.Artifact); err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Failed to archive report",
				zap.String("run_id", run.ID.String()),
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return
	}
	run.ArchiveKey = key
	result.ArchiveKey = key

	link, err := s.archive.DownloadURL(ctx, key)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Failed to sign report link",
				zap.String("run_id", run.ID.String()),
				zap.Error(err),
			)
		}
		return
	}
	result.DownloadURL = link
}

// ListRuns returns the recent runs of a user, newest first
func (s *Service) ListRuns(ctx context.Context, userID int64, limit int) ([]*entities.ReportRun, error) {
	if s.runs == nil {
		return nil, ErrHistoryDisabled
	}
	return s.runs.ListByUser(ctx, userID, limit)
}

// GetRun returns one run of the user
func (s *Service) GetRun(ctx context.Context, userID int64, id uuid.UUID) (*entities.ReportRun, error) {
	if s.runs == nil {
		return nil, ErrHistoryDisabled
	}
	run, err := s.runs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil || run.UserID != userID {
		return nil, ErrRunNotFound
	}
	return run, nil
}
