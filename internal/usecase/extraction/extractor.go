package extraction

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/cyberon-reporter/internal/domain/entities"
	ucerrors "github.com/johnquangdev/cyberon-reporter/internal/usecase/errors"
	"github.com/johnquangdev/cyberon-reporter/pkg/jobcontext"
)

// ChatCompleter sends a system prompt and one user message to a language model
type ChatCompleter interface {
	Complete(ctx context.Context, systemPrompt, userText string) (string, error)
}

// Service extracts attendance records from transcripts
type Service struct {
	chat           ChatCompleter
	systemPrompt   string
	recomputeTotal bool
	logger         *zap.Logger
}

// NewService creates an extraction service. systemPrompt is fixed for the
// lifetime of the service.
func NewService(chat ChatCompleter, systemPrompt string, recomputeTotal bool, logger *zap.Logger) *Service {
	return &Service{
		chat:           chat,
		systemPrompt:   systemPrompt,
		recomputeTotal: recomputeTotal,
		logger:         logger,
	}
}

// Extract asks the model for a structured record of transcript.
// Errors wrap ErrUpstream when the model could not be reached and
// ErrExtraction when its reply is unusable.
func (s *Service) Extract(ctx context.Context, transcript string) (*entities.AttendanceRecord, error) {
	start := time.Now()
	runID, _ := jobcontext.GetRunID(ctx)

	reply, err := s.chat.Complete(ctx, s.systemPrompt, transcript)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Language model request failed",
				zap.String("run_id", runID.String()),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("%w: %w", ucerrors.ErrUpstream, err)
	}

	record, err := ParseRecord(reply)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Model reply is not a usable attendance record",
				zap.String("run_id", runID.String()),
				zap.String("reply", truncate(reply, 500)),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("%w: %w", ucerrors.ErrExtraction, err)
	}

	if s.recomputeTotal {
		record.RecomputeTotals()
	}

	if s.logger != nil {
		s.logger.Info("✅ Attendance extracted",
			zap.String("run_id", runID.String()),
			zap.String("group", record.Group),
			zap.String("date", record.Date),
			zap.Int("attendees", len(record.Attendees)),
			zap.Int("present", record.PresentCount()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return record, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
