package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/cyberon-reporter/internal/domain/entities"
	ucerrors "github.com/johnquangdev/cyberon-reporter/internal/usecase/errors"
	"github.com/johnquangdev/cyberon-reporter/pkg/jobcontext"
)

// Stage names used in logs and run contexts
const (
	StageTranscribe = "transcribe"
	StageExtract    = "extract"
	StageRender     = "render"
)

// DefaultExcerptLength is how many runes of the transcript a success carries
const DefaultExcerptLength = 150

// Transcriber recognizes speech in a voice note. It never fails; problems are
// reported through the transcript status.
type Transcriber interface {
	Transcribe(ctx context.Context, clip entities.AudioClip) entities.Transcript
}

// Extractor turns a transcript into an attendance record
type Extractor interface {
	Extract(ctx context.Context, transcript string) (*entities.AttendanceRecord, error)
}

// Renderer turns an attendance record into a spreadsheet
type Renderer interface {
	Render(record *entities.AttendanceRecord) (*entities.ReportArtifact, error)
}

// Options tunes an Orchestrator
type Options struct {
	TranscribeTimeout time.Duration
	ExtractTimeout    time.Duration
	ExcerptLength     int
}

// Orchestrator runs transcription, extraction and rendering for one voice
// note and reports how far it got. It holds no per-run state and is safe for
// concurrent use.
type Orchestrator struct {
	transcriber Transcriber
	extractor   Extractor
	renderer    Renderer
	opts        Options
	logger      *zap.Logger
}

// NewOrchestrator wires the three stages together
func NewOrchestrator(t Transcriber, e Extractor, r Renderer, opts Options, logger *zap.Logger) *Orchestrator {
	if opts.ExcerptLength <= 0 {
		opts.ExcerptLength = DefaultExcerptLength
	}
	return &Orchestrator{
		transcriber: t,
		extractor:   e,
		renderer:    r,
		opts:        opts,
		logger:      logger,
	}
}

// Run processes clip and returns exactly one outcome. Later stages run only
// when the previous one succeeded.
func (o *Orchestrator) Run(ctx context.Context, clip entities.AudioClip) entities.Outcome {
	start := time.Now()
	runID, _ := jobcontext.GetRunID(ctx)

	outcome := o.run(ctx, clip)

	if o.logger != nil {
		fields := []zap.Field{
			zap.String("run_id", runID.String()),
			zap.String("outcome", string(outcome.Kind())),
			zap.Int("clip_bytes", len(clip)),
			zap.Duration("elapsed", time.Since(start)),
		}
		if outcome.Kind() == entities.OutcomeSuccess {
			o.logger.Info("✅ Pipeline run finished", fields...)
		} else {
			o.logger.Warn("⚠️ Pipeline run failed", fields...)
		}
	}
	return outcome
}

func (o *Orchestrator) run(ctx context.Context, clip entities.AudioClip) entities.Outcome {
	transcript, err := o.transcribe(ctx, clip)
	if err != nil {
		return entities.NoSpeechRecognized{Status: entities.TranscriptStatusBackendUnavailable, Cause: err}
	}
	if transcript.Empty() {
		cause := transcript.Cause
		if cause == nil {
			cause = ucerrors.ErrNoSpeech
		}
		return entities.NoSpeechRecognized{Status: transcript.Status, Cause: cause}
	}

	record, err := o.extract(ctx, transcript.Text)
	if err != nil {
		return entities.ExtractionFailed{Detail: extractionDetail(err), Cause: err}
	}
	if len(record.Attendees) == 0 {
		return entities.ExtractionFailed{
			Detail: "no attendees found in the report",
			Cause:  fmt.Errorf("%w: no attendees", ucerrors.ErrExtraction),
		}
	}

	artifact, err := o.render(ctx, record)
	if err != nil {
		return entities.RenderFailed{Detail: err.Error(), Cause: err}
	}

	return entities.Success{
		Artifact: artifact,
		Record:   record,
		Excerpt:  transcript.Excerpt(o.opts.ExcerptLength),
	}
}

func (o *Orchestrator) transcribe(ctx context.Context, clip entities.AudioClip) (transcript entities.Transcript, err error) {
	stageCtx, cancel := jobcontext.StageBegin(ctx, StageTranscribe, o.opts.TranscribeTimeout)
	defer cancel()
	defer o.recoverStage(StageTranscribe, &err)

	transcript = o.transcriber.Transcribe(stageCtx, clip)
	if transcript.Empty() && errors.Is(stageCtx.Err(), context.DeadlineExceeded) {
		transcript.Status = entities.TranscriptStatusTimedOut
	}
	return transcript, nil
}

func (o *Orchestrator) extract(ctx context.Context, text string) (record *entities.AttendanceRecord, err error) {
	stageCtx, cancel := jobcontext.StageBegin(ctx, StageExtract, o.opts.ExtractTimeout)
	defer cancel()
	defer o.recoverStage(StageExtract, &err)

	record, err = o.extractor.Extract(stageCtx, text)
	if err == nil && record == nil {
		err = fmt.Errorf("%w: extractor returned no record", ucerrors.ErrExtraction)
	}
	return record, err
}

func (o *Orchestrator) render(ctx context.Context, record *entities.AttendanceRecord) (artifact *entities.ReportArtifact, err error) {
	_, cancel := jobcontext.StageBegin(ctx, StageRender, 0)
	defer cancel()
	defer o.recoverStage(StageRender, &err)

	artifact, err = o.renderer.Render(record)
	if err == nil && artifact == nil {
		err = fmt.Errorf("%w: renderer returned no artifact", ucerrors.ErrRender)
	}
	return artifact, err
}

// recoverStage turns a panic inside a stage into that stage's error
func (o *Orchestrator) recoverStage(stage string, err *error) {
	p := recover()
	if p == nil {
		return
	}
	*err = fmt.Errorf("panic in %s stage: %v", stage, p)
	if o.logger != nil {
		o.logger.Error("💥 Pipeline stage panicked",
			zap.String("stage", stage),
			zap.Any("panic", p),
			zap.ByteString("stack", debug.Stack()),
		)
	}
}

func extractionDetail(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "language model did not answer in time"
	case errors.Is(err, ucerrors.ErrUpstream):
		return "language model is unavailable"
	case errors.Is(err, ucerrors.ErrExtraction):
		return "language model reply is not a valid attendance record"
	default:
		return err.Error()
	}
}
