package transcription

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/cyberon-reporter/internal/domain/entities"
	"github.com/johnquangdev/cyberon-reporter/internal/infrastructure/media"
	"github.com/johnquangdev/cyberon-reporter/pkg/jobcontext"
)

// Recognizer turns 16 kHz mono WAV audio into text
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, wav []byte) (string, error)
}

// Decoder re-encodes a voice note into WAV
type Decoder interface {
	ToWAV(ctx context.Context, clip []byte) ([]byte, error)
}

// Prober validates the container of a voice note
type Prober func(clip []byte) (*media.OggInfo, error)

// Service transcribes voice notes. Transcribe never fails: every problem is
// reported through the transcript status.
type Service struct {
	probe      Prober
	decoder    Decoder
	recognizer Recognizer
	language   string
	logger     *zap.Logger
}

// NewService creates a transcription service
func NewService(decoder Decoder, recognizer Recognizer, language string, logger *zap.Logger) *Service {
	return &Service{
		probe:      media.ProbeOgg,
		decoder:    decoder,
		recognizer: recognizer,
		language:   language,
		logger:     logger,
	}
}

// Transcribe recognizes the speech in clip
func (s *Service) Transcribe(ctx context.Context, clip entities.AudioClip) entities.Transcript {
	start := time.Now()
	runID, _ := jobcontext.GetRunID(ctx)

	info, err := s.probe(clip)
	if err != nil {
		s.warn("⚠️ Voice note rejected", runID.String(), err)
		return entities.NewFailedTranscript(entities.TranscriptStatusDecodeFailed, err)
	}

	wav, err := s.decoder.ToWAV(ctx, clip)
	if err != nil {
		if ctx.Err() != nil {
			s.warn("⏱️ Transcription timed out while decoding", runID.String(), err)
			return entities.NewFailedTranscript(entities.TranscriptStatusTimedOut, err)
		}
		s.warn("⚠️ Voice note could not be decoded", runID.String(), err)
		return entities.NewFailedTranscript(entities.TranscriptStatusDecodeFailed, err)
	}

	text, err := s.recognizer.Recognize(ctx, wav)
	if err != nil {
		if jobcontext.IsTimeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			s.warn("⏱️ Speech recognition timed out", runID.String(), err)
			return entities.NewFailedTranscript(entities.TranscriptStatusTimedOut, err)
		}
		s.warn("❌ Speech recognition backend failed", runID.String(), err)
		return entities.NewFailedTranscript(entities.TranscriptStatusBackendUnavailable, err)
	}

	transcript := entities.NewRecognizedTranscript(text, s.language)

	if s.logger != nil {
		s.logger.Info("🎙️ Voice note transcribed",
			zap.String("run_id", runID.String()),
			zap.String("recognizer", s.recognizer.Name()),
			zap.String("status", string(transcript.Status)),
			zap.Duration("audio_duration", info.Duration),
			zap.Int("text_length", len([]rune(transcript.Text))),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return transcript
}

func (s *Service) warn(msg, runID string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, zap.String("run_id", runID), zap.Error(err))
	}
}
