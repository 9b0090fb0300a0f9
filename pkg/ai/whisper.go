package ai

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// WhisperConfig configures an OpenAI-compatible transcription endpoint
type WhisperConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
}

// WhisperRecognizer recognizes speech through the /audio/transcriptions endpoint
type WhisperRecognizer struct {
	client   *openai.Client
	model    string
	language string
	logger   *zap.Logger
}

// NewWhisperRecognizer creates a Whisper recognizer
func NewWhisperRecognizer(cfg WhisperConfig, logger *zap.Logger) *WhisperRecognizer {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: 120 * time.Second}

	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}

	return &WhisperRecognizer{
		client:   openai.NewClientWithConfig(oc),
		model:    model,
		language: cfg.Language,
		logger:   logger,
	}
}

// Name identifies the backend in logs and run history
func (w *WhisperRecognizer) Name() string {
	return "whisper"
}

// Recognize returns the best hypothesis for a 16 kHz mono WAV clip
func (w *WhisperRecognizer) Recognize(ctx context.Context, wav []byte) (string, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: "voice.wav",
		Reader:   bytes.NewReader(wav),
		Language: w.language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription failed: %w", err)
	}

	if w.logger != nil {
		w.logger.Debug("🎙️ Whisper transcription done",
			zap.String("model", w.model),
			zap.Int("text_length", len(resp.Text)),
		)
	}
	return resp.Text, nil
}
