package ai

import (
	"bytes"
	"context"
	"fmt"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"go.uber.org/zap"
)

// AssemblyAIRecognizer recognizes speech with the official AssemblyAI SDK.
// TranscribeFromReader uploads the clip and polls until the transcript settles.
type AssemblyAIRecognizer struct {
	client   *aai.Client
	language string
	logger   *zap.Logger
}

// NewAssemblyAIRecognizer creates an AssemblyAI recognizer
func NewAssemblyAIRecognizer(apiKey, language string, logger *zap.Logger) *AssemblyAIRecognizer {
	return &AssemblyAIRecognizer{
		client:   aai.NewClient(apiKey),
		language: language,
		logger:   logger,
	}
}

// Name identifies the backend in logs and run history
func (a *AssemblyAIRecognizer) Name() string {
	return "assemblyai"
}

// Recognize returns the transcript text for a WAV clip
func (a *AssemblyAIRecognizer) Recognize(ctx context.Context, wav []byte) (string, error) {
	params := &aai.TranscriptOptionalParams{
		LanguageCode: aai.TranscriptLanguageCode(a.language),
	}

	transcript, err := a.client.Transcripts.TranscribeFromReader(ctx, bytes.NewReader(wav), params)
	if err != nil {
		return "", fmt.Errorf("assemblyai transcription failed: %w", err)
	}

	text, err := transcriptText(transcript)
	if err != nil {
		return "", err
	}

	if a.logger != nil {
		a.logger.Debug("🎙️ AssemblyAI transcription done",
			zap.String("transcript_id", deref(transcript.ID)),
			zap.Int("text_length", len(text)),
		)
	}
	return text, nil
}

// transcriptText extracts the text of a settled transcript
func transcriptText(t aai.Transcript) (string, error) {
	switch t.Status {
	case aai.TranscriptStatusError:
		return "", fmt.Errorf("assemblyai transcript %s failed: %s", deref(t.ID), deref(t.Error))
	case aai.TranscriptStatusCompleted:
		return deref(t.Text), nil
	default:
		return "", fmt.Errorf("assemblyai transcript %s not completed: %s", deref(t.ID), t.Status)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
