package entities

import "strings"

// TranscriptStatus tells why a transcript does or does not carry text
type TranscriptStatus string

const (
	TranscriptStatusRecognized         TranscriptStatus = "recognized"          // Speech recognized, Text is non-empty
	TranscriptStatusNoSpeech           TranscriptStatus = "no_speech"           // Backend answered with nothing
	TranscriptStatusDecodeFailed       TranscriptStatus = "decode_failed"       // Clip is not a decodable Ogg/Opus voice note
	TranscriptStatusBackendUnavailable TranscriptStatus = "backend_unavailable" // Recognition backend errored
	TranscriptStatusTimedOut           TranscriptStatus = "timed_out"           // Deadline hit while transcribing
)

// Transcript is the outcome of speech recognition for one audio clip.
// Callers that only care about text can check Empty; Status and Cause are
// kept for diagnostics.
type Transcript struct {
	Text     string           `json:"text"`
	Language string           `json:"language,omitempty"`
	Status   TranscriptStatus `json:"status"`
	Cause    error            `json:"-"`
}

// NewRecognizedTranscript builds a transcript from recognized text. Blank text
// is reported as no_speech.
func NewRecognizedTranscript(text, language string) Transcript {
	if isBlank(text) {
		return Transcript{Language: language, Status: TranscriptStatusNoSpeech}
	}
	return Transcript{Text: text, Language: language, Status: TranscriptStatusRecognized}
}

// NewFailedTranscript builds an empty transcript carrying the failure cause
func NewFailedTranscript(status TranscriptStatus, cause error) Transcript {
	return Transcript{Status: status, Cause: cause}
}

// Empty reports whether no usable text was recognized
func (t Transcript) Empty() bool {
	return t.Status != TranscriptStatusRecognized || isBlank(t.Text)
}

// Excerpt returns at most n runes of the transcript text
func (t Transcript) Excerpt(n int) string {
	runes := []rune(t.Text)
	if len(runes) <= n {
		return t.Text
	}
	return string(runes[:n])
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
