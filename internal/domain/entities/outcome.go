package entities

// OutcomeKind names the terminal state of one pipeline run
type OutcomeKind string

const (
	OutcomeSuccess            OutcomeKind = "success"
	OutcomeNoSpeechRecognized OutcomeKind = "no_speech_recognized"
	OutcomeExtractionFailed   OutcomeKind = "extraction_failed"
	OutcomeRenderFailed       OutcomeKind = "render_failed"
)

// Outcome is the result of one pipeline run. The set of implementations is
// closed: Success, NoSpeechRecognized, ExtractionFailed and RenderFailed.
type Outcome interface {
	Kind() OutcomeKind
	outcome()
}

// Success carries the rendered artifact and a short excerpt of what was heard
type Success struct {
	Artifact *ReportArtifact
	Record   *AttendanceRecord
	Excerpt  string
}

// NoSpeechRecognized means transcription produced no usable text
type NoSpeechRecognized struct {
	Status TranscriptStatus
	Cause  error
}

// ExtractionFailed means the language model could not be reached or its reply
// was not a usable attendance record
type ExtractionFailed struct {
	Detail string
	Cause  error
}

// RenderFailed means the spreadsheet could not be built from a valid record
type RenderFailed struct {
	Detail string
	Cause  error
}

func (Success) Kind() OutcomeKind            { return OutcomeSuccess }
func (NoSpeechRecognized) Kind() OutcomeKind { return OutcomeNoSpeechRecognized }
func (ExtractionFailed) Kind() OutcomeKind   { return OutcomeExtractionFailed }
func (RenderFailed) Kind() OutcomeKind       { return OutcomeRenderFailed }

func (Success) outcome()            {}
func (NoSpeechRecognized) outcome() {}
func (ExtractionFailed) outcome()   {}
func (RenderFailed) outcome()       {}
