package errors

import "errors"

// Pipeline stage errors
var (
	// ErrUpstream means the language model service could not be reached,
	// rejected the credentials or ran out of quota.
	ErrUpstream = errors.New("language model upstream failed")
	// ErrExtraction means the model replied but the reply is not a usable
	// attendance record.
	ErrExtraction = errors.New("attendance extraction failed")
	// ErrRender means the spreadsheet could not be serialized.
	ErrRender = errors.New("report rendering failed")
	// ErrNoSpeech means no text was recognized in the voice message.
	ErrNoSpeech = errors.New("no speech recognized")
)

// Access errors
var (
	ErrForbidden   = errors.New("forbidden access")
	ErrRateLimited = errors.New("rate limit exceeded")
)
