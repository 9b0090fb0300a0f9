package errors

// ErrorCode identifies an application error category in API responses.
type ErrorCode int32

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_PERMISSION_DENIED ErrorCode = 1003
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1004
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1005
	ErrorCode_RATE_LIMITED      ErrorCode = 1006

	// Authentication
	ErrorCode_AUTH_INVALID_TOKEN ErrorCode = 2000
	ErrorCode_AUTH_TOKEN_EXPIRED ErrorCode = 2001

	// Audio
	ErrorCode_AUDIO_MISSING   ErrorCode = 3000
	ErrorCode_AUDIO_TOO_LARGE ErrorCode = 3001
	ErrorCode_AUDIO_NO_SPEECH ErrorCode = 3002

	// AI
	ErrorCode_AI_EXTRACTION_FAILED   ErrorCode = 4000
	ErrorCode_AI_SERVICE_UNAVAILABLE ErrorCode = 4001

	// Report
	ErrorCode_REPORT_GENERATION_FAILED ErrorCode = 5000

	// Database
	ErrorCode_DB_QUERY_FAILED ErrorCode = 6002
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                  "OK",
	ErrorCode_INTERNAL:                 "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:         "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                "NOT_FOUND",
	ErrorCode_PERMISSION_DENIED:        "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:          "UNAUTHENTICATED",
	ErrorCode_INVALID_PAYLOAD:          "INVALID_PAYLOAD",
	ErrorCode_RATE_LIMITED:             "RATE_LIMITED",
	ErrorCode_AUTH_INVALID_TOKEN:       "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:       "AUTH_TOKEN_EXPIRED",
	ErrorCode_AUDIO_MISSING:            "AUDIO_MISSING",
	ErrorCode_AUDIO_TOO_LARGE:          "AUDIO_TOO_LARGE",
	ErrorCode_AUDIO_NO_SPEECH:          "AUDIO_NO_SPEECH",
	ErrorCode_AI_EXTRACTION_FAILED:     "AI_EXTRACTION_FAILED",
	ErrorCode_AI_SERVICE_UNAVAILABLE:   "AI_SERVICE_UNAVAILABLE",
	ErrorCode_REPORT_GENERATION_FAILED: "REPORT_GENERATION_FAILED",
	ErrorCode_DB_QUERY_FAILED:          "DB_QUERY_FAILED",
}

// String returns the symbolic name of the code.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// MarshalText renders the code by name so JSON bodies carry "AUDIO_NO_SPEECH"
// rather than a bare number.
func (c ErrorCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
