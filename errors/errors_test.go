package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestAppErrorUnwrap(t *testing.T) {
	cause := stderrors.New("reply was not json")
	err := error(ErrAIExtractionFailed(cause))

	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause to be reachable through errors.Is")
	}

	var appErr AppError
	if !stderrors.As(err, &appErr) {
		t.Fatal("expected errors.As to find AppError")
	}
	if appErr.HTTPCode != http.StatusUnprocessableEntity || appErr.Code != ErrorCode_AI_EXTRACTION_FAILED {
		t.Fatalf("unexpected error %+v", appErr)
	}
	if !strings.Contains(appErr.Error(), "AI_EXTRACTION_FAILED") {
		t.Fatalf("expected code name in message, got %q", appErr.Error())
	}
}

func TestWithDetailDoesNotMutate(t *testing.T) {
	base := ErrInvalidArgument("bad")
	withA := base.WithDetail("a", "1")
	withB := withA.WithDetail("b", "2")

	if len(base.Details) != 0 {
		t.Fatal("base must stay untouched")
	}
	if len(withA.Details) != 1 || len(withB.Details) != 2 {
		t.Fatalf("unexpected details %v / %v", withA.Details, withB.Details)
	}
}

func TestRateLimitedDetails(t *testing.T) {
	err := ErrRateLimited(10, time.Hour)
	if err.HTTPCode != http.StatusTooManyRequests {
		t.Fatalf("unexpected status %d", err.HTTPCode)
	}
	if err.Details["limit"] != "10" || err.Details["reset_in"] != "1h0m0s" {
		t.Fatalf("unexpected details %v", err.Details)
	}
}

func TestErrorCodeJSON(t *testing.T) {
	b, err := json.Marshal(map[string]ErrorCode{"code": ErrorCode_AUDIO_NO_SPEECH})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"code":"AUDIO_NO_SPEECH"}` {
		t.Fatalf("unexpected json %s", b)
	}
	if ErrorCode(12345).String() != "UNKNOWN" {
		t.Fatal("unknown codes must render as UNKNOWN")
	}
}
