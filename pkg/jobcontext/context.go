package jobcontext

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
)

type KeyContext string

var (
	keyRunID        KeyContext = "run_id"
	keyRunSource    KeyContext = "run_source"
	keyUserID       KeyContext = "user_id"
	keyStage        KeyContext = "stage"
	keyRunStartTime KeyContext = "run_start_time"
)

// RunMetadata holds metadata for one pipeline run
type RunMetadata struct {
	RunID     uuid.UUID
	Source    string
	UserID    int64
	Stage     string
	StartTime time.Time
}

// RunBegin attaches run metadata to ctx. The run itself has no deadline;
// each stage gets its own through StageBegin.
func RunBegin(parentCtx context.Context, runID uuid.UUID, source string, userID int64) context.Context {
	ctx := context.WithValue(parentCtx, keyRunID, runID)
	ctx = context.WithValue(ctx, keyRunSource, source)
	ctx = context.WithValue(ctx, keyUserID, userID)
	ctx = context.WithValue(ctx, keyRunStartTime, time.Now())
	return ctx
}

// StageBegin derives a context for one pipeline stage. A non-positive
// timeout leaves the parent deadline in place.
func StageBegin(ctx context.Context, stage string, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, keyStage, stage)
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// GetRunID extracts run ID from context
func GetRunID(ctx context.Context) (uuid.UUID, bool) {
	runID, ok := ctx.Value(keyRunID).(uuid.UUID)
	return runID, ok
}

// GetRunSource extracts the transport that started the run
func GetRunSource(ctx context.Context) string {
	source, _ := ctx.Value(keyRunSource).(string)
	return source
}

// GetUserID extracts the requesting user from context
func GetUserID(ctx context.Context) int64 {
	userID, _ := ctx.Value(keyUserID).(int64)
	return userID
}

// GetStage extracts the current stage name from context
func GetStage(ctx context.Context) string {
	stage, _ := ctx.Value(keyStage).(string)
	return stage
}

// GetRunStartTime extracts run start time from context
func GetRunStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyRunStartTime).(time.Time)
	return startTime, ok
}

// GetRunMetadata extracts all run metadata from context
func GetRunMetadata(ctx context.Context) *RunMetadata {
	runID, _ := GetRunID(ctx)
	startTime, _ := GetRunStartTime(ctx)

	return &RunMetadata{
		RunID:     runID,
		Source:    GetRunSource(ctx),
		UserID:    GetUserID(ctx),
		Stage:     GetStage(ctx),
		StartTime: startTime,
	}
}

// IsTimeout reports whether err came from a deadline, either the context's
// or a network client's.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// IsRetryableError checks if an error should trigger a retry
// Retryable errors include: network errors, timeouts, rate limits, 5xx
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// The caller gave up; retrying cannot help.
	if errors.Is(err, context.Canceled) {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// Network errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "network unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "eof") {
		return true
	}

	// API rate limiting
	if strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429") {
		return true
	}

	// Server errors (5xx)
	if strings.Contains(errStr, "status code: 5") ||
		strings.Contains(errStr, "status 5") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "bad gateway") {
		return true
	}

	// Temporary failures
	if strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "try again") {
		return true
	}

	return false
}
