package jobcontext

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type KeyContext string

var (
	keyRunID        KeyContext = "run_id"
	keyMeetingID    KeyContext = "meeting_id"
	keyFileName     KeyContext = "file_name"
	keyRunStartTime KeyContext = "run_start_time"
)

// DefaultTimeout bounds a pipeline run when the caller configures none.
const DefaultTimeout = 2 * time.Minute

// maxBackoff caps any single computed delay.
const maxBackoff = 60 * time.Second

// RunMetadata holds metadata for one pipeline run
type RunMetadata struct {
	RunID     uuid.UUID
	MeetingID string
	FileName  string
	StartTime time.Time
	Deadline  time.Time
}

// RunBegin derives a pipeline run context from the request context.
// The run is bounded by timeout and tagged with a fresh run id.
func RunBegin(parentCtx context.Context, meetingID, fileName string, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(parentCtx, timeout)

	ctx = context.WithValue(ctx, keyRunID, uuid.New())
	ctx = context.WithValue(ctx, keyMeetingID, meetingID)
	ctx = context.WithValue(ctx, keyFileName, fileName)
	ctx = context.WithValue(ctx, keyRunStartTime, time.Now())

	return ctx, cancel
}

// GetRunID extracts run ID from context
func GetRunID(ctx context.Context) (uuid.UUID, bool) {
	runID, ok := ctx.Value(keyRunID).(uuid.UUID)
	return runID, ok
}

// GetMeetingID extracts the raw meeting identifier from context
func GetMeetingID(ctx context.Context) string {
	meetingID, _ := ctx.Value(keyMeetingID).(string)
	return meetingID
}

// GetFileName extracts the uploaded file name from context
func GetFileName(ctx context.Context) string {
	fileName, _ := ctx.Value(keyFileName).(string)
	return fileName
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
	deadline, _ := ctx.Deadline()

	return &RunMetadata{
		RunID:     runID,
		MeetingID: GetMeetingID(ctx),
		FileName:  GetFileName(ctx),
		StartTime: startTime,
		Deadline:  deadline,
	}
}

// Elapsed returns how long the run has been going, or zero outside a run.
func Elapsed(ctx context.Context) time.Duration {
	startTime, ok := GetRunStartTime(ctx)
	if !ok {
		return 0
	}
	return time.Since(startTime)
}

// IsRetryableStatus reports whether an upstream HTTP status is worth retrying:
// 429 Too Many Requests or any 5xx.
func IsRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status <= 599)
}

// CalculateBackoff calculates exponential backoff duration
func CalculateBackoff(attempt int, baseDelay time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	// 2^attempt * baseDelay, max 60 seconds
	backoff := time.Duration(1<<uint(attempt)) * baseDelay

	if backoff > maxBackoff {
		backoff = maxBackoff
	}

	return backoff
}

// CalculateLinearBackoff returns attempt * step, capped like CalculateBackoff.
func CalculateLinearBackoff(attempt int, step time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	backoff := time.Duration(attempt) * step
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	return backoff
}
