package ai

import (
	"context"
	"errors"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/innoviahub/meeting-transcription/pkg/jobcontext"
	"go.uber.org/zap"
)

const (
	// DefaultMaxAttempts is the total number of calls made to an upstream: one plus three retries.
	DefaultMaxAttempts = 4

	statusBaseDelay    = 500 * time.Millisecond
	transportDelayStep = 200 * time.Millisecond
)

func isRetryableStatus(status int) bool {
	return jobcontext.IsRetryableStatus(status)
}

// retryState implements backoff.BackOff for one upstream invocation.
// failures counts failed attempts; transport records whether the last one
// never produced a response.
type retryState struct {
	maxAttempts int
	failures    int
	transport   bool
	delay       time.Duration
}

func newRetryState(maxAttempts int) *retryState {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &retryState{maxAttempts: maxAttempts}
}

// record notes the outcome of a failed attempt before NextBackOff is consulted.
func (s *retryState) record(transport bool) {
	s.failures++
	s.transport = transport
}

// NextBackOff returns 2^(n-1)*500ms after the n-th retryable status and
// n*200ms after the n-th transport failure. No delay follows the last attempt.
func (s *retryState) NextBackOff() time.Duration {
	if s.failures >= s.maxAttempts {
		return backoff.Stop
	}
	if s.transport {
		s.delay = jobcontext.CalculateLinearBackoff(s.failures, transportDelayStep)
	} else {
		s.delay = jobcontext.CalculateBackoff(s.failures-1, statusBaseDelay)
	}
	return s.delay
}

func (s *retryState) Reset() {
	s.failures = 0
	s.transport = false
	s.delay = 0
}

// retrier drives an upstream call through retryState.
type retrier struct {
	maxAttempts int
	timer       backoff.Timer
	logger      *zap.Logger
}

// attemptFunc performs one upstream call. A non-2xx answer must be returned as
// *UpstreamError; any other error is treated as a transport failure.
type attemptFunc func(ctx context.Context, attempt int) (string, error)

func (r *retrier) do(ctx context.Context, service string, call attemptFunc) (string, error) {
	state := newRetryState(r.maxAttempts)
	var (
		result    string
		lastErr   error
		permanent bool
	)

	op := func() error {
		out, err := call(ctx, state.failures+1)
		if err == nil {
			result = out
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return backoff.Permanent(ctxErr)
		}

		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			permanent = true
			return err
		}

		lastErr = err
		var ue *UpstreamError
		if errors.As(err, &ue) {
			if !ue.Retryable() {
				ue.kind = ErrUpstreamRejected
				ue.Attempts = state.failures + 1
				return backoff.Permanent(ue)
			}
			state.record(false)
			return err
		}
		state.record(true)
		return err
	}

	notify := func(err error, wait time.Duration) {
		if r.logger != nil {
			r.logger.Warn("upstream call failed, retrying",
				zap.String("service", service),
				zap.Int("attempt", state.failures),
				zap.Bool("transport_error", state.transport),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
		}
	}

	err := backoff.RetryNotifyWithTimer(op, backoff.WithContext(state, ctx), notify, r.timer)
	if err == nil {
		return result, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", err
	}
	if permanent || errors.Is(err, ErrUpstreamRejected) {
		return "", err
	}

	// Attempts exhausted.
	exhausted := &UpstreamError{
		Service:  service,
		Attempts: state.failures,
		kind:     ErrUpstreamUnreachable,
	}
	var ue *UpstreamError
	if errors.As(lastErr, &ue) {
		exhausted.Status = ue.Status
		exhausted.Type = ue.Type
		exhausted.Message = ue.Message
		exhausted.Body = ue.Body
	} else {
		exhausted.cause = lastErr
	}
	if r.logger != nil {
		r.logger.Error("upstream call exhausted retries",
			zap.String("service", service),
			zap.Int("attempts", state.failures),
			zap.Error(exhausted),
		)
	}
	return "", exhausted
}
