package ai

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUpstreamRejected marks a non-retryable refusal by an upstream (4xx other than 429).
	ErrUpstreamRejected = errors.New("upstream rejected the request")
	// ErrUpstreamUnreachable marks an upstream that never answered successfully within the retry budget.
	ErrUpstreamUnreachable = errors.New("upstream unreachable")
	// ErrNotConfigured is returned when a client has no credential.
	ErrNotConfigured = errors.New("upstream credential not configured")
)

// UpstreamError describes a failed call to an upstream AI service.
// Body holds the raw response for logging and must not reach API callers.
type UpstreamError struct {
	Service  string
	Status   int
	Type     string
	Message  string
	Body     string
	Attempts int

	kind  error
	cause error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%s: status %d", e.Service, e.Status)
	if e.Type != "" || e.Message != "" {
		msg += fmt.Sprintf(" (%s: %s)", e.Type, e.Message)
	}
	if e.kind != nil {
		msg = e.kind.Error() + ": " + msg
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel kind and the underlying cause.
func (e *UpstreamError) Unwrap() []error {
	var errs []error
	if e.kind != nil {
		errs = append(errs, e.kind)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// Retryable reports whether the status of this error allows another attempt.
func (e *UpstreamError) Retryable() bool {
	return isRetryableStatus(e.Status)
}

// errorEnvelope is the `{"error": {"type": ..., "message": ...}}` shape returned by OpenAI-compatible APIs.
type errorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// newStatusError builds an UpstreamError from a non-2xx response body.
func newStatusError(service string, status int, body []byte) *UpstreamError {
	ue := &UpstreamError{
		Service: service,
		Status:  status,
		Body:    string(body),
	}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		ue.Type = env.Error.Type
		ue.Message = env.Error.Message
	}
	if ue.Message == "" {
		ue.Message = fmt.Sprintf("request failed with status %d", status)
	}
	return ue
}
