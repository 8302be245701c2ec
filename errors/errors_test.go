package errors

import (
	stdErrors "errors"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_IsMatchesByCode(t *testing.T) {
	err := ErrTooLarge(25 * 1024 * 1024)
	if !stdErrors.Is(err, ErrTooLarge(1)) {
		t.Fatalf("expected errors.Is to match on code")
	}
	if stdErrors.Is(err, ErrEmptyInput()) {
		t.Fatalf("different codes must not match")
	}
}

func TestAppError_UnwrapRaw(t *testing.T) {
	raw := stdErrors.New("connection reset")
	err := ErrUpstreamUnreachable("speech-to-text", raw)
	if !stdErrors.Is(err, raw) {
		t.Fatalf("expected raw cause to be reachable")
	}
	if err.HTTPCode != http.StatusServiceUnavailable {
		t.Fatalf("unexpected http code %d", err.HTTPCode)
	}
	if strings.Contains(err.Message, "connection reset") {
		t.Fatalf("user message must not carry the raw cause: %q", err.Message)
	}
}

func TestAppError_WithDetailDoesNotShareMap(t *testing.T) {
	base := ErrInvalidArgument("bad")
	a := base.WithDetail("k", "a")
	b := a.WithDetail("k", "b")
	if a.Details["k"] != "a" || b.Details["k"] != "b" {
		t.Fatalf("details leaked between copies: a=%v b=%v", a.Details, b.Details)
	}
}

func TestUpstreamRejected_Message(t *testing.T) {
	err := ErrUpstreamRejected("OpenAI Whisper", "invalid_request_error", "file is corrupt", nil)
	if err.Message != "OpenAI Whisper error (invalid_request_error): file is corrupt" {
		t.Fatalf("unexpected message %q", err.Message)
	}
	if err.Code.String() != "UPSTREAM_REJECTED" {
		t.Fatalf("unexpected code %s", err.Code)
	}
}
