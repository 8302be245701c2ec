package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/innoviahub/meeting-transcription/pkg/config"
)

// fakeAssemblyAI serves the upload, submit and poll endpoints used by the SDK.
func fakeAssemblyAI(t *testing.T, uploads *int32, uploadStatus int, finalStatus string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/upload"):
			atomic.AddInt32(uploads, 1)
			body, _ := io.ReadAll(r.Body)
			if string(body) != "audio-bytes" {
				t.Errorf("unexpected upload body %q", body)
			}
			if uploadStatus != http.StatusOK {
				w.WriteHeader(uploadStatus)
				json.NewEncoder(w).Encode(map[string]string{"error": "upload refused"})
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example.com/upload/abc"})
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/transcript"):
			json.NewEncoder(w).Encode(map[string]string{"id": "transcript-123", "status": "queued"})
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/transcript/transcript-123"):
			resp := map[string]any{"id": "transcript-123", "status": finalStatus}
			if finalStatus == "completed" {
				resp["text"] = "hello from assembly"
			} else {
				resp["error"] = "audio too short"
			}
			json.NewEncoder(w).Encode(resp)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestAssemblyAITranscribe_Success(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the SDK poll interval")
	}
	var uploads int32
	ts := fakeAssemblyAI(t, &uploads, http.StatusOK, "completed")
	defer ts.Close()

	client := NewAssemblyAIClient(&config.AssemblyAIConfig{APIKey: "test-key", BaseURL: ts.URL}, nil, WithTimer(newFakeTimer()))
	text, err := client.Transcribe(context.Background(), []byte("audio-bytes"), "a.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello from assembly" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestAssemblyAITranscribe_ErrorStatusIsRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the SDK poll interval")
	}
	var uploads int32
	ts := fakeAssemblyAI(t, &uploads, http.StatusOK, "error")
	defer ts.Close()

	client := NewAssemblyAIClient(&config.AssemblyAIConfig{APIKey: "test-key", BaseURL: ts.URL}, nil, WithTimer(newFakeTimer()))
	_, err := client.Transcribe(context.Background(), []byte("audio-bytes"), "a.wav")
	if !errors.Is(err, ErrUpstreamRejected) {
		t.Fatalf("expected ErrUpstreamRejected, got %v", err)
	}
	if uploads != 1 {
		t.Fatalf("expected a single upload, got %d", uploads)
	}
}

func TestAssemblyAITranscribe_ClientErrorNotRetried(t *testing.T) {
	var uploads int32
	ts := fakeAssemblyAI(t, &uploads, http.StatusUnauthorized, "")
	defer ts.Close()

	timer := newFakeTimer()
	client := NewAssemblyAIClient(&config.AssemblyAIConfig{APIKey: "bad-key", BaseURL: ts.URL}, nil, WithTimer(timer))
	_, err := client.Transcribe(context.Background(), []byte("audio-bytes"), "a.wav")
	if !errors.Is(err, ErrUpstreamRejected) {
		t.Fatalf("expected ErrUpstreamRejected, got %v", err)
	}
	if got := atomic.LoadInt32(&uploads); got != 1 {
		t.Fatalf("expected 1 upload, got %d", got)
	}
	if len(timer.Delays()) != 0 {
		t.Fatalf("expected no backoff, got %v", timer.Delays())
	}
}

func TestAssemblyAITranscribe_ServerErrorRetriedWithFreshReader(t *testing.T) {
	var uploads int32
	ts := fakeAssemblyAI(t, &uploads, http.StatusServiceUnavailable, "")
	defer ts.Close()

	timer := newFakeTimer()
	client := NewAssemblyAIClient(&config.AssemblyAIConfig{APIKey: "test-key", BaseURL: ts.URL}, nil, WithTimer(timer))
	_, err := client.Transcribe(context.Background(), []byte("audio-bytes"), "a.wav")
	if !errors.Is(err, ErrUpstreamUnreachable) {
		t.Fatalf("expected ErrUpstreamUnreachable, got %v", err)
	}
	if got := atomic.LoadInt32(&uploads); got != 4 {
		t.Fatalf("expected 4 uploads, got %d", got)
	}
	assertDelays(t, timer.Delays(), []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second})
}
