package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/innoviahub/meeting-transcription/errors"
	dto "github.com/innoviahub/meeting-transcription/internal/adapter/dto/transcription"
	"github.com/innoviahub/meeting-transcription/internal/domain/entities"
	"github.com/innoviahub/meeting-transcription/internal/infrastructure/cache"
	"github.com/innoviahub/meeting-transcription/internal/usecase/transcription"
	"github.com/innoviahub/meeting-transcription/pkg/config"
)

type fakeRunner struct {
	calls  int
	last   entities.TranscriptionRequest
	result *entities.PipelineResult
	err    error
}

func (f *fakeRunner) Run(_ context.Context, req entities.TranscriptionRequest) (*entities.PipelineResult, error) {
	f.calls++
	f.last = req
	return f.result, f.err
}

func (f *fakeRunner) Simulated() bool { return false }

type fakeRecordings struct {
	byUser []entities.MeetingRecording
	found  *entities.MeetingRecording
	err    error

	listedFor string
	findArgs  [2]interface{}
}

func (f *fakeRecordings) Create(context.Context, *entities.MeetingRecording) error { return nil }

func (f *fakeRecordings) ListByUser(_ context.Context, userID string) ([]entities.MeetingRecording, error) {
	f.listedFor = userID
	return f.byUser, f.err
}

func (f *fakeRecordings) FindByBookingAndUser(_ context.Context, bookingID int, userID string) (*entities.MeetingRecording, error) {
	f.findArgs = [2]interface{}{bookingID, userID}
	return f.found, f.err
}

type fakeForwarder struct {
	configured bool
	status     int
	body       []byte
	err        error
	got        []byte
}

func (f *fakeForwarder) Configured() bool { return f.configured }

func (f *fakeForwarder) Forward(_ context.Context, body []byte) (int, []byte, error) {
	f.got = body
	return f.status, f.body, f.err
}

func newTestServer(runner TranscriptionRunner, repo *fakeRecordings, replays cache.Store, chat ChatForwarder) *echo.Echo {
	e := echo.New()
	cfg := &config.Config{}
	cfg.Server.Environment = "test"
	tc := NewTranscriptionController(runner, repo, replays, time.Hour, nil)
	NewRouter(cfg, tc, NewAIController(chat, nil), nil).Setup(e)
	return e
}

func multipartUpload(t *testing.T, fields map[string]string, fileName, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="audioFile"; filename="`+fileName+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		part.Write(data)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/transcriptions/upload-and-transcribe", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func completedResult() *entities.PipelineResult {
	return &entities.PipelineResult{
		Transcript:  "hello team",
		Summary:     "Quick sync.",
		ActionItems: []string{"Send notes"},
		Success:     true,
		Message:     transcription.MessageCompleted,
		Persistence: entities.PersistenceReport{Attempted: true, Saved: true, RecordingID: 7},
		CompletedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestUploadAndTranscribe_Success(t *testing.T) {
	runner := &fakeRunner{result: completedResult()}
	e := newTestServer(runner, &fakeRecordings{}, nil, nil)

	rec := serve(e, multipartUpload(t, map[string]string{"meetingId": " 42 "}, "standup.wav", "audio/wav", []byte("RIFF")))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if runner.last.MeetingID != "42" {
		t.Errorf("meeting id not trimmed: %q", runner.last.MeetingID)
	}
	if runner.last.UserID != dto.AnonymousUserID || runner.last.UserName != dto.AnonymousUserName {
		t.Errorf("anonymous defaults not applied: %+v", runner.last)
	}
	audio := runner.last.Audio
	if string(audio.Data) != "RIFF" || audio.FileName != "standup.wav" || audio.ContentType != "audio/wav" || audio.Size != 4 {
		t.Errorf("unexpected audio %+v", audio)
	}

	var resp dto.UploadResponse
	decode(t, rec, &resp)
	if !resp.Success || resp.Transcription != "hello team" || resp.Summary != "Quick sync." {
		t.Errorf("unexpected response %+v", resp)
	}
	if len(resp.ActionPoints) != 1 || resp.ActionPoints[0] != "Send notes" {
		t.Errorf("unexpected action points %v", resp.ActionPoints)
	}
	if !resp.Persistence.Saved || resp.Persistence.RecordingID != 7 {
		t.Errorf("unexpected persistence %+v", resp.Persistence)
	}
}

func TestUploadAndTranscribe_ErrorBodyHidesCause(t *testing.T) {
	runner := &fakeRunner{err: errors.ErrUpstreamUnreachable("OpenAI Whisper", io.ErrUnexpectedEOF)}
	e := newTestServer(runner, &fakeRecordings{}, nil, nil)

	rec := serve(e, multipartUpload(t, nil, "a.mp3", "audio/mp3", []byte("x")))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), io.ErrUnexpectedEOF.Error()) {
		t.Fatalf("raw cause leaked into response: %s", rec.Body.String())
	}

	var body struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	}
	decode(t, rec, &body)
	if body.Code != errors.ErrorCode_UPSTREAM_UNREACHABLE.String() || body.Details["service"] != "OpenAI Whisper" {
		t.Errorf("unexpected error body %+v", body)
	}
}

func TestUploadAndTranscribe_StubPipelineValidation(t *testing.T) {
	pipeline := transcription.NewPipeline(nil, nil, nil, transcription.NewStubBackend(0),
		transcription.Options{UseStub: true}, nil)
	e := newTestServer(pipeline, &fakeRecordings{}, nil, nil)

	cases := []struct {
		name string
		req  *http.Request
		code errors.ErrorCode
	}{
		{"missing file", multipartUpload(t, map[string]string{"meetingId": "1"}, "", "", nil), errors.ErrorCode_AUDIO_EMPTY_INPUT},
		{"no body", httptest.NewRequest(http.MethodPost, "/v1/transcriptions/upload-and-transcribe", nil), errors.ErrorCode_AUDIO_EMPTY_INPUT},
		{"unsupported type", multipartUpload(t, nil, "notes.txt", "text/plain", []byte("hi")), errors.ErrorCode_AUDIO_UNSUPPORTED_TYPE},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(e, tc.req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			var body struct {
				Code string `json:"code"`
			}
			decode(t, rec, &body)
			if body.Code != tc.code.String() {
				t.Errorf("expected code %s, got %s", tc.code, body.Code)
			}
		})
	}

	rec := serve(e, multipartUpload(t, nil, "test.wav", "audio/wav", []byte("RIFF")))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected simulated success, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp dto.UploadResponse
	decode(t, rec, &resp)
	if !resp.Simulated || len(resp.ActionPoints) != 5 || !strings.Contains(resp.Transcription, "test.wav") {
		t.Errorf("unexpected simulated response %+v", resp)
	}
}

func TestUploadAndTranscribe_IdempotentReplay(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()
	runner := &fakeRunner{result: completedResult()}
	e := newTestServer(runner, &fakeRecordings{}, store, nil)

	upload := func(key string) *httptest.ResponseRecorder {
		req := multipartUpload(t, map[string]string{"userId": "u-1"}, "a.wav", "audio/wav", []byte("RIFF"))
		req.Header.Set(HeaderIdempotencyKey, key)
		return serve(e, req)
	}

	first := upload("abc")
	second := upload("abc")
	if runner.calls != 1 {
		t.Fatalf("expected one pipeline run, got %d", runner.calls)
	}
	if second.Code != http.StatusOK || second.Header().Get(HeaderIdempotentReplay) != "true" {
		t.Fatalf("expected replayed response, got %d %v", second.Code, second.Header())
	}
	if first.Header().Get(HeaderIdempotentReplay) != "" {
		t.Errorf("first response must not be marked as replay")
	}

	var a, b dto.UploadResponse
	decode(t, first, &a)
	decode(t, second, &b)
	if a.Transcription != b.Transcription || a.Persistence != b.Persistence || !a.Timestamp.Equal(b.Timestamp) {
		t.Errorf("replay differs: %+v vs %+v", a, b)
	}

	upload("other")
	if runner.calls != 2 {
		t.Fatalf("a new key must run the pipeline again, got %d runs", runner.calls)
	}
}

func TestUploadAndTranscribe_FailuresAreNotReplayed(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()
	runner := &fakeRunner{err: errors.ErrRequestCancelled(context.Canceled)}
	e := newTestServer(runner, &fakeRecordings{}, store, nil)

	for i := 0; i < 2; i++ {
		req := multipartUpload(t, nil, "a.wav", "audio/wav", []byte("RIFF"))
		req.Header.Set(HeaderIdempotencyKey, "k")
		if rec := serve(e, req); rec.Code != http.StatusGatewayTimeout {
			t.Fatalf("expected 504, got %d", rec.Code)
		}
	}
	if runner.calls != 2 {
		t.Fatalf("expected failed runs to be retried, got %d runs", runner.calls)
	}
}

func TestListUserRecordings(t *testing.T) {
	repo := &fakeRecordings{byUser: []entities.MeetingRecording{
		{ID: 2, BookingID: 10, UserID: "u-1", KeyPoints: "Send notes; ;Book room;"},
		{ID: 1, BookingID: 9, UserID: "u-1"},
	}}
	e := newTestServer(&fakeRunner{}, repo, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/transcriptions/user/u-1/recordings", nil)
	if rec := serve(e, req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without caller, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/transcriptions/user/u-1/recordings", nil)
	req.Header.Set("X-User-ID", "u-2")
	if rec := serve(e, req); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for another user, got %d", rec.Code)
	}
	if repo.listedFor != "" {
		t.Fatalf("repository must not be queried for a forbidden request")
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/transcriptions/user/u-1/recordings", nil)
	req.Header.Set("X-User-ID", "u-1")
	rec := serve(e, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Code string                    `json:"code"`
		Data dto.RecordingListResponse `json:"data"`
	}
	decode(t, rec, &body)
	if body.Code != errors.ErrorCode_HTTP_OK.String() {
		t.Errorf("success envelope must carry the code name, got %q", body.Code)
	}
	if body.Data.Total != 2 || body.Data.Recordings[0].ID != 2 {
		t.Fatalf("unexpected list %+v", body.Data)
	}
	got := body.Data.Recordings[0].KeyPoints
	if len(got) != 2 || got[0] != "Send notes" || got[1] != "Book room" {
		t.Errorf("unexpected key points %v", got)
	}
	if kp := body.Data.Recordings[1].KeyPoints; kp == nil || len(kp) != 0 {
		t.Errorf("expected empty key point list, got %v", kp)
	}
}

func TestGetMeetingTranscription(t *testing.T) {
	repo := &fakeRecordings{}
	e := newTestServer(&fakeRunner{}, repo, nil, nil)

	get := func(id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/transcriptions/meeting/"+id+"/transcription", nil)
		req.Header.Set("X-User-ID", "u-1")
		return serve(e, req)
	}

	if rec := get("abc"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", rec.Code)
	}
	if rec := get("3000000000"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an id outside the booking range, got %d", rec.Code)
	}
	if rec := get("42"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when missing, got %d", rec.Code)
	}
	if repo.findArgs != [2]interface{}{42, "u-1"} {
		t.Errorf("unexpected lookup args %v", repo.findArgs)
	}

	repo.found = &entities.MeetingRecording{ID: 3, BookingID: 42, UserID: "u-1", Summary: "Done.", KeyPoints: "A;B"}
	rec := get("42")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Data dto.RecordingResponse `json:"data"`
	}
	decode(t, rec, &body)
	if body.Data.Summary != "Done." || len(body.Data.KeyPoints) != 2 {
		t.Errorf("unexpected recording %+v", body.Data)
	}
}

func TestChatCompletions(t *testing.T) {
	e := newTestServer(&fakeRunner{}, &fakeRecordings{}, nil, &fakeForwarder{})
	req := httptest.NewRequest(http.MethodPost, "/v1/openai/chat/completions", strings.NewReader(`{"model":"gpt-4.1"}`))
	if rec := serve(e, req); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when not configured, got %d", rec.Code)
	}

	chat := &fakeForwarder{configured: true, status: http.StatusTooManyRequests, body: []byte(`{"error":{"message":"slow down"}}`)}
	e = newTestServer(&fakeRunner{}, &fakeRecordings{}, nil, chat)
	req = httptest.NewRequest(http.MethodPost, "/v1/openai/chat/completions", strings.NewReader(`{"model":"gpt-4.1"}`))
	rec := serve(e, req)
	if rec.Code != http.StatusTooManyRequests || rec.Body.String() != `{"error":{"message":"slow down"}}` {
		t.Fatalf("expected upstream relay, got %d %s", rec.Code, rec.Body.String())
	}
	if string(chat.got) != `{"model":"gpt-4.1"}` {
		t.Errorf("unexpected forwarded body %s", chat.got)
	}

	chat.err = io.ErrUnexpectedEOF
	req = httptest.NewRequest(http.MethodPost, "/v1/openai/chat/completions", strings.NewReader(`{}`))
	if rec := serve(e, req); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 on transport failure, got %d", rec.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	e := newTestServer(&fakeRunner{}, &fakeRecordings{}, nil, nil)
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Status      string `json:"status"`
		Environment string `json:"environment"`
		Simulated   bool   `json:"simulated"`
	}
	decode(t, rec, &body)
	if body.Status != "ok" || body.Environment != "test" || !body.Simulated {
		t.Errorf("unexpected health body %+v", body)
	}
}
