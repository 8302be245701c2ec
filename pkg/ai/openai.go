package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/innoviahub/meeting-transcription/pkg/config"
	"go.uber.org/zap"
)

const (
	// TranscriptionModel is the speech-to-text model submitted with every upload.
	TranscriptionModel = "gpt-4o-mini-transcribe"
	// TranscriptionService names the speech-to-text upstream in errors and logs.
	TranscriptionService = "OpenAI Whisper"

	// audio is always submitted with this subtype regardless of the declared upload type
	transcriptionPartType = "audio/mpeg"
	defaultOpenAIBaseURL  = "https://api.openai.com/v1"
)

// Option configures an upstream client
type Option func(*clientOptions)

type clientOptions struct {
	httpClient  *http.Client
	timer       backoff.Timer
	maxAttempts int
}

// WithHTTPClient overrides the HTTP client used for upstream calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithTimer overrides the timer used between retries.
func WithTimer(t backoff.Timer) Option {
	return func(o *clientOptions) { o.timer = t }
}

// WithMaxAttempts overrides the total attempt budget.
func WithMaxAttempts(n int) Option {
	return func(o *clientOptions) { o.maxAttempts = n }
}

func buildOptions(timeout time.Duration, opts []Option) clientOptions {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	o := clientOptions{
		httpClient:  &http.Client{Timeout: timeout},
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// OpenAIClient transcribes audio against an OpenAI-compatible /audio/transcriptions endpoint.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	retry   retrier
	logger  *zap.Logger
}

// NewOpenAIClient creates a transcription client using the provided config.
func NewOpenAIClient(cfg *config.OpenAIConfig, logger *zap.Logger, opts ...Option) *OpenAIClient {
	var (
		apiKey  string
		base    string
		timeout time.Duration
	)
	if cfg != nil {
		apiKey = cfg.APIKey
		base = cfg.BaseURL
		timeout = cfg.Timeout
	}
	if base == "" {
		base = defaultOpenAIBaseURL
	}
	o := buildOptions(timeout, opts)

	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(base, "/"),
		client:  o.httpClient,
		retry: retrier{
			maxAttempts: o.maxAttempts,
			timer:       o.timer,
			logger:      logger,
		},
		logger: logger,
	}
}

// transcriptionResponse accepts `text`, falling back to `transcription`.
type transcriptionResponse struct {
	Text          *string `json:"text"`
	Transcription *string `json:"transcription"`
}

// Transcribe submits the audio and returns the transcript text. The request
// body is rebuilt from data on every attempt.
func (c *OpenAIClient) Transcribe(ctx context.Context, data []byte, fileName string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}
	endpoint := c.baseURL + "/audio/transcriptions"

	return c.retry.do(ctx, TranscriptionService, func(ctx context.Context, attempt int) (string, error) {
		body, contentType, err := buildTranscriptionBody(data, fileName)
		if err != nil {
			return "", backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
		if err != nil {
			return "", backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", contentType)

		if c.logger != nil {
			c.logger.Debug("submitting audio for transcription",
				zap.String("file_name", fileName),
				zap.Int("size_bytes", len(data)),
				zap.Int("attempt", attempt),
			)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			ue := newStatusError(TranscriptionService, resp.StatusCode, raw)
			if c.logger != nil {
				c.logger.Error("transcription upstream returned error",
					zap.Int("status", resp.StatusCode),
					zap.Int("attempt", attempt),
					zap.String("body", ue.Body),
				)
			}
			return "", ue
		}

		return parseTranscription(resp.StatusCode, raw)
	})
}

func parseTranscription(status int, raw []byte) (string, error) {
	var tr transcriptionResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return "", &UpstreamError{
			Service: TranscriptionService,
			Status:  status,
			Type:    "invalid_response",
			Message: "response body is not valid JSON",
			Body:    string(raw),
			cause:   err,
		}
	}
	switch {
	case tr.Text != nil:
		return *tr.Text, nil
	case tr.Transcription != nil:
		return *tr.Transcription, nil
	default:
		return "", nil
	}
}

func buildTranscriptionBody(data []byte, fileName string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(fileName)))
	h.Set("Content-Type", transcriptionPartType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("model", TranscriptionModel); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
