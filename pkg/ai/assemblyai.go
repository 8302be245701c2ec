package ai

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/innoviahub/meeting-transcription/pkg/config"
	"go.uber.org/zap"
)

// AssemblyAIService names the AssemblyAI upstream in errors and logs.
const AssemblyAIService = "AssemblyAI"

// AssemblyAIClient transcribes audio through the official AssemblyAI SDK.
type AssemblyAIClient struct {
	apiKey string
	sdk    *aai.Client
	retry  retrier
	logger *zap.Logger
}

// NewAssemblyAIClient creates an AssemblyAI client using the provided config.
func NewAssemblyAIClient(cfg *config.AssemblyAIConfig, logger *zap.Logger, opts ...Option) *AssemblyAIClient {
	var apiKey, base string
	if cfg != nil {
		apiKey = cfg.APIKey
		base = cfg.BaseURL
	}
	o := buildOptions(0, opts)

	sdkOpts := []aai.ClientOption{
		aai.WithAPIKey(apiKey),
		aai.WithHTTPClient(o.httpClient),
	}
	if base != "" {
		sdkOpts = append(sdkOpts, aai.WithBaseURL(base))
	}

	return &AssemblyAIClient{
		apiKey: apiKey,
		sdk:    aai.NewClientWithOptions(sdkOpts...),
		retry: retrier{
			maxAttempts: o.maxAttempts,
			timer:       o.timer,
			logger:      logger,
		},
		logger: logger,
	}
}

// Transcribe uploads the audio, waits for the transcript and returns its text.
// Each attempt reads from a fresh reader over data.
func (c *AssemblyAIClient) Transcribe(ctx context.Context, data []byte, fileName string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	return c.retry.do(ctx, AssemblyAIService, func(ctx context.Context, attempt int) (string, error) {
		if c.logger != nil {
			c.logger.Debug("submitting audio to AssemblyAI",
				zap.String("file_name", fileName),
				zap.Int("size_bytes", len(data)),
				zap.Int("attempt", attempt),
			)
		}

		transcript, err := c.sdk.Transcripts.TranscribeFromReader(ctx, bytes.NewReader(data), nil)
		if err != nil {
			var apiErr aai.APIError
			if errors.As(err, &apiErr) {
				return "", &UpstreamError{
					Service: AssemblyAIService,
					Status:  apiErr.Status,
					Type:    http.StatusText(apiErr.Status),
					Message: apiErr.Message,
				}
			}
			return "", err
		}

		if transcript.Status == aai.TranscriptStatusError {
			msg := "transcription failed"
			if transcript.Error != nil {
				msg = *transcript.Error
			}
			// a transcript that finished in error status is a final answer
			return "", &UpstreamError{
				Service: AssemblyAIService,
				Status:  http.StatusUnprocessableEntity,
				Type:    string(aai.TranscriptStatusError),
				Message: msg,
			}
		}

		if transcript.Text == nil {
			return "", nil
		}
		return *transcript.Text, nil
	})
}
