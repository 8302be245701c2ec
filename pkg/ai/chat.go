package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/innoviahub/meeting-transcription/pkg/config"
	"go.uber.org/zap"
)

const (
	// ChatModel is the chat-completion model used for summaries.
	ChatModel = "gpt-4.1"
	// ChatService names the chat-completion upstream in errors and logs.
	ChatService = "OpenAI Chat"
)

// ChatClient is a minimal client for OpenAI-compatible chat completions
type ChatClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewChatClient creates a chat client using values from the provided config.
func NewChatClient(cfg *config.OpenAIConfig, logger *zap.Logger, opts ...Option) *ChatClient {
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

	return &ChatClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(base, "/"),
		client:  o.httpClient,
		logger:  logger,
	}
}

// Configured reports whether the client has a credential.
func (c *ChatClient) Configured() bool {
	return c.apiKey != ""
}

// ChatMessage is one entry of the ordered message list
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a chat completion request and returns the first choice's content.
// It makes a single call; callers decide how to degrade on failure.
func (c *ChatClient) Complete(ctx context.Context, reqBody ChatRequest) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}
	if reqBody.Model == "" {
		reqBody.Model = ChatModel
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	status, raw, err := c.post(ctx, b)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		ue := newStatusError(ChatService, status, raw)
		if isRetryableStatus(status) {
			ue.kind = ErrUpstreamUnreachable
		} else {
			ue.kind = ErrUpstreamRejected
		}
		if c.logger != nil {
			c.logger.Error("chat upstream returned error",
				zap.Int("status", status),
				zap.String("body", ue.Body),
			)
		}
		return "", ue
	}

	var cr ChatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty response from %s", ChatService)
	}
	return cr.Choices[0].Message.Content, nil
}

// Forward relays a raw chat completion body and returns the upstream status and body unchanged.
func (c *ChatClient) Forward(ctx context.Context, body []byte) (int, []byte, error) {
	if c.apiKey == "" {
		return 0, nil, ErrNotConfigured
	}
	return c.post(ctx, body)
}

func (c *ChatClient) post(ctx context.Context, body []byte) (int, []byte, error) {
	endpoint := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, raw, nil
}
