package handler

import (
	"context"
	stdErrors "errors"
	"io"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/innoviahub/meeting-transcription/errors"
	pkgai "github.com/innoviahub/meeting-transcription/pkg/ai"
)

// ChatForwarder relays raw chat completion requests upstream.
type ChatForwarder interface {
	Configured() bool
	Forward(ctx context.Context, body []byte) (int, []byte, error)
}

// AIController exposes the chat completion passthrough used by the frontend
type AIController struct {
	chat   ChatForwarder
	logger *zap.Logger
}

// NewAIController creates a new AI controller
func NewAIController(chat ChatForwarder, logger *zap.Logger) *AIController {
	return &AIController{chat: chat, logger: logger}
}

// ChatCompletions forwards a chat completion request
// @Summary      Chat completion passthrough
// @Description  Forwards the request body to the chat completion API and relays its status and body
// @Tags         AI
// @Accept       json
// @Produce      json
// @Param        request  body      object  true  "Chat completion request"
// @Success      200      {object}  map[string]interface{}  "Upstream response"
// @Failure      400      {object}  common.ErrorResponse    "API key not configured"
// @Failure      503      {object}  common.ErrorResponse    "Chat service unavailable"
// @Router       /openai/chat/completions [post]
func (ac *AIController) ChatCompletions(c echo.Context) error {
	if ac.chat == nil || !ac.chat.Configured() {
		return HandleError(ac.logger, c, errors.ErrUpstreamNotConfigured("OpenAI"))
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return HandleError(ac.logger, c, errors.ErrInvalidPayload())
	}
	if len(body) == 0 {
		return HandleError(ac.logger, c, errors.ErrInvalidPayload())
	}

	status, raw, err := ac.chat.Forward(c.Request().Context(), body)
	if err != nil {
		if stdErrors.Is(err, pkgai.ErrNotConfigured) {
			return HandleError(ac.logger, c, errors.ErrUpstreamNotConfigured("OpenAI"))
		}
		return HandleError(ac.logger, c, errors.ErrUpstreamUnreachable(pkgai.ChatService, err))
	}

	if ac.logger != nil {
		ac.logger.Info("chat completion relayed",
			zap.String("request_id", getRequestID(c)),
			zap.Int("upstream_status", status),
		)
	}
	return c.Blob(status, echo.MIMEApplicationJSON, raw)
}
