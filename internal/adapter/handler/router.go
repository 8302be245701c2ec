package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	_ "github.com/innoviahub/meeting-transcription/docs"
	"github.com/innoviahub/meeting-transcription/internal/adapter/dto/common"
	httpmw "github.com/innoviahub/meeting-transcription/internal/infrastructure/http/middleware"
	"github.com/innoviahub/meeting-transcription/pkg/config"
	pkgvalidator "github.com/innoviahub/meeting-transcription/pkg/validator"
)

// Router holds all handlers
type Router struct {
	cfg                     *config.Config
	transcriptionController *TranscriptionController
	aiController            *AIController
	logger                  *zap.Logger
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	transcriptionController *TranscriptionController,
	aiController *AIController,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:                     cfg,
		transcriptionController: transcriptionController,
		aiController:            aiController,
		logger:                  logger,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	if e.Validator == nil {
		e.Validator = pkgvalidator.New()
	}

	e.GET("/health", rt.healthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1", httpmw.CallerIdentity())

	rt.setupTranscriptionRoutes(v1)
	rt.setupAIRoutes(v1)
}

// setupTranscriptionRoutes configures upload and read routes
func (rt *Router) setupTranscriptionRoutes(g *echo.Group) {
	tg := g.Group("/transcriptions")

	if rt.transcriptionController == nil {
		tg.Any("/*", rt.notImplemented)
		return
	}

	requireCaller := httpmw.RequireCaller(errorWriter(rt.logger))

	tg.POST("/upload-and-transcribe", rt.transcriptionController.UploadAndTranscribe)
	tg.GET("/user/:userId/recordings", rt.transcriptionController.ListUserRecordings, requireCaller)
	tg.GET("/meeting/:meetingId/transcription", rt.transcriptionController.GetMeetingTranscription, requireCaller)
}

// setupAIRoutes configures the chat completion passthrough
func (rt *Router) setupAIRoutes(g *echo.Group) {
	if rt.aiController == nil {
		g.POST("/openai/chat/completions", rt.notImplemented)
		return
	}
	g.POST("/openai/chat/completions", rt.aiController.ChatCompletions)
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, common.ErrorResponse{
		Message: "This endpoint is not yet implemented",
		Details: map[string]string{
			"path":   c.Request().URL.Path,
			"method": c.Request().Method,
		},
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	resp := common.HealthResponse{Status: "ok"}
	if rt.cfg != nil {
		resp.Environment = rt.cfg.Server.Environment
		resp.Simulated = rt.cfg.UseStub()
	}
	return c.JSON(http.StatusOK, resp)
}
