package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/innoviahub/meeting-transcription/internal/adapter/handler"
	"github.com/innoviahub/meeting-transcription/internal/adapter/repository"
	"github.com/innoviahub/meeting-transcription/internal/domain/repositories"
	"github.com/innoviahub/meeting-transcription/internal/infrastructure/cache"
	"github.com/innoviahub/meeting-transcription/internal/infrastructure/database"
	"github.com/innoviahub/meeting-transcription/internal/infrastructure/storage"
	"github.com/innoviahub/meeting-transcription/internal/usecase/transcription"
	pkgai "github.com/innoviahub/meeting-transcription/pkg/ai"
	"github.com/innoviahub/meeting-transcription/pkg/config"
	pkgvalidator "github.com/innoviahub/meeting-transcription/pkg/validator"
)

// @title           Meeting Transcription API
// @version         1.0
// @description     Uploads meeting recordings, transcribes them and extracts a summary with action items.

// @BasePath  /v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${id} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization,
			"X-User-ID", handler.HeaderIdempotencyKey,
		},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if cfg.Database.AutoMigrate {
		if cfg.IsProduction() {
			logger.Fatal("DB_AUTO_MIGRATE is enabled in production; run cmd/migrate instead")
		}
		n, err := database.AutoMigrate(db)
		if err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
		logger.Info("migrations applied", zap.Int("count", n))
	}

	replays, closeReplays := newReplayStore(startCtx, cfg, logger)
	defer closeReplays()

	recordingRepo := repository.NewMeetingRecordingRepository(db)
	pipeline := newPipeline(startCtx, cfg, recordingRepo, logger)

	chatClient := pkgai.NewChatClient(&cfg.OpenAI, logger)
	transcriptionController := handler.NewTranscriptionController(
		pipeline, recordingRepo, replays, cfg.Pipeline.IdempotencyTTL, logger,
	)
	aiController := handler.NewAIController(chatClient, logger)

	router := handler.NewRouter(cfg, transcriptionController, aiController, logger)
	router.Setup(e)

	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
			zap.String("provider", cfg.Pipeline.Provider),
			zap.Bool("simulated", pipeline.Simulated()),
		)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// newReplayStore prefers redis and falls back to process memory.
func newReplayStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cache.Store, func()) {
	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(ctx, &cfg.Redis)
		if err == nil {
			logger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
			store := cache.NewRedisStore(client, "transcription:")
			return store, func() { store.Close() }
		}
		logger.Warn("redis unavailable, using in-memory replay store", zap.Error(err))
	}
	store := cache.NewMemoryStore()
	return store, func() { store.Close() }
}

func newPipeline(
	ctx context.Context,
	cfg *config.Config,
	repo repositories.MeetingRecordingRepository,
	logger *zap.Logger,
) *transcription.Pipeline {
	var archiver transcription.TranscriptArchiver
	if cfg.Storage.Endpoint != "" {
		minioClient, err := storage.NewMinIOClient(ctx, &cfg.Storage)
		if err != nil {
			logger.Warn("transcript archive disabled", zap.Error(err))
		} else {
			archiver = minioClient
		}
	}

	var transcriber transcription.Transcriber
	switch cfg.Pipeline.Provider {
	case config.ProviderAssemblyAI:
		transcriber = pkgai.NewAssemblyAIClient(&cfg.Assembly, logger)
	default:
		transcriber = pkgai.NewOpenAIClient(&cfg.OpenAI, logger)
	}

	extractor := transcription.NewSummaryExtractor(pkgai.NewChatClient(&cfg.OpenAI, logger), logger)
	persister := transcription.NewResultPersister(repo, archiver, logger)

	return transcription.NewPipeline(
		transcriber,
		extractor,
		persister,
		transcription.NewStubBackend(cfg.Pipeline.StubDelay),
		transcription.Options{
			UseStub:  cfg.UseStub(),
			Provider: cfg.Pipeline.Provider,
			Timeout:  cfg.Pipeline.Timeout,
		},
		logger,
	)
}
