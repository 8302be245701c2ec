package transcription

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/innoviahub/meeting-transcription/errors"
	"github.com/innoviahub/meeting-transcription/internal/domain/entities"
	pkgai "github.com/innoviahub/meeting-transcription/pkg/ai"
	"github.com/innoviahub/meeting-transcription/pkg/jobcontext"
)

const (
	MessageCompleted = "Transcription completed successfully"
	MessageSimulated = "Simulated transcription: no speech-to-text service is configured"
)

// Transcriber is a speech-to-text backend.
type Transcriber interface {
	Transcribe(ctx context.Context, data []byte, fileName string) (string, error)
}

// Extractor produces a summary and action items. It must not fail.
type Extractor interface {
	Extract(ctx context.Context, transcript string) entities.ExtractionOutcome
}

// Persister writes a completed run.
type Persister interface {
	Persist(ctx context.Context, in PersistInput) (*entities.MeetingRecording, error)
}

// Options configures a Pipeline. UseStub is decided once at start-up.
type Options struct {
	UseStub  bool
	Provider string
	Timeout  time.Duration
}

// Pipeline runs validation, transcription, summarization and persistence for one upload.
type Pipeline struct {
	validator   *IngestValidator
	transcriber Transcriber
	extractor   Extractor
	persister   Persister
	stub        *StubBackend
	opts        Options
	now         func() time.Time
	logger      *zap.Logger
}

// NewPipeline wires a pipeline. transcriber and extractor may be nil when opts.UseStub is set.
func NewPipeline(
	transcriber Transcriber,
	extractor Extractor,
	persister Persister,
	stub *StubBackend,
	opts Options,
	logger *zap.Logger,
) *Pipeline {
	if stub == nil {
		stub = NewStubBackend(DefaultStubDelay)
	}
	if opts.Provider == "" {
		opts.Provider = "openai"
	}
	if opts.UseStub {
		opts.Provider = "stub"
	}
	return &Pipeline{
		validator:   NewIngestValidator(),
		transcriber: transcriber,
		extractor:   extractor,
		persister:   persister,
		stub:        stub,
		opts:        opts,
		now:         time.Now,
		logger:      logger,
	}
}

// Simulated reports whether the pipeline runs the stub backend.
func (p *Pipeline) Simulated() bool {
	return p.opts.UseStub
}

// Run executes one pipeline invocation. A returned error means no result was
// produced and nothing was written; persistence problems are reported in
// PipelineResult.Persistence instead.
func (p *Pipeline) Run(ctx context.Context, req entities.TranscriptionRequest) (*entities.PipelineResult, error) {
	ctx, cancel := jobcontext.RunBegin(ctx, req.MeetingID, req.Audio.FileName, p.opts.Timeout)
	defer cancel()

	log := p.runLogger(ctx)
	stage := func(s entities.PipelineStage, fields ...zap.Field) {
		if log != nil {
			log.Info("pipeline stage", append([]zap.Field{zap.String("stage", string(s))}, fields...)...)
		}
	}
	fail := func(err error) (*entities.PipelineResult, error) {
		if log != nil {
			log.Warn("pipeline failed",
				zap.String("stage", string(entities.StageFailed)),
				zap.Duration("elapsed", jobcontext.Elapsed(ctx)),
				zap.Error(err),
			)
		}
		return nil, err
	}

	stage(entities.StageValidating, zap.Int64("size_bytes", req.Audio.Size), zap.String("content_type", req.Audio.ContentType))
	if err := p.validator.Validate(req.Audio); err != nil {
		return fail(err)
	}

	transcriber, extractor := p.transcriber, p.extractor
	if p.opts.UseStub {
		transcriber, extractor = p.stub, p.stub
	}

	stage(entities.StageTranscribing, zap.String("provider", p.opts.Provider))
	text, err := transcriber.Transcribe(ctx, req.Audio.Data, req.Audio.FileName)
	if err != nil {
		return fail(toAppError(err))
	}

	stage(entities.StageSummarizing, zap.Int("transcript_length", len(text)))
	extraction := extractor.Extract(ctx, text)

	if err := ctx.Err(); err != nil {
		return fail(apperrors.ErrRequestCancelled(err))
	}

	result := &entities.PipelineResult{
		Transcript:  text,
		Summary:     extraction.Summary,
		ActionItems: extraction.ActionItems,
		Success:     true,
		Message:     MessageCompleted,
		Simulated:   p.opts.UseStub,
	}
	if result.ActionItems == nil {
		result.ActionItems = []string{}
	}
	if p.opts.UseStub {
		result.Message = MessageSimulated
	}

	stage(entities.StagePersisting)
	result.Persistence = p.persist(ctx, log, req, text, extraction)

	result.CompletedAt = p.now().UTC()
	stage(entities.StageDone,
		zap.Bool("saved", result.Persistence.Saved),
		zap.Duration("elapsed", jobcontext.Elapsed(ctx)),
	)
	return result, nil
}

func (p *Pipeline) persist(
	ctx context.Context,
	log *zap.Logger,
	req entities.TranscriptionRequest,
	text string,
	extraction entities.ExtractionOutcome,
) entities.PersistenceReport {
	bookingID, ok := entities.ParseBookingID(req.MeetingID)
	if !ok {
		if log != nil {
			log.Info("meeting id is not a booking id, skipping persistence")
		}
		return entities.PersistenceReport{}
	}
	if p.persister == nil {
		return entities.PersistenceReport{}
	}

	runID, _ := jobcontext.GetRunID(ctx)
	rec, err := p.persister.Persist(ctx, PersistInput{
		BookingID:  bookingID,
		UserID:     req.UserID,
		UserName:   req.UserName,
		FileName:   req.Audio.FileName,
		FileSize:   req.Audio.Size,
		Transcript: text,
		Extraction: extraction,
		Metadata: map[string]interface{}{
			"run_id":       runID.String(),
			"provider":     p.opts.Provider,
			"content_type": strings.ToLower(strings.TrimSpace(req.Audio.ContentType)),
			"simulated":    p.opts.UseStub,
		},
	})
	if err != nil {
		var appErr apperrors.AppError
		if !errors.As(err, &appErr) {
			appErr = apperrors.ErrPersistenceFailed(err)
		}
		return entities.PersistenceReport{Attempted: true, Error: appErr.Message}
	}
	return entities.PersistenceReport{Attempted: true, Saved: true, RecordingID: rec.ID}
}

func (p *Pipeline) runLogger(ctx context.Context) *zap.Logger {
	if p.logger == nil {
		return nil
	}
	md := jobcontext.GetRunMetadata(ctx)
	return p.logger.With(
		zap.String("run_id", md.RunID.String()),
		zap.String("meeting_id", md.MeetingID),
		zap.String("file_name", md.FileName),
	)
}

// toAppError maps transcription failures onto the API error taxonomy.
func toAppError(err error) error {
	var appErr apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.ErrRequestCancelled(err)
	}

	service := pkgai.TranscriptionService
	var ue *pkgai.UpstreamError
	if errors.As(err, &ue) {
		service = ue.Service
	}

	switch {
	case errors.Is(err, pkgai.ErrUpstreamRejected) && ue != nil:
		return apperrors.ErrUpstreamRejected(service, ue.Type, ue.Message, err)
	case errors.Is(err, pkgai.ErrNotConfigured):
		return apperrors.ErrUpstreamNotConfigured(service)
	default:
		return apperrors.ErrUpstreamUnreachable(service, err)
	}
}
