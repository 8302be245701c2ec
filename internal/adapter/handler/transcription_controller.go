package handler

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/innoviahub/meeting-transcription/errors"
	dto "github.com/innoviahub/meeting-transcription/internal/adapter/dto/transcription"
	"github.com/innoviahub/meeting-transcription/internal/adapter/presenter"
	"github.com/innoviahub/meeting-transcription/internal/domain/entities"
	"github.com/innoviahub/meeting-transcription/internal/domain/repositories"
	"github.com/innoviahub/meeting-transcription/internal/infrastructure/cache"
	httpmw "github.com/innoviahub/meeting-transcription/internal/infrastructure/http/middleware"
	"github.com/innoviahub/meeting-transcription/internal/usecase/transcription"
)

const (
	audioFormField = "audioFile"

	// HeaderIdempotencyKey lets a client retry an upload without re-running the pipeline.
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderIdempotentReplay marks a response served from the replay cache.
	HeaderIdempotentReplay = "Idempotent-Replayed"
)

// TranscriptionRunner executes one transcription pipeline run.
type TranscriptionRunner interface {
	Run(ctx context.Context, req entities.TranscriptionRequest) (*entities.PipelineResult, error)
	Simulated() bool
}

// TranscriptionController handles upload and read endpoints for meeting transcriptions
type TranscriptionController struct {
	pipeline TranscriptionRunner
	repo     repositories.MeetingRecordingRepository
	replays  cache.Store
	ttl      time.Duration
	logger   *zap.Logger
}

// NewTranscriptionController creates a new transcription controller.
// replays may be nil, in which case Idempotency-Key is ignored.
func NewTranscriptionController(
	pipeline TranscriptionRunner,
	repo repositories.MeetingRecordingRepository,
	replays cache.Store,
	ttl time.Duration,
	logger *zap.Logger,
) *TranscriptionController {
	return &TranscriptionController{
		pipeline: pipeline,
		repo:     repo,
		replays:  replays,
		ttl:      ttl,
		logger:   logger,
	}
}

// UploadAndTranscribe runs the transcription pipeline on an uploaded recording
// @Summary      Upload and transcribe a meeting recording
// @Description  Transcribes an audio file, summarizes it and extracts action items. Numeric meeting ids are saved.
// @Tags         Transcriptions
// @Accept       multipart/form-data
// @Produce      json
// @Param        audioFile        formData  file    true   "Audio file (.webm, .wav, .mp3), max 25MB"
// @Param        meetingId        formData  string  false  "Meeting (booking) id"
// @Param        userId           formData  string  false  "User id"
// @Param        userName         formData  string  false  "User display name"
// @Param        Idempotency-Key  header    string  false  "Replays a previous result for the same user and key"
// @Success      200  {object}  transcription.UploadResponse
// @Failure      400  {object}  common.ErrorResponse  "Empty, oversized or unsupported audio"
// @Failure      502  {object}  common.ErrorResponse  "Speech-to-text service rejected the request"
// @Failure      503  {object}  common.ErrorResponse  "Speech-to-text service unavailable"
// @Failure      504  {object}  common.ErrorResponse  "Request cancelled or timed out"
// @Router       /transcriptions/upload-and-transcribe [post]
func (tc *TranscriptionController) UploadAndTranscribe(c echo.Context) error {
	var req dto.UploadRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(tc.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(tc.logger, c, errors.ErrInvalidArgument(err.Error()))
	}
	req.MeetingID = strings.TrimSpace(req.MeetingID)
	req.ApplyDefaults()

	ctx := c.Request().Context()
	replayKey := tc.replayKey(c, req.UserID)
	if replayKey != "" {
		if resp, ok := tc.lookupReplay(ctx, replayKey); ok {
			c.Response().Header().Set(HeaderIdempotentReplay, "true")
			return c.JSON(http.StatusOK, resp)
		}
	}

	audio, err := readAudio(c)
	if err != nil {
		return HandleError(tc.logger, c, err)
	}

	result, err := tc.pipeline.Run(ctx, entities.TranscriptionRequest{
		Audio:     audio,
		MeetingID: req.MeetingID,
		UserID:    req.UserID,
		UserName:  req.UserName,
	})
	if err != nil {
		return HandleError(tc.logger, c, err)
	}

	resp := presenter.ToUploadResponse(result)
	if replayKey != "" {
		tc.storeReplay(ctx, replayKey, resp)
	}

	if tc.logger != nil {
		tc.logger.Info("transcription completed",
			zap.String("request_id", getRequestID(c)),
			zap.String("meeting_id", req.MeetingID),
			zap.Bool("simulated", resp.Simulated),
			zap.Bool("saved", resp.Persistence.Saved),
		)
	}
	return c.JSON(http.StatusOK, resp)
}

// ListUserRecordings lists the caller's stored recordings
// @Summary      List a user's recordings
// @Description  Returns the recordings of the calling user, newest first
// @Tags         Transcriptions
// @Produce      json
// @Param        userId     path    string  true  "User id"
// @Param        X-User-ID  header  string  true  "Caller identity"
// @Success      200  {object}  transcription.RecordingListResponse
// @Failure      401  {object}  common.ErrorResponse  "Caller not identified"
// @Failure      403  {object}  common.ErrorResponse  "Listing another user's recordings"
// @Router       /transcriptions/user/{userId}/recordings [get]
func (tc *TranscriptionController) ListUserRecordings(c echo.Context) error {
	var req dto.ListRecordingsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(tc.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(tc.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	callerID, _ := httpmw.GetCallerID(c)
	if callerID != req.UserID {
		return HandleError(tc.logger, c, errors.ErrPermissionDenied("cannot access another user's recordings"))
	}

	recs, err := tc.repo.ListByUser(c.Request().Context(), req.UserID)
	if err != nil {
		return HandleError(tc.logger, c, errors.ErrDBQueryFailed("list_recordings", err))
	}
	return HandleSuccess(tc.logger, c, presenter.ToRecordingListResponse(recs))
}

// GetMeetingTranscription returns the caller's latest transcription for a meeting
// @Summary      Get a meeting transcription
// @Description  Returns the latest stored transcription of the meeting for the calling user
// @Tags         Transcriptions
// @Produce      json
// @Param        meetingId  path    string  true  "Meeting (booking) id"
// @Param        X-User-ID  header  string  true  "Caller identity"
// @Success      200  {object}  transcription.RecordingResponse
// @Failure      400  {object}  common.ErrorResponse  "Meeting id is not numeric"
// @Failure      401  {object}  common.ErrorResponse  "Caller not identified"
// @Failure      404  {object}  common.ErrorResponse  "No transcription stored"
// @Router       /transcriptions/meeting/{meetingId}/transcription [get]
func (tc *TranscriptionController) GetMeetingTranscription(c echo.Context) error {
	var req dto.GetTranscriptionRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(tc.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(tc.logger, c, errors.ErrInvalidArgument("meetingId must be numeric"))
	}
	bookingID, ok := entities.ParseBookingID(req.MeetingID)
	if !ok {
		return HandleError(tc.logger, c, errors.ErrInvalidArgument("meetingId must be numeric"))
	}

	callerID, _ := httpmw.GetCallerID(c)
	rec, err := tc.repo.FindByBookingAndUser(c.Request().Context(), bookingID, callerID)
	if err != nil {
		return HandleError(tc.logger, c, errors.ErrDBQueryFailed("find_recording", err))
	}
	if rec == nil {
		return HandleError(tc.logger, c, errors.ErrNotFound("Transcription"))
	}
	return HandleSuccess(tc.logger, c, presenter.ToRecordingResponse(rec))
}

// readAudio buffers the uploaded file. A missing part yields empty audio so
// the pipeline reports it; reads stop one byte past the ceiling.
func readAudio(c echo.Context) (entities.UploadedAudio, error) {
	fh, err := c.FormFile(audioFormField)
	if err != nil {
		if stdErrors.Is(err, http.ErrMissingFile) || stdErrors.Is(err, http.ErrNotMultipart) {
			return entities.UploadedAudio{}, nil
		}
		return entities.UploadedAudio{}, errors.ErrInvalidPayload()
	}

	f, err := fh.Open()
	if err != nil {
		return entities.UploadedAudio{}, errors.ErrInternal(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, transcription.MaxAudioBytes+1))
	if err != nil {
		return entities.UploadedAudio{}, errors.ErrInternal(err)
	}

	return entities.UploadedAudio{
		Data:        data,
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
	}, nil
}

func (tc *TranscriptionController) replayKey(c echo.Context, userID string) string {
	if tc.replays == nil {
		return ""
	}
	key := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
	if key == "" {
		return ""
	}
	return "upload:" + userID + ":" + key
}

func (tc *TranscriptionController) lookupReplay(ctx context.Context, key string) (*dto.UploadResponse, bool) {
	raw, ok, err := tc.replays.Get(ctx, key)
	if err != nil {
		if tc.logger != nil {
			tc.logger.Warn("replay lookup failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var resp dto.UploadResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (tc *TranscriptionController) storeReplay(ctx context.Context, key string, resp *dto.UploadResponse) {
	raw, err := json.Marshal(resp)
	if err == nil {
		err = tc.replays.Set(ctx, key, string(raw), tc.ttl)
	}
	if err != nil && tc.logger != nil {
		tc.logger.Warn("failed to store upload replay", zap.String("key", key), zap.Error(err))
	}
}
