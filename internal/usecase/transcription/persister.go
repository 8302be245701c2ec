package transcription

import (
	"context"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/innoviahub/meeting-transcription/errors"
	"github.com/innoviahub/meeting-transcription/internal/domain/entities"
	"github.com/innoviahub/meeting-transcription/internal/domain/repositories"
)

// TranscriptArchiver copies a persisted recording to secondary storage.
type TranscriptArchiver interface {
	ArchiveTranscript(ctx context.Context, recording *entities.MeetingRecording) error
}

// PersistInput is everything needed to build one MeetingRecording.
type PersistInput struct {
	BookingID  int
	UserID     string
	UserName   string
	FileName   string
	FileSize   int64
	Transcript string
	Extraction entities.ExtractionOutcome
	Metadata   map[string]interface{}
}

// ResultPersister writes one MeetingRecording per call.
type ResultPersister struct {
	repo     repositories.MeetingRecordingRepository
	archiver TranscriptArchiver
	now      func() time.Time
	logger   *zap.Logger
}

// NewResultPersister creates a persister. archiver may be nil.
func NewResultPersister(repo repositories.MeetingRecordingRepository, archiver TranscriptArchiver, logger *zap.Logger) *ResultPersister {
	return &ResultPersister{
		repo:     repo,
		archiver: archiver,
		now:      time.Now,
		logger:   logger,
	}
}

// BuildRecording maps input to a new, unsaved record stamped with now in UTC.
func BuildRecording(in PersistInput, now time.Time) *entities.MeetingRecording {
	ts := now.UTC()
	return &entities.MeetingRecording{
		BookingID:       in.BookingID,
		UserID:          in.UserID,
		UserName:        in.UserName,
		FileName:        in.FileName,
		FileSizeBytes:   in.FileSize,
		DurationSeconds: 0,
		Transcription:   in.Transcript,
		Summary:         in.Extraction.Summary,
		KeyPoints:       entities.JoinActionItems(in.Extraction.ActionItems),
		Metadata:        in.Metadata,
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
}

// Persist inserts the record. A failed insert is logged and returned as a
// PERSISTENCE_FAILED AppError wrapping the store error.
// Archiving runs after a successful insert and never fails the call.
func (p *ResultPersister) Persist(ctx context.Context, in PersistInput) (*entities.MeetingRecording, error) {
	rec := BuildRecording(in, p.now())

	if err := p.repo.Create(ctx, rec); err != nil {
		if p.logger != nil {
			p.logger.Error("failed to save meeting recording",
				zap.Int("booking_id", in.BookingID),
				zap.String("user_id", in.UserID),
				zap.Error(err),
			)
		}
		return nil, apperrors.ErrPersistenceFailed(err)
	}

	if p.logger != nil {
		p.logger.Info("meeting recording saved",
			zap.Uint("recording_id", rec.ID),
			zap.Int("booking_id", rec.BookingID),
			zap.Int("action_items", len(in.Extraction.ActionItems)),
		)
	}

	if p.archiver != nil {
		if err := p.archiver.ArchiveTranscript(ctx, rec); err != nil && p.logger != nil {
			p.logger.Warn("failed to archive transcript",
				zap.Uint("recording_id", rec.ID),
				zap.Error(err),
			)
		}
	}

	return rec, nil
}
