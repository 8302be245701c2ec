package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/innoviahub/meeting-transcription/internal/domain/entities"
	"github.com/innoviahub/meeting-transcription/internal/domain/repositories"
)

// MeetingRecordingRepository handles meeting recording data operations
type MeetingRecordingRepository struct {
	db *gorm.DB
}

var _ repositories.MeetingRecordingRepository = (*MeetingRecordingRepository)(nil)

// NewMeetingRecordingRepository creates a new meeting recording repository
func NewMeetingRecordingRepository(db *gorm.DB) *MeetingRecordingRepository {
	return &MeetingRecordingRepository{db: db}
}

// Create inserts a new meeting recording
func (r *MeetingRecordingRepository) Create(ctx context.Context, recording *entities.MeetingRecording) error {
	if recording == nil {
		return errors.New("recording cannot be nil")
	}
	if recording.ID != 0 {
		return errors.New("recording is already persisted")
	}
	return r.db.WithContext(ctx).Create(recording).Error
}

// ListByUser retrieves all recordings of a user, newest first
func (r *MeetingRecordingRepository) ListByUser(ctx context.Context, userID string) ([]entities.MeetingRecording, error) {
	var recordings []entities.MeetingRecording
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&recordings).Error; err != nil {
		return nil, err
	}
	return recordings, nil
}

// FindByBookingAndUser retrieves the most recent recording of a booking for a user
func (r *MeetingRecordingRepository) FindByBookingAndUser(ctx context.Context, bookingID int, userID string) (*entities.MeetingRecording, error) {
	var recording entities.MeetingRecording
	if err := r.db.WithContext(ctx).
		Where("booking_id = ? AND user_id = ?", bookingID, userID).
		Order("created_at DESC").
		Order("id DESC").
		First(&recording).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &recording, nil
}
