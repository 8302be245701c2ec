package repositories

import (
	"context"

	"github.com/innoviahub/meeting-transcription/internal/domain/entities"
)

// MeetingRecordingRepository defines persistence for completed pipeline runs.
// Records are insert-only; there is no update or delete path.
type MeetingRecordingRepository interface {
	Create(ctx context.Context, recording *entities.MeetingRecording) error
	ListByUser(ctx context.Context, userID string) ([]entities.MeetingRecording, error)
	// FindByBookingAndUser returns nil, nil when no record exists.
	FindByBookingAndUser(ctx context.Context, bookingID int, userID string) (*entities.MeetingRecording, error)
}
