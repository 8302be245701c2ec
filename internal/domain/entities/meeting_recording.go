package entities

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// ActionItemDelimiter separates action items in MeetingRecording.KeyPoints.
// An action item containing this character cannot be restored faithfully.
const ActionItemDelimiter = ";"

// MeetingRecording is the durable record of one completed pipeline run.
// BookingID references a booking owned elsewhere; no foreign key is enforced here.
type MeetingRecording struct {
	ID              uint              `json:"id" gorm:"primaryKey;autoIncrement"`
	BookingID       int               `json:"booking_id" gorm:"type:integer;not null;index:idx_meeting_recordings_booking_user,priority:1"`
	UserID          string            `json:"user_id" gorm:"type:varchar(64);not null;index:idx_meeting_recordings_booking_user,priority:2;index"`
	UserName        string            `json:"user_name" gorm:"type:varchar(255)"`
	FileName        string            `json:"file_name" gorm:"type:varchar(255);not null"`
	FileSizeBytes   int64             `json:"file_size_bytes" gorm:"not null;default:0"`
	DurationSeconds int               `json:"duration_seconds" gorm:"not null;default:0"`
	Transcription   string            `json:"transcription" gorm:"type:text"`
	Summary         string            `json:"summary" gorm:"type:text"`
	KeyPoints       string            `json:"key_points" gorm:"type:text"`
	Metadata        datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ParseBookingID parses a meeting id into the 32-bit booking_id column range.
// Surrounding whitespace is ignored.
func ParseBookingID(meetingID string) (int, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(meetingID), 10, 32)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// TableName specifies the table name for GORM
func (MeetingRecording) TableName() string {
	return "meeting_recordings"
}

// JoinActionItems serializes action items for the KeyPoints column.
func JoinActionItems(items []string) string {
	return strings.Join(items, ActionItemDelimiter)
}

// SplitActionItems restores action items from the KeyPoints column, dropping empty entries.
func SplitActionItems(keyPoints string) []string {
	parts := strings.Split(keyPoints, ActionItemDelimiter)
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

// ActionItems returns the stored action items in order.
func (m *MeetingRecording) ActionItems() []string {
	return SplitActionItems(m.KeyPoints)
}
