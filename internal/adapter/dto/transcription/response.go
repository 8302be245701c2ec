package transcription

import "time"

// PersistenceResponse reports what happened to the database write.
type PersistenceResponse struct {
	Attempted   bool   `json:"attempted"`
	Saved       bool   `json:"saved"`
	RecordingID uint   `json:"recording_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

// UploadResponse is returned by POST /transcriptions/upload-and-transcribe
type UploadResponse struct {
	Success       bool                `json:"success"`
	Message       string              `json:"message"`
	Transcription string              `json:"transcription"`
	Summary       string              `json:"summary"`
	ActionPoints  []string            `json:"actionPoints"`
	Simulated     bool                `json:"simulated"`
	Timestamp     time.Time           `json:"timestamp"`
	Persistence   PersistenceResponse `json:"persistence"`
}

// RecordingResponse is one stored meeting recording.
type RecordingResponse struct {
	ID              uint      `json:"id"`
	BookingID       int       `json:"bookingId"`
	UserID          string    `json:"userId"`
	UserName        string    `json:"userName"`
	FileName        string    `json:"fileName"`
	FileSizeBytes   int64     `json:"fileSizeBytes"`
	DurationSeconds int       `json:"durationSeconds"`
	Transcription   string    `json:"transcription"`
	Summary         string    `json:"summary"`
	KeyPoints       []string  `json:"keyPoints"`
	CreatedAt       time.Time `json:"createdAt"`
}

// RecordingListResponse wraps a user's recordings.
type RecordingListResponse struct {
	Recordings []*RecordingResponse `json:"recordings"`
	Total      int                  `json:"total"`
}
