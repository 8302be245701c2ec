package transcription

// Defaults applied when the upload form omits the caller identity.
const (
	AnonymousUserID   = "12345678-1234-1234-1234-123456789012"
	AnonymousUserName = "Test User"
)

// UploadRequest holds the text fields of the multipart upload form.
// The audio itself is read from the audioFile part.
type UploadRequest struct {
	MeetingID string `form:"meetingId" validate:"max=64"`
	UserID    string `form:"userId" validate:"omitempty,max=64"`
	UserName  string `form:"userName" validate:"omitempty,max=255"`
}

// ApplyDefaults fills the anonymous identity for missing fields.
func (r *UploadRequest) ApplyDefaults() {
	if r.UserID == "" {
		r.UserID = AnonymousUserID
	}
	if r.UserName == "" {
		r.UserName = AnonymousUserName
	}
}

// ListRecordingsRequest binds GET /transcriptions/user/:userId/recordings
type ListRecordingsRequest struct {
	UserID string `param:"userId" validate:"required,max=64"`
}

// GetTranscriptionRequest binds GET /transcriptions/meeting/:meetingId/transcription
type GetTranscriptionRequest struct {
	MeetingID string `param:"meetingId" validate:"required,numeric"`
}
