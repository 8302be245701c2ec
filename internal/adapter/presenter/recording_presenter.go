package presenter

import (
	"github.com/innoviahub/meeting-transcription/internal/adapter/dto/transcription"
	"github.com/innoviahub/meeting-transcription/internal/domain/entities"
)

// ToUploadResponse converts a pipeline result to the upload response DTO
func ToUploadResponse(r *entities.PipelineResult) *transcription.UploadResponse {
	if r == nil {
		return nil
	}

	actions := r.ActionItems
	if actions == nil {
		actions = []string{}
	}

	return &transcription.UploadResponse{
		Success:       r.Success,
		Message:       r.Message,
		Transcription: r.Transcript,
		Summary:       r.Summary,
		ActionPoints:  actions,
		Simulated:     r.Simulated,
		Timestamp:     r.CompletedAt,
		Persistence: transcription.PersistenceResponse{
			Attempted:   r.Persistence.Attempted,
			Saved:       r.Persistence.Saved,
			RecordingID: r.Persistence.RecordingID,
			Error:       r.Persistence.Error,
		},
	}
}

// ToRecordingResponse converts a MeetingRecording entity to its DTO.
// Stored action items are split back into a list.
func ToRecordingResponse(rec *entities.MeetingRecording) *transcription.RecordingResponse {
	if rec == nil {
		return nil
	}

	return &transcription.RecordingResponse{
		ID:              rec.ID,
		BookingID:       rec.BookingID,
		UserID:          rec.UserID,
		UserName:        rec.UserName,
		FileName:        rec.FileName,
		FileSizeBytes:   rec.FileSizeBytes,
		DurationSeconds: rec.DurationSeconds,
		Transcription:   rec.Transcription,
		Summary:         rec.Summary,
		KeyPoints:       rec.ActionItems(),
		CreatedAt:       rec.CreatedAt,
	}
}

// ToRecordingListResponse converts a slice of recordings
func ToRecordingListResponse(recs []entities.MeetingRecording) *transcription.RecordingListResponse {
	out := make([]*transcription.RecordingResponse, len(recs))
	for i := range recs {
		out[i] = ToRecordingResponse(&recs[i])
	}
	return &transcription.RecordingListResponse{
		Recordings: out,
		Total:      len(out),
	}
}
