package entities

import "time"

// UploadedAudio is an audio upload as received from the caller. It is owned by one request.
type UploadedAudio struct {
	Data        []byte
	FileName    string
	ContentType string
	Size        int64
}

// ExtractionOutcome is the summarization result. ActionItems keeps the order
// returned by the model and may contain duplicates.
type ExtractionOutcome struct {
	Summary     string
	ActionItems []string
}

// PipelineStage is a state of one pipeline run
type PipelineStage string

const (
	StageValidating   PipelineStage = "validating"
	StageTranscribing PipelineStage = "transcribing"
	StageSummarizing  PipelineStage = "summarizing"
	StagePersisting   PipelineStage = "persisting"
	StageDone         PipelineStage = "done"
	StageFailed       PipelineStage = "failed"
)

// PersistenceReport describes what happened to the durable write of a run.
type PersistenceReport struct {
	Attempted   bool   `json:"attempted"`
	Saved       bool   `json:"saved"`
	RecordingID uint   `json:"recording_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

// PipelineResult is returned to the caller whenever transcription succeeded,
// including when the write failed.
type PipelineResult struct {
	Transcript  string
	Summary     string
	ActionItems []string
	Success     bool
	Message     string
	Simulated   bool
	Persistence PersistenceReport
	CompletedAt time.Time
}

// TranscriptionRequest carries the caller-supplied inputs of a pipeline run.
type TranscriptionRequest struct {
	Audio     UploadedAudio
	MeetingID string
	UserID    string
	UserName  string
}
