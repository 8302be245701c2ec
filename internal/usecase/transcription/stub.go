package transcription

import (
	"context"
	"fmt"
	"time"

	"github.com/innoviahub/meeting-transcription/internal/domain/entities"
)

// DefaultStubDelay models upstream latency when no credential is configured.
const DefaultStubDelay = 2 * time.Second

const stubSummary = "Simulated summary: the team reviewed project status, agreed on next steps and assigned follow-up tasks."

var stubActionItems = []string{
	"Finish the design document by Friday",
	"Book a follow-up meeting next week",
	"Contact external vendors for quotes",
	"Update the project plan with the new requirements",
	"Prepare the board presentation",
}

// StubBackend returns fixed, clearly labelled placeholder results without any network call.
type StubBackend struct {
	delay time.Duration
}

// NewStubBackend creates a stub backend that waits delay before answering.
func NewStubBackend(delay time.Duration) *StubBackend {
	if delay < 0 {
		delay = 0
	}
	return &StubBackend{delay: delay}
}

// Transcribe waits for the configured delay and returns placeholder text naming fileName.
func (s *StubBackend) Transcribe(ctx context.Context, _ []byte, fileName string) (string, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Sprintf("[SIMULATED TRANSCRIPT] No speech-to-text service is configured. "+
		"This placeholder stands in for the transcript of %q and is not a real AI result.", fileName), nil
}

// Extract returns the fixed summary and action items.
func (s *StubBackend) Extract(context.Context, string) entities.ExtractionOutcome {
	items := make([]string, len(stubActionItems))
	copy(items, stubActionItems)
	return entities.ExtractionOutcome{
		Summary:     stubSummary,
		ActionItems: items,
	}
}
