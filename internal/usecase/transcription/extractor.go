package transcription

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/innoviahub/meeting-transcription/internal/domain/entities"
	pkgai "github.com/innoviahub/meeting-transcription/pkg/ai"
)

const (
	summaryMaxTokens   = 300
	summaryTemperature = 0.2

	summarySystemPrompt = "You are an assistant that summarizes meeting transcripts. " +
		"Reply with a short, factual summary in plain sentences, followed by the action items " +
		"as a JSON array of strings, for example: [\"First action\", \"Second action\"]. " +
		"Do not use emojis, icons, arrows or any other decorative symbols."

	summaryUserPrompt = "Summarize the following meeting transcript and list its action items.\n\nTranscript:\n%s"
)

// ChatCompleter is the chat-completion upstream used for summaries.
type ChatCompleter interface {
	Complete(ctx context.Context, req pkgai.ChatRequest) (string, error)
}

// SummaryExtractor turns a transcript into a summary and ordered action items.
// It never fails: upstream problems degrade to an empty outcome.
type SummaryExtractor struct {
	chat   ChatCompleter
	parser *Parser
	logger *zap.Logger
}

// NewSummaryExtractor creates a new SummaryExtractor
func NewSummaryExtractor(chat ChatCompleter, logger *zap.Logger) *SummaryExtractor {
	return &SummaryExtractor{
		chat:   chat,
		parser: NewParser(),
		logger: logger,
	}
}

// BuildSummaryRequest returns the chat request sent for a transcript.
func BuildSummaryRequest(transcript string) pkgai.ChatRequest {
	return pkgai.ChatRequest{
		Model: pkgai.ChatModel,
		Messages: []pkgai.ChatMessage{
			{Role: "system", Content: summarySystemPrompt},
			{Role: "user", Content: fmt.Sprintf(summaryUserPrompt, transcript)},
		},
		MaxTokens:   summaryMaxTokens,
		Temperature: summaryTemperature,
	}
}

// Extract summarizes transcript. A blank transcript (silent audio) is not sent
// upstream and yields an empty summary with no action items.
func (e *SummaryExtractor) Extract(ctx context.Context, transcript string) entities.ExtractionOutcome {
	empty := entities.ExtractionOutcome{ActionItems: []string{}}

	if strings.TrimSpace(transcript) == "" {
		if e.logger != nil {
			e.logger.Info("transcript is empty, skipping summary")
		}
		return empty
	}

	reply, err := e.chat.Complete(ctx, BuildSummaryRequest(transcript))
	if err != nil {
		if e.logger != nil {
			e.logger.Error("summary generation failed, continuing without summary",
				zap.Error(err),
			)
		}
		return empty
	}

	summary, actions, err := e.parser.ParseHybridReply(reply)
	if err != nil && e.logger != nil {
		e.logger.Warn("could not parse action items from summary reply",
			zap.Error(err),
			zap.Int("reply_length", len(reply)),
		)
	}

	return entities.ExtractionOutcome{
		Summary:     StripDecorativeGlyphs(summary),
		ActionItems: sanitizeAll(actions),
	}
}
