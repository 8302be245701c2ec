package transcription

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parser splits assistant replies of the form `<summary prose> ["item", ...]`.
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// ParseHybridReply splits reply at its first '['. Text before it is the
// summary; the rest must be a JSON array of strings. A summary that itself
// contains '[' is cut short at that point.
//
// On a malformed array the summary is still returned together with a non-nil
// error and an empty action list.
func (p *Parser) ParseHybridReply(reply string) (summary string, actions []string, err error) {
	idx := strings.Index(reply, "[")
	if idx < 0 {
		return reply, []string{}, nil
	}

	summary = strings.TrimSpace(reply[:idx])
	fragment := reply[idx:]

	var items []string
	if jsonErr := json.Unmarshal([]byte(fragment), &items); jsonErr != nil {
		return summary, []string{}, fmt.Errorf("failed to parse action items: %w", jsonErr)
	}
	if items == nil {
		items = []string{}
	}
	return summary, items, nil
}
