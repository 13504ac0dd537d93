// History summarization for context compaction.
//
// When the conversation log outgrows its token budget, the oldest
// messages are condensed into a single summary message by asking the
// engine itself for a task-resumption summary.

package llm

import (
	"context"
	"fmt"
	"strings"
)

const summaryInstruction = `Summarize the conversation transcript below so the assistant can resume the task without the full history. Capture, in order:
1. What the user is trying to accomplish.
2. Spreadsheet operations already performed and their results.
3. Any decisions the user made (confirmations, denials, corrections).
4. What remains to be done.
Be concise and factual. Output only the summary.`

// Summarizer condenses evicted conversation history into a short summary.
type Summarizer struct {
	engine Engine
}

// NewSummarizer creates a summarizer backed by the given engine.
func NewSummarizer(engine Engine) *Summarizer {
	return &Summarizer{engine: engine}
}

// Summarize asks the engine for a task-resumption summary of the
// transcript. Returns an error on engine failure or empty output; the
// caller is expected to substitute a placeholder.
func (s *Summarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	req := Request{
		Messages: []Message{
			UserText(summaryInstruction + "\n\n<transcript>\n" + transcript + "\n</transcript>"),
		},
	}

	resp, err := s.engine.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Blocks {
		if t, ok := block.(TextBlock); ok {
			out.WriteString(t.Text)
		}
	}

	summary := strings.TrimSpace(out.String())
	if summary == "" {
		return "", fmt.Errorf("summarization returned empty output")
	}
	return summary, nil
}
