// Context compaction: bound the token footprint of the history
// presented to the engine while preserving the invocation/outcome
// pairing invariant.
//
// Strategy: keep the newest suffix that fits the budget, re-validate its
// pairing, and condense the evicted prefix into one synthetic summary
// message. Compaction never fails the caller: when summarization fails,
// a deterministic placeholder stands in for the summary.

package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/richinex/gridagent/llm"
)

// Summarizer condenses evicted history into a short resumption summary.
// Implemented by llm.Summarizer.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Compactor produces the budget-bounded view of a message log.
type Compactor struct {
	// Budget is the token budget for the view, i.e. the context limit
	// minus the response reserve.
	Budget int
	// SummaryBudget bounds how much of the evicted prefix is fed to
	// the summarizer. The same amount is reserved out of Budget for the
	// summary message itself.
	SummaryBudget int
	// Summarizer may be nil, in which case the placeholder is used.
	Summarizer Summarizer
	Logger     *slog.Logger
}

func (c *Compactor) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// ForAPI returns either the full log, when it fits the budget, or a
// compacted view: an optional summary message followed by the validated
// newest suffix.
func (c *Compactor) ForAPI(ctx context.Context, messages []llm.Message) []llm.Message {
	if EstimateMessages(messages) <= c.Budget {
		return messages
	}

	// Walk newest to oldest, stopping at the first message that would
	// overflow the budget. Room is reserved for the synthetic summary so
	// the returned view, summary included, stays within Budget.
	walkBudget := c.Budget - c.SummaryBudget
	if walkBudget <= 0 {
		walkBudget = c.Budget
	}
	keepFrom := len(messages)
	running := 0
	for i := len(messages) - 1; i >= 0; i-- {
		size := EstimateMessage(messages[i])
		if running+size > walkBudget {
			break
		}
		running += size
		keepFrom = i
	}

	suffix := c.repairPairing(messages[keepFrom:])
	prefix := messages[:keepFrom]
	if len(prefix) == 0 {
		return suffix
	}

	summary := c.summarizePrefix(ctx, prefix)
	c.logger().Info("compacted conversation history",
		"evicted", len(prefix), "kept", len(suffix))

	return append([]llm.Message{summary}, suffix...)
}

// repairPairing drops tool invocations without an immediately-following
// matched outcome and outcomes without an immediately-preceding matched
// invocation. Text blocks are always kept; messages left empty are
// dropped.
func (c *Compactor) repairPairing(messages []llm.Message) []llm.Message {
	hasUse := func(i int, id string) bool {
		if i < 0 || i >= len(messages) {
			return false
		}
		for _, b := range messages[i].Blocks {
			if u, ok := b.(llm.ToolUseBlock); ok && u.ID == id {
				return true
			}
		}
		return false
	}
	hasResult := func(i int, id string) bool {
		if i < 0 || i >= len(messages) {
			return false
		}
		for _, b := range messages[i].Blocks {
			if r, ok := b.(llm.ToolResultBlock); ok && r.ToolUseID == id {
				return true
			}
		}
		return false
	}

	var repaired []llm.Message
	for i, msg := range messages {
		var kept []llm.ContentBlock
		for _, block := range msg.Blocks {
			switch b := block.(type) {
			case llm.TextBlock:
				kept = append(kept, b)
			case llm.ToolUseBlock:
				// An invocation must be followed by its outcome in the
				// same or the next message.
				if hasResult(i, b.ID) || hasResult(i+1, b.ID) {
					kept = append(kept, b)
				} else {
					c.logger().Warn("dropping unmatched tool invocation",
						"invocation_id", b.ID, "tool", b.Name)
				}
			case llm.ToolResultBlock:
				if hasUse(i, b.ToolUseID) || hasUse(i-1, b.ToolUseID) {
					kept = append(kept, b)
				} else {
					c.logger().Warn("dropping orphaned tool outcome",
						"invocation_id", b.ToolUseID)
				}
			default:
				// ContentBlock is a closed union; anything else is a
				// protocol violation and is dropped, never surfaced.
				c.logger().Warn("dropping unrecognized content block")
			}
		}
		if len(kept) > 0 {
			repaired = append(repaired, llm.Message{Role: msg.Role, Blocks: kept})
		}
	}
	return repaired
}

// summarizePrefix condenses the evicted prefix into a single synthetic
// user message. Only the newest evicted messages that fit the summary
// sub-budget are given to the summarizer.
func (c *Compactor) summarizePrefix(ctx context.Context, prefix []llm.Message) llm.Message {
	placeholder := fmt.Sprintf(
		"[Context note: %d earlier messages were removed to fit the context window.]",
		len(prefix))

	if c.Summarizer == nil {
		return llm.UserText(placeholder)
	}

	from := len(prefix)
	running := 0
	for i := len(prefix) - 1; i >= 0; i-- {
		size := EstimateMessage(prefix[i])
		if running+size > c.SummaryBudget {
			break
		}
		running += size
		from = i
	}
	transcript := renderTranscript(prefix[from:])
	if transcript == "" {
		return llm.UserText(placeholder)
	}

	summary, err := c.Summarizer.Summarize(ctx, transcript)
	if err != nil {
		c.logger().Warn("history summarization failed, using placeholder", "error", err)
		return llm.UserText(placeholder)
	}

	return llm.UserText(fmt.Sprintf(
		"[Summary of %d earlier messages]\n%s", len(prefix), summary))
}

// renderTranscript flattens messages into a plain-text transcript for
// the summarization request.
func renderTranscript(messages []llm.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		for _, block := range msg.Blocks {
			switch v := block.(type) {
			case llm.TextBlock:
				fmt.Fprintf(&b, "%s: %s\n", msg.Role, v.Text)
			case llm.ToolUseBlock:
				fmt.Fprintf(&b, "%s invoked %s(%s)\n", msg.Role, v.Name, string(v.Input))
			case llm.ToolResultBlock:
				status := "result"
				if v.IsError {
					status = "error"
				}
				fmt.Fprintf(&b, "tool %s: %s\n", status, v.Content)
			}
		}
	}
	return strings.TrimSpace(b.String())
}
