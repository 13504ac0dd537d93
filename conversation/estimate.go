// Deterministic token-size estimation.
//
// This is a cheap heuristic, not a tokenizer: a fixed per-block overhead
// plus one token per four bytes of text-bearing payload. Only its
// monotonicity in payload length matters; callers must not treat it as
// an exact oracle.

package conversation

import "github.com/richinex/gridagent/llm"

// blockOverhead approximates the structural cost of one content block
// (role markers, block framing, ids).
const blockOverhead = 8

func estimateText(s string) int {
	return (len(s) + 3) / 4
}

// EstimateBlock estimates the token footprint of one content block.
func EstimateBlock(b llm.ContentBlock) int {
	switch block := b.(type) {
	case llm.TextBlock:
		return blockOverhead + estimateText(block.Text)
	case llm.ToolUseBlock:
		return blockOverhead + estimateText(block.Name) + estimateText(string(block.Input))
	case llm.ToolResultBlock:
		return blockOverhead + estimateText(block.Content)
	default:
		return blockOverhead
	}
}

// EstimateMessage estimates the token footprint of one message.
func EstimateMessage(m llm.Message) int {
	total := 0
	for _, b := range m.Blocks {
		total += EstimateBlock(b)
	}
	return total
}

// EstimateMessages estimates the total token footprint of a message log.
func EstimateMessages(msgs []llm.Message) int {
	total := 0
	for _, m := range msgs {
		total += EstimateMessage(m)
	}
	return total
}
