// Package llm provides the reasoning-engine abstraction for the agent.
//
// Information Hiding:
// - Provider wire formats hidden behind the Engine interface
// - Content is modeled as a closed set of block variants so the
//   compaction and dispatch layers can match exhaustively
package llm

import "encoding/json"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentBlock is a closed tagged union: TextBlock, ToolUseBlock, or
// ToolResultBlock. No other implementations exist; switch statements over
// the concrete types can treat an unknown variant as a protocol violation.
type ContentBlock interface {
	blockTag() string
}

// TextBlock is plain natural-language content.
type TextBlock struct {
	Text string `json:"text"`
}

// ToolUseBlock is a tool invocation requested by the engine.
type ToolUseBlock struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ToolResultBlock is the outcome returned to the engine for a prior
// ToolUseBlock. ToolUseID must match the invocation's ID; the wire
// protocol requires each pair to be contiguous and correctly matched.
type ToolResultBlock struct {
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error"`
}

func (TextBlock) blockTag() string       { return "text" }
func (ToolUseBlock) blockTag() string    { return "tool_use" }
func (ToolResultBlock) blockTag() string { return "tool_result" }

// Message is one entry in a conversation log. Immutable once appended;
// ordering is conversation order.
type Message struct {
	Role   Role
	Blocks []ContentBlock
}

// UserText creates a user message containing a single text block.
func UserText(text string) Message {
	return Message{Role: RoleUser, Blocks: []ContentBlock{TextBlock{Text: text}}}
}

// AssistantText creates an assistant message containing a single text block.
func AssistantText(text string) Message {
	return Message{Role: RoleAssistant, Blocks: []ContentBlock{TextBlock{Text: text}}}
}

// Text concatenates the message's text blocks.
func (m Message) Text() string {
	out := ""
	for _, b := range m.Blocks {
		if t, ok := b.(TextBlock); ok {
			out += t.Text
		}
	}
	return out
}

// StopReason reports why the engine stopped producing output.
type StopReason string

const (
	// StopEndTurn means the engine considers the turn complete.
	StopEndTurn StopReason = "end_turn"
	// StopToolUse means the engine is waiting for tool outcomes.
	StopToolUse StopReason = "tool_use"
	// StopMaxTokens means output was truncated by the token limit.
	StopMaxTokens StopReason = "max_tokens"
)

// ToolDefinition describes a callable tool advertised to the engine.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

// TokenUsage contains token usage statistics for one completion.
type TokenUsage struct {
	PromptTokens     uint32
	CompletionTokens uint32
	TotalTokens      uint32
}

// Request is a single completion request to the engine.
type Request struct {
	System   string
	Messages []Message
	Tools    []ToolDefinition
}

// Response is the engine's reply: zero or more content blocks plus the
// stop reason. Tool invocations, when present, trail any text blocks.
type Response struct {
	Blocks     []ContentBlock
	StopReason StopReason
	Usage      *TokenUsage
}
