package llm

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"
)

func TestConvertToAnthropicMessagesMergesSameRole(t *testing.T) {
	messages := []Message{
		UserText("read A1"),
		{Role: RoleAssistant, Blocks: []ContentBlock{
			ToolUseBlock{ID: "r1", Name: "read_range", Input: []byte(`{"range":"A1"}`)},
		}},
		{Role: RoleUser, Blocks: []ContentBlock{
			ToolResultBlock{ToolUseID: "r1", Content: "Range A1 is empty."},
		}},
		UserText("What next?"),
	}

	got := convertToAnthropicMessages(messages)

	if len(got) != 3 {
		t.Fatalf("expected 3 merged messages, got %d", len(got))
	}
	if got[0].Role != anthropic.MessageParamRoleUser {
		t.Errorf("first message role = %v", got[0].Role)
	}
	if got[1].Role != anthropic.MessageParamRoleAssistant {
		t.Errorf("second message role = %v", got[1].Role)
	}
	// Consecutive user messages collapse into one with both blocks.
	if got[2].Role != anthropic.MessageParamRoleUser {
		t.Errorf("third message role = %v", got[2].Role)
	}
	if len(got[2].Content) != 2 {
		t.Errorf("expected tool result and text merged, got %d blocks", len(got[2].Content))
	}
}

func TestConvertToAnthropicMessagesSkipsEmpty(t *testing.T) {
	got := convertToAnthropicMessages([]Message{
		{Role: RoleUser},
		UserText("hello"),
	})
	if len(got) != 1 {
		t.Errorf("empty messages should be skipped, got %d", len(got))
	}
}

func TestConvertAnthropicStopReason(t *testing.T) {
	tests := []struct {
		in   anthropic.StopReason
		want StopReason
	}{
		{anthropic.StopReasonToolUse, StopToolUse},
		{anthropic.StopReasonMaxTokens, StopMaxTokens},
		{anthropic.StopReasonEndTurn, StopEndTurn},
		{anthropic.StopReasonStopSequence, StopEndTurn},
	}
	for _, tt := range tests {
		if got := convertAnthropicStopReason(tt.in); got != tt.want {
			t.Errorf("convertAnthropicStopReason(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConvertToOpenAIMessagesFlattensBlocks(t *testing.T) {
	messages := []Message{
		UserText("set A1 to 5"),
		{Role: RoleAssistant, Blocks: []ContentBlock{
			TextBlock{Text: "Writing now."},
			ToolUseBlock{ID: "w1", Name: "write_range", Input: []byte(`{"range":"A1"}`)},
		}},
		{Role: RoleUser, Blocks: []ContentBlock{
			ToolResultBlock{ToolUseID: "w1", Content: "Updated 1 cells in A1."},
			TextBlock{Text: "What next?"},
		}},
	}

	got := convertToOpenAIMessages("be helpful", messages)

	if len(got) != 5 {
		t.Fatalf("expected 5 flattened messages, got %d: %+v", len(got), got)
	}
	if got[0].Role != openai.ChatMessageRoleSystem || got[0].Content != "be helpful" {
		t.Errorf("system message = %+v", got[0])
	}
	if got[1].Role != openai.ChatMessageRoleUser {
		t.Errorf("user message role = %q", got[1].Role)
	}
	if got[2].Role != openai.ChatMessageRoleAssistant || got[2].Content != "Writing now." {
		t.Errorf("assistant message = %+v", got[2])
	}
	if len(got[2].ToolCalls) != 1 || got[2].ToolCalls[0].ID != "w1" {
		t.Errorf("tool calls = %+v", got[2].ToolCalls)
	}
	if got[3].Role != openai.ChatMessageRoleTool || got[3].ToolCallID != "w1" {
		t.Errorf("tool message = %+v", got[3])
	}
	if got[4].Role != openai.ChatMessageRoleUser || got[4].Content != "What next?" {
		t.Errorf("trailing user message = %+v", got[4])
	}
}

func TestConvertToOpenAIMessagesErrorPrefix(t *testing.T) {
	got := convertToOpenAIMessages("", []Message{
		{Role: RoleUser, Blocks: []ContentBlock{
			ToolResultBlock{ToolUseID: "r1", Content: "quota exceeded", IsError: true},
		}},
	})

	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	if got[0].Content != "ERROR: quota exceeded" {
		t.Errorf("error outcome content = %q", got[0].Content)
	}
}

func TestConvertOpenAIFinishReason(t *testing.T) {
	tests := []struct {
		in   openai.FinishReason
		want StopReason
	}{
		{openai.FinishReasonToolCalls, StopToolUse},
		{openai.FinishReasonLength, StopMaxTokens},
		{openai.FinishReasonStop, StopEndTurn},
	}
	for _, tt := range tests {
		if got := convertOpenAIFinishReason(tt.in); got != tt.want {
			t.Errorf("convertOpenAIFinishReason(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConvertToOpenAITools(t *testing.T) {
	tools := []ToolDefinition{{
		Name:        "read_range",
		Description: "Read cell values.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"range": map[string]interface{}{"type": "string"},
			},
			"required": []string{"range"},
		},
	}}

	got := convertToOpenAITools(tools)
	if len(got) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(got))
	}
	if got[0].Function.Name != "read_range" {
		t.Errorf("tool name = %q", got[0].Function.Name)
	}
}

func TestConvertToAnthropicTools(t *testing.T) {
	tools := []ToolDefinition{{
		Name:        "write_range",
		Description: "Write cell values.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"range":  map[string]interface{}{"type": "string"},
				"values": map[string]interface{}{"type": "array"},
			},
			"required": []string{"range", "values"},
		},
	}}

	got := convertToAnthropicTools(tools)
	if len(got) != 1 || got[0].OfTool == nil {
		t.Fatalf("expected 1 tool param, got %+v", got)
	}
	if got[0].OfTool.Name != "write_range" {
		t.Errorf("tool name = %q", got[0].OfTool.Name)
	}
	if len(got[0].OfTool.InputSchema.Required) != 2 {
		t.Errorf("required = %v", got[0].OfTool.InputSchema.Required)
	}
}
