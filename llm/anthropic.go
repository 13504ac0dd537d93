// Anthropic Engine implementation using official anthropic-sdk-go.
//
// Information Hiding:
// - API endpoint and authentication
// - Request/response format for Anthropic Messages API
// - Content-block conversion to and from SDK types

package llm

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicEngine implements the Engine interface for Anthropic Claude.
type AnthropicEngine struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicEngine creates a new Anthropic engine.
func NewAnthropicEngine(apiKey, model string, maxTokens uint32) *AnthropicEngine {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &AnthropicEngine{
		client:    client,
		model:     model,
		maxTokens: int64(maxTokens),
	}
}

// Name returns the provider name.
func (e *AnthropicEngine) Name() string {
	return "anthropic"
}

// Model returns the current model.
func (e *AnthropicEngine) Model() string {
	return e.model
}

// Complete sends a completion request.
func (e *AnthropicEngine) Complete(ctx context.Context, req Request) (Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(e.model),
		MaxTokens: e.maxTokens,
		Messages:  convertToAnthropicMessages(req.Messages),
		Tools:     convertToAnthropicTools(req.Tools),
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	message, err := e.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, &CommunicationError{Provider: "anthropic", Err: err}
	}

	var blocks []ContentBlock
	for _, block := range message.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			blocks = append(blocks, TextBlock{Text: variant.Text})
		case anthropic.ToolUseBlock:
			inputJSON, _ := json.Marshal(variant.Input)
			blocks = append(blocks, ToolUseBlock{
				ID:    variant.ID,
				Name:  variant.Name,
				Input: inputJSON,
			})
		}
	}

	var usage *TokenUsage
	if message.Usage.InputTokens > 0 || message.Usage.OutputTokens > 0 {
		usage = &TokenUsage{
			PromptTokens:     uint32(message.Usage.InputTokens),
			CompletionTokens: uint32(message.Usage.OutputTokens),
			TotalTokens:      uint32(message.Usage.InputTokens + message.Usage.OutputTokens),
		}
	}

	return Response{
		Blocks:     blocks,
		StopReason: convertAnthropicStopReason(message.StopReason),
		Usage:      usage,
	}, nil
}

// convertAnthropicStopReason maps SDK stop reasons to ours.
func convertAnthropicStopReason(reason anthropic.StopReason) StopReason {
	switch reason {
	case anthropic.StopReasonToolUse:
		return StopToolUse
	case anthropic.StopReasonMaxTokens:
		return StopMaxTokens
	default:
		return StopEndTurn
	}
}

// convertToAnthropicMessages converts our Message log to Anthropic format.
// Consecutive same-role messages are merged into one param message since
// the Messages API expects alternating roles.
func convertToAnthropicMessages(messages []Message) []anthropic.MessageParam {
	var result []anthropic.MessageParam

	for _, msg := range messages {
		role := anthropic.MessageParamRoleUser
		if msg.Role == RoleAssistant {
			role = anthropic.MessageParamRoleAssistant
		}

		var content []anthropic.ContentBlockParamUnion
		for _, block := range msg.Blocks {
			switch b := block.(type) {
			case TextBlock:
				content = append(content, anthropic.NewTextBlock(b.Text))
			case ToolUseBlock:
				var input map[string]interface{}
				_ = json.Unmarshal(b.Input, &input)
				content = append(content, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    b.ID,
						Name:  b.Name,
						Input: input,
					},
				})
			case ToolResultBlock:
				content = append(content, anthropic.NewToolResultBlock(b.ToolUseID, b.Content, b.IsError))
			}
		}
		if len(content) == 0 {
			continue
		}

		if n := len(result); n > 0 && result[n-1].Role == role {
			result[n-1].Content = append(result[n-1].Content, content...)
			continue
		}
		result = append(result, anthropic.MessageParam{Role: role, Content: content})
	}

	return result
}

// convertToAnthropicTools converts tool definitions to Anthropic format.
func convertToAnthropicTools(tools []ToolDefinition) []anthropic.ToolUnionParam {
	result := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		properties, _ := t.InputSchema["properties"].(map[string]interface{})
		required, _ := t.InputSchema["required"].([]string)

		toolParam := anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: properties,
				Required:   required,
			},
		}
		result[i] = anthropic.ToolUnionParam{OfTool: &toolParam}
	}
	return result
}

// Verify AnthropicEngine implements Engine
var _ Engine = (*AnthropicEngine)(nil)
