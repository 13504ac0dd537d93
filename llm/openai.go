// OpenAI Engine implementation using go-openai library.
//
// Information Hiding:
// - API endpoint and authentication
// - Request/response format for OpenAI Chat Completions API
// - Mapping between content blocks and tool_call/tool messages

package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEngine implements the Engine interface for OpenAI.
type OpenAIEngine struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIEngine creates a new OpenAI engine.
func NewOpenAIEngine(apiKey, model string, maxTokens uint32) *OpenAIEngine {
	return &OpenAIEngine{
		client:    openai.NewClient(apiKey),
		model:     model,
		maxTokens: int(maxTokens),
	}
}

// Name returns the provider name.
func (e *OpenAIEngine) Name() string {
	return "openai"
}

// Model returns the current model.
func (e *OpenAIEngine) Model() string {
	return e.model
}

// Complete sends a completion request.
func (e *OpenAIEngine) Complete(ctx context.Context, req Request) (Response, error) {
	oaiReq := openai.ChatCompletionRequest{
		Model:     e.model,
		Messages:  convertToOpenAIMessages(req.System, req.Messages),
		MaxTokens: e.maxTokens,
		Tools:     convertToOpenAITools(req.Tools),
	}

	resp, err := e.client.CreateChatCompletion(ctx, oaiReq)
	if err != nil {
		return Response{}, &CommunicationError{Provider: "openai", Err: err}
	}
	if len(resp.Choices) == 0 {
		return Response{StopReason: StopEndTurn}, nil
	}

	choice := resp.Choices[0]
	var blocks []ContentBlock
	if choice.Message.Content != "" {
		blocks = append(blocks, TextBlock{Text: choice.Message.Content})
	}
	for _, tc := range choice.Message.ToolCalls {
		blocks = append(blocks, ToolUseBlock{
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: []byte(tc.Function.Arguments),
		})
	}

	usage := &TokenUsage{
		PromptTokens:     uint32(resp.Usage.PromptTokens),
		CompletionTokens: uint32(resp.Usage.CompletionTokens),
		TotalTokens:      uint32(resp.Usage.TotalTokens),
	}

	return Response{
		Blocks:     blocks,
		StopReason: convertOpenAIFinishReason(choice.FinishReason),
		Usage:      usage,
	}, nil
}

// convertOpenAIFinishReason maps finish reasons to stop reasons.
func convertOpenAIFinishReason(reason openai.FinishReason) StopReason {
	switch reason {
	case openai.FinishReasonToolCalls:
		return StopToolUse
	case openai.FinishReasonLength:
		return StopMaxTokens
	default:
		return StopEndTurn
	}
}

// convertToOpenAIMessages flattens the block model into the Chat
// Completions shape: tool results become role=tool messages and tool
// invocations become assistant tool_calls.
func convertToOpenAIMessages(system string, messages []Message) []openai.ChatCompletionMessage {
	var result []openai.ChatCompletionMessage

	if system != "" {
		result = append(result, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}

	for _, msg := range messages {
		switch msg.Role {
		case RoleAssistant:
			oaiMsg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant}
			for _, block := range msg.Blocks {
				switch b := block.(type) {
				case TextBlock:
					oaiMsg.Content += b.Text
				case ToolUseBlock:
					oaiMsg.ToolCalls = append(oaiMsg.ToolCalls, openai.ToolCall{
						ID:   b.ID,
						Type: openai.ToolTypeFunction,
						Function: openai.FunctionCall{
							Name:      b.Name,
							Arguments: string(b.Input),
						},
					})
				}
			}
			result = append(result, oaiMsg)
		case RoleUser:
			// Tool results must be standalone role=tool messages; any
			// text blocks in the same message follow as a user message.
			text := ""
			for _, block := range msg.Blocks {
				switch b := block.(type) {
				case TextBlock:
					text += b.Text
				case ToolResultBlock:
					content := b.Content
					if b.IsError {
						content = "ERROR: " + content
					}
					result = append(result, openai.ChatCompletionMessage{
						Role:       openai.ChatMessageRoleTool,
						Content:    content,
						ToolCallID: b.ToolUseID,
					})
				}
			}
			if text != "" {
				result = append(result, openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleUser,
					Content: text,
				})
			}
		}
	}

	return result
}

// convertToOpenAITools converts tool definitions to OpenAI format.
func convertToOpenAITools(tools []ToolDefinition) []openai.Tool {
	result := make([]openai.Tool, len(tools))
	for i, t := range tools {
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
			},
		}
	}
	return result
}

// Verify OpenAIEngine implements Engine
var _ Engine = (*OpenAIEngine)(nil)
