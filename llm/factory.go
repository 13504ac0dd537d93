// Engine factory - creates an engine from a provider name.

package llm

import (
	"fmt"
	"strings"
)

// Provider aliases map to canonical names.
var engineAliases = map[string]string{
	"claude": "anthropic",
	"gpt":    "openai",
}

// NewEngine creates an engine for the named provider.
func NewEngine(provider, apiKey, model string, maxTokens uint32) (Engine, error) {
	provider = strings.ToLower(provider)
	if canonical, ok := engineAliases[provider]; ok {
		provider = canonical
	}

	switch provider {
	case "anthropic":
		return NewAnthropicEngine(apiKey, model, maxTokens), nil
	case "openai":
		return NewOpenAIEngine(apiKey, model, maxTokens), nil
	default:
		return nil, fmt.Errorf("unknown provider: %q", provider)
	}
}
