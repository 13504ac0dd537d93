// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Provider-specific configuration lookup

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Settings holds all application configuration.
type Settings struct {
	LLM    LLMConfig
	Agent  AgentConfig
	Sheets SheetsConfig
	Server ServerConfig
}

// LLMConfig holds reasoning-engine provider configuration.
type LLMConfig struct {
	Provider  string
	Model     string
	MaxTokens uint32
}

// AgentConfig holds turn-loop and context-budget configuration.
// The context budget presented to the engine is ContextLimit minus
// ResponseReserve; SummaryBudget bounds the history-summarization
// transcript.
type AgentConfig struct {
	MaxIterations   int
	ContextLimit    int
	ResponseReserve int
	SummaryBudget   int
}

// SheetsConfig holds spreadsheet resource configuration.
type SheetsConfig struct {
	SpreadsheetID   string
	CredentialsFile string
	APIKey          string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr        string
	AuditDBPath string
}

// providerInfo holds configuration for a specific LLM provider.
type providerInfo struct {
	modelEnv     string
	defaultModel string
	apiKeyEnv    string
}

// Supported providers and their configuration.
var providers = map[string]providerInfo{
	"openai":    {"OPENAI_MODEL", "gpt-4o", "OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_MODEL", "claude-sonnet-4-20250514", "ANTHROPIC_API_KEY"},
}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"claude": "anthropic",
	"gpt":    "openai",
}

// New creates settings for the specified provider, loading values from environment variables.
// Returns an error if the provider is unknown or environment variables contain invalid values.
func New(provider string) (Settings, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return Settings{}, err
	}

	maxTokens, err := getEnvUint32("LLM_MAX_TOKENS", 4096)
	if err != nil {
		return Settings{}, err
	}

	maxIterations, err := getEnvInt("AGENT_MAX_ITERATIONS", 10)
	if err != nil {
		return Settings{}, err
	}

	contextLimit, err := getEnvInt("AGENT_CONTEXT_LIMIT", 180000)
	if err != nil {
		return Settings{}, err
	}

	responseReserve, err := getEnvInt("AGENT_RESPONSE_RESERVE", 8192)
	if err != nil {
		return Settings{}, err
	}

	summaryBudget, err := getEnvInt("AGENT_SUMMARY_BUDGET", 4000)
	if err != nil {
		return Settings{}, err
	}

	if responseReserve >= contextLimit {
		return Settings{}, fmt.Errorf("AGENT_RESPONSE_RESERVE (%d) must be smaller than AGENT_CONTEXT_LIMIT (%d)",
			responseReserve, contextLimit)
	}

	model := os.Getenv(info.modelEnv)
	if model == "" {
		model = info.defaultModel
	}

	return Settings{
		LLM: LLMConfig{
			Provider:  provider,
			Model:     model,
			MaxTokens: maxTokens,
		},
		Agent: AgentConfig{
			MaxIterations:   maxIterations,
			ContextLimit:    contextLimit,
			ResponseReserve: responseReserve,
			SummaryBudget:   summaryBudget,
		},
		Sheets: SheetsConfig{
			SpreadsheetID:   os.Getenv("SPREADSHEET_ID"),
			CredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
			APIKey:          os.Getenv("GOOGLE_API_KEY"),
		},
		Server: ServerConfig{
			Addr:        getEnvString("SERVER_ADDR", ":8080"),
			AuditDBPath: getEnvString("AUDIT_DB_PATH", "gridagent_audit.db"),
		},
	}, nil
}

// normalizeProvider converts provider aliases to canonical names.
func normalizeProvider(provider string) string {
	provider = strings.ToLower(provider)
	if canonical, ok := providerAliases[provider]; ok {
		return canonical
	}
	return provider
}

// getProviderInfo returns configuration for a provider.
func getProviderInfo(provider string) (providerInfo, error) {
	info, ok := providers[provider]
	if !ok {
		return providerInfo{}, fmt.Errorf("unknown provider: %q", provider)
	}
	return info, nil
}

// APIKeyFor returns the API key for a provider from environment variables.
func APIKeyFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	key := os.Getenv(info.apiKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", info.apiKeyEnv)
	}
	return key, nil
}

// SupportedProviders returns the list of supported provider names.
func SupportedProviders() []string {
	result := make([]string, 0, len(providers))
	for name := range providers {
		result = append(result, name)
	}
	return result
}

// Environment variable helpers with proper error handling

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvUint32(key string, defaultVal uint32) (uint32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return uint32(i), nil
}
