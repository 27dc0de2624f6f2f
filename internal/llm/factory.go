package llm

import (
	"context"
	"fmt"
	"strings"
)

// Supported providers.
const (
	ProviderCopilot  = "copilot"
	ProviderOllama   = "ollama"
	ProviderLMStudio = "lmstudio"
	ProviderOpenAI   = "openai"
)

// NewClient creates an LLM client for the configured provider. An empty
// provider selects Copilot.
func NewClient(ctx context.Context, provider, model, baseURL string) (Client, error) {
	switch NormalizeProvider(provider) {
	case ProviderCopilot:
		return NewCopilotClient(ctx, model)
	case ProviderOllama:
		return NewOllamaClient(model, baseURL)
	case ProviderLMStudio:
		return NewLMStudioClient(model, baseURL)
	case ProviderOpenAI:
		return NewOpenAIClient(model, baseURL)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// NormalizeProvider maps spelling variants to a provider constant.
// Unknown names are returned lowercased.
func NormalizeProvider(provider string) string {
	p := strings.ToLower(strings.TrimSpace(provider))
	switch p {
	case "":
		return ProviderCopilot
	case "lm-studio", "llmstudio":
		return ProviderLMStudio
	default:
		return p
	}
}

// Providers returns the supported provider names.
func Providers() []string {
	return []string{ProviderCopilot, ProviderOllama, ProviderLMStudio, ProviderOpenAI}
}
