package llm

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultLMStudioBaseURL = "http://localhost:1234/v1"
	defaultOpenAIBaseURL   = "https://api.openai.com/v1"
)

// CompatClient implements Client for any OpenAI-compatible endpoint,
// such as LM Studio or the OpenAI API itself.
type CompatClient struct {
	client  openai.Client
	model   string
	baseURL string
}

// NewLMStudioClient creates a client for a local LM Studio server.
func NewLMStudioClient(model, baseURL string) (*CompatClient, error) {
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("lm studio model is required")
	}
	if baseURL == "" {
		baseURL = defaultLMStudioBaseURL
	}

	apiKey := firstEnv("LMSTUDIO_API_KEY", "OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = "lm-studio"
	}
	return newCompatClient(model, baseURL, apiKey), nil
}

// NewOpenAIClient creates a client for the OpenAI API. OPENAI_API_KEY must be set.
func NewOpenAIClient(model, baseURL string) (*CompatClient, error) {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	apiKey := firstEnv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	return newCompatClient(model, baseURL, apiKey), nil
}

func newCompatClient(model, baseURL, apiKey string) *CompatClient {
	return &CompatClient{
		client: openai.NewClient(
			option.WithBaseURL(baseURL),
			option.WithAPIKey(apiKey),
		),
		model:   model,
		baseURL: baseURL,
	}
}

// Chat sends messages to the LLM and returns the response.
func (c *CompatClient) Chat(ctx context.Context, messages []Message) (string, error) {
	return chatCompletion(ctx, c.client, c.model, messages)
}

// ChatJSON sends messages and parses the response as JSON into result.
func (c *CompatClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	content, err := c.Chat(ctx, messages)
	if err != nil {
		return err
	}
	return decodeJSON(content, result)
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
