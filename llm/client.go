package llm

import (
	"context"
	"os"

	"vendorfill/api/logger"
	"vendorfill/api/models"
)

// Client is one provider's field-mapping call.
type Client interface {
	MapFields(ctx context.Context, profile models.Profile, fieldNames []string) (map[string]string, error)
}

// FromEnv picks the provider from LLM_PROVIDER (openai|anthropic),
// falling back to whichever API key is configured. Returns nil when no
// provider is usable; the mapper then runs deterministic-only.
func FromEnv() Client {
	switch os.Getenv("LLM_PROVIDER") {
	case "openai":
		return NewOpenAIClient()
	case "anthropic":
		return NewAnthropicClient()
	}

	if os.Getenv("OPENAI_API_KEY") != "" {
		return NewOpenAIClient()
	}
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		return NewAnthropicClient()
	}

	logger.Get().Warn("no LLM provider configured, assisted mapping disabled")
	return nil
}
