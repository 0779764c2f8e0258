package llm

import (
	"fmt"
	"log/slog"
	"time"
)

// Provider names a generation backend.
const (
	ProviderLiteLLM   = "litellm"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Options selects and configures a backend.
type Options struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// NewGenerator creates the Generator named by opts.Provider.
func NewGenerator(opts Options, logger *slog.Logger) (Generator, error) {
	switch opts.Provider {
	case ProviderMock:
		logger.Info("using mock LLM client")
		return NewMockClient(), nil
	case ProviderLiteLLM, "":
		return NewClient(opts.BaseURL, opts.APIKey, opts.Model, opts.Timeout), nil
	case ProviderOpenAI:
		return NewOpenAIGenerator(opts.APIKey, opts.BaseURL, opts.Model), nil
	case ProviderAnthropic:
		return NewAnthropicGenerator(opts.APIKey, opts.Model), nil
	}
	return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
}
