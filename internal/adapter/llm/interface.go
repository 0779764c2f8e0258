// Package llm provides an abstraction over the text generation backends.
package llm

import "context"

// Generator produces a completion for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f(ctx, prompt).
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Task headers open every prompt so that backends without a model (the mock)
// can tell what kind of answer is expected.
const (
	TaskClassify  = "### TASK: classify"
	TaskItinerary = "### TASK: itinerary-json"
	TaskAnswer    = "### TASK: answer"
)

// Ensure the backends implement Generator.
var (
	_ Generator = (*Client)(nil)
	_ Generator = (*OpenAIGenerator)(nil)
	_ Generator = (*AnthropicGenerator)(nil)
	_ Generator = (*MockClient)(nil)
)
