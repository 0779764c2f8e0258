package config

import (
	"fmt"
	"slices"
	"time"
)

var (
	storeDrivers   = []string{"sqlite", "mongo"}
	sessionDrivers = []string{"memory", "sqlite", "redis"}
	llmProviders   = []string{"litellm", "openai", "anthropic", "mock"}
)

// Validate performs business-rule validation on the loaded configuration.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range (got %d)", c.HTTP.Port)
	}
	if !slices.Contains(storeDrivers, c.Store.Driver) {
		return fmt.Errorf("store.driver must be one of %v (got %q)", storeDrivers, c.Store.Driver)
	}
	if !slices.Contains(sessionDrivers, c.Session.Driver) {
		return fmt.Errorf("session.driver must be one of %v (got %q)", sessionDrivers, c.Session.Driver)
	}
	if !slices.Contains(llmProviders, c.LLM.Provider) {
		return fmt.Errorf("llm.provider must be one of %v (got %q)", llmProviders, c.LLM.Provider)
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be > 0 (got %d)", c.Search.MaxResults)
	}

	timeouts := map[string]time.Duration{
		"llm.timeout":             c.LLM.Timeout,
		"timeouts.tool":           c.Timeouts.Tool,
		"timeouts.commit":         c.Timeouts.Commit,
		"timeouts.classification": c.Timeouts.Classification,
		"timeouts.generation":     c.Timeouts.Generation,
	}
	for name, d := range timeouts {
		if d <= 0 {
			return fmt.Errorf("%s must be > 0 (got %s)", name, d)
		}
	}
	return nil
}
