// Package config provides configuration for the travel assistant.
package config

import (
	"time"
)

// Config holds the service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Store    StoreConfig    `yaml:"store"`
	Session  SessionConfig  `yaml:"session"`
	LLM      LLMConfig      `yaml:"llm"`
	Search   SearchConfig   `yaml:"search"`
	Timeouts TimeoutsConfig `yaml:"timeouts"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

// HTTPConfig holds server settings.
type HTTPConfig struct {
	Port            int           `yaml:"port"             env:"HTTP_PORT"             env-default:"8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// StoreConfig selects the itinerary document store.
type StoreConfig struct {
	Driver   string `yaml:"driver"    env:"STORE_DRIVER"   env-default:"sqlite"`
	SQLite   string `yaml:"sqlite"    env:"DATABASE_URL"   env-default:"file:vin2.db?cache=shared&mode=rwc"`
	MongoURI string `yaml:"mongo_uri" env:"MONGO_URI"      env-default:"mongodb://localhost:27017"`
	MongoDB  string `yaml:"mongo_db"  env:"MONGO_DATABASE" env-default:"Vintellitour"`
}

// SessionConfig selects where conversation state lives between turns.
type SessionConfig struct {
	Driver        string        `yaml:"driver"         env:"SESSION_DRIVER"         env-default:"memory"`
	RedisAddr     string        `yaml:"redis_addr"     env:"REDIS_ADDR"             env-default:"localhost:6379"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db"       env:"REDIS_DB"               env-default:"0"`
	TTL           time.Duration `yaml:"ttl"            env:"SESSION_TTL"            env-default:"24h"`
	MaxMessages   int           `yaml:"max_messages"   env:"SESSION_MAX_MESSAGES"   env-default:"100"`
}

// LLMConfig selects the generation backend.
type LLMConfig struct {
	Provider string        `yaml:"provider" env:"LLM_PROVIDER" env-default:"litellm"`
	BaseURL  string        `yaml:"base_url" env:"LLM_BASE_URL" env-default:"http://localhost:4000"`
	APIKey   string        `yaml:"api_key"  env:"LLM_API_KEY"`
	Model    string        `yaml:"model"    env:"LLM_MODEL"    env-default:"gpt-4o-mini"`
	Timeout  time.Duration `yaml:"timeout"  env:"LLM_TIMEOUT"  env-default:"60s"`
}

// SearchConfig configures the web search provider.
type SearchConfig struct {
	BaseURL    string        `yaml:"base_url"    env:"TAVILY_BASE_URL"    env-default:"https://api.tavily.com"`
	APIKey     string        `yaml:"api_key"     env:"TAVILY_API_KEY"`
	MaxResults int           `yaml:"max_results" env:"SEARCH_MAX_RESULTS" env-default:"3"`
	CacheTTL   time.Duration `yaml:"cache_ttl"   env:"SEARCH_CACHE_TTL"   env-default:"10m"`
	RateLimit  float64       `yaml:"rate_limit"  env:"SEARCH_RATE_LIMIT"  env-default:"5"`
}

// TimeoutsConfig bounds each unit of work inside a turn.
type TimeoutsConfig struct {
	Tool           time.Duration `yaml:"tool"           env:"TOOL_TIMEOUT"           env-default:"15s"`
	Commit         time.Duration `yaml:"commit"         env:"COMMIT_TIMEOUT"         env-default:"10s"`
	Classification time.Duration `yaml:"classification" env:"CLASSIFICATION_TIMEOUT" env-default:"20s"`
	Generation     time.Duration `yaml:"generation"     env:"GENERATION_TIMEOUT"     env-default:"60s"`
}

// AuthConfig holds bearer token settings. An empty secret disables auth.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
