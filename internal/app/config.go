package app

import (
	"time"

	"github.com/hyperifyio/goenhance/internal/enhance"
	"github.com/hyperifyio/goenhance/internal/fetch"
)

// Config holds runtime configuration for the application.
type Config struct {
	// LLM
	LLMProvider  string
	LLMBaseURL   string
	LLMModel     string
	LLMAPIKey    string
	SystemPrompt string
	// MaxInputChars bounds the article text sent to the model.
	MaxInputChars int

	// Extraction / fetch
	Heuristic    string
	UserAgent    string
	FetchTimeout time.Duration

	// Server
	ListenAddr string

	// Behavior
	// CacheTTL enables the in-memory caches when positive. Zero disables them.
	CacheTTL time.Duration
	NoCache  bool
	LogFile  string
	Verbose  bool
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	defaultListenAddr   = ":8000"
	defaultFetchTimeout = 12 * time.Second
)

// ApplyDefaults fills every zero field with its default.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = ProviderOpenAI
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = enhance.DefaultModel
	}
	if cfg.MaxInputChars == 0 {
		cfg.MaxInputChars = enhance.DefaultMaxInputChars
	}
	if cfg.Heuristic == "" {
		cfg.Heuristic = "readability"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = fetch.DefaultUserAgent
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
}

// CachingEnabled reports whether the in-memory page and model caches are
// used. They are off unless a positive CacheTTL is configured.
func (c Config) CachingEnabled() bool {
	return !c.NoCache && c.CacheTTL > 0
}
