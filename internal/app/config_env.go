package app

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// apiKeyFromEnv returns LLM_API_KEY, or the provider's conventional key
// variable when it is unset.
func apiKeyFromEnv(provider string) string {
    if v := os.Getenv("LLM_API_KEY"); v != "" {
        return v
    }
    if strings.EqualFold(provider, ProviderGemini) {
        return os.Getenv("GEMINI_API_KEY")
    }
    return os.Getenv("OPENAI_API_KEY")
}

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
    if cfg == nil { return }

    if cfg.LLMProvider == "" {
        cfg.LLMProvider = os.Getenv("LLM_PROVIDER")
    }
    if cfg.LLMBaseURL == "" {
        cfg.LLMBaseURL = os.Getenv("LLM_BASE_URL")
    }
    if cfg.LLMModel == "" {
        cfg.LLMModel = os.Getenv("LLM_MODEL")
    }
    if cfg.LLMAPIKey == "" {
        cfg.LLMAPIKey = apiKeyFromEnv(cfg.LLMProvider)
    }
    if cfg.Heuristic == "" {
        cfg.Heuristic = os.Getenv("EXTRACT_HEURISTIC")
    }
    if cfg.UserAgent == "" {
        cfg.UserAgent = os.Getenv("USER_AGENT")
    }
    if cfg.ListenAddr == "" {
        cfg.ListenAddr = os.Getenv("LISTEN_ADDR")
    }
    if cfg.LogFile == "" {
        cfg.LogFile = os.Getenv("LOG_FILE")
    }

    if cfg.MaxInputChars == 0 {
        if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("MAX_INPUT_CHARS"))); err == nil && n > 0 {
            cfg.MaxInputChars = n
        }
    }

    // Optional durations
    setDuration := func(dst *time.Duration, envKey string) {
        if *dst != 0 { return }
        if s := os.Getenv(envKey); s != "" {
            if d, err := time.ParseDuration(s); err == nil {
                *dst = d
            }
        }
    }
    setDuration(&cfg.CacheTTL, "CACHE_TTL")
    setDuration(&cfg.FetchTimeout, "FETCH_TIMEOUT")

    // Booleans
    setBool := func(dst *bool, envKey string) {
        if *dst { return }
        if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
            if s == "1" || s == "true" || s == "yes" || s == "on" {
                *dst = true
            }
        }
    }
    setBool(&cfg.Verbose, "VERBOSE")
    setBool(&cfg.NoCache, "NO_CACHE")
}
