package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    yaml "gopkg.in/yaml.v3"

    "github.com/hyperifyio/goenhance/internal/extract"
)

// FileConfig represents the single-file configuration schema.
// Nested sections map naturally to flags/env.
type FileConfig struct {
    LLM struct {
        Provider      string `yaml:"provider" json:"provider"`
        BaseURL       string `yaml:"base" json:"base"`
        Model         string `yaml:"model" json:"model"`
        APIKey        string `yaml:"key" json:"key"`
        MaxInputChars int    `yaml:"maxInputChars" json:"maxInputChars"`
    } `yaml:"llm" json:"llm"`

    Fetch struct {
        UserAgent string        `yaml:"ua" json:"ua"`
        Timeout   time.Duration `yaml:"timeout" json:"timeout"`
    } `yaml:"fetch" json:"fetch"`

    Extract struct {
        Heuristic string `yaml:"heuristic" json:"heuristic"`
    } `yaml:"extract" json:"extract"`

    Server struct {
        Addr string `yaml:"addr" json:"addr"`
    } `yaml:"server" json:"server"`

    Cache struct {
        TTL     time.Duration `yaml:"ttl" json:"ttl"`
        Disable bool          `yaml:"disable" json:"disable"`
    } `yaml:"cache" json:"cache"`

    Prompts struct {
        SystemPrompt     string `yaml:"systemPrompt" json:"systemPrompt"`
        SystemPromptFile string `yaml:"systemPromptFile" json:"systemPromptFile"`
    } `yaml:"prompts" json:"prompts"`

    LogFile string `yaml:"logFile" json:"logFile"`
    Verbose bool   `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := filepath.Ext(path); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        // Try YAML then JSON
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    if fc.Prompts.SystemPrompt == "" && fc.Prompts.SystemPromptFile != "" {
        p := fc.Prompts.SystemPromptFile
        if !filepath.IsAbs(p) {
            p = filepath.Join(filepath.Dir(path), p)
        }
        sp, err := os.ReadFile(p)
        if err != nil {
            return fc, fmt.Errorf("read system prompt: %w", err)
        }
        fc.Prompts.SystemPrompt = string(sp)
    }
    return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset/zero in cfg. Flags and env should already be applied;
// this lets file config supply defaults while preserving them.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
    if cfg == nil { return }

    if cfg.LLMProvider == "" && fc.LLM.Provider != "" { cfg.LLMProvider = fc.LLM.Provider }
    if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" { cfg.LLMBaseURL = fc.LLM.BaseURL }
    if cfg.LLMModel == "" && fc.LLM.Model != "" { cfg.LLMModel = fc.LLM.Model }
    if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" { cfg.LLMAPIKey = fc.LLM.APIKey }
    if cfg.MaxInputChars == 0 && fc.LLM.MaxInputChars > 0 { cfg.MaxInputChars = fc.LLM.MaxInputChars }

    if cfg.UserAgent == "" && fc.Fetch.UserAgent != "" { cfg.UserAgent = fc.Fetch.UserAgent }
    if cfg.FetchTimeout == 0 && fc.Fetch.Timeout > 0 { cfg.FetchTimeout = fc.Fetch.Timeout }
    if cfg.Heuristic == "" && fc.Extract.Heuristic != "" { cfg.Heuristic = fc.Extract.Heuristic }
    if cfg.ListenAddr == "" && fc.Server.Addr != "" { cfg.ListenAddr = fc.Server.Addr }

    if cfg.CacheTTL == 0 && fc.Cache.TTL > 0 { cfg.CacheTTL = fc.Cache.TTL }
    if !cfg.NoCache && fc.Cache.Disable { cfg.NoCache = true }
    if cfg.SystemPrompt == "" && fc.Prompts.SystemPrompt != "" { cfg.SystemPrompt = fc.Prompts.SystemPrompt }

    if cfg.LogFile == "" && fc.LogFile != "" { cfg.LogFile = fc.LogFile }
    if !cfg.Verbose && fc.Verbose { cfg.Verbose = true }
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
    switch strings.ToLower(strings.TrimSpace(cfg.LLMProvider)) {
    case "", ProviderOpenAI, ProviderGemini:
    default:
        return fmt.Errorf("config: unknown llm.provider %q (want openai or gemini)", cfg.LLMProvider)
    }
    if strings.TrimSpace(cfg.LLMModel) == "" {
        return errors.New("config: llm.model is required (or set LLM_MODEL)")
    }
    if _, err := extract.HeuristicByName(cfg.Heuristic); err != nil {
        return fmt.Errorf("config: %w", err)
    }
    if cfg.MaxInputChars < 0 || cfg.FetchTimeout < 0 || cfg.CacheTTL < 0 {
        return errors.New("config: negative limits are not allowed")
    }
    return nil
}
