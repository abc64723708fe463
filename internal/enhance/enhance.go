// Package enhance asks a chat model to summarize, expand and fact-check an
// article, and degrades to the raw model text when no structured answer can
// be recovered.
package enhance

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "strings"

    "github.com/rs/zerolog/log"
    openai "github.com/sashabaranov/go-openai"

    "github.com/hyperifyio/goenhance/internal/budget"
    "github.com/hyperifyio/goenhance/internal/cache"
    "github.com/hyperifyio/goenhance/internal/llm"
)

// Mode selects which fields the model is asked for.
type Mode string

const (
    ModeSummarize Mode = "summarize"
    ModeExpand    Mode = "expand"
    ModeBoth      Mode = "both"
)

// ParseMode accepts a mode name; empty selects ModeBoth.
func ParseMode(s string) (Mode, error) {
    switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
    case "":
        return ModeBoth, nil
    case ModeSummarize, ModeExpand, ModeBoth:
        return m, nil
    }
    return "", fmt.Errorf("unknown mode %q", s)
}

func (m Mode) wantsSummary() bool  { return m == ModeSummarize || m == ModeBoth }
func (m Mode) wantsExpanded() bool { return m == ModeExpand || m == ModeBoth }

// Level is the requested detail level.
type Level string

const (
    LevelBrief    Level = "brief"
    LevelDetailed Level = "detailed"
)

// ParseLevel accepts a level name; empty selects LevelDetailed.
func ParseLevel(s string) (Level, error) {
    switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
    case "":
        return LevelDetailed, nil
    case LevelBrief, LevelDetailed:
        return l, nil
    }
    return "", fmt.Errorf("unknown level %q", s)
}

// Request is one enhancement call.
type Request struct {
    Text      string
    SourceURL string
    Mode      Mode
    Level     Level
    Validate  bool
}

const (
    // DefaultModel is used when no model name is configured.
    DefaultModel = "gpt-4o-mini"
    // DefaultMaxInputChars bounds the article text sent to the model.
    DefaultMaxInputChars = 30000
    DefaultTemperature   = 0.2
    DefaultMaxTokens     = 1500
)

var (
    // ErrNotConfigured is returned when no client or model is set.
    ErrNotConfigured = errors.New("enhancer not configured")
    // ErrNoContent indicates the model answered with nothing usable.
    ErrNoContent = errors.New("model returned no content")
)

// Requester calls the model with the enhancement prompt.
type Requester struct {
    Client llm.Client
    Model  string
    Cache  *cache.LLMCache
    // MaxInputChars truncates the article; zero means DefaultMaxInputChars.
    MaxInputChars int
    // Temperature and MaxTokens default to DefaultTemperature and DefaultMaxTokens.
    Temperature float32
    MaxTokens   int
    // SystemPrompt, when non-empty, overrides the default system message.
    SystemPrompt string
    Verbose      bool
}

// Enhance sends the article to the model and returns the structured fields.
// Unstructured answers are not errors: they go through the degrade path of
// ParseResult.
func (r *Requester) Enhance(ctx context.Context, req Request) (Result, error) {
    if r == nil || r.Client == nil || strings.TrimSpace(r.Model) == "" {
        return Result{}, ErrNotConfigured
    }
    if req.Mode == "" {
        req.Mode = ModeBoth
    }
    if req.Level == "" {
        req.Level = LevelDetailed
    }
    maxChars := r.MaxInputChars
    if maxChars <= 0 {
        maxChars = DefaultMaxInputChars
    }
    system := SystemPrompt()
    if strings.TrimSpace(r.SystemPrompt) != "" {
        system = r.SystemPrompt
    }
    maxTokens := r.MaxTokens
    if maxTokens <= 0 {
        maxTokens = DefaultMaxTokens
    }
    // Small-context models get a tighter cutoff than the configured one
    fixed := budget.EstimateTokens(system) + budget.EstimateTokens(UserPrompt(req, ""))
    if fit := budget.InputCharBudget(r.Model, maxTokens, fixed); fit > 0 && fit < maxChars {
        log.Debug().Str("stage", "enhance").Str("model", r.Model).Int("max_chars", maxChars).Int("fit_chars", fit).Msg("article cutoff reduced to fit context")
        maxChars = fit
    }
    user := UserPrompt(req, Truncate(req.Text, maxChars))

    key := cache.KeyFrom(r.Model, system+"\n\n"+user)
    if raw, ok, _ := r.Cache.Get(ctx, key); ok {
        var res Result
        if err := json.Unmarshal(raw, &res); err == nil {
            log.Debug().Str("stage", "enhance").Msg("cache hit")
            return res, nil
        }
    }

    temp := r.Temperature
    if temp == 0 {
        temp = DefaultTemperature
    }
    if r.Verbose {
        // Log prompt skeleton only; article text stays out of the logs
        log.Debug().Str("stage", "enhance").Str("model", r.Model).Int("system_len", len(system)).Int("user_len", len(user)).Msg("enhance prompt")
    }
    resp, err := r.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
        Model: r.Model,
        Messages: []openai.ChatCompletionMessage{
            {Role: openai.ChatMessageRoleSystem, Content: system},
            {Role: openai.ChatMessageRoleUser, Content: user},
        },
        Temperature: temp,
        MaxTokens:   maxTokens,
        N:           1,
    })
    if err != nil {
        return Result{}, fmt.Errorf("enhance call: %w", err)
    }
    if len(resp.Choices) == 0 {
        return Result{}, ErrNoContent
    }
    text := strings.TrimSpace(resp.Choices[0].Message.Content)
    if text == "" {
        return Result{}, ErrNoContent
    }
    res := ParseResult(text, req.Mode, req.Validate)
    if payload, err := json.Marshal(res); err == nil {
        _ = r.Cache.Save(ctx, key, payload)
    }
    return res, nil
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
    if max <= 0 {
        return s
    }
    n := 0
    for i := range s {
        if n == max {
            return s[:i]
        }
        n++
    }
    return s
}
