// Package budget estimates token usage so prompts stay inside a model's
// context window.
package budget

import (
    "math"
    "strings"
)

// CharsPerToken is the conservative characters-per-token ratio used by all
// estimates.
const CharsPerToken = 4

// EstimateTokensFromChars converts a character count into an estimated token
// count using a conservative heuristic (~4 chars per token in English). The
// result is always at least 1 when chars > 0.
func EstimateTokensFromChars(charCount int) int {
    if charCount <= 0 {
        return 0
    }
    // Keep conservative to avoid overruns. Use ceiling for safety.
    return int(math.Ceil(float64(charCount) / CharsPerToken))
}

// EstimateTokens returns the estimated token count of a string.
func EstimateTokens(s string) int {
    return EstimateTokensFromChars(len(s))
}

// ModelContextTokens returns an estimated maximum context window for a given
// model name. Unknown models fall back to a sensible default.
func ModelContextTokens(modelName string) int {
    name := strings.ToLower(strings.TrimSpace(modelName))
    if name == "" {
        return 8192
    }
    if v, ok := knownModelMax[name]; ok {
        return v
    }
    // Heuristics based on common suffixes present in model names
    for _, s := range sizeSuffixes {
        if strings.HasSuffix(name, s.suffix) {
            return s.tokens
        }
    }
    if strings.HasPrefix(name, "gemini-") {
        return 1_000_000
    }
    if strings.Contains(name, "-mini") {
        // Many "mini" models expose large contexts nowadays, assume 128k.
        return 128_000
    }
    // Default conservative context if unknown.
    return 8192
}

// HeadroomTokens returns a conservative safety headroom to subtract from the
// model context so that prompt sizing avoids overruns due to tokenizer and
// message framing overheads: the larger of 5% of the context or 512 tokens.
func HeadroomTokens(modelName string) int {
    max := ModelContextTokens(modelName)
    dyn := int(math.Ceil(float64(max) * 0.05))
    if dyn < 512 {
        return 512
    }
    return dyn
}

// RemainingContext computes the remaining input token budget given a model,
// a reservation for output generation and the estimated prompt tokens, after
// headroom. The result is never negative.
func RemainingContext(modelName string, reservedForOutput int, promptTokens int) int {
    if reservedForOutput < 0 {
        reservedForOutput = 0
    }
    remaining := ModelContextTokens(modelName) - HeadroomTokens(modelName) - reservedForOutput - promptTokens
    if remaining < 0 {
        return 0
    }
    return remaining
}

// InputCharBudget is RemainingContext expressed in characters: how much
// article text can still be added to a prompt whose fixed parts cost
// promptTokens.
func InputCharBudget(modelName string, reservedForOutput int, promptTokens int) int {
    return RemainingContext(modelName, reservedForOutput, promptTokens) * CharsPerToken
}

type sizeSuffix struct {
    suffix string
    tokens int
}

var sizeSuffixes = []sizeSuffix{
    {"1m", 1_000_000},
    {"512k", 512_000},
    {"200k", 200_000},
    {"128k", 128_000},
    {"32k", 32_768},
}

// knownModelMax contains rough context sizes for common model identifiers.
// These are best-effort and do not need to be exhaustive.
var knownModelMax = map[string]int{
    // OpenAI family (approximate)
    "gpt-4o":        128_000,
    "gpt-4o-mini":   128_000,
    "gpt-4.1":       1_000_000,
    "gpt-4.1-mini":  1_000_000,
    "gpt-4-turbo":   128_000,
    "gpt-3.5-turbo": 16_384,

    // Gemini
    "gemini-2.5-flash": 1_000_000,
    "gemini-2.5-pro":   1_000_000,

    // Llama and other popular OSS defaults (high variance in practice)
    "llama-3":   8_192,
    "llama-3.1": 128_000,

    // Common OSS OpenAI-compatible backends seen in the wild
    "openai/gpt-oss-20b": 4_096,
    "gpt-oss-20b":        4_096,
}
