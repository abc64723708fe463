package llm

import (
    "context"
    "errors"
    "strings"

    openai "github.com/sashabaranov/go-openai"
    "google.golang.org/genai"
)

// GeminiProvider adapts a Gemini client to the chat-completion shaped Client
// interface. System messages become the system instruction; user and
// assistant messages become conversation turns.
type GeminiProvider struct {
    Inner *genai.Client
}

func (p *GeminiProvider) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
    if p == nil || p.Inner == nil {
        return openai.ChatCompletionResponse{}, errors.New("gemini client not configured")
    }
    contents, config := geminiRequest(request)
    if len(contents) == 0 {
        return openai.ChatCompletionResponse{}, errors.New("gemini: no user content")
    }
    result, err := p.Inner.Models.GenerateContent(ctx, request.Model, contents, config)
    if err != nil {
        return openai.ChatCompletionResponse{}, err
    }
    if result == nil {
        return openai.ChatCompletionResponse{}, errors.New("gemini returned nil result")
    }
    return openai.ChatCompletionResponse{
        Model: request.Model,
        Choices: []openai.ChatCompletionChoice{{
            Index:   0,
            Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: result.Text()},
        }},
    }, nil
}

// geminiRequest translates chat messages into Gemini contents and config.
func geminiRequest(request openai.ChatCompletionRequest) ([]*genai.Content, *genai.GenerateContentConfig) {
    var system []string
    contents := make([]*genai.Content, 0, len(request.Messages))
    for _, m := range request.Messages {
        switch m.Role {
        case openai.ChatMessageRoleSystem:
            system = append(system, m.Content)
        case openai.ChatMessageRoleAssistant:
            contents = append(contents, &genai.Content{Role: "model", Parts: []*genai.Part{{Text: m.Content}}})
        default:
            contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: m.Content}}})
        }
    }
    temp := request.Temperature
    config := &genai.GenerateContentConfig{Temperature: &temp}
    if request.MaxTokens > 0 {
        config.MaxOutputTokens = int32(request.MaxTokens)
    }
    if len(system) > 0 {
        config.SystemInstruction = &genai.Content{
            Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}},
        }
    }
    return contents, config
}
