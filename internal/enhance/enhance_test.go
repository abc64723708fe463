package enhance

import (
    "context"
    "errors"
    "strings"
    "testing"

    openai "github.com/sashabaranov/go-openai"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/hyperifyio/goenhance/internal/cache"
)

type capturingClient struct {
    calls   int
    lastReq openai.ChatCompletionRequest
    content string
    err     error
}

func (c *capturingClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
    c.calls++
    c.lastReq = req
    if c.err != nil {
        return openai.ChatCompletionResponse{}, c.err
    }
    return openai.ChatCompletionResponse{
        Choices: []openai.ChatCompletionChoice{{
            Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: c.content},
        }},
    }, nil
}

func TestEnhance_BuildsPromptAndParsesJSON(t *testing.T) {
    cc := &capturingClient{content: "Sure!\n```json\n{\"summary\":\"S\",\"expanded\":\"E\",\"validation\":\"V\"}\n```"}
    r := &Requester{Client: cc, Model: "test-model"}

    res, err := r.Enhance(context.Background(), Request{
        Text:      "Article body",
        SourceURL: "https://example.com/a",
        Mode:      ModeBoth,
        Level:     LevelBrief,
        Validate:  true,
    })
    require.NoError(t, err)
    assert.Equal(t, Result{Summary: "S", Expanded: "E", Validation: "V"}, res)

    require.Len(t, cc.lastReq.Messages, 2)
    assert.Equal(t, openai.ChatMessageRoleSystem, cc.lastReq.Messages[0].Role)
    assert.Contains(t, cc.lastReq.Messages[0].Content, "'Likely true', 'Uncertain', or 'Likely false'")
    user := cc.lastReq.Messages[1].Content
    for _, want := range []string{"Source URL: https://example.com/a", "Detail level: brief", "Mode: both", "Validate: yes", "Article text:\nArticle body"} {
        assert.Contains(t, user, want)
    }
    assert.Equal(t, "test-model", cc.lastReq.Model)
    assert.InDelta(t, 0.2, cc.lastReq.Temperature, 1e-6)
    assert.Equal(t, DefaultMaxTokens, cc.lastReq.MaxTokens)
}

func TestEnhance_TruncatesArticleText(t *testing.T) {
    cc := &capturingClient{content: `{"summary":"ok"}`}
    r := &Requester{Client: cc, Model: "m", MaxInputChars: 10}

    _, err := r.Enhance(context.Background(), Request{Text: strings.Repeat("é", 25)})
    require.NoError(t, err)

    user := cc.lastReq.Messages[1].Content
    assert.True(t, strings.HasSuffix(user, "Article text:\n"+strings.Repeat("é", 10)), "got %q", user)
}

func TestEnhance_SmallContextModelTightensCutoff(t *testing.T) {
    cc := &capturingClient{content: `{"summary":"ok"}`}
    r := &Requester{Client: cc, Model: "gpt-oss-20b"}

    _, err := r.Enhance(context.Background(), Request{Text: strings.Repeat("a", 50000)})
    require.NoError(t, err)

    user := cc.lastReq.Messages[1].Content
    article := user[strings.Index(user, "Article text:\n")+len("Article text:\n"):]
    assert.NotEmpty(t, article)
    // 4096 context minus headroom and output reservation leaves well under 10k chars.
    assert.Less(t, len(article), 10000)
}

func TestEnhance_DefaultsModeAndLevel(t *testing.T) {
    cc := &capturingClient{content: `{"summary":"ok"}`}
    r := &Requester{Client: cc, Model: "m"}

    _, err := r.Enhance(context.Background(), Request{Text: "x"})
    require.NoError(t, err)
    assert.Contains(t, cc.lastReq.Messages[1].Content, "Detail level: detailed\nMode: both\nValidate: no")
}

func TestEnhance_UsesCache(t *testing.T) {
    cc := &capturingClient{content: `{"summary":"cached"}`}
    r := &Requester{Client: cc, Model: "m", Cache: cache.NewLLMCache(0)}
    req := Request{Text: "same", SourceURL: "https://example.com"}

    first, err := r.Enhance(context.Background(), req)
    require.NoError(t, err)
    second, err := r.Enhance(context.Background(), req)
    require.NoError(t, err)

    assert.Equal(t, 1, cc.calls)
    assert.Equal(t, first, second)
}

func TestEnhance_Errors(t *testing.T) {
    var nilReq *Requester
    _, err := nilReq.Enhance(context.Background(), Request{})
    assert.ErrorIs(t, err, ErrNotConfigured)

    _, err = (&Requester{Client: &capturingClient{}}).Enhance(context.Background(), Request{})
    assert.ErrorIs(t, err, ErrNotConfigured)

    _, err = (&Requester{Client: &capturingClient{content: "   "}, Model: "m"}).Enhance(context.Background(), Request{})
    assert.ErrorIs(t, err, ErrNoContent)

    boom := errors.New("boom")
    _, err = (&Requester{Client: &capturingClient{err: boom}, Model: "m"}).Enhance(context.Background(), Request{})
    assert.ErrorIs(t, err, boom)
}

func TestParseResult_DegradesToRawText(t *testing.T) {
    cases := []struct {
        mode Mode
        want Result
    }{
        {ModeSummarize, Result{Summary: "plain answer", Validation: ValidationMissing}},
        {ModeExpand, Result{Expanded: "plain answer", Validation: ValidationMissing}},
        {ModeBoth, Result{Summary: "plain answer", Expanded: "plain answer", Validation: ValidationMissing}},
    }
    for _, tc := range cases {
        assert.Equal(t, tc.want, ParseResult("plain answer", tc.mode, true), "mode %s", tc.mode)
    }
    assert.Equal(t, Result{Summary: "plain answer"}, ParseResult("plain answer", ModeSummarize, false))
}

func TestParseResult_BrokenJSONDegrades(t *testing.T) {
    raw := `{"summary": "unterminated`
    got := ParseResult(raw, ModeBoth, false)
    assert.Equal(t, Result{Summary: raw, Expanded: raw}, got)
}

func TestParseResult_MissingValidationUsesSentinel(t *testing.T) {
    got := ParseResult(`{"summary":"S","expanded":"E"}`, ModeBoth, true)
    assert.Equal(t, Result{Summary: "S", Expanded: "E", Validation: ValidationMissing}, got)

    got = ParseResult(`{"summary":"S","expanded":"E"}`, ModeBoth, false)
    assert.Equal(t, "", got.Validation)
}

func TestParseResult_FlattensStructuredValues(t *testing.T) {
    raw := `{
        "summary": ["one", "two"],
        "expanded": null,
        "validation": [{"claim": "Sky is blue", "verdict": "Likely true"}, {"claim": "Moon is cheese", "verdict": "Likely false"}]
    }`
    got := ParseResult(raw, ModeBoth, true)

    assert.Equal(t, "one\ntwo", got.Summary)
    assert.Equal(t, "", got.Expanded)
    assert.Equal(t, "claim: Sky is blue\nverdict: Likely true\n\nclaim: Moon is cheese\nverdict: Likely false", got.Validation)
}

func TestParseModeAndLevel(t *testing.T) {
    m, err := ParseMode("")
    require.NoError(t, err)
    assert.Equal(t, ModeBoth, m)
    m, err = ParseMode(" Expand ")
    require.NoError(t, err)
    assert.Equal(t, ModeExpand, m)
    _, err = ParseMode("rewrite")
    assert.Error(t, err)

    l, err := ParseLevel("")
    require.NoError(t, err)
    assert.Equal(t, LevelDetailed, l)
    _, err = ParseLevel("verbose")
    assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
    assert.Equal(t, "abc", Truncate("abcdef", 3))
    assert.Equal(t, "abc", Truncate("abc", 3))
    assert.Equal(t, "日本", Truncate("日本語", 2))
    assert.Equal(t, "abc", Truncate("abc", 0))
}
