// Package app wires fetching, extraction, enhancement and rendering into the
// two pipeline stages exposed by the CLI and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/hyperifyio/goenhance/internal/cache"
	"github.com/hyperifyio/goenhance/internal/enhance"
	"github.com/hyperifyio/goenhance/internal/extract"
	"github.com/hyperifyio/goenhance/internal/fetch"
	"github.com/hyperifyio/goenhance/internal/llm"
	"github.com/hyperifyio/goenhance/internal/render"
)

// llmTimeout bounds one model exchange.
const llmTimeout = 120 * time.Second

type sourceGetter interface {
	Get(ctx context.Context, rawURL string) ([]byte, string, error)
}

type enhancer interface {
	Enhance(ctx context.Context, req enhance.Request) (enhance.Result, error)
}

type App struct {
	cfg       Config
	fetcher   sourceGetter
	extractor *extract.Extractor
	enhancer  enhancer
	renderer  *render.Renderer
	lister    llm.ModelLister
	now       func() time.Time
}

// EnhanceRequest is the input of the first stage.
type EnhanceRequest struct {
	URL      string
	Mode     enhance.Mode
	Level    enhance.Level
	Validate bool
}

// EnhanceResponse is the output of the first stage and, replayed, the input
// of the second.
type EnhanceResponse struct {
	Meta   render.Meta    `json:"meta"`
	Output enhance.Result `json:"output"`
}

// ErrEmptyURL is returned when a request carries no URL.
var ErrEmptyURL = errors.New("url is required")

func New(ctx context.Context, cfg Config) (*App, error) {
	ApplyDefaults(&cfg)
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("llm client: %w", err)
	}
	heuristic, err := extract.HeuristicByName(cfg.Heuristic)
	if err != nil {
		return nil, err
	}

	var (
		httpCache *cache.HTTPCache
		llmCache  *cache.LLMCache
	)
	if cfg.CachingEnabled() {
		httpCache = cache.NewHTTPCache(cfg.CacheTTL)
		llmCache = cache.NewLLMCache(cfg.CacheTTL)
	}

	a := &App{
		cfg: cfg,
		fetcher: &fetch.Client{
			HTTPClient:        newHTTPClient(cfg.FetchTimeout),
			UserAgent:         cfg.UserAgent,
			PerRequestTimeout: cfg.FetchTimeout,
			Cache:             httpCache,
		},
		extractor: extract.New(heuristic),
		enhancer: &enhance.Requester{
			Client:        client,
			Model:         cfg.LLMModel,
			Cache:         llmCache,
			MaxInputChars: cfg.MaxInputChars,
			SystemPrompt:  cfg.SystemPrompt,
			Verbose:       cfg.Verbose,
		},
		renderer: render.New(),
		now:      time.Now,
	}
	if l, ok := client.(llm.ModelLister); ok {
		a.lister = l
	}
	return a, nil
}

// NewRenderOnly returns an App that can only render saved results. It needs
// no LLM settings; Enhance on it fails with enhance.ErrNotConfigured.
func NewRenderOnly() *App {
	return &App{renderer: render.New(), now: time.Now}
}

func newLLMClient(ctx context.Context, cfg Config) (llm.Client, error) {
	if strings.EqualFold(cfg.LLMProvider, ProviderGemini) {
		gc := &genai.ClientConfig{
			APIKey:     cfg.LLMAPIKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: newHTTPClient(llmTimeout),
		}
		if cfg.LLMBaseURL != "" {
			gc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.LLMBaseURL}
		}
		client, err := genai.NewClient(ctx, gc)
		if err != nil {
			return nil, err
		}
		return &llm.GeminiProvider{Inner: client}, nil
	}

	// Build OpenAI-compatible config
	transportCfg := openai.DefaultConfig(cfg.LLMAPIKey)
	if cfg.LLMBaseURL != "" {
		transportCfg.BaseURL = cfg.LLMBaseURL
	}
	transportCfg.HTTPClient = newHTTPClient(llmTimeout)
	return &llm.OpenAIProvider{Inner: openai.NewClientWithConfig(transportCfg)}, nil
}

// Preflight lists the provider's models as a quick connectivity check. It is
// best-effort: failures are logged and never returned.
func (a *App) Preflight(ctx context.Context) {
	if a.lister == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := a.lister.ListModels(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
		return
	}
	if len(models.Models) > 0 {
		log.Info().Int("count", len(models.Models)).Msg("LLM models available")
	} else {
		log.Warn().Msg("LLM returned zero models")
	}
}

func (a *App) Close() {
	// nothing yet
}

// Config returns the effective configuration after defaults were applied.
func (a *App) Config() Config { return a.cfg }

// Enhance fetches the page, extracts its content and asks the model to
// enhance it.
func (a *App) Enhance(ctx context.Context, req EnhanceRequest) (EnhanceResponse, error) {
	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		return EnhanceResponse{}, &FetchError{URL: rawURL, Err: ErrEmptyURL}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return EnhanceResponse{}, &FetchError{URL: rawURL, Err: err}
	}

	if a.fetcher == nil || a.enhancer == nil {
		return EnhanceResponse{}, &EnhancementError{Err: enhance.ErrNotConfigured}
	}

	start := time.Now()
	raw, contentType, err := a.fetcher.Get(ctx, rawURL)
	if err != nil {
		return EnhanceResponse{}, &FetchError{URL: rawURL, Err: err}
	}
	doc, err := a.extractor.Extract(raw, u)
	if err != nil {
		return EnhanceResponse{}, &FetchError{URL: rawURL, Err: fmt.Errorf("extract: %w", err)}
	}
	log.Debug().Str("url", rawURL).Str("content_type", contentType).Int("bytes", len(raw)).Int("chars", len(doc.Body)).Dur("elapsed", time.Since(start)).Msg("extracted")

	out, err := a.enhancer.Enhance(ctx, enhance.Request{
		Text:      doc.Body,
		SourceURL: rawURL,
		Mode:      req.Mode,
		Level:     req.Level,
		Validate:  req.Validate,
	})
	if err != nil {
		return EnhanceResponse{}, &EnhancementError{Err: err}
	}
	log.Info().Str("url", rawURL).Str("title", doc.Title).Dur("elapsed", time.Since(start)).Msg("enhanced")

	return EnhanceResponse{
		Meta: render.Meta{
			URL:       rawURL,
			Title:     doc.Title,
			Timestamp: render.MillisTimestamp(a.now()),
		},
		Output: out,
	}, nil
}

// RenderPDF draws a previously enhanced document.
func (a *App) RenderPDF(meta render.Meta, out enhance.Result) ([]byte, error) {
	b, err := a.renderer.Render(meta, out)
	if err != nil {
		return nil, &RenderError{Err: err}
	}
	return b, nil
}
