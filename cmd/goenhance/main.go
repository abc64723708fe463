package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hyperifyio/goenhance/internal/app"
	"github.com/hyperifyio/goenhance/internal/enhance"
	"github.com/hyperifyio/goenhance/internal/render"
	"github.com/hyperifyio/goenhance/internal/server"
)

// options selects what a single invocation does.
type options struct {
	URL        string
	Mode       string
	Level      string
	Validate   bool
	OutputPath string
	JSONPath   string
	RenderPath string
	Serve      bool
}

var errUsage = errors.New("one of -url, -render or -serve is required")

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(console)

	if err := app.LoadEnvFiles(".env", ".env.local"); err != nil {
		log.Warn().Err(err).Msg("dotenv load failed")
	}

	var (
		opts        options
		configPath  string
		showVersion bool
		cfg         app.Config
	)
	flag.StringVar(&opts.URL, "url", "", "Page URL to fetch, enhance and render")
	flag.StringVar(&opts.Mode, "mode", string(enhance.ModeBoth), "Enhancement mode: summarize, expand or both")
	flag.StringVar(&opts.Level, "level", string(enhance.LevelDetailed), "Detail level: brief or detailed")
	flag.BoolVar(&opts.Validate, "validate", true, "Ask the model to validate the article's claims")
	flag.StringVar(&opts.OutputPath, "output", "", "PDF output path (default derived from the title)")
	flag.StringVar(&opts.JSONPath, "json", "", "Also write the enhancement result as JSON to this path")
	flag.StringVar(&opts.RenderPath, "render", "", "Render a saved {meta, output} JSON file to PDF without fetching")
	flag.BoolVar(&opts.Serve, "serve", false, "Run the HTTP API server")
	flag.StringVar(&cfg.ListenAddr, "addr", "", "Listen address for -serve (default :8000)")
	flag.StringVar(&configPath, "config", os.Getenv("GOENHANCE_CONFIG"), "Path to YAML or JSON config file")
	flag.StringVar(&cfg.LLMProvider, "llm.provider", "", "LLM provider: openai or gemini")
	flag.StringVar(&cfg.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL")
	flag.StringVar(&cfg.LLMModel, "llm.model", "", "Model name (default gpt-4o-mini)")
	flag.StringVar(&cfg.LLMAPIKey, "llm.key", "", "API key for the LLM provider")
	flag.IntVar(&cfg.MaxInputChars, "max.inputChars", 0, "Maximum article characters sent to the model (default 30000)")
	flag.StringVar(&cfg.Heuristic, "extract.heuristic", "", "Main-content heuristic: readability or trafilatura")
	flag.DurationVar(&cfg.FetchTimeout, "fetch.timeout", 0, "Timeout for fetching the page (default 12s)")
	flag.DurationVar(&cfg.CacheTTL, "cache.ttl", 0, "Lifetime of in-memory page and model cache entries; 0 disables caching")
	flag.BoolVar(&cfg.NoCache, "no-cache", false, "Disable the in-memory page and model caches")
	flag.StringVar(&cfg.LogFile, "log.file", "", "Also write logs to this file, rotated")
	flag.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("goenhance %s (%s)\n", app.BuildVersion, app.BuildCommit)
		return
	}

	// Precedence: flags > env > config file > defaults
	app.ApplyEnvToConfig(&cfg)
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("config file")
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyDefaults(&cfg)
	closeLog := setupLogging(console, cfg)
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts); err != nil {
		log.Error().Err(err).Msg("run failed")
		stop()
		closeLog()
		if errors.Is(err, errUsage) {
			flag.Usage()
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// setupLogging applies the level and, when configured, tees logs into a
// rotated file. The returned func closes the file.
func setupLogging(console io.Writer, cfg app.Config) func() {
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if cfg.LogFile == "" {
		return func() {}
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, lj)).With().Timestamp().Logger()
	return func() { _ = lj.Close() }
}

func run(ctx context.Context, cfg app.Config, opts options) error {
	switch {
	case opts.RenderPath != "":
		return renderFile(opts)
	case opts.Serve:
		return serve(ctx, cfg)
	case opts.URL != "":
		return enhanceURL(ctx, cfg, opts)
	}
	return errUsage
}

func enhanceURL(ctx context.Context, cfg app.Config, opts options) error {
	mode, err := enhance.ParseMode(opts.Mode)
	if err != nil {
		return err
	}
	level, err := enhance.ParseLevel(opts.Level)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()
	a.Preflight(ctx)

	resp, err := a.Enhance(ctx, app.EnhanceRequest{URL: opts.URL, Mode: mode, Level: level, Validate: opts.Validate})
	if err != nil {
		return err
	}
	if opts.JSONPath != "" {
		b, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		if err := os.WriteFile(opts.JSONPath, append(b, '\n'), 0o644); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
		log.Info().Str("out", opts.JSONPath).Msg("wrote enhancement JSON")
	}
	return writePDF(a, resp, opts.OutputPath)
}

func renderFile(opts options) error {
	b, err := os.ReadFile(opts.RenderPath)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}
	var payload app.EnhanceResponse
	if err := json.Unmarshal(b, &payload); err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}
	return writePDF(app.NewRenderOnly(), payload, opts.OutputPath)
}

func writePDF(a *app.App, resp app.EnhanceResponse, out string) error {
	doc, err := a.RenderPDF(resp.Meta, resp.Output)
	if err != nil {
		return err
	}
	if out == "" {
		out = render.Filename(resp.Meta.Title)
	}
	if err := os.WriteFile(out, doc, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	log.Info().Str("out", out).Int("bytes", len(doc)).Msg("wrote PDF")
	return nil
}

func serve(ctx context.Context, cfg app.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()
	a.Preflight(ctx)

	srv := &http.Server{
		Addr:              a.Config().ListenAddr,
		Handler:           server.New(a),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
