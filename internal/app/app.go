package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"DailyDigest/internal/config"
	"DailyDigest/internal/domain"
	"DailyDigest/internal/infrastructure/llm"
	"DailyDigest/internal/infrastructure/sources"
	"DailyDigest/internal/infrastructure/storage"
	"DailyDigest/internal/logging"
	"DailyDigest/internal/ports"
	"DailyDigest/internal/source"
	"DailyDigest/internal/usecase"
)

// Application wires configuration to the registry, clients, and collector.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	registry   *source.Registry
	summarizer ports.Summarizer
	store      ports.DigestStore
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	registry := source.NewRegistry()
	registry.Register(sources.NewPapers(nil, baseLogger.With("component", "source.papers")))
	registry.Register(sources.NewHackerNews(nil, baseLogger.With("component", "source.hackernews")))
	registry.Register(sources.NewReddit(nil, baseLogger.With("component", "source.reddit")))
	registry.Register(sources.NewTechFeed(nil, baseLogger.With("component", "source.techfeed")))
	registry.Register(sources.NewGithubTrending(nil, baseLogger.With("component", "source.trending")))

	var summarizer ports.Summarizer = llm.NewGeminiClient(cfg.Gemini)
	summarizer = llm.NewRetrying(summarizer, cfg.Gemini.MaxRetries, cfg.Gemini.RetryBaseDelay, cfg.Gemini.RetryMaxDelay)

	return &Application{
		cfg:        cfg,
		logger:     baseLogger,
		registry:   registry,
		summarizer: summarizer,
		store:      storage.NewFileStore(cfg.Output.Dir),
	}
}

// Run executes one collection run for the named track.
func (a *Application) Run(ctx context.Context, track string, now time.Time) (domain.RunReport, error) {
	trackCfg, ok := a.cfg.Tracks[track]
	if !ok {
		return domain.RunReport{}, fmt.Errorf("track %s is not configured", track)
	}

	configured, err := a.configureSources(trackCfg)
	if err != nil {
		return domain.RunReport{}, err
	}

	collector := usecase.NewCollector(usecase.CollectorDeps{
		Sources:     configured,
		Summarizer:  a.summarizer,
		Store:       a.store,
		Concurrency: a.cfg.Run.Concurrency,
		Logger:      a.logger.With("component", "collector"),
	})

	return collector.Run(ctx, track, now), nil
}

func (a *Application) configureSources(trackCfg config.TrackConfig) ([]usecase.ConfiguredSource, error) {
	configured := make([]usecase.ConfiguredSource, 0, len(trackCfg.Sources))
	for _, sc := range trackCfg.Sources {
		src, err := a.registry.Resolve(source.Kind(sc.Kind))
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", sc.Name, err)
		}

		name := sc.Name
		if name == "" {
			name = src.Name()
		}

		configured = append(configured, usecase.ConfiguredSource{
			Name:   name,
			Source: src,
			Request: source.Request{
				Window:     a.cfg.Run.Window(),
				Query:      sc.Query,
				Categories: sc.Categories,
				MaxResults: sc.MaxResults,
				Options:    sc.Options,
			},
		})
	}
	return configured, nil
}
