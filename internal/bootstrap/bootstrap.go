// Package bootstrap is the composition root: it wires configuration,
// infrastructure adapters, and the query engine into a runnable
// application.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/campusworks/admissions-assistant/internal/config"
	"github.com/campusworks/admissions-assistant/internal/core/domain"
	"github.com/campusworks/admissions-assistant/internal/core/ports"
	"github.com/campusworks/admissions-assistant/internal/core/usecase"
	"github.com/campusworks/admissions-assistant/internal/infrastructure/index/keyword"
	"github.com/campusworks/admissions-assistant/internal/infrastructure/index/semantic"
	"github.com/campusworks/admissions-assistant/internal/infrastructure/knowledge/pdfguide"
	"github.com/campusworks/admissions-assistant/internal/infrastructure/knowledge/postgres"
	"github.com/campusworks/admissions-assistant/internal/infrastructure/knowledge/xlsxfile"
	"github.com/campusworks/admissions-assistant/internal/infrastructure/knowledge/yamlfile"
	"github.com/campusworks/admissions-assistant/internal/infrastructure/llm/ollama"
	"github.com/campusworks/admissions-assistant/internal/infrastructure/memory"
	natsqueue "github.com/campusworks/admissions-assistant/internal/infrastructure/queue/nats"
	"github.com/campusworks/admissions-assistant/internal/infrastructure/resilience"
	"github.com/campusworks/admissions-assistant/internal/observability/logging"
	"github.com/campusworks/admissions-assistant/internal/observability/metrics"
)

const serviceName = "admissions-assistant"

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.AssistantMetrics
	Engine  ports.QueryEngine

	source      ports.RecordSource
	guideLoader *pdfguide.Loader
	queue       *natsqueue.Queue
	db          *sql.DB
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	assistantMetrics := metrics.NewAssistantMetrics(serviceName)
	executor := resilience.NewExecutor(resilience.DefaultPolicy(), logger)

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: assistantMetrics,
	}

	if err := app.initSource(ctx, cfg); err != nil {
		return nil, err
	}
	if cfg.GuidePDFPath != "" {
		app.guideLoader = pdfguide.NewLoader(cfg.GuidePDFPath, cfg.GuideTitle)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
	embedder := ollama.NewEmbedder(ollamaClient)

	var completions ports.CompletionProvider
	if cfg.GenerationEnabled {
		completions = ollama.NewCompleter(ollamaClient)
	}

	store := memory.New(cfg.MemoryMaxHistory, cfg.MemoryCacheTTL, cfg.MemoryIdleTTL, logger)
	store.StartJanitor(ctx, cfg.MemorySweepInterval)

	app.Engine = usecase.NewQueryEngine(
		embedder,
		semantic.New(embedder, logger, cfg.EmbedBatchSize, cfg.EmbedDimension),
		keyword.New(),
		store,
		usecase.NewGenerator(completions, cfg.GenerationEnabled, logger),
		usecase.Limits{
			TopK:           cfg.SearchTopK,
			SemanticWeight: cfg.SemanticWeight,
			KeywordWeight:  cfg.KeywordWeight,
			RerankEnabled:  cfg.RerankEnabled,
		},
		logger,
	)

	// A dead embedding backend at boot keeps the process alive but
	// unready; the first successful reload brings it up.
	if err := app.ReloadKnowledge(ctx, "startup"); err != nil {
		logger.Error("initial knowledge load failed, serving unready until reload", "error", err)
	}

	if cfg.NATSURL != "" {
		queue, err := natsqueue.New(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{
			Executor: executor,
			Logger:   logger,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init reload queue: %w", err)
		}
		app.queue = queue
		go func() {
			if err := queue.SubscribeReload(ctx, app.ReloadKnowledge); err != nil && ctx.Err() == nil {
				logger.Error("reload subscription ended", "error", err)
			}
		}()
	}

	return app, nil
}

// ReloadKnowledge re-reads the record source and rebuilds both retrieval
// indices. Safe to call concurrently with queries; the indices swap
// atomically.
func (a *App) ReloadKnowledge(ctx context.Context, reason string) error {
	err := a.reloadKnowledge(ctx, reason)
	a.Metrics.RecordKnowledgeReload(serviceName, err)
	return err
}

func (a *App) reloadKnowledge(ctx context.Context, reason string) error {
	if err := a.Engine.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}

	records, err := a.source.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	var guides []domain.GuideText
	if a.guideLoader != nil {
		guides, err = a.guideLoader.Load(ctx)
		if err != nil {
			// The structured records alone still make a useful knowledge
			// base.
			a.Logger.Warn("guide pdf unavailable, loading records only", "error", err)
			guides = nil
		}
	}

	if err := a.Engine.LoadKnowledgeBase(ctx, records, guides); err != nil {
		return fmt.Errorf("load knowledge base: %w", err)
	}

	stats := a.Engine.Stats()
	a.Metrics.SetDocumentCount(stats.DocumentCount)
	a.Logger.Info("knowledge base reloaded", "reason", reason, "documents", stats.DocumentCount)
	return nil
}

func (a *App) initSource(ctx context.Context, cfg config.Config) error {
	switch cfg.KnowledgeSource {
	case "postgres":
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		source := postgres.NewSource(db)
		if err := source.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return fmt.Errorf("ensure schema: %w", err)
		}
		a.db = db
		a.source = source
	case "yaml":
		a.source = yamlfile.NewSource(cfg.KnowledgeFile)
	case "xlsx":
		a.source = xlsxfile.NewSource(cfg.KnowledgeFile)
	default:
		return fmt.Errorf("unknown knowledge source %q", cfg.KnowledgeSource)
	}
	return nil
}

func (a *App) Close() {
	if a.queue != nil {
		a.queue.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
