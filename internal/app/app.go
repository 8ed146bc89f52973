package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"ListingRadar/internal/config"
	"ListingRadar/internal/domain"
	"ListingRadar/internal/infrastructure/extract"
	"ListingRadar/internal/infrastructure/fetch"
	"ListingRadar/internal/infrastructure/scheduler"
	"ListingRadar/internal/infrastructure/storage"
	"ListingRadar/internal/infrastructure/telegram"
	"ListingRadar/internal/infrastructure/topics"
	"ListingRadar/internal/logging"
	"ListingRadar/internal/ports"
	"ListingRadar/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg          config.Config
	orchestrator *usecase.Orchestrator
	topics       ports.TopicSource
	logger       *slog.Logger
}

// New builds a runnable application instance from configuration.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := buildStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("build history store: %w", err)
	}

	ledger := usecase.NewLedger(
		store,
		storage.NewFlagSignal(cfg.Storage.FlagPath),
		baseLogger.With("component", "ledger"),
	)

	messenger := telegram.NewMessenger(
		cfg.Notifications.Telegram.BotToken,
		cfg.Notifications.Telegram.ChatID,
	)
	announcer := usecase.NewAnnouncer(
		messenger,
		cfg.Scraper.MessagePauseDuration(),
		baseLogger.With("component", "announcer"),
	)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher:       fetch.New(&http.Client{Timeout: cfg.Scraper.FetchTimeoutDuration()}, baseLogger.With("component", "fetcher")),
		Extractor:     extract.New(baseLogger.With("component", "extractor")),
		Ledger:        ledger,
		Announcer:     announcer,
		PrefetchDelay: cfg.Scraper.PrefetchDelayDuration(),
		Logger:        baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:          cfg,
		orchestrator: usecase.NewOrchestrator(pipeline, announcer, baseLogger.With("component", "orchestrator")),
		topics:       buildTopicSource(cfg),
		logger:       baseLogger,
	}, nil
}

// RunOnce executes a single orchestration pass over the current topic set
// and reports an error when any topic failed.
func (a *Application) RunOnce(ctx context.Context) error {
	topicSet, err := a.topics.Topics(ctx)
	if err != nil {
		return fmt.Errorf("load topics: %w", err)
	}

	outcomes := a.orchestrator.Run(ctx, topicSet)
	failed := 0
	for _, out := range outcomes {
		if out.Failed() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d topics failed", failed, len(topicSet))
	}
	return nil
}

// RunScheduled ticks orchestration passes on the configured cron expression
// until the context is cancelled.
func (a *Application) RunScheduled(ctx context.Context) error {
	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, a.orchestrator, a.topics, a.logger.With("component", "scheduler"))

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression, "timezone", a.cfg.Scheduler.Timezone)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return sched.Stop(stopCtx)
}

func buildStore(ctx context.Context, cfg config.StorageConfig) (ports.LedgerStore, error) {
	switch cfg.Backend {
	case "", "file":
		return storage.NewFileStore(cfg.DataDir), nil
	case "postgres":
		return storage.OpenPostgresStore(ctx, cfg.DSN)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return storage.NewRedisStore(client, cfg.Redis.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func buildTopicSource(cfg config.Config) ports.TopicSource {
	if cfg.TopicsJSON != "" {
		return topics.NewJSONSource(cfg.TopicsJSON)
	}

	static := make([]domain.TopicConfig, 0, len(cfg.Topics))
	for _, t := range cfg.Topics {
		static = append(static, domain.TopicConfig{Topic: t.Topic, URL: t.URL, Disabled: t.Disabled})
	}
	return topics.NewStaticSource(static)
}
