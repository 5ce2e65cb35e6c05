package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"ticketdesk/internal/cache"
	"ticketdesk/internal/config"
	"ticketdesk/internal/confirm"
	"ticketdesk/internal/database"
	"ticketdesk/internal/handlers"
	"ticketdesk/internal/jobs"
	"ticketdesk/internal/log"
	"ticketdesk/internal/navigation"
	"ticketdesk/internal/notify"
	"ticketdesk/internal/repository"
	"ticketdesk/internal/server"
	"ticketdesk/internal/service"
	"ticketdesk/internal/storage"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a ticketdesk.yaml config file")
	pflag.Parse()

	cfg, err := config.LoadPath(*configPath)
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)

	ctx := context.Background()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	kv, err := openKV(ctx, cfg, redisClient)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store medium")
	}

	store, err := repository.Open(ctx, kv, cfg.Store.Namespace, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}

	clock := clockwork.NewRealClock()
	feed := notify.NewFeed(clock, cfg.UI.NotifyTTL, cfg.Notifications.FeedSize)
	stream := notify.NewStreamSink(redisClient, cfg.Notifications.Stream, cfg.UI.NotifyTTL, logger)
	notifier := notify.Fanout{
		feed,
		stream,
		notify.LogSink{Log: logger},
	}

	gate := confirm.NewGate(confirm.PresenterFunc(func(p confirm.Prompt) error {
		logger.Info().Str("prompt_id", p.ID).Str("message", p.Message).Msg("confirmation requested")
		return nil
	}), clock, logger)

	navigator := navigation.NewNavigator(clock, logger)
	navigator.OnNavigate(func(page navigation.Page) {
		logger.Debug().Str("page", string(page)).Msg("navigated")
	})

	handlerSet, err := handlers.NewHandlerSet(logger, store, handlers.Runtime{
		Clock:     clock,
		Gate:      gate,
		Feed:      feed,
		Navigator: navigator,
		Notifier:  notifier,
	}, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build handlers")
	}
	handlerSet.Tickets().OnChange(func(s service.Summary) {
		logger.Info().Int("total", s.Total).Int("open", s.Open).Int("closed", s.Closed).Msg("ticket counts changed")
	})

	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := newBackupScheduler(ctx, cfg, store, clock, logger)
	if scheduler != nil {
		if err := scheduler.Start(); err != nil {
			logger.Error().Err(err).Msg("scheduler start failed")
		}
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, gate, scheduler, stream, store, redisClient)
}

func openKV(ctx context.Context, cfg *config.AppConfig, redisClient *redis.Client) (repository.KV, error) {
	if cfg.Store.Driver != config.StoreDriverPostgres {
		return cache.NewRedisKV(redisClient), nil
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	kv, err := database.NewPostgresKV(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return kv, nil
}

func newBackupScheduler(ctx context.Context, cfg *config.AppConfig, store *repository.Store, clock clockwork.Clock, logger zerolog.Logger) *jobs.Scheduler {
	if !cfg.Backup.Enabled {
		return nil
	}
	if !cfg.ObjectStore.Enabled {
		logger.Warn().Msg("backups enabled without an object store; skipping")
		return nil
	}

	objectStore, err := storage.NewObjectStore(cfg.ObjectStore)
	if err != nil {
		logger.Error().Err(err).Msg("failed to init object store")
		return nil
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure bucket failed")
	}

	return jobs.NewScheduler(store, objectStore, cfg.Backup, clock, logger)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, gate *confirm.Gate, scheduler *jobs.Scheduler, stream *notify.StreamSink, store *repository.Store, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Unanswered prompts resolve false so background operations can finish.
	gate.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if scheduler != nil {
		scheduler.Stop()
	}

	// Flush queued notifications while redis is still open.
	stream.Close()

	if err := store.Close(); err != nil {
		logger.Error().Err(err).Msg("store close error")
	}
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
