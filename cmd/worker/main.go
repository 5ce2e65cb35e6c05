package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"ticketdesk/internal/cache"
	"ticketdesk/internal/config"
	"ticketdesk/internal/log"
	"ticketdesk/internal/queue"
	"ticketdesk/internal/tasks"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a ticketdesk.yaml config file")
	pflag.Parse()

	cfg, err := config.LoadPath(*configPath)
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level).With().Str("component", "worker").Logger()

	client, err := cache.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	processor := tasks.NewProcessor(logger)
	consumer := queue.NewConsumer(
		client,
		cfg.Notifications.Stream,
		cfg.Notifications.Group,
		cfg.Notifications.Consumer,
		cfg.Notifications.ClaimInterval,
		logger,
		processor,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("stream", cfg.Notifications.Stream).Msg("worker started")
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("consumer stopped unexpectedly")
	}
	logger.Info().Msg("worker exited cleanly")
}
