package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"

	sports "sports-home-automation"
	"sports-home-automation/store"
)

// Reads game changes from Redis and starts a light show for every notable one.
func main() {
	c, err := client.Dial(sports.GetClientOptions())
	logger := slog.Default()
	if err != nil {
		logger.Error("Unable to create Temporal client", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	cfg := sports.LoadConfig()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error("Invalid REDIS_URL", "error", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("Unable to reach Redis", "error", err)
		os.Exit(1)
	}

	processor := &sports.ScoreProcessor{
		Starter:   c,
		TaskQueue: cfg.TaskQueue,
		Channels:  cfg.NotificationChannels,
		Logger:    logger,
	}
	changes := store.NewChangeStream(rdb, cfg.ChangeStream, cfg.ChangeGroup, logger)

	logger.Info("Starting score processor", "stream", cfg.ChangeStream, "group", cfg.ChangeGroup, "consumer", changes.Consumer())
	if err := changes.Consume(ctx, processor.HandleChange); err != nil {
		logger.Error("Score processor stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("Score processor stopped")
}
