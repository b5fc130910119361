package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	sports "sports-home-automation"
	"sports-home-automation/lights"
	"sports-home-automation/notify"
	"sports-home-automation/scores"
	"sports-home-automation/store"
	"sports-home-automation/teams"
)

func main() {
	// Create Temporal client
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

	registry, err := teams.Load(cfg.TeamsFile)
	if err != nil {
		logger.Error("Unable to load teams", "file", cfg.TeamsFile, "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	secrets := store.NewRedisSecrets(rdb, store.DefaultSecretsKey)

	notifiers := make(map[string]notify.Notifier, len(cfg.NotificationChannels))
	for _, channel := range cfg.NotificationChannels {
		n, err := notify.ForChannel(channel, cfg.SlackWebhookURL, logger)
		if err != nil {
			logger.Error("Unable to configure notifications", "channel", channel, "error", err)
			os.Exit(1)
		}
		notifiers[channel] = n
	}

	activities := &sports.Activities{
		Starter:   c,
		TaskQueue: cfg.TaskQueue,
		Scores:    scores.NewClient(httpClient, logger),
		Feeds:     scores.DefaultFeeds(),
		Teams:     registry,
		Store:     store.NewRedisStore(rdb, cfg.ChangeStream, cfg.GameRetention, logger),
		Bridge: func(ctx context.Context) (lights.Bridge, error) {
			return lights.NewBridgeFromSecrets(ctx, cfg.HueMode, secrets, httpClient, cfg.HueRemoteBaseURL)
		},
		Driver: lights.Driver{
			Hold:       cfg.LightHold,
			WinSteps:   cfg.WinSteps,
			ScoreSteps: cfg.ScoreSteps,
			Logger:     logger,
		},
		Refresher: &lights.TokenRefresher{
			Secrets:    secrets,
			HTTPClient: httpClient,
			TokenURL:   cfg.HueTokenURL,
		},
		Notifiers: notifiers,
	}

	// Create worker
	w := worker.New(c, cfg.TaskQueue, worker.Options{})

	// Register workflows
	w.RegisterWorkflow(sports.SchedulerWorkflow)
	w.RegisterWorkflow(sports.PollWorkflow)
	w.RegisterWorkflow(sports.LightShowWorkflow)
	w.RegisterWorkflow(sports.TokenRefreshWorkflow)

	// Register activities
	w.RegisterActivity(activities)

	logger.Info("Starting Temporal worker", "taskQueue", cfg.TaskQueue, "teams", len(registry.Teams), "hueMode", cfg.HueMode)
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Unable to start worker", "error", err)
		os.Exit(1)
	}
}
