package sports

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"sports-home-automation/lights"
	"sports-home-automation/notify"
	"sports-home-automation/scores"
	"sports-home-automation/store"
)

// Config is everything the binaries read from the environment, apart from the
// Temporal connection settings handled by GetClientOptions.
type Config struct {
	TaskQueue string
	RedisURL  string
	TeamsFile string

	HueMode          lights.Mode
	HueRemoteBaseURL string
	HueTokenURL      string
	HTTPTimeout      time.Duration

	PollFanout             int
	PollSpacing            time.Duration
	FootballJanuaryLastDay int

	LightHold  time.Duration
	WinSteps   int
	ScoreSteps int

	NotificationChannels []string
	SlackWebhookURL      string

	GameRetention time.Duration
	ChangeStream  string
	ChangeGroup   string
}

// LoadConfig loads an optional .env file and reads the environment, falling
// back to defaults for unset or malformed values.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	return Config{
		TaskQueue: envOrDefault("TASK_QUEUE", TaskQueueName),
		RedisURL:  envOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		TeamsFile: os.Getenv("TEAMS_FILE"),

		HueMode:          lights.Mode(envOrDefault("HUE_MODE", string(lights.ModeLocal))),
		HueRemoteBaseURL: envOrDefault("HUE_REMOTE_BASE_URL", lights.DefaultRemoteBase),
		HueTokenURL:      envOrDefault("HUE_TOKEN_URL", lights.DefaultTokenURL),
		HTTPTimeout:      durationEnvOrDefault("HTTP_TIMEOUT", scores.DefaultTimeout),

		PollFanout:             intEnvOrDefault("POLL_FANOUT", 6),
		PollSpacing:            durationEnvOrDefault("POLL_SPACING", 10*time.Second),
		FootballJanuaryLastDay: dayEnvOrDefault("FOOTBALL_JANUARY_LAST_DAY", 0),

		LightHold:  durationEnvOrDefault("LIGHT_HOLD", lights.DefaultHold),
		WinSteps:   intEnvOrDefault("WIN_STEPS", lights.DefaultWinSteps),
		ScoreSteps: intEnvOrDefault("SCORE_STEPS", lights.DefaultScoreSteps),

		NotificationChannels: notify.ParseChannels(os.Getenv("NOTIFICATION_CHANNELS")),
		SlackWebhookURL:      os.Getenv("SLACK_WEBHOOK_URL"),

		GameRetention: durationEnvOrDefault("GAME_RETENTION", store.DefaultRetention),
		ChangeStream:  envOrDefault("CHANGE_STREAM", store.DefaultChangeStream),
		ChangeGroup:   envOrDefault("CHANGE_GROUP", store.DefaultChangeGroup),
	}
}

func envOrDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func durationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		slog.Warn("Ignoring invalid duration", "key", key, "value", raw)
		return defaultValue
	}
	return parsed
}

func intEnvOrDefault(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		slog.Warn("Ignoring invalid integer", "key", key, "value", raw)
		return defaultValue
	}
	return val
}

// dayEnvOrDefault accepts 0 (no cutoff) through 31.
func dayEnvOrDefault(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 || val > 31 {
		slog.Warn("Ignoring invalid day of month", "key", key, "value", raw)
		return defaultValue
	}
	return val
}
