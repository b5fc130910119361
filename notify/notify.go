// Package notify announces notable game transitions on the configured
// channels.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/slack-go/slack"

	"sports-home-automation/game"
	"sports-home-automation/transition"
)

// Notification is a channel-agnostic announcement.
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Build renders the announcement for a transition. NoOp yields an empty
// Notification.
func Build(t transition.Transition, rec game.Record) Notification {
	team := rec.MyTeam
	if team == "" {
		team = "Your team"
	}
	score := fmt.Sprintf("%s %d - %s %d", team, rec.MyTeamScore, rec.OpposingTeam, rec.OpposingTeamScore)

	switch {
	case t.IsWin():
		// Victory!
		// Tulsa beat Rice in college football
		// Final: Tulsa 21 - Rice 17
		return Notification{
			Title:   "Victory!",
			Message: fmt.Sprintf("%s beat %s in %s\nFinal: %s", team, rec.OpposingTeam, rec.Sport.DisplayName(), score),
		}
	case t.Kind == transition.ScoreIncreased:
		return Notification{
			Title:   "Score Update!",
			Message: fmt.Sprintf("%s scored against %s\nScore: %s (%s)", team, rec.OpposingTeam, score, rec.GamePeriod),
		}
	}
	return Notification{}
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the log.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(ctx context.Context, n Notification) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Notification", "title", n.Title, "message", n.Message)
	return nil
}

// SlackNotifier posts to a Slack incoming webhook.
type SlackNotifier struct {
	WebhookURL string
	HTTPClient *http.Client
}

func (s SlackNotifier) Notify(ctx context.Context, n Notification) error {
	if s.WebhookURL == "" {
		return fmt.Errorf("slack webhook URL is not configured")
	}
	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	msg := &slack.WebhookMessage{
		Text: fmt.Sprintf("*%s*\n%s", n.Title, n.Message),
		Blocks: &slack.Blocks{BlockSet: []slack.Block{
			slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, n.Title, false, false)),
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, n.Message, false, false), nil, nil),
		}},
	}
	if err := slack.PostWebhookCustomHTTPContext(ctx, s.WebhookURL, client, msg); err != nil {
		return fmt.Errorf("post slack webhook: %w", err)
	}
	return nil
}

// Channel names accepted in NOTIFICATION_CHANNELS.
const (
	ChannelLogger = "logger"
	ChannelSlack  = "slack"
)

// ParseChannels splits a comma-separated channel list, defaulting to the
// logger.
func ParseChannels(raw string) []string {
	var out []string
	for _, c := range strings.Split(raw, ",") {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return []string{ChannelLogger}
	}
	return out
}

// ForChannel returns the notifier for a channel name.
func ForChannel(channel, slackWebhookURL string, logger *slog.Logger) (Notifier, error) {
	switch channel {
	case ChannelLogger:
		return LogNotifier{Logger: logger}, nil
	case ChannelSlack:
		return SlackNotifier{WebhookURL: slackWebhookURL}, nil
	}
	return nil, fmt.Errorf("unknown notification channel %q", channel)
}
