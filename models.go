package sports

import (
	"time"

	"sports-home-automation/game"
	"sports-home-automation/lights"
	"sports-home-automation/notify"
	"sports-home-automation/transition"
)

// SchedulerRequest is the input of every scheduled SchedulerWorkflow run.
type SchedulerRequest struct {
	Fanout                 int           `json:"fanout"`
	Spacing                time.Duration `json:"spacing"`
	FootballJanuaryLastDay int           `json:"footballJanuaryLastDay"`
}

// PollTrigger asks EnqueuePoll to start one delayed PollWorkflow.
type PollTrigger struct {
	Index       int           `json:"index"`
	Delay       time.Duration `json:"delay"`
	ScheduledAt time.Time     `json:"scheduledAt"`
	Poll        PollRequest   `json:"poll"`
}

type PollRequest struct {
	FootballJanuaryLastDay int `json:"footballJanuaryLastDay"`
}

// PollResult reports one sport's poll. Error is set when the feed could not
// be used; the poll itself still succeeds.
type PollResult struct {
	Sport   game.Sport `json:"sport"`
	Games   int        `json:"games"`
	Found   []string   `json:"found,omitempty"`
	Written int        `json:"written"`
	Error   string     `json:"error,omitempty"`
}

// LightShowRequest is the input of LightShowWorkflow.
type LightShowRequest struct {
	Transition transition.Transition `json:"transition"`
	Record     game.Record           `json:"record"`
	Channels   []string              `json:"channels"`
}

type LightShowResult struct {
	Steps   []lights.StepResult `json:"steps"`
	Skipped string              `json:"skipped,omitempty"`
}

// FailedUpdates counts fixture PUTs that failed across all steps.
func (r LightShowResult) FailedUpdates() int {
	n := 0
	for _, s := range r.Steps {
		n += s.Failed()
	}
	return n
}

// SendNotificationRequest delivers one notification on one channel.
type SendNotificationRequest struct {
	Channel      string              `json:"channel"`
	Notification notify.Notification `json:"notification"`
}
