package sports

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"sports-home-automation/season"
)

// SchedulerWorkflow runs once a minute from a Temporal schedule. When anything
// is in season it spreads Fanout delayed polls across the minute, Spacing
// apart, and returns how many it enqueued.
func SchedulerWorkflow(ctx workflow.Context, req SchedulerRequest) (int, error) {
	logger := workflow.GetLogger(ctx)

	now := workflow.Now(ctx)
	gate := season.Gate{FootballJanuaryLastDay: req.FootballJanuaryLastDay}
	if !gate.Any(now) {
		logger.Info("Not currently football or basketball season, skipping polls")
		return 0, nil
	}

	fanout := req.Fanout
	if fanout <= 0 {
		fanout = 1
	}

	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	var a *Activities
	futures := make([]workflow.Future, 0, fanout)
	for i := 0; i < fanout; i++ {
		trigger := PollTrigger{
			Index:       i,
			Delay:       time.Duration(i) * req.Spacing,
			ScheduledAt: now,
			Poll:        PollRequest{FootballJanuaryLastDay: req.FootballJanuaryLastDay},
		}
		futures = append(futures, workflow.ExecuteActivity(ctx, a.EnqueuePoll, trigger))
	}

	enqueued := 0
	for i, f := range futures {
		var workflowID string
		if err := f.Get(ctx, &workflowID); err != nil {
			logger.Error("Failed to enqueue poll", "index", i, "error", err)
			continue
		}
		enqueued++
	}

	logger.Info("Scheduler finished", "enqueued", enqueued, "requested", fanout)
	return enqueued, nil
}
