package sports

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"sports-home-automation/game"
	"sports-home-automation/season"
)

// PollWorkflow polls every in-season sport concurrently. A failed sport is
// logged and reported; it never fails the others or the workflow.
func PollWorkflow(ctx workflow.Context, req PollRequest) ([]PollResult, error) {
	logger := workflow.GetLogger(ctx)

	gate := season.Gate{FootballJanuaryLastDay: req.FootballJanuaryLastDay}
	sports := gate.Sports(workflow.Now(ctx))
	if len(sports) == 0 {
		logger.Info("Nothing in season, nothing to poll")
		return nil, nil
	}

	// The next scheduled trigger is the retry.
	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 45 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	var a *Activities
	futures := make(map[game.Sport]workflow.Future, len(sports))
	for _, sport := range sports {
		logger.Info("Checking scores", "sport", sport)
		futures[sport] = workflow.ExecuteActivity(ctx, a.PollSport, sport)
	}

	results := make([]PollResult, 0, len(sports))
	for _, sport := range sports {
		var result PollResult
		if err := futures[sport].Get(ctx, &result); err != nil {
			logger.Error("Poll failed", "sport", sport, "error", err)
			result = PollResult{Sport: sport, Error: err.Error()}
		}
		results = append(results, result)
	}

	logger.Info("Poll workflow completed", "sports", len(sports))
	return results, nil
}
