package sports

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"sports-home-automation/notify"
)

// LightShowWorkflow runs the light show for one notable transition, then
// announces it on every requested channel. A show that cannot start (missing
// credentials, unknown palette) is recorded as skipped, not failed.
func LightShowWorkflow(ctx workflow.Context, req LightShowRequest) (LightShowResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting light show workflow", "gameID", req.Record.GameID, "kind", req.Transition.Kind, "team", req.Transition.Team)

	showOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		HeartbeatTimeout:    45 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	showCtx := workflow.WithActivityOptions(ctx, showOptions)

	var a *Activities
	var result LightShowResult
	if err := workflow.ExecuteActivity(showCtx, a.RunLightShow, req).Get(showCtx, &result); err != nil {
		logger.Error("Light show did not run", "gameID", req.Record.GameID, "error", err)
		result.Skipped = err.Error()
	} else if failed := result.FailedUpdates(); failed > 0 {
		logger.Warn("Some light updates failed", "gameID", req.Record.GameID, "failed", failed)
	}

	notification := notify.Build(req.Transition, req.Record)
	if notification.Title == "" {
		return result, nil
	}

	notifyOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    3,
		},
	}
	notifyCtx := workflow.WithActivityOptions(ctx, notifyOptions)

	for _, channel := range req.Channels {
		send := SendNotificationRequest{Channel: channel, Notification: notification}
		if err := workflow.ExecuteActivity(notifyCtx, a.SendNotification, send).Get(notifyCtx, nil); err != nil {
			logger.Error("Failed to send notification", "gameID", req.Record.GameID, "channel", channel, "error", err)
		}
	}

	logger.Info("Light show workflow completed", "gameID", req.Record.GameID)
	return result, nil
}
