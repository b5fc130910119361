package sports

import (
	"time"

	crerr "github.com/cockroachdb/errors"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// TokenRefreshWorkflow rotates the Hue cloud token pair. It runs every few
// days from a Temporal schedule. Missing credentials end the run without
// failing it; there is nothing to rotate until they are stored.
func TokenRefreshWorkflow(ctx workflow.Context) error {
	logger := workflow.GetLogger(ctx)

	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        30 * time.Second,
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeMissingCredentials},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	var a *Activities
	if err := workflow.ExecuteActivity(ctx, a.RefreshHueToken).Get(ctx, nil); err != nil {
		var appErr *temporal.ApplicationError
		if crerr.As(err, &appErr) && appErr.Type() == ErrTypeMissingCredentials {
			logger.Warn("Hue credentials missing, skipping token refresh", "error", err)
			return nil
		}
		logger.Error("Hue token refresh failed", "error", err)
		return err
	}
	logger.Info("Hue token refresh completed")
	return nil
}
