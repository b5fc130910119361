package sports

import (
	"context"
	"fmt"
	"log/slog"

	crerr "github.com/cockroachdb/errors"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"sports-home-automation/store"
	"sports-home-automation/transition"
)

// ScoreProcessor turns store change events into light shows.
type ScoreProcessor struct {
	Starter   WorkflowStarter
	TaskQueue string
	Channels  []string
	Logger    *slog.Logger
}

// HandleChange classifies one change and, when it is notable, starts the light
// show workflow for it. The workflow ID is derived from the transition so a
// redelivered change cannot start a second show. Returning an error leaves the
// change pending for redelivery.
func (p *ScoreProcessor) HandleChange(ctx context.Context, change store.Change) error {
	_, err := p.Process(ctx, change)
	return err
}

// Process is HandleChange that also reports the classification.
func (p *ScoreProcessor) Process(ctx context.Context, change store.Change) (transition.Transition, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if change.New == nil {
		logger.Warn("Change has no new image, skipping", "messageID", change.ID)
		return transition.Transition{Kind: transition.NoOp}, nil
	}

	current := *change.New
	t := transition.Classify(transition.NewContext(change.Old, current))
	logger.Info("Classified change", "gameID", current.GameID, "kind", t.Kind, "record", current.String())
	if !t.Notable() {
		return t, nil
	}

	options := client.StartWorkflowOptions{
		ID:                                       LightShowWorkflowID(current.GameID, t, current.MyTeamScore),
		TaskQueue:                                p.TaskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}
	req := LightShowRequest{Transition: t, Record: current, Channels: p.Channels}

	we, err := p.Starter.ExecuteWorkflow(ctx, options, LightShowWorkflow, req)
	if err != nil {
		var started *serviceerror.WorkflowExecutionAlreadyStarted
		if crerr.As(err, &started) {
			logger.Info("Light show already started for this transition", "workflowID", options.ID)
			return t, nil
		}
		return t, fmt.Errorf("unable to start light show %s: %w", options.ID, err)
	}
	logger.Info("Started light show", "workflowID", we.GetID(), "runID", we.GetRunID())
	return t, nil
}
