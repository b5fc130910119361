package sports

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"golang.org/x/oauth2"

	"sports-home-automation/game"
	"sports-home-automation/lights"
	"sports-home-automation/notify"
	"sports-home-automation/scores"
	"sports-home-automation/teams"
)

// ErrTypeMissingCredentials is the application error type for absent secrets.
const ErrTypeMissingCredentials = "MissingCredentials"

// WorkflowStarter is the part of client.Client the activities and the score
// processor use.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

type ScoreSource interface {
	FetchCandidates(ctx context.Context, feed scores.Feed) ([]scores.Candidate, error)
}

type GameStore interface {
	Put(ctx context.Context, rec game.Record) (bool, error)
}

// TokenRefresher refreshes the Hue cloud token pair.
type TokenRefresher interface {
	Refresh(ctx context.Context) (*oauth2.Token, error)
}

// BridgeFactory builds the light bridge from current credentials. It runs per
// show so a freshly refreshed token is picked up.
type BridgeFactory func(ctx context.Context) (lights.Bridge, error)

// Activities holds the dependencies of every activity; register a pointer to
// it with the worker.
type Activities struct {
	Starter   WorkflowStarter
	TaskQueue string

	Scores ScoreSource
	Feeds  map[game.Sport]scores.Feed
	Teams  *teams.Registry
	Store  GameStore

	Bridge    BridgeFactory
	Driver    lights.Driver
	Refresher TokenRefresher
	Notifiers map[string]notify.Notifier
}

// EnqueuePoll starts one PollWorkflow after the trigger's delay. A trigger that
// was already started counts as enqueued.
func (a *Activities) EnqueuePoll(ctx context.Context, trigger PollTrigger) (string, error) {
	logger := activity.GetLogger(ctx)

	options := client.StartWorkflowOptions{
		ID:                                       PollWorkflowID(trigger.ScheduledAt, trigger.Index),
		TaskQueue:                                a.TaskQueue,
		StartDelay:                               trigger.Delay,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}

	we, err := a.Starter.ExecuteWorkflow(ctx, options, PollWorkflow, trigger.Poll)
	if err != nil {
		var started *serviceerror.WorkflowExecutionAlreadyStarted
		if crerr.As(err, &started) {
			logger.Info("Poll already enqueued", "workflowID", options.ID)
			return options.ID, nil
		}
		return "", fmt.Errorf("unable to enqueue poll %s: %w", options.ID, err)
	}
	logger.Info("Enqueued poll", "workflowID", we.GetID(), "delay", trigger.Delay)
	return we.GetID(), nil
}

// PollSport fetches one sport's feed and stores the games of every tracked
// team found in it. Feed trouble is reported in the result, not as an error,
// since the next trigger polls again anyway. A located game that is malformed,
// or that has the team's name on neither side, is reported and not stored.
func (a *Activities) PollSport(ctx context.Context, sport game.Sport) (PollResult, error) {
	logger := activity.GetLogger(ctx)
	result := PollResult{Sport: sport}

	feed, ok := a.Feeds[sport]
	if !ok {
		result.Error = fmt.Sprintf("no feed configured for %s", sport)
		logger.Warn("No feed configured", "sport", sport)
		return result, nil
	}

	cands, err := a.Scores.FetchCandidates(ctx, feed)
	if err != nil {
		result.Error = err.Error()
		logger.Error("Fetching scores failed", "sport", sport, "error", err)
		return result, nil
	}
	result.Games = len(cands)

	for _, team := range a.Teams.ForSport(sport) {
		cand, found := scores.Locate(cands, team.Match)
		if !found {
			logger.Info("Team is not playing right now", "team", team.Name, "sport", sport)
			continue
		}
		rec, err := cand.Record(team.Name)
		if err != nil {
			logger.Warn("Tracked game is unusable, not storing it", "team", team.Name, "gameID", cand.GameID, "title", cand.Title, "error", err)
			result.Error = err.Error()
			continue
		}
		result.Found = append(result.Found, rec.GameID)
		logger.Info("Found game", "team", team.Name, "gameID", rec.GameID, "title", cand.Title,
			"startTime", cand.StartTime, "completed", cand.Completed)

		changed, err := a.Store.Put(ctx, rec)
		if err != nil {
			logger.Error("Writing game failed", "gameID", rec.GameID, "error", err)
			result.Error = err.Error()
			continue
		}
		if changed {
			result.Written++
		}
	}
	return result, nil
}

// RunLightShow drives the configured fixtures for a transition, heartbeating
// once per step.
func (a *Activities) RunLightShow(ctx context.Context, req LightShowRequest) (LightShowResult, error) {
	logger := activity.GetLogger(ctx)

	bridge, err := a.Bridge(ctx)
	if err != nil {
		if lights.IsMissingCredentials(err) {
			return LightShowResult{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeMissingCredentials, err)
		}
		return LightShowResult{}, fmt.Errorf("unable to build light bridge: %w", err)
	}

	driver := a.Driver
	driver.Bridge = bridge
	driver.OnStep = func(step lights.StepResult) {
		activity.RecordHeartbeat(ctx, step.Index)
	}

	team := req.Transition.Team
	steps, err := driver.Run(ctx, req.Transition, a.Teams.FixtureGroup(team), a.Teams.PaletteFor)
	result := LightShowResult{Steps: steps}
	if err != nil {
		return result, fmt.Errorf("light show for %s: %w", req.Record.GameID, err)
	}
	logger.Info("Light show finished", "gameID", req.Record.GameID, "steps", len(steps), "failedUpdates", result.FailedUpdates())
	return result, nil
}

// SendNotification delivers one notification on one channel.
func (a *Activities) SendNotification(ctx context.Context, req SendNotificationRequest) error {
	n, ok := a.Notifiers[req.Channel]
	if !ok {
		return temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("unknown notification channel %q", req.Channel), "UnknownChannel", nil)
	}
	return n.Notify(ctx, req.Notification)
}

// RefreshHueToken rotates the Hue cloud token pair in the secret store.
func (a *Activities) RefreshHueToken(ctx context.Context) error {
	logger := activity.GetLogger(ctx)
	if _, err := a.Refresher.Refresh(ctx); err != nil {
		if lights.IsMissingCredentials(err) {
			return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeMissingCredentials, err)
		}
		return err
	}
	logger.Info("Hue token refreshed")
	return nil
}
