package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	crerr "github.com/cockroachdb/errors"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	sports "sports-home-automation"
)

const tokenRefreshEvery = 72 * time.Hour

// Creates the poll and token refresh schedules. Running it again leaves
// existing schedules alone.
func main() {
	c, err := client.Dial(sports.GetClientOptions())
	logger := slog.Default()
	if err != nil {
		logger.Error("Unable to create client", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	cfg := sports.LoadConfig()
	ctx := context.Background()

	schedules := []client.ScheduleOptions{
		{
			ID: sports.PollScheduleID,
			Spec: client.ScheduleSpec{
				Intervals: []client.ScheduleIntervalSpec{{Every: time.Minute}},
			},
			Overlap: enumspb.SCHEDULE_OVERLAP_POLICY_SKIP,
			Action: &client.ScheduleWorkflowAction{
				ID:        "scheduler",
				Workflow:  sports.SchedulerWorkflow,
				TaskQueue: cfg.TaskQueue,
				Args: []interface{}{sports.SchedulerRequest{
					Fanout:                 cfg.PollFanout,
					Spacing:                cfg.PollSpacing,
					FootballJanuaryLastDay: cfg.FootballJanuaryLastDay,
				}},
			},
		},
		{
			ID: sports.TokenScheduleID,
			Spec: client.ScheduleSpec{
				Intervals: []client.ScheduleIntervalSpec{{Every: tokenRefreshEvery}},
			},
			Overlap: enumspb.SCHEDULE_OVERLAP_POLICY_SKIP,
			Action: &client.ScheduleWorkflowAction{
				ID:        "hue-token-refresh",
				Workflow:  sports.TokenRefreshWorkflow,
				TaskQueue: cfg.TaskQueue,
			},
		},
	}

	for _, opts := range schedules {
		handle, err := c.ScheduleClient().Create(ctx, opts)
		if err != nil {
			if crerr.Is(err, temporal.ErrScheduleAlreadyRunning) {
				logger.Info("Schedule already exists", "scheduleID", opts.ID)
				continue
			}
			logger.Error("Unable to create schedule", "scheduleID", opts.ID, "error", err)
			os.Exit(1)
		}
		logger.Info("Created schedule", "scheduleID", handle.GetID())
	}
}
