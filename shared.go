package sports

import (
	"fmt"
	"time"

	"sports-home-automation/transition"
)

const TaskQueueName = "sports-home-automation-task-queue"

// Schedule IDs created by the start command.
const (
	PollScheduleID  = "poll-scheduler"
	TokenScheduleID = "hue-token-refresh"
)

// PollWorkflowID is stable for one trigger of one scheduler run so a retried
// EnqueuePoll does not start a second poll.
func PollWorkflowID(scheduledAt time.Time, index int) string {
	return fmt.Sprintf("poll-%d-%d", scheduledAt.Unix(), index)
}

// LightShowWorkflowID identifies one qualifying transition. Redelivered change
// events map to the same ID and are rejected by Temporal.
func LightShowWorkflowID(gameID string, t transition.Transition, myTeamScore int) string {
	return fmt.Sprintf("lightshow-%s-%s-%d", gameID, t.Kind, myTeamScore)
}
