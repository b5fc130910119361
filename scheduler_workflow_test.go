package sports

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"
)

func TestSchedulerWorkflow_InSeason(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	start := time.Date(2025, time.November, 20, 19, 0, 0, 0, time.UTC)
	env.SetStartTime(start)

	var mu sync.Mutex
	var triggers []PollTrigger
	a := &Activities{}
	env.RegisterActivity(a)
	env.OnActivity(a.EnqueuePoll, mock.Anything, mock.Anything).Return(
		func(_ context.Context, trigger PollTrigger) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			triggers = append(triggers, trigger)
			return PollWorkflowID(trigger.ScheduledAt, trigger.Index), nil
		})

	env.ExecuteWorkflow(SchedulerWorkflow, SchedulerRequest{Fanout: 6, Spacing: 10 * time.Second, FootballJanuaryLastDay: 13})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var enqueued int
	require.NoError(t, env.GetWorkflowResult(&enqueued))
	assert.Equal(t, 6, enqueued)

	require.Len(t, triggers, 6)
	sort.Slice(triggers, func(i, j int) bool { return triggers[i].Index < triggers[j].Index })
	for i, trigger := range triggers {
		assert.Equal(t, i, trigger.Index)
		assert.Equal(t, time.Duration(i)*10*time.Second, trigger.Delay)
		assert.True(t, trigger.ScheduledAt.Equal(start))
		assert.Equal(t, 13, trigger.Poll.FootballJanuaryLastDay)
	}
}

func TestSchedulerWorkflow_OutOfSeason(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	env.SetStartTime(time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC))

	a := &Activities{}
	env.RegisterActivity(a)

	env.ExecuteWorkflow(SchedulerWorkflow, SchedulerRequest{Fanout: 6, Spacing: 10 * time.Second})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var enqueued int
	require.NoError(t, env.GetWorkflowResult(&enqueued))
	assert.Zero(t, enqueued)
}

func TestSchedulerWorkflow_PartialFailure(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	env.SetStartTime(time.Date(2026, time.January, 5, 19, 0, 0, 0, time.UTC))

	a := &Activities{}
	env.RegisterActivity(a)
	env.OnActivity(a.EnqueuePoll, mock.Anything, mock.Anything).Return(
		func(_ context.Context, trigger PollTrigger) (string, error) {
			if trigger.Index == 1 {
				return "", errors.New("frontend unavailable")
			}
			return PollWorkflowID(trigger.ScheduledAt, trigger.Index), nil
		})

	env.ExecuteWorkflow(SchedulerWorkflow, SchedulerRequest{Fanout: 3, Spacing: 20 * time.Second})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var enqueued int
	require.NoError(t, env.GetWorkflowResult(&enqueued))
	assert.Equal(t, 2, enqueued)
}

func TestSchedulerWorkflow_ZeroFanoutPollsOnce(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	env.SetStartTime(time.Date(2025, time.March, 15, 19, 0, 0, 0, time.UTC))

	a := &Activities{}
	env.RegisterActivity(a)
	env.OnActivity(a.EnqueuePoll, mock.Anything, mock.Anything).Return("poll-1", nil).Once()

	env.ExecuteWorkflow(SchedulerWorkflow, SchedulerRequest{})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var enqueued int
	require.NoError(t, env.GetWorkflowResult(&enqueued))
	assert.Equal(t, 1, enqueued)
	env.AssertExpectations(t)
}
