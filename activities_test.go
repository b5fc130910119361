package sports

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
	"golang.org/x/oauth2"

	"sports-home-automation/game"
	"sports-home-automation/lights"
	"sports-home-automation/notify"
	"sports-home-automation/scores"
	"sports-home-automation/store"
	"sports-home-automation/teams"
	"sports-home-automation/transition"
)

// Mock Temporal client for testing
type MockTemporalClient struct {
	mock.Mock
}

func (m *MockTemporalClient) ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error) {
	mockArgs := m.Called(ctx, options, workflow, args)
	run, _ := mockArgs.Get(0).(client.WorkflowRun)
	return run, mockArgs.Error(1)
}

// Mock WorkflowRun for testing
type MockWorkflowRun struct {
	mock.Mock
}

func (m *MockWorkflowRun) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockWorkflowRun) GetRunID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockWorkflowRun) Get(ctx context.Context, valuePtr interface{}) error {
	args := m.Called(ctx, valuePtr)
	return args.Error(0)
}

func (m *MockWorkflowRun) GetWithOptions(ctx context.Context, valuePtr interface{}, options client.WorkflowRunGetOptions) error {
	args := m.Called(ctx, valuePtr, options)
	return args.Error(0)
}

func newRun(id string) *MockWorkflowRun {
	run := &MockWorkflowRun{}
	run.On("GetID").Return(id)
	run.On("GetRunID").Return("run-" + id)
	return run
}

func defaultRegistry(t *testing.T) *teams.Registry {
	t.Helper()
	reg, err := teams.Default()
	require.NoError(t, err)
	return reg
}

func TestEnqueuePoll(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()

	scheduledAt := time.Date(2025, time.November, 1, 18, 0, 0, 0, time.UTC)
	trigger := PollTrigger{Index: 3, Delay: 30 * time.Second, ScheduledAt: scheduledAt}
	expectedID := PollWorkflowID(scheduledAt, 3)

	starter := &MockTemporalClient{}
	starter.On("ExecuteWorkflow", mock.Anything, mock.MatchedBy(func(o client.StartWorkflowOptions) bool {
		return o.ID == expectedID &&
			o.TaskQueue == "test-queue" &&
			o.StartDelay == 30*time.Second &&
			o.WorkflowIDReusePolicy == enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE
	}), mock.Anything, mock.Anything).Return(newRun(expectedID), nil)

	a := &Activities{Starter: starter, TaskQueue: "test-queue"}
	env.RegisterActivity(a)

	val, err := env.ExecuteActivity(a.EnqueuePoll, trigger)
	require.NoError(t, err)
	var id string
	require.NoError(t, val.Get(&id))
	assert.Equal(t, expectedID, id)
	starter.AssertExpectations(t)
}

func TestEnqueuePoll_AlreadyStarted(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()

	starter := &MockTemporalClient{}
	starter.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, serviceerror.NewWorkflowExecutionAlreadyStarted("already started", "", ""))

	a := &Activities{Starter: starter, TaskQueue: "test-queue"}
	env.RegisterActivity(a)

	trigger := PollTrigger{Index: 0, ScheduledAt: time.Unix(1700000000, 0)}
	val, err := env.ExecuteActivity(a.EnqueuePoll, trigger)
	require.NoError(t, err)
	var id string
	require.NoError(t, val.Get(&id))
	assert.Equal(t, "poll-1700000000-0", id)
}

func TestEnqueuePoll_StartFails(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()

	starter := &MockTemporalClient{}
	starter.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("frontend unavailable"))

	a := &Activities{Starter: starter, TaskQueue: "test-queue"}
	env.RegisterActivity(a)

	_, err := env.ExecuteActivity(a.EnqueuePoll, PollTrigger{})
	assert.ErrorContains(t, err, "frontend unavailable")
}

type pollFixture struct {
	activities *Activities
	client     *redis.Client
	mr         *miniredis.Miniredis
}

func newPollFixture(t *testing.T, body string, status int) pollFixture {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return pollFixture{
		activities: &Activities{
			Scores: scores.NewClient(srv.Client(), nil),
			Feeds: map[game.Sport]scores.Feed{
				game.CollegeFootball: {Sport: game.CollegeFootball, URL: srv.URL, Format: scores.FormatNCAA},
			},
			Teams: defaultRegistry(t),
			Store: store.NewRedisStore(rdb, "changes", 0, nil),
		},
		client: rdb,
		mr:     mr,
	}
}

const tulsaScoreboard = `{"games": [
  {"game": {"gameID": "100", "title": "Memphis Navy", "currentPeriod": "2nd",
    "home": {"score": "7", "names": {"short": "Navy"}}, "away": {"score": "3", "names": {"short": "Memphis"}}}},
  {"game": {"gameID": "6305969", "title": "Tulsa Rice", "currentPeriod": "3rd",
    "home": {"score": "10", "names": {"short": "Rice"}}, "away": {"score": "14", "names": {"short": "Tulsa"}}}}
]}`

func TestPollSport_WritesTrackedGame(t *testing.T) {
	f := newPollFixture(t, tulsaScoreboard, http.StatusOK)
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()
	env.RegisterActivity(f.activities)

	val, err := env.ExecuteActivity(f.activities.PollSport, game.CollegeFootball)
	require.NoError(t, err)
	var result PollResult
	require.NoError(t, val.Get(&result))

	assert.Equal(t, PollResult{Sport: game.CollegeFootball, Games: 2, Found: []string{"6305969"}, Written: 1}, result)

	rec, found, err := f.activities.Store.(*store.RedisStore).Get(context.Background(), "6305969")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, game.Record{
		GameID: "6305969", Sport: game.CollegeFootball, MyTeam: "Tulsa", MyTeamScore: 14,
		OpposingTeam: "Rice", OpposingTeamScore: 10, GamePeriod: "3rd",
	}, rec)
}

func TestPollSport_UnrelatedBadGameStillWritesTrackedGame(t *testing.T) {
	body := `{"games": [
	  {"game": {"gameID": "6305971", "title": "Army Navy", "currentPeriod": "",
	    "home": {"score": "-", "names": {"short": "Navy"}}, "away": {"score": "-", "names": {"short": "Army"}}}},
	  {"game": {"gameID": "6305969", "title": "Tulsa Rice", "gameState": "final", "currentPeriod": "FINAL",
	    "home": {"score": "17", "names": {"short": "Rice"}}, "away": {"score": "21", "names": {"short": "Tulsa"}}}}
	]}`
	f := newPollFixture(t, body, http.StatusOK)
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()
	env.RegisterActivity(f.activities)

	val, err := env.ExecuteActivity(f.activities.PollSport, game.CollegeFootball)
	require.NoError(t, err)
	var result PollResult
	require.NoError(t, val.Get(&result))

	assert.Empty(t, result.Error)
	assert.Equal(t, []string{"6305969"}, result.Found)
	assert.Equal(t, 1, result.Written)
}

func TestPollSport_MalformedTrackedGameIsNotStored(t *testing.T) {
	body := `{"games": [{"game": {"gameID": "6305969", "title": "Tulsa Rice", "currentPeriod": "3rd",
	  "home": {"score": "10", "names": {"short": "Rice"}}, "away": {"score": "fourteen", "names": {"short": "Tulsa"}}}}]}`
	f := newPollFixture(t, body, http.StatusOK)
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()
	env.RegisterActivity(f.activities)

	val, err := env.ExecuteActivity(f.activities.PollSport, game.CollegeFootball)
	require.NoError(t, err)
	var result PollResult
	require.NoError(t, val.Get(&result))

	assert.Contains(t, result.Error, "away score")
	assert.Empty(t, result.Found)
	assert.Empty(t, f.mr.Keys())
}

func TestPollSport_TeamNameOnNeitherSideIsNotStored(t *testing.T) {
	body := `{"games": [{"game": {"gameID": "6305969", "title": "Tulsa Rice", "currentPeriod": "3rd",
	  "home": {"score": "10", "names": {"short": "Rice"}}, "away": {"score": "14", "names": {"short": "Golden Hurricane"}}}}]}`
	f := newPollFixture(t, body, http.StatusOK)
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()
	env.RegisterActivity(f.activities)

	val, err := env.ExecuteActivity(f.activities.PollSport, game.CollegeFootball)
	require.NoError(t, err)
	var result PollResult
	require.NoError(t, val.Get(&result))

	assert.Contains(t, result.Error, "neither")
	assert.Zero(t, result.Written)
	assert.Empty(t, f.mr.Keys())
}

func TestPollSport_TeamNotPlaying(t *testing.T) {
	body := `{"games": [{"game": {"gameID": "100", "title": "Memphis Navy", "currentPeriod": "2nd",
	  "home": {"score": "7", "names": {"short": "Navy"}}, "away": {"score": "3", "names": {"short": "Memphis"}}}}]}`
	f := newPollFixture(t, body, http.StatusOK)
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()
	env.RegisterActivity(f.activities)

	val, err := env.ExecuteActivity(f.activities.PollSport, game.CollegeFootball)
	require.NoError(t, err)
	var result PollResult
	require.NoError(t, val.Get(&result))

	assert.Equal(t, 1, result.Games)
	assert.Empty(t, result.Found)
	assert.Zero(t, result.Written)
	assert.Empty(t, f.mr.Keys(), "no store write when the team is not playing")
}

func TestPollSport_FeedFailureIsSoft(t *testing.T) {
	f := newPollFixture(t, "upstream down", http.StatusBadGateway)
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()
	env.RegisterActivity(f.activities)

	val, err := env.ExecuteActivity(f.activities.PollSport, game.CollegeFootball)
	require.NoError(t, err)
	var result PollResult
	require.NoError(t, val.Get(&result))
	assert.Contains(t, result.Error, "502")
	assert.Empty(t, f.mr.Keys())

	val, err = env.ExecuteActivity(f.activities.PollSport, game.MensBasketball)
	require.NoError(t, err)
	require.NoError(t, val.Get(&result))
	assert.Contains(t, result.Error, "no feed configured")
}

type fakeBridge struct {
	mu    sync.Mutex
	calls int
}

func (b *fakeBridge) SetState(context.Context, int, lights.State) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	return nil
}

func TestRunLightShow(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()

	bridge := &fakeBridge{}
	a := &Activities{
		Teams:  defaultRegistry(t),
		Bridge: func(context.Context) (lights.Bridge, error) { return bridge, nil },
		Driver: lights.Driver{Hold: time.Millisecond, WinSteps: 3},
	}
	env.RegisterActivity(a)

	req := LightShowRequest{
		Transition: transition.Transition{Kind: transition.GameJustWonSpecificTeam, Team: "Tulsa"},
		Record:     game.Record{GameID: "6305969", Sport: game.CollegeFootball, MyTeam: "Tulsa", MyTeamScore: 21, OpposingTeamScore: 17, GamePeriod: "FINAL"},
	}
	val, err := env.ExecuteActivity(a.RunLightShow, req)
	require.NoError(t, err)

	var result LightShowResult
	require.NoError(t, val.Get(&result))
	require.Len(t, result.Steps, 3)
	assert.Equal(t, lights.Gold, result.Steps[0].Color)
	assert.Equal(t, lights.Red, result.Steps[2].Color)
	assert.Zero(t, result.FailedUpdates())
	assert.Equal(t, 9, bridge.calls)
}

func TestRunLightShow_MissingCredentials(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()

	a := &Activities{
		Teams: defaultRegistry(t),
		Bridge: func(ctx context.Context) (lights.Bridge, error) {
			return lights.NewBridgeFromSecrets(ctx, lights.ModeLocal, emptySecrets{}, nil, "")
		},
	}
	env.RegisterActivity(a)

	_, err := env.ExecuteActivity(a.RunLightShow, LightShowRequest{
		Transition: transition.Transition{Kind: transition.GameJustWon},
	})
	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.True(t, appErr.NonRetryable())
	assert.Equal(t, ErrTypeMissingCredentials, appErr.Type())
}

type emptySecrets struct{}

func (emptySecrets) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (emptySecrets) Put(context.Context, string, string) error         { return nil }

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func TestSendNotification(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()

	rec := &recordingNotifier{}
	a := &Activities{Notifiers: map[string]notify.Notifier{"logger": rec}}
	env.RegisterActivity(a)

	n := notify.Notification{Title: "Victory!", Message: "Tulsa 21 - Rice 17"}
	_, err := env.ExecuteActivity(a.SendNotification, SendNotificationRequest{Channel: "logger", Notification: n})
	require.NoError(t, err)
	assert.Equal(t, []notify.Notification{n}, rec.sent)

	_, err = env.ExecuteActivity(a.SendNotification, SendNotificationRequest{Channel: "carrier-pigeon", Notification: n})
	assert.ErrorContains(t, err, "carrier-pigeon")
}

type fakeRefresher struct {
	err   error
	calls int
}

func (f *fakeRefresher) Refresh(context.Context) (*oauth2.Token, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &oauth2.Token{AccessToken: "a", RefreshToken: "r"}, nil
}

func TestRefreshHueToken(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()

	ok := &fakeRefresher{}
	a := &Activities{Refresher: ok}
	env.RegisterActivity(a)
	_, err := env.ExecuteActivity(a.RefreshHueToken)
	require.NoError(t, err)
	assert.Equal(t, 1, ok.calls)
}

func TestRefreshHueToken_MissingCredentialsIsNonRetryable(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()

	refresher := &lights.TokenRefresher{Secrets: emptySecrets{}}
	a := &Activities{Refresher: refresher}
	env.RegisterActivity(a)

	_, err := env.ExecuteActivity(a.RefreshHueToken)
	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.True(t, appErr.NonRetryable())
}
