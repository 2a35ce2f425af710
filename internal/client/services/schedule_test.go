package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindtide/moodsync/internal/client/auth"
	"github.com/mindtide/moodsync/internal/client/models"
	"github.com/mindtide/moodsync/internal/client/remote"
	"github.com/mindtide/moodsync/internal/common"
)

func testDay(t *testing.T, completedIndices ...int) *models.ScheduleDay {
	t.Helper()
	items := make([]models.Task, 6)
	for i := range items {
		items[i] = models.Task{
			Time:  fmt.Sprintf("0%d:00", 7+i),
			Title: fmt.Sprintf("Task %d", i),
			Type:  "movement",
		}
	}
	return models.NewScheduleDay("2025-06-15", models.MoodHappy, items, completedIndices)
}

func newScheduleService(t *testing.T, client *fakeClient, state *auth.State) *ScheduleService {
	t.Helper()
	s := NewScheduleService(client, state, testLogger())
	s.now = func() time.Time { return testNow }
	return s
}

func completedIndexSet(d *models.ScheduleDay) map[int]bool {
	out := map[int]bool{}
	for i, task := range d.Items {
		if d.Completed(task.ID) {
			out[i] = true
		}
	}
	return out
}

func TestToggle_OptimisticThenConfirmed(t *testing.T) {
	client := &fakeClient{}
	s := newScheduleService(t, client, authedState(t))
	day := testDay(t, 2)

	completed, err := s.Toggle(context.Background(), day, day.Items[5].ID)
	require.NoError(t, err)
	assert.True(t, completed)

	assert.Equal(t, map[int]bool{2: true, 5: true}, completedIndexSet(day))

	require.Len(t, client.completeCalls, 1)
	assert.Equal(t, completeCall{date: "2025-06-15", index: 5, completed: true}, client.completeCalls[0])
}

func TestToggle_RemoteFailureRollsBack(t *testing.T) {
	client := &fakeClient{completeErr: remote.ErrUnavailable}
	s := newScheduleService(t, client, authedState(t))
	day := testDay(t, 2)

	completed, err := s.Toggle(context.Background(), day, day.Items[5].ID)
	require.ErrorIs(t, err, remote.ErrUnavailable)

	// Visually reverted: exactly the pre-toggle state.
	assert.False(t, completed)
	assert.Equal(t, map[int]bool{2: true}, completedIndexSet(day))
}

func TestToggle_UncompletesACompletedTask(t *testing.T) {
	client := &fakeClient{}
	s := newScheduleService(t, client, authedState(t))
	day := testDay(t, 2)

	completed, err := s.Toggle(context.Background(), day, day.Items[2].ID)
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Empty(t, completedIndexSet(day))

	require.Len(t, client.completeCalls, 1)
	assert.Equal(t, completeCall{date: "2025-06-15", index: 2, completed: false}, client.completeCalls[0])
}

func TestToggle_UnauthenticatedMakesNoNetworkCall(t *testing.T) {
	client := &fakeClient{}
	s := newScheduleService(t, client, auth.NewState())
	day := testDay(t)

	_, err := s.Toggle(context.Background(), day, day.Items[0].ID)
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
	assert.Empty(t, client.completeCalls)
	assert.Empty(t, completedIndexSet(day))
}

func TestToggle_UnknownTask(t *testing.T) {
	s := newScheduleService(t, &fakeClient{}, authedState(t))
	day := testDay(t)

	_, err := s.Toggle(context.Background(), day, "nope")
	require.ErrorIs(t, err, common.ErrTaskNotFound)
}

func TestGenerate_RejectsUnknownMood(t *testing.T) {
	s := newScheduleService(t, &fakeClient{}, authedState(t))

	_, err := s.Generate(context.Background(), "ecstatic")
	require.ErrorIs(t, err, common.ErrorInvalidEntry)
}

func TestToday_RequiresAuth(t *testing.T) {
	s := newScheduleService(t, &fakeClient{}, auth.NewState())

	_, err := s.Today(context.Background())
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
}
