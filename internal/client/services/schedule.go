package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mindtide/moodsync/internal/client/auth"
	"github.com/mindtide/moodsync/internal/client/models"
	"github.com/mindtide/moodsync/internal/client/remote"
	"github.com/mindtide/moodsync/internal/common"
	"github.com/mindtide/moodsync/internal/logging"
)

const dateLayout = "2006-01-02"

// ScheduleService manages the day's task schedule. Unlike journal creation,
// completion toggles are applied optimistically: the local state flips
// first, the remote is told afterwards, and the flip is rolled back if the
// remote refuses. A failed toggle is only retried by the user repeating the
// action.
type ScheduleService struct {
	client remote.Client
	state  *auth.State
	log    logging.Logger
	now    func() time.Time
}

func NewScheduleService(client remote.Client, state *auth.State, log logging.Logger) *ScheduleService {
	return &ScheduleService{
		client: client,
		state:  state,
		log:    log.With("component", "schedule"),
		now:    time.Now,
	}
}

// Today fetches today's schedule, or remote.ErrNotFound if none exists yet.
func (s *ScheduleService) Today(ctx context.Context) (*models.ScheduleDay, error) {
	if _, ok := s.state.Session(); !ok {
		return nil, common.ErrNotAuthenticated
	}
	return s.client.GetSchedule(ctx, s.now().Format(dateLayout))
}

// Generate asks the backend to build (or refresh) today's schedule for the
// given mood.
func (s *ScheduleService) Generate(ctx context.Context, mood models.Mood) (*models.ScheduleDay, error) {
	if _, ok := s.state.Session(); !ok {
		return nil, common.ErrNotAuthenticated
	}
	if !mood.Valid() {
		return nil, fmt.Errorf("%w: unknown mood %q", common.ErrorInvalidEntry, mood)
	}
	return s.client.GenerateSchedule(ctx, mood)
}

// Toggle flips the completion flag of the task with the given id.
//
// The flip is applied to day immediately, then reported to the remote store
// (which still addresses items by ordinal index). If the remote call fails
// the flip is reverted and the error returned; day then looks exactly as it
// did before the call. Returns the task's completion state after the call.
func (s *ScheduleService) Toggle(ctx context.Context, day *models.ScheduleDay, taskID string) (bool, error) {
	if _, ok := s.state.Session(); !ok {
		return false, common.ErrNotAuthenticated
	}

	index := day.IndexOf(taskID)
	if index < 0 {
		return false, common.ErrTaskNotFound
	}

	wasCompleted := day.Completed(taskID)

	// Optimistic flip, before the remote hears about it.
	if wasCompleted {
		delete(day.CompletedIDs, taskID)
	} else {
		day.CompletedIDs[taskID] = struct{}{}
	}

	if err := s.client.CompleteTask(ctx, day.Date, index, !wasCompleted); err != nil {
		// Roll back to the pre-toggle state.
		if wasCompleted {
			day.CompletedIDs[taskID] = struct{}{}
		} else {
			delete(day.CompletedIDs, taskID)
		}
		s.log.Warn(ctx, "toggle not confirmed, rolled back", "date", day.Date, "index", index, "error", err)
		return wasCompleted, fmt.Errorf("toggle not confirmed: %w", err)
	}

	return !wasCompleted, nil
}
