package models

import "github.com/google/uuid"

// Task is a single schedule item. The remote store addresses tasks by their
// position in the day's list; the client assigns each task a stable ID at
// construction so completion state survives reordering.
type Task struct {
	ID           string `json:"id,omitempty"`
	Time         string `json:"time"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Type         string `json:"type"`
	DurationMins int    `json:"durationMins,omitempty"`
}

// ScheduleDay is one day's generated schedule plus its completion state.
// CompletedIDs is keyed by Task.ID; translation to the remote's ordinal
// index happens at the service boundary.
type ScheduleDay struct {
	Date         string              `json:"date"` // YYYY-MM-DD
	Mood         Mood                `json:"mood"`
	Items        []Task              `json:"items"`
	CompletedIDs map[string]struct{} `json:"-"`
}

// NewScheduleDay builds a ScheduleDay from remote data, assigning a UUID to
// any task that arrived without one and mapping the remote's completed
// indices onto task IDs.
func NewScheduleDay(date string, mood Mood, items []Task, completedIndices []int) *ScheduleDay {
	tasks := make([]Task, len(items))
	copy(tasks, items)
	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = uuid.NewString()
		}
	}

	completed := make(map[string]struct{}, len(completedIndices))
	for _, idx := range completedIndices {
		if idx >= 0 && idx < len(tasks) {
			completed[tasks[idx].ID] = struct{}{}
		}
	}

	return &ScheduleDay{Date: date, Mood: mood, Items: tasks, CompletedIDs: completed}
}

// IndexOf returns the ordinal position of the task with the given ID,
// or -1 if the day has no such task.
func (d *ScheduleDay) IndexOf(taskID string) int {
	for i, t := range d.Items {
		if t.ID == taskID {
			return i
		}
	}
	return -1
}

// Completed reports whether the task with the given ID is marked done.
func (d *ScheduleDay) Completed(taskID string) bool {
	_, ok := d.CompletedIDs[taskID]
	return ok
}

// CompletedCount returns the number of completed tasks.
func (d *ScheduleDay) CompletedCount() int {
	return len(d.CompletedIDs)
}
