package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/mindtide/moodsync/internal/client/models"
	"github.com/mindtide/moodsync/internal/client/remote"
)

// ShowSchedule fetches and prints today's schedule.
func (a *App) ShowSchedule(ctx context.Context) {
	day, err := a.schedule.Today(ctx)
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			fmt.Println("No schedule for today yet. Use 'mood <mood>' to generate one.")
			return
		}
		fmt.Println("Could not load schedule:", err)
		return
	}
	a.day = day
	a.printSchedule()
}

// GenerateSchedule asks the backend to build today's schedule for a mood.
func (a *App) GenerateSchedule(ctx context.Context, mood string) {
	day, err := a.schedule.Generate(ctx, models.Mood(mood))
	if err != nil {
		fmt.Println("Could not generate schedule:", err)
		return
	}
	a.day = day
	a.printSchedule()
}

// ToggleTask flips the completion state of the n-th displayed task. The
// checkbox flips immediately; if the backend rejects the change it flips
// back and the user may simply retry.
func (a *App) ToggleTask(ctx context.Context, arg string) {
	if a.day == nil {
		fmt.Println("Load a schedule first ('schedule' or 'mood <mood>').")
		return
	}

	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(a.day.Items) {
		fmt.Printf("Task number must be between 1 and %d.\n", len(a.day.Items))
		return
	}
	task := a.day.Items[n-1]

	completed, err := a.schedule.Toggle(ctx, a.day, task.ID)
	if err != nil {
		fmt.Println("Toggle failed, state unchanged:", err)
		return
	}
	if completed {
		fmt.Printf("Done: %s\n", task.Title)
	} else {
		fmt.Printf("Reopened: %s\n", task.Title)
	}
	a.printSchedule()
}

func (a *App) printSchedule() {
	d := a.day
	fmt.Printf("Today [%s]: %d of %d tasks completed\n", d.Mood, d.CompletedCount(), len(d.Items))
	for i, t := range d.Items {
		mark := " "
		if d.Completed(t.ID) {
			mark = "x"
		}
		fmt.Printf("%2d. [%s] %s  %s", i+1, mark, t.Time, t.Title)
		if t.DurationMins > 0 {
			fmt.Printf(" (%d min)", t.DurationMins)
		}
		fmt.Println()
	}
}
