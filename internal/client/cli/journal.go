package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mindtide/moodsync/internal/client/models"
)

// AddEntry prompts for an entry and submits it. The entry is only added to
// the visible list once the server confirms it; on failure nothing changes
// and the user can retry.
func (a *App) AddEntry(ctx context.Context) {
	text, err := GetMultiline(a.reader, "Write your entry", os.Stdout)
	if err != nil {
		fmt.Println("Input error:", err)
		return
	}

	moods := make([]string, 0, len(models.Moods))
	for _, m := range models.Moods {
		moods = append(moods, string(m))
	}
	mood, err := GetSimpleText(a.reader, "How do you feel? ("+strings.Join(moods, ", ")+")", os.Stdout)
	if err != nil {
		fmt.Println("Input error:", err)
		return
	}

	saved, err := a.engine.CreateEntry(ctx, models.NewEntry{Text: text, Mood: models.Mood(mood)})
	if err != nil {
		fmt.Println("Entry not saved:", err)
		return
	}

	fmt.Println("Saved.")
	if saved.AIResponse != "" {
		fmt.Println("✨", saved.AIResponse)
	}
}

// ListEntries prints the canonical entry list, newest first.
func (a *App) ListEntries(ctx context.Context) {
	entries := a.engine.Entries()
	if len(entries) == 0 {
		fmt.Println("No entries in the last 30 days.")
		return
	}

	for _, e := range entries {
		fmt.Printf("%s  [%s]  %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.Mood, firstLine(e.Text))
	}
	fmt.Printf("%d entries\n", len(entries))
}

// Sync forces a reconciliation with the backend. Failures keep the cached
// list intact, so there is nothing to report beyond the refreshed view.
func (a *App) Sync(ctx context.Context) {
	a.engine.Reconcile(ctx)
	fmt.Printf("%d entries in the last 30 days.\n", len(a.engine.Entries()))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
