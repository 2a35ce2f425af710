// Package reconcile holds the pure functions deciding which journal entries
// are visible and how a freshly fetched remote list folds into the list the
// client already holds. Both are used by the sync engine at hydration,
// reconciliation, and post-create pruning; keeping them in one place avoids
// skew between the three call sites.
package reconcile

import (
	"time"

	"github.com/mindtide/moodsync/internal/client/models"
)

// RetentionWindow is the rolling period defining entry visibility.
const RetentionWindow = 30 * 24 * time.Hour

// Visible reports whether an entry created at createdAt is still inside the
// retention window at instant now.
func Visible(createdAt, now time.Time) bool {
	return now.Sub(createdAt) <= RetentionWindow
}

// Prune returns the entries still visible at now, preserving order.
func Prune(entries []models.JournalEntry, now time.Time) []models.JournalEntry {
	result := make([]models.JournalEntry, 0, len(entries))
	for _, e := range entries {
		if Visible(e.CreatedAt, now) {
			result = append(result, e)
		}
	}
	return result
}

// Merge folds the remote store's entry list into the client's current list.
//
// Entries outside the retention window are dropped from both sides. Local
// entries whose id the remote already returned are replaced by the remote
// copy; local entries the remote does not know about (created offline, or
// after the remote snapshot was taken) are kept while still visible. Remote
// entries order first.
//
// If the computed result is empty while local was not, local is returned
// unchanged: a transient empty remote response must never wipe data the
// user could see moments before. This trades strict correctness for
// availability and can resurrect entries the remote legitimately deleted.
func Merge(remote, local []models.JournalEntry, now time.Time) []models.JournalEntry {
	remoteRecent := Prune(remote, now)

	seen := make(map[string]struct{}, len(remoteRecent))
	for _, e := range remoteRecent {
		seen[e.ID] = struct{}{}
	}

	merged := make([]models.JournalEntry, 0, len(remoteRecent)+len(local))
	merged = append(merged, remoteRecent...)
	for _, e := range local {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		if Visible(e.CreatedAt, now) {
			merged = append(merged, e)
		}
	}

	if len(merged) == 0 && len(local) > 0 {
		return local
	}
	return merged
}
