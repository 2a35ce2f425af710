// Package services contains the application services of the moodsync client:
// the journal sync engine, session management, and the daily schedule.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mindtide/moodsync/internal/client/auth"
	"github.com/mindtide/moodsync/internal/client/cache"
	"github.com/mindtide/moodsync/internal/client/models"
	"github.com/mindtide/moodsync/internal/client/reconcile"
	"github.com/mindtide/moodsync/internal/client/remote"
	"github.com/mindtide/moodsync/internal/common"
	"github.com/mindtide/moodsync/internal/logging"
)

// reconcileTimeout bounds the background reconciliation triggered by an
// auth transition.
const reconcileTimeout = 30 * time.Second

// SyncEngine owns the canonical in-memory journal entry list and is the only
// writer of its cache snapshot.
//
// The list is hydrated from the local cache at startup (works offline),
// reconciled against the remote store whenever authentication becomes
// available, and persisted wholesale after every successful mutation. All
// mutation of the list is serialized through an internal mutex; a create and
// a reconciliation triggered at the same time cannot interleave.
//
// Read-path failures (hydration, reconciliation) are absorbed: the engine
// keeps serving whatever it already holds. Write-path failures (create) are
// returned to the caller.
type SyncEngine struct {
	client remote.Client
	cache  cache.Store
	state  *auth.State
	log    logging.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries []models.JournalEntry
}

// NewSyncEngine constructs the engine and subscribes it to auth transitions:
// every transition into authenticated kicks off a background reconciliation.
func NewSyncEngine(client remote.Client, store cache.Store, state *auth.State, log logging.Logger) *SyncEngine {
	e := &SyncEngine{
		client: client,
		cache:  store,
		state:  state,
		log:    log.With("component", "sync"),
		now:    time.Now,
	}

	state.Subscribe(func(auth.Session) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
			defer cancel()
			e.Reconcile(ctx)
		}()
	})

	return e
}

// Entries returns a copy of the canonical list. Safe to call from any
// goroutine; the returned slice is the caller's to keep.
func (e *SyncEngine) Entries() []models.JournalEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.JournalEntry, len(e.entries))
	copy(out, e.entries)
	return out
}

// Hydrate loads the last persisted snapshot into the canonical list.
// A missing or unparseable snapshot is not an error: the list starts empty
// and a corrupt snapshot is cleared. Intended to run once at startup,
// before the first auth transition.
func (e *SyncEngine) Hydrate(ctx context.Context) {
	blob, err := e.cache.Read(ctx, common.CacheKeyEntries)
	if err != nil {
		e.log.Warn(ctx, "cache read failed, starting empty", "error", err)
		return
	}
	if blob == nil {
		return
	}

	var stored []models.JournalEntry
	if err := json.Unmarshal(blob, &stored); err != nil {
		e.log.Warn(ctx, "corrupt snapshot, clearing", "error", err)
		if err := e.cache.Delete(ctx, common.CacheKeyEntries); err != nil {
			e.log.Warn(ctx, "failed to clear corrupt snapshot", "error", err)
		}
		return
	}

	visible := reconcile.Prune(stored, e.now())

	e.mu.Lock()
	e.entries = visible
	e.mu.Unlock()

	e.log.Info(ctx, "hydrated from cache", "count", len(visible), "pruned", len(stored)-len(visible))
}

// Reconcile fetches the remote entry list and merges it into the canonical
// list. Skipped when unauthenticated. On remote failure the canonical list
// is left untouched and keeps serving cached data; no error reaches the
// caller. Safe to run repeatedly.
func (e *SyncEngine) Reconcile(ctx context.Context) {
	session, ok := e.state.Session()
	if !ok {
		e.log.Debug(ctx, "reconcile skipped: not authenticated")
		return
	}

	remoteEntries, err := e.client.ListEntries(ctx)
	if err != nil {
		e.log.Warn(ctx, "reconcile failed, serving cached entries", "user", session.UserID, "error", err)
		return
	}

	e.mu.Lock()
	e.entries = reconcile.Merge(remoteEntries, e.entries, e.now())
	count := len(e.entries)
	e.persistLocked(ctx)
	e.mu.Unlock()

	e.log.Info(ctx, "reconciled", "user", session.UserID, "remote", len(remoteEntries), "canonical", count)
}

// CreateEntry validates and submits a new entry to the remote store. There
// is no optimistic local insertion: only the server-confirmed entry (with
// its authoritative id, createdAt, and AI reflection) enters the canonical
// list. On failure the list is untouched and the error is returned so the
// UI can tell the user the entry was not saved.
func (e *SyncEngine) CreateEntry(ctx context.Context, entry models.NewEntry) (*models.JournalEntry, error) {
	if _, ok := e.state.Session(); !ok {
		return nil, common.ErrNotAuthenticated
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = e.now()
	}

	saved, err := e.client.CreateEntry(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("entry not saved: %w", err)
	}

	e.mu.Lock()
	e.entries = append([]models.JournalEntry{*saved}, e.entries...)
	e.entries = reconcile.Prune(e.entries, e.now())
	e.persistLocked(ctx)
	e.mu.Unlock()

	return saved, nil
}

// persistLocked replaces the snapshot with the full canonical list.
// Persistence failure is logged, not fatal: the in-memory list stays
// authoritative for the rest of the session. Callers must hold e.mu.
func (e *SyncEngine) persistLocked(ctx context.Context) {
	blob, err := json.Marshal(e.entries)
	if err != nil {
		e.log.Error(ctx, "failed to encode snapshot", "error", err)
		return
	}
	if err := e.cache.Write(ctx, common.CacheKeyEntries, blob); err != nil {
		e.log.Warn(ctx, "snapshot persistence failed, continuing from memory", "error", err)
	}
}
