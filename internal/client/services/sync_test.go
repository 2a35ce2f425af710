package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindtide/moodsync/internal/client/auth"
	"github.com/mindtide/moodsync/internal/client/models"
	"github.com/mindtide/moodsync/internal/client/remote"
	"github.com/mindtide/moodsync/internal/common"
	"github.com/mindtide/moodsync/internal/logging"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testLogger() logging.Logger {
	return logging.NewDefault()
}

func entry(id string, age time.Duration) models.JournalEntry {
	return models.JournalEntry{ID: id, Text: "entry " + id, Mood: models.MoodNeutral, CreatedAt: testNow.Add(-age)}
}

// fakeClient is an in-memory remote.Client with presettable results.
// Counters are mutex-guarded so tests may call it from several goroutines.
type fakeClient struct {
	mu    sync.Mutex
	token string

	listEntries []models.JournalEntry
	listErr     error
	listCalls   int
	listHook    func() // runs inside ListEntries, before returning

	created   *models.JournalEntry
	createErr error
	createFn  func(models.NewEntry) (*models.JournalEntry, error) // overrides created/createErr when set

	completeErr   error
	completeCalls []completeCall

	loginToken string
	loginUser  *models.User
	loginErr   error

	profileUser *models.User
	profileErr  error

	schedule    *models.ScheduleDay
	scheduleErr error
}

type completeCall struct {
	date      string
	index     int
	completed bool
}

func (f *fakeClient) Close() error          { return nil }
func (f *fakeClient) SetToken(token string) { f.token = token }
func (f *fakeClient) Ping(context.Context) error {
	return nil
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	return f.loginToken, f.loginUser, f.loginErr
}

func (f *fakeClient) Profile(ctx context.Context) (*models.User, error) {
	return f.profileUser, f.profileErr
}

func (f *fakeClient) ListEntries(ctx context.Context) ([]models.JournalEntry, error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()
	if f.listHook != nil {
		f.listHook()
	}
	return f.listEntries, f.listErr
}

func (f *fakeClient) CreateEntry(ctx context.Context, e models.NewEntry) (*models.JournalEntry, error) {
	if f.createFn != nil {
		return f.createFn(e)
	}
	return f.created, f.createErr
}

func (f *fakeClient) GetSchedule(ctx context.Context, date string) (*models.ScheduleDay, error) {
	return f.schedule, f.scheduleErr
}

func (f *fakeClient) GenerateSchedule(ctx context.Context, mood models.Mood) (*models.ScheduleDay, error) {
	return f.schedule, f.scheduleErr
}

func (f *fakeClient) CompleteTask(ctx context.Context, date string, index int, completed bool) error {
	f.completeCalls = append(f.completeCalls, completeCall{date, index, completed})
	return f.completeErr
}

// fakeStore is an in-memory cache.Store.
type fakeStore struct {
	data     map[string][]byte
	readErr  error
	writeErr error
	deleted  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string][]byte{}}
}

func (s *fakeStore) Read(ctx context.Context, key string) ([]byte, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.data[key], nil
}

func (s *fakeStore) Write(ctx context.Context, key string, value []byte) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.data[key] = value
	return nil
}

func (s *fakeStore) WriteAll(ctx context.Context, values map[string][]byte) error {
	for k, v := range values {
		if err := s.Write(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	delete(s.data, key)
	return nil
}

func (s *fakeStore) Clear(ctx context.Context) error {
	s.data = map[string][]byte{}
	return nil
}

func (s *fakeStore) snapshot(t *testing.T) []models.JournalEntry {
	t.Helper()
	blob, ok := s.data[common.CacheKeyEntries]
	if !ok {
		return nil
	}
	var entries []models.JournalEntry
	require.NoError(t, json.Unmarshal(blob, &entries))
	return entries
}

func authedState(t *testing.T) *auth.State {
	t.Helper()
	state := auth.NewState()
	_, err := state.SetAuthenticated("tok", &models.User{ID: "u1", Name: "Ada"})
	require.NoError(t, err)
	return state
}

func newEngine(t *testing.T, client *fakeClient, store *fakeStore, state *auth.State) *SyncEngine {
	t.Helper()
	e := NewSyncEngine(client, store, state, testLogger())
	e.now = func() time.Time { return testNow }
	return e
}

func ids(entries []models.JournalEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestHydrate_LoadsSnapshotAndPrunes(t *testing.T) {
	store := newFakeStore()
	stored := []models.JournalEntry{entry("fresh", 24*time.Hour), entry("stale", 40*24*time.Hour)}
	blob, err := json.Marshal(stored)
	require.NoError(t, err)
	store.data[common.CacheKeyEntries] = blob

	e := newEngine(t, &fakeClient{}, store, authedState(t))
	e.Hydrate(context.Background())

	require.Equal(t, []string{"fresh"}, ids(e.Entries()))
}

func TestHydrate_MissingSnapshotStartsEmpty(t *testing.T) {
	e := newEngine(t, &fakeClient{}, newFakeStore(), authedState(t))
	e.Hydrate(context.Background())

	assert.Empty(t, e.Entries())
}

func TestHydrate_CorruptSnapshotClearedNotFatal(t *testing.T) {
	store := newFakeStore()
	store.data[common.CacheKeyEntries] = []byte("{{{not json")

	e := newEngine(t, &fakeClient{}, store, authedState(t))
	e.Hydrate(context.Background())

	assert.Empty(t, e.Entries())
	assert.Contains(t, store.deleted, common.CacheKeyEntries)
}

func TestReconcile_MergesAndPersists(t *testing.T) {
	store := newFakeStore()
	client := &fakeClient{listEntries: []models.JournalEntry{entry("r1", time.Hour)}}

	e := newEngine(t, client, store, authedState(t))
	e.mu.Lock()
	e.entries = []models.JournalEntry{entry("local", 2*time.Hour)}
	e.mu.Unlock()

	e.Reconcile(context.Background())

	require.Equal(t, []string{"r1", "local"}, ids(e.Entries()))
	require.Equal(t, []string{"r1", "local"}, ids(store.snapshot(t)))
}

func TestReconcile_RemoteFailureKeepsCachedData(t *testing.T) {
	store := newFakeStore()
	client := &fakeClient{listErr: remote.ErrUnavailable}

	e := newEngine(t, client, store, authedState(t))
	e.mu.Lock()
	e.entries = []models.JournalEntry{entry("a", 24*time.Hour)}
	e.mu.Unlock()

	e.Reconcile(context.Background())

	require.Equal(t, []string{"a"}, ids(e.Entries()))
}

func TestReconcile_SkippedWhenUnauthenticated(t *testing.T) {
	client := &fakeClient{listEntries: []models.JournalEntry{entry("r1", time.Hour)}}

	e := newEngine(t, client, newFakeStore(), auth.NewState())
	e.Reconcile(context.Background())

	assert.Zero(t, client.listCalls)
	assert.Empty(t, e.Entries())
}

func TestReconcile_TriggeredByAuthTransition(t *testing.T) {
	done := make(chan struct{})
	client := &fakeClient{
		listEntries: []models.JournalEntry{entry("r1", time.Hour)},
	}
	client.listHook = func() { close(done) }

	state := auth.NewState()
	e := newEngine(t, client, newFakeStore(), state)

	_, err := state.SetAuthenticated("tok", &models.User{ID: "u1"})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("auth transition did not trigger reconciliation")
	}

	require.Eventually(t, func() bool {
		return len(e.Entries()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

// Losing authentication mid-flight does not discard the result: a
// reconciliation already under way still lands. Deliberate behavior,
// not a bug.
func TestReconcile_LogoutMidFlight_ResultStillApplied(t *testing.T) {
	state := authedState(t)
	client := &fakeClient{listEntries: []models.JournalEntry{entry("r1", time.Hour)}}
	client.listHook = func() { state.Clear() }

	e := newEngine(t, client, newFakeStore(), state)
	e.Reconcile(context.Background())

	require.Equal(t, []string{"r1"}, ids(e.Entries()))
}

func TestReconcile_RepeatedRunsAreNoOps(t *testing.T) {
	store := newFakeStore()
	client := &fakeClient{listEntries: []models.JournalEntry{entry("r1", time.Hour), entry("r2", 2*time.Hour)}}

	e := newEngine(t, client, store, authedState(t))
	e.Reconcile(context.Background())
	first := e.Entries()

	e.Reconcile(context.Background())
	require.Equal(t, first, e.Entries())
}

func TestCreateEntry_SuccessPrependsPrunesPersists(t *testing.T) {
	store := newFakeStore()
	saved := entry("srv1", 0)
	saved.AIResponse = "Thanks for sharing your thoughts."
	client := &fakeClient{created: &saved}

	e := newEngine(t, client, store, authedState(t))
	e.mu.Lock()
	e.entries = []models.JournalEntry{entry("old", 24*time.Hour), entry("ancient", 31*24*time.Hour)}
	e.mu.Unlock()

	got, err := e.CreateEntry(context.Background(), models.NewEntry{Text: "hi", Mood: models.MoodHappy})
	require.NoError(t, err)
	assert.Equal(t, "srv1", got.ID)
	assert.Equal(t, "Thanks for sharing your thoughts.", got.AIResponse)

	// New entry first, expired one pruned, snapshot rewritten.
	require.Equal(t, []string{"srv1", "old"}, ids(e.Entries()))
	require.Equal(t, []string{"srv1", "old"}, ids(store.snapshot(t)))
}

// Creates and reconciliations racing each other must leave one consistent
// list: every confirmed entry present exactly once, remote entries merged in,
// no duplicates. Run with the race detector enabled.
func TestCreateEntry_ConcurrentWithReconcile_ListStaysConsistent(t *testing.T) {
	store := newFakeStore()
	client := &fakeClient{
		listEntries: []models.JournalEntry{entry("r1", time.Hour), entry("r2", 2*time.Hour)},
	}
	var seq atomic.Int64
	client.createFn = func(in models.NewEntry) (*models.JournalEntry, error) {
		saved := models.JournalEntry{
			ID:        fmt.Sprintf("c%d", seq.Add(1)),
			Text:      in.Text,
			Mood:      in.Mood,
			CreatedAt: testNow,
		}
		return &saved, nil
	}

	e := newEngine(t, client, store, authedState(t))

	const rounds = 25
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := e.CreateEntry(context.Background(), models.NewEntry{Text: "hi", Mood: models.MoodHappy})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			e.Reconcile(context.Background())
		}()
	}
	wg.Wait()

	got := e.Entries()
	require.Len(t, got, rounds+2)

	seen := map[string]struct{}{}
	for _, en := range got {
		_, dup := seen[en.ID]
		require.False(t, dup, "entry %s appears twice", en.ID)
		seen[en.ID] = struct{}{}
	}
	assert.Contains(t, seen, "r1")
	assert.Contains(t, seen, "r2")

	// The snapshot matches the canonical list once everything settles.
	require.ElementsMatch(t, ids(got), ids(store.snapshot(t)))
}

func TestCreateEntry_FailureDoesNotMutateState(t *testing.T) {
	store := newFakeStore()
	client := &fakeClient{createErr: remote.ErrUnavailable}

	e := newEngine(t, client, store, authedState(t))
	e.mu.Lock()
	e.entries = []models.JournalEntry{entry("a", time.Hour)}
	e.mu.Unlock()
	before := e.Entries()

	_, err := e.CreateEntry(context.Background(), models.NewEntry{Text: "hi", Mood: models.MoodHappy})
	require.ErrorIs(t, err, remote.ErrUnavailable)
	require.Equal(t, before, e.Entries())
	assert.Empty(t, store.data)
}

func TestCreateEntry_UnauthenticatedIsPreconditionFailure(t *testing.T) {
	client := &fakeClient{}

	e := newEngine(t, client, newFakeStore(), auth.NewState())

	_, err := e.CreateEntry(context.Background(), models.NewEntry{Text: "hi", Mood: models.MoodHappy})
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestCreateEntry_RejectsInvalidInput(t *testing.T) {
	e := newEngine(t, &fakeClient{}, newFakeStore(), authedState(t))

	_, err := e.CreateEntry(context.Background(), models.NewEntry{Text: "", Mood: models.MoodHappy})
	require.ErrorIs(t, err, common.ErrorInvalidEntry)

	_, err = e.CreateEntry(context.Background(), models.NewEntry{Text: "hi", Mood: "ecstatic"})
	require.ErrorIs(t, err, common.ErrorInvalidEntry)
}

func TestCreateEntry_SnapshotWriteFailureIsNotFatal(t *testing.T) {
	store := newFakeStore()
	store.writeErr = errors.New("disk full")
	saved := entry("srv1", 0)
	client := &fakeClient{created: &saved}

	e := newEngine(t, client, store, authedState(t))

	got, err := e.CreateEntry(context.Background(), models.NewEntry{Text: "hi", Mood: models.MoodHappy})
	require.NoError(t, err)
	assert.Equal(t, "srv1", got.ID)
	require.Equal(t, []string{"srv1"}, ids(e.Entries()))
}
