package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mindtide/moodsync/internal/client/models"
	"github.com/mindtide/moodsync/internal/common"
)

// HTTPClient implements Client over the backend's JSON API.
//
// The access token is guarded by a mutex: the connectivity watcher pings on
// its own goroutine while login/logout swap the token.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu          sync.RWMutex
	accessToken string
}

// NewHTTPClient returns an HTTPClient for the API rooted at baseURL
// (e.g. "http://localhost:5000").
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 12 * time.Second},
	}
}

// SetToken sets the bearer token attached to subsequent requests.
func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

func (c *HTTPClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// doJSON sends a request with an optional JSON body and decodes the JSON
// response into out (skipped if out is nil).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set(common.AuthHeaderName, "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return mapStatusError(resp.StatusCode, b)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func mapTransportError(err error) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func mapStatusError(code int, body []byte) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrUnauthorized
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, code)
	default:
		return fmt.Errorf("request failed: status %d: %s", code, body)
	}
}

type loginResponse struct {
	Token  string   `json:"token"`
	ID     string   `json:"_id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Avatar string   `json:"avatar"`
	Theme  string   `json:"theme"`
	Streak int      `json:"streak"`
	Badges []string `json:"badges"`
}

// Login authenticates with email/password and returns the session token
// plus the user profile the backend sent along with it.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var resp loginResponse
	payload := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", payload, &resp); err != nil {
		return "", nil, err
	}

	c.SetToken(resp.Token)

	user := &models.User{
		ID:     resp.ID,
		Name:   resp.Name,
		Email:  resp.Email,
		Avatar: resp.Avatar,
		Theme:  resp.Theme,
		Streak: resp.Streak,
		Badges: resp.Badges,
	}
	return resp.Token, user, nil
}

// Profile fetches the authenticated user's profile.
func (c *HTTPClient) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Ping checks backend liveness.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/api/health", nil, nil)
}

// ListEntries fetches all of the user's journal entries. The backend does
// not filter by age; callers apply their own retention policy.
func (c *HTTPClient) ListEntries(ctx context.Context) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	if err := c.doJSON(ctx, http.MethodGet, "/api/journal", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// createEntryResponse tolerates both response shapes the backend has used:
// a bare entry, or the entry wrapped under "journal" next to gamification
// fields.
type createEntryResponse struct {
	Journal *models.JournalEntry `json:"journal"`
	models.JournalEntry
}

// CreateEntry submits a new entry. The backend assigns the authoritative id
// and createdAt and may attach an AI reflection.
func (c *HTTPClient) CreateEntry(ctx context.Context, entry models.NewEntry) (*models.JournalEntry, error) {
	var resp createEntryResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/journal", entry, &resp); err != nil {
		return nil, err
	}
	if resp.Journal != nil {
		return resp.Journal, nil
	}
	saved := resp.JournalEntry
	return &saved, nil
}

// scheduleDTO is the backend's schedule wire shape: completion is a list of
// ordinal item indices.
type scheduleDTO struct {
	Date      string        `json:"date"`
	Mood      models.Mood   `json:"mood"`
	Items     []models.Task `json:"items"`
	Completed []int         `json:"completed"`
}

func (d *scheduleDTO) toModel() *models.ScheduleDay {
	return models.NewScheduleDay(d.Date, d.Mood, d.Items, d.Completed)
}

// GetSchedule fetches the schedule for a date (YYYY-MM-DD). Returns
// ErrNotFound if no schedule exists for that day.
func (c *HTTPClient) GetSchedule(ctx context.Context, date string) (*models.ScheduleDay, error) {
	var dto scheduleDTO
	path := "/api/schedule?date=" + url.QueryEscape(date)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &dto); err != nil {
		return nil, err
	}
	if dto.Date == "" {
		return nil, ErrNotFound
	}
	return dto.toModel(), nil
}

// GenerateSchedule asks the backend to create (or refresh) today's schedule
// for the given mood.
func (c *HTTPClient) GenerateSchedule(ctx context.Context, mood models.Mood) (*models.ScheduleDay, error) {
	var dto scheduleDTO
	payload := map[string]models.Mood{"mood": mood}
	if err := c.doJSON(ctx, http.MethodPost, "/api/schedule", payload, &dto); err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

// CompleteTask reports the completion state of one schedule item, addressed
// by its ordinal index as the backend requires.
func (c *HTTPClient) CompleteTask(ctx context.Context, date string, index int, completed bool) error {
	payload := map[string]any{"date": date, "index": index, "completed": completed}
	return c.doJSON(ctx, http.MethodPost, "/api/schedule/complete", payload, nil)
}
