package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mindtide/moodsync/internal/client/auth"
	"github.com/mindtide/moodsync/internal/client/cache"
	"github.com/mindtide/moodsync/internal/client/models"
	"github.com/mindtide/moodsync/internal/client/remote"
	"github.com/mindtide/moodsync/internal/common"
	"github.com/mindtide/moodsync/internal/logging"
)

// AuthService manages the session lifecycle: login against the backend,
// restoring a persisted session at startup, and logout. Session data
// (token + user profile) lives in the same local cache as the journal
// snapshot, under its own keys.
type AuthService struct {
	client remote.Client
	cache  cache.Store
	state  *auth.State
	log    logging.Logger
	now    func() time.Time
}

func NewAuthService(client remote.Client, store cache.Store, state *auth.State, log logging.Logger) *AuthService {
	return &AuthService{
		client: client,
		cache:  store,
		state:  state,
		log:    log.With("component", "auth"),
		now:    time.Now,
	}
}

// Login authenticates with the backend, persists the session for later
// restore, and flips the auth state to authenticated (which triggers a
// journal reconciliation).
func (a *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	token, user, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	a.saveSession(ctx, token, user)
	a.client.SetToken(token)

	if _, err := a.state.SetAuthenticated(token, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Restore re-establishes a previously persisted session. Returns the user
// (nil if no valid session was stored). A corrupt stored profile is cleared
// and does not fail the restore; an expired token clears the session.
//
// If the backend rejects the stored token, the session is cleared and the
// restore reports logged out. If the backend is merely unreachable, the
// cached profile is trusted so the app still comes up authenticated and
// offline-capable.
func (a *AuthService) Restore(ctx context.Context) (*models.User, error) {
	blob, err := a.cache.Read(ctx, common.CacheKeyToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored session: %w", err)
	}
	if len(blob) == 0 {
		return nil, nil
	}
	token := string(blob)

	if auth.Expired(token, a.now()) {
		a.log.Info(ctx, "stored token expired, clearing session")
		a.clearSession(ctx)
		return nil, nil
	}

	user := a.storedUser(ctx)
	a.client.SetToken(token)

	fresh, err := a.client.Profile(ctx)
	switch {
	case err == nil:
		user = fresh
		a.saveSession(ctx, token, user)
	case errors.Is(err, remote.ErrUnauthorized):
		a.log.Info(ctx, "stored token rejected, clearing session")
		a.clearSession(ctx)
		a.client.SetToken("")
		return nil, nil
	default:
		a.log.Warn(ctx, "profile refresh failed, using cached profile", "error", err)
	}

	if _, err := a.state.SetAuthenticated(token, user); err != nil {
		a.clearSession(ctx)
		a.client.SetToken("")
		return nil, nil
	}
	return user, nil
}

// Logout clears the session token and profile. The journal snapshot is left
// alone: losing authentication never destroys data the user already has.
func (a *AuthService) Logout(ctx context.Context) {
	a.state.Clear()
	a.client.SetToken("")
	a.clearSession(ctx)
}

// storedUser returns the cached profile, clearing it if unparseable.
func (a *AuthService) storedUser(ctx context.Context) *models.User {
	blob, err := a.cache.Read(ctx, common.CacheKeyUser)
	if err != nil || blob == nil {
		return nil
	}
	var user models.User
	if err := json.Unmarshal(blob, &user); err != nil {
		a.log.Warn(ctx, "corrupt stored profile, clearing", "error", err)
		_ = a.cache.Delete(ctx, common.CacheKeyUser)
		return nil
	}
	return &user
}

func (a *AuthService) saveSession(ctx context.Context, token string, user *models.User) {
	values := map[string][]byte{common.CacheKeyToken: []byte(token)}
	if user != nil {
		blob, err := json.Marshal(user)
		if err != nil {
			a.log.Error(ctx, "failed to encode profile", "error", err)
		} else {
			values[common.CacheKeyUser] = blob
		}
	}
	if err := a.cache.WriteAll(ctx, values); err != nil {
		a.log.Warn(ctx, "failed to persist session", "error", err)
	}
}

func (a *AuthService) clearSession(ctx context.Context) {
	if err := a.cache.Delete(ctx, common.CacheKeyToken); err != nil {
		a.log.Warn(ctx, "failed to clear token", "error", err)
	}
	if err := a.cache.Delete(ctx, common.CacheKeyUser); err != nil {
		a.log.Warn(ctx, "failed to clear profile", "error", err)
	}
}
