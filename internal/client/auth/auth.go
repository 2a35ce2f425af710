// Package auth tracks the client's authentication state and lets other
// components react to it. The sync engine subscribes here and reconciles
// whenever the state transitions into authenticated.
//
// The client never validates token signatures (it holds no key); tokens are
// decoded only to extract the user id and expiry, the same trust model the
// backend's middleware enforces server-side.
package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mindtide/moodsync/internal/client/models"
)

var ErrInvalidToken = errors.New("invalid token")

// Session is the authenticated state: who the user is and the credential
// attached to remote calls.
type Session struct {
	UserID string
	Token  string
	User   *models.User
}

// Listener is invoked on every transition into authenticated.
type Listener func(Session)

// State is an observable authentication state. The zero value is not usable;
// construct with NewState.
type State struct {
	mu        sync.Mutex
	session   *Session
	listeners []Listener
}

func NewState() *State {
	return &State{}
}

// Subscribe registers fn to run on each transition into authenticated.
// Listeners are invoked synchronously, outside the state lock.
func (s *State) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// SetAuthenticated moves the state to authenticated and notifies listeners.
// The user id is taken from the profile when present, otherwise from the
// token claims.
func (s *State) SetAuthenticated(token string, user *models.User) (Session, error) {
	userID := ""
	if user != nil {
		userID = user.ID
	}
	if userID == "" {
		id, err := UserIDFromToken(token)
		if err != nil {
			return Session{}, err
		}
		userID = id
	}

	session := Session{UserID: userID, Token: token, User: user}

	s.mu.Lock()
	s.session = &session
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(session)
	}
	return session, nil
}

// Clear moves the state to unauthenticated. No listener is notified:
// leaving authenticated triggers no destructive action anywhere.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
}

// Session returns the current session, if authenticated.
func (s *State) Session() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

// UserIDFromToken extracts the user id claim from a JWT without verifying
// its signature. The backend issues tokens with an "id" claim; standard
// "sub" is accepted as a fallback.
func UserIDFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", ErrInvalidToken
	}
	if id, ok := claims["id"].(string); ok && id != "" {
		return id, nil
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub, nil
	}
	return "", ErrInvalidToken
}

// Expired reports whether the token carries an exp claim in the past.
// Tokens without an exp claim are treated as unexpired.
func Expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
