// Package remote talks to the backend journal API. The backend is the
// authoritative store for entries and schedules; this package exposes it
// behind a narrow interface so services can be tested against fakes.
package remote

import (
	"context"

	"github.com/mindtide/moodsync/internal/client/models"
)

// Client is the remote store surface consumed by the services layer.
// Calls are scoped to the authenticated user via the bearer token set
// with SetToken.
type Client interface {
	Close() error
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Profile(ctx context.Context) (*models.User, error)
	Ping(ctx context.Context) error

	ListEntries(ctx context.Context) ([]models.JournalEntry, error)
	CreateEntry(ctx context.Context, entry models.NewEntry) (*models.JournalEntry, error)

	GetSchedule(ctx context.Context, date string) (*models.ScheduleDay, error)
	GenerateSchedule(ctx context.Context, mood models.Mood) (*models.ScheduleDay, error)
	CompleteTask(ctx context.Context, date string, index int, completed bool) error

	SetToken(token string)
}
