// Package cli implements the interactive moodsync client: a small REPL over
// the journal sync engine, session management, and the daily schedule.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mindtide/moodsync/internal/client/auth"
	"github.com/mindtide/moodsync/internal/client/cache"
	"github.com/mindtide/moodsync/internal/client/config"
	"github.com/mindtide/moodsync/internal/client/models"
	"github.com/mindtide/moodsync/internal/client/remote"
	"github.com/mindtide/moodsync/internal/client/services"
	"github.com/mindtide/moodsync/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config      *config.Config
	db          *sql.DB
	client      remote.Client
	state       *auth.State
	authService *services.AuthService
	engine      *services.SyncEngine
	schedule    *services.ScheduleService
	log         logging.Logger

	user   *models.User
	day    *models.ScheduleDay
	Mode   Mode
	reader *bufio.Reader
}

func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	db, store, err := cache.InitDatabase(ctx, c.CacheDSN)
	if err != nil {
		log.Error(ctx, "error initializing cache database", "error", err)
		return nil, err
	}

	apiClient := remote.NewHTTPClient(c.ServerEndpointURL)
	state := auth.NewState()

	engine := services.NewSyncEngine(apiClient, store, state, log)
	as := services.NewAuthService(apiClient, store, state, log)
	ss := services.NewScheduleService(apiClient, state, log)

	return &App{
		config:      c,
		db:          db,
		client:      apiClient,
		state:       state,
		authService: as,
		engine:      engine,
		schedule:    ss,
		log:         log,
		reader:      bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()

	// Fast path: cached entries are visible before any network traffic.
	a.engine.Hydrate(ctx)

	if user, err := a.authService.Restore(ctx); err == nil && user != nil {
		a.user = user
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.Root(ctx)
}

func (a *App) Close() {
	_ = a.client.Close()
	_ = a.db.Close()
}

func (a *App) isLoggedIn() bool {
	_, ok := a.state.Session()
	return ok
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		a.log.Info(ctx, "connectivity changed", "mode", mode)
	}
}

// StartOnlineStatusWatcher periodically pings the backend and flips the
// online/offline indicator shown in the prompt.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.client.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ctx, ModeOffline)
			} else {
				a.setMode(ctx, ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
