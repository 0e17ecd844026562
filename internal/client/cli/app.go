// Package cli is the interactive terminal client: a small REPL over the
// session, community, feed and ad services.
package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"

	"github.com/aquidolado/aqui/internal/client/api"
	"github.com/aquidolado/aqui/internal/client/community"
	"github.com/aquidolado/aqui/internal/client/config"
	"github.com/aquidolado/aqui/internal/client/feed"
	"github.com/aquidolado/aqui/internal/client/router"
	"github.com/aquidolado/aqui/internal/client/services"
	"github.com/aquidolado/aqui/internal/client/session"
	"github.com/aquidolado/aqui/internal/client/storage"
	"github.com/aquidolado/aqui/internal/logging"
)

type App struct {
	config  *config.Config
	storage storage.Store
	session *session.Store
	comms   *community.Store
	guard   *router.Guard
	feed    *feed.Controller

	auth        *services.AuthService
	ads         *services.AdService
	communities *services.CommunityService
	users       *services.UserService
	metrics     *services.MetricsService

	reader *bufio.Reader
	// location mimics the current page so the auth-failure handler can
	// tell whether we are mid-login.
	location string
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	store, err := storage.OpenSQLite(ctx, c.StorageFile)
	if err != nil {
		return nil, err
	}

	apiClient := api.NewClient(c.ServerURL, nil)

	authSvc := services.NewAuthService(apiClient)
	userSvc := services.NewUserService(apiClient)
	adSvc := services.NewAdService(apiClient)
	commSvc := services.NewCommunityService(apiClient)

	app := &App{
		config:      c,
		storage:     store,
		auth:        authSvc,
		ads:         adSvc,
		communities: commSvc,
		users:       userSvc,
		metrics:     services.NewMetricsService(apiClient, logger),
		reader:      bufio.NewReader(os.Stdin),
		location:    router.PathIndex,
	}

	app.session = session.NewStore(store, authSvc, userSvc, logger)
	app.comms = community.NewStore(store, commSvc)
	app.guard = router.NewGuard(app.session, app.comms, adSvc)
	app.feed = feed.NewController(adSvc, feed.DefaultDebounce)

	apiClient.TokenFunc = app.session.Token
	apiClient.LocationFunc = func() string { return app.location }
	apiClient.OnAuthFailure = func(ctx context.Context) {
		// Server said 401/403: the session is over, whatever the call was.
		_ = app.session.Logout(ctx)
		_ = app.comms.Clear(ctx)
		app.location = router.PathLogin
	}

	if err := app.session.Hydrate(ctx); err != nil {
		return nil, err
	}
	if err := app.comms.Hydrate(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) Run(ctx context.Context) {
	a.landing(ctx)
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
	a.session.Wait()
}
