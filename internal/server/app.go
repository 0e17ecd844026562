// Package server initializes and runs the API server: database, migrations,
// object storage, mail delivery, and the HTTP endpoint with graceful
// shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aquidolado/aqui/internal/logging"
	"github.com/aquidolado/aqui/internal/server/config"
	"github.com/aquidolado/aqui/internal/server/httpapi"
	"github.com/aquidolado/aqui/internal/server/mailer"
	"github.com/aquidolado/aqui/internal/server/repositories/repomanager"
	"github.com/aquidolado/aqui/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	var ml mailer.Mailer
	if cfg.SMTPAddr != "" {
		ml = mailer.NewSMTPMailer(cfg.SMTPAddr, cfg.MailFrom)
	} else {
		ml = mailer.NewLogMailer(logger)
	}

	images := services.NewS3ImageStore(cfg)

	adService := services.NewAdService(db, rm, images, logger)
	handlers := httpapi.NewHandlers(
		services.NewAuthService(db, rm, ml, logger, cfg),
		adService,
		services.NewCommunityService(db, rm),
		services.NewUserService(db, rm),
		services.NewModerationService(db, rm, adService),
		logger,
	)

	return &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		handler: httpapi.NewRouter(handlers, []byte(cfg.SecretKey)),
	}, nil
}

// Run serves HTTP until the context is cancelled or a termination signal
// arrives, then drains in-flight requests.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()
	defer app.db.Close()

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting http server", "addr", app.config.EndpointAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}
