// Package server wires the photoshare web application: it selects the
// metadata and blob backends from configuration, runs migrations, and
// serves HTTP until a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/photoshare/internal/logging"
	"github.com/dmitrijs2005/photoshare/internal/server/auth"
	"github.com/dmitrijs2005/photoshare/internal/server/blobstore"
	"github.com/dmitrijs2005/photoshare/internal/server/config"
	"github.com/dmitrijs2005/photoshare/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/photoshare/internal/server/services"
	"github.com/dmitrijs2005/photoshare/internal/server/web"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	repositories repomanager.RepositoryManager
	handler      *web.Handler
}

// Seams for tests.
var (
	newRepositoryManager = repomanager.New
	newBlobStore         = blobstore.New
)

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	rm, err := newRepositoryManager(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close(ctx)
		return nil, fmt.Errorf("migration error: %w", err)
	}

	blobs, err := newBlobStore(ctx, c)
	if err != nil {
		_ = rm.Close(ctx)
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	us := services.NewUserService(rm, logger)
	ps := services.NewPhotoService(rm, blobs, c, logger)

	sessions := auth.NewSessions(c.SecretKey, c.SessionValidityDuration, c.SecureCookies)
	mw := auth.NewMiddleware(sessions, us, logger)

	h, err := web.NewHandler(us, ps, sessions, mw, c, logger)
	if err != nil {
		_ = rm.Close(ctx)
		return nil, err
	}

	logger.Info(ctx, "backends ready", "storage", c.StorageBackend, "blobs", c.BlobBackend, "download_mode", c.DownloadMode)

	return &App{config: c, logger: logger, repositories: rm, handler: h}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := web.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.handler.Routes())

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the store connections.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repositories.Close(context.Background()); err != nil {
		app.logger.Error(ctx, "close repositories", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
