package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "SentimentOracle/internal/domain/repository"
	"SentimentOracle/internal/handler/ws"
	"SentimentOracle/internal/scheduler"
	"SentimentOracle/internal/usecase"
	"SentimentOracle/pkg/config"
	xhttp "SentimentOracle/pkg/http"
	applogger "SentimentOracle/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	dashboard  *usecase.DashboardUseCase
	hub        *ws.Hub
	refresher  *scheduler.Refresher
	httpServer *xhttp.Server
	publisher  domrepo.SignalPublisher
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	dashboard *usecase.DashboardUseCase,
	hub *ws.Hub,
	refresher *scheduler.Refresher,
	httpServer *xhttp.Server,
	publisher domrepo.SignalPublisher,
) *App {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &App{
		cfg:        cfg,
		logger:     logger,
		dashboard:  dashboard,
		hub:        hub,
		refresher:  refresher,
		httpServer: httpServer,
		publisher:  publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the application and blocks until ctx is done or the
// HTTP server fails.
func (a *App) RunContext(ctx context.Context) error {
	// Every completed cycle is pushed to websocket clients.
	a.dashboard.OnCycle(a.hub.Broadcast)

	errCh := a.httpServer.Start()

	a.refresher.Start(!a.cfg.Refresh.SkipInitialRun)
	a.logger.Info("refresher started",
		applogger.String("cron", a.cfg.Refresh.Cron),
		applogger.String("range", a.cfg.Dashboard.DefaultRange),
		applogger.String("symbol", a.cfg.Binance.Symbol))

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err, ok := <-errCh:
		if ok && err != nil {
			runErr = err
		}
	}

	a.shutdown()
	return runErr
}

// shutdown gracefully stops all services.
func (a *App) shutdown() {
	a.logger.Info("shutting down...", applogger.Int("ws_clients", a.hub.Len()))
	ctx := context.Background()

	a.refresher.Stop(ctx)
	a.hub.Close()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("signal publisher close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
}
