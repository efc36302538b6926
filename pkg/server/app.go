package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MarketPulse/internal/usecase"
	"MarketPulse/pkg/config"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"
)

// App encapsulates the application lifecycle. Two modes:
//
//   - one-shot (default): run a single scan and exit, the cron-friendly mode
//   - daemon (server.enabled): tick at schedule.interval and expose the ops
//     HTTP server (/healthz, /status, /metrics) until interrupted
type App struct {
	cfg     *config.Config
	runner  *usecase.ScanRunner
	handler xhttp.Handler
	logger  *applogger.Logger

	httpServer *xhttp.Server
	closers    []io.Closer
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, runner *usecase.ScanRunner, handler xhttp.Handler, logger *applogger.Logger) *App {
	return &App{
		cfg:     cfg,
		runner:  runner,
		handler: handler,
		logger:  logger,
	}
}

// AddCloser registers an infrastructure client to close on shutdown.
func (a *App) AddCloser(c io.Closer) {
	if c != nil {
		a.closers = append(a.closers, c)
	}
}

// Run starts the application. In one-shot mode it returns after a single scan;
// in daemon mode it blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !a.cfg.Server.Enabled {
		a.logger.Info("running single scan")
		a.runner.Run(ctx)
		a.close()
		return nil
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		return err
	}
	a.logger.Info("daemon started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Duration("interval", a.cfg.Schedule.Interval),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(a.cfg.Schedule.Interval)
	defer ticker.Stop()

	// immediate first scan so /status has data before the first tick
	a.runner.Run(ctx)

	for {
		select {
		case <-ticker.C:
			a.runner.Run(ctx)
		case <-sigCh:
			a.logger.Info("shutdown signal received")
			return a.shutdown(ctx)
		}
	}
}

// shutdown gracefully stops the ops server and closes infrastructure clients.
func (a *App) shutdown(ctx context.Context) error {
	if a.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("http shutdown error", applogger.Error(err))
		}
	}

	a.close()
	a.logger.Info("shutdown complete")
	return nil
}

func (a *App) close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("close error", applogger.Error(err))
		}
	}
}
