package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gorewood/bloglog/internal/draft"
	"github.com/gorewood/bloglog/internal/journal"
)

// shutdownGrace is how long in-flight requests get after a stop signal.
const shutdownGrace = 10 * time.Second

// Config describes one server instance.
type Config struct {
	Address   string
	Store     *journal.Store
	Generator *draft.Generator
	Logger    *slog.Logger
	// Ready, when set, is called with the bound address once the listener
	// is open.
	Ready func(addr string)
}

// Run serves until ctx is cancelled or the process receives SIGINT or
// SIGTERM, then shuts down gracefully.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Store == nil {
		return errors.New("server: store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	broker := NewBroker()
	defer broker.Close()

	handler := NewHandler(cfg.Store, cfg.Generator, logger)
	router := NewRouter(handler, broker, NewPage(cfg.Store, logger))

	ln, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Address, err)
	}
	httpServer := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if cfg.Ready != nil {
		cfg.Ready(ln.Addr().String())
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := WatchFile(gCtx, cfg.Store.TimelinePath(), logger, func() {
			broker.Publish(Event{Type: "timeline", Data: map[string]string{"path": journal.TimelineFile}})
		})
		if err != nil {
			logger.Warn("watcher unavailable", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server",
			slog.String("address", ln.Addr().String()),
			slog.String("project", cfg.Store.Root()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
		}

		// Close the event streams first; Shutdown waits for open handlers.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Server error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Server stopped")
	return nil
}

// errShutdown cancels the group once the signal goroutine has finished so
// the watcher exits too.
var errShutdown = errors.New("shutdown")
