package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/gorewood/bloglog/internal/journal"
	"github.com/gorewood/bloglog/internal/output"
	"github.com/gorewood/bloglog/internal/registry"
	"github.com/gorewood/bloglog/internal/server"
)

type serveFlags struct {
	daemon bool
	model  string
}

func newServeCmd() *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Start the web interface and JSON API for the current project.

The server listens on BLOGLOG_HOST:BLOGLOG_PORT (default 127.0.0.1:3001).
Only one server runs at a time; its pid is recorded in the config directory
so that bl status and bl stop can find it.

Examples:
  bl serve            # Foreground, Ctrl+C to stop
  bl serve --daemon   # Background, stop with bl stop`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}
	cmd.Flags().BoolVarP(&flags.daemon, "daemon", "d", false, "Run in background")
	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "Model for generate and summarize (default: $BLOGLOG_MODEL)")
	return cmd
}

func runServe(cmd *cobra.Command, flags *serveFlags) error {
	printer := newPrinter(cmd)

	store, err := openProject()
	if err != nil {
		printer.Error(err)
		return err
	}
	settings, err := loadSettings()
	if err != nil {
		printer.Error(err)
		return err
	}

	reg := serverRegistry()
	rec, state, err := reg.Check()
	if err != nil {
		sysErr := output.NewSystemErrorWithCause(err.Error(), err)
		printer.Error(sysErr)
		return sysErr
	}
	// A daemon child finds the record its parent wrote for it.
	if state == registry.Running && rec.PID != os.Getpid() {
		if printer.IsJSON() {
			return printer.WriteJSON(map[string]any{"status": "running", "pid": rec.PID, "url": rec.URL})
		}
		printer.Print("Server already running (PID: %d)\n", rec.PID)
		printer.Println("Open " + rec.URL)
		return nil
	}

	if flags.daemon {
		return startDaemon(printer, store, settings.Address(), settings.URL(), flags.model)
	}

	if !printer.IsJSON() {
		printer.Println("Starting server...")
		printer.Println("Project: " + store.Root())
		printer.Println("Open " + settings.URL())
		printer.Println("Press Ctrl+C to stop")
		printer.Println()
	}

	logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: settings.LogLevel}))
	pid := os.Getpid()
	defer func() {
		if err := reg.RemoveIfOwner(pid); err != nil {
			logger.Warn("removing server record", slog.String("error", err.Error()))
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	err = server.Run(ctx, server.Config{
		Address:   settings.Address(),
		Store:     store,
		Generator: newGenerator(store, settings, flags.model),
		Logger:    logger,
		Ready: func(addr string) {
			if err := reg.Save(registry.Record{
				PID:         pid,
				ProjectRoot: store.Root(),
				Address:     addr,
				URL:         settings.URL(),
				StartedAt:   time.Now().UTC(),
			}); err != nil {
				logger.Warn("saving server record", slog.String("error", err.Error()))
			}
		},
	})
	if err != nil {
		sysErr := output.NewSystemErrorWithCause(err.Error(), err)
		printer.Error(sysErr)
		return sysErr
	}
	return nil
}

// startDaemon re-runs "bl serve" detached from the terminal and records the
// child's pid.
func startDaemon(printer *output.Printer, store *journal.Store, addr, url, model string) error {
	exe, err := os.Executable()
	if err != nil {
		sysErr := output.NewSystemErrorWithCause("cannot locate bl executable", err)
		printer.Error(sysErr)
		return sysErr
	}

	args := []string{"serve"}
	if model != "" {
		args = append(args, "--model", model)
	}
	child := exec.Command(exe, args...) //nolint:gosec // re-executes this binary
	child.Dir = store.Root()
	child.Env = os.Environ()
	registry.Detach(child)

	if !printer.IsJSON() {
		printer.Println("Starting server in background...")
	}
	if err := child.Start(); err != nil {
		sysErr := output.NewSystemErrorWithCause("starting server: "+err.Error(), err)
		printer.Error(sysErr)
		return sysErr
	}

	rec := registry.Record{
		PID:         child.Process.Pid,
		ProjectRoot: store.Root(),
		Address:     addr,
		URL:         url,
		StartedAt:   time.Now().UTC(),
	}
	if err := serverRegistry().Save(rec); err != nil {
		sysErr := output.NewSystemErrorWithCause(err.Error(), err)
		printer.Error(sysErr)
		return sysErr
	}
	_ = child.Process.Release()

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{"status": "started", "pid": rec.PID, "project": rec.ProjectRoot, "url": url})
	}
	printer.Print("Server started (PID: %d)\n", rec.PID)
	printer.Println("Project: " + rec.ProjectRoot)
	printer.Println("Open " + url)
	return nil
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server status and current project",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	printer := newPrinter(cmd)

	rec, state, err := serverRegistry().Check()
	if err != nil {
		sysErr := output.NewSystemErrorWithCause(err.Error(), err)
		printer.Error(sysErr)
		return sysErr
	}
	running := state == registry.Running

	// The current project is optional here.
	var store *journal.Store
	var entryCount int
	if cwd, err := os.Getwd(); err == nil {
		if s, err := journal.Open(cwd); err == nil {
			store = s
			if entries, err := s.ReadTimeline(); err == nil {
				entryCount = len(entries)
			}
		}
	}

	if printer.IsJSON() {
		data := map[string]any{"server": "stopped"}
		if running {
			data["server"] = "running"
			data["pid"] = rec.PID
			data["project"] = rec.ProjectRoot
			data["url"] = rec.URL
		}
		if store != nil {
			data["current_project"] = store.Root()
			data["entry_count"] = entryCount
		}
		return printer.WriteJSON(data)
	}

	printer.Section("BlogLog Status")
	if running {
		printer.KeyValue("Server", "Running (PID: "+strconv.Itoa(rec.PID)+")")
		printer.KeyValue("Project", rec.ProjectRoot)
		printer.KeyValue("URL", rec.URL)
	} else {
		printer.KeyValue("Server", "Stopped")
	}
	if store != nil {
		meta, _ := store.ReadMetadata()
		printer.Println()
		printer.KeyValue("Current project", meta.NameOrDefault()+" ("+store.Root()+")")
		printer.KeyValue("Entries", strconv.Itoa(entryCount))
	}
	return nil
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon server",
		Args:  cobra.NoArgs,
		RunE:  runStop,
	}
}

func runStop(cmd *cobra.Command, _ []string) error {
	printer := newPrinter(cmd)
	reg := serverRegistry()

	rec, state, err := reg.Check()
	if err != nil {
		sysErr := output.NewSystemErrorWithCause(err.Error(), err)
		printer.Error(sysErr)
		return sysErr
	}

	switch state {
	case registry.Stopped:
		return stopResult(printer, "not_running", 0, "Server is not running")
	case registry.Stale:
		return stopResult(printer, "stale", 0, "Server was not running (stale PID file)")
	}

	if err := registry.Terminate(rec.PID); err != nil {
		sysErr := output.NewSystemErrorWithCause("Error stopping server: "+err.Error(), err)
		printer.Error(sysErr)
		return sysErr
	}
	if err := reg.Remove(); err != nil {
		printer.Warn("%v", err)
	}
	return stopResult(printer, "stopped", rec.PID, fmt.Sprintf("Server stopped (PID: %d)", rec.PID))
}

func stopResult(printer *output.Printer, status string, pid int, message string) error {
	if printer.IsJSON() {
		data := map[string]any{"status": status}
		if pid > 0 {
			data["pid"] = pid
		}
		return printer.WriteJSON(data)
	}
	printer.Println(message)
	return nil
}
