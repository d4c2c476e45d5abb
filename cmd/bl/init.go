package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gorewood/bloglog/internal/git"
	"github.com/gorewood/bloglog/internal/journal"
	"github.com/gorewood/bloglog/internal/output"
)

type initFlags struct {
	name string
	win  string
}

func newInitCmd() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize BlogLog in the current directory",
		Long: `Initialize BlogLog in the current directory.

Creates .bloglog/ with metadata.json, an empty timeline.json and a drafts/
directory. The project name defaults to the directory name. Problem, goals
and success criteria can be filled in later from the web interface.

Examples:
  bl init
  bl init --name "Rewrite the parser"
  bl init --win "Got the prototype compiling"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.name, "name", "", "Project name (default: directory name)")
	cmd.Flags().StringVar(&flags.win, "win", "", "Log an initial win")
	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	printer := newPrinter(cmd)

	cwd, err := os.Getwd()
	if err != nil {
		sysErr := output.NewSystemErrorWithCause("cannot determine working directory", err)
		printer.Error(sysErr)
		return sysErr
	}
	name := flags.name
	if name == "" {
		name = filepath.Base(cwd)
	}

	marker, err := journal.Init(cwd, journal.Metadata{ProjectName: name})
	if errors.Is(err, journal.ErrAlreadyInitialized) {
		userErr := output.NewUserErrorWithCause(".bloglog directory already exists in this project.", err)
		printer.Error(userErr)
		if !printer.IsJSON() {
			printer.Println("Use the web interface at /init to update project metadata.")
		}
		return userErr
	}
	if err != nil {
		sysErr := output.NewSystemErrorWithCause(err.Error(), err)
		printer.Error(sysErr)
		return sysErr
	}

	var winEntry *journal.Entry
	if flags.win != "" {
		entry, err := journal.New(cwd).Append(journal.Win(flags.win))
		if err != nil {
			sysErr := output.NewSystemErrorWithCause("logging initial win: "+err.Error(), err)
			printer.Error(sysErr)
			return sysErr
		}
		winEntry = &entry
	}

	created := []string{
		filepath.Join(journal.MarkerDir, journal.MetadataFile),
		filepath.Join(journal.MarkerDir, journal.TimelineFile),
		filepath.Join(journal.MarkerDir, journal.DraftsDir) + string(filepath.Separator),
	}

	if printer.IsJSON() {
		data := map[string]any{
			"status":  "ok",
			"path":    marker,
			"project": name,
			"created": created,
		}
		if winEntry != nil {
			data["win"] = winEntry
		}
		return printer.WriteJSON(data)
	}

	styles := printer.Styles()
	printer.Println(styles.Success.Render("✓ Initialized BlogLog in " + marker))
	printer.Println("  Project: " + name)
	printer.Println()
	printer.Println("Created:")
	for _, path := range created {
		printer.Println("  " + filepath.ToSlash(path))
	}
	if winEntry != nil {
		printer.Println()
		printer.Println("🎉 Initial win logged: " + flags.win)
	}
	if !git.IsRepo(cwd) {
		printer.Println()
		printer.Println(styles.Dim.Render("Not a git repository: bl commit will log messages without a git hash."))
	}
	printer.Println()
	printer.Println(styles.Bold.Render("Next steps:"))
	printer.Println("  bl serve        Start the web interface")
	printer.Println(`  bl commit "msg" Make your first tracked commit`)
	printer.Println(`  bl note "text"  Capture a quick thought`)
	return nil
}
