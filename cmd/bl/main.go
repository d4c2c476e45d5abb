// Package main provides the entry point for the bl CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gorewood/bloglog/internal/config"
	"github.com/gorewood/bloglog/internal/envfile"
	"github.com/gorewood/bloglog/internal/output"
)

// Build info set via ldflags at build time by goreleaser.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// isJSONMode reads the --json persistent flag from the command hierarchy.
func isJSONMode(cmd *cobra.Command) bool {
	flag := cmd.Flags().Lookup("json")
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup("json")
	}
	return flag != nil && flag.Value.String() == "true"
}

// useColor combines --color with terminal detection on the command's output.
func useColor(cmd *cobra.Command) bool {
	mode := "auto"
	if flag := cmd.Flags().Lookup("color"); flag != nil {
		mode = flag.Value.String()
	} else if flag := cmd.Root().PersistentFlags().Lookup("color"); flag != nil {
		mode = flag.Value.String()
	}
	return output.ResolveColorMode(mode, output.IsTTY(cmd.OutOrStdout()))
}

// newPrinter returns the printer every command writes through.
func newPrinter(cmd *cobra.Command) *output.Printer {
	return output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd)).
		WithStderr(cmd.ErrOrStderr())
}

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

func main() {
	code := run()
	os.Exit(code)
}

func run() int {
	cmd := newRootCmd()
	err := fang.Execute(context.Background(), cmd, fang.WithVersion(buildVersion()))
	return output.GetExitCode(err)
}

// newRootCmd creates the root command for the bl CLI.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bl",
		Short: "BlogLog - Capture your development timeline",
		Long: `BlogLog - Capture your development timeline and turn it into a blog post.

Log commits, notes, wins and blockers as you work. Everything lands in
.bloglog/timeline.json at the project root. When you're done, bl generate
drafts a chronological timeline or a narrative post from the whole log.

All commands support --json for structured output.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isJSONMode(cmd) {
				printer := output.NewPrinter(cmd.OutOrStdout(), true, false)
				err := output.NewUserError("no command specified. Run 'bl --help' for usage")
				printer.Error(err)
				return err
			}
			return cmd.Help()
		},
	}

	// Variables already in the environment always win over file values.
	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := envfile.LoadAll(config.Dir()); err != nil {
			output.NewPrinter(cmd.ErrOrStderr(), false, false).Warn("%v", err)
		}
		return nil
	}

	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().String("color", "auto", "Color output: auto, always, never")

	lipgloss.SetHasDarkBackground(true)

	addCommandGroups(cmd)
	addCommands(cmd)

	return cmd
}

func addCommandGroups(cmd *cobra.Command) {
	cmd.AddGroup(&cobra.Group{ID: "capture", Title: "Capture Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "generate", Title: "Generate Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "server", Title: "Server Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "admin", Title: "Admin Commands:"})
}

func addCommands(cmd *cobra.Command) {
	addGroupedCommand(cmd, newCommitCmd(), "capture")
	addGroupedCommand(cmd, newNoteCmd(), "capture")
	addGroupedCommand(cmd, newWinCmd(), "capture")
	addGroupedCommand(cmd, newBlockerCmd(), "capture")
	addGroupedCommand(cmd, newTimelineCmd(), "capture")

	addGroupedCommand(cmd, newGenerateCmd(), "generate")

	addGroupedCommand(cmd, newServeCmd(), "server")
	addGroupedCommand(cmd, newStatusCmd(), "server")
	addGroupedCommand(cmd, newStopCmd(), "server")
	addGroupedCommand(cmd, newMCPCmd(), "server")

	addGroupedCommand(cmd, newInitCmd(), "admin")
}

func addGroupedCommand(parent *cobra.Command, child *cobra.Command, groupID string) {
	child.GroupID = groupID
	parent.AddCommand(child)
}
