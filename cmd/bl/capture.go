package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gorewood/bloglog/internal/git"
	"github.com/gorewood/bloglog/internal/journal"
	"github.com/gorewood/bloglog/internal/output"
)

// textCommand describes one of the note/win/blocker commands.
type textCommand struct {
	use     string
	short   string
	example string
	build   func(string) journal.Partial
	label   string
}

func newNoteCmd() *cobra.Command {
	return newTextCmd(textCommand{
		use:     "note <text>",
		short:   "Quick capture a note",
		example: `  bl note "Auth middleware needs a rethink"`,
		build:   journal.Note,
		label:   "Note added",
	})
}

func newWinCmd() *cobra.Command {
	return newTextCmd(textCommand{
		use:     "win <text>",
		short:   "Log a breakthrough moment",
		example: `  bl win "Cold start down to 80ms"`,
		build:   journal.Win,
		label:   "🎉 Win logged",
	})
}

func newBlockerCmd() *cobra.Command {
	return newTextCmd(textCommand{
		use:     "blocker <text>",
		short:   "Log a stuck point",
		example: `  bl blocker "CI can't reach the artifact cache"`,
		build:   journal.Blocker,
		label:   "🚧 Blocker logged",
	})
}

func newTextCmd(tc textCommand) *cobra.Command {
	return &cobra.Command{
		Use:     tc.use,
		Short:   tc.short,
		Example: tc.example,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runText(cmd, tc, args[0])
		},
	}
}

func runText(cmd *cobra.Command, tc textCommand, text string) error {
	printer := newPrinter(cmd)

	store, err := openProject()
	if err != nil {
		printer.Error(err)
		return err
	}

	entry, err := store.Append(tc.build(text))
	if err != nil {
		sysErr := output.NewSystemErrorWithCause(err.Error(), err)
		printer.Error(sysErr)
		return sysErr
	}

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{"entry": entry})
	}
	printer.Println(tc.label + ": " + text)
	printer.Println("Entry ID: " + entry.ID)
	return nil
}

func newCommitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commit <message>",
		Short: "Log message and run git commit",
		Long: `Run git commit -m <message> and log the commit on the timeline.

Staging is up to you. If git has nothing to commit, or the commit fails, the
message is still logged, with a null git hash.`,
		Example: `  git add -A && bl commit "Add retry to the webhook sender"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(cmd, args[0])
		},
	}
}

func runCommit(cmd *cobra.Command, message string) error {
	printer := newPrinter(cmd)

	store, err := openProject()
	if err != nil {
		printer.Error(err)
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = store.Root()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	hash, gitErr := git.Commit(ctx, cwd, message)

	entry, err := store.Append(journal.Commit(message, hash))
	if err != nil {
		sysErr := output.NewSystemErrorWithCause(err.Error(), err)
		printer.Error(sysErr)
		return sysErr
	}

	if printer.IsJSON() {
		data := map[string]any{"entry": entry, "committed": gitErr == nil}
		if gitErr != nil {
			data["git_error"] = gitErr.Error()
		}
		return printer.WriteJSON(data)
	}

	switch {
	case errors.Is(gitErr, git.ErrNothingToCommit):
		printer.Println("Nothing to commit, working tree clean")
	case gitErr != nil:
		printer.Warn("Git error: %s", strings.TrimSpace(gitErr.Error()))
	default:
		printer.Println("Committed: " + message)
		printer.Println("Git hash: " + hash)
	}
	printer.Println("Logged to timeline: " + entry.ID)
	return nil
}
