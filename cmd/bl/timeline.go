package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/gorewood/bloglog/internal/git"
	"github.com/gorewood/bloglog/internal/journal"
	"github.com/gorewood/bloglog/internal/output"
)

type timelineFlags struct {
	entryType string
	last      int
	since     string
}

func newTimelineCmd() *cobra.Command {
	flags := &timelineFlags{}
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show timeline entries",
		Long: `Show timeline entries, oldest first.

Examples:
  bl timeline                 # Everything
  bl timeline --last 10       # The ten most recent
  bl timeline --type win      # Only wins
  bl timeline --since 7d      # The past week
  bl timeline --json          # Raw entries for scripting`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTimeline(cmd, flags)
		},
	}
	cmd.Flags().StringVar(&flags.entryType, "type", "", "Only entries of this type (commit, note, win, blocker, conversation)")
	cmd.Flags().IntVar(&flags.last, "last", 0, "Only the last N entries")
	cmd.Flags().StringVar(&flags.since, "since", "", "Only entries since a duration (24h, 7d) or date")
	return cmd
}

func runTimeline(cmd *cobra.Command, flags *timelineFlags) error {
	printer := newPrinter(cmd)

	if flags.last < 0 {
		err := output.NewUserError("--last must not be negative")
		printer.Error(err)
		return err
	}

	store, err := openProject()
	if err != nil {
		printer.Error(err)
		return err
	}

	entries, err := store.ReadTimeline()
	if err != nil {
		sysErr := output.NewSystemErrorWithCause(err.Error(), err)
		printer.Error(sysErr)
		return sysErr
	}

	if flags.entryType != "" {
		entries = journal.FilterByType(entries, flags.entryType)
	}
	if flags.since != "" {
		cutoff, err := journal.ParseSince(flags.since, time.Now().UTC())
		if err != nil {
			userErr := output.NewUserError(err.Error())
			printer.Error(userErr)
			return userErr
		}
		entries = journal.FilterSince(entries, cutoff)
	}
	entries = journal.Last(journal.SortByTimestamp(entries), flags.last)

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{"count": len(entries), "entries": entries})
	}
	if len(entries) == 0 {
		printer.Println("No timeline entries found.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			e.Type,
			entryText(e),
		})
	}
	printer.Table([]string{"TIME", "TYPE", "ENTRY"}, rows)
	return nil
}

// entryText is the table cell for an entry: its text, plus the short hash
// for commits that made it into git.
func entryText(e journal.Entry) string {
	text := e.Text()
	if e.Type == journal.TypeCommit {
		if hash := e.String("gitHash"); hash != "" {
			text += " (" + git.ShortHash(hash) + ")"
		}
	}
	return text
}
