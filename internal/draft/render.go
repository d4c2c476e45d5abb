package draft

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gorewood/bloglog/internal/git"
	"github.com/gorewood/bloglog/internal/journal"
)

const notSpecified = "Not specified"

// RenderContext provides the values substituted into a template.
type RenderContext struct {
	Metadata     *journal.Metadata // nil when the project has none
	Entries      []journal.Entry
	Conversation string
	Location     *time.Location // for entry times; nil means time.Local
}

// Render replaces {{name}} placeholders in the template content in one
// pass. Placeholders inside substituted values are left as written.
func Render(tmpl *Template, ctx *RenderContext) string {
	vars := buildVars(ctx)
	pairs := make([]string, 0, 2*len(vars))
	for _, key := range slices.Sorted(maps.Keys(vars)) {
		pairs = append(pairs, "{{"+key+"}}", vars[key])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl.Content)
}

func buildVars(ctx *RenderContext) map[string]string {
	meta := ctx.Metadata
	if meta == nil {
		meta = &journal.Metadata{}
	}

	title := meta.ProjectName
	if title == "" {
		title = "Development Session"
	}

	return map[string]string{
		"project_title":    title,
		"project_name":     meta.NameOrDefault(),
		"problem":          orNotSpecified(meta.Problem),
		"goals":            orNotSpecified(meta.Goals),
		"success_criteria": orNotSpecified(meta.SuccessCriteria),
		"timeline":         FormatEntries(ctx.Entries, ctx.Location),
		"entry_count":      strconv.Itoa(len(ctx.Entries)),
		"date_range":       buildDateRange(ctx.Entries, ctx.Location),
		"conversation":     ctx.Conversation,
	}
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return s
}

// FormatEntries renders entries one per line, in order.
func FormatEntries(entries []journal.Entry, loc *time.Location) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, FormatEntry(e, loc))
	}
	return strings.Join(lines, "\n")
}

// FormatEntry renders one entry as "[time] TYPE: text".
//
//	commit        COMMIT: message (abc1234)
//	conversation  CONVERSATION: summary
//	anything else TYPE: content, or message when there is no content
func FormatEntry(e journal.Entry, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	stamp := e.Timestamp.In(loc).Format("2006-01-02 15:04:05")

	heading := strings.ToUpper(e.Type)
	payload, err := e.Payload()
	if err != nil {
		return fmt.Sprintf("[%s] %s: %s", stamp, heading, e.Text())
	}
	switch p := payload.(type) {
	case *journal.CommitPayload:
		line := fmt.Sprintf("[%s] COMMIT: %s", stamp, p.Message)
		if p.GitHash != nil && *p.GitHash != "" {
			line += " (" + git.ShortHash(*p.GitHash) + ")"
		}
		return line
	case *journal.ConversationPayload:
		return fmt.Sprintf("[%s] CONVERSATION: %s", stamp, p.Summary)
	case *journal.TextPayload:
		if p.Content != "" {
			return fmt.Sprintf("[%s] %s: %s", stamp, heading, p.Content)
		}
	}
	return fmt.Sprintf("[%s] %s: %s", stamp, heading, e.Text())
}

// buildDateRange returns "YYYY-MM-DD" or "YYYY-MM-DD to YYYY-MM-DD".
func buildDateRange(entries []journal.Entry, loc *time.Location) string {
	if len(entries) == 0 {
		return "no entries"
	}
	if loc == nil {
		loc = time.Local
	}

	var earliest, latest time.Time
	for _, e := range entries {
		if e.Timestamp.IsZero() {
			continue
		}
		if earliest.IsZero() || e.Timestamp.Before(earliest) {
			earliest = e.Timestamp
		}
		if latest.IsZero() || e.Timestamp.After(latest) {
			latest = e.Timestamp
		}
	}
	if earliest.IsZero() {
		return "unknown date range"
	}

	from := earliest.In(loc).Format(time.DateOnly)
	to := latest.In(loc).Format(time.DateOnly)
	if from == to {
		return from
	}
	return from + " to " + to
}
