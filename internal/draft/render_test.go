package draft

import (
	"strings"
	"testing"
	"time"

	"github.com/gorewood/bloglog/internal/journal"
)

func entry(t *testing.T, ts time.Time, p journal.Partial) journal.Entry {
	t.Helper()
	return journal.Entry{ID: "id", Timestamp: ts, Type: p.Type, Fields: p.Fields}
}

func TestFormatEntry(t *testing.T) {
	ts := time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)
	opaque, err := journal.NewPartial("deploy", map[string]any{"message": "to prod"})
	if err != nil {
		t.Fatal(err)
	}
	numericHash, err := journal.NewPartial(journal.TypeCommit, map[string]any{"message": "Old import", "gitHash": 42})
	if err != nil {
		t.Fatal(err)
	}
	messageNote, err := journal.NewPartial(journal.TypeNote, map[string]any{"message": "legacy note"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		partial journal.Partial
		want    string
	}{
		{
			name:    "commit with hash",
			partial: journal.Commit("Add parser", "abcdef0123456789"),
			want:    "[2025-03-04 09:30:00] COMMIT: Add parser (abcdef0)",
		},
		{
			name:    "commit without hash",
			partial: journal.Commit("Add parser", ""),
			want:    "[2025-03-04 09:30:00] COMMIT: Add parser",
		},
		{
			name:    "conversation",
			partial: journal.Conversation("Picked SQLite", []string{"db"}),
			want:    "[2025-03-04 09:30:00] CONVERSATION: Picked SQLite",
		},
		{
			name:    "note",
			partial: journal.Note("hello"),
			want:    "[2025-03-04 09:30:00] NOTE: hello",
		},
		{
			name:    "blocker",
			partial: journal.Blocker("flaky CI"),
			want:    "[2025-03-04 09:30:00] BLOCKER: flaky CI",
		},
		{
			name:    "unknown type falls back to message",
			partial: opaque,
			want:    "[2025-03-04 09:30:00] DEPLOY: to prod",
		},
		{
			name:    "commit with malformed hash drops the hash",
			partial: numericHash,
			want:    "[2025-03-04 09:30:00] COMMIT: Old import",
		},
		{
			name:    "note without content falls back to message",
			partial: messageNote,
			want:    "[2025-03-04 09:30:00] NOTE: legacy note",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatEntry(entry(t, ts, tt.partial), time.UTC)
			if got != tt.want {
				t.Errorf("FormatEntry() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	tmpl := &Template{
		Content: "Project: {{project_title}}\nProblem: {{problem}}\nGoals: {{goals}}\nCount: {{entry_count}}\n\n{{timeline}}",
	}
	ts := time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)
	ctx := &RenderContext{
		Metadata: &journal.Metadata{ProjectName: "Demo", Goals: "ship"},
		Entries: []journal.Entry{
			entry(t, ts, journal.Note("first")),
			entry(t, ts.Add(time.Hour), journal.Win("second")),
		},
		Location: time.UTC,
	}

	got := Render(tmpl, ctx)

	for _, want := range []string{
		"Project: Demo",
		"Problem: Not specified",
		"Goals: ship",
		"Count: 2",
		"NOTE: first\n[2025-03-04 10:30:00] WIN: second",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() missing %q, got:\n%s", want, got)
		}
	}
}

func TestRender_PlaceholdersInEntriesKeptLiteral(t *testing.T) {
	tmpl := &Template{Content: "{{problem}} | {{goals}} | {{timeline}}"}
	ts := time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)
	ctx := &RenderContext{
		Metadata: &journal.Metadata{Problem: "REAL PROBLEM", Goals: "G"},
		Entries:  []journal.Entry{entry(t, ts, journal.Note("literal {{problem}} and {{goals}}"))},
		Location: time.UTC,
	}
	want := "REAL PROBLEM | G | [2025-03-04 09:30:00] NOTE: literal {{problem}} and {{goals}}"

	// Map iteration order varies between calls; every render must agree.
	for range 50 {
		if got := Render(tmpl, ctx); got != want {
			t.Fatalf("Render() = %q, want %q", got, want)
		}
	}
}

func TestRender_NilMetadata(t *testing.T) {
	tmpl := &Template{Content: "{{project_title}} / {{project_name}} / {{success_criteria}}"}
	got := Render(tmpl, &RenderContext{})
	want := "Development Session / Untitled Project / Not specified"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestBuildDateRange(t *testing.T) {
	day1 := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 1, 12, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		entries []journal.Entry
		want    string
	}{
		{name: "empty", want: "no entries"},
		{
			name:    "single day",
			entries: []journal.Entry{{Timestamp: day1}, {Timestamp: day1.Add(time.Hour)}},
			want:    "2025-01-10",
		},
		{
			name:    "span ignores order",
			entries: []journal.Entry{{Timestamp: day2}, {Timestamp: day1}},
			want:    "2025-01-10 to 2025-01-12",
		},
		{
			name:    "zero timestamps",
			entries: []journal.Entry{{}},
			want:    "unknown date range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildDateRange(tt.entries, time.UTC); got != tt.want {
				t.Errorf("buildDateRange() = %q, want %q", got, tt.want)
			}
		})
	}
}
