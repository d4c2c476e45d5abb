package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/bloglog/internal/journal"
)

// EntryView is a flattened timeline entry for tool output.
type EntryView struct {
	ID        string   `json:"id"                 jsonschema:"entry ID"`
	Timestamp string   `json:"timestamp"          jsonschema:"RFC 3339 UTC timestamp"`
	Type      string   `json:"type"               jsonschema:"entry type (commit, note, win, blocker, conversation, ...)"`
	Text      string   `json:"text"               jsonschema:"message, content or summary"`
	GitHash   string   `json:"git_hash,omitempty" jsonschema:"commit hash, for commit entries"`
	Tags      []string `json:"tags,omitempty"     jsonschema:"conversation tags"`
}

func toEntryView(e journal.Entry) EntryView {
	view := EntryView{
		ID:        e.ID,
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
		Type:      e.Type,
		Text:      e.Text(),
	}
	payload, err := e.Payload()
	if err != nil {
		return view
	}
	switch p := payload.(type) {
	case *journal.CommitPayload:
		if p.GitHash != nil {
			view.GitHash = *p.GitHash
		}
	case *journal.ConversationPayload:
		view.Tags = p.Tags
	}
	return view
}

// EntryOutput is the output of the capture tools.
type EntryOutput struct {
	Entry EntryView `json:"entry" jsonschema:"the recorded entry"`
}

// --- note, win, blocker ---

// TextInput is the input for note, win and blocker.
type TextInput struct {
	Content string `json:"content" jsonschema:"entry text (required)"`
}

func handleText(store *journal.Store, build func(string) journal.Partial) mcp.ToolHandlerFor[TextInput, EntryOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input TextInput) (*mcp.CallToolResult, EntryOutput, error) {
		content := strings.TrimSpace(input.Content)
		if content == "" {
			return nil, EntryOutput{}, errors.New("content is required")
		}
		return appendEntry(store, build(content))
	}
}

// --- capture ---

// CaptureInput is the input for the capture tool.
type CaptureInput struct {
	Summary string   `json:"summary"        jsonschema:"conversation summary (required)"`
	Tags    []string `json:"tags,omitempty" jsonschema:"tags for categorization"`
}

func handleCapture(store *journal.Store) mcp.ToolHandlerFor[CaptureInput, EntryOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input CaptureInput) (*mcp.CallToolResult, EntryOutput, error) {
		summary := strings.TrimSpace(input.Summary)
		if summary == "" {
			return nil, EntryOutput{}, errors.New("summary is required")
		}
		return appendEntry(store, journal.Conversation(summary, input.Tags))
	}
}

func appendEntry(store *journal.Store, p journal.Partial) (*mcp.CallToolResult, EntryOutput, error) {
	entry, err := store.Append(p)
	if errors.Is(err, journal.ErrNotInitialized) {
		return nil, EntryOutput{}, errors.New("no .bloglog directory found; run bl init first")
	}
	if err != nil {
		return nil, EntryOutput{}, fmt.Errorf("appending %s entry: %w", p.Type, err)
	}
	return nil, EntryOutput{Entry: toEntryView(entry)}, nil
}

// --- timeline ---

// TimelineInput is the input for the timeline tool.
type TimelineInput struct {
	Last  int      `json:"last,omitempty"  jsonschema:"keep only the last N entries"`
	Type  string   `json:"type,omitempty"  jsonschema:"only entries of this type"`
	Since string   `json:"since,omitempty" jsonschema:"only entries since a duration (24h, 7d) or date"`
	Tags  []string `json:"tags,omitempty"  jsonschema:"only entries with any of these tags"`
}

// TimelineOutput is the output for the timeline tool.
type TimelineOutput struct {
	Count   int         `json:"count"   jsonschema:"number of entries returned"`
	Entries []EntryView `json:"entries" jsonschema:"matching entries, oldest first"`
}

func handleTimeline(store *journal.Store) mcp.ToolHandlerFor[TimelineInput, TimelineOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input TimelineInput) (*mcp.CallToolResult, TimelineOutput, error) {
		if input.Last < 0 {
			return nil, TimelineOutput{}, errors.New("last must not be negative")
		}

		entries, err := store.ReadTimeline()
		if err != nil {
			return nil, TimelineOutput{}, fmt.Errorf("reading timeline: %w", err)
		}

		if input.Type != "" {
			entries = journal.FilterByType(entries, input.Type)
		}
		if input.Since != "" {
			cutoff, err := journal.ParseSince(input.Since, time.Now().UTC())
			if err != nil {
				return nil, TimelineOutput{}, err
			}
			entries = journal.FilterSince(entries, cutoff)
		}
		entries = journal.FilterByTags(entries, input.Tags)
		entries = journal.Last(journal.SortByTimestamp(entries), input.Last)

		views := make([]EntryView, 0, len(entries))
		for _, e := range entries {
			views = append(views, toEntryView(e))
		}
		return nil, TimelineOutput{Count: len(views), Entries: views}, nil
	}
}

// --- metadata ---

// MetadataInput is the input for the metadata tool (no parameters needed).
type MetadataInput struct{}

// MetadataOutput is the output for the metadata tool.
type MetadataOutput struct {
	Root            string `json:"root"                       jsonschema:"project root directory"`
	Initialized     bool   `json:"initialized"                jsonschema:"whether the project has a metadata document"`
	ProjectName     string `json:"project_name"               jsonschema:"project name"`
	Problem         string `json:"problem,omitempty"          jsonschema:"problem being solved"`
	Goals           string `json:"goals,omitempty"            jsonschema:"project goals"`
	SuccessCriteria string `json:"success_criteria,omitempty" jsonschema:"what success looks like"`
	EntryCount      int    `json:"entry_count"                jsonschema:"number of timeline entries"`
}

func handleMetadata(store *journal.Store) mcp.ToolHandlerFor[MetadataInput, MetadataOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ MetadataInput) (*mcp.CallToolResult, MetadataOutput, error) {
		meta, err := store.ReadMetadata()
		if err != nil {
			return nil, MetadataOutput{}, fmt.Errorf("reading metadata: %w", err)
		}
		entries, err := store.ReadTimeline()
		if err != nil {
			return nil, MetadataOutput{}, fmt.Errorf("reading timeline: %w", err)
		}

		out := MetadataOutput{
			Root:        store.Root(),
			Initialized: meta != nil,
			ProjectName: meta.NameOrDefault(),
			EntryCount:  len(entries),
		}
		if meta != nil {
			out.Problem = meta.Problem
			out.Goals = meta.Goals
			out.SuccessCriteria = meta.SuccessCriteria
		}
		return nil, out, nil
	}
}
