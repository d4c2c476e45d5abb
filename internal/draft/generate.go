package draft

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gorewood/bloglog/internal/journal"
	"github.com/gorewood/bloglog/internal/llm"
)

// Output budgets for the two kinds of call.
const (
	DraftMaxTokens   = 4096
	SummaryMaxTokens = 1024
)

// ErrNoEntries is returned by Generate when the timeline is empty.
// No LLM call is made and no draft is written.
var ErrNoEntries = errors.New("no timeline entries found")

// ErrUnknownStyle is returned for a style other than timeline or narrative.
var ErrUnknownStyle = errors.New("unknown draft style")

// Completer is the LLM call Generator makes.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// Project is the storage Generator reads from and writes drafts to.
type Project interface {
	ReadMetadata() (*journal.Metadata, error)
	ReadTimeline() ([]journal.Entry, error)
	WriteDraft(name, content string) (string, error)
}

// Draft is a generated document.
type Draft struct {
	Style    string `json:"style"`
	Filename string `json:"filename"`
	Path     string `json:"filepath"`
	Content  string `json:"content"`
	Model    string `json:"model,omitempty"`
}

// Generator produces drafts and conversation summaries.
type Generator struct {
	Project   Project
	Templates Loader
	// Connect returns the LLM client. It is called only once there is
	// something to send, so an empty timeline never needs credentials.
	Connect func() (Completer, error)
	Now     func() time.Time
}

// Styles lists the accepted draft styles.
func Styles() []string {
	return []string{journal.StyleTimeline, journal.StyleNarrative}
}

// ValidStyle reports whether style is a draft style.
func ValidStyle(style string) bool {
	return style == journal.StyleTimeline || style == journal.StyleNarrative
}

// Generate renders the style's prompt over the whole timeline, sends it, and
// stores the reply verbatim as today's draft. The timeline and metadata
// documents are only read.
func (g *Generator) Generate(ctx context.Context, style string) (*Draft, error) {
	if !ValidStyle(style) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, style)
	}

	entries, err := g.Project.ReadTimeline()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	meta, err := g.Project.ReadMetadata()
	if err != nil {
		return nil, err
	}

	tmpl, err := g.Templates.Load(style)
	if err != nil {
		return nil, err
	}
	prompt := Render(tmpl, &RenderContext{Metadata: meta, Entries: entries})

	resp, err := g.complete(ctx, prompt, budget(tmpl, DraftMaxTokens))
	if err != nil {
		return nil, err
	}

	name := journal.DraftName(style, g.now())
	path, err := g.Project.WriteDraft(name, resp.Content)
	if err != nil {
		return nil, err
	}
	return &Draft{
		Style:    style,
		Filename: name,
		Path:     path,
		Content:  resp.Content,
		Model:    resp.Model,
	}, nil
}

// Summarize condenses a pasted conversation into a few sentences.
func (g *Generator) Summarize(ctx context.Context, conversation string) (string, error) {
	if strings.TrimSpace(conversation) == "" {
		return "", errors.New("conversation is empty")
	}

	tmpl, err := g.Templates.Load("summarize")
	if err != nil {
		return "", err
	}
	prompt := Render(tmpl, &RenderContext{Conversation: conversation})

	resp, err := g.complete(ctx, prompt, budget(tmpl, SummaryMaxTokens))
	if err != nil {
		return "", err
	}
	return SanitizeLLMOutput(resp.Content), nil
}

func (g *Generator) complete(ctx context.Context, prompt string, maxTokens int) (*llm.Response, error) {
	if g.Connect == nil {
		return nil, errors.New("no LLM client configured")
	}
	client, err := g.Connect()
	if err != nil {
		return nil, err
	}
	return client.Complete(ctx, llm.Request{Prompt: prompt, MaxTokens: maxTokens})
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// budget caps a template's max_tokens at limit.
func budget(tmpl *Template, limit int) int {
	if tmpl.MaxTokens > 0 && tmpl.MaxTokens < limit {
		return tmpl.MaxTokens
	}
	return limit
}
