package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gorewood/bloglog/internal/draft"
	"github.com/gorewood/bloglog/internal/journal"
	"github.com/gorewood/bloglog/internal/llm"
	"github.com/gorewood/bloglog/internal/output"
)

const styleBoth = "both"

type generateFlags struct {
	style string
	model string
	list  bool
}

func newGenerateCmd() *cobra.Command {
	flags := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate blog post from timeline",
		Long: `Generate a draft from the whole timeline and save it under .bloglog/drafts/.

Styles:
  timeline   Chronological write-up    -> drafts/timeline-YYYY-MM-DD.md
  narrative  Story-shaped blog post    -> drafts/blog-YYYY-MM-DD.md
  both       One of each

Without --style you are asked to choose. The model defaults to BLOGLOG_MODEL
(sonnet). Prompts can be overridden by dropping timeline.md or narrative.md
into .bloglog/templates/ or ~/.config/bloglog/templates/.

Environment variables:
  ANTHROPIC_API_KEY  Required for Anthropic models (default)
  OPENAI_API_KEY     Required for OpenAI models
  LOCAL_LLM_URL      Local OpenAI-compatible server (default: http://localhost:1234/v1)`,
		Example: `  bl generate
  bl generate --style narrative
  bl generate --style both --model opus
  bl generate --list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.style, "style", "s", "", "timeline, narrative or both")
	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "Model name (default: $BLOGLOG_MODEL)")
	cmd.Flags().BoolVar(&flags.list, "list", false, "List prompt templates and where they come from")
	return cmd
}

func runGenerate(cmd *cobra.Command, flags *generateFlags) error {
	printer := newPrinter(cmd)

	if flags.style != "" && flags.style != styleBoth && !draft.ValidStyle(flags.style) {
		err := output.NewUserError(fmt.Sprintf("unknown style %q: use timeline, narrative or both", flags.style))
		printer.Error(err)
		return err
	}
	if flags.style == "" && printer.IsJSON() && !flags.list {
		err := output.NewUserError("--style is required with --json")
		printer.Error(err)
		return err
	}

	store, err := openProject()
	if err != nil {
		printer.Error(err)
		return err
	}
	if flags.list {
		return listTemplates(printer, templateLoader(store))
	}
	settings, err := loadSettings()
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
	if len(entries) == 0 {
		if printer.IsJSON() {
			return printer.WriteJSON(map[string]any{"drafts": []any{}, "message": "no timeline entries"})
		}
		printer.Println("No timeline entries found. Add some entries first!")
		return nil
	}

	styles := stylesFor(flags.style)
	if styles == nil {
		styles = chooseStyles(cmd.InOrStdin(), printer, len(entries))
		if styles == nil {
			printer.Println("Invalid option. Please run again and choose 1, 2, or 3.")
			return nil
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	gen := newGenerator(store, settings, flags.model)
	drafts := []*draft.Draft{}
	for _, style := range styles {
		if !printer.IsJSON() {
			printer.Println()
			printer.Println(generatingLabel(style))
		}
		d, err := generateOne(ctx, gen, style, settings.Timeout)
		if err != nil {
			// Generation failures are reported but do not fail the command.
			reportGenerateError(printer, drafts, err)
			return nil
		}
		drafts = append(drafts, d)
		if !printer.IsJSON() {
			printer.Println(savedLabel(style) + d.Path)
		}
	}

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{"drafts": drafts})
	}
	return nil
}

// generateOne runs a single generation under its own timeout.
func generateOne(ctx context.Context, gen *draft.Generator, style string, timeout time.Duration) (*draft.Draft, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return gen.Generate(ctx, style)
}

// stylesFor maps --style to the styles to generate; nil when unset.
func stylesFor(style string) []string {
	switch style {
	case "":
		return nil
	case styleBoth:
		return draft.Styles()
	default:
		return []string{style}
	}
}

// chooseStyles shows the menu and reads a choice. Returns nil for anything
// other than 1, 2 or 3.
func chooseStyles(in io.Reader, printer *output.Printer, count int) []string {
	printer.Println()
	printer.Print("Found %d timeline entries.\n", count)
	printer.Println()
	printer.Println("Generate:")
	printer.Println("  1. Timeline (chronological)")
	printer.Println("  2. Narrative blog post (AI-structured)")
	printer.Println("  3. Both")
	printer.Println()
	printer.Print("Choose option (1-3): ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil
	}
	switch strings.TrimSpace(line) {
	case "1":
		return []string{journal.StyleTimeline}
	case "2":
		return []string{journal.StyleNarrative}
	case "3":
		return draft.Styles()
	default:
		return nil
	}
}

func generatingLabel(style string) string {
	if style == journal.StyleNarrative {
		return "Generating narrative blog post..."
	}
	return "Generating timeline..."
}

func savedLabel(style string) string {
	if style == journal.StyleNarrative {
		return "Blog post saved to: "
	}
	return "Timeline saved to: "
}

// reportGenerateError prints err along with the drafts written before it.
func reportGenerateError(printer *output.Printer, written []*draft.Draft, err error) {
	if printer.IsJSON() {
		_ = printer.WriteJSON(map[string]any{"error": err.Error(), "drafts": written})
		return
	}
	printer.Error(output.NewSystemErrorWithCause("Error generating content: "+err.Error(), err))
	if errors.Is(err, llm.ErrMissingAPIKey) {
		printer.Println()
		printer.Println("Make sure you have set ANTHROPIC_API_KEY environment variable.")
	}
}

func listTemplates(printer *output.Printer, loader draft.Loader) error {
	templates := loader.List()
	if printer.IsJSON() {
		items := make([]map[string]any, 0, len(templates))
		for _, t := range templates {
			item := map[string]any{"name": t.Name, "description": t.Description, "source": t.Source}
			if t.Overrides != "" {
				item["overrides"] = t.Overrides
			}
			items = append(items, item)
		}
		return printer.WriteJSON(map[string]any{"templates": items})
	}

	rows := make([][]string, 0, len(templates))
	for _, t := range templates {
		source := t.Source
		if t.Overrides != "" {
			source += " (overrides " + t.Overrides + ")"
		}
		rows = append(rows, []string{t.Name, source, t.Description})
	}
	printer.Table([]string{"NAME", "SOURCE", "DESCRIPTION"}, rows)
	return nil
}
