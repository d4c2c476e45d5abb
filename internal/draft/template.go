package draft

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template sources.
const (
	SourceProject = "project"
	SourceGlobal  = "global"
	SourceBuiltin = "built-in"
)

// Template is a prompt with frontmatter metadata.
type Template struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Version     int    `yaml:"version,omitempty"`
	MaxTokens   int    `yaml:"max_tokens,omitempty"`

	Content string `yaml:"-"`
	Source  string `yaml:"-"`
}

// TemplateInfo describes an available template.
type TemplateInfo struct {
	Name        string
	Description string
	Source      string
	Overrides   string // source of the template this one shadows, if any
}

// Loader resolves templates from a project directory, then a global
// directory, then the built-ins. Either directory may be empty.
type Loader struct {
	ProjectDir string
	GlobalDir  string
}

// Load finds a template by name.
func (l Loader) Load(name string) (*Template, error) {
	if tmpl, err := loadFromPath(l.ProjectDir, name); err == nil {
		tmpl.Source = SourceProject
		return tmpl, nil
	}
	if tmpl, err := loadFromPath(l.GlobalDir, name); err == nil {
		tmpl.Source = SourceGlobal
		return tmpl, nil
	}
	if tmpl, err := loadBuiltin(name); err == nil {
		tmpl.Source = SourceBuiltin
		return tmpl, nil
	}
	return nil, fmt.Errorf("template %q not found", name)
}

// List returns every available template once, nearest source first. Local
// templates that shadow a built-in have Overrides set.
func (l Loader) List() []TemplateInfo {
	seen := make(map[string]bool)
	var templates []TemplateInfo

	for _, src := range []struct{ name, dir string }{
		{SourceProject, l.ProjectDir},
		{SourceGlobal, l.GlobalDir},
	} {
		infos, err := listFromPath(src.dir, src.name)
		if err != nil {
			continue
		}
		for _, info := range infos {
			if !seen[info.Name] {
				seen[info.Name] = true
				templates = append(templates, info)
			}
		}
	}

	for _, info := range listBuiltins() {
		if seen[info.Name] {
			for i := range templates {
				if templates[i].Name == info.Name {
					templates[i].Overrides = SourceBuiltin
				}
			}
			continue
		}
		templates = append(templates, info)
	}
	return templates
}

func loadFromPath(dir, name string) (*Template, error) {
	if dir == "" {
		return nil, errors.New("no directory")
	}
	path := filepath.Join(dir, name+".md")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", path, err)
	}
	return parseTemplate(string(data))
}

func listFromPath(dir, source string) ([]TemplateInfo, error) {
	if dir == "" {
		return nil, errors.New("no directory")
	}
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var templates []TemplateInfo
	for _, entry := range dirEntries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".md")
		tmpl, err := loadFromPath(dir, name)
		if err != nil {
			continue
		}
		templates = append(templates, TemplateInfo{
			Name:        name,
			Description: tmpl.Description,
			Source:      source,
		})
	}
	return templates, nil
}

// parseTemplate parses raw content with optional YAML frontmatter.
func parseTemplate(raw string) (*Template, error) {
	frontmatter, content := splitFrontmatter(raw)

	var tmpl Template
	if frontmatter != "" {
		if err := yaml.Unmarshal([]byte(frontmatter), &tmpl); err != nil {
			return nil, fmt.Errorf("invalid frontmatter: %w", err)
		}
	}
	tmpl.Content = strings.TrimSpace(content)
	return &tmpl, nil
}

// splitFrontmatter separates a leading ----delimited YAML block from content.
func splitFrontmatter(raw string) (frontmatter, content string) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "---") {
		return "", raw
	}

	rest := raw[3:]
	before, after, ok := strings.Cut(rest, "\n---")
	if !ok {
		return "", raw
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}
