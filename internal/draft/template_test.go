package draft

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name            string
		input           string
		wantFrontmatter string
		wantContent     string
	}{
		{
			name:            "no frontmatter",
			input:           "Just some content",
			wantFrontmatter: "",
			wantContent:     "Just some content",
		},
		{
			name: "with frontmatter",
			input: `---
name: test
description: A test template
---
Template content here`,
			wantFrontmatter: "name: test\ndescription: A test template",
			wantContent:     "Template content here",
		},
		{
			name: "frontmatter only opening",
			input: `---
name: test
No closing delimiter`,
			wantFrontmatter: "",
			wantContent:     "---\nname: test\nNo closing delimiter",
		},
		{
			name: "empty frontmatter",
			input: `---
---
Content after empty frontmatter`,
			wantFrontmatter: "",
			wantContent:     "Content after empty frontmatter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotFrontmatter, gotContent := splitFrontmatter(tt.input)
			if gotFrontmatter != tt.wantFrontmatter {
				t.Errorf("splitFrontmatter() frontmatter = %q, want %q", gotFrontmatter, tt.wantFrontmatter)
			}
			if gotContent != tt.wantContent {
				t.Errorf("splitFrontmatter() content = %q, want %q", gotContent, tt.wantContent)
			}
		})
	}
}

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantName    string
		wantDesc    string
		wantContent string
		wantErr     bool
	}{
		{
			name: "valid template",
			input: `---
name: changelog
description: Generate a changelog
version: 1
---
Create a changelog from {{timeline}}`,
			wantName:    "changelog",
			wantDesc:    "Generate a changelog",
			wantContent: "Create a changelog from {{timeline}}",
			wantErr:     false,
		},
		{
			name:        "no frontmatter",
			input:       "Just content, no metadata",
			wantName:    "",
			wantDesc:    "",
			wantContent: "Just content, no metadata",
			wantErr:     false,
		},
		{
			name: "invalid yaml",
			input: `---
name: [invalid yaml
---
Content`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := parseTemplate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseTemplate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if tmpl.Name != tt.wantName {
				t.Errorf("parseTemplate() Name = %q, want %q", tmpl.Name, tt.wantName)
			}
			if tmpl.Description != tt.wantDesc {
				t.Errorf("parseTemplate() Description = %q, want %q", tmpl.Description, tt.wantDesc)
			}
			if tmpl.Content != tt.wantContent {
				t.Errorf("parseTemplate() Content = %q, want %q", tmpl.Content, tt.wantContent)
			}
		})
	}
}

func TestLoadBuiltinTemplate(t *testing.T) {
	for _, name := range []string{"timeline", "narrative", "summarize"} {
		tmpl, err := loadBuiltin(name)
		if err != nil {
			t.Fatalf("loadBuiltin(%s) error = %v", name, err)
		}
		if tmpl.Name != name {
			t.Errorf("loadBuiltin(%s) Name = %q", name, tmpl.Name)
		}
		if tmpl.Description == "" || tmpl.Content == "" {
			t.Errorf("loadBuiltin(%s) has empty description or content", name)
		}
		if tmpl.MaxTokens == 0 {
			t.Errorf("loadBuiltin(%s) MaxTokens not set", name)
		}
	}

	if _, err := loadBuiltin("nonexistent-template"); err == nil {
		t.Error("loadBuiltin(nonexistent) expected error, got nil")
	}
}

func TestLoaderResolution(t *testing.T) {
	projectDir := filepath.Join(t.TempDir(), "templates")
	globalDir := filepath.Join(t.TempDir(), "templates")
	loader := Loader{ProjectDir: projectDir, GlobalDir: globalDir}

	tmpl, err := loader.Load("narrative")
	if err != nil {
		t.Fatalf("Load(narrative) error = %v", err)
	}
	if tmpl.Source != SourceBuiltin {
		t.Errorf("Source = %q, want %q", tmpl.Source, SourceBuiltin)
	}

	writeTemplate(t, globalDir, "narrative", "Global narrative")
	tmpl, err = loader.Load("narrative")
	if err != nil {
		t.Fatal(err)
	}
	if tmpl.Source != SourceGlobal {
		t.Errorf("Source = %q, want %q", tmpl.Source, SourceGlobal)
	}

	writeTemplate(t, projectDir, "narrative", "Project narrative")
	tmpl, err = loader.Load("narrative")
	if err != nil {
		t.Fatal(err)
	}
	if tmpl.Source != SourceProject || tmpl.Description != "Project narrative" {
		t.Errorf("Load() = %s/%q, want project override", tmpl.Source, tmpl.Description)
	}

	if _, err := loader.Load("nonexistent"); err == nil {
		t.Error("Load(nonexistent) expected error, got nil")
	}
}

func TestLoaderList(t *testing.T) {
	projectDir := filepath.Join(t.TempDir(), "templates")
	writeTemplate(t, projectDir, "timeline", "Mine")
	writeTemplate(t, projectDir, "standup", "Standup notes")

	templates := Loader{ProjectDir: projectDir}.List()

	byName := map[string]TemplateInfo{}
	for _, info := range templates {
		if _, dup := byName[info.Name]; dup {
			t.Errorf("List() returned %q twice", info.Name)
		}
		byName[info.Name] = info
	}
	if got := byName["timeline"]; got.Source != SourceProject || got.Overrides != SourceBuiltin {
		t.Errorf("timeline = %+v, want project overriding built-in", got)
	}
	if got := byName["standup"]; got.Source != SourceProject || got.Overrides != "" {
		t.Errorf("standup = %+v", got)
	}
	if got := byName["summarize"]; got.Source != SourceBuiltin {
		t.Errorf("summarize = %+v", got)
	}
}

func TestListBuiltins(t *testing.T) {
	found := make(map[string]bool)
	for _, tmpl := range listBuiltins() {
		found[tmpl.Name] = true
		if tmpl.Source != SourceBuiltin {
			t.Errorf("template %q Source = %q, want %q", tmpl.Name, tmpl.Source, SourceBuiltin)
		}
	}
	for _, name := range []string{"timeline", "narrative", "summarize"} {
		if !found[name] {
			t.Errorf("listBuiltins() missing %q", name)
		}
	}
}

func writeTemplate(t *testing.T, dir, name, description string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "---\nname: " + name + "\ndescription: " + description + "\n---\nBody for " + name
	if err := os.WriteFile(filepath.Join(dir, name+".md"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}
