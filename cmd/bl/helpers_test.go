package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/gorewood/bloglog/internal/journal"
)

// isolateEnv points the config directory at a temp dir and clears the
// variables that would reach a real LLM or server.
func isolateEnv(t *testing.T) string {
	t.Helper()
	configDir := t.TempDir()
	t.Setenv("BLOGLOG_CONFIG_HOME", configDir)
	for _, key := range []string{
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "LOCAL_LLM_URL",
		"BLOGLOG_HOST", "BLOGLOG_PORT", "BLOGLOG_MODEL", "BLOGLOG_TIMEOUT", "BLOGLOG_LOG_LEVEL",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
	return configDir
}

type result struct {
	stdout string
	stderr string
	err    error
}

// execute runs bl with args in dir, feeding stdin.
func execute(t *testing.T, dir, stdin string, args ...string) result {
	t.Helper()
	var res result
	runInDir(t, dir, func() {
		var stdout, stderr bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&stdout)
		cmd.SetErr(&stderr)
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetArgs(args)
		res.err = cmd.ExecuteContext(context.Background())
		res.stdout = stdout.String()
		res.stderr = stderr.String()
	})
	return res
}

func decodeJSON(t *testing.T, s string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		t.Fatalf("parsing JSON output: %v\nOutput: %s", err, s)
	}
	return out
}

// newProject initializes a project named name in a fresh temp dir.
func newProject(t *testing.T, name string) string {
	t.Helper()
	dir := t.TempDir()
	if _, err := journal.Init(dir, journal.Metadata{ProjectName: name}); err != nil {
		t.Fatalf("init: %v", err)
	}
	return dir
}

func readEntries(t *testing.T, root string) []journal.Entry {
	t.Helper()
	entries, err := journal.New(root).ReadTimeline()
	if err != nil {
		t.Fatalf("reading timeline: %v", err)
	}
	return entries
}

func runInDir(t *testing.T, dir string, testFunc func()) {
	t.Helper()
	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working dir: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir to %s: %v", dir, err)
	}
	defer func() {
		if err := os.Chdir(oldDir); err != nil {
			t.Errorf("failed to restore dir: %v", err)
		}
	}()
	testFunc()
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.CommandContext(context.Background(), "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\nOutput: %s", args, err, out)
	}
}

func runGitOutput(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.CommandContext(context.Background(), "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("git %v failed: %v", args, err)
	}
	return strings.TrimSpace(string(out))
}

func initGitRepo(t *testing.T, dir string) {
	t.Helper()
	requireGit(t)
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@test.com")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "commit.gpgsign", "false")
}
