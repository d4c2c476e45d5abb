package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/gorewood/bloglog/internal/output"
)

// capturedCall is what a fake provider saw.
type capturedCall struct {
	Path    string
	Headers http.Header
	Body    map[string]any
}

// fakeProvider answers every POST with status and reply, recording the call.
func fakeProvider(t *testing.T, status int, reply string) (*httptest.Server, *capturedCall) {
	t.Helper()
	got := &capturedCall{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Path = r.URL.Path
		got.Headers = r.Header.Clone()
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &got.Body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func setKeys(t *testing.T) {
	t.Helper()
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("OPENAI_API_KEY", "sk-openai-test")
	t.Setenv("LOCAL_LLM_URL", "")
}

func TestResolve(t *testing.T) {
	tests := []struct {
		model        string
		wantProvider Provider
		wantModel    string
	}{
		{"sonnet", ProviderAnthropic, "sonnet"},
		{"claude-sonnet-4-20250514", ProviderAnthropic, "claude-sonnet-4-20250514"},
		{"claude-haiku", ProviderAnthropic, "haiku"},
		{"", ProviderAnthropic, ""},
		{"local", ProviderLocal, ""},
		{"LOCAL", ProviderLocal, ""},
		{"local-qwen2.5-7b", ProviderLocal, "qwen2.5-7b"},
		{"gpt-4o", ProviderOpenAI, "gpt-4o"},
		{"openai-mini", ProviderOpenAI, "mini"},
		{"o3-mini", ProviderOpenAI, "o3-mini"},
		{"o3", ProviderOpenAI, "o3"},
		{"opus", ProviderAnthropic, "opus"},
		{"o3x", ProviderAnthropic, "o3x"},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			provider, model := Resolve(tt.model)
			if provider != tt.wantProvider || model != tt.wantModel {
				t.Errorf("Resolve(%q) = (%s, %q), want (%s, %q)",
					tt.model, provider, model, tt.wantProvider, tt.wantModel)
			}
		})
	}
}

func TestNew_ExpandsAliases(t *testing.T) {
	setKeys(t)
	tests := []struct {
		model        string
		wantProvider Provider
		wantModel    string
	}{
		{"sonnet", ProviderAnthropic, "claude-sonnet-4-20250514"},
		{"Haiku", ProviderAnthropic, "claude-haiku-4-5-20251001"},
		{"claude-opus", ProviderAnthropic, "claude-opus-4-6"},
		{"openai-mini", ProviderOpenAI, "gpt-5-mini"},
		{"gpt-4o", ProviderOpenAI, "gpt-4o"},
		{"local", ProviderLocal, ""},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			client, err := New(tt.model, "")
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if client.Provider() != tt.wantProvider || client.Model() != tt.wantModel {
				t.Errorf("New(%q) = (%s, %q), want (%s, %q)",
					tt.model, client.Provider(), client.Model(), tt.wantProvider, tt.wantModel)
			}
		})
	}
}

func TestNew_MissingAPIKey(t *testing.T) {
	tests := []struct {
		model   string
		wantMsg string
	}{
		{"sonnet", "ANTHROPIC_API_KEY not configured"},
		{"gpt-4o", "OPENAI_API_KEY not configured"},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			t.Setenv("ANTHROPIC_API_KEY", "")
			t.Setenv("OPENAI_API_KEY", "")

			_, err := New(tt.model, "")
			if !errors.Is(err, ErrMissingAPIKey) {
				t.Fatalf("error = %v, want ErrMissingAPIKey", err)
			}
			var exitErr *output.ExitError
			if !errors.As(err, &exitErr) {
				t.Fatalf("error %T is not an ExitError", err)
			}
			if exitErr.Code != output.ExitUserError || exitErr.Message != tt.wantMsg {
				t.Errorf("got (%d, %q), want (%d, %q)", exitErr.Code, exitErr.Message, output.ExitUserError, tt.wantMsg)
			}
		})
	}
}

func TestNew_LocalNeedsNoKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := New("local", ""); err != nil {
		t.Errorf("New(local) = %v, want nil", err)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New("sonnet", Provider("bedrock"))
	var exitErr *output.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != output.ExitUserError {
		t.Errorf("error = %v, want user error", err)
	}
}

func TestComplete_Providers(t *testing.T) {
	tests := []struct {
		name        string
		model       string
		reply       string
		request     Request
		wantPath    string
		wantHeaders map[string]string
		wantBody    map[string]any
		wantContent string
		wantModel   string
	}{
		{
			name:     "anthropic generate budget",
			model:    "sonnet",
			reply:    `{"content":[{"type":"text","text":"# Draft"},{"type":"text","text":" body"}]}`,
			request:  Request{Prompt: "write it", MaxTokens: 4096},
			wantPath: "/messages",
			wantHeaders: map[string]string{
				"X-Api-Key":         "sk-ant-test",
				"Anthropic-Version": "2023-06-01",
				"Content-Type":      "application/json",
			},
			wantBody: map[string]any{
				"model":      "claude-sonnet-4-20250514",
				"max_tokens": float64(4096),
				"messages":   []any{map[string]any{"role": "user", "content": "write it"}},
			},
			wantContent: "# Draft body",
			wantModel:   "claude-sonnet-4-20250514",
		},
		{
			name:     "anthropic default budget",
			model:    "haiku",
			reply:    `{"content":[{"type":"text","text":"ok"}]}`,
			request:  Request{Prompt: "p"},
			wantPath: "/messages",
			wantBody: map[string]any{
				"model":      "claude-haiku-4-5-20251001",
				"max_tokens": float64(4096),
				"messages":   []any{map[string]any{"role": "user", "content": "p"}},
			},
			wantContent: "ok",
			wantModel:   "claude-haiku-4-5-20251001",
		},
		{
			name:     "openai summary budget",
			model:    "gpt-4o",
			reply:    `{"choices":[{"message":{"role":"assistant","content":"summary"}}]}`,
			request:  Request{Prompt: "summarize", MaxTokens: 1024},
			wantPath: "/chat/completions",
			wantHeaders: map[string]string{
				"Authorization": "Bearer sk-openai-test",
			},
			wantBody: map[string]any{
				"model":      "gpt-4o",
				"max_tokens": float64(1024),
				"messages":   []any{map[string]any{"role": "user", "content": "summarize"}},
			},
			wantContent: "summary",
			wantModel:   "gpt-4o",
		},
		{
			name:     "local loaded model",
			model:    "local",
			reply:    `{"choices":[{"message":{"content":"from local"}}]}`,
			request:  Request{Prompt: "p", MaxTokens: 1024},
			wantPath: "/chat/completions",
			wantBody: map[string]any{
				"max_tokens": float64(1024),
				"messages":   []any{map[string]any{"role": "user", "content": "p"}},
			},
			wantContent: "from local",
			wantModel:   "local",
		},
		{
			name:     "local named model without budget",
			model:    "local-llama3",
			reply:    `{"choices":[{"message":{"content":"hi"}}]}`,
			request:  Request{Prompt: "p"},
			wantPath: "/chat/completions",
			wantBody: map[string]any{
				"model":    "llama3",
				"messages": []any{map[string]any{"role": "user", "content": "p"}},
			},
			wantContent: "hi",
			wantModel:   "llama3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setKeys(t)
			srv, got := fakeProvider(t, http.StatusOK, tt.reply)

			client, err := New(tt.model, "", WithBaseURL(srv.URL+"/"))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			resp, err := client.Complete(context.Background(), tt.request)
			if err != nil {
				t.Fatalf("Complete: %v", err)
			}

			if got.Path != tt.wantPath {
				t.Errorf("path = %q, want %q", got.Path, tt.wantPath)
			}
			for key, want := range tt.wantHeaders {
				if v := got.Headers.Get(key); v != want {
					t.Errorf("header %s = %q, want %q", key, v, want)
				}
			}
			if diff := cmp.Diff(tt.wantBody, got.Body); diff != "" {
				t.Errorf("request body mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(&Response{Content: tt.wantContent, Model: tt.wantModel}, resp); diff != "" {
				t.Errorf("response mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComplete_LocalServerURLFromEnv(t *testing.T) {
	srv, got := fakeProvider(t, http.StatusOK, `{"choices":[{"message":{"content":"x"}}]}`)
	t.Setenv("LOCAL_LLM_URL", srv.URL+"/v1/")

	client, err := New("local", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Complete(context.Background(), Request{Prompt: "p"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Path != "/v1/chat/completions" {
		t.Errorf("path = %q, want /v1/chat/completions", got.Path)
	}
}

func TestLocalServerURL_Default(t *testing.T) {
	t.Setenv("LOCAL_LLM_URL", "")
	if got := LocalServerURL(); got != DefaultLocalURL {
		t.Errorf("LocalServerURL() = %q, want %q", got, DefaultLocalURL)
	}
}

func TestComplete_Errors(t *testing.T) {
	long := `{"error":{"message":"` + strings.Repeat("x", 2000) + `"}}`
	tests := []struct {
		name    string
		model   string
		status  int
		reply   string
		wantMsg string
	}{
		{"anthropic status", "sonnet", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, "anthropic API error (status 429)"},
		{"openai status", "gpt-4o", http.StatusUnauthorized, `bad key`, "openai API error (status 401): bad key"},
		{"anthropic error body", "sonnet", http.StatusOK, `{"error":{"message":"overloaded"}}`, "anthropic API error: overloaded"},
		{"anthropic no text", "sonnet", http.StatusOK, `{"content":[{"type":"tool_use"}]}`, "anthropic response contained no text"},
		{"chat no choices", "local", http.StatusOK, `{"choices":[]}`, "chat response had no choices"},
		{"chat not json", "local", http.StatusOK, `<html>`, "parsing chat response"},
		{"truncated", "local", http.StatusInternalServerError, long, "local API error (status 500)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setKeys(t)
			srv, _ := fakeProvider(t, tt.status, tt.reply)
			client, err := New(tt.model, "", WithBaseURL(srv.URL))
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			_, err = client.Complete(context.Background(), Request{Prompt: "p"})
			var exitErr *output.ExitError
			if !errors.As(err, &exitErr) {
				t.Fatalf("error = %v, want ExitError", err)
			}
			if exitErr.Code != output.ExitSystemError {
				t.Errorf("code = %d, want %d", exitErr.Code, output.ExitSystemError)
			}
			if !strings.Contains(exitErr.Message, tt.wantMsg) {
				t.Errorf("message = %q, want it to contain %q", exitErr.Message, tt.wantMsg)
			}
			if len(exitErr.Message) > maxErrorBody+100 {
				t.Errorf("message length %d not truncated", len(exitErr.Message))
			}
		})
	}
}

func TestWithTimeout(t *testing.T) {
	setKeys(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)

	client, err := New("local", "", WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	start := time.Now()
	_, err = client.Complete(context.Background(), Request{Prompt: "p"})
	if err == nil {
		t.Fatal("Complete succeeded, want timeout")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Complete took %v, want it cut off near 50ms", elapsed)
	}
}

// doerFunc adapts a function to HTTPDoer.
type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

func TestWithHTTPClient(t *testing.T) {
	setKeys(t)
	var seen string
	doer := doerFunc(func(r *http.Request) (*http.Response, error) {
		seen = r.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"content":[{"type":"text","text":"hi"}]}`)),
		}, nil
	})

	client, err := New("sonnet", "", WithHTTPClient(doer))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp, err := client.Complete(context.Background(), Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if seen != "https://api.anthropic.com/v1/messages" {
		t.Errorf("url = %q", seen)
	}
	if resp.Content != "hi" {
		t.Errorf("content = %q, want hi", resp.Content)
	}
}

func TestWithHTTPClient_TransportError(t *testing.T) {
	setKeys(t)
	doer := doerFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	client, err := New("gpt-4o", "", WithHTTPClient(doer))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.Complete(context.Background(), Request{Prompt: "p"})
	var exitErr *output.ExitError
	if !errors.As(err, &exitErr) || exitErr.Cause == nil {
		t.Fatalf("error = %v, want ExitError with cause", err)
	}
	if exitErr.Message != "openai request failed" || exitErr.Cause.Error() != "connection refused" {
		t.Errorf("got (%q, %v), want (openai request failed, connection refused)", exitErr.Message, exitErr.Cause)
	}
}
