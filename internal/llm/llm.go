// Package llm sends draft and summary prompts to a completion API.
//
// Three providers are supported: Anthropic's Messages API (the default),
// OpenAI, and any local server speaking the OpenAI chat format such as LM
// Studio or Ollama. OpenAI and local share one wire format.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorewood/bloglog/internal/output"
)

// Provider identifies a completion backend.
type Provider string

// Supported providers.
const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderLocal     Provider = "local"
)

// DefaultTimeout bounds a single completion call.
const DefaultTimeout = 5 * time.Minute

// DefaultLocalURL is where LM Studio listens out of the box.
const DefaultLocalURL = "http://localhost:1234/v1"

// ErrMissingAPIKey is the cause of the error New returns when the provider's
// credential is not configured.
var ErrMissingAPIKey = errors.New("API key not configured")

// Request is one prompt and its output budget. A zero MaxTokens leaves the
// budget to the provider, except on Anthropic which always needs one.
type Request struct {
	Prompt    string
	MaxTokens int
}

// Response is the completion text and the model that produced it.
type Response struct {
	Content string
	Model   string
}

// HTTPDoer is the part of *http.Client that Client uses.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// wireFormat encodes requests and decodes replies for one API shape.
type wireFormat interface {
	endpoint() string
	encode(model string, req Request) any
	decode(body []byte) (string, error)
}

// providerConfig is everything that differs between providers.
type providerConfig struct {
	keyVar  string // empty when no credential is needed
	baseURL func() string
	format  wireFormat
	headers func(apiKey string) map[string]string
	aliases map[string]string
}

var providers = map[Provider]providerConfig{
	ProviderAnthropic: {
		keyVar:  "ANTHROPIC_API_KEY",
		baseURL: func() string { return "https://api.anthropic.com/v1" },
		format:  messagesFormat{},
		headers: func(key string) map[string]string {
			return map[string]string{"x-api-key": key, "anthropic-version": "2023-06-01"}
		},
		aliases: map[string]string{
			"haiku":  "claude-haiku-4-5-20251001",
			"sonnet": "claude-sonnet-4-20250514",
			"opus":   "claude-opus-4-6",
		},
	},
	ProviderOpenAI: {
		keyVar:  "OPENAI_API_KEY",
		baseURL: func() string { return "https://api.openai.com/v1" },
		format:  chatFormat{},
		headers: func(key string) map[string]string {
			return map[string]string{"Authorization": "Bearer " + key}
		},
		aliases: map[string]string{
			"mini": "gpt-5-mini",
			"nano": "gpt-5-nano",
		},
	},
	ProviderLocal: {
		baseURL: LocalServerURL,
		format:  chatFormat{omitModel: true},
		headers: func(string) map[string]string { return nil },
	},
}

// Client sends prompts to one provider and model.
type Client struct {
	provider   Provider
	cfg        providerConfig
	model      string
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithHTTPClient replaces the HTTP transport.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) { c.httpClient = doer }
}

// WithBaseURL overrides the provider's API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// New returns a client for model. An empty provider is chosen from the
// model name (see Resolve). A missing credential is a user error wrapping
// ErrMissingAPIKey.
func New(model string, provider Provider, opts ...Option) (*Client, error) {
	if provider == "" {
		provider, model = Resolve(model)
	}
	cfg, ok := providers[provider]
	if !ok {
		return nil, output.NewUserError(fmt.Sprintf("unsupported provider: %s", provider))
	}
	if alias, ok := cfg.aliases[strings.ToLower(model)]; ok {
		model = alias
	}

	c := &Client{
		provider:   provider,
		cfg:        cfg,
		model:      model,
		baseURL:    cfg.baseURL(),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	if cfg.keyVar != "" {
		c.apiKey = os.Getenv(cfg.keyVar)
		if c.apiKey == "" {
			return nil, output.NewUserErrorWithCause(cfg.keyVar+" not configured", ErrMissingAPIKey)
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Resolve picks the provider for a model name and strips any provider
// prefix from it:
//
//	local, local-<name>            local server
//	openai-<name>, gpt-*, o1/o3/o4 OpenAI
//	anything else                  Anthropic (haiku, sonnet, opus, claude-*)
func Resolve(model string) (Provider, string) {
	lower := strings.ToLower(model)
	switch {
	case lower == "local":
		return ProviderLocal, ""
	case strings.HasPrefix(lower, "local-"):
		return ProviderLocal, model[len("local-"):]
	case strings.HasPrefix(lower, "openai-"):
		return ProviderOpenAI, model[len("openai-"):]
	case strings.HasPrefix(lower, "gpt"), isOpenAIReasoning(lower):
		return ProviderOpenAI, model
	case strings.HasPrefix(lower, "claude-") && providers[ProviderAnthropic].aliases[lower[len("claude-"):]] != "":
		return ProviderAnthropic, model[len("claude-"):]
	default:
		return ProviderAnthropic, model
	}
}

func isOpenAIReasoning(model string) bool {
	for _, prefix := range []string{"o1", "o3", "o4"} {
		if model == prefix || strings.HasPrefix(model, prefix+"-") {
			return true
		}
	}
	return false
}

// Model returns the resolved model name; empty for a local server's
// loaded model.
func (c *Client) Model() string { return c.model }

// Provider returns the client's provider.
func (c *Client) Provider() Provider { return c.provider }

// Complete sends req and returns the reply text.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	body, err := c.post(ctx, c.baseURL+c.cfg.format.endpoint(), c.cfg.format.encode(c.model, req))
	if err != nil {
		return nil, err
	}
	content, err := c.cfg.format.decode(body)
	if err != nil {
		return nil, err
	}

	model := c.model
	if model == "" {
		model = string(ProviderLocal)
	}
	return &Response{Content: content, Model: model}, nil
}

// LocalServerURL returns LOCAL_LLM_URL, or DefaultLocalURL when unset.
func LocalServerURL() string {
	if url := os.Getenv("LOCAL_LLM_URL"); url != "" {
		return strings.TrimRight(url, "/")
	}
	return DefaultLocalURL
}

// maxErrorBody caps how much of a failed reply ends up in the error.
const maxErrorBody = 500

// post sends payload as JSON and returns the body of a 200 reply.
func (c *Client) post(ctx context.Context, url string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, output.NewSystemErrorWithCause("encoding request", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, output.NewSystemErrorWithCause("building request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for key, value := range c.cfg.headers(c.apiKey) {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, output.NewSystemErrorWithCause(fmt.Sprintf("%s request failed", c.provider), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, output.NewSystemErrorWithCause("reading response", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := string(body)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, output.NewSystemError(fmt.Sprintf("%s API error (status %d): %s", c.provider, resp.StatusCode, msg))
	}
	return body, nil
}
