package llm

import (
	"encoding/json"
	"strings"

	"github.com/gorewood/bloglog/internal/output"
)

// messagesMaxTokens is used when a request carries no budget; the Messages
// API rejects requests without one.
const messagesMaxTokens = 4096

// messagesFormat is Anthropic's Messages API.
type messagesFormat struct{}

type messagesRequest struct {
	Model     string         `json:"model"`
	MaxTokens int            `json:"max_tokens"`
	Messages  []messageParam `json:"messages"`
}

type messageParam struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (messagesFormat) endpoint() string { return "/messages" }

func (messagesFormat) encode(model string, req Request) any {
	budget := req.MaxTokens
	if budget <= 0 {
		budget = messagesMaxTokens
	}
	return messagesRequest{
		Model:     model,
		MaxTokens: budget,
		Messages:  []messageParam{{Role: "user", Content: req.Prompt}},
	}
}

// decode joins the text blocks of the reply.
func (messagesFormat) decode(body []byte) (string, error) {
	var resp messagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", output.NewSystemErrorWithCause("parsing anthropic response", err)
	}
	if resp.Error != nil {
		return "", output.NewSystemError("anthropic API error: " + resp.Error.Message)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", output.NewSystemError("anthropic response contained no text")
	}
	return text.String(), nil
}
