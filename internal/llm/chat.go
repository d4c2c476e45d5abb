package llm

import (
	"encoding/json"

	"github.com/gorewood/bloglog/internal/output"
)

// chatFormat is the OpenAI chat completions API, also spoken by local
// servers. With omitModel an empty model is left out so the server uses
// whatever it has loaded.
type chatFormat struct {
	omitModel bool
}

type chatRequest struct {
	Model     string        `json:"model,omitempty"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (chatFormat) endpoint() string { return "/chat/completions" }

func (f chatFormat) encode(model string, req Request) any {
	body := chatRequest{
		Model:     model,
		Messages:  []chatMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens: max(req.MaxTokens, 0),
	}
	if !f.omitModel && body.Model == "" {
		body.Model = "gpt-5-mini"
	}
	return body
}

func (chatFormat) decode(body []byte) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", output.NewSystemErrorWithCause("parsing chat response", err)
	}
	if resp.Error != nil {
		return "", output.NewSystemError("chat API error: " + resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", output.NewSystemError("chat response had no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
