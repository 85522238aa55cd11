package ollama

import (
	"context"
	"fmt"

	"github.com/theopenlane/httpsling"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error"`
}

// session is an ai.Session backed by /api/chat
type session struct {
	client       *Client
	systemPrompt string
}

// Prompt implements ai.Session
func (s *session) Prompt(ctx context.Context, prompt string) (string, error) {
	return s.client.Chat(ctx, s.systemPrompt, prompt)
}

// Chat sends a single-turn conversation and returns the assistant reply
func (c *Client) Chat(ctx context.Context, systemPrompt, prompt string) (string, error) {
	messages := make([]chatMessage, 0, 2) //nolint:mnd
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}

	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, defaultRequestTimeout)
		defer cancel()
	}

	requester := httpsling.MustNew(
		httpsling.URL(c.apiURL("chat")),
		httpsling.Post(),
		httpsling.JSONBody(chatRequest{Model: c.model, Messages: messages}),
		httpsling.WithHTTPClient(c.httpClient),
	)

	resp, err := requester.SendWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	var out chatResponse
	if err := decodeJSON(resp, &out); err != nil {
		return "", err
	}

	if out.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrRequestFailed, out.Error)
	}

	return out.Message.Content, nil
}
