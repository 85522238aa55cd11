package cloudflare

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/theopenlane/httpsling"

	"github.com/theopenlane/policypeek/internal/ai"
)

// runPath is the API path prefix for Workers AI model runs
const runPath = "ai/run/"

// chatMessage is a single role-tagged message in a Workers AI chat request
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// runRequest is the request body for a Workers AI text generation run
type runRequest struct {
	Messages []chatMessage `json:"messages"`
}

// apiError is a single error entry in a Cloudflare API response
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// runResponse is the Cloudflare API response wrapper for a model run
type runResponse struct {
	Success bool       `json:"success"`
	Errors  []apiError `json:"errors"`
	Result  struct {
		Response string `json:"response"`
	} `json:"result"`
}

// Availability reports ready while the API token is active. A remote model
// never needs a download.
func (c *Client) Availability(ctx context.Context) (ai.Availability, error) {
	if err := c.VerifyToken(ctx); err != nil {
		return ai.AvailabilityUnavailable, err
	}

	return ai.AvailabilityReady, nil
}

// Create returns a session bound to the configured model
func (c *Client) Create(_ context.Context, cfg ai.SessionConfig, _ ai.Monitor) (ai.Session, error) {
	return &session{client: c, systemPrompt: cfg.SystemPrompt}, nil
}

// Run submits messages to the model and returns the generated text
func (c *Client) Run(ctx context.Context, systemPrompt, prompt string) (string, error) {
	messages := make([]chatMessage, 0, 2) //nolint:mnd
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}

	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	requester := httpsling.MustNew(
		httpsling.URL(c.apiURL(runPath+c.model)),
		httpsling.Post(),
		httpsling.BearerAuth(c.apiToken),
		httpsling.JSONBody(runRequest{Messages: messages}),
		httpsling.WithHTTPClient(c.httpClient),
	)

	var cfResp runResponse

	resp, err := requester.ReceiveWithContext(ctx, &cfResp)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if !cfResp.Success {
		msgs := make([]string, 0, len(cfResp.Errors))
		for _, e := range cfResp.Errors {
			msgs = append(msgs, e.Message)
		}

		return "", fmt.Errorf("%w: %s", ErrGenerationFailed, strings.Join(msgs, "; "))
	}

	return cfResp.Result.Response, nil
}

// session is an ai.Session backed by Workers AI
type session struct {
	client       *Client
	systemPrompt string
}

// Prompt implements ai.Session
func (s *session) Prompt(ctx context.Context, prompt string) (string, error) {
	return s.client.Run(ctx, s.systemPrompt, prompt)
}
