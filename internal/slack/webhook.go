package slack

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/theopenlane/httpsling"
)

// Message represents a Slack webhook message payload
type Message struct {
	// Text is the fallback text for the notification
	Text string `json:"text"`
	// Username overrides the webhook's display name
	Username string `json:"username,omitempty"`
	// IconEmoji overrides the webhook's avatar
	IconEmoji string `json:"icon_emoji,omitempty"`
	// Blocks holds the rich layout blocks for the message
	Blocks []Block `json:"blocks,omitempty"`
}

// Block represents a Slack Block Kit block
type Block struct {
	Type   string       `json:"type"`
	Text   *TextObject  `json:"text,omitempty"`
	Fields []TextObject `json:"fields,omitempty"`
}

// TextObject represents a Slack text object (plain_text or mrkdwn)
type TextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// maxErrorBody caps how much of a failed response is quoted in the error
const maxErrorBody = 256

// Send posts a message to the configured Slack webhook, filling in the
// client's username and icon when the message does not set them. Slack
// answers "ok" on success and a short reason such as "invalid_payload"
// otherwise; the reason is carried in the returned error.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if msg.Username == "" {
		msg.Username = c.username
	}

	if msg.IconEmoji == "" {
		msg.IconEmoji = c.iconEmoji
	}

	requester := httpsling.MustNew(
		httpsling.URL(c.webhookURL),
		httpsling.Post(),
		httpsling.JSONBody(msg),
		httpsling.WithHTTPClient(c.httpClient),
	)

	resp, err := requester.SendWithContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: retry after %s", ErrRateLimited, retryAfter(resp.Header.Get("Retry-After")))
	default:
		reason, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return fmt.Errorf("%w: status %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(reason)))
	}
}

// retryAfter parses a Retry-After header given in seconds
func retryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || seconds < 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}
