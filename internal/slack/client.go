package slack

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	// defaultRequestTimeout is the default timeout for Slack webhook requests
	defaultRequestTimeout = 10 * time.Second
	// defaultUsername is the display name used for notifications
	defaultUsername = "PolicyPeek"
	// defaultIconEmoji is the avatar used for notifications
	defaultIconEmoji = ":mag:"
)

// Client sends policy link notifications to Slack via incoming webhooks
type Client struct {
	webhookURL string
	username   string
	iconEmoji  string
	httpClient *http.Client
}

// Option configures the Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client for the Slack client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUsername overrides the notification display name
func WithUsername(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.username = name
		}
	}
}

// WithIconEmoji overrides the notification avatar emoji
func WithIconEmoji(emoji string) Option {
	return func(c *Client) {
		if emoji != "" {
			c.iconEmoji = emoji
		}
	}
}

// New creates a new Slack webhook client
func New(webhookURL string, opts ...Option) (*Client, error) {
	if webhookURL == "" {
		return nil, ErrMissingWebhookURL
	}

	if u, err := url.Parse(webhookURL); err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWebhookURL, webhookURL)
	}

	client := &Client{
		webhookURL: webhookURL,
		username:   defaultUsername,
		iconEmoji:  defaultIconEmoji,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}
