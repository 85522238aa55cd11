package cloudflare

import (
	"fmt"
	"net/http"
	"time"
)

const (
	// defaultBaseURL is the root endpoint for the Cloudflare API
	defaultBaseURL = "https://api.cloudflare.com/client/v4"
	// defaultRequestTimeout bounds a single Cloudflare API request; text
	// generation over a full policy can take tens of seconds
	defaultRequestTimeout = 60 * time.Second
	// DefaultModel is the Workers AI text generation model used for summaries
	DefaultModel = "@cf/meta/llama-3.1-8b-instruct"
	// defaultNavigationTimeout bounds page navigation for rendered fetches
	defaultNavigationTimeout = 45 * time.Second
)

// Client provides access to Cloudflare APIs
type Client struct {
	accountID  string
	apiToken   string
	model      string
	httpClient *http.Client
	baseURL    string
	navTimeout time.Duration
}

// Option configures the Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client for the Cloudflare client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default Cloudflare API base URL
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithModel overrides DefaultModel
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithNavigationTimeout bounds how long a rendered page may take to settle
func WithNavigationTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.navTimeout = d
		}
	}
}

// New creates a new Cloudflare client with the provided account ID and API token
func New(accountID, apiToken string, opts ...Option) (*Client, error) {
	if accountID == "" {
		return nil, ErrMissingAccountID
	}

	if apiToken == "" {
		return nil, ErrMissingAPIToken
	}

	client := &Client{
		accountID:  accountID,
		apiToken:   apiToken,
		model:      DefaultModel,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		baseURL:    defaultBaseURL,
		navTimeout: defaultNavigationTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Model returns the configured text generation model
func (c *Client) Model() string {
	return c.model
}

// apiURL constructs the full API URL for a given path under this account
func (c *Client) apiURL(path string) string {
	return fmt.Sprintf("%s/accounts/%s/%s", c.baseURL, c.accountID, path)
}

// userURL constructs an API URL scoped to the token owner rather than the account
func (c *Client) userURL(path string) string {
	return fmt.Sprintf("%s/user/%s", c.baseURL, path)
}
