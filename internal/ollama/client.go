// Package ollama is a language model host backed by a local Ollama runtime.
package ollama

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

const (
	// DefaultBaseURL is where a local Ollama listens
	DefaultBaseURL = "http://localhost:11434"
	// DefaultModel is pulled when no model is configured
	DefaultModel = "llama3.2"
	// defaultRequestTimeout bounds chat requests; pulls use the caller's context only
	defaultRequestTimeout = 2 * time.Minute
)

// Client talks to the Ollama HTTP API
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	// pullClient shares httpClient's transport without its timeout
	pullClient *http.Client
	pulling    atomic.Bool
}

// Option configures the Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a client for the model served at baseURL
func New(baseURL, model string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}

	if model == "" {
		return nil, ErrMissingModel
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	pull := *c.httpClient
	pull.Timeout = 0
	c.pullClient = &pull

	return c, nil
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

func (c *Client) apiURL(path string) string {
	return c.baseURL + "/api/" + path
}

// decodeJSON decodes a 200 JSON response into out. Any other status or
// content type is an error.
func decodeJSON(resp *http.Response, out any) error {
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("%w: content type %q", ErrUnexpectedContentType, resp.Header.Get("Content-Type"))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return nil
}
