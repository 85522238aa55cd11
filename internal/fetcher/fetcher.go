// Package fetcher retrieves the plain text of a policy document, preferring
// an open tab's rendered text over a network fetch.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/theopenlane/httpsling"
	"golang.org/x/time/rate"

	"github.com/theopenlane/policypeek/internal/textnorm"
)

const (
	// MinTabTextChars is the shortest tab text accepted instead of a network fetch
	MinTabTextChars = 100
	// defaultRequestTimeout bounds a single network fetch
	defaultRequestTimeout = 15 * time.Second
	// defaultMaxBodyBytes caps how much of a response body is read
	defaultMaxBodyBytes = 5 << 20
	// defaultRequestsPerSecond is the sustained network fetch rate
	defaultRequestsPerSecond = 2
	// defaultBurst is the number of fetches allowed back to back
	defaultBurst = 4
)

// Source describes where document text came from
type Source string

const (
	// SourceTab means the text was read from an open tab
	SourceTab Source = "tab"
	// SourceNetwork means the document was fetched over HTTP
	SourceNetwork Source = "network"
	// SourceRendered means the document was rendered by a headless browser
	SourceRendered Source = "rendered"
)

// TabSource exposes the text of open tabs
type TabSource interface {
	TabText(ctx context.Context, pageURL string) (string, bool)
}

// Renderer returns the script-rendered HTML of a page
type Renderer interface {
	RenderHTML(ctx context.Context, pageURL string) (string, error)
}

// Document is the fetched plain text of a policy
type Document struct {
	URL    string `json:"url"`
	Title  string `json:"title,omitempty"`
	Text   string `json:"text"`
	Source Source `json:"source"`
}

// Fetcher retrieves policy text
type Fetcher struct {
	tabs       TabSource
	renderer   Renderer
	httpClient *http.Client
	limiter    *rate.Limiter
	maxBytes   int
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithTabSource sets where open tab text is looked up
func WithTabSource(tabs TabSource) Option {
	return func(f *Fetcher) {
		f.tabs = tabs
	}
}

// WithRenderer sets a renderer used when the static HTML has no text
func WithRenderer(r Renderer) Option {
	return func(f *Fetcher) {
		f.renderer = r
	}
}

// WithHTTPClient sets a custom HTTP client for network fetches
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// WithRateLimit sets the sustained fetch rate and burst
func WithRateLimit(perSecond float64, burst int) Option {
	return func(f *Fetcher) {
		if perSecond > 0 && burst > 0 {
			f.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithMaxBodyBytes caps how much of a response body is read
func WithMaxBodyBytes(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// New returns a fetcher with default limits
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultBurst),
		maxBytes:   defaultMaxBodyBytes,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch returns the text of the document at pageURL. An open tab showing
// the URL with at least MinTabTextChars characters of text wins; otherwise
// the document is fetched and stripped to plain text.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (Document, error) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Document{}, fmt.Errorf("%w: %q", ErrInvalidURL, pageURL)
	}

	target := u.String()

	if f.tabs != nil {
		if text, ok := f.tabs.TabText(ctx, target); ok && utf8.RuneCountInString(text) >= MinTabTextChars {
			log.Debug().Str("url", target).Msg("using open tab text")

			return Document{URL: target, Text: text, Source: SourceTab}, nil
		}
	}

	html, err := f.get(ctx, target)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		URL:    target,
		Title:  textnorm.Title(html),
		Text:   textnorm.HTMLToText(html),
		Source: SourceNetwork,
	}

	if utf8.RuneCountInString(doc.Text) < MinTabTextChars && f.renderer != nil {
		rendered, err := f.renderer.RenderHTML(ctx, target)
		if err != nil {
			log.Warn().Err(err).Str("url", target).Msg("rendering policy page failed")
		} else if text := textnorm.HTMLToText(rendered); utf8.RuneCountInString(text) > utf8.RuneCountInString(doc.Text) {
			doc.Text = text
			doc.Source = SourceRendered

			if title := textnorm.Title(rendered); title != "" {
				doc.Title = title
			}
		}
	}

	if doc.Text == "" {
		return Document{}, fmt.Errorf("%w: %s", ErrEmptyDocument, target)
	}

	return doc, nil
}

// HTML returns the raw markup of the page at pageURL
func (f *Fetcher) HTML(ctx context.Context, pageURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, pageURL)
	}

	return f.get(ctx, u.String())
}

// get performs a rate-limited GET and returns at most maxBytes of the body
func (f *Fetcher) get(ctx context.Context, target string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	requester := httpsling.MustNew(
		httpsling.URL(target),
		httpsling.Method(http.MethodGet),
		httpsling.WithHTTPClient(f.httpClient),
	)

	body := &cappedBuffer{max: f.maxBytes}

	resp, _, err := requester.ReceiveTo(ctx, body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	if body.truncated {
		log.Debug().Str("url", target).Int("max_bytes", f.maxBytes).Msg("policy body truncated")
	}

	return body.String(), nil
}

// cappedBuffer keeps the first max bytes written and discards the rest
type cappedBuffer struct {
	buf       strings.Builder
	max       int
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	remaining := b.max - b.buf.Len()
	if remaining <= 0 {
		b.truncated = len(p) > 0 || b.truncated

		return len(p), nil
	}

	if len(p) > remaining {
		b.buf.Write(p[:remaining])
		b.truncated = true

		return len(p), nil
	}

	b.buf.Write(p)

	return len(p), nil
}

func (b *cappedBuffer) String() string {
	return b.buf.String()
}
