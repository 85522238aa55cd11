// Package page holds the per-tab page context: the parsed document, the
// policy link scan, badge decorations and mutation-driven rescans.
package page

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"

	"github.com/theopenlane/policypeek/internal/classifier"
	"github.com/theopenlane/policypeek/internal/messaging"
	"github.com/theopenlane/policypeek/internal/types"
)

// Context is the page context of a single tab
type Context struct {
	tabID      string
	doc        *Document
	classifier *classifier.Classifier
	processed  *classifier.ProcessedSet
	notifier   *Notifier
	debouncer  *Debouncer
	bus        *messaging.Bus

	// mu serializes document access between requests and debounced rescans
	mu       sync.Mutex
	links    []types.PolicyLink
	settings types.Settings

	base   context.Context
	cancel context.CancelFunc
}

// Option configures a page Context
type Option func(*options)

type options struct {
	clock       clock.Clock
	quietWindow time.Duration
	classifier  *classifier.Classifier
	settings    types.Settings
}

// WithClock sets the clock driving the mutation debouncer
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithQuietWindow overrides DefaultQuietWindow
func WithQuietWindow(d time.Duration) Option {
	return func(o *options) {
		o.quietWindow = d
	}
}

// WithClassifier sets the classifier used for scans
func WithClassifier(c *classifier.Classifier) Option {
	return func(o *options) {
		if c != nil {
			o.classifier = c
		}
	}
}

// WithSettings sets the user settings read at page load
func WithSettings(s types.Settings) Option {
	return func(o *options) {
		o.settings = s
	}
}

// Open parses the page and returns its context. The context is not
// reachable over the bus until Start is called.
func Open(tabID, pageURL string, html io.Reader, bus *messaging.Bus, opts ...Option) (*Context, error) {
	if tabID == "" {
		return nil, ErrMissingTabID
	}

	o := options{
		clock:       clock.New(),
		quietWindow: DefaultQuietWindow,
		settings:    types.DefaultSettings(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.classifier == nil {
		o.classifier = classifier.New()
	}

	doc, err := ParseDocument(pageURL, html)
	if err != nil {
		return nil, err
	}

	c := &Context{
		tabID:      tabID,
		doc:        doc,
		classifier: o.classifier,
		processed:  classifier.NewProcessedSet(),
		notifier:   NewNotifier(doc),
		bus:        bus,
		settings:   o.settings,
	}

	c.base, c.cancel = context.WithCancel(context.Background())
	c.debouncer = NewDebouncer(o.clock, o.quietWindow, func() {
		if c.Settings().AutoScan {
			c.Scan(c.base)
		}
	})

	return c, nil
}

// TabID returns the tab identifier
func (c *Context) TabID() string {
	return c.tabID
}

// Document returns the page document
func (c *Context) Document() *Document {
	return c.doc
}

// Start registers the context on the bus and runs the initial scan when
// auto scan is enabled
func (c *Context) Start(ctx context.Context) {
	if c.bus != nil {
		c.bus.Register(messaging.TabEndpoint(c.tabID), c.Router())
	}

	if c.Settings().AutoScan {
		c.Scan(ctx)
	}
}

// Settings returns the user settings the context currently applies
func (c *Context) Settings() types.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.settings
}

// UpdateSettings applies changed user settings to the open page. Turning the
// magnifying glass off removes every badge and turning it on decorates the
// links already found. AutoScan gates the debounced rescans that follow.
func (c *Context) UpdateSettings(s types.Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous := c.settings
	c.settings = s

	switch {
	case previous.ShowMagnifyingGlass && !s.ShowMagnifyingGlass:
		c.notifier.Clear()
	case !previous.ShowMagnifyingGlass && s.ShowMagnifyingGlass:
		c.decorateFound()
	}
}

// decorateFound badges the first anchor of each link found so far, the same
// anchor a scan would have decorated. Callers hold c.mu.
func (c *Context) decorateFound() {
	pending := make(map[string]types.PolicyLink, len(c.links))

	for _, l := range c.links {
		if key, err := classifier.NormalizeURL(l.URL); err == nil {
			pending[key] = l
		}
	}

	for _, a := range c.doc.Anchors() {
		key, err := classifier.NormalizeURL(a.Href)
		if err != nil {
			continue
		}

		link, ok := pending[key]
		if !ok {
			continue
		}

		c.notifier.Decorate(a, link)
		delete(pending, key)
	}
}

// Scan classifies anchors not yet processed, decorates the new policy links
// and reports the page's links to the background when new ones were found
func (c *Context) Scan(ctx context.Context) []types.PolicyLink {
	c.mu.Lock()

	var found []types.PolicyLink

	for _, a := range c.doc.Anchors() {
		links := c.classifier.Scan([]classifier.Anchor{a}, c.processed, c.notifier.Badged)
		if len(links) == 0 {
			continue
		}

		found = append(found, links[0])

		if c.settings.ShowMagnifyingGlass {
			c.notifier.Decorate(a, links[0])
		}
	}

	c.links = append(c.links, found...)
	all := slices.Clone(c.links)

	c.mu.Unlock()

	if len(found) > 0 {
		log.Debug().Str("tab", c.tabID).Int("new", len(found)).Int("total", len(all)).Msg("policy links detected")
		c.report(ctx, all)
	}

	return found
}

// report sends LINKS_DETECTED; delivery failures are logged only
func (c *Context) report(ctx context.Context, links []types.PolicyLink) {
	if c.bus == nil {
		return
	}

	from := messaging.Sender{TabID: c.tabID, URL: c.doc.URL()}

	if _, err := c.bus.NotifyLinks(ctx, from, messaging.LinksDetected{Links: links, Count: len(links)}); err != nil {
		log.Warn().Err(err).Str("tab", c.tabID).Msg("failed to report policy links")
	}
}

// Rescan clears processed URLs, decorations and links, then scans again.
// It returns the number of links found.
func (c *Context) Rescan(ctx context.Context) int {
	c.mu.Lock()
	c.processed.Clear()
	c.notifier.Clear()
	c.links = nil
	c.mu.Unlock()

	c.Scan(ctx)

	return len(c.Links())
}

// Mutate inserts an HTML fragment into the page. When anchors were added a
// rescan is scheduled after the quiet window.
func (c *Context) Mutate(selector, fragment string) (int, error) {
	c.mu.Lock()
	added, err := c.doc.Insert(selector, fragment)
	c.mu.Unlock()

	if err != nil {
		return 0, err
	}

	if added > 0 {
		c.debouncer.Trigger()
	}

	return added, nil
}

// Links returns the policy links found so far
func (c *Context) Links() []types.PolicyLink {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.links)
}

// Badges returns the current decorations
func (c *Context) Badges() []Badge {
	return c.notifier.Badges()
}

// Text returns the page's visible text
func (c *Context) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.doc.Text()
}

// HTML renders the decorated document
func (c *Context) HTML() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.doc.HTML()
}

// Close detaches the context from the bus and cancels pending rescans;
// its links are dropped with it
func (c *Context) Close() {
	c.debouncer.Stop()
	c.cancel()

	if c.bus != nil {
		c.bus.Unregister(messaging.TabEndpoint(c.tabID))
	}
}

// Router answers GET_POLICY_LINKS and RESCAN_PAGE
func (c *Context) Router() *messaging.Router {
	return &messaging.Router{
		OnGetPolicyLinks: func(_ context.Context, _ messaging.Sender, _ messaging.GetPolicyLinks) (messaging.LinksResponse, error) {
			links := c.Links()
			if links == nil {
				links = []types.PolicyLink{}
			}

			return messaging.LinksResponse{Success: true, Links: links}, nil
		},
		OnRescanPage: func(ctx context.Context, _ messaging.Sender, _ messaging.RescanPage) (messaging.RescanResponse, error) {
			return messaging.RescanResponse{Success: true, Count: c.Rescan(ctx)}, nil
		},
	}
}
