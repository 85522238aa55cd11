// Package discovery finds the policy documents of a site by scanning its
// homepage for policy links and probing well-known policy paths.
package discovery

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/temoto/robotstxt"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/errgroup"

	"github.com/theopenlane/policypeek/internal/classifier"
	"github.com/theopenlane/policypeek/internal/page"
	"github.com/theopenlane/policypeek/internal/textnorm"
	"github.com/theopenlane/policypeek/internal/types"
)

const (
	defaultWorkers = 4
	// userAgent is the robots.txt group consulted before probing
	userAgent = "PolicyPeek"
)

// DefaultPaths are probed relative to the site root
var DefaultPaths = []string{
	"/privacy",
	"/privacy-policy",
	"/legal/privacy",
	"/legal/privacy-policy",
	"/terms",
	"/terms-of-service",
	"/terms-of-use",
	"/tos",
	"/legal/terms",
	"/cookie-policy",
	"/cookies",
	"/eula",
	"/acceptable-use-policy",
	"/dpa",
	"/legal/dpa",
	"/subprocessors",
	"/legal/subprocessors",
	"/gdpr",
	"/imprint",
}

// Prober fetches the markup of a page; a non-2xx response is an error
type Prober interface {
	HTML(ctx context.Context, pageURL string) (string, error)
}

// Discoverer finds policy pages for a site
type Discoverer struct {
	prober     Prober
	classifier *classifier.Classifier
	paths      []string
	workers    int
	anySite    bool
	noRobots   bool
}

// Option configures a Discoverer
type Option func(*Discoverer)

// WithPaths replaces DefaultPaths
func WithPaths(paths []string) Option {
	return func(d *Discoverer) {
		if len(paths) > 0 {
			d.paths = paths
		}
	}
}

// WithWorkers sets how many paths are probed at once
func WithWorkers(n int) Option {
	return func(d *Discoverer) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithClassifier sets the classifier used for homepage anchors
func WithClassifier(c *classifier.Classifier) Option {
	return func(d *Discoverer) {
		if c != nil {
			d.classifier = c
		}
	}
}

// WithOffsiteLinks keeps homepage links that leave the site's registrable
// domain, such as a parent company's policies
func WithOffsiteLinks(keep bool) Option {
	return func(d *Discoverer) {
		d.anySite = keep
	}
}

// WithIgnoreRobots probes every path even when robots.txt disallows it
func WithIgnoreRobots(ignore bool) Option {
	return func(d *Discoverer) {
		d.noRobots = ignore
	}
}

// New returns a discoverer probing DefaultPaths
func New(p Prober, opts ...Option) *Discoverer {
	d := &Discoverer{
		prober:     p,
		classifier: classifier.New(),
		paths:      DefaultPaths,
		workers:    defaultWorkers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Discover returns the policy links of the site at siteURL: first those
// linked from the homepage, then well-known paths that answer with a page
// classified as a policy and that robots.txt allows. Each URL appears once.
func (d *Discoverer) Discover(ctx context.Context, siteURL string) ([]types.PolicyLink, error) {
	root, err := siteRoot(siteURL)
	if err != nil {
		return nil, err
	}

	home, err := d.prober.HTML(ctx, root.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHomepageFetchFailed, err)
	}

	links := d.homepageLinks(root.String(), home)

	probed, err := d.probe(ctx, root, home, d.allowedPaths(ctx, root))
	if err != nil {
		return nil, err
	}

	links = lo.UniqBy(append(links, probed...), func(l types.PolicyLink) string {
		key, err := classifier.NormalizeURL(l.URL)
		if err != nil {
			return l.URL
		}

		return strings.TrimSuffix(key, "/")
	})

	log.Debug().Str("site", root.String()).Int("links", len(links)).Msg("policy discovery complete")

	return links, nil
}

func (d *Discoverer) homepageLinks(rootURL, home string) []types.PolicyLink {
	doc, err := page.ParseDocument(rootURL, strings.NewReader(home))
	if err != nil {
		log.Debug().Err(err).Str("site", rootURL).Msg("homepage could not be parsed")
		return nil
	}

	links := d.classifier.Scan(doc.Anchors(), classifier.NewProcessedSet(), nil)
	if d.anySite {
		return links
	}

	site := registrableDomain(rootURL)

	return lo.Filter(links, func(l types.PolicyLink, _ int) bool {
		return registrableDomain(l.URL) == site
	})
}

// registrableDomain returns the eTLD+1 of a URL's host, or the host itself
// when it has none (localhost, IP addresses)
func registrableDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	if net.ParseIP(host) != nil {
		return host
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}

	return domain
}

// probe requests every path with bounded concurrency; pages identical to the
// homepage are treated as catch-all fallbacks and skipped
func (d *Discoverer) probe(ctx context.Context, root *url.URL, home string, paths []string) ([]types.PolicyLink, error) {
	results := make([]*types.PolicyLink, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for i, path := range paths {
		target := root.ResolveReference(&url.URL{Path: path}).String()

		g.Go(func() error {
			html, err := d.prober.HTML(gctx, target)
			if err != nil {
				log.Debug().Err(err).Str("url", target).Msg("probe miss")
				return nil
			}

			if html == home {
				return nil
			}

			title := textnorm.Title(html)

			kind := ClassifyPage(target, title, textnorm.HTMLToText(html))
			if kind == "" {
				return nil
			}

			results[i] = &types.PolicyLink{
				Text: lo.Ternary(title != "", title, path),
				URL:  target,
				Kind: kind,
			}

			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return lo.FilterMap(results, func(l *types.PolicyLink, _ int) (types.PolicyLink, bool) {
		if l == nil {
			return types.PolicyLink{}, false
		}

		return *l, true
	}), nil
}

// allowedPaths drops the paths robots.txt disallows for userAgent. A missing
// or unparsable robots.txt allows everything.
func (d *Discoverer) allowedPaths(ctx context.Context, root *url.URL) []string {
	if d.noRobots {
		return d.paths
	}

	target := root.ResolveReference(&url.URL{Path: "/robots.txt"}).String()

	body, err := d.prober.HTML(ctx, target)
	if err != nil {
		return d.paths
	}

	robots, err := robotstxt.FromString(body)
	if err != nil {
		log.Debug().Err(err).Str("url", target).Msg("ignoring unparsable robots.txt")
		return d.paths
	}

	group := robots.FindGroup(userAgent)

	return lo.Filter(d.paths, func(path string, _ int) bool {
		return group.Test(path)
	})
}

// siteRoot returns scheme://host/ for an address; a bare host defaults to https
func siteRoot(siteURL string) (*url.URL, error) {
	siteURL = strings.TrimSpace(siteURL)
	if siteURL == "" {
		return nil, ErrInvalidSite
	}

	if !strings.Contains(siteURL, "://") {
		siteURL = "https://" + siteURL
	}

	u, err := url.Parse(siteURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSite, siteURL)
	}

	return &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}, nil
}
