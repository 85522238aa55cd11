// Package classifier decides which page anchors point to legal documents.
package classifier

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/theopenlane/policypeek/internal/types"
)

// Anchor is a link element as seen by the classifier
type Anchor struct {
	// ID identifies the element within its document
	ID string
	// Text is the visible text of the anchor
	Text string
	// Href is the resolved link target; empty when the element has no href
	Href string
}

// Classifier applies the text and URL heuristics to anchors
type Classifier struct {
	keywords []keyword
}

// Option configures a Classifier
type Option func(*Classifier)

// WithKeywords replaces the default keyword list
func WithKeywords(phrases []string) Option {
	return func(c *Classifier) {
		if len(phrases) > 0 {
			c.keywords = compileKeywords(phrases)
		}
	}
}

// New creates a classifier using DefaultKeywords unless overridden
func New(opts ...Option) *Classifier {
	c := &Classifier{keywords: compileKeywords(DefaultKeywords)}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// MatchesText reports whether the visible text contains a keyword. Multi-word
// keywords match as phrases, single words only on word boundaries.
func (c *Classifier) MatchesText(text string) bool {
	normalized := normalizeText(text)
	if normalized == "" {
		return false
	}

	for _, kw := range c.keywords {
		if kw.matchesText(normalized) {
			return true
		}
	}

	return false
}

// MatchesURL reports whether the path or a query value of href holds a
// keyword variant as a whole segment. The host is never inspected. Malformed
// URLs never match.
func (c *Classifier) MatchesURL(href string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}

	candidates := []string{strings.ToLower(u.Path)}

	for _, values := range u.Query() {
		for _, v := range values {
			if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
				candidates = append(candidates, v)
			}
		}
	}

	for _, kw := range c.keywords {
		for _, candidate := range candidates {
			if kw.urlPattern.MatchString(candidate) {
				return true
			}
		}
	}

	return false
}

// IsPolicy reports whether either heuristic classifies the anchor as policy-like
func (c *Classifier) IsPolicy(text, href string) bool {
	return c.MatchesText(text) || c.MatchesURL(href)
}

// Scan classifies every anchor whose URL is not yet in processed and that is
// not already badged. Positive anchors are added to processed and returned
// exactly once. Problem anchors are skipped and logged, never returned as errors.
func (c *Classifier) Scan(anchors []Anchor, processed *ProcessedSet, badged func(Anchor) bool) []types.PolicyLink {
	var links []types.PolicyLink

	for _, a := range anchors {
		key, err := NormalizeURL(a.Href)
		if err != nil {
			log.Debug().Err(err).Str("anchor", a.ID).Msg("skipping anchor")
			continue
		}

		if processed.Contains(key) {
			continue
		}

		if badged != nil && badged(a) {
			continue
		}

		if !c.IsPolicy(a.Text, a.Href) {
			continue
		}

		if !processed.Add(key) {
			continue
		}

		text := strings.Join(strings.Fields(a.Text), " ")

		links = append(links, types.PolicyLink{
			Text: text,
			URL:  a.Href,
			Kind: Kind(text, a.Href),
		})
	}

	return links
}

// NormalizeURL returns the dedup key for a link target: lowercase scheme and
// host, no fragment. Only http(s) and scheme-relative targets are accepted.
func NormalizeURL(href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", ErrMissingHref
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "" && scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrMalformedURL, u.Scheme)
	}

	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	return u.String(), nil
}

// urlPathAndQuery returns the lowercase path and raw query of href, or an
// empty string if it cannot be parsed
func urlPathAndQuery(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}

	if u.RawQuery == "" {
		return strings.ToLower(u.Path)
	}

	return strings.ToLower(u.Path + "?" + u.RawQuery)
}
