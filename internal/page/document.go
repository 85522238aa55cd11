package page

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/theopenlane/policypeek/internal/classifier"
	"github.com/theopenlane/policypeek/internal/textnorm"
)

const (
	// anchorIDAttr tags each anchor with a stable identifier
	anchorIDAttr = "data-policypeek-id"
	// badgeClass marks elements injected by the notifier
	badgeClass = "policypeek-badge"
)

// Document is the in-memory DOM of a single page
type Document struct {
	base   *url.URL
	doc    *goquery.Document
	nextID int
}

// ParseDocument parses page HTML, resolving relative links against pageURL
func ParseDocument(pageURL string, r io.Reader) (*Document, error) {
	base, err := url.Parse(pageURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPageURL, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	return &Document{base: base, doc: doc}, nil
}

// URL returns the page URL
func (d *Document) URL() string {
	return d.base.String()
}

// Title returns the trimmed document title
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// Anchors returns every anchor in document order, assigning identifiers to
// anchors seen for the first time
func (d *Document) Anchors() []classifier.Anchor {
	var anchors []classifier.Anchor

	d.doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		id, ok := s.Attr(anchorIDAttr)
		if !ok {
			d.nextID++
			id = "a" + strconv.Itoa(d.nextID)
			s.SetAttr(anchorIDAttr, id)
		}

		anchors = append(anchors, classifier.Anchor{
			ID:   id,
			Text: s.Text(),
			Href: d.resolve(s),
		})
	})

	return anchors
}

// resolve returns the absolute href of an anchor, or "" when it has none
func (d *Document) resolve(s *goquery.Selection) string {
	href, ok := s.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return ""
	}

	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		// left unresolved so the classifier rejects it
		return href
	}

	return d.base.ResolveReference(ref).String()
}

// Insert appends an HTML fragment to the first element matching selector,
// or to the body when selector is empty, and returns the number of anchors
// the fragment added
func (d *Document) Insert(selector, fragment string) (int, error) {
	if selector == "" {
		selector = "body"
	}

	target := d.doc.Find(selector).First()
	if target.Length() == 0 {
		return 0, fmt.Errorf("%w: %q", ErrNoInsertionPoint, selector)
	}

	before := d.unseenAnchors()
	target.AppendHtml(fragment)

	return d.unseenAnchors() - before, nil
}

func (d *Document) unseenAnchors() int {
	return d.doc.Find("a:not([" + anchorIDAttr + "])").Length()
}

// Text returns the visible body text without injected badges
func (d *Document) Text() string {
	body := d.doc.Find("body").First().Clone()
	body.Find("." + badgeClass).Remove()

	html, err := goquery.OuterHtml(body)
	if err != nil {
		return ""
	}

	return textnorm.HTMLToText(html)
}

// HTML renders the current document including decorations
func (d *Document) HTML() (string, error) {
	return d.doc.Html()
}

// anchor returns the selection for an anchor identifier
func (d *Document) anchor(id string) *goquery.Selection {
	return d.doc.Find("a[" + anchorIDAttr + "=\"" + id + "\"]")
}

// badges returns every injected badge element
func (d *Document) badges() *goquery.Selection {
	return d.doc.Find("." + badgeClass)
}
