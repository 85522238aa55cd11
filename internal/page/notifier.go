package page

import (
	"html"
	"sync"

	"github.com/theopenlane/policypeek/internal/classifier"
	"github.com/theopenlane/policypeek/internal/types"
)

// BadgeTooltip is shown when hovering over an injected badge
const BadgeTooltip = "Policy link detected. Open PolicyPeek to analyze it."

// Badge is a decoration attached next to a policy anchor
type Badge struct {
	AnchorID string `json:"anchor_id"`
	URL      string `json:"url"`
	Kind     string `json:"kind,omitempty"`
}

// Notifier injects badges next to policy anchors. Each anchor carries at
// most one badge.
type Notifier struct {
	doc *Document

	mu     sync.Mutex
	badges map[string]Badge
}

// NewNotifier returns a notifier decorating doc
func NewNotifier(doc *Document) *Notifier {
	return &Notifier{doc: doc, badges: map[string]Badge{}}
}

// Badged reports whether the anchor already carries a badge
func (n *Notifier) Badged(a classifier.Anchor) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	_, ok := n.badges[a.ID]

	return ok
}

// Decorate attaches a badge after the anchor. Decorating an anchor twice is a no-op.
func (n *Notifier) Decorate(a classifier.Anchor, link types.PolicyLink) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.badges[a.ID]; ok {
		return false
	}

	sel := n.doc.anchor(a.ID)
	if sel.Length() == 0 {
		return false
	}

	sel.AfterHtml(`<span class="` + badgeClass + `" data-policypeek-for="` + html.EscapeString(a.ID) +
		`" title="` + html.EscapeString(BadgeTooltip) + `" role="img" aria-label="policy link">&#128269;</span>`)

	n.badges[a.ID] = Badge{AnchorID: a.ID, URL: link.URL, Kind: link.Kind}

	return true
}

// Clear removes every badge from the document
func (n *Notifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.doc.badges().Remove()
	n.badges = map[string]Badge{}
}

// Badges returns the current decorations
func (n *Notifier) Badges() []Badge {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Badge, 0, len(n.badges))
	for _, b := range n.badges {
		out = append(out, b)
	}

	return out
}
