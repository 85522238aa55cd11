package messaging

import (
	"github.com/theopenlane/policypeek/internal/types"
)

// Kind is the wire tag of a message
type Kind string

const (
	// KindLinksDetected is sent by a page context after a scan found links
	KindLinksDetected Kind = "LINKS_DETECTED"
	// KindGetPolicyLinks asks a page context for its current links
	KindGetPolicyLinks Kind = "GET_POLICY_LINKS"
	// KindRescanPage asks a page context to clear its state and scan again
	KindRescanPage Kind = "RESCAN_PAGE"
	// KindAnalyzePolicy asks the background context for the text of a policy URL
	KindAnalyzePolicy Kind = "ANALYZE_POLICY"
	// KindGetAICapabilities asks the background context for model availability
	KindGetAICapabilities Kind = "GET_AI_CAPABILITIES"
)

// Kinds lists every message kind
var Kinds = []Kind{
	KindLinksDetected,
	KindGetPolicyLinks,
	KindRescanPage,
	KindAnalyzePolicy,
	KindGetAICapabilities,
}

// Message is one of the typed messages exchanged between contexts
type Message interface {
	Kind() Kind
}

// LinksDetected reports the links found on a page
type LinksDetected struct {
	Links []types.PolicyLink `json:"links"`
	Count int                `json:"count"`
}

// GetPolicyLinks requests the current links of a page
type GetPolicyLinks struct{}

// RescanPage requests a full rescan of a page
type RescanPage struct{}

// AnalyzePolicy requests the plain text of a policy document
type AnalyzePolicy struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// GetAICapabilities requests the model availability
type GetAICapabilities struct{}

// Kind implements Message
func (LinksDetected) Kind() Kind { return KindLinksDetected }

// Kind implements Message
func (GetPolicyLinks) Kind() Kind { return KindGetPolicyLinks }

// Kind implements Message
func (RescanPage) Kind() Kind { return KindRescanPage }

// Kind implements Message
func (AnalyzePolicy) Kind() Kind { return KindAnalyzePolicy }

// Kind implements Message
func (GetAICapabilities) Kind() Kind { return KindGetAICapabilities }

// Ack acknowledges a notification
type Ack struct {
	Success bool `json:"success"`
}

// LinksResponse answers GetPolicyLinks; Links is empty, never null, when
// nothing was found
type LinksResponse struct {
	Success bool               `json:"success"`
	Links   []types.PolicyLink `json:"links"`
}

// RescanResponse answers RescanPage
type RescanResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

// AnalyzeResponse answers AnalyzePolicy with the fetched document or an error
type AnalyzeResponse struct {
	Success bool   `json:"success"`
	Content string `json:"content,omitempty"`
	URL     string `json:"url,omitempty"`
	Title   string `json:"title,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CapabilitiesResponse answers GetAICapabilities
type CapabilitiesResponse struct {
	Availability string `json:"availability"`
}

// Sender identifies the origin of a message; TabID and URL are empty for
// non-page contexts
type Sender struct {
	TabID string `json:"tab_id,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Envelope carries a message with its correlation id and sender
type Envelope struct {
	ID      string
	Sender  Sender
	Message Message
}
