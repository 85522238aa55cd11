package classifier

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesText(t *testing.T) {
	c := New()

	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{"exact privacy policy", "Privacy Policy", true},
		{"mixed case with padding", "  PRIVACY   policy ", true},
		{"terms of service", "Terms of Service", true},
		{"terms ampersand", "Terms & Conditions", true},
		{"cookie policy phrase", "Read our cookie policy here", true},
		{"eula single word", "EULA", true},
		{"single word plural", "Legals", true},
		{"single word in sentence", "Our privacy commitments", true},
		{"substring without boundary", "privacyassistant", false},
		{"prefix without boundary", "termsheet", false},
		{"unrelated", "About us", false},
		{"empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.MatchesText(tc.text); got != tc.expected {
				t.Errorf("MatchesText(%q): expected %v, got %v", tc.text, tc.expected, got)
			}
		})
	}
}

func TestMatchesURL(t *testing.T) {
	c := New()

	tests := []struct {
		name     string
		href     string
		expected bool
	}{
		{"hyphenated path", "https://example.com/privacy-policy", true},
		{"trailing slash", "https://example.com/privacy-policy/", true},
		{"extension", "https://example.com/privacy-policy.html", true},
		{"underscored", "https://example.com/legal/terms_of_service", true},
		{"concatenated", "https://example.com/termsofuse", true},
		{"single word segment", "https://example.com/en/privacy", true},
		{"query value", "https://example.com/page?doc=cookie-policy", true},
		{"query value single word", "https://example.com/index.php?page=terms", true},
		{"domain only", "https://privacy-policy.example.com/", false},
		{"domain with unrelated path", "https://privacy.example.com/blog", false},
		{"keyword inside segment", "https://example.com/privacyassistant", false},
		{"unrelated", "https://example.com/about", false},
		{"malformed", "http://[::1", false},
		{"empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.MatchesURL(tc.href); got != tc.expected {
				t.Errorf("MatchesURL(%q): expected %v, got %v", tc.href, tc.expected, got)
			}
		})
	}
}

func TestWithKeywords(t *testing.T) {
	c := New(WithKeywords([]string{"Imprint"}))

	assert.True(t, c.IsPolicy("Imprint", ""))
	assert.True(t, c.IsPolicy("", "https://example.de/imprint"))
	assert.False(t, c.IsPolicy("Privacy Policy", "https://example.com/x"))
}

func TestScan_ClassifiesOnce(t *testing.T) {
	c := New()
	processed := NewProcessedSet()

	anchors := []Anchor{
		{ID: "a1", Text: "Privacy Policy", Href: "https://example.com/p"},
		{ID: "a2", Text: "Blog", Href: "https://example.com/blog"},
	}

	first := c.Scan(anchors, processed, nil)
	require.Len(t, first, 1)
	assert.Equal(t, "Privacy Policy", first[0].Text)
	assert.Equal(t, "https://example.com/p", first[0].URL)
	assert.Equal(t, KindPrivacyPolicy, first[0].Kind)

	second := c.Scan(anchors, processed, nil)
	assert.Empty(t, second, "second scan must not reclassify a processed URL")
	assert.Equal(t, 1, processed.Len())
}

func TestScan_DeduplicatesWithinScan(t *testing.T) {
	c := New()
	processed := NewProcessedSet()

	anchors := []Anchor{
		{ID: "a1", Text: "Terms", Href: "https://Example.com/terms#top"},
		{ID: "a2", Text: "Terms of Use", Href: "https://example.com/terms"},
	}

	links := c.Scan(anchors, processed, nil)
	require.Len(t, links, 1)
	assert.Equal(t, "Terms", links[0].Text)
}

func TestScan_SkipsProblemAnchors(t *testing.T) {
	c := New()
	processed := NewProcessedSet()

	anchors := []Anchor{
		{ID: "nohref", Text: "Privacy Policy"},
		{ID: "malformed", Text: "Privacy Policy", Href: "http://[::1"},
		{ID: "script", Text: "Privacy Policy", Href: "javascript:void(0)"},
		{ID: "badged", Text: "Privacy Policy", Href: "https://example.com/privacy"},
	}

	links := c.Scan(anchors, processed, func(a Anchor) bool { return a.ID == "badged" })
	assert.Empty(t, links)
	assert.Equal(t, 0, processed.Len())
}

func TestScan_ClearedSetReclassifies(t *testing.T) {
	c := New()
	processed := NewProcessedSet()
	anchors := []Anchor{{ID: "a1", Text: "Cookie Policy", Href: "https://example.com/cookies"}}

	require.Len(t, c.Scan(anchors, processed, nil), 1)
	require.Empty(t, c.Scan(anchors, processed, nil))

	processed.Clear()

	links := c.Scan(anchors, processed, nil)
	require.Len(t, links, 1)
	assert.Equal(t, KindCookiePolicy, links[0].Kind)
}

func TestNormalizeURL(t *testing.T) {
	key, err := NormalizeURL(" HTTPS://Example.COM/Privacy#section ")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/Privacy", key)

	_, err = NormalizeURL("")
	assert.True(t, errors.Is(err, ErrMissingHref))

	_, err = NormalizeURL("mailto:privacy@example.com")
	assert.True(t, errors.Is(err, ErrMalformedURL))

	_, err = NormalizeURL("http://[::1")
	assert.True(t, errors.Is(err, ErrMalformedURL))
}

func TestKind(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		href     string
		expected string
	}{
		{"privacy text", "Privacy Notice", "https://example.com/x", KindPrivacyPolicy},
		{"privacy and cookies text", "Privacy & Cookies", "https://example.com/x", KindPrivacyPolicy},
		{"cookie text", "Cookie Policy", "https://example.com/x", KindCookiePolicy},
		{"terms text", "Terms and Conditions", "https://example.com/x", KindTermsOfService},
		{"user agreement", "User Agreement", "https://example.com/x", KindTermsOfService},
		{"eula text", "End User License Agreement", "https://example.com/x", KindEULA},
		{"aup text", "Acceptable Use Policy", "https://example.com/x", KindAcceptableUse},
		{"legal notice text", "Legal Notice", "https://example.com/x", KindLegalNotice},
		{"url decides", "Read more", "https://example.com/legal/privacy-policy", KindPrivacyPolicy},
		{"tos url", "Read more", "https://example.com/tos", KindTermsOfService},
		{"fallback", "Legal", "https://example.com/legal", KindLegal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Kind(tc.text, tc.href))
		})
	}
}
