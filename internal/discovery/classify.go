package discovery

import (
	"regexp"

	"github.com/theopenlane/policypeek/internal/classifier"
)

const (
	// KindDPA identifies data processing agreement pages
	KindDPA = "dpa"
	// KindSubprocessors identifies subprocessor list pages
	KindSubprocessors = "subprocessors"
	// KindGDPR identifies GDPR-specific pages
	KindGDPR = "gdpr"
)

// pageRule defines regex patterns for a single page kind
type pageRule struct {
	kind          string
	urlPatterns   []*regexp.Regexp
	titlePatterns []*regexp.Regexp
	bodyPatterns  []*regexp.Regexp
}

// pageRules is the ordered list of page rules; first match wins within a pass
var pageRules = []pageRule{
	{
		kind: classifier.KindCookiePolicy,
		urlPatterns: compileAll(
			`(?i)/(cookie-?policy|cookies)(/|$)`,
		),
		titlePatterns: compileAll(
			`(?i)cookies?\s+(policy|notice|statement)`,
		),
		bodyPatterns: compileAll(
			`(?i)cookie\s+categories`,
			`(?i)strictly\s+necessary\s+cookies`,
		),
	},
	{
		kind: classifier.KindPrivacyPolicy,
		urlPatterns: compileAll(
			`(?i)/privacy(-policy|-notice)?(/|$)`,
			`(?i)/legal/privac`,
			`(?i)/data-protection`,
		),
		titlePatterns: compileAll(
			`(?i)privacy\s+(policy|notice|statement)`,
			`(?i)data\s+protection\s+(policy|notice)`,
		),
		bodyPatterns: compileAll(
			`(?i)personal\s+(data|information).{0,80}collect`,
			`(?i)we\s+collect\s+.{0,40}(personal|information)`,
			`(?i)this\s+privacy\s+(policy|notice)`,
		),
	},
	{
		kind: classifier.KindTermsOfService,
		urlPatterns: compileAll(
			`(?i)/(terms|tos)(/|$)`,
			`(?i)/terms-of-(service|use)`,
			`(?i)/legal/terms`,
		),
		titlePatterns: compileAll(
			`(?i)terms\s+(of\s+service|of\s+use|&\s+conditions|and\s+conditions)`,
		),
		bodyPatterns: compileAll(
			`(?i)(binding\s+agreement|user\s+agreement|these\s+terms\s+govern)`,
			`(?i)by\s+(using|accessing).{0,40}you\s+agree`,
		),
	},
	{
		kind: classifier.KindEULA,
		urlPatterns: compileAll(
			`(?i)/eula(/|$)`,
			`(?i)/end-user-license`,
		),
		titlePatterns: compileAll(
			`(?i)end\s+user\s+licen[cs]e\s+agreement`,
			`(?i)\beula\b`,
		),
	},
	{
		kind: classifier.KindAcceptableUse,
		urlPatterns: compileAll(
			`(?i)/(acceptable-use|aup)(-policy)?(/|$)`,
		),
		titlePatterns: compileAll(
			`(?i)acceptable\s+use\s+policy`,
		),
	},
	{
		kind: KindDPA,
		urlPatterns: compileAll(
			`(?i)/(dpa|data-processing)`,
		),
		titlePatterns: compileAll(
			`(?i)data\s+processing\s+(agreement|addendum)`,
		),
		bodyPatterns: compileAll(
			`(?i)standard\s+contractual\s+clauses`,
		),
	},
	{
		kind: KindSubprocessors,
		urlPatterns: compileAll(
			`(?i)/sub-?processors`,
		),
		titlePatterns: compileAll(
			`(?i)sub-?processors`,
		),
		bodyPatterns: compileAll(
			`(?i)sub-?processor\s+list`,
		),
	},
	{
		kind: KindGDPR,
		urlPatterns: compileAll(
			`(?i)/gdpr`,
		),
		titlePatterns: compileAll(
			`(?i)gdpr\s+(compliance|notice|rights|statement)`,
		),
		bodyPatterns: compileAll(
			`(?i)general\s+data\s+protection\s+regulation`,
			`(?i)right\s+to\s+erasure`,
		),
	},
	{
		kind: classifier.KindLegalNotice,
		urlPatterns: compileAll(
			`(?i)/(imprint|impressum|legal-notice)(/|$)`,
		),
		titlePatterns: compileAll(
			`(?i)(legal\s+notice|imprint|impressum)`,
		),
	},
}

// ClassifyPage returns the page kind from its URL, title and text, or "".
// URL patterns are checked across every rule first, then titles, then text,
// so a URL match always beats a text match from an earlier rule.
func ClassifyPage(pageURL, title, text string) string {
	for _, rule := range pageRules {
		if matchesAny(rule.urlPatterns, pageURL) {
			return rule.kind
		}
	}

	for _, rule := range pageRules {
		if matchesAny(rule.titlePatterns, title) {
			return rule.kind
		}
	}

	for _, rule := range pageRules {
		if matchesAny(rule.bodyPatterns, text) {
			return rule.kind
		}
	}

	return ""
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))

	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}

	return compiled
}

func matchesAny(patterns []*regexp.Regexp, input string) bool {
	for _, p := range patterns {
		if p.MatchString(input) {
			return true
		}
	}

	return false
}
