package classifier

import "regexp"

const (
	// KindPrivacyPolicy identifies privacy policy and notice links
	KindPrivacyPolicy = "privacy_policy"
	// KindTermsOfService identifies terms of service, use and conditions links
	KindTermsOfService = "terms_of_service"
	// KindCookiePolicy identifies cookie policy links
	KindCookiePolicy = "cookie_policy"
	// KindEULA identifies end user license agreement links
	KindEULA = "eula"
	// KindAcceptableUse identifies acceptable use policy links
	KindAcceptableUse = "acceptable_use"
	// KindLegalNotice identifies legal notice and imprint links
	KindLegalNotice = "legal_notice"
	// KindLegal is the fallback for policy links that match no specific rule
	KindLegal = "legal"
)

// kindRule defines regex patterns for a single link kind
type kindRule struct {
	kind         string
	textPatterns []*regexp.Regexp
	urlPatterns  []*regexp.Regexp
}

// kindRules is the ordered list of kind rules; first match wins
var kindRules = []kindRule{
	{
		kind: KindCookiePolicy,
		textPatterns: compileAll(
			`(?i)cookies?\s+(policy|notice|statement)`,
		),
		urlPatterns: compileAll(
			`(?i)/cookies?[-_]?(policy|notice)`,
		),
	},
	{
		kind: KindPrivacyPolicy,
		textPatterns: compileAll(
			`(?i)privacy\s+(policy|notice|statement)`,
			`(?i)data\s+(policy|protection)`,
			`(?i)privacy\s*&\s*cookies`,
			`(?i)^\s*privacy\s*$`,
		),
		urlPatterns: compileAll(
			`(?i)/privacy`,
			`(?i)/data[-_]?(policy|protection)`,
		),
	},
	{
		kind: KindEULA,
		textPatterns: compileAll(
			`(?i)\beula\b`,
			`(?i)end\s+user\s+license`,
		),
		urlPatterns: compileAll(
			`(?i)/eula`,
			`(?i)/end[-_]?user[-_]?license`,
		),
	},
	{
		kind: KindAcceptableUse,
		textPatterns: compileAll(
			`(?i)acceptable\s+use`,
		),
		urlPatterns: compileAll(
			`(?i)/acceptable[-_]?use`,
			`(?i)/aup(/|$|\.)`,
		),
	},
	{
		kind: KindTermsOfService,
		textPatterns: compileAll(
			`(?i)terms\s+(of\s+service|of\s+use|&\s+conditions|and\s+conditions)`,
			`(?i)user\s+agreement`,
			`(?i)^\s*terms\s*$`,
		),
		urlPatterns: compileAll(
			`(?i)/(terms|tos)(/|$|\.|-|_)`,
			`(?i)/user[-_]?agreement`,
		),
	},
	{
		kind: KindLegalNotice,
		textPatterns: compileAll(
			`(?i)legal\s+notice`,
			`(?i)\bimprint\b`,
		),
		urlPatterns: compileAll(
			`(?i)/legal[-_]?notice`,
			`(?i)/imprint`,
		),
	},
}

// Kind determines the document kind of an already-classified policy link.
// Text patterns are checked across all rules before URL patterns so the
// visible label wins over a generic path. Returns KindLegal when nothing
// more specific matches.
func Kind(text, href string) string {
	for _, rule := range kindRules {
		if matchesAny(rule.textPatterns, text) {
			return rule.kind
		}
	}

	path := urlPathAndQuery(href)
	for _, rule := range kindRules {
		if matchesAny(rule.urlPatterns, path) {
			return rule.kind
		}
	}

	return KindLegal
}

// compileAll compiles multiple regex patterns, panicking on invalid patterns
func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))

	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}

	return compiled
}

// matchesAny returns true if the input matches any of the compiled patterns
func matchesAny(patterns []*regexp.Regexp, input string) bool {
	for _, p := range patterns {
		if p.MatchString(input) {
			return true
		}
	}

	return false
}
