package classifier

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// DefaultKeywords are the phrases that mark an anchor as policy-like
var DefaultKeywords = []string{
	"privacy policy",
	"privacy notice",
	"terms of service",
	"terms and conditions",
	"terms of use",
	"user agreement",
	"cookie policy",
	"cookies policy",
	"data policy",
	"eula",
	"end user license agreement",
	"acceptable use policy",
	"legal notice",
	"terms & conditions",
	"privacy & cookies",
	"privacy",
	"terms",
	"legal",
}

// nonWordPattern splits keyword phrases into their alphanumeric tokens
var nonWordPattern = regexp.MustCompile(`[^a-z0-9]+`)

// keyword is a compiled policy keyword
type keyword struct {
	// phrase is the lowercase keyword as configured
	phrase string
	// textPattern is set for single-word keywords and enforces word boundaries
	textPattern *regexp.Regexp
	// urlPattern matches any URL variant of the keyword as a whole path segment
	urlPattern *regexp.Regexp
}

// compileKeywords normalizes, deduplicates and compiles keyword phrases
func compileKeywords(phrases []string) []keyword {
	normalized := lo.Uniq(lo.FilterMap(phrases, func(p string, _ int) (string, bool) {
		p = normalizeText(p)
		return p, p != ""
	}))

	keywords := make([]keyword, 0, len(normalized))

	for _, phrase := range normalized {
		tokens := lo.Compact(nonWordPattern.Split(phrase, -1))
		if len(tokens) == 0 {
			continue
		}

		kw := keyword{phrase: phrase}

		if !strings.Contains(phrase, " ") {
			kw.textPattern = regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `s?\b`)
		}

		variants := lo.Uniq([]string{
			strings.Join(tokens, "-"),
			strings.Join(tokens, "_"),
			strings.Join(tokens, ""),
		})

		quoted := lo.Map(variants, func(v string, _ int) string {
			return regexp.QuoteMeta(v)
		})

		kw.urlPattern = regexp.MustCompile(`(?:^|/)(?:` + strings.Join(quoted, "|") + `)(?:/|\.|$)`)

		keywords = append(keywords, kw)
	}

	return keywords
}

// matchesText applies the text heuristic to normalized anchor text
func (k keyword) matchesText(text string) bool {
	if k.textPattern != nil {
		return k.textPattern.MatchString(text)
	}

	return strings.Contains(text, k.phrase)
}

// normalizeText lowercases and collapses whitespace
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
