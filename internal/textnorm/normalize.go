// Package textnorm converts fetched HTML into plain text suitable for prompting.
package textnorm

import (
	"html"
	"regexp"
	"strings"
)

var (
	// blockContentPattern matches elements whose content is never readable text
	blockContentPattern = regexp.MustCompile(`(?is)<(script|style|noscript|template|svg|head)\b[^>]*>.*?</(script|style|noscript|template|svg|head)\s*>`)
	// commentPattern matches HTML comments
	commentPattern = regexp.MustCompile(`(?s)<!--.*?-->`)
	// breakTagPattern matches tags that end a visual line
	breakTagPattern = regexp.MustCompile(`(?i)<(br|/p|/div|/li|/h[1-6]|/tr|/section|/article|/header|/footer|/ul|/ol|/table)\b[^>]*>`)
	// tagPattern matches any remaining tag
	tagPattern = regexp.MustCompile(`(?s)<[^>]+>`)
	// titlePattern extracts the document title
	titlePattern = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	// spacePattern collapses horizontal whitespace runs
	spacePattern = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	// blankLinesPattern collapses runs of blank lines
	blankLinesPattern = regexp.MustCompile(`\n\s*\n+`)
)

// HTMLToText strips scripts, styles, comments, tags and entities from an HTML
// document. Line-ending tags become newlines so sentence and paragraph
// boundaries survive for truncation.
func HTMLToText(doc string) string {
	text := commentPattern.ReplaceAllString(doc, " ")
	text = blockContentPattern.ReplaceAllString(text, " ")
	text = breakTagPattern.ReplaceAllString(text, "\n")
	text = tagPattern.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)

	return collapse(text)
}

// Title returns the trimmed, unescaped <title> of an HTML document, if any
func Title(doc string) string {
	match := titlePattern.FindStringSubmatch(doc)
	if len(match) < 2 {
		return ""
	}

	return strings.TrimSpace(spacePattern.ReplaceAllString(html.UnescapeString(match[1]), " "))
}

// collapse normalizes whitespace while keeping single paragraph breaks
func collapse(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = spacePattern.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}

	text = strings.Join(lines, "\n")
	text = blankLinesPattern.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
