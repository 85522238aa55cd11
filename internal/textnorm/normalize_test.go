package textnorm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			"plain paragraph",
			"<p>We collect data.</p>",
			"We collect data.",
		},
		{
			"scripts and styles removed",
			`<html><head><title>x</title><style>p{color:red}</style></head><body><script>var a = "<p>";</script><p>Visible</p></body></html>`,
			"Visible",
		},
		{
			"comments removed",
			"<p>Before<!-- hidden --> after</p>",
			"Before after",
		},
		{
			"entities decoded",
			"<p>Terms &amp; Conditions&nbsp;apply</p>",
			"Terms & Conditions apply",
		},
		{
			"paragraph breaks preserved",
			"<h1>Privacy</h1><p>First.</p><p>Second.</p>",
			"Privacy\nFirst.\nSecond.",
		},
		{
			"br becomes newline",
			"line one<br/>line two",
			"line one\nline two",
		},
		{
			"empty input",
			"",
			"",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, HTMLToText(tc.html))
		})
	}
}

func TestHTMLToText_CollapsesBlankLines(t *testing.T) {
	text := HTMLToText("<div>a</div>\n\n\n<div></div>\n\n<div>b</div>")
	assert.False(t, strings.Contains(text, "\n\n\n"), "expected blank line runs to collapse, got %q", text)
	assert.True(t, strings.HasPrefix(text, "a"))
	assert.True(t, strings.HasSuffix(text, "b"))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Privacy Policy", Title("<html><head><title>  Privacy   Policy </title></head></html>"))
	assert.Equal(t, "Terms & Conditions", Title("<title>Terms &amp; Conditions</title>"))
	assert.Equal(t, "", Title("<html><body>no title</body></html>"))
}
