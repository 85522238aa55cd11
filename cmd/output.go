package cmd

import (
	"encoding/json"
	"fmt"
	"io"
)

const (
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

// writeOutput renders v as indented JSON, or calls md for Markdown
func writeOutput(w io.Writer, format string, v any, md func(io.Writer) error) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(v)
	case formatMarkdown, "":
		return md(w)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
