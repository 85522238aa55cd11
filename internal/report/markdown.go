// Package report renders analysis results and detected links as Markdown.
package report

import (
	"io"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/theopenlane/policypeek/internal/types"
)

var printer = message.NewPrinter(language.English)

// Analysis writes an analysis result as a Markdown document
func Analysis(w io.Writer, result types.AnalysisResult) error {
	md := markdown.NewMarkdown(w)

	title := "Policy Analysis"
	if result.SourceTitle != "" {
		title += ": " + result.SourceTitle
	}

	md.H1(title)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   propertyRows(result),
	})
	md.PlainText("")

	if result.WasTruncated {
		md.Note("This policy was very long, so only the first section was analyzed.")
		md.PlainText("")
	}

	if !result.UsedAI {
		md.Warning("AI-powered analysis was not available; this is a keyword-based summary.")
		md.PlainText("")
	}

	md.H2("Summary")
	md.PlainText("")
	md.PlainText(result.Summary)
	md.PlainText("")

	writeTopics(md, result.Topics)

	return md.Build()
}

func propertyRows(result types.AnalysisResult) [][]string {
	mode := "Brief"
	if result.IsDeepAnalysis {
		mode = "Deep"
	}

	engine := "Basic analysis"
	if result.UsedAI {
		engine = "AI"
	}

	rows := [][]string{}

	if result.SourceURL != "" {
		rows = append(rows, []string{"Source", result.SourceURL})
	}

	return append(rows,
		[]string{"Words", printer.Sprintf("%d", result.WordCount)},
		[]string{"Characters", printer.Sprintf("%d", result.CharacterCount)},
		[]string{"Reading time", printer.Sprintf("%d min", result.ReadingMinutes)},
		[]string{"Mode", mode},
		[]string{"Engine", engine},
	)
}

func writeTopics(md *markdown.Markdown, topics []types.TopicCount) {
	var rows [][]string

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Topic Mentions"),
		piechart.WithShowData(true),
	)

	for _, tc := range topics {
		if tc.Count == 0 {
			continue
		}

		rows = append(rows, []string{tc.Topic, printer.Sprintf("%d", tc.Count)})
		chart.LabelAndIntValue(tc.Topic, uint64(tc.Count)) //nolint:gosec
	}

	if len(rows) == 0 {
		return
	}

	md.H2("Key Topics")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Topic", "Mentions"},
		Rows:   rows,
	})
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// Links writes the policy links detected on a page as a Markdown document
func Links(w io.Writer, pageURL string, links []types.PolicyLink) error {
	md := markdown.NewMarkdown(w)

	md.H1("Policy Links")
	md.PlainText("")

	if pageURL != "" {
		md.PlainText("Page: " + pageURL)
		md.PlainText("")
	}

	if len(links) == 0 {
		md.Tip("No policy links were detected on this page.")

		return md.Build()
	}

	rows := make([][]string, 0, len(links))
	for _, l := range links {
		kind := l.Kind
		if kind == "" {
			kind = "-"
		}

		rows = append(rows, []string{l.Text, kind, l.URL})
	}

	md.PlainText(printer.Sprintf("Found %d policy link(s).", len(links)))
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Text", "Kind", "URL"},
		Rows:   rows,
	})

	return md.Build()
}
