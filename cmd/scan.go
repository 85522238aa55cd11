package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/theopenlane/policypeek/internal/report"
)

const cliTabID = "cli"

// scanCmd loads a page and lists the policy links found on it
var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "list the policy links on a web page",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := scan(cmd.Context(), cmd.OutOrStdout(), args[0])
		cobra.CheckErr(err)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().String("format", formatMarkdown, "output format: markdown or json")
}

func scan(ctx context.Context, w io.Writer, pageURL string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	defer a.close()

	html, err := a.fetcher.HTML(ctx, pageURL)
	if err != nil {
		return err
	}

	pc, err := a.tabs.Open(ctx, cliTabID, pageURL, strings.NewReader(html))
	if err != nil {
		return err
	}

	// a no-op when auto scan already ran on open
	pc.Scan(ctx)

	links := pc.Links()

	log.Debug().Str("url", pageURL).Int("links", len(links)).Msg("scan complete")

	return writeOutput(w, k.String("format"), links, func(w io.Writer) error {
		return report.Links(w, pc.Document().URL(), links)
	})
}

// stdinPath is the --file value that reads policy text from standard input
const stdinPath = "-"

func readInput(path string) (string, error) {
	if path == stdinPath {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}

	data, err := os.ReadFile(path)

	return string(data), err
}
