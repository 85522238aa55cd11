package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/theopenlane/policypeek/internal/report"
)

// discoverCmd finds the policy pages of a whole site
var discoverCmd = &cobra.Command{
	Use:   "discover <site>",
	Short: "find the policy pages of a site from its homepage and well-known paths",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := discover(cmd.Context(), cmd.OutOrStdout(), args[0])
		cobra.CheckErr(err)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().String("format", formatMarkdown, "output format: markdown or json")
}

func discover(ctx context.Context, w io.Writer, site string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	defer a.close()

	links, err := a.discoverer.Discover(ctx, site)
	if err != nil {
		return err
	}

	log.Debug().Str("site", site).Int("links", len(links)).Msg("discovery complete")

	return writeOutput(w, k.String("format"), links, func(w io.Writer) error {
		return report.Links(w, site, links)
	})
}
