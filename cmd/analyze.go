package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/theopenlane/policypeek/internal/analysis"
	"github.com/theopenlane/policypeek/internal/report"
)

// analyzeCmd summarizes a policy from a URL or a text file
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "summarize a privacy policy or terms of service",
	Run: func(cmd *cobra.Command, _ []string) {
		err := analyze(cmd.Context(), cmd.OutOrStdout())
		cobra.CheckErr(err)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().String("url", "", "address of the policy to analyze")
	analyzeCmd.Flags().String("title", "", "title shown with the result")
	analyzeCmd.Flags().String("file", "", "file holding the policy text, - for stdin")
	analyzeCmd.Flags().Bool("deep", false, "run the detailed analysis (requires AI)")
	analyzeCmd.Flags().Bool("download", false, "download the AI model when it is not installed")
	analyzeCmd.Flags().String("format", formatMarkdown, "output format: markdown or json")
}

func analyze(ctx context.Context, w io.Writer) error {
	pageURL, file := k.String("url"), k.String("file")
	if pageURL == "" && file == "" {
		return ErrNoInput
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	defer a.close()

	download := k.Bool("download")

	var view analysis.View

	if pageURL != "" {
		view = a.analysis.Init(ctx, pageURL, k.String("title"))

		if view.Phase == analysis.PhaseDownloadPrompt {
			view = answerDownloadPrompt(ctx, a, download)
		}
	} else {
		text, err := readInput(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}

		// a CLI run is a user action; without --download it must not start a download
		if !download && a.models.CheckAvailability(ctx).NeedsDownload() {
			a.analysis.SkipDownload(ctx)
		}

		view, err = a.analysis.AnalyzeText(ctx, text)
		if err != nil {
			return err
		}
	}

	if view.Phase != analysis.PhaseResult || view.Result == nil {
		return fmt.Errorf("%w: %s", ErrAnalysisFailed, view.Error)
	}

	if k.Bool("deep") {
		view, err = a.analysis.Deep(ctx)
		if err != nil {
			return err
		}
	}

	result := *view.Result

	return writeOutput(w, k.String("format"), result, func(w io.Writer) error {
		return report.Analysis(w, result)
	})
}

func answerDownloadPrompt(ctx context.Context, a *app, download bool) analysis.View {
	if download {
		return a.analysis.DownloadModel(ctx)
	}

	log.Info().Msg("AI model is not installed, using basic analysis; rerun with --download to install it")

	return a.analysis.SkipDownload(ctx)
}
