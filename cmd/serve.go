package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/theopenlane/policypeek/internal/api"
)

// serveCmd is the cobra command that starts the policypeek API server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the policypeek api server",
	Run: func(cmd *cobra.Command, _ []string) {
		err := serve(cmd.Context())
		cobra.CheckErr(err)
	},
}

// init registers the serve command on the root command
func init() {
	rootCmd.AddCommand(serveCmd)
}

// serve starts the HTTP server and the link sweeper and stops both when ctx ends
func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	defer a.close()

	handler := api.NewRouter(
		api.NewHandler(a.bus, a.analysis, a.tabs, a.store, a.models, a.siteDiscoverer()),
		cfg.Server.MaxBodySize,
		cfg.Server.RequestTimeout,
	)

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.background.RunSweeper(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGracePeriod)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}

		return nil
	})

	g.Go(func() error {
		log.Info().Str("listen", cfg.Server.Listen).Str("store", a.store.Path()).Msg("starting policypeek service")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}

		return nil
	})

	return g.Wait()
}
