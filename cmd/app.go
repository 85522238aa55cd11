package cmd

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/theopenlane/policypeek/config"
	"github.com/theopenlane/policypeek/internal/ai"
	"github.com/theopenlane/policypeek/internal/api"
	"github.com/theopenlane/policypeek/internal/analysis"
	"github.com/theopenlane/policypeek/internal/background"
	"github.com/theopenlane/policypeek/internal/classifier"
	"github.com/theopenlane/policypeek/internal/cloudflare"
	"github.com/theopenlane/policypeek/internal/discovery"
	"github.com/theopenlane/policypeek/internal/fetcher"
	"github.com/theopenlane/policypeek/internal/messaging"
	"github.com/theopenlane/policypeek/internal/ollama"
	"github.com/theopenlane/policypeek/internal/page"
	"github.com/theopenlane/policypeek/internal/slack"
	"github.com/theopenlane/policypeek/internal/store"
)

// app holds the running contexts shared by every command
type app struct {
	cfg        *config.Config
	store      *store.Store
	bus        *messaging.Bus
	models     *ai.Manager
	tabs       *page.Registry
	fetcher    *fetcher.Fetcher
	background *background.Service
	analysis   *analysis.Controller
	discoverer *discovery.Discoverer
}

// newApp opens the store and starts the background context
func newApp(cfg *config.Config) (*app, error) {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	cfClient := setupCloudflare(cfg)

	bus := messaging.NewBus(messaging.WithTimeout(cfg.Background.MessageTimeout))
	models := ai.NewManager(setupProvider(cfg, cfClient),
		ai.WithSessionConfig(sessionConfig(cfg)),
		ai.WithProgress(func(percent int) {
			log.Info().Int("percent", percent).Msg("downloading AI model")
		}),
	)

	linkClassifier := classifier.New()
	if len(cfg.Page.Keywords) > 0 {
		linkClassifier = classifier.New(classifier.WithKeywords(cfg.Page.Keywords))
	}

	pageOpts := []page.Option{
		page.WithQuietWindow(cfg.Page.QuietWindow),
		page.WithClassifier(linkClassifier),
	}

	tabs := page.NewRegistry(bus, st, pageOpts...)

	fetchOpts := []fetcher.Option{
		fetcher.WithTabSource(tabs),
		fetcher.WithHTTPClient(&http.Client{Timeout: cfg.Fetcher.RequestTimeout}),
		fetcher.WithRateLimit(cfg.Fetcher.RequestsPerSecond, cfg.Fetcher.Burst),
		fetcher.WithMaxBodyBytes(int(cfg.Fetcher.MaxBodyBytes)),
	}

	if cfClient != nil && cfg.Cloudflare.RenderPages {
		fetchOpts = append(fetchOpts, fetcher.WithRenderer(cfClient))
	}

	f := fetcher.New(fetchOpts...)

	bgOpts := []background.Option{
		background.WithRetention(cfg.Background.Retention),
		background.WithSweepInterval(cfg.Background.SweepInterval),
	}

	if notifier := setupSlack(cfg); notifier != nil {
		bgOpts = append(bgOpts, background.WithNotifier(notifier))
	}

	bg := background.New(bus, st, f, models, bgOpts...)
	bg.Start()

	return &app{
		cfg:        cfg,
		store:      st,
		bus:        bus,
		models:     models,
		tabs:       tabs,
		fetcher:    f,
		background: bg,
		analysis:   analysis.New(bus, models, st),
		discoverer: discovery.New(f,
			discovery.WithClassifier(linkClassifier),
			discovery.WithWorkers(cfg.Discovery.Workers),
			discovery.WithPaths(cfg.Discovery.Paths),
			discovery.WithOffsiteLinks(cfg.Discovery.OffsiteLinks),
			discovery.WithIgnoreRobots(cfg.Discovery.IgnoreRobots),
		),
	}, nil
}

// close releases every context and the store
func (a *app) close() {
	a.tabs.CloseAll()
	a.background.Stop()
	a.models.Release()

	if err := a.store.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close store")
	}
}

// siteDiscoverer returns the discoverer the API exposes, nil when disabled
func (a *app) siteDiscoverer() api.Discoverer {
	if !a.cfg.Discovery.Enabled {
		return nil
	}

	return a.discoverer
}

func sessionConfig(cfg *config.Config) ai.SessionConfig {
	sc := ai.DefaultSessionConfig()

	if cfg.AI.SystemPrompt != "" {
		sc.SystemPrompt = cfg.AI.SystemPrompt
	}

	if cfg.AI.Language != "" {
		sc.Language = cfg.AI.Language
	}

	return sc
}

// setupProvider selects the model host named by ai.provider
func setupProvider(cfg *config.Config, cfClient *cloudflare.Client) ai.Provider {
	switch strings.ToLower(cfg.AI.Provider) {
	case config.ProviderOllama:
		client, err := ollama.New(cfg.Ollama.URL, cfg.Ollama.Model,
			ollama.WithHTTPClient(&http.Client{Timeout: cfg.Ollama.RequestTimeout}),
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize ollama client, AI analysis disabled")
			return ai.Unsupported()
		}

		log.Info().Str("url", cfg.Ollama.URL).Str("model", client.Model()).Msg("ollama model host configured")

		return ai.Supported(client)
	case config.ProviderCloudflare:
		// a nil *cloudflare.Client must not reach ai.Supported
		if cfClient == nil {
			log.Warn().Msg("cloudflare provider selected but not configured, AI analysis disabled")
			return ai.Unsupported()
		}

		log.Info().Str("model", cfClient.Model()).Msg("workers AI model host configured")

		return ai.Supported(cfClient)
	default:
		log.Info().Str("provider", cfg.AI.Provider).Msg("no model host configured, using basic analysis")
		return ai.Unsupported()
	}
}

// setupCloudflare initializes the Cloudflare client from config, returning nil when unconfigured
func setupCloudflare(cfg *config.Config) *cloudflare.Client {
	if cfg.Cloudflare.AccountID == "" || cfg.Cloudflare.APIToken == "" {
		log.Debug().Msg("cloudflare not configured, skipping")
		return nil
	}

	client, err := cloudflare.New(
		cfg.Cloudflare.AccountID,
		cfg.Cloudflare.APIToken,
		cloudflare.WithHTTPClient(&http.Client{Timeout: cfg.Cloudflare.RequestTimeout}),
		cloudflare.WithModel(cfg.Cloudflare.Model),
		cloudflare.WithNavigationTimeout(cfg.Cloudflare.NavigationTimeout),
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize cloudflare client")
		return nil
	}

	return client
}

// setupSlack initializes the Slack webhook client from config, returning nil when unconfigured
func setupSlack(cfg *config.Config) *slack.Client {
	if cfg.Slack.WebhookURL == "" {
		log.Info().Msg("slack notifications not configured, skipping")
		return nil
	}

	client, err := slack.New(
		cfg.Slack.WebhookURL,
		slack.WithHTTPClient(&http.Client{Timeout: cfg.Slack.RequestTimeout}),
		slack.WithUsername(cfg.Slack.Username),
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize slack client")
		return nil
	}

	log.Info().Msg("slack notifications configured")

	return client
}
