// Package config loads PolicyPeek settings from a YAML file and POLICYPEEK_
// environment variables, falling back to struct defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/mcuadros/go-defaults"
)

const (
	// DefaultConfigFilePath is read when no config path is given
	DefaultConfigFilePath = "./config/.config.yaml"
	// EnvPrefix is the prefix of environment overrides, e.g. POLICYPEEK_SERVER_LISTEN
	EnvPrefix = "POLICYPEEK_"

	// ProviderOllama selects the local Ollama runtime
	ProviderOllama = "ollama"
	// ProviderCloudflare selects Workers AI
	ProviderCloudflare = "cloudflare"
	// ProviderNone disables model analysis
	ProviderNone = "none"
)

// Config holds service configuration
type Config struct {
	// Server configures the HTTP listener
	Server Server `json:"server" koanf:"server"`
	// Store configures the durable key-value store
	Store Store `json:"store" koanf:"store"`
	// AI selects and configures the language model host
	AI AI `json:"ai" koanf:"ai"`
	// Ollama configures the local model runtime
	Ollama Ollama `json:"ollama" koanf:"ollama"`
	// Cloudflare configures Workers AI and Browser Rendering
	Cloudflare Cloudflare `json:"cloudflare" koanf:"cloudflare"`
	// Slack configures link notifications
	Slack Slack `json:"slack" koanf:"slack"`
	// Fetcher configures policy document retrieval
	Fetcher Fetcher `json:"fetcher" koanf:"fetcher"`
	// Page configures page contexts
	Page Page `json:"page" koanf:"page"`
	// Background configures the background context
	Background Background `json:"background" koanf:"background"`
	// Discovery configures site-wide policy discovery
	Discovery Discovery `json:"discovery" koanf:"discovery"`
}

// Server settings for the HTTP listener
type Server struct {
	// Debug enables debug logging
	Debug bool `json:"debug" koanf:"debug" default:"false"`
	// Pretty enables human readable log output
	Pretty bool `json:"pretty" koanf:"pretty" default:"false"`
	// Listen is the address the server binds to
	Listen string `json:"listen" koanf:"listen" default:":8080"`
	// ReadTimeout bounds reading a request
	ReadTimeout time.Duration `json:"readtimeout" koanf:"readtimeout" default:"30s"`
	// WriteTimeout bounds writing a response; model downloads happen inside a request
	WriteTimeout time.Duration `json:"writetimeout" koanf:"writetimeout" default:"10m"`
	// RequestTimeout is the per-request handler deadline
	RequestTimeout time.Duration `json:"requesttimeout" koanf:"requesttimeout" default:"10m"`
	// ShutdownGracePeriod is how long in-flight requests may finish on shutdown
	ShutdownGracePeriod time.Duration `json:"shutdowngraceperiod" koanf:"shutdowngraceperiod" default:"10s"`
	// MaxBodySize caps request bodies in bytes
	MaxBodySize int64 `json:"maxbodysize" koanf:"maxbodysize" default:"5242880"`
}

// Store settings for the SQLite key-value store
type Store struct {
	// Path is the database file, or :memory:
	Path string `json:"path" koanf:"path" default:"policypeek.db"`
}

// AI settings shared by every model host
type AI struct {
	// Provider is ollama, cloudflare or none
	Provider string `json:"provider" koanf:"provider" default:"ollama"`
	// SystemPrompt overrides the default session system prompt
	SystemPrompt string `json:"systemprompt" koanf:"systemprompt"`
	// Language is the expected output language
	Language string `json:"language" koanf:"language" default:"en"`
}

// Ollama settings
type Ollama struct {
	// URL is the Ollama API base address
	URL string `json:"url" koanf:"url" default:"http://localhost:11434"`
	// Model is the model pulled and prompted
	Model string `json:"model" koanf:"model" default:"llama3.2"`
	// RequestTimeout bounds availability checks and prompts
	RequestTimeout time.Duration `json:"requesttimeout" koanf:"requesttimeout" default:"2m"`
}

// Cloudflare settings
type Cloudflare struct {
	// AccountID is the Cloudflare account identifier
	AccountID string `json:"accountid" koanf:"accountid" sensitive:"true"`
	// APIToken is the Cloudflare API token
	APIToken string `json:"apitoken" koanf:"apitoken" sensitive:"true"`
	// Model is the Workers AI text generation model
	Model string `json:"model" koanf:"model" default:"@cf/meta/llama-3.1-8b-instruct"`
	// RenderPages uses Browser Rendering when a plain fetch returns no text
	RenderPages bool `json:"renderpages" koanf:"renderpages" default:"false"`
	// NavigationTimeout bounds how long a rendered page may take to settle
	NavigationTimeout time.Duration `json:"navigationtimeout" koanf:"navigationtimeout" default:"45s"`
	// RequestTimeout bounds a single Cloudflare API call
	RequestTimeout time.Duration `json:"requesttimeout" koanf:"requesttimeout" default:"60s"`
}

// Slack settings
type Slack struct {
	// WebhookURL is the incoming webhook; notifications are off when empty
	WebhookURL string `json:"webhookurl" koanf:"webhookurl" sensitive:"true"`
	// Username overrides the webhook display name
	Username string `json:"username" koanf:"username" default:"PolicyPeek"`
	// RequestTimeout bounds a webhook post
	RequestTimeout time.Duration `json:"requesttimeout" koanf:"requesttimeout" default:"10s"`
}

// Fetcher settings
type Fetcher struct {
	// RequestsPerSecond is the sustained network fetch rate
	RequestsPerSecond float64 `json:"requestspersecond" koanf:"requestspersecond" default:"2"`
	// Burst is the number of fetches allowed back to back
	Burst int `json:"burst" koanf:"burst" default:"4"`
	// MaxBodyBytes caps how much of a fetched document is read
	MaxBodyBytes int64 `json:"maxbodybytes" koanf:"maxbodybytes" default:"5242880"`
	// RequestTimeout bounds a single fetch
	RequestTimeout time.Duration `json:"requesttimeout" koanf:"requesttimeout" default:"15s"`
}

// Page settings
type Page struct {
	// QuietWindow is how long DOM mutations must settle before a rescan
	QuietWindow time.Duration `json:"quietwindow" koanf:"quietwindow" default:"1s"`
	// Keywords replaces the policy keyword list when set
	Keywords []string `json:"keywords" koanf:"keywords"`
}

// Discovery settings
type Discovery struct {
	// Enabled exposes site discovery on the API
	Enabled bool `json:"enabled" koanf:"enabled" default:"true"`
	// Workers is how many well-known paths are probed at once
	Workers int `json:"workers" koanf:"workers" default:"4"`
	// Paths replaces the well-known policy paths when set
	Paths []string `json:"paths" koanf:"paths"`
	// OffsiteLinks keeps homepage policy links hosted on other domains
	OffsiteLinks bool `json:"offsitelinks" koanf:"offsitelinks" default:"false"`
	// IgnoreRobots probes paths robots.txt disallows
	IgnoreRobots bool `json:"ignorerobots" koanf:"ignorerobots" default:"false"`
}

// Background settings
type Background struct {
	// Retention is how long detected links are kept
	Retention time.Duration `json:"retention" koanf:"retention" default:"24h"`
	// SweepInterval is how often stale links are removed
	SweepInterval time.Duration `json:"sweepinterval" koanf:"sweepinterval" default:"1h"`
	// MessageTimeout bounds a request between contexts
	MessageTimeout time.Duration `json:"messagetimeout" koanf:"messagetimeout" default:"10s"`
}

// Load reads the config file at cfgFile when it exists, then applies
// environment overrides on top of the defaults
func Load(cfgFile *string) (*Config, error) {
	k := koanf.New(".")

	path := DefaultConfigFilePath
	if cfgFile != nil && *cfgFile != "" {
		path = *cfgFile
	}

	conf := &Config{}
	defaults.SetDefaults(conf)

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConfigRead, path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigRead, path, err)
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigRead, err)
	}

	if err := k.Unmarshal("", conf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigUnmarshal, err)
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	switch strings.ToLower(c.AI.Provider) {
	case ProviderOllama, ProviderCloudflare, ProviderNone:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.AI.Provider)
	}

	switch {
	case c.Fetcher.RequestsPerSecond <= 0:
		return fmt.Errorf("%w: fetcher.requestspersecond must be positive", ErrInvalidValue)
	case c.Background.Retention <= 0:
		return fmt.Errorf("%w: background.retention must be positive", ErrInvalidValue)
	case c.Background.SweepInterval <= 0:
		return fmt.Errorf("%w: background.sweepinterval must be positive", ErrInvalidValue)
	case c.Page.QuietWindow < 0:
		return fmt.Errorf("%w: page.quietwindow cannot be negative", ErrInvalidValue)
	}

	return nil
}

// envKey maps POLICYPEEK_SERVER_LISTEN to server.listen; comma separated
// values become lists
func envKey(key, value string) (string, any) {
	key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "_", ".")

	if strings.Contains(value, ",") {
		return key, strings.Split(value, ",")
	}

	return key, value
}
