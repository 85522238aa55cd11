package ai

import "context"

// SessionConfig configures a new model session
type SessionConfig struct {
	// SystemPrompt primes the session for policy analysis
	SystemPrompt string
	// Language is the expected output language
	Language string
}

// DefaultSystemPrompt is used when no system prompt is configured
const DefaultSystemPrompt = "You are a helpful AI assistant specialized in analyzing privacy policies and terms of service documents. " +
	"Provide clear, concise summaries that highlight key points about data collection, user rights, and important terms. " +
	"Search for potential safety risks that are being hidden by fancy wording and provide the results in small bullet points for easy reading."

// DefaultSessionConfig returns the configuration used by the analysis view
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		SystemPrompt: DefaultSystemPrompt,
		Language:     "en",
	}
}

// Monitor receives download progress as a fraction between 0 and 1
type Monitor func(loaded float64)

// Host is a language model runtime
type Host interface {
	// Availability reports the current model state
	Availability(ctx context.Context) (Availability, error)
	// Create instantiates a session, downloading the model first if needed
	Create(ctx context.Context, cfg SessionConfig, monitor Monitor) (Session, error)
}

// Session is a live conversation with the model
type Session interface {
	// Prompt submits a prompt and returns the complete response
	Prompt(ctx context.Context, prompt string) (string, error)
}

// Provider wraps an optional Host: Unsupported or Supported(host)
type Provider struct {
	host Host
}

// Unsupported returns a provider for runtimes without model support
func Unsupported() Provider {
	return Provider{}
}

// Supported returns a provider backed by host; a nil host is Unsupported.
// A nil pointer stored in host is not detected, so callers that build hosts
// from optional clients must check the client before wrapping it.
func Supported(host Host) Provider {
	if host == nil {
		return Unsupported()
	}

	return Provider{host: host}
}

// Host returns the wrapped host and whether the capability is present
func (p Provider) Host() (Host, bool) {
	return p.host, p.host != nil
}
