package messaging

import (
	"context"
	"fmt"
)

// Router dispatches messages to the handlers a context supports. A nil
// handler means the context does not accept that kind.
type Router struct {
	OnLinksDetected     func(ctx context.Context, from Sender, msg LinksDetected) (Ack, error)
	OnGetPolicyLinks    func(ctx context.Context, from Sender, msg GetPolicyLinks) (LinksResponse, error)
	OnRescanPage        func(ctx context.Context, from Sender, msg RescanPage) (RescanResponse, error)
	OnAnalyzePolicy     func(ctx context.Context, from Sender, msg AnalyzePolicy) (AnalyzeResponse, error)
	OnGetAICapabilities func(ctx context.Context, from Sender, msg GetAICapabilities) (CapabilitiesResponse, error)
}

// Dispatch invokes the handler for env.Message and returns its typed response
func (r *Router) Dispatch(ctx context.Context, env Envelope) (any, error) {
	switch m := env.Message.(type) {
	case LinksDetected:
		if r.OnLinksDetected == nil {
			return nil, noHandler(m)
		}

		return r.OnLinksDetected(ctx, env.Sender, m)
	case GetPolicyLinks:
		if r.OnGetPolicyLinks == nil {
			return nil, noHandler(m)
		}

		return r.OnGetPolicyLinks(ctx, env.Sender, m)
	case RescanPage:
		if r.OnRescanPage == nil {
			return nil, noHandler(m)
		}

		return r.OnRescanPage(ctx, env.Sender, m)
	case AnalyzePolicy:
		if r.OnAnalyzePolicy == nil {
			return nil, noHandler(m)
		}

		return r.OnAnalyzePolicy(ctx, env.Sender, m)
	case GetAICapabilities:
		if r.OnGetAICapabilities == nil {
			return nil, noHandler(m)
		}

		return r.OnGetAICapabilities(ctx, env.Sender, m)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownMessageType, env.Message)
	}
}

func noHandler(m Message) error {
	return fmt.Errorf("%w: %s", ErrNoHandler, m.Kind())
}
