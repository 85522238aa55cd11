package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultRequestTimeout bounds every request made over the bus
const DefaultRequestTimeout = 10 * time.Second

// Endpoint addresses a context on the bus
type Endpoint string

// Background is the endpoint of the single background context
const Background Endpoint = "background"

// TabEndpoint returns the endpoint of the page context for tabID
func TabEndpoint(tabID string) Endpoint {
	return Endpoint("tab:" + tabID)
}

// Bus delivers messages between contexts. Each message is serialized with
// the wire codec so contexts never share memory, and each request is
// delivered at most once.
type Bus struct {
	clock   clock.Clock
	timeout time.Duration

	mu      sync.RWMutex
	routers map[Endpoint]*Router
}

// BusOption configures a Bus
type BusOption func(*Bus)

// WithClock sets the clock used for request timeouts
func WithClock(c clock.Clock) BusOption {
	return func(b *Bus) {
		b.clock = c
	}
}

// WithTimeout overrides DefaultRequestTimeout
func WithTimeout(d time.Duration) BusOption {
	return func(b *Bus) {
		b.timeout = d
	}
}

// NewBus returns an empty bus
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		clock:   clock.New(),
		timeout: DefaultRequestTimeout,
		routers: map[Endpoint]*Router{},
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Register attaches a router to an endpoint, replacing any previous one
func (b *Bus) Register(endpoint Endpoint, r *Router) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.routers[endpoint] = r
}

// Unregister detaches the router at endpoint
func (b *Bus) Unregister(endpoint Endpoint) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.routers, endpoint)
}

type result struct {
	resp any
	err  error
}

// Request sends msg to the endpoint and waits for the response, the bus
// timeout, or ctx cancellation, whichever comes first
func (b *Bus) Request(ctx context.Context, from Sender, to Endpoint, msg Message) (any, error) {
	b.mu.RLock()
	router, ok := b.routers[to]
	b.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoReceiver, to)
	}

	data, err := Encode(msg)
	if err != nil {
		return nil, err
	}

	delivered, err := Decode(data)
	if err != nil {
		return nil, err
	}

	env := Envelope{
		ID:      uuid.NewString(),
		Sender:  from,
		Message: delivered,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan result, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				log.Error().Str("id", env.ID).Str("type", string(msg.Kind())).Str("to", string(to)).Interface("panic", p).Msg("message handler panicked")

				done <- result{err: fmt.Errorf("%w: %v", ErrHandlerPanic, p)}
			}
		}()

		resp, err := router.Dispatch(ctx, env)
		done <- result{resp: resp, err: err}
	}()

	timer := b.clock.Timer(b.timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		return r.resp, r.err
	case <-timer.C:
		log.Warn().Str("id", env.ID).Str("type", string(msg.Kind())).Str("to", string(to)).Msg("message request timed out")

		return nil, fmt.Errorf("%w after %s", ErrTimeout, b.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func request[T any](ctx context.Context, b *Bus, from Sender, to Endpoint, msg Message) (T, error) {
	var zero T

	resp, err := b.Request(ctx, from, to, msg)
	if err != nil {
		return zero, err
	}

	typed, ok := resp.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T", ErrUnexpectedResponse, resp)
	}

	return typed, nil
}

// NotifyLinks sends LINKS_DETECTED from a page context to the background
func (b *Bus) NotifyLinks(ctx context.Context, from Sender, msg LinksDetected) (Ack, error) {
	return request[Ack](ctx, b, from, Background, msg)
}

// PolicyLinks asks the page context of tabID for its links
func (b *Bus) PolicyLinks(ctx context.Context, tabID string) (LinksResponse, error) {
	return request[LinksResponse](ctx, b, Sender{}, TabEndpoint(tabID), GetPolicyLinks{})
}

// Rescan asks the page context of tabID to rescan
func (b *Bus) Rescan(ctx context.Context, tabID string) (RescanResponse, error) {
	return request[RescanResponse](ctx, b, Sender{}, TabEndpoint(tabID), RescanPage{})
}

// AnalyzePolicy asks the background for the text of a policy URL
func (b *Bus) AnalyzePolicy(ctx context.Context, url, title string) (AnalyzeResponse, error) {
	return request[AnalyzeResponse](ctx, b, Sender{}, Background, AnalyzePolicy{URL: url, Title: title})
}

// AICapabilities asks the background for model availability
func (b *Bus) AICapabilities(ctx context.Context) (CapabilitiesResponse, error) {
	return request[CapabilitiesResponse](ctx, b, Sender{}, Background, GetAICapabilities{})
}
