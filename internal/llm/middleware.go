package llm

import (
	"context"
	"errors"
	"log"
	"time"

	"codeassist/internal/observability"
)

// Middleware decorates a Client to inject cross-cutting concerns
// (timeouts, logging, metrics).
type Middleware func(Client) Client

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Client, mws ...Middleware) Client {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Timeout --------

// DefaultTimeout bounds a single provider round trip.
const DefaultTimeout = 30 * time.Second

// WithTimeout bounds every Generate call by d. Expiry surfaces as a
// *CallError wrapping context.DeadlineExceeded.
func WithTimeout(d time.Duration) Middleware {
	if d <= 0 {
		d = DefaultTimeout
	}
	return func(next Client) Client {
		return &timeoutClient{next: next, d: d}
	}
}

type timeoutClient struct {
	next Client
	d    time.Duration
}

func (t *timeoutClient) Name() string { return t.next.Name() }
func (t *timeoutClient) Close() error { return t.next.Close() }
func (t *timeoutClient) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	out, err := t.next.Generate(ctx, prompt, opts)
	if err != nil {
		return "", callErr(t.next.Name(), err)
	}
	return out, nil
}

// -------- Logging --------

// WithLogging logs request size, latency and errors. Provide a custom logger or nil
// to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next Client) Client {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next Client
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }
func (l *logging) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	start := time.Now()
	l.log.Printf("LLM request (%s): %d bytes", l.next.Name(), len(prompt))
	out, err := l.next.Generate(ctx, prompt, opts)
	if err != nil {
		l.log.Printf("LLM error (%s) after %s: %v", l.next.Name(), time.Since(start).Round(time.Millisecond), err)
		return out, err
	}
	l.log.Printf("LLM response (%s): %d bytes in %s", l.next.Name(), len(out), time.Since(start).Round(time.Millisecond))
	return out, nil
}

// -------- Metrics --------

// WithMetrics records call outcome and latency. A nil m disables recording.
func WithMetrics(m *observability.Metrics) Middleware {
	return func(next Client) Client {
		return &metered{next: next, m: m}
	}
}

type metered struct {
	next Client
	m    *observability.Metrics
}

func (c *metered) Name() string { return c.next.Name() }
func (c *metered) Close() error { return c.next.Close() }
func (c *metered) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	start := time.Now()
	out, err := c.next.Generate(ctx, prompt, opts)
	c.m.ObserveProviderCall(c.next.Name(), outcome(err), time.Since(start).Seconds())
	return out, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
