package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"codeassist/internal/observability"
)

// Config selects and tunes the provider. It is read once at startup.
type Config struct {
	Provider     string
	GroqAPIKey   string
	GroqModel    string
	GeminiAPIKey string
	GeminiModel  string
	Timeout      time.Duration
}

// ResolveProvider returns the explicit provider or, when empty, groq if a
// Groq key is present and gemini otherwise.
func (c Config) ResolveProvider() string {
	if p := strings.ToLower(strings.TrimSpace(c.Provider)); p != "" {
		return p
	}
	if strings.TrimSpace(c.GroqAPIKey) != "" {
		return ProviderGroq
	}
	return ProviderGemini
}

func (c Config) apiKey(provider string) string {
	switch provider {
	case ProviderGroq:
		return c.GroqAPIKey
	case ProviderGemini:
		return c.GeminiAPIKey
	}
	return ""
}

// New computes provider availability and, when available, builds the
// wrapped client. When unavailable the returned Client is nil and must not
// be called.
func New(ctx context.Context, cfg Config, logger *log.Logger, metrics *observability.Metrics) (Client, Availability, error) {
	provider := cfg.ResolveProvider()
	avail := CheckCredential(provider, cfg.apiKey(provider))
	if !avail.Configured() {
		return nil, avail, nil
	}

	var base Client
	switch provider {
	case ProviderGroq:
		base = NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel)
	case ProviderGemini:
		g, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, Unavailable("gemini client init failed"), fmt.Errorf("init gemini client: %w", err)
		}
		base = g
	}
	return Wrap(base, WithLogging(logger), WithMetrics(metrics), WithTimeout(cfg.Timeout)), avail, nil
}
