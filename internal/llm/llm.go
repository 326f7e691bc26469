package llm

import (
	"context"
	"errors"
	"fmt"
)

// Client is the provider-facing seam. Generate returns the model's raw text;
// callers decide whether to parse it.
type Client interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
	Close() error
}

// Options tunes a single completion. Zero values mean provider defaults.
type Options struct {
	Temperature float32
	MaxTokens   int
}

var ErrEmptyResponse = errors.New("llm: empty response from model")

// CallError wraps any failure talking to a provider: transport, auth,
// rate limit, timeout or an empty completion.
type CallError struct {
	Provider string
	Err      error
}

func (e *CallError) Error() string { return fmt.Sprintf("llm: %s call failed: %v", e.Provider, e.Err) }
func (e *CallError) Unwrap() error { return e.Err }

func callErr(provider string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CallError
	if errors.As(err, &ce) {
		return err
	}
	return &CallError{Provider: provider, Err: err}
}
