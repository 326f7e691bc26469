package llm

import (
	"context"
	"sync"
)

// FakeClient returns scripted responses for offline runs and tests.
// Responses are consumed in order; the last one repeats.
type FakeClient struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
	prompts   []string
}

func NewFakeClient(responses ...string) *FakeClient {
	return &FakeClient{responses: responses}
}

// NewFailingFakeClient returns a client whose every call fails with err.
func NewFailingFakeClient(err error) *FakeClient {
	return &FakeClient{err: err}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Generate(ctx context.Context, prompt string, _ Options) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if err := ctx.Err(); err != nil {
		return "", callErr("fake", err)
	}
	if f.err != nil {
		return "", callErr("fake", f.err)
	}
	if len(f.responses) == 0 {
		return "", callErr("fake", ErrEmptyResponse)
	}
	i := f.calls - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}

// Calls reports how many times Generate ran.
func (f *FakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastPrompt returns the most recent prompt, or "" if never called.
func (f *FakeClient) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}
