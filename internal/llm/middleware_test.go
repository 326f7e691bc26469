package llm

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeassist/internal/observability"
)

type slowClient struct{}

func (slowClient) Name() string { return "slow" }
func (slowClient) Close() error { return nil }
func (slowClient) Generate(ctx context.Context, _ string, _ Options) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(5 * time.Second):
		return "late", nil
	}
}

func TestWithTimeoutExpiresAsCallError(t *testing.T) {
	cli := Wrap(slowClient{}, WithTimeout(20*time.Millisecond))
	_, err := cli.Generate(context.Background(), "p", Options{})
	require.Error(t, err)
	var ce *CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "slow", ce.Provider)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWrapOrderAndPassthrough(t *testing.T) {
	var buf bytes.Buffer
	fake := NewFakeClient(`{"ok":true}`)
	cli := Wrap(fake, WithLogging(log.New(&buf, "", 0)), WithTimeout(time.Second))

	out, err := cli.Generate(context.Background(), "hello", Options{})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	assert.Equal(t, "FakeLLM", cli.Name())
	assert.Contains(t, buf.String(), "LLM request (FakeLLM): 5 bytes")
	assert.Equal(t, 1, fake.Calls())
	assert.Equal(t, "hello", fake.LastPrompt())
}

func TestWithMetricsRecordsOutcome(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	ok := Wrap(NewFakeClient("x"), WithMetrics(m))
	bad := Wrap(NewFailingFakeClient(errors.New("429 rate limited")), WithMetrics(m))

	_, _ = ok.Generate(context.Background(), "p", Options{})
	_, err := bad.Generate(context.Background(), "p", Options{})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderCalls.WithLabelValues("FakeLLM", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderCalls.WithLabelValues("FakeLLM", "error")))
}

func TestFakeClientRepeatsLastResponse(t *testing.T) {
	fake := NewFakeClient("a", "b")
	ctx := context.Background()
	for _, want := range []string{"a", "b", "b"} {
		got, err := fake.Generate(ctx, "p", Options{})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 3, fake.Calls())
}

func TestFakeClientWithoutResponsesFails(t *testing.T) {
	_, err := NewFakeClient().Generate(context.Background(), "p", Options{})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
