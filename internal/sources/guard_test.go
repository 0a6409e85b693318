package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamelens/internal/models"
	"gamelens/internal/structures"
	"gamelens/internal/testutil"
)

func guardConfig() structures.ProvidersConfig {
	return structures.ProvidersConfig{
		MaxFailures:    2,
		BreakerTimeout: time.Hour,
	}
}

func TestGuard_PassesResultThrough(t *testing.T) {
	g := NewGuard("steam", guardConfig(), &testutil.MockLogger{}, &testutil.MockMetrics{})

	v, err := call(context.Background(), g, func(context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestGuard_WrapsPlainErrors(t *testing.T) {
	metrics := &testutil.MockMetrics{}
	g := NewGuard("itad", guardConfig(), &testutil.MockLogger{}, metrics)

	_, err := call(context.Background(), g, func(context.Context) (int, error) {
		return 0, errors.New("connection reset")
	})

	var perr *models.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "itad", perr.Source)
	assert.Equal(t, models.KindNetwork, perr.Kind)
	assert.True(t, perr.Retryable)
	assert.EqualValues(t, 1, metrics.ProviderErrors.Load())
}

func TestGuard_TransportFailuresOpenBreaker(t *testing.T) {
	g := NewGuard("steam", guardConfig(), &testutil.MockLogger{}, &testutil.MockMetrics{})
	calls := 0
	refused := func(context.Context) (int, error) {
		calls++
		return 0, errors.New("dial tcp: connection refused")
	}

	for i := 0; i < 10; i++ {
		_, err := call(context.Background(), g, refused)
		require.Error(t, err)
	}
	assert.Equal(t, 2, calls)
	assert.Equal(t, gobreaker.StateOpen, g.State())
}

func TestGuard_ClientErrorsDoNotTrip(t *testing.T) {
	g := NewGuard("steam", guardConfig(), &testutil.MockLogger{}, &testutil.MockMetrics{})
	notFound := func(context.Context) (int, error) {
		return 0, HTTPError("steam", 404, "no such app")
	}

	for i := 0; i < 5; i++ {
		_, _ = call(context.Background(), g, notFound)
	}
	assert.Equal(t, gobreaker.StateClosed, g.State())
}

func TestHealthy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"auth", HTTPError("steam", 401, "bad key"), true},
		{"parse", models.NewProviderError("itad", models.KindParse, "bad body"), true},
		{"not found", HTTPError("itad", 404, "missing"), true},
		{"throttled", HTTPError("itad", 429, "slow down"), false},
		{"server", HTTPError("itad", 503, "down"), false},
		{"network", models.NewProviderError("hltb", models.KindNetwork, "refused"), false},
		{"unknown without response", models.NewProviderError("hltb", models.KindUnknown, "?"), false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, healthy(tt.err))
		})
	}
}

func TestGuard_TransientFailuresOpenBreaker(t *testing.T) {
	metrics := &testutil.MockMetrics{}
	g := NewGuard("itad", guardConfig(), &testutil.MockLogger{}, metrics)
	calls := 0
	failing := func(context.Context) (int, error) {
		calls++
		return 0, HTTPError("itad", 502, "bad gateway")
	}

	_, _ = call(context.Background(), g, failing)
	_, _ = call(context.Background(), g, failing)
	assert.Equal(t, gobreaker.StateOpen, g.State())
	assert.Equal(t, 2, metrics.BreakerState("itad"))

	_, err := call(context.Background(), g, failing)
	assert.Equal(t, 2, calls, "open breaker must not reach the provider")

	var perr *models.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, models.KindServer, perr.Kind)
	assert.True(t, perr.Retryable)
	assert.Equal(t, time.Hour, perr.RetryAfter)
}

func TestGuard_PermanentFailuresDoNotTrip(t *testing.T) {
	g := NewGuard("steam", guardConfig(), &testutil.MockLogger{}, &testutil.MockMetrics{})
	authFail := func(context.Context) (int, error) {
		return 0, HTTPError("steam", 401, "invalid key")
	}

	for i := 0; i < 5; i++ {
		_, err := call(context.Background(), g, authFail)
		var perr *models.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, models.KindAuth, perr.Kind)
	}
	assert.Equal(t, gobreaker.StateClosed, g.State())
}

func TestGuard_CancelledContext(t *testing.T) {
	conf := guardConfig()
	conf.RateLimit = 0.001
	conf.Burst = 1
	g := NewGuard("hltb", conf, &testutil.MockLogger{}, &testutil.MockMetrics{})

	ok := func(context.Context) (int, error) { return 1, nil }
	_, err := call(context.Background(), g, ok)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = call(ctx, g, ok)

	var perr *models.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, models.KindNetwork, perr.Kind)
}

func TestGuard_RequestTimeout(t *testing.T) {
	conf := guardConfig()
	conf.RequestTimeout = 20 * time.Millisecond
	g := NewGuard("hltb", conf, &testutil.MockLogger{}, &testutil.MockMetrics{})

	_, err := call(context.Background(), g, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	var perr *models.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, models.KindNetwork, perr.Kind)
	assert.Equal(t, "request timed out", perr.Message)
}

func TestNewGuardedSet_SkipsMissingProviders(t *testing.T) {
	catalog, err := LoadCatalog("")
	require.NoError(t, err)

	set := NewGuardedSet(Set{Pricing: catalog}, testutil.Config(), &testutil.MockLogger{}, &testutil.MockMetrics{})
	assert.Nil(t, set.Ownership)
	assert.Nil(t, set.Estimate)
	assert.Nil(t, set.Wishlist)
	require.NotNil(t, set.Pricing)

	history, err := set.Pricing.PriceHistory(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Empty(t, history)
}
