package sources

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"gamelens/internal/models"
	"gamelens/internal/providers"
	"gamelens/internal/structures"
)

// Guard protects one provider with a token-bucket limiter, a circuit breaker
// and a per-call timeout. Failures leave it as *models.ProviderError.
type Guard struct {
	source  string
	timeout time.Duration
	openFor time.Duration
	breaker *gobreaker.CircuitBreaker[any]
	limiter *rate.Limiter
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewGuard(source string, conf structures.ProvidersConfig, logger providers.Logger, metrics providers.MetricsProviderInterface) *Guard {
	g := &Guard{
		source:  source,
		timeout: conf.RequestTimeout,
		openFor: conf.BreakerTimeout,
		logger:  logger,
		metrics: metrics,
	}

	limit := rate.Inf
	if conf.RateLimit > 0 {
		limit = rate.Limit(conf.RateLimit)
	}
	g.limiter = rate.NewLimiter(limit, max(conf.Burst, 1))

	maxFailures := conf.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	g.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        source,
		MaxRequests: 1,
		Timeout:     conf.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: healthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf(providers.TypeProvider, "%s breaker: %s -> %s", name, from, to)
			metrics.SetBreakerState(name, stateValue(to))
		},
	})
	metrics.SetBreakerState(source, stateValue(gobreaker.StateClosed))

	return g
}

func (g *Guard) Source() string {
	return g.source
}

func (g *Guard) State() gobreaker.State {
	return g.breaker.State()
}

func (g *Guard) execute(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, g.fail(AsProviderError(g.source, err))
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	out, err := g.breaker.Execute(func() (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, AsProviderError(g.source, err)
		}
		return v, nil
	})
	if err == nil {
		return out, nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		perr := models.NewProviderError(g.source, models.KindServer, "provider temporarily unavailable")
		perr.RetryAfter = g.breakerRetryAfter()
		perr.Context = err.Error()
		return nil, g.fail(perr)
	}
	return nil, g.fail(AsProviderError(g.source, err))
}

// breakerRetryAfter mirrors gobreaker's default open-state timeout.
func (g *Guard) breakerRetryAfter() time.Duration {
	if g.openFor > 0 {
		return g.openFor
	}
	return 60 * time.Second
}

func (g *Guard) fail(perr *models.ProviderError) *models.ProviderError {
	g.metrics.IncProviderErrors(g.source, string(perr.Kind))
	g.logger.Debugf(providers.TypeProvider, "%s [%s]", perr.Error(), perr.CorrelationID)
	return perr
}

// call runs fn through the guard and restores its result type.
func call[T any](ctx context.Context, g *Guard, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	out, err := g.execute(ctx, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}

// healthy reports whether err leaves the provider looking alive. Auth and
// parse failures, and 4xx answers other than 429, come from a provider that
// responded.
func healthy(err error) bool {
	if err == nil {
		return true
	}
	var perr *models.ProviderError
	if !errors.As(err, &perr) {
		return false
	}
	switch perr.Kind {
	case models.KindAuth, models.KindParse:
		return true
	case models.KindUnknown:
		return perr.HTTPStatus != nil && *perr.HTTPStatus < 500
	default:
		return false
	}
}

func stateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
