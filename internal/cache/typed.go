package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Fetch wraps FetchWithCache for a typed producer, storing values as JSON.
// A cached payload that no longer decodes into T is invalidated.
func Fetch[T any](ctx context.Context, m ManagerInterface, key string, produce func(ctx context.Context) (T, error), ttl time.Duration, sourceTag string) (T, bool, error) {
	var zero T
	producer := func(ctx context.Context) ([]byte, error) {
		v, err := produce(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	}

	res, err := m.FetchWithCache(ctx, key, producer, ttl, sourceTag)
	if err != nil {
		return zero, false, err
	}
	if !res.Found {
		return zero, false, nil
	}

	var out T
	if err := json.Unmarshal(res.Payload, &out); err != nil {
		m.Invalidate(key)
		return zero, false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return out, res.Stale, nil
}
