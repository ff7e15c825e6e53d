package presetcache

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultSetTimeout   = 5 * time.Second
)

// entry is the cached form of a value. StoredAt drives refresh-ahead.
type entry[T any] struct {
	Value    T         `json:"value"`
	StoredAt time.Time `json:"stored_at"`
}

// epochs counts invalidations per key. A value fetched under an older epoch than the
// current one may predate a save and must not be cached.
type epochs struct {
	mu sync.Mutex
	m  map[string]uint64
}

func (e *epochs) current(key string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.m[key]
}

func (e *epochs) bump(keys ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.m == nil {
		e.m = make(map[string]uint64)
	}
	for _, k := range keys {
		e.m[k]++
	}
}

// addTTLJitter adds up to ±15s random jitter to TTL to avoid mass expiration.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	jitter := time.Duration(rand.Intn(30)-15) * time.Second
	if ttl+jitter <= 0 {
		return ttl
	}
	return ttl + jitter
}

// readThrough serves key from the cache, loading it with fetch on a miss. Entries
// older than half the TTL are served and refreshed in the background. Cache errors
// never fail the read; they are treated as a miss.
func readThrough[T any](ctx context.Context, r *Repository, key string, fetch FetchFunc[T]) (T, error) {
	var zero T

	var cached entry[T]
	err := r.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		if age := r.now().Sub(cached.StoredAt); age > r.ttl/2 {
			r.logger.Debug("cache hit, refreshing ahead", zap.String("key", key), zap.Duration("age", age))
			refreshAhead(r, key, fetch)
		} else {
			r.logger.Debug("cache hit", zap.String("key", key))
		}
		return cached.Value, nil

	case errors.Is(err, redis.Nil):
		r.logger.Debug("cache miss", zap.String("key", key))

	default:
		r.logger.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
	}

	// Callers arriving after a save must not join a load that started before it.
	epoch := r.epochs.current(key)
	v, err, shared := r.sfGroup.Do(fmt.Sprintf("%s#%d", key, epoch), func() (any, error) {
		value, err := fetch(ctx)
		if err != nil {
			r.logger.Error("fetch failed", zap.String("key", key), zap.Error(err))
			return nil, err
		}
		storeAsync(r, key, epoch, value)
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		r.logger.Error("singleflight type mismatch", zap.String("key", key))
		return zero, fmt.Errorf("type mismatch for key %q", key)
	}
	if shared {
		r.logger.Debug("singleflight shared result", zap.String("key", key))
	}
	return value, nil
}

func refreshAhead[T any](r *Repository, key string, fetch FetchFunc[T]) {
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()

		epoch := r.epochs.current(key)
		_, _, _ = r.sfGroup.Do(fmt.Sprintf("%s#%d:refresh", key, epoch), func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), defaultFetchTimeout)
			defer cancel()

			value, err := fetch(ctx)
			if err != nil {
				r.logger.Warn("background refresh failed", zap.String("key", key), zap.Error(err))
				return nil, err
			}
			store(r, key, epoch, value)
			return value, nil
		})
	}()
}

func storeAsync[T any](r *Repository, key string, epoch uint64, value T) {
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		store(r, key, epoch, value)
	}()
}

// store caches value if no save has touched key since epoch was read. The epoch is
// checked again after the write: SaveTemplateScorecard bumps the epoch before it
// deletes, so either this check sees the bump or the save's delete follows the write.
func store[T any](r *Repository, key string, epoch uint64, value T) {
	if r.epochs.current(key) != epoch {
		r.logger.Debug("discarding value loaded before a save", zap.String("key", key))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultSetTimeout)
	defer cancel()

	ttl := addTTLJitter(r.ttl)
	if err := r.cache.Set(ctx, key, entry[T]{Value: value, StoredAt: r.now()}, ttl); err != nil {
		r.logger.Warn("failed to populate cache", zap.String("key", key), zap.Error(err))
		return
	}

	if r.epochs.current(key) != epoch {
		if err := r.cache.Delete(ctx, key); err != nil {
			r.logger.Warn("failed to drop value loaded before a save", zap.String("key", key), zap.Error(err))
		}
		return
	}
	r.logger.Debug("cache populated", zap.String("key", key), zap.Duration("ttl", ttl))
}
