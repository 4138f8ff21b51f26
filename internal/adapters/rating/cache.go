package rating

import (
	"context"
	"errors"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/okian/inhouse/internal/domain/model"
	"github.com/okian/inhouse/pkg/logger"
	"github.com/okian/inhouse/pkg/metrics"
)

// Lookup outcomes reported to metrics.
const (
	resultFresh    = "fresh"
	resultStale    = "stale"
	resultFallback = "fallback"
	resultError    = "error"
)

// Cache wraps a Lookup and remembers the last good value per handle. When
// the service is unavailable it serves that value marked Stale, or
// Default() marked Stale when nothing is known.
type Cache struct {
	next Lookup
	last *xsync.Map[string, model.Rating]
	log  logger.Logger
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithLogger sets the logger.
func WithLogger(log logger.Logger) CacheOption {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// NewCache wraps next.
func NewCache(next Lookup, opts ...CacheOption) *Cache {
	c := &Cache{
		next: next,
		last: xsync.NewMap[string, model.Rating](),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get().Named("rating")
	}
	return c
}

var _ Lookup = (*Cache)(nil)

// Lookup resolves handle through the wrapped lookup. Only
// ErrExternalServiceUnavailable is absorbed; other errors are returned.
func (c *Cache) Lookup(ctx context.Context, handle string) (model.Rating, error) {
	r, err := c.next.Lookup(ctx, handle)
	if err == nil {
		r.Stale = false
		c.last.Store(handle, r)
		metrics.RecordRatingLookup(resultFresh)
		return r, nil
	}
	if !errors.Is(err, ErrExternalServiceUnavailable) {
		metrics.RecordRatingLookup(resultError)
		return model.Rating{}, err
	}

	if prev, ok := c.last.Load(handle); ok {
		prev.Stale = true
		c.log.Warn(ctx, "serving last known rating",
			logger.String("handle", handle),
			logger.String("rank", prev.Rank),
			logger.Error(err))
		metrics.RecordRatingLookup(resultStale)
		return prev, nil
	}

	fallback := Default()
	fallback.Stale = true
	c.log.Warn(ctx, "rating unavailable, using default tier",
		logger.String("handle", handle),
		logger.Int("tier", fallback.Tier),
		logger.Error(err))
	metrics.RecordRatingLookup(resultFallback)
	return fallback, nil
}

// Remember seeds the cache, e.g. with ratings already stored in the
// directory.
func (c *Cache) Remember(handle string, r model.Rating) {
	r.Stale = false
	c.last.Store(handle, r)
}

// Len returns the number of cached handles.
func (c *Cache) Len() int { return c.last.Size() }
