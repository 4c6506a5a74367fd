package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courier-dispatch/internal/core/cache"
	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/features/promotions/domain"
	"courier-dispatch/internal/features/promotions/ports"

	"go.uber.org/zap"
)

const catalogCacheKey = "promotions:catalog"

// CachedRepository keeps the decoded catalog in the shared cache. Cache
// failures fall through to the source.
type CachedRepository struct {
	source ports.Repository
	cache  cache.Cache
	ttl    time.Duration
	log    *zap.Logger
}

// NewCachedRepository wraps source with the cache. A ttl of 0 never expires.
func NewCachedRepository(source ports.Repository, c cache.Cache, ttl time.Duration) *CachedRepository {
	return &CachedRepository{
		source: source,
		cache:  c,
		ttl:    ttl,
		log:    logger.Named("promotions.cache"),
	}
}

// List returns the cached catalog, loading it from the source on a miss.
func (r *CachedRepository) List(ctx context.Context) ([]domain.Promotion, error) {
	promos, err := cache.GetJSON[[]domain.Promotion](ctx, r.cache, catalogCacheKey)
	switch {
	case err == nil:
		return promos, nil
	case errors.Is(err, cache.ErrCorrupt):
		r.log.Warn("discarding undecodable cached catalog", zap.Error(err))
	case !errors.Is(err, cache.ErrMiss):
		r.log.Warn("catalog cache read failed", zap.Error(err))
	}

	promos, err = r.source.List(ctx)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, r.cache, catalogCacheKey, promos, r.ttl); err != nil {
		r.log.Warn("catalog cache write failed", zap.Error(err))
	}
	return promos, nil
}

// Invalidate drops the cached catalog so the next List reloads it.
func (r *CachedRepository) Invalidate(ctx context.Context) error {
	if err := r.cache.Invalidate(ctx, catalogCacheKey); err != nil {
		return fmt.Errorf("failed to invalidate catalog: %w", err)
	}
	return nil
}
