package redis

import (
	"context"
	"errors"
	"time"

	"github.com/uclouvain/admission-core/internal/application/query"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// PropositionCache stores one hash per proposition with a field per
// language, so invalidation drops every language at once.
type PropositionCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewPropositionCache creates the cache. A zero ttl uses TTLProposition.
func NewPropositionCache(cache *Cache, ttl time.Duration) *PropositionCache {
	if ttl <= 0 {
		ttl = TTLProposition
	}
	return &PropositionCache{cache: cache, ttl: ttl}
}

func propositionKey(id string) string {
	return PrefixProposition + id
}

// GetProposition implements query.PropositionCache.
func (c *PropositionCache) GetProposition(ctx context.Context, id shared.PropositionID, lang string) (*query.PropositionDTO, error) {
	var dto query.PropositionDTO
	err := c.cache.HGet(ctx, propositionKey(id.String()), lang, &dto)
	if errors.Is(err, ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// SetProposition implements query.PropositionCache.
func (c *PropositionCache) SetProposition(ctx context.Context, dto *query.PropositionDTO, lang string) error {
	return c.cache.HSet(ctx, propositionKey(dto.UUID), lang, dto, c.ttl)
}

// Invalidate implements query.PropositionCache.
func (c *PropositionCache) Invalidate(ctx context.Context, id shared.PropositionID) error {
	return c.cache.Delete(ctx, propositionKey(id.String()))
}
