// api/util/cache_service.go

package util

import (
	"context"

	"github.com/casewise/themis/api/db"
	"github.com/casewise/themis/api/model"
)

// CacheService fronts the Redis cache for the immutable attribute catalog.
// Grants are deliberately absent: grant reads always hit Neo4j so that a
// revocation is visible on the next evaluation.
type CacheService struct{}

func NewCacheService() *CacheService {
	return &CacheService{}
}

func (c *CacheService) GetAttribute(ctx context.Context, name string) (*model.Attribute, error) {
	return db.GetCachedAttribute(ctx, name)
}

func (c *CacheService) SetAttribute(ctx context.Context, attribute model.Attribute) error {
	return db.CacheAttribute(ctx, &attribute)
}

func (c *CacheService) DeleteAttribute(ctx context.Context, name string) error {
	return db.DeleteCachedAttribute(ctx, name)
}
