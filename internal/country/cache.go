package country

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedResolver memoizes Found and NotFound results of another resolver.
// Errors are not cached.
type CachedResolver struct {
	next  Resolver
	cache *lru.Cache[string, Result]
}

// NewCachedResolver wraps next with an LRU of the given size.
func NewCachedResolver(next Resolver, size int) (*CachedResolver, error) {
	cache, err := lru.New[string, Result](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create country cache: %w", err)
	}

	return &CachedResolver{next: next, cache: cache}, nil
}

// Resolve implements Resolver.
func (c *CachedResolver) Resolve(ctx context.Context, name string) (Result, error) {
	key := Normalize(name)
	if res, ok := c.cache.Get(key); ok {
		return res, nil
	}

	res, err := c.next.Resolve(ctx, name)
	if err != nil {
		return Result{}, err
	}

	c.cache.Add(key, res)

	return res, nil
}

// Len returns the number of cached names.
func (c *CachedResolver) Len() int {
	return c.cache.Len()
}

// New builds the default resolver: aliases first, then the ISO database, behind an
// LRU when cacheSize > 0.
func New(aliases map[string]string, cacheSize int) (Resolver, error) {
	var r Resolver = NewDatabaseResolver()
	if len(aliases) > 0 {
		r = Chain{NewStaticResolver(aliases), r}
	}

	if cacheSize == 0 {
		return r, nil
	}

	return NewCachedResolver(r, cacheSize)
}
