package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "search:"

// SearchCache keeps serialized search results in Redis so repeated
// storefront queries skip the catalog scan. Every entry is dropped when a
// product is added.
type SearchCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSearchCache(rdb *redis.Client, ttl time.Duration) *SearchCache {
	return &SearchCache{rdb: rdb, ttl: ttl}
}

func cacheKey(f Filter) string {
	bound := func(v *float64) string {
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	}
	return fmt.Sprintf("%s%s|%s|%s|%s",
		cachePrefix, strings.ToLower(f.Keyword), f.Category,
		bound(f.MinPrice), bound(f.MaxPrice))
}

func (c *SearchCache) Get(ctx context.Context, f Filter) ([]Product, bool) {
	raw, err := c.rdb.Get(ctx, cacheKey(f)).Bytes()
	if err != nil {
		return nil, false
	}

	var out []Product
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

func (c *SearchCache) Put(ctx context.Context, f Filter, products []Product) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKey(f), raw, c.ttl).Err()
}

// Invalidate drops every cached search result.
func (c *SearchCache) Invalidate(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, cachePrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
