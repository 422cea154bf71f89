package cache

import (
	"context"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insights"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

const categoriesKey = "categories"

// CategoryCatalog caches the catalog of an underlying CategoryCatalog for ttl.
// Failed reads are not cached.
type CategoryCatalog struct {
	next  insights.CategoryCatalog
	cache *gocache.Cache
	log   zerolog.Logger
}

// NewCategoryCatalog wraps next. A non-positive ttl disables expiry.
func NewCategoryCatalog(next insights.CategoryCatalog, ttl time.Duration, log zerolog.Logger) *CategoryCatalog {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &CategoryCatalog{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
		log:   log,
	}
}

// ListCategories serves the cached catalog or refreshes it from the wrapped store.
func (c *CategoryCatalog) ListCategories(ctx context.Context) ([]domain.CategoryEntry, error) {
	if v, ok := c.cache.Get(categoriesKey); ok {
		return clone(v.([]domain.CategoryEntry)), nil
	}

	entries, err := c.next.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(categoriesKey, clone(entries))
	c.log.Debug().Int("categories", len(entries)).Msg("Category catalog refreshed")
	return entries, nil
}

// Invalidate drops the cached catalog.
func (c *CategoryCatalog) Invalidate() {
	c.cache.Delete(categoriesKey)
}

func clone(entries []domain.CategoryEntry) []domain.CategoryEntry {
	out := make([]domain.CategoryEntry, len(entries))
	copy(out, entries)
	return out
}

var _ insights.CategoryCatalog = (*CategoryCatalog)(nil)
