// Package backend opens the configured store and assembles the engine's collaborators.
package backend

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-insights/internal/cache"
	"github.com/dvloznov/finance-insights/internal/config"
	infraBQ "github.com/dvloznov/finance-insights/internal/infra/bigquery"
	"github.com/dvloznov/finance-insights/internal/infra/sqlite"
	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/rs/zerolog"
)

// Backend holds the opened store.
type Backend struct {
	Stores insights.Stores
	close  func() error
}

// Close releases the underlying store.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects to cfg.StoreBackend and wraps its category catalog in a TTL cache.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backend, error) {
	var b *Backend

	switch cfg.StoreBackend {
	case config.BackendBigQuery:
		repo, err := infraBQ.NewBigQueryInsightsRepository(ctx, cfg.BQProjectID, cfg.BQDataset)
		if err != nil {
			return nil, fmt.Errorf("Open: %w", err)
		}
		b = &Backend{Stores: repo.Stores(), close: repo.Close}
	case config.BackendSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("Open: %w", err)
		}
		b = &Backend{Stores: store.Stores(), close: store.Close}
	default:
		return nil, fmt.Errorf("Open: unsupported store backend %q", cfg.StoreBackend)
	}

	b.Stores.Categories = cache.NewCategoryCatalog(b.Stores.Categories, cfg.CategoryCacheTTL, log)
	log.Info().Str("backend", cfg.StoreBackend).Dur("category_cache_ttl", cfg.CategoryCacheTTL).Msg("Store opened")
	return b, nil
}

// NewEngine builds an engine over the backend's stores with the configured rules.
func (b *Backend) NewEngine(cfg *config.Config, log zerolog.Logger) *insights.Engine {
	return insights.NewEngine(b.Stores, cfg.Rules(), log)
}
