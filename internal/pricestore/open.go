package pricestore

import (
	"context"
	"fmt"

	"dealscan/internal/config"
	"dealscan/internal/db"
)

// Open picks the backend named by cfg. The returned close func is never nil.
func Open(ctx context.Context, cfg *config.Config) (Store, func(), error) {
	noop := func() {}

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Disabled{}, noop, nil
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		return NewPostgresStore(pool), pool.Close, nil

	case config.BackendSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			return Disabled{}, noop, nil
		}
		return NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, nil), noop, nil
	}

	return nil, noop, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
