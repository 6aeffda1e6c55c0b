package store

import (
	"context"
	"fmt"

	"logistics-dashboard/internal/config"
	"logistics-dashboard/internal/db"
)

// Open returns the store selected by cfg.DataSource.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.DataSource {
	case config.SourcePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &pooledStore{PostgresStore: NewPostgresStore(pool), close: pool.Close}, nil
	case config.SourceSQLite:
		st, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.SourceFixtures:
		st, err := NewFixtureStore()
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.DataSource)
	}
}

// pooledStore owns the pool it was opened with.
type pooledStore struct {
	*PostgresStore
	close func()
}

func (s *pooledStore) Close() error {
	s.close()
	return nil
}
