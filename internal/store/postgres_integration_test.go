package store_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"logistics-dashboard/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
)

// setupPostgresStore applies the migrations to TEST_DATABASE_URL and loads the fixtures.
func setupPostgresStore(t *testing.T) store.Store {
	t.Helper()
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	files, err := filepath.Glob(filepath.Join("..", "..", "migrations", "*.sql"))
	if err != nil {
		t.Fatalf("Failed to list migrations: %v", err)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("Failed to read %s: %v", f, err)
		}
		if _, err := pool.Exec(ctx, string(sqlBytes)); err != nil {
			t.Fatalf("Failed to apply %s: %v", f, err)
		}
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE route_shipments, routes, alerts, stock_lines, catalog_items,
		               shipments, customers, drivers, vehicle_documents, vehicles, warehouses CASCADE;
	`)
	if err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}

	st := store.NewPostgresStore(pool)
	if err := st.Import(ctx, fixtures(t)); err != nil {
		t.Fatalf("Failed to import fixtures: %v", err)
	}
	return st
}

func TestPostgresStore(t *testing.T) {
	runStoreContract(t, setupPostgresStore)
}

func TestPostgresStore_ImportIsIdempotent(t *testing.T) {
	st := setupPostgresStore(t)
	ctx := context.Background()

	if err := st.(store.Importer).Import(ctx, fixtures(t)); err != nil {
		t.Fatalf("second Import failed: %v", err)
	}
	snap, err := st.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(snap.Shipments) != 10 || len(snap.Vehicles[1].Maintenance.Documents) != 1 {
		t.Errorf("expected no duplicates after re-import, got %d shipments, %d documents",
			len(snap.Shipments), len(snap.Vehicles[1].Maintenance.Documents))
	}
}
