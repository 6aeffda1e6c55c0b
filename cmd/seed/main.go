// seed loads the embedded fixture data into the configured database.
// Rows are upserted, so it is safe to run repeatedly.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"log"

	"logistics-dashboard/internal/config"
	"logistics-dashboard/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DataSource == config.SourceFixtures {
		log.Fatal("Nothing to seed: set DATABASE_URL or SQLITE_PATH")
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer st.Close()

	importer, ok := st.(store.Importer)
	if !ok {
		log.Fatalf("%s store does not support import", st.Name())
	}

	snap, err := store.LoadFixtures()
	if err != nil {
		log.Fatalf("Failed to load fixtures: %v", err)
	}

	log.Printf("Seeding %s: %d warehouses, %d vehicles, %d drivers, %d shipments, %d stock lines...",
		st.Name(), len(snap.Warehouses), len(snap.Vehicles), len(snap.Drivers), len(snap.Shipments), len(snap.Stock))
	if err := importer.Import(ctx, snap); err != nil {
		log.Fatalf("Failed to import: %v", err)
	}
	log.Println("Seed data restored successfully.")
}
