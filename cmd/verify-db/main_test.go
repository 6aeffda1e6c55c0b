package main

import (
	"testing"
	"testing/fstest"
)

func TestDiscoverMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_indexes.sql": {Data: []byte("CREATE INDEX a ON b (c);")},
		"001_schema.sql":  {Data: []byte("CREATE TABLE b (c INT);")},
		"README.md":       {Data: []byte("notes")},
		"old/003_x.sql":   {Data: []byte("SELECT 1;")},
	}

	got, err := discoverMigrations(fsys)
	if err != nil {
		t.Fatalf("discoverMigrations failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(got))
	}
	if got[0].Version != "001" || got[1].Version != "002" {
		t.Errorf("expected versions 001, 002, got %s, %s", got[0].Version, got[1].Version)
	}
	if len(got[0].Checksum) != 64 || got[0].Checksum == got[1].Checksum {
		t.Errorf("unexpected checksums %q, %q", got[0].Checksum, got[1].Checksum)
	}
}

func TestDiscoverMigrations_Errors(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"duplicate version", fstest.MapFS{
			"001_a.sql": {Data: []byte("SELECT 1;")},
			"001_b.sql": {Data: []byte("SELECT 2;")},
		}},
		{"missing version separator", fstest.MapFS{
			"schema.sql": {Data: []byte("SELECT 1;")},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := discoverMigrations(tt.fsys); err == nil {
				t.Error("expected error")
			}
		})
	}
}
