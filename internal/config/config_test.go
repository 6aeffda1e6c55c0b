package config_test

import (
	"testing"

	"logistics-dashboard/internal/config"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"DATABASE_URL", "DATA_SOURCE", "SQLITE_PATH", "SERVER_PORT", "ALLOWED_ORIGINS",
		"LOW_STOCK_THRESHOLD", "DASHBOARD_TZ", "KAFKA_BROKER", "KAFKA_TOPIC", "OPENAI_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	c, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.DataSource != config.SourceFixtures {
		t.Errorf("expected fixtures source, got %s", c.DataSource)
	}
	if c.ServerPort != "8080" || c.LowStockThreshold != 50 || c.KafkaTopic != "dashboard.changes" {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if c.Location.String() != "UTC" {
		t.Errorf("expected UTC, got %s", c.Location)
	}
}

func TestLoad_InfersSource(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want config.DataSource
	}{
		{"database url", map[string]string{"DATABASE_URL": "postgres://localhost/x"}, config.SourcePostgres},
		{"sqlite path", map[string]string{"SQLITE_PATH": "/tmp/x.db"}, config.SourceSQLite},
		{"explicit wins", map[string]string{"DATABASE_URL": "postgres://localhost/x", "DATA_SOURCE": "Fixtures"}, config.SourceFixtures},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			c, err := config.Load()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.DataSource != tt.want {
				t.Errorf("expected %s, got %s", tt.want, c.DataSource)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown source", "DATA_SOURCE", "mongo"},
		{"postgres without url", "DATA_SOURCE", "postgres"},
		{"bad threshold", "LOW_STOCK_THRESHOLD", "lots"},
		{"negative threshold", "LOW_STOCK_THRESHOLD", "-1"},
		{"zero threshold", "LOW_STOCK_THRESHOLD", "0"},
		{"bad zone", "DASHBOARD_TZ", "Mars/Olympus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)
			if _, err := config.Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}
