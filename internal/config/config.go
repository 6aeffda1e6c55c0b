package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"logistics-dashboard/internal/core"
)

type DataSource string

const (
	SourcePostgres DataSource = "postgres"
	SourceSQLite   DataSource = "sqlite"
	SourceFixtures DataSource = "fixtures"
)

// Config holds every setting read from the environment.
type Config struct {
	DatabaseURL       string
	DataSource        DataSource
	SQLitePath        string
	ServerPort        string
	AllowedOrigins    string
	LowStockThreshold int
	Location          *time.Location
	KafkaBroker       string
	KafkaTopic        string
	OpenAIAPIKey      string
}

// Load reads the environment. Callers load .env with godotenv beforehand.
// When DATA_SOURCE is unset it is inferred: postgres if DATABASE_URL is set,
// sqlite if SQLITE_PATH is set, fixtures otherwise.
func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SQLitePath:        os.Getenv("SQLITE_PATH"),
		ServerPort:        envOr("SERVER_PORT", "8080"),
		AllowedOrigins:    os.Getenv("ALLOWED_ORIGINS"),
		LowStockThreshold: core.DefaultLowStockThreshold,
		Location:          time.UTC,
		KafkaBroker:       os.Getenv("KAFKA_BROKER"),
		KafkaTopic:        envOr("KAFKA_TOPIC", "dashboard.changes"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
	}

	switch src := DataSource(strings.ToLower(strings.TrimSpace(os.Getenv("DATA_SOURCE")))); src {
	case "":
		c.DataSource = c.inferSource()
	case SourcePostgres, SourceSQLite, SourceFixtures:
		c.DataSource = src
	default:
		return nil, fmt.Errorf("DATA_SOURCE %q: expected postgres, sqlite or fixtures", src)
	}

	if c.DataSource == SourcePostgres && c.DatabaseURL == "" {
		return nil, fmt.Errorf("DATA_SOURCE=postgres requires DATABASE_URL")
	}
	if c.DataSource == SourceSQLite && c.SQLitePath == "" {
		c.SQLitePath = "dashboard.db"
	}

	if v := os.Getenv("LOW_STOCK_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("LOW_STOCK_THRESHOLD %q: must be a positive integer", v)
		}
		c.LowStockThreshold = n
	}

	if tz := os.Getenv("DASHBOARD_TZ"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("DASHBOARD_TZ %q: %w", tz, err)
		}
		c.Location = loc
	}

	return c, nil
}

func (c *Config) inferSource() DataSource {
	switch {
	case c.DatabaseURL != "":
		return SourcePostgres
	case c.SQLitePath != "":
		return SourceSQLite
	default:
		return SourceFixtures
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
