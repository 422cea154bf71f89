package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/joho/godotenv"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendBigQuery = "bigquery"
	BackendSQLite   = "sqlite"
)

// Config is the process configuration shared by all commands.
type Config struct {
	Port     string
	LogLevel string

	StoreBackend string
	BQProjectID  string
	BQDataset    string
	SQLitePath   string

	CategoryCacheTTL time.Duration
	RateLimitRPS     float64
	RateLimitBurst   int
	WorkerCount      int

	FixedCategoryIDs    []int64
	SavingCategoryID    int64
	TransportCategoryID int64
}

// Load reads the optional .env files (default ".env") into the environment and
// builds the configuration from it. Variables already set win over .env values.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("Load: read env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	defaults := insights.DefaultRules()

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", BackendBigQuery)),
		BQProjectID:  getEnv("BQ_PROJECT_ID", ""),
		BQDataset:    getEnv("BQ_DATASET", "finance"),
		SQLitePath:   getEnv("SQLITE_PATH", "./insights.db"),
	}

	var err error
	if cfg.CategoryCacheTTL, err = getEnvAsDuration("CATEGORY_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getEnvAsFloat("RATE_LIMIT_RPS", 10); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getEnvAsInt("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}
	if cfg.WorkerCount, err = getEnvAsInt("WORKER_COUNT", 5); err != nil {
		return nil, err
	}
	if cfg.FixedCategoryIDs, err = getEnvAsIDs("FIXED_CATEGORY_IDS", defaults.FixedCategoryIDs); err != nil {
		return nil, err
	}
	if cfg.SavingCategoryID, err = getEnvAsID("SAVING_CATEGORY_ID", defaults.SavingCategoryID); err != nil {
		return nil, err
	}
	if cfg.TransportCategoryID, err = getEnvAsID("TRANSPORT_CATEGORY_ID", defaults.TransportCategoryID); err != nil {
		return nil, err
	}

	switch cfg.StoreBackend {
	case BackendBigQuery, BackendSQLite:
	default:
		return nil, fmt.Errorf("FromEnv: unsupported STORE_BACKEND %q", cfg.StoreBackend)
	}
	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("FromEnv: WORKER_COUNT must be positive, got %d", cfg.WorkerCount)
	}

	return cfg, nil
}

// Rules returns the engine classification configured for this process.
func (c *Config) Rules() insights.Rules {
	rules := insights.DefaultRules()
	rules.FixedCategoryIDs = append([]int64(nil), c.FixedCategoryIDs...)
	rules.SavingCategoryID = c.SavingCategoryID
	rules.TransportCategoryID = c.TransportCategoryID
	return rules
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("FromEnv: %s: %w", key, err)
	}
	return v, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("FromEnv: %s: %w", key, err)
	}
	return v, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("FromEnv: %s: %w", key, err)
	}
	return v, nil
}

func getEnvAsID(key string, fallback int64) (int64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("FromEnv: %s: %w", key, err)
	}
	return v, nil
}

// getEnvAsIDs parses a comma-separated id list such as "2,6,7,8".
func getEnvAsIDs(key string, fallback []int64) ([]int64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return append([]int64(nil), fallback...), nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("FromEnv: %s: %w", key, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
