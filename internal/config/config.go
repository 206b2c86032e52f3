package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/appointment-watch/internal/adapter/status"
)

// Config holds file locations and service settings, populated from environment variables.
type Config struct {
	CityTablePath string
	SourcePath    string
	SnapshotDir   string

	StatusURLTemplate string
	StatusTimeout     time.Duration

	LogLevel        string
	LogFormat       string
	MetricsAddr     string // empty disables the health/metrics server
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	statusTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("STATUS_TIMEOUT", "10s"))
	if err != nil || statusTimeout <= 0 {
		return nil, errors.New("invalid STATUS_TIMEOUT")
	}

	cfg := &Config{
		CityTablePath:     sharedcfg.EnvOrDefault("CITY_TABLE_PATH", "data/uszips_mine.csv"),
		SourcePath:        sharedcfg.EnvOrDefault("ZIPS_SOURCE_PATH", "data/uszips_all.csv"),
		SnapshotDir:       sharedcfg.EnvOrDefault("SNAPSHOT_DIR", "past_availabilities"),
		StatusURLTemplate: sharedcfg.EnvOrDefault("STATUS_URL_TEMPLATE", status.DefaultURLTemplate),
		StatusTimeout:     statusTimeout,
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		MetricsAddr:       sharedcfg.EnvOrDefault("METRICS_ADDR", ""),
		ShutdownTimeout:   shutdownTimeout,
	}

	if !strings.Contains(cfg.StatusURLTemplate, status.RegionPlaceholder) {
		return nil, fmt.Errorf("STATUS_URL_TEMPLATE must contain %s", status.RegionPlaceholder)
	}
	if cfg.CityTablePath == "" {
		return nil, errors.New("CITY_TABLE_PATH is required")
	}
	if cfg.SnapshotDir == "" {
		return nil, errors.New("SNAPSHOT_DIR is required")
	}

	return cfg, nil
}

// LoadDotEnv seeds the environment from a .env file. Variables already set
// win over the file, and a missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
