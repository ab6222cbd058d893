package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/natefinch/atomic"
)

// Config holds the settings shared by all commands. Values are layered: defaults,
// then the JSON config file, then WORDWEAVER_* environment variables, then flags.
type Config struct {
	LogLevel     string  `json:"log_level" env:"LOG_LEVEL"`
	DatabasePath string  `json:"database_path" env:"DATABASE_PATH"`
	WeightsFile  string  `json:"weights_file" env:"WEIGHTS_FILE"`
	TopFraction  float64 `json:"top_fraction" env:"TOP_FRACTION"`
	Words        int     `json:"words" env:"WORDS"`
	ApiAddr      string  `json:"api_addr" env:"API_ADDR"`
	ApiRate      float64 `json:"api_rate" env:"API_RATE"` // requests per second per client, 0 disables
	ApiBurst     int     `json:"api_burst" env:"API_BURST"`
	ApiMaxLoads  int     `json:"api_max_loads" env:"API_MAX_LOADS"`

	// defaultWriteErr is set when the default file could not be written. The
	// defaults are still used; the caller logs it once a logger exists.
	defaultWriteErr error
}

// envPrefix namespaces every environment override.
const envPrefix = "WORDWEAVER_"

// DefaultConfig creates a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		DatabasePath: "./data/wordweaver.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
		WeightsFile:  "./weights.bin",
		TopFraction:  0.35,
		Words:        10,
		ApiAddr:      ":7279",
		ApiRate:      10,
		ApiBurst:     20,
		ApiMaxLoads:  4,
	}
}

// LoadConfig reads the configuration from a JSON file at the given path and applies
// environment overrides. If the file doesn't exist, it creates one with default
// values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err = json.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		var data []byte
		data, err = json.MarshalIndent(config, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal default config: %w", err)
		}
		config.defaultWriteErr = atomic.WriteFile(path, bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = env.ParseWithOptions(config, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return config, nil
}

// parseLogLevel maps a config string to a slog level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
