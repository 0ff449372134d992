// Package common provides shared utilities for the sunspot dashboard tools.
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Dataset sources understood by the dashboard.
const (
	SourceFile       = "file"
	SourceClickHouse = "clickhouse"
)

// Config holds common configuration for all applications.
type Config struct {
	DatasetPath   string
	DatasetSource string
	ListenAddr    string

	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseTable    string
	ClickHouseUser     string
	ClickHousePassword string

	DataDir  string
	LogLevel string
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	dataDir := getEnv("KI7MT_DATA_DIR", "/var/lib/ki7mt-ai-lab")
	return &Config{
		DatasetPath:        getEnv("SUNSPOT_DATASET", filepath.Join(dataDir, "solar", "sidc_ssn_monthly.csv")),
		DatasetSource:      getEnv("SUNSPOT_SOURCE", SourceFile),
		ListenAddr:         getEnv("SUNSPOT_LISTEN", ":8050"),
		ClickHouseHost:     getEnv("CLICKHOUSE_HOST", "localhost"),
		ClickHousePort:     getEnvInt("CLICKHOUSE_PORT", 9000),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "solar"),
		ClickHouseTable:    getEnv("CLICKHOUSE_TABLE", "sunspot_monthly"),
		ClickHouseUser:     getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),
		DataDir:            dataDir,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
}

// ClickHouseAddr returns the native protocol host:port.
func (c *Config) ClickHouseAddr() string {
	return fmt.Sprintf("%s:%d", c.ClickHouseHost, c.ClickHousePort)
}

// ClickHouseTableFQN returns database.table.
func (c *Config) ClickHouseTableFQN() string {
	return c.ClickHouseDatabase + "." + c.ClickHouseTable
}

// SolarDataDir returns the solar data directory path.
func (c *Config) SolarDataDir() string {
	return filepath.Join(c.DataDir, "solar")
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.DatasetSource {
	case SourceFile:
		if c.DatasetPath == "" {
			return fmt.Errorf("dataset path is empty")
		}
	case SourceClickHouse:
		if c.ClickHouseHost == "" || c.ClickHouseTable == "" {
			return fmt.Errorf("clickhouse host and table are required")
		}
	default:
		return fmt.Errorf("unknown dataset source %q (want %q or %q)", c.DatasetSource, SourceFile, SourceClickHouse)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
