// Package config contains everything related to configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ClickHouseURL      string
	ClickHouseDatabase string
	ExportDir          string
	LogFile            string
	// EnvFile is the .env file that was loaded, empty if none was found.
	EnvFile      string
	HTTPTimeout  time.Duration
	Debug        bool
	NotifyOnLoad bool
	WatchEnv     bool
}

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	var envFile string
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			envFile = path
			break
		}
	}

	cfg := &Config{
		ClickHouseURL:      getEnvString(EnvClickHouseURL, DefaultClickHouseURL),
		ClickHouseDatabase: getEnvString(EnvClickHouseDatabase, DefaultClickHouseDatabase),
		ExportDir:          getEnvString(EnvExportDir, getDefaultExportDir()),
		LogFile:            getEnvString(EnvLogFile, getDefaultLogFile()),
		EnvFile:            envFile,
		HTTPTimeout:        getEnvDuration(EnvHTTPTimeout, 0),
		Debug:              getEnvBool(EnvDebug, false),
		NotifyOnLoad:       getEnvBool(EnvNotifyOnLoad, false),
		WatchEnv:           getEnvBool(EnvWatchEnv, true),
	}

	// Ensure log directory exists
	if err := ensureDir(filepath.Dir(cfg.LogFile)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory location
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appDirName, ".env"))
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// getDefaultExportDir returns the working directory, or "." if unknown.
func getDefaultExportDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// getDefaultLogFile returns the default path for the log file.
func getDefaultLogFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return appDirName + ".log"
	}
	return filepath.Join(home, ".config", appDirName, appDirName+".log")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
// Accepts strconv.ParseBool values plus "yes"/"no" and "on"/"off".
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch value {
	case "":
		return defaultValue
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
