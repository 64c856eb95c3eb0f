// Package config loads application configuration from the environment and an
// optional .env file in the ghstream home directory.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	GithubToken string // GITHUB_TOKEN
	APIURL      string // GHSTREAM_API_URL, empty means api.github.com
	HomeDir     string // GHSTREAM_HOME (default: ~/.ghstream)
	DBDriver    string // GHSTREAM_DB_DRIVER: "sqlite" (default) or "postgres"
	DBPath      string // SQLite file path or PostgreSQL connection string
	PerPage     int    // GHSTREAM_PER_PAGE, search page size, default 100
}

// Load builds the configuration. The .env file in the home directory is read
// first (without overriding already-set variables), then environment
// variables fill the config.
func Load() *Config {
	homeDir := expandHome(os.Getenv("GHSTREAM_HOME"))
	if homeDir == "" {
		userHome := os.Getenv("HOME")
		if userHome == "" {
			userHome = "."
		}
		homeDir = filepath.Join(userHome, ".ghstream")
	}

	// Best effort: a missing .env just means everything comes from the
	// environment.
	godotenv.Load(filepath.Join(homeDir, ".env"))

	config := &Config{
		GithubToken: os.Getenv("GITHUB_TOKEN"),
		APIURL:      os.Getenv("GHSTREAM_API_URL"),
		HomeDir:     homeDir,
		DBDriver:    os.Getenv("GHSTREAM_DB_DRIVER"),
		DBPath:      os.Getenv("GHSTREAM_DB"),
		PerPage:     100,
	}

	if config.DBDriver == "" {
		config.DBDriver = "sqlite"
	}
	if config.DBPath == "" {
		config.DBPath = filepath.Join(homeDir, "ghstream.db")
	}
	if perPage := os.Getenv("GHSTREAM_PER_PAGE"); perPage != "" {
		if n, err := strconv.Atoi(perPage); err == nil && n > 0 && n <= 100 {
			config.PerPage = n
		}
	}

	return config
}

// expandHome expands a leading "~/" to the user's home directory.
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if userHome := os.Getenv("HOME"); userHome != "" {
			return userHome + path[1:]
		}
	}
	return path
}
