// Package config contains everything related to configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/botdesk/botusage/internal/session"
)

// Config holds the application configuration.
type Config struct {
	// BackendURL is the assistant backend the client reads stats from.
	BackendURL string
	// AuthBackendURL and RAGBackendURL are the proxy upstreams.
	AuthBackendURL string
	RAGBackendURL  string
	ProxyAddr      string

	DatabasePath string
	PricingPath  string
	HTTPTimeout  time.Duration

	Session *session.Session
}

const (
	defaultAuthBackendURL = "http://localhost:4002"
	defaultRAGBackendURL  = "http://localhost:3003"
	defaultProxyAddr      = ":3005"
	defaultHTTPTimeout    = 15 * time.Second
)

// Load reads configuration from .env files and environment variables.
// BACKEND_URL is required for commands that talk to the backend; its
// absence is reported by the client, not here, so the proxy can run
// without it.
func Load() (*Config, error) {
	for _, path := range envPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		BackendURL:     os.Getenv("BACKEND_URL"),
		AuthBackendURL: envString("AUTH_BACKEND_URL", defaultAuthBackendURL),
		RAGBackendURL:  envString("RAG_BACKEND_URL", defaultRAGBackendURL),
		ProxyAddr:      envString("PROXY_ADDR", defaultProxyAddr),
		DatabasePath:   envString("DATABASE_PATH", defaultDatabasePath()),
		PricingPath:    os.Getenv("PRICING_PATH"),
		HTTPTimeout:    envDuration("HTTP_TIMEOUT", defaultHTTPTimeout),
	}

	expiry, err := tokenExpiry()
	if err != nil {
		return nil, err
	}
	cfg.Session = session.New(os.Getenv("API_TOKEN"), expiry)

	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

func tokenExpiry() (time.Time, error) {
	raw := os.Getenv("API_TOKEN_EXPIRES_AT")
	if raw == "" {
		return time.Time{}, nil
	}
	expiry, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid API_TOKEN_EXPIRES_AT (want RFC3339): %w", err)
	}
	return expiry, nil
}

// envPaths returns the locations checked for .env files.
func envPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "botusage", ".env"))
	}
	return paths
}

func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "botusage.db"
	}
	return filepath.Join(home, ".config", "botusage", "botusage.db")
}

func envString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envDuration accepts values like "30s" or bare seconds.
func envDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
