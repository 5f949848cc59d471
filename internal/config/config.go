package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds service configuration read from the environment
type Config struct {
	DatabaseURL    string
	Port           string
	CongressAPIKey string
	JWTSecret      string

	// SyncAuthToken, when set, is required as a bearer token on the
	// sync trigger endpoint. Empty means the endpoint is open (local
	// development).
	SyncAuthToken string

	// Lookback is the sync watermark window. If the poller is
	// scheduled less often than this, upstream records can be missed;
	// there is no persisted cursor to close the gap.
	SyncLookback   time.Duration
	SyncBatchSize  int
	SyncBatchDelay time.Duration
}

// FromEnv builds a Config from environment variables with defaults
func FromEnv() Config {
	return Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Port:           envOr("PORT", "8080"),
		CongressAPIKey: os.Getenv("CONGRESS_API_KEY"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		SyncAuthToken:  os.Getenv("SYNC_AUTH_TOKEN"),
		SyncLookback:   time.Duration(envInt("SYNC_LOOKBACK_HOURS", 24)) * time.Hour,
		SyncBatchSize:  envInt("SYNC_BATCH_SIZE", 5),
		SyncBatchDelay: time.Duration(envInt("SYNC_BATCH_DELAY_MS", 200)) * time.Millisecond,
	}
}

// ValidateSync checks the settings the sync path needs
func (c Config) ValidateSync() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.CongressAPIKey == "" {
		return fmt.Errorf("CONGRESS_API_KEY is required")
	}
	return nil
}

// ValidateServe checks the settings the web server needs
func (c Config) ValidateServe() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
