// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	APIURL         string
	DBPath         string
	SecretKey      []byte
	RequestTimeout time.Duration
	SearchDebounce time.Duration
	PageSize       int
	CacheTTL       time.Duration
}

// HasSecretKey reports whether credential persistence is enabled. Without a
// key the session only lives for the lifetime of the process.
func (c *Config) HasSecretKey() bool {
	return len(c.SecretKey) == 32
}

// Load reads configuration from environment variables and returns a validated Config.
// WASHDESK_API_URL is required. Optional variables with defaults:
// WASHDESK_DB_PATH (washdesk.db), WASHDESK_SECRET_KEY (unset, 64 hex chars),
// WASHDESK_REQUEST_TIMEOUT (30s), WASHDESK_SEARCH_DEBOUNCE (500ms),
// WASHDESK_PAGE_SIZE (10), WASHDESK_CACHE_TTL (5m).
func Load() (*Config, error) {
	apiURL := strings.TrimSpace(os.Getenv("WASHDESK_API_URL"))
	if apiURL == "" {
		return nil, errors.New("WASHDESK_API_URL is required")
	}
	u, err := url.Parse(apiURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("WASHDESK_API_URL must be an absolute URL, got %q", apiURL)
	}

	dbPath := "washdesk.db"
	if v, ok := os.LookupEnv("WASHDESK_DB_PATH"); ok && v != "" {
		dbPath = v
	}

	var secretKey []byte
	if v, ok := os.LookupEnv("WASHDESK_SECRET_KEY"); ok && v != "" {
		secretKey, err = hex.DecodeString(v)
		if err != nil || len(secretKey) != 32 {
			return nil, errors.New("WASHDESK_SECRET_KEY must be 64 hex characters (32 bytes)")
		}
	}

	requestTimeout, err := durationEnv("WASHDESK_REQUEST_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	searchDebounce, err := durationEnv("WASHDESK_SEARCH_DEBOUNCE", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}

	cacheTTL, err := durationEnv("WASHDESK_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	pageSize := 10
	if v, ok := os.LookupEnv("WASHDESK_PAGE_SIZE"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("WASHDESK_PAGE_SIZE must be a positive integer, got %q", v)
		}
		pageSize = parsed
	}

	return &Config{
		APIURL:         strings.TrimRight(apiURL, "/"),
		DBPath:         dbPath,
		SecretKey:      secretKey,
		RequestTimeout: requestTimeout,
		SearchDebounce: searchDebounce,
		PageSize:       pageSize,
		CacheTTL:       cacheTTL,
	}, nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return def, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", name, v, err)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %q", name, v)
	}
	return parsed, nil
}
