package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// CacheBackend selects the cache store implementation.
type CacheBackend string

const (
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendRedis  CacheBackend = "redis"
	CacheBackendNone   CacheBackend = "none"
)

// Config holds all runtime settings, sourced from the environment.
type Config struct {
	ListenAddr string

	PrimaryBaseURL  string
	FallbackBaseURL string
	UserAgent       string

	CacheBackend CacheBackend
	RedisURL     string
	CacheTTL     time.Duration

	RequestTimeout   time.Duration
	TransportTimeout time.Duration
	DialTimeout      time.Duration
	IdleConnTimeout  time.Duration

	MaxIdleConns        int
	MaxIdleConnsPerHost int
}

// Load reads configuration from the environment, applying defaults and
// validating the result.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:      envString("LISTEN_ADDR", ":8080"),
		PrimaryBaseURL:  envString("PRIMARY_BASE_URL", "https://www.reddit.com"),
		FallbackBaseURL: envString("FALLBACK_BASE_URL", "https://meme-api.com"),
		UserAgent:       envString("USER_AGENT", "MemeAPI/1.0"),
		CacheBackend:    CacheBackend(strings.ToLower(envString("CACHE_BACKEND", string(CacheBackendMemory)))),
		RedisURL:        os.Getenv("REDIS_URL"),
	}

	var err error
	if cfg.CacheTTL, err = envDuration("CACHE_TTL", 300*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = envDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.TransportTimeout, err = envDuration("TRANSPORT_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.DialTimeout, err = envDuration("DIAL_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.IdleConnTimeout, err = envDuration("IDLE_CONN_TIMEOUT", 90*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.MaxIdleConns, err = envInt("MAX_IDLE_CONNS", 100); err != nil {
		return Config{}, err
	}
	if cfg.MaxIdleConnsPerHost, err = envInt("MAX_IDLE_CONNS_PER_HOST", 10); err != nil {
		return Config{}, err
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validate(cfg Config) error {
	if err := validateBaseURL("PRIMARY_BASE_URL", cfg.PrimaryBaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("FALLBACK_BASE_URL", cfg.FallbackBaseURL); err != nil {
		return err
	}

	switch cfg.CacheBackend {
	case CacheBackendMemory, CacheBackendNone:
	case CacheBackendRedis:
		if cfg.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_BACKEND is %q", CacheBackendRedis)
		}
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND %q", cfg.CacheBackend)
	}

	if cfg.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", cfg.CacheTTL)
	}

	return nil
}

func validateBaseURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse %s %q: %w", name, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s %q must use http or https scheme", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s %q must include a host", name, raw)
	}
	return nil
}

func envString(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", name, v, err)
	}
	return d, nil
}

func envInt(name string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", name, v, err)
	}
	return n, nil
}
