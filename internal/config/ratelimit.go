package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig controls the Redis token-bucket limiter applied to the
// API.  Capacity is the bucket size, RefillTokens are added every
// RefillInterval, and TTL bounds how long idle buckets survive in Redis.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig reads environment variables to build a
// RateLimitConfig, falling back to defaults that allow bursts of 20
// requests refilled at 10 per second.
func LoadRateLimitConfig() RateLimitConfig {
	def := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       20,
		RefillTokens:   10,
		RefillInterval: time.Second,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_user_route",
		Prefix:         "rl",
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	if v := os.Getenv("RATE_LIMIT_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			def.Capacity = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_REFILL_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			def.RefillTokens = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_REFILL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			def.RefillInterval = d
		}
	}
	if v := os.Getenv("RATE_LIMIT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			def.TTL = d
		}
	}
	if v := os.Getenv("RATE_LIMIT_KEY_STRATEGY"); v != "" {
		def.KeyStrategy = v
	}
	if v := os.Getenv("RATE_LIMIT_PREFIX"); v != "" {
		def.Prefix = v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "true" || v == "1"
}
