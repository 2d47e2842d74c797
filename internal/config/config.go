// Package config reads tunables from the environment with fallbacks.
// Policy knobs (lookahead, intervals, rate-limit budget) live here rather
// than as constants so they stay testable and deployable per environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Get returns the environment value for key, or fallback when unset/empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetInt parses an integer environment value, returning fallback on
// absence or parse failure.
func GetInt(key string, fallback int) int {
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

// GetDuration parses a time.Duration environment value ("500ms", "2s"),
// returning fallback on absence or parse failure.
func GetDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
