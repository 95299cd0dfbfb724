package config

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var loadEnvFileOnce sync.Once

// loadEnvFile preloads ./.env (if present) into the process environment.
// Mirrors orbas1-Synnergy's "_ = godotenv.Load(...)" pattern: a missing
// file is silently ignored, since most deployments configure purely via
// environment variables and .env is a local-development convenience.
func loadEnvFile() {
	loadEnvFileOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// Getenv returns the environment variable key, or def if unset/empty. It
// preloads a .env file on first use, same shape as the teacher's
// getenv(key, default) helper, generalized for reuse across binaries.
func Getenv(key, def string) string {
	loadEnvFile()
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// GetenvDuration parses key as a duration, falling back to def if unset or
// unparsable.
func GetenvDuration(key string, def time.Duration) time.Duration {
	loadEnvFile()
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// GetenvInt parses key as an integer, falling back to def if unset or
// unparsable.
func GetenvInt(key string, def int) int {
	loadEnvFile()
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
