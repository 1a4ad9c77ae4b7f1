package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Goofygiraffe06/signup/internal/logging"
	"github.com/joho/godotenv"
)

func init() {
	start := time.Now()
	logging.DebugLog("Environment configuration loading started")

	if err := godotenv.Load(); err != nil {
		logging.WarnLog("Environment configuration: no .env file found, using system environment variables")
	} else {
		logging.InfoLog("Environment configuration: .env file loaded successfully")
	}

	logging.InfoLog("Environment configuration loading completed %v", time.Since(start))
}

// MustGetEnv returns the value of the environment variable or panics if it's not set.
func MustGetEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		logging.ErrorLog("Environment configuration failed: missing required variable %s", key)
		panic("config: missing required environment variable: " + key)
	}
	return v
}

// GetEnv returns the value of the environment variable or a default if it's not set.
func GetEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	logging.DebugLog("Environment variable not found, using fallback: %s", key)
	return fallback
}

// MustParseDuration retrieves a duration from env or uses fallback, panics if invalid.
func MustParseDuration(key, fallback string) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		val = fallback
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		logging.ErrorLog("Duration parsing failed: %s = %s, error: %v", key, val, err)
		panic("config: invalid duration in " + key + ": " + err.Error())
	}
	return d
}

// GetBool reads a boolean flag; anything strconv.ParseBool rejects yields fallback.
func GetBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logging.WarnLog("Environment variable %s is not a boolean: %q", key, v)
		return fallback
	}
	return b
}

// GetList splits a comma separated variable, dropping empty items.
func GetList(key, fallback string) []string {
	var out []string
	for _, item := range strings.Split(GetEnv(key, fallback), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return def
	}
	return i
}

func parseBytes(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	// If plain number, treat as bytes
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "KB"):
		mult = 1 << 10
		s = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "MB"):
		mult = 1 << 20
		s = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "GB"):
		mult = 1 << 30
		s = strings.TrimSuffix(s, "GB")
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	return int64(n * float64(mult)), nil
}
