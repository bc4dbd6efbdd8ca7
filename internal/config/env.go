package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func envOrDefault(key, defaultValue string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultValue
}

// durationEnvOrDefault rejects non-positive durations.
func durationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	parsed, ok := parseDurationEnv(key)
	if !ok || parsed <= 0 {
		return defaultValue
	}
	return parsed
}

// optionalDurationEnv allows an explicit zero (e.g. "no ttl").
func optionalDurationEnv(key string, defaultValue time.Duration) time.Duration {
	parsed, ok := parseDurationEnv(key)
	if !ok || parsed < 0 {
		return defaultValue
	}
	return parsed
}

func parseDurationEnv(key string) (time.Duration, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// intEnvOrDefault rejects values below min.
func intEnvOrDefault(key string, defaultValue, min int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < min {
		return defaultValue
	}
	return val
}

func floatEnvOrDefault(key string, defaultValue float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val <= 0 || val > 1 {
		return defaultValue
	}
	return val
}

func boolEnvOrDefault(key string, defaultValue bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}
