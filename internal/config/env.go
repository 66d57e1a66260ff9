// internal/config/env.go
package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv applies ADAPTCACHE_* environment overrides.
func LoadFromEnv(cfg *Config) {
	if port := os.Getenv("ADAPTCACHE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	if level := os.Getenv("ADAPTCACHE_LOG_LEVEL"); level != "" {
		cfg.Server.LogLevel = level
	}

	if capacity := os.Getenv("ADAPTCACHE_STORE_CAPACITY"); capacity != "" {
		if c, err := strconv.Atoi(capacity); err == nil {
			cfg.Store.Capacity = c
		}
	}

	if window := os.Getenv("ADAPTCACHE_LEARNING_WINDOW"); window != "" {
		if d, err := time.ParseDuration(window); err == nil {
			cfg.Learning.LearningWindow = d
		}
	}

	if interval := os.Getenv("ADAPTCACHE_ANALYSIS_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.Learning.AnalysisInterval = d
		}
	}

	if confidence := os.Getenv("ADAPTCACHE_MIN_CONFIDENCE"); confidence != "" {
		if f, err := strconv.ParseFloat(confidence, 64); err == nil {
			cfg.Learning.MinPatternConfidence = f
		}
	}

	if threshold := os.Getenv("ADAPTCACHE_ADMISSION_THRESHOLD"); threshold != "" {
		if f, err := strconv.ParseFloat(threshold, 64); err == nil {
			cfg.Learning.AdmissionThreshold = f
		}
	}
}

// GetEnvOrDefault returns an environment variable or a default value.
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
