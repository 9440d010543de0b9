package config

import (
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
)

type Config struct {
	ServerAddr        string
	OutputDir         string
	Quality           float64
	MaxUploadBytes    int64
	MaxDimension      int
	Workers           int
	AutoOrient        bool
	RateLimitResize   int
	TrustedProxyCIDRs string
}

func Load() *Config {
	return &Config{
		ServerAddr:        getEnv("SERVER_ADDR", ":8080"),
		OutputDir:         getEnv("OUTPUT_DIR", "./out"),
		Quality:           getEnvFloat("JPEG_QUALITY", 0.8),
		MaxUploadBytes:    getEnvInt64("MAX_UPLOAD_BYTES", 32<<20),
		MaxDimension:      int(getEnvInt64("MAX_DIMENSION", 16384)),
		Workers:           int(getEnvInt64("RESAMPLE_WORKERS", 0)),
		AutoOrient:        getEnvBool("AUTO_ORIENT", false),
		RateLimitResize:   int(getEnvInt64("RATE_LIMIT_RESIZE", 60)),
		TrustedProxyCIDRs: getEnv("TRUSTED_PROXY_CIDRS", ""),
	}
}

// Validate reports settings no request could succeed with.
func (c *Config) Validate() error {
	if math.IsNaN(c.Quality) || c.Quality < 0 || c.Quality > 1 {
		return fmt.Errorf("JPEG_QUALITY must be between 0.0 and 1.0, got %v", c.Quality)
	}
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must not be negative, got %d", c.MaxUploadBytes)
	}
	if c.MaxDimension < 0 {
		return fmt.Errorf("MAX_DIMENSION must not be negative, got %d", c.MaxDimension)
	}
	if c.RateLimitResize < 0 {
		return fmt.Errorf("RATE_LIMIT_RESIZE must not be negative, got %d", c.RateLimitResize)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Printf("config: invalid %s=%q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("config: invalid %s=%q, using default %v", key, value, defaultValue)
		return defaultValue
	}
	return f
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("config: invalid %s=%q, using default %t", key, value, defaultValue)
		return defaultValue
	}
	return b
}
