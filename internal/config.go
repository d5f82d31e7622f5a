package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultConfig returns a DownloadConfig populated with the spec's documented
// defaults: region ap-east-1, concurrency 10, download_dir <cwd>/files.
func DefaultConfig() *DownloadConfig {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return &DownloadConfig{
		Region:      "ap-east-1",
		Concurrency: 10,
		DownloadDir: filepath.Join(cwd, "files"),
		LogLevel:    "info",
		EnableDebug: false,
		QuietMode:   false,
	}
}

// LoadFromEnv overlays S3FETCH_* environment variables onto the configuration,
// mirroring the teacher's TERAFETCH_*-prefixed convention.
func (c *DownloadConfig) LoadFromEnv() {
	if v := os.Getenv("S3FETCH_BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("S3FETCH_REGION"); v != "" {
		c.Region = v
	}
	if v := os.Getenv("S3FETCH_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("S3FETCH_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Concurrency = n
		}
	}
	if v := os.Getenv("S3FETCH_DOWNLOAD_DIR"); v != "" {
		c.DownloadDir = v
	}
	if v := os.Getenv("S3FETCH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("S3FETCH_LOG_FILE"); v != "" {
		c.LogFileName = v
	}
	if v := os.Getenv("S3FETCH_DEBUG"); v != "" {
		c.EnableDebug = v == "true" || v == "1"
	}
	if v := os.Getenv("S3FETCH_QUIET"); v != "" {
		c.QuietMode = v == "true" || v == "1"
	}
}

// GetEnvWithDefault returns the environment variable value or a default.
func GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ValidateConfig checks the configuration values required before a run starts.
func (c *DownloadConfig) ValidateConfig() error {
	if strings.TrimSpace(c.Bucket) == "" {
		return fmt.Errorf("bucket is required")
	}
	if strings.TrimSpace(c.ObjectKey) == "" {
		return fmt.Errorf("object_key is required")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("invalid concurrency: %d (must be >= 1)", c.Concurrency)
	}
	if strings.TrimSpace(c.DownloadDir) == "" {
		return fmt.Errorf("download_dir is required")
	}
	return nil
}
