package internal

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Region != "ap-east-1" {
		t.Errorf("expected default region ap-east-1, got %s", cfg.Region)
	}
	if cfg.Concurrency != 10 {
		t.Errorf("expected default concurrency 10, got %d", cfg.Concurrency)
	}
	if cfg.DownloadDir == "" {
		t.Errorf("expected non-empty default download dir")
	}
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("S3FETCH_BUCKET", "my-bucket")
	t.Setenv("S3FETCH_CONCURRENCY", "4")
	t.Setenv("S3FETCH_QUIET", "true")

	cfg := DefaultConfig()
	cfg.LoadFromEnv()

	if cfg.Bucket != "my-bucket" {
		t.Errorf("expected bucket to be loaded from env, got %q", cfg.Bucket)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("expected concurrency 4, got %d", cfg.Concurrency)
	}
	if !cfg.QuietMode {
		t.Errorf("expected quiet mode true")
	}
}

func TestConfig_ValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *DownloadConfig)
		wantErr bool
	}{
		{"valid config", func(c *DownloadConfig) { c.Bucket = "b"; c.ObjectKey = "k" }, false},
		{"missing bucket", func(c *DownloadConfig) { c.ObjectKey = "k" }, true},
		{"missing object key", func(c *DownloadConfig) { c.Bucket = "b" }, true},
		{"zero concurrency", func(c *DownloadConfig) { c.Bucket = "b"; c.ObjectKey = "k"; c.Concurrency = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.ValidateConfig()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
