package config_test

import (
	"testing"

	"jpegscaler/internal/config"
)

func TestLoad_WithEnvVars(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9999")
	t.Setenv("OUTPUT_DIR", "./tmp/out")
	t.Setenv("JPEG_QUALITY", "0.35")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("RESAMPLE_WORKERS", "3")
	t.Setenv("AUTO_ORIENT", "true")

	cfg := config.Load()
	if cfg.ServerAddr != ":9999" {
		t.Fatalf("expected SERVER_ADDR :9999, got %s", cfg.ServerAddr)
	}
	if cfg.OutputDir != "./tmp/out" {
		t.Fatalf("expected OUTPUT_DIR ./tmp/out, got %s", cfg.OutputDir)
	}
	if cfg.Quality != 0.35 {
		t.Fatalf("expected JPEG_QUALITY 0.35, got %v", cfg.Quality)
	}
	if cfg.MaxUploadBytes != 1024 {
		t.Fatalf("expected MAX_UPLOAD_BYTES 1024, got %d", cfg.MaxUploadBytes)
	}
	if cfg.Workers != 3 {
		t.Fatalf("expected RESAMPLE_WORKERS 3, got %d", cfg.Workers)
	}
	if !cfg.AutoOrient {
		t.Fatalf("expected AUTO_ORIENT true")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	// ensure env is clear
	for _, key := range []string{"SERVER_ADDR", "OUTPUT_DIR", "JPEG_QUALITY", "MAX_UPLOAD_BYTES", "MAX_DIMENSION", "AUTO_ORIENT"} {
		t.Setenv(key, "")
	}

	cfg := config.Load()
	if cfg.ServerAddr == "" {
		t.Fatalf("expected default SERVER_ADDR, got empty")
	}
	if cfg.OutputDir == "" {
		t.Fatalf("expected default OUTPUT_DIR, got empty")
	}
	if cfg.Quality != 0.8 {
		t.Fatalf("expected default quality 0.8, got %v", cfg.Quality)
	}
	if cfg.MaxDimension != 16384 {
		t.Fatalf("expected default MAX_DIMENSION 16384, got %d", cfg.MaxDimension)
	}
	if cfg.AutoOrient {
		t.Fatalf("expected AUTO_ORIENT off by default")
	}
}

func TestLoad_InvalidNumberFallsBack(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "lots")
	t.Setenv("JPEG_QUALITY", "high")

	cfg := config.Load()
	if cfg.MaxUploadBytes != 32<<20 {
		t.Fatalf("expected default MAX_UPLOAD_BYTES, got %d", cfg.MaxUploadBytes)
	}
	if cfg.Quality != 0.8 {
		t.Fatalf("expected default quality, got %v", cfg.Quality)
	}
}

func TestValidate_RejectsQuality(t *testing.T) {
	t.Setenv("JPEG_QUALITY", "1.5")

	cfg := config.Load()
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for JPEG_QUALITY 1.5")
	}
}
