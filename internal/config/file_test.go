package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ytget/ytfetch/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Logger.Project != DefaultProject || cfg.Logger.Level != DefaultLogLevel {
		t.Errorf("Unexpected logger config %+v", cfg.Logger)
	}
	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("Expected poll interval %v, got %v", DefaultPollInterval, cfg.PollInterval)
	}
	if cfg.MaxParallel != DefaultMaxParallel {
		t.Errorf("Expected max parallel %d, got %d", DefaultMaxParallel, cfg.MaxParallel)
	}
	if !cfg.FallbackToPath {
		t.Error("Expected PATH fallback by default")
	}
	if cfg.QualityPreset() != model.DefaultQuality {
		t.Errorf("Expected default quality, got %s", cfg.QualityPreset())
	}
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "config.yaml", `
logger:
  project: ytfetch-test
  level: debug
  format: json
poll_interval: 250ms
bin_dir: /opt/ytfetch/bin
fallback_to_path: false
extra_args:
  - --no-color
  - --restrict-filenames
history_path: /var/lib/ytfetch/history.db
thumbnail_url: http://localhost:8080/%s.jpg
max_parallel: 4
download_dir: /srv/videos
quality: 480p
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Logger.Project != "ytfetch-test" || cfg.Logger.Level != "debug" || cfg.Logger.Format != "json" {
		t.Errorf("Unexpected logger config %+v", cfg.Logger)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %v", cfg.PollInterval)
	}
	if cfg.BinDir != "/opt/ytfetch/bin" || cfg.FallbackToPath {
		t.Errorf("Unexpected binary settings: %s %v", cfg.BinDir, cfg.FallbackToPath)
	}
	if strings.Join(cfg.ExtraArgs, " ") != "--no-color --restrict-filenames" {
		t.Errorf("Unexpected extra args %v", cfg.ExtraArgs)
	}
	if cfg.HistoryPath != "/var/lib/ytfetch/history.db" || cfg.ThumbnailURL != "http://localhost:8080/%s.jpg" {
		t.Errorf("Unexpected paths: %s %s", cfg.HistoryPath, cfg.ThumbnailURL)
	}
	if cfg.MaxParallel != 4 || cfg.DownloadDir != "/srv/videos" || cfg.QualityPreset() != model.Quality480p {
		t.Errorf("Unexpected download settings: %d %s %s", cfg.MaxParallel, cfg.DownloadDir, cfg.Quality)
	}
}

func TestLoad_Normalize(t *testing.T) {
	path := writeFile(t, "config.yaml", `
logger:
  project: ""
poll_interval: 1ms
max_parallel: 99
quality: 8k
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logger.Project != DefaultProject {
		t.Errorf("Empty project should default, got %q", cfg.Logger.Project)
	}
	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("Too short poll interval should default, got %v", cfg.PollInterval)
	}
	if cfg.MaxParallel != MaxMaxParallel {
		t.Errorf("Expected max parallel clamped to %d, got %d", MaxMaxParallel, cfg.MaxParallel)
	}
	if cfg.QualityPreset() != model.QualityBest {
		t.Errorf("Unknown quality should become best, got %s", cfg.Quality)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}

	path := writeFile(t, "broken.yaml", "max_parallel: [unclosed")
	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", "max_parallel: 3\nquality: 360p\n")

	t.Setenv(EnvMaxParallel, "6")
	t.Setenv(EnvQuality, "Audio Only")
	t.Setenv(EnvPollInterval, "50ms")
	t.Setenv(EnvFallbackToPath, "false")
	t.Setenv(EnvExtraArgs, "--no-color  --quiet")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxParallel != 6 {
		t.Errorf("Expected env max parallel 6, got %d", cfg.MaxParallel)
	}
	if cfg.QualityPreset() != model.QualityAudioOnly {
		t.Errorf("Expected env quality, got %s", cfg.Quality)
	}
	if cfg.PollInterval != 50*time.Millisecond {
		t.Errorf("Expected 50ms, got %v", cfg.PollInterval)
	}
	if cfg.FallbackToPath {
		t.Error("Expected PATH fallback disabled by env")
	}
	if len(cfg.ExtraArgs) != 2 || cfg.ExtraArgs[1] != "--quiet" {
		t.Errorf("Unexpected extra args %v", cfg.ExtraArgs)
	}
	if cfg.Logger.Level != "warn" {
		t.Errorf("Expected warn level, got %s", cfg.Logger.Level)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvPollInterval, "fast"},
		{EnvFallbackToPath, "maybe"},
		{EnvMaxParallel, "many"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(""); err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "YTFETCH_DOWNLOAD_DIR=/from/dotenv\nYTFETCH_MAX_PARALLEL=7\n")

	t.Setenv(EnvMaxParallel, "2")
	// t.Setenv restores the variable; make sure the dotenv value is cleaned up too
	t.Setenv(EnvDownloadDir, "")
	os.Unsetenv(EnvDownloadDir)

	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DownloadDir != "/from/dotenv" {
		t.Errorf("Expected download dir from .env, got %q", cfg.DownloadDir)
	}
	if cfg.MaxParallel != 2 {
		t.Errorf("Existing environment must win over .env, got %d", cfg.MaxParallel)
	}
}
