package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ytget/ytfetch/internal/model"
	"github.com/ytget/ytfetch/pkg/logster"
)

// Process configuration defaults
const (
	DefaultProject      = "ytfetch"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"
	DefaultPollInterval = 100 * time.Millisecond
	MinPollInterval     = 10 * time.Millisecond
	DefaultEnvFile      = ".env"
	EnvPrefix           = "YTFETCH_"
)

// Environment variables overriding file values
const (
	EnvLogLevel       = EnvPrefix + "LOG_LEVEL"
	EnvLogFormat      = EnvPrefix + "LOG_FORMAT"
	EnvPollInterval   = EnvPrefix + "POLL_INTERVAL"
	EnvBinDir         = EnvPrefix + "BIN_DIR"
	EnvFallbackToPath = EnvPrefix + "FALLBACK_TO_PATH"
	EnvExtraArgs      = EnvPrefix + "EXTRA_ARGS"
	EnvHistoryPath    = EnvPrefix + "HISTORY_PATH"
	EnvThumbnailURL   = EnvPrefix + "THUMBNAIL_URL"
	EnvMaxParallel    = EnvPrefix + "MAX_PARALLEL"
	EnvDownloadDir    = EnvPrefix + "DOWNLOAD_DIR"
	EnvQuality        = EnvPrefix + "QUALITY"
)

// File is the process configuration read at startup
type File struct {
	Logger         logster.Config `yaml:"logger"`
	PollInterval   time.Duration  `yaml:"poll_interval"`
	BinDir         string         `yaml:"bin_dir"`
	FallbackToPath bool           `yaml:"fallback_to_path"`
	ExtraArgs      []string       `yaml:"extra_args"`
	HistoryPath    string         `yaml:"history_path"`
	ThumbnailURL   string         `yaml:"thumbnail_url"`
	MaxParallel    int            `yaml:"max_parallel"`
	DownloadDir    string         `yaml:"download_dir"`
	Quality        string         `yaml:"quality"`
}

// Default returns the configuration used when no file is given
func Default() File {
	cfg := File{
		Logger: logster.Config{
			Project: DefaultProject,
			Level:   DefaultLogLevel,
			Format:  DefaultLogFormat,
		},
		PollInterval:   DefaultPollInterval,
		BinDir:         filepath.Join(os.TempDir(), DefaultProject),
		FallbackToPath: true,
		MaxParallel:    DefaultMaxParallel,
		Quality:        string(model.DefaultQuality),
	}
	if dir, err := os.UserConfigDir(); err == nil {
		cfg.HistoryPath = filepath.Join(dir, DefaultProject, "history.db")
	}
	return cfg
}

// Load reads the YAML file at path over the defaults and applies YTFETCH_*
// environment overrides. An empty path skips the file.
func Load(path string) (File, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return File{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return File{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return File{}, err
	}
	cfg.normalize()
	return cfg, nil
}

// LoadDotEnv loads variables from env files into the process environment.
// Missing files are skipped; variables already set are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{DefaultEnvFile}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

func (c *File) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str(EnvLogLevel, &c.Logger.Level)
	str(EnvLogFormat, &c.Logger.Format)
	str(EnvBinDir, &c.BinDir)
	str(EnvHistoryPath, &c.HistoryPath)
	str(EnvThumbnailURL, &c.ThumbnailURL)
	str(EnvDownloadDir, &c.DownloadDir)
	str(EnvQuality, &c.Quality)

	if v, ok := lookup(EnvPollInterval); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPollInterval, err)
		}
		c.PollInterval = d
	}
	if v, ok := lookup(EnvFallbackToPath); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvFallbackToPath, err)
		}
		c.FallbackToPath = b
	}
	if v, ok := lookup(EnvMaxParallel); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMaxParallel, err)
		}
		c.MaxParallel = n
	}
	if v, ok := lookup(EnvExtraArgs); ok {
		c.ExtraArgs = strings.Fields(v)
	}
	return nil
}

func (c *File) normalize() {
	if c.Logger.Project == "" {
		c.Logger.Project = DefaultProject
	}
	if c.PollInterval < MinPollInterval {
		c.PollInterval = DefaultPollInterval
	}
	c.MaxParallel = ClampMaxParallel(c.MaxParallel)
	c.Quality = string(model.ParseQuality(c.Quality))
}

// QualityPreset returns the configured quality as a model value
func (c File) QualityPreset() model.Quality {
	return model.ParseQuality(c.Quality)
}
