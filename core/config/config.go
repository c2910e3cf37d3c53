// Package config loads scrubber settings from TOML, applies SURGERY_*
// environment overrides and validates the result.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

const defaultConfigPath = "~/.config/media-metadata-surgery/config.toml"

// Image holds still-image rewrite settings.
type Image struct {
	// Quality is the re-encode quality factor in (0, 1].
	Quality float64 `toml:"quality" env:"SURGERY_IMAGE_QUALITY" env-upd:"" validate:"gt=0,lte=1"`
	// MinTransplantBytes is the smallest encoded directory worth transplanting.
	MinTransplantBytes int `toml:"min_transplant_bytes" env:"SURGERY_MIN_TRANSPLANT_BYTES" env-upd:"" validate:"gte=0,lte=65527"`
}

// Video holds remux engine settings.
type Video struct {
	FFmpegBinary        string `toml:"ffmpeg_binary" env:"SURGERY_FFMPEG_BINARY" env-upd:"" validate:"required"`
	FFprobeBinary       string `toml:"ffprobe_binary" env:"SURGERY_FFPROBE_BINARY" env-upd:"" validate:"required"`
	ProbeTimeoutSeconds int    `toml:"probe_timeout_seconds" env:"SURGERY_PROBE_TIMEOUT_SECONDS" env-upd:"" validate:"gte=1,lte=600"`
	StripTimeoutSeconds int    `toml:"strip_timeout_seconds" env:"SURGERY_STRIP_TIMEOUT_SECONDS" env-upd:"" validate:"gte=1,lte=86400"`
	WorkspaceDir        string `toml:"workspace_dir" env:"SURGERY_WORKSPACE_DIR" env-upd:"" validate:"required"`
}

// Logging configures core/logging.
type Logging struct {
	Level  string `toml:"level" env:"SURGERY_LOG_LEVEL" env-upd:"" validate:"oneof=debug info warn error"`
	Format string `toml:"format" env:"SURGERY_LOG_FORMAT" env-upd:"" validate:"oneof=auto console json"`
}

// Config is the full settings tree.
type Config struct {
	Image   Image   `toml:"image"`
	Video   Video   `toml:"video"`
	Logging Logging `toml:"logging"`
}

// ProbeTimeout is the probe deadline as a duration.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Video.ProbeTimeoutSeconds) * time.Second
}

// StripTimeout is the remux deadline as a duration.
func (c *Config) StripTimeout() time.Duration {
	return time.Duration(c.Video.StripTimeoutSeconds) * time.Second
}

// DefaultConfigPath returns the per-user config file location.
func DefaultConfigPath() (string, error) {
	return homedir.Expand(defaultConfigPath)
}

// Load reads path (or the default location when path is empty), layers
// environment overrides on top, and validates. It also reports the resolved
// path and whether a file was found there; a missing file is not an error.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolvePath(path)
	if err != nil {
		return nil, "", false, err
	}
	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		dec := toml.NewDecoder(file)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if err := cleanenv.UpdateEnv(&cfg); err != nil {
		return nil, "", false, fmt.Errorf("read environment overrides: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func resolvePath(path string) (string, bool, error) {
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return "", false, fmt.Errorf("resolve home directory: %w", err)
		}
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return expanded, false, nil
	case err != nil:
		return "", false, fmt.Errorf("stat config: %w", err)
	case info.IsDir():
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

func (c *Config) normalize() error {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Video.FFmpegBinary = strings.TrimSpace(c.Video.FFmpegBinary)
	c.Video.FFprobeBinary = strings.TrimSpace(c.Video.FFprobeBinary)

	ws, err := expandPath(strings.TrimSpace(c.Video.WorkspaceDir))
	if err != nil {
		return fmt.Errorf("video.workspace_dir: %w", err)
	}
	c.Video.WorkspaceDir = ws
	return nil
}

func expandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", p, err)
	}
	abs, err := filepath.Abs(filepath.Clean(expanded))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", expanded, err)
	}
	return abs, nil
}

// Encode renders cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

// CreateSample writes the annotated sample config to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
