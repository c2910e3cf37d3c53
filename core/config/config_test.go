package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := Load(path)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, path, resolved)
	assert.Equal(t, DefaultQuality, cfg.Image.Quality)
	assert.Equal(t, 32, cfg.Image.MinTransplantBytes)
	assert.Equal(t, 30*time.Second, cfg.ProbeTimeout())
	assert.True(t, filepath.IsAbs(cfg.Video.WorkspaceDir))
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[image]
quality = 0.5

[video]
ffmpeg_binary = "/opt/ffmpeg/bin/ffmpeg"
probe_timeout_seconds = 5

[logging]
level = "DEBUG"
format = "json"
`)
	cfg, _, exists, err := Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 0.5, cfg.Image.Quality)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.Video.FFmpegBinary)
	assert.Equal(t, "ffprobe", cfg.Video.FFprobeBinary)
	assert.Equal(t, 5*time.Second, cfg.ProbeTimeout())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvironmentWinsOverFile(t *testing.T) {
	path := writeConfig(t, "[image]\nquality = 0.5\n")
	t.Setenv("SURGERY_IMAGE_QUALITY", "0.75")
	t.Setenv("SURGERY_WORKSPACE_DIR", "~/scratch")

	cfg, _, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.75, cfg.Image.Quality)
	assert.NotContains(t, cfg.Video.WorkspaceDir, "~")
	assert.Equal(t, "scratch", filepath.Base(cfg.Video.WorkspaceDir))
}

func TestEnvironmentOverridesVideoAndLogging(t *testing.T) {
	t.Setenv("SURGERY_LOG_LEVEL", "error")
	t.Setenv("SURGERY_FFMPEG_BINARY", "/opt/ff/ffmpeg")
	t.Setenv("SURGERY_PROBE_TIMEOUT_SECONDS", "7")

	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "/opt/ff/ffmpeg", cfg.Video.FFmpegBinary)
	assert.Equal(t, 7*time.Second, cfg.ProbeTimeout())
	assert.Equal(t, "ffprobe", cfg.Video.FFprobeBinary, "unset variables leave values alone")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"quality above one": "[image]\nquality = 1.5\n",
		"zero quality":      "[image]\nquality = 0.0\n",
		"bad log format":    "[logging]\nformat = \"xml\"\n",
		"empty binary":      "[video]\nffprobe_binary = \"  \"\n",
		"timeout too long":  "[video]\nprobe_timeout_seconds = 9999\n",
		"unknown key":       "[image]\nqualty = 0.5\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, _, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestValidateNamesTOMLKeys(t *testing.T) {
	cfg := Default()
	cfg.Image.Quality = 2
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image.quality")
}

func TestSampleConfigLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, CreateSample(path))
	cfg, _, exists, err := Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, Default().Image, cfg.Image)
}

func TestEncodeRoundTrips(t *testing.T) {
	cfg := Default()
	data, err := Encode(&cfg)
	require.NoError(t, err)
	path := writeConfig(t, string(data))
	loaded, _, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Video.ProbeTimeoutSeconds, loaded.Video.ProbeTimeoutSeconds)
	assert.Equal(t, cfg.Logging, loaded.Logging)
}
