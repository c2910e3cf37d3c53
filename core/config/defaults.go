package config

import (
	"os"
	"path/filepath"
)

const (
	// DefaultQuality matches the browser canvas default for image/jpeg.
	DefaultQuality = 0.92
	// DefaultMinTransplantBytes is the size of the smallest directory that
	// can carry one entry: APP1 prefix, TIFF header, one-entry IFD.
	DefaultMinTransplantBytes = 6 + 8 + 2 + 12 + 4

	defaultProbeTimeoutSeconds = 30
	defaultStripTimeoutSeconds = 600
)

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Image: Image{
			Quality:            DefaultQuality,
			MinTransplantBytes: DefaultMinTransplantBytes,
		},
		Video: Video{
			FFmpegBinary:        "ffmpeg",
			FFprobeBinary:       "ffprobe",
			ProbeTimeoutSeconds: defaultProbeTimeoutSeconds,
			StripTimeoutSeconds: defaultStripTimeoutSeconds,
			WorkspaceDir:        filepath.Join(os.TempDir(), "media-metadata-surgery"),
		},
		Logging: Logging{
			Level:  "info",
			Format: "auto",
		},
	}
}
