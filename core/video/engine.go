// Package video removes container metadata from video files by stream-copy
// remuxing through ffmpeg, and reports basic container facts via ffprobe.
// Pixel and sample data are never re-encoded.
package video

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ankit-chaubey/media-metadata-surgery/core"
	"github.com/ankit-chaubey/media-metadata-surgery/core/deps"
	"github.com/ankit-chaubey/media-metadata-surgery/core/logging"
)

const (
	defaultProbeTimeout = 30 * time.Second
	defaultStripTimeout = 10 * time.Minute
	stderrTail          = 2048
)

// Options configures an Engine. Zero values take defaults.
type Options struct {
	FFmpegBinary  string
	FFprobeBinary string
	// WorkspaceDir holds per-process session directories.
	WorkspaceDir string
	ProbeTimeout time.Duration
	StripTimeout time.Duration
	Runner       Runner
	Logger       *slog.Logger
}

// Engine owns the external tools and the scratch workspace. Initialization
// is lazy and retried on the next call when it fails. All methods are safe
// for concurrent use.
type Engine struct {
	opts   Options
	runner Runner
	logger *slog.Logger

	mu      sync.Mutex
	ready   bool
	ffmpeg  string
	ffprobe string
	ws      *workspace
}

// NewEngine returns an uninitialized engine.
func NewEngine(opts Options) *Engine {
	if opts.FFmpegBinary == "" {
		opts.FFmpegBinary = "ffmpeg"
	}
	if opts.FFprobeBinary == "" {
		opts.FFprobeBinary = "ffprobe"
	}
	if opts.WorkspaceDir == "" {
		opts.WorkspaceDir = filepath.Join(os.TempDir(), "media-metadata-surgery")
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = defaultProbeTimeout
	}
	if opts.StripTimeout <= 0 {
		opts.StripTimeout = defaultStripTimeout
	}
	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Engine{
		opts:   opts,
		runner: runner,
		logger: logging.NewComponentLogger(opts.Logger, "video"),
	}
}

var (
	sharedMu sync.Mutex
	shared   *Engine
)

// Shared returns the process-wide engine, creating it from opts on first
// use. Options passed on later calls are ignored.
func Shared(opts Options) *Engine {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared == nil {
		shared = NewEngine(opts)
	}
	return shared
}

// Ready initializes the engine if needed: both tools must resolve and
// ffmpeg must run, then a session workspace is opened. Failures wrap
// core.ErrUnavailable and leave the engine uninitialized.
func (e *Engine) Ready(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ready {
		return nil
	}

	statuses := deps.CheckBinaries(deps.VideoTools(e.opts.FFmpegBinary, e.opts.FFprobeBinary))
	if missing, ok := deps.FirstMissing(statuses); ok {
		return fmt.Errorf("%w: %s: %s", core.ErrUnavailable, missing.Name, missing.Detail)
	}
	ffmpeg, ffprobe := statuses[0].Path, statuses[1].Path

	vctx, cancel := context.WithTimeout(ctx, e.opts.ProbeTimeout)
	defer cancel()
	if _, stderr, err := e.runner.Run(vctx, ffmpeg, []string{"-hide_banner", "-version"}); err != nil {
		return fmt.Errorf("%w: %s -version: %v %s", core.ErrUnavailable, ffmpeg, err, tail(stderr, 256))
	}

	ws, err := openWorkspace(e.opts.WorkspaceDir, e.logger)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrUnavailable, err)
	}

	e.ffmpeg, e.ffprobe, e.ws = ffmpeg, ffprobe, ws
	e.ready = true
	e.logger.Debug("video engine ready",
		logging.String("ffmpeg", ffmpeg),
		logging.String("ffprobe", ffprobe),
		logging.String("workspace", ws.dir))
	return nil
}

// Close removes the session workspace. The engine re-initializes on next use.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return nil
	}
	ws := e.ws
	e.ready, e.ws = false, nil
	return ws.Close()
}

// stage writes data into a fresh workspace entry and returns the paths and
// a cleanup func that removes both.
func (e *Engine) stage(data []byte, ext string) (string, string, func(), error) {
	e.mu.Lock()
	ws := e.ws
	e.mu.Unlock()
	if ws == nil {
		return "", "", nil, core.ErrUnavailable
	}
	in, out := ws.entry(ext)
	cleanup := func() {
		_ = os.Remove(in)
		_ = os.Remove(out)
	}
	if err := os.WriteFile(in, data, 0o600); err != nil {
		cleanup()
		return "", "", nil, fmt.Errorf("stage input: %w", err)
	}
	return in, out, cleanup, nil
}

func (e *Engine) tools() (ffmpeg, ffprobe string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ffmpeg, e.ffprobe
}
