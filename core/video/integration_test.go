package video

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStripWithFFmpeg runs the real tools end to end. It is skipped when
// ffmpeg or ffprobe are not installed.
func TestStripWithFFmpeg(t *testing.T) {
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not installed", bin)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	src := filepath.Join(t.TempDir(), "tagged.mp4")
	gen := exec.CommandContext(ctx, "ffmpeg", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=size=64x48:rate=5:duration=1",
		"-metadata", "title=secret title", "-metadata", "location=+45.0000+007.0000/",
		"-c:v", "mpeg4", src)
	if out, err := gen.CombinedOutput(); err != nil {
		t.Skipf("cannot generate fixture: %v: %s", err, out)
	}
	data, err := os.ReadFile(src)
	require.NoError(t, err)

	e := NewEngine(Options{WorkspaceDir: t.TempDir()})
	defer e.Close()

	before, err := e.Probe(ctx, data, "tagged.mp4", "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, "secret title", before.Tags["title"])
	require.NotNil(t, before.Width)
	assert.Equal(t, uint32(64), *before.Width)

	cleaned, err := e.Strip(ctx, data, "tagged.mp4")
	require.NoError(t, err)
	assert.Empty(t, metadataAtoms(cleaned))

	after, err := e.Probe(ctx, cleaned, "tagged.mp4", "video/mp4")
	require.NoError(t, err)
	assert.NotContains(t, after.Tags, "title")
	assert.NotContains(t, after.Tags, "location")
	assert.Equal(t, *before.Width, *after.Width)
	assert.Equal(t, *before.Height, *after.Height)
}
