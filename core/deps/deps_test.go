package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckBinaries(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub")
	}
	present := filepath.Join(t.TempDir(), "present")
	require.NoError(t, os.WriteFile(present, []byte("#!/bin/sh\nexit 0\n"), 0o755))

	results := CheckBinaries([]Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  ", Optional: true},
	})
	require.Len(t, results, 3)

	assert.True(t, results[0].Available)
	assert.Equal(t, present, results[0].Path)
	assert.Empty(t, results[0].Detail)

	assert.False(t, results[1].Available)
	assert.Contains(t, results[1].Detail, "not found")

	assert.Equal(t, "command not configured", results[2].Detail)

	missing, ok := FirstMissing(results)
	assert.True(t, ok)
	assert.Equal(t, "Missing", missing.Name)
}

func TestVideoTools(t *testing.T) {
	reqs := VideoTools("ffmpeg", "/usr/bin/ffprobe")
	require.Len(t, reqs, 2)
	assert.Equal(t, "ffmpeg", reqs[0].Command)
	assert.Equal(t, "/usr/bin/ffprobe", reqs[1].Command)
}
