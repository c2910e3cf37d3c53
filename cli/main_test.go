package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	stdimage "image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankit-chaubey/media-metadata-surgery/core/exif"
	"github.com/ankit-chaubey/media-metadata-surgery/core/image"
	"github.com/ankit-chaubey/media-metadata-surgery/core/jpg"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeCameraJPEG(t *testing.T, dir string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, stdimage.NewGray(stdimage.Rect(0, 0, 4, 4)), nil))

	d := exif.NewDirectory(binary.BigEndian)
	require.NoError(t, d.Add(exif.NewEntry(exif.Primary, 0x010F, exif.NewASCII("TestMake"))))
	require.NoError(t, d.Add(exif.NewEntry(exif.Primary, 0x8298, exif.NewASCII("(c) someone"))))
	blob, err := d.Encode()
	require.NoError(t, err)
	data, err := jpg.InsertExif(blob, buf.Bytes())
	require.NoError(t, err)

	path := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	_, err := runCLI(t, "config", "init", "--path", path)
	require.NoError(t, err)
	return path
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "/a/photo_noexif.jpg", outputPath("/a/photo.jpg", "", strippedSuffix, ""))
	assert.Equal(t, "/a/scan_noexif.jpg", outputPath("/a/scan.png", "", strippedSuffix, ".jpg"))
	assert.Equal(t, "x.jpg", outputPath("/a/photo.jpg", "x.jpg", strippedSuffix, ""))
	assert.Equal(t, "clip_noexif", outputPath("clip", "", strippedSuffix, ""))
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir)

	_, err := runCLI(t, "config", "init", "--path", path)
	assert.ErrorContains(t, err, "already exists")

	out, err := runCLI(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "quality")
	assert.Contains(t, out, "ffmpeg_binary")
}

func TestViewJSON(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	photo := writeCameraJPEG(t, dir)

	out, err := runCLI(t, "--config", cfg, "--json", "view", photo)
	require.NoError(t, err)
	var got struct {
		Fields []struct{ Key, Value string } `json:"fields"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotEmpty(t, got.Fields)
	assert.Equal(t, "Make", got.Fields[0].Key)
	assert.Equal(t, "TestMake", got.Fields[0].Value)
}

func TestStripKeepsNamedTags(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	photo := writeCameraJPEG(t, dir)

	_, err := runCLI(t, "--config", cfg, "strip", "--keep", "Copyright", photo)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "photo_noexif.jpg"))
	require.NoError(t, err)
	flat := image.New(image.Options{}).ProbeImageMetadata(data, "image/jpeg")
	assert.Equal(t, []string{"Copyright"}, flat.Names())
}

func TestStripRejectsOutWithManyFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	_, err := runCLI(t, "--config", cfg, "strip", "--out", "x.jpg", "a.jpg", "b.jpg")
	assert.ErrorContains(t, err, "--out")
}
