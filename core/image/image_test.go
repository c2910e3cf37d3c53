package image

import (
	"bytes"
	"encoding/binary"
	"errors"
	stdimage "image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankit-chaubey/media-metadata-surgery/core"
	"github.com/ankit-chaubey/media-metadata-surgery/core/exif"
	"github.com/ankit-chaubey/media-metadata-surgery/core/jpg"
)

var thumb = []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x00, 0x04, 0x01, 0x02, 0xFF, 0xD9}

func solid(w, h int, c color.Color) *stdimage.RGBA {
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func plainJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(w, h, color.RGBA{200, 40, 40, 255}), &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func cameraDirectory(t *testing.T, orientation uint16) *exif.Directory {
	t.Helper()
	d := exif.NewDirectory(binary.LittleEndian)
	for _, e := range []exif.Entry{
		exif.NewEntry(exif.Primary, 0x010F, exif.NewASCII("TestMake")),
		exif.NewEntry(exif.Primary, 0x0110, exif.NewASCII("TestModel")),
		exif.NewEntry(exif.Primary, 0x0112, exif.Shorts{orientation}),
		exif.NewEntry(exif.Exif, 0x9003, exif.NewASCII("2024:01:01 12:00:00")),
		exif.NewEntry(exif.GPS, 0x0001, exif.NewASCII("N")),
		exif.NewEntry(exif.GPS, 0x0002, exif.Rationals{{Num: 45, Den: 1}, {Num: 0, Den: 1}, {Num: 0, Den: 1}}),
		exif.NewEntry(exif.Thumbnail, 0x0103, exif.Shorts{6}),
	} {
		require.NoError(t, d.Add(e))
	}
	d.Thumbnail = thumb
	return d
}

func withDirectory(t *testing.T, d *exif.Directory, container []byte) []byte {
	t.Helper()
	blob, err := d.Encode()
	require.NoError(t, err)
	out, err := jpg.InsertExif(blob, container)
	require.NoError(t, err)
	return out
}

func cameraJPEG(t *testing.T) []byte {
	t.Helper()
	return withDirectory(t, cameraDirectory(t, 1), plainJPEG(t, 8, 8))
}

// withRawAPP1 inserts an Exif segment whose TIFF body is payload.
func withRawAPP1(t *testing.T, payload []byte, container []byte) []byte {
	t.Helper()
	segs, err := jpg.Parse(container)
	require.NoError(t, err)
	app1 := jpg.Segment{Marker: jpg.MarkerAPP1, Data: append([]byte("Exif\x00\x00"), payload...)}
	segs = append(segs[:1], append([]jpg.Segment{app1}, segs[1:]...)...)
	out, err := jpg.Encode(segs)
	require.NoError(t, err)
	return out
}

func scanData(t *testing.T, data []byte) []byte {
	t.Helper()
	segs, err := jpg.Parse(data)
	require.NoError(t, err)
	for _, s := range segs {
		if s.Marker == jpg.MarkerScanData {
			return s.Data
		}
	}
	t.Fatal("no scan data")
	return nil
}

func names(m core.FlatMetadata) []string {
	out := m.Names()
	sort.Strings(out)
	return out
}

type countingReencoder struct {
	calls int
	err   error
}

func (r *countingReencoder) Reencode(data []byte, quality float64) ([]byte, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return JPEGReencoder{}.Reencode(data, quality)
}

func TestProbeCameraFixture(t *testing.T) {
	s := New(Options{})
	flat := s.ProbeImageMetadata(cameraJPEG(t), "image/jpeg")

	assert.Equal(t, "TestMake", flat["Make"])
	assert.Equal(t, "TestModel", flat["Model"])
	assert.Equal(t, "N", flat["GPSLatitudeRef"])
	assert.Equal(t, []exif.Rational{{Num: 45, Den: 1}, {Num: 0, Den: 1}, {Num: 0, Den: 1}}, flat["GPSLatitude"])
	assert.Contains(t, flat, "ThumbnailCompression")
}

func TestProbeNeverFails(t *testing.T) {
	s := New(Options{})
	assert.Empty(t, s.ProbeImageMetadata(plainJPEG(t, 4, 4), "image/jpeg"))
	assert.Empty(t, s.ProbeImageMetadata([]byte("\x89PNG\r\n\x1a\n"), "image/png"))
	assert.Empty(t, s.ProbeImageMetadata([]byte("not an image"), "image/jpeg"))
	assert.Empty(t, s.ProbeImageMetadata(withRawAPP1(t, []byte("garbage!"), plainJPEG(t, 4, 4)), "image/jpeg"))
}

func TestDecodeContainerRejectsMislabelledJPEG(t *testing.T) {
	_, err := DecodeContainer([]byte("\x89PNG\r\n\x1a\n...."), "image/jpeg")
	var fe *core.FormatError
	require.True(t, errors.As(err, &fe))

	dir, err := DecodeContainer([]byte("\x89PNG\r\n\x1a\n...."), "image/png")
	require.NoError(t, err)
	assert.True(t, dir.IsEmpty())
}

func TestStripAllIsLossless(t *testing.T) {
	s := New(Options{})
	src := cameraJPEG(t)

	out, err := s.StripAllMetadata(src, "image/jpeg", 0.9)
	require.NoError(t, err)
	assert.False(t, out.FellBack)
	assert.Empty(t, s.ProbeImageMetadata(out.Data, "image/jpeg"))
	assert.Equal(t, scanData(t, src), scanData(t, out.Data))
	assert.Less(t, len(out.Data), len(src))
}

func TestStripAllBakesOrientation(t *testing.T) {
	s := New(Options{})
	src := withDirectory(t, cameraDirectory(t, 6), plainJPEG(t, 8, 4))

	out, err := s.StripAllMetadata(src, "image/jpeg", 0.9)
	require.NoError(t, err)
	assert.False(t, out.FellBack)
	assert.Empty(t, s.ProbeImageMetadata(out.Data, "image/jpeg"))

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Width)
	assert.Equal(t, 8, cfg.Height)
}

func TestStripSelectedKeepsOnlyNamedTags(t *testing.T) {
	s := New(Options{})
	src := cameraJPEG(t)

	out, err := s.StripSelectedMetadata(src, "image/jpeg", core.NewKeepSet("Make", "GPSLatitude", "NotATag"), 0.9)
	require.NoError(t, err)
	assert.False(t, out.FellBack)
	assert.Equal(t, scanData(t, src), scanData(t, out.Data))

	var kept []string
	for _, n := range names(s.ProbeImageMetadata(out.Data, "image/jpeg")) {
		if !strings.HasPrefix(n, "Thumbnail") {
			kept = append(kept, n)
		}
	}
	assert.Equal(t, []string{"GPSLatitude", "Make"}, kept)

	dir, err := DecodeContainer(out.Data, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, thumb, dir.Thumbnail)
}

func TestStripSelectedEmptyKeepEqualsStripAll(t *testing.T) {
	s := New(Options{})
	src := cameraJPEG(t)

	all, err := s.StripAllMetadata(src, "image/jpeg", 0.9)
	require.NoError(t, err)
	none, err := s.StripSelectedMetadata(src, "image/jpeg", core.NewKeepSet(), 0.9)
	require.NoError(t, err)
	assert.Equal(t, all.Data, none.Data)
}

func TestStripSelectedIsIdempotent(t *testing.T) {
	s := New(Options{})
	keep := core.NewKeepSet("Model", "DateTimeOriginal")

	once, err := s.StripSelectedMetadata(cameraJPEG(t), "image/jpeg", keep, 0.9)
	require.NoError(t, err)
	twice, err := s.StripSelectedMetadata(once.Data, "image/jpeg", keep, 0.9)
	require.NoError(t, err)
	assert.Equal(t, once.Data, twice.Data)
}

func TestStripSelectedFallsBackOnMalformedDirectory(t *testing.T) {
	r := &countingReencoder{}
	s := New(Options{Reencoder: r})
	src := withRawAPP1(t, []byte("II*\x00\xff\xff\xff\x7f"), plainJPEG(t, 4, 4))

	out, err := s.StripSelectedMetadata(src, "image/jpeg", core.NewKeepSet("Make"), 0.9)
	require.NoError(t, err)
	assert.True(t, out.FellBack)
	assert.Error(t, out.Cause)
	assert.Equal(t, 1, r.calls)
	assert.Equal(t, core.FmtJPEG, core.Detect(out.Data, ""))

	// Segment-level removal does not need the directory.
	all, err := s.StripAllMetadata(src, "image/jpeg", 0.9)
	require.NoError(t, err)
	assert.False(t, all.FellBack)
	assert.Equal(t, 1, r.calls)
}

func TestNonJPEGIsReencoded(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(3, 3, color.NRGBA{0, 0, 0, 0})))
	s := New(Options{})

	out, err := s.StripSelectedMetadata(buf.Bytes(), "image/png", core.NewKeepSet("Make"), 0.5)
	require.NoError(t, err)
	assert.False(t, out.FellBack)
	assert.Equal(t, core.FmtJPEG, core.Detect(out.Data, ""))

	img, err := jpeg.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	r, g, b, _ := img.At(1, 1).RGBA()
	assert.Greater(t, r>>8, uint32(240), "transparent pixels land on white")
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestUndecodableInputFails(t *testing.T) {
	s := New(Options{})
	_, err := s.StripAllMetadata([]byte("definitely not pixels"), "image/webp", 0.9)
	assert.Error(t, err)
}

func TestTransplant(t *testing.T) {
	s := New(Options{})
	target := plainJPEG(t, 6, 6)

	out := s.TransplantMetadata(cameraJPEG(t), "image/jpeg", target, "image/jpeg")
	flat := s.ProbeImageMetadata(out, "image/jpeg")
	assert.Equal(t, "TestMake", flat["Make"])
	assert.Equal(t, scanData(t, target), scanData(t, out))

	t.Run("non-JPEG target passes through", func(t *testing.T) {
		pngData := []byte("\x89PNG\r\n\x1a\nrest")
		assert.Equal(t, pngData, s.TransplantMetadata(cameraJPEG(t), "image/jpeg", pngData, "image/png"))
	})
	t.Run("source without directory", func(t *testing.T) {
		assert.Equal(t, target, s.TransplantMetadata(plainJPEG(t, 2, 2), "image/jpeg", target, "image/jpeg"))
	})
	t.Run("below minimum size", func(t *testing.T) {
		strict := New(Options{MinTransplantBytes: 1 << 16})
		assert.Equal(t, target, strict.TransplantMetadata(cameraJPEG(t), "image/jpeg", target, "image/jpeg"))
	})
}

func TestJPEGQuality(t *testing.T) {
	cases := map[float64]int{0.92: 92, 1: 100, 0.001: 1, -3: 1, 7: 100, 0.556: 56}
	for in, want := range cases {
		assert.Equal(t, want, JPEGQuality(in), "quality %v", in)
	}
}

func TestApplyOrientation(t *testing.T) {
	red, blue := color.RGBA{255, 0, 0, 255}, color.RGBA{0, 0, 255, 255}
	src := stdimage.NewRGBA(stdimage.Rect(0, 0, 2, 1))
	src.Set(0, 0, red)
	src.Set(1, 0, blue)

	mirrored := applyOrientation(src, 2)
	assert.Equal(t, blue, mirrored.At(0, 0))
	assert.Equal(t, red, mirrored.At(1, 0))

	rotated := applyOrientation(src, 6)
	assert.Equal(t, stdimage.Rect(0, 0, 1, 2), rotated.Bounds())
	assert.Equal(t, red, rotated.At(0, 0))
	assert.Equal(t, blue, rotated.At(0, 1))

	assert.Same(t, src, applyOrientation(src, 1))
}
