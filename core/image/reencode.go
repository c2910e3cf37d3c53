package image

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ankit-chaubey/media-metadata-surgery/core/exif"
	"github.com/ankit-chaubey/media-metadata-surgery/core/jpg"
)

// Reencoder produces a metadata-free copy of an image by decoding its
// pixels and encoding them again. quality is in (0, 1].
type Reencoder interface {
	Reencode(data []byte, quality float64) ([]byte, error)
}

// JPEGReencoder decodes JPEG, PNG, GIF, WebP, BMP and TIFF and writes a
// baseline JPEG. Transparent pixels are composited onto white, and the
// EXIF orientation of a JPEG source is applied to the pixels since the
// tag itself does not survive.
type JPEGReencoder struct{}

func (JPEGReencoder) Reencode(data []byte, quality float64) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode pixels: %w", err)
	}
	src = applyOrientation(src, orientationOf(data))

	b := src.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), src, b.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: JPEGQuality(quality)}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// JPEGQuality maps a (0, 1] quality factor onto image/jpeg's 1..100 scale.
func JPEGQuality(q float64) int {
	if math.IsNaN(q) {
		q = defaultQuality
	}
	n := int(math.Round(q * 100))
	switch {
	case n < 1:
		return 1
	case n > 100:
		return 100
	}
	return n
}

const tagOrientation = 0x0112

// orientationOf returns the Orientation tag of a JPEG, or 1.
func orientationOf(data []byte) int {
	tiff, err := jpg.ExtractExif(data)
	if err != nil || tiff == nil {
		return 1
	}
	dir, err := exif.Decode(tiff)
	if err != nil {
		return 1
	}
	e, ok := dir.Lookup(exif.Primary, tagOrientation)
	if !ok {
		return 1
	}
	if v, ok := e.Value.(exif.Shorts); ok && len(v) > 0 && v[0] >= 1 && v[0] <= 8 {
		return int(v[0])
	}
	return 1
}

// applyOrientation transforms img so it displays upright without the tag.
func applyOrientation(img image.Image, o int) image.Image {
	if o <= 1 || o > 8 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dw, dh := w, h
	if o >= 5 {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch o {
			case 2: // mirror horizontal
				dx, dy = w-1-x, y
			case 3: // rotate 180
				dx, dy = w-1-x, h-1-y
			case 4: // mirror vertical
				dx, dy = x, h-1-y
			case 5: // transpose
				dx, dy = y, x
			case 6: // rotate 90 CW
				dx, dy = h-1-y, x
			case 7: // transverse
				dx, dy = h-1-y, w-1-x
			case 8: // rotate 90 CCW
				dx, dy = y, w-1-x
			}
			dst.Set(dx, dy, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}
