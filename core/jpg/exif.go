package jpg

import (
	"bytes"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/ankit-chaubey/media-metadata-surgery/core"
)

var (
	exifHeader = []byte("Exif\x00\x00")
	xmpHeader  = []byte("http://ns.adobe.com/xap/1.0/\x00")
)

// MaxExifPayload is the largest TIFF blob that fits one APP1 segment.
const MaxExifPayload = 0xFFFF - 2 - 6

// IsExif reports an APP1 segment carrying an Exif directory.
func IsExif(s Segment) bool {
	return s.Marker == MarkerAPP1 && bytes.HasPrefix(s.Data, exifHeader)
}

// IsXMP reports an APP1 segment carrying an XMP packet.
func IsXMP(s Segment) bool {
	return s.Marker == MarkerAPP1 && bytes.HasPrefix(s.Data, xmpHeader)
}

// isMetadata reports segments that carry descriptive metadata. JFIF
// (APP0), ICC profiles (APP2) and the Adobe transform flag (APP14) change
// how pixels render and are not metadata here.
func isMetadata(s Segment) bool {
	switch {
	case s.Marker == MarkerAPP0, s.Marker == MarkerAPP2, s.Marker == MarkerAPP14:
		return false
	case s.Marker >= MarkerAPP1 && s.Marker <= 0xEF:
		return true
	case s.Marker == MarkerCOM:
		return true
	}
	return false
}

// ExtractExif returns the TIFF blob of the first Exif segment, or nil when
// the file has none.
func ExtractExif(data []byte) ([]byte, error) {
	segs, err := Parse(data)
	if err != nil {
		return nil, err
	}
	for _, s := range segs {
		if IsExif(s) {
			return s.Data[len(exifHeader):], nil
		}
	}
	return nil, nil
}

// InsertExif writes tiff into container. The first Exif segment is replaced
// in place and any duplicates dropped; without one, a new segment goes
// right after SOI. Scan data is copied unchanged.
func InsertExif(tiff, container []byte) ([]byte, error) {
	if len(tiff) > MaxExifPayload {
		return nil, &core.EncodeError{Reason: "directory too large for one APP1 segment"}
	}
	segs, err := Parse(container)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, 0, len(exifHeader)+len(tiff))
	payload = append(append(payload, exifHeader...), tiff...)
	app1 := Segment{Marker: MarkerAPP1, Data: payload}

	out := make([]Segment, 0, len(segs)+1)
	replaced := false
	for _, s := range segs {
		if IsExif(s) {
			if !replaced {
				out = append(out, app1)
				replaced = true
			}
			continue
		}
		out = append(out, s)
	}
	if !replaced {
		out = append(out[:1], append([]Segment{app1}, out[1:]...)...)
	}
	return Encode(out)
}

// RemoveExif drops every Exif segment and nothing else.
func RemoveExif(container []byte) ([]byte, error) {
	return filterSegments(container, func(s Segment) bool { return !IsExif(s) })
}

// RemoveMetadata drops every metadata segment: Exif, XMP, APP3-APP13,
// APP15 and comments.
func RemoveMetadata(container []byte) ([]byte, error) {
	return filterSegments(container, func(s Segment) bool { return !isMetadata(s) })
}

func filterSegments(container []byte, keep func(Segment) bool) ([]byte, error) {
	segs, err := Parse(container)
	if err != nil {
		return nil, err
	}
	out := segs[:0:0]
	for _, s := range segs {
		if keep(s) {
			out = append(out, s)
		}
	}
	return Encode(out)
}

// Readable checks a TIFF blob with goexif, a parser independent of ours.
func Readable(tiff []byte) error {
	_, err := exif.Decode(bytes.NewReader(tiff))
	return err
}
