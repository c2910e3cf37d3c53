// Package jpg splits JPEG files into marker segments and rewrites their
// metadata segments without touching entropy-coded scan data.
package jpg

import (
	"encoding/binary"
	"fmt"

	"github.com/ankit-chaubey/media-metadata-surgery/core"
)

// JPEG markers used by the segment walker.
const (
	MarkerScanData byte = 0x00 // pseudo-marker: everything after SOS
	MarkerSOI      byte = 0xD8
	MarkerEOI      byte = 0xD9
	MarkerSOS      byte = 0xDA
	MarkerAPP0     byte = 0xE0
	MarkerAPP1     byte = 0xE1
	MarkerAPP2     byte = 0xE2
	MarkerAPP13    byte = 0xED
	MarkerAPP14    byte = 0xEE
	MarkerCOM      byte = 0xFE
)

// Segment is one marker segment. Data excludes the marker and length
// bytes. A MarkerScanData segment carries the rest of the file after SOS
// verbatim, including any further scans and the EOI marker.
type Segment struct {
	Marker byte
	Data   []byte
}

func standalone(m byte) bool {
	return m == 0x01 || (m >= 0xD0 && m <= 0xD7) || m == MarkerSOI || m == MarkerEOI
}

// Parse splits data into segments. Segment payloads alias data.
func Parse(data []byte) ([]Segment, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != MarkerSOI {
		return nil, &core.FormatError{What: "JPEG", Reason: "missing SOI marker"}
	}
	segs := []Segment{{Marker: MarkerSOI}}

	i := 2
	for i < len(data) {
		if data[i] != 0xFF {
			return nil, &core.FormatError{What: "JPEG", Offset: int64(i), Reason: fmt.Sprintf("expected marker, found 0x%02X", data[i])}
		}
		// fill bytes
		for i < len(data) && data[i] == 0xFF {
			i++
		}
		if i >= len(data) {
			break
		}
		marker := data[i]
		i++

		if standalone(marker) {
			segs = append(segs, Segment{Marker: marker})
			if marker == MarkerEOI {
				if i < len(data) {
					segs = append(segs, Segment{Marker: MarkerScanData, Data: data[i:]})
				}
				return segs, nil
			}
			continue
		}

		if i+2 > len(data) {
			return nil, core.OutOfBounds(fmt.Sprintf("segment 0x%02X length", marker), int64(i), 2, int64(len(data)))
		}
		segLen := int(binary.BigEndian.Uint16(data[i:])) - 2
		i += 2
		if segLen < 0 || i+segLen > len(data) {
			return nil, core.OutOfBounds(fmt.Sprintf("segment 0x%02X", marker), int64(i), int64(segLen), int64(len(data)))
		}
		segs = append(segs, Segment{Marker: marker, Data: data[i : i+segLen]})
		i += segLen

		if marker == MarkerSOS {
			segs = append(segs, Segment{Marker: MarkerScanData, Data: data[i:]})
			return segs, nil
		}
	}
	return nil, &core.FormatError{What: "JPEG", Offset: int64(len(data)), Reason: "truncated before image data"}
}

// Encode joins segments back into a JPEG byte stream.
func Encode(segs []Segment) ([]byte, error) {
	size := 0
	for _, s := range segs {
		size += len(s.Data) + 4
	}
	buf := make([]byte, 0, size)
	for _, s := range segs {
		switch {
		case s.Marker == MarkerScanData:
			buf = append(buf, s.Data...)
		case standalone(s.Marker):
			buf = append(buf, 0xFF, s.Marker)
		default:
			if len(s.Data)+2 > 0xFFFF {
				return nil, &core.EncodeError{Reason: fmt.Sprintf("segment 0x%02X payload of %d bytes exceeds 65533", s.Marker, len(s.Data))}
			}
			buf = append(buf, 0xFF, s.Marker)
			buf = binary.BigEndian.AppendUint16(buf, uint16(len(s.Data)+2))
			buf = append(buf, s.Data...)
		}
	}
	return buf, nil
}
