package exif

import (
	"encoding/binary"

	"github.com/ankit-chaubey/media-metadata-surgery/core"
)

// reader is a bounds-checked view over a TIFF blob. Every access names the
// structure being read so failures point at the offending field.
type reader struct {
	buf   []byte
	order binary.ByteOrder
}

func (r *reader) size() int64 { return int64(len(r.buf)) }

// slice returns buf[off:off+n] or a FormatError when the range leaves the
// buffer.
func (r *reader) slice(off, n int64, what string) ([]byte, error) {
	if off < 0 || n < 0 || off > r.size() || n > r.size()-off {
		return nil, core.OutOfBounds(what, off, n, r.size())
	}
	return r.buf[off : off+n], nil
}

func (r *reader) u16(off int64, what string) (uint16, error) {
	b, err := r.slice(off, 2, what)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

func (r *reader) u32(off int64, what string) (uint32, error) {
	b, err := r.slice(off, 4, what)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}
