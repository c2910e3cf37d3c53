package exif

import (
	"encoding/binary"
	"fmt"

	"github.com/ankit-chaubey/media-metadata-surgery/core"
)

const (
	headerSize    = 8
	ifdEntrySize  = 12
	tiffMagic     = 42
	maxIFDEntries = 4096
)

// Decode parses a TIFF-structured tag directory. tiff starts at the
// byte-order mark ("II" or "MM"), i.e. right after the "Exif\0\0" prefix
// of an APP1 segment.
func Decode(tiff []byte) (*Directory, error) {
	if len(tiff) < headerSize {
		return nil, core.OutOfBounds("TIFF header", 0, headerSize, int64(len(tiff)))
	}
	var order binary.ByteOrder
	switch string(tiff[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return nil, &core.FormatError{What: "TIFF header", Reason: fmt.Sprintf("bad byte-order mark %q", tiff[:2])}
	}
	if m := order.Uint16(tiff[2:4]); m != tiffMagic {
		return nil, &core.FormatError{What: "TIFF header", Offset: 2, Reason: fmt.Sprintf("bad magic %d", m)}
	}

	dec := &decoder{
		r:       reader{buf: tiff, order: order},
		dir:     NewDirectory(order),
		visited: make(map[uint32]bool),
	}
	next, err := dec.readIFD(Primary, order.Uint32(tiff[4:8]))
	if err != nil {
		return nil, err
	}
	if next != 0 {
		if _, err := dec.readIFD(Thumbnail, next); err != nil {
			return nil, err
		}
	}
	return dec.dir, nil
}

type decoder struct {
	r       reader
	dir     *Directory
	visited map[uint32]bool
}

type subIFD struct {
	section Section
	offset  uint32
}

func (d *decoder) warn(s Section, tag uint16, off int64, format string, args ...any) {
	d.dir.Warnings = append(d.dir.Warnings, Warning{
		Section: s, Tag: tag, Offset: off, Message: fmt.Sprintf(format, args...),
	})
}

// readIFD decodes one IFD into section s, then recurses into any sub-IFDs
// it points at. It returns the next-IFD offset, which only IFD0 honours.
func (d *decoder) readIFD(s Section, off uint32) (uint32, error) {
	what := s.String() + " IFD"
	if d.visited[off] {
		return 0, &core.FormatError{What: what, Offset: int64(off), Reason: "IFD loop"}
	}
	d.visited[off] = true

	count, err := d.r.u16(int64(off), what+" entry count")
	if err != nil {
		return 0, err
	}
	if count > maxIFDEntries {
		return 0, &core.FormatError{What: what, Offset: int64(off), Reason: fmt.Sprintf("implausible entry count %d", count)}
	}
	base := int64(off) + 2
	if _, err := d.r.slice(base, int64(count)*ifdEntrySize, what+" entries"); err != nil {
		return 0, err
	}

	var (
		subs       []subIFD
		thumbOff   uint32
		thumbLen   uint32
		haveThumb  int
		stripThumb bool
	)
	for i := 0; i < int(count); i++ {
		eoff := base + int64(i)*ifdEntrySize
		tag := d.r.order.Uint16(d.r.buf[eoff:])
		typ := DataType(d.r.order.Uint16(d.r.buf[eoff+2:]))
		n := d.r.order.Uint32(d.r.buf[eoff+4:])
		field := d.r.buf[eoff+8 : eoff+12]

		if ptr, ok := d.pointer(s, tag, typ, n, field); ok {
			switch {
			case s == Primary && tag == tagExifPointer:
				subs = append(subs, subIFD{Exif, ptr})
			case s == Primary && tag == tagGPSPointer:
				subs = append(subs, subIFD{GPS, ptr})
			case s == Exif && tag == tagInteropPointer:
				subs = append(subs, subIFD{Interop, ptr})
			case tag == tagThumbOffset:
				thumbOff = ptr
				haveThumb++
			case tag == tagThumbLength:
				thumbLen = ptr
				haveThumb++
			}
			continue
		}

		size := typ.Size()
		if size == 0 {
			d.warn(s, tag, eoff, "unknown type %d, entry skipped", typ)
			continue
		}
		total := int64(size) * int64(n)
		var raw []byte
		if total <= 4 {
			raw = field[:total]
		} else {
			voff := int64(d.r.order.Uint32(field))
			raw, err = d.r.slice(voff, total, fmt.Sprintf("%s value", NameOf(s, tag)))
			if err != nil {
				return 0, err
			}
		}
		if s == Thumbnail && tag == tagStripOffsets {
			stripThumb = true
		}
		e := Entry{Section: s, Tag: tag, Type: typ, Count: n, Value: parseValue(typ, n, raw, d.r.order)}
		if err := d.dir.Add(e); err != nil {
			d.warn(s, tag, eoff, "duplicate tag, first occurrence kept")
		}
	}

	var next uint32
	if s == Primary {
		next, err = d.r.u32(base+int64(count)*ifdEntrySize, "IFD0 next pointer")
		if err != nil {
			d.warn(s, 0, base+int64(count)*ifdEntrySize, "missing next-IFD pointer")
			next = 0
		}
	}

	if s == Thumbnail {
		switch {
		case stripThumb:
			d.warn(s, tagStripOffsets, int64(off), "strip-based thumbnail dropped")
			d.dir.sections[Thumbnail] = nil
		case haveThumb == 2:
			thumb, err := d.r.slice(int64(thumbOff), int64(thumbLen), "thumbnail")
			if err != nil {
				return 0, err
			}
			d.dir.Thumbnail = clone(thumb)
		case haveThumb == 1:
			d.warn(s, tagThumbOffset, int64(off), "thumbnail offset without length, thumbnail dropped")
		}
	}

	for _, sub := range subs {
		if _, err := d.readIFD(sub.section, sub.offset); err != nil {
			return 0, err
		}
	}
	return next, nil
}

// pointer reports whether (s, tag) is a structural pointer and returns its
// value. Pointers are single LONG (or IFD-typed) values.
func (d *decoder) pointer(s Section, tag uint16, typ DataType, n uint32, field []byte) (uint32, bool) {
	structural := (s == Primary && (tag == tagExifPointer || tag == tagGPSPointer)) ||
		(s == Exif && tag == tagInteropPointer) ||
		(s == Thumbnail && (tag == tagThumbOffset || tag == tagThumbLength))
	if !structural || n != 1 {
		return 0, false
	}
	switch typ {
	case TypeLong, typeIFD:
		return d.r.order.Uint32(field), true
	case TypeShort:
		return uint32(d.r.order.Uint16(field)), true
	}
	return 0, false
}
