package exif

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/ankit-chaubey/media-metadata-surgery/core"
)

type ifdPlan struct {
	section Section
	entries []Entry
	offset  uint32
	next    uint32
}

func (p *ifdPlan) tableSize() int64 { return 2 + int64(len(p.entries))*ifdEntrySize + 4 }

func (p *ifdPlan) dataSize() int64 {
	var n int64
	for _, e := range p.entries {
		if sz := int64(e.Type.Size()) * int64(e.Count); sz > 4 {
			n += sz + sz%2
		}
	}
	return n
}

func (p *ifdPlan) setPointer(tag uint16, v uint32) {
	for i := range p.entries {
		if p.entries[i].Tag == tag {
			p.entries[i].Value = Longs{v}
			return
		}
	}
}

func pointerEntry(s Section, tag uint16) Entry { return NewEntry(s, tag, Longs{0}) }

// Encode serializes the directory with the byte order it was decoded with.
// Every offset is recomputed; entries are written in ascending tag order
// and out-of-line values are word aligned.
func (d *Directory) Encode() ([]byte, error) {
	for _, e := range d.All() {
		if err := validateEntry(e); err != nil {
			return nil, err
		}
	}
	order := d.Order
	if order == nil {
		order = binary.BigEndian
	}

	hasInterop := len(d.sections[Interop]) > 0
	hasExif := len(d.sections[Exif]) > 0 || hasInterop
	hasGPS := len(d.sections[GPS]) > 0
	hasIFD1 := len(d.sections[Thumbnail]) > 0 || len(d.Thumbnail) > 0

	ifd0 := &ifdPlan{section: Primary, entries: sortedCopy(d.sections[Primary])}
	if hasExif {
		ifd0.entries = append(ifd0.entries, pointerEntry(Primary, tagExifPointer))
	}
	if hasGPS {
		ifd0.entries = append(ifd0.entries, pointerEntry(Primary, tagGPSPointer))
	}
	plans := []*ifdPlan{ifd0}

	var exifPlan, ifd1 *ifdPlan
	if hasExif {
		exifPlan = &ifdPlan{section: Exif, entries: sortedCopy(d.sections[Exif])}
		if hasInterop {
			exifPlan.entries = append(exifPlan.entries, pointerEntry(Exif, tagInteropPointer))
		}
		plans = append(plans, exifPlan)
	}
	var gpsPlan, interopPlan *ifdPlan
	if hasGPS {
		gpsPlan = &ifdPlan{section: GPS, entries: sortedCopy(d.sections[GPS])}
		plans = append(plans, gpsPlan)
	}
	if hasInterop {
		interopPlan = &ifdPlan{section: Interop, entries: sortedCopy(d.sections[Interop])}
		plans = append(plans, interopPlan)
	}
	if hasIFD1 {
		ifd1 = &ifdPlan{section: Thumbnail, entries: sortedCopy(d.sections[Thumbnail])}
		if len(d.Thumbnail) > 0 {
			ifd1.entries = append(ifd1.entries,
				pointerEntry(Thumbnail, tagThumbOffset),
				NewEntry(Thumbnail, tagThumbLength, Longs{uint32(len(d.Thumbnail))}))
		}
		plans = append(plans, ifd1)
	}

	off := int64(headerSize)
	for _, p := range plans {
		sortEntries(p.entries)
		if len(p.entries) > math.MaxUint16 {
			return nil, &core.EncodeError{Section: p.section.String(), Reason: fmt.Sprintf("%d entries exceed the IFD limit", len(p.entries))}
		}
		p.offset = uint32(off)
		off += p.tableSize() + p.dataSize()
		if off > math.MaxUint32 {
			return nil, &core.EncodeError{Section: p.section.String(), Reason: "directory exceeds 32-bit offset space"}
		}
	}
	thumbOff := off
	off += int64(len(d.Thumbnail))
	if off > math.MaxUint32 {
		return nil, &core.EncodeError{Reason: "thumbnail exceeds 32-bit offset space"}
	}

	if exifPlan != nil {
		ifd0.setPointer(tagExifPointer, exifPlan.offset)
	}
	if gpsPlan != nil {
		ifd0.setPointer(tagGPSPointer, gpsPlan.offset)
	}
	if interopPlan != nil {
		exifPlan.setPointer(tagInteropPointer, interopPlan.offset)
	}
	if ifd1 != nil {
		ifd0.next = ifd1.offset
		if len(d.Thumbnail) > 0 {
			ifd1.setPointer(tagThumbOffset, uint32(thumbOff))
		}
	}

	buf := make([]byte, 0, off)
	if order == binary.LittleEndian {
		buf = append(buf, 'I', 'I')
	} else {
		buf = append(buf, 'M', 'M')
	}
	buf = put16(buf, order, tiffMagic)
	buf = put32(buf, order, headerSize)
	for _, p := range plans {
		buf = writeIFD(buf, p, order)
	}
	buf = append(buf, d.Thumbnail...)
	return buf, nil
}

// writeIFD appends p's table and data area. len(buf) must equal p.offset.
func writeIFD(buf []byte, p *ifdPlan, order binary.ByteOrder) []byte {
	dataOff := int64(p.offset) + p.tableSize()
	var data []byte
	buf = put16(buf, order, uint16(len(p.entries)))
	for _, e := range p.entries {
		payload := e.Value.appendTo(nil, order)
		buf = put16(buf, order, e.Tag)
		buf = put16(buf, order, uint16(e.Type))
		buf = put32(buf, order, e.Count)
		if len(payload) <= 4 {
			var field [4]byte
			copy(field[:], payload)
			buf = append(buf, field[:]...)
			continue
		}
		buf = put32(buf, order, uint32(dataOff+int64(len(data))))
		data = append(data, payload...)
		if len(payload)%2 == 1 {
			data = append(data, 0)
		}
	}
	buf = put32(buf, order, p.next)
	return append(buf, data...)
}

func validateEntry(e Entry) error {
	fail := func(format string, args ...any) error {
		return &core.EncodeError{Section: e.Section.String(), Tag: e.Tag, Reason: fmt.Sprintf(format, args...)}
	}
	if e.Value == nil {
		return fail("nil value")
	}
	if e.Type != e.Value.Type() {
		return fail("declared type %s but value is %s", e.Type, e.Value.Type())
	}
	if e.Count != e.Value.Count() {
		return fail("declared count %d but value holds %d", e.Count, e.Value.Count())
	}
	if e.Count == 0 {
		return fail("empty value")
	}
	if isStructural(e.Section, e.Tag) {
		return fail("structural tag is generated by the encoder")
	}
	return nil
}

func isStructural(s Section, tag uint16) bool {
	switch s {
	case Primary:
		return tag == tagExifPointer || tag == tagGPSPointer
	case Exif:
		return tag == tagInteropPointer
	case Thumbnail:
		return tag == tagThumbOffset || tag == tagThumbLength
	}
	return false
}

func sortedCopy(entries []Entry) []Entry {
	out := append([]Entry(nil), entries...)
	sortEntries(out)
	return out
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Tag < entries[j].Tag })
}
