// Package exif decodes and encodes EXIF tag directories: the TIFF-structured
// blob carried in a JPEG APP1 segment. Entries are attributed to the section
// (IFD) they were read from, values keep their wire type, and encoding
// recomputes every offset from scratch.
package exif

import (
	"encoding/binary"
	"fmt"

	"github.com/ankit-chaubey/media-metadata-surgery/core"
)

// Entry is one tag in a directory. Type and Count are the declared wire
// fields; Encode refuses entries whose Value disagrees with them.
type Entry struct {
	Section Section
	Tag     uint16
	Type    DataType
	Count   uint32
	Value   Value
}

// NewEntry builds a consistent entry for v.
func NewEntry(s Section, tag uint16, v Value) Entry {
	return Entry{Section: s, Tag: tag, Type: v.Type(), Count: v.Count(), Value: v}
}

// Name is the entry's canonical or synthesized name.
func (e Entry) Name() string { return NameOf(e.Section, e.Tag) }

// Warning records a decode problem that did not invalidate the directory.
type Warning struct {
	Section Section
	Tag     uint16
	Offset  int64
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s tag 0x%04X at offset %d: %s", w.Section, w.Tag, w.Offset, w.Message)
}

// Directory is a decoded tag directory. Thumbnail holds the IFD1 JPEG
// thumbnail as opaque bytes.
type Directory struct {
	Order     binary.ByteOrder
	Thumbnail []byte
	Warnings  []Warning

	sections [numSections][]Entry
}

// NewDirectory returns an empty directory. A nil order means big-endian.
func NewDirectory(order binary.ByteOrder) *Directory {
	if order == nil {
		order = binary.BigEndian
	}
	return &Directory{Order: order}
}

// Add appends e to its section. Ids are unique within a section.
func (d *Directory) Add(e Entry) error {
	if int(e.Section) >= numSections {
		return fmt.Errorf("unknown section %d", e.Section)
	}
	if e.Value == nil {
		return fmt.Errorf("%s tag 0x%04X: nil value", e.Section, e.Tag)
	}
	if _, ok := d.Lookup(e.Section, e.Tag); ok {
		return fmt.Errorf("%s tag 0x%04X: duplicate entry", e.Section, e.Tag)
	}
	d.sections[e.Section] = append(d.sections[e.Section], e)
	return nil
}

// Entries returns a section's entries in directory order. The slice must
// not be modified.
func (d *Directory) Entries(s Section) []Entry {
	if int(s) >= numSections {
		return nil
	}
	return d.sections[s]
}

// All returns every entry, section by section.
func (d *Directory) All() []Entry {
	var out []Entry
	for _, s := range Sections {
		out = append(out, d.sections[s]...)
	}
	return out
}

// Lookup finds an entry by section and id.
func (d *Directory) Lookup(s Section, tag uint16) (Entry, bool) {
	for _, e := range d.Entries(s) {
		if e.Tag == tag {
			return e, true
		}
	}
	return Entry{}, false
}

// Get finds an entry by canonical name.
func (d *Directory) Get(name string) (Entry, bool) {
	for _, e := range d.All() {
		if e.Name() == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Len counts entries across all sections.
func (d *Directory) Len() int {
	n := 0
	for _, s := range d.sections {
		n += len(s)
	}
	return n
}

// IsEmpty reports a directory with no entries and no thumbnail.
func (d *Directory) IsEmpty() bool { return d.Len() == 0 && len(d.Thumbnail) == 0 }

// Filter returns a new directory holding only entries whose names are in
// keep. The thumbnail section and thumbnail bytes are carried over
// unconditionally. Byte order is preserved.
func (d *Directory) Filter(keep core.KeepSet) *Directory {
	out := NewDirectory(d.Order)
	for _, s := range Sections {
		for _, e := range d.sections[s] {
			if s == Thumbnail || keep.Has(e.Name()) {
				out.sections[s] = append(out.sections[s], e)
			}
		}
	}
	out.Thumbnail = d.Thumbnail
	return out
}

// Flatten produces the caller-facing name/value map. When two sections
// resolve to the same name the first section wins.
func (d *Directory) Flatten() core.FlatMetadata {
	flat := make(core.FlatMetadata, d.Len())
	for _, e := range d.All() {
		name := e.Name()
		if _, dup := flat[name]; dup {
			continue
		}
		flat[name] = e.Value.Display()
	}
	return flat
}

// Fields renders entries for display, categorised by section.
func (d *Directory) Fields() []core.MetaField {
	all := d.All()
	fields := make([]core.MetaField, 0, len(all))
	for _, e := range all {
		fields = append(fields, core.MetaField{
			Key:      e.Name(),
			Value:    e.Value.String(),
			Category: e.Section.String(),
		})
	}
	return fields
}
