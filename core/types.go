// Package core defines the shared types, error taxonomy and format registry
// for Media Metadata Surgery.
package core

import (
	"sort"
	"strings"
)

// FlatMetadata maps canonical field names to display values. It is the
// caller-facing view of a decoded tag directory: every entry appears, under
// its dictionary name or a synthesized "<Section>_<id>" name.
type FlatMetadata map[string]any

// Names returns the field names in sorted order.
func (m FlatMetadata) Names() []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// KeepSet is the set of canonical field names retained by a selective strip.
type KeepSet map[string]struct{}

// NewKeepSet builds a KeepSet, ignoring blank names.
func NewKeepSet(names ...string) KeepSet {
	ks := make(KeepSet, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		ks[n] = struct{}{}
	}
	return ks
}

// Has reports whether name is kept.
func (k KeepSet) Has(name string) bool {
	_, ok := k[name]
	return ok
}

// MetaField is a single rendered metadata key-value pair.
type MetaField struct {
	Key      string // canonical field name, e.g. "Make"
	Value    string // display string
	Category string // section or tag family, e.g. "Primary", "GPS", "ID3"
}

// Metadata is everything discovered in one file, ready for display.
type Metadata struct {
	FilePath string
	Format   string
	Fields   []MetaField
}

// VideoMetadataRecord is the descriptive record produced by probing a
// video container. Optional fields are nil when the container does not
// report them.
type VideoMetadataRecord struct {
	FileName   string            `json:"fileName"`
	FileSize   int64             `json:"fileSize"`
	MIMEType   string            `json:"fileType"`
	Duration   *float64          `json:"duration,omitempty"`
	Width      *uint32           `json:"width,omitempty"`
	Height     *uint32           `json:"height,omitempty"`
	FormatName string            `json:"formatName,omitempty"`
	Tags       map[string]string `json:"tags,omitempty"`
}
