// Package image strips and selectively keeps EXIF metadata in still
// images. JPEG input is rewritten at the segment level so scan data stays
// byte-identical; anything else, and any JPEG whose directory cannot be
// rewritten, goes through an opaque pixel re-encode.
package image

import (
	"log/slog"

	"github.com/ankit-chaubey/media-metadata-surgery/core"
	"github.com/ankit-chaubey/media-metadata-surgery/core/exif"
	"github.com/ankit-chaubey/media-metadata-surgery/core/jpg"
	"github.com/ankit-chaubey/media-metadata-surgery/core/logging"
)

const (
	defaultQuality            = 0.92
	defaultMinTransplantBytes = 32
)

// Options configures a Scrubber. Zero values take defaults.
type Options struct {
	// Quality is used when a call passes a quality outside (0, 1].
	Quality float64
	// MinTransplantBytes is the smallest encoded directory (APP1 prefix
	// included) that TransplantMetadata will copy.
	MinTransplantBytes int
	Reencoder          Reencoder
	Logger             *slog.Logger
}

// Scrubber implements the still-image operations. It holds no mutable
// state and is safe for concurrent use.
type Scrubber struct {
	quality       float64
	minTransplant int
	reencoder     Reencoder
	logger        *slog.Logger
}

// New builds a Scrubber from opts.
func New(opts Options) *Scrubber {
	s := &Scrubber{
		quality:       opts.Quality,
		minTransplant: opts.MinTransplantBytes,
		reencoder:     opts.Reencoder,
		logger:        logging.NewComponentLogger(opts.Logger, "image"),
	}
	if s.quality <= 0 || s.quality > 1 {
		s.quality = defaultQuality
	}
	if s.minTransplant <= 0 {
		s.minTransplant = defaultMinTransplantBytes
	}
	if s.reencoder == nil {
		s.reencoder = JPEGReencoder{}
	}
	return s
}

func isJPEG(data []byte) bool { return core.Detect(data, "") == core.FmtJPEG }

// DecodeContainer extracts the tag directory from an image. Input that is
// not a JPEG, or a JPEG without an Exif segment, yields an empty directory.
// A FormatError is returned when mime declares JPEG but the bytes lack the
// JPEG signature, or when the JPEG or its directory is malformed.
func DecodeContainer(data []byte, mime string) (*exif.Directory, error) {
	if !isJPEG(data) {
		if core.FormatForMIME(mime) == core.FmtJPEG {
			return nil, &core.FormatError{What: "JPEG", Reason: "declared image/jpeg but signature does not match"}
		}
		return exif.NewDirectory(nil), nil
	}
	tiff, err := jpg.ExtractExif(data)
	if err != nil {
		return nil, err
	}
	if tiff == nil {
		return exif.NewDirectory(nil), nil
	}
	return exif.Decode(tiff)
}

// ProbeImageMetadata returns every tag in the image by name. It never
// fails: malformed input is logged and yields an empty map.
func (s *Scrubber) ProbeImageMetadata(data []byte, mime string) core.FlatMetadata {
	dir, err := s.decode(data, mime)
	if err != nil {
		return core.FlatMetadata{}
	}
	return dir.Flatten()
}

// Describe renders the image's tags for display, grouped by section.
func (s *Scrubber) Describe(data []byte, mime, name string) *core.Metadata {
	m := &core.Metadata{FilePath: name, Format: string(core.Detect(data, name))}
	if dir, err := s.decode(data, mime); err == nil {
		m.Fields = dir.Fields()
	}
	return m
}

func (s *Scrubber) decode(data []byte, mime string) (*exif.Directory, error) {
	dir, err := DecodeContainer(data, mime)
	if err != nil {
		logging.WarnWithContext(s.logger, "unreadable tag directory", "exif_decode_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "no metadata reported for this image"))
		return nil, err
	}
	for _, w := range dir.Warnings {
		s.logger.Debug("tag directory warning", logging.String("detail", w.String()))
	}
	return dir, nil
}

func (s *Scrubber) resolveQuality(q float64) float64 {
	if q <= 0 || q > 1 {
		return s.quality
	}
	return q
}
