package image

import (
	"github.com/ankit-chaubey/media-metadata-surgery/core"
	"github.com/ankit-chaubey/media-metadata-surgery/core/jpg"
	"github.com/ankit-chaubey/media-metadata-surgery/core/logging"
)

// StripAllMetadata removes every metadata segment from a JPEG, leaving
// scan data untouched. Other formats, and JPEGs whose Orientation tag
// rotates the picture, are re-encoded so the result still displays
// upright. The error is non-nil only when even the re-encode fails.
func (s *Scrubber) StripAllMetadata(data []byte, mime string, quality float64) (core.Outcome, error) {
	quality = s.resolveQuality(quality)
	if !isJPEG(data) {
		return s.reencode(data, quality, "not a JPEG")
	}
	if orientationOf(data) > 1 {
		return s.reencode(data, quality, "orientation baked into pixels")
	}
	return core.Try(func() ([]byte, error) {
		return jpg.RemoveMetadata(data)
	}).OrElse(s.fallback(data, quality, "strip_all"))
}

// StripSelectedMetadata keeps only the entries named in keep. An empty
// keep set is exactly StripAllMetadata. For JPEG input the thumbnail is
// carried over, non-Exif metadata segments are dropped and scan data is
// untouched; a directory that cannot be decoded or re-encoded falls back
// to a full pixel re-encode.
func (s *Scrubber) StripSelectedMetadata(data []byte, mime string, keep core.KeepSet, quality float64) (core.Outcome, error) {
	if len(keep) == 0 {
		return s.StripAllMetadata(data, mime, quality)
	}
	quality = s.resolveQuality(quality)
	if !isJPEG(data) {
		return s.reencode(data, quality, "not a JPEG")
	}
	return core.Try(func() ([]byte, error) {
		return s.filter(data, mime, keep)
	}).OrElse(s.fallback(data, quality, "strip_selected"))
}

func (s *Scrubber) filter(data []byte, mime string, keep core.KeepSet) ([]byte, error) {
	dir, err := DecodeContainer(data, mime)
	if err != nil {
		return nil, err
	}
	kept := dir.Filter(keep)
	base, err := jpg.RemoveMetadata(data)
	if err != nil {
		return nil, err
	}
	if kept.IsEmpty() {
		return base, nil
	}
	blob, err := kept.Encode()
	if err != nil {
		return nil, err
	}
	s.logger.Debug("rewrote tag directory",
		logging.Int("kept", kept.Len()),
		logging.Int("dropped", dir.Len()-kept.Len()),
		logging.Int(logging.FieldBytes, len(blob)))
	return jpg.InsertExif(blob, base)
}

// reencode is the designed path for input the segment rewriter does not
// handle; it is not a fallback.
func (s *Scrubber) reencode(data []byte, quality float64, reason string) (core.Outcome, error) {
	s.logger.Debug("re-encoding pixels", logging.String("reason", reason))
	return core.Try(func() ([]byte, error) {
		return s.reencoder.Reencode(data, quality)
	}).OrElse(func(cause error) ([]byte, error) {
		return nil, cause
	})
}

func (s *Scrubber) fallback(data []byte, quality float64, op string) func(error) ([]byte, error) {
	return func(cause error) ([]byte, error) {
		logging.WarnWithContext(s.logger, "metadata rewrite failed, re-encoding pixels", "reencode_fallback",
			logging.String("operation", op),
			logging.Error(cause),
			logging.String(logging.FieldImpact, "image re-encoded; all metadata removed"),
			logging.String(logging.FieldErrorHint, "the source tag directory is malformed"))
		return s.reencoder.Reencode(data, quality)
	}
}
