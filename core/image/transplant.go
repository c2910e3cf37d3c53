package image

import (
	"github.com/ankit-chaubey/media-metadata-surgery/core/jpg"
	"github.com/ankit-chaubey/media-metadata-surgery/core/logging"
)

// exifPrefixLen is the "Exif\0\0" identifier that precedes the TIFF blob.
const exifPrefixLen = 6

// TransplantMetadata copies the source image's tag directory into target.
// target is returned unchanged when either side is not a JPEG, the source
// has no usable directory, the encoded directory is below the configured
// minimum size, or an independent parser cannot read it back.
func (s *Scrubber) TransplantMetadata(source []byte, sourceMIME string, target []byte, targetMIME string) []byte {
	if !isJPEG(source) || !isJPEG(target) {
		s.logger.Debug("transplant skipped", logging.String("reason", "not a JPEG pair"))
		return target
	}
	dir, err := s.decode(source, sourceMIME)
	if err != nil || dir.IsEmpty() {
		return target
	}
	blob, err := dir.Encode()
	if err != nil {
		logging.WarnWithContext(s.logger, "source directory cannot be re-encoded", "transplant_skipped",
			logging.Error(err),
			logging.String(logging.FieldImpact, "target written without metadata"))
		return target
	}
	if len(blob)+exifPrefixLen < s.minTransplant {
		s.logger.Debug("transplant skipped", logging.String("reason", "directory too small"), logging.Int(logging.FieldBytes, len(blob)))
		return target
	}
	if err := jpg.Readable(blob); err != nil {
		logging.WarnWithContext(s.logger, "encoded directory failed verification", "transplant_skipped",
			logging.Error(err),
			logging.String(logging.FieldImpact, "target written without metadata"))
		return target
	}
	out, err := jpg.InsertExif(blob, target)
	if err != nil {
		logging.WarnWithContext(s.logger, "cannot insert directory into target", "transplant_skipped",
			logging.Error(err),
			logging.String(logging.FieldImpact, "target written without metadata"))
		return target
	}
	return out
}
