package core

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"strings"
)

// FormatID enumerates every recognised format.
type FormatID string

const (
	FmtJPEG FormatID = "jpeg"
	FmtPNG  FormatID = "png"
	FmtGIF  FormatID = "gif"
	FmtWebP FormatID = "webp"
	FmtTIFF FormatID = "tiff"
	FmtBMP  FormatID = "bmp"
	FmtHEIC FormatID = "heic"

	FmtMP3  FormatID = "mp3"
	FmtFLAC FormatID = "flac"
	FmtOGG  FormatID = "ogg"
	FmtM4A  FormatID = "m4a"
	FmtWAV  FormatID = "wav"
	FmtAIFF FormatID = "aiff"

	FmtMP4  FormatID = "mp4"
	FmtMOV  FormatID = "mov"
	FmtMKV  FormatID = "mkv"
	FmtWebM FormatID = "webm"
	FmtAVI  FormatID = "avi"
	FmtWMV  FormatID = "wmv"
	FmtFLV  FormatID = "flv"

	FmtUnknown FormatID = "unknown"
)

// extMap maps lowercase extensions to format IDs.
var extMap = map[string]FormatID{
	".jpg":  FmtJPEG,
	".jpeg": FmtJPEG,
	".jpe":  FmtJPEG,
	".png":  FmtPNG,
	".gif":  FmtGIF,
	".webp": FmtWebP,
	".tiff": FmtTIFF,
	".tif":  FmtTIFF,
	".bmp":  FmtBMP,
	".heic": FmtHEIC,
	".heif": FmtHEIC,

	".mp3":  FmtMP3,
	".flac": FmtFLAC,
	".ogg":  FmtOGG,
	".oga":  FmtOGG,
	".m4a":  FmtM4A,
	".wav":  FmtWAV,
	".aif":  FmtAIFF,
	".aiff": FmtAIFF,

	".mp4":  FmtMP4,
	".m4v":  FmtMP4,
	".mov":  FmtMOV,
	".qt":   FmtMOV,
	".mkv":  FmtMKV,
	".webm": FmtWebM,
	".avi":  FmtAVI,
	".wmv":  FmtWMV,
	".flv":  FmtFLV,
}

var mimeMap = map[string]FormatID{
	"image/jpeg":       FmtJPEG,
	"image/jpg":        FmtJPEG,
	"image/pjpeg":      FmtJPEG,
	"image/png":        FmtPNG,
	"image/gif":        FmtGIF,
	"image/webp":       FmtWebP,
	"image/tiff":       FmtTIFF,
	"image/bmp":        FmtBMP,
	"image/heic":       FmtHEIC,
	"audio/mpeg":       FmtMP3,
	"audio/mp3":        FmtMP3,
	"audio/flac":       FmtFLAC,
	"audio/ogg":        FmtOGG,
	"audio/mp4":        FmtM4A,
	"audio/x-m4a":      FmtM4A,
	"audio/wav":        FmtWAV,
	"audio/x-wav":      FmtWAV,
	"audio/aiff":       FmtAIFF,
	"video/mp4":        FmtMP4,
	"video/quicktime":  FmtMOV,
	"video/x-matroska": FmtMKV,
	"video/webm":       FmtWebM,
	"video/x-msvideo":  FmtAVI,
	"video/x-ms-wmv":   FmtWMV,
	"video/x-flv":      FmtFLV,
}

// Detect identifies data by magic bytes, falling back to the extension of
// name when the signature is not recognised.
func Detect(data []byte, name string) FormatID {
	if id := detectMagic(data); id != FmtUnknown {
		return id
	}
	return FormatForExtension(name)
}

// FormatForExtension maps a file name's extension to a format.
func FormatForExtension(name string) FormatID {
	if id, ok := extMap[strings.ToLower(filepath.Ext(name))]; ok {
		return id
	}
	return FmtUnknown
}

// FormatForMIME maps a declared media type to a format. Parameters such as
// "; charset=" are ignored.
func FormatForMIME(mime string) FormatID {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if id, ok := mimeMap[mime]; ok {
		return id
	}
	return FmtUnknown
}

// MIMEFor returns the canonical media type for a format.
func MIMEFor(id FormatID) string {
	for m, f := range mimeMap {
		if f == id && canonicalMIME[m] {
			return m
		}
	}
	return "application/octet-stream"
}

var canonicalMIME = map[string]bool{
	"image/jpeg": true, "image/png": true, "image/gif": true, "image/webp": true,
	"image/tiff": true, "image/bmp": true, "image/heic": true,
	"audio/mpeg": true, "audio/flac": true, "audio/ogg": true, "audio/mp4": true,
	"audio/wav": true, "audio/aiff": true,
	"video/mp4": true, "video/quicktime": true, "video/x-matroska": true,
	"video/webm": true, "video/x-msvideo": true, "video/x-ms-wmv": true, "video/x-flv": true,
}

// Extension returns the preferred file extension for a format, with dot.
func Extension(id FormatID) string {
	switch id {
	case FmtJPEG:
		return ".jpg"
	case FmtTIFF:
		return ".tif"
	case FmtUnknown:
		return ""
	}
	return "." + string(id)
}

func detectMagic(b []byte) FormatID {
	if len(b) < 4 {
		return FmtUnknown
	}
	switch {
	// JPEG: FF D8 FF
	case b[0] == 0xFF && b[1] == 0xD8 && b[2] == 0xFF:
		return FmtJPEG
	case bytes.HasPrefix(b, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}):
		return FmtPNG
	case bytes.HasPrefix(b, []byte("GIF87a")) || bytes.HasPrefix(b, []byte("GIF89a")):
		return FmtGIF
	case len(b) >= 12 && bytes.Equal(b[0:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WEBP")):
		return FmtWebP
	case bytes.HasPrefix(b, []byte{0x49, 0x49, 0x2A, 0x00}) ||
		bytes.HasPrefix(b, []byte{0x4D, 0x4D, 0x00, 0x2A}):
		return FmtTIFF
	case b[0] == 0x42 && b[1] == 0x4D:
		return FmtBMP
	case bytes.HasPrefix(b, []byte("ID3")):
		return FmtMP3
	// MPEG audio frame sync
	case b[0] == 0xFF && (b[1]&0xE0 == 0xE0):
		return FmtMP3
	case bytes.HasPrefix(b, []byte("fLaC")):
		return FmtFLAC
	case bytes.HasPrefix(b, []byte("OggS")):
		return FmtOGG
	case len(b) >= 12 && bytes.Equal(b[0:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WAVE")):
		return FmtWAV
	case len(b) >= 12 && bytes.Equal(b[0:4], []byte("FORM")) &&
		(bytes.Equal(b[8:12], []byte("AIFF")) || bytes.Equal(b[8:12], []byte("AIFC"))):
		return FmtAIFF
	case len(b) >= 8 && bytes.Equal(b[4:8], []byte("ftyp")):
		return detectISOSubtype(b)
	case binary.BigEndian.Uint32(b[0:4]) == 0x1A45DFA3:
		return detectEBMLSubtype(b)
	case len(b) >= 12 && bytes.Equal(b[0:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("AVI ")):
		return FmtAVI
	// ASF header GUID
	case len(b) >= 16 && bytes.Equal(b[0:16], asfHeaderGUID):
		return FmtWMV
	case bytes.HasPrefix(b, []byte("FLV")):
		return FmtFLV
	}
	return FmtUnknown
}

var asfHeaderGUID = []byte{
	0x30, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11,
	0xA6, 0xD9, 0x00, 0xAA, 0x00, 0x62, 0xCE, 0x6C,
}

func detectISOSubtype(b []byte) FormatID {
	if len(b) < 12 {
		return FmtMP4
	}
	switch string(b[8:12]) {
	case "M4A ", "M4B ":
		return FmtM4A
	case "qt  ":
		return FmtMOV
	case "heic", "heix", "mif1", "msf1":
		return FmtHEIC
	default:
		return FmtMP4
	}
}

// detectEBMLSubtype looks for the DocType string inside the EBML header.
func detectEBMLSubtype(b []byte) FormatID {
	head := b
	if len(head) > 64 {
		head = head[:64]
	}
	if bytes.Contains(head, []byte("webm")) {
		return FmtWebM
	}
	return FmtMKV
}

// MediaTypeFor returns the broad media category for a format.
func MediaTypeFor(id FormatID) string {
	switch id {
	case FmtJPEG, FmtPNG, FmtGIF, FmtWebP, FmtTIFF, FmtBMP, FmtHEIC:
		return "image"
	case FmtMP3, FmtFLAC, FmtOGG, FmtM4A, FmtWAV, FmtAIFF:
		return "audio"
	case FmtMP4, FmtMOV, FmtMKV, FmtWebM, FmtAVI, FmtWMV, FmtFLV:
		return "video"
	default:
		return "unknown"
	}
}
