package audio

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bogem/id3v2/v2"

	"github.com/ankit-chaubey/media-metadata-surgery/core"
)

const (
	id3v1Size         = 128
	id3v1ExtendedSize = 227
)

// stripMP3 drops the ID3v2 tag and any trailing ID3v1 block. id3v2 works
// on files, so the data round-trips through a private temp directory.
func stripMP3(data []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "surgery-mp3-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "track.mp3")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, err
	}
	t, err := id3v2.Open(path, id3v2.Options{Parse: false})
	if err != nil {
		return nil, &core.FormatError{What: "ID3v2 tag", Reason: err.Error()}
	}
	t.DeleteAllFrames()
	if err := t.Save(); err != nil {
		t.Close()
		return nil, fmt.Errorf("rewrite mp3: %w", err)
	}
	if err := t.Close(); err != nil {
		return nil, err
	}

	out, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return trimID3v1(out), nil
}

func trimID3v1(b []byte) []byte {
	if len(b) >= id3v1Size && bytes.HasPrefix(b[len(b)-id3v1Size:], []byte("TAG")) {
		b = b[:len(b)-id3v1Size]
		if len(b) >= id3v1ExtendedSize && bytes.HasPrefix(b[len(b)-id3v1ExtendedSize:], []byte("TAG+")) {
			b = b[:len(b)-id3v1ExtendedSize]
		}
	}
	return b
}
