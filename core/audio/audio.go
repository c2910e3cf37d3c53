// Package audio reports and removes tags in audio files: ID3 in MP3,
// Vorbis comments and pictures in FLAC, and INFO, ID3 and broadcast chunks
// in WAV. Audio frames are copied unchanged.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/dhowden/tag"

	"github.com/ankit-chaubey/media-metadata-surgery/core"
)

// Probe returns the file's tags by name. A file without tags yields an
// empty map.
func Probe(data []byte) (core.FlatMetadata, error) {
	if core.Detect(data, "") == core.FmtWAV {
		return probeWAV(data)
	}
	t, err := tag.ReadFrom(bytes.NewReader(data))
	if errors.Is(err, tag.ErrNoTagsFound) {
		return core.FlatMetadata{}, nil
	}
	if err != nil {
		return nil, &core.FormatError{What: "audio tags", Reason: err.Error()}
	}
	return flatten(t), nil
}

// Strip returns data with every tag removed. MP3, FLAC and WAV are
// supported; anything else is an UnsupportedError.
func Strip(data []byte, fileName string) ([]byte, error) {
	switch id := core.Detect(data, fileName); id {
	case core.FmtMP3:
		return stripMP3(data)
	case core.FmtFLAC:
		return stripFLAC(data)
	case core.FmtWAV:
		return stripWAV(data)
	default:
		return nil, &core.UnsupportedError{Format: id, Operation: "audio tag removal"}
	}
}

func flatten(t tag.Metadata) core.FlatMetadata {
	m := core.FlatMetadata{}
	add := func(key, val string) {
		if val != "" {
			m[key] = val
		}
	}
	add("Format", string(t.Format()))
	add("Title", t.Title())
	add("Artist", t.Artist())
	add("Album", t.Album())
	add("AlbumArtist", t.AlbumArtist())
	add("Composer", t.Composer())
	add("Genre", t.Genre())
	add("Comment", t.Comment())
	add("Lyrics", t.Lyrics())
	if t.Year() != 0 {
		m["Year"] = t.Year()
	}
	if n, total := t.Track(); n != 0 {
		add("TrackNumber", fraction(n, total))
	}
	if n, total := t.Disc(); n != 0 {
		add("DiscNumber", fraction(n, total))
	}
	if p := t.Picture(); p != nil {
		add("Picture", fmt.Sprintf("%s, %d bytes", p.MIMEType, len(p.Data)))
	}

	for k, v := range t.Raw() {
		if _, seen := m[k]; seen || covered[strings.ToLower(k)] {
			continue
		}
		switch vt := v.(type) {
		case string:
			add(k, vt)
		case []string:
			add(k, strings.Join(vt, "; "))
		case int:
			m[k] = vt
		case *tag.Comm:
			add(k, vt.Text)
		}
	}
	return m
}

// covered lists raw keys already reported under a common name.
var covered = map[string]bool{
	"title": true, "artist": true, "album": true, "albumartist": true,
	"composer": true, "genre": true, "comment": true, "year": true,
	"date": true, "track": true, "tracknumber": true, "disc": true,
	"discnumber": true, "lyrics": true,
	"tit2": true, "tpe1": true, "talb": true, "tpe2": true, "tcom": true,
	"tcon": true, "comm": true, "tyer": true, "tdrc": true, "trck": true,
	"tpos": true, "uslt": true, "apic": true,
}

func fraction(n, total int) string {
	if total == 0 {
		return fmt.Sprint(n)
	}
	return fmt.Sprintf("%d/%d", n, total)
}
