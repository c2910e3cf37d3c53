package audio

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/ankit-chaubey/media-metadata-surgery/core"
)

// infoNames maps RIFF INFO ids to readable names.
var infoNames = map[string]string{
	"IARL": "ArchivalLocation",
	"IART": "Artist",
	"ICMS": "Commissioned",
	"ICMT": "Comment",
	"ICOP": "Copyright",
	"ICRD": "DateCreated",
	"IENG": "Engineer",
	"IGNR": "Genre",
	"IKEY": "Keywords",
	"IMED": "Medium",
	"INAM": "Title",
	"IPRD": "Product",
	"ISBJ": "Subject",
	"ISFT": "Software",
	"ISRC": "Source",
	"ITCH": "Technician",
}

// metadataChunks are dropped by stripWAV.
var metadataChunks = map[string]bool{
	"LIST": true,
	"id3 ": true,
	"ID3 ": true,
	"bext": true,
	"iXML": true,
	"_PMX": true,
}

type riffChunk struct {
	id   string
	body []byte
}

func parseRIFF(data []byte) ([]riffChunk, error) {
	if len(data) < 12 || string(data[:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, &core.FormatError{What: "RIFF header", Reason: "not a WAVE file"}
	}
	var chunks []riffChunk
	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		off += 8
		if size > len(data)-off {
			return nil, core.OutOfBounds(id+" chunk", int64(off), int64(size), int64(len(data)))
		}
		chunks = append(chunks, riffChunk{id: id, body: data[off : off+size]})
		off += size + size%2
	}
	return chunks, nil
}

func probeWAV(data []byte) (core.FlatMetadata, error) {
	chunks, err := parseRIFF(data)
	if err != nil {
		return nil, err
	}
	m := core.FlatMetadata{}
	for _, c := range chunks {
		if c.id != "LIST" || !bytes.HasPrefix(c.body, []byte("INFO")) {
			continue
		}
		body := c.body[4:]
		for pos := 0; pos+8 <= len(body); {
			id := string(body[pos : pos+4])
			size := int(binary.LittleEndian.Uint32(body[pos+4 : pos+8]))
			pos += 8
			if size > len(body)-pos {
				break
			}
			if val := strings.TrimRight(string(body[pos:pos+size]), "\x00"); val != "" {
				name := infoNames[id]
				if name == "" {
					name = id
				}
				m[name] = val
			}
			pos += size + size%2
		}
	}
	return m, nil
}

// stripWAV drops INFO lists, embedded ID3 and broadcast/iXML/XMP chunks and
// rewrites the RIFF size.
func stripWAV(data []byte) ([]byte, error) {
	chunks, err := parseRIFF(data)
	if err != nil {
		return nil, err
	}
	var body bytes.Buffer
	body.WriteString("WAVE")
	for _, c := range chunks {
		if metadataChunks[c.id] {
			continue
		}
		body.WriteString(c.id)
		body.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(c.body))))
		body.Write(c.body)
		if len(c.body)%2 == 1 {
			body.WriteByte(0)
		}
	}
	out := make([]byte, 0, 8+body.Len())
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(body.Len()))
	return append(out, body.Bytes()...), nil
}
