package audio

import (
	"bytes"
	"encoding/binary"

	"github.com/ankit-chaubey/media-metadata-surgery/core"
)

const (
	flacVorbisComment = 4
	flacPicture       = 6
)

type flacBlock struct {
	blockType byte
	data      []byte
}

func parseFLACBlocks(data []byte) ([]flacBlock, int, error) {
	if !bytes.HasPrefix(data, []byte("fLaC")) {
		return nil, 0, &core.FormatError{What: "FLAC stream", Reason: "missing fLaC marker"}
	}
	var blocks []flacBlock
	i := 4
	for {
		if i+4 > len(data) {
			return nil, i, core.OutOfBounds("FLAC block header", int64(i), 4, int64(len(data)))
		}
		header := binary.BigEndian.Uint32(data[i : i+4])
		last := header>>31 == 1
		length := int(header & 0xFFFFFF)
		i += 4
		if i+length > len(data) {
			return nil, i, core.OutOfBounds("FLAC block", int64(i), int64(length), int64(len(data)))
		}
		blocks = append(blocks, flacBlock{blockType: byte(header>>24) & 0x7F, data: data[i : i+length]})
		i += length
		if last {
			return blocks, i, nil
		}
	}
}

// stripFLAC drops Vorbis comment and picture blocks. STREAMINFO, seek
// tables, cue sheets, application data and padding are kept.
func stripFLAC(data []byte) ([]byte, error) {
	blocks, audioStart, err := parseFLACBlocks(data)
	if err != nil {
		return nil, err
	}
	kept := blocks[:0:0]
	for _, b := range blocks {
		if b.blockType != flacVorbisComment && b.blockType != flacPicture {
			kept = append(kept, b)
		}
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	buf.WriteString("fLaC")
	for i, b := range kept {
		header := uint32(b.blockType)<<24 | uint32(len(b.data))
		if i == len(kept)-1 {
			header |= 1 << 31
		}
		buf.Write(binary.BigEndian.AppendUint32(nil, header))
		buf.Write(b.data)
	}
	buf.Write(data[audioStart:])
	return buf.Bytes(), nil
}
