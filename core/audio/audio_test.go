package audio

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankit-chaubey/media-metadata-surgery/core"
)

var mpegFrames = append([]byte{0xFF, 0xFB, 0x90, 0x64}, make([]byte, 413)...)

func taggedMP3(t *testing.T) []byte {
	t.Helper()
	tg := id3v2.NewEmptyTag()
	tg.SetTitle("Song")
	tg.SetArtist("Band")
	var buf bytes.Buffer
	_, err := tg.WriteTo(&buf)
	require.NoError(t, err)
	buf.Write(mpegFrames)

	v1 := make([]byte, id3v1Size)
	copy(v1, "TAGOld title")
	buf.Write(v1)
	return buf.Bytes()
}

func flacBlockBytes(typ byte, last bool, body []byte) []byte {
	header := uint32(typ)<<24 | uint32(len(body))
	if last {
		header |= 1 << 31
	}
	return append(binary.BigEndian.AppendUint32(nil, header), body...)
}

func vorbisComment(comments ...string) []byte {
	le := binary.LittleEndian
	vendor := "test vendor"
	out := le.AppendUint32(nil, uint32(len(vendor)))
	out = append(out, vendor...)
	out = le.AppendUint32(out, uint32(len(comments)))
	for _, c := range comments {
		out = le.AppendUint32(out, uint32(len(c)))
		out = append(out, c...)
	}
	return out
}

var flacAudio = []byte{0xFF, 0xF8, 0x69, 0x08, 0x00, 0x00}

func taggedFLAC(withPicture bool) []byte {
	out := []byte("fLaC")
	out = append(out, flacBlockBytes(0, false, make([]byte, 34))...)
	out = append(out, flacBlockBytes(flacVorbisComment, !withPicture, vorbisComment("TITLE=Tune", "ARTIST=Player"))...)
	if withPicture {
		out = append(out, flacBlockBytes(flacPicture, true, []byte("opaque picture"))...)
	}
	return append(out, flacAudio...)
}

func riffChunkBytes(id string, body []byte) []byte {
	out := append([]byte(id), binary.LittleEndian.AppendUint32(nil, uint32(len(body)))...)
	out = append(out, body...)
	if len(body)%2 == 1 {
		out = append(out, 0)
	}
	return out
}

func taggedWAV() []byte {
	info := append([]byte("INFO"), riffChunkBytes("INAM", []byte("Hello"))...)
	info = append(info, riffChunkBytes("IART", []byte("Me\x00"))...)
	body := []byte("WAVE")
	body = append(body, riffChunkBytes("fmt ", make([]byte, 16))...)
	body = append(body, riffChunkBytes("LIST", info)...)
	body = append(body, riffChunkBytes("data", []byte{1, 2, 3})...)
	out := append([]byte("RIFF"), binary.LittleEndian.AppendUint32(nil, uint32(len(body)))...)
	return append(out, body...)
}

func TestMP3(t *testing.T) {
	data := taggedMP3(t)

	tags, err := Probe(data)
	require.NoError(t, err)
	assert.Equal(t, "Song", tags["Title"])
	assert.Equal(t, "Band", tags["Artist"])

	out, err := Strip(data, "track.mp3")
	require.NoError(t, err)
	assert.Equal(t, mpegFrames, out)

	tags, err = Probe(out)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestTrimID3v1Extended(t *testing.T) {
	ext := make([]byte, id3v1ExtendedSize)
	copy(ext, "TAG+")
	v1 := make([]byte, id3v1Size)
	copy(v1, "TAG")
	data := append(append(append([]byte{}, mpegFrames...), ext...), v1...)
	assert.Equal(t, mpegFrames, trimID3v1(data))
	assert.Equal(t, mpegFrames, trimID3v1(mpegFrames))
}

func TestFLAC(t *testing.T) {
	tags, err := Probe(taggedFLAC(false))
	require.NoError(t, err)
	assert.Equal(t, "Tune", tags["Title"])
	assert.Equal(t, "Player", tags["Artist"])

	out, err := Strip(taggedFLAC(true), "song.flac")
	require.NoError(t, err)
	blocks, audioStart, err := parseFLACBlocks(out)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, byte(0), blocks[0].blockType)
	assert.Equal(t, flacAudio, out[audioStart:])
	assert.Equal(t, byte(0x80), out[4]&0x80, "STREAMINFO becomes the last block")
}

func TestFLACTruncated(t *testing.T) {
	_, err := Strip([]byte("fLaC\x00\x00\x00\x22abc"), "bad.flac")
	var fe *core.FormatError
	assert.ErrorAs(t, err, &fe)
}

func TestWAV(t *testing.T) {
	data := taggedWAV()

	tags, err := Probe(data)
	require.NoError(t, err)
	assert.Equal(t, core.FlatMetadata{"Title": "Hello", "Artist": "Me"}, tags)

	out, err := Strip(data, "take.wav")
	require.NoError(t, err)
	chunks, err := parseRIFF(out)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "fmt ", chunks[0].id)
	assert.Equal(t, "data", chunks[1].id)
	assert.Equal(t, []byte{1, 2, 3}, chunks[1].body)
	assert.Equal(t, uint32(len(out)-8), binary.LittleEndian.Uint32(out[4:8]))

	tags, err = Probe(out)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestStripUnsupported(t *testing.T) {
	_, err := Strip([]byte("OggS\x00\x02rest"), "a.ogg")
	var ue *core.UnsupportedError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, core.FmtOGG, ue.Format)
}
