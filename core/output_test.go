package core

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ratio struct{ n, d int }

func (r ratio) String() string { return "ratio" }

func TestFormatValue(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, "N/A"},
		{"Canon", "Canon"},
		{uint16(6), "6"},
		{[]byte{0x01, 0xAB}, "01ab"},
		{ratio{1, 2}, "ratio"},
		{[]ratio{{1, 2}, {3, 4}}, "ratio, ratio"},
		{[]uint16{1, 2, 3}, "1, 2, 3"},
		{map[string]int{"a": 1}, `{"a":1}`},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatValue(c.in))
	}
	assert.Contains(t, FormatValue(make([]byte, 40)), "(40 bytes)")
}

func TestPrintMetadataJSON(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, &out, true, false)
	require.NoError(t, p.PrintMetadata(&Metadata{
		FilePath: "a.jpg",
		Format:   "jpeg",
		Fields:   []MetaField{{Key: "Make", Value: "Canon", Category: "Primary"}},
	}))

	var got jsonMetadata
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "a.jpg", got.FilePath)
	assert.Equal(t, []jsonField{{Key: "Make", Value: "Canon", Category: "Primary"}}, got.Fields)
}

func TestPrintMetadataText(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, &out, false, false)
	require.NoError(t, p.PrintMetadata(&Metadata{FilePath: "b.png", Format: "png"}))
	assert.Contains(t, out.String(), "No metadata found")

	out.Reset()
	require.NoError(t, p.PrintFlat("c.mp3", "mp3", FlatMetadata{"Title": "Song", "Year": 1999}))
	assert.Contains(t, out.String(), "Song")
	assert.Contains(t, out.String(), "1999")
}

func TestPrintVideo(t *testing.T) {
	var out bytes.Buffer
	d, w, h := 1.5, uint32(640), uint32(480)
	p := NewPrinter(&out, &out, false, false)
	require.NoError(t, p.PrintVideo(VideoMetadataRecord{
		FileName: "v.mp4", FileSize: 2048, MIMEType: "video/mp4",
		Duration: &d, Width: &w, Height: &h, Tags: map[string]string{"title": "x"},
	}))
	s := out.String()
	assert.Contains(t, s, "2.0 KiB")
	assert.Contains(t, s, "1.5s")
	assert.Contains(t, s, "640x480")
	assert.Contains(t, s, "tag:title")
}
