package exif

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestASCIIText(t *testing.T) {
	assert.Equal(t, "Canon", NewASCII("Canon").Text())
	assert.Equal(t, "first", ASCII("first\x00second\x00").Text())
	assert.Equal(t, "Café", ASCII("Caf\xe9\x00").Text(), "Latin-1 payloads are decoded")
	assert.Equal(t, uint32(6), NewASCII("Canon").Count())
}

func TestUndefinedDisplay(t *testing.T) {
	assert.Equal(t, "0230", Undefined("0230").Display())
	assert.Equal(t, "hello", Undefined("ASCII\x00\x00\x00hello").Display())
	assert.Equal(t, []byte{0x00, 0x01, 0xFE}, Undefined{0x00, 0x01, 0xFE}.Display())
	assert.Equal(t, "0001fe", Undefined{0x00, 0x01, 0xFE}.String())
}

func TestScalarAndSliceDisplay(t *testing.T) {
	assert.Equal(t, uint16(3), Shorts{3}.Display())
	assert.Equal(t, []uint16{3, 4}, Shorts{3, 4}.Display())
	assert.Equal(t, int32(-7), SLongs{-7}.Display())
	assert.Equal(t, "24/1, 70/1", Rationals{{24, 1}, {70, 1}}.String())
}

func TestAppendToUsesByteOrder(t *testing.T) {
	assert.Equal(t, []byte{0x00, 0x01, 0x00, 0x02}, Shorts{1, 2}.appendTo(nil, binary.BigEndian))
	assert.Equal(t, []byte{0x01, 0x00, 0x02, 0x00}, Shorts{1, 2}.appendTo(nil, binary.LittleEndian))
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 3}, SRationals{{-1, 3}}.appendTo(nil, binary.BigEndian))
}

func TestParseValueInvertsAppendTo(t *testing.T) {
	values := []Value{
		Bytes{1, 2, 3}, SBytes{-1, 2}, Undefined{9, 8}, Shorts{1, 65535},
		SShorts{-2}, Longs{1 << 31}, SLongs{-5, 5}, Rationals{{1, 3}},
		SRationals{{-2, 7}}, Floats{0.25}, Doubles{-3.5}, NewASCII("x"),
	}
	for _, v := range values {
		raw := v.appendTo(nil, binary.LittleEndian)
		assert.Equal(t, v, parseValue(v.Type(), v.Count(), raw, binary.LittleEndian), v.Type().String())
	}
}
