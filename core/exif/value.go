package exif

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DataType is the TIFF wire type of an entry.
type DataType uint16

const (
	TypeByte      DataType = 1
	TypeASCII     DataType = 2
	TypeShort     DataType = 3
	TypeLong      DataType = 4
	TypeRational  DataType = 5
	TypeSByte     DataType = 6
	TypeUndefined DataType = 7
	TypeSShort    DataType = 8
	TypeSLong     DataType = 9
	TypeSRational DataType = 10
	TypeFloat     DataType = 11
	TypeDouble    DataType = 12
	typeIFD       DataType = 13
)

var typeSizes = map[DataType]int{
	TypeByte: 1, TypeASCII: 1, TypeShort: 2, TypeLong: 4, TypeRational: 8,
	TypeSByte: 1, TypeUndefined: 1, TypeSShort: 2, TypeSLong: 4,
	TypeSRational: 8, TypeFloat: 4, TypeDouble: 8,
}

// Size is the byte width of one element, or 0 for unknown types.
func (t DataType) Size() int { return typeSizes[t] }

func (t DataType) String() string {
	switch t {
	case TypeByte:
		return "BYTE"
	case TypeASCII:
		return "ASCII"
	case TypeShort:
		return "SHORT"
	case TypeLong:
		return "LONG"
	case TypeRational:
		return "RATIONAL"
	case TypeSByte:
		return "SBYTE"
	case TypeUndefined:
		return "UNDEFINED"
	case TypeSShort:
		return "SSHORT"
	case TypeSLong:
		return "SLONG"
	case TypeSRational:
		return "SRATIONAL"
	case TypeFloat:
		return "FLOAT"
	case TypeDouble:
		return "DOUBLE"
	}
	return "TYPE(" + strconv.Itoa(int(t)) + ")"
}

// Rational is an unsigned fraction.
type Rational struct {
	Num uint32 `json:"num"`
	Den uint32 `json:"den"`
}

func (r Rational) String() string { return fmt.Sprintf("%d/%d", r.Num, r.Den) }

// SRational is a signed fraction.
type SRational struct {
	Num int32 `json:"num"`
	Den int32 `json:"den"`
}

func (r SRational) String() string { return fmt.Sprintf("%d/%d", r.Num, r.Den) }

// Value is the typed payload of an entry. The set of implementations is
// closed; each reproduces its exact wire bytes on encode.
type Value interface {
	Type() DataType
	Count() uint32
	// Display returns a loosely typed value for FlatMetadata.
	Display() any
	String() string
	appendTo(b []byte, order binary.ByteOrder) []byte
}

type (
	// ASCII holds the raw payload including NUL terminators.
	ASCII      string
	Bytes      []byte
	SBytes     []int8
	Undefined  []byte
	Shorts     []uint16
	SShorts    []int16
	Longs      []uint32
	SLongs     []int32
	Rationals  []Rational
	SRationals []SRational
	Floats     []float32
	Doubles    []float64
)

// NewASCII terminates s with NUL as the wire format requires.
func NewASCII(s string) ASCII { return ASCII(s + "\x00") }

func (v ASCII) Type() DataType      { return TypeASCII }
func (v Bytes) Type() DataType      { return TypeByte }
func (v SBytes) Type() DataType     { return TypeSByte }
func (v Undefined) Type() DataType  { return TypeUndefined }
func (v Shorts) Type() DataType     { return TypeShort }
func (v SShorts) Type() DataType    { return TypeSShort }
func (v Longs) Type() DataType      { return TypeLong }
func (v SLongs) Type() DataType     { return TypeSLong }
func (v Rationals) Type() DataType  { return TypeRational }
func (v SRationals) Type() DataType { return TypeSRational }
func (v Floats) Type() DataType     { return TypeFloat }
func (v Doubles) Type() DataType    { return TypeDouble }

func (v ASCII) Count() uint32      { return uint32(len(v)) }
func (v Bytes) Count() uint32      { return uint32(len(v)) }
func (v SBytes) Count() uint32     { return uint32(len(v)) }
func (v Undefined) Count() uint32  { return uint32(len(v)) }
func (v Shorts) Count() uint32     { return uint32(len(v)) }
func (v SShorts) Count() uint32    { return uint32(len(v)) }
func (v Longs) Count() uint32      { return uint32(len(v)) }
func (v SLongs) Count() uint32     { return uint32(len(v)) }
func (v Rationals) Count() uint32  { return uint32(len(v)) }
func (v SRationals) Count() uint32 { return uint32(len(v)) }
func (v Floats) Count() uint32     { return uint32(len(v)) }
func (v Doubles) Count() uint32    { return uint32(len(v)) }

func (v ASCII) appendTo(b []byte, _ binary.ByteOrder) []byte     { return append(b, v...) }
func (v Bytes) appendTo(b []byte, _ binary.ByteOrder) []byte     { return append(b, v...) }
func (v Undefined) appendTo(b []byte, _ binary.ByteOrder) []byte { return append(b, v...) }

func (v SBytes) appendTo(b []byte, _ binary.ByteOrder) []byte {
	for _, x := range v {
		b = append(b, byte(x))
	}
	return b
}

func (v Shorts) appendTo(b []byte, o binary.ByteOrder) []byte {
	for _, x := range v {
		b = put16(b, o, x)
	}
	return b
}

func (v SShorts) appendTo(b []byte, o binary.ByteOrder) []byte {
	for _, x := range v {
		b = put16(b, o, uint16(x))
	}
	return b
}

func (v Longs) appendTo(b []byte, o binary.ByteOrder) []byte {
	for _, x := range v {
		b = put32(b, o, x)
	}
	return b
}

func (v SLongs) appendTo(b []byte, o binary.ByteOrder) []byte {
	for _, x := range v {
		b = put32(b, o, uint32(x))
	}
	return b
}

func (v Rationals) appendTo(b []byte, o binary.ByteOrder) []byte {
	for _, x := range v {
		b = put32(b, o, x.Num)
		b = put32(b, o, x.Den)
	}
	return b
}

func (v SRationals) appendTo(b []byte, o binary.ByteOrder) []byte {
	for _, x := range v {
		b = put32(b, o, uint32(x.Num))
		b = put32(b, o, uint32(x.Den))
	}
	return b
}

func (v Floats) appendTo(b []byte, o binary.ByteOrder) []byte {
	for _, x := range v {
		b = put32(b, o, math.Float32bits(x))
	}
	return b
}

func (v Doubles) appendTo(b []byte, o binary.ByteOrder) []byte {
	for _, x := range v {
		b = put64(b, o, math.Float64bits(x))
	}
	return b
}

// parseValue decodes count elements of type t from raw. raw must hold
// exactly count*t.Size() bytes.
func parseValue(t DataType, count uint32, raw []byte, o binary.ByteOrder) Value {
	n := int(count)
	switch t {
	case TypeByte:
		return Bytes(clone(raw))
	case TypeASCII:
		return ASCII(raw)
	case TypeUndefined:
		return Undefined(clone(raw))
	case TypeSByte:
		v := make(SBytes, n)
		for i := range v {
			v[i] = int8(raw[i])
		}
		return v
	case TypeShort:
		v := make(Shorts, n)
		for i := range v {
			v[i] = o.Uint16(raw[2*i:])
		}
		return v
	case TypeSShort:
		v := make(SShorts, n)
		for i := range v {
			v[i] = int16(o.Uint16(raw[2*i:]))
		}
		return v
	case TypeLong:
		v := make(Longs, n)
		for i := range v {
			v[i] = o.Uint32(raw[4*i:])
		}
		return v
	case TypeSLong:
		v := make(SLongs, n)
		for i := range v {
			v[i] = int32(o.Uint32(raw[4*i:]))
		}
		return v
	case TypeRational:
		v := make(Rationals, n)
		for i := range v {
			v[i] = Rational{o.Uint32(raw[8*i:]), o.Uint32(raw[8*i+4:])}
		}
		return v
	case TypeSRational:
		v := make(SRationals, n)
		for i := range v {
			v[i] = SRational{int32(o.Uint32(raw[8*i:])), int32(o.Uint32(raw[8*i+4:]))}
		}
		return v
	case TypeFloat:
		v := make(Floats, n)
		for i := range v {
			v[i] = math.Float32frombits(o.Uint32(raw[4*i:]))
		}
		return v
	case TypeDouble:
		v := make(Doubles, n)
		for i := range v {
			v[i] = math.Float64frombits(o.Uint64(raw[8*i:]))
		}
		return v
	}
	return nil
}

func clone(b []byte) []byte { return append([]byte(nil), b...) }

// Text returns the string up to the first NUL. Payloads that are not valid
// UTF-8 are read as Latin-1, which is what most cameras write.
func (v ASCII) Text() string {
	s := string(v)
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	if !utf8.ValidString(s) {
		if dec, err := charmap.ISO8859_1.NewDecoder().String(s); err == nil {
			return dec
		}
	}
	return s
}

func (v ASCII) Display() any    { return v.Text() }
func (v ASCII) String() string { return v.Text() }

func (v Bytes) Display() any      { return scalarOrSlice([]byte(v)) }
func (v SBytes) Display() any     { return scalarOrSlice([]int8(v)) }
func (v Shorts) Display() any     { return scalarOrSlice([]uint16(v)) }
func (v SShorts) Display() any    { return scalarOrSlice([]int16(v)) }
func (v Longs) Display() any      { return scalarOrSlice([]uint32(v)) }
func (v SLongs) Display() any     { return scalarOrSlice([]int32(v)) }
func (v Rationals) Display() any  { return scalarOrSlice([]Rational(v)) }
func (v SRationals) Display() any { return scalarOrSlice([]SRational(v)) }
func (v Floats) Display() any     { return scalarOrSlice([]float32(v)) }
func (v Doubles) Display() any    { return scalarOrSlice([]float64(v)) }

func scalarOrSlice[T any](v []T) any {
	if len(v) == 1 {
		return v[0]
	}
	return append([]T(nil), v...)
}

var userCommentASCII = []byte("ASCII\x00\x00\x00")

// Display renders printable payloads (ExifVersion "0230", ASCII-coded
// UserComment) as strings and everything else as bytes.
func (v Undefined) Display() any {
	b := []byte(v)
	if len(b) >= 8 && string(b[:8]) == string(userCommentASCII) {
		b = b[8:]
	}
	trimmed := strings.TrimRight(string(b), "\x00 ")
	if printable(trimmed) {
		return trimmed
	}
	return clone(v)
}

func (v Undefined) String() string {
	switch d := v.Display().(type) {
	case string:
		return d
	default:
		return hexPreview(v)
	}
}

func printable(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7E {
			return false
		}
	}
	return true
}

func hexPreview(b []byte) string {
	const max = 32
	if len(b) <= max {
		return hex.EncodeToString(b)
	}
	return fmt.Sprintf("%s... (%d bytes)", hex.EncodeToString(b[:max]), len(b))
}

func (v Bytes) String() string      { return joinValues([]byte(v)) }
func (v SBytes) String() string     { return joinValues([]int8(v)) }
func (v Shorts) String() string     { return joinValues([]uint16(v)) }
func (v SShorts) String() string    { return joinValues([]int16(v)) }
func (v Longs) String() string      { return joinValues([]uint32(v)) }
func (v SLongs) String() string     { return joinValues([]int32(v)) }
func (v Rationals) String() string  { return joinValues([]Rational(v)) }
func (v SRationals) String() string { return joinValues([]SRational(v)) }
func (v Floats) String() string     { return joinValues([]float32(v)) }
func (v Doubles) String() string    { return joinValues([]float64(v)) }

func joinValues[T any](v []T) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}

func put16(b []byte, o binary.ByteOrder, v uint16) []byte {
	var t [2]byte
	o.PutUint16(t[:], v)
	return append(b, t[:]...)
}

func put32(b []byte, o binary.ByteOrder, v uint32) []byte {
	var t [4]byte
	o.PutUint32(t[:], v)
	return append(b, t[:]...)
}

func put64(b []byte, o binary.ByteOrder, v uint64) []byte {
	var t [8]byte
	o.PutUint64(t[:], v)
	return append(b, t[:]...)
}
