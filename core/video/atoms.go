package video

import "encoding/binary"

const maxAtomDepth = 8

// metadataAtoms walks an ISO-BMFF buffer and returns the paths of atoms
// that carry descriptive tags: ilst items and QuickTime "©xxx" user data.
func metadataAtoms(data []byte) []string {
	var found []string
	walkAtoms(data, "", 0, &found)
	return found
}

func walkAtoms(data []byte, parent string, depth int, found *[]string) {
	if depth > maxAtomDepth {
		return
	}
	for pos := 0; pos+8 <= len(data); {
		size := uint64(binary.BigEndian.Uint32(data[pos:]))
		name := atomName(data[pos+4 : pos+8])
		hdr := uint64(8)
		switch size {
		case 0:
			size = uint64(len(data) - pos)
		case 1:
			if pos+16 > len(data) {
				return
			}
			size = binary.BigEndian.Uint64(data[pos+8:])
			hdr = 16
		}
		if size < hdr || size > uint64(len(data)-pos) {
			return
		}
		body := data[pos+int(hdr) : pos+int(size)]
		path := parent + "/" + name

		switch {
		case name == "moov" || name == "trak" || name == "udta":
			walkAtoms(body, path, depth+1, found)
		case name == "meta":
			// ISO meta is a full box; QuickTime meta is not.
			if len(body) >= 12 && string(body[8:12]) == "hdlr" {
				body = body[4:]
			}
			walkAtoms(body, path, depth+1, found)
		case name == "ilst":
			for _, child := range childNames(body) {
				*found = append(*found, path+"/"+child)
			}
		case data[pos+4] == 0xA9:
			*found = append(*found, path)
		}
		pos += int(size)
	}
}

func childNames(data []byte) []string {
	var names []string
	for pos := 0; pos+8 <= len(data); {
		size := int(binary.BigEndian.Uint32(data[pos:]))
		if size < 8 || size > len(data)-pos {
			break
		}
		names = append(names, atomName(data[pos+4:pos+8]))
		pos += size
	}
	return names
}

// atomName renders a four-byte type; the 0xA9 copyright byte becomes "©".
func atomName(b []byte) string {
	if b[0] == 0xA9 {
		return "©" + string(b[1:])
	}
	return string(b)
}
