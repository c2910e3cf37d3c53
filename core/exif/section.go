package exif

// Section is the logical directory an entry belongs to.
type Section uint8

const (
	Primary Section = iota // IFD0
	Exif                   // Exif sub-IFD
	GPS                    // GPS sub-IFD
	Interop                // Interoperability sub-IFD
	Thumbnail              // IFD1

	numSections = int(Thumbnail) + 1
)

// Sections lists every section in encode order.
var Sections = [numSections]Section{Primary, Exif, GPS, Interop, Thumbnail}

var sectionNames = [numSections]string{"Primary", "Exif", "GPS", "Interop", "Thumbnail"}

func (s Section) String() string {
	if int(s) < numSections {
		return sectionNames[s]
	}
	return "Unknown"
}

// Structural tags. The decoder consumes these into the directory layout and
// the encoder regenerates them; they never appear as entries.
const (
	tagExifPointer    uint16 = 0x8769
	tagGPSPointer     uint16 = 0x8825
	tagInteropPointer uint16 = 0xA005
	tagThumbOffset    uint16 = 0x0201
	tagThumbLength    uint16 = 0x0202
	tagStripOffsets   uint16 = 0x0111
)
