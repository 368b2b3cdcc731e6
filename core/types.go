// Package core defines the metadata container model, the codec
// capability, and the reader/writer pair for the original-filename
// annotation convention.
package core

// Well-known EXIF section names. A Container groups tags into these
// sections the same way a TIFF file groups them into IFDs.
const (
	SectionIFD0 = "IFD0" // primary image tags (Make, Model, DateTime, ...)
	SectionExif = "Exif" // camera sub-IFD (DateTimeOriginal, UserComment, ...)
	SectionGPS  = "GPS"  // GPSInfo sub-IFD
	SectionIFD1 = "IFD1" // thumbnail IFD
)

// Tag IDs for the fields recognized across the toolset. IDs under 0x9000
// live in IFD0, the rest in the Exif sub-IFD.
const (
	TagImageDescription  uint16 = 0x010E
	TagMake              uint16 = 0x010F
	TagModel             uint16 = 0x0110
	TagSoftware          uint16 = 0x0131
	TagDateTime          uint16 = 0x0132
	TagArtist            uint16 = 0x013B
	TagCopyright         uint16 = 0x8298
	TagDateTimeOriginal  uint16 = 0x9003
	TagDateTimeDigitized uint16 = 0x9004
	TagUserComment       uint16 = 0x9286
)

// Section maps tag IDs to decoded values within one IFD. Values are
// strings for ASCII tags, int64 for integral tags, and []byte for
// undefined or oversized payloads.
type Section map[uint16]any

// Container is the in-memory form of a file's EXIF block: section name
// to tag table. Codecs produce and consume it; the reader and writer
// only ever touch it through the accessors below.
type Container map[string]Section

// Text returns the tag's value as a string. Byte payloads are
// stringified as-is; any other type reports false, same as a missing
// tag, so callers never have to type-switch themselves.
func (s Section) Text(tag uint16) (string, bool) {
	switch v := s[tag].(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

// Has reports whether the tag is present at all, regardless of type.
func (s Section) Has(tag uint16) bool {
	_, ok := s[tag]
	return ok
}

// Exif returns the camera sub-IFD section, which may be nil.
func (c Container) Exif() Section {
	return c[SectionExif]
}

// Codec parses a file's EXIF block into a Container and serializes a
// Container back into file bytes. The production implementation is
// exifcodec.Standard; tests substitute in-memory fakes. Everything in
// core is written against this interface only.
type Codec interface {
	// Parse decodes the EXIF block found in data. It returns an error
	// when data holds no usable EXIF structure.
	Parse(data []byte) (Container, error)
	// Dump writes the container's tags back into src, returning the
	// full rewritten file bytes.
	Dump(c Container, src []byte) ([]byte, error)
}

// Extraction is the result of reading a file's annotation metadata.
// Absent fields are empty strings, never errors.
type Extraction struct {
	DateTaken        string // "YYYY-MM-DD", or "" when the file has no usable date
	OriginalFileName string // value of the annotation line, or ""
}
