// Package jpg reads the full EXIF field listing from a JPEG for
// display. The annotation pipeline in core does not come through here;
// this is the human-facing view command.
package jpg

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	"golang.org/x/text/encoding/unicode"

	"github.com/EzraMarks/obsidian-image-converter/core"
)

// View decodes every EXIF field in the file at path into a display
// listing, grouped by section and naturally ordered within each one.
func View(path string) (*core.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("no EXIF metadata found: %w", err)
	}

	m := &core.Metadata{FilePath: path, Format: "JPEG"}
	x.Walk(fieldWalker{m: m})

	sort.Slice(m.Fields, func(i, j int) bool {
		a, b := m.Fields[i], m.Fields[j]
		if a.Section != b.Section {
			return sectionRank[a.Section] < sectionRank[b.Section]
		}
		return natural.Less(a.Key, b.Key)
	})
	return m, nil
}

var sectionRank = map[string]int{
	core.SectionIFD0: 0,
	core.SectionExif: 1,
	core.SectionGPS:  2,
	core.SectionIFD1: 3,
}

// Fields that live in the primary IFD. Everything else that is not GPS
// sits in the Exif sub-IFD in practice.
var ifd0Fields = map[exif.FieldName]bool{
	exif.ImageDescription: true,
	exif.Make:             true,
	exif.Model:            true,
	exif.Orientation:      true,
	exif.XResolution:      true,
	exif.YResolution:      true,
	exif.ResolutionUnit:   true,
	exif.Software:         true,
	exif.DateTime:         true,
	exif.Artist:           true,
	exif.Copyright:        true,
	exif.YCbCrPositioning: true,
}

type fieldWalker struct {
	m *core.Metadata
}

func (w fieldWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	val := tag.String()
	// Remove surrounding quotes from string values
	if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
		val = val[1 : len(val)-1]
	}
	if name == exif.UserComment {
		if text, ok := displayComment(tag.Val); ok {
			val = text
		}
	}
	w.m.Fields = append(w.m.Fields, core.MetaField{
		Key:     string(name),
		Value:   val,
		Section: sectionOf(name),
	})
	return nil
}

func sectionOf(name exif.FieldName) string {
	if strings.HasPrefix(string(name), "GPS") {
		return core.SectionGPS
	}
	if ifd0Fields[name] {
		return core.SectionIFD0
	}
	return core.SectionExif
}

// displayComment renders a raw UserComment payload as readable text.
// The eight-byte prefix selects the character set; UNICODE payloads are
// UTF-16 and need a real decode before display.
func displayComment(raw []byte) (string, bool) {
	switch {
	case bytes.HasPrefix(raw, []byte("ASCII\x00\x00\x00")):
		return strings.TrimRight(string(raw[8:]), "\x00"), true
	case bytes.HasPrefix(raw, []byte("UNICODE\x00")):
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		text, err := dec.Bytes(raw[8:])
		if err != nil {
			return "", false
		}
		return strings.TrimRight(string(text), "\x00"), true
	case bytes.HasPrefix(raw, make([]byte, 8)) && len(raw) > 8:
		return strings.TrimRight(string(raw[8:]), "\x00"), true
	}
	return "", false
}
