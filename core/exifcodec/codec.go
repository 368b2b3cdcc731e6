// Package exifcodec implements core.Codec on top of the dsoprea EXIF
// and JPEG segment libraries. Parse walks every IFD of the EXIF block
// into a core.Container; Dump starts from the source file's own EXIF
// builder so tags outside the writable set survive a rewrite untouched.
package exifcodec

import (
	"bytes"
	"fmt"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	exifundefined "github.com/dsoprea/go-exif/v3/undefined"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"

	"github.com/EzraMarks/obsidian-image-converter/core"
)

// Writable text tags, keyed by the builder path of the IFD that owns
// them. Only these ever flow from a Container back into a file; every
// other tag in the source EXIF block is carried over by the builder.
var (
	ifd0TextTags = map[uint16]string{
		core.TagImageDescription: "ImageDescription",
		core.TagMake:             "Make",
		core.TagModel:            "Model",
		core.TagSoftware:         "Software",
		core.TagDateTime:         "DateTime",
		core.TagArtist:           "Artist",
		core.TagCopyright:        "Copyright",
	}
	exifTextTags = map[uint16]string{
		core.TagDateTimeOriginal:  "DateTimeOriginal",
		core.TagDateTimeDigitized: "DateTimeDigitized",
	}
)

// Eight-byte character set markers for the UserComment payload, keyed
// by the library's encoding enum.
var commentEncodings = map[int][]byte{
	exifundefined.TagUndefinedType_9286_UserComment_Encoding_ASCII:   []byte("ASCII\x00\x00\x00"),
	exifundefined.TagUndefinedType_9286_UserComment_Encoding_UNICODE: []byte("UNICODE\x00"),
	exifundefined.TagUndefinedType_9286_UserComment_Encoding_JIS:     []byte("JIS\x00\x00\x00\x00\x00"),
}

// Standard is the production codec. It is stateless and safe for
// concurrent use.
type Standard struct{}

// New returns a ready-to-use codec.
func New() *Standard {
	return &Standard{}
}

// Parse locates the EXIF block anywhere in data and decodes it into a
// Container. The underlying library panics on some malformed inputs, so
// the recover here is part of the contract: callers only ever see an
// error.
func (s *Standard) Parse(data []byte) (c core.Container, err error) {
	defer func() {
		if r := recover(); r != nil {
			c, err = nil, fmt.Errorf("exif parse: %v", r)
		}
	}()

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		return nil, fmt.Errorf("locate exif block: %w", err)
	}

	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		return nil, fmt.Errorf("create ifd mapping: %w", err)
	}
	ti := exif.NewTagIndex()

	_, index, err := exif.Collect(im, ti, rawExif)
	if err != nil {
		return nil, fmt.Errorf("collect exif tags: %w", err)
	}

	container := core.Container{}
	cb := func(ifd *exif.Ifd, ite *exif.IfdTagEntry) error {
		sec := sectionFor(ifd)
		if sec == "" {
			return nil
		}
		value := tagValue(ite)
		if value == nil {
			return nil
		}
		tags := container[sec]
		if tags == nil {
			tags = core.Section{}
			container[sec] = tags
		}
		tags[ite.TagId()] = value
		return nil
	}
	if err := index.RootIfd.EnumerateTagsRecursively(cb); err != nil {
		return nil, fmt.Errorf("walk exif tree: %w", err)
	}
	return container, nil
}

// sectionFor maps the library's IFD identity onto a container section
// name. IFDs outside the container model (Iop, vendor trees) map to "".
func sectionFor(ifd *exif.Ifd) string {
	ii := ifd.IfdIdentity()
	switch ii.UnindexedString() {
	case "IFD":
		if ii.Index() == 1 {
			return core.SectionIFD1
		}
		return core.SectionIFD0
	case "IFD/Exif":
		return core.SectionExif
	case "IFD/GPSInfo":
		return core.SectionGPS
	}
	return ""
}

// tagValue converts one parsed tag into the container's value model:
// string for text, int64 for single integers, []byte for undefined
// payloads. Anything else returns nil and is skipped; those tags still
// survive a Dump because the builder starts from the source bytes.
func tagValue(ite *exif.IfdTagEntry) any {
	if ite.TagType() == exifcommon.TypeUndefined {
		// Keeps the full payload including the UserComment character
		// set prefix, which the comment helpers own.
		raw, err := ite.GetRawBytes()
		if err != nil {
			return nil
		}
		return raw
	}

	value, err := ite.Value()
	if err != nil {
		return nil
	}
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return v
	case []uint16:
		if len(v) == 1 {
			return int64(v[0])
		}
	case []uint32:
		if len(v) == 1 {
			return int64(v[0])
		}
	case []int32:
		if len(v) == 1 {
			return int64(v[0])
		}
	}
	return nil
}

// Dump rewrites src (a JPEG) with the container's writable tags applied
// and returns the new file bytes. Sections other than IFD0 and Exif are
// read-only carry: whatever src already holds for them is preserved.
func (s *Standard) Dump(c core.Container, src []byte) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("exif dump: %v", r)
		}
	}()

	mp := jpegstructure.NewJpegMediaParser()
	intfc, err := mp.ParseBytes(src)
	if err != nil {
		return nil, fmt.Errorf("parse jpeg: %w", err)
	}
	sl := intfc.(*jpegstructure.SegmentList)

	rootIb, err := sl.ConstructExifBuilder()
	if err != nil {
		// No EXIF segment yet; start an empty builder.
		im, err := exifcommon.NewIfdMappingWithStandard()
		if err != nil {
			return nil, fmt.Errorf("create ifd mapping: %w", err)
		}
		ti := exif.NewTagIndex()
		if err := exif.LoadStandardTags(ti); err != nil {
			return nil, fmt.Errorf("load standard tags: %w", err)
		}
		rootIb = exif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity,
			exifcommon.EncodeDefaultByteOrder)
	}

	if err := applyTextTags(rootIb, "IFD0", c[core.SectionIFD0], ifd0TextTags); err != nil {
		return nil, err
	}
	if err := applyTextTags(rootIb, "IFD0/Exif", c.Exif(), exifTextTags); err != nil {
		return nil, err
	}
	if raw, ok := c.Exif().Text(core.TagUserComment); ok {
		ib, err := exif.GetOrCreateIbFromRootIb(rootIb, "IFD0/Exif")
		if err != nil {
			return nil, fmt.Errorf("get exif ifd builder: %w", err)
		}
		if err := ib.SetStandardWithName("UserComment", userCommentValue(raw)); err != nil {
			return nil, fmt.Errorf("set UserComment: %w", err)
		}
	}

	if err := sl.SetExif(rootIb); err != nil {
		return nil, fmt.Errorf("set exif segment: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := sl.Write(buf); err != nil {
		return nil, fmt.Errorf("serialize jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func applyTextTags(rootIb *exif.IfdBuilder, ifdPath string, tags core.Section, names map[uint16]string) error {
	for id, name := range names {
		value, ok := tags.Text(id)
		if !ok {
			continue
		}
		ib, err := exif.GetOrCreateIbFromRootIb(rootIb, ifdPath)
		if err != nil {
			return fmt.Errorf("get %s builder: %w", ifdPath, err)
		}
		if err := ib.SetStandardWithName(name, value); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
	}
	return nil
}

// userCommentValue splits a stored comment payload back into the
// library's encoding enum plus bare bytes. Unprefixed payloads are
// written as ASCII.
func userCommentValue(raw string) exifundefined.Tag9286UserComment {
	b := []byte(raw)
	for enc, prefix := range commentEncodings {
		if bytes.HasPrefix(b, prefix) {
			return exifundefined.Tag9286UserComment{
				EncodingType:  enc,
				EncodingBytes: b[len(prefix):],
			}
		}
	}
	return exifundefined.Tag9286UserComment{
		EncodingType:  exifundefined.TagUndefinedType_9286_UserComment_Encoding_ASCII,
		EncodingBytes: b,
	}
}
