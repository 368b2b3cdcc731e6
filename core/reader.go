package core

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// ExtractMetadata reads the date-taken value and the original-filename
// annotation from a file's bytes. It never fails: a missing EXIF block,
// a truncated header, or a malformed value all degrade to empty fields,
// so callers treat "no metadata" and "unreadable metadata" the same way.
//
// Only the leading HeaderBytes of data are handed to the codec; EXIF
// sits at the front of the file, and bounding the window keeps large
// originals cheap to scan.
func ExtractMetadata(data []byte, codec Codec) Extraction {
	ex, err := extract(data, codec)
	if err != nil {
		log.Warn().Err(err).Msg("extraction failed, returning empty metadata")
		return Extraction{}
	}
	return ex
}

// extract is the fallible inner half of ExtractMetadata, split out so
// tests can assert on the failure reason.
func extract(data []byte, codec Codec) (Extraction, error) {
	container, err := codec.Parse(HeaderWindow(data))
	if err != nil {
		return Extraction{}, fmt.Errorf("parse exif: %w", err)
	}

	exif := container.Exif()
	var ex Extraction
	if raw, ok := exif.Text(TagDateTimeOriginal); ok {
		ex.DateTaken = formatDateTaken(raw)
	}
	if raw, ok := exif.Text(TagUserComment); ok {
		if v, ok := AnnotationValue(DecodeUserComment(raw)); ok {
			ex.OriginalFileName = v
		}
	}
	return ex, nil
}

// formatDateTaken takes the token before the first space and swaps its
// colons for hyphens, turning an EXIF timestamp ("2023:07:15 14:30:00")
// into a plain date ("2023-07-15"). The value is not validated; cameras
// that write junk into the tag get the same junk back out.
func formatDateTaken(raw string) string {
	date, _, _ := strings.Cut(raw, " ")
	return strings.ReplaceAll(date, ":", "-")
}
