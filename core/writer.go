package core

import "github.com/rs/zerolog/log"

// EncodeOriginalFilename records fileName as an annotation line in the
// container's user comment, updating the container in place.
//
// The write is skipped when fileName is empty, when the container
// carries no date-taken tag (the annotation only makes sense for
// camera-dated files), or when any annotation line is already present,
// whatever its value. The function cannot fail: a nil container or a
// missing Exif section simply means there is nothing to do.
func EncodeOriginalFilename(fileName string, c Container) {
	if fileName == "" {
		return
	}
	exif := c.Exif()
	if !exif.Has(TagDateTimeOriginal) {
		return
	}

	raw, _ := exif.Text(TagUserComment)
	comment := DecodeUserComment(raw)
	if _, ok := AnnotationValue(comment); ok {
		log.Debug().Str("file", fileName).Msg("comment already names an original file, keeping it")
		return
	}
	exif[TagUserComment] = EncodeUserComment(appendAnnotation(comment, fileName))
}
