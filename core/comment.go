package core

import "strings"

// commentPrefix is the eight-byte character set marker that EXIF puts
// ahead of the UserComment payload. Every comment this tool writes is
// plain ASCII.
const commentPrefix = "ASCII\x00\x00\x00"

// annotationLabel starts the comment line that preserves a file's name
// from before renaming. Matching is exact and case sensitive.
const annotationLabel = "OriginalFilename:"

// DecodeUserComment returns the comment text without its character set
// prefix. Comments written by other tools sometimes omit the prefix
// entirely, so an unprefixed comment is returned unchanged rather than
// rejected.
func DecodeUserComment(raw string) string {
	if strings.HasPrefix(raw, commentPrefix) {
		return raw[len(commentPrefix):]
	}
	return raw
}

// EncodeUserComment prepends the ASCII character set prefix. The input
// must be bare text; callers that start from a stored comment strip it
// first with DecodeUserComment.
func EncodeUserComment(comment string) string {
	return commentPrefix + comment
}

// AnnotationValue scans a decoded comment line by line and returns the
// value of the first line whose trimmed text starts with the
// annotation label. The second result reports whether such a line
// exists at all, which is what the writer's already-annotated check
// needs; the value itself may legitimately be empty.
func AnnotationValue(comment string) (string, bool) {
	for _, line := range strings.Split(comment, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, annotationLabel) {
			return strings.TrimSpace(trimmed[len(annotationLabel):]), true
		}
	}
	return "", false
}

// appendAnnotation adds an annotation line for fileName at the end of
// comment. The line stands alone when the comment is empty and goes on
// its own line otherwise.
func appendAnnotation(comment, fileName string) string {
	line := annotationLabel + " " + fileName
	if comment == "" {
		return line
	}
	return comment + "\n" + line
}
