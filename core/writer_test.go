package core

import "testing"

func datedContainer(comment any) Container {
	exif := Section{TagDateTimeOriginal: "2021:02:03 04:05:06"}
	if comment != nil {
		exif[TagUserComment] = comment
	}
	return Container{SectionExif: exif}
}

func TestEncodeOriginalFilenameFreshComment(t *testing.T) {
	c := datedContainer(nil)
	EncodeOriginalFilename("IMG_0042.jpg", c)
	got, ok := c.Exif().Text(TagUserComment)
	if !ok {
		t.Fatal("user comment was not written")
	}
	if got != "ASCII\x00\x00\x00OriginalFilename: IMG_0042.jpg" {
		t.Fatalf("user comment = %q", got)
	}
}

func TestEncodeOriginalFilenameAppendsToExistingComment(t *testing.T) {
	c := datedContainer("ASCII\x00\x00\x00shot at dawn")
	EncodeOriginalFilename("IMG_0042.jpg", c)
	got, _ := c.Exif().Text(TagUserComment)
	want := "ASCII\x00\x00\x00shot at dawn\nOriginalFilename: IMG_0042.jpg"
	if got != want {
		t.Fatalf("user comment = %q, want %q", got, want)
	}
}

func TestEncodeOriginalFilenamePrefixesUnprefixedComment(t *testing.T) {
	// A comment written without a character set prefix picks one up on
	// the way back out, since encoding is unconditional.
	c := datedContainer("bare note")
	EncodeOriginalFilename("a.jpg", c)
	got, _ := c.Exif().Text(TagUserComment)
	want := "ASCII\x00\x00\x00bare note\nOriginalFilename: a.jpg"
	if got != want {
		t.Fatalf("user comment = %q, want %q", got, want)
	}
}

func TestEncodeOriginalFilenameIdempotent(t *testing.T) {
	for _, existing := range []string{
		"ASCII\x00\x00\x00OriginalFilename: other.jpg",
		"OriginalFilename: other.jpg",
		"ASCII\x00\x00\x00notes\n  OriginalFilename:",
		// An annotation naming a different file still blocks the write;
		// first recorded name wins.
		"ASCII\x00\x00\x00Camera: Canon\nOriginalFilename: old.jpg",
	} {
		c := datedContainer(existing)
		EncodeOriginalFilename("new.jpg", c)
		got, _ := c.Exif().Text(TagUserComment)
		if got != existing {
			t.Errorf("comment %q was rewritten to %q, want untouched", existing, got)
		}
	}
}

func TestEncodeOriginalFilenameTwiceEqualsOnce(t *testing.T) {
	c := datedContainer("ASCII\x00\x00\x00shot at dawn")
	EncodeOriginalFilename("IMG_0042.jpg", c)
	once, _ := c.Exif().Text(TagUserComment)
	EncodeOriginalFilename("IMG_0042.jpg", c)
	twice, _ := c.Exif().Text(TagUserComment)
	if twice != once {
		t.Fatalf("second call changed the comment: %q became %q", once, twice)
	}
}

func TestEncodeOriginalFilenameSkipsEmptyName(t *testing.T) {
	c := datedContainer(nil)
	EncodeOriginalFilename("", c)
	if c.Exif().Has(TagUserComment) {
		t.Fatal("empty file name must not write a comment")
	}

	c = datedContainer("ASCII\x00\x00\x00shot at dawn")
	EncodeOriginalFilename("", c)
	if got, _ := c.Exif().Text(TagUserComment); got != "ASCII\x00\x00\x00shot at dawn" {
		t.Fatalf("empty file name altered the comment to %q", got)
	}
}

func TestEncodeOriginalFilenameRequiresDateTaken(t *testing.T) {
	c := Container{SectionExif: Section{}}
	EncodeOriginalFilename("a.jpg", c)
	if c.Exif().Has(TagUserComment) {
		t.Fatal("container without a date-taken tag must stay untouched")
	}

	c = Container{SectionExif: Section{TagUserComment: "bare note"}}
	EncodeOriginalFilename("a.jpg", c)
	if got, _ := c.Exif().Text(TagUserComment); got != "bare note" {
		t.Fatalf("undated container's comment altered to %q", got)
	}
}

func TestEncodeOriginalFilenameToleratesMissingStructures(t *testing.T) {
	// None of these may panic or mutate anything.
	EncodeOriginalFilename("a.jpg", nil)
	EncodeOriginalFilename("a.jpg", Container{})
	EncodeOriginalFilename("a.jpg", Container{SectionIFD0: Section{TagMake: "Canon"}})
}

func TestEncodeOriginalFilenameAnyDateValueCounts(t *testing.T) {
	// Presence of the tag is what gates the write, not its shape.
	c := Container{SectionExif: Section{TagDateTimeOriginal: int64(12345)}}
	EncodeOriginalFilename("a.jpg", c)
	if !c.Exif().Has(TagUserComment) {
		t.Fatal("write should proceed on a non-string date value")
	}
}
