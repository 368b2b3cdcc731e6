package core

import (
	"strings"
	"testing"
)

func TestDecodeUserCommentStripsPrefix(t *testing.T) {
	got := DecodeUserComment("ASCII\x00\x00\x00hello")
	if got != "hello" {
		t.Fatalf("DecodeUserComment = %q, want %q", got, "hello")
	}
}

func TestDecodeUserCommentKeepsUnprefixedText(t *testing.T) {
	for _, raw := range []string{"", "plain comment", "ASCII without nulls"} {
		if got := DecodeUserComment(raw); got != raw {
			t.Errorf("DecodeUserComment(%q) = %q, want input unchanged", raw, got)
		}
	}
}

func TestEncodeUserCommentAlwaysPrepends(t *testing.T) {
	got := EncodeUserComment("note")
	if got != "ASCII\x00\x00\x00note" {
		t.Fatalf("EncodeUserComment = %q", got)
	}
	// Encode does not inspect its input; re-encoding stacks a second
	// prefix, which is why callers must decode before editing.
	double := EncodeUserComment(got)
	if !strings.HasPrefix(double, "ASCII\x00\x00\x00ASCII\x00\x00\x00") {
		t.Fatalf("re-encoded comment = %q, want double prefix", double)
	}
}

func TestAnnotationValue(t *testing.T) {
	tests := []struct {
		name    string
		comment string
		want    string
		found   bool
	}{
		{"single line", "OriginalFilename: IMG_1234.jpg", "IMG_1234.jpg", true},
		{"among other lines", "shot on holiday\nOriginalFilename: beach.jpg\nmore text", "beach.jpg", true},
		{"leading whitespace", "   OriginalFilename:   spaced.jpg  ", "spaced.jpg", true},
		{"empty value still counts", "OriginalFilename:", "", true},
		{"first matching line wins", "OriginalFilename: first.jpg\nOriginalFilename: second.jpg", "first.jpg", true},
		{"lowercase label ignored", "originalfilename: x.jpg", "", false},
		{"uppercase label ignored", "ORIGINALFILENAME: x.jpg", "", false},
		{"label mid-line ignored", "see OriginalFilename: x.jpg", "", false},
		{"no label", "just a comment", "", false},
		{"empty comment", "", "", false},
	}
	for _, tt := range tests {
		got, found := AnnotationValue(tt.comment)
		if got != tt.want || found != tt.found {
			t.Errorf("%s: AnnotationValue(%q) = (%q, %v), want (%q, %v)",
				tt.name, tt.comment, got, found, tt.want, tt.found)
		}
	}
}

func TestAppendAnnotation(t *testing.T) {
	if got := appendAnnotation("", "a.jpg"); got != "OriginalFilename: a.jpg" {
		t.Fatalf("append to empty comment = %q", got)
	}
	got := appendAnnotation("existing note", "a.jpg")
	if got != "existing note\nOriginalFilename: a.jpg" {
		t.Fatalf("append to existing comment = %q", got)
	}
}
