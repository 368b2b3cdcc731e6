package core

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestPrintExtractionText(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Writer: &buf}
	p.PrintExtraction("a.jpg", Extraction{DateTaken: "2023-07-15"})
	out := buf.String()
	if !strings.Contains(out, "Date taken   : 2023-07-15") {
		t.Errorf("missing date line in %q", out)
	}
	if !strings.Contains(out, "Original name: (not set)") {
		t.Errorf("missing placeholder for absent name in %q", out)
	}
}

func TestPrintExtractionJSON(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{JSON: true, Writer: &buf}
	p.PrintExtraction("a.jpg", Extraction{DateTaken: "2023-07-15", OriginalFileName: "b.jpg"})

	var got struct {
		File             string `json:"file"`
		DateTaken        string `json:"dateTaken"`
		OriginalFileName string `json:"originalFileName"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got.File != "a.jpg" || got.DateTaken != "2023-07-15" || got.OriginalFileName != "b.jpg" {
		t.Fatalf("decoded = %+v", got)
	}
}

func TestPrintMetadataGroupsBySection(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Writer: &buf}
	p.PrintMetadata(&Metadata{
		FilePath: "a.jpg",
		Format:   "JPEG",
		Fields: []MetaField{
			{Key: "Make", Value: "Canon", Section: "IFD0"},
			{Key: "DateTimeOriginal", Value: "2023:07:15 14:30:00", Section: "Exif"},
			{Key: "Model", Value: "EOS R5", Section: "IFD0"},
		},
	})
	out := buf.String()
	ifd0 := strings.Index(out, "── IFD0 ──")
	exif := strings.Index(out, "── Exif ──")
	if ifd0 < 0 || exif < 0 {
		t.Fatalf("missing section headers in %q", out)
	}
	if ifd0 > exif {
		t.Fatal("sections should appear in first-seen order")
	}
}

func TestPrintMetadataEmpty(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Writer: &buf}
	p.PrintMetadata(&Metadata{FilePath: "a.jpg", Format: "JPEG"})
	if !strings.Contains(buf.String(), "(no metadata found)") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestResolveOutPath(t *testing.T) {
	if got := ResolveOutPath("in.jpg", ""); got != "in.jpg" {
		t.Fatalf("in-place resolve = %q", got)
	}
	if got := ResolveOutPath("in.jpg", "out.jpg"); got != "out.jpg" {
		t.Fatalf("explicit resolve = %q", got)
	}
}
