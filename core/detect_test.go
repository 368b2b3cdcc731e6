package core

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestSniffFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want FormatID
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, FmtJPEG},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, FmtPNG},
		{"gif", []byte("GIF89a......"), FmtGIF},
		{"webp", append([]byte("RIFF\x00\x00\x00\x00"), []byte("WEBP")...), FmtWebP},
		{"tiff le", []byte{0x49, 0x49, 0x2A, 0x00}, FmtTIFF},
		{"tiff be", []byte{0x4D, 0x4D, 0x00, 0x2A}, FmtTIFF},
		{"bmp", []byte{0x42, 0x4D, 0x00, 0x00}, FmtBMP},
		{"heic", []byte("\x00\x00\x00\x18ftypheic"), FmtHEIC},
		{"short", []byte{0xFF}, FmtUnknown},
		{"garbage", []byte("not an image"), FmtUnknown},
	}
	for _, tt := range tests {
		if got := SniffFormat(tt.data); got != tt.want {
			t.Errorf("%s: SniffFormat = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDetectFormatFallsBackToExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mystery.jpg")
	if err := os.WriteFile(path, []byte("no known magic here"), 0o644); err != nil {
		t.Fatal(err)
	}
	id, err := DetectFormat(path)
	if err != nil {
		t.Fatal(err)
	}
	if id != FmtJPEG {
		t.Fatalf("DetectFormat = %q, want %q via extension", id, FmtJPEG)
	}
}

func TestDetectFormatPrefersMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "renamed.png")
	if err := os.WriteFile(path, []byte{0xFF, 0xD8, 0xFF, 0xE1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, 0o644); err != nil {
		t.Fatal(err)
	}
	id, err := DetectFormat(path)
	if err != nil {
		t.Fatal(err)
	}
	if id != FmtJPEG {
		t.Fatalf("DetectFormat = %q, want %q via magic bytes", id, FmtJPEG)
	}
}

func TestHeaderWindow(t *testing.T) {
	big := bytes.Repeat([]byte{1}, HeaderBytes*2)
	if got := HeaderWindow(big); len(got) != HeaderBytes {
		t.Fatalf("window on big input = %d bytes, want %d", len(got), HeaderBytes)
	}
	small := []byte{1, 2, 3}
	if got := HeaderWindow(small); len(got) != 3 {
		t.Fatalf("window on small input = %d bytes, want 3", len(got))
	}
}

func TestIsJPEG(t *testing.T) {
	if !IsJPEG([]byte{0xFF, 0xD8, 0xFF, 0xDB}) {
		t.Fatal("SOI-marked bytes should be JPEG")
	}
	if IsJPEG([]byte("PK\x03\x04")) {
		t.Fatal("zip bytes are not JPEG")
	}
}
