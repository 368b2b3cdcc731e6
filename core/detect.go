package core

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FormatID enumerates every recognised image format.
type FormatID string

const (
	FmtJPEG FormatID = "jpeg"
	FmtPNG  FormatID = "png"
	FmtGIF  FormatID = "gif"
	FmtWebP FormatID = "webp"
	FmtTIFF FormatID = "tiff"
	FmtBMP  FormatID = "bmp"
	FmtHEIC FormatID = "heic"

	FmtUnknown FormatID = "unknown"
)

// HeaderBytes is how much of a file the metadata reader looks at. JPEG
// keeps EXIF in the first APP1 segment right after the SOI marker, so
// this window always covers it while keeping large originals cheap to
// read.
const HeaderBytes = 64 * 1024

// HeaderWindow bounds data to its leading HeaderBytes.
func HeaderWindow(data []byte) []byte {
	if len(data) > HeaderBytes {
		return data[:HeaderBytes]
	}
	return data
}

// extMap maps lowercase extensions to format IDs.
var extMap = map[string]FormatID{
	".jpg":  FmtJPEG,
	".jpeg": FmtJPEG,
	".png":  FmtPNG,
	".gif":  FmtGIF,
	".webp": FmtWebP,
	".tiff": FmtTIFF,
	".tif":  FmtTIFF,
	".bmp":  FmtBMP,
	".heic": FmtHEIC,
	".heif": FmtHEIC,
}

// DetectFormat returns the FormatID for the given file, first by reading
// magic bytes and falling back to extension.
func DetectFormat(path string) (FormatID, error) {
	f, err := os.Open(path)
	if err != nil {
		return FmtUnknown, err
	}
	defer f.Close()

	buf := make([]byte, 16)
	n, err := io.ReadFull(f, buf)
	if err != nil && n == 0 {
		return FmtUnknown, err
	}
	buf = buf[:n]

	if id := SniffFormat(buf); id != FmtUnknown {
		return id, nil
	}

	// Fallback to extension
	if id, ok := ExtFormat(path); ok {
		return id, nil
	}
	return FmtUnknown, nil
}

// ExtFormat maps a file name's extension to a format. Listing code uses
// it as a cheap first filter before any bytes are read.
func ExtFormat(name string) (FormatID, bool) {
	id, ok := extMap[strings.ToLower(filepath.Ext(name))]
	return id, ok
}

// SniffFormat identifies a format from leading magic bytes. Callers that
// already hold a file's header use this instead of DetectFormat to avoid
// a second read.
func SniffFormat(b []byte) FormatID {
	if len(b) < 4 {
		return FmtUnknown
	}
	switch {
	// JPEG: FF D8 FF
	case b[0] == 0xFF && b[1] == 0xD8 && b[2] == 0xFF:
		return FmtJPEG
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	case bytes.HasPrefix(b, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}):
		return FmtPNG
	// GIF: GIF87a or GIF89a
	case bytes.HasPrefix(b, []byte("GIF87a")) || bytes.HasPrefix(b, []byte("GIF89a")):
		return FmtGIF
	// WebP: RIFF????WEBP
	case len(b) >= 12 && bytes.Equal(b[0:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WEBP")):
		return FmtWebP
	// TIFF: 49 49 2A 00 (little-endian) or 4D 4D 00 2A (big-endian)
	case bytes.HasPrefix(b, []byte{0x49, 0x49, 0x2A, 0x00}) ||
		bytes.HasPrefix(b, []byte{0x4D, 0x4D, 0x00, 0x2A}):
		return FmtTIFF
	// BMP: 42 4D
	case b[0] == 0x42 && b[1] == 0x4D:
		return FmtBMP
	// HEIC/HEIF: ftyp box at offset 4 with a heif-family brand
	case len(b) >= 8 && bytes.Equal(b[4:8], []byte("ftyp")):
		return detectFtypBrand(b)
	}
	return FmtUnknown
}

func detectFtypBrand(b []byte) FormatID {
	if len(b) < 12 {
		return FmtUnknown
	}
	switch string(b[8:12]) {
	case "heic", "heix", "hevc", "heim", "heis", "mif1", "msf1":
		return FmtHEIC
	default:
		return FmtUnknown
	}
}

// IsJPEG reports whether data starts with a JPEG SOI marker. The stamp
// path refuses to rewrite anything else.
func IsJPEG(data []byte) bool {
	return SniffFormat(data) == FmtJPEG
}
