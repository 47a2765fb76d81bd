// Package format provides input format detection for the spatial text
// tools.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tsawler/spatialtext/archive"
)

// Format represents a supported input format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// USS indicates a stored spatial string.
	USS
	// Archive indicates a zip archive of per-page entries.
	Archive
	// VisionJSON indicates a Cloud Vision text annotation.
	VisionJSON
	// DocumentAI indicates a Document AI document in JSON form.
	DocumentAI
	// HOCR indicates an hOCR document.
	HOCR
	// Text indicates plain text.
	Text
	// TIFF indicates a TIFF image.
	TIFF
	// PNG indicates a PNG image.
	PNG
	// JPEG indicates a JPEG image.
	JPEG
	// BMP indicates a BMP image.
	BMP
	// GIF indicates a GIF image.
	GIF
	// WebP indicates a WebP image.
	WebP
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case USS:
		return "USS"
	case Archive:
		return "Archive"
	case VisionJSON:
		return "VisionJSON"
	case DocumentAI:
		return "DocumentAI"
	case HOCR:
		return "hOCR"
	case Text:
		return "Text"
	case TIFF:
		return "TIFF"
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	case BMP:
		return "BMP"
	case GIF:
		return "GIF"
	case WebP:
		return "WebP"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case USS:
		return ".uss"
	case Archive:
		return ".zip"
	case VisionJSON, DocumentAI:
		return ".json"
	case HOCR:
		return ".hocr"
	case Text:
		return ".txt"
	case TIFF:
		return ".tif"
	case PNG:
		return ".png"
	case JPEG:
		return ".jpg"
	case BMP:
		return ".bmp"
	case GIF:
		return ".gif"
	case WebP:
		return ".webp"
	default:
		return ""
	}
}

// IsImage reports whether the format is a page image that needs OCR.
func (f Format) IsImage() bool {
	switch f {
	case TIFF, PNG, JPEG, BMP, GIF, WebP:
		return true
	}
	return false
}

// Detect determines file format from filename extension. JSON files are
// assumed to be Vision annotations; use DetectFromReader to tell Document
// AI documents apart.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".uss":
		return USS
	case ".zip", ".ussz":
		return Archive
	case ".json":
		return VisionJSON
	case ".hocr", ".html", ".htm":
		return HOCR
	case ".txt":
		return Text
	case ".tif", ".tiff":
		return TIFF
	case ".png":
		return PNG
	case ".jpg", ".jpeg":
		return JPEG
	case ".bmp":
		return BMP
	case ".gif":
		return GIF
	case ".webp":
		return WebP
	default:
		return Unknown
	}
}

// DetectFromMagic checks leading bytes to determine format.
// This provides more reliable detection than extension-based detection.
// Returns Unknown if the format cannot be determined from magic bytes alone.
func DetectFromMagic(data []byte) Format {
	if len(data) < 4 {
		return Unknown
	}

	switch {
	case bytes.HasPrefix(data, []byte("USS\x00")):
		return USS
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return TIFF
	case bytes.HasPrefix(data, []byte("\x89PNG")):
		return PNG
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return JPEG
	case bytes.HasPrefix(data, []byte("GIF8")):
		return GIF
	case bytes.HasPrefix(data, []byte("BM")) && len(data) >= 14:
		return BMP
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && string(data[8:12]) == "WEBP":
		return WebP
	}

	// ZIP magic: PK\x03\x04
	if data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04 {
		// Archive entries need further inspection; use DetectFromReader.
		return Unknown
	}

	if detectHOCRMagic(data) {
		return HOCR
	}
	return detectJSONMagic(data)
}

// detectHOCRMagic checks if the data looks like an hOCR document.
func detectHOCRMagic(data []byte) bool {
	data = bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(data) == 0 || data[0] != '<' {
		return false
	}
	lower := bytes.ToLower(data)
	return bytes.Contains(lower, []byte("ocr_page")) || bytes.Contains(lower, []byte("ocr-system"))
}

// detectJSONMagic tells Vision annotations from Document AI documents by
// the keys near the start of the document.
func detectJSONMagic(data []byte) Format {
	data = bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(data) == 0 || data[0] != '{' {
		return Unknown
	}
	switch {
	case bytes.Contains(data, []byte(`"textAnchor"`)), bytes.Contains(data, []byte(`"mimeType"`)),
		bytes.Contains(data, []byte(`"tokens"`)):
		return DocumentAI
	case bytes.Contains(data, []byte(`"responses"`)), bytes.Contains(data, []byte(`"fullTextAnnotation"`)),
		bytes.Contains(data, []byte(`"symbols"`)), bytes.Contains(data, []byte(`"blocks"`)):
		return VisionJSON
	}
	return Unknown
}

// DetectFromReader inspects the content to determine format.
// This is more reliable than extension-based detection and can tell a page
// archive from other zip files.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 4096)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	// Check for ZIP-based format
	if len(magic) >= 4 && magic[0] == 0x50 && magic[1] == 0x4B && magic[2] == 0x03 && magic[3] == 0x04 {
		return detectZIPFormat(r, size)
	}

	return DetectFromMagic(magic), nil
}

// detectZIPFormat reports Archive if any entry is a page or metadata entry.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	for _, f := range zr.File {
		if path.Base(f.Name) == archive.MetaEntry {
			return Archive, nil
		}
		if _, ok := archive.ParseEntryName(f.Name); ok {
			return Archive, nil
		}
	}

	return Unknown, nil
}

// DetectFile sniffs the file at path and falls back to its extension when
// the content is not recognized.
func DetectFile(filename string) (Format, error) {
	f, err := os.Open(filename)
	if err != nil {
		return Unknown, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Unknown, err
	}
	format, err := DetectFromReader(f, info.Size())
	if err != nil {
		return Unknown, err
	}
	if format == Unknown {
		format = Detect(filename)
	}
	return format, nil
}
