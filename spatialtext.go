// Package spatialtext provides a fluent API for loading OCR output into
// spatial strings and querying it.
//
// Basic usage:
//
//	text, warnings, err := spatialtext.Open("scan.uss").Text()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", spatialtext.FormatWarnings(warnings))
//	}
//
// With options:
//
//	found, err := spatialtext.Open("scan.zip").
//	    Pages(2).
//	    Resolution(searcher.Word).
//	    Search(model.Rect{Left: 100, Top: 200, Right: 600, Bottom: 260}, 2)
//
// Stored strings, page archives, Cloud Vision and Document AI JSON, hOCR,
// plain text and, with the ocr build tag, page images are accepted. The
// lower-level spatial and searcher packages are also available.
package spatialtext

import (
	"github.com/sirupsen/logrus"
	"github.com/tsawler/spatialtext/internal/logging"
	"github.com/tsawler/spatialtext/spatial"
)

// Open returns a Loader for the file at filename. The format is detected
// from the content, falling back to the extension. Nothing is read until a
// terminal operation such as Text() is called.
//
// Example:
//
//	text, warnings, err := spatialtext.Open("scan.uss").Text()
func Open(filename string) *Loader {
	return &Loader{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromString returns a Loader over an existing string. Terminal operations
// work on a copy, so s is never modified.
//
// Example:
//
//	lines, err := spatialtext.FromString(s).Lines()
func FromString(s *spatial.String) *Loader {
	return &Loader{
		source:  s,
		options: defaultOptions(),
	}
}

// SetLogger replaces the logger used by every package of this module. A nil
// logger restores the default.
func SetLogger(l *logrus.Logger) {
	logging.SetLogger(l)
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := spatialtext.Must(spatialtext.Open("scan.uss").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText is a helper that wraps a call to Text() or Load() and panics
// if the error is non-nil. It discards warnings and returns just the value.
//
// Example:
//
//	text := spatialtext.MustText(spatialtext.Open("scan.uss").Text())
func MustText[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
