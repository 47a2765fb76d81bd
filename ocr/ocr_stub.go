//go:build !ocr

// Package ocr recognizes page images with the Tesseract OCR engine and
// returns the result as Spatial strings.
//
// This build has no engine: every recognition call fails with
// ErrOCRNotEnabled, while Layout and FromSymbols keep working on boxes
// produced elsewhere. Build with the ocr tag to link Tesseract:
//
//	go build -tags ocr ./...
//
// which needs the Tesseract and Leptonica development packages
// (tesseract-ocr and libtesseract-dev on Debian, tesseract on Homebrew).
package ocr

import (
	"github.com/tsawler/spatialtext/errs"
	"github.com/tsawler/spatialtext/spatial"
)

// ErrOCRNotEnabled is returned by every Client method of a build without
// the ocr tag. It matches errs.ErrUnsupportedFormat.
var ErrOCRNotEnabled = errs.New(errs.ErrUnsupportedFormat, "OCR support not enabled; rebuild with -tags ocr")

// Client stands in for the Tesseract client.
type Client struct{}

func New() (*Client, error) { return nil, ErrOCRNotEnabled }

// Close does nothing, even on a nil client.
func (c *Client) Close() error { return nil }

func (c *Client) Version() string { return "" }

func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	return "", ErrOCRNotEnabled
}

func (c *Client) Recognize(imageData []byte, opts Options) (*spatial.String, error) {
	return nil, ErrOCRNotEnabled
}

func (c *Client) RecognizeFile(path string, opts Options) (*spatial.String, error) {
	return nil, ErrOCRNotEnabled
}

func (c *Client) SetLanguage(lang string) error { return ErrOCRNotEnabled }

func (c *Client) SetPageSegMode(mode PageSegMode) error { return ErrOCRNotEnabled }
