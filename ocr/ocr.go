//go:build ocr

// Package ocr recognizes page images with the Tesseract OCR engine and
// returns the result as Spatial strings.
//
// This package wraps Tesseract via gosseract. It requires Tesseract to be
// installed on the system and the "ocr" build tag. On macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/tsawler/spatialtext/imageinfo"
	"github.com/tsawler/spatialtext/model"
	"github.com/tsawler/spatialtext/spatial"
)

// Client wraps Tesseract for OCR operations.
type Client struct {
	client *gosseract.Client
	lang   string
}

// New creates a new OCR client.
// The client should be closed when no longer needed to release resources.
func New() (*Client, error) {
	client := gosseract.NewClient()
	return &Client{client: client, lang: "eng"}, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Version returns the engine name and version recorded on results.
func (c *Client) Version() string {
	return "tesseract " + gosseract.Version()
}

// RecognizeImage performs OCR on image data (PNG, TIFF, JPEG, etc.).
// Returns the recognized text with leading/trailing whitespace trimmed.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// Recognize performs OCR on image data and returns a Spatial string with a
// box for every recognized character.
func (c *Client) Recognize(imageData []byte, opts Options) (*spatial.String, error) {
	if opts.PageInfo.Width <= 0 || opts.PageInfo.Height <= 0 {
		info, err := imageinfo.DecodeBytes(imageData)
		if err != nil {
			return nil, err
		}
		opts.PageInfo.Width, opts.PageInfo.Height = info.Width, info.Height
	}
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	words, err := c.client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}
	symbols, err := c.client.GetBoundingBoxes(gosseract.RIL_SYMBOL)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	layoutWords := make([]Word, len(words))
	for i, w := range words {
		layoutWords[i] = Word{
			Box:   box(w),
			Block: w.BlockNum,
			Par:   w.ParNum,
			Line:  w.LineNum,
			Word:  w.WordNum,
		}
	}
	boxes := make([]Box, len(symbols))
	for i, s := range symbols {
		boxes[i] = box(s)
	}

	s, err := FromSymbols(Layout(layoutWords, boxes), opts)
	if err != nil {
		return nil, err
	}
	s.SetOCREngineVersion(c.Version())
	s.SetOCRParameters(map[string]string{"lang": c.lang})
	s.SetDirty(false)
	return s, nil
}

// RecognizeFile reads and recognizes the image at path. The path is used as
// the source document name unless opts names one.
func (c *Client) RecognizeFile(path string, opts Options) (*spatial.String, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if opts.SourceDocName == "" {
		opts.SourceDocName = path
	}
	return c.Recognize(data, opts)
}

// SetLanguage sets the language(s) for OCR recognition.
// Multiple languages can be specified as a "+" separated string (e.g., "eng+fra").
// Default is "eng" (English).
func (c *Client) SetLanguage(lang string) error {
	if err := c.client.SetLanguage(lang); err != nil {
		return err
	}
	c.lang = lang
	return nil
}

// SetPageSegMode sets the page segmentation mode.
// This affects how Tesseract analyzes the page layout.
func (c *Client) SetPageSegMode(mode PageSegMode) error {
	return c.client.SetPageSegMode(gosseract.PageSegMode(mode))
}

func box(b gosseract.BoundingBox) Box {
	return Box{Text: b.Word, Rect: rect(b.Box), Confidence: b.Confidence}
}

func rect(r image.Rectangle) model.Rect {
	return model.Rect{Left: r.Min.X, Top: r.Min.Y, Right: r.Max.X, Bottom: r.Max.Y}
}
