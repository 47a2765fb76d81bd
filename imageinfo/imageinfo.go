// Package imageinfo looks up the pixel dimensions of page images.
//
// Only image headers are decoded. PNG, JPEG, GIF, TIFF, BMP and WebP are
// recognized.
package imageinfo

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sync"

	// Decoders registered for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/spatialtext/errs"
	"github.com/tsawler/spatialtext/spatial"
)

// Info describes an image.
type Info struct {
	Width  int
	Height int
	// Format is the registered decoder name, such as "png" or "tiff".
	Format string
}

// PageInfo returns the page info of an upright, unskewed page of this size.
func (i Info) PageInfo() spatial.PageInfo {
	return spatial.PageInfo{Width: i.Width, Height: i.Height}
}

// Decode reads the image header from r.
func Decode(r io.Reader) (Info, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return Info{}, errs.Wrap(err, errs.ErrUnsupportedFormat, "cannot read image header")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, errs.New(errs.ErrCorruptData, "image has no area",
			"width", cfg.Width, "height", cfg.Height)
	}
	return Info{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// DecodeBytes reads the image header from data.
func DecodeBytes(data []byte) (Info, error) {
	return Decode(bytes.NewReader(data))
}

// ReadFile reads the image header of the file at path.
func ReadFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	info, err := Decode(f)
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return info, nil
}

// Service caches image lookups by path. It is safe for concurrent use.
type Service struct {
	mu    sync.Mutex
	cache map[string]Info
	read  func(string) (Info, error)
}

// NewService creates a service that reads image files.
func NewService() *Service {
	return &Service{cache: make(map[string]Info), read: ReadFile}
}

// Lookup returns the dimensions of the image at path, reading its header
// on first use.
func (s *Service) Lookup(path string) (Info, error) {
	key := filepath.Clean(path)

	s.mu.Lock()
	info, ok := s.cache[key]
	s.mu.Unlock()
	if ok {
		return info, nil
	}

	info, err := s.read(key)
	if err != nil {
		return Info{}, err
	}

	s.mu.Lock()
	s.cache[key] = info
	s.mu.Unlock()
	return info, nil
}

// PageInfo returns the page info of the image at path with the given
// orientation and deskew.
func (s *Service) PageInfo(path string, orientation spatial.Orientation, deskew float64) (spatial.PageInfo, error) {
	info, err := s.Lookup(path)
	if err != nil {
		return spatial.PageInfo{}, err
	}
	pi := info.PageInfo()
	pi.Orientation = orientation
	pi.Deskew = deskew
	return pi, nil
}

// Forget drops the cached entry for path.
func (s *Service) Forget(path string) {
	s.mu.Lock()
	delete(s.cache, filepath.Clean(path))
	s.mu.Unlock()
}
