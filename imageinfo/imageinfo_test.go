package imageinfo

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/tsawler/spatialtext/errs"
	"github.com/tsawler/spatialtext/spatial"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func testImage(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.White)
	return img
}

func encoded(t *testing.T, encode func(*bytes.Buffer, image.Image) error, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := encode(&buf, testImage(w, h)); err != nil {
		t.Fatalf("encode error = %v", err)
	}
	return buf.Bytes()
}

// ============================================================================
// Decode Tests
// ============================================================================

func TestDecodeFormats(t *testing.T) {
	tests := []struct {
		name   string
		encode func(*bytes.Buffer, image.Image) error
		format string
	}{
		{"png", func(b *bytes.Buffer, m image.Image) error { return png.Encode(b, m) }, "png"},
		{"tiff", func(b *bytes.Buffer, m image.Image) error { return tiff.Encode(b, m, nil) }, "tiff"},
		{"bmp", func(b *bytes.Buffer, m image.Image) error { return bmp.Encode(b, m) }, "bmp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := DecodeBytes(encoded(t, tt.encode, 34, 21))
			if err != nil {
				t.Fatal(err)
			}
			if info.Width != 34 || info.Height != 21 || info.Format != tt.format {
				t.Errorf("Decode() = %+v", info)
			}
			if pi := info.PageInfo(); pi != (spatial.PageInfo{Width: 34, Height: 21}) {
				t.Errorf("PageInfo() = %v", pi)
			}
		})
	}
}

func TestDecodeUnknown(t *testing.T) {
	_, err := DecodeBytes([]byte("definitely not an image"))
	if !errors.Is(err, errs.ErrUnsupportedFormat) {
		t.Errorf("Decode() error = %v", err)
	}
}

// ============================================================================
// Service Tests
// ============================================================================

func TestServiceCachesLookups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.png")
	data := encoded(t, func(b *bytes.Buffer, m image.Image) error { return png.Encode(b, m) }, 8, 6)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewService()
	var reads atomic.Int32
	svc.read = func(p string) (Info, error) {
		reads.Add(1)
		return ReadFile(p)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Lookup(path); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	// Concurrent first lookups may each read; later ones hit the cache.
	before := reads.Load()
	pi, err := svc.PageInfo(path, spatial.OrientDown, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	if reads.Load() != before {
		t.Error("cached lookup read the file again")
	}
	if pi.Width != 8 || pi.Height != 6 || pi.Orientation != spatial.OrientDown || pi.Deskew != 1.5 {
		t.Errorf("PageInfo() = %v", pi)
	}

	svc.Forget(path)
	if _, err := svc.Lookup(path); err != nil || reads.Load() != before+1 {
		t.Errorf("Lookup after Forget: err=%v reads=%d", err, reads.Load())
	}

	if _, err := svc.Lookup(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
