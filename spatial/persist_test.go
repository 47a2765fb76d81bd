package spatial

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/tsawler/spatialtext/errs"
	"github.com/tsawler/spatialtext/model"
)

func roundTrip(t *testing.T, s *String) *String {
	t.Helper()
	var buf bytes.Buffer
	if err := s.Save(&buf); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Read(&buf, DefaultLoadOptions())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	return loaded
}

// ============================================================================
// Current Version Tests
// ============================================================================

func TestSaveLoadSpatial(t *testing.T) {
	letters := layoutLetters("Né x", 1)
	letters[1].IsEndOfParagraph = true
	letters[0].FontFlags = FontBold.With(FontItalic, true)
	letters[0].FontSize = 11
	letters[0].CharConfidence = 87
	letters[3].Guess2 = 'y'
	info := PageInfo{Width: 1000, Height: 1400, Orientation: OrientRight, Deskew: -1.25}
	s, err := NewFromLetters(letters, "scan.tif", SinglePageInfo(1, info))
	if err != nil {
		t.Fatal(err)
	}
	s.SetOCREngineVersion("5.3.0")
	s.SetOCRParameters(map[string]string{"psm": "6", "lang": "eng"})

	loaded := roundTrip(t, s)
	if !loaded.Equal(s) {
		t.Errorf("round trip changed the string: %q", loaded.Text())
	}
	if s.IsDirty() {
		t.Error("Save() should clear the dirty flag")
	}
	if loaded.IsDirty() {
		t.Error("a loaded string should not be dirty")
	}
	if loaded.SourceDocName() != "scan.tif" || loaded.OCREngineVersion() != "5.3.0" {
		t.Errorf("metadata = %q %q", loaded.SourceDocName(), loaded.OCREngineVersion())
	}
	if p := loaded.OCRParameters(); len(p) != 2 || p["lang"] != "eng" {
		t.Errorf("OCRParameters() = %v", p)
	}
	if l, _ := loaded.LetterAt(1); l.Char() != 'é' || !l.IsEndOfParagraph {
		t.Errorf("letter 1 = %+v", l)
	}
	if l, _ := loaded.LetterAt(2); l.IsSpatial {
		t.Error("space became spatial")
	}
}

func TestSaveLoadHybridAndPlain(t *testing.T) {
	h := mustHybrid(t, "zoned text", NewRasterZone(10, 50, 400, 60, 21, 1))
	if loaded := roundTrip(t, h); !loaded.Equal(h) {
		t.Error("hybrid round trip changed the string")
	}

	p := NewNonSpatial("plain ünïcode", "doc")
	loaded := roundTrip(t, p)
	if !loaded.Equal(p) || loaded.SourceDocName() != "doc" {
		t.Errorf("plain round trip = %q", loaded.Text())
	}
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.uss")
	s := mustSpatial(t, "AB", 1)
	s.SetSourceDocName("")
	if err := s.SaveToFile(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := ReadFile(path, DefaultLoadOptions())
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Text() != "AB" || loaded.SourceDocName() != path {
		t.Errorf("ReadFile() = %q from %q", loaded.Text(), loaded.SourceDocName())
	}

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.uss"), DefaultLoadOptions())
	if err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoadRejectsBadData(t *testing.T) {
	var future bytes.Buffer
	e := &encoder{w: &future}
	e.raw([]byte(storeMagic))
	e.u32(CurrentVersion + 1)
	_, err := Read(&future, DefaultLoadOptions())
	assertErrorIs(t, err, errs.ErrUnsupportedVersion)

	_, err = Read(bytes.NewReader([]byte("XYZ\x00\x0c\x00\x00\x00")), DefaultLoadOptions())
	assertErrorIs(t, err, errs.ErrCorruptData)

	var buf bytes.Buffer
	if err := mustSpatial(t, "ABC", 1).Save(&buf); err != nil {
		t.Fatal(err)
	}
	truncated := buf.Bytes()[:buf.Len()-5]
	_, err = Read(bytes.NewReader(truncated), DefaultLoadOptions())
	assertErrorIs(t, err, errs.ErrCorruptData)
}

func TestLoadKeepsStringOnFailure(t *testing.T) {
	s := NewNonSpatial("keep", "")
	if err := s.Load(bytes.NewReader([]byte("junk")), DefaultLoadOptions()); err == nil {
		t.Fatal("expected an error")
	}
	if s.Text() != "keep" {
		t.Errorf("failed Load() replaced the text with %q", s.Text())
	}
}

// ============================================================================
// Legacy Version Tests
// ============================================================================

func legacyHeader(e *encoder, version int, doc string) {
	e.raw([]byte(storeMagic))
	e.u32(uint32(version))
	if version >= 2 {
		e.str(doc)
	}
}

func TestLoadVersion5(t *testing.T) {
	var buf bytes.Buffer
	e := &encoder{w: &buf}
	legacyHeader(e, 5, "old.tif")
	e.str("\x80t") // Windows-1252 euro sign
	e.u8(uint8(Spatial))
	e.u32(2)
	for i, g := range []uint16{0x80, 't'} {
		e.u16(g)
		e.u16(0)
		e.u16(0)
		e.u32(0)
		e.u32(uint32(i * 10))
		e.u32(uint32((i + 1) * 10))
		e.u32(10)
		e.u16(1)
		e.u8(0)
		e.u8(0)
		e.u8(1)
		e.u8(12)
		e.u8(uint8(70 + i))
	}

	s, err := Read(&buf, DefaultLoadOptions())
	if err != nil {
		t.Fatal(err)
	}
	if s.Text() != "€t" || s.Mode() != Spatial {
		t.Fatalf("got %v %q", s.Mode(), s.Text())
	}
	l, _ := s.LetterAt(0)
	if l.Char() != '€' || l.CharConfidence != 70 || l.FontSize != 12 {
		t.Errorf("letter 0 = %+v", l)
	}
	info, ok := s.PageInfo(1)
	if !ok || info.Width != 20 || info.Height != 10 {
		t.Errorf("synthesized page info = %v, %v", info, ok)
	}
	assertValid(t, s)
}

func TestLoadVersion9PackedFlags(t *testing.T) {
	var buf bytes.Buffer
	e := &encoder{w: &buf}
	legacyHeader(e, 9, "v9.tif")
	e.str("A")
	e.u8(uint8(Spatial))
	e.u32(1)
	l := NewSpatialLetter('A', model.Rect{Left: 1, Top: 2, Right: 11, Bottom: 12}, 3)
	l.IsEndOfZone = true
	encodeLetter(e, l)
	e.u32(1)
	e.i32(3)
	e.i32(100)
	e.i32(200)
	e.u8(uint8(OrientNone))
	e.f64(0.5)

	s, err := Read(&buf, DefaultLoadOptions())
	if err != nil {
		t.Fatal(err)
	}
	got, _ := s.LetterAt(0)
	if got != l {
		t.Errorf("letter = %+v, want %+v", got, l)
	}
	if info, _ := s.PageInfo(3); info.Deskew != 0.5 || info.Width != 100 {
		t.Errorf("page info = %v", info)
	}
}

func legacyHybrid(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	e := &encoder{w: &buf}
	legacyHeader(e, 11, "hybrid.tif")
	e.str("tess 4")
	e.u32(1)
	e.str("psm")
	e.str("3")
	e.str("sideways")
	e.u8(uint8(Hybrid))
	e.u32(1)
	encodeZone(e, RasterZone{StartX: 500, StartY: 1700, EndX: 500, EndY: 1900, Height: 9, Page: 1})
	e.u32(1)
	e.i32(1)
	e.i32(1000)
	e.i32(2000)
	e.u8(uint8(OrientLeft))
	e.f64(0)
	return buf.Bytes()
}

func TestLoadLegacyHybridZones(t *testing.T) {
	tests := []struct {
		name    string
		convert bool
		want    RasterZone
	}{
		{"converted", true, RasterZone{StartX: 100, StartY: 500, EndX: 300, EndY: 500, Height: 9, Page: 1}},
		{"kept", false, RasterZone{StartX: 500, StartY: 1700, EndX: 500, EndY: 1900, Height: 9, Page: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Read(bytes.NewReader(legacyHybrid(t)), LoadOptions{ConvertLegacyHybridZones: tt.convert})
			if err != nil {
				t.Fatal(err)
			}
			zones, _ := s.RasterZones()
			if len(zones) != 1 || zones[0] != tt.want {
				t.Errorf("zones = %v, want %v", zones, tt.want)
			}
			if s.OCREngineVersion() != "tess 4" || s.OCRParameters()["psm"] != "3" {
				t.Errorf("metadata = %q %v", s.OCREngineVersion(), s.OCRParameters())
			}
		})
	}
}
