package spatial

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/spatialtext/errs"
)

// Stored strings start with this magic followed by a little-endian uint32
// format version.
const storeMagic = "USS\x00"

// CurrentVersion is the format version written by Save.
//
//	 1  text and letters
//	 2  source document name
//	 4  mode tag and raster zones
//	 5  character confidence
//	 6  compact 16-bit letter bounds and font flags
//	 7  32-bit letter bounds, page infos
//	 8  page deskew
//	 9  packed letter flags
//	10  OCR engine version
//	11  OCR parameters
//	12  UTF-8 text; hybrid zones stored in OCR image coordinates
const CurrentVersion = 12

// Sanity limits for counts read from a stream.
const (
	maxStoredCount  = 1 << 26
	maxStoredString = 1 << 30
)

// LoadOptions controls how stored strings are upgraded.
type LoadOptions struct {
	// ConvertLegacyHybridZones converts the raster zones of Hybrid strings
	// stored before version 12 from original image coordinates into OCR
	// image coordinates.
	ConvertLegacyHybridZones bool
}

// DefaultLoadOptions returns the options used by Read and ReadFile.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{ConvertLegacyHybridZones: true}
}

// Read decodes a string from r.
func Read(r io.Reader, opts LoadOptions) (*String, error) {
	s := New()
	if err := s.Load(r, opts); err != nil {
		return nil, err
	}
	return s, nil
}

// ReadFile decodes a string from the file at path.
func ReadFile(path string, opts LoadOptions) (*String, error) {
	s := New()
	if err := s.LoadFromFile(path, opts); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveToFile writes the string to path, replacing any existing file.
func (s *String) SaveToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := s.Save(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// LoadFromFile replaces the contents with the string stored at path. The
// source document name defaults to path when the file has none.
func (s *String) LoadFromFile(path string, opts LoadOptions) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	if err := s.Load(bufio.NewReader(f), opts); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	if s.sourceDocName == "" {
		s.sourceDocName = path
	}
	return nil
}

// Save writes the string in the current format version and clears the
// dirty flag.
func (s *String) Save(w io.Writer) error {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	if err := s.validate(); err != nil {
		return err
	}
	e := &encoder{w: w}
	e.raw([]byte(storeMagic))
	e.u32(CurrentVersion)
	e.str(s.sourceDocName)
	e.str(s.ocrEngineVersion)

	keys := make([]string, 0, len(s.ocrParameters))
	for k := range s.ocrParameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	e.u32(uint32(len(keys)))
	for _, k := range keys {
		e.str(k)
		e.str(s.ocrParameters[k])
	}

	e.str(string(s.text))
	e.u8(uint8(s.mode))
	switch s.mode {
	case Spatial:
		e.u32(uint32(len(s.letters)))
		for _, l := range s.letters {
			encodeLetter(e, l)
		}
	case Hybrid:
		e.u32(uint32(len(s.zones)))
		for _, z := range s.zones {
			encodeZone(e, z)
		}
	}
	if s.mode != NonSpatial {
		pages := s.pageInfos.Pages()
		e.u32(uint32(len(pages)))
		for _, p := range pages {
			info, _ := s.pageInfos.Get(p)
			e.i32(p)
			e.i32(info.Width)
			e.i32(info.Height)
			e.u8(uint8(info.Orientation))
			e.f64(info.Deskew)
		}
	}
	if e.err != nil {
		return fmt.Errorf("failed to save spatial string: %w", e.err)
	}
	s.dirty = false
	return nil
}

// Load replaces the contents with a string decoded from r. Every format
// version up to CurrentVersion is accepted.
func (s *String) Load(r io.Reader, opts LoadOptions) error {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	d := &decoder{r: r}
	var magic [4]byte
	d.raw(magic[:])
	if d.err == nil && string(magic[:]) != storeMagic {
		return errs.New(errs.ErrCorruptData, "not a stored spatial string", "magic", fmt.Sprintf("%q", magic[:]))
	}
	version := int(d.u32())
	if d.err != nil {
		return d.fail("header")
	}
	if version < 1 || version > CurrentVersion {
		return errs.New(errs.ErrUnsupportedVersion, "stored spatial string version is not supported",
			"version", version, "max_version", CurrentVersion)
	}

	loaded, err := decodeString(d, version)
	if err != nil {
		return err
	}
	if version < 12 && loaded.mode == Hybrid && opts.ConvertLegacyHybridZones {
		if err := loaded.convertLegacyZones(); err != nil {
			return err
		}
	}
	if err := loaded.validate(); err != nil {
		return errs.Wrap(err, errs.ErrCorruptData, "stored spatial string is inconsistent", "version", version)
	}

	s.text = loaded.text
	s.mode = loaded.mode
	s.letters = loaded.letters
	s.zones = loaded.zones
	s.pageInfos = loaded.pageInfos
	s.sourceDocName = loaded.sourceDocName
	s.ocrEngineVersion = loaded.ocrEngineVersion
	s.ocrParameters = loaded.ocrParameters
	s.dirty = false
	return nil
}

// convertLegacyZones moves zones stored in original image coordinates into
// OCR image coordinates.
func (s *String) convertLegacyZones() error {
	for i, z := range s.zones {
		info, ok := s.pageInfos.Get(z.Page)
		if !ok {
			return errs.New(errs.ErrMissingPageInfo, "zone references a page without page info", "page", z.Page)
		}
		converted, err := ZoneToOCRImage(z, info)
		if err != nil {
			return err
		}
		s.zones[i] = converted
	}
	logger().WithFields(logrus.Fields{
		"zones":  len(s.zones),
		"source": s.sourceDocName,
	}).Debug("converted legacy hybrid zones to OCR image coordinates")
	return nil
}

func encodeLetter(e *encoder, l Letter) {
	e.u16(l.Guess1)
	e.u16(l.Guess2)
	e.u16(l.Guess3)
	e.u32(l.Top)
	e.u32(l.Left)
	e.u32(l.Right)
	e.u32(l.Bottom)
	e.u16(l.PageNumber)
	e.u8(packLetterFlags(l))
	e.u8(l.FontSize)
	e.u8(l.CharConfidence)
	e.u8(uint8(l.FontFlags))
}

func encodeZone(e *encoder, z RasterZone) {
	e.i32(z.StartX)
	e.i32(z.StartY)
	e.i32(z.EndX)
	e.i32(z.EndY)
	e.i32(z.Height)
	e.i32(z.Page)
}

func decodeZone(d *decoder) RasterZone {
	return RasterZone{
		StartX: d.i32(),
		StartY: d.i32(),
		EndX:   d.i32(),
		EndY:   d.i32(),
		Height: d.i32(),
		Page:   d.i32(),
	}
}

const (
	packedEndOfParagraph = 1 << iota
	packedEndOfZone
	packedSpatial
)

func packLetterFlags(l Letter) uint8 {
	var b uint8
	if l.IsEndOfParagraph {
		b |= packedEndOfParagraph
	}
	if l.IsEndOfZone {
		b |= packedEndOfZone
	}
	if l.IsSpatial {
		b |= packedSpatial
	}
	return b
}

func unpackLetterFlags(l *Letter, b uint8) {
	l.IsEndOfParagraph = b&packedEndOfParagraph != 0
	l.IsEndOfZone = b&packedEndOfZone != 0
	l.IsSpatial = b&packedSpatial != 0
}

// encoder writes little-endian values, remembering the first error.
type encoder struct {
	w   io.Writer
	err error
	buf [8]byte
}

func (e *encoder) raw(b []byte) {
	if e.err == nil {
		_, e.err = e.w.Write(b)
	}
}

func (e *encoder) u8(v uint8) {
	e.buf[0] = v
	e.raw(e.buf[:1])
}

func (e *encoder) u16(v uint16) {
	binary.LittleEndian.PutUint16(e.buf[:2], v)
	e.raw(e.buf[:2])
}

func (e *encoder) u32(v uint32) {
	binary.LittleEndian.PutUint32(e.buf[:4], v)
	e.raw(e.buf[:4])
}

func (e *encoder) i32(v int) {
	e.u32(uint32(int32(v)))
}

func (e *encoder) f64(v float64) {
	binary.LittleEndian.PutUint64(e.buf[:8], math.Float64bits(v))
	e.raw(e.buf[:8])
}

func (e *encoder) str(v string) {
	e.u32(uint32(len(v)))
	e.raw([]byte(v))
}

// decoder reads little-endian values, remembering the first error. After
// an error every read returns zero.
type decoder struct {
	r   io.Reader
	err error
	buf [8]byte
}

func (d *decoder) raw(b []byte) {
	if d.err == nil {
		_, d.err = io.ReadFull(d.r, b)
	}
}

func (d *decoder) u8() uint8 {
	d.raw(d.buf[:1])
	if d.err != nil {
		return 0
	}
	return d.buf[0]
}

func (d *decoder) u16() uint16 {
	d.raw(d.buf[:2])
	if d.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint16(d.buf[:2])
}

func (d *decoder) u32() uint32 {
	d.raw(d.buf[:4])
	if d.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(d.buf[:4])
}

func (d *decoder) i32() int {
	return int(int32(d.u32()))
}

func (d *decoder) f64() float64 {
	d.raw(d.buf[:8])
	if d.err != nil {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(d.buf[:8]))
}

func (d *decoder) bytes() []byte {
	n := d.u32()
	if d.err != nil {
		return nil
	}
	if n > maxStoredString {
		d.err = fmt.Errorf("string length %d exceeds limit", n)
		return nil
	}
	b := make([]byte, n)
	d.raw(b)
	return b
}

func (d *decoder) count() int {
	n := d.u32()
	if d.err == nil && n > maxStoredCount {
		d.err = fmt.Errorf("element count %d exceeds limit", n)
		return 0
	}
	return int(n)
}

func (d *decoder) fail(section string) error {
	return errs.Wrap(d.err, errs.ErrCorruptData, "truncated or invalid spatial string data", "section", section)
}
