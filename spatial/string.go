package spatial

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/spatialtext/errs"
	"github.com/tsawler/spatialtext/internal/logging"
)

// Mode is the kind of geometry a String carries.
type Mode int

const (
	// NonSpatial strings are plain text.
	NonSpatial Mode = iota
	// Spatial strings carry one Letter per character.
	Spatial
	// Hybrid strings carry text plus raster zones for the whole string.
	Hybrid
)

func (m Mode) String() string {
	switch m {
	case NonSpatial:
		return "non-spatial"
	case Spatial:
		return "spatial"
	case Hybrid:
		return "hybrid"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// String is a sequence of characters with optional geometry: per-character
// letters in Spatial mode, raster zones in Hybrid mode, nothing in
// NonSpatial mode.
//
// A String is not safe for concurrent use, except that Save and Load on the
// same instance serialize with each other.
type String struct {
	text    []rune
	mode    Mode
	letters []Letter
	zones   []RasterZone

	pageInfos PageInfoMap

	sourceDocName    string
	ocrEngineVersion string
	ocrParameters    map[string]string

	dirty bool

	ioMu sync.Mutex
}

// Range is a half-open interval of character indices.
type Range struct {
	Start int
	End   int
}

// Len returns the length of the range.
func (r Range) Len() int {
	return r.End - r.Start
}

func logger() *logrus.Entry {
	return logging.Component("spatial")
}

// New returns an empty NonSpatial string.
func New() *String {
	return &String{}
}

// String returns the text.
func (s *String) String() string {
	return string(s.text)
}

// Text returns the text. It is the same as String.
func (s *String) Text() string {
	return string(s.text)
}

// Runes returns a copy of the text as runes.
func (s *String) Runes() []rune {
	return append([]rune(nil), s.text...)
}

// Len returns the number of characters.
func (s *String) Len() int {
	return len(s.text)
}

// IsEmpty reports whether the string has no characters.
func (s *String) IsEmpty() bool {
	return len(s.text) == 0
}

// Mode returns the current mode.
func (s *String) Mode() Mode {
	return s.mode
}

// HasSpatialInfo reports whether the string carries any geometry.
func (s *String) HasSpatialInfo() bool {
	return s.mode != NonSpatial
}

// Letters returns the letter array of a Spatial string. The slice is the
// string's own storage and must not be modified; use SetLetter instead.
func (s *String) Letters() ([]Letter, error) {
	if s.mode != Spatial {
		return nil, s.wrongMode("Letters", Spatial)
	}
	return s.letters, nil
}

// LetterAt returns the letter at index i of a Spatial string.
func (s *String) LetterAt(i int) (Letter, error) {
	if s.mode != Spatial {
		return Letter{}, s.wrongMode("LetterAt", Spatial)
	}
	if err := s.checkIndex(i); err != nil {
		return Letter{}, err
	}
	return s.letters[i], nil
}

// SetLetter replaces the letter at index i. The letter's character also
// replaces the text at i.
func (s *String) SetLetter(i int, l Letter) error {
	if s.mode != Spatial {
		return s.wrongMode("SetLetter", Spatial)
	}
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if _, ok := s.pageInfos.Get(l.Page()); l.IsSpatial && !ok {
		return errs.New(errs.ErrMissingPageInfo, "letter references a page without page info",
			"index", i, "page", l.Page())
	}
	s.letters[i] = l
	s.text[i] = l.Char()
	s.dirty = true
	return s.validate()
}

// RasterZones returns a copy of the zones stored by a Hybrid string.
func (s *String) RasterZones() ([]RasterZone, error) {
	if s.mode != Hybrid {
		return nil, s.wrongMode("RasterZones", Hybrid)
	}
	return append([]RasterZone(nil), s.zones...), nil
}

// PageInfos returns the page info map. It is shared, never modified in
// place, and is nil for NonSpatial strings.
func (s *String) PageInfos() PageInfoMap {
	return s.pageInfos
}

// PageInfo returns the page info of one page.
func (s *String) PageInfo(page int) (PageInfo, bool) {
	return s.pageInfos.Get(page)
}

// SetPageInfos replaces the page info map of a String with geometry. Every
// page the geometry references must be present.
func (s *String) SetPageInfos(pm PageInfoMap) error {
	if s.mode == NonSpatial {
		return s.wrongMode("SetPageInfos", Spatial, Hybrid)
	}
	prev := s.pageInfos
	s.pageInfos = pm
	if err := s.validate(); err != nil {
		s.pageInfos = prev
		return err
	}
	s.dirty = true
	return nil
}

// SourceDocName returns the name of the document the text came from.
func (s *String) SourceDocName() string {
	return s.sourceDocName
}

// SetSourceDocName sets the name of the source document.
func (s *String) SetSourceDocName(name string) {
	if s.sourceDocName != name {
		s.sourceDocName = name
		s.dirty = true
	}
}

// OCREngineVersion returns the version string of the engine that produced
// the text, if known.
func (s *String) OCREngineVersion() string {
	return s.ocrEngineVersion
}

// SetOCREngineVersion records the engine version.
func (s *String) SetOCREngineVersion(v string) {
	if s.ocrEngineVersion != v {
		s.ocrEngineVersion = v
		s.dirty = true
	}
}

// OCRParameters returns a copy of the engine parameters recorded with the
// text.
func (s *String) OCRParameters() map[string]string {
	return copyParams(s.ocrParameters)
}

// SetOCRParameters records engine parameters.
func (s *String) SetOCRParameters(params map[string]string) {
	s.ocrParameters = copyParams(params)
	s.dirty = true
}

// IsDirty reports whether the string changed since it was last saved,
// loaded or marked clean.
func (s *String) IsDirty() bool {
	return s.dirty
}

// SetDirty sets or clears the modification flag.
func (s *String) SetDirty(dirty bool) {
	s.dirty = dirty
}

// Clone returns a deep copy. The page info map is shared, which is safe
// because it is never modified in place.
func (s *String) Clone() *String {
	return &String{
		text:             append([]rune(nil), s.text...),
		mode:             s.mode,
		letters:          append([]Letter(nil), s.letters...),
		zones:            append([]RasterZone(nil), s.zones...),
		pageInfos:        s.pageInfos,
		sourceDocName:    s.sourceDocName,
		ocrEngineVersion: s.ocrEngineVersion,
		ocrParameters:    copyParams(s.ocrParameters),
		dirty:            s.dirty,
	}
}

// Equal reports whether two strings hold the same text, mode, geometry and
// page infos. Source metadata and the dirty flag are ignored.
func (s *String) Equal(other *String) bool {
	if s == other {
		return true
	}
	if other == nil || s.mode != other.mode || len(s.text) != len(other.text) {
		return false
	}
	for i := range s.text {
		if s.text[i] != other.text[i] {
			return false
		}
	}
	if len(s.letters) != len(other.letters) || len(s.zones) != len(other.zones) {
		return false
	}
	for i := range s.letters {
		if s.letters[i] != other.letters[i] {
			return false
		}
	}
	for i := range s.zones {
		if s.zones[i] != other.zones[i] {
			return false
		}
	}
	return s.pageInfos.Equal(other.pageInfos)
}

// Validate checks the mode invariants.
func (s *String) Validate() error {
	return s.validate()
}

func (s *String) validate() error {
	switch s.mode {
	case NonSpatial:
		if len(s.letters) != 0 || len(s.zones) != 0 {
			return errs.New(errs.ErrInvariant, "non-spatial string has geometry",
				"letters", len(s.letters), "zones", len(s.zones))
		}
		return nil
	case Spatial:
		if len(s.letters) == 0 {
			return errs.New(errs.ErrInvariant, "spatial string has no letters")
		}
		if len(s.letters) != len(s.text) {
			return errs.New(errs.ErrLengthMismatch, "letter count differs from text length",
				"letters", len(s.letters), "text", len(s.text))
		}
		if len(s.zones) != 0 {
			return errs.New(errs.ErrInvariant, "spatial string has raster zones", "zones", len(s.zones))
		}
		for i, l := range s.letters {
			if l.Guess1 != runeToGuess(s.text[i]) {
				return errs.New(errs.ErrInvariant, "letter does not match text",
					"index", i, "letter", l.Guess1, "char", s.text[i])
			}
			if !l.IsSpatial {
				continue
			}
			if _, ok := s.pageInfos.Get(l.Page()); !ok {
				return errs.New(errs.ErrMissingPageInfo, "letter references a page without page info",
					"index", i, "page", l.Page())
			}
		}
		return nil
	case Hybrid:
		if len(s.zones) == 0 {
			return errs.New(errs.ErrInvariant, "hybrid string has no raster zones")
		}
		if len(s.text) == 0 {
			return errs.New(errs.ErrInvariant, "hybrid string has no text")
		}
		if len(s.letters) != 0 {
			return errs.New(errs.ErrInvariant, "hybrid string has letters", "letters", len(s.letters))
		}
		for _, z := range s.zones {
			if _, ok := s.pageInfos.Get(z.Page); !ok {
				return errs.New(errs.ErrMissingPageInfo, "zone references a page without page info",
					"page", z.Page)
			}
		}
		return nil
	}
	return errs.New(errs.ErrInvariant, "unknown mode", "mode", int(s.mode))
}

// reset clears everything but the source metadata.
func (s *String) reset() {
	s.text = nil
	s.mode = NonSpatial
	s.letters = nil
	s.zones = nil
	s.pageInfos = PageInfoMap{}
	s.dirty = true
}

func (s *String) checkIndex(i int) error {
	if i < 0 || i >= len(s.text) {
		return errs.New(errs.ErrInvalidIndex, "character index out of range",
			"index", i, "length", len(s.text))
	}
	return nil
}

// checkRange validates a half-open range, resolving an end of -1 to the end
// of the string.
func (s *String) checkRange(start, end int) (int, int, error) {
	if end == -1 {
		end = len(s.text)
	}
	if start < 0 || end > len(s.text) || start > end {
		return 0, 0, errs.New(errs.ErrInvalidIndex, "character range out of bounds",
			"start", start, "end", end, "length", len(s.text))
	}
	return start, end, nil
}

func (s *String) wrongMode(op string, want ...Mode) error {
	return errs.New(errs.ErrWrongMode, op+" is not valid for a "+s.mode.String()+" string",
		"mode", s.mode.String(), "required", fmt.Sprint(want))
}

func copyParams(p map[string]string) map[string]string {
	if p == nil {
		return nil
	}
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
