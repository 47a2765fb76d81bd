package spatial

import (
	"unicode"

	"github.com/tsawler/spatialtext/model"
)

// FontFlags is the font-style bitmask carried by each Letter.
type FontFlags uint8

const (
	FontItalic FontFlags = 1 << iota
	FontBold
	FontSansSerif
	FontSerif
	FontProportional
	FontUnderline
	FontSuperscript
	FontSubscript
)

// Has reports whether every bit in f is set.
func (ff FontFlags) Has(f FontFlags) bool {
	return ff&f == f
}

// With returns ff with f set or cleared.
func (ff FontFlags) With(f FontFlags, on bool) FontFlags {
	if on {
		return ff | f
	}
	return ff &^ f
}

// String returns a compact description such as "bold|italic".
func (ff FontFlags) String() string {
	if ff == 0 {
		return "regular"
	}
	names := []struct {
		flag FontFlags
		name string
	}{
		{FontItalic, "italic"},
		{FontBold, "bold"},
		{FontSansSerif, "sans-serif"},
		{FontSerif, "serif"},
		{FontProportional, "proportional"},
		{FontUnderline, "underline"},
		{FontSuperscript, "superscript"},
		{FontSubscript, "subscript"},
	}
	s := ""
	for _, n := range names {
		if ff.Has(n.flag) {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	return s
}

// MaxConfidence is the default character confidence.
const MaxConfidence = 100

// Letter is the per-character record of a spatial string. Only Guess1 is
// authoritative; Guess2 and Guess3 are kept for compatibility with stored
// data. The bounding box is in OCR image coordinates and is meaningless
// unless IsSpatial is set.
type Letter struct {
	Guess1 uint16
	Guess2 uint16
	Guess3 uint16

	Top    uint32
	Left   uint32
	Right  uint32
	Bottom uint32

	PageNumber uint16

	IsEndOfParagraph bool
	IsEndOfZone      bool
	IsSpatial        bool

	FontSize       uint8
	CharConfidence uint8
	FontFlags      FontFlags
}

// NewLetter creates a non-spatial letter for ch.
func NewLetter(ch rune, page int) Letter {
	code := runeToGuess(ch)
	return Letter{
		Guess1:         code,
		Guess2:         code,
		Guess3:         code,
		PageNumber:     uint16(page),
		CharConfidence: MaxConfidence,
	}
}

// NewSpatialLetter creates a spatial letter for ch with the given bounds.
func NewSpatialLetter(ch rune, bounds model.Rect, page int) Letter {
	l := NewLetter(ch, page)
	l.SetBounds(bounds)
	l.IsSpatial = true
	return l
}

// Char returns the character of the first guess.
func (l Letter) Char() rune {
	return rune(l.Guess1)
}

// SetChar replaces all three guesses.
func (l *Letter) SetChar(ch rune) {
	code := runeToGuess(ch)
	l.Guess1, l.Guess2, l.Guess3 = code, code, code
}

// Bounds returns the bounding box.
func (l Letter) Bounds() model.Rect {
	return model.Rect{
		Left:   int(l.Left),
		Top:    int(l.Top),
		Right:  int(l.Right),
		Bottom: int(l.Bottom),
	}
}

// SetBounds stores r, clamping negative coordinates to zero.
func (l *Letter) SetBounds(r model.Rect) {
	l.Left = uint32(max(r.Left, 0))
	l.Top = uint32(max(r.Top, 0))
	l.Right = uint32(max(r.Right, 0))
	l.Bottom = uint32(max(r.Bottom, 0))
}

// Width returns the horizontal extent of the bounding box.
func (l Letter) Width() int {
	return int(l.Right) - int(l.Left)
}

// Height returns the vertical extent of the bounding box.
func (l Letter) Height() int {
	return int(l.Bottom) - int(l.Top)
}

// Page returns the page number as an int.
func (l Letter) Page() int {
	return int(l.PageNumber)
}

// IsWhitespace reports whether the letter's character is whitespace.
func (l Letter) IsWhitespace() bool {
	return unicode.IsSpace(l.Char())
}

func runeToGuess(ch rune) uint16 {
	if ch < 0 || ch > 0xFFFF {
		return uint16(unicode.ReplacementChar)
	}
	return uint16(ch)
}
