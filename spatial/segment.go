package spatial

import (
	"unicode"

	"github.com/tsawler/spatialtext/model"
)

// IsEndOfWord reports whether character i ends a word: it is not whitespace
// and it is the last character or is followed by whitespace.
func (s *String) IsEndOfWord(i int) bool {
	if i < 0 || i >= len(s.text) || unicode.IsSpace(s.text[i]) {
		return false
	}
	return i == len(s.text)-1 || unicode.IsSpace(s.text[i+1])
}

// IsEndOfLine reports whether character i ends a line. A character that is
// not a line break ends a line when it is followed by optional carriage
// returns and a newline, by the end of the string, or (for a non-whitespace
// character of a Spatial string) by a spatial letter on another page.
func (s *String) IsEndOfLine(i int) bool {
	if i < 0 || i >= len(s.text) || isLineBreak(s.text[i]) {
		return false
	}
	j := i + 1
	for j < len(s.text) && s.text[j] == '\r' {
		j++
	}
	if j == len(s.text) || s.text[j] == '\n' {
		return true
	}
	if s.mode != Spatial || unicode.IsSpace(s.text[i]) {
		return false
	}
	page := s.letters[i].Page()
	for k := i + 1; k < len(s.text) && !isLineBreak(s.text[k]); k++ {
		if s.letters[k].IsSpatial {
			return s.letters[k].Page() != page
		}
	}
	return false
}

// IsEndOfParagraph reports whether character i ends a paragraph, either by
// its letter flag or because a blank line follows it.
func (s *String) IsEndOfParagraph(i int) bool {
	if i < 0 || i >= len(s.text) || isLineBreak(s.text[i]) {
		return false
	}
	if s.mode == Spatial && s.letters[i].IsEndOfParagraph {
		return true
	}
	if i == len(s.text)-1 {
		return true
	}
	newlines := 0
	for j := i + 1; j < len(s.text); j++ {
		switch s.text[j] {
		case '\r':
		case '\n':
			newlines++
			if newlines == 2 {
				return true
			}
		default:
			if !unicode.IsSpace(s.text[j]) || newlines == 0 {
				return false
			}
		}
	}
	return true
}

// IsEndOfZone reports whether character i ends a zone. Zones end at letters
// flagged as end of zone and at the end of the string. With
// treatGapsAsBoundaries, a zone also ends where the horizontal gap to the
// next spatial letter on the same line exceeds the average character height.
func (s *String) IsEndOfZone(i int, treatGapsAsBoundaries bool) bool {
	avg := 0
	if treatGapsAsBoundaries {
		avg = s.averageHeight()
	}
	return s.isEndOfZone(i, treatGapsAsBoundaries, avg)
}

func (s *String) isEndOfZone(i int, treatGapsAsBoundaries bool, avgHeight int) bool {
	if i < 0 || i >= len(s.text) {
		return false
	}
	if i == len(s.text)-1 {
		return true
	}
	if s.mode != Spatial {
		return false
	}
	if s.letters[i].IsEndOfZone {
		return true
	}
	if !treatGapsAsBoundaries || !s.letters[i].IsSpatial || s.IsEndOfLine(i) {
		return false
	}
	for k := i + 1; k < len(s.text) && !isLineBreak(s.text[k]); k++ {
		next := s.letters[k]
		if !next.IsSpatial {
			continue
		}
		gap := int(next.Left) - int(s.letters[i].Right)
		return gap > avgHeight
	}
	return false
}

// Boundaries holds the segment flags of one character.
type Boundaries struct {
	Word      bool
	Line      bool
	Paragraph bool
	Zone      bool
}

// AllBoundaries computes the segment flags of every character.
func (s *String) AllBoundaries(treatGapsAsZoneBoundaries bool) []Boundaries {
	out := make([]Boundaries, len(s.text))
	avg := s.averageHeight()
	for i := range s.text {
		out[i] = Boundaries{
			Word:      s.IsEndOfWord(i),
			Line:      s.IsEndOfLine(i),
			Paragraph: s.IsEndOfParagraph(i),
			Zone:      s.isEndOfZone(i, treatGapsAsZoneBoundaries, avg),
		}
	}
	return out
}

// WordRanges returns the character ranges of the words.
func (s *String) WordRanges() []Range {
	return s.scan(unicode.IsSpace, s.IsEndOfWord)
}

// LineRanges returns the character ranges of the lines, without line breaks.
func (s *String) LineRanges() []Range {
	return s.scan(isLineBreak, s.IsEndOfLine)
}

// ParagraphRanges returns the character ranges of the paragraphs.
func (s *String) ParagraphRanges() []Range {
	return trimRanges(s.text, s.scan(isLineBreak, s.IsEndOfParagraph))
}

// ZoneRanges returns the character ranges of the zones.
func (s *String) ZoneRanges(treatGapsAsBoundaries bool) []Range {
	avg := s.averageHeight()
	end := func(i int) bool { return s.isEndOfZone(i, treatGapsAsBoundaries, avg) }
	return trimRanges(s.text, s.scan(isLineBreak, end))
}

// Words returns the words as sub-strings.
func (s *String) Words() []*String {
	return s.subStrings(s.WordRanges())
}

// Lines returns the lines as sub-strings.
func (s *String) Lines() []*String {
	return s.subStrings(s.LineRanges())
}

// Paragraphs returns the paragraphs as sub-strings.
func (s *String) Paragraphs() []*String {
	return s.subStrings(s.ParagraphRanges())
}

// Zones returns the zones as sub-strings.
func (s *String) Zones(treatGapsAsBoundaries bool) []*String {
	return s.subStrings(s.ZoneRanges(treatGapsAsBoundaries))
}

// scan accumulates ranges in one pass. A range starts at the first character
// that skip rejects and ends, inclusive, at a character isEnd accepts.
func (s *String) scan(skip func(rune) bool, isEnd func(int) bool) []Range {
	var out []Range
	start := -1
	for i, r := range s.text {
		if start < 0 {
			if skip(r) {
				continue
			}
			start = i
		}
		if isEnd(i) {
			out = append(out, Range{Start: start, End: i + 1})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, Range{Start: start, End: len(s.text)})
	}
	return out
}

func (s *String) subStrings(ranges []Range) []*String {
	out := make([]*String, 0, len(ranges))
	for _, r := range ranges {
		sub, err := s.SubString(r.Start, r.End)
		if err != nil {
			continue
		}
		out = append(out, sub)
	}
	return out
}

// lineZones returns one raster zone per line and page, enclosing the
// spatial letters of that line.
func (s *String) lineZones() []RasterZone {
	if s.mode != Spatial {
		return nil
	}
	var zones []RasterZone
	for _, r := range s.LineRanges() {
		for _, pb := range s.pageBounds(r) {
			zones = append(zones, RasterZoneFromRect(pb.bounds, pb.page))
		}
	}
	return zones
}

type pageRect struct {
	page   int
	bounds model.Rect
}

// pageBounds returns the union of spatial letter bounds in r, per page, in
// order of first appearance.
func (s *String) pageBounds(r Range) []pageRect {
	var out []pageRect
	index := map[int]int{}
	for _, l := range s.letters[r.Start:r.End] {
		if !l.IsSpatial {
			continue
		}
		i, ok := index[l.Page()]
		if !ok {
			index[l.Page()] = len(out)
			out = append(out, pageRect{page: l.Page(), bounds: l.Bounds()})
			continue
		}
		out[i].bounds = out[i].bounds.Union(l.Bounds())
	}
	return out
}

// averageHeight is the mean height of spatial non-whitespace letters, or 0.
func (s *String) averageHeight() int {
	total, n := 0, 0
	for _, l := range s.letters {
		if l.IsSpatial && !l.IsWhitespace() {
			total += l.Height()
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / n
}

// trimRanges drops leading and trailing line breaks and whitespace from each
// range, discarding ranges that become empty.
func trimRanges(text []rune, ranges []Range) []Range {
	out := ranges[:0]
	for _, r := range ranges {
		for r.Start < r.End && unicode.IsSpace(text[r.Start]) {
			r.Start++
		}
		for r.End > r.Start && unicode.IsSpace(text[r.End-1]) {
			r.End--
		}
		if r.Len() > 0 {
			out = append(out, r)
		}
	}
	return out
}

func isLineBreak(r rune) bool {
	return r == '\r' || r == '\n'
}
