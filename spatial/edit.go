package spatial

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Replace substitutes replacement for each match of pattern and returns the
// number of replacements. With opts.Regexp, the replacement may refer to
// groups as $1 or ${name}.
//
// In a Spatial string a replacement that covers spatial letters on a single
// line and page is spread evenly across their bounds; otherwise the new
// characters are non-spatial.
func (s *String) Replace(pattern, replacement string, opts FindOptions) (int, error) {
	matches, err := s.find(pattern, opts)
	if err != nil {
		return 0, err
	}
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		repl := replacement
		if opts.Regexp {
			repl = expandReplacement(replacement, m)
		}
		if err := s.replaceRange(m.Index, m.Index+m.Length, []rune(repl)); err != nil {
			return len(matches) - 1 - i, err
		}
	}
	return len(matches), nil
}

// ReplaceRange substitutes text for the characters in [start, end). An end
// of -1 means the end of the string.
func (s *String) ReplaceRange(start, end int, text string) error {
	start, end, err := s.checkRange(start, end)
	if err != nil {
		return err
	}
	return s.replaceRange(start, end, []rune(text))
}

func (s *String) replaceRange(start, end int, repl []rune) error {
	if start == end && len(repl) == 0 {
		return nil
	}
	switch s.mode {
	case Spatial:
		letters, spatial := s.replacementLetters(start, end, repl)
		if !spatial && !anySpatial(s.letters[:start]) && !anySpatial(s.letters[end:]) {
			if err := s.DowngradeToHybrid(); err != nil {
				return err
			}
			return s.replaceRange(start, end, repl)
		}
		s.letters = spliceLetters(s.letters, start, end, letters)
		s.text = spliceRunes(s.text, start, end, repl)
	case Hybrid:
		s.text = spliceRunes(s.text, start, end, repl)
		if len(s.text) == 0 {
			s.DowngradeToNonSpatial()
		}
	default:
		s.text = spliceRunes(s.text, start, end, repl)
	}
	s.dirty = true
	return s.validate()
}

// replacementLetters builds letters for repl replacing [start, end) and
// reports whether they are spatial.
func (s *String) replacementLetters(start, end int, repl []rune) ([]Letter, bool) {
	if len(repl) == 0 {
		return nil, false
	}
	var first, last *Letter
	page := -1
	sameLine := true
	var bounds = s.letters[start:end]
	for i := range bounds {
		l := &bounds[i]
		if isLineBreak(l.Char()) {
			sameLine = false
		}
		if !l.IsSpatial {
			continue
		}
		if first == nil {
			first = l
			page = l.Page()
		} else if l.Page() != page {
			sameLine = false
		}
		last = l
	}
	if first == nil || !sameLine {
		return placeholderLetters(repl, s.neighborPage(start)), false
	}

	box := unionLetterBounds(bounds)
	out := make([]Letter, len(repl))
	for i, r := range spreadEvenly(box, len(repl)) {
		l := NewSpatialLetter(repl[i], r, page)
		l.FontSize = first.FontSize
		l.FontFlags = first.FontFlags
		l.CharConfidence = first.CharConfidence
		out[i] = l
	}
	out[len(out)-1].IsEndOfParagraph = last.IsEndOfParagraph
	out[len(out)-1].IsEndOfZone = last.IsEndOfZone
	return out, true
}

// SetChar replaces the character at index i, keeping its geometry.
func (s *String) SetChar(i int, ch rune) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.setChar(i, ch)
	s.dirty = true
	return nil
}

func (s *String) setChar(i int, ch rune) {
	s.text[i] = ch
	if s.mode == Spatial {
		s.letters[i].SetChar(ch)
	}
}

// ToUpperCase converts the text to upper case.
func (s *String) ToUpperCase() {
	c := cases.Upper(language.Und)
	s.mapRunes(func(_ int, r rune) rune { return caseRune(c, r) })
}

// ToLowerCase converts the text to lower case.
func (s *String) ToLowerCase() {
	c := cases.Lower(language.Und)
	s.mapRunes(func(_ int, r rune) rune { return caseRune(c, r) })
}

// ToTitleCase capitalizes the first letter of each word and lowers the rest.
func (s *String) ToTitleCase() {
	lower := cases.Lower(language.Und)
	s.mapRunes(func(i int, r rune) rune {
		if i == 0 || unicode.IsSpace(s.text[i-1]) {
			return unicode.ToTitle(r)
		}
		return caseRune(lower, r)
	})
}

// caseRune maps one rune, leaving it unchanged when the mapping would
// produce more or fewer than one character.
func caseRune(c cases.Caser, r rune) rune {
	mapped := c.String(string(r))
	if utf8.RuneCountInString(mapped) != 1 {
		return r
	}
	out, _ := utf8.DecodeRuneInString(mapped)
	return out
}

// mapRunes applies f to each character in order. f sees the text as already
// converted up to its index.
func (s *String) mapRunes(f func(i int, r rune) rune) {
	changed := false
	for i, r := range s.text {
		if nr := f(i, r); nr != r {
			s.setChar(i, nr)
			changed = true
		}
	}
	if changed {
		s.dirty = true
	}
}

// Trim removes leading and trailing characters found in cutset, or
// whitespace when cutset is empty.
func (s *String) Trim(cutset string) error {
	trim := unicode.IsSpace
	if cutset != "" {
		trim = func(r rune) bool { return strings.ContainsRune(cutset, r) }
	}
	end := len(s.text)
	for end > 0 && trim(s.text[end-1]) {
		end--
	}
	if err := s.Remove(end, -1); err != nil {
		return err
	}
	start := 0
	for start < len(s.text) && trim(s.text[start]) {
		start++
	}
	return s.Remove(0, start)
}

// ConsolidateChars collapses each run of a repeated character from chars
// into a single character. The surviving letter takes the union of the
// run's spatial bounds.
func (s *String) ConsolidateChars(chars string, ignoreCase bool) {
	if len(s.text) < 2 || chars == "" {
		return
	}
	fold := func(r rune) rune { return r }
	if ignoreCase {
		fold = unicode.ToLower
	}
	inSet := func(r rune) bool {
		for _, c := range chars {
			if fold(c) == fold(r) {
				return true
			}
		}
		return false
	}

	text := s.text[:1]
	var letters []Letter
	if s.mode == Spatial {
		letters = s.letters[:1]
	}
	for i := 1; i < len(s.text); i++ {
		r := s.text[i]
		prev := text[len(text)-1]
		if inSet(r) && fold(r) == fold(prev) {
			if letters != nil {
				last := &letters[len(letters)-1]
				cur := s.letters[i]
				switch {
				case cur.IsSpatial && last.IsSpatial && cur.PageNumber == last.PageNumber:
					last.SetBounds(last.Bounds().Union(cur.Bounds()))
				case cur.IsSpatial && !last.IsSpatial:
					cur.SetChar(last.Char())
					*last = cur
				}
				last.IsEndOfParagraph = last.IsEndOfParagraph || cur.IsEndOfParagraph
				last.IsEndOfZone = last.IsEndOfZone || cur.IsEndOfZone
			}
			continue
		}
		text = append(text, r)
		if letters != nil {
			letters = append(letters, s.letters[i])
		}
	}
	if len(text) != len(s.text) {
		s.text = text
		if letters != nil {
			s.letters = letters
		}
		s.dirty = true
	}
}
