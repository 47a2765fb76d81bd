package spatial

import (
	"github.com/sirupsen/logrus"
	"github.com/tsawler/spatialtext/errs"
)

// Insert splices a copy of src into s before character pos.
//
// The mode of the result follows the inputs: Hybrid if either side is
// Hybrid, Spatial if either side is Spatial, NonSpatial otherwise. Page
// infos are merged; data from src on a page whose info differs from s only
// in orientation or deskew is re-projected into s's coordinates first.
// Inserting spatial letters out of page order downgrades s to Hybrid.
func (s *String) Insert(pos int, src *String) error {
	if pos < 0 || pos > len(s.text) {
		return errs.New(errs.ErrInvalidIndex, "insert position out of range",
			"position", pos, "length", len(s.text))
	}
	if src == nil || len(src.text) == 0 {
		return nil
	}
	return s.insert(pos, src.Clone(), true)
}

// Append adds a copy of src to the end of s. See Insert.
func (s *String) Append(src *String) error {
	return s.Insert(len(s.text), src)
}

// InsertString splices plain text into s before character pos.
func (s *String) InsertString(pos int, text string) error {
	return s.Insert(pos, NewNonSpatial(text, ""))
}

// AppendString adds plain text to the end of s.
func (s *String) AppendString(text string) error {
	return s.InsertString(len(s.text), text)
}

func (s *String) insert(pos int, in *String, allowDowngrade bool) error {
	merged := s.pageInfos
	switch {
	case s.mode != NonSpatial && in.mode != NonSpatial:
		m, translate, err := s.pageInfos.Merge(in.pageInfos)
		if err != nil {
			return err
		}
		if len(translate) > 0 {
			if err := in.reproject(translate, s.pageInfos); err != nil {
				return err
			}
			logger().WithField("pages", translate).Debug("re-projected inserted text onto existing page infos")
		}
		merged = m
	case s.mode == NonSpatial:
		merged = in.pageInfos
	}

	switch {
	case s.mode == Hybrid || in.mode == Hybrid:
		zones := appendUniqueZones(s.ocrZones(), in.ocrZones()...)
		s.text = spliceRunes(s.text, pos, pos, in.text)
		s.letters = nil
		s.zones = zones
		s.mode = Hybrid
		s.pageInfos = merged

	case s.mode == Spatial || in.mode == Spatial:
		if s.mode == Spatial && in.mode == Spatial && !s.pageOrderAllows(pos, in) {
			if !allowDowngrade {
				return errs.New(errs.ErrPageOrder, "inserted letters break page order",
					"position", pos, "first_page", in.FirstPageNumber(), "last_page", in.LastPageNumber())
			}
			logger().WithFields(logrus.Fields{
				"position":   pos,
				"first_page": in.FirstPageNumber(),
				"last_page":  in.LastPageNumber(),
			}).Debug("insert breaks page order, downgrading to hybrid")
			if err := s.DowngradeToHybrid(); err != nil {
				return err
			}
			return s.insert(pos, in, false)
		}

		var ours, theirs []Letter
		if s.mode == Spatial {
			ours = s.letters
			theirs = in.letters
			if in.mode != Spatial {
				theirs = placeholderLetters(in.text, s.neighborPage(pos))
			}
		} else {
			theirs = in.letters
			ours = placeholderLetters(s.text, in.FirstPageNumber())
		}
		s.letters = spliceLetters(ours, pos, pos, theirs)
		s.text = spliceRunes(s.text, pos, pos, in.text)
		s.zones = nil
		s.mode = Spatial
		s.pageInfos = merged

	default:
		s.text = spliceRunes(s.text, pos, pos, in.text)
	}

	s.dirty = true
	return s.validate()
}

// reproject converts the geometry of s on the given pages into the
// coordinate systems dest describes for them.
func (s *String) reproject(pages []int, dest PageInfoMap) error {
	transforms := make(map[int]*pageTransform, len(pages))
	infos := s.pageInfos
	for _, p := range pages {
		old, ok := s.pageInfos.Get(p)
		if !ok {
			return errs.New(errs.ErrMissingPageInfo, "no page info to re-project from", "page", p)
		}
		target, ok := dest.Get(p)
		if !ok {
			return errs.New(errs.ErrMissingPageInfo, "no page info to re-project to", "page", p)
		}
		t, err := newPageTransform(old, &target)
		if err != nil {
			return err
		}
		transforms[p] = t
		infos = infos.With(p, target)
	}

	for i, l := range s.letters {
		if t, ok := transforms[l.Page()]; ok {
			s.letters[i] = t.letter(l)
		}
	}
	for i, z := range s.zones {
		if t, ok := transforms[z.Page]; ok {
			s.zones[i] = t.zone(z)
		}
	}
	s.pageInfos = infos
	return nil
}

// pageOrderAllows reports whether inserting in at pos keeps the pages of
// spatial letters in ascending order.
func (s *String) pageOrderAllows(pos int, in *String) bool {
	first, last := in.FirstPageNumber(), in.LastPageNumber()
	if first == 0 {
		return true
	}
	for _, l := range s.letters[:pos] {
		if l.IsSpatial && l.Page() > first {
			return false
		}
	}
	for _, l := range s.letters[pos:] {
		if l.IsSpatial && l.Page() < last {
			return false
		}
	}
	return true
}

// neighborPage returns the page of the letter before pos, or after it when
// pos is the start.
func (s *String) neighborPage(pos int) int {
	if pos > 0 && pos-1 < len(s.letters) {
		return s.letters[pos-1].Page()
	}
	if pos < len(s.letters) {
		return s.letters[pos].Page()
	}
	return 1
}

// ocrZones returns the zones describing s in OCR image coordinates.
func (s *String) ocrZones() []RasterZone {
	switch s.mode {
	case Hybrid:
		return append([]RasterZone(nil), s.zones...)
	case Spatial:
		return s.lineZones()
	}
	return nil
}

// Remove deletes the characters in [start, end). An end of -1 means the end
// of the string. A Spatial string that would lose its last spatial letter is
// downgraded to Hybrid first, and a Hybrid string left without text becomes
// NonSpatial.
func (s *String) Remove(start, end int) error {
	start, end, err := s.checkRange(start, end)
	if err != nil {
		return err
	}
	if start == end {
		return nil
	}

	switch s.mode {
	case Spatial:
		if !anySpatial(s.letters[:start]) && !anySpatial(s.letters[end:]) {
			if err := s.DowngradeToHybrid(); err != nil {
				return err
			}
			return s.Remove(start, end)
		}
		s.letters = spliceLetters(s.letters, start, end, nil)
		s.text = spliceRunes(s.text, start, end, nil)
	case Hybrid:
		s.text = spliceRunes(s.text, start, end, nil)
		if len(s.text) == 0 {
			s.DowngradeToNonSpatial()
		}
	default:
		s.text = spliceRunes(s.text, start, end, nil)
	}
	s.dirty = true
	return s.validate()
}

// Clear removes all text, leaving an empty NonSpatial string.
func (s *String) Clear() {
	s.text = nil
	s.DowngradeToNonSpatial()
}

// DowngradeToHybrid replaces the letters of a Spatial string with one raster
// zone per line. It does nothing for a Hybrid string and fails for a
// NonSpatial one. A Spatial string without any spatial letter becomes
// NonSpatial.
func (s *String) DowngradeToHybrid() error {
	switch s.mode {
	case NonSpatial:
		return s.wrongMode("DowngradeToHybrid", Spatial, Hybrid)
	case Hybrid:
		return nil
	}

	zones := s.lineZones()
	s.letters = nil
	s.dirty = true
	if len(zones) == 0 {
		s.DowngradeToNonSpatial()
		return nil
	}
	s.zones = zones
	s.mode = Hybrid
	return s.validate()
}

// DowngradeToNonSpatial discards all geometry and page infos.
func (s *String) DowngradeToNonSpatial() {
	if s.mode != NonSpatial || !s.pageInfos.IsNil() {
		s.dirty = true
	}
	s.mode = NonSpatial
	s.letters = nil
	s.zones = nil
	s.pageInfos = PageInfoMap{}
}

func anySpatial(letters []Letter) bool {
	for _, l := range letters {
		if l.IsSpatial {
			return true
		}
	}
	return false
}

func placeholderLetters(text []rune, page int) []Letter {
	out := make([]Letter, len(text))
	for i, r := range text {
		out[i] = NewLetter(r, page)
	}
	return out
}

// spliceRunes returns text with [start, end) replaced by ins. The result
// never aliases ins.
func spliceRunes(text []rune, start, end int, ins []rune) []rune {
	out := make([]rune, 0, len(text)-(end-start)+len(ins))
	out = append(out, text[:start]...)
	out = append(out, ins...)
	return append(out, text[end:]...)
}

func spliceLetters(letters []Letter, start, end int, ins []Letter) []Letter {
	out := make([]Letter, 0, len(letters)-(end-start)+len(ins))
	out = append(out, letters[:start]...)
	out = append(out, ins...)
	return append(out, letters[end:]...)
}
