package spatial

import (
	"unicode/utf8"

	"github.com/tsawler/spatialtext/errs"
	"golang.org/x/text/encoding/charmap"
)

// letterDecoder reads one letter in the layout of a particular version.
type letterDecoder func(d *decoder) Letter

// letterDecoderFor returns the letter layout used by version.
func letterDecoderFor(version int) letterDecoder {
	switch {
	case version <= 4:
		return decodeLetterV1
	case version == 5:
		return decodeLetterV5
	case version == 6:
		return decodeLetterV6
	case version <= 8:
		return decodeLetterV7
	default:
		return decodeLetterV9
	}
}

// decodeLetterV1 reads the original layout: no confidence, no font flags.
func decodeLetterV1(d *decoder) Letter {
	l := Letter{
		Guess1: d.u16(),
		Guess2: d.u16(),
		Guess3: d.u16(),
		Top:    d.u32(),
		Left:   d.u32(),
		Right:  d.u32(),
		Bottom: d.u32(),
	}
	l.PageNumber = d.u16()
	l.IsEndOfParagraph = d.u8() != 0
	l.IsEndOfZone = d.u8() != 0
	l.IsSpatial = d.u8() != 0
	l.FontSize = d.u8()
	l.CharConfidence = MaxConfidence
	return l
}

// decodeLetterV5 adds character confidence.
func decodeLetterV5(d *decoder) Letter {
	l := decodeLetterV1(d)
	l.CharConfidence = d.u8()
	return l
}

// decodeLetterV6 reads the compact layout with 16-bit bounds.
func decodeLetterV6(d *decoder) Letter {
	l := Letter{
		Guess1: d.u16(),
		Guess2: d.u16(),
		Guess3: d.u16(),
		Top:    uint32(d.u16()),
		Left:   uint32(d.u16()),
		Right:  uint32(d.u16()),
		Bottom: uint32(d.u16()),
	}
	l.PageNumber = d.u16()
	l.IsEndOfParagraph = d.u8() != 0
	l.IsEndOfZone = d.u8() != 0
	l.IsSpatial = d.u8() != 0
	l.FontSize = d.u8()
	l.CharConfidence = d.u8()
	l.FontFlags = FontFlags(d.u8())
	return l
}

// decodeLetterV7 reads the full layout with one byte per flag.
func decodeLetterV7(d *decoder) Letter {
	l := Letter{
		Guess1: d.u16(),
		Guess2: d.u16(),
		Guess3: d.u16(),
		Top:    d.u32(),
		Left:   d.u32(),
		Right:  d.u32(),
		Bottom: d.u32(),
	}
	l.PageNumber = d.u16()
	l.IsEndOfParagraph = d.u8() != 0
	l.IsEndOfZone = d.u8() != 0
	l.IsSpatial = d.u8() != 0
	l.FontSize = d.u8()
	l.CharConfidence = d.u8()
	l.FontFlags = FontFlags(d.u8())
	return l
}

// decodeLetterV9 reads the current layout with packed flags.
func decodeLetterV9(d *decoder) Letter {
	l := Letter{
		Guess1: d.u16(),
		Guess2: d.u16(),
		Guess3: d.u16(),
		Top:    d.u32(),
		Left:   d.u32(),
		Right:  d.u32(),
		Bottom: d.u32(),
	}
	l.PageNumber = d.u16()
	unpackLetterFlags(&l, d.u8())
	l.FontSize = d.u8()
	l.CharConfidence = d.u8()
	l.FontFlags = FontFlags(d.u8())
	return l
}

// decodeString reads everything after the version number.
func decodeString(d *decoder, version int) (*String, error) {
	s := New()
	if version >= 2 {
		s.sourceDocName = decodeText(d.bytes(), version)
	}
	if version >= 10 {
		s.ocrEngineVersion = decodeText(d.bytes(), version)
	}
	if version >= 11 {
		n := d.count()
		if n > 0 {
			s.ocrParameters = make(map[string]string, n)
		}
		for i := 0; i < n && d.err == nil; i++ {
			k := decodeText(d.bytes(), version)
			s.ocrParameters[k] = decodeText(d.bytes(), version)
		}
	}
	s.text = []rune(decodeText(d.bytes(), version))
	if d.err != nil {
		return nil, d.fail("metadata")
	}

	mode := Spatial
	if version >= 4 {
		mode = Mode(d.u8())
	}
	switch mode {
	case Spatial:
		n := d.count()
		readLetter := letterDecoderFor(version)
		letters := make([]Letter, 0, n)
		for i := 0; i < n && d.err == nil; i++ {
			letters = append(letters, readLetter(d))
		}
		if d.err != nil {
			return nil, d.fail("letters")
		}
		if version < 12 {
			recodeLegacyGuesses(letters)
		}
		if len(letters) > 0 && len(letters) != len(s.text) {
			return nil, errs.New(errs.ErrCorruptData, "stored letter count differs from text length",
				"letters", len(letters), "text", len(s.text), "version", version)
		}
		s.letters = letters
		if anySpatial(letters) {
			s.mode = Spatial
		} else {
			s.letters = nil
		}
	case Hybrid:
		n := d.count()
		zones := make([]RasterZone, 0, n)
		for i := 0; i < n && d.err == nil; i++ {
			zones = append(zones, decodeZone(d))
		}
		if d.err != nil {
			return nil, d.fail("zones")
		}
		s.zones = zones
		s.mode = Hybrid
	case NonSpatial:
	default:
		return nil, errs.New(errs.ErrCorruptData, "unknown stored mode", "mode", int(mode), "version", version)
	}

	if s.mode == NonSpatial {
		return s, nil
	}
	if version >= 7 {
		n := d.count()
		infos := make(map[int]PageInfo, n)
		for i := 0; i < n && d.err == nil; i++ {
			page := d.i32()
			info := PageInfo{Width: d.i32(), Height: d.i32(), Orientation: Orientation(d.u8())}
			if version >= 8 {
				info.Deskew = d.f64()
			}
			infos[page] = info
		}
		if d.err != nil {
			return nil, d.fail("page infos")
		}
		s.pageInfos = NewPageInfoMap(infos)
	} else {
		s.pageInfos = synthesizePageInfos(s.letters, s.zones)
	}
	if s.mode == Hybrid && len(s.text) == 0 {
		s.DowngradeToNonSpatial()
	}
	return s, nil
}

// decodeText converts stored text to a Go string. Versions before 12 store
// Windows-1252 text.
func decodeText(b []byte, version int) string {
	if version >= 12 {
		if utf8.Valid(b) {
			return string(b)
		}
		return string([]rune(string(b)))
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// recodeLegacyGuesses maps Windows-1252 character codes stored in old
// letters onto Unicode.
func recodeLegacyGuesses(letters []Letter) {
	recode := func(g uint16) uint16 {
		if g < 0x80 || g > 0xFF {
			return g
		}
		return runeToGuess(charmap.Windows1252.DecodeByte(byte(g)))
	}
	for i := range letters {
		letters[i].Guess1 = recode(letters[i].Guess1)
		letters[i].Guess2 = recode(letters[i].Guess2)
		letters[i].Guess3 = recode(letters[i].Guess3)
	}
}

// synthesizePageInfos builds upright page infos for data stored before page
// infos existed, sizing each page to the geometry found on it.
func synthesizePageInfos(letters []Letter, zones []RasterZone) PageInfoMap {
	infos := map[int]PageInfo{}
	grow := func(page, right, bottom int) {
		info := infos[page]
		info.Width = max(info.Width, right)
		info.Height = max(info.Height, bottom)
		infos[page] = info
	}
	for _, l := range letters {
		if l.IsSpatial {
			grow(l.Page(), int(l.Right), int(l.Bottom))
		}
	}
	for _, z := range zones {
		b := z.RectangularBounds()
		grow(z.Page, b.Right, b.Bottom)
	}
	return NewPageInfoMap(infos)
}
