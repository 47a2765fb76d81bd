package spatial

import (
	"github.com/tsawler/spatialtext/errs"
	"github.com/tsawler/spatialtext/model"
)

// PageBreak separates pages joined by CreateFromSpatialStrings.
const PageBreak = "\r\n\r\n"

// LineBreak separates lines joined by CreateFromLines.
const LineBreak = "\r\n"

// NewNonSpatial returns a NonSpatial string holding text.
func NewNonSpatial(text, sourceDocName string) *String {
	s := New()
	s.CreateNonSpatial(text, sourceDocName)
	return s
}

// NewFromLetters returns a string built from letters. See CreateFromLetters.
func NewFromLetters(letters []Letter, sourceDocName string, pageInfos PageInfoMap) (*String, error) {
	s := New()
	if err := s.CreateFromLetters(letters, sourceDocName, pageInfos); err != nil {
		return nil, err
	}
	return s, nil
}

// NewHybrid returns a Hybrid string. See CreateHybrid.
func NewHybrid(zones []RasterZone, text, sourceDocName string, pageInfos PageInfoMap) (*String, error) {
	s := New()
	if err := s.CreateHybrid(zones, text, sourceDocName, pageInfos); err != nil {
		return nil, err
	}
	return s, nil
}

// NewPseudoSpatial returns a string whose letters are spread over a zone.
// See CreatePseudoSpatial.
func NewPseudoSpatial(zone RasterZone, text, sourceDocName string, pageInfos PageInfoMap) (*String, error) {
	s := New()
	if err := s.CreatePseudoSpatial(zone, text, sourceDocName, pageInfos); err != nil {
		return nil, err
	}
	return s, nil
}

// NewFromLines joins lines. See CreateFromLines.
func NewFromLines(lines []*String) (*String, error) {
	s := New()
	if err := s.CreateFromLines(lines); err != nil {
		return nil, err
	}
	return s, nil
}

// Concat joins strings. See CreateFromSpatialStrings.
func Concat(parts []*String, insertPageBreaks bool) (*String, error) {
	s := New()
	if err := s.CreateFromSpatialStrings(parts, insertPageBreaks); err != nil {
		return nil, err
	}
	return s, nil
}

// CreateNonSpatial replaces the contents with plain text.
func (s *String) CreateNonSpatial(text, sourceDocName string) {
	s.reset()
	s.text = []rune(text)
	s.sourceDocName = sourceDocName
}

// CreateFromLetters replaces the contents with the given letters. The text
// is taken from each letter's character. The result is Spatial when at
// least one letter is spatial and NonSpatial otherwise.
func (s *String) CreateFromLetters(letters []Letter, sourceDocName string, pageInfos PageInfoMap) error {
	s.reset()
	s.sourceDocName = sourceDocName
	if len(letters) == 0 {
		return nil
	}

	text := make([]rune, len(letters))
	anySpatial := false
	for i, l := range letters {
		text[i] = l.Char()
		anySpatial = anySpatial || l.IsSpatial
	}
	s.text = text
	if !anySpatial {
		return nil
	}

	if pageInfos.IsNil() {
		return errs.New(errs.ErrMissingPageInfo, "spatial letters need page infos")
	}
	s.mode = Spatial
	s.letters = append([]Letter(nil), letters...)
	s.pageInfos = pageInfos
	if err := s.validate(); err != nil {
		s.reset()
		return err
	}
	return nil
}

// CreateHybrid replaces the contents with text described by raster zones.
// Empty text produces a NonSpatial string.
func (s *String) CreateHybrid(zones []RasterZone, text, sourceDocName string, pageInfos PageInfoMap) error {
	s.reset()
	s.sourceDocName = sourceDocName
	s.text = []rune(text)
	if len(s.text) == 0 {
		return nil
	}
	if len(zones) == 0 {
		return errs.New(errs.ErrInvalidArgument, "a hybrid string needs at least one raster zone")
	}
	if pageInfos.IsNil() {
		return errs.New(errs.ErrMissingPageInfo, "raster zones need page infos")
	}
	s.mode = Hybrid
	s.zones = appendUniqueZones(nil, zones...)
	s.pageInfos = pageInfos
	if err := s.validate(); err != nil {
		s.reset()
		return err
	}
	return nil
}

// CreatePseudoSpatial replaces the contents with text whose letters are
// distributed evenly over the bounds of zone, one horizontal band per line
// of text. Line break characters become non-spatial letters.
func (s *String) CreatePseudoSpatial(zone RasterZone, text, sourceDocName string, pageInfos PageInfoMap) error {
	runes := []rune(text)
	if len(runes) == 0 {
		s.CreateNonSpatial("", sourceDocName)
		return nil
	}

	bounds := zone.RectangularBounds()
	if info, ok := pageInfos.Get(zone.Page); ok {
		w, h := info.OCRImageSize()
		bounds = bounds.Clip(w, h)
	}

	lines := splitLineRuns(runes)
	letters := make([]Letter, len(runes))
	for i, r := range runes {
		letters[i] = NewLetter(r, zone.Page)
	}
	for li, run := range lines {
		band := model.Rect{
			Left:   bounds.Left,
			Right:  bounds.Right,
			Top:    bounds.Top + bounds.Height()*li/len(lines),
			Bottom: bounds.Top + bounds.Height()*(li+1)/len(lines),
		}
		for i, r := range spreadEvenly(band, run.Len()) {
			letters[run.Start+i].SetBounds(r)
			letters[run.Start+i].IsSpatial = true
		}
	}
	return s.CreateFromLetters(letters, sourceDocName, pageInfos)
}

// CreateFromLines joins lines with CRLF. The result is Spatial only when
// every line is Spatial, Hybrid when any line has geometry, and NonSpatial
// otherwise.
func (s *String) CreateFromLines(lines []*String) error {
	allSpatial := len(lines) > 0
	anyGeometry := false
	for _, l := range lines {
		if l.mode != Spatial {
			allSpatial = false
		}
		if l.mode != NonSpatial {
			anyGeometry = true
		}
	}

	parts := make([]*String, 0, len(lines))
	for _, l := range lines {
		c := l.Clone()
		if anyGeometry && !allSpatial && c.mode == Spatial {
			if err := c.DowngradeToHybrid(); err != nil {
				return err
			}
		}
		parts = append(parts, c)
	}
	return s.join(parts, LineBreak)
}

// CreateFromSpatialStrings joins parts with the same rules as Append,
// optionally separating them with PageBreak.
func (s *String) CreateFromSpatialStrings(parts []*String, insertPageBreaks bool) error {
	sep := ""
	if insertPageBreaks {
		sep = PageBreak
	}
	return s.join(parts, sep)
}

func (s *String) join(parts []*String, sep string) error {
	out := New()
	for i, p := range parts {
		if i > 0 && sep != "" {
			if err := out.AppendString(sep); err != nil {
				return err
			}
		}
		if err := out.Append(p); err != nil {
			return err
		}
		if out.sourceDocName == "" {
			out.sourceDocName = p.sourceDocName
		}
	}

	s.reset()
	s.text = out.text
	s.mode = out.mode
	s.letters = out.letters
	s.zones = out.zones
	s.pageInfos = out.pageInfos
	if out.sourceDocName != "" {
		s.sourceDocName = out.sourceDocName
	}
	return s.validate()
}

// splitLineRuns returns the ranges of text between line break characters.
func splitLineRuns(text []rune) []Range {
	var runs []Range
	start := -1
	for i, r := range text {
		if r == '\r' || r == '\n' {
			if start >= 0 {
				runs = append(runs, Range{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		runs = append(runs, Range{start, len(text)})
	}
	return runs
}

// spreadEvenly divides r horizontally into n adjacent boxes.
func spreadEvenly(r model.Rect, n int) []model.Rect {
	out := make([]model.Rect, n)
	w := r.Width()
	for i := range out {
		out[i] = model.Rect{
			Left:   r.Left + w*i/n,
			Right:  r.Left + w*(i+1)/n,
			Top:    r.Top,
			Bottom: r.Bottom,
		}
	}
	return out
}
