package spatial

import (
	"sort"
	"strings"

	"github.com/tsawler/spatialtext/errs"
)

// SubString returns a copy of the characters in [start, end). An end of -1
// means the end of the string.
//
// A Spatial source yields a Spatial result unless no letter in the range is
// spatial. Hybrid strings have no per-character geometry, so a Hybrid
// source yields a Hybrid result with all of the source's zones.
func (s *String) SubString(start, end int) (*String, error) {
	start, end, err := s.checkRange(start, end)
	if err != nil {
		return nil, err
	}

	out := New()
	out.sourceDocName = s.sourceDocName
	out.ocrEngineVersion = s.ocrEngineVersion
	out.ocrParameters = copyParams(s.ocrParameters)

	switch s.mode {
	case Spatial:
		letters := s.letters[start:end]
		if err := out.CreateFromLetters(letters, s.sourceDocName, s.pageInfos.Subset(pagesOf(letters)...)); err != nil {
			return nil, err
		}
	case Hybrid:
		if err := out.CreateHybrid(s.zones, string(s.text[start:end]), s.sourceDocName, s.pageInfos); err != nil {
			return nil, err
		}
	default:
		out.CreateNonSpatial(string(s.text[start:end]), s.sourceDocName)
	}
	out.dirty = false
	return out, nil
}

// PageNumbers returns the distinct pages referenced by spatial letters or
// zones, in ascending order.
func (s *String) PageNumbers() []int {
	seen := map[int]struct{}{}
	switch s.mode {
	case Spatial:
		for _, l := range s.letters {
			if l.IsSpatial {
				seen[l.Page()] = struct{}{}
			}
		}
	case Hybrid:
		for _, z := range s.zones {
			seen[z.Page] = struct{}{}
		}
	}
	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// FirstPageNumber returns the lowest referenced page, or 0 for a string
// without geometry.
func (s *String) FirstPageNumber() int {
	pages := s.PageNumbers()
	if len(pages) == 0 {
		return 0
	}
	return pages[0]
}

// LastPageNumber returns the highest referenced page, or 0 for a string
// without geometry.
func (s *String) LastPageNumber() int {
	pages := s.PageNumbers()
	if len(pages) == 0 {
		return 0
	}
	return pages[len(pages)-1]
}

// IsMultiPage reports whether geometry spans more than one page.
func (s *String) IsMultiPage() bool {
	return len(s.PageNumbers()) > 1
}

// SpecifiedPages returns the part of the string on pages first through last
// inclusive. A last page of -1 means no upper limit. An empty result is
// returned when nothing falls on the requested pages.
//
// Hybrid text is split at page breaks when it holds one part per zone page;
// otherwise the text is kept whole and only the zones are filtered.
func (s *String) SpecifiedPages(first, last int) (*String, error) {
	if s.mode == NonSpatial {
		return nil, s.wrongMode("SpecifiedPages", Spatial, Hybrid)
	}
	if last == -1 {
		last = int(^uint16(0))
	}
	if first < 0 || last < first {
		return nil, errs.New(errs.ErrInvalidArgument, "invalid page range", "first", first, "last", last)
	}
	in := func(p int) bool { return p >= first && p <= last }

	if s.mode == Hybrid {
		return s.hybridPages(in)
	}

	// Separators around the page's letters are not part of the page.
	start, end := -1, -1
	for i, l := range s.letters {
		if l.IsSpatial && in(l.Page()) {
			if start < 0 {
				start = i
			}
			end = i + 1
		}
	}
	if start < 0 {
		return NewNonSpatial("", s.sourceDocName), nil
	}
	var letters []Letter
	for _, l := range s.letters[start:end] {
		if in(l.Page()) {
			letters = append(letters, l)
		}
	}
	return NewFromLetters(letters, s.sourceDocName, s.pageInfos.Subset(pagesOf(letters)...))
}

// Pages splits the string into one string per referenced page. A
// multi-page Hybrid string whose text cannot be split at page breaks is
// returned whole as the only part.
func (s *String) Pages() ([]*String, error) {
	if s.mode == NonSpatial {
		return nil, s.wrongMode("Pages", Spatial, Hybrid)
	}
	if s.mode == Hybrid && s.IsMultiPage() && s.hybridPageTexts() == nil {
		return []*String{s.Clone()}, nil
	}
	var out []*String
	for _, p := range s.PageNumbers() {
		page, err := s.SpecifiedPages(p, p)
		if err != nil {
			return nil, err
		}
		out = append(out, page)
	}
	return out, nil
}

// SelectPages returns the given pages in ascending order, joined with page
// breaks. Repeated pages and pages without geometry are ignored.
func (s *String) SelectPages(pages ...int) (*String, error) {
	if s.mode == NonSpatial {
		return nil, s.wrongMode("SelectPages", Spatial, Hybrid)
	}
	want := make(map[int]bool, len(pages))
	for _, p := range pages {
		want[p] = true
	}
	if s.mode == Hybrid {
		return s.hybridPages(func(p int) bool { return want[p] })
	}

	var parts []*String
	for _, p := range s.PageNumbers() {
		if !want[p] {
			continue
		}
		part, err := s.SpecifiedPages(p, p)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return NewNonSpatial("", s.sourceDocName), nil
	}
	out, err := Concat(parts, true)
	if err != nil {
		return nil, err
	}
	out.sourceDocName = s.sourceDocName
	return out, nil
}

// hybridPages keeps the zones on pages accepted by in, with their part of
// the text when it can be told apart.
func (s *String) hybridPages(in func(int) bool) (*String, error) {
	var zones []RasterZone
	for _, z := range s.zones {
		if in(z.Page) {
			zones = append(zones, z)
		}
	}
	if len(zones) == 0 {
		return NewNonSpatial("", s.sourceDocName), nil
	}

	text := string(s.text)
	if byPage := s.hybridPageTexts(); byPage != nil {
		var parts []string
		for _, p := range s.PageNumbers() {
			if in(p) {
				parts = append(parts, byPage[p])
			}
		}
		text = strings.Join(parts, PageBreak)
	}
	return NewHybrid(zones, text, s.sourceDocName, s.pageInfos.Subset(pagesOfZones(zones)...))
}

// hybridPageTexts maps each zone page to its part of the text when the text
// has exactly one non-empty PageBreak-separated part per page, and returns
// nil otherwise.
func (s *String) hybridPageTexts() map[int]string {
	pages := s.PageNumbers()
	parts := strings.Split(string(s.text), PageBreak)
	if len(pages) < 2 || len(parts) != len(pages) {
		return nil
	}
	out := make(map[int]string, len(pages))
	for i, p := range pages {
		if parts[i] == "" {
			return nil
		}
		out[p] = parts[i]
	}
	return out
}

// UpdatePageNumber moves all geometry of a single-page string to page.
func (s *String) UpdatePageNumber(page int) error {
	if s.mode == NonSpatial {
		return nil
	}
	if page <= 0 || page > int(^uint16(0)) {
		return errs.New(errs.ErrInvalidArgument, "invalid page number", "page", page)
	}
	if s.IsMultiPage() {
		return errs.New(errs.ErrInvalidArgument, "cannot renumber a multi-page string",
			"first_page", s.FirstPageNumber(), "last_page", s.LastPageNumber())
	}
	old := s.FirstPageNumber()
	info, ok := s.pageInfos.Get(old)
	if !ok {
		return errs.New(errs.ErrMissingPageInfo, "no page info for current page", "page", old)
	}
	for i := range s.letters {
		s.letters[i].PageNumber = uint16(page)
	}
	for i := range s.zones {
		s.zones[i].Page = page
	}
	s.pageInfos = SinglePageInfo(page, info)
	s.dirty = true
	return s.validate()
}

func pagesOf(letters []Letter) []int {
	var pages []int
	seen := map[int]bool{}
	for _, l := range letters {
		if l.IsSpatial && !seen[l.Page()] {
			seen[l.Page()] = true
			pages = append(pages, l.Page())
		}
	}
	return pages
}

func pagesOfZones(zones []RasterZone) []int {
	var pages []int
	seen := map[int]bool{}
	for _, z := range zones {
		if !seen[z.Page] {
			seen[z.Page] = true
			pages = append(pages, z.Page)
		}
	}
	return pages
}
