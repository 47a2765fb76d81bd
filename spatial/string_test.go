package spatial

import (
	"testing"

	"github.com/tsawler/spatialtext/errs"
	"github.com/tsawler/spatialtext/model"
)

// ============================================================================
// Accessor Tests
// ============================================================================

func TestStringAccessors(t *testing.T) {
	s := mustSpatial(t, "Hi there", 1)
	if s.String() != "Hi there" || s.Len() != 8 || s.IsEmpty() {
		t.Errorf("basic accessors wrong: %q %d", s.String(), s.Len())
	}
	if !s.HasSpatialInfo() {
		t.Error("spatial string reports no geometry")
	}
	if _, err := s.RasterZones(); err == nil {
		t.Error("RasterZones() on a spatial string should fail")
	}

	plain := NewNonSpatial("x", "doc.tif")
	_, err := plain.Letters()
	assertErrorIs(t, err, errs.ErrWrongMode)
	_, err = plain.LetterAt(0)
	assertErrorIs(t, err, errs.ErrWrongMode)
	if plain.SourceDocName() != "doc.tif" {
		t.Errorf("SourceDocName() = %q", plain.SourceDocName())
	}
	assertErrorIs(t, plain.SetPageInfos(testPageInfos()), errs.ErrWrongMode)
}

func TestSetLetter(t *testing.T) {
	s := mustSpatial(t, "AB", 1)
	l := NewSpatialLetter('Q', model.Rect{Left: 1, Top: 2, Right: 3, Bottom: 4}, 1)
	if err := s.SetLetter(1, l); err != nil {
		t.Fatal(err)
	}
	if s.Text() != "AQ" {
		t.Errorf("text = %q", s.Text())
	}

	other := NewSpatialLetter('Q', model.Rect{Right: 3, Bottom: 4}, 7)
	assertErrorIs(t, s.SetLetter(0, other), errs.ErrMissingPageInfo)
	if s.Text() != "AQ" {
		t.Error("failed SetLetter changed the text")
	}
}

func TestSetPageInfos(t *testing.T) {
	s := mustSpatial(t, "AB", 1)
	assertErrorIs(t, s.SetPageInfos(testPageInfos(2)), errs.ErrMissingPageInfo)
	if _, ok := s.PageInfo(1); !ok {
		t.Error("failed SetPageInfos replaced the map")
	}
	if err := s.SetPageInfos(testPageInfos(1, 2)); err != nil {
		t.Fatal(err)
	}
}

func TestValidateDetectsLengthMismatch(t *testing.T) {
	s := &String{
		mode:      Spatial,
		text:      []rune("ab"),
		letters:   layoutLetters("a", 1),
		pageInfos: testPageInfos(),
	}
	assertErrorIs(t, s.Validate(), errs.ErrLengthMismatch)
}

func TestCloneIsIndependent(t *testing.T) {
	s := mustSpatial(t, "AB", 1)
	s.SetOCRParameters(map[string]string{"psm": "6"})
	c := s.Clone()
	if !c.Equal(s) {
		t.Fatal("clone differs from source")
	}
	_ = c.SetChar(0, 'Z')
	c.OCRParameters()["psm"] = "3"

	if s.Text() != "AB" {
		t.Error("clone shares text storage")
	}
	if s.OCRParameters()["psm"] != "6" {
		t.Error("clone shares OCR parameters")
	}
	if c.Equal(s) {
		t.Error("Equal() ignores changed characters")
	}
}

func TestMetadata(t *testing.T) {
	s := NewNonSpatial("x", "")
	s.SetDirty(false)
	s.SetOCREngineVersion("5.3.0")
	if s.OCREngineVersion() != "5.3.0" || !s.IsDirty() {
		t.Errorf("engine version %q dirty %v", s.OCREngineVersion(), s.IsDirty())
	}
}

// ============================================================================
// Page Tests
// ============================================================================

func twoPageString(t *testing.T) *String {
	t.Helper()
	s, err := Concat([]*String{mustSpatial(t, "AB", 1), mustSpatial(t, "CD", 2)}, true)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestPageNumbers(t *testing.T) {
	s := twoPageString(t)
	if s.FirstPageNumber() != 1 || s.LastPageNumber() != 2 || !s.IsMultiPage() {
		t.Errorf("pages %v", s.PageNumbers())
	}
	if NewNonSpatial("x", "").FirstPageNumber() != 0 {
		t.Error("non-spatial string should have no first page")
	}
}

func TestSpecifiedPages(t *testing.T) {
	s := twoPageString(t)

	second, err := s.SpecifiedPages(2, -1)
	if err != nil {
		t.Fatal(err)
	}
	if second.Text() != "CD" || second.PageInfos().Len() != 1 {
		t.Errorf("SpecifiedPages(2, -1) = %q with %d page infos", second.Text(), second.PageInfos().Len())
	}

	none, err := s.SpecifiedPages(5, 6)
	if err != nil {
		t.Fatal(err)
	}
	if none.Len() != 0 {
		t.Errorf("SpecifiedPages(5, 6) = %q", none.Text())
	}

	_, err = s.SpecifiedPages(3, 2)
	assertErrorIs(t, err, errs.ErrInvalidArgument)

	pages, err := s.Pages()
	if err != nil {
		t.Fatal(err)
	}
	if got := texts(pages); !equalStrings(got, []string{"AB", "CD"}) {
		t.Errorf("Pages() = %q", got)
	}
}

func twoPageHybrid(t *testing.T, text string) *String {
	t.Helper()
	h, err := NewHybrid([]RasterZone{
		NewRasterZone(0, 10, 100, 10, 11, 1),
		NewRasterZone(0, 10, 100, 10, 11, 2),
	}, text, "", testPageInfos(1, 2))
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestSpecifiedPagesHybrid(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantPage2 string
		wantPages []string
	}{
		{"one part per page", "page one" + PageBreak + "page two", "page two", []string{"page one", "page two"}},
		{"no page break", "two pages", "two pages", []string{"two pages"}},
		{"too many breaks", "a" + PageBreak + "b" + PageBreak + "c", "a" + PageBreak + "b" + PageBreak + "c", []string{"a" + PageBreak + "b" + PageBreak + "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := twoPageHybrid(t, tt.text)
			p2, err := h.SpecifiedPages(2, 2)
			if err != nil {
				t.Fatal(err)
			}
			zones, _ := p2.RasterZones()
			if p2.Text() != tt.wantPage2 || len(zones) != 1 || zones[0].Page != 2 {
				t.Errorf("SpecifiedPages() = %q %v", p2.Text(), zones)
			}

			pages, err := h.Pages()
			if err != nil {
				t.Fatal(err)
			}
			if got := texts(pages); !equalStrings(got, tt.wantPages) {
				t.Errorf("Pages() = %q, want %q", got, tt.wantPages)
			}
			joined, err := Concat(pages, true)
			if err != nil {
				t.Fatal(err)
			}
			if joined.Text() != tt.text {
				t.Errorf("joined pages = %q, want %q", joined.Text(), tt.text)
			}
		})
	}
}

func TestSelectPages(t *testing.T) {
	tests := []struct {
		name  string
		src   *String
		pages []int
		want  string
	}{
		{"spatial repeated", twoPageString(t), []int{2, 1, 2}, "AB" + PageBreak + "CD"},
		{"spatial one", twoPageString(t), []int{2}, "CD"},
		{"hybrid split", twoPageHybrid(t, "one"+PageBreak+"two"), []int{2, 1}, "one" + PageBreak + "two"},
		{"hybrid unsplit", twoPageHybrid(t, "both"), []int{1, 2}, "both"},
		{"missing page", twoPageString(t), []int{9}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.src.SelectPages(tt.pages...)
			if err != nil {
				t.Fatal(err)
			}
			if got.Text() != tt.want {
				t.Errorf("SelectPages(%v) = %q, want %q", tt.pages, got.Text(), tt.want)
			}
		})
	}

	_, err := NewNonSpatial("x", "").SelectPages(1)
	assertErrorIs(t, err, errs.ErrWrongMode)
}

func TestUpdatePageNumber(t *testing.T) {
	s := mustSpatial(t, "AB", 1)
	if err := s.UpdatePageNumber(4); err != nil {
		t.Fatal(err)
	}
	if s.FirstPageNumber() != 4 {
		t.Errorf("page = %d", s.FirstPageNumber())
	}
	if _, ok := s.PageInfo(4); !ok {
		t.Error("page info not moved")
	}

	assertErrorIs(t, twoPageString(t).UpdatePageNumber(3), errs.ErrInvalidArgument)
}

func TestSubString(t *testing.T) {
	s := mustSpatial(t, "AB CD", 1)
	sub, err := s.SubString(1, 4)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Text() != "B C" || sub.Mode() != Spatial || sub.IsDirty() {
		t.Errorf("SubString() = %v %q dirty=%v", sub.Mode(), sub.Text(), sub.IsDirty())
	}

	space, _ := s.SubString(2, 3)
	if space.Mode() != NonSpatial {
		t.Errorf("whitespace-only sub-string mode = %v", space.Mode())
	}

	_, err = s.SubString(3, 9)
	assertErrorIs(t, err, errs.ErrInvalidIndex)
}

// ============================================================================
// Geometry and Statistics Tests
// ============================================================================

func TestBoundsAndOffset(t *testing.T) {
	s := mustSpatial(t, "AB CD\r\nEF", 1)
	b, err := s.OCRImageBounds()
	if err != nil {
		t.Fatal(err)
	}
	if b != (model.Rect{Left: 0, Top: 0, Right: 50, Bottom: 30}) {
		t.Errorf("OCRImageBounds() = %+v", b)
	}

	orig, err := s.OriginalImageBounds()
	if err != nil {
		t.Fatal(err)
	}
	if orig != b {
		t.Errorf("upright page: original bounds %+v differ from %+v", orig, b)
	}

	s.Offset(5, 7)
	if b, _ = s.OCRImageBounds(); b != (model.Rect{Left: 5, Top: 7, Right: 55, Bottom: 37}) {
		t.Errorf("after Offset() = %+v", b)
	}

	_, err = NewNonSpatial("x", "").OCRImageBounds()
	assertErrorIs(t, err, errs.ErrWrongMode)
}

func TestPageBounds(t *testing.T) {
	s, err := Concat([]*String{mustSpatial(t, "AB", 1), mustSpatial(t, "CD\r\nEFG", 2)}, true)
	if err != nil {
		t.Fatal(err)
	}
	h := twoPageHybrid(t, "one"+PageBreak+"two")

	tests := []struct {
		name string
		src  *String
		page int
		want model.Rect
	}{
		{"spatial page 1", s, 1, model.Rect{Left: 0, Top: 0, Right: 20, Bottom: 10}},
		{"spatial page 2", s, 2, model.Rect{Left: 0, Top: 0, Right: 30, Bottom: 30}},
		{"hybrid page 2", h, 2, NewRasterZone(0, 10, 100, 10, 11, 2).RectangularBounds()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.src.OCRImagePageBounds(tt.page)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("OCRImagePageBounds(%d) = %+v, want %+v", tt.page, got, tt.want)
			}
			orig, err := tt.src.OriginalImagePageBounds(tt.page)
			if err != nil {
				t.Fatal(err)
			}
			if orig != got {
				t.Errorf("upright page: original bounds %+v differ from %+v", orig, got)
			}
		})
	}

	_, err = s.OCRImagePageBounds(3)
	assertErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = NewNonSpatial("x", "").OCRImagePageBounds(1)
	assertErrorIs(t, err, errs.ErrWrongMode)
}

func TestTranslatedRasterZones(t *testing.T) {
	h := mustHybrid(t, "x", NewRasterZone(100, 500, 300, 500, 9, 1))
	target := SinglePageInfo(1, PageInfo{Width: 1000, Height: 1400, Orientation: OrientDown})
	zones, err := h.TranslatedRasterZones(target)
	if err != nil {
		t.Fatal(err)
	}
	want := RasterZone{StartX: 700, StartY: 900, EndX: 900, EndY: 900, Height: 9, Page: 1}
	if len(zones) != 1 || zones[0] != want {
		t.Errorf("TranslatedRasterZones() = %v, want %v", zones, want)
	}
}

func TestStatistics(t *testing.T) {
	letters := layoutLetters("AB CD\r\nEF", 1)
	for i := range letters {
		if letters[i].IsSpatial {
			letters[i].CharConfidence = uint8(50 + i)
			letters[i].FontSize = 12
		}
	}
	letters[0].FontSize = 10
	s, err := NewFromLetters(letters, "", testPageInfos())
	if err != nil {
		t.Fatal(err)
	}

	if w, _ := s.AverageCharWidth(); w != testCharWidth {
		t.Errorf("AverageCharWidth() = %d", w)
	}
	if h, _ := s.AverageCharHeight(); h != testCharHeight {
		t.Errorf("AverageCharHeight() = %d", h)
	}
	if h, _ := s.AverageLineHeight(); h != testCharHeight {
		t.Errorf("AverageLineHeight() = %d", h)
	}

	// Spatial letters sit at indexes 0, 1, 3, 4, 7 and 8.
	conf, err := s.CharConfidence()
	if err != nil {
		t.Fatal(err)
	}
	if conf.Min != 50 || conf.Max != 58 || conf.Average != 53 {
		t.Errorf("CharConfidence() = %+v", conf)
	}

	dist, _ := s.FontSizeDistribution()
	if dist[10] != 1 || dist[12] != 5 {
		t.Errorf("FontSizeDistribution() = %v", dist)
	}

	_, err = NewNonSpatial("x", "").AverageCharWidth()
	assertErrorIs(t, err, errs.ErrWrongMode)
}
