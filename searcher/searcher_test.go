package searcher

import (
	"errors"
	"testing"
	"unicode"

	"github.com/tsawler/spatialtext/errs"
	"github.com/tsawler/spatialtext/model"
	"github.com/tsawler/spatialtext/spatial"
)

// gridString lays text out with 10 unit wide, 10 unit high characters and
// lines 20 units apart. Whitespace is non-spatial.
func gridString(t *testing.T, text string, page int) *spatial.String {
	t.Helper()
	var letters []spatial.Letter
	line, col := 0, 0
	for _, r := range text {
		switch {
		case r == '\n':
			letters = append(letters, spatial.NewLetter(r, page))
			line++
			col = 0
			continue
		case unicode.IsSpace(r):
			letters = append(letters, spatial.NewLetter(r, page))
		default:
			box := model.Rect{Left: col * 10, Top: line * 20, Right: col*10 + 10, Bottom: line*20 + 10}
			letters = append(letters, spatial.NewSpatialLetter(r, box, page))
		}
		col++
	}
	infos := spatial.SinglePageInfo(page, spatial.PageInfo{Width: 1000, Height: 1400})
	s, err := spatial.NewFromLetters(letters, "grid.tif", infos)
	if err != nil {
		t.Fatalf("NewFromLetters() error = %v", err)
	}
	return s
}

func threeLetters(t *testing.T) *spatial.String {
	t.Helper()
	box := func(l int) model.Rect { return model.Rect{Left: l, Top: 0, Right: l + 10, Bottom: 10} }
	letters := []spatial.Letter{
		spatial.NewSpatialLetter('A', box(0), 1),
		spatial.NewSpatialLetter('B', box(20), 1),
		spatial.NewSpatialLetter('C', box(40), 1),
	}
	s, err := spatial.NewFromLetters(letters, "", spatial.SinglePageInfo(1, spatial.PageInfo{Width: 100, Height: 100}))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func mustInit(t *testing.T, cfg Config, s *spatial.String) *Searcher {
	t.Helper()
	srch := NewWithConfig(cfg)
	if err := srch.Init(s, false); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return srch
}

func rect(l, t, r, b int) model.Rect {
	return model.Rect{Left: l, Top: t, Right: r, Bottom: b}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type fixedRand struct {
	pick func(n int) int
}

func (f fixedRand) Intn(n int) int { return f.pick(n) }

// ============================================================================
// Classification Tests
// ============================================================================

func TestClassify(t *testing.T) {
	query := rect(10, 10, 50, 50)
	tests := []struct {
		name string
		box  model.Rect
		want Relation
	}{
		{"apart", rect(60, 60, 70, 70), NotIntersecting},
		{"shared edge", rect(50, 10, 60, 50), Touching},
		{"corner overlap", rect(0, 0, 20, 20), Touching},
		{"covers midpoint", rect(25, 0, 35, 60), Overlapping},
		{"query inside box", rect(0, 0, 100, 100), Contained},
		{"box inside query", rect(20, 20, 30, 30), Contains},
		{"same box", query, Contains},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.box, query); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchPolicy(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		rel    Relation
		want   bool
	}{
		{"boundary touching", Config{IncludeDataOnBoundary: true}, Touching, true},
		{"boundary apart", Config{IncludeDataOnBoundary: true}, NotIntersecting, false},
		{"midpoint touching", Config{UseMidpointsOnly: true, IncludeDataOnBoundary: true}, Touching, false},
		{"midpoint overlapping", Config{UseMidpointsOnly: true}, Overlapping, true},
		{"exclusive contained", Config{}, Contained, false},
		{"exclusive contains", Config{}, Contains, true},
	}
	for _, tt := range tests {
		if got := tt.config.matches(tt.rel); got != tt.want {
			t.Errorf("%s: matches(%v) = %v, want %v", tt.name, tt.rel, got, tt.want)
		}
	}
}

func TestParseResolution(t *testing.T) {
	for name, want := range map[string]Resolution{"": Character, "Word": Word, " line ": Line, "char": Character} {
		got, err := ParseResolution(name)
		if err != nil || got != want {
			t.Errorf("ParseResolution(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseResolution("page"); err == nil {
		t.Error("expected an error for an unknown resolution")
	}
}

// ============================================================================
// Query Tests
// ============================================================================

func TestContainmentScenario(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		query  model.Rect
		want   []int
	}{
		{"boundary inclusive", Config{IncludeDataOnBoundary: true}, rect(15, 0, 35, 10), []int{1}},
		{"midpoints only", Config{UseMidpointsOnly: true}, rect(15, 0, 35, 10), []int{1}},
		{"widened", Config{IncludeDataOnBoundary: true}, rect(0, 0, 50, 10), []int{0, 1, 2}},
		{"partial inclusive", Config{IncludeDataOnBoundary: true}, rect(25, 0, 50, 10), []int{1, 2}},
		{"partial exclusive", Config{}, rect(25, 0, 50, 10), []int{2}},
		{"partial midpoints", Config{UseMidpointsOnly: true}, rect(25, 0, 50, 10), []int{2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srch := mustInit(t, tt.config, threeLetters(t))
			got, err := srch.LetterIndexesInRegion(Region{Rect: tt.query, Page: 1})
			if err != nil {
				t.Fatal(err)
			}
			if !equalInts(got, tt.want) {
				t.Errorf("LetterIndexesInRegion() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolutions(t *testing.T) {
	src := gridString(t, "AB CD\r\nEF", 1)
	query := Region{Rect: rect(32, 2, 38, 8)}
	tests := []struct {
		res  Resolution
		want []int
	}{
		{Character, []int{3}},
		{Word, []int{3, 4}},
		{Line, []int{0, 1, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.res.String(), func(t *testing.T) {
			srch := mustInit(t, Config{IncludeDataOnBoundary: true, Resolution: tt.res}, src)
			got, _ := srch.LetterIndexesInRegion(query)
			if !equalInts(got, tt.want) {
				t.Errorf("LetterIndexesInRegion() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInitNumbersSegments(t *testing.T) {
	srch := mustInit(t, DefaultConfig(), gridString(t, "AB CD\r\nEF", 1))
	letters := srch.Letters()
	if len(letters) != 9 {
		t.Fatalf("len(Letters()) = %d", len(letters))
	}
	if letters[4].Word != 1 || letters[7].Word != 2 || letters[7].Line != 1 {
		t.Errorf("segment numbers: D=%+v E=%+v", letters[4], letters[7])
	}
	if !letters[4].EndOfLine || !letters[1].EndOfWord {
		t.Error("end flags missing")
	}
	if len(srch.Words()) != 3 || len(srch.Lines()) != 2 {
		t.Errorf("words %d lines %d", len(srch.Words()), len(srch.Lines()))
	}
	if b, _ := srch.Bounds(); b != rect(0, 0, 50, 30) {
		t.Errorf("Bounds() = %+v", b)
	}
}

func TestDataInRegionRestoresSeparators(t *testing.T) {
	srch := mustInit(t, DefaultConfig(), gridString(t, "AB CD\r\nEF", 1))
	got, err := srch.DataInRegion(Region{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Text() != "AB CD\r\nEF" || got.Mode() != spatial.Spatial {
		t.Errorf("DataInRegion() = %v %q", got.Mode(), got.Text())
	}
	if got.SourceDocName() != "grid.tif" {
		t.Errorf("SourceDocName() = %q", got.SourceDocName())
	}

	empty, err := srch.DataInRegion(Region{Rect: rect(500, 500, 600, 600)}, false)
	if err != nil {
		t.Fatal(err)
	}
	if empty.Len() != 0 || empty.Mode() != spatial.NonSpatial {
		t.Errorf("empty region = %v %q", empty.Mode(), empty.Text())
	}
}

func TestDataInRegionExtendHeight(t *testing.T) {
	letters := []spatial.Letter{
		spatial.NewSpatialLetter('A', rect(0, 0, 10, 10), 1),
		spatial.NewSpatialLetter('b', rect(10, 4, 20, 10), 1),
	}
	src, err := spatial.NewFromLetters(letters, "", spatial.SinglePageInfo(1, spatial.PageInfo{Width: 100, Height: 100}))
	if err != nil {
		t.Fatal(err)
	}
	srch := mustInit(t, DefaultConfig(), src)
	got, err := srch.DataInRegion(Region{Rect: rect(12, 5, 18, 9)}, true)
	if err != nil {
		t.Fatal(err)
	}
	l, _ := got.LetterAt(0)
	if got.Text() != "b" || l.Bounds() != rect(10, 0, 20, 10) {
		t.Errorf("DataInRegion() = %q %+v", got.Text(), l.Bounds())
	}
}

func TestPageFilter(t *testing.T) {
	p1 := gridString(t, "AB", 1)
	p2 := gridString(t, "CD", 2)
	src, err := spatial.Concat([]*spatial.String{p1, p2}, true)
	if err != nil {
		t.Fatal(err)
	}
	srch := mustInit(t, DefaultConfig(), src)
	got, err := srch.DataInRegion(Region{Page: 2}, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Text() != "CD" || got.FirstPageNumber() != 2 {
		t.Errorf("DataInRegion(page 2) = %q on %v", got.Text(), got.PageNumbers())
	}
	if got.PageInfos().Len() != 1 {
		t.Errorf("result carries %d page infos", got.PageInfos().Len())
	}
}

// ============================================================================
// Exclusion Tests
// ============================================================================

func TestExcludeAndReset(t *testing.T) {
	srch := mustInit(t, DefaultConfig(), gridString(t, "AB CD\r\nEF", 1))
	n, err := srch.ExcludeDataInRegion(Region{Rect: rect(1, 1, 25, 10)})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || srch.ExcludedCount() != 2 {
		t.Errorf("ExcludeDataInRegion() = %d, count %d", n, srch.ExcludedCount())
	}

	rest, _ := srch.DataInRegion(Region{}, false)
	if rest.Text() != "CD\r\nEF" {
		t.Errorf("after exclusion = %q", rest.Text())
	}

	srch.ResetExcludedData()
	all, _ := srch.DataInRegion(Region{}, false)
	if all.Text() != "AB CD\r\nEF" {
		t.Errorf("after reset = %q", all.Text())
	}
}

func TestZeroValueSearcher(t *testing.T) {
	var srch Searcher
	if srch.ExcludedCount() != 0 {
		t.Errorf("ExcludedCount() = %d", srch.ExcludedCount())
	}
	srch.ResetExcludedData()

	if err := srch.Init(gridString(t, "AB CD", 1), false); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	// The zero Config only matches boxes inside the region.
	n, err := srch.ExcludeDataInRegion(Region{Rect: rect(0, 0, 25, 10)})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || srch.ExcludedCount() != 2 {
		t.Errorf("ExcludeDataInRegion() = %d, count %d", n, srch.ExcludedCount())
	}
	if _, err := srch.ExtendDataInRegion(Region{Rect: rect(30, 0, 50, 10)}, 1, false); err != nil {
		t.Errorf("ExtendDataInRegion() error = %v", err)
	}
}

func TestDataOutOfRegion(t *testing.T) {
	srch := mustInit(t, DefaultConfig(), gridString(t, "AB CD\r\nEF", 1))
	got, err := srch.DataOutOfRegion(Region{Rect: rect(1, 1, 25, 10)}, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Text() != "CD\r\nEF" {
		t.Errorf("DataOutOfRegion() = %q", got.Text())
	}
}

func TestReinitDiscardsState(t *testing.T) {
	srch := mustInit(t, DefaultConfig(), gridString(t, "AB", 1))
	if _, err := srch.ExcludeDataInRegion(Region{}); err != nil {
		t.Fatal(err)
	}
	if err := srch.Init(gridString(t, "XYZ", 1), false); err != nil {
		t.Fatal(err)
	}
	if srch.ExcludedCount() != 0 || len(srch.Letters()) != 3 {
		t.Errorf("state kept across Init: %d excluded, %d letters", srch.ExcludedCount(), len(srch.Letters()))
	}
}

// ============================================================================
// Word Expansion Tests
// ============================================================================

func TestExtendDataInRegion(t *testing.T) {
	src := gridString(t, "one two three four five", 1)
	three := Region{Rect: rect(80, 1, 130, 10)}

	tests := []struct {
		name     string
		numWords int
		pick     func(n int) int
		want     string
	}{
		{"no extension", 0, func(int) int { return 0 }, "three"},
		{"one word each side", 3, func(int) int { return 0 }, "two three four"},
		{"maximum extension", 2, func(n int) int { return n - 1 }, "one two three four five"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srch := mustInit(t, DefaultConfig(), src)
			srch.SetRand(fixedRand{pick: tt.pick})
			got, err := srch.ExtendDataInRegion(three, tt.numWords, false)
			if err != nil {
				t.Fatal(err)
			}
			if got.Text() != tt.want {
				t.Errorf("ExtendDataInRegion() = %q, want %q", got.Text(), tt.want)
			}
		})
	}
}

func TestRunHelpers(t *testing.T) {
	runs := wordRuns([]int{1, 2, 4, 7, 8})
	want := [][2]int{{1, 2}, {4, 4}, {7, 8}}
	if len(runs) != len(want) {
		t.Fatalf("wordRuns() = %v", runs)
	}
	for i := range want {
		if runs[i] != want[i] {
			t.Errorf("wordRuns()[%d] = %v, want %v", i, runs[i], want[i])
		}
	}

	merged := mergeRuns([][2]int{{0, 3}, {2, 5}, {6, 6}, {9, 10}})
	if len(merged) != 2 || merged[0] != [2]int{0, 6} || merged[1] != [2]int{9, 10} {
		t.Errorf("mergeRuns() = %v", merged)
	}
}

func TestNearestWords(t *testing.T) {
	srch := mustInit(t, DefaultConfig(), gridString(t, "one two three four five", 1))
	three := Region{Rect: rect(80, 1, 130, 10)}

	left, err := srch.LeftWord(three)
	if err != nil {
		t.Fatal(err)
	}
	right, _ := srch.RightWord(three)
	if left.Text() != "two" || right.Text() != "four" {
		t.Errorf("LeftWord() = %q, RightWord() = %q", left.Text(), right.Text())
	}

	none, _ := srch.LeftWord(Region{Rect: rect(1, 1, 5, 10)})
	if none.Len() != 0 {
		t.Errorf("LeftWord() at the margin = %q", none.Text())
	}
}

// ============================================================================
// Coordinate and Error Tests
// ============================================================================

func TestOriginalCoordinates(t *testing.T) {
	info := spatial.PageInfo{Width: 1000, Height: 1400, Orientation: spatial.OrientDown}
	letters := []spatial.Letter{spatial.NewSpatialLetter('A', rect(0, 0, 10, 20), 1)}
	src, err := spatial.NewFromLetters(letters, "", spatial.SinglePageInfo(1, info))
	if err != nil {
		t.Fatal(err)
	}

	srch := New()
	if err := srch.Init(src, true); err != nil {
		t.Fatal(err)
	}
	got, err := srch.DataInRegion(Region{Rect: rect(980, 1370, 1000, 1400)}, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Text() != "A" {
		t.Fatalf("DataInRegion() = %q", got.Text())
	}
	if pi, _ := got.PageInfo(1); pi.Orientation != spatial.OrientNone {
		t.Errorf("result page info = %v, want upright", pi)
	}
}

func TestErrors(t *testing.T) {
	srch := New()
	if _, err := srch.DataInRegion(Region{}, false); !errors.Is(err, errs.ErrNotInitialized) {
		t.Errorf("DataInRegion() before Init error = %v", err)
	}
	if _, err := srch.Bounds(); !errors.Is(err, errs.ErrNotInitialized) {
		t.Errorf("Bounds() before Init error = %v", err)
	}
	if err := srch.Init(spatial.NewNonSpatial("plain", ""), false); !errors.Is(err, errs.ErrWrongMode) {
		t.Errorf("Init(non-spatial) error = %v", err)
	}
	if srch.IsInitialized() {
		t.Error("failed Init left the searcher initialized")
	}
}
