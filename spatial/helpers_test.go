package spatial

import (
	"errors"
	"testing"
	"unicode"

	"github.com/tsawler/spatialtext/model"
)

const (
	testCharWidth  = 10
	testLineHeight = 20
	testCharHeight = 10
)

func testPageInfos(pages ...int) PageInfoMap {
	if len(pages) == 0 {
		pages = []int{1}
	}
	infos := map[int]PageInfo{}
	for _, p := range pages {
		infos[p] = PageInfo{Width: 1000, Height: 1400}
	}
	return NewPageInfoMap(infos)
}

// layoutLetters lays text out in a grid: each character is testCharWidth
// wide, each line testLineHeight below the previous. Whitespace characters
// are non-spatial.
func layoutLetters(text string, page int) []Letter {
	var letters []Letter
	line, col := 0, 0
	for _, r := range text {
		if r == '\n' {
			letters = append(letters, NewLetter(r, page))
			line++
			col = 0
			continue
		}
		if unicode.IsSpace(r) {
			letters = append(letters, NewLetter(r, page))
			col++
			continue
		}
		box := model.Rect{
			Left:   col * testCharWidth,
			Top:    line * testLineHeight,
			Right:  (col + 1) * testCharWidth,
			Bottom: line*testLineHeight + testCharHeight,
		}
		letters = append(letters, NewSpatialLetter(r, box, page))
		col++
	}
	return letters
}

func mustSpatial(t *testing.T, text string, page int) *String {
	t.Helper()
	s, err := NewFromLetters(layoutLetters(text, page), "test.tif", testPageInfos(page))
	if err != nil {
		t.Fatalf("NewFromLetters(%q) error = %v", text, err)
	}
	if s.Mode() != Spatial {
		t.Fatalf("NewFromLetters(%q) mode = %v, want spatial", text, s.Mode())
	}
	return s
}

func mustHybrid(t *testing.T, text string, zones ...RasterZone) *String {
	t.Helper()
	s, err := NewHybrid(zones, text, "test.tif", testPageInfos(1))
	if err != nil {
		t.Fatalf("NewHybrid(%q) error = %v", text, err)
	}
	return s
}

func texts(strs []*String) []string {
	out := make([]string, len(strs))
	for i, s := range strs {
		out[i] = s.Text()
	}
	return out
}

func equalStrings(a, b []string) bool {
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

func assertValid(t *testing.T, s *String) {
	t.Helper()
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
