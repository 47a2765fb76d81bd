package searcher

import (
	"math/rand"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/rtree"
	"github.com/tsawler/spatialtext/errs"
	"github.com/tsawler/spatialtext/internal/logging"
	"github.com/tsawler/spatialtext/model"
	"github.com/tsawler/spatialtext/spatial"
)

// LocalLetter is a letter of the searched string together with its
// segment numbering. Bounds are in the searcher's coordinate system.
type LocalLetter struct {
	spatial.Letter

	// Word, Line, Paragraph and Zone number the segments the letter
	// belongs to, counting from zero in string order.
	Word      int
	Line      int
	Paragraph int
	Zone      int

	EndOfWord      bool
	EndOfLine      bool
	EndOfParagraph bool
	EndOfZone      bool
}

// LocalWord is a word with at least one spatial letter.
type LocalWord struct {
	Bounds model.Rect
	Page   int
	// Start and End delimit the word's letters, end exclusive.
	Start int
	End   int
}

// LocalLine is a line with at least one spatial letter.
type LocalLine struct {
	Bounds model.Rect
	Page   int
	Start  int
	End    int
}

// Region is a query rectangle on one page. Page 0 matches every page.
// Edges at or below zero are replaced by the corresponding edge of the
// searched data.
type Region struct {
	Rect model.Rect
	Page int
}

// RandSource supplies the random word counts used by ExtendDataInRegion.
// *rand.Rand satisfies it.
type RandSource interface {
	Intn(n int) int
}

// Searcher indexes the letters of a Spatial string for region queries.
// The zero value is usable and has the zero Config.
type Searcher struct {
	config Config
	rnd    RandSource

	source    *spatial.String
	pageInfos spatial.PageInfoMap
	letters   []LocalLetter
	words     []LocalWord
	lines     []LocalLine
	wordOf    []int // letter index -> word index, -1 if none
	lineOf    []int
	bounds    model.Rect

	letterTree rtree.RTreeG[int]
	wordTree   rtree.RTreeG[int]
	lineTree   rtree.RTreeG[int]
	excluded   *roaring.Bitmap

	initialized bool
}

// New creates a searcher with the default configuration.
func New() *Searcher {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a searcher with a custom configuration.
func NewWithConfig(config Config) *Searcher {
	return &Searcher{
		config:   config,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		excluded: roaring.New(),
	}
}

// Config returns the matching policy.
func (s *Searcher) Config() Config {
	return s.config
}

// SetConfig replaces the matching policy. Zone numbering only changes on
// the next Init.
func (s *Searcher) SetConfig(config Config) {
	s.config = config
}

// SetRand replaces the random source used by ExtendDataInRegion.
func (s *Searcher) SetRand(r RandSource) {
	if r != nil {
		s.rnd = r
	}
}

// IsInitialized reports whether Init has succeeded.
func (s *Searcher) IsInitialized() bool {
	return s.initialized
}

// Init indexes str, discarding any previous state. With useOriginalCoords
// the letters are converted into original image coordinates first, and
// every query and result uses those coordinates.
func (s *Searcher) Init(str *spatial.String, useOriginalCoords bool) error {
	s.reset()
	if str == nil || str.Mode() != spatial.Spatial {
		mode := "nil"
		if str != nil {
			mode = str.Mode().String()
		}
		return errs.New(errs.ErrWrongMode, "searcher needs a spatial string", "mode", mode)
	}

	var letters []spatial.Letter
	var err error
	if useOriginalCoords {
		letters, err = str.OriginalImageLetters()
	} else {
		letters, err = str.Letters()
	}
	if err != nil {
		return err
	}

	s.source = str.Clone()
	s.pageInfos = str.PageInfos()
	if useOriginalCoords {
		s.pageInfos = uprightPageInfos(s.pageInfos)
	}
	s.build(letters, str.AllBoundaries(s.config.TreatGapsAsZoneBoundaries))
	s.assignSegments(str.WordRanges(), str.LineRanges())
	s.index()
	s.initialized = true

	logging.Component("searcher").WithFields(logrus.Fields{
		"letters":  len(s.letters),
		"words":    len(s.words),
		"lines":    len(s.lines),
		"original": useOriginalCoords,
	}).Debug("searcher initialized")
	return nil
}

func (s *Searcher) reset() {
	s.source = nil
	s.pageInfos = spatial.PageInfoMap{}
	s.letters = nil
	s.words = nil
	s.lines = nil
	s.wordOf = nil
	s.lineOf = nil
	s.bounds = model.Rect{}
	s.letterTree = rtree.RTreeG[int]{}
	s.wordTree = rtree.RTreeG[int]{}
	s.lineTree = rtree.RTreeG[int]{}
	if s.excluded == nil {
		s.excluded = roaring.New()
	}
	s.excluded.Clear()
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s.initialized = false
}

// build numbers the segments of each letter in one pass and accumulates
// the bounds of the spatial letters.
func (s *Searcher) build(letters []spatial.Letter, flags []spatial.Boundaries) {
	s.letters = make([]LocalLetter, len(letters))
	var word, line, para, zone int
	first := true
	for i, l := range letters {
		f := flags[i]
		s.letters[i] = LocalLetter{
			Letter:         l,
			Word:           word,
			Line:           line,
			Paragraph:      para,
			Zone:           zone,
			EndOfWord:      f.Word,
			EndOfLine:      f.Line,
			EndOfParagraph: f.Paragraph,
			EndOfZone:      f.Zone,
		}
		if f.Word {
			word++
		}
		if f.Line {
			line++
		}
		if f.Paragraph {
			para++
		}
		if f.Zone {
			zone++
		}

		if !l.IsSpatial {
			continue
		}
		if first {
			s.bounds = l.Bounds()
			first = false
		} else {
			s.bounds = s.bounds.Union(l.Bounds())
		}
	}
}

// assignSegments builds words and lines from character ranges, keeping
// only those with a spatial letter.
func (s *Searcher) assignSegments(wordRanges, lineRanges []spatial.Range) {
	s.wordOf = filled(len(s.letters), -1)
	s.lineOf = filled(len(s.letters), -1)
	for _, r := range wordRanges {
		if b, page, ok := s.spanBounds(r); ok {
			for i := r.Start; i < r.End; i++ {
				s.wordOf[i] = len(s.words)
			}
			s.words = append(s.words, LocalWord{Bounds: b, Page: page, Start: r.Start, End: r.End})
		}
	}
	for _, r := range lineRanges {
		if b, page, ok := s.spanBounds(r); ok {
			for i := r.Start; i < r.End; i++ {
				s.lineOf[i] = len(s.lines)
			}
			s.lines = append(s.lines, LocalLine{Bounds: b, Page: page, Start: r.Start, End: r.End})
		}
	}
}

func (s *Searcher) spanBounds(r spatial.Range) (model.Rect, int, bool) {
	var out model.Rect
	page, found := 0, false
	for _, l := range s.letters[r.Start:r.End] {
		if !l.IsSpatial {
			continue
		}
		if !found {
			out = l.Bounds()
			page = l.Page()
			found = true
			continue
		}
		out = out.Union(l.Bounds())
	}
	return out, page, found
}

func (s *Searcher) index() {
	for i, l := range s.letters {
		if l.IsSpatial {
			insert(&s.letterTree, l.Bounds(), i)
		}
	}
	for i, w := range s.words {
		insert(&s.wordTree, w.Bounds, i)
	}
	for i, l := range s.lines {
		insert(&s.lineTree, l.Bounds, i)
	}
}

func insert(tr *rtree.RTreeG[int], r model.Rect, v int) {
	tr.Insert(
		[2]float64{float64(r.Left), float64(r.Top)},
		[2]float64{float64(r.Right), float64(r.Bottom)},
		v,
	)
}

// search calls fn with every item of tr whose box intersects r.
func search(tr *rtree.RTreeG[int], r model.Rect, fn func(int)) {
	tr.Search(
		[2]float64{float64(r.Left), float64(r.Top)},
		[2]float64{float64(r.Right), float64(r.Bottom)},
		func(_, _ [2]float64, v int) bool {
			fn(v)
			return true
		},
	)
}

// Letters returns the indexed letters. The slice must not be modified.
func (s *Searcher) Letters() []LocalLetter {
	return s.letters
}

// Words returns the derived words.
func (s *Searcher) Words() []LocalWord {
	return s.words
}

// Lines returns the derived lines.
func (s *Searcher) Lines() []LocalLine {
	return s.lines
}

// Bounds returns the box enclosing all spatial letters.
func (s *Searcher) Bounds() (model.Rect, error) {
	if !s.initialized {
		return model.Rect{}, errNotInitialized()
	}
	return s.bounds, nil
}

func errNotInitialized() error {
	return errs.New(errs.ErrNotInitialized, "searcher has not been initialized")
}

// uprightPageInfos describes the original images: same size, no rotation.
func uprightPageInfos(pm spatial.PageInfoMap) spatial.PageInfoMap {
	infos := make(map[int]spatial.PageInfo, pm.Len())
	for _, p := range pm.Pages() {
		info, _ := pm.Get(p)
		infos[p] = spatial.PageInfo{Width: info.Width, Height: info.Height}
	}
	return spatial.NewPageInfoMap(infos)
}

func filled(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}
