package searcher

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
	"github.com/sirupsen/logrus"
	"github.com/tsawler/spatialtext/internal/logging"
	"github.com/tsawler/spatialtext/model"
	"github.com/tsawler/spatialtext/spatial"
)

// Separators put back between letters that were not adjacent in the source.
const (
	wordSeparator      = " "
	lineSeparator      = "\r\n"
	paragraphSeparator = "\r\n\r\n"
)

// resolve fills in region edges at or below zero from the data bounds.
func (s *Searcher) resolve(region Region) model.Rect {
	r := region.Rect
	if r.Left <= 0 {
		r.Left = s.bounds.Left
	}
	if r.Top <= 0 {
		r.Top = s.bounds.Top
	}
	if r.Right <= 0 {
		r.Right = s.bounds.Right
	}
	if r.Bottom <= 0 {
		r.Bottom = s.bounds.Bottom
	}
	return r
}

func onPage(region Region, page int) bool {
	return region.Page == 0 || region.Page == page
}

// matched returns the spatial, non-excluded letters selected by region at
// the configured resolution.
func (s *Searcher) matched(region Region) *roaring.Bitmap {
	query := s.resolve(region)
	out := roaring.New()

	addSpan := func(start, end int) {
		for i := start; i < end; i++ {
			if s.letters[i].IsSpatial && !s.excluded.Contains(uint32(i)) {
				out.Add(uint32(i))
			}
		}
	}

	switch s.config.Resolution {
	case Word:
		search(&s.wordTree, query, func(i int) {
			w := s.words[i]
			if onPage(region, w.Page) && s.config.matches(Classify(w.Bounds, query)) {
				addSpan(w.Start, w.End)
			}
		})
	case Line:
		search(&s.lineTree, query, func(i int) {
			l := s.lines[i]
			if onPage(region, l.Page) && s.config.matches(Classify(l.Bounds, query)) {
				addSpan(l.Start, l.End)
			}
		})
	default:
		search(&s.letterTree, query, func(i int) {
			l := s.letters[i]
			if onPage(region, l.Page()) && s.config.matches(Classify(l.Bounds(), query)) {
				addSpan(i, i+1)
			}
		})
	}
	return out
}

// LetterIndexesInRegion returns the indexes, in string order, of the
// letters matched by region.
func (s *Searcher) LetterIndexesInRegion(region Region) ([]int, error) {
	if !s.initialized {
		return nil, errNotInitialized()
	}
	return toInts(s.matched(region)), nil
}

// DataInRegion returns the matched letters as a new string. With
// extendHeight every letter takes the vertical extent of its line.
func (s *Searcher) DataInRegion(region Region, extendHeight bool) (*spatial.String, error) {
	if !s.initialized {
		return nil, errNotInitialized()
	}
	return s.assemble(toInts(s.matched(region)), extendHeight)
}

// DataOutOfRegion returns the spatial, non-excluded letters that region
// does not match.
func (s *Searcher) DataOutOfRegion(region Region, extendHeight bool) (*spatial.String, error) {
	if !s.initialized {
		return nil, errNotInitialized()
	}
	out := s.available()
	out.AndNot(s.matched(region))
	return s.assemble(toInts(out), extendHeight)
}

// ExcludeDataInRegion hides the letters matched by region from later
// queries and returns how many were newly hidden.
func (s *Searcher) ExcludeDataInRegion(region Region) (int, error) {
	if !s.initialized {
		return 0, errNotInitialized()
	}
	m := s.matched(region)
	before := s.excluded.GetCardinality()
	s.excluded.Or(m)
	return int(s.excluded.GetCardinality() - before), nil
}

// ResetExcludedData makes every letter visible again.
func (s *Searcher) ResetExcludedData() {
	if s.excluded != nil {
		s.excluded.Clear()
	}
}

// ExcludedCount returns the number of hidden letters.
func (s *Searcher) ExcludedCount() int {
	if s.excluded == nil {
		return 0
	}
	return int(s.excluded.GetCardinality())
}

// ExtendDataInRegion matches region and then widens each run of matched
// words by a random count of whole words, between 1 and numWords, on each
// side. Overlapping runs are merged. A numWords below 1 behaves like
// DataInRegion.
func (s *Searcher) ExtendDataInRegion(region Region, numWords int, extendHeight bool) (*spatial.String, error) {
	if !s.initialized {
		return nil, errNotInitialized()
	}
	m := s.matched(region)
	if numWords < 1 || len(s.words) == 0 {
		return s.assemble(toInts(m), extendHeight)
	}

	var wordIdx []int
	seen := map[int]bool{}
	m.Iterate(func(x uint32) bool {
		if w := s.wordOf[x]; w >= 0 && !seen[w] {
			seen[w] = true
			wordIdx = append(wordIdx, w)
		}
		return true
	})
	sort.Ints(wordIdx)

	runs := wordRuns(wordIdx)
	for i := range runs {
		runs[i][0] = max(0, runs[i][0]-(1+s.rnd.Intn(numWords)))
		runs[i][1] = min(len(s.words)-1, runs[i][1]+(1+s.rnd.Intn(numWords)))
	}
	runs = mergeRuns(runs)

	out := m.Clone()
	for _, r := range runs {
		for w := r[0]; w <= r[1]; w++ {
			word := s.words[w]
			for i := word.Start; i < word.End; i++ {
				if s.letters[i].IsSpatial && !s.excluded.Contains(uint32(i)) {
					out.Add(uint32(i))
				}
			}
		}
	}
	logging.Component("searcher").WithFields(logrus.Fields{
		"runs":    len(runs),
		"letters": out.GetCardinality(),
	}).Debug("extended region data by words")
	return s.assemble(toInts(out), extendHeight)
}

// wordRuns groups sorted word indexes into runs of consecutive values.
func wordRuns(idx []int) [][2]int {
	var runs [][2]int
	for _, w := range idx {
		if n := len(runs); n > 0 && runs[n-1][1]+1 == w {
			runs[n-1][1] = w
			continue
		}
		runs = append(runs, [2]int{w, w})
	}
	return runs
}

// mergeRuns joins runs that overlap or touch. Runs must be sorted by start.
func mergeRuns(runs [][2]int) [][2]int {
	var out [][2]int
	for _, r := range runs {
		if n := len(out); n > 0 && r[0] <= out[n-1][1]+1 {
			out[n-1][1] = max(out[n-1][1], r[1])
			continue
		}
		out = append(out, r)
	}
	return out
}

// LeftWord returns the nearest word to the left of region that shares part
// of its vertical extent, or an empty string.
func (s *Searcher) LeftWord(region Region) (*spatial.String, error) {
	return s.nearestWord(region, true)
}

// RightWord returns the nearest word to the right of region that shares
// part of its vertical extent, or an empty string.
func (s *Searcher) RightWord(region Region) (*spatial.String, error) {
	return s.nearestWord(region, false)
}

func (s *Searcher) nearestWord(region Region, left bool) (*spatial.String, error) {
	if !s.initialized {
		return nil, errNotInitialized()
	}
	query := s.resolve(region)
	best, bestDist := -1, 0
	for i, w := range s.words {
		if !onPage(region, w.Page) || w.Bounds.Top >= query.Bottom || w.Bounds.Bottom <= query.Top {
			continue
		}
		var dist int
		if left {
			if w.Bounds.Right > query.Left {
				continue
			}
			dist = query.Left - w.Bounds.Right
		} else {
			if w.Bounds.Left < query.Right {
				continue
			}
			dist = w.Bounds.Left - query.Right
		}
		if best < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return spatial.New(), nil
	}
	w := s.words[best]
	var idx []int
	for i := w.Start; i < w.End; i++ {
		if s.letters[i].IsSpatial && !s.excluded.Contains(uint32(i)) {
			idx = append(idx, i)
		}
	}
	return s.assemble(idx, false)
}

// available returns every spatial letter that is not excluded.
func (s *Searcher) available() *roaring.Bitmap {
	out := roaring.New()
	for i, l := range s.letters {
		if l.IsSpatial {
			out.Add(uint32(i))
		}
	}
	out.AndNot(s.excluded)
	return out
}

// assemble builds a string from letter indexes in ascending order,
// inserting separators where segments were skipped.
func (s *Searcher) assemble(idx []int, extendHeight bool) (*spatial.String, error) {
	if len(idx) == 0 {
		out := spatial.New()
		out.SetSourceDocName(s.source.SourceDocName())
		out.SetDirty(false)
		return out, nil
	}

	var letters []spatial.Letter
	var pages []int
	seenPage := map[int]bool{}
	for n, i := range idx {
		l := s.letters[i]
		if n > 0 {
			prev := s.letters[idx[n-1]]
			if i > idx[n-1]+1 {
				for _, r := range separator(prev, l) {
					letters = append(letters, spatial.NewLetter(r, prev.Page()))
				}
			}
		}
		letter := l.Letter
		if extendHeight && s.lineOf[i] >= 0 {
			b := letter.Bounds()
			line := s.lines[s.lineOf[i]].Bounds
			b.Top, b.Bottom = line.Top, line.Bottom
			letter.SetBounds(b)
		}
		letters = append(letters, letter)
		if !seenPage[l.Page()] {
			seenPage[l.Page()] = true
			pages = append(pages, l.Page())
		}
	}

	out, err := spatial.NewFromLetters(letters, s.source.SourceDocName(), s.pageInfos.Subset(pages...))
	if err != nil {
		return nil, err
	}
	out.SetOCREngineVersion(s.source.OCREngineVersion())
	out.SetDirty(false)
	return out, nil
}

func separator(prev, next LocalLetter) string {
	switch {
	case prev.Paragraph != next.Paragraph:
		return paragraphSeparator
	case prev.Line != next.Line:
		return lineSeparator
	case prev.Word != next.Word:
		return wordSeparator
	}
	return ""
}

func toInts(b *roaring.Bitmap) []int {
	arr := b.ToArray()
	out := make([]int, len(arr))
	for i, v := range arr {
		out[i] = int(v)
	}
	return out
}
