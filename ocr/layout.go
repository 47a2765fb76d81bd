package ocr

import (
	"math"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/spatialtext/errs"
	"github.com/tsawler/spatialtext/internal/logging"
	"github.com/tsawler/spatialtext/model"
	"github.com/tsawler/spatialtext/spatial"
	"golang.org/x/text/unicode/norm"
)

// PageSegMode represents page segmentation modes for OCR.
// These control how Tesseract analyzes the page layout.
type PageSegMode int

// Page segmentation modes, numbered as Tesseract numbers them.
const (
	PSM_OSD_ONLY               PageSegMode = 0  // Orientation and script detection only
	PSM_AUTO_OSD               PageSegMode = 1  // Automatic with OSD
	PSM_AUTO_ONLY              PageSegMode = 2  // Automatic, no OSD or OCR
	PSM_AUTO                   PageSegMode = 3  // Fully automatic (default)
	PSM_SINGLE_COLUMN          PageSegMode = 4  // Single column of variable sizes
	PSM_SINGLE_BLOCK_VERT_TEXT PageSegMode = 5  // Single uniform block of vertically aligned text
	PSM_SINGLE_BLOCK           PageSegMode = 6  // Single uniform block of text
	PSM_SINGLE_LINE            PageSegMode = 7  // Single text line
	PSM_SINGLE_WORD            PageSegMode = 8  // Single word
	PSM_CIRCLE_WORD            PageSegMode = 9  // Single word in a circle
	PSM_SINGLE_CHAR            PageSegMode = 10 // Single character
	PSM_SPARSE_TEXT            PageSegMode = 11 // Find as much text as possible
	PSM_SPARSE_TEXT_OSD        PageSegMode = 12 // Sparse text with OSD
	PSM_RAW_LINE               PageSegMode = 13 // Treat image as single text line
)

// Options controls recognition.
type Options struct {
	// SourceDocName is recorded on the result.
	SourceDocName string
	// Page is the page number of the image. Zero means 1.
	Page int
	// PageInfo describes the image. A zero value means the image size of an
	// upright page.
	PageInfo spatial.PageInfo
}

// Box is a recognized piece of text and its image rectangle. Confidence
// runs from 0 to 100.
type Box struct {
	Text       string
	Rect       model.Rect
	Confidence float64
}

// Word is a recognized word with its position in the page layout.
type Word struct {
	Box
	Block, Par, Line, Word int
}

// Symbol is a recognized character with the layout position of its word.
type Symbol struct {
	Box
	Block, Par, Line, Word int
}

// Layout gives each symbol the layout position of the word containing its
// center. Symbols and words are both in reading order. Without symbols the
// words are split into evenly sized characters.
func Layout(words []Word, symbols []Box) []Symbol {
	if len(symbols) == 0 {
		return splitWords(words)
	}
	out := make([]Symbol, len(symbols))
	w := 0
	for i, sym := range symbols {
		out[i].Box = sym
		if len(words) == 0 {
			continue
		}
		c := sym.Rect.Center()
		for j := w; j < len(words); j++ {
			if words[j].Rect.Contains(c) {
				w = j
				break
			}
		}
		out[i].Block, out[i].Par, out[i].Line, out[i].Word = words[w].Block, words[w].Par, words[w].Line, words[w].Word
	}
	return out
}

func splitWords(words []Word) []Symbol {
	var out []Symbol
	for _, w := range words {
		runes := []rune(w.Text)
		width := w.Rect.Width()
		for i, r := range runes {
			b := w.Rect
			b.Left = w.Rect.Left + width*i/len(runes)
			b.Right = w.Rect.Left + width*(i+1)/len(runes)
			out = append(out, Symbol{
				Box:   Box{Text: string(r), Rect: b, Confidence: w.Confidence},
				Block: w.Block, Par: w.Par, Line: w.Line, Word: w.Word,
			})
		}
	}
	return out
}

// FromSymbols builds the Spatial string of one page. A change of word adds
// a space, a change of line a line break and a change of paragraph or block
// a blank line. The last letter of each paragraph and block is flagged.
func FromSymbols(symbols []Symbol, opts Options) (*spatial.String, error) {
	page := opts.Page
	if page == 0 {
		page = 1
	}
	if page < 0 {
		return nil, errs.New(errs.ErrInvalidArgument, "page must be positive", "page", page)
	}
	info := opts.PageInfo
	if info.Width <= 0 || info.Height <= 0 {
		info.Width, info.Height = extent(symbols)
	}

	var letters []spatial.Letter
	for i, sym := range symbols {
		if i > 0 {
			prev := symbols[i-1]
			switch {
			case prev.Block != sym.Block:
				letters = endParagraph(letters, true, page)
			case prev.Par != sym.Par:
				letters = endParagraph(letters, false, page)
			case prev.Line != sym.Line:
				letters = append(letters, spatial.NewLetter('\r', page), spatial.NewLetter('\n', page))
			case prev.Word != sym.Word:
				letters = append(letters, spatial.NewLetter(' ', page))
			}
		}
		letters = append(letters, symbolLetters(sym, page)...)
	}
	if len(letters) == 0 {
		return spatial.NewNonSpatial("", opts.SourceDocName), nil
	}
	flagLast(letters, true)

	logging.Component("ocr").WithFields(logrus.Fields{
		"page":    page,
		"symbols": len(symbols),
		"letters": len(letters),
	}).Debug("built page from symbols")

	return spatial.NewFromLetters(letters, opts.SourceDocName, spatial.SinglePageInfo(page, info))
}

func symbolLetters(sym Symbol, page int) []spatial.Letter {
	runes := []rune(norm.NFC.String(sym.Text))
	conf := uint8(math.Round(math.Max(0, math.Min(sym.Confidence, spatial.MaxConfidence))))
	out := make([]spatial.Letter, len(runes))
	w := sym.Rect.Width()
	for i, r := range runes {
		if sym.Rect.IsEmpty() {
			out[i] = spatial.NewLetter(r, page)
		} else {
			b := sym.Rect
			b.Left = sym.Rect.Left + w*i/len(runes)
			b.Right = sym.Rect.Left + w*(i+1)/len(runes)
			out[i] = spatial.NewSpatialLetter(r, b, page)
		}
		out[i].CharConfidence = conf
	}
	return out
}

func endParagraph(letters []spatial.Letter, endZone bool, page int) []spatial.Letter {
	if !flagLast(letters, endZone) {
		return letters
	}
	for _, r := range spatial.PageBreak {
		letters = append(letters, spatial.NewLetter(r, page))
	}
	return letters
}

// flagLast marks the last spatial letter as ending a paragraph and reports
// whether there was one.
func flagLast(letters []spatial.Letter, endZone bool) bool {
	for i := len(letters) - 1; i >= 0; i-- {
		if letters[i].IsSpatial {
			letters[i].IsEndOfParagraph = true
			letters[i].IsEndOfZone = letters[i].IsEndOfZone || endZone
			return true
		}
	}
	return false
}

func extent(symbols []Symbol) (int, int) {
	var w, h int
	for _, s := range symbols {
		w = max(w, s.Rect.Right)
		h = max(h, s.Rect.Bottom)
	}
	return w, h
}
