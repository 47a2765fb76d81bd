// Package docai imports Google Document AI documents.
//
// Documents are decoded with protojson into the documentaipb model. Each
// page's tokens become spatial letters; the document text between tokens
// supplies spaces and line breaks as non-spatial letters. Paragraph and
// block ends are carried over as letter flags.
package docai

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"unicode"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/sirupsen/logrus"
	"github.com/tsawler/spatialtext/errs"
	"github.com/tsawler/spatialtext/internal/logging"
	"github.com/tsawler/spatialtext/model"
	"github.com/tsawler/spatialtext/spatial"
	"google.golang.org/protobuf/encoding/protojson"
)

// Options controls an import.
type Options struct {
	SourceDocName string
}

// Decode reads a Document AI document in its JSON form. Unknown fields are
// ignored.
func Decode(r io.Reader) (*documentaipb.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	doc := &documentaipb.Document{}
	if err := (protojson.UnmarshalOptions{DiscardUnknown: true}).Unmarshal(data, doc); err != nil {
		return nil, errs.Wrap(err, errs.ErrCorruptData, "document is not valid Document AI JSON")
	}
	return doc, nil
}

// ReadFile decodes and imports the document stored at path.
func ReadFile(path string, opts Options) (*spatial.String, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return nil, err
	}
	if opts.SourceDocName == "" {
		opts.SourceDocName = doc.GetUri()
	}
	if opts.SourceDocName == "" {
		opts.SourceDocName = path
	}
	return Import(doc, opts)
}

// Import converts a document into a string, joining pages with page breaks.
// Pages without tokens are skipped.
func Import(doc *documentaipb.Document, opts Options) (*spatial.String, error) {
	if doc == nil {
		return nil, errs.New(errs.ErrInvalidArgument, "nil document")
	}
	text := []rune(doc.GetText())

	var parts []*spatial.String
	for i, page := range doc.GetPages() {
		num := int(page.GetPageNumber())
		if num <= 0 {
			num = i + 1
		}
		s, err := importPage(page, text, num, opts.SourceDocName)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", num, err)
		}
		if s != nil {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return spatial.NewNonSpatial("", opts.SourceDocName), nil
	}
	return spatial.Concat(parts, true)
}

func importPage(page *documentaipb.Document_Page, text []rune, num int, doc string) (*spatial.String, error) {
	width, height := pageSize(page)
	info := spatial.PageInfo{
		Width:       width,
		Height:      height,
		Orientation: orientation(page.GetLayout().GetOrientation()),
	}

	var letters []spatial.Letter
	// textIndex maps each letter back to its position in the document
	// text, -1 for letters that have none.
	var textIndex []int
	prevEnd := -1
	var prev *documentaipb.Document_Page_Token

	for _, tok := range page.GetTokens() {
		start, end, ok := segment(tok.GetLayout(), len(text))
		if !ok {
			continue
		}
		// Trailing whitespace belongs to the gap before the next token.
		for end > start && unicode.IsSpace(text[end-1]) {
			end--
		}
		if end == start {
			continue
		}

		if prevEnd >= 0 && start > prevEnd {
			for _, r := range gapText(text[prevEnd:start]) {
				letters = append(letters, spatial.NewLetter(r, num))
				textIndex = append(textIndex, -1)
			}
		} else if prevEnd >= 0 {
			letters = appendBreak(letters, &textIndex, prev, num)
		}

		box, err := tokenBox(tok.GetLayout(), page.GetDimension(), info)
		if err != nil {
			return nil, err
		}
		conf := confidence(tok.GetLayout().GetConfidence())
		n := end - start
		for i := start; i < end; i++ {
			var l spatial.Letter
			if box != nil {
				b := *box
				b.Left = box.Left + box.Width()*(i-start)/n
				b.Right = box.Left + box.Width()*(i-start+1)/n
				l = spatial.NewSpatialLetter(text[i], b, num)
			} else {
				l = spatial.NewLetter(text[i], num)
			}
			l.CharConfidence = conf
			letters = append(letters, l)
			textIndex = append(textIndex, i)
		}
		prevEnd, prev = end, tok
	}
	if len(letters) == 0 {
		return nil, nil
	}

	flagEnds(letters, textIndex, page.GetParagraphs(), page.GetBlocks(), len(text))

	logging.Component("docai").WithFields(logrus.Fields{
		"page":        num,
		"orientation": info.Orientation.String(),
		"letters":     len(letters),
	}).Debug("imported page")

	return spatial.NewFromLetters(letters, doc, spatial.SinglePageInfo(num, info))
}

// appendBreak adds the separator reported at the end of tok when the
// document text holds none.
func appendBreak(letters []spatial.Letter, textIndex *[]int, tok *documentaipb.Document_Page_Token, page int) []spatial.Letter {
	var r rune
	switch tok.GetDetectedBreak().GetType() {
	case documentaipb.Document_Page_Token_DetectedBreak_SPACE, documentaipb.Document_Page_Token_DetectedBreak_WIDE_SPACE:
		r = ' '
	case documentaipb.Document_Page_Token_DetectedBreak_HYPHEN:
		r = '-'
	default:
		return letters
	}
	*textIndex = append(*textIndex, -1)
	return append(letters, spatial.NewLetter(r, page))
}

// gapText normalizes the text between two tokens. Bare newlines become
// CRLF pairs.
func gapText(gap []rune) string {
	s := strings.ReplaceAll(string(gap), "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}

// segment returns the span covered by the text segments of a layout,
// clamped to the text.
func segment(layout *documentaipb.Document_Page_Layout, n int) (int, int, bool) {
	segs := layout.GetTextAnchor().GetTextSegments()
	if len(segs) == 0 {
		return 0, 0, false
	}
	start := int(segs[0].GetStartIndex())
	end := int(segs[len(segs)-1].GetEndIndex())
	start = max(0, min(start, n))
	end = max(start, min(end, n))
	return start, end, end > start
}

// tokenBox returns the OCR image box of a token, or nil when the layout has
// no usable polygon.
func tokenBox(layout *documentaipb.Document_Page_Layout, dim *documentaipb.Document_Page_Dimension, info spatial.PageInfo) (*model.Rect, error) {
	poly := layout.GetBoundingPoly()
	var xs, ys []float64
	if vs := poly.GetVertices(); len(vs) > 0 {
		for _, v := range vs {
			xs = append(xs, float64(v.GetX()))
			ys = append(ys, float64(v.GetY()))
		}
	} else if nv := poly.GetNormalizedVertices(); len(nv) > 0 && dim != nil {
		for _, v := range nv {
			xs = append(xs, float64(v.GetX())*float64(dim.GetWidth()))
			ys = append(ys, float64(v.GetY())*float64(dim.GetHeight()))
		}
	}
	if len(xs) == 0 {
		return nil, nil
	}
	sort.Float64s(xs)
	sort.Float64s(ys)
	orig := model.Rect{
		Left:   int(math.Round(xs[0])),
		Top:    int(math.Round(ys[0])),
		Right:  int(math.Round(xs[len(xs)-1])),
		Bottom: int(math.Round(ys[len(ys)-1])),
	}
	r, err := spatial.RectToOCRImage(orig, info)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// flagEnds marks the last letter of each paragraph and block.
func flagEnds(letters []spatial.Letter, textIndex []int, paras []*documentaipb.Document_Page_Paragraph, blocks []*documentaipb.Document_Page_Block, n int) {
	lastBefore := func(end int) int {
		for i := len(letters) - 1; i >= 0; i-- {
			if textIndex[i] >= 0 && textIndex[i] < end {
				return i
			}
		}
		return -1
	}
	for _, p := range paras {
		if _, end, ok := segment(p.GetLayout(), n); ok {
			if i := lastBefore(end); i >= 0 {
				letters[i].IsEndOfParagraph = true
			}
		}
	}
	for _, b := range blocks {
		if _, end, ok := segment(b.GetLayout(), n); ok {
			if i := lastBefore(end); i >= 0 {
				letters[i].IsEndOfZone = true
			}
		}
	}
}

func pageSize(page *documentaipb.Document_Page) (int, int) {
	dim := page.GetDimension()
	if img := page.GetImage(); img != nil && img.GetWidth() > 0 && img.GetHeight() > 0 {
		return int(img.GetWidth()), int(img.GetHeight())
	}
	return int(math.Round(float64(dim.GetWidth()))), int(math.Round(float64(dim.GetHeight())))
}

// orientation maps the detected text orientation of a page onto the
// rotation the page info records.
func orientation(o documentaipb.Document_Page_Layout_Orientation) spatial.Orientation {
	switch o {
	case documentaipb.Document_Page_Layout_PAGE_LEFT:
		return spatial.OrientLeft
	case documentaipb.Document_Page_Layout_PAGE_DOWN:
		return spatial.OrientDown
	case documentaipb.Document_Page_Layout_PAGE_RIGHT:
		return spatial.OrientRight
	}
	return spatial.OrientNone
}

func confidence(c float32) uint8 {
	if c <= 0 {
		return spatial.MaxConfidence
	}
	return uint8(math.Round(math.Min(float64(c), 1) * 100))
}
