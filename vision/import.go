// Package vision imports Google Cloud Vision style full-text annotations.
//
// The block, paragraph, word and symbol tree of each page is flattened into
// the letters of a Spatial string. The dominant text direction of a page
// decides its orientation and deskew, and every symbol quadrilateral is
// moved into the coordinates of the upright OCR image that page info
// describes. Detected breaks become spaces and line breaks.
package vision

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/spatialtext/errs"
	"github.com/tsawler/spatialtext/internal/logging"
	"github.com/tsawler/spatialtext/model"
	"github.com/tsawler/spatialtext/spatial"
	"golang.org/x/text/unicode/norm"
)

// Options controls an import.
type Options struct {
	// SourceDocName is recorded on the result.
	SourceDocName string
	// FirstPage is the page number of the first annotated page. Zero
	// means 1.
	FirstPage int
}

// Decode reads an annotation. The input may be a batch response with a
// "responses" array, a single response, or a bare text annotation. Pages of
// all responses are returned in order.
func Decode(r io.Reader) (*TextAnnotation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotation: %w", err)
	}

	var probe struct {
		Responses          json.RawMessage `json:"responses"`
		FullTextAnnotation json.RawMessage `json:"fullTextAnnotation"`
		Pages              json.RawMessage `json:"pages"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, errs.Wrap(err, errs.ErrCorruptData, "annotation is not valid JSON")
	}

	switch {
	case probe.Responses != nil:
		var batch batchResponse
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, errs.Wrap(err, errs.ErrCorruptData, "bad batch response")
		}
		out := &TextAnnotation{}
		for _, resp := range batch.Responses {
			if resp.FullTextAnnotation == nil {
				continue
			}
			out.Pages = append(out.Pages, resp.FullTextAnnotation.Pages...)
			out.Text += resp.FullTextAnnotation.Text
		}
		return out, nil
	case probe.FullTextAnnotation != nil:
		var resp Response
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, errs.Wrap(err, errs.ErrCorruptData, "bad response")
		}
		if resp.FullTextAnnotation == nil {
			return &TextAnnotation{}, nil
		}
		return resp.FullTextAnnotation, nil
	case probe.Pages != nil:
		var ann TextAnnotation
		if err := json.Unmarshal(data, &ann); err != nil {
			return nil, errs.Wrap(err, errs.ErrCorruptData, "bad text annotation")
		}
		return &ann, nil
	}
	return nil, errs.New(errs.ErrUnsupportedFormat, "no full-text annotation found")
}

// ReadFile decodes and imports the annotation stored at path. The path is
// used as the source document name unless opts names one.
func ReadFile(path string, opts Options) (*spatial.String, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation: %w", err)
	}
	defer f.Close()

	ann, err := Decode(f)
	if err != nil {
		return nil, err
	}
	if opts.SourceDocName == "" {
		opts.SourceDocName = path
	}
	return Import(ann, opts)
}

// Import converts an annotation into a string. Pages are joined with page
// breaks. Pages without symbols are skipped; an annotation without any
// symbols yields an empty NonSpatial string.
func Import(ann *TextAnnotation, opts Options) (*spatial.String, error) {
	if ann == nil {
		return nil, errs.New(errs.ErrInvalidArgument, "nil annotation")
	}
	first := opts.FirstPage
	if first == 0 {
		first = 1
	}
	if first < 1 {
		return nil, errs.New(errs.ErrInvalidArgument, "first page must be positive", "first_page", first)
	}

	var parts []*spatial.String
	for i, page := range ann.Pages {
		s, err := importPage(page, first+i, opts.SourceDocName)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", first+i, err)
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

// importPage builds the string of one page, or nil if it has no symbols.
func importPage(page Page, pageNum int, doc string) (*spatial.String, error) {
	width, height := page.Width, page.Height
	if width <= 0 || height <= 0 {
		width, height = extent(page)
	}
	info := spatial.PageInfoFromTextAngle(width, height, textAngle(page))

	var letters []spatial.Letter
	for bi, block := range page.Blocks {
		for pi, para := range block.Paragraphs {
			for _, word := range para.Words {
				for _, sym := range word.Symbols {
					ls, err := symbolLetters(sym, info, pageNum)
					if err != nil {
						return nil, err
					}
					letters = append(letters, ls...)
					letters = appendBreak(letters, sym.breakType(), pageNum)
				}
			}
			endBlock := pi == len(block.Paragraphs)-1
			endPage := endBlock && bi == len(page.Blocks)-1
			letters = endParagraph(letters, endBlock, endPage, pageNum)
		}
	}
	letters = trimTrailingSpace(letters)
	if len(letters) == 0 {
		return nil, nil
	}

	logging.Component("vision").WithFields(logrus.Fields{
		"page":        pageNum,
		"orientation": info.Orientation.String(),
		"deskew":      info.Deskew,
		"letters":     len(letters),
	}).Debug("imported page")

	return spatial.NewFromLetters(letters, doc, spatial.SinglePageInfo(pageNum, info))
}

// textAngle returns the dominant text direction of the page in degrees
// counter-clockwise from horizontal, from the summed baselines of all
// symbols.
func textAngle(page Page) float64 {
	var dx, dy float64
	for _, block := range page.Blocks {
		for _, para := range block.Paragraphs {
			for _, word := range para.Words {
				for _, sym := range word.Symbols {
					q, ok := sym.BoundingBox.quad()
					if !ok {
						continue
					}
					dx += float64(q[1].X - q[0].X)
					dy += float64(q[1].Y - q[0].Y)
				}
			}
		}
	}
	if dx == 0 && dy == 0 {
		return 0
	}
	// Image Y grows downwards. Vertices are whole pixels, so anything past
	// four decimals is noise.
	deg := math.Atan2(-dy, dx) * 180 / math.Pi
	return math.Round(deg*1e4) / 1e4
}

// extent returns the largest vertex coordinates of the page.
func extent(page Page) (int, int) {
	var w, h int
	for _, block := range page.Blocks {
		for _, para := range block.Paragraphs {
			for _, word := range para.Words {
				for _, sym := range word.Symbols {
					if sym.BoundingBox == nil {
						continue
					}
					for _, v := range sym.BoundingBox.Vertices {
						w = max(w, v.X)
						h = max(h, v.Y)
					}
				}
			}
		}
	}
	return w, h
}

// symbolLetters converts one symbol. A symbol whose text holds several
// characters has its box divided evenly between them.
func symbolLetters(sym Symbol, info spatial.PageInfo, page int) ([]spatial.Letter, error) {
	runes := []rune(norm.NFC.String(sym.Text))
	if len(runes) == 0 {
		return nil, nil
	}
	conf := uint8(spatial.MaxConfidence)
	if sym.Confidence > 0 {
		conf = uint8(math.Round(math.Min(sym.Confidence, 1) * 100))
	}

	q, ok := sym.BoundingBox.quad()
	if !ok {
		out := make([]spatial.Letter, len(runes))
		for i, r := range runes {
			out[i] = spatial.NewLetter(r, page)
			out[i].CharConfidence = conf
		}
		return out, nil
	}

	box, err := ocrBox(q, info)
	if err != nil {
		return nil, err
	}
	out := make([]spatial.Letter, len(runes))
	w := box.Width()
	for i, r := range runes {
		b := box
		b.Left = box.Left + w*i/len(runes)
		b.Right = box.Left + w*(i+1)/len(runes)
		out[i] = spatial.NewSpatialLetter(r, b, page)
		out[i].CharConfidence = conf
	}
	return out, nil
}

// ocrBox converts a text quadrilateral in original image coordinates into
// an axis-aligned box in OCR image coordinates.
func ocrBox(q [4]Vertex, info spatial.PageInfo) (model.Rect, error) {
	var cx, cy float64
	for _, v := range q {
		cx += float64(v.X)
		cy += float64(v.Y)
	}
	cx, cy = cx/4, cy/4
	w := math.Hypot(float64(q[1].X-q[0].X), float64(q[1].Y-q[0].Y))
	h := math.Hypot(float64(q[3].X-q[0].X), float64(q[3].Y-q[0].Y))
	// The box handed to the transform is measured along the image axes.
	if info.Orientation.IsSideways() {
		w, h = h, w
	}
	orig := model.Rect{
		Left:   int(math.Round(cx - w/2)),
		Top:    int(math.Round(cy - h/2)),
		Right:  int(math.Round(cx + w/2)),
		Bottom: int(math.Round(cy + h/2)),
	}
	return spatial.RectToOCRImage(orig, info)
}

func appendBreak(letters []spatial.Letter, kind string, page int) []spatial.Letter {
	switch kind {
	case BreakSpace, BreakSureSpace:
		return append(letters, spatial.NewLetter(' ', page))
	case BreakHyphen:
		letters = append(letters, spatial.NewLetter('-', page))
		fallthrough
	case BreakEOLSureSpace, BreakLineBreak:
		return append(letters, spatial.NewLetter('\r', page), spatial.NewLetter('\n', page))
	}
	return letters
}

// endParagraph flags the last spatial letter of a paragraph, and of its
// block, and separates it from the next paragraph with a blank line.
func endParagraph(letters []spatial.Letter, endBlock, endPage bool, page int) []spatial.Letter {
	letters = trimTrailingSpace(letters)
	for i := len(letters) - 1; i >= 0; i-- {
		if letters[i].IsSpatial {
			letters[i].IsEndOfParagraph = true
			letters[i].IsEndOfZone = endBlock
			break
		}
	}
	if endPage || len(letters) == 0 {
		return letters
	}
	for _, r := range "\r\n\r\n" {
		letters = append(letters, spatial.NewLetter(r, page))
	}
	return letters
}

func trimTrailingSpace(letters []spatial.Letter) []spatial.Letter {
	n := len(letters)
	for n > 0 && !letters[n-1].IsSpatial && letters[n-1].IsWhitespace() {
		n--
	}
	return letters[:n]
}
