package hocr

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/tsawler/spatialtext/errs"
	"github.com/tsawler/spatialtext/model"
	"github.com/tsawler/spatialtext/spatial"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// System is written as the ocr-system of generated documents.
const System = "spatialtext"

// WriteOptions controls Write.
type WriteOptions struct {
	// Title is the document title. Empty means the source document name.
	Title string
	// TreatGapsAsZoneBoundaries splits content areas at wide gaps.
	TreatGapsAsZoneBoundaries bool
}

// Write renders a Spatial string as hOCR. Coordinates are written in
// original image coordinates and each page records the text angle of its
// page info, so reading the output back reproduces the letter boxes.
func Write(w io.Writer, s *spatial.String, opts WriteOptions) error {
	if s.Mode() != spatial.Spatial {
		return errs.New(errs.ErrWrongMode, "hOCR output needs a spatial string", "mode", s.Mode().String())
	}
	title := opts.Title
	if title == "" {
		title = s.SourceDocName()
	}

	pages, err := s.Pages()
	if err != nil {
		return err
	}

	body := element(atom.Body)
	for _, p := range pages {
		page, err := pageNode(p, s.SourceDocName(), opts)
		if err != nil {
			return err
		}
		body.AppendChild(page)
	}

	head := element(atom.Head)
	t := element(atom.Title)
	t.AppendChild(&html.Node{Type: html.TextNode, Data: title})
	head.AppendChild(t)
	head.AppendChild(element(atom.Meta, "http-equiv", "Content-Type", "content", "text/html; charset=utf-8"))
	head.AppendChild(element(atom.Meta, "name", "ocr-system", "content", System))
	head.AppendChild(element(atom.Meta, "name", "ocr-capabilities", "content", "ocr_page ocr_carea ocr_par ocr_line ocrx_word"))
	head.AppendChild(element(atom.Meta, "name", "ocr-number-of-pages", "content", strconv.Itoa(len(pages))))

	root := element(atom.Html)
	root.AppendChild(head)
	root.AppendChild(body)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(root)
	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("rendering hOCR: %w", err)
	}
	return nil
}

func pageNode(p *spatial.String, image string, opts WriteOptions) (*html.Node, error) {
	num := p.FirstPageNumber()
	info, ok := p.PageInfo(num)
	if !ok {
		return nil, errs.New(errs.ErrMissingPageInfo, "page has no page info", "page", num)
	}
	theta, err := info.Theta()
	if err != nil {
		return nil, err
	}
	letters, err := p.OriginalImageLetters()
	if err != nil {
		return nil, err
	}

	var t title
	if image != "" {
		t.add("image", strconv.Quote(image))
	}
	t.bbox("bbox", model.Rect{Right: info.Width, Bottom: info.Height})
	t.add("ppageno", num-1)
	// Theta is the rotation from OCR image to original image coordinates;
	// the text angle is its opposite.
	if angle := -theta * 180 / math.Pi; angle != 0 {
		t.add("textangle", strconv.FormatFloat(normalizeAngle(angle), 'f', -1, 64))
	}
	page := element(atom.Div, "class", "ocr_page", "id", fmt.Sprintf("page_%d", num), "title", t.String())

	text := p.Runes()
	var nPar, nLine, nWord int
	for ai, zone := range p.ZoneRanges(opts.TreatGapsAsZoneBoundaries) {
		area := element(atom.Div, "class", "ocr_carea", "id", fmt.Sprintf("block_%d_%d", num, ai+1))
		for _, par := range within(zone, p.ParagraphRanges()) {
			nPar++
			pn := element(atom.P, "class", "ocr_par", "id", fmt.Sprintf("par_%d_%d", num, nPar))
			for _, line := range within(par, p.LineRanges()) {
				nLine++
				ln := element(atom.Span, "class", "ocr_line", "id", fmt.Sprintf("line_%d_%d", num, nLine))
				for _, word := range within(line, p.WordRanges()) {
					nWord++
					ln.AppendChild(wordNode(fmt.Sprintf("word_%d_%d", num, nWord), text, letters, word))
					ln.AppendChild(&html.Node{Type: html.TextNode, Data: " "})
				}
				setTitle(ln, letters, line)
				if ln.FirstChild != nil {
					pn.AppendChild(ln)
				}
			}
			setTitle(pn, letters, par)
			if pn.FirstChild != nil {
				area.AppendChild(pn)
			}
		}
		setTitle(area, letters, zone)
		if area.FirstChild != nil {
			page.AppendChild(area)
		}
	}
	return page, nil
}

func wordNode(id string, text []rune, letters []spatial.Letter, r spatial.Range) *html.Node {
	n := element(atom.Span, "class", "ocrx_word", "id", id)
	var t title
	var boxes []int
	bounds, found := model.Rect{}, false
	conf, spatialCount := 0, 0
	for i := r.Start; i < r.End; i++ {
		l := letters[i]
		if !l.IsSpatial {
			continue
		}
		b := l.Bounds()
		if !found {
			bounds, found = b, true
		} else {
			bounds = bounds.Union(b)
		}
		boxes = append(boxes, b.Left, b.Top, b.Right, b.Bottom)
		conf += int(l.CharConfidence)
		spatialCount++
	}
	if found {
		t.bbox("bbox", bounds)
		t.add("x_wconf", conf/spatialCount)
		if spatialCount == r.Len() {
			vals := make([]any, len(boxes))
			for i, v := range boxes {
				vals[i] = v
			}
			t.add("x_bboxes", vals...)
		}
	}
	if fs := letters[r.Start].FontSize; fs > 0 {
		t.add("x_fsize", fs)
	}
	if len(t) > 0 {
		n.Attr = append(n.Attr, html.Attribute{Key: "title", Val: t.String()})
	}

	content := &html.Node{Type: html.TextNode, Data: string(text[r.Start:r.End])}
	flags := letters[r.Start].FontFlags
	parent := n
	if flags.Has(spatial.FontBold) {
		strong := element(atom.Strong)
		parent.AppendChild(strong)
		parent = strong
	}
	if flags.Has(spatial.FontItalic) {
		em := element(atom.Em)
		parent.AppendChild(em)
		parent = em
	}
	parent.AppendChild(content)
	return n
}

// setTitle gives n the bbox of the spatial letters in r.
func setTitle(n *html.Node, letters []spatial.Letter, r spatial.Range) {
	bounds, found := model.Rect{}, false
	for i := r.Start; i < r.End; i++ {
		if !letters[i].IsSpatial {
			continue
		}
		if !found {
			bounds, found = letters[i].Bounds(), true
			continue
		}
		bounds = bounds.Union(letters[i].Bounds())
	}
	if !found {
		return
	}
	var t title
	t.bbox("bbox", bounds)
	n.Attr = append(n.Attr, html.Attribute{Key: "title", Val: t.String()})
}

// within clips the ranges that overlap outer to outer.
func within(outer spatial.Range, ranges []spatial.Range) []spatial.Range {
	var out []spatial.Range
	for _, r := range ranges {
		start, end := max(r.Start, outer.Start), min(r.End, outer.End)
		if start < end {
			out = append(out, spatial.Range{Start: start, End: end})
		}
	}
	return out
}

// normalizeAngle maps an angle in degrees into [0, 360).
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return math.Round(a*1e6) / 1e6
}

// element creates an element node with alternating attribute keys and
// values.
func element(a atom.Atom, kv ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return n
}
