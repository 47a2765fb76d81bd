// Package hocr reads and writes hOCR, the HTML microformat for OCR output.
//
// Reading maps ocr_page, ocr_carea, ocr_par, ocr_line and ocrx_word
// elements onto the letters of a Spatial string. Word boxes come from the
// bbox property and character boxes from x_bboxes or ocrx_cinfo children
// when present. Coordinates in hOCR are original image coordinates; a page
// whose title carries a textangle is converted into upright OCR image
// coordinates. Writing is the reverse and produces one ocrx_word per word.
package hocr

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/spatialtext/errs"
	"github.com/tsawler/spatialtext/internal/logging"
	"github.com/tsawler/spatialtext/model"
	"github.com/tsawler/spatialtext/spatial"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"
)

// Reader gives access to a parsed hOCR document.
type Reader struct {
	doc      *html.Node
	title    string
	metadata map[string]string
	pages    []*html.Node
}

// Open opens an hOCR file for reading.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return OpenReader(f)
}

// OpenReader parses hOCR from r. Input that is not valid UTF-8 is decoded
// according to its meta charset declaration, falling back to Windows-1252.
func OpenReader(r io.Reader) (*Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading hOCR: %w", err)
	}
	if !utf8.Valid(data) {
		enc, name, _ := charset.DetermineEncoding(data, "text/html")
		if data, err = enc.NewDecoder().Bytes(data); err != nil {
			return nil, errs.Wrap(err, errs.ErrCorruptData, "cannot decode hOCR", "charset", name)
		}
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing hOCR: %w", err)
	}

	reader := &Reader{
		doc:      doc,
		metadata: make(map[string]string),
	}
	reader.extractHead(doc)
	reader.findPages(doc)
	if len(reader.pages) == 0 {
		return nil, errs.New(errs.ErrUnsupportedFormat, "no ocr_page elements found")
	}
	return reader, nil
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	return nil
}

// Title returns the document title.
func (r *Reader) Title() string {
	return r.title
}

// Metadata returns the ocr-* meta tags of the document head.
func (r *Reader) Metadata() map[string]string {
	out := make(map[string]string, len(r.metadata))
	for k, v := range r.metadata {
		out[k] = v
	}
	return out
}

// PageCount returns the number of ocr_page elements.
func (r *Reader) PageCount() int {
	return len(r.pages)
}

func (r *Reader) extractHead(n *html.Node) {
	if n.Type == html.ElementNode && n.Data == "head" {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "title":
				r.title = strings.TrimSpace(textContent(c))
			case "meta":
				name, content := attr(c, "name"), attr(c, "content")
				if strings.HasPrefix(name, "ocr-") && content != "" {
					r.metadata[name] = content
				}
			}
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.extractHead(c)
	}
}

func (r *Reader) findPages(n *html.Node) {
	if n.Type == html.ElementNode && hasClass(n, "ocr_page") {
		r.pages = append(r.pages, n)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.findPages(c)
	}
}

// Options controls how a document is converted.
type Options struct {
	// SourceDocName is recorded on the result. When empty, the image named
	// by the first page is used.
	SourceDocName string
}

// String converts the document into a string, joining pages with page
// breaks. Pages are numbered from their ppageno property plus one, or by
// position when it is missing.
func (r *Reader) String(opts Options) (*spatial.String, error) {
	doc := opts.SourceDocName
	var parts []*spatial.String
	for i, n := range r.pages {
		props := ParseTitle(attr(n, "title"))
		if doc == "" && len(props["image"]) > 0 {
			doc = strings.Trim(strings.Join(props["image"], " "), `"`)
		}
		num := i + 1
		if pp := props.Ints("ppageno"); len(pp) > 0 && pp[0] >= 0 {
			num = pp[0] + 1
		}

		b, err := newPageBuilder(num, props)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", num, err)
		}
		if err := b.walk(n); err != nil {
			return nil, fmt.Errorf("page %d: %w", num, err)
		}
		if len(b.letters) == 0 {
			continue
		}
		s, err := spatial.NewFromLetters(b.letters, "", spatial.SinglePageInfo(num, b.info))
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", num, err)
		}
		logging.Component("hocr").WithFields(logrus.Fields{
			"page":    num,
			"letters": len(b.letters),
		}).Debug("read page")
		parts = append(parts, s)
	}

	if len(parts) == 0 {
		return spatial.NewNonSpatial("", doc), nil
	}
	out, err := spatial.Concat(parts, true)
	if err != nil {
		return nil, err
	}
	out.SetSourceDocName(doc)
	out.SetDirty(false)
	return out, nil
}

// ReadFile opens and converts the hOCR file at path.
func ReadFile(path string, opts Options) (*spatial.String, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.String(opts)
}

// Separators, weakest first. A stronger pending separator is never
// replaced by a weaker one.
const (
	sepWord      = " "
	sepLine      = "\r\n"
	sepParagraph = "\r\n\r\n"
)

type pageBuilder struct {
	page    int
	info    spatial.PageInfo
	rotated bool
	letters []spatial.Letter
	pending string
}

func newPageBuilder(page int, props Properties) (*pageBuilder, error) {
	box, ok := props.BBox()
	if !ok {
		return nil, errs.New(errs.ErrMissingPageInfo, "ocr_page has no bbox")
	}
	angle, _ := props.Float("textangle")
	info := spatial.PageInfoFromTextAngle(box.Width(), box.Height(), angle)
	return &pageBuilder{
		page:    page,
		info:    info,
		rotated: info.Orientation != spatial.OrientNone || info.Deskew != 0,
	}, nil
}

func (b *pageBuilder) separate(sep string) {
	if len(b.letters) > 0 && len(sep) > len(b.pending) {
		b.pending = sep
	}
}

// mark sets a flag on the last spatial letter added since from.
func (b *pageBuilder) mark(from int, set func(*spatial.Letter)) {
	for i := len(b.letters) - 1; i >= from; i-- {
		if b.letters[i].IsSpatial {
			set(&b.letters[i])
			return
		}
	}
}

func (b *pageBuilder) walk(n *html.Node) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch {
		case hasClass(c, "ocrx_word"):
			b.separate(sepWord)
			if err := b.word(c); err != nil {
				return err
			}
		case hasClass(c, "ocr_line", "ocrx_line", "ocr_header", "ocr_caption", "ocr_textfloat"):
			b.separate(sepLine)
			if err := b.walk(c); err != nil {
				return err
			}
			b.separate(sepLine)
		case hasClass(c, "ocr_par"):
			b.separate(sepParagraph)
			from := len(b.letters)
			if err := b.walk(c); err != nil {
				return err
			}
			b.mark(from, func(l *spatial.Letter) { l.IsEndOfParagraph = true })
			b.separate(sepParagraph)
		case hasClass(c, "ocr_carea"):
			from := len(b.letters)
			if err := b.walk(c); err != nil {
				return err
			}
			b.mark(from, func(l *spatial.Letter) { l.IsEndOfZone = true })
		default:
			if err := b.walk(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// word adds the letters of an ocrx_word element.
func (b *pageBuilder) word(n *html.Node) error {
	runes := []rune(strings.TrimSpace(norm.NFC.String(textContent(n))))
	if len(runes) == 0 {
		return nil
	}
	props := ParseTitle(attr(n, "title"))
	boxes := charBoxes(n, props, len(runes))

	conf := uint8(spatial.MaxConfidence)
	if c, ok := props.Float("x_wconf"); ok && c >= 0 {
		conf = uint8(min(c, spatial.MaxConfidence))
	}
	size := 0
	if fs, ok := props.Float("x_fsize"); ok && fs > 0 {
		size = int(min(fs, 255))
	}
	var flags spatial.FontFlags
	flags = flags.With(spatial.FontBold, hasDescendant(n, "strong", "b"))
	flags = flags.With(spatial.FontItalic, hasDescendant(n, "em", "i"))

	for _, r := range b.pending {
		b.letters = append(b.letters, spatial.NewLetter(r, b.page))
	}
	b.pending = ""

	for i, r := range runes {
		var l spatial.Letter
		if boxes != nil {
			box := boxes[i]
			if b.rotated {
				var err error
				if box, err = spatial.RectToOCRImage(box, b.info); err != nil {
					return err
				}
			}
			l = spatial.NewSpatialLetter(r, box, b.page)
		} else {
			l = spatial.NewLetter(r, b.page)
		}
		l.CharConfidence = conf
		l.FontSize = uint8(size)
		l.FontFlags = flags
		b.letters = append(b.letters, l)
	}
	return nil
}

// charBoxes returns one box per character: from the word's x_bboxes, from
// ocrx_cinfo children, or by dividing the word box evenly. It returns nil
// when the word has no box.
func charBoxes(n *html.Node, props Properties, count int) []model.Rect {
	if boxes := rects(props.Ints("x_bboxes")); len(boxes) == count {
		return boxes
	}
	var cinfo []model.Rect
	var collect func(*html.Node)
	collect = func(c *html.Node) {
		for ; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && hasClass(c, "ocrx_cinfo") {
				p := ParseTitle(attr(c, "title"))
				if boxes := rects(p.Ints("x_bboxes")); len(boxes) > 0 {
					cinfo = append(cinfo, boxes[0])
				} else if box, ok := p.BBox(); ok {
					cinfo = append(cinfo, box)
				}
				continue
			}
			collect(c.FirstChild)
		}
	}
	collect(n.FirstChild)
	if len(cinfo) == count {
		return cinfo
	}

	box, ok := props.BBox()
	if !ok {
		return nil
	}
	out := make([]model.Rect, count)
	for i := range out {
		out[i] = box
		out[i].Left = box.Left + box.Width()*i/count
		out[i].Right = box.Left + box.Width()*(i+1)/count
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// hasClass reports whether n carries any of the classes.
func hasClass(n *html.Node, classes ...string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		for _, want := range classes {
			if c == want {
				return true
			}
		}
	}
	return false
}

func hasDescendant(n *html.Node, tags ...string) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			for _, t := range tags {
				if c.Data == t {
					return true
				}
			}
			if hasDescendant(c, tags...) {
				return true
			}
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
