package vision

// Break types reported after a symbol.
const (
	BreakUnknown      = "UNKNOWN"
	BreakSpace        = "SPACE"
	BreakSureSpace    = "SURE_SPACE"
	BreakEOLSureSpace = "EOL_SURE_SPACE"
	BreakHyphen       = "HYPHEN"
	BreakLineBreak    = "LINE_BREAK"
)

// Vertex is a point in pixel coordinates of the original image.
type Vertex struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// BoundingPoly is a quadrilateral. Vertices run clockwise from the top-left
// corner of the text, whatever the text's rotation on the image.
type BoundingPoly struct {
	Vertices []Vertex `json:"vertices"`
}

// DetectedBreak is the separator that follows a symbol.
type DetectedBreak struct {
	Type     string `json:"type"`
	IsPrefix bool   `json:"isPrefix,omitempty"`
}

// TextProperty carries the optional per-element properties.
type TextProperty struct {
	DetectedBreak *DetectedBreak `json:"detectedBreak,omitempty"`
}

// Symbol is a single recognized character.
type Symbol struct {
	Property    *TextProperty `json:"property,omitempty"`
	BoundingBox *BoundingPoly `json:"boundingBox,omitempty"`
	Text        string        `json:"text"`
	Confidence  float64       `json:"confidence,omitempty"`
}

// Word is a run of symbols.
type Word struct {
	Property    *TextProperty `json:"property,omitempty"`
	BoundingBox *BoundingPoly `json:"boundingBox,omitempty"`
	Symbols     []Symbol      `json:"symbols"`
	Confidence  float64       `json:"confidence,omitempty"`
}

// Paragraph is a run of words.
type Paragraph struct {
	BoundingBox *BoundingPoly `json:"boundingBox,omitempty"`
	Words       []Word        `json:"words"`
	Confidence  float64       `json:"confidence,omitempty"`
}

// Block is a logical area of a page.
type Block struct {
	BoundingBox *BoundingPoly `json:"boundingBox,omitempty"`
	Paragraphs  []Paragraph   `json:"paragraphs"`
	BlockType   string        `json:"blockType,omitempty"`
	Confidence  float64       `json:"confidence,omitempty"`
}

// Page is one image of the annotation.
type Page struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Blocks     []Block `json:"blocks"`
	Confidence float64 `json:"confidence,omitempty"`
}

// TextAnnotation is the full-text result for a document.
type TextAnnotation struct {
	Pages []Page `json:"pages"`
	Text  string `json:"text,omitempty"`
}

// Response is a single annotate-image response.
type Response struct {
	FullTextAnnotation *TextAnnotation `json:"fullTextAnnotation,omitempty"`
}

type batchResponse struct {
	Responses []Response `json:"responses"`
}

// quad returns the four corners of p, or false if p has fewer than four.
func (p *BoundingPoly) quad() ([4]Vertex, bool) {
	var q [4]Vertex
	if p == nil || len(p.Vertices) < 4 {
		return q, false
	}
	copy(q[:], p.Vertices[:4])
	return q, true
}

func (s Symbol) breakType() string {
	if s.Property == nil || s.Property.DetectedBreak == nil {
		return ""
	}
	return s.Property.DetectedBreak.Type
}
