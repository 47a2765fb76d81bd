package hocr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tsawler/spatialtext/model"
)

// Properties holds the parsed title attribute of an hOCR element, mapping
// each property name to its values.
type Properties map[string][]string

// ParseTitle splits a title such as "bbox 10 20 30 40; x_wconf 95" into
// its properties.
func ParseTitle(title string) Properties {
	props := Properties{}
	for _, part := range strings.Split(title, ";") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		props[fields[0]] = fields[1:]
	}
	return props
}

// Ints returns the values of name as integers. Values that are not
// numbers are truncated from their float form or skipped.
func (p Properties) Ints(name string) []int {
	var out []int
	for _, v := range p[name] {
		if n, err := strconv.Atoi(v); err == nil {
			out = append(out, n)
			continue
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			out = append(out, int(f))
		}
	}
	return out
}

// Float returns the first value of name as a number.
func (p Properties) Float(name string) (float64, bool) {
	vs := p[name]
	if len(vs) == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(vs[0], 64)
	return f, err == nil
}

// BBox returns the bbox property.
func (p Properties) BBox() (model.Rect, bool) {
	boxes := rects(p.Ints("bbox"))
	if len(boxes) == 0 {
		return model.Rect{}, false
	}
	return boxes[0], true
}

// rects groups coordinates in fours.
func rects(v []int) []model.Rect {
	var out []model.Rect
	for i := 0; i+3 < len(v); i += 4 {
		out = append(out, model.Rect{Left: v[i], Top: v[i+1], Right: v[i+2], Bottom: v[i+3]})
	}
	return out
}

// title is an ordered builder for title attributes.
type title []string

func (t *title) add(name string, values ...any) {
	parts := []string{name}
	for _, v := range values {
		parts = append(parts, fmt.Sprint(v))
	}
	*t = append(*t, strings.Join(parts, " "))
}

func (t *title) bbox(name string, r model.Rect) {
	t.add(name, r.Left, r.Top, r.Right, r.Bottom)
}

func (t title) String() string {
	return strings.Join(t, "; ")
}
