package spatial

import (
	"fmt"
	"math"
	"sort"

	"github.com/tsawler/spatialtext/errs"
)

// Orientation is the rotation the OCR engine applied to a page image.
type Orientation int

const (
	OrientNone Orientation = iota
	OrientLeft
	OrientDown
	OrientRight
	OrientFlipped
	OrientFlippedLeft
	OrientFlippedDown
	OrientFlippedRight
)

var orientationNames = map[Orientation]string{
	OrientNone:         "none",
	OrientLeft:         "left",
	OrientDown:         "down",
	OrientRight:        "right",
	OrientFlipped:      "flipped",
	OrientFlippedLeft:  "flipped-left",
	OrientFlippedDown:  "flipped-down",
	OrientFlippedRight: "flipped-right",
}

func (o Orientation) String() string {
	if name, ok := orientationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("orientation(%d)", int(o))
}

// IsFlipped reports whether o is one of the mirrored orientations.
func (o Orientation) IsFlipped() bool {
	return o >= OrientFlipped && o <= OrientFlippedRight
}

// IsSideways reports whether o swaps the image axes.
func (o Orientation) IsSideways() bool {
	switch o {
	case OrientLeft, OrientRight, OrientFlippedLeft, OrientFlippedRight:
		return true
	}
	return false
}

// degrees returns the rotation in degrees for an unflipped orientation.
func (o Orientation) degrees() (float64, error) {
	switch o {
	case OrientNone:
		return 0, nil
	case OrientLeft:
		return 90, nil
	case OrientDown:
		return 180, nil
	case OrientRight:
		return 270, nil
	}
	return 0, errs.New(errs.ErrUnsupportedOrientation, "orientation has no rotation angle",
		"orientation", o.String())
}

// OrientationFromDegrees maps a multiple of 90 degrees onto an orientation.
// Other angles are rounded to the nearest quarter turn.
func OrientationFromDegrees(deg float64) Orientation {
	q := int(math.Round(deg/90)) % 4
	if q < 0 {
		q += 4
	}
	return [...]Orientation{OrientNone, OrientLeft, OrientDown, OrientRight}[q]
}

// PageInfo describes one page image: its size in pixels, the orientation the
// OCR engine processed it in and the residual skew in degrees.
type PageInfo struct {
	Width       int
	Height      int
	Orientation Orientation
	Deskew      float64
}

// Theta returns the total rotation relating OCR image coordinates to original
// image coordinates, in radians.
func (p PageInfo) Theta() (float64, error) {
	deg, err := p.Orientation.degrees()
	if err != nil {
		return 0, err
	}
	return (p.Deskew - deg) * math.Pi / 180, nil
}

// OCRImageSize returns the dimensions of the image the OCR engine saw.
func (p PageInfo) OCRImageSize() (width, height int) {
	if p.Orientation.IsSideways() {
		return p.Height, p.Width
	}
	return p.Width, p.Height
}

// SameDimensions reports whether p and other describe the same image size.
func (p PageInfo) SameDimensions(other PageInfo) bool {
	return p.Width == other.Width && p.Height == other.Height
}

// identity returns the page info of the unrotated original image.
func (p PageInfo) identity() PageInfo {
	return PageInfo{Width: p.Width, Height: p.Height}
}

func (p PageInfo) String() string {
	return fmt.Sprintf("%dx%d %s deskew=%.2f", p.Width, p.Height, p.Orientation, p.Deskew)
}

// PageInfoMap maps page numbers to page infos. A PageInfoMap is immutable
// once built, so it can be shared by any number of strings; every method
// that changes content returns a new map.
type PageInfoMap struct {
	m map[int]PageInfo
}

// NewPageInfoMap copies infos into a new map. A nil argument produces an
// empty, non-nil map.
func NewPageInfoMap(infos map[int]PageInfo) PageInfoMap {
	m := make(map[int]PageInfo, len(infos))
	for k, v := range infos {
		m[k] = v
	}
	return PageInfoMap{m: m}
}

// SinglePageInfo is shorthand for a map holding one page.
func SinglePageInfo(page int, info PageInfo) PageInfoMap {
	return PageInfoMap{m: map[int]PageInfo{page: info}}
}

// IsNil reports whether the map was never built.
func (pm PageInfoMap) IsNil() bool {
	return pm.m == nil
}

// Len returns the number of pages.
func (pm PageInfoMap) Len() int {
	return len(pm.m)
}

// Get returns the info for page.
func (pm PageInfoMap) Get(page int) (PageInfo, bool) {
	info, ok := pm.m[page]
	return info, ok
}

// Pages returns the page numbers in ascending order.
func (pm PageInfoMap) Pages() []int {
	pages := make([]int, 0, len(pm.m))
	for p := range pm.m {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// With returns a copy of pm with page set to info.
func (pm PageInfoMap) With(page int, info PageInfo) PageInfoMap {
	out := NewPageInfoMap(pm.m)
	out.m[page] = info
	return out
}

// Subset returns a map holding only the listed pages that are present.
func (pm PageInfoMap) Subset(pages ...int) PageInfoMap {
	out := PageInfoMap{m: make(map[int]PageInfo, len(pages))}
	for _, p := range pages {
		if info, ok := pm.m[p]; ok {
			out.m[p] = info
		}
	}
	return out
}

// Equal reports whether both maps hold the same pages with identical infos.
func (pm PageInfoMap) Equal(other PageInfoMap) bool {
	if len(pm.m) != len(other.m) {
		return false
	}
	for k, v := range pm.m {
		if ov, ok := other.m[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Merge combines pm with other. Pages present in both must have the same
// dimensions. Pages whose dimensions match but whose orientation or deskew
// differ keep pm's info and are returned in translate: data that belongs to
// other on those pages must be re-projected before it is combined with data
// belonging to pm.
func (pm PageInfoMap) Merge(other PageInfoMap) (merged PageInfoMap, translate []int, err error) {
	merged = NewPageInfoMap(pm.m)
	for _, page := range other.Pages() {
		theirs := other.m[page]
		ours, ok := pm.m[page]
		switch {
		case !ok:
			merged.m[page] = theirs
		case ours == theirs:
		case ours.SameDimensions(theirs):
			translate = append(translate, page)
		default:
			return PageInfoMap{}, nil, errs.New(errs.ErrPageDimensionMismatch,
				"cannot merge page infos with different dimensions",
				"page", page,
				"width", ours.Width, "height", ours.Height,
				"other_width", theirs.Width, "other_height", theirs.Height)
		}
	}
	return merged, translate, nil
}
