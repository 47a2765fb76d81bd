package spatial

import (
	"math"

	"github.com/tsawler/spatialtext/model"
)

// minTranslatedLength is the shortest centerline a translated zone may have.
const minTranslatedLength = 3

// frame describes a page coordinate system centered on its image.
type frame struct {
	cx, cy float64 // image center in top-left coordinates
	theta  float64
}

func newFrame(info PageInfo, theta float64) frame {
	w, h := info.OCRImageSize()
	return frame{cx: float64(w) / 2, cy: float64(h) / 2, theta: theta}
}

// pageTransform converts points from one page coordinate system to another.
type pageTransform struct {
	from, to frame
	rot      model.Matrix
	netTheta float64
	destW    int
	destH    int
}

// newPageTransform prepares a conversion of coordinates relative to old into
// coordinates relative to dest. A nil dest means the original image.
func newPageTransform(old PageInfo, dest *PageInfo) (*pageTransform, error) {
	oldTheta, err := old.Theta()
	if err != nil {
		return nil, err
	}
	target := old.identity()
	newTheta := 0.0
	if dest != nil {
		target = *dest
		if newTheta, err = dest.Theta(); err != nil {
			return nil, err
		}
	}
	t := &pageTransform{
		from:     newFrame(old, oldTheta),
		to:       newFrame(target, newTheta),
		netTheta: newTheta - oldTheta,
	}
	t.destW, t.destH = target.OCRImageSize()
	t.rot = model.Rotate(t.netTheta)
	return t, nil
}

// toCartesian moves p into a Y-up system centered on the source image.
func (t *pageTransform) toCartesian(p model.Point) model.Point {
	return model.Point{X: p.X - t.from.cx, Y: t.from.cy - p.Y}
}

// fromCartesian moves p from the centered Y-up system of the destination
// back into top-left image coordinates.
func (t *pageTransform) fromCartesian(p model.Point) model.Point {
	return model.Point{X: p.X + t.to.cx, Y: t.to.cy - p.Y}
}

// point converts a single point without any clamping.
func (t *pageTransform) point(p model.Point) model.Point {
	return t.fromCartesian(t.rot.Transform(t.toCartesian(p)))
}

// segment converts the endpoints of a line, keeping both inside the
// destination image.
func (t *pageTransform) segment(p1, p2 model.Point) (model.Point, model.Point) {
	a := t.rot.Transform(t.toCartesian(p1))
	b := t.rot.Transform(t.toCartesian(p2))
	a, b = fitPointsWithinBounds(a, b, t.to.cx, t.to.cy)
	return t.fromCartesian(a), t.fromCartesian(b)
}

// quarterTurned reports whether the net rotation is closer to a quarter turn
// than to a half or full turn.
func (t *pageTransform) quarterTurned() bool {
	return math.Abs(math.Sin(t.netTheta)) > math.Abs(math.Cos(t.netTheta))
}

// zone converts a raster zone. Endpoints are ordered left to right, then top
// to bottom, so the result never describes a reversed rectangle.
func (t *pageTransform) zone(z RasterZone) RasterZone {
	s, e := t.segment(z.Start(), z.End())
	out := RasterZone{
		StartX: int(math.Round(s.X)),
		StartY: int(math.Round(s.Y)),
		EndX:   int(math.Round(e.X)),
		EndY:   int(math.Round(e.Y)),
		Height: z.Height,
		Page:   z.Page,
	}
	if out.StartX > out.EndX || (out.StartX == out.EndX && out.StartY > out.EndY) {
		out.StartX, out.EndX = out.EndX, out.StartX
		out.StartY, out.EndY = out.EndY, out.StartY
	}
	return out
}

// rect converts an axis-aligned box by moving its center. The box keeps its
// size, with width and height exchanged when the page turned by a quarter.
func (t *pageTransform) rect(r model.Rect) model.Rect {
	c := t.point(r.Center())
	w, h := float64(r.Width()), float64(r.Height())
	if t.quarterTurned() {
		w, h = h, w
	}
	out := model.Rect{
		Left:   int(math.Round(c.X - w/2)),
		Top:    int(math.Round(c.Y - h/2)),
		Right:  int(math.Round(c.X + w/2)),
		Bottom: int(math.Round(c.Y + h/2)),
	}
	return out.Clip(t.destW, t.destH)
}

// letter converts the bounds of a spatial letter.
func (t *pageTransform) letter(l Letter) Letter {
	if !l.IsSpatial {
		return l
	}
	l.SetBounds(t.rect(l.Bounds()))
	return l
}

// fitPointsWithinBounds keeps both endpoints of the segment a-b inside the
// box [-hx,hx]x[-hy,hy]. A point outside the box is slid along the segment
// to the box edge. A segment shorter than minTranslatedLength afterwards is
// lengthened by pushing the endpoint nearer the origin away from the other.
func fitPointsWithinBounds(a, b model.Point, hx, hy float64) (model.Point, model.Point) {
	inside := func(p model.Point) bool {
		return p.X >= -hx && p.X <= hx && p.Y >= -hy && p.Y <= hy
	}
	if !inside(a) || !inside(b) {
		if ca, cb, ok := clipSegment(a, b, hx, hy); ok {
			a, b = ca, cb
		} else {
			a = clampPoint(a, hx, hy)
			b = clampPoint(b, hx, hy)
		}
	}

	length := a.Distance(b)
	if length >= minTranslatedLength {
		return a, b
	}

	near, far := &a, &b
	if math.Hypot(b.X, b.Y) < math.Hypot(a.X, a.Y) {
		near, far = &b, &a
	}
	dx, dy := near.X-far.X, near.Y-far.Y
	if length == 0 {
		// No direction to extend along; stretch horizontally toward the
		// center of the image.
		dx, dy = 1, 0
		if far.X > 0 {
			dx = -1
		}
		length = 1
	}
	scale := minTranslatedLength / length
	*near = clampPoint(model.Point{X: far.X + dx*scale, Y: far.Y + dy*scale}, hx, hy)
	return a, b
}

// clipSegment clips a-b to the box using the Liang-Barsky algorithm.
func clipSegment(a, b model.Point, hx, hy float64) (model.Point, model.Point, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, a.X + hx},
		{dx, hx - a.X},
		{-dy, a.Y + hy},
		{dy, hy - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, r)
		}
	}
	return model.Point{X: a.X + t0*dx, Y: a.Y + t0*dy},
		model.Point{X: a.X + t1*dx, Y: a.Y + t1*dy}, true
}

func clampPoint(p model.Point, hx, hy float64) model.Point {
	return model.Point{
		X: math.Max(-hx, math.Min(hx, p.X)),
		Y: math.Max(-hy, math.Min(hy, p.Y)),
	}
}

// TranslateZone converts z from the coordinate system of page info old to
// that of dest. A nil dest converts to original image coordinates.
func TranslateZone(z RasterZone, old PageInfo, dest *PageInfo) (RasterZone, error) {
	t, err := newPageTransform(old, dest)
	if err != nil {
		return z, err
	}
	return t.zone(z), nil
}

// TranslateRect converts an axis-aligned box between page coordinate
// systems the same way letters are converted.
func TranslateRect(r model.Rect, old PageInfo, dest *PageInfo) (model.Rect, error) {
	t, err := newPageTransform(old, dest)
	if err != nil {
		return r, err
	}
	return t.rect(r), nil
}

// ZoneToOCRImage converts a zone in original image coordinates into the OCR
// image coordinates described by info.
func ZoneToOCRImage(z RasterZone, info PageInfo) (RasterZone, error) {
	return TranslateZone(z, info.identity(), &info)
}

// RectToOCRImage converts a box in original image coordinates into the OCR
// image coordinates described by info.
func RectToOCRImage(r model.Rect, info PageInfo) (model.Rect, error) {
	return TranslateRect(r, info.identity(), &info)
}

// PageInfoFromTextAngle builds the page info of an image whose text runs at
// angle degrees counter-clockwise from horizontal. The angle is split into a
// quarter-turn orientation and a residual deskew.
func PageInfoFromTextAngle(width, height int, angle float64) PageInfo {
	o := OrientationFromDegrees(angle)
	deg, _ := o.degrees()
	skew := angle - deg
	// Keep the residual in (-45, 45] regardless of which multiple of 360
	// the angle came in as.
	skew = math.Mod(skew, 360)
	if skew > 180 {
		skew -= 360
	} else if skew <= -180 {
		skew += 360
	}
	return PageInfo{Width: width, Height: height, Orientation: o, Deskew: -skew}
}
