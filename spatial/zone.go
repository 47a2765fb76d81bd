package spatial

import (
	"fmt"
	"math"

	"github.com/tsawler/spatialtext/errs"
	"github.com/tsawler/spatialtext/model"
)

// MinZoneHeight is the smallest thickness a RasterZone may have.
const MinZoneHeight = 5

// RasterZone is a rotated rectangle on a page, described by its centerline
// from (StartX, StartY) to (EndX, EndY) and its thickness Height measured
// perpendicular to that line. Coordinates are image coordinates.
type RasterZone struct {
	StartX int
	StartY int
	EndX   int
	EndY   int
	Height int
	Page   int
}

// NewRasterZone creates a zone, coercing the height with NormalizeZoneHeight.
func NewRasterZone(startX, startY, endX, endY, height, page int) RasterZone {
	return RasterZone{
		StartX: startX,
		StartY: startY,
		EndX:   endX,
		EndY:   endY,
		Height: NormalizeZoneHeight(height),
		Page:   page,
	}
}

// RasterZoneFromRect creates a horizontal zone covering r. The centerline
// runs through the vertical middle of r from its left to its right edge.
func RasterZoneFromRect(r model.Rect, page int) RasterZone {
	h := r.Height()
	y := r.Top + h/2
	return NewRasterZone(r.Left, y, r.Right, y, h, page)
}

// NormalizeZoneHeight returns h raised to at least MinZoneHeight and made odd.
func NormalizeZoneHeight(h int) int {
	if h < MinZoneHeight {
		return MinZoneHeight
	}
	if h%2 == 0 {
		return h + 1
	}
	return h
}

// Start returns the start of the centerline.
func (z RasterZone) Start() model.Point {
	return model.Point{X: float64(z.StartX), Y: float64(z.StartY)}
}

// End returns the end of the centerline.
func (z RasterZone) End() model.Point {
	return model.Point{X: float64(z.EndX), Y: float64(z.EndY)}
}

// IsDegenerate reports whether the centerline has zero length.
func (z RasterZone) IsDegenerate() bool {
	return z.StartX == z.EndX && z.StartY == z.EndY
}

// Length returns the length of the centerline.
func (z RasterZone) Length() float64 {
	return z.Start().Distance(z.End())
}

// Area returns the area of the rotated rectangle.
func (z RasterZone) Area() float64 {
	return z.Length() * float64(z.Height)
}

// Corners returns the four corners of the rotated rectangle, in order around
// its perimeter.
func (z RasterZone) Corners() [4]model.Point {
	angle := math.Atan2(float64(z.EndY-z.StartY), float64(z.EndX-z.StartX))
	half := float64(z.Height) / 2
	ox := -math.Sin(angle) * half
	oy := math.Cos(angle) * half

	s, e := z.Start(), z.End()
	return [4]model.Point{
		{X: s.X + ox, Y: s.Y + oy},
		{X: e.X + ox, Y: e.Y + oy},
		{X: e.X - ox, Y: e.Y - oy},
		{X: s.X - ox, Y: s.Y - oy},
	}
}

// Polygon returns the corners as a polygon.
func (z RasterZone) Polygon() model.Polygon {
	c := z.Corners()
	return model.Polygon(c[:])
}

// RectangularBounds returns the axis-aligned rectangle enclosing the zone.
func (z RasterZone) RectangularBounds() model.Rect {
	var minX, minY = math.Inf(1), math.Inf(1)
	var maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range z.Corners() {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return model.Rect{
		Left:   int(math.Round(minX)),
		Top:    int(math.Round(minY)),
		Right:  int(math.Round(maxX)),
		Bottom: int(math.Round(maxY)),
	}
}

// ClippedBounds returns RectangularBounds clamped to a page of the given size.
func (z RasterZone) ClippedBounds(pageWidth, pageHeight int) model.Rect {
	return z.RectangularBounds().Clip(pageWidth, pageHeight)
}

// IntersectionArea returns the area shared by the two rotated rectangles.
// Zones on different pages never intersect.
func (z RasterZone) IntersectionArea(other RasterZone) float64 {
	if z.Page != other.Page {
		return 0
	}
	return z.Polygon().IntersectionArea(other.Polygon())
}

// RotateBy rotates both endpoints about the midpoint of the centerline.
// Positive angles turn clockwise on screen because image Y grows downward.
func (z RasterZone) RotateBy(degrees float64) (RasterZone, error) {
	if z.IsDegenerate() {
		return z, errs.New(errs.ErrDegenerateZone, "cannot rotate a zero-length zone",
			"x", z.StartX, "y", z.StartY, "page", z.Page)
	}
	m := model.RotateAbout(z.Start().Midpoint(z.End()), degrees*math.Pi/180)
	s := m.Transform(z.Start())
	e := m.Transform(z.End())

	out := z
	out.StartX = int(math.Round(s.X))
	out.StartY = int(math.Round(s.Y))
	out.EndX = int(math.Round(e.X))
	out.EndY = int(math.Round(e.Y))
	return out, nil
}

// Offset shifts the zone.
func (z RasterZone) Offset(dx, dy int) RasterZone {
	z.StartX += dx
	z.EndX += dx
	z.StartY += dy
	z.EndY += dy
	return z
}

func (z RasterZone) String() string {
	return fmt.Sprintf("zone(p%d %d,%d -> %d,%d h=%d)", z.Page, z.StartX, z.StartY, z.EndX, z.EndY, z.Height)
}

// appendUniqueZones appends the zones of add not already present in dst.
func appendUniqueZones(dst []RasterZone, add ...RasterZone) []RasterZone {
	seen := make(map[RasterZone]struct{}, len(dst)+len(add))
	for _, z := range dst {
		seen[z] = struct{}{}
	}
	for _, z := range add {
		if _, ok := seen[z]; ok {
			continue
		}
		seen[z] = struct{}{}
		dst = append(dst, z)
	}
	return dst
}
