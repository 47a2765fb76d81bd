package model

import "math"

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Midpoint returns the point halfway between p and other
func (p Point) Midpoint(other Point) Point {
	return Point{X: (p.X + other.X) / 2, Y: (p.Y + other.Y) / 2}
}

// Rect is an axis-aligned rectangle in image coordinates: the origin is the
// top-left corner of the page and Y grows downward.
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// NewRect creates a rectangle from its four edges, normalizing the order so
// that Left <= Right and Top <= Bottom.
func NewRect(left, top, right, bottom int) Rect {
	if left > right {
		left, right = right, left
	}
	if top > bottom {
		top, bottom = bottom, top
	}
	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

// RectFromPoints creates the smallest rectangle containing all points.
// Fractional coordinates are expanded outward.
func RectFromPoints(points ...Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{
		Left:   int(math.Floor(minX)),
		Top:    int(math.Floor(minY)),
		Right:  int(math.Ceil(maxX)),
		Bottom: int(math.Ceil(maxY)),
	}
}

// Width returns the horizontal extent
func (r Rect) Width() int {
	return r.Right - r.Left
}

// Height returns the vertical extent
func (r Rect) Height() int {
	return r.Bottom - r.Top
}

// Center returns the center point
func (r Rect) Center() Point {
	return Point{
		X: float64(r.Left+r.Right) / 2,
		Y: float64(r.Top+r.Bottom) / 2,
	}
}

// Area returns the area of the rectangle
func (r Rect) Area() int {
	if r.IsEmpty() {
		return 0
	}
	return r.Width() * r.Height()
}

// IsEmpty returns true if the rectangle has zero area
func (r Rect) IsEmpty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// Contains checks if a point is inside the rectangle, edges included
func (r Rect) Contains(p Point) bool {
	return p.X >= float64(r.Left) && p.X <= float64(r.Right) &&
		p.Y >= float64(r.Top) && p.Y <= float64(r.Bottom)
}

// ContainsRect reports whether other lies entirely within r. Shared edges
// count as contained.
func (r Rect) ContainsRect(other Rect) bool {
	return other.Left >= r.Left && other.Right <= r.Right &&
		other.Top >= r.Top && other.Bottom <= r.Bottom
}

// Intersects checks if two rectangles intersect. Rectangles that only share
// an edge or a corner intersect.
func (r Rect) Intersects(other Rect) bool {
	return !(r.Right < other.Left ||
		r.Left > other.Right ||
		r.Bottom < other.Top ||
		r.Top > other.Bottom)
}

// Overlaps reports whether the rectangles share a region of positive area.
func (r Rect) Overlaps(other Rect) bool {
	return r.Left < other.Right && other.Left < r.Right &&
		r.Top < other.Bottom && other.Top < r.Bottom
}

// Intersection returns the intersection of two rectangles
func (r Rect) Intersection(other Rect) Rect {
	if !r.Intersects(other) {
		return Rect{}
	}
	return Rect{
		Left:   max(r.Left, other.Left),
		Top:    max(r.Top, other.Top),
		Right:  min(r.Right, other.Right),
		Bottom: min(r.Bottom, other.Bottom),
	}
}

// Union returns the smallest rectangle containing both rectangles
func (r Rect) Union(other Rect) Rect {
	return Rect{
		Left:   min(r.Left, other.Left),
		Top:    min(r.Top, other.Top),
		Right:  max(r.Right, other.Right),
		Bottom: max(r.Bottom, other.Bottom),
	}
}

// Expand expands the rectangle by a margin on all sides
func (r Rect) Expand(margin int) Rect {
	return Rect{
		Left:   r.Left - margin,
		Top:    r.Top - margin,
		Right:  r.Right + margin,
		Bottom: r.Bottom + margin,
	}
}

// Offset shifts the rectangle by dx, dy
func (r Rect) Offset(dx, dy int) Rect {
	return Rect{
		Left:   r.Left + dx,
		Top:    r.Top + dy,
		Right:  r.Right + dx,
		Bottom: r.Bottom + dy,
	}
}

// Clip clamps every edge of r into [0,width]x[0,height].
func (r Rect) Clip(width, height int) Rect {
	return Rect{
		Left:   clamp(r.Left, 0, width),
		Top:    clamp(r.Top, 0, height),
		Right:  clamp(r.Right, 0, width),
		Bottom: clamp(r.Bottom, 0, height),
	}
}

// Corners returns the four corners clockwise from the top-left.
func (r Rect) Corners() [4]Point {
	return [4]Point{
		{X: float64(r.Left), Y: float64(r.Top)},
		{X: float64(r.Right), Y: float64(r.Top)},
		{X: float64(r.Right), Y: float64(r.Bottom)},
		{X: float64(r.Left), Y: float64(r.Bottom)},
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Matrix represents a 2D affine transformation matrix
type Matrix [6]float64

// Identity returns an identity matrix
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Transform applies the matrix transformation to a point
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Multiply multiplies two matrices
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// Translate creates a translation matrix
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Rotate creates a rotation matrix (angle in radians). In a Y-up coordinate
// system a positive angle rotates counter-clockwise.
func Rotate(angle float64) Matrix {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// RotateAbout creates a matrix rotating by angle (radians) around center.
func RotateAbout(center Point, angle float64) Matrix {
	return Translate(-center.X, -center.Y).
		Multiply(Rotate(angle)).
		Multiply(Translate(center.X, center.Y))
}

// IsIdentity returns true if the matrix is an identity matrix
func (m Matrix) IsIdentity() bool {
	return m[0] == 1 && m[1] == 0 && m[2] == 0 && m[3] == 1 && m[4] == 0 && m[5] == 0
}
