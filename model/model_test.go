package model

import (
	"math"
	"testing"
)

// ============================================================================
// Point Tests
// ============================================================================

func TestPointDistance(t *testing.T) {
	tests := []struct {
		name     string
		p1, p2   Point
		expected float64
	}{
		{"same point", Point{0, 0}, Point{0, 0}, 0},
		{"horizontal", Point{0, 0}, Point{3, 0}, 3},
		{"vertical", Point{0, 0}, Point{0, 4}, 4},
		{"diagonal 3-4-5", Point{0, 0}, Point{3, 4}, 5},
		{"negative coords", Point{-1, -1}, Point{2, 3}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.p1.Distance(tt.p2)
			if math.Abs(result-tt.expected) > 0.0001 {
				t.Errorf("Distance() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestPointMidpoint(t *testing.T) {
	got := Point{0, 0}.Midpoint(Point{10, -4})
	if got != (Point{5, -2}) {
		t.Errorf("Midpoint() = %+v, want {5 -2}", got)
	}
}

// ============================================================================
// Rect Tests
// ============================================================================

func TestNewRect(t *testing.T) {
	tests := []struct {
		name                     string
		left, top, right, bottom int
		want                     Rect
	}{
		{"normal", 10, 20, 110, 70, Rect{10, 20, 110, 70}},
		{"reversed horizontally", 110, 20, 10, 70, Rect{10, 20, 110, 70}},
		{"reversed vertically", 10, 70, 110, 20, Rect{10, 20, 110, 70}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewRect(tt.left, tt.top, tt.right, tt.bottom)
			if got != tt.want {
				t.Errorf("NewRect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRectFromPoints(t *testing.T) {
	got := RectFromPoints(Point{1.5, 2.2}, Point{-3.1, 8}, Point{4, 0.5})
	want := Rect{Left: -4, Top: 0, Right: 4, Bottom: 8}
	if got != want {
		t.Errorf("RectFromPoints() = %+v, want %+v", got, want)
	}

	if empty := RectFromPoints(); empty != (Rect{}) {
		t.Errorf("RectFromPoints() with no points = %+v, want zero", empty)
	}
}

func TestRectDimensions(t *testing.T) {
	r := NewRect(10, 20, 110, 70)

	if r.Width() != 100 {
		t.Errorf("Width() = %v, want 100", r.Width())
	}
	if r.Height() != 50 {
		t.Errorf("Height() = %v, want 50", r.Height())
	}
	if r.Area() != 5000 {
		t.Errorf("Area() = %v, want 5000", r.Area())
	}
	if c := r.Center(); c.X != 60 || c.Y != 45 {
		t.Errorf("Center() = %+v, want {60, 45}", c)
	}
}

func TestRectIsEmpty(t *testing.T) {
	tests := []struct {
		name     string
		r        Rect
		expected bool
	}{
		{"normal", Rect{0, 0, 10, 10}, false},
		{"zero width", Rect{5, 0, 5, 10}, true},
		{"zero height", Rect{0, 5, 10, 5}, true},
		{"inverted", Rect{10, 10, 0, 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.IsEmpty(); got != tt.expected {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(0, 0, 100, 100)

	tests := []struct {
		name     string
		point    Point
		expected bool
	}{
		{"inside", Point{50, 50}, true},
		{"on left edge", Point{0, 50}, true},
		{"on right edge", Point{100, 50}, true},
		{"outside left", Point{-1, 50}, false},
		{"outside right", Point{101, 50}, false},
		{"outside top", Point{50, -1}, false},
		{"outside bottom", Point{50, 101}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := r.Contains(tt.point); result != tt.expected {
				t.Errorf("Contains(%+v) = %v, want %v", tt.point, result, tt.expected)
			}
		})
	}
}

func TestRectIntersects(t *testing.T) {
	r := NewRect(0, 0, 100, 100)

	tests := []struct {
		name      string
		other     Rect
		intersect bool
		overlap   bool
	}{
		{"overlapping", NewRect(50, 50, 150, 150), true, true},
		{"touching edge", NewRect(100, 0, 150, 50), true, false},
		{"touching corner", NewRect(100, 100, 150, 150), true, false},
		{"inside", NewRect(25, 25, 75, 75), true, true},
		{"containing", NewRect(-10, -10, 200, 200), true, true},
		{"no overlap right", NewRect(150, 0, 200, 50), false, false},
		{"no overlap left", NewRect(-100, 0, -50, 50), false, false},
		{"no overlap below", NewRect(0, 150, 50, 200), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Intersects(tt.other); got != tt.intersect {
				t.Errorf("Intersects(%+v) = %v, want %v", tt.other, got, tt.intersect)
			}
			if got := r.Overlaps(tt.other); got != tt.overlap {
				t.Errorf("Overlaps(%+v) = %v, want %v", tt.other, got, tt.overlap)
			}
		})
	}
}

func TestRectIntersectionAndUnion(t *testing.T) {
	a := NewRect(0, 0, 50, 50)
	b := NewRect(25, 25, 100, 100)

	if got := a.Intersection(b); got != (Rect{25, 25, 50, 50}) {
		t.Errorf("Intersection() = %+v, want {25 25 50 50}", got)
	}
	if got := a.Union(b); got != (Rect{0, 0, 100, 100}) {
		t.Errorf("Union() = %+v, want {0 0 100 100}", got)
	}
	if got := a.Intersection(NewRect(200, 200, 300, 300)); got != (Rect{}) {
		t.Errorf("Intersection() of disjoint = %+v, want zero", got)
	}
}

func TestRectContainsRect(t *testing.T) {
	outer := NewRect(0, 0, 100, 100)
	if !outer.ContainsRect(NewRect(0, 0, 100, 100)) {
		t.Error("ContainsRect() should accept an identical rectangle")
	}
	if !outer.ContainsRect(NewRect(10, 10, 20, 20)) {
		t.Error("ContainsRect() should accept an inner rectangle")
	}
	if outer.ContainsRect(NewRect(90, 90, 110, 110)) {
		t.Error("ContainsRect() should reject a rectangle crossing the edge")
	}
}

func TestRectClip(t *testing.T) {
	got := NewRect(-10, -5, 120, 90).Clip(100, 80)
	want := Rect{0, 0, 100, 80}
	if got != want {
		t.Errorf("Clip() = %+v, want %+v", got, want)
	}
}

func TestRectExpandAndOffset(t *testing.T) {
	r := NewRect(10, 10, 20, 20)
	if got := r.Expand(5); got != (Rect{5, 5, 25, 25}) {
		t.Errorf("Expand(5) = %+v", got)
	}
	if got := r.Offset(3, -4); got != (Rect{13, 6, 23, 16}) {
		t.Errorf("Offset(3,-4) = %+v", got)
	}
}

// ============================================================================
// Matrix Tests
// ============================================================================

func TestIdentity(t *testing.T) {
	m := Identity()
	if !m.IsIdentity() {
		t.Errorf("Identity() = %v, want identity", m)
	}
	p := m.Transform(Point{3, 4})
	if p != (Point{3, 4}) {
		t.Errorf("Identity().Transform() = %+v", p)
	}
}

func TestMatrixTransform(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		in   Point
		want Point
	}{
		{"translate", Translate(10, -5), Point{1, 1}, Point{11, -4}},
		{"rotate 90", Rotate(math.Pi / 2), Point{1, 0}, Point{0, 1}},
		{"rotate 180", Rotate(math.Pi), Point{1, 2}, Point{-1, -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.Transform(tt.in)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("Transform() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMatrixMultiply(t *testing.T) {
	m := Translate(5, 0).Multiply(Translate(0, 7))
	p := m.Transform(Point{0, 0})
	if p != (Point{5, 7}) {
		t.Errorf("Multiply() translation = %+v, want {5 7}", p)
	}
}

func TestRotateAbout(t *testing.T) {
	m := RotateAbout(Point{10, 10}, math.Pi/2)
	got := m.Transform(Point{20, 10})
	if math.Abs(got.X-10) > 1e-9 || math.Abs(got.Y-20) > 1e-9 {
		t.Errorf("RotateAbout() = %+v, want {10 20}", got)
	}
}

// ============================================================================
// Polygon Tests
// ============================================================================

func TestPolygonArea(t *testing.T) {
	square := Polygon{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if square.Area() != 100 {
		t.Errorf("Area() = %v, want 100", square.Area())
	}

	reversed := Polygon{{0, 10}, {10, 10}, {10, 0}, {0, 0}}
	if reversed.Area() != 100 {
		t.Errorf("Area() of clockwise polygon = %v, want 100", reversed.Area())
	}

	if (Polygon{{0, 0}, {1, 1}}).Area() != 0 {
		t.Error("Area() of a degenerate polygon should be 0")
	}
}

func TestPolygonIntersectionArea(t *testing.T) {
	square := Polygon{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

	tests := []struct {
		name  string
		other Polygon
		want  float64
	}{
		{"identical", square, 100},
		{"half overlap", Polygon{{5, 0}, {15, 0}, {15, 10}, {5, 10}}, 50},
		{"quarter overlap", Polygon{{5, 5}, {15, 5}, {15, 15}, {5, 15}}, 25},
		{"disjoint", Polygon{{20, 20}, {30, 20}, {30, 30}, {20, 30}}, 0},
		{"contained clockwise", Polygon{{2, 8}, {8, 8}, {8, 2}, {2, 2}}, 36},
		{"inscribed diamond", Polygon{{5, 0}, {10, 5}, {5, 10}, {0, 5}}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := square.IntersectionArea(tt.other)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("IntersectionArea() = %v, want %v", got, tt.want)
			}
		})
	}
}
