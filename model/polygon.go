package model

import "math"

// Polygon is a closed simple polygon given by its vertices in order.
type Polygon []Point

// Area returns the unsigned area using the shoelace formula.
func (p Polygon) Area() float64 {
	return math.Abs(p.signedArea())
}

func (p Polygon) signedArea() float64 {
	if len(p) < 3 {
		return 0
	}
	var sum float64
	for i := range p {
		j := (i + 1) % len(p)
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return sum / 2
}

// Bounds returns the smallest rectangle containing the polygon.
func (p Polygon) Bounds() Rect {
	return RectFromPoints(p...)
}

// IntersectionArea returns the area shared by two convex polygons. Vertex
// order may be clockwise or counter-clockwise.
func (p Polygon) IntersectionArea(other Polygon) float64 {
	if len(p) < 3 || len(other) < 3 {
		return 0
	}
	clipped := clipConvex(p, other)
	return clipped.Area()
}

// clipConvex clips subject against the convex clip polygon
// (Sutherland-Hodgman).
func clipConvex(subject, clip Polygon) Polygon {
	// Normalize the clip polygon to counter-clockwise so "inside" is always
	// the left side of each edge.
	if clip.signedArea() < 0 {
		reversed := make(Polygon, len(clip))
		for i := range clip {
			reversed[i] = clip[len(clip)-1-i]
		}
		clip = reversed
	}

	output := append(Polygon(nil), subject...)
	for i := range clip {
		if len(output) == 0 {
			break
		}
		a := clip[i]
		b := clip[(i+1)%len(clip)]
		input := output
		output = output[:0:0]

		for j := range input {
			cur := input[j]
			prev := input[(j+len(input)-1)%len(input)]
			curIn := isLeft(a, b, cur) >= 0
			prevIn := isLeft(a, b, prev) >= 0

			switch {
			case curIn && prevIn:
				output = append(output, cur)
			case curIn && !prevIn:
				output = append(output, lineIntersection(prev, cur, a, b), cur)
			case !curIn && prevIn:
				output = append(output, lineIntersection(prev, cur, a, b))
			}
		}
	}
	return output
}

// isLeft is positive when p lies to the left of the directed line a->b.
func isLeft(a, b, p Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

func lineIntersection(p1, p2, a, b Point) Point {
	dx1, dy1 := p2.X-p1.X, p2.Y-p1.Y
	dx2, dy2 := b.X-a.X, b.Y-a.Y
	denom := dx1*dy2 - dy1*dx2
	if denom == 0 {
		return p2
	}
	t := ((a.X-p1.X)*dy2 - (a.Y-p1.Y)*dx2) / denom
	return Point{X: p1.X + t*dx1, Y: p1.Y + t*dy1}
}
