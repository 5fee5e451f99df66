// Package geometry provides the 2D primitives used by the tracking and
// line-crossing code: bounding-box overlap, signed side-of-line tests and
// segment projection/intersection.
package geometry

import "math"

// Point is a 2D point. Coordinates are either pixels (detections, boxes)
// or normalized [0,1] frame coordinates (counting lines), depending on use.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p minus q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Rect is an axis-aligned bounding box in x/y/width/height form.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Center returns the box centroid.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Area returns the box area, zero for degenerate boxes.
func (r Rect) Area() float64 {
	if r.W <= 0 || r.H <= 0 {
		return 0
	}
	return r.W * r.H
}

// Translate returns the box shifted by the given offset.
func (r Rect) Translate(d Point) Rect {
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, W: r.W, H: r.H}
}

// IoU returns the intersection-over-union of two boxes in [0,1].
// Degenerate boxes yield 0.
func IoU(a, b Rect) float64 {
	ix := math.Max(a.X, b.X)
	iy := math.Max(a.Y, b.Y)
	ix2 := math.Min(a.X+a.W, b.X+b.W)
	iy2 := math.Min(a.Y+a.H, b.Y+b.H)

	iw := ix2 - ix
	ih := iy2 - iy
	if iw <= 0 || ih <= 0 {
		return 0
	}

	inter := iw * ih
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// SideOfLine returns the signed side of p relative to the directed line
// from a to b: the 2D cross product of (b-a) x (p-a). Positive means p is
// to the left of the a->b direction, negative to the right, zero on the
// infinite line.
func SideOfLine(a, b, p Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// ProjectionParam returns the parameter t of the orthogonal projection of
// p onto the line through a and b, where t=0 lands on a and t=1 on b.
// A degenerate segment (a == b) projects everything onto t=0.
func ProjectionParam(a, b, p Point) float64 {
	d := b.Sub(a)
	lenSq := d.X*d.X + d.Y*d.Y
	if lenSq == 0 {
		return 0
	}
	v := p.Sub(a)
	return (v.X*d.X + v.Y*d.Y) / lenSq
}

// SegmentsIntersect reports whether the closed segments p1-p2 and q1-q2
// intersect, including touching at endpoints and collinear overlap.
func SegmentsIntersect(p1, p2, q1, q2 Point) bool {
	d1 := SideOfLine(q1, q2, p1)
	d2 := SideOfLine(q1, q2, p2)
	d3 := SideOfLine(p1, p2, q1)
	d4 := SideOfLine(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	if d1 == 0 && onSegment(q1, q2, p1) {
		return true
	}
	if d2 == 0 && onSegment(q1, q2, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, q1) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, q2) {
		return true
	}
	return false
}

// onSegment reports whether p, known to be collinear with a-b, lies within
// the segment's bounding extent.
func onSegment(a, b, p Point) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}
