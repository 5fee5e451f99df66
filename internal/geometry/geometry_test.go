package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIoU(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want float64
	}{
		{
			name: "identical boxes",
			a:    Rect{X: 10, Y: 10, W: 20, H: 20},
			b:    Rect{X: 10, Y: 10, W: 20, H: 20},
			want: 1.0,
		},
		{
			name: "disjoint boxes",
			a:    Rect{X: 0, Y: 0, W: 10, H: 10},
			b:    Rect{X: 100, Y: 100, W: 10, H: 10},
			want: 0,
		},
		{
			name: "half overlap",
			a:    Rect{X: 0, Y: 0, W: 10, H: 10},
			b:    Rect{X: 5, Y: 0, W: 10, H: 10},
			// intersection 50, union 150
			want: 1.0 / 3.0,
		},
		{
			name: "touching edges",
			a:    Rect{X: 0, Y: 0, W: 10, H: 10},
			b:    Rect{X: 10, Y: 0, W: 10, H: 10},
			want: 0,
		},
		{
			name: "degenerate box",
			a:    Rect{X: 0, Y: 0, W: 0, H: 0},
			b:    Rect{X: 0, Y: 0, W: 10, H: 10},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, IoU(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.want, IoU(tt.b, tt.a), 1e-9, "IoU must be symmetric")
		})
	}
}

func TestSideOfLine(t *testing.T) {
	// Vertical line from (0.5, 0) to (0.5, 1), pointing down the frame.
	a := Point{X: 0.5, Y: 0}
	b := Point{X: 0.5, Y: 1}

	assert.Positive(t, SideOfLine(a, b, Point{X: 0.1, Y: 0.5}))
	assert.Negative(t, SideOfLine(a, b, Point{X: 0.9, Y: 0.5}))
	assert.Zero(t, SideOfLine(a, b, Point{X: 0.5, Y: 0.7}))
}

func TestProjectionParam(t *testing.T) {
	a := Point{X: 0, Y: 0}
	b := Point{X: 10, Y: 0}

	assert.InDelta(t, 0.0, ProjectionParam(a, b, Point{X: 0, Y: 5}), 1e-9)
	assert.InDelta(t, 1.0, ProjectionParam(a, b, Point{X: 10, Y: -3}), 1e-9)
	assert.InDelta(t, 0.5, ProjectionParam(a, b, Point{X: 5, Y: 100}), 1e-9)
	assert.InDelta(t, -0.5, ProjectionParam(a, b, Point{X: -5, Y: 0}), 1e-9)
	assert.InDelta(t, 1.5, ProjectionParam(a, b, Point{X: 15, Y: 0}), 1e-9)

	// Degenerate segment.
	assert.Zero(t, ProjectionParam(a, a, Point{X: 3, Y: 3}))
}

func TestSegmentsIntersect(t *testing.T) {
	tests := []struct {
		name           string
		p1, p2, q1, q2 Point
		want           bool
	}{
		{
			name: "crossing segments",
			p1:   Point{X: 0, Y: 0}, p2: Point{X: 10, Y: 10},
			q1: Point{X: 0, Y: 10}, q2: Point{X: 10, Y: 0},
			want: true,
		},
		{
			name: "parallel segments",
			p1:   Point{X: 0, Y: 0}, p2: Point{X: 10, Y: 0},
			q1: Point{X: 0, Y: 1}, q2: Point{X: 10, Y: 1},
			want: false,
		},
		{
			name: "touching at endpoint",
			p1:   Point{X: 0, Y: 0}, p2: Point{X: 5, Y: 5},
			q1: Point{X: 5, Y: 5}, q2: Point{X: 10, Y: 0},
			want: true,
		},
		{
			name: "would intersect on infinite line only",
			p1:   Point{X: 0, Y: 0}, p2: Point{X: 1, Y: 1},
			q1: Point{X: 10, Y: 0}, q2: Point{X: 10, Y: 20},
			want: false,
		},
		{
			name: "collinear overlap",
			p1:   Point{X: 0, Y: 0}, p2: Point{X: 10, Y: 0},
			q1: Point{X: 5, Y: 0}, q2: Point{X: 15, Y: 0},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SegmentsIntersect(tt.p1, tt.p2, tt.q1, tt.q2))
			assert.Equal(t, tt.want, SegmentsIntersect(tt.q1, tt.q2, tt.p1, tt.p2))
		})
	}
}

func TestRectCenterAndTranslate(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 4, H: 6}
	assert.Equal(t, Point{X: 12, Y: 23}, r.Center())

	moved := r.Translate(Point{X: -2, Y: 5})
	assert.Equal(t, Rect{X: 8, Y: 25, W: 4, H: 6}, moved)
}
