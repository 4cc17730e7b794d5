// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"gonum.org/v1/gonum/floats"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	return floats.Distance([]float64{p.X, p.Y}, []float64{other.X, other.Y}, 2)
}

// PointInt represents a 2D point with integer (pixel) coordinates.
type PointInt struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ToFloat converts to Point2D.
func (p PointInt) ToFloat() Point2D {
	return Point2D{X: float64(p.X), Y: float64(p.Y)}
}

// DistanceSq returns the squared Euclidean distance to another point.
// Stays in integer arithmetic so radius comparisons are exact.
func (p PointInt) DistanceSq(other PointInt) int {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return dx*dx + dy*dy
}

// RectInt represents a rectangle with integer coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the rectangle has no area.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Clamp returns the part of r that lies inside a width x height area at the origin.
func (r RectInt) Clamp(width, height int) RectInt {
	x1 := clamp(r.X, 0, width)
	y1 := clamp(r.Y, 0, height)
	x2 := clamp(r.X+r.Width, 0, width)
	y2 := clamp(r.Y+r.Height, 0, height)
	return RectInt{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Size represents a 2D integer size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// MaxSide returns the larger of width and height.
func (s Size) MaxSide() int {
	if s.Width > s.Height {
		return s.Width
	}
	return s.Height
}

// Origin selects which corner of an image is (0, 0) for outward-facing coordinates.
type Origin int

const (
	// OriginTopLeft is the array convention: row 0 at the top, +y downward.
	OriginTopLeft Origin = iota
	// OriginBottomLeft is the stage convention: row 0 at the bottom, +y upward.
	OriginBottomLeft
)

func (o Origin) String() string {
	switch o {
	case OriginTopLeft:
		return "top-left"
	case OriginBottomLeft:
		return "bottom-left"
	default:
		return "unknown"
	}
}

// ParseOrigin parses the names produced by Origin.String.
func ParseOrigin(s string) (Origin, bool) {
	switch s {
	case "top-left":
		return OriginTopLeft, true
	case "bottom-left":
		return OriginBottomLeft, true
	}
	return OriginTopLeft, false
}

// Flip converts between array coordinates and an outward-facing origin for an
// image of the given height. The transform is its own inverse.
type Flip struct {
	Origin Origin
	Height int
}

// Point maps a pixel position across the flip.
func (f Flip) Point(p PointInt) PointInt {
	if f.Origin != OriginBottomLeft {
		return p
	}
	return PointInt{X: p.X, Y: f.Height - 1 - p.Y}
}

// Rect maps a rectangle across the flip. The rectangle's Y is its lowest row
// index in the source convention.
func (f Flip) Rect(r RectInt) RectInt {
	if f.Origin != OriginBottomLeft {
		return r
	}
	return RectInt{X: r.X, Y: f.Height - r.Y - r.Height, Width: r.Width, Height: r.Height}
}

func clamp(v, minVal, maxVal int) int {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
