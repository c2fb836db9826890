// Package geom holds the value types shared by the drawing engine: sampled
// pointer points, plain vectors, rectangles and scale factors.
package geom

import (
	"image"
	"math"
)

// DefaultPressure is used for samples that arrive without pressure data.
const DefaultPressure = 0.5

// Point is a pointer sample in surface-local coordinates.
type Point struct {
	X, Y     float64
	Pressure float64
}

// Pt returns a Point with the default pressure.
func Pt(x, y float64) Point { return Point{X: x, Y: y, Pressure: DefaultPressure} }

// Normalized returns p with its pressure clamped to [0,1]. Missing pressure
// (zero or negative) becomes DefaultPressure.
func (p Point) Normalized() Point {
	switch {
	case p.Pressure <= 0 || math.IsNaN(p.Pressure):
		p.Pressure = DefaultPressure
	case p.Pressure > 1:
		p.Pressure = 1
	}
	return p
}

// Vec returns the position of p without pressure.
func (p Point) Vec() Vec { return Vec{p.X, p.Y} }

// Scaled multiplies the coordinates of p by s, keeping pressure.
func (p Point) Scaled(s Scale) Point {
	p.X *= s.X
	p.Y *= s.Y
	return p
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Point) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

// Vec is a 2D vector.
type Vec struct{ X, Y float64 }

func (a Vec) Add(b Vec) Vec { return Vec{a.X + b.X, a.Y + b.Y} }

func (a Vec) Sub(b Vec) Vec { return Vec{a.X - b.X, a.Y - b.Y} }

func (a Vec) Mul(n float64) Vec { return Vec{a.X * n, a.Y * n} }

func (a Vec) Neg() Vec { return Vec{-a.X, -a.Y} }

func (a Vec) Dot(b Vec) float64 { return a.X*b.X + a.Y*b.Y }

func (a Vec) Len() float64 { return math.Hypot(a.X, a.Y) }

func (a Vec) Dist(b Vec) float64 { return a.Sub(b).Len() }

func (a Vec) Dist2(b Vec) float64 {
	d := a.Sub(b)
	return d.X*d.X + d.Y*d.Y
}

func (a Vec) Equal(b Vec) bool { return a.X == b.X && a.Y == b.Y }

// Lerp interpolates from a towards b by t.
func (a Vec) Lerp(b Vec, t float64) Vec { return a.Add(b.Sub(a).Mul(t)) }

// Perp returns a rotated 90 degrees clockwise in screen space.
func (a Vec) Perp() Vec { return Vec{a.Y, -a.X} }

// Unit returns a scaled to length one. The zero vector is returned unchanged.
func (a Vec) Unit() Vec {
	l := a.Len()
	if l == 0 {
		return a
	}
	return Vec{a.X / l, a.Y / l}
}

// RotateAround rotates a about c by r radians.
func (a Vec) RotateAround(c Vec, r float64) Vec {
	s, co := math.Sin(r), math.Cos(r)
	px, py := a.X-c.X, a.Y-c.Y
	return Vec{px*co - py*s + c.X, px*s + py*co + c.Y}
}

// Project moves a along direction b by distance c.
func (a Vec) Project(b Vec, c float64) Vec { return a.Add(b.Mul(c)) }

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X, Y, Width, Height float64
}

// RectFromCorners builds the rectangle spanned by two opposite corners in
// any order.
func RectFromCorners(a, b Vec) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Vec) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Scaled multiplies position and size by s.
func (r Rect) Scaled(s Scale) Rect {
	return Rect{X: r.X * s.X, Y: r.Y * s.Y, Width: r.Width * s.X, Height: r.Height * s.Y}
}

// Image converts r to an integer rectangle, rounding outwards.
func (r Rect) Image() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.Right())), int(math.Ceil(r.Bottom())),
	)
}

// Scale is a pair of independent horizontal and vertical factors.
type Scale struct{ X, Y float64 }

// Identity reports whether s leaves coordinates unchanged.
func (s Scale) Identity() bool { return s.X == 1 && s.Y == 1 }
