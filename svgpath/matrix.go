// Implements the 2D affine transformations used by SVG,
// in the 6 coefficient form (a, b, c, d, e, f).
// https://developer.mozilla.org/en-US/docs/Web/SVG/Attribute/transform
package svgpath

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// Matrix2D is a 2D affine transform: a point (x, y) maps to
// (a*x + c*y + e, b*x + d*y + f).
type Matrix2D struct {
	A, B, C, D, E, F float64
}

// Identity is the neutral transform.
var Identity = Matrix2D{1, 0, 0, 1, 0, 0}

// Mult returns the product a × b. Applied to a point, b acts first.
func (a Matrix2D) Mult(b Matrix2D) Matrix2D {
	return Matrix2D{
		A: a.A*b.A + a.C*b.B,
		B: a.B*b.A + a.D*b.B,
		C: a.A*b.C + a.C*b.D,
		D: a.B*b.C + a.D*b.D,
		E: a.A*b.E + a.C*b.F + a.E,
		F: a.B*b.E + a.D*b.F + a.F,
	}
}

// Transform applies the matrix to the point (x1, y1).
func (a Matrix2D) Transform(x1, y1 float64) (x2, y2 float64) {
	x2 = x1*a.A + y1*a.C + a.E
	y2 = x1*a.B + y1*a.D + a.F
	return
}

// TFixed applies the matrix to a fixed point.
func (a Matrix2D) TFixed(p fixed.Point26_6) (out fixed.Point26_6) {
	out.X = fixed.Int26_6((float64(p.X)*a.A + float64(p.Y)*a.C) + a.E*64)
	out.Y = fixed.Int26_6((float64(p.X)*a.B + float64(p.Y)*a.D) + a.F*64)
	return
}

// Translate post-composes a translation by (x, y).
func (a Matrix2D) Translate(x, y float64) Matrix2D {
	return a.Mult(Matrix2D{1, 0, 0, 1, x, y})
}

// Scale post-composes a scaling by (x, y).
func (a Matrix2D) Scale(x, y float64) Matrix2D {
	return a.Mult(Matrix2D{x, 0, 0, y, 0, 0})
}

// Rotate post-composes a rotation by theta radians around the origin.
func (a Matrix2D) Rotate(theta float64) Matrix2D {
	sin, cos := math.Sin(theta), math.Cos(theta)
	return a.Mult(Matrix2D{cos, sin, -sin, cos, 0, 0})
}

// SkewX post-composes a skew along the x axis by theta radians.
func (a Matrix2D) SkewX(theta float64) Matrix2D {
	return a.Mult(Matrix2D{1, 0, math.Tan(theta), 1, 0, 0})
}

// SkewY post-composes a skew along the y axis by theta radians.
func (a Matrix2D) SkewY(theta float64) Matrix2D {
	return a.Mult(Matrix2D{1, math.Tan(theta), 0, 1, 0, 0})
}
