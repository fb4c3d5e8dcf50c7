// Package svgpath implements an abstract representation of
// SVG paths and the geometry needed to build them: affine
// matrices, the path-data grammar, shape-to-path reduction
// and analytic bounding boxes.
// Paths are consumed by painting drivers, see the svgconv package.
package svgpath

import (
	"fmt"
	"strings"

	"golang.org/x/image/math/fixed"
)

// Drawer receives the resolved draw operations.
// It doesn't need any SVG knowledge: transformation matrices
// are already applied to the points before sending them.
type Drawer interface {
	// Start starts a new path at the given point.
	Start(a fixed.Point26_6)

	// Line adds a line from the current point to `b`
	Line(b fixed.Point26_6)

	// QuadBezier adds a quadratic bezier curve to the path
	QuadBezier(b, c fixed.Point26_6)

	// CubeBezier adds a cubic bezier curve to the path
	CubeBezier(b, c, d fixed.Point26_6)

	// Stop closes the path to the start point if `closeLoop` is true
	Stop(closeLoop bool)
}

// Operation groups the different SVG commands
type Operation interface {
	// add itself on the driver `d`, after applying the transform `M`
	drawTo(d Drawer, M Matrix2D)
}

type MoveTo fixed.Point26_6

type LineTo fixed.Point26_6

type QuadTo [2]fixed.Point26_6

type CubicTo [3]fixed.Point26_6

type Close struct{}

// starts a new path at the given point.
func (op MoveTo) drawTo(d Drawer, M Matrix2D) {
	d.Stop(false) // implicit close if currently in path.
	d.Start(M.trMove(op))
}

func (op LineTo) drawTo(d Drawer, M Matrix2D) {
	d.Line(M.trLine(op))
}

func (op QuadTo) drawTo(d Drawer, M Matrix2D) {
	b, c := M.trQuad(op)
	d.QuadBezier(b, c)
}

func (op CubicTo) drawTo(d Drawer, M Matrix2D) {
	b, c, d_ := M.trCubic(op)
	d.CubeBezier(b, c, d_)
}

func (op Close) drawTo(d Drawer, _ Matrix2D) {
	d.Stop(true)
}

func (a Matrix2D) trMove(op MoveTo) fixed.Point26_6  { return a.TFixed(fixed.Point26_6(op)) }
func (a Matrix2D) trLine(op LineTo) fixed.Point26_6  { return a.TFixed(fixed.Point26_6(op)) }
func (a Matrix2D) trQuad(op QuadTo) (b, c fixed.Point26_6) {
	return a.TFixed(op[0]), a.TFixed(op[1])
}
func (a Matrix2D) trCubic(op CubicTo) (b, c, d fixed.Point26_6) {
	return a.TFixed(op[0]), a.TFixed(op[1]), a.TFixed(op[2])
}

// Path describes a sequence of basic SVG operations, which should not be nil
// Higher-level shapes may be reduced to a path.
type Path []Operation

// DrawTo replays the path on the drawer `d`, after applying
// the transform `M` to every point.
func (p Path) DrawTo(d Drawer, M Matrix2D) {
	for _, op := range p {
		op.drawTo(d, M)
	}
	d.Stop(false)
}

// ToSVGPath returns a string representation of the path
func (p Path) ToSVGPath() string {
	chunks := make([]string, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			chunks[i] = fmt.Sprintf("M%4.3f,%4.3f", float32(op.X)/64, float32(op.Y)/64)
		case LineTo:
			chunks[i] = fmt.Sprintf("L%4.3f,%4.3f", float32(op.X)/64, float32(op.Y)/64)
		case QuadTo:
			chunks[i] = fmt.Sprintf("Q%4.3f,%4.3f,%4.3f,%4.3f", float32(op[0].X)/64, float32(op[0].Y)/64,
				float32(op[1].X)/64, float32(op[1].Y)/64)
		case CubicTo:
			chunks[i] = fmt.Sprintf("C%4.3f,%4.3f,%4.3f,%4.3f,%4.3f,%4.3f", float32(op[0].X)/64, float32(op[0].Y)/64,
				float32(op[1].X)/64, float32(op[1].Y)/64, float32(op[2].X)/64, float32(op[2].Y)/64)
		case Close:
			chunks[i] = "Z"
		}
	}
	return strings.Join(chunks, " ")
}

// String returns a readable representation of a Path.
func (p Path) String() string {
	return p.ToSVGPath()
}

// Clear zeros the path slice
func (p *Path) Clear() {
	*p = (*p)[:0]
}

// Start starts a new curve at the given point.
func (p *Path) Start(a fixed.Point26_6) {
	*p = append(*p, MoveTo{a.X, a.Y})
}

// Line adds a linear segment to the current curve.
func (p *Path) Line(b fixed.Point26_6) {
	*p = append(*p, LineTo{b.X, b.Y})
}

// QuadBezier adds a quadratic segment to the current curve.
func (p *Path) QuadBezier(b, c fixed.Point26_6) {
	*p = append(*p, QuadTo{b, c})
}

// CubeBezier adds a cubic segment to the current curve.
func (p *Path) CubeBezier(b, c, d fixed.Point26_6) {
	*p = append(*p, CubicTo{b, c, d})
}

// Stop joins the ends of the path
func (p *Path) Stop(closeLoop bool) {
	if closeLoop {
		*p = append(*p, Close{})
	}
}
