package svgpath

import (
	"image/color"
	"sort"
)

// Pattern is the payload of a fill or stroke paint:
// either a PlainColor or a Gradient.
type Pattern interface {
	isPattern()
}

// PlainColor is a non-transparent solid color paint.
type PlainColor struct {
	color.NRGBA
}

// NewPlainColor builds a PlainColor from its components.
func NewPlainColor(r, g, b, a uint8) PlainColor {
	return PlainColor{NRGBA: color.NRGBA{R: r, G: g, B: b, A: a}}
}

func (PlainColor) isPattern() {}
func (Gradient) isPattern()   {}

// GradientUnits is the coordinate interpretation mode of a gradient
type GradientUnits byte

// SVG bounds paremater constants
const (
	ObjectBoundingBox GradientUnits = iota
	UserSpaceOnUse
)

// SpreadMethod is the type for spread parameters
type SpreadMethod byte

// SVG spread parameter constants
const (
	PadSpread SpreadMethod = iota
	ReflectSpread
	RepeatSpread
)

// GradStop represents a stop in the SVG 2.0 gradient specification
type GradStop struct {
	StopColor color.Color
	Offset    float64
	Opacity   float64
}

// Gradient holds a placement-ready description of an SVG 2.0 gradient
type Gradient struct {
	Direction GradientDirecter
	Stops     []GradStop
	Bounds    Bounds
	Matrix    Matrix2D
	Spread    SpreadMethod
	Units     GradientUnits
}

// SortStops orders the stop list by increasing offset,
// keeping the document order of equal offsets.
func (g *Gradient) SortStops() {
	sort.SliceStable(g.Stops, func(i, j int) bool {
		return g.Stops[i].Offset < g.Stops[j].Offset
	})
}

// GradientDirecter is either a Linear or a Radial geometry.
type GradientDirecter interface {
	IsRadial() bool
}

// Linear is x1, y1, x2, y2
type Linear [4]float64

func (Linear) IsRadial() bool { return false }

// Radial is cx, cy, fx, fy, r, fr
type Radial [6]float64

func (Radial) IsRadial() bool { return true }
