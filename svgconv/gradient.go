package svgconv

import (
	"math"
	"strings"

	"github.com/tecnickcom/tc-lib-pdf-svg/svgpath"
)

// Normalizes linear and radial gradient definitions, including
// reference inheritance, into placement-ready stop lists.

// coordMode tells how one raw gradient coordinate is interpreted.
type coordMode uint8

const (
	coordRatio   coordMode = iota // bare number, a fraction of the bounding box
	coordPercent                  // % suffix, divided by 100 and clamped
	coordMeasure                  // absolute length in user units
)

type gradCoord struct {
	value float64
	mode  coordMode
}

// readGradCoord reads one gradient geometry value keeping its mode.
func readGradCoord(v string) (gradCoord, error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "%") {
		f, err := readFraction(v)
		return gradCoord{value: f, mode: coordPercent}, err
	}
	hasUnit := false
	for _, u := range unitScale {
		if strings.HasSuffix(v, u.suffix) {
			hasUnit = true
			break
		}
	}
	f, err := parseBasicFloat(v)
	if hasUnit {
		return gradCoord{value: f, mode: coordMeasure}, err
	}
	return gradCoord{value: f, mode: coordRatio}, err
}

// gradientDef is one linear or radial gradient as found in the
// document, before placement against a paint target.
type gradientDef struct {
	isRadial bool
	// x1, y1, x2, y2 for linear; cx, cy, fx, fy, r, fr for radial
	coords [6]gradCoord

	stops []svgpath.GradStop

	units     svgpath.GradientUnits
	unitsSet  bool
	spread    svgpath.SpreadMethod
	spreadSet bool
	matrix    svgpath.Matrix2D
	matrixSet bool

	href string // reference to another gradient id
}

func newLinearDef() *gradientDef {
	g := &gradientDef{matrix: svgpath.Identity}
	// default vector (0,0) -> (1,0)
	g.coords[2] = gradCoord{value: 1}
	return g
}

func newRadialDef() *gradientDef {
	g := &gradientDef{isRadial: true, matrix: svgpath.Identity}
	for i := 0; i < 5; i++ {
		g.coords[i] = gradCoord{value: 0.5}
	}
	return g
}

// maxRefDepth bounds xlink:href chains, cutting reference cycles.
const maxRefDepth = 16

// resolveGradient normalizes the gradient `id` against the paint
// target's bounding box `box` (in device space) and the transform in
// effect. The second return value is false when the id is unknown.
func (c *docCursor) resolveGradient(id string, box svgpath.Bounds, userTransform svgpath.Matrix2D) (svgpath.Gradient, bool) {
	def, ok := c.ctx.grads[id]
	if !ok {
		return svgpath.Gradient{}, false
	}

	// walk the reference chain: the referencing gradient's own
	// geometry, type and transform always take precedence, the
	// referenced one supplies stops and default attributes
	stops := def.stops
	units, unitsSet := def.units, def.unitsSet
	spread, spreadSet := def.spread, def.spreadSet
	for ref, depth := def.href, 0; ref != "" && depth < maxRefDepth; depth++ {
		parent, ok := c.ctx.grads[ref]
		if !ok {
			break
		}
		if len(stops) == 0 {
			stops = parent.stops
		}
		if !unitsSet && parent.unitsSet {
			units, unitsSet = parent.units, true
		}
		if !spreadSet && parent.spreadSet {
			spread, spreadSet = parent.spread, true
		}
		ref = parent.href
	}

	out := svgpath.Gradient{
		Stops:  append([]svgpath.GradStop(nil), stops...),
		Bounds: box,
		Matrix: svgpath.Identity,
		Spread: spread,
		Units:  units,
	}
	out.SortStops()

	gm := svgpath.Identity
	if def.matrixSet {
		gm = def.matrix
	}

	if units == svgpath.UserSpaceOnUse {
		// raw values are user-space coordinates; percentages
		// resolve against the viewport
		abs := func(co gradCoord, ref float64) float64 {
			if co.mode == coordPercent {
				return co.value * ref
			}
			return co.value
		}
		vb := c.ctx.viewBox
		toDevice := userTransform.Mult(gm)
		if def.isRadial {
			cx, cy := toDevice.Transform(abs(def.coords[0], vb.W), abs(def.coords[1], vb.H))
			fx, fy := toDevice.Transform(abs(def.coords[2], vb.W), abs(def.coords[3], vb.H))
			r := abs(def.coords[4], diagLength(vb)) * matrixScale(toDevice)
			fr := abs(def.coords[5], diagLength(vb)) * matrixScale(toDevice)
			out.Direction = svgpath.Radial{cx, cy, fx, fy, r, fr}
		} else {
			x1, y1 := toDevice.Transform(abs(def.coords[0], vb.W), abs(def.coords[1], vb.H))
			x2, y2 := toDevice.Transform(abs(def.coords[2], vb.W), abs(def.coords[3], vb.H))
			x2, y2 = nudgeDegenerate(x1, y1, x2, y2)
			out.Direction = svgpath.Linear{x1, y1, x2, y2}
		}
		return out, true
	}

	// objectBoundingBox: resolve every coordinate to a fraction of the
	// paint target's box. Absolute measures are shifted into the box
	// first, then renormalized.
	frac := func(co gradCoord, min, size float64) float64 {
		if co.mode == coordMeasure && size != 0 {
			return (co.value - min) / size
		}
		return co.value
	}
	var vals [6]float64
	if def.isRadial {
		vals[0] = frac(def.coords[0], box.X, box.W)
		vals[1] = frac(def.coords[1], box.Y, box.H)
		vals[2] = frac(def.coords[2], box.X, box.W)
		vals[3] = frac(def.coords[3], box.Y, box.H)
		vals[4] = frac(def.coords[4], 0, diagLength(box))
		vals[5] = frac(def.coords[5], 0, diagLength(box))
	} else {
		vals[0] = frac(def.coords[0], box.X, box.W)
		vals[1] = frac(def.coords[1], box.Y, box.H)
		vals[2] = frac(def.coords[2], box.X, box.W)
		vals[3] = frac(def.coords[3], box.Y, box.H)
	}
	if def.matrixSet {
		// gradientTransform acts in the unit square of the box
		vals[0], vals[1] = gm.Transform(vals[0], vals[1])
		vals[2], vals[3] = gm.Transform(vals[2], vals[3])
		if def.isRadial {
			s := matrixScale(gm)
			vals[4] *= s
			vals[5] *= s
		}
	}
	if def.isRadial {
		out.Direction = svgpath.Radial{vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]}
	} else {
		x2, y2 := nudgeDegenerate(vals[0], vals[1], vals[2], vals[3])
		out.Direction = svgpath.Linear{vals[0], vals[1], x2, y2}
	}
	return out, true
}

// nudgeDegenerate moves the end point of a zero-length linear
// gradient by a near-zero amount, so the last stop's color
// dominates instead of an undefined direction.
func nudgeDegenerate(x1, y1, x2, y2 float64) (float64, float64) {
	const eps = 1e-6
	if x1 == x2 && y1 == y2 {
		return x2 + eps, y2
	}
	return x2, y2
}

func diagLength(b svgpath.Bounds) float64 {
	return (b.W + b.H) / 2
}

// matrixScale is the average scale factor of a transform,
// used to carry lengths (radii, line widths) through it.
func matrixScale(m svgpath.Matrix2D) float64 {
	sx := math.Hypot(m.A, m.B)
	sy := math.Hypot(m.C, m.D)
	return (sx + sy) / 2
}
