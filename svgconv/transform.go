package svgconv

import (
	"math"
	"strconv"
	"strings"

	"github.com/tecnickcom/tc-lib-pdf-svg/svgpath"
)

// Parses the `transform` attribute: a sequence of function calls,
// composed left to right so that the rightmost function
// applies first to the points.

// getFloats reads a comma or space separated list of numbers.
func getFloats(s string) ([]float64, error) {
	fields := splitOnCommaOrSpace(s)
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// applyTransformFunc composes one transform function onto m1.
// Unknown names and wrong argument counts contribute the identity:
// the function is skipped, not an error.
func applyTransformFunc(m1 svgpath.Matrix2D, name string, pts []float64) svgpath.Matrix2D {
	ln := len(pts)
	switch name {
	case "rotate":
		if ln == 1 {
			return m1.Rotate(pts[0] * math.Pi / 180)
		}
		if ln == 3 {
			return m1.Translate(pts[1], pts[2]).
				Rotate(pts[0] * math.Pi / 180).
				Translate(-pts[1], -pts[2])
		}
	case "translate":
		if ln == 1 {
			return m1.Translate(pts[0], 0)
		}
		if ln == 2 {
			return m1.Translate(pts[0], pts[1])
		}
	case "skewx":
		if ln == 1 {
			return m1.SkewX(pts[0] * math.Pi / 180)
		}
	case "skewy":
		if ln == 1 {
			return m1.SkewY(pts[0] * math.Pi / 180)
		}
	case "scale":
		if ln == 1 {
			return m1.Scale(pts[0], pts[0])
		}
		if ln == 2 {
			return m1.Scale(pts[0], pts[1])
		}
	case "matrix":
		if ln == 6 {
			return m1.Mult(svgpath.Matrix2D{
				A: pts[0],
				B: pts[1],
				C: pts[2],
				D: pts[3],
				E: pts[4],
				F: pts[5]})
		}
	}
	return m1
}

// parseTransform composes the functions of a transform attribute onto base.
func parseTransform(base svgpath.Matrix2D, v string) svgpath.Matrix2D {
	m1 := base
	for _, t := range strings.Split(v, ")") {
		t = strings.TrimSpace(t)
		if len(t) == 0 {
			continue
		}
		d := strings.Split(t, "(")
		if len(d) != 2 || len(d[1]) < 1 {
			continue // badly formed function, skipped
		}
		pts, err := getFloats(d[1])
		if err != nil {
			continue
		}
		m1 = applyTransformFunc(m1, strings.ToLower(strings.TrimSpace(d[0])), pts)
	}
	return m1
}
