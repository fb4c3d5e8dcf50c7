package svgconv

import (
	"strings"

	"github.com/tecnickcom/tc-lib-pdf-svg/svgpath"
)

// Computes the transform mapping a viewBox onto the physical
// viewport, honoring the preserveAspectRatio fit policy.

// axisAlign defines the alignment of one axis of the viewBox
// within the leftover viewport space.
type axisAlign uint8

const (
	alignMin axisAlign = iota // zero offset
	alignMid                  // half the leftover space
	alignMax                  // full leftover space
)

// fitPolicy is the parsed form of a preserveAspectRatio token.
type fitPolicy struct {
	none   bool // independent scale factors, no alignment
	slice  bool // cover the viewport (max) instead of fitting inside it (min)
	alignX axisAlign
	alignY axisAlign
}

// defaultFit is xMidYMid meet.
var defaultFit = fitPolicy{alignX: alignMid, alignY: alignMid}

// parsePreserveAspectRatio reads a preserveAspectRatio token.
// Unknown tokens resolve to the default policy.
func parsePreserveAspectRatio(v string) fitPolicy {
	fields := strings.Fields(strings.TrimSpace(v))
	if len(fields) == 0 {
		return defaultFit
	}
	if fields[0] == "none" {
		return fitPolicy{none: true}
	}
	p := defaultFit
	al := fields[0]
	if len(al) == 8 {
		switch al[:4] {
		case "xMin":
			p.alignX = alignMin
		case "xMid":
			p.alignX = alignMid
		case "xMax":
			p.alignX = alignMax
		}
		switch al[4:] {
		case "YMin":
			p.alignY = alignMin
		case "YMid":
			p.alignY = alignMid
		case "YMax":
			p.alignY = alignMax
		}
	}
	if len(fields) > 1 && fields[1] == "slice" {
		p.slice = true
	}
	return p
}

func (a axisAlign) offset(leftover float64) float64 {
	switch a {
	case alignMid:
		return leftover / 2
	case alignMax:
		return leftover
	}
	return 0
}

// viewBoxTransform computes the matrix fitting the viewBox into a
// viewport of the given size. It composes after the element's own
// transform.
func viewBoxTransform(vb svgpath.Bounds, viewportW, viewportH float64, fit fitPolicy) svgpath.Matrix2D {
	if vb.W <= 0 || vb.H <= 0 || viewportW <= 0 || viewportH <= 0 {
		return svgpath.Identity
	}
	sx := viewportW / vb.W
	sy := viewportH / vb.H
	if fit.none {
		return svgpath.Identity.Scale(sx, sy).Translate(-vb.X, -vb.Y)
	}
	s := sx
	if fit.slice {
		if sy > s {
			s = sy
		}
	} else {
		if sy < s {
			s = sy
		}
	}
	dx := fit.alignX.offset(viewportW - vb.W*s)
	dy := fit.alignY.offset(viewportH - vb.H*s)
	return svgpath.Identity.Translate(dx, dy).Scale(s, s).Translate(-vb.X, -vb.Y)
}
