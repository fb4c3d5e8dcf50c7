package svgpath

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoundingBoxCubicCriticalPoint(t *testing.T) {
	// control points at y=20 but the curve only reaches y=15
	p, err := ParsePath("M0 0 C 0 20 10 20 10 0")
	require.NoError(t, err)

	b := p.BoundingBox()
	require.InDelta(t, 0, b.Y, 0.05)
	require.InDelta(t, 15, b.H, 0.05)
	require.InDelta(t, 10, b.W, 0.05)
}

func TestBoundingBoxQuad(t *testing.T) {
	var p Path
	p.Start(toFixedP(0, 0))
	p.QuadBezier(toFixedP(5, 10), toFixedP(10, 0))

	b := p.BoundingBox()
	// quad apex is at half the control height
	require.InDelta(t, 5, b.H, 0.05)
}

func TestBoundingBoxEmpty(t *testing.T) {
	var p Path
	require.Equal(t, Bounds{}, p.BoundingBox())
}

func TestBoundingBoxCloseSegment(t *testing.T) {
	// the implicit closing edge is part of the extent
	p, err := ParsePath("M0 0 L10 0 L10 10 Z")
	require.NoError(t, err)
	b := p.BoundingBox()
	require.InDelta(t, 10, b.W, 1e-6)
	require.InDelta(t, 10, b.H, 1e-6)
}
