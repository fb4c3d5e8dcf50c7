package svgpath

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddRectBounds(t *testing.T) {
	var p Path
	p.AddRect(2, 3, 12, 8, 0)

	b := p.BoundingBox()
	require.InDelta(t, 2, b.X, 1./32)
	require.InDelta(t, 3, b.Y, 1./32)
	require.InDelta(t, 10, b.W, 1./16)
	require.InDelta(t, 5, b.H, 1./16)
}

func TestAddRectRotated(t *testing.T) {
	var p Path
	// a square rotated 45 degrees spans diagonal x diagonal
	p.AddRect(0, 0, 10, 10, 45)

	b := p.BoundingBox()
	require.InDelta(t, 14.142, b.W, 0.05)
	require.InDelta(t, 14.142, b.H, 0.05)
}

func TestAddRoundRectStaysInside(t *testing.T) {
	var p Path
	p.AddRoundRect(0, 0, 20, 10, 3, 3, 0)

	b := p.BoundingBox()
	require.GreaterOrEqual(t, b.X, -0.05)
	require.GreaterOrEqual(t, b.Y, -0.05)
	require.LessOrEqual(t, b.X+b.W, 20.05)
	require.LessOrEqual(t, b.Y+b.H, 10.05)
	// straight edges still touch the sides
	require.InDelta(t, 20, b.W, 0.1)
	require.InDelta(t, 10, b.H, 0.1)
}

func TestAddEllipseBounds(t *testing.T) {
	var p Path
	p.AddEllipse(10, 20, 4, 6)

	b := p.BoundingBox()
	require.InDelta(t, 6, b.X, 0.05)
	require.InDelta(t, 14, b.Y, 0.05)
	require.InDelta(t, 8, b.W, 0.1)
	require.InDelta(t, 12, b.H, 0.1)
}

func TestAddCircleClosed(t *testing.T) {
	var p Path
	p.AddEllipse(0, 0, 5, 5)
	require.IsType(t, Close{}, p[len(p)-1])
}
