package svgpath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatrixIdentity(t *testing.T) {
	x, y := Identity.Transform(3, 7)
	require.Equal(t, 3.0, x)
	require.Equal(t, 7.0, y)
}

func TestMatrixRightmostActsFirst(t *testing.T) {
	m := Identity.Translate(10, 20).Scale(2, 2)

	// scaling happens before the translation
	x, y := m.Transform(0, 0)
	require.InDelta(t, 10, x, 1e-9)
	require.InDelta(t, 20, y, 1e-9)

	x, y = m.Transform(1, 0)
	require.InDelta(t, 12, x, 1e-9)
	require.InDelta(t, 20, y, 1e-9)
}

func TestMatrixMultAssociative(t *testing.T) {
	a := Identity.Translate(3, 4)
	b := Identity.Rotate(math.Pi / 3)
	c := Identity.Scale(2, 0.5)

	left := a.Mult(b).Mult(c)
	right := a.Mult(b.Mult(c))

	x1, y1 := left.Transform(5, -2)
	x2, y2 := right.Transform(5, -2)
	require.InDelta(t, x1, x2, 1e-9)
	require.InDelta(t, y1, y2, 1e-9)
}

func TestMatrixRotate(t *testing.T) {
	m := Identity.Rotate(math.Pi / 2)
	x, y := m.Transform(1, 0)
	require.InDelta(t, 0, x, 1e-9)
	require.InDelta(t, 1, y, 1e-9)
}

func TestMatrixSkew(t *testing.T) {
	x, y := Identity.SkewX(math.Pi/4).Transform(0, 1)
	require.InDelta(t, 1, x, 1e-9)
	require.InDelta(t, 1, y, 1e-9)

	x, y = Identity.SkewY(math.Pi/4).Transform(1, 0)
	require.InDelta(t, 1, x, 1e-9)
	require.InDelta(t, 1, y, 1e-9)
}

func TestMatrixTFixed(t *testing.T) {
	m := Identity.Translate(1, 2)
	out := m.TFixed(toFixedP(3, 4))
	x, y := pointAt(out)
	require.InDelta(t, 4, x, 1./32)
	require.InDelta(t, 6, y, 1./32)
}
