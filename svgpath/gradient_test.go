package svgpath

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortStops(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	green := color.NRGBA{G: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}

	g := Gradient{Stops: []GradStop{
		{Offset: 1, StopColor: blue},
		{Offset: 0, StopColor: red},
		{Offset: 0.5, StopColor: green},
	}}
	g.SortStops()

	require.Equal(t, []float64{0, 0.5, 1},
		[]float64{g.Stops[0].Offset, g.Stops[1].Offset, g.Stops[2].Offset})
	require.Equal(t, red, g.Stops[0].StopColor)
}

func TestSortStopsStable(t *testing.T) {
	a := color.NRGBA{R: 1}
	b := color.NRGBA{R: 2}
	g := Gradient{Stops: []GradStop{
		{Offset: 0.5, StopColor: a},
		{Offset: 0.5, StopColor: b},
	}}
	g.SortStops()

	// document order is kept for equal offsets
	require.Equal(t, a, g.Stops[0].StopColor)
	require.Equal(t, b, g.Stops[1].StopColor)
}

func TestGradientDirecter(t *testing.T) {
	require.False(t, Linear{}.IsRadial())
	require.True(t, Radial{}.IsRadial())
}
