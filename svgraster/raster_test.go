package svgraster

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tecnickcom/tc-lib-pdf-svg/svgconv"
)

func raster(t *testing.T, doc string, w, h int) *image.RGBA {
	t.Helper()
	img, err := RasterSVGToImage(strings.NewReader(doc), w, h, svgconv.IgnoreErrorMode)
	require.NoError(t, err)
	return img
}

func TestRasterFilledRect(t *testing.T) {
	img := raster(t, `<svg viewBox="0 0 10 10">
		<rect width="10" height="10" fill="#ff0000"/>
	</svg>`, 10, 10)

	c := img.RGBAAt(5, 5)
	require.Greater(t, c.R, uint8(200))
	require.Less(t, c.G, uint8(50))
	require.Greater(t, c.A, uint8(200))
}

func TestRasterBackgroundUntouched(t *testing.T) {
	img := raster(t, `<svg viewBox="0 0 10 10">
		<rect width="4" height="4" fill="#ff0000"/>
	</svg>`, 10, 10)

	require.Equal(t, color.RGBA{}, img.RGBAAt(8, 8))
	require.Greater(t, img.RGBAAt(1, 1).R, uint8(200))
}

func TestRasterScalesToTarget(t *testing.T) {
	// the 10x10 viewBox stretches over a 20x20 image
	img := raster(t, `<svg viewBox="0 0 10 10">
		<rect width="5" height="5" fill="#00ff00"/>
	</svg>`, 20, 20)

	require.Greater(t, img.RGBAAt(8, 8).G, uint8(200))
	require.Equal(t, color.RGBA{}, img.RGBAAt(15, 15))
}

func TestRasterStroke(t *testing.T) {
	img := raster(t, `<svg viewBox="0 0 10 10">
		<line x1="0" y1="5" x2="10" y2="5" stroke="#0000ff" stroke-width="2"/>
	</svg>`, 10, 10)

	require.Greater(t, img.RGBAAt(5, 5).B, uint8(200))
	require.Equal(t, color.RGBA{}, img.RGBAAt(5, 1))
}

func TestRasterGradient(t *testing.T) {
	img := raster(t, `<svg viewBox="0 0 10 10">
		<linearGradient id="g">
			<stop offset="0" stop-color="#ff0000"/>
			<stop offset="1" stop-color="#0000ff"/>
		</linearGradient>
		<rect width="10" height="10" fill="url(#g)"/>
	</svg>`, 10, 10)

	left := img.RGBAAt(1, 5)
	right := img.RGBAAt(8, 5)
	require.Greater(t, left.R, left.B)
	require.Greater(t, right.B, right.R)
}

func TestRasterOpacity(t *testing.T) {
	img := raster(t, `<svg viewBox="0 0 10 10">
		<rect width="10" height="10" fill="#ff0000" fill-opacity="0.5"/>
	</svg>`, 10, 10)

	a := img.RGBAAt(5, 5).A
	require.Greater(t, a, uint8(90))
	require.Less(t, a, uint8(170))
}

func TestRasterEvenOdd(t *testing.T) {
	// outer square minus inner square leaves a hole
	img := raster(t, `<svg viewBox="0 0 10 10">
		<path fill-rule="evenodd" fill="#000000"
			d="M0 0 L10 0 L10 10 L0 10 Z M3 3 L7 3 L7 7 L3 7 Z"/>
	</svg>`, 10, 10)

	require.Equal(t, uint8(0), img.RGBAAt(5, 5).A)
	require.Greater(t, img.RGBAAt(1, 1).A, uint8(200))
}
