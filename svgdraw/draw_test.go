package svgdraw

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tecnickcom/tc-lib-pdf-svg/svgconv"
	"github.com/tecnickcom/tc-lib-pdf-svg/svgpath"
)

func render(t *testing.T, doc string, pageHeight float64) (string, *Resources) {
	t.Helper()
	cv, res := NewConverter(pageHeight, svgconv.IgnoreErrorMode)
	h, err := cv.Convert(doc, svgconv.Options{})
	require.NoError(t, err)
	content, err := cv.Render(h)
	require.NoError(t, err)
	return content, res
}

func TestFillOperators(t *testing.T) {
	content, _ := render(t, `<svg viewBox="0 0 10 10">
		<rect width="10" height="10" fill="#ff0000"/>
	</svg>`, 100)

	require.Contains(t, content, "1 0 0 rg\n")
	require.Contains(t, content, " m\n")
	require.Contains(t, content, " l\n")
	require.Contains(t, content, "h\n")
	require.True(t, strings.HasSuffix(content, "f\n"))
}

func TestFlipY(t *testing.T) {
	content, _ := render(t, `<svg viewBox="0 0 10 10">
		<rect width="10" height="10" fill="#000000"/>
	</svg>`, 100)

	// document y=0 lands at page y=100, y=10 at 90
	require.Contains(t, content, "0 100 m\n")
	require.Contains(t, content, "10 90 l\n")
}

func TestEvenOddFill(t *testing.T) {
	content, _ := render(t, `<svg viewBox="0 0 10 10">
		<rect width="10" height="10" fill="#000000" fill-rule="evenodd"/>
	</svg>`, 100)
	require.Contains(t, content, "f*\n")
}

func TestStrokeOperators(t *testing.T) {
	content, _ := render(t, `<svg viewBox="0 0 10 10">
		<line x1="0" y1="0" x2="10" y2="0" stroke="#0000ff" stroke-width="2"
			stroke-linecap="round" stroke-dasharray="3 1"/>
	</svg>`, 100)

	require.Contains(t, content, "2 w\n")
	require.Contains(t, content, "1 J\n")
	require.Contains(t, content, "[3 1] 0 d\n")
	require.Contains(t, content, "0 0 1 RG\n")
	require.True(t, strings.HasSuffix(content, "S\n"))
}

func TestGroupStateOperators(t *testing.T) {
	content, res := render(t, `<svg viewBox="0 0 10 10">
		<g opacity="0.5"><rect width="4" height="4" fill="#000000"/></g>
	</svg>`, 100)

	require.Contains(t, content, "q\n")
	require.Contains(t, content, "/GS1 gs\n")
	require.True(t, strings.HasSuffix(content, "Q\n"))
	require.Equal(t, []float64{0.5}, res.Alphas())
}

func TestFillOpacityRegistersAlpha(t *testing.T) {
	content, res := render(t, `<svg viewBox="0 0 10 10">
		<rect width="4" height="4" fill="#ff0000" fill-opacity="0.25"/>
		<rect x="5" width="4" height="4" fill="#00ff00" fill-opacity="0.25"/>
	</svg>`, 100)

	require.Contains(t, content, "/GS1 gs\n")
	// same opacity value shares one state
	require.Equal(t, []float64{0.25}, res.Alphas())
}

func TestClipOperators(t *testing.T) {
	content, _ := render(t, `<svg viewBox="0 0 10 10">
		<clipPath id="c"><rect width="5" height="5"/></clipPath>
		<rect width="10" height="10" fill="#000000" clip-path="url(#c)"/>
	</svg>`, 100)

	require.Contains(t, content, "W n\n")
	clip := strings.Index(content, "W n\n")
	fill := strings.Index(content, "f\n")
	require.Less(t, clip, fill)
}

func TestGradientFillBracketsShading(t *testing.T) {
	content, res := render(t, `<svg viewBox="0 0 10 10">
		<linearGradient id="g">
			<stop offset="0" stop-color="#ff0000"/>
			<stop offset="1" stop-color="#0000ff"/>
		</linearGradient>
		<rect width="10" height="10" fill="url(#g)"/>
	</svg>`, 100)

	require.Contains(t, content, "q\n")
	require.Contains(t, content, "W n\n/Sh1 sh\nQ\n")
	require.Len(t, res.Shadings(), 1)
	require.Len(t, res.Shadings()[0].Stops, 2)
}

func TestTextOperators(t *testing.T) {
	content, res := render(t, `<svg viewBox="0 0 100 100">
		<text x="10" y="20" font-family="courier" font-size="12">a (b) c</text>
	</svg>`, 100)

	require.Contains(t, content, "BT\n")
	require.Contains(t, content, "/F1 12 Tf\n")
	require.Contains(t, content, "(a \\(b\\) c) Tj\n")
	require.Contains(t, content, "ET\n")
	require.Equal(t, []string{"courier"}, res.Fonts())
}

func TestImageOperators(t *testing.T) {
	const png = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="
	content, res := render(t, `<svg viewBox="0 0 10 10">
		<image x="1" y="1" width="4" height="4" href="data:image/png;base64,`+png+`"/>
	</svg>`, 100)

	require.Contains(t, content, "/Img1 Do\n")
	require.Contains(t, content, " cm\n")
	require.Len(t, res.Images(), 1)
	require.Equal(t, "image/png", res.Images()[0].MimeType)
}

func TestSharedResourcesAcrossDocuments(t *testing.T) {
	cv, res := NewConverter(100, svgconv.IgnoreErrorMode)
	doc := `<svg viewBox="0 0 10 10">
		<rect width="4" height="4" fill="#ff0000" fill-opacity="0.5"/>
	</svg>`
	_, err := cv.Convert(doc, svgconv.Options{})
	require.NoError(t, err)
	_, err = cv.Convert(doc, svgconv.Options{})
	require.NoError(t, err)

	// both conversions reuse the /GS1 state
	require.Equal(t, []float64{0.5}, res.Alphas())
}

func TestFmtF(t *testing.T) {
	require.Equal(t, "1", fmtF(1.0))
	require.Equal(t, "1.5", fmtF(1.5))
	require.Equal(t, "0.333", fmtF(1.0/3))
	require.Equal(t, "-2", fmtF(-2.0))
}

func TestDriverDirect(t *testing.T) {
	d := NewDriver(50, nil)
	f, s := d.SetupDrawers(true, false)
	require.NotNil(t, f)
	require.Nil(t, s)

	f.SetWinding(true)
	f.SetColor(svgpath.NewPlainColor(0, 0, 0, 255), 1)
	var p svgpath.Path
	p.AddRect(0, 0, 10, 10, 0)
	p.DrawTo(f, svgpath.Identity)
	f.Draw()

	content := d.Content()
	require.Contains(t, content, "0 0 0 rg\n")
	require.Contains(t, content, "0 50 m\n")
	require.True(t, strings.HasSuffix(content, "f\n"))
}
