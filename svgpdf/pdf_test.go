package svgpdf

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/require"

	"github.com/tecnickcom/tc-lib-pdf-svg/svgconv"
	"github.com/tecnickcom/tc-lib-pdf-svg/svgpath"
)

func renderToPDF(t *testing.T, doc string) *gofpdf.Fpdf {
	t.Helper()
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	r := NewRenderer(pdf)
	require.NoError(t, svgconv.Draw(strings.NewReader(doc), r,
		svgconv.Options{Width: 100, Height: 100}, svgconv.IgnoreErrorMode))
	require.NoError(t, pdf.Error())
	return pdf
}

func output(t *testing.T, pdf *gofpdf.Fpdf) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func TestRenderShapes(t *testing.T) {
	pdf := renderToPDF(t, `<svg viewBox="0 0 10 10">
		<rect width="4" height="4" fill="#ff0000"/>
		<circle cx="7" cy="7" r="2" fill="none" stroke="#0000ff" stroke-width="0.5"/>
		<path d="M0 8 Q 5 10 10 8" fill="none" stroke="#000000" stroke-width="0.2"/>
	</svg>`)

	out := output(t, pdf)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderGroupsAndClips(t *testing.T) {
	pdf := renderToPDF(t, `<svg viewBox="0 0 10 10">
		<clipPath id="c"><circle cx="5" cy="5" r="4"/></clipPath>
		<g opacity="0.5" clip-path="url(#c)">
			<rect width="10" height="10" fill="#00ff00"/>
		</g>
	</svg>`)

	// unbalanced clip or transform blocks would fail here
	require.NotEmpty(t, output(t, pdf))
}

func TestRenderGradient(t *testing.T) {
	pdf := renderToPDF(t, `<svg viewBox="0 0 10 10">
		<linearGradient id="g">
			<stop offset="0" stop-color="#ff0000"/>
			<stop offset="1" stop-color="#0000ff"/>
		</linearGradient>
		<rect width="10" height="10" fill="url(#g)"/>
		<radialGradient id="r">
			<stop offset="0" stop-color="#ffffff"/>
			<stop offset="1" stop-color="#000000"/>
		</radialGradient>
		<circle cx="5" cy="5" r="3" fill="url(#r)"/>
	</svg>`)

	require.NotEmpty(t, output(t, pdf))
}

func TestRenderText(t *testing.T) {
	pdf := renderToPDF(t, `<svg viewBox="0 0 100 100">
		<text x="50" y="50" font-family="helvetica" font-size="12" text-anchor="middle">hello</text>
	</svg>`)

	require.NotEmpty(t, output(t, pdf))
}

func TestRenderImage(t *testing.T) {
	const png = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="
	pdf := renderToPDF(t, `<svg viewBox="0 0 10 10">
		<image x="1" y="1" width="4" height="4" href="data:image/png;base64,`+png+`"/>
	</svg>`)

	require.NotEmpty(t, output(t, pdf))
}

func TestDrawImageUnsupportedType(t *testing.T) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	r := NewRenderer(pdf)
	err := r.DrawImage(svgconv.Image{MimeType: "image/tiff", Transform: svgpath.Identity})
	require.Error(t, err)
}

func TestRenderSVGToPDFFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "out.pdf")
	doc := `<svg viewBox="0 0 10 10"><rect width="10" height="10" fill="#123456"/></svg>`
	require.NoError(t, RenderSVGToPDF(strings.NewReader(doc), name))

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
