// Implements a PDF backend to render SVG images,
// by wrapping github.com/jung-kurt/gofpdf.
package svgpdf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/math/fixed"

	"github.com/tecnickcom/tc-lib-pdf-svg/svgconv"
	"github.com/tecnickcom/tc-lib-pdf-svg/svgpath"
)

// assert interface conformance
var (
	_ svgconv.Driver  = (*Renderer)(nil)
	_ svgconv.Filler  = (*filler)(nil)
	_ svgconv.Stroker = (*stroker)(nil)
)

// Renderer paints converted documents on a gofpdf page.
type Renderer struct {
	pdf        *gofpdf.Fpdf
	clipCounts []int // clip regions opened per graphics state frame
	imageCount int
}

// NewRenderer returns a renderer which will
// write to the given `pdf`.
func NewRenderer(pdf *gofpdf.Fpdf) *Renderer {
	return &Renderer{pdf: pdf}
}

func fixedTof(a fixed.Point26_6) (float64, float64) {
	return float64(a.X) / 64, float64(a.Y) / 64
}

// implements the common path commands,
// shared by the filler and the stroker
type pather struct {
	pdf *gofpdf.Fpdf
	a   fixed.Point26_6    // current point
	pts []gofpdf.PointType // flattened outline, for clip-based painting
}

// curveSteps is the flattening resolution of the clip outline.
const curveSteps = 12

func (p *pather) addPoint(x, y float64) {
	p.pts = append(p.pts, gofpdf.PointType{X: x, Y: y})
}

func (p *pather) Clear() {
	p.a = fixed.Point26_6{}
	p.pts = p.pts[:0]
}

func (p *pather) Start(a fixed.Point26_6) {
	x, y := fixedTof(a)
	p.pdf.MoveTo(x, y)
	p.addPoint(x, y)
	p.a = a
}

func (p *pather) Line(b fixed.Point26_6) {
	x, y := fixedTof(b)
	p.pdf.LineTo(x, y)
	p.addPoint(x, y)
	p.a = b
}

func (p *pather) QuadBezier(b, c fixed.Point26_6) {
	cx, cy := fixedTof(b)
	x, y := fixedTof(c)
	p.pdf.CurveTo(cx, cy, x, y)
	ax, ay := fixedTof(p.a)
	for i := 1; i <= curveSteps; i++ {
		t := float64(i) / curveSteps
		u := 1 - t
		p.addPoint(
			u*u*ax+2*u*t*cx+t*t*x,
			u*u*ay+2*u*t*cy+t*t*y)
	}
	p.a = c
}

func (p *pather) CubeBezier(b, c, d fixed.Point26_6) {
	cx0, cy0 := fixedTof(b)
	cx1, cy1 := fixedTof(c)
	x, y := fixedTof(d)
	p.pdf.CurveBezierCubicTo(cx0, cy0, cx1, cy1, x, y)
	ax, ay := fixedTof(p.a)
	for i := 1; i <= curveSteps; i++ {
		t := float64(i) / curveSteps
		u := 1 - t
		p.addPoint(
			u*u*u*ax+3*u*u*t*cx0+3*u*t*t*cx1+t*t*t*x,
			u*u*u*ay+3*u*u*t*cy0+3*u*t*t*cy1+t*t*t*y)
	}
	p.a = d
}

func (p *pather) Stop(closeLoop bool) {
	if closeLoop {
		p.pdf.ClosePath()
	}
}

func stopColor(s svgpath.GradStop) (int, int, int) {
	r, g, b, _ := s.StopColor.RGBA()
	return int(r >> 8), int(g >> 8), int(b >> 8)
}

// gradFraction renormalizes one gradient coordinate against the
// paint box, when the gradient is in user-space coordinates.
func gradFraction(v, min, size float64, userSpace bool) float64 {
	if !userSpace || size == 0 {
		return v
	}
	return (v - min) / size
}

// paintGradient clips to the flattened outline and paints a
// two-color gofpdf gradient between the first and last stops.
func paintGradient(pdf *gofpdf.Fpdf, pts []gofpdf.PointType, g svgpath.Gradient) {
	if len(g.Stops) == 0 || len(pts) < 3 {
		return
	}
	r1, g1, b1 := stopColor(g.Stops[0])
	r2, g2, b2 := stopColor(g.Stops[len(g.Stops)-1])
	b := g.Bounds
	user := g.Units == svgpath.UserSpaceOnUse
	pdf.ClipPolygon(pts, false)
	switch dir := g.Direction.(type) {
	case svgpath.Linear:
		pdf.LinearGradient(b.X, b.Y, b.W, b.H, r1, g1, b1, r2, g2, b2,
			gradFraction(dir[0], b.X, b.W, user), gradFraction(dir[1], b.Y, b.H, user),
			gradFraction(dir[2], b.X, b.W, user), gradFraction(dir[3], b.Y, b.H, user))
	case svgpath.Radial:
		diag := (b.W + b.H) / 2
		pdf.RadialGradient(b.X, b.Y, b.W, b.H, r1, g1, b1, r2, g2, b2,
			gradFraction(dir[0], b.X, b.W, user), gradFraction(dir[1], b.Y, b.H, user),
			gradFraction(dir[2], b.X, b.W, user), gradFraction(dir[3], b.Y, b.H, user),
			gradFraction(dir[4], 0, diag, user))
	}
	pdf.ClipEnd()
}

// implements the filling operation
type filler struct {
	pather
	useNonZeroWinding bool
	gradient          *svgpath.Gradient
}

func (f *filler) SetWinding(useNonZeroWinding bool) {
	f.useNonZeroWinding = useNonZeroWinding
}

func (f *filler) SetColor(pattern svgpath.Pattern, opacity float64) {
	f.gradient = nil
	switch pattern := pattern.(type) {
	case svgpath.PlainColor:
		f.pdf.SetFillColor(int(pattern.R), int(pattern.G), int(pattern.B))
		opacity *= float64(pattern.A) / 255.
		f.pdf.SetAlpha(opacity, "Normal")
	case svgpath.Gradient:
		f.gradient = &pattern
		f.pdf.SetAlpha(opacity, "Normal")
	}
}

func (f *filler) Draw() {
	if f.gradient != nil {
		paintGradient(f.pdf, f.pts, *f.gradient)
		return
	}
	styleStr := "f*"
	if f.useNonZeroWinding {
		styleStr = "f"
	}
	f.pdf.DrawPath(styleStr)
}

// implements the stroking operation
type stroker struct {
	pather
}

func (s *stroker) SetStrokeOptions(options svgconv.StrokeOptions) {
	s.pdf.SetLineWidth(float64(options.LineWidth) / 64)
	switch options.Join.TrailLineCap {
	case svgconv.RoundCap:
		s.pdf.SetLineCapStyle("round")
	case svgconv.SquareCap:
		s.pdf.SetLineCapStyle("square")
	default:
		s.pdf.SetLineCapStyle("butt")
	}
	switch options.Join.LineJoin {
	case svgconv.Round, svgconv.Arc:
		s.pdf.SetLineJoinStyle("round")
	case svgconv.Bevel:
		s.pdf.SetLineJoinStyle("bevel")
	default:
		s.pdf.SetLineJoinStyle("miter")
	}
	s.pdf.SetDashPattern(options.Dash.Dash, options.Dash.DashOffset)
}

func (s *stroker) SetColor(pattern svgpath.Pattern, opacity float64) {
	switch pattern := pattern.(type) {
	case svgpath.PlainColor:
		s.pdf.SetDrawColor(int(pattern.R), int(pattern.G), int(pattern.B))
		opacity *= float64(pattern.A) / 255.
	case svgpath.Gradient:
		// stroking shading patterns are not expressible here,
		// the first stop color stands in
		if len(pattern.Stops) > 0 {
			r, g, b := stopColor(pattern.Stops[0])
			s.pdf.SetDrawColor(r, g, b)
		}
	}
	s.pdf.SetAlpha(opacity, "Normal")
}

func (s *stroker) Draw() {
	s.pdf.DrawPath("S")
}

// SetupDrawers returns the path painters of one shape.
func (r *Renderer) SetupDrawers(willFill, willStroke bool) (svgconv.Filler, svgconv.Stroker) {
	var f svgconv.Filler
	var s svgconv.Stroker
	if willFill {
		f = &filler{pather: pather{pdf: r.pdf}, useNonZeroWinding: true}
	}
	if willStroke {
		s = &stroker{pather: pather{pdf: r.pdf}}
	}
	return f, s
}

// PushState saves the graphics state.
func (r *Renderer) PushState() {
	r.pdf.TransformBegin()
	r.clipCounts = append(r.clipCounts, 0)
}

// PopState closes the clip regions of the frame and restores the
// graphics state.
func (r *Renderer) PopState() {
	if n := len(r.clipCounts); n > 0 {
		for i := 0; i < r.clipCounts[n-1]; i++ {
			r.pdf.ClipEnd()
		}
		r.clipCounts = r.clipCounts[:n-1]
	}
	r.pdf.TransformEnd()
}

// SetAlpha requests a transparency state, restored with the
// enclosing frame.
func (r *Renderer) SetAlpha(opacity float64) {
	r.pdf.SetAlpha(opacity, "Normal")
}

// SetClip intersects the clip region with the flattened path.
func (r *Renderer) SetClip(clip svgpath.Path, m svgpath.Matrix2D) {
	var p pather
	p.pdf = r.pdf
	collector := clipCollector{p: &p}
	clip.DrawTo(&collector, m)
	if len(p.pts) < 3 {
		return
	}
	r.pdf.ClipPolygon(p.pts, false)
	if n := len(r.clipCounts); n > 0 {
		r.clipCounts[n-1]++
	}
}

// clipCollector flattens path operations into polygon points
// without writing page operators.
type clipCollector struct {
	p *pather
}

func (c *clipCollector) Start(a fixed.Point26_6) {
	x, y := fixedTof(a)
	c.p.addPoint(x, y)
	c.p.a = a
}

func (c *clipCollector) Line(b fixed.Point26_6) {
	x, y := fixedTof(b)
	c.p.addPoint(x, y)
	c.p.a = b
}

func (c *clipCollector) QuadBezier(b, d fixed.Point26_6) {
	cx, cy := fixedTof(b)
	x, y := fixedTof(d)
	ax, ay := fixedTof(c.p.a)
	for i := 1; i <= curveSteps; i++ {
		t := float64(i) / curveSteps
		u := 1 - t
		c.p.addPoint(
			u*u*ax+2*u*t*cx+t*t*x,
			u*u*ay+2*u*t*cy+t*t*y)
	}
	c.p.a = d
}

func (c *clipCollector) CubeBezier(b, d, e fixed.Point26_6) {
	cx0, cy0 := fixedTof(b)
	cx1, cy1 := fixedTof(d)
	x, y := fixedTof(e)
	ax, ay := fixedTof(c.p.a)
	for i := 1; i <= curveSteps; i++ {
		t := float64(i) / curveSteps
		u := 1 - t
		c.p.addPoint(
			u*u*u*ax+3*u*u*t*cx0+3*u*t*t*cx1+t*t*t*x,
			u*u*u*ay+3*u*u*t*cy0+3*u*t*t*cy1+t*t*t*y)
	}
	c.p.a = e
}

func (c *clipCollector) Stop(bool) {}

// DrawText paints one text run.
func (r *Renderer) DrawText(run svgconv.TextRun) {
	r.pdf.SetFont(run.FontFamily, "", run.FontSize)
	r.pdf.SetAlpha(run.Opacity, "Normal")
	if c, ok := run.Fill.(svgpath.PlainColor); ok {
		r.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	}
	x := run.X
	width := r.pdf.GetStringWidth(run.Text)
	switch run.Anchor {
	case svgconv.AnchorMiddle:
		x -= width / 2
	case svgconv.AnchorEnd:
		x -= width
	}
	r.pdf.Text(x, run.Y, run.Text)
}

// DrawImage embeds a raster asset on the page.
func (r *Renderer) DrawImage(img svgconv.Image) error {
	var imageType string
	switch img.MimeType {
	case "image/png":
		imageType = "PNG"
	case "image/jpeg", "image/jpg":
		imageType = "JPG"
	case "image/gif":
		imageType = "GIF"
	default:
		return fmt.Errorf("unsupported image type %s", img.MimeType)
	}
	r.imageCount++
	name := fmt.Sprintf("svgimg%d", r.imageCount)
	opts := gofpdf.ImageOptions{ImageType: imageType}
	r.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	x, y := img.Transform.Transform(img.X, img.Y)
	sx := img.Transform.A
	sy := img.Transform.D
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	r.pdf.ImageOptions(name, x, y, img.W*sx, img.H*sy, false, opts, 0, "")
	return r.pdf.Error()
}

// RenderSVGToPDF reads a document and writes it
// centered on a single A4 page of the named file.
func RenderSVGToPDF(svg io.Reader, pdfName string) error {
	const pageW, pageH = 595.28, 841.89
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	renderer := NewRenderer(pdf)
	err := svgconv.Draw(svg, renderer, svgconv.Options{
		Width:  pageW,
		Height: pageH,
	}, svgconv.WarnErrorMode)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(pdfName)
}
