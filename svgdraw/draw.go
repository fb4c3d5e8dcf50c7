// Writes SVG documents as raw PDF content-stream operators.
// The output is a page-description fragment: the embedding writer
// owns the surrounding page and builds the resource dictionaries
// from the registries accumulated here.
package svgdraw

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/math/fixed"

	"github.com/tecnickcom/tc-lib-pdf-svg/svgconv"
	"github.com/tecnickcom/tc-lib-pdf-svg/svgpath"
)

// assert interface conformance
var (
	_ svgconv.ContentDriver = (*Driver)(nil)
	_ svgconv.Filler        = (*filler)(nil)
	_ svgconv.Stroker       = (*stroker)(nil)
)

// Resources collects the indirect objects referenced by the
// operator text: the embedding writer maps entry i of each list to
// the matching resource name (/GSi, /Shi, /Fi, /Imgi, 1-based).
type Resources struct {
	mu       sync.Mutex
	alphas   []float64
	shadings []svgpath.Gradient
	fonts    []string
	images   []svgconv.Image
}

// Alphas returns the registered alpha values, one per /GSi state.
func (r *Resources) Alphas() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.alphas...)
}

// Shadings returns the registered gradients, one per /Shi shading.
func (r *Resources) Shadings() []svgpath.Gradient {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]svgpath.Gradient(nil), r.shadings...)
}

// Fonts returns the registered family names, one per /Fi font.
func (r *Resources) Fonts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.fonts...)
}

// Images returns the registered raster assets, one per /Imgi object.
func (r *Resources) Images() []svgconv.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]svgconv.Image(nil), r.images...)
}

func (r *Resources) alpha(v float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.alphas {
		if a == v {
			return i + 1
		}
	}
	r.alphas = append(r.alphas, v)
	return len(r.alphas)
}

func (r *Resources) shading(g svgpath.Gradient) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shadings = append(r.shadings, g)
	return len(r.shadings)
}

func (r *Resources) font(family string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range r.fonts {
		if f == family {
			return i + 1
		}
	}
	r.fonts = append(r.fonts, family)
	return len(r.fonts)
}

func (r *Resources) image(img svgconv.Image) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images = append(r.images, img)
	return len(r.images)
}

// Driver accumulates PDF page-description operators for one
// document. The vertical axis is flipped against pageHeight, since
// PDF user space grows upward.
type Driver struct {
	buf        bytes.Buffer
	res        *Resources
	pageHeight float64
}

// NewDriver returns a driver writing operators for a page of the
// given height. Registered resources land in res; passing the same
// Resources to several drivers keeps the names consistent across
// their streams.
func NewDriver(pageHeight float64, res *Resources) *Driver {
	if res == nil {
		res = &Resources{}
	}
	return &Driver{res: res, pageHeight: pageHeight}
}

// Resources returns the registry the driver writes into.
func (d *Driver) Resources() *Resources { return d.res }

// Content returns the accumulated operator text.
func (d *Driver) Content() string { return d.buf.String() }

func (d *Driver) flipY(y float64) float64 { return d.pageHeight - y }

func fmtF(f float64) string {
	s := fmt.Sprintf("%.3f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// pather writes path construction operators into its own buffer, so
// the painting operator can bracket them with state operators.
type pather struct {
	d   *Driver
	ops strings.Builder
	a   fixed.Point26_6 // current point, for quadratic elevation
}

func (p *pather) point(pt fixed.Point26_6) (float64, float64) {
	return float64(pt.X) / 64, p.d.flipY(float64(pt.Y) / 64)
}

func (p *pather) Start(a fixed.Point26_6) {
	x, y := p.point(a)
	fmt.Fprintf(&p.ops, "%s %s m\n", fmtF(x), fmtF(y))
	p.a = a
}

func (p *pather) Line(b fixed.Point26_6) {
	x, y := p.point(b)
	fmt.Fprintf(&p.ops, "%s %s l\n", fmtF(x), fmtF(y))
	p.a = b
}

// QuadBezier degree-elevates to a cubic, the only curve operator
// PDF content streams have.
func (p *pather) QuadBezier(b, c fixed.Point26_6) {
	c1 := fixed.Point26_6{
		X: p.a.X + (b.X-p.a.X)*2/3,
		Y: p.a.Y + (b.Y-p.a.Y)*2/3,
	}
	c2 := fixed.Point26_6{
		X: c.X + (b.X-c.X)*2/3,
		Y: c.Y + (b.Y-c.Y)*2/3,
	}
	p.CubeBezier(c1, c2, c)
}

func (p *pather) CubeBezier(b, c, e fixed.Point26_6) {
	x1, y1 := p.point(b)
	x2, y2 := p.point(c)
	x3, y3 := p.point(e)
	fmt.Fprintf(&p.ops, "%s %s %s %s %s %s c\n",
		fmtF(x1), fmtF(y1), fmtF(x2), fmtF(y2), fmtF(x3), fmtF(y3))
	p.a = e
}

func (p *pather) Stop(closeLoop bool) {
	if closeLoop {
		p.ops.WriteString("h\n")
	}
}

func (p *pather) Clear() {
	p.ops.Reset()
	p.a = fixed.Point26_6{}
}

// paint is the pending color of one painting operation.
type paint struct {
	colorOps string // rg/RG plus alpha state, empty for gradients
	shading  int    // 1-based /Shi index, 0 for plain colors
}

func (d *Driver) resolve(pattern svgpath.Pattern, opacity float64, stroking bool) paint {
	switch pattern := pattern.(type) {
	case svgpath.PlainColor:
		op := "rg"
		if stroking {
			op = "RG"
		}
		opacity *= float64(pattern.A) / 255.
		ops := fmt.Sprintf("%s %s %s %s\n",
			fmtF(float64(pattern.R)/255), fmtF(float64(pattern.G)/255), fmtF(float64(pattern.B)/255), op)
		if opacity < 1 {
			ops += fmt.Sprintf("/GS%d gs\n", d.res.alpha(opacity))
		}
		return paint{colorOps: ops}
	case svgpath.Gradient:
		return paint{shading: d.res.shading(pattern)}
	}
	return paint{}
}

// implements the filling operation
type filler struct {
	pather
	useNonZeroWinding bool
	paint             paint
}

func (f *filler) SetWinding(useNonZeroWinding bool) {
	f.useNonZeroWinding = useNonZeroWinding
}

func (f *filler) SetColor(pattern svgpath.Pattern, opacity float64) {
	f.paint = f.d.resolve(pattern, opacity, false)
}

func (f *filler) Draw() {
	ops := f.ops.String()
	if ops == "" {
		return
	}
	if f.paint.shading > 0 {
		// a gradient fill clips to the path and paints the shading
		clip := "W n\n"
		if !f.useNonZeroWinding {
			clip = "W* n\n"
		}
		fmt.Fprintf(&f.d.buf, "q\n%s%s/Sh%d sh\nQ\n", ops, clip, f.paint.shading)
		return
	}
	fill := "f\n"
	if !f.useNonZeroWinding {
		fill = "f*\n"
	}
	f.d.buf.WriteString(f.paint.colorOps)
	f.d.buf.WriteString(ops)
	f.d.buf.WriteString(fill)
}

// implements the stroking operation
type stroker struct {
	pather
	paint paint
}

func (s *stroker) SetStrokeOptions(options svgconv.StrokeOptions) {
	fmt.Fprintf(&s.d.buf, "%s w\n", fmtF(float64(options.LineWidth)/64))
	fmt.Fprintf(&s.d.buf, "%d J\n", capCode(options.Join.TrailLineCap))
	fmt.Fprintf(&s.d.buf, "%d j\n", joinCode(options.Join.LineJoin))
	if options.Join.LineJoin == svgconv.Miter || options.Join.LineJoin == svgconv.MiterClip {
		fmt.Fprintf(&s.d.buf, "%s M\n", fmtF(float64(options.Join.MiterLimit)/64))
	}
	if len(options.Dash.Dash) > 0 {
		parts := make([]string, len(options.Dash.Dash))
		for i, v := range options.Dash.Dash {
			parts[i] = fmtF(v)
		}
		fmt.Fprintf(&s.d.buf, "[%s] %s d\n", strings.Join(parts, " "), fmtF(options.Dash.DashOffset))
	} else {
		s.d.buf.WriteString("[] 0 d\n")
	}
}

func capCode(c svgconv.CapMode) int {
	switch c {
	case svgconv.RoundCap:
		return 1
	case svgconv.SquareCap, svgconv.CubicCap, svgconv.QuadraticCap:
		return 2
	}
	return 0
}

func joinCode(j svgconv.JoinMode) int {
	switch j {
	case svgconv.Round, svgconv.Arc:
		return 1
	case svgconv.Bevel:
		return 2
	}
	return 0 // miter
}

func (s *stroker) SetColor(pattern svgpath.Pattern, opacity float64) {
	s.paint = s.d.resolve(pattern, opacity, true)
}

func (s *stroker) Draw() {
	ops := s.ops.String()
	if ops == "" {
		return
	}
	if s.paint.shading > 0 {
		// no stroking shading pattern in a bare stream: clip to the
		// path and paint the shading through it
		fmt.Fprintf(&s.d.buf, "q\n%sW n\n/Sh%d sh\nQ\n", ops, s.paint.shading)
		return
	}
	s.d.buf.WriteString(s.paint.colorOps)
	s.d.buf.WriteString(ops)
	s.d.buf.WriteString("S\n")
}

// SetupDrawers returns the path painters of one shape.
func (d *Driver) SetupDrawers(willFill, willStroke bool) (svgconv.Filler, svgconv.Stroker) {
	var f svgconv.Filler
	var s svgconv.Stroker
	if willFill {
		f = &filler{pather: pather{d: d}, useNonZeroWinding: true}
	}
	if willStroke {
		s = &stroker{pather: pather{d: d}}
	}
	return f, s
}

// PushState saves the graphics state.
func (d *Driver) PushState() { d.buf.WriteString("q\n") }

// PopState restores the graphics state.
func (d *Driver) PopState() { d.buf.WriteString("Q\n") }

// SetAlpha requests a transparency state for the following
// operations.
func (d *Driver) SetAlpha(opacity float64) {
	fmt.Fprintf(&d.buf, "/GS%d gs\n", d.res.alpha(opacity))
}

// SetClip intersects the clip region with the path.
func (d *Driver) SetClip(clip svgpath.Path, m svgpath.Matrix2D) {
	p := pather{d: d}
	clip.DrawTo(&p, m)
	if p.ops.Len() == 0 {
		return
	}
	d.buf.WriteString(p.ops.String())
	d.buf.WriteString("W n\n")
}

// DrawText paints one text run with the registered font.
func (d *Driver) DrawText(run svgconv.TextRun) {
	x := run.X
	// anchor adjustment from an average glyph width estimate,
	// the stream has no metrics to measure with
	width := run.FontSize * 0.5 * float64(utf8.RuneCountInString(run.Text))
	switch run.Anchor {
	case svgconv.AnchorMiddle:
		x -= width / 2
	case svgconv.AnchorEnd:
		x -= width
	}
	if c, ok := run.Fill.(svgpath.PlainColor); ok {
		p := d.resolve(c, run.Opacity, false)
		d.buf.WriteString(p.colorOps)
	}
	fmt.Fprintf(&d.buf, "BT\n/F%d %s Tf\n%s %s Td\n(%s) Tj\nET\n",
		d.res.font(run.FontFamily), fmtF(run.FontSize),
		fmtF(x), fmtF(d.flipY(run.Y)), escapeText(run.Text))
}

func escapeText(s string) string {
	r := strings.NewReplacer("\\", "\\\\", "(", "\\(", ")", "\\)")
	return r.Replace(s)
}

// DrawImage places a registered raster asset.
func (d *Driver) DrawImage(img svgconv.Image) error {
	n := d.res.image(img)
	m := img.Transform
	x, y := m.Transform(img.X, img.Y+img.H) // bottom-left corner in PDF space
	s := (m.A + m.D) / 2
	if s == 0 {
		s = 1
	}
	fmt.Fprintf(&d.buf, "q\n%s 0 0 %s %s %s cm\n/Img%d Do\nQ\n",
		fmtF(img.W*s), fmtF(img.H*s), fmtF(x), fmtF(d.flipY(y)), n)
	return nil
}

// NewConverter returns a converter writing operator text for pages
// of the given height, with all documents of the converter sharing
// one resource registry.
func NewConverter(pageHeight float64, mode svgconv.ErrorMode) (*svgconv.Converter, *Resources) {
	res := &Resources{}
	return &svgconv.Converter{
		NewDriver: func() svgconv.ContentDriver { return NewDriver(pageHeight, res) },
		ErrorMode: mode,
	}, res
}
