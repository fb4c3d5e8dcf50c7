// Implements a raster backend to render SVG images,
// by wrapping rasterx.
package svgraster

import (
	"bytes"
	"image"
	"io"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"

	"github.com/tecnickcom/tc-lib-pdf-svg/svgconv"
	"github.com/tecnickcom/tc-lib-pdf-svg/svgpath"
)

// assert interface conformance
var (
	_ svgconv.Driver  = (*Renderer)(nil)
	_ svgconv.Filler  = (*fillPainter)(nil)
	_ svgconv.Stroker = (*strokePainter)(nil)
)

// Renderer rasterizes converted documents. The scanner has no
// graphics state stack: PushState, PopState, SetAlpha and SetClip
// are bookkeeping no-ops, group opacity and clip paths do not
// affect the raster output.
type Renderer struct {
	dasher *rasterx.Dasher // to avoid shared state
	filler *rasterx.Filler // we use separated instances

	img draw.Image // target of DrawImage placements, may be nil
}

// NewRenderer returns a renderer with default values.
// In addition to rasterizing lines like a Scanner,
// it can also rasterize quadratic and cubic bezier curves.
// If scanner is nil, a default scanner rasterx.ScannerGV is used
func NewRenderer(width, height int, scanner rasterx.Scanner) *Renderer {
	return &Renderer{
		dasher: rasterx.NewDasher(width, height, scanner),
		filler: rasterx.NewFiller(width, height, scanner),
	}
}

// RasterSVGToImage renders a document into a new image of the
// given size, using a ScannerGV instance.
func RasterSVGToImage(svg io.Reader, width, height int, mode svgconv.ErrorMode) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	renderer := NewRenderer(width, height, scanner)
	renderer.img = img
	err := svgconv.Draw(svg, renderer, svgconv.Options{
		Width:  float64(width),
		Height: float64(height),
	}, mode)
	return img, err
}

func toRasterxGradient(grad svgpath.Gradient) rasterx.Gradient {
	var (
		points   [5]float64
		isRadial bool
	)
	switch dir := grad.Direction.(type) {
	case svgpath.Linear:
		points[0], points[1], points[2], points[3] = dir[0], dir[1], dir[2], dir[3]
	case svgpath.Radial:
		points[0], points[1], points[2], points[3], points[4] = dir[0], dir[1], dir[2], dir[3], dir[4] // in rasterx fr is ignored
		isRadial = true
	}
	stops := make([]rasterx.GradStop, len(grad.Stops))
	for i := range grad.Stops {
		stops[i] = rasterx.GradStop(grad.Stops[i])
	}
	return rasterx.Gradient{
		Points:   points,
		Stops:    stops,
		Bounds:   grad.Bounds,
		Matrix:   rasterx.Matrix2D(grad.Matrix),
		Spread:   rasterx.SpreadMethod(grad.Spread),
		Units:    rasterx.GradientUnits(grad.Units),
		IsRadial: isRadial,
	}
}

// setColorFromPattern resolves a pattern to a scanner color,
// refining bounding-box gradients against the exact path extent.
func setColorFromPattern(pattern svgpath.Pattern, opacity float64, scanner rasterx.Scanner) {
	switch pattern := pattern.(type) {
	case svgpath.PlainColor:
		scanner.SetColor(rasterx.ApplyOpacity(pattern.NRGBA, opacity))
	case svgpath.Gradient:
		if pattern.Units == svgpath.ObjectBoundingBox {
			fRect := scanner.GetPathExtent()
			mnx, mny := float64(fRect.Min.X)/64, float64(fRect.Min.Y)/64
			mxx, mxy := float64(fRect.Max.X)/64, float64(fRect.Max.Y)/64
			pattern.Bounds.X, pattern.Bounds.Y = mnx, mny
			pattern.Bounds.W, pattern.Bounds.H = mxx-mnx, mxy-mny
		}
		rasterxGradient := toRasterxGradient(pattern)
		scanner.SetColor(rasterxGradient.GetColorFunction(opacity))
	}
}

// implements the filling operation
type fillPainter struct {
	f *rasterx.Filler
}

func (p fillPainter) Start(a fixed.Point26_6)          { p.f.Start(a) }
func (p fillPainter) Line(b fixed.Point26_6)           { p.f.Line(b) }
func (p fillPainter) QuadBezier(b, c fixed.Point26_6)  { p.f.QuadBezier(b, c) }
func (p fillPainter) CubeBezier(b, c, d fixed.Point26_6) {
	p.f.CubeBezier(b, c, d)
}
func (p fillPainter) Stop(closeLoop bool) { p.f.Stop(closeLoop) }
func (p fillPainter) Clear()              { p.f.Clear() }
func (p fillPainter) Draw()               { p.f.Draw() }

func (p fillPainter) SetWinding(useNonZeroWinding bool) {
	p.f.SetWinding(useNonZeroWinding)
}

func (p fillPainter) SetColor(pattern svgpath.Pattern, opacity float64) {
	setColorFromPattern(pattern, opacity, p.f.Scanner)
}

// implements the stroking operation
type strokePainter struct {
	d *rasterx.Dasher
}

func (p strokePainter) Start(a fixed.Point26_6)         { p.d.Start(a) }
func (p strokePainter) Line(b fixed.Point26_6)          { p.d.Line(b) }
func (p strokePainter) QuadBezier(b, c fixed.Point26_6) { p.d.QuadBezier(b, c) }
func (p strokePainter) CubeBezier(b, c, d fixed.Point26_6) {
	p.d.CubeBezier(b, c, d)
}
func (p strokePainter) Stop(closeLoop bool) { p.d.Stop(closeLoop) }
func (p strokePainter) Clear()              { p.d.Clear() }
func (p strokePainter) Draw()               { p.d.Draw() }

func (p strokePainter) SetColor(pattern svgpath.Pattern, opacity float64) {
	setColorFromPattern(pattern, opacity, p.d.Scanner)
}

var (
	joinToJoin = [...]rasterx.JoinMode{
		svgconv.Round:     rasterx.Round,
		svgconv.Bevel:     rasterx.Bevel,
		svgconv.Miter:     rasterx.Miter,
		svgconv.MiterClip: rasterx.MiterClip,
		svgconv.Arc:       rasterx.Arc,
		svgconv.ArcClip:   rasterx.ArcClip,
	}

	capToFunc = [...]rasterx.CapFunc{
		svgconv.ButtCap:      rasterx.ButtCap,
		svgconv.SquareCap:    rasterx.SquareCap,
		svgconv.RoundCap:     rasterx.RoundCap,
		svgconv.CubicCap:     rasterx.CubicCap,
		svgconv.QuadraticCap: rasterx.QuadraticCap,
	}

	gapToFunc = [...]rasterx.GapFunc{
		svgconv.FlatGap:      rasterx.FlatGap,
		svgconv.RoundGap:     rasterx.RoundGap,
		svgconv.CubicGap:     rasterx.CubicGap,
		svgconv.QuadraticGap: rasterx.QuadraticGap,
	}
)

func (p strokePainter) SetStrokeOptions(options svgconv.StrokeOptions) {
	p.d.SetStroke(
		options.LineWidth, options.Join.MiterLimit, capToFunc[options.Join.LeadLineCap],
		capToFunc[options.Join.TrailLineCap], gapToFunc[options.Join.LineGap],
		joinToJoin[options.Join.LineJoin], options.Dash.Dash, options.Dash.DashOffset,
	)
}

// SetupDrawers returns the path painters of one shape.
func (rd *Renderer) SetupDrawers(willFill, willStroke bool) (svgconv.Filler, svgconv.Stroker) {
	var f svgconv.Filler
	var s svgconv.Stroker
	if willFill {
		rd.filler.Clear()
		f = fillPainter{f: rd.filler}
	}
	if willStroke {
		rd.dasher.Clear()
		s = strokePainter{d: rd.dasher}
	}
	return f, s
}

// PushState is a no-op, the scanner has no graphics state stack.
func (rd *Renderer) PushState() {}

// PopState is a no-op, the scanner has no graphics state stack.
func (rd *Renderer) PopState() {}

// SetAlpha is a no-op, shape opacity is carried by the paint colors.
func (rd *Renderer) SetAlpha(float64) {}

// SetClip is a no-op, the scanner cannot restrict its region.
func (rd *Renderer) SetClip(svgpath.Path, svgpath.Matrix2D) {}

// DrawText is a no-op, the renderer carries no font rasterizer.
func (rd *Renderer) DrawText(svgconv.TextRun) {}

// DrawImage decodes and scales the asset into the target image.
func (rd *Renderer) DrawImage(img svgconv.Image) error {
	if rd.img == nil {
		return nil
	}
	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return err
	}
	x0, y0 := img.Transform.Transform(img.X, img.Y)
	x1, y1 := img.Transform.Transform(img.X+img.W, img.Y+img.H)
	rect := image.Rect(int(x0), int(y0), int(x1), int(y1))
	draw.ApproxBiLinear.Scale(rd.img, rect, src, src.Bounds(), draw.Over, nil)
	return nil
}
