package svgconv

import (
	"encoding/base64"
	"encoding/xml"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/math/fixed"
	"golang.org/x/net/html/charset"

	"github.com/tecnickcom/tc-lib-pdf-svg/svgpath"
)

func init() {
	// avoids cyclical static declaration
	// called on package initialization
	elementFuncs["use"] = useF
}

// docContext holds what a parsed document exposes once the
// streaming pass is done.
type docContext struct {
	viewBox       svgpath.Bounds
	width, height float64 // intrinsic size, user units

	titles       []string
	descriptions []string

	grads map[string]*gradientDef
	defs  map[string][]definition
	clips map[string][]clipShape
}

func newDocContext() *docContext {
	return &docContext{
		grads: make(map[string]*gradientDef),
		defs:  make(map[string][]definition),
		clips: make(map[string][]clipShape),
	}
}

// frame tracks per-element bookkeeping so the closing tag can
// undo exactly what the opening tag did.
type frame struct {
	tag      string
	pushed   bool // a driver graphics state was pushed
	captured bool // the element was stored in the definitions table
}

// docCursor is the streaming state while walking the document.
// Shapes paint through the driver as their elements close; defs,
// gradients and clip paths are captured instead.
type docCursor struct {
	ctx    *docContext
	driver Driver

	errorMode ErrorMode
	loader    func(name string) ([]byte, error)
	embedSVG  func(data []byte, opts Options) error

	// placement of the root viewport, set by the converter;
	// a zero size falls back to the intrinsic size
	targetX, targetY, targetW, targetH float64

	styleStack []Style
	frames     []frame

	path   svgpath.Path // scratch path of the current shape
	points []float64    // scratch number list

	curX, curY float64 // offset applied by a use replay

	inDefs     bool
	currentDef []definition
	defText    []string // per open captured element, char data so far
	inGrad     bool
	grad       *gradientDef

	inClip     bool
	clipID     string
	clipShapes []clipShape

	inTitle, inDesc bool
	textRun         *TextRun

	svgDepth int
	useDepth int
}

func newDocCursor(ctx *docContext, driver Driver, mode ErrorMode) *docCursor {
	return &docCursor{
		ctx:        ctx,
		driver:     driver,
		errorMode:  mode,
		styleStack: []Style{DefaultStyle},
	}
}

func (c *docCursor) getPoints(s string) error {
	pts, err := getFloats(s)
	c.points = pts
	return err
}

// parseUnit resolves a length, with percentages taken against
// the current viewport.
func (c *docCursor) parseUnit(v string, ref percentageReference) (float64, error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		f /= 100
		vb := c.ctx.viewBox
		switch ref {
		case widthPercentage:
			return f * vb.W, err
		case heightPercentage:
			return f * vb.H, err
		case diagPercentage:
			return f * math.Hypot(vb.W, vb.H) / math.Sqrt2, err
		}
		return f, err
	}
	return parseBasicFloat(v)
}

// capturing reports whether elements are being recorded
// instead of painted.
func (c *docCursor) capturing() bool { return c.inDefs || c.inClip || c.inGrad }

// run walks the document stream, painting shapes through the driver.
func (c *docCursor) run(stream io.Reader) error {
	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = charset.NewReaderLabel
	seenTag := false
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				if !seenTag {
					return ErrInvalidInput
				}
				return nil
			}
			return malformed(err)
		}
		switch se := t.(type) {
		case xml.StartElement:
			seenTag = true
			attrs := toAttributes(se.Attr)
			if err := c.pushStyle(attrs); err != nil {
				return err
			}
			fr := frame{tag: se.Name.Local}
			if !c.capturing() {
				st := &c.styleStack[len(c.styleStack)-1]
				if !st.suppressed && (st.Opacity < 1 || st.ClipPathID != "" || st.ClipRect != nil) {
					c.driver.PushState()
					if st.Opacity < 1 {
						c.driver.SetAlpha(st.Opacity)
					}
					if err := c.applyClip(st); err != nil {
						return err
					}
					fr.pushed = true
				}
			}
			c.frames = append(c.frames, fr)
			if err := c.readStartElement(se.Name.Local, attrs); err != nil {
				return err
			}
		case xml.EndElement:
			if err := c.readEndElement(se.Name.Local); err != nil {
				return err
			}
		case xml.CharData:
			c.readCharData(string(se))
		}
	}
}

func (c *docCursor) readStartElement(tag string, attrs []Attribute) error {
	// gradients never register while a clip path is being captured
	if c.inClip && (tag == "linearGradient" || tag == "radialGradient" || tag == "stop") {
		return nil
	}
	// gradients and clip paths are captured through their own
	// handlers even inside defs
	skipDef := tag == "linearGradient" || tag == "radialGradient" ||
		tag == "clipPath" || c.inGrad || c.inClip
	if c.inDefs && !skipDef {
		id := attrValue(attrs, "id")
		if id != "" && len(c.currentDef) > 0 {
			c.ctx.defs[c.currentDef[0].ID] = c.currentDef
			c.currentDef = nil
		}
		if id == "" && len(c.currentDef) == 0 {
			// no keyed entry open to nest under, dropped
			return nil
		}
		c.currentDef = append(c.currentDef, definition{ID: id, Tag: tag, Attrs: attrs})
		c.defText = append(c.defText, "")
		if n := len(c.frames); n > 0 {
			c.frames[n-1].captured = true
		}
		return nil
	}
	return c.dispatchDraw(tag, attrs)
}

func (c *docCursor) readEndElement(tag string) error {
	if n := len(c.frames); n > 0 {
		fr := c.frames[n-1]
		c.frames = c.frames[:n-1]
		if fr.pushed {
			c.driver.PopState()
		}
		if fr.captured {
			var text string
			if m := len(c.defText); m > 0 {
				text = c.defText[m-1]
				c.defText = c.defText[:m-1]
			}
			c.currentDef = append(c.currentDef, definition{Tag: fr.tag, Closing: true, Text: text})
		}
	}
	switch tag {
	case "title":
		c.inTitle = false
	case "desc":
		c.inDesc = false
	case "defs":
		if len(c.currentDef) > 0 {
			c.ctx.defs[c.currentDef[0].ID] = c.currentDef
			c.currentDef = nil
		}
		c.defText = nil
		c.inDefs = false
	case "linearGradient", "radialGradient":
		c.inGrad = false
		c.grad = nil
	case "clipPath":
		if c.clipID != "" {
			c.ctx.clips[c.clipID] = c.clipShapes
		}
		c.inClip = false
		c.clipShapes = nil
	case "text":
		err := c.flushText()
		c.textRun = nil
		if err != nil {
			return err
		}
	case "svg":
		if c.svgDepth > 0 {
			c.svgDepth--
		}
	}
	// pop style
	if len(c.styleStack) > 1 {
		c.styleStack = c.styleStack[:len(c.styleStack)-1]
	}
	return nil
}

func (c *docCursor) readCharData(data string) {
	switch {
	case c.inTitle:
		c.ctx.titles[len(c.ctx.titles)-1] += data
	case c.inDesc:
		c.ctx.descriptions[len(c.ctx.descriptions)-1] += data
	case len(c.defText) > 0:
		c.defText[len(c.defText)-1] += data
	case c.textRun != nil:
		c.textRun.Text += data
	}
}

// dispatchDraw runs the element handler and paints or captures the
// shape it built, if any.
func (c *docCursor) dispatchDraw(tag string, attrs []Attribute) error {
	df, ok := elementFuncs[tag]
	if !ok {
		return c.errorMode.handle("cannot process svg element " + tag)
	}
	if err := df(c, attrs); err != nil {
		return err
	}
	return c.flushShape()
}

func (c *docCursor) flushShape() error {
	if len(c.path) == 0 {
		return nil
	}
	pathCopy := append(svgpath.Path{}, c.path...)
	c.path = c.path[:0]
	st := &c.styleStack[len(c.styleStack)-1]
	if c.inClip {
		c.clipShapes = append(c.clipShapes, clipShape{path: pathCopy, matrix: st.transform})
		return nil
	}
	return c.drawShape(pathCopy, st)
}

// drawShape paints one finished shape. Invisible and suppressed
// shapes only cost the bookkeeping that already happened.
func (c *docCursor) drawShape(p svgpath.Path, st *Style) error {
	if st.suppressed || !st.Visible {
		return nil
	}
	willFill := st.FillColor.kind != paintNone && st.FillOpacity > 0
	willStroke := st.StrokeColor.kind != paintNone && st.StrokeOpacity > 0 && st.LineWidth > 0
	if !willFill && !willStroke {
		return nil
	}
	box := transformBounds(p.BoundingBox(), st.transform)
	filler, stroker := c.driver.SetupDrawers(willFill, willStroke)
	if willFill && filler != nil {
		pattern, err := c.resolvePaint(st.FillColor, box, st.transform)
		if err != nil {
			return err
		}
		if pattern != nil {
			filler.Clear()
			filler.SetWinding(st.UseNonZeroWinding)
			filler.SetColor(pattern, st.FillOpacity)
			p.DrawTo(filler, st.transform)
			filler.Draw()
			filler.Clear()
		}
	}
	if willStroke && stroker != nil {
		pattern, err := c.resolvePaint(st.StrokeColor, box, st.transform)
		if err != nil {
			return err
		}
		if pattern != nil {
			scale := matrixScale(st.transform)
			stroker.Clear()
			stroker.SetStrokeOptions(StrokeOptions{
				LineWidth: fToFixed(st.LineWidth * scale),
				Join:      st.Join,
				Dash:      scaleDash(st.Dash, scale),
			})
			stroker.SetColor(pattern, st.StrokeOpacity)
			p.DrawTo(stroker, st.transform)
			stroker.Draw()
			stroker.Clear()
		}
	}
	return nil
}

func scaleDash(d DashOptions, scale float64) DashOptions {
	if len(d.Dash) == 0 || scale == 1 {
		return d
	}
	out := DashOptions{Dash: make([]float64, len(d.Dash)), DashOffset: d.DashOffset * scale}
	for i, v := range d.Dash {
		out.Dash[i] = v * scale
	}
	return out
}

// resolvePaint turns a style paint into a placement-ready pattern.
// An unresolved gradient reference degrades to no paint.
func (c *docCursor) resolvePaint(p paint, box svgpath.Bounds, m svgpath.Matrix2D) (svgpath.Pattern, error) {
	switch p.kind {
	case paintColor:
		return svgpath.PlainColor{NRGBA: p.color}, nil
	case paintGradient:
		grad, ok := c.resolveGradient(p.gradientID, box, m)
		if !ok {
			return nil, c.errorMode.handle("reference to undefined gradient " + p.gradientID)
		}
		return grad, nil
	}
	return nil, nil
}

// applyClip intersects the driver clip region per the style.
func (c *docCursor) applyClip(st *Style) error {
	if st.ClipRect != nil {
		r := *st.ClipRect // top, right, bottom, left
		var p svgpath.Path
		p.AddRect(r[3], r[0], r[1], r[2], 0)
		c.driver.SetClip(p, st.transform)
	}
	if st.ClipPathID != "" {
		shapes, ok := c.ctx.clips[st.ClipPathID]
		if !ok {
			return c.errorMode.handle("reference to undefined clip path " + st.ClipPathID)
		}
		for _, sh := range shapes {
			c.driver.SetClip(sh.path, st.transform.Mult(sh.matrix))
		}
	}
	return nil
}

// transformBounds maps a box through a transform and returns the
// axis-aligned box of the mapped corners.
func transformBounds(b svgpath.Bounds, m svgpath.Matrix2D) svgpath.Bounds {
	x0, y0 := m.Transform(b.X, b.Y)
	x1, y1 := m.Transform(b.X+b.W, b.Y)
	x2, y2 := m.Transform(b.X, b.Y+b.H)
	x3, y3 := m.Transform(b.X+b.W, b.Y+b.H)
	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))
	return svgpath.Bounds{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

func (c *docCursor) flushText() error {
	run := c.textRun
	if run == nil {
		return nil
	}
	st := &c.styleStack[len(c.styleStack)-1]
	if st.suppressed || !st.Visible {
		return nil
	}
	run.Text = collapseWhitespace(run.Text)
	if run.Text == "" {
		return nil
	}
	c.driver.DrawText(*run)
	return nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

type svgFunc func(c *docCursor, attrs []Attribute) error

var elementFuncs = map[string]svgFunc{
	"svg":            svgF,
	"g":              gF,
	"line":           lineF,
	"stop":           stopF,
	"rect":           rectF,
	"circle":         circleF,
	"ellipse":        circleF, //circleF handles ellipse also
	"polyline":       polylineF,
	"polygon":        polygonF,
	"path":           pathF,
	"desc":           descF,
	"defs":           defsF,
	"title":          titleF,
	"clipPath":       clipPathF,
	"image":          imageF,
	"text":           textF,
	"tspan":          tspanF,
	"linearGradient": linearGradientF,
	"radialGradient": radialGradientF,
}

func svgF(c *docCursor, attrs []Attribute) error {
	if c.svgDepth > 0 {
		return nestedSvgF(c, attrs)
	}
	c.svgDepth++
	var vb svgpath.Bounds
	var width, height float64
	fit := defaultFit
	var err error
	for _, attr := range attrs {
		switch attr.Name {
		case "viewBox":
			err = c.getPoints(attr.Value)
			if len(c.points) != 4 {
				return errParamMismatch
			}
			vb = svgpath.Bounds{X: c.points[0], Y: c.points[1], W: c.points[2], H: c.points[3]}
		case "width":
			if !strings.HasSuffix(attr.Value, "%") {
				width, err = parseBasicFloat(attr.Value)
			}
		case "height":
			if !strings.HasSuffix(attr.Value, "%") {
				height, err = parseBasicFloat(attr.Value)
			}
		case "preserveAspectRatio":
			fit = parsePreserveAspectRatio(attr.Value)
		}
		if err != nil {
			return err
		}
	}
	if vb.W == 0 {
		vb.W = width
	}
	if vb.H == 0 {
		vb.H = height
	}
	if width == 0 {
		width = vb.W
	}
	if height == 0 {
		height = vb.H
	}
	c.ctx.viewBox = vb
	c.ctx.width, c.ctx.height = width, height

	viewportW, viewportH := c.targetW, c.targetH
	if viewportW == 0 {
		viewportW = width
	}
	if viewportH == 0 {
		viewportH = height
	}
	if viewportW <= 0 || viewportH <= 0 {
		return ErrInvalidGeometry
	}
	m := viewBoxTransform(vb, viewportW, viewportH, fit)
	st := &c.styleStack[len(c.styleStack)-1]
	st.transform = st.transform.Translate(c.targetX, c.targetY).Mult(m)
	return nil
}

// nestedSvgF opens an inner viewport: the x,y placement translates,
// the viewBox fits into the width,height window.
func nestedSvgF(c *docCursor, attrs []Attribute) error {
	c.svgDepth++
	var x, y, w, h float64
	var vb svgpath.Bounds
	fit := defaultFit
	var err error
	for _, attr := range attrs {
		switch attr.Name {
		case "x":
			x, err = c.parseUnit(attr.Value, widthPercentage)
		case "y":
			y, err = c.parseUnit(attr.Value, heightPercentage)
		case "width":
			w, err = c.parseUnit(attr.Value, widthPercentage)
		case "height":
			h, err = c.parseUnit(attr.Value, heightPercentage)
		case "viewBox":
			err = c.getPoints(attr.Value)
			if len(c.points) != 4 {
				return errParamMismatch
			}
			vb = svgpath.Bounds{X: c.points[0], Y: c.points[1], W: c.points[2], H: c.points[3]}
		case "preserveAspectRatio":
			fit = parsePreserveAspectRatio(attr.Value)
		}
		if err != nil {
			return err
		}
	}
	if w == 0 {
		w = vb.W
	}
	if h == 0 {
		h = vb.H
	}
	st := &c.styleStack[len(c.styleStack)-1]
	st.transform = st.transform.Translate(x+c.curX, y+c.curY).Mult(viewBoxTransform(vb, w, h, fit))
	return nil
}

func gF(*docCursor, []Attribute) error { return nil } // g does nothing but push the style

func rectF(c *docCursor, attrs []Attribute) error {
	var x, y, w, h, rx, ry float64
	var err error
	for _, attr := range attrs {
		switch attr.Name {
		case "x":
			x, err = c.parseUnit(attr.Value, widthPercentage)
		case "y":
			y, err = c.parseUnit(attr.Value, heightPercentage)
		case "width":
			w, err = c.parseUnit(attr.Value, widthPercentage)
		case "height":
			h, err = c.parseUnit(attr.Value, heightPercentage)
		case "rx":
			rx, err = c.parseUnit(attr.Value, widthPercentage)
		case "ry":
			ry, err = c.parseUnit(attr.Value, heightPercentage)
		}
		if err != nil {
			return err
		}
	}
	if w == 0 || h == 0 { // not drawn, but not an error
		return nil
	}
	if rx == 0 && ry == 0 {
		c.path.AddRect(x+c.curX, y+c.curY, x+w+c.curX, y+h+c.curY, 0)
		return nil
	}
	if rx == 0 {
		rx = ry
	}
	if ry == 0 {
		ry = rx
	}
	c.path.AddRoundRect(x+c.curX, y+c.curY, x+w+c.curX, y+h+c.curY, rx, ry, 0)
	return nil
}

func circleF(c *docCursor, attrs []Attribute) error {
	var cx, cy, rx, ry float64
	var err error
	for _, attr := range attrs {
		switch attr.Name {
		case "cx":
			cx, err = c.parseUnit(attr.Value, widthPercentage)
		case "cy":
			cy, err = c.parseUnit(attr.Value, heightPercentage)
		case "r":
			rx, err = c.parseUnit(attr.Value, diagPercentage)
			ry = rx
		case "rx":
			rx, err = c.parseUnit(attr.Value, widthPercentage)
		case "ry":
			ry, err = c.parseUnit(attr.Value, heightPercentage)
		}
		if err != nil {
			return err
		}
	}
	if rx == 0 || ry == 0 { // not drawn, but not an error
		return nil
	}
	c.path.AddEllipse(cx+c.curX, cy+c.curY, rx, ry)
	return nil
}

func lineF(c *docCursor, attrs []Attribute) error {
	var x1, x2, y1, y2 float64
	var err error
	for _, attr := range attrs {
		switch attr.Name {
		case "x1":
			x1, err = c.parseUnit(attr.Value, widthPercentage)
		case "x2":
			x2, err = c.parseUnit(attr.Value, widthPercentage)
		case "y1":
			y1, err = c.parseUnit(attr.Value, heightPercentage)
		case "y2":
			y2, err = c.parseUnit(attr.Value, heightPercentage)
		}
		if err != nil {
			return err
		}
	}
	c.path.Start(fixed.Point26_6{
		X: fixed.Int26_6((x1 + c.curX) * 64),
		Y: fixed.Int26_6((y1 + c.curY) * 64)})
	c.path.Line(fixed.Point26_6{
		X: fixed.Int26_6((x2 + c.curX) * 64),
		Y: fixed.Int26_6((y2 + c.curY) * 64)})
	return nil
}

func polylineF(c *docCursor, attrs []Attribute) error {
	var err error
	for _, attr := range attrs {
		switch attr.Name {
		case "points":
			err = c.getPoints(attr.Value)
			if err == nil && len(c.points)%2 != 0 {
				return errParamMismatch
			}
		}
		if err != nil {
			return err
		}
	}
	if len(c.points) > 4 {
		c.path.Start(fixed.Point26_6{
			X: fixed.Int26_6((c.points[0] + c.curX) * 64),
			Y: fixed.Int26_6((c.points[1] + c.curY) * 64)})
		for i := 2; i < len(c.points)-1; i += 2 {
			c.path.Line(fixed.Point26_6{
				X: fixed.Int26_6((c.points[i] + c.curX) * 64),
				Y: fixed.Int26_6((c.points[i+1] + c.curY) * 64)})
		}
	}
	return nil
}

func polygonF(c *docCursor, attrs []Attribute) error {
	err := polylineF(c, attrs)
	if len(c.points) > 4 {
		c.path.Stop(true)
	}
	return err
}

func pathF(c *docCursor, attrs []Attribute) error {
	for _, attr := range attrs {
		switch attr.Name {
		case "d":
			p, err := svgpath.ParsePath(attr.Value)
			if err != nil {
				return err
			}
			if c.curX != 0 || c.curY != 0 {
				off := svgpath.Identity.Translate(c.curX, c.curY)
				var shifted svgpath.Path
				p.DrawTo(&shifted, off)
				p = shifted
			}
			c.path = append(c.path, p...)
		}
	}
	return nil
}

func descF(c *docCursor, _ []Attribute) error {
	c.inDesc = true
	c.ctx.descriptions = append(c.ctx.descriptions, "")
	return nil
}

func titleF(c *docCursor, _ []Attribute) error {
	c.inTitle = true
	c.ctx.titles = append(c.ctx.titles, "")
	return nil
}

func defsF(c *docCursor, _ []Attribute) error {
	c.inDefs = true
	return nil
}

func clipPathF(c *docCursor, attrs []Attribute) error {
	c.inClip = true
	c.clipID = attrValue(attrs, "id")
	c.clipShapes = nil
	// shape transforms are captured relative to the clipPath element
	c.styleStack[len(c.styleStack)-1].transform = svgpath.Identity
	return nil
}

func (c *docCursor) readGradAttr(g *gradientDef, name, v string) error {
	switch name {
	case "gradientTransform":
		g.matrix = parseTransform(svgpath.Identity, v)
		g.matrixSet = true
	case "gradientUnits":
		switch strings.TrimSpace(v) {
		case "userSpaceOnUse":
			g.units = svgpath.UserSpaceOnUse
			g.unitsSet = true
		case "objectBoundingBox":
			g.units = svgpath.ObjectBoundingBox
			g.unitsSet = true
		}
	case "spreadMethod":
		switch strings.TrimSpace(v) {
		case "pad":
			g.spread = svgpath.PadSpread
			g.spreadSet = true
		case "reflect":
			g.spread = svgpath.ReflectSpread
			g.spreadSet = true
		case "repeat":
			g.spread = svgpath.RepeatSpread
			g.spreadSet = true
		}
	case "href":
		if id, ok := hrefID(v); ok {
			g.href = id
		}
	}
	return nil
}

func linearGradientF(c *docCursor, attrs []Attribute) error {
	c.inGrad = true
	g := newLinearDef()
	c.grad = g
	var err error
	for _, attr := range attrs {
		switch attr.Name {
		case "id":
			if attr.Value == "" {
				return errZeroLengthID
			}
			c.ctx.grads[attr.Value] = g
		case "x1":
			g.coords[0], err = readGradCoord(attr.Value)
		case "y1":
			g.coords[1], err = readGradCoord(attr.Value)
		case "x2":
			g.coords[2], err = readGradCoord(attr.Value)
		case "y2":
			g.coords[3], err = readGradCoord(attr.Value)
		default:
			err = c.readGradAttr(g, attr.Name, attr.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func radialGradientF(c *docCursor, attrs []Attribute) error {
	c.inGrad = true
	g := newRadialDef()
	c.grad = g
	var setFx, setFy bool
	var err error
	for _, attr := range attrs {
		switch attr.Name {
		case "id":
			if attr.Value == "" {
				return errZeroLengthID
			}
			c.ctx.grads[attr.Value] = g
		case "cx":
			g.coords[0], err = readGradCoord(attr.Value)
		case "cy":
			g.coords[1], err = readGradCoord(attr.Value)
		case "fx":
			setFx = true
			g.coords[2], err = readGradCoord(attr.Value)
		case "fy":
			setFy = true
			g.coords[3], err = readGradCoord(attr.Value)
		case "r":
			g.coords[4], err = readGradCoord(attr.Value)
		case "fr":
			g.coords[5], err = readGradCoord(attr.Value)
		default:
			err = c.readGradAttr(g, attr.Name, attr.Value)
		}
		if err != nil {
			return err
		}
	}
	if !setFx { // fx defaults to cx
		g.coords[2] = g.coords[0]
	}
	if !setFy { // fy defaults to cy
		g.coords[3] = g.coords[1]
	}
	return nil
}

func stopF(c *docCursor, attrs []Attribute) error {
	if c.grad == nil {
		return nil
	}
	stop := svgpath.GradStop{Opacity: 1.0}
	var err error
	for _, attr := range attrs {
		switch attr.Name {
		case "offset":
			stop.Offset, err = readFraction(attr.Value)
		case "stop-color":
			var optColor optionnalColor
			optColor, err = parseSVGColor(attr.Value)
			stop.StopColor = optColor.asColor()
		case "stop-opacity":
			stop.Opacity, err = parseBasicFloat(attr.Value)
		}
		if err != nil {
			return err
		}
	}
	c.grad.stops = append(c.grad.stops, stop)
	return nil
}

func textF(c *docCursor, attrs []Attribute) error {
	var x, y float64
	var err error
	for _, attr := range attrs {
		switch attr.Name {
		case "x":
			x, err = c.parseUnit(attr.Value, widthPercentage)
		case "y":
			y, err = c.parseUnit(attr.Value, heightPercentage)
		}
		if err != nil {
			return err
		}
	}
	c.startTextRun(x, y)
	return nil
}

// tspanF continues the enclosing run, or restarts it at an
// explicit position.
func tspanF(c *docCursor, attrs []Attribute) error {
	if c.textRun == nil {
		return nil
	}
	xv, yv := attrValue(attrs, "x"), attrValue(attrs, "y")
	if xv == "" && yv == "" {
		return nil
	}
	var x, y float64
	var err error
	if xv != "" {
		if x, err = c.parseUnit(xv, widthPercentage); err != nil {
			return err
		}
	}
	if yv != "" {
		if y, err = c.parseUnit(yv, heightPercentage); err != nil {
			return err
		}
	}
	if err := c.flushText(); err != nil {
		return err
	}
	c.startTextRun(x, y)
	return nil
}

func (c *docCursor) startTextRun(x, y float64) {
	st := &c.styleStack[len(c.styleStack)-1]
	dx, dy := st.transform.Transform(x+c.curX, y+c.curY)
	fill, _ := c.resolvePaint(st.FillColor, c.ctx.viewBox, st.transform)
	c.textRun = &TextRun{
		X:          dx,
		Y:          dy,
		Anchor:     st.TextAnchor,
		RTL:        st.RTL,
		FontFamily: st.FontFamily,
		FontSize:   st.FontSize * matrixScale(st.transform),
		Fill:       fill,
		Opacity:    st.FillOpacity,
	}
}

func imageF(c *docCursor, attrs []Attribute) error {
	var x, y, w, h float64
	var href string
	var err error
	for _, attr := range attrs {
		switch attr.Name {
		case "x":
			x, err = c.parseUnit(attr.Value, widthPercentage)
		case "y":
			y, err = c.parseUnit(attr.Value, heightPercentage)
		case "width":
			w, err = c.parseUnit(attr.Value, widthPercentage)
		case "height":
			h, err = c.parseUnit(attr.Value, heightPercentage)
		case "href":
			href = attr.Value
		}
		if err != nil {
			return err
		}
	}
	st := &c.styleStack[len(c.styleStack)-1]
	if st.suppressed || !st.Visible || w <= 0 || h <= 0 || href == "" {
		return nil
	}
	data, mime, err := c.loadAsset(href)
	if err != nil {
		return c.errorMode.handle("image asset unavailable: " + err.Error())
	}
	if c.embedSVG != nil && isSVGData(mime, data) {
		dx, dy := st.transform.Transform(x+c.curX, y+c.curY)
		s := matrixScale(st.transform)
		if err := c.embedSVG(data, Options{X: dx, Y: dy, Width: w * s, Height: h * s}); err != nil {
			return c.errorMode.handle("embedded document not convertible: " + err.Error())
		}
		return nil
	}
	img := Image{
		Data:      data,
		MimeType:  mime,
		X:         x + c.curX,
		Y:         y + c.curY,
		W:         w,
		H:         h,
		Transform: st.transform,
	}
	if err := c.driver.DrawImage(img); err != nil {
		return c.errorMode.handle("image not drawable: " + err.Error())
	}
	return nil
}

// loadAsset resolves an image href: an embedded data URI is decoded
// in place, anything else goes through the configured loader.
func (c *docCursor) loadAsset(href string) ([]byte, string, error) {
	if strings.HasPrefix(href, "data:") {
		meta, payload, ok := strings.Cut(href[len("data:"):], ",")
		if !ok {
			return nil, "", ErrInvalidInput
		}
		mime := meta
		isBase64 := false
		if strings.HasSuffix(meta, ";base64") {
			mime = strings.TrimSuffix(meta, ";base64")
			isBase64 = true
		}
		if !isBase64 {
			return []byte(payload), mime, nil
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		return data, mime, err
	}
	if c.loader == nil {
		return nil, "", ErrInvalidInput
	}
	data, err := c.loader(href)
	return data, guessMimeType(href), err
}

func isSVGData(mime string, data []byte) bool {
	if strings.Contains(mime, "svg") {
		return true
	}
	head := strings.TrimSpace(string(data[:min(len(data), 256)]))
	return strings.Contains(head, "<svg")
}

func guessMimeType(name string) string {
	switch {
	case strings.HasSuffix(name, ".png"):
		return "image/png"
	case strings.HasSuffix(name, ".jpg"), strings.HasSuffix(name, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(name, ".gif"):
		return "image/gif"
	case strings.HasSuffix(name, ".svg"):
		return "image/svg+xml"
	}
	return "application/octet-stream"
}

func useF(c *docCursor, attrs []Attribute) error {
	if c.useDepth >= maxRefDepth {
		return c.errorMode.handle("use expansion too deep")
	}
	var (
		href string
		x, y float64
		err  error
	)
	for _, attr := range attrs {
		switch attr.Name {
		case "href":
			href = attr.Value
		case "x":
			x, err = c.parseUnit(attr.Value, widthPercentage)
		case "y":
			y, err = c.parseUnit(attr.Value, heightPercentage)
		}
		if err != nil {
			return err
		}
	}
	id, ok := hrefID(href)
	if !ok {
		return c.errorMode.handle("only local id references are supported in use tags")
	}
	defs, ok := c.ctx.defs[id]
	if !ok {
		return c.errorMode.handle("use references undefined id " + id)
	}

	// offsets accumulate through nested replays
	savedX, savedY := c.curX, c.curY
	c.curX += x
	c.curY += y
	c.useDepth++
	defer func() {
		c.curX, c.curY = savedX, savedY
		c.useDepth--
	}()

	// a nested keyed id splits its enclosing subtree across two
	// definition lists, so push/pop markers may not balance here
	baseDepth := len(c.styleStack)
	defer func() {
		if len(c.styleStack) > baseDepth {
			c.styleStack = c.styleStack[:baseDepth]
		}
	}()

	// the use element's own presentation attributes merge onto the
	// replayed root, taking priority over the definition's; x, y and
	// the reference itself never carry over
	var useStyle []Attribute
	useNames := map[string]bool{}
	for _, attr := range attrs {
		k := strings.ToLower(attr.Name)
		if k == "x" || k == "y" || k == "href" || k == "id" {
			continue
		}
		useStyle = append(useStyle, attr)
		useNames[k] = true
	}

	for i, def := range defs {
		if def.Closing {
			if c.textRun != nil && def.Text != "" {
				c.textRun.Text += def.Text
			}
			if def.Tag == "text" {
				err := c.flushText()
				c.textRun = nil
				if err != nil {
					return err
				}
			}
			if len(c.styleStack) > baseDepth {
				c.styleStack = c.styleStack[:len(c.styleStack)-1]
			}
			continue
		}
		replayAttrs := def.Attrs
		if i == 0 {
			replayAttrs = make([]Attribute, 0, len(def.Attrs)+len(useStyle))
			for _, a := range def.Attrs {
				k := strings.ToLower(a.Name)
				if k == "id" || (useNames[k] && k != "style") {
					continue
				}
				replayAttrs = append(replayAttrs, a)
			}
			replayAttrs = append(replayAttrs, useStyle...)
		}
		if err = c.pushStyle(replayAttrs); err != nil {
			return err
		}
		if err := c.dispatchDraw(def.Tag, replayAttrs); err != nil {
			return err
		}
	}
	return nil
}
