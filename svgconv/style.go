package svgconv

import (
	"image/color"
	"strings"

	"github.com/aymerick/douceur/parser"

	"github.com/tecnickcom/tc-lib-pdf-svg/svgpath"
)

// Resolves the style of one element: the inheritable subset of the
// parent style is cloned, then a presentation attribute wins over an
// inline style declaration for the same property, and the literal
// `inherit` keeps the parent value.

type paintKind uint8

const (
	paintNone paintKind = iota
	paintColor
	paintGradient
)

// paint is the value of a fill or stroke property: off, a solid
// color, or a reference to a gradient id resolved at paint time.
type paint struct {
	kind       paintKind
	color      color.NRGBA
	gradientID string
}

// Style is the fixed-field record of the presentation properties
// recognized by the engine; open-ended declarations land in Extra.
type Style struct {
	// paint, inherited
	FillColor     paint
	StrokeColor   paint
	FillOpacity   float64
	StrokeOpacity float64

	UseNonZeroWinding bool

	// stroke geometry, inherited
	LineWidth float64
	Join      JoinOptions
	Dash      DashOptions

	// text, inherited
	TextAnchor Anchor
	RTL        bool
	FontFamily string
	FontSize   float64

	Visible    bool // visibility: hidden/collapse suppress paint, not bookkeeping
	suppressed bool // display: none, sticky for the whole subtree

	// reset to defaults on every element
	Opacity    float64 // group opacity, requests an alpha state when < 1
	ClipPathID string  // clip-path: url(#id)
	ClipRect   *[4]float64

	// open-ended declarations, copied on write
	Extra map[string]string

	transform svgpath.Matrix2D
}

// DefaultStyle fills black with the winding rule, full opacity,
// no stroke, ButtCap line end and Bevel line join.
var DefaultStyle = Style{
	FillColor:         paint{kind: paintColor, color: color.NRGBA{A: 0xff}},
	StrokeColor:       paint{kind: paintNone},
	FillOpacity:       1.0,
	StrokeOpacity:     1.0,
	UseNonZeroWinding: true,
	LineWidth:         2.0,
	Join: JoinOptions{
		MiterLimit:   fToFixed(4.),
		LineJoin:     Bevel,
		TrailLineCap: ButtCap,
	},
	FontFamily: "helvetica",
	FontSize:   16,
	Visible:    true,
	Opacity:    1.0,
	transform:  svgpath.Identity,
}

// Transform reports the composed transform in effect for the element.
func (s *Style) Transform() svgpath.Matrix2D { return s.transform }

func (s *Style) setExtra(k, v string) {
	next := make(map[string]string, len(s.Extra)+1)
	for ek, ev := range s.Extra {
		next[ek] = ev
	}
	next[k] = v
	s.Extra = next
}

// resetPerElement restores the non-inheritable properties
// to their document defaults.
func (s *Style) resetPerElement() {
	s.Opacity = 1.0
	s.ClipPathID = ""
	s.ClipRect = nil
}

func parseCap(v string) CapMode {
	switch v {
	case "butt":
		return ButtCap
	case "round":
		return RoundCap
	case "square":
		return SquareCap
	case "cubic":
		return CubicCap
	case "quadratic":
		return QuadraticCap
	}
	return NilCap
}

// readStyleAttr folds one property into the style. Unknown values
// degrade to the inherited or default value rather than erroring.
func (c *docCursor) readStyleAttr(curStyle *Style, k, v string) error {
	switch k {
	case "fill":
		if id, ok := parsePaintURL(v); ok {
			curStyle.FillColor = paint{kind: paintGradient, gradientID: id}
			break
		}
		optCol, err := parseSVGColor(v)
		if err != nil {
			return c.errorMode.handle("unsupported fill value " + v)
		}
		if optCol.valid {
			curStyle.FillColor = paint{kind: paintColor, color: optCol.color}
		} else {
			curStyle.FillColor = paint{kind: paintNone}
		}
	case "stroke":
		if id, ok := parsePaintURL(v); ok {
			curStyle.StrokeColor = paint{kind: paintGradient, gradientID: id}
			break
		}
		optCol, err := parseSVGColor(v)
		if err != nil {
			return c.errorMode.handle("unsupported stroke value " + v)
		}
		if optCol.valid {
			curStyle.StrokeColor = paint{kind: paintColor, color: optCol.color}
		} else {
			curStyle.StrokeColor = paint{kind: paintNone}
		}
	case "fill-rule":
		switch v {
		case "evenodd":
			curStyle.UseNonZeroWinding = false
		case "nonzero":
			curStyle.UseNonZeroWinding = true
		}
	case "stroke-linegap":
		switch v {
		case "flat":
			curStyle.Join.LineGap = FlatGap
		case "round":
			curStyle.Join.LineGap = RoundGap
		case "cubic":
			curStyle.Join.LineGap = CubicGap
		case "quadratic":
			curStyle.Join.LineGap = QuadraticGap
		}
	case "stroke-leadlinecap":
		curStyle.Join.LeadLineCap = parseCap(v)
	case "stroke-linecap":
		curStyle.Join.TrailLineCap = parseCap(v)
	case "stroke-linejoin":
		switch v {
		case "miter":
			curStyle.Join.LineJoin = Miter
		case "miter-clip":
			curStyle.Join.LineJoin = MiterClip
		case "arc-clip":
			curStyle.Join.LineJoin = ArcClip
		case "round":
			curStyle.Join.LineJoin = Round
		case "arc":
			curStyle.Join.LineJoin = Arc
		case "bevel":
			curStyle.Join.LineJoin = Bevel
		}
	case "stroke-miterlimit":
		if mLimit, err := parseBasicFloat(v); err == nil {
			curStyle.Join.MiterLimit = fToFixed(mLimit)
		}
	case "stroke-width":
		if width, err := parseBasicFloat(v); err == nil {
			curStyle.LineWidth = width
		}
	case "stroke-dashoffset":
		if dashOffset, err := parseBasicFloat(v); err == nil {
			curStyle.Dash.DashOffset = dashOffset
		}
	case "stroke-dasharray":
		if v == "none" {
			curStyle.Dash.Dash = nil
			break
		}
		dashes := splitOnCommaOrSpace(v)
		dList := make([]float64, len(dashes))
		for i, dstr := range dashes {
			d, err := parseBasicFloat(dstr)
			if err != nil {
				return nil // ill-formed array, inherited value stands
			}
			dList[i] = d
		}
		curStyle.Dash.Dash = dList
	case "opacity":
		if op, err := parseBasicFloat(v); err == nil {
			curStyle.Opacity = op
		}
	case "fill-opacity":
		if op, err := parseBasicFloat(v); err == nil {
			curStyle.FillOpacity *= op
		}
	case "stroke-opacity":
		if op, err := parseBasicFloat(v); err == nil {
			curStyle.StrokeOpacity *= op
		}
	case "visibility":
		switch v {
		case "hidden", "collapse":
			curStyle.Visible = false
		case "visible":
			curStyle.Visible = true
		}
	case "display":
		if v == "none" {
			curStyle.suppressed = true
		}
	case "clip":
		if r, ok := parseClipRect(v); ok {
			curStyle.ClipRect = &r
		}
	case "clip-path":
		if id, ok := parsePaintURL(v); ok {
			curStyle.ClipPathID = id
		}
	case "text-anchor":
		switch v {
		case "start":
			curStyle.TextAnchor = AnchorStart
		case "middle":
			curStyle.TextAnchor = AnchorMiddle
		case "end":
			curStyle.TextAnchor = AnchorEnd
		}
	case "direction":
		curStyle.RTL = v == "rtl"
	case "font-family":
		curStyle.FontFamily = strings.TrimSpace(strings.Split(v, ",")[0])
	case "font-size":
		if size, err := parseBasicFloat(v); err == nil {
			curStyle.FontSize = size
		}
	case "transform":
		curStyle.transform = parseTransform(curStyle.transform, v)
	}
	return nil
}

// parsePaintURL extracts the id of a url(#id) reference.
func parsePaintURL(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "url(") || !strings.HasSuffix(v, ")") {
		return "", false
	}
	url := strings.TrimSpace(v[4 : len(v)-1])
	url = strings.Trim(url, "'\"")
	if !strings.HasPrefix(url, "#") {
		return "", false
	}
	return url[1:], true
}

// parseClipRect reads the legacy clip: rect(top, right, bottom, left) form.
func parseClipRect(v string) ([4]float64, bool) {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "rect(") || !strings.HasSuffix(v, ")") {
		return [4]float64{}, false
	}
	vals := splitOnCommaOrSpace(v[5 : len(v)-1])
	if len(vals) != 4 {
		return [4]float64{}, false
	}
	var r [4]float64
	for i, s := range vals {
		if s == "auto" {
			continue
		}
		f, err := parseBasicFloat(s)
		if err != nil {
			return [4]float64{}, false
		}
		r[i] = f
	}
	return r, true
}

// styleAttributes is the set of presentation attribute names
// honored next to the inline style declaration.
var styleAttributes = map[string]bool{
	"fill": true, "stroke": true, "fill-rule": true,
	"fill-opacity": true, "stroke-opacity": true, "opacity": true,
	"stroke-width": true, "stroke-linecap": true, "stroke-leadlinecap": true,
	"stroke-linejoin": true, "stroke-linegap": true, "stroke-miterlimit": true,
	"stroke-dasharray": true, "stroke-dashoffset": true,
	"visibility": true, "display": true, "clip": true, "clip-path": true,
	"text-anchor": true, "direction": true,
	"font-family": true, "font-size": true,
	"transform": true,
}

// pushStyle resolves the style of the opening element and pushes it
// on the style stack. A presentation attribute replaces the inline
// declaration of the same property; it never applies on top of it.
func (c *docCursor) pushStyle(attrs []Attribute) error {
	curStyle := c.styleStack[len(c.styleStack)-1]
	curStyle.resetPerElement()

	var attrPresent map[string]bool
	for _, attr := range attrs {
		k := strings.ToLower(attr.Name)
		if !styleAttributes[k] || strings.TrimSpace(attr.Value) == "inherit" {
			continue
		}
		if attrPresent == nil {
			attrPresent = make(map[string]bool)
		}
		attrPresent[k] = true
	}

	for _, attr := range attrs {
		if strings.ToLower(attr.Name) != "style" {
			continue
		}
		decls, err := parser.ParseDeclarations(attr.Value)
		if err != nil {
			if e := c.errorMode.handle("unparsable style attribute: " + attr.Value); e != nil {
				return e
			}
			continue
		}
		for _, decl := range decls {
			k := strings.ToLower(strings.TrimSpace(decl.Property))
			v := strings.TrimSpace(decl.Value)
			if v == "inherit" || attrPresent[k] {
				continue
			}
			if !styleAttributes[k] {
				curStyle.setExtra(k, v)
				continue
			}
			if err := c.readStyleAttr(&curStyle, k, v); err != nil {
				return err
			}
		}
	}
	for _, attr := range attrs {
		k := strings.ToLower(attr.Name)
		v := strings.TrimSpace(attr.Value)
		if !styleAttributes[k] || v == "inherit" {
			continue
		}
		if err := c.readStyleAttr(&curStyle, k, v); err != nil {
			return err
		}
	}

	c.styleStack = append(c.styleStack, curStyle) // Push style onto stack
	return nil
}
