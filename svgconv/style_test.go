package svgconv

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func styleCursor() *docCursor {
	return newDocCursor(newDocContext(), &recorder{}, IgnoreErrorMode)
}

func topStyle(c *docCursor) *Style {
	return &c.styleStack[len(c.styleStack)-1]
}

func push(t *testing.T, c *docCursor, attrs ...Attribute) *Style {
	t.Helper()
	require.NoError(t, c.pushStyle(attrs))
	return topStyle(c)
}

func TestPushStyleDefaults(t *testing.T) {
	c := styleCursor()
	st := push(t, c)
	require.Equal(t, paintColor, st.FillColor.kind)
	require.Equal(t, color.NRGBA{A: 0xff}, st.FillColor.color)
	require.Equal(t, paintNone, st.StrokeColor.kind)
	require.True(t, st.Visible)
}

func TestPushStyleAttributeWinsOverDeclaration(t *testing.T) {
	c := styleCursor()
	st := push(t, c,
		Attribute{Name: "style", Value: "fill:#0000ff"},
		Attribute{Name: "fill", Value: "#ff0000"},
	)
	require.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, st.FillColor.color)
}

func TestPushStyleAttributeReplacesDeclaration(t *testing.T) {
	// multiplicative properties must not compound when the same
	// property arrives as both a declaration and an attribute
	c := styleCursor()
	st := push(t, c,
		Attribute{Name: "style", Value: "fill-opacity:0.5;"},
		Attribute{Name: "fill-opacity", Value: "0.5"},
	)
	require.InDelta(t, 0.5, st.FillOpacity, 1e-9)

	c = styleCursor()
	st = push(t, c,
		Attribute{Name: "style", Value: "transform:translate(10,0);"},
		Attribute{Name: "transform", Value: "translate(10,0)"},
	)
	x, y := st.Transform().Transform(0, 0)
	require.InDelta(t, 10, x, 1e-9)
	require.InDelta(t, 0, y, 1e-9)
}

func TestPushStyleDeclarationApplies(t *testing.T) {
	c := styleCursor()
	st := push(t, c, Attribute{Name: "style", Value: "fill: #00ff00; stroke-width: 3"})
	require.Equal(t, color.NRGBA{G: 0xff, A: 0xff}, st.FillColor.color)
	require.Equal(t, 3.0, st.LineWidth)
}

func TestPushStyleInheritKeepsParentValue(t *testing.T) {
	c := styleCursor()
	push(t, c, Attribute{Name: "fill", Value: "#ff0000"})
	st := push(t, c, Attribute{Name: "fill", Value: "inherit"})
	require.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, st.FillColor.color)
}

func TestPushStylePopRestoresParent(t *testing.T) {
	c := styleCursor()
	push(t, c, Attribute{Name: "fill", Value: "#ff0000"})
	push(t, c, Attribute{Name: "fill", Value: "#0000ff"})

	c.styleStack = c.styleStack[:len(c.styleStack)-1]
	require.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, topStyle(c).FillColor.color)
}

func TestPushStyleOpacityNotInherited(t *testing.T) {
	c := styleCursor()
	push(t, c, Attribute{Name: "opacity", Value: "0.5"})
	st := push(t, c)
	require.Equal(t, 1.0, st.Opacity)
}

func TestPushStyleFillOpacityCompounds(t *testing.T) {
	c := styleCursor()
	push(t, c, Attribute{Name: "fill-opacity", Value: "0.5"})
	st := push(t, c, Attribute{Name: "fill-opacity", Value: "0.5"})
	require.InDelta(t, 0.25, st.FillOpacity, 1e-9)
}

func TestPushStyleSuppressedSticky(t *testing.T) {
	c := styleCursor()
	push(t, c, Attribute{Name: "display", Value: "none"})
	st := push(t, c, Attribute{Name: "display", Value: "inline"})
	require.True(t, st.suppressed)
}

func TestPushStyleVisibilityToggles(t *testing.T) {
	c := styleCursor()
	push(t, c, Attribute{Name: "visibility", Value: "hidden"})
	st := push(t, c, Attribute{Name: "visibility", Value: "visible"})
	require.True(t, st.Visible)
}

func TestPushStylePaintURL(t *testing.T) {
	c := styleCursor()
	st := push(t, c, Attribute{Name: "fill", Value: "url(#grad)"})
	require.Equal(t, paintGradient, st.FillColor.kind)
	require.Equal(t, "grad", st.FillColor.gradientID)
}

func TestPushStyleExtraCopyOnWrite(t *testing.T) {
	c := styleCursor()
	parent := push(t, c, Attribute{Name: "style", Value: "custom-prop: a"})
	child := push(t, c, Attribute{Name: "style", Value: "custom-prop: b"})
	require.Equal(t, "a", parent.Extra["custom-prop"])
	require.Equal(t, "b", child.Extra["custom-prop"])
}

func TestPushStyleDashArray(t *testing.T) {
	c := styleCursor()
	st := push(t, c, Attribute{Name: "stroke-dasharray", Value: "3, 1 2"})
	require.Equal(t, []float64{3, 1, 2}, st.Dash.Dash)

	st = push(t, c, Attribute{Name: "stroke-dasharray", Value: "none"})
	require.Nil(t, st.Dash.Dash)
}

func TestPushStyleFillRule(t *testing.T) {
	c := styleCursor()
	st := push(t, c, Attribute{Name: "fill-rule", Value: "evenodd"})
	require.False(t, st.UseNonZeroWinding)
}

func TestParsePaintURL(t *testing.T) {
	id, ok := parsePaintURL("url(#abc)")
	require.True(t, ok)
	require.Equal(t, "abc", id)

	id, ok = parsePaintURL(` url( '#abc' ) `)
	require.True(t, ok)
	require.Equal(t, "abc", id)

	_, ok = parsePaintURL("url(http://elsewhere)")
	require.False(t, ok)
	_, ok = parsePaintURL("#abc")
	require.False(t, ok)
}

func TestParseClipRect(t *testing.T) {
	r, ok := parseClipRect("rect(1, 2, 3, 4)")
	require.True(t, ok)
	require.Equal(t, [4]float64{1, 2, 3, 4}, r)

	r, ok = parseClipRect("rect(auto, 2, 3, 4)")
	require.True(t, ok)
	require.Equal(t, 0.0, r[0])

	_, ok = parseClipRect("circle(3)")
	require.False(t, ok)
}
