package svgconv

import (
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/tecnickcom/tc-lib-pdf-svg/svgpath"
)

// optionnalColor distinguishes a resolved color from
// the "none" keyword, which disables the paint operation.
type optionnalColor struct {
	valid bool
	color color.NRGBA
}

func (o optionnalColor) asPattern() svgpath.Pattern {
	if !o.valid {
		return nil
	}
	return svgpath.PlainColor{NRGBA: o.color}
}

func (o optionnalColor) asColor() color.Color {
	if !o.valid {
		return nil
	}
	return o.color
}

// parseSVGColorNum reads a hex color string e.g. #FBD9BD,
// duplicating the digits of the 3 digit short form.
func parseSVGColorNum(colorStr string) (r, g, b uint8, err error) {
	colorStr = strings.TrimPrefix(colorStr, "#")
	if len(colorStr) != 6 {
		if len(colorStr) < 3 {
			return 0, 0, 0, errParamMismatch
		}
		colorStr = string([]byte{colorStr[0], colorStr[0],
			colorStr[1], colorStr[1], colorStr[2], colorStr[2]})
	}
	var t uint64
	for _, v := range []struct {
		c *uint8
		s string
	}{
		{&r, colorStr[0:2]},
		{&g, colorStr[2:4]},
		{&b, colorStr[4:6]}} {
		t, err = strconv.ParseUint(v.s, 16, 8)
		if err != nil {
			return
		}
		*v.c = uint8(t)
	}
	return
}

// parseSVGColor parses an SVG color token in all its forms,
// including the SVG 1.1 names from the colornames package.
func parseSVGColor(colorStr string) (optionnalColor, error) {
	v := strings.ToLower(strings.TrimSpace(colorStr))
	switch v {
	case "none", "transparent":
		// the paint operation (fill or stroke) is off; not the same as black
		return optionnalColor{}, nil
	}
	if cn, ok := colornames.Map[v]; ok {
		return optionnalColor{valid: true, color: color.NRGBA{R: cn.R, G: cn.G, B: cn.B, A: cn.A}}, nil
	}
	if cStr := strings.TrimPrefix(v, "rgb("); cStr != v {
		cStr = strings.TrimSuffix(cStr, ")")
		vals := strings.Split(cStr, ",")
		if len(vals) != 3 {
			return optionnalColor{}, errParamMismatch
		}
		var cvals [3]uint8
		for i := range cvals {
			c, err := parseColorValue(vals[i])
			if err != nil {
				return optionnalColor{}, err
			}
			cvals[i] = c
		}
		return optionnalColor{valid: true, color: color.NRGBA{R: cvals[0], G: cvals[1], B: cvals[2], A: 0xFF}}, nil
	}
	if strings.HasPrefix(v, "#") {
		r, g, b, err := parseSVGColorNum(v)
		if err != nil {
			return optionnalColor{}, err
		}
		return optionnalColor{valid: true, color: color.NRGBA{R: r, G: g, B: b, A: 0xFF}}, nil
	}
	return optionnalColor{}, errParamMismatch
}

func parseColorValue(v string) (uint8, error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "%") {
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(v, "%")))
		if err != nil {
			return 0, err
		}
		return uint8(n * 0xFF / 100), nil
	}
	n, err := strconv.Atoi(v)
	if n > 255 {
		n = 255
	}
	return uint8(n), err
}
