package svgpath

import (
	"errors"
	"math"
)

// Interprets the path-data grammar of the `d` attribute,
// reducing every command to the basic Path operations.

// minNum is the minimum magnitude a path-data value may carry;
// anything below is snapped to zero to suppress degenerate geometry.
const minNum = 0.01

var (
	errParamMismatch  = errors.New("param mismatch")
	errCommandUnknown = errors.New("unknown path command")
)

// pathCursor is the state carried across one path's commands.
type pathCursor struct {
	path Path

	placeX, placeY         float64 // current point
	pathStartX, pathStartY float64 // start of the current subpath
	cntlPtX, cntlPtY       float64 // last control point, used by S and T

	points  []float64
	lastKey byte
	inPath  bool
}

// ParsePath interprets the value of a `d` attribute.
// Interpretation is pure: the same input always yields the same path.
func ParsePath(svg string) (Path, error) {
	c := &pathCursor{lastKey: ' '}
	if err := c.compile(svg); err != nil {
		return c.path, err
	}
	return c.path, nil
}

func isCommand(b byte) bool {
	switch b {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v',
		'C', 'c', 'S', 's', 'Q', 'q', 'T', 't', 'A', 'a', 'Z', 'z':
		return true
	}
	return false
}

// compile tokenizes and executes the commands of the path data.
func (c *pathCursor) compile(svg string) error {
	var cmd byte
	i := 0
	for i < len(svg) {
		b := svg[i]
		switch {
		case b == ' ' || b == ',' || b == '\t' || b == '\n' || b == '\r':
			i++
		case isCommand(b):
			if cmd != 0 {
				if err := c.exec(cmd); err != nil {
					return err
				}
			}
			cmd = b
			c.points = c.points[:0]
			i++
		case b == '-' || b == '+' || b == '.' || (b >= '0' && b <= '9'):
			f, next := scanNum(svg, i)
			if next == i {
				return errParamMismatch
			}
			if math.Abs(f) < minNum {
				f = 0
			}
			c.points = append(c.points, f)
			i = next
		default:
			return errCommandUnknown
		}
	}
	if cmd != 0 {
		return c.exec(cmd)
	}
	return nil
}

// scanNum reads one number at i: sign, digits, optional fraction.
// Exponents are not part of the grammar. A second dot or an inner
// sign starts the next number.
func scanNum(svg string, i int) (float64, int) {
	start := i
	if svg[i] == '-' || svg[i] == '+' {
		i++
	}
	digits, dot := 0, false
	for i < len(svg) {
		b := svg[i]
		if b >= '0' && b <= '9' {
			digits++
			i++
		} else if b == '.' && !dot {
			dot = true
			i++
		} else {
			break
		}
	}
	if digits == 0 {
		return 0, start
	}
	f := parseDecimal(svg[start:i])
	return f, i
}

func parseDecimal(s string) float64 {
	neg := false
	i := 0
	if s[i] == '-' || s[i] == '+' {
		neg = s[i] == '-'
		i++
	}
	var v float64
	for ; i < len(s) && s[i] != '.'; i++ {
		v = v*10 + float64(s[i]-'0')
	}
	if i < len(s) && s[i] == '.' {
		scale := 0.1
		for i++; i < len(s); i++ {
			v += float64(s[i]-'0') * scale
			scale /= 10
		}
	}
	if neg {
		return -v
	}
	return v
}

// exec applies one command letter to its accumulated parameter run,
// repeating the command for each additional parameter group.
func (c *pathCursor) exec(cmd byte) error {
	rel := cmd >= 'a'
	pts := c.points
	switch cmd {
	case 'Z', 'z':
		if len(pts) != 0 {
			return errParamMismatch
		}
		if c.inPath {
			c.path.Stop(true)
			c.placeX, c.placeY = c.pathStartX, c.pathStartY
			c.inPath = false
		}
	case 'M', 'm':
		if len(pts) < 2 || len(pts)%2 != 0 {
			return errParamMismatch
		}
		for i := 0; i < len(pts); i += 2 {
			x, y := pts[i], pts[i+1]
			if rel {
				x += c.placeX
				y += c.placeY
			}
			if i == 0 {
				c.path.Start(toFixedP(x, y))
				c.pathStartX, c.pathStartY = x, y
				c.inPath = true
			} else {
				// additional pairs are implicit linetos
				c.path.Line(toFixedP(x, y))
			}
			c.placeX, c.placeY = x, y
		}
	case 'L', 'l':
		if len(pts) < 2 || len(pts)%2 != 0 {
			return errParamMismatch
		}
		for i := 0; i < len(pts); i += 2 {
			x, y := pts[i], pts[i+1]
			if rel {
				x += c.placeX
				y += c.placeY
			}
			c.path.Line(toFixedP(x, y))
			c.placeX, c.placeY = x, y
		}
	case 'H', 'h':
		if len(pts) == 0 {
			return errParamMismatch
		}
		for _, x := range pts {
			if rel {
				x += c.placeX
			}
			c.path.Line(toFixedP(x, c.placeY))
			c.placeX = x
		}
	case 'V', 'v':
		if len(pts) == 0 {
			return errParamMismatch
		}
		for _, y := range pts {
			if rel {
				y += c.placeY
			}
			c.path.Line(toFixedP(c.placeX, y))
			c.placeY = y
		}
	case 'C', 'c':
		if len(pts) < 6 || len(pts)%6 != 0 {
			return errParamMismatch
		}
		for i := 0; i < len(pts); i += 6 {
			x1, y1, x2, y2, x, y := pts[i], pts[i+1], pts[i+2], pts[i+3], pts[i+4], pts[i+5]
			if rel {
				x1 += c.placeX
				y1 += c.placeY
				x2 += c.placeX
				y2 += c.placeY
				x += c.placeX
				y += c.placeY
			}
			c.path.CubeBezier(toFixedP(x1, y1), toFixedP(x2, y2), toFixedP(x, y))
			c.cntlPtX, c.cntlPtY = x2, y2
			c.placeX, c.placeY = x, y
			c.lastKey = cmd
		}
	case 'S', 's':
		if len(pts) < 4 || len(pts)%4 != 0 {
			return errParamMismatch
		}
		for i := 0; i < len(pts); i += 4 {
			x2, y2, x, y := pts[i], pts[i+1], pts[i+2], pts[i+3]
			if rel {
				x2 += c.placeX
				y2 += c.placeY
				x += c.placeX
				y += c.placeY
			}
			x1, y1 := c.reflectControl('C')
			c.path.CubeBezier(toFixedP(x1, y1), toFixedP(x2, y2), toFixedP(x, y))
			c.cntlPtX, c.cntlPtY = x2, y2
			c.placeX, c.placeY = x, y
			c.lastKey = cmd
		}
	case 'Q', 'q':
		if len(pts) < 4 || len(pts)%4 != 0 {
			return errParamMismatch
		}
		for i := 0; i < len(pts); i += 4 {
			x1, y1, x, y := pts[i], pts[i+1], pts[i+2], pts[i+3]
			if rel {
				x1 += c.placeX
				y1 += c.placeY
				x += c.placeX
				y += c.placeY
			}
			c.quadToCubic(x1, y1, x, y)
			c.cntlPtX, c.cntlPtY = x1, y1
			c.placeX, c.placeY = x, y
			c.lastKey = cmd
		}
	case 'T', 't':
		if len(pts) < 2 || len(pts)%2 != 0 {
			return errParamMismatch
		}
		for i := 0; i < len(pts); i += 2 {
			x, y := pts[i], pts[i+1]
			if rel {
				x += c.placeX
				y += c.placeY
			}
			x1, y1 := c.reflectControl('Q')
			c.quadToCubic(x1, y1, x, y)
			c.cntlPtX, c.cntlPtY = x1, y1
			c.placeX, c.placeY = x, y
			c.lastKey = cmd
		}
	case 'A', 'a':
		if len(pts) < 7 || len(pts)%7 != 0 {
			return errParamMismatch
		}
		for i := 0; i < len(pts); i += 7 {
			arc := [7]float64{pts[i], pts[i+1], pts[i+2], pts[i+3], pts[i+4], pts[i+5], pts[i+6]}
			if rel {
				arc[5] += c.placeX
				arc[6] += c.placeY
			}
			c.arcTo(arc)
			c.lastKey = cmd
		}
	default:
		return errCommandUnknown
	}
	switch cmd {
	case 'C', 'c', 'S', 's', 'Q', 'q', 'T', 't', 'A', 'a':
	default:
		c.lastKey = cmd
	}
	return nil
}

// reflectControl yields the first control point of a smooth command:
// the previous control point mirrored about the current point when the
// preceding command is of the same family, the current point otherwise.
func (c *pathCursor) reflectControl(family byte) (x, y float64) {
	prev := c.lastKey
	if prev >= 'a' {
		prev -= 'a' - 'A'
	}
	same := (family == 'C' && (prev == 'C' || prev == 'S')) ||
		(family == 'Q' && (prev == 'Q' || prev == 'T'))
	if !same {
		return c.placeX, c.placeY
	}
	return 2*c.placeX - c.cntlPtX, 2*c.placeY - c.cntlPtY
}

// quadToCubic elevates a quadratic segment to its exact cubic form.
func (c *pathCursor) quadToCubic(qx, qy, x, y float64) {
	c1x := c.placeX + 2*(qx-c.placeX)/3
	c1y := c.placeY + 2*(qy-c.placeY)/3
	c2x := x + 2*(qx-x)/3
	c2y := y + 2*(qy-y)/3
	c.path.CubeBezier(toFixedP(c1x, c1y), toFixedP(c2x, c2y), toFixedP(x, y))
}

// arcTo handles one elliptical arc parameter group
// (rx, ry, x-axis-rotation, large-arc-flag, sweep-flag, x, y).
func (c *pathCursor) arcTo(arc [7]float64) {
	ra, rb := math.Abs(arc[0]), math.Abs(arc[1])
	x, y := arc[5], arc[6]
	if ra < minNum || rb < minNum ||
		(math.Abs(x-c.placeX) < minNum && math.Abs(y-c.placeY) < minNum) {
		// degenerate arc, only the current point moves
		if x != c.placeX || y != c.placeY {
			c.path.Line(toFixedP(x, y))
		}
		c.placeX, c.placeY = x, y
		return
	}
	rotX := arc[2] * math.Pi / 180
	largeArc := arc[3] != 0
	sweep := arc[4] != 0
	cx, cy := findEllipseCenter(&ra, &rb, rotX, c.placeX, c.placeY, x, y, sweep, !largeArc)
	points := []float64{ra, rb, arc[2], arc[3], arc[4], x, y}
	c.placeX, c.placeY = c.path.addArc(points, cx, cy, c.placeX, c.placeY)
}
