package svgconv

import (
	"strconv"
	"strings"
)

// Numeric attribute helpers. Lengths resolve to user units
// (the CSS pixel, 96 per inch); percentages resolve against
// the current viewport.

// unitScale maps a length suffix to user units.
var unitScale = []struct {
	suffix string
	scale  float64
}{
	{"px", 1},
	{"pt", 96.0 / 72.0},
	{"pc", 16},
	{"cm", 96.0 / 2.54},
	{"mm", 96.0 / 25.4},
	{"in", 96},
	{"em", 16},
	{"ex", 8},
}

// parseBasicFloat reads a plain number, tolerating a length suffix.
func parseBasicFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	scale := 1.0
	for _, u := range unitScale {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSuffix(s, u.suffix)
			scale = u.scale
			break
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f * scale, err
}

// percentageReference selects the viewport dimension a
// percentage length resolves against.
type percentageReference uint8

const (
	noPercentage percentageReference = iota
	widthPercentage
	heightPercentage
	diagPercentage
)

// splitOnCommaOrSpace returns a list of strings after splitting the input on comma and space delimiters
func splitOnCommaOrSpace(s string) []string {
	return strings.FieldsFunc(s,
		func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		})
}

// readFraction reads a gradient coordinate: percentages are divided
// by 100 and clamped to [0,1]; plain ratios pass through.
func readFraction(v string) (f float64, err error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "%") {
		f, err = strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		f /= 100
		if f > 1 {
			f = 1
		} else if f < 0 {
			f = 0
		}
		return f, err
	}
	return parseBasicFloat(v)
}
