package svgconv

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tecnickcom/tc-lib-pdf-svg/svgpath"
)

func TestParseBasicFloat(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want float64
	}{
		{"12", 12},
		{" 3.5 ", 3.5},
		{"-4", -4},
		{"10px", 10},
		{"72pt", 96},
		{"1in", 96},
		{"2.54cm", 96},
		{"1em", 16},
	} {
		got, err := parseBasicFloat(tc.in)
		require.NoError(t, err, tc.in)
		require.InDelta(t, tc.want, got, 1e-6, tc.in)
	}

	_, err := parseBasicFloat("abc")
	require.Error(t, err)
}

func TestReadFraction(t *testing.T) {
	f, err := readFraction("50%")
	require.NoError(t, err)
	require.Equal(t, 0.5, f)

	f, err = readFraction("250%")
	require.NoError(t, err)
	require.Equal(t, 1.0, f)

	f, err = readFraction("-10%")
	require.NoError(t, err)
	require.Equal(t, 0.0, f)

	f, err = readFraction("0.75")
	require.NoError(t, err)
	require.Equal(t, 0.75, f)
}

func TestSplitOnCommaOrSpace(t *testing.T) {
	require.Equal(t, []string{"1", "2", "3"}, splitOnCommaOrSpace("1,2 3"))
	require.Equal(t, []string{"a", "b"}, splitOnCommaOrSpace("  a ,\n b "))
	require.Empty(t, splitOnCommaOrSpace(" , "))
}

func TestParseUnitPercent(t *testing.T) {
	c := styleCursor()
	c.ctx.viewBox = svgpath.Bounds{W: 200, H: 100}

	v, err := c.parseUnit("50%", widthPercentage)
	require.NoError(t, err)
	require.Equal(t, 100.0, v)

	v, err = c.parseUnit("50%", heightPercentage)
	require.NoError(t, err)
	require.Equal(t, 50.0, v)

	v, err = c.parseUnit("10", widthPercentage)
	require.NoError(t, err)
	require.Equal(t, 10.0, v)
}
