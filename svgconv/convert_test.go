package svgconv

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestConverter() (*Converter, *recorder) {
	rec := &recorder{}
	cv := &Converter{NewDriver: func() ContentDriver { return rec }}
	return cv, rec
}

const minimalDoc = `<svg viewBox="0 0 10 10"><rect width="10" height="10"/></svg>`

func TestConvertRawMarkup(t *testing.T) {
	cv, rec := newTestConverter()
	h, err := cv.Convert(minimalDoc, Options{})
	require.NoError(t, err)
	require.NotZero(t, h)
	require.Len(t, rec.shapes, 1)
}

func TestConvertMarkerPrefix(t *testing.T) {
	cv, _ := newTestConverter()
	_, err := cv.Convert("@"+minimalDoc, Options{})
	require.NoError(t, err)
}

func TestConvertDataURIBase64(t *testing.T) {
	cv, _ := newTestConverter()
	src := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(minimalDoc))
	_, err := cv.Convert(src, Options{})
	require.NoError(t, err)
}

func TestConvertDataURIPlain(t *testing.T) {
	cv, _ := newTestConverter()
	_, err := cv.Convert("data:image/svg+xml,"+minimalDoc, Options{})
	require.NoError(t, err)
}

func TestConvertFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "doc.svg")
	require.NoError(t, os.WriteFile(name, []byte(minimalDoc), 0o600))

	cv, rec := newTestConverter()
	_, err := cv.Convert(name, Options{})
	require.NoError(t, err)
	require.Len(t, rec.shapes, 1)
}

func TestConvertMissingFile(t *testing.T) {
	cv, _ := newTestConverter()
	_, err := cv.Convert(filepath.Join(t.TempDir(), "absent.svg"), Options{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestConvertEmptySource(t *testing.T) {
	cv, _ := newTestConverter()
	_, err := cv.Convert("   ", Options{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestConvertMalformedDocument(t *testing.T) {
	cv, _ := newTestConverter()
	_, err := cv.Convert("<svg viewBox=\"0 0 10 10\">\n<rect\n", Options{})

	var mde MalformedDocumentError
	require.ErrorAs(t, err, &mde)
	require.Greater(t, mde.Line, 0)
}

func TestConvertInfo(t *testing.T) {
	cv, _ := newTestConverter()
	h, err := cv.Convert(`<svg viewBox="0 0 200 100">
		<title>a title</title><desc>a description</desc>
	</svg>`, Options{})
	require.NoError(t, err)

	info, err := cv.Info(h)
	require.NoError(t, err)
	require.Equal(t, 200.0, info.ViewBox.W)
	require.Equal(t, 200.0, info.Width)
	require.Equal(t, 100.0, info.Height)
	require.Equal(t, []string{"a title"}, info.Titles)
	require.Equal(t, []string{"a description"}, info.Descriptions)
}

func TestConvertInfoResolvedSize(t *testing.T) {
	cv, _ := newTestConverter()
	h, err := cv.Convert(minimalDoc, Options{Width: 42, Height: 24})
	require.NoError(t, err)

	info, err := cv.Info(h)
	require.NoError(t, err)
	require.Equal(t, 42.0, info.Width)
	require.Equal(t, 24.0, info.Height)
}

func TestRenderUnknownHandle(t *testing.T) {
	cv, _ := newTestConverter()
	_, err := cv.Render(Handle(99))
	require.ErrorIs(t, err, ErrUnknownHandle)
	_, err = cv.Info(Handle(99))
	require.ErrorIs(t, err, ErrUnknownHandle)
}

func TestReleaseDropsHandle(t *testing.T) {
	cv, _ := newTestConverter()
	h, err := cv.Convert(minimalDoc, Options{})
	require.NoError(t, err)

	_, err = cv.Render(h)
	require.NoError(t, err)

	cv.Release(h)
	_, err = cv.Render(h)
	require.ErrorIs(t, err, ErrUnknownHandle)
}

func TestConvertDistinctHandles(t *testing.T) {
	cv, _ := newTestConverter()
	h1, err := cv.Convert(minimalDoc, Options{})
	require.NoError(t, err)
	h2, err := cv.Convert(minimalDoc, Options{})
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)
}

func TestConvertEmbeddedDocument(t *testing.T) {
	inner := `<svg viewBox="0 0 5 5"><rect width="5" height="5"/></svg>`
	src := `<svg viewBox="0 0 10 10">
		<image x="1" y="1" width="5" height="5"
			href="data:image/svg+xml;base64,` + base64.StdEncoding.EncodeToString([]byte(inner)) + `"/>
	</svg>`

	shapes := 0
	cv := &Converter{NewDriver: func() ContentDriver {
		return &countingDriver{recorder: &recorder{}, shapes: &shapes}
	}}
	h, err := cv.Convert(src, Options{})
	require.NoError(t, err)

	// the embedded document converted through its own driver
	require.Equal(t, 1, shapes)
	_, err = cv.Render(h)
	require.NoError(t, err)
}

// countingDriver tallies painted shapes across converter instances.
type countingDriver struct {
	*recorder
	shapes *int
}

func (d *countingDriver) SetupDrawers(willFill, willStroke bool) (Filler, Stroker) {
	if willFill || willStroke {
		*d.shapes++
	}
	return d.recorder.SetupDrawers(willFill, willStroke)
}

func TestConvertLoader(t *testing.T) {
	loaded := ""
	cv := &Converter{
		NewDriver: func() ContentDriver { return &recorder{} },
		Loader: func(name string) ([]byte, error) {
			loaded = name
			return []byte{0x89, 'P', 'N', 'G'}, nil
		},
	}
	_, err := cv.Convert(`<svg viewBox="0 0 10 10">
		<image width="5" height="5" href="pic.png"/>
	</svg>`, Options{})
	require.NoError(t, err)
	require.Equal(t, "pic.png", loaded)
}
