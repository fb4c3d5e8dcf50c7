package svgconv

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/tecnickcom/tc-lib-pdf-svg/svgpath"
)

// Draw parses one document from stream and paints it on driver,
// without going through a conversion handle. A zero opts places the
// document at the origin with its intrinsic size.
func Draw(stream io.Reader, driver Driver, opts Options, mode ErrorMode) error {
	cur := newDocCursor(newDocContext(), driver, mode)
	cur.targetX, cur.targetY = opts.X, opts.Y
	cur.targetW, cur.targetH = opts.Width, opts.Height
	return cur.run(stream)
}

// Converter turns SVG sources into driver content, one handle per
// converted document. It is safe for concurrent use.
type Converter struct {
	// NewDriver returns the content sink of one document.
	NewDriver func() ContentDriver

	// Loader fetches external assets referenced by the document.
	// Nil disables external references.
	Loader func(name string) ([]byte, error)

	// ErrorMode selects how non-conformant content is reported.
	ErrorMode ErrorMode

	mu          sync.Mutex
	nextHandle  Handle
	conversions map[Handle]*conversion
}

// Handle identifies one converted document.
type Handle uint32

// Options places the document on the target surface.
// A zero Width or Height falls back to the intrinsic size.
type Options struct {
	X, Y          float64
	Width, Height float64
}

// DocInfo is the metadata of a converted document.
type DocInfo struct {
	ViewBox       svgpath.Bounds
	Width, Height float64 // resolved size on the target surface
	Titles        []string
	Descriptions  []string
}

type conversion struct {
	driver   ContentDriver
	info     DocInfo
	children []Handle
}

// Convert parses and paints one document, returning the handle to
// read it back with Render. The source may be a file path, raw
// markup (leading '<'), markup behind a literal '@' marker, or a
// data: URI.
func (cv *Converter) Convert(source string, opts Options) (Handle, error) {
	data, err := resolveSource(source)
	if err != nil {
		return 0, err
	}
	return cv.convert(data, opts, 0)
}

func (cv *Converter) convert(data []byte, opts Options, depth int) (Handle, error) {
	if depth >= maxRefDepth {
		return 0, fmt.Errorf("%w: document nesting too deep", ErrInvalidInput)
	}
	driver := cv.NewDriver()
	ctx := newDocContext()
	cur := newDocCursor(ctx, driver, cv.ErrorMode)
	cur.loader = cv.Loader
	cur.targetX, cur.targetY = opts.X, opts.Y
	cur.targetW, cur.targetH = opts.Width, opts.Height

	conv := &conversion{driver: driver}
	cur.embedSVG = func(data []byte, opts Options) error {
		child, err := cv.convert(data, opts, depth+1)
		if err != nil {
			return err
		}
		conv.children = append(conv.children, child)
		return nil
	}

	if err := cur.run(bytes.NewReader(data)); err != nil {
		return 0, err
	}

	w, h := opts.Width, opts.Height
	if w == 0 {
		w = ctx.width
	}
	if h == 0 {
		h = ctx.height
	}
	conv.info = DocInfo{
		ViewBox:      ctx.viewBox,
		Width:        w,
		Height:       h,
		Titles:       ctx.titles,
		Descriptions: ctx.descriptions,
	}

	cv.mu.Lock()
	defer cv.mu.Unlock()
	if cv.conversions == nil {
		cv.conversions = make(map[Handle]*conversion)
	}
	cv.nextHandle++
	cv.conversions[cv.nextHandle] = conv
	return cv.nextHandle, nil
}

// Render returns the accumulated content of a conversion, with the
// content of embedded documents appended.
func (cv *Converter) Render(h Handle) (string, error) {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	return cv.render(h, 0)
}

func (cv *Converter) render(h Handle, depth int) (string, error) {
	if depth >= maxRefDepth {
		return "", ErrUnknownHandle
	}
	conv, ok := cv.conversions[h]
	if !ok {
		return "", ErrUnknownHandle
	}
	var sb strings.Builder
	sb.WriteString(conv.driver.Content())
	for _, child := range conv.children {
		s, err := cv.render(child, depth+1)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

// Info returns the metadata of a conversion.
func (cv *Converter) Info(h Handle) (DocInfo, error) {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	conv, ok := cv.conversions[h]
	if !ok {
		return DocInfo{}, ErrUnknownHandle
	}
	return conv.info, nil
}

// Release drops a conversion and its embedded documents.
func (cv *Converter) Release(h Handle) {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	cv.release(h, 0)
}

func (cv *Converter) release(h Handle, depth int) {
	if depth >= maxRefDepth {
		return
	}
	conv, ok := cv.conversions[h]
	if !ok {
		return
	}
	delete(cv.conversions, h)
	for _, child := range conv.children {
		cv.release(child, depth+1)
	}
}

// resolveSource detects the form of an input source and returns the
// document bytes.
func resolveSource(source string) ([]byte, error) {
	trimmed := strings.TrimSpace(source)
	switch {
	case trimmed == "":
		return nil, ErrInvalidInput
	case strings.HasPrefix(source, "data:"):
		meta, payload, ok := strings.Cut(source[len("data:"):], ",")
		if !ok {
			return nil, ErrInvalidInput
		}
		if strings.HasSuffix(meta, ";base64") {
			data, err := base64.StdEncoding.DecodeString(payload)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
			}
			return data, nil
		}
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}
		return []byte(unescaped), nil
	case strings.HasPrefix(source, "@"):
		return []byte(source[1:]), nil
	case strings.HasPrefix(trimmed, "<"):
		return []byte(source), nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	return data, nil
}
