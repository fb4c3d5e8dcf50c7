package svgconv

import (
	"encoding/xml"
	"errors"
	"fmt"
	"log"
)

// Terminal errors reported to the caller. Anything else degrades to a
// documented default so partially non-conformant documents still render.
var (
	// ErrInvalidInput means the source carried no usable byte content.
	ErrInvalidInput = errors.New("svg: no usable input content")

	// ErrInvalidGeometry means the resolved target size is not positive.
	ErrInvalidGeometry = errors.New("svg: non-positive target size")

	// ErrUnknownHandle means Render was called with a handle
	// that was never produced by Convert.
	ErrUnknownHandle = errors.New("svg: unknown conversion handle")
)

// MalformedDocumentError aborts the whole conversion: the markup
// is not well formed. Line is the position reported by the decoder.
type MalformedDocumentError struct {
	Line int
	Err  error
}

func (e MalformedDocumentError) Error() string {
	return fmt.Sprintf("svg: malformed document at line %d: %s", e.Line, e.Err)
}

func (e MalformedDocumentError) Unwrap() error { return e.Err }

// malformed wraps a decoder error, keeping the line number when available.
func malformed(err error) error {
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		return MalformedDocumentError{Line: syn.Line, Err: err}
	}
	return MalformedDocumentError{Err: err}
}

// internal parse sentinels
var (
	errParamMismatch = errors.New("param mismatch")
	errZeroLengthID  = errors.New("zero length id")
)

// ErrorMode defines how non-fatal irregularities
// (unknown elements, unresolved references) are reported.
type ErrorMode uint8

const (
	// IgnoreErrorMode skips unhandled elements silently.
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode logs unhandled elements.
	WarnErrorMode
	// StrictErrorMode errors out on unhandled elements.
	StrictErrorMode
)

func (e ErrorMode) handle(msg string) error {
	switch e {
	case StrictErrorMode:
		return errors.New(msg)
	case WarnErrorMode:
		log.Println(msg)
	}
	return nil
}
