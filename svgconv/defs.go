package svgconv

import (
	"encoding/xml"
	"strings"

	"github.com/tecnickcom/tc-lib-pdf-svg/svgpath"
)

// Capture of reusable content: <defs> subtrees replayed by <use>,
// and <clipPath> shapes replayed before painting.

// Attribute is one element attribute, with the namespace prefix
// already dropped (xlink:href reads as href).
type Attribute struct {
	Name  string
	Value string
}

func toAttributes(attrs []xml.Attr) []Attribute {
	out := make([]Attribute, len(attrs))
	for i, a := range attrs {
		out[i] = Attribute{Name: a.Name.Local, Value: a.Value}
	}
	return out
}

func attrValue(attrs []Attribute, name string) string {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// definition is one captured element of a def tag. A subtree is a
// flat list of definitions; every captured start tag is matched by a
// closing marker carrying the character data accumulated inside the
// element, so a definition is literal markup replayed later.
type definition struct {
	ID, Tag string
	Attrs   []Attribute
	Closing bool
	Text    string
}

// clipShape is one shape of a clipPath element, with the transform
// accumulated inside the clipPath. The matrix is relative to the
// clipPath element, composed with the referencing element's
// transform when replayed.
type clipShape struct {
	path   svgpath.Path
	matrix svgpath.Matrix2D
}

// hrefID extracts the fragment id of a local reference.
func hrefID(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "#") {
		return "", false
	}
	return v[1:], len(v) > 1
}
