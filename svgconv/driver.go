package svgconv

import (
	"golang.org/x/image/math/fixed"

	"github.com/tecnickcom/tc-lib-pdf-svg/svgpath"
)

// Given a parsed SVG document, implements how to
// draw it on an output device.
// This requires a driver implementing the actual draw operations,
// such as a content-stream writer, a direct PDF page or a rasterizer.

// Drawer receives one shape's path and paints it.
// Transformation matrices are already applied to the points
// before sending them, see svgpath.Drawer.
type Drawer interface {
	svgpath.Drawer

	// Clear must reset the internal state (used before starting a new path painting)
	Clear()

	// SetColor sets the paint for the current path
	SetColor(pattern svgpath.Pattern, opacity float64)

	// Draw paints the accumulated path using the current settings
	Draw()
}

// Filler fills the interior of paths.
type Filler interface {
	Drawer

	// Decide to use or not the NonZeroWinding rule for the current path
	SetWinding(useNonZeroWinding bool)
}

// Stroker paints the outline of paths.
type Stroker interface {
	Drawer

	// Parametrize the stroking style for the current path
	SetStrokeOptions(options StrokeOptions)
}

// Anchor places a text run relative to its position.
type Anchor uint8

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

// TextRun is the accumulated character data of a text element,
// handed to the driver at the closing tag. Position and size are
// already transformed into device space.
type TextRun struct {
	Text       string
	X, Y       float64
	Anchor     Anchor
	RTL        bool
	FontFamily string
	FontSize   float64
	Fill       svgpath.Pattern
	Opacity    float64
}

// Image is a raster asset placed by an <image> element.
// Data holds the raw (possibly base64-decoded) bytes.
type Image struct {
	Data       []byte
	MimeType   string
	X, Y, W, H float64
	Transform  svgpath.Matrix2D
}

// Driver knows how to do the actual draw operations
// but doesn't need any SVG knowledge.
type Driver interface {
	// SetupDrawers returns the backend painters, and
	// will be called at the beginning of every shape.
	// If the `willXXX` boolean is false, the returned drawer should be nil
	// to avoid useless operations.
	// When both booleans are true, one can assume that the exact same draw operations
	// will be performed on the Filler first and then on the Stroker.
	SetupDrawers(willFill, willStroke bool) (Filler, Stroker)

	// PushState saves the graphics state; every call has a
	// matching PopState at the closing tag of the element.
	PushState()
	PopState()

	// SetAlpha requests a group alpha for the following paint operations.
	SetAlpha(opacity float64)

	// SetClip intersects the clip region with the path, pre-transformed
	// by M, using the non-zero winding rule. No paint is emitted.
	SetClip(clip svgpath.Path, m svgpath.Matrix2D)

	// DrawText lays out and paints one text run.
	DrawText(run TextRun)

	// DrawImage embeds a raster asset.
	DrawImage(img Image) error
}

// ContentDriver is a Driver accumulating page-description
// operator text, read back when rendering a converted document.
type ContentDriver interface {
	Driver

	// Content returns the accumulated operator text.
	Content() string
}

// DashOptions is the dash pattern of a stroke.
type DashOptions struct {
	Dash       []float64 // values for the dash pattern (nil or an empty slice for no dashes)
	DashOffset float64   // starting offset into the dash array
}

// JoinMode type to specify how segments join.
type JoinMode uint8

// JoinMode constants determine how stroke segments bridge the gap at a join
// ArcClip mode is like MiterClip applied to arcs, and is not part of the SVG2.0
// standard.
const (
	Arc JoinMode = iota // New in SVG2
	Round
	Bevel
	Miter
	MiterClip // New in SVG2
	ArcClip   // Like MiterClip applied to arcs, and is not part of the SVG2.0 standard.
)

func (s JoinMode) String() string {
	switch s {
	case Round:
		return "Round"
	case Bevel:
		return "Bevel"
	case Miter:
		return "Miter"
	case MiterClip:
		return "MiterClip"
	case Arc:
		return "Arc"
	case ArcClip:
		return "ArcClip"
	default:
		return "<unknown JoinMode>"
	}
}

// CapMode defines how to draw caps on the ends of lines
type CapMode uint8

const (
	NilCap CapMode = iota // default value
	ButtCap
	SquareCap
	RoundCap
	CubicCap     // Not part of the SVG2.0 standard.
	QuadraticCap // Not part of the SVG2.0 standard.
)

func (c CapMode) String() string {
	switch c {
	case NilCap:
		return "NilCap"
	case ButtCap:
		return "ButtCap"
	case SquareCap:
		return "SquareCap"
	case RoundCap:
		return "RoundCap"
	case CubicCap:
		return "CubicCap"
	case QuadraticCap:
		return "QuadraticCap"
	default:
		return "<unknown CapMode>"
	}
}

// GapMode defines how to bridge gaps when the miter limit is exceeded,
// and is not part of the SVG2.0 standard.
type GapMode uint8

const (
	NilGap GapMode = iota
	FlatGap
	RoundGap
	CubicGap
	QuadraticGap
)

func (g GapMode) String() string {
	switch g {
	case NilGap:
		return "NilGap"
	case FlatGap:
		return "FlatGap"
	case RoundGap:
		return "RoundGap"
	case CubicGap:
		return "CubicGap"
	case QuadraticGap:
		return "QuadraticGap"
	default:
		return "<unknown GapMode>"
	}
}

// JoinOptions bundles the segment joining parameters of a stroke.
type JoinOptions struct {
	MiterLimit   fixed.Int26_6 // the miter cutoff value for miter, arc, miterclip and arcClip joinModes
	LineJoin     JoinMode      // JoinMode for curve segments
	TrailLineCap CapMode       // capping function for the trailing line end

	LeadLineCap CapMode // not part of the standard specification
	LineGap     GapMode // not part of the standard specification. determines how a gap on the convex side of two lines joining is filled
}

// StrokeOptions bundles every stroking parameter of a shape.
type StrokeOptions struct {
	LineWidth fixed.Int26_6 // width of the line
	Join      JoinOptions
	Dash      DashOptions
}

func fToFixed(f float64) fixed.Int26_6 { return fixed.Int26_6(f * 64) }
