package viz

// LineStyle styles a stroked line.
type LineStyle struct {
	Color   string
	Width   float64
	Opacity float64
}

// CircleStyle styles a filled circle. GradientCenter, when set, asks for a
// radial gradient from that color at the center to Fill at the rim. Shadow
// asks for a drop shadow under the shape.
type CircleStyle struct {
	Fill           string
	GradientCenter string
	Stroke         string
	StrokeWidth    float64
	Shadow         bool
}

// TextStyle styles a text run centered on its anchor point.
type TextStyle struct {
	Color string
	Size  float64
	Bold  bool
}

// Canvas is the primitive draw surface the renderer targets: an immediate-
// mode 2D context with a single settable affine transform and three shape
// primitives. Implementations exist for SVG output (server-side snapshots)
// and for recording draw ops in tests; the browser canvas is the production
// surface behind the same contract.
type Canvas interface {
	// Clear wipes the full surface and resets any transform.
	Clear(width, height float64)

	// SetTransform installs scale-then-translate for subsequent calls;
	// ResetTransform restores screen coordinates.
	SetTransform(scale, offsetX, offsetY float64)
	ResetTransform()

	Line(x1, y1, x2, y2 float64, style LineStyle)
	Circle(x, y, radius float64, style CircleStyle)

	// Text draws a run centered horizontally and vertically on (x, y).
	Text(text string, x, y float64, style TextStyle)
}
