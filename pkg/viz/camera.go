package viz

const (
	zoomFactor = 1.2
	minZoom    = 0.5
	maxZoom    = 3.0
)

// Camera is the affine view transform shared by every draw call:
// screen = world · Zoom + Pan.
type Camera struct {
	Zoom float64
	PanX float64
	PanY float64
}

// NewCamera returns the identity view (zoom 1, pan origin).
func NewCamera() Camera {
	return Camera{Zoom: 1}
}

// ZoomIn multiplies the zoom by the fixed factor, saturating at the maximum.
func (c *Camera) ZoomIn() {
	c.Zoom = min(c.Zoom*zoomFactor, maxZoom)
}

// ZoomOut divides the zoom by the fixed factor, saturating at the minimum.
func (c *Camera) ZoomOut() {
	c.Zoom = max(c.Zoom/zoomFactor, minZoom)
}

// Pan shifts the view by a screen-space delta.
func (c *Camera) Pan(dx, dy float64) {
	c.PanX += dx
	c.PanY += dy
}

// Reset restores zoom 1 and pan origin.
func (c *Camera) Reset() {
	*c = NewCamera()
}

// ScreenToWorld inverts the view transform for pointer coordinates.
func (c Camera) ScreenToWorld(sx, sy float64) (float64, float64) {
	return (sx - c.PanX) / c.Zoom, (sy - c.PanY) / c.Zoom
}

// WorldToScreen applies the view transform.
func (c Camera) WorldToScreen(wx, wy float64) (float64, float64) {
	return wx*c.Zoom + c.PanX, wy*c.Zoom + c.PanY
}
