package viz

import (
	"math"
	"testing"
)

func TestZoomSaturates(t *testing.T) {
	cam := NewCamera()
	for range 10 {
		cam.ZoomIn()
	}
	if cam.Zoom != maxZoom {
		t.Errorf("after 10 ZoomIn calls Zoom = %v, want %v", cam.Zoom, maxZoom)
	}

	for range 10 {
		cam.ZoomOut()
	}
	if cam.Zoom != minZoom {
		t.Errorf("after 10 ZoomOut calls Zoom = %v, want %v", cam.Zoom, minZoom)
	}
}

func TestScreenWorldRoundTrip(t *testing.T) {
	cam := NewCamera()
	cam.ZoomIn()
	cam.Pan(37, -12)

	wx, wy := cam.ScreenToWorld(420, 315)
	sx, sy := cam.WorldToScreen(wx, wy)
	if math.Abs(sx-420) > 1e-9 || math.Abs(sy-315) > 1e-9 {
		t.Errorf("round trip = (%v, %v), want (420, 315)", sx, sy)
	}
}

func TestCameraReset(t *testing.T) {
	cam := NewCamera()
	cam.ZoomIn()
	cam.Pan(100, 50)

	cam.Reset()
	if cam.Zoom != 1 || cam.PanX != 0 || cam.PanY != 0 {
		t.Errorf("Reset left camera at zoom %v pan (%v, %v), want identity", cam.Zoom, cam.PanX, cam.PanY)
	}
}
