package viz

import (
	"context"
	"time"

	"github.com/nwsirlp/skillgraph/pkg/common"
	"github.com/nwsirlp/skillgraph/pkg/logger"
)

// minFrameInterval caps the effective frame rate at roughly 60 fps; frames
// scheduled faster than this are skipped without cancelling the loop.
const minFrameInterval = 16 * time.Millisecond

// FetchFunc loads the full node/edge data set for the visualizer.
type FetchFunc func(ctx context.Context) ([]common.Employee, []common.Skill, []common.SkillPossession, error)

// View ties the simulator, renderer and camera together and owns the
// interaction state (selection, drag, simulation toggle, frame pacing).
// It is single-threaded by design: the host drives it from one cooperative
// loop, and graph swaps happen wholesale between frames.
type View struct {
	width, height float64

	graph    *Graph
	sim      *Simulator
	renderer *Renderer
	cam      Camera

	selected int
	dragged  int

	simEnabled bool
	lastFrame  time.Time
}

// NewView creates a view over an empty graph.
func NewView(width, height float64, cfg SimConfig) *View {
	return &View{
		width:      width,
		height:     height,
		graph:      NewGraph(),
		sim:        NewSimulator(width, height, cfg),
		renderer:   NewRenderer(width, height),
		cam:        NewCamera(),
		selected:   -1,
		dragged:    -1,
		simEnabled: true,
	}
}

// Graph returns the current graph. Callers must not mutate it incrementally;
// replace it through SetGraph.
func (v *View) Graph() *Graph {
	return v.graph
}

// SetGraph swaps in a freshly built graph as a whole and drops any
// selection or drag that referenced the old arena.
func (v *View) SetGraph(g *Graph) {
	if g == nil {
		g = NewGraph()
	}
	v.graph = g
	v.selected = -1
	v.dragged = -1
}

// Load performs the one-shot data fetch. A failed fetch is logged and leaves
// an empty graph; the render loop keeps running and a page reload retries.
func (v *View) Load(ctx context.Context, fetch FetchFunc) {
	employees, skills, possessions, err := fetch(ctx)
	if err != nil {
		logger.Error("[Viz] Failed to load graph data, rendering empty graph", "err", err)
		v.SetGraph(NewGraph())
		return
	}
	v.SetGraph(BuildGraph(employees, skills, possessions, v.width, v.height))
}

// Frame runs at most one simulate+render pass. Calls arriving within the
// frame interval of the previously executed frame are skipped and report
// false; the caller keeps scheduling regardless. Rendering happens even
// while the simulation is paused.
func (v *View) Frame(cv Canvas, now time.Time) bool {
	if now.Sub(v.lastFrame) < minFrameInterval {
		return false
	}
	v.lastFrame = now

	if v.simEnabled {
		v.sim.Step(v.graph)
	}
	v.renderer.Render(cv, v.graph, v.cam, v.selected)
	return true
}

// RunLoop drives Frame from a host frame clock until the context is
// cancelled or the clock closes. This is the cooperative loop of the
// visualizer; teardown happens by cancelling ctx.
func (v *View) RunLoop(ctx context.Context, cv Canvas, frames <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case now, ok := <-frames:
			if !ok {
				return
			}
			v.Frame(cv, now)
		}
	}
}

// PointerDown hit-tests the graph at screen coordinates. A hit selects the
// node and starts a drag; a miss clears the selection. Nodes drawn later
// sit on top, so the topmost hit wins.
func (v *View) PointerDown(sx, sy float64) {
	wx, wy := v.cam.ScreenToWorld(sx, sy)

	for i := len(v.graph.Nodes) - 1; i >= 0; i-- {
		node := &v.graph.Nodes[i]
		dx := wx - node.X
		dy := wy - node.Y
		if dx*dx+dy*dy > node.Radius*node.Radius {
			continue
		}

		v.selected = i
		v.dragged = i
		node.Dragged = true
		node.VX, node.VY = 0, 0
		return
	}

	v.selected = -1
}

// PointerMove repositions the dragged node directly; without an active drag
// the gesture is ignored.
func (v *View) PointerMove(sx, sy float64) {
	if v.dragged < 0 || v.dragged >= len(v.graph.Nodes) {
		return
	}
	node := &v.graph.Nodes[v.dragged]
	node.X, node.Y = v.cam.ScreenToWorld(sx, sy)
	node.VX, node.VY = 0, 0
}

// PointerUp ends the drag; the node returns to free simulation.
func (v *View) PointerUp() {
	if v.dragged >= 0 && v.dragged < len(v.graph.Nodes) {
		v.graph.Nodes[v.dragged].Dragged = false
	}
	v.dragged = -1
}

// Selected returns the selected node's arena index, or -1.
func (v *View) Selected() int {
	return v.selected
}

func (v *View) ZoomIn()  { v.cam.ZoomIn() }
func (v *View) ZoomOut() { v.cam.ZoomOut() }

// ResetView restores the identity camera.
func (v *View) ResetView() {
	v.cam.Reset()
}

// Camera returns the current view transform.
func (v *View) Camera() Camera {
	return v.cam
}

// ToggleSimulation flips the physics on or off. Rendering continues either
// way.
func (v *View) ToggleSimulation() bool {
	v.simEnabled = !v.simEnabled
	return v.simEnabled
}

// Snapshot settles a freshly built graph for the given number of ticks and
// renders one frame to an SVG document. It powers the server-side snapshot
// endpoint.
func Snapshot(g *Graph, cfg SimConfig, width, height float64, ticks int) string {
	sim := NewSimulator(width, height, cfg)
	for range ticks {
		sim.Step(g)
	}

	cv := NewSVGCanvas()
	NewRenderer(width, height).Render(cv, g, NewCamera(), -1)
	return cv.Document()
}
