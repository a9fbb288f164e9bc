package viz

import (
	"fmt"
	"strconv"
)

const (
	employeeFill     = "#2563eb"
	employeeGradient = "#93c5fd"
	skillFill        = "#059669"
	skillGradient    = "#6ee7b7"

	edgeColor      = "#94a3b8"
	edgeLabelColor = "#64748b"

	selectionRing = "#f59e0b"
	selectionFill = "#fbbf24"

	labelColor  = "#f8fafc"
	legendColor = "#475569"

	// Labels are truncated to keep text inside the circle; employee circles
	// are larger, so their labels get more room.
	employeeLabelMax = 12
	skillLabelMax    = 9
)

// Renderer draws a Graph onto a Canvas through a Camera. It holds no state
// between frames; every frame is a full repaint.
type Renderer struct {
	Width  float64
	Height float64
}

// NewRenderer creates a renderer for a viewport of the given pixel size.
func NewRenderer(width, height float64) *Renderer {
	return &Renderer{Width: width, Height: height}
}

// Render paints one frame: clear, one shared view transform, edges under
// nodes, then the untransformed legend and counts. selected is the arena
// index of the highlighted node, or -1.
func (r *Renderer) Render(cv Canvas, g *Graph, cam Camera, selected int) {
	cv.Clear(r.Width, r.Height)
	cv.SetTransform(cam.Zoom, cam.PanX, cam.PanY)

	for _, edge := range g.Edges {
		r.renderEdge(cv, g, edge)
	}
	for i := range g.Nodes {
		r.renderNode(cv, &g.Nodes[i], i == selected)
	}

	cv.ResetTransform()
	r.renderLegend(cv, len(g.Nodes), len(g.Edges))
}

// renderEdge draws the connection line, weighted by proficiency, with the
// proficiency value as a label at the midpoint.
func (r *Renderer) renderEdge(cv Canvas, g *Graph, edge Edge) {
	source := &g.Nodes[edge.Source]
	target := &g.Nodes[edge.Target]

	proficiency := float64(edge.Proficiency)
	cv.Line(source.X, source.Y, target.X, target.Y, LineStyle{
		Color:   edgeColor,
		Width:   0.5 + proficiency*0.5,
		Opacity: 0.2 + proficiency*0.12,
	})

	cv.Text(strconv.Itoa(edge.Proficiency),
		(source.X+target.X)/2,
		(source.Y+target.Y)/2,
		TextStyle{Color: edgeLabelColor, Size: 10},
	)
}

func (r *Renderer) renderNode(cv Canvas, node *Node, selected bool) {
	fill, gradient := skillFill, skillGradient
	labelMax := skillLabelMax
	if node.Kind == NodeEmployee {
		fill, gradient = employeeFill, employeeGradient
		labelMax = employeeLabelMax
	}

	if selected {
		// Highlight ring outside the node, then a solid highlight fill.
		cv.Circle(node.X, node.Y, node.Radius+5, CircleStyle{
			Stroke:      selectionRing,
			StrokeWidth: 3,
		})
		fill, gradient = selectionFill, selectionFill
	}

	cv.Circle(node.X, node.Y, node.Radius, CircleStyle{
		Fill:           fill,
		GradientCenter: gradient,
		Shadow:         true,
	})

	cv.Text(truncateLabel(node.Label, labelMax), node.X, node.Y, TextStyle{
		Color: labelColor,
		Size:  11,
		Bold:  node.Kind == NodeEmployee,
	})
}

// renderLegend draws the fixed-position legend and the node/edge readout in
// screen coordinates, unaffected by pan and zoom.
func (r *Renderer) renderLegend(cv Canvas, nodeCount, edgeCount int) {
	cv.Circle(20, 24, 7, CircleStyle{Fill: employeeFill})
	cv.Text("Employees", 70, 24, TextStyle{Color: legendColor, Size: 12})
	cv.Circle(20, 46, 7, CircleStyle{Fill: skillFill})
	cv.Text("Skills", 58, 46, TextStyle{Color: legendColor, Size: 12})

	cv.Text(
		fmt.Sprintf("%d nodes · %d edges", nodeCount, edgeCount),
		70, r.Height-18,
		TextStyle{Color: legendColor, Size: 12},
	)
}

func truncateLabel(label string, maxRunes int) string {
	runes := []rune(label)
	if len(runes) <= maxRunes {
		return label
	}
	return string(runes[:maxRunes-1]) + "…"
}
