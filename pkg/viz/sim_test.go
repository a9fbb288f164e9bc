package viz

import (
	"math"
	"testing"
)

// bareConfig disables gravity so individual forces can be observed in
// isolation; boundary, damping and speed clamp keep their defaults.
func bareConfig() SimConfig {
	cfg := DefaultSimConfig()
	cfg.CenterGravity = 0
	return cfg
}

func TestZeroEdgeSystemSettlesInsideBounds(t *testing.T) {
	const width, height = 800.0, 600.0
	cfg := DefaultSimConfig()

	g := &Graph{Nodes: []Node{
		{RefID: "a", Kind: NodeEmployee, Radius: 20, X: -250, Y: -100},
		{RefID: "b", Kind: NodeEmployee, Radius: 20, X: 1400, Y: 900},
		{RefID: "c", Kind: NodeSkill, Radius: 15, X: 400, Y: -500},
	}}

	sim := NewSimulator(width, height, cfg)
	for range 300 {
		sim.Step(g)
	}

	for i, node := range g.Nodes {
		if node.X < cfg.BoundaryMargin || node.X > width-cfg.BoundaryMargin ||
			node.Y < cfg.BoundaryMargin || node.Y > height-cfg.BoundaryMargin {
			t.Errorf("node %d settled at (%v, %v), outside the margin box", i, node.X, node.Y)
		}
	}
}

func TestBoundaryClampRepositionsAndFlipsVelocity(t *testing.T) {
	cfg := bareConfig()
	sim := NewSimulator(800, 600, cfg)

	// Single node heading left past the margin; no other forces act on it.
	g := &Graph{Nodes: []Node{
		{RefID: "a", Kind: NodeEmployee, Radius: 20, X: cfg.BoundaryMargin + 0.5, Y: 300, VX: -5},
	}}

	sim.Step(g)

	node := g.Nodes[0]
	if node.X != cfg.BoundaryMargin {
		t.Errorf("node.X = %v, want exactly %v", node.X, cfg.BoundaryMargin)
	}
	// Velocity before the clamp is -5 · damping; the bounce flips the sign
	// and attenuates.
	wantVX := 5 * cfg.Damping * cfg.BounceAttenuation
	if math.Abs(node.VX-wantVX) > 1e-9 {
		t.Errorf("node.VX = %v, want %v (flipped and attenuated)", node.VX, wantVX)
	}
}

func TestDraggedNodeNeverMovesUnderForces(t *testing.T) {
	cfg := DefaultSimConfig()
	sim := NewSimulator(800, 600, cfg)

	g := &Graph{
		Nodes: []Node{
			{RefID: "held", Kind: NodeEmployee, Radius: 20, X: 200, Y: 200, Dragged: true},
			{RefID: "free", Kind: NodeEmployee, Radius: 20, X: 210, Y: 205},
		},
		Edges: []Edge{{Source: 0, Target: 1, Proficiency: 5}},
	}

	for range 50 {
		sim.Step(g)
	}

	held := g.Nodes[0]
	if held.X != 200 || held.Y != 200 {
		t.Errorf("dragged node moved to (%v, %v), want (200, 200)", held.X, held.Y)
	}
	if held.VX != 0 || held.VY != 0 {
		t.Errorf("dragged node gained velocity (%v, %v)", held.VX, held.VY)
	}

	// The free node must still have been pushed away by the held one.
	free := g.Nodes[1]
	if free.X == 210 && free.Y == 205 {
		t.Error("free node did not move; dragged node should still repel it")
	}
}

func TestSameKindRepulsionStrongerThanCrossKind(t *testing.T) {
	cfg := bareConfig()
	sim := NewSimulator(2000, 2000, cfg)

	separation := func(a, b NodeKind) float64 {
		g := &Graph{Nodes: []Node{
			{RefID: "a", Kind: a, Radius: 20, X: 960, Y: 1000},
			{RefID: "b", Kind: b, Radius: 20, X: 1040, Y: 1000},
		}}
		sim.Step(g)
		return math.Abs(g.Nodes[1].X - g.Nodes[0].X)
	}

	same := separation(NodeEmployee, NodeEmployee)
	cross := separation(NodeEmployee, NodeSkill)
	if same <= cross {
		t.Errorf("same-kind separation %v <= cross-kind %v; same-kind pairs must repel harder", same, cross)
	}
}

func TestHigherProficiencyPullsPairCloser(t *testing.T) {
	cfg := bareConfig()
	sim := NewSimulator(2000, 2000, cfg)

	settledDistance := func(proficiency int) float64 {
		g := &Graph{
			Nodes: []Node{
				{RefID: "emp", Kind: NodeEmployee, Radius: 20, X: 900, Y: 1000},
				{RefID: "skl", Kind: NodeSkill, Radius: 15, X: 1100, Y: 1000},
			},
			Edges: []Edge{{Source: 0, Target: 1, Proficiency: proficiency}},
		}
		for range 600 {
			sim.Step(g)
		}
		return math.Hypot(g.Nodes[1].X-g.Nodes[0].X, g.Nodes[1].Y-g.Nodes[0].Y)
	}

	weak := settledDistance(1)
	strong := settledDistance(5)
	if strong >= weak {
		t.Errorf("proficiency 5 settled at %v, proficiency 1 at %v; higher proficiency must sit closer", strong, weak)
	}
}

func TestStepOnEmptyGraphIsNoOp(t *testing.T) {
	sim := NewSimulator(800, 600, DefaultSimConfig())
	g := NewGraph()
	sim.Step(g)
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Error("Step on an empty graph mutated it")
	}
}
