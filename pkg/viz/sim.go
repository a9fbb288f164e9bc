package viz

import "math"

// SimConfig holds the force rule constants. The defaults reproduce the demo
// layout; the rules themselves (gravity, repulsion, spring attraction,
// boundary bounce) are fixed.
type SimConfig struct {
	// CenterGravity is the constant fraction of the offset to the viewport
	// center applied each tick, preventing drift to infinity.
	CenterGravity float64

	// Repulsion scales the inverse-square push between node pairs.
	// SameKindRepulsion applies instead when both nodes share a kind, so
	// employee and skill clusters spread internally while connected
	// cross-kind pairs may approach.
	Repulsion         float64
	SameKindRepulsion float64

	// SpringStrength scales the pull per unit of deviation from an edge's
	// target length. The target shrinks with proficiency: SpringBaseLength
	// minus SpringLengthStep per proficiency point, so stronger skills sit
	// visually closer to their holder.
	SpringStrength   float64
	SpringBaseLength float64
	SpringLengthStep float64

	// Damping multiplies velocity every tick (< 1); MaxSpeed caps its
	// magnitude so stacked forces cannot oscillate.
	Damping  float64
	MaxSpeed float64

	// BoundaryMargin is the inset from the viewport edges where nodes are
	// clamped; BounceAttenuation scales the reflected velocity component.
	BoundaryMargin    float64
	BounceAttenuation float64
}

// DefaultSimConfig returns the demo layout tuning.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		CenterGravity:     0.01,
		Repulsion:         2000,
		SameKindRepulsion: 4200,
		SpringStrength:    0.005,
		SpringBaseLength:  160,
		SpringLengthStep:  15,
		Damping:           0.85,
		MaxSpeed:          6,
		BoundaryMargin:    30,
		BounceAttenuation: 0.5,
	}
}

// Simulator advances a Graph one tick at a time inside a fixed viewport.
type Simulator struct {
	cfg           SimConfig
	width, height float64
}

// NewSimulator creates a simulator for a viewport of the given pixel size.
func NewSimulator(width, height float64, cfg SimConfig) *Simulator {
	return &Simulator{cfg: cfg, width: width, height: height}
}

// Step runs one simulation tick: force accumulation for free nodes,
// velocity integration with damping and speed clamp, position advance, and
// the soft boundary bounce. Dragged nodes are skipped entirely but still
// act as repulsion sources and edge anchors for everyone else.
func (s *Simulator) Step(g *Graph) {
	n := len(g.Nodes)
	if n == 0 {
		return
	}

	fx := make([]float64, n)
	fy := make([]float64, n)
	centerX, centerY := s.width/2, s.height/2

	for i := range g.Nodes {
		node := &g.Nodes[i]
		if node.Dragged {
			continue
		}

		fx[i] += (centerX - node.X) * s.cfg.CenterGravity
		fy[i] += (centerY - node.Y) * s.cfg.CenterGravity

		for j := range g.Nodes {
			if i == j {
				continue
			}
			other := &g.Nodes[j]

			dx := node.X - other.X
			dy := node.Y - other.Y
			dist := math.Hypot(dx, dy)
			if dist < 1 {
				// Distance floor keeps coincident nodes from producing
				// unbounded force.
				dist = 1
			}

			strength := s.cfg.Repulsion
			if node.Kind == other.Kind {
				strength = s.cfg.SameKindRepulsion
			}
			force := strength / (dist * dist)
			fx[i] += dx / dist * force
			fy[i] += dy / dist * force
		}
	}

	for _, edge := range g.Edges {
		source := &g.Nodes[edge.Source]
		target := &g.Nodes[edge.Target]

		dx := target.X - source.X
		dy := target.Y - source.Y
		dist := math.Hypot(dx, dy)
		if dist < 1 {
			dist = 1
		}

		targetLength := s.cfg.SpringBaseLength - s.cfg.SpringLengthStep*float64(edge.Proficiency)
		force := s.cfg.SpringStrength * (dist - targetLength)
		ux, uy := dx/dist, dy/dist

		if !source.Dragged {
			fx[edge.Source] += ux * force
			fy[edge.Source] += uy * force
		}
		if !target.Dragged {
			fx[edge.Target] -= ux * force
			fy[edge.Target] -= uy * force
		}
	}

	for i := range g.Nodes {
		node := &g.Nodes[i]
		if node.Dragged {
			continue
		}

		node.VX = (node.VX + fx[i]) * s.cfg.Damping
		node.VY = (node.VY + fy[i]) * s.cfg.Damping

		speed := math.Hypot(node.VX, node.VY)
		if speed > s.cfg.MaxSpeed {
			scale := s.cfg.MaxSpeed / speed
			node.VX *= scale
			node.VY *= scale
		}

		node.X += node.VX
		node.Y += node.VY

		s.clampToBounds(node)
	}
}

// clampToBounds repositions a node that crossed the viewport margin back
// onto it and reflects the offending velocity component, attenuated.
func (s *Simulator) clampToBounds(node *Node) {
	margin := s.cfg.BoundaryMargin

	if node.X < margin {
		node.X = margin
		node.VX = -node.VX * s.cfg.BounceAttenuation
	} else if node.X > s.width-margin {
		node.X = s.width - margin
		node.VX = -node.VX * s.cfg.BounceAttenuation
	}

	if node.Y < margin {
		node.Y = margin
		node.VY = -node.VY * s.cfg.BounceAttenuation
	} else if node.Y > s.height-margin {
		node.Y = s.height - margin
		node.VY = -node.VY * s.cfg.BounceAttenuation
	}
}
