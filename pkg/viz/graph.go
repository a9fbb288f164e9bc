package viz

import (
	"math"

	"github.com/nwsirlp/skillgraph/pkg/common"
)

// NodeKind discriminates the two node types of the skill graph.
type NodeKind string

const (
	NodeEmployee NodeKind = "employee"
	NodeSkill    NodeKind = "skill"
)

const (
	employeeRadius = 26
	skillRadius    = 19
)

// Node is the ephemeral visualization state of one employee or skill. Nodes
// live in the Graph arena and are addressed by index, never by pointer, so a
// wholesale graph swap cannot leave anything dangling.
type Node struct {
	RefID    string
	Label    string
	Kind     NodeKind
	Category string

	X, Y   float64
	VX, VY float64
	Radius float64

	// Dragged nodes are position-owned by the pointer: forces and
	// integration skip them, but they still repel others and anchor edges.
	Dragged bool
}

// Edge connects two arena indices and carries the proficiency of the
// underlying possession, which drives both spring length and render weight.
type Edge struct {
	Source      int
	Target      int
	Proficiency int
}

// Graph is the node arena plus the edges between indices. It is rebuilt from
// store data as a whole; the simulation and renderer only ever observe a
// fully built graph.
type Graph struct {
	Nodes []Node
	Edges []Edge

	index map[string]int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[string]int)}
}

// NodeIndex resolves an employee or skill id to its arena index.
func (g *Graph) NodeIndex(refID string) (int, bool) {
	i, ok := g.index[refID]
	return i, ok
}

// BuildGraph creates a fresh arena from store data. Nodes are scattered
// deterministically on a golden-angle spiral around the viewport center so
// the simulation starts from a spread-out, reproducible state. Possessions
// whose employee or skill is missing from the node set are dropped silently;
// they simply reflect a fetch that raced a deletion.
func BuildGraph(
	employees []common.Employee,
	skills []common.Skill,
	possessions []common.SkillPossession,
	width, height float64,
) *Graph {
	g := NewGraph()
	total := len(employees) + len(skills)
	if total == 0 {
		return g
	}

	place := func(i int) (float64, float64) {
		// Golden angle keeps neighbors apart without randomness.
		angle := float64(i) * 2.39996322972865332
		spread := 0.35 * math.Min(width, height) * math.Sqrt(float64(i+1)/float64(total))
		return width/2 + spread*math.Cos(angle), height/2 + spread*math.Sin(angle)
	}

	for _, employee := range employees {
		x, y := place(len(g.Nodes))
		g.index[employee.ID] = len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{
			RefID:    employee.ID,
			Label:    employee.Name,
			Kind:     NodeEmployee,
			Category: employee.Department,
			X:        x,
			Y:        y,
			Radius:   employeeRadius,
		})
	}
	for _, skill := range skills {
		x, y := place(len(g.Nodes))
		g.index[skill.ID] = len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{
			RefID:    skill.ID,
			Label:    skill.Name,
			Kind:     NodeSkill,
			Category: skill.Category,
			X:        x,
			Y:        y,
			Radius:   skillRadius,
		})
	}

	for _, possession := range possessions {
		source, ok := g.index[possession.EmployeeID]
		if !ok {
			continue
		}
		target, ok := g.index[possession.SkillID]
		if !ok {
			continue
		}
		g.Edges = append(g.Edges, Edge{
			Source:      source,
			Target:      target,
			Proficiency: possession.Proficiency,
		})
	}

	return g
}
