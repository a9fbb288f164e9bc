package viz

import (
	"reflect"
	"testing"

	"github.com/nwsirlp/skillgraph/pkg/common"
)

func testGraphData() ([]common.Employee, []common.Skill, []common.SkillPossession) {
	employees := []common.Employee{
		{ID: "emp_1", Name: "Ada", Department: "Engineering"},
		{ID: "emp_2", Name: "Ben", Department: "Design"},
	}
	skills := []common.Skill{
		{ID: "skl_go", Name: "Go", Category: "Programming"},
	}
	possessions := []common.SkillPossession{
		{EmployeeID: "emp_1", SkillID: "skl_go", Proficiency: 4},
		// Dangling on both ends; dropped silently.
		{EmployeeID: "emp_gone", SkillID: "skl_go", Proficiency: 2},
		{EmployeeID: "emp_1", SkillID: "skl_gone", Proficiency: 3},
	}
	return employees, skills, possessions
}

func TestBuildGraphDropsDanglingEdges(t *testing.T) {
	employees, skills, possessions := testGraphData()
	g := BuildGraph(employees, skills, possessions, 800, 600)

	if len(g.Nodes) != 3 {
		t.Fatalf("BuildGraph created %d nodes, want 3", len(g.Nodes))
	}
	if len(g.Edges) != 1 {
		t.Fatalf("BuildGraph kept %d edges, want 1 (dangling edges dropped)", len(g.Edges))
	}

	edge := g.Edges[0]
	if g.Nodes[edge.Source].RefID != "emp_1" || g.Nodes[edge.Target].RefID != "skl_go" {
		t.Errorf("edge connects %s -> %s, want emp_1 -> skl_go",
			g.Nodes[edge.Source].RefID, g.Nodes[edge.Target].RefID)
	}
	if edge.Proficiency != 4 {
		t.Errorf("edge proficiency = %d, want 4", edge.Proficiency)
	}
}

func TestBuildGraphNodeKinds(t *testing.T) {
	employees, skills, possessions := testGraphData()
	g := BuildGraph(employees, skills, possessions, 800, 600)

	i, ok := g.NodeIndex("emp_2")
	if !ok {
		t.Fatal("NodeIndex(emp_2) not found")
	}
	if g.Nodes[i].Kind != NodeEmployee {
		t.Errorf("emp_2 kind = %s, want employee", g.Nodes[i].Kind)
	}

	i, ok = g.NodeIndex("skl_go")
	if !ok {
		t.Fatal("NodeIndex(skl_go) not found")
	}
	if g.Nodes[i].Kind != NodeSkill {
		t.Errorf("skl_go kind = %s, want skill", g.Nodes[i].Kind)
	}
}

func TestBuildGraphIsDeterministic(t *testing.T) {
	employees, skills, possessions := testGraphData()

	first := BuildGraph(employees, skills, possessions, 800, 600)
	second := BuildGraph(employees, skills, possessions, 800, 600)

	if !reflect.DeepEqual(first.Nodes, second.Nodes) {
		t.Error("two builds from identical data produced different node layouts")
	}
}

func TestBuildGraphEmpty(t *testing.T) {
	g := BuildGraph(nil, nil, nil, 800, 600)
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Errorf("BuildGraph(nil, nil, nil) = %d nodes / %d edges, want empty", len(g.Nodes), len(g.Edges))
	}
}
