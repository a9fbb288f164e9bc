package viz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nwsirlp/skillgraph/pkg/common"
)

// recordingCanvas captures the draw-op stream so tests can assert the
// renderer contract without a real surface.
type recordingCanvas struct {
	ops []recordedOp
}

type recordedOp struct {
	kind   string
	text   string
	x, y   float64
	circle CircleStyle
	line   LineStyle
}

func (c *recordingCanvas) Clear(width, height float64) {
	c.ops = append(c.ops, recordedOp{kind: "clear"})
}

func (c *recordingCanvas) SetTransform(scale, offsetX, offsetY float64) {
	c.ops = append(c.ops, recordedOp{kind: "transform", x: offsetX, y: offsetY, text: fmt.Sprintf("%g", scale)})
}

func (c *recordingCanvas) ResetTransform() {
	c.ops = append(c.ops, recordedOp{kind: "reset"})
}

func (c *recordingCanvas) Line(x1, y1, x2, y2 float64, style LineStyle) {
	c.ops = append(c.ops, recordedOp{kind: "line", x: x1, y: y1, line: style})
}

func (c *recordingCanvas) Circle(x, y, radius float64, style CircleStyle) {
	c.ops = append(c.ops, recordedOp{kind: "circle", x: x, y: y, circle: style})
}

func (c *recordingCanvas) Text(text string, x, y float64, style TextStyle) {
	c.ops = append(c.ops, recordedOp{kind: "text", text: text, x: x, y: y})
}

func (c *recordingCanvas) firstIndex(kind string) int {
	for i, op := range c.ops {
		if op.kind == kind {
			return i
		}
	}
	return -1
}

func renderedGraph() *Graph {
	return BuildGraph(
		[]common.Employee{{ID: "emp_1", Name: "A Very Long Employee Name"}},
		[]common.Skill{{ID: "skl_1", Name: "Knowledge Management"}},
		[]common.SkillPossession{{EmployeeID: "emp_1", SkillID: "skl_1", Proficiency: 3}},
		800, 600,
	)
}

func TestRenderOpOrder(t *testing.T) {
	cv := &recordingCanvas{}
	g := renderedGraph()

	NewRenderer(800, 600).Render(cv, g, NewCamera(), -1)

	if len(cv.ops) == 0 || cv.ops[0].kind != "clear" {
		t.Fatal("first op is not clear")
	}
	if cv.ops[1].kind != "transform" {
		t.Fatalf("second op = %s, want transform", cv.ops[1].kind)
	}

	lineAt := cv.firstIndex("line")
	circleAt := cv.firstIndex("circle")
	if lineAt < 0 || circleAt < 0 {
		t.Fatal("render emitted no edge line or node circle")
	}
	if lineAt > circleAt {
		t.Errorf("edges drawn at op %d after nodes at op %d; edges must be under nodes", lineAt, circleAt)
	}

	resetAt := cv.firstIndex("reset")
	if resetAt < 0 {
		t.Fatal("render never reset the transform")
	}
	for i := resetAt; i < len(cv.ops); i++ {
		if cv.ops[i].kind == "transform" {
			t.Error("legend drawn under a transform; it must stay fixed on screen")
		}
	}
}

func TestRenderCountsReadout(t *testing.T) {
	cv := &recordingCanvas{}
	NewRenderer(800, 600).Render(cv, renderedGraph(), NewCamera(), -1)

	var found bool
	for _, op := range cv.ops {
		if op.kind == "text" && strings.Contains(op.text, "2 nodes") && strings.Contains(op.text, "1 edges") {
			found = true
		}
	}
	if !found {
		t.Error("render did not emit the node/edge count readout")
	}
}

func TestRenderLabelTruncationPerKind(t *testing.T) {
	cv := &recordingCanvas{}
	NewRenderer(800, 600).Render(cv, renderedGraph(), NewCamera(), -1)

	var labels []string
	for _, op := range cv.ops {
		if op.kind == "text" {
			labels = append(labels, op.text)
		}
	}

	wantEmployee := truncateLabel("A Very Long Employee Name", employeeLabelMax)
	wantSkill := truncateLabel("Knowledge Management", skillLabelMax)
	if len([]rune(wantEmployee)) != employeeLabelMax {
		t.Fatalf("employee label %q not truncated to %d runes", wantEmployee, employeeLabelMax)
	}
	if len([]rune(wantSkill)) != skillLabelMax {
		t.Fatalf("skill label %q not truncated to %d runes", wantSkill, skillLabelMax)
	}

	assertLabel := func(want string) {
		t.Helper()
		for _, label := range labels {
			if label == want {
				return
			}
		}
		t.Errorf("label %q not rendered; labels = %v", want, labels)
	}
	assertLabel(wantEmployee)
	assertLabel(wantSkill)
}

func TestRenderEdgeWeightScalesWithProficiency(t *testing.T) {
	render := func(proficiency int) LineStyle {
		cv := &recordingCanvas{}
		g := BuildGraph(
			[]common.Employee{{ID: "emp_1", Name: "E"}},
			[]common.Skill{{ID: "skl_1", Name: "S"}},
			[]common.SkillPossession{{EmployeeID: "emp_1", SkillID: "skl_1", Proficiency: proficiency}},
			800, 600,
		)
		NewRenderer(800, 600).Render(cv, g, NewCamera(), -1)
		return cv.ops[cv.firstIndex("line")].line
	}

	weak := render(1)
	strong := render(5)
	if strong.Width <= weak.Width {
		t.Errorf("edge width %v (p5) <= %v (p1); thickness must grow with proficiency", strong.Width, weak.Width)
	}
	if strong.Opacity <= weak.Opacity {
		t.Errorf("edge opacity %v (p5) <= %v (p1); opacity must grow with proficiency", strong.Opacity, weak.Opacity)
	}
}

func TestRenderSelectionRing(t *testing.T) {
	g := renderedGraph()
	selected, _ := g.NodeIndex("emp_1")

	cv := &recordingCanvas{}
	NewRenderer(800, 600).Render(cv, g, NewCamera(), selected)

	var ringFound bool
	for _, op := range cv.ops {
		if op.kind == "circle" && op.circle.Stroke == selectionRing {
			ringFound = true
		}
	}
	if !ringFound {
		t.Error("selected node rendered without a highlight ring")
	}
}

func TestSVGSnapshotDocument(t *testing.T) {
	doc := Snapshot(renderedGraph(), DefaultSimConfig(), 800, 600, 50)

	for _, want := range []string{"<svg", "</svg>", "<circle", "<line", "radialGradient", "2 nodes"} {
		if !strings.Contains(doc, want) {
			t.Errorf("snapshot SVG missing %q", want)
		}
	}
	if strings.Count(doc, "</g>") != strings.Count(doc, "<g ") {
		t.Error("snapshot SVG has unbalanced transform groups")
	}
}
