package viz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nwsirlp/skillgraph/pkg/common"
)

func testView(t *testing.T) *View {
	t.Helper()
	v := NewView(800, 600, DefaultSimConfig())
	v.SetGraph(BuildGraph(
		[]common.Employee{{ID: "emp_1", Name: "Ada"}},
		[]common.Skill{{ID: "skl_go", Name: "Go"}},
		[]common.SkillPossession{{EmployeeID: "emp_1", SkillID: "skl_go", Proficiency: 4}},
		800, 600,
	))
	return v
}

func TestFrameThrottleSkipsButKeepsScheduling(t *testing.T) {
	v := testView(t)
	cv := &recordingCanvas{}
	start := time.Now()

	if !v.Frame(cv, start) {
		t.Fatal("first frame was skipped")
	}
	if v.Frame(cv, start.Add(5*time.Millisecond)) {
		t.Error("frame within the interval was not skipped")
	}
	// A skipped frame must not reset the pacing clock; the next on-time
	// frame still runs.
	if !v.Frame(cv, start.Add(minFrameInterval)) {
		t.Error("frame after the interval was skipped")
	}
}

func TestToggleSimulationGatesPhysicsOnly(t *testing.T) {
	v := testView(t)
	cv := &recordingCanvas{}
	now := time.Now()

	if on := v.ToggleSimulation(); on {
		t.Fatal("ToggleSimulation did not pause a running simulation")
	}

	before := append([]Node(nil), v.Graph().Nodes...)
	if !v.Frame(cv, now) {
		t.Fatal("frame skipped")
	}
	for i := range before {
		if before[i].X != v.Graph().Nodes[i].X || before[i].Y != v.Graph().Nodes[i].Y {
			t.Fatal("paused simulation still moved nodes")
		}
	}
	if len(cv.ops) == 0 {
		t.Error("paused frame did not render")
	}

	if on := v.ToggleSimulation(); !on {
		t.Fatal("second toggle did not resume the simulation")
	}
	v.Frame(cv, now.Add(minFrameInterval))
	var moved bool
	for i := range before {
		if before[i].X != v.Graph().Nodes[i].X || before[i].Y != v.Graph().Nodes[i].Y {
			moved = true
		}
	}
	if !moved {
		t.Error("resumed simulation left every node in place")
	}
}

func TestPointerGestureSelectsAndDrags(t *testing.T) {
	v := testView(t)

	idx, ok := v.Graph().NodeIndex("emp_1")
	if !ok {
		t.Fatal("emp_1 missing from graph")
	}
	node := v.Graph().Nodes[idx]
	sx, sy := v.Camera().WorldToScreen(node.X, node.Y)

	v.PointerDown(sx, sy)
	if v.Selected() != idx {
		t.Fatalf("Selected() = %d, want %d", v.Selected(), idx)
	}
	if !v.Graph().Nodes[idx].Dragged {
		t.Fatal("hit node not marked dragged")
	}

	v.PointerMove(sx+40, sy+25)
	wx, wy := v.Camera().ScreenToWorld(sx+40, sy+25)
	got := v.Graph().Nodes[idx]
	if got.X != wx || got.Y != wy {
		t.Errorf("dragged node at (%v, %v), want (%v, %v)", got.X, got.Y, wx, wy)
	}
	if got.VX != 0 || got.VY != 0 {
		t.Errorf("drag left residual velocity (%v, %v)", got.VX, got.VY)
	}

	v.PointerUp()
	if v.Graph().Nodes[idx].Dragged {
		t.Error("PointerUp did not release the node")
	}

	// Selection survives the release; a miss clears it.
	if v.Selected() != idx {
		t.Error("selection lost on PointerUp")
	}
	v.PointerDown(-1000, -1000)
	if v.Selected() != -1 {
		t.Error("miss did not clear the selection")
	}
}

func TestPointerMoveWithoutDragIsIgnored(t *testing.T) {
	v := testView(t)
	before := append([]Node(nil), v.Graph().Nodes...)

	v.PointerMove(400, 300)

	for i := range before {
		if before[i].X != v.Graph().Nodes[i].X || before[i].Y != v.Graph().Nodes[i].Y {
			t.Fatal("PointerMove without an active drag moved a node")
		}
	}
}

func TestLoadFailureRendersEmptyGraph(t *testing.T) {
	v := testView(t)
	if len(v.Graph().Nodes) == 0 {
		t.Fatal("fixture graph is empty")
	}

	v.Load(context.Background(), func(ctx context.Context) ([]common.Employee, []common.Skill, []common.SkillPossession, error) {
		return nil, nil, nil, errors.New("boom")
	})

	if len(v.Graph().Nodes) != 0 {
		t.Errorf("failed load left %d nodes, want an empty graph", len(v.Graph().Nodes))
	}

	// Rendering keeps working against the empty graph.
	cv := &recordingCanvas{}
	if !v.Frame(cv, time.Now().Add(time.Second)) {
		t.Error("frame skipped after failed load")
	}
}

func TestSetGraphClearsSelectionAndDrag(t *testing.T) {
	v := testView(t)
	idx, _ := v.Graph().NodeIndex("emp_1")
	node := v.Graph().Nodes[idx]
	sx, sy := v.Camera().WorldToScreen(node.X, node.Y)
	v.PointerDown(sx, sy)

	v.SetGraph(NewGraph())

	if v.Selected() != -1 {
		t.Error("selection survived a wholesale graph swap")
	}
	// A stale drag index must not panic against the new arena.
	v.PointerMove(10, 10)
	v.PointerUp()
}

func TestRunLoopStopsOnContextCancel(t *testing.T) {
	v := testView(t)
	cv := &recordingCanvas{}

	ctx, cancel := context.WithCancel(context.Background())
	frames := make(chan time.Time)

	done := make(chan struct{})
	go func() {
		v.RunLoop(ctx, cv, frames)
		close(done)
	}()

	frames <- time.Now()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunLoop did not exit after context cancellation")
	}
}
