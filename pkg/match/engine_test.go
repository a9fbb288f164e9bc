package match

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/nwsirlp/skillgraph/pkg/common"
	"github.com/nwsirlp/skillgraph/pkg/store"
	"github.com/nwsirlp/skillgraph/pkg/store/memory"
)

// fakeEmbedder answers scripted vectors per input text. Unknown inputs get
// the zero vector, which scores 0 against everything.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[string(input)]; ok {
		return v, nil
	}
	return []float32{0, 0}, nil
}

// countingStore records store traffic so tests can prove round trips were
// skipped.
type countingStore struct {
	Store
	listEmployeesCalls int
}

func (c *countingStore) ListEmployees(ctx context.Context, filter store.EmployeeFilter) ([]common.Employee, error) {
	c.listEmployeesCalls++
	return c.Store.ListEmployees(ctx, filter)
}

// relevanceVector returns a unit vector whose cosine against (1, 0) is r.
func relevanceVector(r float64) []float32 {
	return []float32{float32(r), float32(math.Sqrt(1 - r*r))}
}

func mustSave(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("seeding store failed: %v", err)
	}
}

func TestGraphScoreSingleSkill(t *testing.T) {
	tests := []struct {
		name        string
		proficiency int
		relevance   float64
		certified   bool
	}{
		{"novice", 1, 0.9, false},
		{"mid", 3, 0.5, false},
		{"expert", 5, 1.0, false},
		{"certified novice", 1, 0.9, true},
		{"certified expert", 5, 0.8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st := memory.NewStore()
			mustSave(t, st.SaveEmployee(ctx, &common.Employee{ID: "emp_1", Name: "One"}))
			mustSave(t, st.SaveSkill(ctx, &common.Skill{ID: "skl_1", Name: "Skill", Embedding: relevanceVector(tt.relevance)}))
			mustSave(t, st.SavePossession(ctx, common.SkillPossession{
				EmployeeID:  "emp_1",
				SkillID:     "skl_1",
				Proficiency: tt.proficiency,
				Certified:   tt.certified,
			}))

			embedder := &fakeEmbedder{vectors: map[string][]float32{"q": {1, 0}}}
			engine := NewEngine(st, embedder, DefaultConfig())

			result := engine.Search(ctx, SearchParams{Query: "q"})
			if len(result.Candidates) != 1 {
				t.Fatalf("Search returned %d candidates, want 1", len(result.Candidates))
			}

			want := float64(tt.proficiency) / 5 * tt.relevance
			if tt.certified {
				want += 0.1
			}
			got := result.Candidates[0].GraphScore
			if math.Abs(got-want) > 1e-6 {
				t.Errorf("GraphScore = %v, want %v", got, want)
			}
		})
	}
}

func TestMatchScoreBlendAndBounds(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	mustSave(t, st.SaveEmployee(ctx, &common.Employee{ID: "emp_1", Name: "One", Embedding: []float32{1, 0}}))
	mustSave(t, st.SaveSkill(ctx, &common.Skill{ID: "skl_1", Name: "Skill", Embedding: relevanceVector(0.8)}))
	mustSave(t, st.SavePossession(ctx, common.SkillPossession{EmployeeID: "emp_1", SkillID: "skl_1", Proficiency: 5, Certified: true}))

	embedder := &fakeEmbedder{vectors: map[string][]float32{"q": {1, 0}}}
	engine := NewEngine(st, embedder, DefaultConfig())

	result := engine.Search(ctx, SearchParams{Query: "q"})
	if len(result.Candidates) != 1 {
		t.Fatalf("Search returned %d candidates, want 1", len(result.Candidates))
	}

	candidate := result.Candidates[0]
	wantGraph := 5.0/5*0.8 + 0.1
	if math.Abs(candidate.GraphScore-wantGraph) > 1e-6 {
		t.Errorf("GraphScore = %v, want %v", candidate.GraphScore, wantGraph)
	}
	if math.Abs(candidate.SemanticScore-1) > 1e-6 {
		t.Errorf("SemanticScore = %v, want 1", candidate.SemanticScore)
	}
	wantMatch := 0.6*wantGraph + 0.4*1
	if math.Abs(candidate.MatchScore-wantMatch) > 1e-6 {
		t.Errorf("MatchScore = %v, want %v", candidate.MatchScore, wantMatch)
	}
	if candidate.MatchScore < 0 || candidate.MatchScore > 1 {
		t.Errorf("MatchScore %v out of [0, 1]", candidate.MatchScore)
	}
}

func TestEmployeeWithoutMatchedSkillExcluded(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	// emp_1 holds the relevant skill; emp_2 only resembles the query
	// semantically and must not appear.
	mustSave(t, st.SaveEmployee(ctx, &common.Employee{ID: "emp_1", Name: "One"}))
	mustSave(t, st.SaveEmployee(ctx, &common.Employee{ID: "emp_2", Name: "Two", Embedding: []float32{1, 0}}))
	mustSave(t, st.SaveSkill(ctx, &common.Skill{ID: "skl_1", Name: "Skill", Embedding: relevanceVector(0.9)}))
	mustSave(t, st.SavePossession(ctx, common.SkillPossession{EmployeeID: "emp_1", SkillID: "skl_1", Proficiency: 3}))

	embedder := &fakeEmbedder{vectors: map[string][]float32{"q": {1, 0}}}
	engine := NewEngine(st, embedder, DefaultConfig())

	result := engine.Search(ctx, SearchParams{Query: "q"})
	if len(result.Candidates) != 1 {
		t.Fatalf("Search returned %d candidates, want 1", len(result.Candidates))
	}
	if result.Candidates[0].Employee.ID != "emp_1" {
		t.Errorf("candidate = %s, want emp_1", result.Candidates[0].Employee.ID)
	}
}

func TestRelevanceFloorAndTopN(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	mustSave(t, st.SaveEmployee(ctx, &common.Employee{ID: "emp_1", Name: "One"}))

	skills := []common.Skill{
		{ID: "skl_high", Name: "High", Embedding: relevanceVector(0.95)},
		{ID: "skl_mid", Name: "Mid", Embedding: relevanceVector(0.7)},
		{ID: "skl_low", Name: "Low", Embedding: relevanceVector(0.5)},
		{ID: "skl_floor", Name: "Floor", Embedding: relevanceVector(0.2)},
	}
	mustSave(t, st.SaveSkills(ctx, skills))
	for _, skill := range skills {
		mustSave(t, st.SavePossession(ctx, common.SkillPossession{EmployeeID: "emp_1", SkillID: skill.ID, Proficiency: 3}))
	}

	cfg := DefaultConfig()
	cfg.MaxRelevantSkills = 2

	embedder := &fakeEmbedder{vectors: map[string][]float32{"q": {1, 0}}}
	engine := NewEngine(st, embedder, cfg)

	result := engine.Search(ctx, SearchParams{Query: "q"})
	if len(result.Candidates) != 1 {
		t.Fatalf("Search returned %d candidates, want 1", len(result.Candidates))
	}

	matched := result.Candidates[0].MatchedSkills
	if len(matched) != 2 {
		t.Fatalf("matched %d skills, want 2 (top-N truncation)", len(matched))
	}
	// Sorted by relevance descending, floor and beyond-top-N skills gone.
	if matched[0].Skill.ID != "skl_high" || matched[1].Skill.ID != "skl_mid" {
		t.Errorf("matched skills = [%s, %s], want [skl_high, skl_mid]",
			matched[0].Skill.ID, matched[1].Skill.ID)
	}
}

func TestShortCircuitWithoutRelevantSkills(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewStore()
	mustSave(t, mem.SaveEmployee(ctx, &common.Employee{ID: "emp_1", Name: "One"}))
	mustSave(t, mem.SaveSkill(ctx, &common.Skill{ID: "skl_1", Name: "Skill", Embedding: relevanceVector(0.1)}))

	counting := &countingStore{Store: mem}
	embedder := &fakeEmbedder{vectors: map[string][]float32{"q": {1, 0}}}
	engine := NewEngine(counting, embedder, DefaultConfig())

	result := engine.Search(ctx, SearchParams{Query: "q"})
	if result.TotalMatches != 0 || len(result.Candidates) != 0 {
		t.Errorf("Search = %d candidates / %d total, want empty", len(result.Candidates), result.TotalMatches)
	}
	if counting.listEmployeesCalls != 0 {
		t.Errorf("ListEmployees called %d times, want 0 (short circuit)", counting.listEmployeesCalls)
	}
}

func TestSearchDeterminism(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	mustSave(t, st.SaveEmployees(ctx, []common.Employee{
		{ID: "emp_1", Name: "One"},
		{ID: "emp_2", Name: "Two"},
		{ID: "emp_3", Name: "Three"},
	}))
	mustSave(t, st.SaveSkills(ctx, []common.Skill{
		{ID: "skl_a", Name: "A", Embedding: relevanceVector(0.9)},
		{ID: "skl_b", Name: "B", Embedding: relevanceVector(0.6)},
	}))
	mustSave(t, st.SavePossessions(ctx, []common.SkillPossession{
		{EmployeeID: "emp_1", SkillID: "skl_a", Proficiency: 4},
		{EmployeeID: "emp_2", SkillID: "skl_b", Proficiency: 5, Certified: true},
		{EmployeeID: "emp_3", SkillID: "skl_a", Proficiency: 2},
	}))

	embedder := &fakeEmbedder{vectors: map[string][]float32{"q": {1, 0}}}
	engine := NewEngine(st, embedder, DefaultConfig())

	first := engine.Search(ctx, SearchParams{Query: "q"})
	second := engine.Search(ctx, SearchParams{Query: "q"})

	first.ProcessingTimeMs = 0
	second.ProcessingTimeMs = 0
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical searches diverged:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestLimitAndTotalMatches(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	mustSave(t, st.SaveEmployees(ctx, []common.Employee{
		{ID: "emp_1", Name: "One"},
		{ID: "emp_2", Name: "Two"},
		{ID: "emp_3", Name: "Three"},
	}))
	mustSave(t, st.SaveSkill(ctx, &common.Skill{ID: "skl_a", Name: "A", Embedding: relevanceVector(0.9)}))
	mustSave(t, st.SavePossessions(ctx, []common.SkillPossession{
		{EmployeeID: "emp_1", SkillID: "skl_a", Proficiency: 5},
		{EmployeeID: "emp_2", SkillID: "skl_a", Proficiency: 4},
		{EmployeeID: "emp_3", SkillID: "skl_a", Proficiency: 3},
	}))

	embedder := &fakeEmbedder{vectors: map[string][]float32{"q": {1, 0}}}
	engine := NewEngine(st, embedder, DefaultConfig())

	result := engine.Search(ctx, SearchParams{Query: "q", Limit: 2})
	if result.TotalMatches != 3 {
		t.Errorf("TotalMatches = %d, want 3", result.TotalMatches)
	}
	if len(result.Candidates) != 2 {
		t.Errorf("len(Candidates) = %d, want 2", len(result.Candidates))
	}
	if result.Candidates[0].Employee.ID != "emp_1" {
		t.Errorf("top candidate = %s, want emp_1", result.Candidates[0].Employee.ID)
	}
}

func TestEqualScoresKeepStoreOrder(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	mustSave(t, st.SaveEmployees(ctx, []common.Employee{
		{ID: "emp_b", Name: "SavedFirst"},
		{ID: "emp_a", Name: "SavedSecond"},
	}))
	mustSave(t, st.SaveSkill(ctx, &common.Skill{ID: "skl_a", Name: "A", Embedding: relevanceVector(0.9)}))
	mustSave(t, st.SavePossessions(ctx, []common.SkillPossession{
		{EmployeeID: "emp_b", SkillID: "skl_a", Proficiency: 3},
		{EmployeeID: "emp_a", SkillID: "skl_a", Proficiency: 3},
	}))

	embedder := &fakeEmbedder{vectors: map[string][]float32{"q": {1, 0}}}
	engine := NewEngine(st, embedder, DefaultConfig())

	result := engine.Search(ctx, SearchParams{Query: "q"})
	if len(result.Candidates) != 2 {
		t.Fatalf("Search returned %d candidates, want 2", len(result.Candidates))
	}
	if result.Candidates[0].Employee.ID != "emp_b" {
		t.Errorf("tie order changed: first = %s, want emp_b (store order)", result.Candidates[0].Employee.ID)
	}
}

func TestEdgeFilters(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	mustSave(t, st.SaveEmployees(ctx, []common.Employee{
		{ID: "emp_1", Name: "One"},
		{ID: "emp_2", Name: "Two"},
	}))
	mustSave(t, st.SaveSkill(ctx, &common.Skill{ID: "skl_a", Name: "A", Embedding: relevanceVector(0.9)}))
	mustSave(t, st.SavePossessions(ctx, []common.SkillPossession{
		{EmployeeID: "emp_1", SkillID: "skl_a", Proficiency: 2},
		{EmployeeID: "emp_2", SkillID: "skl_a", Proficiency: 4, Certified: true},
	}))

	embedder := &fakeEmbedder{vectors: map[string][]float32{"q": {1, 0}}}
	engine := NewEngine(st, embedder, DefaultConfig())

	t.Run("min proficiency", func(t *testing.T) {
		result := engine.Search(ctx, SearchParams{Query: "q", MinProficiency: 3})
		if len(result.Candidates) != 1 || result.Candidates[0].Employee.ID != "emp_2" {
			t.Errorf("candidates = %+v, want only emp_2", result.Candidates)
		}
	})

	t.Run("certified only", func(t *testing.T) {
		result := engine.Search(ctx, SearchParams{Query: "q", CertifiedOnly: true})
		if len(result.Candidates) != 1 || result.Candidates[0].Employee.ID != "emp_2" {
			t.Errorf("candidates = %+v, want only emp_2", result.Candidates)
		}
	})
}

// The worked scenario from the design discussion: certification plus higher
// proficiency must outrank a weaker uncertified holder of an equally
// relevant skill.
func TestPythonAndMachineLearningScenario(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	mustSave(t, st.SaveEmployees(ctx, []common.Employee{
		{ID: "emp_e1", Name: "E1"},
		{ID: "emp_e2", Name: "E2"},
	}))
	mustSave(t, st.SaveSkills(ctx, []common.Skill{
		{ID: "skl_python", Name: "Python", Embedding: relevanceVector(0.85)},
		{ID: "skl_ml", Name: "Machine Learning", Embedding: relevanceVector(0.85)},
	}))
	mustSave(t, st.SavePossessions(ctx, []common.SkillPossession{
		{EmployeeID: "emp_e1", SkillID: "skl_python", Proficiency: 4, Certified: true},
		{EmployeeID: "emp_e2", SkillID: "skl_ml", Proficiency: 2, Certified: false},
	}))

	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"I need someone with Python and machine learning": {1, 0},
	}}
	engine := NewEngine(st, embedder, DefaultConfig())

	result := engine.Search(ctx, SearchParams{Query: "I need someone with Python and machine learning"})
	if len(result.Candidates) != 2 {
		t.Fatalf("Search returned %d candidates, want 2", len(result.Candidates))
	}
	if result.Candidates[0].Employee.ID != "emp_e1" {
		t.Errorf("top candidate = %s, want emp_e1", result.Candidates[0].Employee.ID)
	}
	if result.Candidates[1].Employee.ID != "emp_e2" {
		t.Errorf("second candidate = %s, want emp_e2", result.Candidates[1].Employee.ID)
	}
}

func TestSearchRecoversFromEmbedderFailure(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	mustSave(t, st.SaveEmployee(ctx, &common.Employee{ID: "emp_1", Name: "One"}))

	embedder := &fakeEmbedder{err: errors.New("provider down")}
	engine := NewEngine(st, embedder, DefaultConfig())

	result := engine.Search(ctx, SearchParams{Query: "q"})
	if result.TotalMatches != 0 || len(result.Candidates) != 0 {
		t.Errorf("Search after embedder failure = %+v, want empty result", result)
	}
}

func TestCandidatesForRequiredSkills(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	mustSave(t, st.SaveEmployees(ctx, []common.Employee{
		{ID: "emp_1", Name: "One"},
		{ID: "emp_2", Name: "Two"},
		{ID: "emp_3", Name: "Three"},
	}))
	mustSave(t, st.SaveSkills(ctx, []common.Skill{
		{ID: "skl_a", Name: "A"},
		{ID: "skl_b", Name: "B"},
	}))
	mustSave(t, st.SavePossessions(ctx, []common.SkillPossession{
		// emp_1 covers both skills, emp_2 one with higher proficiency than
		// emp_3's one.
		{EmployeeID: "emp_1", SkillID: "skl_a", Proficiency: 2},
		{EmployeeID: "emp_1", SkillID: "skl_b", Proficiency: 2},
		{EmployeeID: "emp_2", SkillID: "skl_a", Proficiency: 5},
		{EmployeeID: "emp_3", SkillID: "skl_a", Proficiency: 3},
	}))

	engine := NewEngine(st, &fakeEmbedder{}, DefaultConfig())

	got := engine.CandidatesForRequiredSkills(ctx, []string{"skl_a", "skl_b"})
	if len(got) != 3 {
		t.Fatalf("CandidatesForRequiredSkills returned %d candidates, want 3", len(got))
	}

	wantOrder := []string{"emp_1", "emp_2", "emp_3"}
	for i, want := range wantOrder {
		if got[i].Employee.ID != want {
			t.Errorf("candidate[%d] = %s, want %s", i, got[i].Employee.ID, want)
		}
	}
	if got[0].MatchedCount != 2 {
		t.Errorf("emp_1 MatchedCount = %d, want 2", got[0].MatchedCount)
	}
}
