package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/nwsirlp/skillgraph/pkg/common"
	"github.com/nwsirlp/skillgraph/pkg/store"
)

func seedStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s := NewStore()

	employees := []common.Employee{
		{ID: "emp_a", Name: "Ada", Department: "Engineering", Role: "Engineer"},
		{ID: "emp_b", Name: "Ben", Department: "Design", Role: "Designer"},
		{ID: "emp_c", Name: "Cem", Department: "Engineering", Role: "Manager"},
	}
	if err := s.SaveEmployees(ctx, employees); err != nil {
		t.Fatalf("SaveEmployees returned error: %v", err)
	}

	skills := []common.Skill{
		{ID: "skl_go", Name: "Go", Category: "Programming"},
		{ID: "skl_ui", Name: "UI Design", Category: "Design"},
	}
	if err := s.SaveSkills(ctx, skills); err != nil {
		t.Fatalf("SaveSkills returned error: %v", err)
	}

	possessions := []common.SkillPossession{
		{EmployeeID: "emp_a", SkillID: "skl_go", Proficiency: 4, Certified: true},
		{EmployeeID: "emp_b", SkillID: "skl_ui", Proficiency: 5},
	}
	if err := s.SavePossessions(ctx, possessions); err != nil {
		t.Fatalf("SavePossessions returned error: %v", err)
	}

	return s
}

func TestListEmployeesFilter(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		filter  store.EmployeeFilter
		wantIDs []string
	}{
		{"no filter", store.EmployeeFilter{}, []string{"emp_a", "emp_b", "emp_c"}},
		{"department", store.EmployeeFilter{Department: "Engineering"}, []string{"emp_a", "emp_c"}},
		{"department and role", store.EmployeeFilter{Department: "Engineering", Role: "Manager"}, []string{"emp_c"}},
		{"no match", store.EmployeeFilter{Department: "Sales"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListEmployees(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListEmployees returned error: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("ListEmployees returned %d employees, want %d", len(got), len(tt.wantIDs))
			}
			for i, employee := range got {
				if employee.ID != tt.wantIDs[i] {
					t.Errorf("employee[%d].ID = %s, want %s", i, employee.ID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestListEmployeesInsertionOrderSurvivesUpsert(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	// Re-saving an existing employee must not move it to the back.
	if err := s.SaveEmployee(ctx, &common.Employee{ID: "emp_a", Name: "Ada Updated", Department: "Engineering", Role: "Engineer"}); err != nil {
		t.Fatalf("SaveEmployee returned error: %v", err)
	}

	got, err := s.ListEmployees(ctx, store.EmployeeFilter{})
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if got[0].ID != "emp_a" || got[0].Name != "Ada Updated" {
		t.Errorf("employee[0] = %s (%s), want emp_a (Ada Updated)", got[0].ID, got[0].Name)
	}
}

func TestListSkillsNameContains(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	got, err := s.ListSkills(ctx, store.SkillFilter{NameContains: "design"})
	if err != nil {
		t.Fatalf("ListSkills returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "skl_ui" {
		t.Fatalf("ListSkills(NameContains=design) = %v, want [skl_ui]", got)
	}
}

func TestSavePossessionUnknownEndpoint(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	err := s.SavePossession(ctx, common.SkillPossession{EmployeeID: "emp_missing", SkillID: "skl_go", Proficiency: 3})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("SavePossession with unknown employee: error = %v, want ErrNotFound", err)
	}

	err = s.SavePossession(ctx, common.SkillPossession{EmployeeID: "emp_a", SkillID: "skl_missing", Proficiency: 3})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("SavePossession with unknown skill: error = %v, want ErrNotFound", err)
	}
}

func TestDeleteEmployeeRemovesPossessions(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	if err := s.DeleteEmployee(ctx, "emp_a"); err != nil {
		t.Fatalf("DeleteEmployee returned error: %v", err)
	}

	possessions, err := s.ListPossessions(ctx)
	if err != nil {
		t.Fatalf("ListPossessions returned error: %v", err)
	}
	for _, possession := range possessions {
		if possession.EmployeeID == "emp_a" {
			t.Errorf("possession %v still references deleted employee", possession)
		}
	}

	if _, err := s.GetEmployee(ctx, "emp_a"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetEmployee after delete: error = %v, want ErrNotFound", err)
	}
}

func TestEmbeddingBackfillQueries(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	missing, err := s.SkillsMissingEmbedding(ctx, nil)
	if err != nil {
		t.Fatalf("SkillsMissingEmbedding returned error: %v", err)
	}
	if len(missing) != 2 {
		t.Fatalf("SkillsMissingEmbedding = %d skills, want 2", len(missing))
	}

	if err := s.UpdateSkillEmbedding(ctx, "skl_go", []float32{1, 0}); err != nil {
		t.Fatalf("UpdateSkillEmbedding returned error: %v", err)
	}

	missing, err = s.SkillsMissingEmbedding(ctx, nil)
	if err != nil {
		t.Fatalf("SkillsMissingEmbedding returned error: %v", err)
	}
	if len(missing) != 1 || missing[0].ID != "skl_ui" {
		t.Fatalf("SkillsMissingEmbedding after update = %v, want [skl_ui]", missing)
	}
}

func TestSimilarSkillsRanksByCosine(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	if err := s.UpdateSkillEmbedding(ctx, "skl_go", []float32{1, 0}); err != nil {
		t.Fatalf("UpdateSkillEmbedding returned error: %v", err)
	}
	if err := s.UpdateSkillEmbedding(ctx, "skl_ui", []float32{0, 1}); err != nil {
		t.Fatalf("UpdateSkillEmbedding returned error: %v", err)
	}

	got, err := s.SimilarSkills(ctx, []float32{0.9, 0.1}, 1)
	if err != nil {
		t.Fatalf("SimilarSkills returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "skl_go" {
		t.Fatalf("SimilarSkills = %v, want [skl_go]", got)
	}
}
