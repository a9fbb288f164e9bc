package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nwsirlp/skillgraph/pkg/common"
	"github.com/nwsirlp/skillgraph/pkg/store"
	"github.com/nwsirlp/skillgraph/pkg/store/memory"
)

func TestParseEmployeesCSVTolerant(t *testing.T) {
	content := []byte(strings.Join([]string{
		`id,name,department,role,bio,years_experience`,
		``,
		`emp_1,Ada Sorel,Engineering,Senior Engineer,"Builds ""things"", mostly backends",12`,
		`   `,
		`emp_2,Ben Ito,Design`,
		`emp_3`,
	}, "\n"))

	employees := ParseEmployeesCSV(content)
	if len(employees) != 2 {
		t.Fatalf("parsed %d employees, want 2 (header, blanks, short rows dropped)", len(employees))
	}
	if employees[0].Bio != `Builds "things", mostly backends` {
		t.Errorf("quoted bio parsed as %q", employees[0].Bio)
	}
	if employees[0].YearsExperience != 12 {
		t.Errorf("years_experience = %d, want 12", employees[0].YearsExperience)
	}
	if employees[1].Role != "" {
		t.Errorf("missing trailing fields should stay empty, got role %q", employees[1].Role)
	}
}

func TestParseSkillsCSVTags(t *testing.T) {
	skills := ParseSkillsCSV([]byte("skl_1,Go,Programming,backend; concurrency ;\n"))
	if len(skills) != 1 {
		t.Fatalf("parsed %d skills, want 1", len(skills))
	}
	want := []string{"backend", "concurrency"}
	if len(skills[0].Tags) != 2 || skills[0].Tags[0] != want[0] || skills[0].Tags[1] != want[1] {
		t.Errorf("tags = %v, want %v", skills[0].Tags, want)
	}
}

func TestParsePossessionsCSVDropsNonNumericProficiency(t *testing.T) {
	content := []byte(strings.Join([]string{
		"employee_id,skill_id,proficiency,years,certified",
		"emp_1,skl_1,4,2.5,true",
		"emp_1,skl_2,expert,1,false",
	}, "\n"))

	possessions := ParsePossessionsCSV(content)
	if len(possessions) != 1 {
		t.Fatalf("parsed %d possessions, want 1", len(possessions))
	}
	p := possessions[0]
	if p.Proficiency != 4 || p.Years != 2.5 || !p.Certified {
		t.Errorf("row parsed as %+v", p)
	}
}

func TestNormalizeMergesSkillsByName(t *testing.T) {
	ds := Dataset{
		Employees: []common.Employee{{ID: "emp_1", Name: "Ada"}},
		Skills: []common.Skill{
			{ID: "skl_a", Name: "Machine Learning", Category: "AI"},
			{ID: "skl_b", Name: "  machine   learning ", Category: "Data"},
		},
		Possessions: []common.SkillPossession{
			{EmployeeID: "emp_1", SkillID: "skl_b", Proficiency: 3},
		},
	}

	out, stats := Normalize(ds)

	if len(out.Skills) != 1 || out.Skills[0].ID != "skl_a" {
		t.Fatalf("skills = %+v, want only the first occurrence to survive", out.Skills)
	}
	if stats.MergedSkills != 1 {
		t.Errorf("MergedSkills = %d, want 1", stats.MergedSkills)
	}
	if len(out.Possessions) != 1 || out.Possessions[0].SkillID != "skl_a" {
		t.Errorf("possessions = %+v, want edge re-pointed to skl_a", out.Possessions)
	}
}

func TestNormalizeValidatesPossessions(t *testing.T) {
	ds := Dataset{
		Employees: []common.Employee{{ID: "emp_1", Name: "Ada"}},
		Skills:    []common.Skill{{ID: "skl_1", Name: "Go"}},
		Possessions: []common.SkillPossession{
			{EmployeeID: "emp_1", SkillID: "skl_1", Proficiency: 3},
			{EmployeeID: "emp_1", SkillID: "skl_1", Proficiency: 4},
			{EmployeeID: "emp_1", SkillID: "skl_1", Proficiency: 0},
			{EmployeeID: "emp_1", SkillID: "skl_1", Proficiency: 6},
			{EmployeeID: "emp_ghost", SkillID: "skl_1", Proficiency: 3},
			{EmployeeID: "emp_1", SkillID: "skl_ghost", Proficiency: 3},
		},
	}

	out, stats := Normalize(ds)

	if len(out.Possessions) != 1 || out.Possessions[0].Proficiency != 3 {
		t.Fatalf("possessions = %+v, want only the first valid edge", out.Possessions)
	}
	if stats.SkippedPossessions != 4 {
		t.Errorf("SkippedPossessions = %d, want 4", stats.SkippedPossessions)
	}
	if stats.DeduplicatedEdges != 1 {
		t.Errorf("DeduplicatedEdges = %d, want 1", stats.DeduplicatedEdges)
	}
}

func TestNormalizeGeneratesMissingIDs(t *testing.T) {
	ds := Dataset{
		Employees: []common.Employee{{Name: "Ada"}, {Name: ""}},
		Skills:    []common.Skill{{Name: "Go"}},
	}

	out, stats := Normalize(ds)

	if len(out.Employees) != 1 {
		t.Fatalf("employees = %+v, want the unnamed row dropped", out.Employees)
	}
	if !strings.HasPrefix(out.Employees[0].ID, "emp_") {
		t.Errorf("generated employee id %q lacks prefix", out.Employees[0].ID)
	}
	if !strings.HasPrefix(out.Skills[0].ID, "skl_") {
		t.Errorf("generated skill id %q lacks prefix", out.Skills[0].ID)
	}
	if stats.GeneratedIDs != 2 {
		t.Errorf("GeneratedIDs = %d, want 2", stats.GeneratedIDs)
	}
	if stats.SkippedEmployees != 1 {
		t.Errorf("SkippedEmployees = %d, want 1", stats.SkippedEmployees)
	}
}

func TestLoadFromFileSource(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("employees.csv", "id,name,department,role\nemp_1,Ada Sorel,Engineering,Engineer\n")
	write("skills.csv", "id,name,category\nskl_1,Go,Programming\n")
	write("possessions.csv", "employee_id,skill_id,proficiency\nemp_1,skl_1,5\n")
	write("extra.json", `{"skills": [{"id": "skl_2", "name": "Python", "category": "Programming"}]}`)
	write("notes.txt", "unrelated")

	ds, err := Load(context.Background(), NewFileSource(dir))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(ds.Employees) != 1 || len(ds.Skills) != 2 || len(ds.Possessions) != 1 {
		t.Errorf("Load = %d employees / %d skills / %d possessions, want 1/2/1",
			len(ds.Employees), len(ds.Skills), len(ds.Possessions))
	}
}

func TestSeedWritesEverything(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()

	ds := Dataset{
		Employees: []common.Employee{
			{ID: "emp_1", Name: "Ada"},
			{ID: "emp_2", Name: "Ben"},
		},
		Skills: []common.Skill{{ID: "skl_1", Name: "Go"}},
		Possessions: []common.SkillPossession{
			{EmployeeID: "emp_1", SkillID: "skl_1", Proficiency: 5},
			{EmployeeID: "emp_2", SkillID: "skl_1", Proficiency: 9},
		},
	}

	stats, err := Seed(ctx, st, ds)
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if stats.Employees != 2 || stats.Skills != 1 || stats.Possessions != 1 {
		t.Errorf("stats = %+v, want 2 employees, 1 skill, 1 possession", stats)
	}
	if stats.SkippedPossessions != 1 {
		t.Errorf("SkippedPossessions = %d, want 1 (proficiency 9)", stats.SkippedPossessions)
	}

	employees, err := st.ListEmployees(ctx, store.EmployeeFilter{})
	if err != nil {
		t.Fatalf("ListEmployees failed: %v", err)
	}
	if len(employees) != 2 {
		t.Errorf("store holds %d employees, want 2", len(employees))
	}
	edges, err := st.GetEmployeeSkills(ctx, "emp_1")
	if err != nil {
		t.Fatalf("GetEmployeeSkills failed: %v", err)
	}
	if len(edges) != 1 || edges[0].Skill.ID != "skl_1" {
		t.Errorf("emp_1 edges = %+v", edges)
	}
}
