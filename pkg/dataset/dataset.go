// Package dataset loads and seeds the demo skill graph: employees, skills,
// and possession edges from JSON or CSV files on disk or S3. It is the bulk
// ingestion path of the demo, not a resume parser.
package dataset

import (
	"strings"

	"github.com/nwsirlp/skillgraph/internal/util"
	"github.com/nwsirlp/skillgraph/pkg/common"
	"github.com/nwsirlp/skillgraph/pkg/logger"
)

// Dataset is one parsed seed data set, not yet validated.
type Dataset struct {
	Employees   []common.Employee        `json:"employees"`
	Skills      []common.Skill           `json:"skills"`
	Possessions []common.SkillPossession `json:"possessions"`
}

// NormalizeStats reports what Normalize changed or dropped. Skipped rows are
// counted, never an error: a partly broken seed file still imports.
type NormalizeStats struct {
	MergedSkills       int `json:"merged_skills"`
	SkippedEmployees   int `json:"skipped_employees"`
	SkippedPossessions int `json:"skipped_possessions"`
	GeneratedIDs       int `json:"generated_ids"`
	DeduplicatedEdges  int `json:"deduplicated_edges"`
}

func normalizeSkillName(name string) string {
	return strings.ToLower(util.CollapseSpaces(name))
}

// Normalize prepares a parsed dataset for seeding:
//   - employees without a name are dropped, missing ids are generated
//   - duplicate skills are merged by normalized name and their possessions
//     re-pointed to the surviving skill
//   - possession rows with a proficiency outside 1..5, an unknown employee
//     or skill reference, or a duplicate edge are dropped and counted
func Normalize(ds Dataset) (Dataset, NormalizeStats) {
	var stats NormalizeStats
	out := Dataset{}

	employeeIDs := make(map[string]struct{}, len(ds.Employees))
	for _, e := range ds.Employees {
		e.Name = util.CollapseSpaces(util.SanitizePostgresText(e.Name))
		e.Bio = util.SanitizePostgresText(e.Bio)
		if e.Name == "" {
			stats.SkippedEmployees++
			continue
		}
		if e.ID == "" {
			id, err := util.NewEmployeeID()
			if err != nil {
				stats.SkippedEmployees++
				continue
			}
			e.ID = id
			stats.GeneratedIDs++
		}
		if _, exists := employeeIDs[e.ID]; exists {
			stats.SkippedEmployees++
			continue
		}
		employeeIDs[e.ID] = struct{}{}
		out.Employees = append(out.Employees, e)
	}

	// Skills merge by normalized name; the first occurrence wins and later
	// duplicates map their id onto it.
	skillIDs := make(map[string]struct{}, len(ds.Skills))
	skillByName := make(map[string]string, len(ds.Skills))
	aliasToID := make(map[string]string, len(ds.Skills))
	for _, s := range ds.Skills {
		s.Name = util.CollapseSpaces(util.SanitizePostgresText(s.Name))
		if s.Name == "" {
			continue
		}

		nameKey := normalizeSkillName(s.Name)
		if survivorID, exists := skillByName[nameKey]; exists {
			if s.ID != "" {
				aliasToID[s.ID] = survivorID
			}
			stats.MergedSkills++
			continue
		}

		if s.ID == "" {
			id, err := util.NewSkillID()
			if err != nil {
				continue
			}
			s.ID = id
			stats.GeneratedIDs++
		}
		skillByName[nameKey] = s.ID
		skillIDs[s.ID] = struct{}{}
		aliasToID[s.ID] = s.ID
		out.Skills = append(out.Skills, s)
	}

	seenEdges := make(map[string]struct{}, len(ds.Possessions))
	for _, p := range ds.Possessions {
		if target, ok := aliasToID[p.SkillID]; ok {
			p.SkillID = target
		}

		if p.Proficiency < 1 || p.Proficiency > 5 {
			stats.SkippedPossessions++
			continue
		}
		if _, ok := employeeIDs[p.EmployeeID]; !ok {
			stats.SkippedPossessions++
			continue
		}
		if _, ok := skillIDs[p.SkillID]; !ok {
			stats.SkippedPossessions++
			continue
		}

		edgeKey := p.EmployeeID + "\x00" + p.SkillID
		if _, ok := seenEdges[edgeKey]; ok {
			stats.DeduplicatedEdges++
			continue
		}
		seenEdges[edgeKey] = struct{}{}
		out.Possessions = append(out.Possessions, p)
	}

	if stats.SkippedEmployees > 0 || stats.SkippedPossessions > 0 || stats.MergedSkills > 0 {
		logger.Info("[Dataset] Normalized seed data",
			"merged_skills", stats.MergedSkills,
			"skipped_employees", stats.SkippedEmployees,
			"skipped_possessions", stats.SkippedPossessions,
		)
	}

	return out, stats
}
