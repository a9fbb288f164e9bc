package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/nwsirlp/skillgraph/pkg/common"
	"github.com/nwsirlp/skillgraph/pkg/store"
)

// Store is a mutex-guarded in-memory store.Storage. It is the default
// backend for demo mode and the test suite. Listings preserve insertion
// order, which is the stable order the matching engine's tie-break relies
// on.
type Store struct {
	mu sync.RWMutex

	employees     map[string]common.Employee
	employeeOrder []string

	skills     map[string]common.Skill
	skillOrder []string

	// possessions keyed by employeeID + "\x00" + skillID, in insertion order.
	possessions     map[string]common.SkillPossession
	possessionOrder []string
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		employees:   make(map[string]common.Employee),
		skills:      make(map[string]common.Skill),
		possessions: make(map[string]common.SkillPossession),
	}
}

func (s *Store) SaveEmployee(ctx context.Context, employee *common.Employee) error {
	if employee == nil || employee.ID == "" {
		return fmt.Errorf("employee id is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.employees[employee.ID]; !exists {
		s.employeeOrder = append(s.employeeOrder, employee.ID)
	}
	s.employees[employee.ID] = *employee
	return nil
}

func (s *Store) SaveEmployees(ctx context.Context, employees []common.Employee) error {
	for i := range employees {
		if err := s.SaveEmployee(ctx, &employees[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetEmployee(ctx context.Context, id string) (*common.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	employee, ok := s.employees[id]
	if !ok {
		return nil, fmt.Errorf("employee %s: %w", id, store.ErrNotFound)
	}
	return &employee, nil
}

func (s *Store) ListEmployees(ctx context.Context, filter store.EmployeeFilter) ([]common.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]common.Employee, 0, len(s.employeeOrder))
	for _, id := range s.employeeOrder {
		employee := s.employees[id]
		if filter.Department != "" && employee.Department != filter.Department {
			continue
		}
		if filter.Role != "" && employee.Role != filter.Role {
			continue
		}
		out = append(out, employee)
	}
	return out, nil
}

func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[id]; !ok {
		return fmt.Errorf("employee %s: %w", id, store.ErrNotFound)
	}
	delete(s.employees, id)
	s.employeeOrder = slices.DeleteFunc(s.employeeOrder, func(v string) bool {
		return v == id
	})

	// Possession edges dangling off a deleted employee go with it.
	s.possessionOrder = slices.DeleteFunc(s.possessionOrder, func(key string) bool {
		if s.possessions[key].EmployeeID != id {
			return false
		}
		delete(s.possessions, key)
		return true
	})
	return nil
}

func (s *Store) SaveSkill(ctx context.Context, skill *common.Skill) error {
	if skill == nil || skill.ID == "" {
		return fmt.Errorf("skill id is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.skills[skill.ID]; !exists {
		s.skillOrder = append(s.skillOrder, skill.ID)
	}
	s.skills[skill.ID] = *skill
	return nil
}

func (s *Store) SaveSkills(ctx context.Context, skills []common.Skill) error {
	for i := range skills {
		if err := s.SaveSkill(ctx, &skills[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetSkill(ctx context.Context, id string) (*common.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	skill, ok := s.skills[id]
	if !ok {
		return nil, fmt.Errorf("skill %s: %w", id, store.ErrNotFound)
	}
	return &skill, nil
}

func (s *Store) ListSkills(ctx context.Context, filter store.SkillFilter) ([]common.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(filter.NameContains)

	out := make([]common.Skill, 0, len(s.skillOrder))
	for _, id := range s.skillOrder {
		skill := s.skills[id]
		if filter.Category != "" && skill.Category != filter.Category {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(skill.Name), needle) {
			continue
		}
		out = append(out, skill)
	}
	return out, nil
}

func possessionKey(employeeID, skillID string) string {
	return employeeID + "\x00" + skillID
}

func (s *Store) SavePossession(ctx context.Context, possession common.SkillPossession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[possession.EmployeeID]; !ok {
		return fmt.Errorf("employee %s: %w", possession.EmployeeID, store.ErrNotFound)
	}
	if _, ok := s.skills[possession.SkillID]; !ok {
		return fmt.Errorf("skill %s: %w", possession.SkillID, store.ErrNotFound)
	}

	key := possessionKey(possession.EmployeeID, possession.SkillID)
	if _, exists := s.possessions[key]; !exists {
		s.possessionOrder = append(s.possessionOrder, key)
	}
	s.possessions[key] = possession
	return nil
}

func (s *Store) SavePossessions(ctx context.Context, possessions []common.SkillPossession) error {
	for _, possession := range possessions {
		if err := s.SavePossession(ctx, possession); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetEmployeeSkills(ctx context.Context, employeeID string) ([]common.EmployeeSkill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []common.EmployeeSkill
	for _, key := range s.possessionOrder {
		possession := s.possessions[key]
		if possession.EmployeeID != employeeID {
			continue
		}
		skill, ok := s.skills[possession.SkillID]
		if !ok {
			continue
		}
		out = append(out, common.EmployeeSkill{
			Skill:       skill,
			Proficiency: possession.Proficiency,
			Years:       possession.Years,
			Certified:   possession.Certified,
		})
	}
	return out, nil
}

func (s *Store) ListPossessions(ctx context.Context) ([]common.SkillPossession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]common.SkillPossession, 0, len(s.possessionOrder))
	for _, key := range s.possessionOrder {
		out = append(out, s.possessions[key])
	}
	return out, nil
}

func (s *Store) UpdateEmployeeEmbedding(ctx context.Context, id string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	employee, ok := s.employees[id]
	if !ok {
		return fmt.Errorf("employee %s: %w", id, store.ErrNotFound)
	}
	employee.Embedding = embedding
	s.employees[id] = employee
	return nil
}

func (s *Store) UpdateSkillEmbedding(ctx context.Context, id string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	skill, ok := s.skills[id]
	if !ok {
		return fmt.Errorf("skill %s: %w", id, store.ErrNotFound)
	}
	skill.Embedding = embedding
	s.skills[id] = skill
	return nil
}

func (s *Store) EmployeesMissingEmbedding(ctx context.Context, ids []string) ([]common.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	restrict := toSet(ids)

	var out []common.Employee
	for _, id := range s.employeeOrder {
		if restrict != nil {
			if _, ok := restrict[id]; !ok {
				continue
			}
		}
		employee := s.employees[id]
		if len(employee.Embedding) == 0 {
			out = append(out, employee)
		}
	}
	return out, nil
}

func (s *Store) SkillsMissingEmbedding(ctx context.Context, ids []string) ([]common.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	restrict := toSet(ids)

	var out []common.Skill
	for _, id := range s.skillOrder {
		if restrict != nil {
			if _, ok := restrict[id]; !ok {
				continue
			}
		}
		skill := s.skills[id]
		if len(skill.Embedding) == 0 {
			out = append(out, skill)
		}
	}
	return out, nil
}

func (s *Store) SimilarSkills(ctx context.Context, embedding []float32, limit int) ([]common.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		skill      common.Skill
		similarity float64
	}

	var candidates []scored
	for _, id := range s.skillOrder {
		skill := s.skills[id]
		if len(skill.Embedding) == 0 {
			continue
		}
		similarity, err := common.CosineSimilarity(embedding, skill.Embedding)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, scored{skill: skill, similarity: similarity})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].similarity > candidates[j].similarity
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]common.Skill, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.skill)
	}
	return out, nil
}

// Close is a no-op; the in-memory store holds no external resources.
func (s *Store) Close() {}

func toSet(ids []string) map[string]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}
