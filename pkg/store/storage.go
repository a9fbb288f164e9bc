package store

import (
	"context"
	"errors"

	"github.com/nwsirlp/skillgraph/pkg/common"
)

// ErrNotFound is returned when a requested employee or skill does not exist.
var ErrNotFound = errors.New("not found")

// EmployeeFilter narrows employee listings. Zero values mean "no filter";
// string matching is exact and case-sensitive, the way the UI sends it.
type EmployeeFilter struct {
	Department string
	Role       string
}

// SkillFilter narrows skill listings. NameContains matches case-insensitively
// so chat tools can resolve user-typed skill names.
type SkillFilter struct {
	Category     string
	NameContains string
}

// Storage is the persistence surface for the skill graph. Implementations
// must return listings in a stable order (insertion order for the in-memory
// backend, primary-key order for Postgres), because the matching engine's
// tie-break contract relies on it.
//
// Save methods upsert: writing an id that already exists replaces the row.
// Bulk variants exist for dataset seeding and are free to chunk internally.
type Storage interface {
	SaveEmployee(ctx context.Context, employee *common.Employee) error
	SaveEmployees(ctx context.Context, employees []common.Employee) error
	GetEmployee(ctx context.Context, id string) (*common.Employee, error)
	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]common.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error

	SaveSkill(ctx context.Context, skill *common.Skill) error
	SaveSkills(ctx context.Context, skills []common.Skill) error
	GetSkill(ctx context.Context, id string) (*common.Skill, error)
	ListSkills(ctx context.Context, filter SkillFilter) ([]common.Skill, error)

	SavePossession(ctx context.Context, possession common.SkillPossession) error
	SavePossessions(ctx context.Context, possessions []common.SkillPossession) error
	GetEmployeeSkills(ctx context.Context, employeeID string) ([]common.EmployeeSkill, error)
	ListPossessions(ctx context.Context) ([]common.SkillPossession, error)

	UpdateEmployeeEmbedding(ctx context.Context, id string, embedding []float32) error
	UpdateSkillEmbedding(ctx context.Context, id string, embedding []float32) error
	EmployeesMissingEmbedding(ctx context.Context, ids []string) ([]common.Employee, error)
	SkillsMissingEmbedding(ctx context.Context, ids []string) ([]common.Skill, error)
	SimilarSkills(ctx context.Context, embedding []float32, limit int) ([]common.Skill, error)

	Close()
}
