package pgx

import (
	"context"
	"fmt"

	"github.com/nwsirlp/skillgraph/pkg/common"
	"github.com/nwsirlp/skillgraph/pkg/store"

	"github.com/pgvector/pgvector-go"
)

const updateEmployeeEmbeddingSQL = `
UPDATE employees SET embedding = $2 WHERE id = $1;
`

const updateSkillEmbeddingSQL = `
UPDATE skills SET embedding = $2 WHERE id = $1;
`

const employeesMissingEmbeddingSQL = `
SELECT id, name, department, role, bio, years_experience, embedding
FROM employees
WHERE embedding IS NULL
  AND (cardinality($1::text[]) = 0 OR id = ANY($1::text[]))
ORDER BY seq;
`

const skillsMissingEmbeddingSQL = `
SELECT id, name, category, tags, embedding
FROM skills
WHERE embedding IS NULL
  AND (cardinality($1::text[]) = 0 OR id = ANY($1::text[]))
ORDER BY seq;
`

// similarSkillsSQL ranks by pgvector cosine distance; <=> returns 1 - cosine
// similarity, so ascending distance is descending similarity.
const similarSkillsSQL = `
SELECT id, name, category, tags, embedding
FROM skills
WHERE embedding IS NOT NULL
ORDER BY embedding <=> $1
LIMIT $2;
`

func (s *Store) UpdateEmployeeEmbedding(ctx context.Context, id string, embedding []float32) error {
	tag, err := s.conn.Exec(ctx, updateEmployeeEmbeddingSQL, id, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("failed to update embedding for employee %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("employee %s: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) UpdateSkillEmbedding(ctx context.Context, id string, embedding []float32) error {
	tag, err := s.conn.Exec(ctx, updateSkillEmbeddingSQL, id, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("failed to update embedding for skill %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("skill %s: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) EmployeesMissingEmbedding(ctx context.Context, ids []string) ([]common.Employee, error) {
	rows, err := s.conn.Query(ctx, employeesMissingEmbeddingSQL, store.DedupeStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list employees missing embedding: %w", err)
	}
	defer rows.Close()

	var out []common.Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		out = append(out, *employee)
	}
	return out, rows.Err()
}

func (s *Store) SkillsMissingEmbedding(ctx context.Context, ids []string) ([]common.Skill, error) {
	rows, err := s.conn.Query(ctx, skillsMissingEmbeddingSQL, store.DedupeStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list skills missing embedding: %w", err)
	}
	defer rows.Close()

	var out []common.Skill
	for rows.Next() {
		skill, err := scanSkill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		out = append(out, *skill)
	}
	return out, rows.Err()
}

func (s *Store) SimilarSkills(ctx context.Context, embedding []float32, limit int) ([]common.Skill, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.conn.Query(ctx, similarSkillsSQL, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search similar skills: %w", err)
	}
	defer rows.Close()

	var out []common.Skill
	for rows.Next() {
		skill, err := scanSkill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		out = append(out, *skill)
	}
	return out, rows.Err()
}
