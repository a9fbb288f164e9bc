package pgx

import (
	"context"
	"fmt"

	"github.com/nwsirlp/skillgraph/pkg/common"
	"github.com/nwsirlp/skillgraph/pkg/store"

	"github.com/pgvector/pgvector-go"
)

const upsertPossessionSQL = `
INSERT INTO skill_possessions (employee_id, skill_id, proficiency, years, certified)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (employee_id, skill_id) DO UPDATE
SET proficiency = EXCLUDED.proficiency,
    years       = EXCLUDED.years,
    certified   = EXCLUDED.certified;
`

const employeeSkillsSQL = `
SELECT s.id, s.name, s.category, s.tags, s.embedding,
       p.proficiency, p.years, p.certified
FROM skill_possessions p
JOIN skills s ON s.id = p.skill_id
WHERE p.employee_id = $1
ORDER BY p.seq;
`

const listPossessionsSQL = `
SELECT employee_id, skill_id, proficiency, years, certified
FROM skill_possessions
ORDER BY seq;
`

const possessionUpsertChunk = 500

func (s *Store) SavePossession(ctx context.Context, possession common.SkillPossession) error {
	_, err := s.conn.Exec(ctx, upsertPossessionSQL,
		possession.EmployeeID,
		possession.SkillID,
		possession.Proficiency,
		possession.Years,
		possession.Certified,
	)
	if err != nil {
		return fmt.Errorf("failed to save possession %s -> %s: %w",
			possession.EmployeeID, possession.SkillID, err)
	}
	return nil
}

func (s *Store) SavePossessions(ctx context.Context, possessions []common.SkillPossession) error {
	return store.ChunkRange(len(possessions), possessionUpsertChunk, func(start, end int) error {
		tx, err := s.conn.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		for i := start; i < end; i++ {
			possession := possessions[i]
			_, err := tx.Exec(ctx, upsertPossessionSQL,
				possession.EmployeeID,
				possession.SkillID,
				possession.Proficiency,
				possession.Years,
				possession.Certified,
			)
			if err != nil {
				return fmt.Errorf("failed to save possession %s -> %s: %w",
					possession.EmployeeID, possession.SkillID, err)
			}
		}
		return tx.Commit(ctx)
	})
}

func (s *Store) GetEmployeeSkills(ctx context.Context, employeeID string) ([]common.EmployeeSkill, error) {
	rows, err := s.conn.Query(ctx, employeeSkillsSQL, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get skills for employee %s: %w", employeeID, err)
	}
	defer rows.Close()

	var out []common.EmployeeSkill
	for rows.Next() {
		var es common.EmployeeSkill
		var embedding *pgvector.Vector
		err := rows.Scan(
			&es.Skill.ID,
			&es.Skill.Name,
			&es.Skill.Category,
			&es.Skill.Tags,
			&embedding,
			&es.Proficiency,
			&es.Years,
			&es.Certified,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee skill: %w", err)
		}
		es.Skill.Embedding = embeddingValue(embedding)
		out = append(out, es)
	}
	return out, rows.Err()
}

func (s *Store) ListPossessions(ctx context.Context) ([]common.SkillPossession, error) {
	rows, err := s.conn.Query(ctx, listPossessionsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list possessions: %w", err)
	}
	defer rows.Close()

	var out []common.SkillPossession
	for rows.Next() {
		var possession common.SkillPossession
		err := rows.Scan(
			&possession.EmployeeID,
			&possession.SkillID,
			&possession.Proficiency,
			&possession.Years,
			&possession.Certified,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan possession: %w", err)
		}
		out = append(out, possession)
	}
	return out, rows.Err()
}
