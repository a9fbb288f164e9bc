package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/nwsirlp/skillgraph/pkg/common"
	"github.com/nwsirlp/skillgraph/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

const upsertSkillSQL = `
INSERT INTO skills (id, name, category, tags, embedding)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET name      = EXCLUDED.name,
    category  = EXCLUDED.category,
    tags      = EXCLUDED.tags,
    embedding = COALESCE(EXCLUDED.embedding, skills.embedding);
`

const selectSkillSQL = `
SELECT id, name, category, tags, embedding
FROM skills
WHERE id = $1;
`

const listSkillsSQL = `
SELECT id, name, category, tags, embedding
FROM skills
WHERE ($1 = '' OR category = $1)
  AND ($2 = '' OR name ILIKE '%' || $2 || '%')
ORDER BY seq;
`

const skillUpsertChunk = 200

func (s *Store) SaveSkill(ctx context.Context, skill *common.Skill) error {
	if skill == nil || skill.ID == "" {
		return fmt.Errorf("skill id is empty")
	}

	_, err := s.conn.Exec(ctx, upsertSkillSQL,
		skill.ID,
		skill.Name,
		skill.Category,
		skill.Tags,
		embeddingParam(skill.Embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to save skill %s: %w", skill.ID, err)
	}
	return nil
}

func (s *Store) SaveSkills(ctx context.Context, skills []common.Skill) error {
	return store.ChunkRange(len(skills), skillUpsertChunk, func(start, end int) error {
		tx, err := s.conn.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		for i := start; i < end; i++ {
			skill := skills[i]
			_, err := tx.Exec(ctx, upsertSkillSQL,
				skill.ID,
				skill.Name,
				skill.Category,
				skill.Tags,
				embeddingParam(skill.Embedding),
			)
			if err != nil {
				return fmt.Errorf("failed to save skill %s: %w", skill.ID, err)
			}
		}
		return tx.Commit(ctx)
	})
}

func scanSkill(row pgxv5.Row) (*common.Skill, error) {
	var skill common.Skill
	var embedding *pgvector.Vector
	err := row.Scan(
		&skill.ID,
		&skill.Name,
		&skill.Category,
		&skill.Tags,
		&embedding,
	)
	if err != nil {
		return nil, err
	}
	skill.Embedding = embeddingValue(embedding)
	return &skill, nil
}

func (s *Store) GetSkill(ctx context.Context, id string) (*common.Skill, error) {
	skill, err := scanSkill(s.conn.QueryRow(ctx, selectSkillSQL, id))
	if err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return nil, fmt.Errorf("skill %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get skill %s: %w", id, err)
	}
	return skill, nil
}

func (s *Store) ListSkills(ctx context.Context, filter store.SkillFilter) ([]common.Skill, error) {
	rows, err := s.conn.Query(ctx, listSkillsSQL, filter.Category, filter.NameContains)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
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
