package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nwsirlp/skillgraph/internal/util"
	"github.com/nwsirlp/skillgraph/pkg/ai"
	"github.com/nwsirlp/skillgraph/pkg/common"
	"github.com/nwsirlp/skillgraph/pkg/logger"
	"github.com/nwsirlp/skillgraph/pkg/store"
)

// Embed job scopes. ScopeAll backfills every entity still missing an
// embedding; the narrow scopes restrict the job to the listed ids.
const (
	ScopeAll       = "all"
	ScopeEmployees = "employees"
	ScopeSkills    = "skills"
)

// embedBatchRetries bounds in-process retries of one embedding batch before
// the message falls back to the queue's retry path.
const embedBatchRetries = 3

// EmbedJobMsg asks the worker to backfill embeddings. Empty id lists mean
// "everything in scope that is still missing an embedding".
type EmbedJobMsg struct {
	Message     string   `json:"message"`
	Scope       string   `json:"scope"`
	EmployeeIDs []string `json:"employee_ids,omitempty"`
	SkillIDs    []string `json:"skill_ids,omitempty"`
}

// EmployeeProfileText builds the text an employee embedding is derived from.
func EmployeeProfileText(e common.Employee) string {
	parts := []string{e.Name, e.Role, e.Department}
	if e.YearsExperience > 0 {
		parts = append(parts, fmt.Sprintf("%d years of experience", e.YearsExperience))
	}
	if bio := util.CollapseSpaces(e.Bio); bio != "" {
		parts = append(parts, bio)
	}
	return strings.Join(parts, ". ")
}

// SkillProfileText builds the text a skill embedding is derived from.
func SkillProfileText(s common.Skill) string {
	parts := []string{s.Name, s.Category}
	parts = append(parts, s.Tags...)
	return strings.Join(parts, ". ")
}

// ProcessEmbedJob handles one embed_queue message: it fetches the entities
// in scope that are still missing an embedding, embeds their profile texts
// in one batch, and writes the vectors back. Entities embedded between
// publish and consume are skipped naturally by the missing-embedding query.
func ProcessEmbedJob(
	ctx context.Context,
	st store.Storage,
	aiClient ai.AIClient,
	msg string,
) error {
	data := new(EmbedJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}

	scope := data.Scope
	if scope == "" {
		scope = ScopeAll
	}

	if scope == ScopeAll || scope == ScopeEmployees {
		if err := backfillEmployees(ctx, st, aiClient, store.DedupeStrings(data.EmployeeIDs)); err != nil {
			return fmt.Errorf("employee backfill failed: %w", err)
		}
	}
	if scope == ScopeAll || scope == ScopeSkills {
		if err := backfillSkills(ctx, st, aiClient, store.DedupeStrings(data.SkillIDs)); err != nil {
			return fmt.Errorf("skill backfill failed: %w", err)
		}
	}

	return nil
}

func backfillEmployees(ctx context.Context, st store.Storage, aiClient ai.AIClient, ids []string) error {
	employees, err := st.EmployeesMissingEmbedding(ctx, ids)
	if err != nil {
		return err
	}
	if len(employees) == 0 {
		logger.Debug("[Queue] No employees missing embeddings")
		return nil
	}

	inputs := make([][]byte, len(employees))
	for i, e := range employees {
		inputs[i] = []byte(EmployeeProfileText(e))
	}

	embeddings, err := util.RetryWithContext(ctx, embedBatchRetries, func(ctx context.Context) ([][]float32, error) {
		return store.GenerateEmbeddings(ctx, aiClient, inputs)
	})
	if err != nil {
		return err
	}

	for i, e := range employees {
		if err := st.UpdateEmployeeEmbedding(ctx, e.ID, embeddings[i]); err != nil {
			return err
		}
	}

	logger.Info("[Queue] Backfilled employee embeddings", "count", len(employees))
	return nil
}

func backfillSkills(ctx context.Context, st store.Storage, aiClient ai.AIClient, ids []string) error {
	skills, err := st.SkillsMissingEmbedding(ctx, ids)
	if err != nil {
		return err
	}
	if len(skills) == 0 {
		logger.Debug("[Queue] No skills missing embeddings")
		return nil
	}

	inputs := make([][]byte, len(skills))
	for i, s := range skills {
		inputs[i] = []byte(SkillProfileText(s))
	}

	embeddings, err := util.RetryWithContext(ctx, embedBatchRetries, func(ctx context.Context) ([][]float32, error) {
		return store.GenerateEmbeddings(ctx, aiClient, inputs)
	})
	if err != nil {
		return err
	}

	for i, s := range skills {
		if err := st.UpdateSkillEmbedding(ctx, s.ID, embeddings[i]); err != nil {
			return err
		}
	}

	logger.Info("[Queue] Backfilled skill embeddings", "count", len(skills))
	return nil
}
