package match

import (
	"context"
	"sort"
	"time"

	"github.com/nwsirlp/skillgraph/pkg/common"
	"github.com/nwsirlp/skillgraph/pkg/logger"
	"github.com/nwsirlp/skillgraph/pkg/store"
)

// Store is the slice of store.Storage the engine reads from. Listings must
// be stably ordered; candidates with equal scores keep their store order.
type Store interface {
	ListSkills(ctx context.Context, filter store.SkillFilter) ([]common.Skill, error)
	ListEmployees(ctx context.Context, filter store.EmployeeFilter) ([]common.Employee, error)
	GetEmployeeSkills(ctx context.Context, employeeID string) ([]common.EmployeeSkill, error)
}

// Embedder turns query text into a vector comparable with stored embeddings.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error)
}

// Engine ranks employee candidates by fusing graph relevance (verified
// proficiency over skills matched to the query) with semantic relevance
// (embedding similarity). Engines are stateless between calls; a single
// Engine is safe for concurrent searches.
type Engine struct {
	store    Store
	embedder Embedder
	cfg      Config
}

// NewEngine creates a matching engine over the given store and embedder.
func NewEngine(st Store, embedder Embedder, cfg Config) *Engine {
	return &Engine{
		store:    st,
		embedder: embedder,
		cfg:      cfg,
	}
}

// SearchParams describe one matching query. Department restricts candidates
// at the store level; MinProficiency, CertifiedOnly and SkillIDs restrict
// which possession edges may contribute to the score.
type SearchParams struct {
	Query          string   `json:"query"`
	Department     string   `json:"department,omitempty"`
	MinProficiency int      `json:"min_proficiency,omitempty"`
	CertifiedOnly  bool     `json:"certified_only,omitempty"`
	SkillIDs       []string `json:"skill_ids,omitempty"`
	Limit          int      `json:"limit,omitempty"`
}

// SearchResult is the ranked answer to one search. TotalMatches counts the
// candidates before truncation to the limit.
type SearchResult struct {
	Candidates       []common.CandidateMatch `json:"candidates"`
	TotalMatches     int                     `json:"total_matches"`
	ProcessingTimeMs int64                   `json:"processing_time_ms"`
}

type relevantSkill struct {
	skill     common.Skill
	relevance float64
}

// Search runs the full matching pipeline. It never returns an error: any
// failure in the embedding call, the store queries, or the scoring loop is
// logged and answered with an empty result, so a broken collaborator
// degrades to "no results" instead of a failing request.
func (e *Engine) Search(ctx context.Context, params SearchParams) SearchResult {
	start := time.Now()

	result, err := e.search(ctx, params)
	if err != nil {
		logger.Error("[Match] Search failed", "query", params.Query, "err", err)
		result = SearchResult{Candidates: []common.CandidateMatch{}}
	}

	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	return result
}

func (e *Engine) search(ctx context.Context, params SearchParams) (SearchResult, error) {
	queryEmbedding, err := e.embedder.GenerateEmbedding(ctx, []byte(params.Query))
	if err != nil {
		return SearchResult{}, err
	}

	relevant, err := e.relevantSkills(ctx, queryEmbedding, params.SkillIDs)
	if err != nil {
		return SearchResult{}, err
	}
	if len(relevant) == 0 {
		// Nothing to match against; skip the employee round trip entirely.
		return SearchResult{Candidates: []common.CandidateMatch{}}, nil
	}

	relevanceByID := make(map[string]float64, len(relevant))
	for _, rs := range relevant {
		relevanceByID[rs.skill.ID] = rs.relevance
	}

	employees, err := e.store.ListEmployees(ctx, store.EmployeeFilter{
		Department: params.Department,
	})
	if err != nil {
		return SearchResult{}, err
	}

	var candidates []common.CandidateMatch
	for _, employee := range employees {
		candidate, err := e.scoreEmployee(ctx, employee, queryEmbedding, relevanceByID, params)
		if err != nil {
			return SearchResult{}, err
		}
		if candidate == nil {
			continue
		}
		candidates = append(candidates, *candidate)
	}

	// Stable: equal scores keep the store's employee order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MatchScore > candidates[j].MatchScore
	})

	total := len(candidates)
	limit := params.Limit
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	if candidates == nil {
		candidates = []common.CandidateMatch{}
	}

	return SearchResult{
		Candidates:   candidates,
		TotalMatches: total,
	}, nil
}

// relevantSkills scores every skill against the query embedding, keeps those
// at or above the relevance floor, and truncates to the configured top-N.
// Skills without an embedding fall back to the default relevance.
func (e *Engine) relevantSkills(
	ctx context.Context,
	queryEmbedding []float32,
	restrictTo []string,
) ([]relevantSkill, error) {
	skills, err := e.store.ListSkills(ctx, store.SkillFilter{})
	if err != nil {
		return nil, err
	}

	var restrict map[string]struct{}
	if len(restrictTo) > 0 {
		restrict = make(map[string]struct{}, len(restrictTo))
		for _, id := range restrictTo {
			restrict[id] = struct{}{}
		}
	}

	var relevant []relevantSkill
	for _, skill := range skills {
		if restrict != nil {
			if _, ok := restrict[skill.ID]; !ok {
				continue
			}
		}

		relevance := e.cfg.DefaultSkillRelevance
		if len(skill.Embedding) > 0 {
			relevance, err = common.CosineSimilarity(queryEmbedding, skill.Embedding)
			if err != nil {
				return nil, err
			}
		}
		if relevance < e.cfg.RelevanceFloor {
			continue
		}
		relevant = append(relevant, relevantSkill{skill: skill, relevance: relevance})
	}

	sort.SliceStable(relevant, func(i, j int) bool {
		return relevant[i].relevance > relevant[j].relevance
	})
	if len(relevant) > e.cfg.MaxRelevantSkills {
		relevant = relevant[:e.cfg.MaxRelevantSkills]
	}

	return relevant, nil
}

// scoreEmployee computes one candidate, or nil when no relevant skill
// matched: an employee with only semantic resemblance is not a candidate.
func (e *Engine) scoreEmployee(
	ctx context.Context,
	employee common.Employee,
	queryEmbedding []float32,
	relevanceByID map[string]float64,
	params SearchParams,
) (*common.CandidateMatch, error) {
	edges, err := e.store.GetEmployeeSkills(ctx, employee.ID)
	if err != nil {
		return nil, err
	}

	var graphScore float64
	var matched []common.MatchedSkill
	for _, edge := range edges {
		if params.MinProficiency > 0 && edge.Proficiency < params.MinProficiency {
			continue
		}
		if params.CertifiedOnly && !edge.Certified {
			continue
		}
		relevance, ok := relevanceByID[edge.Skill.ID]
		if !ok {
			continue
		}

		graphScore += float64(edge.Proficiency) / 5 * relevance
		if edge.Certified {
			graphScore += e.cfg.CertifiedBonus
		}
		matched = append(matched, common.MatchedSkill{
			Skill:       edge.Skill,
			Proficiency: edge.Proficiency,
			Relevance:   relevance,
		})
	}
	if len(matched) == 0 {
		return nil, nil
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Relevance > matched[j].Relevance
	})

	semanticScore := e.cfg.DefaultSemanticScore
	if len(employee.Embedding) > 0 {
		similarity, err := common.CosineSimilarity(queryEmbedding, employee.Embedding)
		if err != nil {
			return nil, err
		}
		semanticScore = clamp01(similarity)
	}

	graphScore = clamp01(graphScore)

	return &common.CandidateMatch{
		Employee:      employee,
		MatchScore:    clamp01(e.cfg.GraphWeight*graphScore + e.cfg.SemanticWeight*semanticScore),
		MatchedSkills: matched,
		SemanticScore: semanticScore,
		GraphScore:    graphScore,
	}, nil
}

// SkillCandidate is one result of the graph-only ranking over an explicit
// skill set.
type SkillCandidate struct {
	Employee         common.Employee        `json:"employee"`
	MatchedCount     int                    `json:"matched_count"`
	TotalProficiency int                    `json:"total_proficiency"`
	Skills           []common.EmployeeSkill `json:"skills"`
}

// CandidatesForRequiredSkills ranks employees holding any of the required
// skills by how many of them they cover, ties broken by summed proficiency.
// Like Search it recovers every failure into an empty result.
func (e *Engine) CandidatesForRequiredSkills(ctx context.Context, requiredSkillIDs []string) []SkillCandidate {
	candidates, err := e.candidatesForRequiredSkills(ctx, requiredSkillIDs)
	if err != nil {
		logger.Error("[Match] Skill candidate ranking failed", "err", err)
		return []SkillCandidate{}
	}
	return candidates
}

func (e *Engine) candidatesForRequiredSkills(ctx context.Context, requiredSkillIDs []string) ([]SkillCandidate, error) {
	required := make(map[string]struct{}, len(requiredSkillIDs))
	for _, id := range requiredSkillIDs {
		if id == "" {
			continue
		}
		required[id] = struct{}{}
	}
	if len(required) == 0 {
		return []SkillCandidate{}, nil
	}

	employees, err := e.store.ListEmployees(ctx, store.EmployeeFilter{})
	if err != nil {
		return nil, err
	}

	var candidates []SkillCandidate
	for _, employee := range employees {
		edges, err := e.store.GetEmployeeSkills(ctx, employee.ID)
		if err != nil {
			return nil, err
		}

		var matched []common.EmployeeSkill
		totalProficiency := 0
		for _, edge := range edges {
			if _, ok := required[edge.Skill.ID]; !ok {
				continue
			}
			matched = append(matched, edge)
			totalProficiency += edge.Proficiency
		}
		if len(matched) == 0 {
			continue
		}

		candidates = append(candidates, SkillCandidate{
			Employee:         employee,
			MatchedCount:     len(matched),
			TotalProficiency: totalProficiency,
			Skills:           matched,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].MatchedCount != candidates[j].MatchedCount {
			return candidates[i].MatchedCount > candidates[j].MatchedCount
		}
		return candidates[i].TotalProficiency > candidates[j].TotalProficiency
	})

	if candidates == nil {
		candidates = []SkillCandidate{}
	}
	return candidates, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
