package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nwsirlp/skillgraph/pkg/ai"
	"github.com/nwsirlp/skillgraph/pkg/common"
	"github.com/nwsirlp/skillgraph/pkg/logger"
	"github.com/nwsirlp/skillgraph/pkg/match"
	"github.com/nwsirlp/skillgraph/pkg/store"
)

// traced wraps a tool handler so every invocation lands in the trace with
// its duration, including failed ones.
func traced(tool ai.Tool, trace Tracer) ai.Tool {
	handler := tool.Handler
	tool.Handler = func(ctx context.Context, args string) (string, error) {
		start := time.Now()
		result, err := handler(ctx, args)
		RecordToolCall(trace, tool.Name, args, time.Since(start).Milliseconds(), err)
		return result, err
	}
	return tool
}

func toolSearchCandidates(engine *match.Engine, trace Tracer) ai.Tool {
	return ai.Tool{
		Name:        "search_candidates",
		Description: "Rank employees against a free-text requirement. Combines skill-graph proficiency with semantic profile similarity. Use this for open-ended staffing questions.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The requirement to match candidates against, e.g. \"python and machine learning\".",
				},
				"department": map[string]any{
					"type":        "string",
					"description": "Restrict candidates to one department (exact name).",
				},
				"min_proficiency": map[string]any{
					"type":        "integer",
					"description": "Only count skills held at this proficiency (1-5) or above.",
				},
				"certified_only": map[string]any{
					"type":        "boolean",
					"description": "Only count certified skills.",
				},
				"skill_ids": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Restrict matching to these skill IDs (from list_skills).",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of candidates to return (default: 10).",
					"default":     10,
				},
			},
			"required": []string{"query"},
		},
		Handler: func(ctx context.Context, args string) (string, error) {
			var params match.SearchParams
			if err := json.Unmarshal([]byte(args), &params); err != nil {
				return "", fmt.Errorf("failed to parse arguments: %w", err)
			}
			if strings.TrimSpace(params.Query) == "" {
				return "", errors.New("query is required and must be a non-empty string")
			}

			logger.Debug("[Tool] search_candidates", "query", params.Query, "department", params.Department)

			result := engine.Search(ctx, params)
			recordCandidates(trace, result.Candidates)

			return formatCandidates(result), nil
		},
	}
}

func toolCandidatesForSkills(engine *match.Engine, trace Tracer) ai.Tool {
	return ai.Tool{
		Name:        "candidates_for_skills",
		Description: "Rank employees holding a given set of skills by how many of the skills they cover and how proficient they are. Use this when the required skills are known by ID.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"skill_ids": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "The IDs of the required skills (from list_skills).",
				},
			},
			"required": []string{"skill_ids"},
		},
		Handler: func(ctx context.Context, args string) (string, error) {
			var params struct {
				SkillIDs []string `json:"skill_ids"`
			}
			if err := json.Unmarshal([]byte(args), &params); err != nil {
				return "", fmt.Errorf("failed to parse arguments: %w", err)
			}
			if len(params.SkillIDs) == 0 {
				return "", errors.New("skill_ids is required and must be a non-empty array")
			}
			RecordQueriedSkillIDs(trace, params.SkillIDs...)

			logger.Debug("[Tool] candidates_for_skills", "skill_ids", params.SkillIDs)

			candidates := engine.CandidatesForRequiredSkills(ctx, params.SkillIDs)
			for _, c := range candidates {
				RecordQueriedEmployeeIDs(trace, c.Employee.ID)
			}

			return formatSkillCandidates(candidates), nil
		},
	}
}

func toolGetEmployee(st store.Storage, trace Tracer) ai.Tool {
	return ai.Tool{
		Name:        "get_employee",
		Description: "Get one employee's full profile and skill list by ID. Use this when the user asks about a specific person or you need detail beyond a ranking row.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"employee_id": map[string]any{
					"type":        "string",
					"description": "The employee's ID, e.g. \"emp_x7k2m9q4w1ab\".",
				},
			},
			"required": []string{"employee_id"},
		},
		Handler: func(ctx context.Context, args string) (string, error) {
			var params struct {
				EmployeeID string `json:"employee_id"`
			}
			if err := json.Unmarshal([]byte(args), &params); err != nil {
				return "", fmt.Errorf("failed to parse arguments: %w", err)
			}
			if params.EmployeeID == "" {
				return "", errors.New("employee_id is required and must be a string")
			}
			RecordQueriedEmployeeIDs(trace, params.EmployeeID)

			logger.Debug("[Tool] get_employee", "employee_id", params.EmployeeID)

			employee, err := st.GetEmployee(ctx, params.EmployeeID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Sprintf("## Employee\nNo employee found with ID %s.\n", params.EmployeeID), nil
				}
				return "", fmt.Errorf("failed to get employee: %w", err)
			}

			edges, err := st.GetEmployeeSkills(ctx, employee.ID)
			if err != nil {
				return "", fmt.Errorf("failed to get employee skills: %w", err)
			}
			for _, edge := range edges {
				RecordQueriedSkillIDs(trace, edge.Skill.ID)
			}

			return formatEmployee(*employee, edges), nil
		},
	}
}

func toolListSkills(st store.Storage, trace Tracer) ai.Tool {
	return ai.Tool{
		Name:        "list_skills",
		Description: "List the skill catalog, optionally filtered by category or a name fragment. Use this to resolve skill names mentioned by the user into skill IDs.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"category": map[string]any{
					"type":        "string",
					"description": "Only list skills in this category (exact name).",
				},
				"name_contains": map[string]any{
					"type":        "string",
					"description": "Only list skills whose name contains this fragment (case-insensitive).",
				},
			},
			"required": []string{},
		},
		Handler: func(ctx context.Context, args string) (string, error) {
			var params struct {
				Category     string `json:"category"`
				NameContains string `json:"name_contains"`
			}
			if args != "" {
				if err := json.Unmarshal([]byte(args), &params); err != nil {
					return "", fmt.Errorf("failed to parse arguments: %w", err)
				}
			}

			logger.Debug("[Tool] list_skills", "category", params.Category, "name_contains", params.NameContains)

			skills, err := st.ListSkills(ctx, store.SkillFilter{
				Category:     params.Category,
				NameContains: params.NameContains,
			})
			if err != nil {
				return "", fmt.Errorf("failed to list skills: %w", err)
			}
			for _, skill := range skills {
				RecordQueriedSkillIDs(trace, skill.ID)
			}

			return formatSkills(skills), nil
		},
	}
}

// GetToolList returns the HR tool set the assistant can call during an
// agentic conversation. Every tool records its activity into trace.
func GetToolList(st store.Storage, engine *match.Engine, trace Tracer) []ai.Tool {
	tools := []ai.Tool{
		toolSearchCandidates(engine, trace),
		toolCandidatesForSkills(engine, trace),
		toolGetEmployee(st, trace),
		toolListSkills(st, trace),
	}
	for i := range tools {
		tools[i] = traced(tools[i], trace)
	}
	return tools
}

func recordCandidates(trace Tracer, candidates []common.CandidateMatch) {
	for _, c := range candidates {
		RecordQueriedEmployeeIDs(trace, c.Employee.ID)
		for _, m := range c.MatchedSkills {
			RecordQueriedSkillIDs(trace, m.Skill.ID)
		}
	}
}

func formatMatchedSkills(matched []common.MatchedSkill) string {
	parts := make([]string, 0, len(matched))
	for _, m := range matched {
		part := fmt.Sprintf("%s %d/5", m.Skill.Name, m.Proficiency)
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

func formatCandidates(result match.SearchResult) string {
	var b strings.Builder
	b.WriteString("## Candidates\n")
	if len(result.Candidates) == 0 {
		b.WriteString("No candidates matched the requirement.\n")
		return b.String()
	}

	for i, c := range result.Candidates {
		fmt.Fprintf(&b, "%d. [ID: %s] %s (%s, %s) score %.2f (graph %.2f, semantic %.2f)\n   Skills: %s\n",
			i+1, c.Employee.ID, c.Employee.Name, c.Employee.Department, c.Employee.Role,
			c.MatchScore, c.GraphScore, c.SemanticScore, formatMatchedSkills(c.MatchedSkills))
	}
	if result.TotalMatches > len(result.Candidates) {
		fmt.Fprintf(&b, "(%d further candidates truncated)\n", result.TotalMatches-len(result.Candidates))
	}
	return b.String()
}

func formatSkillCandidates(candidates []match.SkillCandidate) string {
	var b strings.Builder
	b.WriteString("## Candidates by Required Skills\n")
	if len(candidates) == 0 {
		b.WriteString("No employee holds any of the required skills.\n")
		return b.String()
	}

	for i, c := range candidates {
		parts := make([]string, 0, len(c.Skills))
		for _, s := range c.Skills {
			part := fmt.Sprintf("%s %d/5", s.Skill.Name, s.Proficiency)
			if s.Certified {
				part += " (certified)"
			}
			parts = append(parts, part)
		}
		fmt.Fprintf(&b, "%d. [ID: %s] %s (%s, %s) covers %d skills, total proficiency %d\n   Skills: %s\n",
			i+1, c.Employee.ID, c.Employee.Name, c.Employee.Department, c.Employee.Role,
			c.MatchedCount, c.TotalProficiency, strings.Join(parts, ", "))
	}
	return b.String()
}

func formatEmployee(employee common.Employee, edges []common.EmployeeSkill) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Employee [ID: %s]\n", employee.ID)
	fmt.Fprintf(&b, "- Name: %s\n- Department: %s\n- Role: %s\n", employee.Name, employee.Department, employee.Role)
	if employee.YearsExperience > 0 {
		fmt.Fprintf(&b, "- Years of experience: %d\n", employee.YearsExperience)
	}
	if bio := strings.TrimSpace(employee.Bio); bio != "" {
		fmt.Fprintf(&b, "- Bio: %s\n", strings.ReplaceAll(bio, "\n", " "))
	}

	b.WriteString("\n### Skills\n")
	if len(edges) == 0 {
		b.WriteString("No skills recorded.\n")
		return b.String()
	}
	for i, edge := range edges {
		line := fmt.Sprintf("%d. [ID: %s] %s (%s) %d/5", i+1, edge.Skill.ID, edge.Skill.Name, edge.Skill.Category, edge.Proficiency)
		if edge.Years > 0 {
			line += fmt.Sprintf(", %.1f years", edge.Years)
		}
		if edge.Certified {
			line += ", certified"
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func formatSkills(skills []common.Skill) string {
	var b strings.Builder
	b.WriteString("## Skills\n")
	if len(skills) == 0 {
		b.WriteString("No skills matched the filter.\n")
		return b.String()
	}
	for i, skill := range skills {
		line := fmt.Sprintf("%d. [ID: %s] %s (%s)", i+1, skill.ID, skill.Name, skill.Category)
		if len(skill.Tags) > 0 {
			line += ": " + strings.Join(skill.Tags, ", ")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
