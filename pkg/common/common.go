package common

// Employee represents a person in the organization. Employees are nodes in
// the skill graph and candidates in matching queries.
//
// The embedding is derived from the employee's profile text (name, role,
// department, bio) and is used for semantic scoring. It is optional: an
// employee without an embedding still participates in graph-based matching.
// Embeddings never leave the backend, so they are excluded from JSON.
type Employee struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Department      string    `json:"department"`
	Role            string    `json:"role"`
	Bio             string    `json:"bio,omitempty"`
	YearsExperience int       `json:"years_experience,omitempty"`
	Embedding       []float32 `json:"-"`
}

// Skill represents a competency that employees can possess, such as a
// programming language, a tool, or a soft skill. Skills are the second node
// type in the skill graph.
//
// The embedding is derived from the skill's name, category, and tags and is
// used to score the skill's relevance against free-text queries.
type Skill struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags,omitempty"`
	Embedding []float32 `json:"-"`
}

// SkillPossession is an edge between an employee and a skill. Proficiency is
// on a 1 (novice) to 5 (expert) scale; writes are validated at the API and
// import boundaries, so consumers can assume the range holds.
type SkillPossession struct {
	EmployeeID  string  `json:"employee_id"`
	SkillID     string  `json:"skill_id"`
	Proficiency int     `json:"proficiency"`
	Years       float64 `json:"years,omitempty"`
	Certified   bool    `json:"certified"`
}

// EmployeeSkill is a possession edge joined with the skill at its far end,
// the shape stores return when a consumer needs an employee's skills with
// their details in one pass.
type EmployeeSkill struct {
	Skill       Skill   `json:"skill"`
	Proficiency int     `json:"proficiency"`
	Years       float64 `json:"years,omitempty"`
	Certified   bool    `json:"certified"`
}

// MatchedSkill is one skill that contributed to a candidate's score: the
// skill itself, the candidate's proficiency in it, and the relevance of the
// skill to the query.
type MatchedSkill struct {
	Skill       Skill   `json:"skill"`
	Proficiency int     `json:"proficiency"`
	Relevance   float64 `json:"relevance"`
}

// CandidateMatch is one ranked result of a matching query. MatchScore is the
// blended score in [0, 1]; SemanticScore and GraphScore are the two
// components it was blended from, kept separate so clients can explain the
// ranking.
type CandidateMatch struct {
	Employee      Employee       `json:"employee"`
	MatchScore    float64        `json:"match_score"`
	MatchedSkills []MatchedSkill `json:"matched_skills"`
	SemanticScore float64        `json:"semantic_score"`
	GraphScore    float64        `json:"graph_score"`
}
