package match

// Config holds the tuning values of the matching engine. The defaults are
// demo-tuned product decisions rather than derived values, so they are kept
// overridable instead of hard-coded. Every Engine receives its Config at
// construction; there is no package-level state, which keeps concurrent
// searches with different configurations safe.
type Config struct {
	// DefaultSkillRelevance is assumed for skills without an embedding, so
	// never-embedded skills still have a non-zero chance of matching via
	// graph signals.
	DefaultSkillRelevance float64

	// DefaultSemanticScore is assumed for employees without an embedding.
	DefaultSemanticScore float64

	// RelevanceFloor drops skills below this query relevance.
	RelevanceFloor float64

	// MaxRelevantSkills bounds the per-employee scoring work.
	MaxRelevantSkills int

	// GraphWeight and SemanticWeight blend the two sub-scores. Graph is
	// weighted higher because it is grounded in verified proficiency and
	// certification rather than a coarse semantic proxy.
	GraphWeight    float64
	SemanticWeight float64

	// CertifiedBonus is added once per certified matched skill. Additive,
	// not multiplicative: certification is a binary trust signal, not a
	// magnitude.
	CertifiedBonus float64

	// DefaultLimit caps the result list when the caller passes no limit.
	DefaultLimit int
}

// DefaultConfig returns the demo tuning.
func DefaultConfig() Config {
	return Config{
		DefaultSkillRelevance: 0.3,
		DefaultSemanticScore:  0.5,
		RelevanceFloor:        0.4,
		MaxRelevantSkills:     15,
		GraphWeight:           0.6,
		SemanticWeight:        0.4,
		CertifiedBonus:        0.1,
		DefaultLimit:          10,
	}
}
