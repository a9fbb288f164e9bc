package ai

import (
	"testing"
)

func TestUnmarshalFlexible_ObjectVariants(t *testing.T) {
	type intent struct {
		Query      string `json:"query"`
		Department string `json:"department,omitempty"`
	}

	tests := []struct {
		name  string
		input string
		want  intent
	}{
		{
			name:  "valid json object",
			input: `{"query":"python"}`,
			want:  intent{Query: "python"},
		},
		{
			name:  "unquoted key and single quotes",
			input: `{query: 'python'}`,
			want:  intent{Query: "python"},
		},
		{
			name:  "trailing comma",
			input: `{"query":"python",}`,
			want:  intent{Query: "python"},
		},
		{
			name:  "missing endbracket",
			input: `{"query":"python`,
			want:  intent{Query: "python"},
		},
		{
			name:  "stringified invalid json object",
			input: `"{query: 'python'}"`,
			want:  intent{Query: "python"},
		},
		{
			name:  "duplicate leading brace",
			input: "{\n{\n  \"query\": \"python\"\n}\n",
			want:  intent{Query: "python"},
		},
		{
			name:  "duplicate leading brace no newlines",
			input: `{ { "query": "python" }`,
			want:  intent{Query: "python"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got intent
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got.Query != tc.want.Query || got.Department != tc.want.Department {
				t.Fatalf("UnmarshalFlexible() got = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestUnmarshalFlexible_ArrayVariants(t *testing.T) {
	type intent struct {
		Query string `json:"query"`
	}

	input := `[{query:'go'},{query:'rust',}]`
	var got []intent
	if err := UnmarshalFlexible(input, &got); err != nil {
		t.Fatalf("UnmarshalFlexible() error = %v", err)
	}
	if len(got) != 2 || got[0].Query != "go" || got[1].Query != "rust" {
		t.Fatalf("UnmarshalFlexible() got = %+v, want two intents go,rust", got)
	}
}

func TestUnmarshalFlexible_Unrecoverable(t *testing.T) {
	type intent struct {
		Query string `json:"query"`
	}

	var got intent
	if err := UnmarshalFlexible("hello", &got); err == nil {
		t.Fatalf("UnmarshalFlexible() expected error for unrecoverable input")
	}
}

func TestUnmarshalFlexible_FullIntentExamples(t *testing.T) {
	type intent struct {
		Query          string   `json:"query"`
		Department     string   `json:"department"`
		MinProficiency int      `json:"min_proficiency"`
		SkillNames     []string `json:"skill_names"`
	}

	tests := []struct {
		name  string
		input string
		want  intent
	}{
		{
			name:  "stringified full intent",
			input: `"{ \"query\": \"backend engineer\", \"department\": \"Platform\", \"min_proficiency\": 3, \"skill_names\": [ \"Go\", \"PostgreSQL\" ] }"`,
			want:  intent{Query: "backend engineer", Department: "Platform", MinProficiency: 3, SkillNames: []string{"Go", "PostgreSQL"}},
		},
		{
			name:  "stringified with newlines",
			input: `"{\n  \"query\": \"backend engineer\",\n  \"department\": \"Platform\",\n  \"min_proficiency\": 3,\n  \"skill_names\": [\"Go\", \"PostgreSQL (incl. pgvector)\"]\n  }\n"`,
			want:  intent{Query: "backend engineer", Department: "Platform", MinProficiency: 3, SkillNames: []string{"Go", "PostgreSQL (incl. pgvector)"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got intent
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got.Query != tc.want.Query || got.Department != tc.want.Department || got.MinProficiency != tc.want.MinProficiency {
				t.Fatalf("UnmarshalFlexible() got = %+v, want %+v", got, tc.want)
			}
			if len(got.SkillNames) != len(tc.want.SkillNames) {
				t.Fatalf("UnmarshalFlexible() skill_names length got = %d, want %d", len(got.SkillNames), len(tc.want.SkillNames))
			}
			for i := range got.SkillNames {
				if got.SkillNames[i] != tc.want.SkillNames[i] {
					t.Fatalf("UnmarshalFlexible() skill_names[%d] = %q, want %q", i, got.SkillNames[i], tc.want.SkillNames[i])
				}
			}
		})
	}
}
