package util

import (
	"context"
	"errors"
	"regexp"

	"github.com/nwsirlp/skillgraph/pkg/store"
)

var citationIDPattern = regexp.MustCompile(`\[\[([^][]+)\]\]`)

// CitationData is one resolved employee citation, shaped for the candidate
// card the UI renders under a chat answer.
type CitationData struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

// ExtractCitationIDs returns the unique ids cited as [[id]] in the text, in
// first-appearance order.
func ExtractCitationIDs(text string) []string {
	matches := citationIDPattern.FindAllStringSubmatch(text, -1)
	ids := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		if len(match) < 2 {
			continue
		}

		id := match[1]
		if id == "" {
			continue
		}
		if _, exists := seen[id]; exists {
			continue
		}

		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids
}

// ResolveEmployeeCitations resolves the employee ids cited in a chat answer
// against the store. Ids the model invented or that no longer exist are
// dropped silently; the answer text keeps its brackets either way.
func ResolveEmployeeCitations(ctx context.Context, st store.Storage, text string) ([]CitationData, error) {
	citationIDs := ExtractCitationIDs(text)
	resolved := make([]CitationData, 0, len(citationIDs))

	for _, id := range citationIDs {
		employee, err := st.GetEmployee(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}

		resolved = append(resolved, CitationData{
			ID:         employee.ID,
			Name:       employee.Name,
			Department: employee.Department,
			Role:       employee.Role,
		})
	}

	return resolved, nil
}
