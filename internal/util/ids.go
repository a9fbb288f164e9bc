package util

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// idAlphabet keeps public ids lowercase so they survive case-folding in
// URLs, CSV files, and chat transcripts.
const (
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength   = 12

	employeeIDPrefix = "emp_"
	skillIDPrefix    = "skl_"
)

// NewEmployeeID generates a public employee id of the form "emp_x7k2...".
func NewEmployeeID() (string, error) {
	return newPrefixedID(employeeIDPrefix)
}

// NewSkillID generates a public skill id of the form "skl_x7k2...".
func NewSkillID() (string, error) {
	return newPrefixedID(skillIDPrefix)
}

func newPrefixedID(prefix string) (string, error) {
	id, err := gonanoid.Generate(idAlphabet, idLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return prefix + id, nil
}

// IsEmployeeID reports whether id carries the employee prefix. Used to tell
// citation tokens apart without a store lookup.
func IsEmployeeID(id string) bool {
	return strings.HasPrefix(id, employeeIDPrefix)
}

// IsSkillID reports whether id carries the skill prefix.
func IsSkillID(id string) bool {
	return strings.HasPrefix(id, skillIDPrefix)
}
