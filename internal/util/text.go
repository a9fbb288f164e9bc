package util

import "strings"

// SanitizePostgresText strips byte sequences Postgres rejects in text
// columns: invalid UTF-8 and NUL bytes. Imported bios and CSV cells are the
// usual offenders.
func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

// CollapseSpaces trims value and collapses internal whitespace runs to a
// single space. Used to normalize names before matching them across
// datasets and to keep markdown table cells on one line.
func CollapseSpaces(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
