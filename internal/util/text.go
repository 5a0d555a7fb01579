package util

import "strings"

func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

// NormalizeContent sanitizes fact content and trims surrounding whitespace.
// Two facts are considered duplicates when their normalized content is equal.
func NormalizeContent(value string) string {
	return strings.TrimSpace(SanitizePostgresText(value))
}
