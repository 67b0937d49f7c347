package core

import "strings"

// CategoryKey is the comparison key for category labels. Categories are
// matched trimmed and case-insensitively everywhere: aggregation, budgets,
// spending limits and goal tracking.
func CategoryKey(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// SameCategory reports whether two labels name the same category.
func SameCategory(a, b string) bool {
	return CategoryKey(a) == CategoryKey(b)
}

// DisplayCategory returns the label as shown to users.
func DisplayCategory(category string) string {
	return strings.TrimSpace(category)
}
