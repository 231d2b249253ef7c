// Package textutil has small string helpers shared by the CLI and logging
// paths.
package textutil

// Truncate shortens a string to maxLen runes, appending "..." if truncated.
// Counting runes keeps multibyte label text from being split mid-character.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
