package validators

import "strings"

// SanitizeString trims input and cuts it to at most maxLen bytes without
// splitting a rune.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 || len(trimmed) <= maxLen {
		return trimmed
	}
	cut := 0
	for i := range trimmed {
		if i > maxLen {
			break
		}
		cut = i
	}
	return trimmed[:cut]
}
