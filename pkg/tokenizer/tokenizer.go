package tokenizer

import (
	"strings"
	"unicode/utf8"
)

// CountTokens provides a rough token count estimate (~0.75 words per token).
func CountTokens(text string) int {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	return max(len(words)*4/3, 1)
}

// TruncateRunes returns the first n characters of s without splitting a
// multi-byte rune.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
