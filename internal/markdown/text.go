package markdown

import (
	"strings"
	"unicode"
)

// WordsPerMinute is the reading speed used by ReadingTime.
const WordsPerMinute = 200

// ReadingTime estimates the minutes needed to read text, rounded up. CJK
// ideographs count as one word each.
func ReadingTime(text string) int {
	words := CountWords(text)
	if words == 0 {
		return 0
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

// CountWords counts whitespace separated words plus individual CJK ideographs.
func CountWords(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			count++
			inWord = false
		case unicode.IsSpace(r):
			inWord = false
		default:
			if !inWord {
				count++
				inWord = true
			}
		}
	}
	return count
}

// Excerpt returns the first n runes of body with newlines replaced by spaces.
func Excerpt(body string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(body)
	if len(runes) > n {
		runes = runes[:n]
	}
	return strings.NewReplacer("\r\n", " ", "\n", " ").Replace(string(runes))
}
