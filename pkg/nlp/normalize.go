package nlp

import (
	"regexp"
	"strings"
)

var (
	reNonWord = regexp.MustCompile(`[^\p{L}\p{N}+#]+`)
	reSpaces  = regexp.MustCompile(`\s+`)
)

// NormalizeText lower-cases s, turns every run of non-word characters into
// a single space and trims. "+" and "#" are kept for names like C++ or C#.
func NormalizeText(s string) string {
	s = strings.ToLower(s)
	s = reNonWord.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokens returns the unique tokens of an already normalized string.
func Tokens(normalized string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range strings.Fields(normalized) {
		out[t] = struct{}{}
	}
	return out
}

// ContainsPhrase reports whether the normalized phrase occurs in the
// normalized text as whole words: "rest api" matches "a rest api" but not
// "rest apis".
func ContainsPhrase(normalizedText, normalizedPhrase string) bool {
	if normalizedPhrase == "" {
		return false
	}
	return strings.Contains(" "+normalizedText+" ", " "+normalizedPhrase+" ")
}
