package eval

import (
	"regexp"
	"strings"
)

var (
	nonAlnumRE = regexp.MustCompile(`[^a-z0-9 ]`)
	articleRE  = regexp.MustCompile(`\b(a|an|the)\b`)
)

// NormalizeAnswer canonicalizes an answer string for comparison: lowercase,
// punctuation stripped, whole-word articles removed, whitespace collapsed.
// Idempotent; ASCII semantics only.
func NormalizeAnswer(s string) string {
	s = strings.ToLower(s)
	s = nonAlnumRE.ReplaceAllString(s, "")
	s = articleRE.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Tokenize splits an answer into normalized comparison tokens.
func Tokenize(s string) []string {
	return strings.Fields(NormalizeAnswer(s))
}
