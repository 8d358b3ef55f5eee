package redact

import (
	"regexp"
	"unicode/utf8"
)

const (
	ScriptPreviewLen  = 200
	StoragePreviewLen = 100
)

type Replacement struct {
	Pattern *regexp.Regexp
	Replace string
}

// Assignments masks the value side of key=value / key: value pairs whose key
// looks credential-like, plus bearer/basic authorization values.
var Assignments = []Replacement{
	{
		Pattern: regexp.MustCompile(`(?i)((?:secret|token|key|password|passwd|pwd|credential)[a-z0-9_\-]*["']?\s*[:=]\s*["']?)([^\s"',;&]+)`),
		Replace: "${1}********",
	},
	{
		Pattern: regexp.MustCompile(`(?i)\b(Bearer|Basic)\s+[A-Za-z0-9._~+/=\-]+`),
		Replace: "$1 ********",
	},
}

// Preview returns the first n characters of s followed by "...". It never
// splits a UTF-8 sequence.
func Preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s + "..."
	}
	i, count := 0, 0
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i] + "..."
}

// Apply runs every replacement over s and reports whether anything changed.
func Apply(s string, reps []Replacement) (string, bool) {
	orig := s
	for _, r := range reps {
		s = r.Pattern.ReplaceAllString(s, r.Replace)
	}
	return s, s != orig
}

// Mask is Apply with the default Assignments set.
func Mask(s string) string {
	out, _ := Apply(s, Assignments)
	return out
}
