package ignore

import (
	"os"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// FileName is the default ignore file looked up in the working directory.
const FileName = ".secretsweepignore"

// Matcher holds gitignore-style patterns evaluated against unit labels.
// A storage label "localStorage.theme" is matched as the path
// "localStorage/theme"; script labels are matched as a single component.
type Matcher struct{ ps []gitignore.Pattern }

// Load reads patterns from path. A missing file yields an empty matcher.
func Load(path string) (Matcher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Matcher{}, nil
		}
		return Matcher{}, err
	}
	return Parse(string(data)), nil
}

// Parse builds a matcher from ignore-file text.
func Parse(text string) Matcher {
	var m Matcher
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.ps = append(m.ps, gitignore.ParsePattern(line, nil))
	}
	return m
}

// Empty reports whether no patterns are loaded.
func (m Matcher) Empty() bool { return len(m.ps) == 0 }

// Match reports whether label is ignored. Later patterns override earlier
// ones, so "!localStorage/keep" re-includes a key.
func (m Matcher) Match(label string) bool {
	parts := splitLabel(label)
	ignored := false
	for _, pat := range m.ps {
		switch pat.Match(parts, false) {
		case gitignore.Exclude:
			ignored = true
		case gitignore.Include:
			ignored = false
		}
	}
	return ignored
}

func splitLabel(label string) []string {
	// storage keys may themselves contain dots; only the namespace separator is split
	if ns, key, ok := strings.Cut(label, "."); ok && (ns == "localStorage" || ns == "sessionStorage") {
		return []string{ns, key}
	}
	return strings.Split(label, "/")
}

// Pattern returns the ignore-file line that matches exactly label.
func Pattern(label string) string {
	return "/" + strings.Join(splitLabel(label), "/")
}
