package detectors

import "github.com/accrava/secretsweep/internal/types"

// FindIssues returns one issue per catalog entry that occurs in text, in
// catalog order. Count is the number of non-overlapping case-insensitive
// occurrences. Empty text yields nil.
func (r *Registry) FindIssues(text, source string) []types.Issue {
	if text == "" {
		return nil
	}
	var out []types.Issue
	for i, re := range r.patterns {
		n := len(re.FindAllStringIndex(text, -1))
		if n == 0 {
			continue
		}
		kw := r.keywords[i]
		out = append(out, types.Issue{
			Keyword:  kw,
			Count:    n,
			Source:   source,
			Severity: r.Classify(kw),
		})
	}
	return out
}
