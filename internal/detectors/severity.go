package detectors

import (
	"strings"

	"github.com/accrava/secretsweep/internal/types"
)

// Classify maps a keyword to a severity. The high-risk list is checked first,
// so a keyword matching both lists is HIGH. Anything else is LOW.
func (r *Registry) Classify(keyword string) types.Severity {
	kw := strings.ToLower(keyword)
	if containsAny(kw, r.high) {
		return types.SevHigh
	}
	if containsAny(kw, r.medium) {
		return types.SevMed
	}
	return types.SevLow
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
