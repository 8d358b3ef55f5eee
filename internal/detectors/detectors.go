package detectors

import (
	"regexp"
	"sync"

	"github.com/accrava/secretsweep/internal/types"
)

// Keywords is the default catalog in scan order. client_secret appears twice
// on purpose: each catalog entry reports independently.
var Keywords = []string{
	// api keys
	"client_secret",
	"api_key",
	"private_key",
	"secret_key",
	"access_token",
	"refresh_token",

	// payment providers
	"sk_live_",
	"pk_live_",
	"sk_test_",
	"pk_test_",
	"client_secret",

	// auth
	"Basic ",
	"Bearer ",
	"Authorization",
	"password",
	"passwd",
	"pwd",

	// database
	"database_url",
	"db_password",
	"connection_string",

	// cloud
	"aws_secret",
	"google_api_key",
	"azure_key",

	// catch-all
	"secret",
	"token",
	"key",
	"credential",
}

// HighRisk and MediumRisk are matched as case-insensitive substrings of a keyword.
var (
	HighRisk   = []string{"client_secret", "sk_live_", "pk_live_", "private_key"}
	MediumRisk = []string{"api_key", "password", "Basic "}
)

// Registry is an immutable keyword catalog with its severity sub-lists and
// the compiled matchers for each entry. Safe for concurrent use.
type Registry struct {
	keywords []string
	high     []string
	medium   []string
	patterns []*regexp.Regexp
}

// New builds a registry. Keywords are matched as literals: regexp
// metacharacters in an entry are escaped before compiling.
func New(keywords, high, medium []string) *Registry {
	r := &Registry{
		keywords: append([]string(nil), keywords...),
		high:     append([]string(nil), high...),
		medium:   append([]string(nil), medium...),
		patterns: make([]*regexp.Regexp, len(keywords)),
	}
	for i, kw := range keywords {
		r.patterns[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(kw))
	}
	return r
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry built from Keywords, HighRisk and MediumRisk.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = New(Keywords, HighRisk, MediumRisk)
	})
	return defaultReg
}

// Keywords returns a copy of the catalog in scan order.
func (r *Registry) Keywords() []string {
	return append([]string(nil), r.keywords...)
}

// Len is the number of catalog entries, duplicates included.
func (r *Registry) Len() int { return len(r.keywords) }

// FindIssues runs the default registry over text.
func FindIssues(text, source string) []types.Issue {
	return Default().FindIssues(text, source)
}

// Classify classifies keyword with the default registry.
func Classify(keyword string) types.Severity {
	return Default().Classify(keyword)
}
