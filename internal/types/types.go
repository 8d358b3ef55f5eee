package types

import (
	"strconv"
	"strings"
	"time"
)

// Severity is a coarse-grained risk level for an issue.
type Severity string

const (
	SevLow  Severity = "LOW"
	SevMed  Severity = "MEDIUM"
	SevHigh Severity = "HIGH"
)

// Rank orders severities for threshold comparisons. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SevHigh:
		return 3
	case SevMed:
		return 2
	case SevLow:
		return 1
	}
	return 0
}

// ParseSeverity accepts any casing of low/medium/high. Empty or unknown input returns "".
func ParseSeverity(s string) Severity {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH":
		return SevHigh
	case "MEDIUM", "MED":
		return SevMed
	case "LOW":
		return SevLow
	}
	return ""
}

// Issue records how often one catalog keyword occurred in one unit of text.
type Issue struct {
	Keyword  string   `json:"keyword" toml:"keyword"`
	Count    int      `json:"count" toml:"count"`
	Source   string   `json:"source" toml:"source"`
	Severity Severity `json:"severity" toml:"severity"`
}

// UnitKind says where a unit of text came from.
type UnitKind string

const (
	KindInlineScript   UnitKind = "inline_script"
	KindExternalScript UnitKind = "external_script"
	KindLocalStorage   UnitKind = "localStorage"
	KindSessionStorage UnitKind = "sessionStorage"
)

// IsStorage reports whether the kind is one of the key/value stores.
func (k UnitKind) IsStorage() bool {
	return k == KindLocalStorage || k == KindSessionStorage
}

// ScanUnit is one piece of text handed to the matcher by a collector.
// Err is set when the collector could not read the unit's content.
type ScanUnit struct {
	Kind      UnitKind
	Label     string
	Namespace string
	Key       string
	Src       string
	Content   string
	Err       error
}

// Finding is the per-unit outcome of a scan.
type Finding struct {
	Kind      UnitKind `json:"type" toml:"type"`
	Label     string   `json:"label" toml:"label"`
	Namespace string   `json:"namespace,omitempty" toml:"namespace,omitempty"`
	Key       string   `json:"key,omitempty" toml:"key,omitempty"`
	Src       string   `json:"src,omitempty" toml:"src,omitempty"`
	Warning   string   `json:"warning,omitempty" toml:"warning,omitempty"`
	Issues    []Issue  `json:"issues,omitempty" toml:"issues,omitempty"`
	Preview   string   `json:"preview,omitempty" toml:"preview,omitempty"`
}

// HasIssues reports whether the finding carries at least one issue.
func (f Finding) HasIssues() bool { return len(f.Issues) > 0 }

// ScanResult is the structured output of one top-level scan.
type ScanResult struct {
	Scripts   []Finding `json:"scripts" toml:"scripts"`
	Storage   []Finding `json:"storage" toml:"storage"`
	Timestamp time.Time `json:"timestamp" toml:"timestamp"`
}

// Issues flattens every issue in the result, scripts first.
func (r ScanResult) Issues() []Issue {
	var out []Issue
	for _, f := range r.Scripts {
		out = append(out, f.Issues...)
	}
	for _, f := range r.Storage {
		out = append(out, f.Issues...)
	}
	return out
}

// WithoutTimestamp returns a copy with a zero timestamp, for comparing two scans.
func (r ScanResult) WithoutTimestamp() ScanResult {
	r.Timestamp = time.Time{}
	return r
}

// ScriptLabel names the inline script at document index i.
func ScriptLabel(i int) string {
	return "inline_script_" + strconv.Itoa(i)
}

// StorageLabel names a storage entry as "<namespace>.<key>".
func StorageLabel(kind UnitKind, key string) string {
	return string(kind) + "." + key
}
