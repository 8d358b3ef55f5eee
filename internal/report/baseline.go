package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"

	"github.com/accrava/secretsweep/internal/types"
)

// BaselineFile is the default baseline location in the working directory.
const BaselineFile = "secretsweep.baseline.json"

type Baseline struct {
	Items map[string]bool `json:"items"`
}

func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Items: map[string]bool{}}
	f, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(f, &b); err != nil {
		return b, err
	}
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	return b, nil
}

func SaveBaseline(path string, r types.ScanResult) error {
	b := Baseline{Items: map[string]bool{}}
	for _, is := range r.Issues() {
		b.Items[IssueKey(is)] = true
	}
	buf, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}

// IssueKey is a stable fingerprint of an issue that does not store page content.
func IssueKey(is types.Issue) string {
	sum := sha256.Sum256([]byte(is.Source + "|" + is.Keyword))
	return hex.EncodeToString(sum[:])
}

// FilterNew drops baselined issues. Findings left without issues are
// removed; manual-review placeholders are kept.
func FilterNew(r types.ScanResult, base Baseline) types.ScanResult {
	r.Scripts = filterFindings(r.Scripts, base)
	r.Storage = filterFindings(r.Storage, base)
	return r
}

func filterFindings(fs []types.Finding, base Baseline) []types.Finding {
	var out []types.Finding
	for _, f := range fs {
		if f.Warning != "" {
			out = append(out, f)
			continue
		}
		var kept []types.Issue
		for _, is := range f.Issues {
			if !base.Items[IssueKey(is)] {
				kept = append(kept, is)
			}
		}
		if len(kept) == 0 {
			continue
		}
		f.Issues = kept
		out = append(out, f)
	}
	return out
}

// ShouldFail reports whether any issue is at or above failOn. An unknown
// threshold falls back to medium.
func ShouldFail(r types.ScanResult, failOn string) bool {
	th := types.ParseSeverity(failOn).Rank()
	if th == 0 {
		th = types.SevMed.Rank()
	}
	for _, is := range r.Issues() {
		if is.Severity.Rank() >= th {
			return true
		}
	}
	return false
}
