package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/accrava/secretsweep/internal/types"
)

const sarifSchema = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

// WriteSARIF writes one SARIF 2.1.0 result per issue. The unit label is used
// as the artifact URI.
func WriteSARIF(w io.Writer, r types.ScanResult, version string) error {
	results := make([]sarifResult, 0)
	seen := map[string]bool{}
	var rules []sarifRule
	for _, is := range r.Issues() {
		if !seen[is.Keyword] {
			seen[is.Keyword] = true
			rules = append(rules, sarifRule{
				ID:               is.Keyword,
				ShortDescription: sarifMessage{Text: fmt.Sprintf("sensitive keyword %q", is.Keyword)},
			})
		}
		results = append(results, sarifResult{
			RuleID:  is.Keyword,
			Level:   sevToLevel(is.Severity),
			Message: sarifMessage{Text: fmt.Sprintf("%s: %q found %d time(s)", is.Severity, is.Keyword, is.Count)},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysical{ArtifactLocation: sarifArtifact{URI: is.Source}},
			}},
		})
	}
	log := sarifLog{
		Version: "2.1.0",
		Schema:  sarifSchema,
		Runs: []sarifRun{{
			Tool:    sarifTool{Driver: sarifDriver{Name: "secretsweep", Version: version, Rules: rules}},
			Results: results,
		}},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

func sevToLevel(s types.Severity) string {
	switch s {
	case types.SevHigh:
		return "error"
	case types.SevMed:
		return "warning"
	default:
		return "note"
	}
}
