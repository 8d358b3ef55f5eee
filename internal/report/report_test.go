package report

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/accrava/secretsweep/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() types.ScanResult {
	return types.ScanResult{
		Scripts: []types.Finding{
			{
				Kind:  types.KindInlineScript,
				Label: "inline_script_0",
				Issues: []types.Issue{
					{Keyword: "client_secret", Count: 2, Source: "inline_script_0", Severity: types.SevHigh},
					{Keyword: "secret", Count: 2, Source: "inline_script_0", Severity: types.SevLow},
				},
			},
			{Kind: types.KindExternalScript, Label: "https://cdn.example.com/x.js", Warning: "External script - check manually"},
		},
		Storage: []types.Finding{
			{
				Kind:      types.KindLocalStorage,
				Label:     "localStorage.session_token",
				Namespace: "localStorage",
				Key:       "session_token",
				Issues: []types.Issue{
					{Keyword: "Bearer ", Count: 1, Source: "localStorage.session_token", Severity: types.SevLow},
				},
			},
		},
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

const golden = `SECURITY SCAN REPORT
==================================================

SCRIPTS WITH ISSUES:

Script: inline_script_0
  ! HIGH: client_secret (2 occurrences)
  ! LOW: secret (2 occurrences)

STORAGE WITH ISSUES:

localStorage: session_token
  ! LOW: Bearer  (1 occurrences)

MANUAL REVIEW REQUIRED:
  - https://cdn.example.com/x.js: External script - check manually

Total issues found: 2

RECOMMENDATIONS:
1. Remove hardcoded secrets from client-side code
2. Use environment variables for sensitive data
3. Implement proper authentication (JWT, OAuth)
4. Use HTTPS for all communications
5. Implement proper session management
`

func TestRender_Golden(t *testing.T) {
	assert.Equal(t, golden, Render(sample()))
	assert.Equal(t, Render(sample()), Render(sample()))
}

func TestRender_NoIssues(t *testing.T) {
	out := Render(types.ScanResult{})
	assert.Contains(t, out, NoIssues)
	assert.NotContains(t, out, "RECOMMENDATIONS")
	assert.NotContains(t, out, "SCRIPTS WITH ISSUES")
	assert.NotContains(t, out, "STORAGE WITH ISSUES")
}

func TestRender_PlaceholdersOnly(t *testing.T) {
	r := types.ScanResult{Scripts: []types.Finding{{Kind: types.KindExternalScript, Label: "a.js", Warning: "External script - check manually"}}}
	out := Render(r)
	assert.Equal(t, 0, Total(r))
	assert.Contains(t, out, "MANUAL REVIEW REQUIRED")
	assert.Contains(t, out, NoIssues)
	assert.NotContains(t, out, "SCRIPTS WITH ISSUES")
}

func TestTotal(t *testing.T) {
	assert.Equal(t, 2, Total(sample()))
}

func TestBaseline_RoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), BaselineFile)
	require.NoError(t, SaveBaseline(p, sample()))
	base, err := LoadBaseline(p)
	require.NoError(t, err)
	assert.Len(t, base.Items, 3)

	filtered := FilterNew(sample(), base)
	assert.Len(t, filtered.Scripts, 1, "only the placeholder survives")
	assert.Empty(t, filtered.Storage)
	assert.Equal(t, 0, Total(filtered))

	_, err = LoadBaseline(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestFilterNew_PartialBaseline(t *testing.T) {
	is := sample().Scripts[0].Issues[0]
	base := Baseline{Items: map[string]bool{IssueKey(is): true}}
	filtered := FilterNew(sample(), base)
	require.Len(t, filtered.Scripts, 2)
	require.Len(t, filtered.Scripts[0].Issues, 1)
	assert.Equal(t, "secret", filtered.Scripts[0].Issues[0].Keyword)
}

func TestShouldFail(t *testing.T) {
	r := sample()
	assert.True(t, ShouldFail(r, "high"))
	assert.True(t, ShouldFail(r, "low"))
	assert.True(t, ShouldFail(r, ""))

	low := types.ScanResult{Storage: r.Storage}
	assert.False(t, ShouldFail(low, "medium"))
	assert.True(t, ShouldFail(low, "LOW"))
	assert.False(t, ShouldFail(types.ScanResult{}, "low"))
}

func TestWriteSARIF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, sample(), "test"))
	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "2.1.0", doc["version"])
	runs := doc["runs"].([]any)
	results := runs[0].(map[string]any)["results"].([]any)
	assert.Len(t, results, 3)
	first := results[0].(map[string]any)
	assert.Equal(t, "client_secret", first["ruleId"])
	assert.Equal(t, "error", first["level"])
}

func TestWriteJSON_EmptySections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, types.ScanResult{}))
	assert.Contains(t, buf.String(), `"scripts": []`)
	assert.Contains(t, buf.String(), `"storage": []`)
}

func TestWriteTOML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTOML(&buf, sample()))
	out := buf.String()
	assert.Contains(t, out, "[[scripts]]")
	assert.Contains(t, out, `keyword = "client_secret"`)
}

func TestPrint_NoColorIsVerbatim(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, golden, PrintOptions{NoColor: true})
	assert.Equal(t, golden, buf.String())
}

func TestPrint_KeepsText(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, golden, PrintOptions{})
	assert.Contains(t, buf.String(), "client_secret (2 occurrences)")
	assert.Equal(t, strings.Count(golden, "\n"), strings.Count(buf.String(), "\n"))
}
