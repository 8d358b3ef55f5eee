package tui

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/accrava/secretsweep/internal/clipboard"
	"github.com/accrava/secretsweep/internal/ignore"
	"github.com/accrava/secretsweep/internal/report"
	"github.com/accrava/secretsweep/internal/types"
)

var copyText = clipboard.CopyAsync

func (m *Model) ignoreFinding() tea.Cmd {
	f := m.getSelectedFinding()
	if f == nil {
		return nil
	}
	pattern := ignore.Pattern(f.Label)
	if err := appendLines(m.ignorePath, []string{pattern}); err != nil {
		return status(fmt.Sprintf("Error writing to %s: %v", m.ignorePath, err))
	}
	return status(fmt.Sprintf("Added %s to %s", pattern, m.ignorePath))
}

func (m *Model) unignoreFinding() tea.Cmd {
	f := m.getSelectedFinding()
	if f == nil {
		return nil
	}

	content, err := os.ReadFile(m.ignorePath)
	if err != nil {
		return status(fmt.Sprintf("No %s file found", m.ignorePath))
	}

	pattern := ignore.Pattern(f.Label)
	var kept []string
	found := false
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == pattern || trimmed == strings.TrimPrefix(pattern, "/") {
			found = true
			continue
		}
		kept = append(kept, line)
	}
	if !found {
		return status(fmt.Sprintf("%s is not in %s", pattern, m.ignorePath))
	}

	out := strings.TrimRight(strings.Join(kept, "\n"), "\n") + "\n"
	if out == "\n" {
		out = ""
	}
	if err := os.WriteFile(m.ignorePath, []byte(out), 0644); err != nil {
		return status(fmt.Sprintf("Error writing %s: %v", m.ignorePath, err))
	}
	return status(fmt.Sprintf("Removed %s from %s", pattern, m.ignorePath))
}

func (m *Model) addToBaseline() tea.Cmd {
	f := m.getSelectedFinding()
	if f == nil {
		return nil
	}
	if len(f.Issues) == 0 {
		return status("Nothing to baseline: finding needs manual review")
	}
	n, err := m.updateBaseline(func(items map[string]bool) int {
		return addIssues(items, f.Issues)
	})
	if err != nil {
		return status(fmt.Sprintf("Error writing baseline: %v", err))
	}
	return status(fmt.Sprintf("Added %d issues to baseline", n))
}

func (m *Model) removeFromBaseline() tea.Cmd {
	f := m.getSelectedFinding()
	if f == nil {
		return nil
	}
	if !m.isBaselined(*f) {
		return status("Finding is not baselined")
	}
	if _, err := os.Stat(m.baselinePath); err != nil {
		return status(fmt.Sprintf("Error loading baseline: %v", err))
	}
	n, err := m.updateBaseline(func(items map[string]bool) int {
		removed := 0
		for _, is := range f.Issues {
			k := report.IssueKey(is)
			if items[k] {
				delete(items, k)
				removed++
			}
		}
		return removed
	})
	if err != nil {
		return status(fmt.Sprintf("Error writing baseline: %v", err))
	}
	return status(fmt.Sprintf("Removed %d issues from baseline", n))
}

// bulkBaseline adds every issue of the selected findings to the baseline.
func (m *Model) bulkBaseline() tea.Cmd {
	if len(m.selectedFindings) == 0 {
		return status("No findings selected")
	}
	n, err := m.updateBaseline(func(items map[string]bool) int {
		count := 0
		for idx := range m.selectedFindings {
			if idx >= 0 && idx < len(m.findings) {
				count += addIssues(items, m.findings[idx].Issues)
			}
		}
		return count
	})
	if err != nil {
		return status(fmt.Sprintf("Error writing baseline: %v", err))
	}
	m.selectedFindings = map[int]bool{}
	m.refreshRows()
	return status(fmt.Sprintf("Added %d issues to baseline", n))
}

// bulkIgnore appends a pattern for each selected finding to the ignore file.
func (m *Model) bulkIgnore() tea.Cmd {
	if len(m.selectedFindings) == 0 {
		return status("No findings selected")
	}
	seen := map[string]bool{}
	var patterns []string
	for _, idx := range m.displayIndexes() {
		if !m.selectedFindings[idx] {
			continue
		}
		p := ignore.Pattern(m.findings[idx].Label)
		if !seen[p] {
			seen[p] = true
			patterns = append(patterns, p)
		}
	}
	if err := appendLines(m.ignorePath, patterns); err != nil {
		return status(fmt.Sprintf("Error writing to %s: %v", m.ignorePath, err))
	}
	m.selectedFindings = map[int]bool{}
	m.refreshRows()
	return status(fmt.Sprintf("Added %d patterns to %s", len(patterns), m.ignorePath))
}

// copyReport copies the rendered report and reports the outcome in the status line.
func (m Model) copyReport() tea.Cmd {
	text := report.Render(m.result)
	return func() tea.Msg {
		if err := <-copyText(text); err != nil {
			return statusMsg(fmt.Sprintf("Clipboard unavailable: %v", err))
		}
		return statusMsg("Report copied to clipboard")
	}
}

// updateBaseline loads the baseline file (a missing file starts empty),
// applies fn, writes it back and mirrors the result into the model.
func (m *Model) updateBaseline(fn func(items map[string]bool) int) (int, error) {
	base, err := report.LoadBaseline(m.baselinePath)
	if err != nil && !os.IsNotExist(err) {
		return 0, err
	}
	n := fn(base.Items)
	buf, err := json.MarshalIndent(base, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(m.baselinePath, buf, 0644); err != nil {
		return 0, err
	}
	m.baselinedSet = base.Items
	m.refreshRows()
	return n, nil
}

func addIssues(items map[string]bool, issues []types.Issue) int {
	n := 0
	for _, is := range issues {
		k := report.IssueKey(is)
		if !items[k] {
			items[k] = true
			n++
		}
	}
	return n
}

func appendLines(path string, lines []string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, l := range lines {
		if _, err := f.WriteString(l + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func (m Model) getSelectedFinding() *types.Finding {
	idx := m.getSelectedOriginalIndex()
	if idx < 0 {
		return nil
	}
	return &m.findings[idx]
}

// getSelectedOriginalIndex returns the index in m.findings for the currently selected row.
func (m Model) getSelectedOriginalIndex() int {
	return m.getOriginalIndex(m.table.Cursor())
}

func status(s string) tea.Cmd {
	return func() tea.Msg { return statusMsg(s) }
}

type statusMsg string
