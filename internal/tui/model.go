// Package tui is an interactive browser over the findings of one scan.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/accrava/secretsweep/internal/ignore"
	"github.com/accrava/secretsweep/internal/report"
	"github.com/accrava/secretsweep/internal/types"
)

// rows taken by the title, status line and footer
const chromeHeight = 6

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	statusStyle = lipgloss.NewStyle().Faint(true)
	detailStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type Model struct {
	result   types.ScanResult
	findings []types.Finding

	table       table.Model
	searchInput textinput.Model
	searchMode  bool
	searchQuery string
	minSeverity types.Severity
	// filtered holds indexes into findings when a search or severity filter
	// is active; nil shows everything.
	filtered []int

	baselinedSet     map[string]bool
	selectedFindings map[int]bool

	showHelp   bool
	showDetail bool
	ready      bool
	width      int
	height     int
	status     string

	ignorePath   string
	baselinePath string
}

// NewModel builds the browser. Script findings are listed before storage
// findings. baselined holds issue keys already in the baseline.
func NewModel(result types.ScanResult, baselined map[string]bool) Model {
	findings := append(append([]types.Finding(nil), result.Scripts...), result.Storage...)
	if baselined == nil {
		baselined = map[string]bool{}
	}

	ti := textinput.New()
	ti.Placeholder = "label, keyword or warning"
	ti.Prompt = "/"

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Severity", Width: 10},
			{Title: "Type", Width: 16},
			{Title: "Source", Width: 40},
			{Title: "Issues", Width: 8},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	m := Model{
		result:           result,
		findings:         findings,
		table:            t,
		searchInput:      ti,
		baselinedSet:     baselined,
		selectedFindings: map[int]bool{},
		ignorePath:       ignore.FileName,
		baselinePath:     report.BaselineFile,
	}
	m.refreshRows()
	return m
}

// Run starts the browser on the alternate screen and blocks until it exits.
func Run(result types.ScanResult, baselined map[string]bool) error {
	_, err := tea.NewProgram(NewModel(result, baselined), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		h := msg.Height - chromeHeight
		if h < 3 {
			h = 3
		}
		m.table.SetHeight(h)
		m.table.SetWidth(msg.Width)
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			return m.updateSearch(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case "/":
			m.searchMode = true
			m.searchInput.SetValue(m.searchQuery)
			cmd := m.searchInput.Focus()
			return m, cmd
		case "esc":
			m.searchQuery = ""
			m.minSeverity = ""
			m.applyFilter()
			return m, nil
		case "f":
			m.minSeverity = nextSeverity(m.minSeverity)
			m.applyFilter()
			return m, nil
		case "enter":
			m.showDetail = !m.showDetail
			return m, nil
		case " ":
			if idx := m.getSelectedOriginalIndex(); idx >= 0 {
				if m.selectedFindings[idx] {
					delete(m.selectedFindings, idx)
				} else {
					m.selectedFindings[idx] = true
				}
				m.refreshRows()
			}
			return m, nil
		case "i", "u", "b", "B", "I", "A", "y":
			cmd := m.runAction(msg.String())
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) runAction(key string) tea.Cmd {
	switch key {
	case "i":
		return m.ignoreFinding()
	case "u":
		return m.unignoreFinding()
	case "b":
		return m.addToBaseline()
	case "B":
		return m.removeFromBaseline()
	case "I":
		return m.bulkIgnore()
	case "A":
		return m.bulkBaseline()
	case "y":
		return m.copyReport()
	}
	return nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searchMode = false
		m.searchQuery = strings.TrimSpace(m.searchInput.Value())
		m.searchInput.Blur()
		m.applyFilter()
		return m, nil
	case tea.KeyEsc:
		m.searchMode = false
		m.searchInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// nextSeverity cycles the filter: all, MEDIUM and above, HIGH only.
func nextSeverity(s types.Severity) types.Severity {
	switch s {
	case "":
		return types.SevMed
	case types.SevMed:
		return types.SevHigh
	}
	return ""
}

func (m *Model) applyFilter() {
	if m.searchQuery == "" && m.minSeverity == "" {
		m.filtered = nil
	} else {
		m.filtered = []int{}
		q := strings.ToLower(m.searchQuery)
		for i, f := range m.findings {
			if m.minSeverity != "" && findingSeverity(f).Rank() < m.minSeverity.Rank() {
				continue
			}
			if q != "" && !strings.Contains(searchText(f), q) {
				continue
			}
			m.filtered = append(m.filtered, i)
		}
	}
	m.refreshRows()
	m.table.SetCursor(0)
}

func searchText(f types.Finding) string {
	parts := []string{f.Label, f.Warning, string(f.Kind)}
	for _, is := range f.Issues {
		parts = append(parts, is.Keyword)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func (m *Model) refreshRows() {
	rows := make([]table.Row, 0, len(m.findings))
	for _, idx := range m.displayIndexes() {
		f := m.findings[idx]
		sev := severityText(findingSeverity(f))
		if f.Warning != "" {
			sev = "REVIEW"
		}
		if m.isBaselined(f) {
			sev = "(b) " + sev
		}
		if m.selectedFindings[idx] {
			sev = "* " + sev
		}
		rows = append(rows, table.Row{sev, string(f.Kind), f.Label, fmt.Sprintf("%d", len(f.Issues))})
	}
	m.table.SetRows(rows)
}

func (m Model) displayIndexes() []int {
	if m.filtered != nil {
		return m.filtered
	}
	idx := make([]int, len(m.findings))
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func (m Model) getDisplayFindings() []types.Finding {
	var out []types.Finding
	for _, i := range m.displayIndexes() {
		out = append(out, m.findings[i])
	}
	return out
}

// getOriginalIndex maps a table row to its index in m.findings.
func (m Model) getOriginalIndex(row int) int {
	idx := m.displayIndexes()
	if row < 0 || row >= len(idx) {
		return -1
	}
	return idx[row]
}

// isBaselined reports whether every issue of f is in the baseline.
func (m Model) isBaselined(f types.Finding) bool {
	if len(f.Issues) == 0 {
		return false
	}
	for _, is := range f.Issues {
		if !m.baselinedSet[report.IssueKey(is)] {
			return false
		}
	}
	return true
}

// findingSeverity is the highest severity among the finding's issues.
func findingSeverity(f types.Finding) types.Severity {
	var best types.Severity
	for _, is := range f.Issues {
		if is.Severity.Rank() > best.Rank() {
			best = is.Severity
		}
	}
	return best
}

func severityText(s types.Severity) string {
	if s == "" {
		return "-"
	}
	return string(s)
}

func (m Model) View() string {
	var b strings.Builder
	title := fmt.Sprintf("secretsweep  %d findings  %d issues", len(m.findings), report.Total(m.result))
	if m.minSeverity != "" {
		title += fmt.Sprintf("  [>= %s]", m.minSeverity)
	}
	if m.searchQuery != "" {
		title += fmt.Sprintf("  [/%s]", m.searchQuery)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	if len(m.findings) == 0 {
		b.WriteString(report.NoIssues + "\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	if m.showDetail {
		if f := m.getSelectedFinding(); f != nil {
			b.WriteString(detailStyle.Render(detail(*f)))
			b.WriteString("\n")
		}
	}
	if m.searchMode {
		b.WriteString(m.searchInput.View())
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	if m.showHelp {
		b.WriteString(helpStyle.Render(helpText))
	} else {
		b.WriteString(helpStyle.Render("? help  q quit"))
	}
	return b.String()
}

func detail(f types.Finding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", f.Label, f.Kind)
	if f.Warning != "" {
		fmt.Fprintf(&b, "%s\n", f.Warning)
	}
	for _, is := range f.Issues {
		fmt.Fprintf(&b, "  ! %s: %s (%d occurrences)\n", is.Severity, is.Keyword, is.Count)
	}
	if f.Preview != "" {
		fmt.Fprintf(&b, "\n%s", f.Preview)
	}
	return strings.TrimRight(b.String(), "\n")
}

const helpText = `j/k move   enter details   / search   esc clear filters   f severity filter
i ignore   u unignore   b baseline   B unbaseline   space select
I ignore selected   A baseline selected   y copy report   q quit`
