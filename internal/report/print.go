package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	highStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true) // red
	mediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))            // yellow
	lowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))            // blue
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))            // green
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

type PrintOptions struct {
	NoColor bool
}

// Print writes rendered report text to w, colouring severity lines unless
// NoColor is set. The text itself is not changed.
func Print(w io.Writer, text string, opts PrintOptions) {
	if opts.NoColor {
		fmt.Fprint(w, text)
		return
	}
	lines := strings.SplitAfter(text, "\n")
	for _, line := range lines {
		body := strings.TrimSuffix(line, "\n")
		nl := line[len(body):]
		fmt.Fprint(w, styleLine(body)+nl)
	}
}

func styleLine(s string) string {
	t := strings.TrimSpace(s)
	switch {
	case t == Title:
		return titleStyle.Render(s)
	case strings.HasPrefix(t, "! HIGH:"):
		return highStyle.Render(s)
	case strings.HasPrefix(t, "! MEDIUM:"):
		return mediumStyle.Render(s)
	case strings.HasPrefix(t, "! LOW:"):
		return lowStyle.Render(s)
	case t == NoIssues:
		return okStyle.Render(s)
	case strings.HasPrefix(t, "- "):
		return dimStyle.Render(s)
	}
	return s
}
