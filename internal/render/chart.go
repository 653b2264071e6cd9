package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"contractreport/pkg/contracts/domain"
)

const defaultBarWidth = 30

var (
	colorHeading = lipgloss.Color("#2196F3")
	colorBar     = lipgloss.Color("#4db6ac")
	colorSuccess = lipgloss.Color("#8BC34A")
	colorWarning = lipgloss.Color("#FFC107")
	colorMuted   = lipgloss.Color("#9e9e9e")
)

type styles struct {
	heading    lipgloss.Style
	subheading lipgloss.Style
	success    lipgloss.Style
	warning    lipgloss.Style
	bar        lipgloss.Style
	label      lipgloss.Style
	count      lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		heading:    r.NewStyle().Bold(true).Foreground(colorHeading).Underline(true),
		subheading: r.NewStyle().Bold(true),
		success:    r.NewStyle().Foreground(colorSuccess),
		warning:    r.NewStyle().Foreground(colorWarning),
		bar:        r.NewStyle().Foreground(colorBar),
		label:      r.NewStyle(),
		count:      r.NewStyle().Foreground(colorMuted),
	}
}

// BarChart draws one horizontal bar per branch, scaled so the largest count
// fills width cells. Every non-zero count gets at least one cell.
func BarChart(s styles, branches []domain.BranchCount, width int) string {
	if len(branches) == 0 {
		return ""
	}

	labelWidth, max := 0, 0
	for _, b := range branches {
		if w := lipgloss.Width(b.Branch); w > labelWidth {
			labelWidth = w
		}
		if b.Contracts > max {
			max = b.Contracts
		}
	}

	lines := make([]string, 0, len(branches))
	for _, b := range branches {
		n := 0
		if max > 0 {
			n = b.Contracts * width / max
			if n == 0 && b.Contracts > 0 {
				n = 1
			}
		}
		label := s.label.Width(labelWidth).Render(b.Branch)
		bar := s.bar.Render(strings.Repeat("█", n))
		lines = append(lines, fmt.Sprintf("%s │%s %s", label, bar, s.count.Render(fmt.Sprint(b.Contracts))))
	}
	return strings.Join(lines, "\n")
}
