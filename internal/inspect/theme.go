package inspect

import "github.com/charmbracelet/lipgloss"

// Theme centralizes all styling for the check report.
type Theme struct {
	StatusOK     lipgloss.Style
	StatusFailed lipgloss.Style

	Title     lipgloss.Style
	Header    lipgloss.Style
	Dim       lipgloss.Style
	Highlight lipgloss.Style
	Marker    lipgloss.Style
	Border    lipgloss.Style
}

func NewDefaultTheme() Theme {
	purple := lipgloss.Color("#874BFD")

	return Theme{
		StatusOK:     lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		StatusFailed: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#61AFEF")),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
		Marker:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000")),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(purple).
			Padding(0, 1),
	}
}

// NewPlainTheme returns a theme with no styling, for pipes and tests.
func NewPlainTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		StatusOK:     plain,
		StatusFailed: plain,
		Title:        plain,
		Header:       plain,
		Dim:          plain,
		Highlight:    plain,
		Marker:       plain,
		Border:       plain,
	}
}
