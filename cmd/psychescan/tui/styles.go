package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#7D56F4")
	muted  = lipgloss.Color("#8A8A8A")
	danger = lipgloss.Color("#E5484D")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginBottom(1)

	subtleStyle = lipgloss.NewStyle().Foreground(muted)

	errorStyle = lipgloss.NewStyle().Foreground(danger)

	selectedStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	frameStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent)

	progressFull  = lipgloss.NewStyle().Foreground(accent)
	progressEmpty = lipgloss.NewStyle().Foreground(muted)
)
