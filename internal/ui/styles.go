package ui

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	Blue  = lipgloss.Color("#3B82F6")
	Green = lipgloss.Color("#22C55E")
	Red   = lipgloss.Color("#EF4444")
	Amber = lipgloss.Color("#F59E0B")
	Gray  = lipgloss.Color("#9CA3AF")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Blue)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Amber)

	DimStyle = lipgloss.NewStyle().
			Foreground(Gray)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Blue).
			Padding(0, 1)
)
