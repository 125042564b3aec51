package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true)

	dirtyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	cleanStyle = lipgloss.NewStyle().Faint(true)

	selectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	protectedStyle = lipgloss.NewStyle().Faint(true)

	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

	inputLabelStyle   = lipgloss.NewStyle().Bold(true)
	inputFocusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	helpKeyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	helpDescStyle = lipgloss.NewStyle().Faint(true)
)
