package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	secondaryStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	warningStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	focusedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	tagStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("109"))
	panelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	panelStyle      = lipgloss.NewStyle().Padding(0, 1)
)
