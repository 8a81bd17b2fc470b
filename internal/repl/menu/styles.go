package menu

import "github.com/charmbracelet/lipgloss"

const (
	colorYellow = lipgloss.Color("11")
	colorGray   = lipgloss.Color("8")
)

var (
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.NormalBorder())
	headerStyle   = lipgloss.NewStyle().Foreground(colorGray)
	selectedStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	itemStyle     = lipgloss.NewStyle()
)
