package tui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.Color("#ffe3a2")
	dangerColor = lipgloss.Color("#ed0f94")
	mutedColor  = lipgloss.Color("#a1a1a1")
	dimColor    = lipgloss.Color("#3a3a3a")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	headerStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	normalStyle = lipgloss.NewStyle()

	dangerStyle = lipgloss.NewStyle().
			Foreground(dangerColor)

	accentStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dimColor).
			Padding(0, 1)

	layerStyles = map[layer]lipgloss.Style{
		layerGrid:          lipgloss.NewStyle().Foreground(dimColor),
		layerManager:       lipgloss.NewStyle().Foreground(lipgloss.Color("#7a7a7a")),
		layerIndividual:    lipgloss.NewStyle().Foreground(mutedColor),
		layerAccent:        lipgloss.NewStyle().Foreground(accentColor),
		layerDanger:        lipgloss.NewStyle().Foreground(dangerColor),
		layerGapManager:    lipgloss.NewStyle().Foreground(accentColor),
		layerGapIndividual: lipgloss.NewStyle().Foreground(dangerColor),
	}
)
