package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const ellipsis = "…"

var (
	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#343433", Dark: "#C1C6B2"}).
			Background(lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#353533"})

	stateStyles = map[string]lipgloss.Style{
		"playing": lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#5AD4A2")).Padding(0, 1),
		"paused":  lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#FFD75F")).Padding(0, 1),
		"stopped": lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#6C6C6C")).Padding(0, 1),
	}

	positionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#6124DF")).
			Padding(0, 1)
)

// highlightStyle marks the sentence being read. Terminals without colour
// get reverse video.
func highlightStyle(color string) lipgloss.Style {
	if termenv.EnvColorProfile() == termenv.Ascii {
		return lipgloss.NewStyle().Reverse(true)
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(color)).
		Foreground(lipgloss.Color("0"))
}
