package ui

import "github.com/charmbracelet/lipgloss"

var (
	ColorBg          = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}
	ColorBgDark      = lipgloss.AdaptiveColor{Light: "#E6E9EF", Dark: "#11111B"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#DCE0E8", Dark: "#313244"}
	ColorText        = lipgloss.AdaptiveColor{Light: "#4C4F69", Dark: "#CDD6F4"}
	ColorSubtext     = lipgloss.AdaptiveColor{Light: "#6C6F85", Dark: "#A6ADC8"}
	ColorPrimary     = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"}
	ColorSecondary   = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#F9E2AF"}
	ColorError       = lipgloss.AdaptiveColor{Light: "#D20F39", Dark: "#F38BA8"}
)

var (
	MessageStyle = lipgloss.NewStyle().Foreground(ColorText)

	HeaderStyle = lipgloss.NewStyle().Foreground(ColorSubtext)

	// PinnedHeaderStyle marks a separator held at the top of the viewport.
	PinnedHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorSecondary).
				Background(ColorBgHighlight).
				Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorBgDark)

	StatusKeyStyle = lipgloss.NewStyle().
			Foreground(ColorBg).
			Background(ColorPrimary).
			Bold(true).
			Padding(0, 1)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ColorError).
				Background(ColorBgDark)
)
