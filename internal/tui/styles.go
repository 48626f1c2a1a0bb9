package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/manasm11/packtui/internal/planner"
	"github.com/manasm11/packtui/internal/projection"
)

var (
	// Colors
	Primary   = lipgloss.Color("#7C3AED") // purple
	Secondary = lipgloss.Color("#06B6D4") // cyan
	Success   = lipgloss.Color("#10B981") // green
	Warning   = lipgloss.Color("#F59E0B") // amber
	Danger    = lipgloss.Color("#EF4444") // red
	Muted     = lipgloss.Color("#6B7280") // gray
	Text      = lipgloss.Color("#E5E7EB") // light gray

	// Reusable styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			PaddingLeft(1).
			PaddingRight(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(Muted)

	StatusBar = lipgloss.NewStyle().
			Foreground(Text).
			Background(lipgloss.Color("#1F2937")).
			PaddingLeft(1).
			PaddingRight(1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			PaddingLeft(1)

)

// StatusColor maps a package row's projected status to the color of the
// mark-preview line (the package list keeps its own, more granular style
// table for the table body itself).
func StatusColor(s projection.Status) lipgloss.Color {
	switch s {
	case projection.Upgradable:
		return Secondary
	case projection.MarkedForInstall, projection.MarkedForUpgrade:
		return Success
	case projection.MarkedForRemove:
		return Danger
	case projection.Keep:
		return Warning
	case projection.Broken:
		return Danger
	default:
		return Text
	}
}

// ActionColor maps a planned change's action to its summary-line color.
func ActionColor(a planner.Action) lipgloss.Color {
	switch a {
	case planner.Install, planner.Upgrade:
		return Success
	case planner.Remove:
		return Danger
	case planner.Downgrade:
		return Warning
	default:
		return Text
	}
}
