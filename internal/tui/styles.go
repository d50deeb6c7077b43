package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent  = lipgloss.Color("#8BC34A")
	muted   = lipgloss.Color("#6B7280")
	danger  = lipgloss.Color("#E53935")
	surface = lipgloss.Color("#2A3850")
)

// Styles holds the lipgloss styles used by the view
type Styles struct {
	Title       lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	Panel       lipgloss.Style
	Label       lipgloss.Style
	Result      lipgloss.Style
	Code        lipgloss.Style
	Error       lipgloss.Style
	Muted       lipgloss.Style
}

// DefaultStyles returns the default style set
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		ActiveTab: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 2).
			Foreground(lipgloss.Color("#101F38")).
			Background(accent),
		InactiveTab: lipgloss.NewStyle().Padding(0, 2).Foreground(muted),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(surface).
			Padding(0, 1).
			MarginTop(1),
		Label:  lipgloss.NewStyle().Foreground(muted),
		Result: lipgloss.NewStyle().Bold(true),
		Code:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		Error:  lipgloss.NewStyle().Foreground(danger),
		Muted:  lipgloss.NewStyle().Foreground(muted),
	}
}
