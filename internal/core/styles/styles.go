package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/stager/internal/core/label"
)

// Styles is the set of lipgloss styles built from one Palette.
type Styles struct {
	Palette Palette

	Title      lipgloss.Style
	Progress   lipgloss.Style
	Muted      lipgloss.Style
	Subject    lipgloss.Style
	Sidebar    lipgloss.Style
	SidebarKey lipgloss.Style
	Status     lipgloss.Style
	StatusErr  lipgloss.Style
	StatusOK   lipgloss.Style
	Done       lipgloss.Style
	Divider    lipgloss.Style
}

// New builds Styles for p.
func New(p Palette) Styles {
	return Styles{
		Palette: p,
		Title: lipgloss.NewStyle().
			Foreground(p.Primary).
			Bold(true),
		Progress: lipgloss.NewStyle().
			Foreground(p.Secondary),
		Muted: lipgloss.NewStyle().
			Foreground(p.Muted),
		Subject: lipgloss.NewStyle().
			Foreground(p.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Surface).
			Padding(0, 1),
		Sidebar: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Surface).
			Padding(0, 1),
		SidebarKey: lipgloss.NewStyle().
			Foreground(p.Muted),
		Status: lipgloss.NewStyle().
			Foreground(p.Foreground),
		StatusErr: lipgloss.NewStyle().
			Foreground(p.Error).
			Bold(true),
		StatusOK: lipgloss.NewStyle().
			Foreground(p.Success),
		Done: lipgloss.NewStyle().
			Foreground(p.Success).
			Bold(true).
			Padding(1, 2),
		Divider: lipgloss.NewStyle().
			Foreground(p.Muted),
	}
}

// ForTheme builds Styles for the named theme, falling back to DefaultTheme.
func ForTheme(name string) Styles {
	p, ok := GetPalette(name)
	if !ok {
		p = themes[DefaultTheme]
	}
	return New(p)
}

// LabelColor returns the color a category is drawn in. Unknown labels use the
// foreground color.
func (s Styles) LabelColor(category string) lipgloss.Color {
	switch label.Category(category) {
	case label.Reviewing:
		return s.Palette.Warning
	case label.Passed:
		return s.Palette.Success
	case label.Bounceback:
		return s.Palette.Error
	case label.AutoReply:
		return s.Palette.Secondary
	default:
		return s.Palette.Foreground
	}
}

// Label renders a category in its color.
func (s Styles) Label(category string) string {
	return lipgloss.NewStyle().Foreground(s.LabelColor(category)).Bold(true).Render(category)
}
