package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme for the reader
type Theme struct {
	Name string

	// Text colors
	Text        lipgloss.Color
	Translation lipgloss.Color
	Marker      lipgloss.Color
	Gloss       lipgloss.Color
	Root        lipgloss.Color
	Muted       lipgloss.Color
	Error       lipgloss.Color

	// UI element colors
	Border       lipgloss.Color
	BorderActive lipgloss.Color
	Highlight    lipgloss.Color
}

var (
	Light = Theme{
		Name:         "light",
		Text:         lipgloss.Color("#2b2118"),
		Translation:  lipgloss.Color("#5a5247"),
		Marker:       lipgloss.Color("#8a3b12"),
		Gloss:        lipgloss.Color("#6b7a3a"),
		Root:         lipgloss.Color("#1f5f8b"),
		Muted:        lipgloss.Color("#9a9184"),
		Error:        lipgloss.Color("#b3261e"),
		Border:       lipgloss.Color("#d8cfc0"),
		BorderActive: lipgloss.Color("#8a3b12"),
		Highlight:    lipgloss.Color("#f3e6c8"),
	}

	Dark = Theme{
		Name:         "dark",
		Text:         lipgloss.Color("#ece3d0"),
		Translation:  lipgloss.Color("#b8ae9c"),
		Marker:       lipgloss.Color("#e0a458"),
		Gloss:        lipgloss.Color("#a7c080"),
		Root:         lipgloss.Color("#7fbbd9"),
		Muted:        lipgloss.Color("#6f6a60"),
		Error:        lipgloss.Color("#f27b6f"),
		Border:       lipgloss.Color("#3a362f"),
		BorderActive: lipgloss.Color("#e0a458"),
		Highlight:    lipgloss.Color("#3d3425"),
	}
)

// For returns the theme with the given name, defaulting to Light.
func For(name string) Theme {
	if name == Dark.Name {
		return Dark
	}
	return Light
}

// Styles are the lipgloss styles derived from a theme.
type Styles struct {
	Header      lipgloss.Style
	Title       lipgloss.Style
	Marker      lipgloss.Style
	VerseNumber lipgloss.Style
	Verse       lipgloss.Style
	Highlighted lipgloss.Style
	Translation lipgloss.Style
	Gloss       lipgloss.Style
	Root        lipgloss.Style
	Help        lipgloss.Style
	Error       lipgloss.Style
	Popup       lipgloss.Style
}

func (t Theme) Styles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Marker).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Border),
		Title:       lipgloss.NewStyle().Bold(true).Foreground(t.Text),
		Marker:      lipgloss.NewStyle().Bold(true).Foreground(t.Marker).Align(lipgloss.Center),
		VerseNumber: lipgloss.NewStyle().Foreground(t.Marker),
		Verse:       lipgloss.NewStyle().Foreground(t.Text),
		Highlighted: lipgloss.NewStyle().Foreground(t.Text).Background(t.Highlight),
		Translation: lipgloss.NewStyle().Foreground(t.Translation).Italic(true),
		Gloss:       lipgloss.NewStyle().Foreground(t.Gloss),
		Root:        lipgloss.NewStyle().Foreground(t.Root).Underline(true),
		Help:        lipgloss.NewStyle().Foreground(t.Muted),
		Error:       lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		Popup: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderActive).
			Padding(0, 1),
	}
}
