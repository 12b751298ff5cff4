// Package styles holds the color themes and the lipgloss styles built from
// them.
package styles

import "github.com/charmbracelet/lipgloss"

// ThemedStyles contains all the lipgloss styles built from a color palette.
type ThemedStyles struct {
	Palette *ColorPalette

	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
	Text      lipgloss.Style

	Title    lipgloss.Style
	Subtitle lipgloss.Style

	// Phase tabs
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	TabBusy     lipgloss.Style

	ContentBox lipgloss.Style
	Selected   lipgloss.Style
	Dialog     lipgloss.Style

	// Intake fields
	FieldFocused lipgloss.Style
	FieldBlurred lipgloss.Style

	StatusBar lipgloss.Style
	HelpKey   lipgloss.Style
	HelpDesc  lipgloss.Style

	Running lipgloss.Style
	Pending lipgloss.Style
	Ready   lipgloss.Style
	Failed  lipgloss.Style

	Score lipgloss.Style
	Tree  lipgloss.Style
}

// NewThemedStyles builds every style from p.
func NewThemedStyles(p *ColorPalette) *ThemedStyles {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return &ThemedStyles{
		Palette: p,

		Primary:   fg(p.Primary),
		Secondary: fg(p.Secondary),
		Warning:   fg(p.Warning),
		Error:     fg(p.Error),
		Muted:     fg(p.Muted),
		Text:      fg(p.Text),

		Title:    lipgloss.NewStyle().Bold(true).Foreground(p.Primary).MarginBottom(1),
		Subtitle: lipgloss.NewStyle().Foreground(p.Muted).Italic(true),

		TabActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text).
			Background(p.Primary).
			Padding(0, 2),
		TabInactive: lipgloss.NewStyle().
			Foreground(p.Muted).
			Padding(0, 2),
		TabBusy: lipgloss.NewStyle().
			Foreground(p.Warning).
			Padding(0, 2),

		ContentBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(p.Primary),
		Dialog: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(p.Primary).
			Padding(1, 2),

		FieldFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Primary).
			Padding(0, 1),
		FieldBlurred: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(p.Text).
			Background(p.Surface).
			Padding(0, 1),
		HelpKey:  lipgloss.NewStyle().Bold(true).Foreground(p.Secondary),
		HelpDesc: fg(p.Muted),

		Running: fg(p.StatusRunning),
		Pending: fg(p.StatusPending),
		Ready:   fg(p.StatusReady),
		Failed:  fg(p.StatusFailed),

		Score: lipgloss.NewStyle().Bold(true).Foreground(p.Yellow),
		Tree:  fg(p.Blue),
	}
}

// ForTheme builds the styles for a tui.theme setting. Settings that fail to
// resolve get the default theme.
func ForTheme(setting string) *ThemedStyles {
	name, err := ResolveTheme(setting)
	if err != nil {
		name = ThemeDefault
	}
	return NewThemedStyles(GetPalette(name))
}
