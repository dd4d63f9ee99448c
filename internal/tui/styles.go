package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors meet WCAG AA contrast on dark terminals.
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		MarginBottom(1)

	Muted    = lipgloss.NewStyle().Foreground(MutedColor)
	Warning  = lipgloss.NewStyle().Foreground(WarningColor)
	Selected = lipgloss.NewStyle().Bold(true).Foreground(TextColor).Background(PrimaryColor).Padding(0, 1)
	Item     = lipgloss.NewStyle().Foreground(TextColor).Padding(0, 1)
	Disabled = lipgloss.NewStyle().Foreground(MutedColor).Strikethrough(true).Padding(0, 1)

	// Layer frames, bottom to top.
	ScreenFrame = lipgloss.NewStyle().
			Padding(1, 2)

	OverlayFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)

	PopupFrame = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(WarningColor).
			Padding(0, 1)

	StatusBar = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(BorderColor).
			Foreground(MutedColor)

	HelpKey = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)
)
