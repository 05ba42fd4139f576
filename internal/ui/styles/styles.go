// Package styles defines the visual appearance for the fnug TUI.
// Using Catppuccin Mocha color palette.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Catppuccin Mocha color palette
var (
	Mauve    = lipgloss.Color("#CBA6F7")
	Red      = lipgloss.Color("#F38BA8")
	Peach    = lipgloss.Color("#FAB387")
	Yellow   = lipgloss.Color("#F9E2AF")
	Green    = lipgloss.Color("#A6E3A1")
	Sapphire = lipgloss.Color("#74C7EC")
	Blue     = lipgloss.Color("#89B4FA")

	Text     = lipgloss.Color("#CDD6F4")
	Subtext0 = lipgloss.Color("#A6ADC8")
	Overlay0 = lipgloss.Color("#6C7086")
	Surface1 = lipgloss.Color("#45475A")
	Surface0 = lipgloss.Color("#313244")
	Base     = lipgloss.Color("#1E1E2E")
	Mantle   = lipgloss.Color("#181825")
)

// Semantic colors
var (
	Primary     = Mauve
	Accent      = Sapphire
	Danger      = Red
	Warning     = Peach
	Success     = Green
	TextCol     = Text
	TextMuted   = Subtext0
	Border      = Surface1
	BorderFocus = Mauve
)

// Process status colors
var (
	StatusRunning = Green
	StatusIdle    = Overlay0
	StatusExited  = Blue
	StatusKilled  = Yellow
	StatusCrashed = Red
)

// Panel styles
var (
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border)

	FocusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(BorderFocus)

	PanelTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextCol).
			Padding(0, 1)

	PanelTitleFocused = lipgloss.NewStyle().
				Bold(true).
				Foreground(Primary).
				Padding(0, 1)
)

// Tree item styles
var (
	TreeItem = lipgloss.NewStyle().
			Foreground(TextCol).
			Padding(0, 1)

	TreeItemSelected = lipgloss.NewStyle().
				Foreground(TextCol).
				Background(Surface0).
				Bold(true).
				Padding(0, 1)

	TreeGroup = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true).
			Padding(0, 1)

	TreeItemDim = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1)
)

// StatusBar styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Background(Mantle).
			Padding(0, 1)

	StatusBarKey = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	StatusBarDesc = lipgloss.NewStyle().
			Foreground(TextMuted)

	StatusBarSeparator = lipgloss.NewStyle().
				Foreground(Overlay0).
				SetString(" │ ")

	StatusBarBrand = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)
)

// Terminal styles
var (
	TerminalPlaceholder = lipgloss.NewStyle().
				Foreground(TextMuted).
				Italic(true)
)
