// Package theme holds the dashboard color palettes and the lipgloss styles
// built from them.
package theme

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/Dicklesworthstone/sfh/internal/account"
)

// Theme defines a complete color palette for the TUI
type Theme struct {
	// Base colors
	Base     lipgloss.Color // Background
	Surface0 lipgloss.Color // Surface
	Surface1 lipgloss.Color // Surface highlight
	Surface2 lipgloss.Color // Borders, dividers

	// Text colors
	Text    lipgloss.Color // Primary text
	Subtext lipgloss.Color // Secondary text
	Overlay lipgloss.Color // Dimmed text

	// Semantic colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Info      lipgloss.Color

	// Account state colors
	LoggingIn lipgloss.Color
	Active    lipgloss.Color
	Busy      lipgloss.Color
	Fatal     lipgloss.Color
}

// Catppuccin Mocha - the flagship dark theme
var CatppuccinMocha = Theme{
	Base:     lipgloss.Color("#1e1e2e"),
	Surface0: lipgloss.Color("#313244"),
	Surface1: lipgloss.Color("#45475a"),
	Surface2: lipgloss.Color("#585b70"),

	Text:    lipgloss.Color("#cdd6f4"),
	Subtext: lipgloss.Color("#a6adc8"),
	Overlay: lipgloss.Color("#6c7086"),

	Primary:   lipgloss.Color("#89b4fa"), // Blue
	Secondary: lipgloss.Color("#cba6f7"), // Mauve
	Success:   lipgloss.Color("#a6e3a1"), // Green
	Warning:   lipgloss.Color("#f9e2af"), // Yellow
	Error:     lipgloss.Color("#f38ba8"), // Red
	Info:      lipgloss.Color("#89dceb"), // Sky

	LoggingIn: lipgloss.Color("#89dceb"), // Sky
	Active:    lipgloss.Color("#a6e3a1"), // Green
	Busy:      lipgloss.Color("#fab387"), // Peach
	Fatal:     lipgloss.Color("#f38ba8"), // Red
}

// Catppuccin Macchiato - darker variant
var CatppuccinMacchiato = Theme{
	Base:     lipgloss.Color("#24273a"),
	Surface0: lipgloss.Color("#363a4f"),
	Surface1: lipgloss.Color("#494d64"),
	Surface2: lipgloss.Color("#5b6078"),

	Text:    lipgloss.Color("#cad3f5"),
	Subtext: lipgloss.Color("#a5adcb"),
	Overlay: lipgloss.Color("#6e738d"),

	Primary:   lipgloss.Color("#8aadf4"),
	Secondary: lipgloss.Color("#c6a0f6"),
	Success:   lipgloss.Color("#a6da95"),
	Warning:   lipgloss.Color("#eed49f"),
	Error:     lipgloss.Color("#ed8796"),
	Info:      lipgloss.Color("#91d7e3"),

	LoggingIn: lipgloss.Color("#91d7e3"),
	Active:    lipgloss.Color("#a6da95"),
	Busy:      lipgloss.Color("#f5a97f"),
	Fatal:     lipgloss.Color("#ed8796"),
}

// Catppuccin Latte - light theme for light terminals
var CatppuccinLatte = Theme{
	Base:     lipgloss.Color("#eff1f5"),
	Surface0: lipgloss.Color("#ccd0da"),
	Surface1: lipgloss.Color("#bcc0cc"),
	Surface2: lipgloss.Color("#acb0be"),

	Text:    lipgloss.Color("#4c4f69"),
	Subtext: lipgloss.Color("#6c6f85"),
	Overlay: lipgloss.Color("#7c7f93"),

	Primary:   lipgloss.Color("#1e66f5"),
	Secondary: lipgloss.Color("#8839ef"),
	Success:   lipgloss.Color("#40a02b"),
	Warning:   lipgloss.Color("#df8e1d"),
	Error:     lipgloss.Color("#d20f39"),
	Info:      lipgloss.Color("#04a5e5"),

	LoggingIn: lipgloss.Color("#04a5e5"),
	Active:    lipgloss.Color("#40a02b"),
	Busy:      lipgloss.Color("#fe640b"),
	Fatal:     lipgloss.Color("#d20f39"),
}

// Nord - popular arctic theme
var Nord = Theme{
	Base:     lipgloss.Color("#2e3440"),
	Surface0: lipgloss.Color("#3b4252"),
	Surface1: lipgloss.Color("#434c5e"),
	Surface2: lipgloss.Color("#4c566a"),

	Text:    lipgloss.Color("#eceff4"),
	Subtext: lipgloss.Color("#d8dee9"),
	Overlay: lipgloss.Color("#7b88a1"),

	Primary:   lipgloss.Color("#88c0d0"),
	Secondary: lipgloss.Color("#b48ead"),
	Success:   lipgloss.Color("#a3be8c"),
	Warning:   lipgloss.Color("#ebcb8b"),
	Error:     lipgloss.Color("#bf616a"),
	Info:      lipgloss.Color("#81a1c1"),

	LoggingIn: lipgloss.Color("#81a1c1"),
	Active:    lipgloss.Color("#a3be8c"),
	Busy:      lipgloss.Color("#d08770"),
	Fatal:     lipgloss.Color("#bf616a"),
}

// Plain is a no-color theme; empty colors mean terminal default.
// Used when NO_COLOR is set or for accessibility needs.
var Plain = Theme{}

// NoColorEnabled returns true if color output should be disabled.
// Respects the NO_COLOR standard (https://no-color.org/):
// - If NO_COLOR exists in environment (any value), colors are disabled
// - SFH_NO_COLOR=1 also disables colors
// - SFH_NO_COLOR=0 forces colors ON (overrides NO_COLOR)
func NoColorEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("SFH_NO_COLOR"))) {
	case "0", "false", "no", "off":
		return false
	case "1", "true", "yes", "on":
		return true
	}

	_, noColorSet := os.LookupEnv("NO_COLOR")
	return noColorSet
}

// FromName returns a palette by name. It accepts the palette names used by
// config.ThemeInfo ("mocha", "macchiato", "latte", "nord", "plain", "auto").
func FromName(name string) Theme {
	if NoColorEnabled() {
		return Plain
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "plain", "none", "no-color", "nocolor":
		return Plain
	case "macchiato":
		return CatppuccinMacchiato
	case "nord":
		return Nord
	case "latte", "light":
		return CatppuccinLatte
	case "mocha", "dark":
		return CatppuccinMocha
	default:
		return autoTheme()
	}
}

// Current returns the palette named by SFH_PALETTE, or the detected one.
func Current() Theme {
	return FromName(os.Getenv("SFH_PALETTE"))
}

// detectDarkBackground inspects the terminal to determine if a dark background is in use.
// It is defined as a variable for testability.
var detectDarkBackground = func() bool {
	output := termenv.NewOutput(os.Stdout)
	return output.HasDarkBackground()
}

var (
	cachedAutoTheme Theme
	autoThemeOnce   sync.Once
)

var resetAutoTheme = func() {
	autoThemeOnce = sync.Once{}
	cachedAutoTheme = Theme{}
}

func autoTheme() Theme {
	autoThemeOnce.Do(func() {
		cachedAutoTheme = CatppuccinMocha

		defer func() {
			if recover() != nil {
				cachedAutoTheme = CatppuccinMocha
			}
		}()

		if !detectDarkBackground() {
			cachedAutoTheme = CatppuccinLatte
		}
	})
	return cachedAutoTheme
}

// StateColor returns the color used for an account in the given state.
func (t Theme) StateColor(k account.Kind) lipgloss.Color {
	switch k {
	case account.KindLoggingIn, account.KindLoggingInAgain:
		return t.LoggingIn
	case account.KindIdle:
		return t.Active
	case account.KindBusy:
		return t.Busy
	default:
		return t.Fatal
	}
}

// Styles contains pre-built lipgloss styles for the theme
type Styles struct {
	Theme Theme

	Header  lipgloss.Style
	Title   lipgloss.Style
	Divider lipgloss.Style

	Normal lipgloss.Style
	Bold   lipgloss.Style
	Dim    lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	Box         lipgloss.Style
	BoxTitle    lipgloss.Style
	Row         lipgloss.Style
	RowSelected lipgloss.Style
	Cursor      lipgloss.Style
	ServerLine  lipgloss.Style
	Banner      lipgloss.Style

	Help      lipgloss.Style
	StatusBar lipgloss.Style
}

// NewStyles creates a Styles instance from a theme
func NewStyles(t Theme) Styles {
	styles := Styles{
		Theme: t,

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text),

		Divider: lipgloss.NewStyle().
			Foreground(t.Surface2),

		Normal: lipgloss.NewStyle().
			Foreground(t.Text),

		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text),

		Dim: lipgloss.NewStyle().
			Foreground(t.Overlay),

		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Success),

		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Warning),

		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Error),

		Info: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Info),

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Surface2).
			Padding(0, 1),

		BoxTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary),

		Row: lipgloss.NewStyle().
			Foreground(t.Text),

		RowSelected: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text).
			Background(t.Surface0),

		Cursor: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary),

		ServerLine: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Secondary),

		Banner: lipgloss.NewStyle().
			Foreground(t.Base).
			Background(t.Warning).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(t.Overlay),

		StatusBar: lipgloss.NewStyle().
			Foreground(t.Subtext).
			Background(t.Surface0).
			Padding(0, 1),
	}

	// Without colors, selection and errors must still be visible
	if t == Plain {
		styles.RowSelected = lipgloss.NewStyle().
			Bold(true).
			Reverse(true)
		styles.Banner = lipgloss.NewStyle().
			Bold(true).
			Reverse(true).
			Padding(0, 1)
		styles.Warning = styles.Warning.Copy().Underline(true)
		styles.Error = styles.Error.Copy().Underline(true)
	}

	return styles
}

// State returns the style for an account state label.
func (s Styles) State(k account.Kind) lipgloss.Style {
	style := lipgloss.NewStyle().Foreground(s.Theme.StateColor(k))
	if k == account.KindFatalError {
		style = style.Bold(true)
		if s.Theme == Plain {
			style = style.Underline(true)
		}
	}
	return style
}

// DefaultStyles returns styles for the current theme
func DefaultStyles() Styles {
	return NewStyles(Current())
}
