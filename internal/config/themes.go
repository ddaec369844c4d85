package config

import "strings"

// ThemeInfo describes one selectable theme. Palette names the terminal
// palette the dashboard renders it with.
type ThemeInfo struct {
	Name    string
	Dark    bool
	Palette string
}

// AvailableThemes lists the themes accepted by the theme setting.
var AvailableThemes = []ThemeInfo{
	{"Light", false, "latte"},
	{"Dark", true, "mocha"},
	{"Dracula", true, "mocha"},
	{"Nord", true, "nord"},
	{"SolarizedLight", false, "latte"},
	{"SolarizedDark", true, "macchiato"},
	{"GruvboxLight", false, "latte"},
	{"GruvboxDark", true, "macchiato"},
	{"CatppuccinLatte", false, "latte"},
	{"CatppuccinFrappe", true, "macchiato"},
	{"CatppuccinMacchiato", true, "macchiato"},
	{"CatppuccinMocha", true, "mocha"},
	{"TokyoNight", true, "mocha"},
	{"TokyoNightStorm", true, "macchiato"},
	{"TokyoNightLight", false, "latte"},
	{"KanagawaWave", true, "mocha"},
	{"KanagawaDragon", true, "mocha"},
	{"KanagawaLotus", false, "latte"},
	{"Moonfly", true, "mocha"},
	{"Nightfly", true, "nord"},
	{"Oxocarbon", true, "mocha"},
	{"Plain", true, "plain"},
	{"Auto", true, "auto"},
}

// LookupTheme finds a theme by name, ignoring case, spaces, dashes and
// underscores ("tokyo-night" matches TokyoNight).
func LookupTheme(name string) (ThemeInfo, bool) {
	key := normalizeThemeName(name)
	for _, t := range AvailableThemes {
		if normalizeThemeName(t.Name) == key {
			return t, true
		}
	}
	return ThemeInfo{}, false
}

// ThemeNames returns the theme names in table order.
func ThemeNames() []string {
	names := make([]string, len(AvailableThemes))
	for i, t := range AvailableThemes {
		names[i] = t.Name
	}
	return names
}

func normalizeThemeName(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(s)))
}
