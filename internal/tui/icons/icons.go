package icons

import (
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/Dicklesworthstone/sfh/internal/account"
	"github.com/Dicklesworthstone/sfh/internal/overview"
)

// IconSet contains all icons used in the TUI
type IconSet struct {
	// Navigation
	Pointer   string
	ArrowUp   string
	ArrowDown string
	Enter     string
	Back      string

	// Indicators
	Unknown  string
	Ready    string
	Negative string
	Timer    string

	// Account states
	LoggingIn string
	Active    string
	Busy      string
	Error     string

	// Objects
	Server  string
	Account string
	Crawl   string
	Update  string

	Help string
}

// NerdFonts is the full icon set using Nerd Font symbols
var NerdFonts = IconSet{
	Pointer:   "❯",
	ArrowUp:   "",
	ArrowDown: "",
	Enter:     "⏎",
	Back:      "",

	Unknown:  "",
	Ready:    "",
	Negative: "",
	Timer:    "󰔛",

	LoggingIn: "󰍂",
	Active:    "",
	Busy:      "󰓥",
	Error:     "",

	Server:  "󰒋",
	Account: "",
	Crawl:   "󰈞",
	Update:  "",

	Help: "",
}

// Unicode uses widely supported Unicode symbols
var Unicode = IconSet{
	Pointer:   "▸",
	ArrowUp:   "↑",
	ArrowDown: "↓",
	Enter:     "↵",
	Back:      "←",

	Unknown:  "?",
	Ready:    "✓",
	Negative: "✗",
	Timer:    "◷",

	LoggingIn: "…",
	Active:    "●",
	Busy:      "◐",
	Error:     "✗",

	Server:  "◆",
	Account: "•",
	Crawl:   "⟳",
	Update:  "↑",

	Help: "?",
}

// ASCII works on any terminal
var ASCII = IconSet{
	Pointer:   ">",
	ArrowUp:   "^",
	ArrowDown: "v",
	Enter:     "<-'",
	Back:      "<",

	Unknown:  "?",
	Ready:    "ok",
	Negative: "x",
	Timer:    "t",

	LoggingIn: "..",
	Active:    "*",
	Busy:      "~",
	Error:     "!",

	Server:  "#",
	Account: "-",
	Crawl:   "@",
	Update:  "^",

	Help: "?",
}

// WithFallback fills empty fields from fallback.
func (i IconSet) WithFallback(fallback IconSet) IconSet {
	out := i
	dst := reflect.ValueOf(&out).Elem()
	fb := reflect.ValueOf(fallback)

	for idx := 0; idx < dst.NumField(); idx++ {
		f := dst.Field(idx)
		if f.Kind() != reflect.String {
			continue
		}
		if f.String() != "" {
			continue
		}
		f.SetString(fb.Field(idx).String())
	}

	return out
}

// HasNerdFonts detects if the terminal likely supports Nerd Fonts
func HasNerdFonts() bool {
	// Explicit user preference
	if os.Getenv("SFH_USE_ICONS") == "1" || os.Getenv("NERD_FONTS") == "1" {
		return true
	}
	if os.Getenv("SFH_USE_ICONS") == "0" || os.Getenv("NERD_FONTS") == "0" {
		return false
	}

	// Powerlevel10k config is a strong indicator
	home, _ := os.UserHomeDir()
	if _, err := os.Stat(filepath.Join(home, ".p10k.zsh")); err == nil {
		return true
	}

	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "Alacritty", "kitty", "Hyper", "vscode":
		return true
	}
	return os.Getenv("KITTY_WINDOW_ID") != "" || os.Getenv("WEZTERM_PANE") != ""
}

// HasUnicode detects if the terminal supports Unicode
func HasUnicode() bool {
	for _, v := range []string{os.Getenv("LC_ALL"), os.Getenv("LANG")} {
		if strings.Contains(strings.ToLower(v), "utf") {
			return true
		}
	}
	return os.Getenv("TERM") != "dumb"
}

// Detect returns the icon set for a preference ("nerd", "unicode", "ascii"
// or "auto"). SFH_ICONS overrides the preference.
func Detect(pref string) IconSet {
	if env := os.Getenv("SFH_ICONS"); env != "" {
		pref = env
	}

	switch strings.ToLower(pref) {
	case "nerd", "nerdfonts":
		return NerdFonts.WithFallback(Unicode).WithFallback(ASCII)
	case "unicode":
		return Unicode.WithFallback(ASCII)
	case "ascii":
		return ASCII
	}

	if HasNerdFonts() {
		return NerdFonts.WithFallback(Unicode).WithFallback(ASCII)
	}
	if HasUnicode() {
		return Unicode.WithFallback(ASCII)
	}
	return ASCII
}

// Indicator renders an overview icon with this set. Countdowns are always
// shown as whole seconds.
func (i IconSet) Indicator(icon overview.Icon) string {
	switch icon.Kind {
	case overview.IconCountdown:
		return strconv.FormatInt(icon.Seconds, 10) + "s"
	case overview.IconReady:
		return i.Ready
	case overview.IconNegative:
		return i.Negative
	default:
		return i.Unknown
	}
}

// StateIcon returns the glyph shown next to an account state label
func (i IconSet) StateIcon(k account.Kind) string {
	switch k {
	case account.KindLoggingIn, account.KindLoggingInAgain:
		return i.LoggingIn
	case account.KindIdle:
		return i.Active
	case account.KindBusy:
		return i.Busy
	default:
		return i.Error
	}
}
