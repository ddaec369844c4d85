package dashboard

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines dashboard keybindings
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Top     key.Binding
	Bottom  key.Binding
	Detail  key.Binding
	Back    key.Binding
	Refresh key.Binding
	Pause   key.Binding
	Ignore  key.Binding
	Revive  key.Binding
	Logout  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Top:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:  key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Detail:  key.NewBinding(key.WithKeys("enter", "d"), key.WithHelp("enter", "details")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Pause:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause/resume")),
		Ignore:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "ignore update"), key.WithDisabled()),
		Revive:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "revive"), key.WithDisabled()),
		Logout:  key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "log out"), key.WithDisabled()),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Detail, k.Revive, k.Ignore, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Detail, k.Back, k.Refresh, k.Pause},
		{k.Revive, k.Logout, k.Ignore},
		{k.Help, k.Quit},
	}
}
