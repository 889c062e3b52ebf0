package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the reader's key bindings.
type KeyMap struct {
	Next    key.Binding
	Prev    key.Binding
	First   key.Binding
	Last    key.Binding
	Bigger  key.Binding
	Smaller key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default bindings. The arrow keys match the
// browser reader; the rest are terminal conveniences.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("right", "l", " ", "pgdown"),
			key.WithHelp("→", "next page"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "h", "pgup"),
			key.WithHelp("←", "previous page"),
		),
		First: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "first page"),
		),
		Last: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "last page"),
		),
		Bigger: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "A+"),
		),
		Smaller: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "A-"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Smaller, k.Bigger, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.First, k.Last},
		{k.Smaller, k.Bigger},
		{k.Help, k.Quit},
	}
}
