package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the dashboard's key bindings.
type KeyMap struct {
	Quit      key.Binding
	ForceQuit key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
	}
}

func (k KeyMap) helpText() string {
	quit := k.Quit.Help()
	force := k.ForceQuit.Help()
	return quit.Key + " " + quit.Desc + " • " + force.Key + " " + force.Desc
}
