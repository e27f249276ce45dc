package inspector

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the inspector key bindings.
type KeyMap struct {
	Send    key.Binding
	Back    key.Binding
	Forward key.Binding
	Reload  key.Binding
	Stop    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Send:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Back:    key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "back")),
		Forward: key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "forward")),
		Reload:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
		Stop:    key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "stop")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Back, k.Forward, k.Reload, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Send, k.Back, k.Forward}, {k.Reload, k.Stop, k.Quit}}
}
