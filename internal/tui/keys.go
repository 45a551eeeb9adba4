package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	Start   key.Binding
	Stop    key.Binding
	Save    key.Binding
	Mode    key.Binding
	Horizon key.Binding
	Size    key.Binding
	Focus   key.Binding
	Up      key.Binding
	Down    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Start: key.NewBinding(
			key.WithKeys("enter", "r"),
			key.WithHelp("enter/r", "start scan"),
		),
		Stop: key.NewBinding(
			key.WithKeys("x", "esc"),
			key.WithHelp("x", "stop"),
		),
		Save: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "save reports"),
		),
		Mode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mode"),
		),
		Horizon: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "horizon"),
		),
		Size: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "min size"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch pane"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k", "pgup"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "pgdown"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k KeyMap) help(running bool) []key.Binding {
	if running {
		return []key.Binding{k.Stop, k.Focus, k.Quit}
	}
	return []key.Binding{k.Start, k.Mode, k.Horizon, k.Size, k.Save, k.Focus, k.Quit}
}
