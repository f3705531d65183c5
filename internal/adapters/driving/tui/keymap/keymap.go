// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
// Quit and Cancel share keys; which one applies depends on whether the
// run is still in progress.
type KeyMap struct {
	// Quit exits the dashboard after the run has finished.
	Quit key.Binding

	// Cancel stops the run while it is in progress.
	Cancel key.Binding

	// Up scrolls up in the file list.
	Up key.Binding

	// Down scrolls down in the file list.
	Down key.Binding

	// Failures toggles the failures-only filter on the file list.
	Failures key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "cancel"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Failures: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "failures only"),
		),
	}
}

// ShortHelp returns a minimal list of keybindings.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit}
}

// RunningHelp returns keybindings shown while the run is in progress.
func (k *KeyMap) RunningHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Failures, k.Cancel}
}

// DoneHelp returns keybindings shown after the run has finished.
func (k *KeyMap) DoneHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Failures, k.Quit}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
