package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"go-noteroll/widgets"
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Fit    key.Binding
	Redraw key.Binding
	Save   key.Binding
	Cancel key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "pitch up")),
		Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "pitch down")),
		Left:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "earlier")),
		Right:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "later")),
		Fit:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fit notes")),
		Redraw: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "redraw")),
		Save:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel drag")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Save, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Fit},
		{k.Redraw, k.Save, k.Cancel, k.Help, k.Quit},
	}
}

// sections is the long-form help page
func (k keyMap) sections() []widgets.HelpSection {
	drag := key.NewBinding(key.WithHelp("drag", "move a note; it starts where you release"))
	return []widgets.HelpSection{
		{Title: "Mouse", Bindings: []key.Binding{drag}},
		{Title: "View", Bindings: []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Fit, k.Redraw}},
		{Title: "File", Bindings: []key.Binding{k.Save}},
		{Title: "Other", Bindings: []key.Binding{k.Cancel, k.Help, k.Quit}},
	}
}
