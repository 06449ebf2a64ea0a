package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up      key.Binding
	down    key.Binding
	sync    key.Binding
	refresh key.Binding
	lowOnly key.Binding
	quit    key.Binding
}

var keys = keyMap{
	up:      key.NewBinding(key.WithKeys("up", "k")),
	down:    key.NewBinding(key.WithKeys("down", "j")),
	sync:    key.NewBinding(key.WithKeys("s")),
	refresh: key.NewBinding(key.WithKeys("r")),
	lowOnly: key.NewBinding(key.WithKeys("l")),
	quit:    key.NewBinding(key.WithKeys("q", "ctrl+c")),
}
