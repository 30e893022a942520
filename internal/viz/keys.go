package viz

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Prev    key.Binding
	Next    key.Binding
	PrevTen key.Binding
	NextTen key.Binding
	First   key.Binding
	Last    key.Binding
	Reload  key.Binding
	Push    key.Binding
	Follow  key.Binding
	Copy    key.Binding
	Theme   key.Binding
	RotX    key.Binding
	RotXRev key.Binding
	RotY    key.Binding
	RotYRev key.Binding
	RotZ    key.Binding
	RotZRev key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Reload, k.Push, k.Follow, k.Copy, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.PrevTen, k.NextTen, k.First, k.Last},
		{k.Reload, k.Push, k.Follow, k.Copy},
		{k.RotX, k.RotY, k.RotZ, k.ZoomIn, k.ZoomOut},
		{k.Theme, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Prev:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev frame")),
	Next:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next frame")),
	PrevTen: key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "back 10")),
	NextTen: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "ahead 10")),
	First:   key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home/g", "first frame")),
	Last:    key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end/G", "newest frame")),
	Reload:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "update")),
	Push:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "update push")),
	Follow:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "follow")),
	Copy:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy frame")),
	Theme:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	RotX:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x/X", "rotate x")),
	RotXRev: key.NewBinding(key.WithKeys("X")),
	RotY:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y/Y", "rotate y")),
	RotYRev: key.NewBinding(key.WithKeys("Y")),
	RotZ:    key.NewBinding(key.WithKeys("z"), key.WithHelp("z/Z", "rotate z")),
	RotZRev: key.NewBinding(key.WithKeys("Z")),
	ZoomIn:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
