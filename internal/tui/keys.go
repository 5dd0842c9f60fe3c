package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Tab      key.Binding
	Filter   key.Binding
	Add      key.Binding
	Remove   key.Binding
	AppID    key.Binding
	Unlock   key.Binding
	Discover key.Binding
	Search   key.Binding
	Pick     key.Binding
	PickAll  key.Binding
	Open     key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch panel")),
		Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Remove:   key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		AppID:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "appid")),
		Unlock:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unlockall")),
		Discover: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "discover")),
		Search:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "search")),
		Pick:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add result")),
		PickAll:  key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "add all")),
		Open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Filter, k.Add, k.Remove, k.AppID, k.Unlock, k.Discover, k.Search, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Tab, k.Filter},
		{k.Add, k.Remove, k.AppID, k.Unlock},
		{k.Discover, k.Search, k.Pick, k.PickAll},
		{k.Open, k.Reload, k.Help, k.Quit},
	}
}
