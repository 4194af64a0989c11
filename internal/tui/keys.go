package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Help      key.Binding
	Back      key.Binding
	NextScene key.Binding
	Summary   key.Binding
	Trace     key.Binding
	Compare   key.Binding
	PrevYear  key.Binding
	NextYear  key.Binding
	WhatIf    key.Binding
	Clear     key.Binding
	Reload    key.Binding
	Apply     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		NextScene: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		Summary:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "summary")),
		Trace:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "trace")),
		Compare:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "compare")),
		PrevYear:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous year")),
		NextYear:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next year")),
		WhatIf:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "what-if")),
		Clear:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear what-if")),
		Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload input")),
		Apply:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
	}
}

// shortcuts are the bindings listed in the status bar.
func (k keyMap) shortcuts() []key.Binding {
	return []key.Binding{k.PrevYear, k.NextYear, k.Summary, k.Trace, k.Compare, k.WhatIf, k.Help, k.Quit}
}

// all lists every binding for the help screen.
func (k keyMap) all() []key.Binding {
	return []key.Binding{
		k.PrevYear, k.NextYear, k.NextScene, k.Summary, k.Trace, k.Compare,
		k.WhatIf, k.Clear, k.Reload, k.Help, k.Back, k.Quit,
	}
}
