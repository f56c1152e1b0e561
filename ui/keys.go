package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	TogglePause      key.Binding
	RestartSentence  key.Binding
	RestartParagraph key.Binding
	NextSentence     key.Binding
	Stop             key.Binding
	Read             key.Binding
	Help             key.Binding
	Quit             key.Binding
}

// Terminals report ctrl+shift+p as ctrl+p.
func newKeyMap() keyMap {
	return keyMap{
		TogglePause: key.NewBinding(
			key.WithKeys(" ", "ctrl+p"),
			key.WithHelp("space", "pause/resume"),
		),
		RestartSentence: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart sentence"),
		),
		RestartParagraph: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "restart paragraph"),
		),
		NextSentence: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next sentence"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),
		Read: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "read from start"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.TogglePause, k.RestartSentence, k.NextSentence, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.TogglePause, k.Stop, k.Read},
		{k.RestartSentence, k.RestartParagraph, k.NextSentence},
		{k.Help, k.Quit},
	}
}
