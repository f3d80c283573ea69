package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Digit    key.Binding
	Operator key.Binding
	Clear    key.Binding
	Submit   key.Binding
	Abort    key.Binding
	Again    key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Digit: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9", "0"),
			key.WithHelp("1-9", "digit"),
		),
		Operator: key.NewBinding(
			key.WithKeys("+", "-", "*", "x", "/", "(", ")"),
			key.WithHelp("+-*/()", "operator"),
		),
		Clear: key.NewBinding(
			key.WithKeys("backspace", "delete", "c"),
			key.WithHelp("bksp", "clear"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter", "="),
			key.WithHelp("enter", "submit"),
		),
		Abort: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "give up"),
		),
		Again: key.NewBinding(
			key.WithKeys("enter", "r"),
			key.WithHelp("enter", "play again"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// playKeys is the help.KeyMap shown during a round.
type playKeys keyMap

func (k playKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Digit, k.Operator, k.Clear, k.Submit, k.Abort}
}

func (k playKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// endKeys is the help.KeyMap shown on the result screen.
type endKeys keyMap

func (k endKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Again, k.Quit}
}

func (k endKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// operatorToken maps a key to the token appended to the expression.
func operatorToken(k string) string {
	if k == "x" {
		return "*"
	}
	return k
}
