package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the intake screens. Which bindings are
// live depends on the step; see helpFor.
type KeyMap struct {
	Next      key.Binding
	Back      key.Binding
	NextField key.Binding
	PrevField key.Binding
	Choose    key.Binding
	Record    key.Binding
	OpenFile  key.Binding
	Edit      key.Binding
	Done      key.Binding
	Summarize key.Binding
	Diagnose  key.Binding
	Reset     key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "次へ"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "戻る"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "次の項目"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "前の項目"),
		),
		Choose: key.NewBinding(
			key.WithKeys("left", "right"),
			key.WithHelp("←/→", "選択"),
		),
		Record: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "録音開始/停止"),
		),
		OpenFile: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "音声ファイル"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "編集"),
		),
		Done: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "編集終了"),
		),
		Summarize: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "AI要約"),
		),
		Diagnose: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "AI診断"),
		),
		Reset: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "最初から"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "終了"),
		),
	}
}

// bindings adapts a list of bindings to help.KeyMap.
type bindings []key.Binding

func (b bindings) ShortHelp() []key.Binding  { return b }
func (b bindings) FullHelp() [][]key.Binding { return [][]key.Binding{b} }
