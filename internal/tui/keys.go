package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left        key.Binding
	Right       key.Binding
	Up          key.Binding
	Down        key.Binding
	Click       key.Binding
	Toggle      key.Binding
	Row         key.Binding
	Column      key.Binding
	SelectRow   key.Binding
	SelectAll   key.Binding
	UnselectRow key.Binding
	UnselectAll key.Binding
	DragEarlier key.Binding
	DragLater   key.Binding
	Commit      key.Binding
	Cancel      key.Binding
	Undo        key.Binding
	Redo        key.Binding
	Save        key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "frame -1")),
		Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "frame +1")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "track up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "track down")),
		Click:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		Toggle:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "toggle")),
		Row:         key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "row")),
		Column:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "column")),
		SelectRow:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add row")),
		SelectAll:   key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "select all")),
		UnselectRow: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "unselect row")),
		UnselectAll: key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "unselect all")),
		DragEarlier: key.NewBinding(key.WithKeys("<", ","), key.WithHelp("<", "move -1")),
		DragLater:   key.NewBinding(key.WithKeys(">", "."), key.WithHelp(">", "move +1")),
		Commit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "commit move")),
		Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Undo:        key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Redo:        key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "redo")),
		Save:        key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "save")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Click, k.Row, k.DragEarlier, k.DragLater, k.Commit, k.Undo, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.Click, k.Toggle, k.Row, k.Column},
		{k.SelectRow, k.SelectAll, k.UnselectRow, k.UnselectAll},
		{k.DragEarlier, k.DragLater, k.Commit, k.Cancel},
		{k.Undo, k.Redo, k.Save, k.Help, k.Quit},
	}
}
