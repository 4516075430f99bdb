package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the task list TUI.
type KeyMap struct {
	// Table focus only.
	Select key.Binding
	New    key.Binding
	Reload key.Binding
	Sort   key.Binding // 1-7, one per column.
	Quit   key.Binding

	// Anywhere.
	Save       key.Binding
	Complete   key.Binding
	ClearDue   key.Binding
	NextField  key.Binding
	PrevField  key.Binding
	BackToList key.Binding
	ForceQuit  key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "edit"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new task"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Sort: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7"),
		key.WithHelp("1-7", "sort"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "save"),
	),
	Complete: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("C-d", "done"),
	),
	ClearDue: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("C-x", "clear due"),
	),
	NextField: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	PrevField: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-tab", "prev field"),
	),
	BackToList: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "list"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
}

// ShortHelp lists the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.New, k.Save, k.Complete, k.ClearDue, k.Sort, k.Reload, k.NextField, k.BackToList, k.Quit}
}
