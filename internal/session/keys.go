package session

import (
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
)

// Key is one key press in the notation bubbletea uses for KeyMsg.String:
// "enter", "shift+tab", "ctrl+c", or the printed character itself.
type Key string

func (k Key) String() string { return string(k) }

// Rune returns the character of a printable single-character key.
func (k Key) Rune() (rune, bool) {
	if utf8.RuneCountInString(string(k)) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(string(k))
	if r < ' ' || r == utf8.RuneError {
		return 0, false
	}
	return r, true
}

type KeyMap struct {
	Quit     key.Binding
	Help     key.Binding
	NextWeek key.Binding
	PrevWeek key.Binding
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	Day      key.Binding
	Refresh  key.Binding
	Report   key.Binding
	Add      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Today    key.Binding

	CloseReport key.Binding

	Cancel      key.Binding
	NextField   key.Binding
	PrevField   key.Binding
	FocusList   key.Binding
	CursorStart key.Binding
	CursorEnd   key.Binding
	Submit      key.Binding
	Backspace   key.Binding
	DeleteChar  key.Binding

	Confirm key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "Q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		NextWeek: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next week")),
		PrevWeek: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev week")),
		Left:     key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "day")),
		Right:    key.NewBinding(key.WithKeys("right")),
		Up:       key.NewBinding(key.WithKeys("up"), key.WithHelp("↑/↓", "entry")),
		Down:     key.NewBinding(key.WithKeys("down")),
		Day:      key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "jump to day")),
		Refresh:  key.NewBinding(key.WithKeys("u", "U"), key.WithHelp("u", "refresh")),
		Report:   key.NewBinding(key.WithKeys("p", "P"), key.WithHelp("p", "report")),
		Add:      key.NewBinding(key.WithKeys("a", "A"), key.WithHelp("a", "add")),
		Edit:     key.NewBinding(key.WithKeys("e", "E", "enter"), key.WithHelp("e", "edit")),
		Delete:   key.NewBinding(key.WithKeys("d", "D"), key.WithHelp("d", "delete")),
		Today:    key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "this week")),

		CloseReport: key.NewBinding(key.WithKeys("esc", "q", "p", "P"), key.WithHelp("esc", "close")),

		Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		NextField:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		FocusList:   key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "recent list")),
		CursorStart: key.NewBinding(key.WithKeys("home")),
		CursorEnd:   key.NewBinding(key.WithKeys("end")),
		Submit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Backspace:   key.NewBinding(key.WithKeys("backspace")),
		DeleteChar:  key.NewBinding(key.WithKeys("delete")),

		Confirm: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
	}
}

// HelpKeys satisfies the bubbles help.KeyMap interface for one mode.
type HelpKeys struct {
	short []key.Binding
	full  [][]key.Binding
}

func (h HelpKeys) ShortHelp() []key.Binding  { return h.short }
func (h HelpKeys) FullHelp() [][]key.Binding { return h.full }

func (km KeyMap) ForMode(m Mode) HelpKeys {
	switch m {
	case ModeAddEntry, ModeEditEntry:
		return HelpKeys{
			short: []key.Binding{km.NextField, km.PrevField, km.FocusList, km.Submit, km.Cancel},
			full:  [][]key.Binding{{km.NextField, km.PrevField}, {km.FocusList, km.Submit, km.Cancel}},
		}
	case ModeDeleteEntry:
		return HelpKeys{short: []key.Binding{km.Confirm}}
	case ModeReport:
		return HelpKeys{short: []key.Binding{km.Up, km.NextWeek, km.PrevWeek, km.CloseReport}}
	case ModeHelp:
		return HelpKeys{}
	}
	return HelpKeys{
		short: []key.Binding{km.Left, km.Up, km.NextWeek, km.Add, km.Edit, km.Delete, km.Report, km.Help, km.Quit},
		full: [][]key.Binding{
			{km.Left, km.Up, km.Day, km.Today},
			{km.NextWeek, km.PrevWeek, km.Refresh, km.Report},
			{km.Add, km.Edit, km.Delete},
			{km.Help, km.Quit},
		},
	}
}
