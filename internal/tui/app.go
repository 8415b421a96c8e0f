package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/christopherklint97/claim/internal/session"
)

// handledMsg reports that a dispatched key batch has finished.
type handledMsg struct {
	quit bool
}

// App renders a session and feeds it key presses. Keys are handled one
// batch at a time in a command; while a batch runs the App shows the frame
// captured before dispatch and drops further keys, so the session is only
// touched by one goroutine at a time.
type App struct {
	ctx     context.Context
	sess    *session.Session
	spinner spinner.Model
	help    help.Model

	busy   bool
	frame  string
	width  int
	height int
}

func NewApp(ctx context.Context, sess *session.Session) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot

	h := help.New()
	h.Styles.ShortKey = highlightStyle
	h.Styles.ShortDesc = dimStyle
	h.Styles.FullKey = highlightStyle
	h.Styles.FullDesc = dimStyle

	return &App{
		ctx:     ctx,
		sess:    sess,
		spinner: s,
		help:    h,
		width:   80,
	}
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, sess *session.Session) error {
	p := tea.NewProgram(NewApp(ctx, sess), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		return a, nil

	case spinner.TickMsg:
		if !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case handledMsg:
		a.busy = false
		a.frame = ""
		if msg.quit {
			return a, tea.Quit
		}
		return a, nil

	case tea.KeyMsg:
		if a.busy {
			return a, nil
		}
		keys := keysFrom(msg)
		if len(keys) == 0 {
			return a, nil
		}
		a.frame = a.render()
		a.busy = true
		return a, tea.Batch(a.spinner.Tick, a.dispatch(keys))
	}
	return a, nil
}

// dispatch hands keys to the session in order, stopping at a quit.
func (a *App) dispatch(keys []session.Key) tea.Cmd {
	return func() tea.Msg {
		for _, k := range keys {
			if a.sess.HandleKey(a.ctx, k) {
				return handledMsg{quit: true}
			}
		}
		return handledMsg{}
	}
}

// keysFrom splits pasted or buffered rune input into one key per rune.
func keysFrom(msg tea.KeyMsg) []session.Key {
	if msg.Type == tea.KeyRunes && !msg.Alt {
		keys := make([]session.Key, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			keys = append(keys, session.Key(string(r)))
		}
		return keys
	}
	return []session.Key{session.Key(msg.String())}
}

func (a *App) View() string {
	if a.busy {
		return a.frame + "\n" + a.spinner.View() + dimStyle.Render(" Working...")
	}
	return a.render()
}
