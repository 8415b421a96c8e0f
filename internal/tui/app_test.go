package tui

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/christopherklint97/claim/internal/cache"
	"github.com/christopherklint97/claim/internal/claim"
	"github.com/christopherklint97/claim/internal/monday"
	"github.com/christopherklint97/claim/internal/session"
)

// stubRemote serves a fixed set of entries and accepts every write.
type stubRemote struct {
	entries []claim.Entry
}

func (r *stubRemote) GroupIDForYear(context.Context, int) (string, error) { return "g", nil }

func (r *stubRemote) QueryItems(_ context.Context, q monday.ItemQuery) ([]monday.Item, error) {
	var items []monday.Item
	for i, e := range r.entries {
		date := claim.FormatDate(e.Date)
		if len(q.Dates) > 0 && !strings.Contains(strings.Join(q.Dates, ","), date) {
			continue
		}
		status, _ := json.Marshal(map[string]int{"index": int(e.Activity)})
		items = append(items, monday.Item{
			ID: string(rune('a' + i)),
			ColumnValues: []monday.ColumnValue{
				{ID: "date4", Text: ptr(date)},
				{ID: "status", Value: ptr(string(status))},
				{ID: "text__1", Text: ptr(e.Customer)},
				{ID: "text8__1", Text: ptr(e.WorkItem)},
				{ID: "numbers__1", Text: ptr("8")},
			},
		})
	}
	return items, nil
}

func (r *stubRemote) CreateItem(context.Context, string, string, map[string]any) (string, error) {
	return "new", nil
}
func (r *stubRemote) UpdateItem(context.Context, string, map[string]any) error { return nil }
func (r *stubRemote) DeleteItem(context.Context, string) error                 { return nil }

func ptr(s string) *string { return &s }

func newTestApp(t *testing.T) *App {
	t.Helper()
	remote := &stubRemote{entries: []claim.Entry{
		{Date: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), Activity: claim.Billable, Customer: "Acme", WorkItem: "Portal"},
		{Date: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), Activity: claim.Holiday},
	}}
	sess, err := session.New(context.Background(), session.Config{
		Remote: remote,
		Cache:  cache.New(),
		User:   monday.User{ID: "1", Name: "Test User"},
		Now:    func() time.Time { return time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("session.New() error: %v", err)
	}
	a := NewApp(context.Background(), sess)
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return a
}

// press dispatches a key synchronously, the way the program would once
// the command completes.
func press(t *testing.T, a *App, msg tea.KeyMsg) tea.Cmd {
	t.Helper()
	_, cmd := a.Update(msg)
	if cmd == nil {
		t.Fatalf("key %q produced no command", msg.String())
	}
	if !a.busy {
		t.Fatalf("key %q did not mark the app busy", msg.String())
	}
	result := a.dispatch(keysFrom(msg))()
	_, next := a.Update(result)
	return next
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeysFrom(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want []session.Key
	}{
		{"single rune", runes("a"), []session.Key{"a"}},
		{"pasted runes", runes("ab1"), []session.Key{"a", "b", "1"}},
		{"tab", tea.KeyMsg{Type: tea.KeyTab}, []session.Key{"tab"}},
		{"shift+tab", tea.KeyMsg{Type: tea.KeyShiftTab}, []session.Key{"shift+tab"}},
		{"ctrl+l", tea.KeyMsg{Type: tea.KeyCtrlL}, []session.Key{"ctrl+l"}},
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, []session.Key{" "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keysFrom(tt.msg)
			if len(got) != len(tt.want) {
				t.Fatalf("keysFrom() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("keysFrom()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestWeekView(t *testing.T) {
	a := newTestApp(t)
	view := a.View()
	for _, want := range []string{"Test User", "Week 10", "Portal - Acme", "holiday", "Loaded 2 entries"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestBusyDropsKeys(t *testing.T) {
	a := newTestApp(t)
	a.Update(runes("p"))
	if !a.busy {
		t.Fatal("app not busy after key")
	}
	frozen := a.frame
	_, cmd := a.Update(runes("q"))
	if cmd != nil {
		t.Error("key accepted while busy")
	}
	if !strings.HasPrefix(a.View(), frozen) {
		t.Error("busy view does not show the frozen frame")
	}
	if a.sess.Mode() != session.ModeNormal {
		t.Errorf("session mutated before dispatch ran: %v", a.sess.Mode())
	}
}

func TestReportView(t *testing.T) {
	a := newTestApp(t)
	press(t, a, runes("p"))
	if a.busy {
		t.Fatal("app still busy after handledMsg")
	}
	view := a.View()
	for _, want := range []string{"Weekly report", "Portal - Acme", "(holiday)", "Total"} {
		if !strings.Contains(view, want) {
			t.Errorf("report missing %q:\n%s", want, view)
		}
	}
}

func TestFormView(t *testing.T) {
	a := newTestApp(t)
	press(t, a, runes("a"))
	press(t, a, tea.KeyMsg{Type: tea.KeyTab})
	view := a.View()
	for _, want := range []string{"New entry", "Activity Type:", "Intellectual Capital"} {
		if !strings.Contains(view, want) {
			t.Errorf("form missing %q:\n%s", want, view)
		}
	}

	press(t, a, tea.KeyMsg{Type: tea.KeyTab})
	if view := a.View(); !strings.Contains(view, "Recent") {
		t.Errorf("customer field does not show the recent list:\n%s", view)
	}
}

func TestQuit(t *testing.T) {
	a := newTestApp(t)
	cmd := press(t, a, runes("q"))
	if cmd == nil {
		t.Fatal("quit produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit key did not return tea.Quit")
	}
}

func TestWithCursor(t *testing.T) {
	if got := withCursor("abc", 1); !strings.HasPrefix(got, "a") || !strings.HasSuffix(got, "c") {
		t.Errorf("withCursor() = %q", got)
	}
	if got := withCursor("", 5); got == "" {
		t.Error("withCursor() on empty value drew nothing")
	}
}
