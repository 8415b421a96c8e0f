package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/christopherklint97/claim/internal/claim"
	"github.com/christopherklint97/claim/internal/session"
	"github.com/muesli/reflow/truncate"
)

const (
	barWidth   = 30
	listLength = 10
)

func (a *App) render() string {
	s := a.sess
	var sections []string
	sections = append(sections, a.header())

	switch s.Mode() {
	case session.ModeHelp:
		sections = append(sections, a.helpView())
	case session.ModeReport:
		sections = append(sections, a.reportView())
	case session.ModeAddEntry, session.ModeEditEntry:
		sections = append(sections, a.formView())
	default:
		sections = append(sections, a.weekView())
		if s.Mode() == session.ModeDeleteEntry {
			sections = append(sections, a.deleteView())
		} else if e, ok := s.SelectedEntry(); ok {
			sections = append(sections, a.entryView(e))
		}
		sections = append(sections, a.summaryView())
	}

	if msgs := a.messagesView(); msgs != "" {
		sections = append(sections, msgs)
	}
	sections = append(sections, helpStyle.Render(a.help.View(s.Keys().ForMode(s.Mode()))))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) header() string {
	s := a.sess
	start := s.WeekStart()
	_, week := start.ISOWeek()
	title := titleStyle.Render("claim")
	user := subtitleStyle.Render(s.User().Name)
	period := fmt.Sprintf("Week %d  %s - %s  %s",
		week,
		start.Format("Jan 02"),
		start.AddDate(0, 0, 4).Format("Jan 02, 2006"),
		formatHours(s.WeekTotal()),
	)
	return title + "  " + user + "\n" + highlightStyle.Render(period) + "\n"
}

func (a *App) clip(s string, indent int) string {
	w := a.width - indent
	if w <= 1 {
		return s
	}
	return truncate.StringWithTail(s, uint(w), "…")
}

func (a *App) weekView() string {
	s := a.sess
	var sb strings.Builder
	for i, date := range s.WeekDates() {
		entries := s.EntriesOn(i)
		var total float64
		for _, e := range entries {
			total += e.Hours
		}

		line := fmt.Sprintf("%d %s  %s", i+1, date.Format("Mon Jan 02"), formatHours(total))
		switch {
		case i == s.SelectedDay():
			sb.WriteString(selectedStyle.Render("> " + line))
		case len(entries) == 0:
			sb.WriteString(dimStyle.Render("  " + line))
		default:
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n")

		for j, e := range entries {
			row := a.clip(fmt.Sprintf("%-8s %-20s %s", formatHours(e.Hours), e.Activity.String(), e.Label()), 6)
			if i == s.SelectedDay() && j == s.SelectedEntryIndex() {
				sb.WriteString("    " + highlightStyle.Render("▸ "+row))
			} else {
				sb.WriteString("      " + row)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (a *App) entryView(e claim.Entry) string {
	lines := []string{
		titleStyle.Render(e.Label()),
		"Date:      " + claim.FormatDate(e.Date),
		"Activity:  " + e.Activity.String(),
		"Hours:     " + formatHours(e.Hours),
	}
	if e.Comment != "" {
		lines = append(lines, "Comment:   "+a.clip(e.Comment, 15))
	}
	lines = append(lines, dimStyle.Render("ID "+e.ID))
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) deleteView() string {
	e := a.sess.PendingDelete()
	if e == nil {
		return ""
	}
	body := fmt.Sprintf("%s\n%s  %s  %s",
		warningStyle.Render("Delete this entry?"),
		claim.FormatDate(e.Date), e.Activity.String(), formatHours(e.Hours))
	if label := e.Label(); label != "" {
		body += "\n" + label
	}
	return warningBoxStyle.Render(body)
}

func (a *App) summaryView() string {
	totals := session.ActivityTotals(a.sess.Entries())
	if len(totals) == 0 {
		return dimStyle.Render("No entries this week")
	}
	maxHours := totals[0].Hours
	var sb strings.Builder
	for _, t := range totals {
		n := 0
		if maxHours > 0 {
			n = int(t.Hours / maxHours * barWidth)
		}
		fmt.Fprintf(&sb, "%-22s %s %s\n", t.Activity.String(), barStyle.Render(strings.Repeat("█", max(n, 1))), formatHours(t.Hours))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (a *App) messagesView() string {
	var lines []string
	for _, m := range a.sess.Messages() {
		lines = append(lines, messageStyle(m.Level).Render(a.clip(m.Text, 0)))
	}
	return strings.Join(lines, "\n")
}

func (a *App) formView() string {
	s := a.sess
	f := s.Form()
	if f == nil {
		return ""
	}

	title := "New entry"
	if s.Mode() == session.ModeEditEntry {
		title = "Edit entry"
	}
	lines := []string{titleStyle.Render(title), ""}
	for _, field := range session.Fields() {
		value := *f.Field(field)
		label := fmt.Sprintf("%-14s", field.Label()+":")
		if field == f.Current && !f.ListFocus {
			lines = append(lines, highlightStyle.Render("> "+label)+withCursor(value, f.Cursor))
		} else {
			lines = append(lines, dimStyle.Render("  "+label)+value)
		}
	}
	form := boxStyle.Render(strings.Join(lines, "\n"))

	var side string
	switch {
	case f.ListFocus, f.Current == session.FieldCustomer, f.Current == session.FieldWorkItem:
		side = a.recentView(f)
	case f.Current == session.FieldActivity:
		side = activityView(f.Activity)
	}
	if side == "" {
		return form
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, form, " ", side)
}

// withCursor draws a block cursor before the rune at pos.
func withCursor(value string, pos int) string {
	rs := []rune(value)
	pos = min(max(pos, 0), len(rs))
	cursor := highlightStyle.Reverse(true)
	if pos == len(rs) {
		return value + cursor.Render(" ")
	}
	return string(rs[:pos]) + cursor.Render(string(rs[pos])) + string(rs[pos+1:])
}

func (a *App) recentView(f *session.Form) string {
	list := a.sess.CacheEntries()
	if len(list) == 0 {
		return boxStyle.Render(dimStyle.Render("No recent entries"))
	}
	lines := []string{titleStyle.Render("Recent")}
	for i, e := range list {
		prefix := "   "
		if i < listLength {
			prefix = strconv.Itoa(i) + "  "
		}
		row := truncate.StringWithTail(prefix+e.WorkItem+" - "+e.Customer, 40, "…")
		if f.ListFocus && i == f.ListIndex {
			row = selectedStyle.Render(row)
		} else if i >= listLength {
			row = dimStyle.Render(row)
		}
		lines = append(lines, row)
	}
	if f.ListFocus {
		lines = append(lines, dimStyle.Render("enter to use"))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func activityView(current string) string {
	lines := []string{titleStyle.Render("Activity")}
	for _, act := range claim.Activities() {
		row := fmt.Sprintf("%2d  %s", int(act), act.Display())
		if act.String() == current {
			row = selectedStyle.Render(row)
		}
		lines = append(lines, row)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) reportView() string {
	s := a.sess
	headers := []string{"Project"}
	for _, d := range s.WeekDates() {
		headers = append(headers, d.Format("Mon 02"))
	}
	headers = append(headers, "Total")

	rows := s.Report()
	cursor := s.ReportRow()
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if col > 0 {
				base = base.Align(lipgloss.Right)
			}
			switch {
			case row == table.HeaderRow:
				return base.Inherit(titleStyle)
			case row >= len(rows):
				return base
			case rows[row].Kind == session.RowTotal:
				return base.Inherit(successStyle)
			case row == cursor:
				return base.Inherit(highlightStyle)
			}
			return base
		})

	for _, r := range rows {
		if r.Kind == session.RowSeparator {
			t.Row(make([]string, len(headers))...)
			continue
		}
		cells := []string{truncate.StringWithTail(r.Label(), 40, "…")}
		for _, h := range r.Hours {
			cells = append(cells, reportCell(h))
		}
		cells = append(cells, reportCell(r.Total()))
		t.Row(cells...)
	}
	return titleStyle.Render("Weekly report") + "\n" + t.String()
}

func (a *App) helpView() string {
	body := []string{
		titleStyle.Render("Keys"),
		"",
		a.help.FullHelpView(a.sess.Keys().ForMode(session.ModeNormal).FullHelp()),
		"",
		subtitleStyle.Render("In the entry form: tab/shift+tab switch fields, ctrl+l focuses the recent list,"),
		subtitleStyle.Render("digits pick an activity or a recent customer/work item, enter saves, esc cancels."),
		"",
		dimStyle.Render("Press any key to return"),
	}
	return boxStyle.Render(strings.Join(body, "\n"))
}

func reportCell(h float64) string {
	if h == 0 {
		return ""
	}
	return strconv.FormatFloat(h, 'f', -1, 64)
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', 1, 64) + "h"
}
