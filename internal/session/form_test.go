package session_test

import (
	"errors"
	"testing"
	"time"

	"github.com/christopherklint97/claim/internal/cache"
	"github.com/christopherklint97/claim/internal/claim"
	"github.com/christopherklint97/claim/internal/session"
)

func TestFormFieldCycle(t *testing.T) {
	f := session.NewForm(testNow)
	seen := []session.Field{f.Current}
	for range session.Fields() {
		f.NextField()
		seen = append(seen, f.Current)
	}
	if seen[0] != session.FieldDate || seen[len(seen)-1] != session.FieldDate {
		t.Errorf("cycle = %v, want to wrap back to date", seen)
	}
	f.PrevField()
	if f.Current != session.FieldComment {
		t.Errorf("PrevField from date = %v, want comment", f.Current)
	}
}

func TestFormCursorEditing(t *testing.T) {
	f := session.NewForm(testNow)
	f.Current = session.FieldComment
	f.CursorEnd()

	for _, r := range "häj" {
		f.Insert(r)
	}
	if f.Comment != "häj" || f.Cursor != 3 {
		t.Fatalf("after insert: %q cursor %d", f.Comment, f.Cursor)
	}

	f.CursorLeft()
	f.CursorLeft()
	f.Backspace()
	if f.Comment != "äj" || f.Cursor != 0 {
		t.Fatalf("after backspace: %q cursor %d", f.Comment, f.Cursor)
	}
	f.Backspace()
	if f.Comment != "äj" {
		t.Errorf("backspace at start changed text to %q", f.Comment)
	}

	f.DeleteChar()
	if f.Comment != "j" {
		t.Errorf("after delete: %q", f.Comment)
	}
	f.CursorEnd()
	f.DeleteChar()
	if f.Comment != "j" {
		t.Errorf("delete at end changed text to %q", f.Comment)
	}
	f.CursorRight()
	if f.Cursor != 1 {
		t.Errorf("cursor moved past end: %d", f.Cursor)
	}
	f.CursorStart()
	f.Insert('x')
	if f.Comment != "xj" {
		t.Errorf("insert at start: %q", f.Comment)
	}
}

func TestFormValidate(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(f *session.Form)
		wantErr error
	}{
		{"defaults need a project", func(f *session.Form) {}, claim.ErrCustomerRequired},
		{"missing work item", func(f *session.Form) { f.Customer = "Acme" }, claim.ErrWorkItemRequired},
		{"complete billable", func(f *session.Form) { f.Customer, f.WorkItem = "Acme", "Portal" }, nil},
		{"holding needs no project", func(f *session.Form) { f.Activity = "holding" }, nil},
		{"empty date", func(f *session.Form) { f.Date = " "; f.Activity = "holding" }, claim.ErrDateRequired},
		{"bad date", func(f *session.Form) { f.Date = "2025-13-40"; f.Activity = "holding" }, claim.ErrInvalidDate},
		{"unknown activity", func(f *session.Form) { f.Activity = "napping" }, claim.ErrUnknownActivity},
		{"empty hours", func(f *session.Form) { f.Activity = "holding"; f.Hours = "" }, claim.ErrHoursRequired},
		{"hours out of range", func(f *session.Form) { f.Activity = "holding"; f.Hours = "25" }, claim.ErrHoursOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := session.NewForm(testNow)
			tt.edit(f)
			_, err := f.Validate(testNow)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFormValidateEntry(t *testing.T) {
	f := session.NewForm(testNow)
	f.Date = "yesterday"
	f.Customer = " Acme "
	f.WorkItem = "Portal"
	f.Hours = "7,5"
	f.Comment = "standup "

	e, err := f.Validate(testNow)
	if err != nil {
		t.Fatal(err)
	}
	want := claim.Entry{
		Date:     time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
		Activity: claim.Billable,
		Customer: "Acme",
		WorkItem: "Portal",
		Hours:    7.5,
		Comment:  "standup",
	}
	if e != want {
		t.Errorf("Validate() = %+v, want %+v", e, want)
	}
}

func TestFormFromEntry(t *testing.T) {
	f := session.FormFromEntry(claim.Entry{
		Date:     time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
		Activity: claim.Education,
		Hours:    2.5,
		Comment:  "course",
	})
	if f.Date != "2025-03-04" || f.Activity != "education" || f.Hours != "2.5" || f.Comment != "course" {
		t.Errorf("FormFromEntry() = %+v", f)
	}
	if f.Current != session.FieldDate || f.Cursor != 10 {
		t.Errorf("focus = %v cursor %d, want date at end", f.Current, f.Cursor)
	}
}

func TestFormApplyCacheEntry(t *testing.T) {
	f := session.NewForm(testNow)
	f.ListFocus = true
	f.ApplyCacheEntry(cache.Entry{Customer: "Acme", WorkItem: "Portal"})
	if f.Customer != "Acme" || f.WorkItem != "Portal" || f.ListFocus || f.Current != session.FieldHours || f.Cursor != 1 {
		t.Errorf("ApplyCacheEntry() = %+v", f)
	}
}
