package calendar

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/christopherklint97/claim/internal/claim"
	ical "github.com/emersion/go-ical"
)

func TestSummary(t *testing.T) {
	tests := []struct {
		entry claim.Entry
		want  string
	}{
		{claim.Entry{Activity: claim.Billable, Customer: "Acme", WorkItem: "Portal", Hours: 7.5}, "billable Acme / Portal (7.5h)"},
		{claim.Entry{Activity: claim.Holiday, Hours: 8}, "holiday (8h)"},
		{claim.Entry{Activity: claim.Education, WorkItem: "Go course", Hours: 2}, "education Go course (2h)"},
	}
	for _, tt := range tests {
		if got := Summary(tt.entry); got != tt.want {
			t.Errorf("Summary(%+v) = %q, want %q", tt.entry, got, tt.want)
		}
	}
}

func TestExport(t *testing.T) {
	entries := []claim.Entry{
		{ID: "101", Date: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), Activity: claim.Billable, Customer: "Acme", WorkItem: "Portal", Hours: 8, Comment: "release"},
		{Date: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), Activity: claim.Holiday, Hours: 8},
	}
	var buf bytes.Buffer
	if err := Export(&buf, entries, time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	cal, err := ical.NewDecoder(strings.NewReader(buf.String())).Decode()
	if err != nil {
		t.Fatalf("decoding export: %v", err)
	}
	events := cal.Events()
	if len(events) != len(entries) {
		t.Fatalf("got %d events, want %d", len(events), len(entries))
	}

	first := events[0]
	if uid, _ := first.Props.Text(ical.PropUID); uid != "101@claim" {
		t.Errorf("UID = %q", uid)
	}
	if summary, _ := first.Props.Text(ical.PropSummary); summary != "billable Acme / Portal (8h)" {
		t.Errorf("SUMMARY = %q", summary)
	}
	if desc, _ := first.Props.Text(ical.PropDescription); desc != "release" {
		t.Errorf("DESCRIPTION = %q", desc)
	}
	start, err := first.DateTimeStart(time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if !start.Equal(entries[0].Date) {
		t.Errorf("DTSTART = %v, want %v", start, entries[0].Date)
	}
	if p := first.Props.Get(ical.PropDateTimeStart); p.ValueType() != ical.ValueDate {
		t.Errorf("DTSTART value type = %v, want DATE", p.ValueType())
	}

	if uid, _ := events[1].Props.Text(ical.PropUID); uid != "2025-03-04-1@claim" {
		t.Errorf("generated UID = %q", uid)
	}
}
