package claim_test

import (
	"errors"
	"testing"
	"time"

	"github.com/christopherklint97/claim/internal/claim"
	"github.com/christopherklint97/claim/internal/monday"
)

func date(s string) time.Time {
	t, err := time.Parse(claim.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func str(s string) *string { return &s }

func TestActivityRoundTrip(t *testing.T) {
	for code := 0; code <= 12; code++ {
		a := claim.Activity(code)
		got, ok := claim.ActivityByName(a.String())
		if !ok || got != a {
			t.Errorf("ActivityByName(%q) = %d, %v, want %d", a.String(), got, ok, code)
		}
	}
}

func TestActivityUnknown(t *testing.T) {
	if got := claim.Activity(99).String(); got != "unknown(99)" {
		t.Errorf("Activity(99).String() = %q, want %q", got, "unknown(99)")
	}
	if _, err := claim.ParseActivity("juggling"); !errors.Is(err, claim.ErrUnknownActivity) {
		t.Errorf("ParseActivity(juggling) error = %v, want ErrUnknownActivity", err)
	}
}

func TestParseActivity(t *testing.T) {
	tests := []struct {
		in   string
		want claim.Activity
	}{
		{"1", claim.Billable},
		{"12", claim.Overhead},
		{"holding", claim.Holding},
		{"Work Reduction", claim.WorkReduction},
		{"paid-not-worked", claim.PaidNotWorked},
	}
	for _, tt := range tests {
		got, err := claim.ParseActivity(tt.in)
		if err != nil {
			t.Errorf("ParseActivity(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseActivity(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWorkingDates(t *testing.T) {
	tests := []struct {
		start string
		n     int
		want  []string
	}{
		{"2025-03-08", 2, []string{"2025-03-10", "2025-03-11"}},
		{"2025-03-03", 5, []string{"2025-03-03", "2025-03-04", "2025-03-05", "2025-03-06", "2025-03-07"}},
		{"2025-03-07", 2, []string{"2025-03-07", "2025-03-10"}},
	}
	for _, tt := range tests {
		got := claim.WorkingDates(date(tt.start), tt.n)
		if len(got) != len(tt.want) {
			t.Fatalf("WorkingDates(%s, %d) returned %d dates, want %d", tt.start, tt.n, len(got), len(tt.want))
		}
		for i := range got {
			if claim.FormatDate(got[i]) != tt.want[i] {
				t.Errorf("WorkingDates(%s, %d)[%d] = %s, want %s", tt.start, tt.n, i, claim.FormatDate(got[i]), tt.want[i])
			}
			if claim.IsWeekend(got[i]) {
				t.Errorf("WorkingDates(%s, %d) contains weekend %s", tt.start, tt.n, claim.FormatDate(got[i]))
			}
		}
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2025-03-03", "2025-03-03"},
		{"2025-03-06", "2025-03-03"},
		{"2025-03-09", "2025-03-03"},
	}
	for _, tt := range tests {
		if got := claim.FormatDate(claim.WeekStart(date(tt.in))); got != tt.want {
			t.Errorf("WeekStart(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	ref := time.Date(2025, 3, 5, 14, 30, 0, 0, time.UTC)
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"2025-03-01", "2025-03-01", nil},
		{"2025.03.01", "2025-03-01", nil},
		{"2025/03/01", "2025-03-01", nil},
		{"yesterday", "2025-03-04", nil},
		{"Today", "2025-03-05", nil},
		{"3 days ago", "2025-03-02", nil},
		{"last  Monday", "2025-03-03", nil},
		{"monday", "2025-03-03", nil},
		{"next friday", "2025-03-07", nil},
		{"abc", "", claim.ErrInvalidDate},
		{"hello world", "", claim.ErrInvalidDate},
		{"x", "", claim.ErrInvalidDate},
		{"march 3", "", claim.ErrInvalidDate},
		{"0 days ago", "", claim.ErrInvalidDate},
		{"", "", claim.ErrDateRequired},
		{"2025-13-45", "", claim.ErrInvalidDate},
		{"03/01/2025", "", claim.ErrInvalidDate},
	}
	for _, tt := range tests {
		got, err := claim.ParseDate(tt.in, ref)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseDate(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q) error: %v", tt.in, err)
			continue
		}
		if claim.FormatDate(got) != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, claim.FormatDate(got), tt.want)
		}
	}
}

func TestParseHours(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr error
	}{
		{"8", 8, nil},
		{"7.5", 7.5, nil},
		{"7,5", 7.5, nil},
		{"", 0, claim.ErrHoursRequired},
		{"eight", 0, claim.ErrInvalidHours},
		{"25", 0, claim.ErrHoursOutOfRange},
	}
	for _, tt := range tests {
		got, err := claim.ParseHours(tt.in)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ParseHours(%q) error = %v, want %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseHours(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFromItem(t *testing.T) {
	item := monday.Item{
		ID: "123",
		ColumnValues: []monday.ColumnValue{
			{ID: "date4", Text: str("2025-03-03"), Value: str(`{"date":"2025-03-03"}`)},
			{ID: "status", Text: str("Holding"), Value: str(`{"index":2,"post_id":null}`)},
			{ID: "text__1", Text: str("Acme")},
			{ID: "text8__1", Text: str("WI-7")},
			{ID: "numbers__1", Text: str("7.5")},
			{ID: "text2__1", Text: str("standup")},
			{ID: "unrelated", Text: str("x")},
		},
	}
	e, ok := claim.FromItem(item)
	if !ok {
		t.Fatal("FromItem() reported no date")
	}
	if e.ID != "123" || claim.FormatDate(e.Date) != "2025-03-03" || e.Activity != claim.Holding ||
		e.Customer != "Acme" || e.WorkItem != "WI-7" || e.Hours != 7.5 || e.Comment != "standup" {
		t.Errorf("FromItem() = %+v", e)
	}
}

func TestFromItemDefaults(t *testing.T) {
	item := monday.Item{
		ID: "1",
		ColumnValues: []monday.ColumnValue{
			{ID: "date4", Text: str("2025-03-03")},
			{ID: "status", Value: str("not json")},
			{ID: "numbers__1", Text: str("")},
		},
	}
	e, ok := claim.FromItem(item)
	if !ok {
		t.Fatal("FromItem() reported no date")
	}
	if e.Activity != claim.Billable || e.Hours != 0 || e.Comment != "" {
		t.Errorf("FromItem() = %+v", e)
	}

	if _, ok := claim.FromItem(monday.Item{ID: "2"}); ok {
		t.Error("FromItem() without a date column reported ok")
	}
}

func TestColumns(t *testing.T) {
	e := claim.Entry{
		Date:     date("2025-03-03"),
		Activity: claim.Billable,
		Customer: "Acme",
		WorkItem: "WI-7",
		Hours:    8,
	}

	cols := e.Columns("42")
	if got := cols["numbers__1"]; got != "8" {
		t.Errorf("hours column = %v, want %q", got, "8")
	}
	if got := cols["date4"].(map[string]string)["date"]; got != "2025-03-03" {
		t.Errorf("date column = %v", got)
	}
	if got := cols["status"].(map[string]int)["index"]; got != 1 {
		t.Errorf("status index = %d, want 1", got)
	}
	if _, ok := cols["person"]; !ok {
		t.Error("person column missing for create")
	}
	if _, ok := cols["text2__1"]; ok {
		t.Error("empty comment should be omitted")
	}

	if _, ok := e.Columns("")["person"]; ok {
		t.Error("person column set for update")
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		e    claim.Entry
		want string
	}{
		{claim.Entry{Customer: "Acme", WorkItem: "WI-7"}, "WI-7 - Acme"},
		{claim.Entry{Customer: "Acme"}, "Acme"},
		{claim.Entry{WorkItem: "WI-7"}, "WI-7"},
	}
	for _, tt := range tests {
		if got := tt.e.Label(); got != tt.want {
			t.Errorf("Label() = %q, want %q", got, tt.want)
		}
	}
}
