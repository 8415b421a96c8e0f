package claim

import (
	"regexp"
	"strings"
	"time"

	"github.com/tj/go-naturaldate"
)

const DateLayout = "2006-01-02"

var dateLayouts = []string{DateLayout, "2006.01.02", "2006/01/02"}

const weekdays = `(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`

// relativeDate lists the phrases handed to naturaldate. Anything else it
// would either misread or silently resolve to the reference time.
var (
	relativeDate = regexp.MustCompile(`^(today|now|yesterday|[1-9][0-9]* days? ago|((last|past|next) )?` + weekdays + `)$`)
	sameDay      = regexp.MustCompile(`^(today|now)$`)
)

// DateOf drops the clock part of t, keeping its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate accepts YYYY-MM-DD, YYYY.MM.DD, YYYY/MM/DD, and the relative
// phrases today, yesterday, "N days ago" and "[last|next] <weekday>"
// resolved against ref.
func ParseDate(s string, ref time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrDateRequired
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	phrase := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	if !relativeDate.MatchString(phrase) {
		return time.Time{}, ErrInvalidDate
	}
	t, err := naturaldate.Parse(phrase, ref, naturaldate.WithDirection(naturaldate.Past))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	d := DateOf(t)
	if d.Equal(DateOf(ref)) && !sameDay.MatchString(phrase) {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// WeekStart returns the Monday of the week containing d.
func WeekStart(d time.Time) time.Time {
	d = DateOf(d)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// WeekDates returns the five business days starting at monday.
func WeekDates(monday time.Time) []time.Time {
	out := make([]time.Time, 5)
	for i := range out {
		out[i] = monday.AddDate(0, 0, i)
	}
	return out
}

func IsWeekend(d time.Time) bool {
	return d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
}

// WorkingDates returns the first n weekdays on or after start.
func WorkingDates(start time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	for d := DateOf(start); len(out) < n; d = d.AddDate(0, 0, 1) {
		if !IsWeekend(d) {
			out = append(out, d)
		}
	}
	return out
}
