package claim

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/christopherklint97/claim/internal/monday"
)

// Field is the meaning of a board column.
type Field int

const (
	FieldAssignee Field = iota
	FieldDate
	FieldActivity
	FieldCustomer
	FieldWorkItem
	FieldHours
	FieldComment
)

// columns maps board column IDs to fields, for both reads and writes.
var columns = []struct {
	ID    string
	Field Field
}{
	{"person", FieldAssignee},
	{"date4", FieldDate},
	{"status", FieldActivity},
	{"text__1", FieldCustomer},
	{"text8__1", FieldWorkItem},
	{"numbers__1", FieldHours},
	{"text2__1", FieldComment},
}

func ColumnID(f Field) string {
	for _, c := range columns {
		if c.Field == f {
			return c.ID
		}
	}
	return ""
}

func fieldFor(columnID string) (Field, bool) {
	for _, c := range columns {
		if c.ID == columnID {
			return c.Field, true
		}
	}
	return 0, false
}

// Entry is one timesheet line.
type Entry struct {
	ID       string
	Date     time.Time
	Activity Activity
	Customer string
	WorkItem string
	Hours    float64
	Comment  string
}

// Label is "work item - customer", or whichever half is set.
func (e Entry) Label() string {
	switch {
	case e.WorkItem != "" && e.Customer != "":
		return e.WorkItem + " - " + e.Customer
	case e.WorkItem != "":
		return e.WorkItem
	}
	return e.Customer
}

// FromItem translates a board item. Items without a readable date are
// reported as not ok.
func FromItem(it monday.Item) (Entry, bool) {
	e := Entry{ID: it.ID, Activity: Billable}
	hasDate := false
	for _, cv := range it.ColumnValues {
		f, ok := fieldFor(cv.ID)
		if !ok {
			continue
		}
		text := ""
		if cv.Text != nil {
			text = strings.TrimSpace(*cv.Text)
		}
		switch f {
		case FieldDate:
			d, err := time.Parse(DateLayout, text)
			if err == nil {
				e.Date = d
				hasDate = true
			}
		case FieldActivity:
			e.Activity = activityFromValue(cv.Value)
		case FieldCustomer:
			e.Customer = text
		case FieldWorkItem:
			e.WorkItem = text
		case FieldHours:
			if h, err := strconv.ParseFloat(text, 64); err == nil {
				e.Hours = h
			}
		case FieldComment:
			e.Comment = text
		}
	}
	return e, hasDate
}

func activityFromValue(v *string) Activity {
	if v == nil {
		return Billable
	}
	var payload struct {
		Index *int `json:"index"`
	}
	if err := json.Unmarshal([]byte(*v), &payload); err != nil || payload.Index == nil {
		return Billable
	}
	return Activity(*payload.Index)
}

// Columns builds the column_values payload for a write. The assignee is
// set only when assigneeID is non-empty, which callers do for creates.
func (e Entry) Columns(assigneeID string) map[string]any {
	out := map[string]any{
		ColumnID(FieldDate):     map[string]string{"date": FormatDate(e.Date)},
		ColumnID(FieldActivity): map[string]int{"index": int(e.Activity)},
		ColumnID(FieldHours):    strconv.FormatFloat(e.Hours, 'f', -1, 64),
	}
	if assigneeID != "" {
		var id any = assigneeID
		if n, err := strconv.ParseInt(assigneeID, 10, 64); err == nil {
			id = n
		}
		out[ColumnID(FieldAssignee)] = map[string]any{
			"personsAndTeams": []map[string]any{{"id": id, "kind": "person"}},
		}
	}
	if e.Customer != "" {
		out[ColumnID(FieldCustomer)] = e.Customer
	}
	if e.WorkItem != "" {
		out[ColumnID(FieldWorkItem)] = e.WorkItem
	}
	if e.Comment != "" {
		out[ColumnID(FieldComment)] = e.Comment
	}
	return out
}

// ParseHours parses an hours value in the range 0..24.
func ParseHours(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrHoursRequired
	}
	h, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, ErrInvalidHours
	}
	if h < 0 || h > 24 {
		return 0, ErrHoursOutOfRange
	}
	return h, nil
}
