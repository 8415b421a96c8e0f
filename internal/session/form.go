package session

import (
	"strconv"
	"strings"
	"time"

	"github.com/christopherklint97/claim/internal/cache"
	"github.com/christopherklint97/claim/internal/claim"
)

// Field is one of the six form inputs.
type Field int

const (
	FieldDate Field = iota
	FieldActivity
	FieldCustomer
	FieldWorkItem
	FieldHours
	FieldComment

	fieldCount
)

// Fields lists the inputs in tab order.
func Fields() []Field {
	return []Field{FieldDate, FieldActivity, FieldCustomer, FieldWorkItem, FieldHours, FieldComment}
}

func (f Field) Next() Field { return (f + 1) % fieldCount }
func (f Field) Prev() Field { return (f + fieldCount - 1) % fieldCount }

func (f Field) Label() string {
	switch f {
	case FieldDate:
		return "Date"
	case FieldActivity:
		return "Activity Type"
	case FieldCustomer:
		return "Customer"
	case FieldWorkItem:
		return "Work Item"
	case FieldHours:
		return "Hours"
	case FieldComment:
		return "Comment"
	}
	return ""
}

// Form holds the raw text of an entry being added or edited. Cursor counts
// runes and always lies within the current field.
type Form struct {
	Date     string
	Activity string
	Customer string
	WorkItem string
	Hours    string
	Comment  string

	Current   Field
	Cursor    int
	ListFocus bool
	ListIndex int
}

func NewForm(date time.Time) *Form {
	return &Form{
		Date:     claim.FormatDate(date),
		Activity: claim.Billable.String(),
		Hours:    "8",
	}
}

// FormFromEntry fills a form from an existing entry with the cursor at the
// end of the date.
func FormFromEntry(e claim.Entry) *Form {
	f := &Form{
		Date:     claim.FormatDate(e.Date),
		Activity: e.Activity.String(),
		Customer: e.Customer,
		WorkItem: e.WorkItem,
		Hours:    strconv.FormatFloat(e.Hours, 'f', -1, 64),
		Comment:  e.Comment,
	}
	f.CursorEnd()
	return f
}

// Field returns the storage of input k.
func (f *Form) Field(k Field) *string {
	switch k {
	case FieldActivity:
		return &f.Activity
	case FieldCustomer:
		return &f.Customer
	case FieldWorkItem:
		return &f.WorkItem
	case FieldHours:
		return &f.Hours
	case FieldComment:
		return &f.Comment
	}
	return &f.Date
}

func (f *Form) current() []rune {
	return []rune(*f.Field(f.Current))
}

func (f *Form) NextField() {
	f.Current = f.Current.Next()
	f.CursorEnd()
}

func (f *Form) PrevField() {
	f.Current = f.Current.Prev()
	f.CursorEnd()
}

func (f *Form) CursorLeft() {
	if f.Cursor > 0 {
		f.Cursor--
	}
}

func (f *Form) CursorRight() {
	if f.Cursor < len(f.current()) {
		f.Cursor++
	}
}

func (f *Form) CursorStart() { f.Cursor = 0 }
func (f *Form) CursorEnd()   { f.Cursor = len(f.current()) }

func (f *Form) Insert(r rune) {
	rs := f.current()
	f.clampCursor(len(rs))
	rs = append(rs[:f.Cursor], append([]rune{r}, rs[f.Cursor:]...)...)
	*f.Field(f.Current) = string(rs)
	f.Cursor++
}

// Backspace removes the rune before the cursor.
func (f *Form) Backspace() {
	rs := f.current()
	f.clampCursor(len(rs))
	if f.Cursor == 0 {
		return
	}
	rs = append(rs[:f.Cursor-1], rs[f.Cursor:]...)
	*f.Field(f.Current) = string(rs)
	f.Cursor--
}

// DeleteChar removes the rune under the cursor.
func (f *Form) DeleteChar() {
	rs := f.current()
	f.clampCursor(len(rs))
	if f.Cursor >= len(rs) {
		return
	}
	rs = append(rs[:f.Cursor], rs[f.Cursor+1:]...)
	*f.Field(f.Current) = string(rs)
}

func (f *Form) clampCursor(n int) {
	if f.Cursor > n {
		f.Cursor = n
	}
	if f.Cursor < 0 {
		f.Cursor = 0
	}
}

// ApplyCacheEntry copies a remembered pair into the form and moves on to
// the hours.
func (f *Form) ApplyCacheEntry(e cache.Entry) {
	f.Customer = e.Customer
	f.WorkItem = e.WorkItem
	f.ListFocus = false
	f.Current = FieldHours
	f.CursorEnd()
}

// SetActivity replaces the activity text with the name of code a.
func (f *Form) SetActivity(a claim.Activity) {
	f.Activity = a.String()
	if f.Current == FieldActivity {
		f.CursorEnd()
	}
}

// Validate checks the form and converts it to an entry. ref resolves
// relative dates.
func (f *Form) Validate(ref time.Time) (claim.Entry, error) {
	var e claim.Entry
	if strings.TrimSpace(f.Date) == "" {
		return e, claim.ErrDateRequired
	}
	date, err := claim.ParseDate(f.Date, ref)
	if err != nil {
		return e, err
	}
	activity, ok := claim.ActivityByName(f.Activity)
	if !ok {
		return e, claim.ErrUnknownActivity
	}
	customer := strings.TrimSpace(f.Customer)
	workItem := strings.TrimSpace(f.WorkItem)
	if activity.RequiresProject() {
		if customer == "" {
			return e, claim.ErrCustomerRequired
		}
		if workItem == "" {
			return e, claim.ErrWorkItemRequired
		}
	}
	hours, err := claim.ParseHours(f.Hours)
	if err != nil {
		return e, err
	}
	return claim.Entry{
		Date:     date,
		Activity: activity,
		Customer: customer,
		WorkItem: workItem,
		Hours:    hours,
		Comment:  strings.TrimSpace(f.Comment),
	}, nil
}
