package session

import (
	"sort"
	"time"

	"github.com/christopherklint97/claim/internal/claim"
)

type RowKind int

const (
	RowBillable RowKind = iota
	RowSeparator
	RowNonBillable
	RowTotal
)

// ReportRow is one line of the weekly report with hours per business day.
type ReportRow struct {
	Kind     RowKind
	Activity claim.Activity
	Customer string
	WorkItem string
	Hours    [5]float64
}

func (r ReportRow) Total() float64 {
	var t float64
	for _, h := range r.Hours {
		t += h
	}
	return t
}

func (r ReportRow) Label() string {
	switch r.Kind {
	case RowTotal:
		return "Total"
	case RowSeparator:
		return ""
	}
	label := claim.Entry{Customer: r.Customer, WorkItem: r.WorkItem}.Label()
	if r.Kind == RowNonBillable {
		if label == "" {
			return "(" + r.Activity.String() + ")"
		}
		return label + " (" + r.Activity.String() + ")"
	}
	return label
}

type reportKey struct {
	activity           claim.Activity
	customer, workItem string
}

// BuildReport groups the week's entries: billable rows by customer and work
// item, then a separator and non-billable rows by activity, customer and
// work item when there are any, then a total row.
func BuildReport(entries []claim.Entry, monday time.Time) []ReportRow {
	groups := make(map[reportKey]*ReportRow)
	var total ReportRow
	total.Kind = RowTotal

	for _, e := range entries {
		day := int(claim.DateOf(e.Date).Sub(claim.DateOf(monday)).Hours() / 24)
		if day < 0 || day > 4 {
			continue
		}
		k := reportKey{activity: e.Activity, customer: e.Customer, workItem: e.WorkItem}
		row, ok := groups[k]
		if !ok {
			row = &ReportRow{Activity: e.Activity, Customer: e.Customer, WorkItem: e.WorkItem, Kind: RowNonBillable}
			if e.Activity == claim.Billable {
				row.Kind = RowBillable
			}
			groups[k] = row
		}
		row.Hours[day] += e.Hours
		total.Hours[day] += e.Hours
	}

	var billable, other []ReportRow
	for _, r := range groups {
		if r.Kind == RowBillable {
			billable = append(billable, *r)
		} else {
			other = append(other, *r)
		}
	}
	sort.Slice(billable, func(i, j int) bool {
		if billable[i].Customer != billable[j].Customer {
			return billable[i].Customer < billable[j].Customer
		}
		return billable[i].WorkItem < billable[j].WorkItem
	})
	sort.Slice(other, func(i, j int) bool {
		a, b := other[i], other[j]
		if a.Activity != b.Activity {
			return a.Activity < b.Activity
		}
		if a.Customer != b.Customer {
			return a.Customer < b.Customer
		}
		return a.WorkItem < b.WorkItem
	})

	rows := append([]ReportRow(nil), billable...)
	if len(other) > 0 {
		rows = append(rows, ReportRow{Kind: RowSeparator})
		rows = append(rows, other...)
	}
	return append(rows, total)
}

// ReportMaxRow is the highest row the report cursor may reach. The bound
// counts the separator but not the total row, and is -1 for an empty week.
func ReportMaxRow(entries []claim.Entry) int {
	billable := make(map[reportKey]bool)
	other := make(map[reportKey]bool)
	for _, e := range entries {
		if e.Activity == claim.Billable {
			billable[reportKey{customer: e.Customer, workItem: e.WorkItem}] = true
		} else {
			other[reportKey{activity: e.Activity, customer: e.Customer, workItem: e.WorkItem}] = true
		}
	}
	separator := 0
	if len(other) > 0 {
		separator = 1
	}
	return len(billable) + len(other) + separator - 1
}

type ActivityTotal struct {
	Activity claim.Activity
	Hours    float64
}

// ActivityTotals sums hours per activity, largest first.
func ActivityTotals(entries []claim.Entry) []ActivityTotal {
	sums := make(map[claim.Activity]float64)
	for _, e := range entries {
		sums[e.Activity] += e.Hours
	}
	out := make([]ActivityTotal, 0, len(sums))
	for a, h := range sums {
		out = append(out, ActivityTotal{Activity: a, Hours: h})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours > out[j].Hours
		}
		return out[i].Activity.String() < out[j].Activity.String()
	})
	return out
}
