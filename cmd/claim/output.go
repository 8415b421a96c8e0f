package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/christopherklint97/claim/internal/claim"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

var (
	bold    = color.New(color.Bold)
	green   = color.New(color.FgGreen)
	yellow  = color.New(color.FgYellow)
	red     = color.New(color.FgRed)
	faint   = color.New(color.Faint)
	heading = color.New(color.Bold, color.Underline)
)

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// entryTable renders entries one per row with their board IDs.
func entryTable(entries []claim.Entry) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Date"), bold.Sprint("Activity"),
		bold.Sprint("Customer"), bold.Sprint("Work Item"), bold.Sprint("Hours"), bold.Sprint("Comment"))
	for _, e := range entries {
		tbl.AddRow(e.ID, claim.FormatDate(e.Date), e.Activity.String(),
			e.Customer, e.WorkItem, formatHours(e.Hours), e.Comment)
	}
	tbl.RightAlign(5)
	return tbl
}

// printEntry shows one entry as a field list, used before confirmations.
func printEntry(w io.Writer, e claim.Entry) {
	tbl := uitable.New()
	tbl.Separator = "  "
	if e.ID != "" {
		tbl.AddRow(bold.Sprint("ID"), e.ID)
	}
	tbl.AddRow(bold.Sprint("Date"), claim.FormatDate(e.Date))
	tbl.AddRow(bold.Sprint("Activity"), e.Activity.Display())
	tbl.AddRow(bold.Sprint("Customer"), e.Customer)
	tbl.AddRow(bold.Sprint("Work Item"), e.WorkItem)
	tbl.AddRow(bold.Sprint("Hours"), formatHours(e.Hours))
	tbl.AddRow(bold.Sprint("Comment"), e.Comment)
	tbl.RightAlign(0)
	fmt.Fprintln(w, tbl)
}

func totalHours(entries []claim.Entry) float64 {
	var total float64
	for _, e := range entries {
		total += e.Hours
	}
	return total
}
