package calendar

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/christopherklint97/claim/internal/claim"
	ical "github.com/emersion/go-ical"
)

const productID = "-//claim//timesheet export//EN"

// Summary is the event title of a claim, for example
// "billable Acme / Portal (7.5h)".
func Summary(e claim.Entry) string {
	s := e.Activity.String()
	switch {
	case e.Customer != "" && e.WorkItem != "":
		s += " " + e.Customer + " / " + e.WorkItem
	case e.Customer != "" || e.WorkItem != "":
		s += " " + e.Customer + e.WorkItem
	}
	return s + " (" + strconv.FormatFloat(e.Hours, 'f', -1, 64) + "h)"
}

// Export writes one all-day event per claim. now stamps every event.
func Export(w io.Writer, entries []claim.Entry, now time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for i, e := range entries {
		uid := e.ID
		if uid == "" {
			uid = fmt.Sprintf("%s-%d", claim.FormatDate(e.Date), i)
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, uid+"@claim")
		event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
		event.Props.SetDate(ical.PropDateTimeStart, e.Date)
		event.Props.SetDate(ical.PropDateTimeEnd, e.Date.AddDate(0, 0, 1))
		event.Props.SetText(ical.PropSummary, Summary(e))
		if e.Comment != "" {
			event.Props.SetText(ical.PropDescription, e.Comment)
		}
		cal.Children = append(cal.Children, event.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encoding calendar: %w", err)
	}
	return nil
}
