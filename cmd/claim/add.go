package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/christopherklint97/claim/internal/cache"
	"github.com/christopherklint97/claim/internal/claim"
	"github.com/christopherklint97/claim/internal/monday"
	"github.com/christopherklint97/claim/internal/session"
	"github.com/christopherklint97/claim/internal/store"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	addDate     string
	addType     string
	addCustomer string
	addWorkItem string
	addHours    string
	addDays     int
	addComment  string
	addYes      bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a claim, optionally repeated over several working days",
	Long: `Add a claim to the board.

Without any of the entry flags the values are asked for interactively.
With --days the same claim is created on each of the following working days.`,
	Example: `  claim add -c Acme -w Portal -H 7.5
  claim add -D 2025-03-03 -t holiday -d 5 -y`,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addDate, "date", "D", "", "Date (YYYY-MM-DD or phrase; default today)")
	addCmd.Flags().StringVarP(&addType, "type", "t", claim.Billable.String(), "Activity type, name or number")
	addCmd.Flags().StringVarP(&addCustomer, "customer", "c", "", "Customer")
	addCmd.Flags().StringVarP(&addWorkItem, "wi", "w", "", "Work item")
	addCmd.Flags().StringVarP(&addHours, "hours", "H", "8", "Hours per day")
	addCmd.Flags().IntVarP(&addDays, "days", "d", 1, "Number of working days")
	addCmd.Flags().StringVarP(&addComment, "comment", "k", "", "Comment")
	addCmd.Flags().BoolVarP(&addYes, "yes", "y", false, "Skip confirmation")
}

var addEntryFlags = []string{"date", "type", "customer", "wi", "hours", "days", "comment"}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	now := time.Now()
	in := bufio.NewReader(os.Stdin)
	out := color.Output

	form := &session.Form{
		Date:     addDate,
		Customer: addCustomer,
		WorkItem: addWorkItem,
		Hours:    addHours,
		Comment:  addComment,
	}
	if form.Date == "" {
		form.Date = claim.FormatDate(now)
	}
	activity, err := claim.ParseActivity(addType)
	if err != nil {
		return err
	}
	form.Activity = activity.String()
	days := addDays

	interactive := true
	for _, name := range addEntryFlags {
		if cmd.Flags().Changed(name) {
			interactive = false
		}
	}
	if interactive {
		if days, err = promptEntry(in, out, form); err != nil {
			return err
		}
	}
	if days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	entry, err := form.Validate(now)
	if err != nil {
		return err
	}
	dates := claim.WorkingDates(entry.Date, days)

	fmt.Fprintln(out)
	printEntry(out, entry)
	if len(dates) > 1 {
		fmt.Fprintf(out, "Creating %d entries from %s to %s\n", len(dates),
			claim.FormatDate(dates[0]), claim.FormatDate(dates[len(dates)-1]))
	}
	if !addYes {
		ok, err := confirm(in, out, "Do you want to proceed?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	c, err := openCache(a.cfg)
	if err != nil {
		a.logger.Warn("entry cache unavailable", "error", err)
		c = cache.New()
	}

	ids, err := addEntries(ctx, a.client, a.db, a.logger, *a.user, entry, dates)
	for i, id := range ids {
		green.Fprintf(out, "Created %s on %s\n", id, claim.FormatDate(dates[i]))
	}
	if len(ids) > 0 {
		c.Upsert(a.user.ID, entry.Customer, entry.WorkItem, claim.FormatDate(dates[len(ids)-1]))
		if serr := c.Save(); serr != nil {
			a.logger.Warn("saving entry cache failed", "error", serr)
		}
	}
	if err != nil {
		return fmt.Errorf("adding entry: %w", err)
	}
	return nil
}

// addEntries creates entry once per date in the year group of that date.
// It stops at the first failure and returns the IDs created so far.
func addEntries(ctx context.Context, r session.Remote, j session.Journal, logger *slog.Logger, user monday.User, entry claim.Entry, dates []time.Time) ([]string, error) {
	groups := make(map[int]string)
	var ids []string
	for _, d := range dates {
		e := entry
		e.Date = d

		gid, ok := groups[d.Year()]
		var err error
		if !ok {
			gid, err = r.GroupIDForYear(ctx, d.Year())
			if err == nil {
				groups[d.Year()] = gid
			}
		}
		if err == nil {
			e.ID, err = r.CreateItem(ctx, gid, user.Name, e.Columns(user.ID))
		}
		record(j, logger, session.NewOperation(store.ActionAdd, e, err))
		if err != nil {
			return ids, err
		}
		ids = append(ids, e.ID)
	}
	return ids, nil
}

// promptEntry asks for every field of form, showing the current values
// as defaults, and returns the number of days.
func promptEntry(in *bufio.Reader, out io.Writer, form *session.Form) (int, error) {
	ask := func(label string, value *string) error {
		answer, err := prompt(in, out, fmt.Sprintf("%s [%s]: ", label, *value))
		if err != nil {
			return err
		}
		if answer != "" {
			*value = answer
		}
		return nil
	}

	if err := ask("Date", &form.Date); err != nil {
		return 0, err
	}

	fmt.Fprintln(out, bold.Sprint("Activity types:"))
	for _, a := range claim.Activities() {
		fmt.Fprintf(out, "  %2d  %s\n", int(a), a.Display())
	}
	activity := form.Activity
	if err := ask("Activity", &activity); err != nil {
		return 0, err
	}
	a, err := claim.ParseActivity(activity)
	if err != nil {
		return 0, err
	}
	form.Activity = a.String()

	if err := ask("Customer", &form.Customer); err != nil {
		return 0, err
	}
	if err := ask("Work item", &form.WorkItem); err != nil {
		return 0, err
	}
	if err := ask("Hours", &form.Hours); err != nil {
		return 0, err
	}
	days := "1"
	if err := ask("Days", &days); err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(days))
	if err != nil {
		return 0, fmt.Errorf("days %q is not a number", days)
	}
	if err := ask("Comment", &form.Comment); err != nil {
		return 0, err
	}
	return n, nil
}
