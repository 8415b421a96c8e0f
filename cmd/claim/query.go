package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/christopherklint97/claim/internal/claim"
	"github.com/christopherklint97/claim/internal/session"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	queryDate     string
	queryDays     int
	queryLimit    int
	queryCustomer string
	queryWorkItem string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "List your claims on a range of working days",
	Example: `  claim query
  claim query -D 2025-03-03 -d 5
  claim query -D "last monday" -d 5 -c acme`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryDate, "date", "D", "", "First date (YYYY-MM-DD or phrase; default today)")
	queryCmd.Flags().IntVarP(&queryDays, "days", "d", 1, "Number of working days")
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "l", 5, "Maximum items fetched per group")
	queryCmd.Flags().StringVarP(&queryCustomer, "customer", "c", "", "Only customers containing this text")
	queryCmd.Flags().StringVarP(&queryWorkItem, "wi", "w", "", "Only work items containing this text")
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if queryDays < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	start, err := flagDate(queryDate, time.Now())
	if err != nil {
		return err
	}

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	dates := claim.WorkingDates(start, queryDays)
	if len(dates) == 1 {
		fmt.Fprintf(color.Output, "Querying %s for %s...\n", claim.FormatDate(dates[0]), a.user.Name)
	} else {
		fmt.Fprintf(color.Output, "Querying %s to %s (%d working days) for %s...\n",
			claim.FormatDate(dates[0]), claim.FormatDate(dates[len(dates)-1]), len(dates), a.user.Name)
	}

	entries, err := queryEntries(ctx, a.client, a.user.ID, dates)
	if err != nil {
		return err
	}
	printQueryResult(color.Output, entries)
	return nil
}

func queryEntries(ctx context.Context, r session.Remote, userID string, dates []time.Time) ([]claim.Entry, error) {
	entries, err := session.LoadEntries(ctx, r, userID, dates, queryLimit)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	return filterEntries(entries, queryCustomer, queryWorkItem), nil
}

// filterEntries keeps entries whose customer and work item contain the
// given text, ignoring case. Empty filters match everything.
func filterEntries(entries []claim.Entry, customer, workItem string) []claim.Entry {
	customer = strings.ToLower(customer)
	workItem = strings.ToLower(workItem)
	var out []claim.Entry
	for _, e := range entries {
		if customer != "" && !strings.Contains(strings.ToLower(e.Customer), customer) {
			continue
		}
		if workItem != "" && !strings.Contains(strings.ToLower(e.WorkItem), workItem) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func printQueryResult(w io.Writer, entries []claim.Entry) {
	if len(entries) == 0 {
		yellow.Fprintln(w, "No entries found.")
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, entryTable(entries))
	fmt.Fprintf(w, "\n%d entries, %sh total\n", len(entries), bold.Sprint(formatHours(totalHours(entries))))
}

// flagDate parses a date flag, defaulting to the day of now.
func flagDate(s string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return claim.DateOf(now), nil
	}
	d, err := claim.ParseDate(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("--date %q: %w", s, err)
	}
	return d, nil
}
