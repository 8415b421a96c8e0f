package main

import (
	"fmt"
	"io"

	"github.com/christopherklint97/claim/internal/claim"
	"github.com/christopherklint97/claim/internal/config"
	"github.com/christopherklint97/claim/internal/store"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyFailed bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent writes to the board",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of operations to show")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "Only failed operations")
}

func runHistory(cmd *cobra.Command, args []string) error {
	dir, err := config.DataDir()
	if err != nil {
		return err
	}
	db, err := store.Open(dir)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	var ops []store.Operation
	if historyFailed {
		ops, err = db.FailedOperations()
	} else {
		ops, err = db.RecentOperations(historyLimit)
	}
	if err != nil {
		return err
	}
	printHistory(color.Output, ops)
	return nil
}

func printHistory(w io.Writer, ops []store.Operation) {
	if len(ops) == 0 {
		yellow.Fprintln(w, "No operations recorded.")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.AddRow(bold.Sprint("When"), bold.Sprint("Action"), bold.Sprint("Item"), bold.Sprint("Date"),
		bold.Sprint("Activity"), bold.Sprint("Work"), bold.Sprint("Hours"), bold.Sprint("Status"))
	for _, op := range ops {
		status := green.Sprint(op.Status)
		if op.Status == store.StatusFailed {
			status = red.Sprint(op.Status + ": " + op.Error)
		}
		work := claim.Entry{Customer: op.Customer, WorkItem: op.WorkItem}.Label()
		tbl.AddRow(op.CreatedAt.Local().Format("2006-01-02 15:04"), op.Action, op.ItemID, op.Date,
			claim.Activity(op.Activity).String(), work, formatHours(op.Hours), status)
	}
	fmt.Fprintln(w, tbl)
}
