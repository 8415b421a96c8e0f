package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/christopherklint97/claim/internal/calendar"
	"github.com/christopherklint97/claim/internal/claim"
	"github.com/christopherklint97/claim/internal/session"
	"github.com/spf13/cobra"
)

var (
	exportDate   string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export a week of claims as an iCalendar file",
	Example: "  claim export -D 2025-03-05 -o week10.ics",
	RunE:    runExport,
}

const weekLimit = 100

func init() {
	exportCmd.Flags().StringVarP(&exportDate, "date", "D", "", "Any date in the week (default today)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	now := time.Now()
	day, err := flagDate(exportDate, now)
	if err != nil {
		return err
	}

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	entries, err := session.LoadEntries(ctx, a.client, a.user.ID, claim.WeekDates(claim.WeekStart(day)), weekLimit)
	if err != nil {
		return fmt.Errorf("loading week: %w", err)
	}

	var w io.Writer = os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", exportOutput, err)
		}
		defer f.Close()
		w = f
	}
	if err := calendar.Export(w, entries, now); err != nil {
		return err
	}
	if exportOutput != "" {
		fmt.Fprintf(os.Stderr, "Exported %d entries to %s\n", len(entries), exportOutput)
	}
	return nil
}
