package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/christopherklint97/claim/internal/claim"
	"github.com/christopherklint97/claim/internal/monday"
	"github.com/christopherklint97/claim/internal/session"
	"github.com/christopherklint97/claim/internal/store"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	deleteID  string
	deleteYes bool
)

var deleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Delete a claim by its item ID",
	Example: "  claim delete -x 1234567890",
	RunE:    runDelete,
}

func init() {
	deleteCmd.Flags().StringVarP(&deleteID, "id", "x", "", "Item ID (see claim query)")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip confirmation")
	deleteCmd.MarkFlagRequired("id")
}

// itemRemote is what deleting needs from the board.
type itemRemote interface {
	Item(ctx context.Context, itemID string) (*monday.Item, error)
	DeleteItem(ctx context.Context, itemID string) error
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := color.Output

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	entry, err := lookupEntry(ctx, a.client, deleteID)
	if err != nil {
		return err
	}
	printEntry(out, entry)

	if !deleteYes {
		ok, err := confirm(bufio.NewReader(os.Stdin), out, "Delete this entry?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := deleteEntry(ctx, a.client, a.db, a.logger, entry); err != nil {
		return err
	}
	green.Fprintf(out, "Deleted %s\n", entry.ID)
	return nil
}

func lookupEntry(ctx context.Context, r itemRemote, id string) (claim.Entry, error) {
	it, err := r.Item(ctx, id)
	if err != nil {
		if errors.Is(err, monday.ErrNotFound) {
			return claim.Entry{}, fmt.Errorf("no item with ID %s", id)
		}
		return claim.Entry{}, err
	}
	entry, _ := claim.FromItem(*it)
	return entry, nil
}

func deleteEntry(ctx context.Context, r itemRemote, j session.Journal, logger *slog.Logger, e claim.Entry) error {
	err := r.DeleteItem(ctx, e.ID)
	record(j, logger, session.NewOperation(store.ActionDelete, e, err))
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	return nil
}
