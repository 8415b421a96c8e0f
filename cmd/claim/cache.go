package main

import (
	"fmt"
	"io"
	"time"

	"github.com/christopherklint97/claim/internal/cache"
	"github.com/christopherklint97/claim/internal/monday"
	"github.com/christopherklint97/claim/internal/session"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the recent customer and work item cache",
}

var cacheRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the cache from your recent billable claims",
	RunE:  runCacheRefresh,
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cached pairs of every user",
	RunE:  runCacheShow,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget your cached pairs and the remembered year groups",
	RunE:  runCacheClear,
}

const refreshLimit = 500

var refreshGroups bool

func init() {
	cacheRefreshCmd.Flags().BoolVar(&refreshGroups, "groups", false, "Also forget the remembered year group IDs")
	cacheCmd.AddCommand(cacheRefreshCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheRefresh(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	c, err := openCache(a.cfg)
	if err != nil {
		return err
	}
	if refreshGroups {
		if err := forgetGroups(a.db, color.Output); err != nil {
			return err
		}
	}
	days := a.cfg.Cache.RefreshDays
	used, err := session.RecentPairs(ctx, a.client, a.user.ID, time.Now(), days, refreshLimit)
	if err != nil {
		return fmt.Errorf("refreshing cache: %w", err)
	}
	c.Merge(a.user.ID, used)
	if err := c.Save(); err != nil {
		return fmt.Errorf("saving cache: %w", err)
	}
	green.Fprintf(color.Output, "Cache refreshed with %d unique entries from the last %d days\n",
		len(c.Unique(a.user.ID)), days)
	return nil
}

func runCacheShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := openCache(cfg)
	if err != nil {
		return err
	}
	printCache(color.Output, c)
	return nil
}

func printCache(w io.Writer, c *cache.Cache) {
	users := c.Users()
	if len(users) == 0 {
		yellow.Fprintln(w, "Cache is empty.")
		return
	}
	for _, u := range users {
		heading.Fprintf(w, "User %s\n", u)
		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.AddRow(bold.Sprint("Customer"), bold.Sprint("Work Item"), bold.Sprint("Last Used"))
		for _, e := range c.Sorted(u) {
			tbl.AddRow(e.Customer, e.WorkItem, e.LastUsed)
		}
		fmt.Fprintln(w, tbl)
		fmt.Fprintln(w)
	}
	updated := c.LastUpdated()
	if updated == "" {
		updated = "never"
	}
	faint.Fprintf(w, "Last updated: %s\n", updated)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	c, err := openCache(a.cfg)
	if err != nil {
		return err
	}
	c.Clear(a.user.ID)
	if err := c.Save(); err != nil {
		return fmt.Errorf("saving cache: %w", err)
	}
	fmt.Fprintf(color.Output, "Cleared cached entries for %s\n", a.user.Name)
	return forgetGroups(a.db, color.Output)
}

type stateResetter interface {
	DeleteStatePrefix(prefix string) (int64, error)
}

// forgetGroups drops memoised year group IDs so the next lookup reads the
// board again.
func forgetGroups(db stateResetter, w io.Writer) error {
	n, err := db.DeleteStatePrefix(monday.GroupStatePrefix)
	if err != nil {
		return fmt.Errorf("forgetting groups: %w", err)
	}
	fmt.Fprintf(w, "Forgot %d remembered groups\n", n)
	return nil
}
