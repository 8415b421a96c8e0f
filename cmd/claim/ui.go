package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/christopherklint97/claim/internal/cache"
	"github.com/christopherklint97/claim/internal/config"
	"github.com/christopherklint97/claim/internal/session"
	"github.com/christopherklint97/claim/internal/tui"
	"github.com/spf13/cobra"
)

func runUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	c, err := openCache(a.cfg)
	if err != nil {
		a.logger.Warn("entry cache unavailable, starting empty", "error", err)
		c = cache.New()
	}

	fmt.Fprintf(os.Stderr, "Loading week for %s...\n", a.user.Name)
	sess, err := session.New(ctx, session.Config{
		Remote:      a.client,
		Cache:       c,
		Journal:     a.db,
		User:        *a.user,
		Logger:      a.logger,
		CacheMaxAge: a.cfg.CacheMaxAge(),
		RefreshDays: a.cfg.Cache.RefreshDays,
	})
	if err != nil {
		return err
	}
	return tui.Run(ctx, sess)
}

func runConfig(cmd *cobra.Command, args []string) error {
	configPath, err := config.WriteDefault()
	if err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	fmt.Printf("Opening %s with %s...\n", configPath, editor)

	bin, err := exec.LookPath(editor)
	if err != nil {
		fmt.Printf("Could not open editor. Config file is at: %s\n", configPath)
		return nil
	}
	proc := os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}
	process, err := os.StartProcess(bin, []string{editor, configPath}, &proc)
	if err != nil {
		fmt.Printf("Could not open editor. Config file is at: %s\n", configPath)
		return nil
	}
	_, err = process.Wait()
	return err
}
