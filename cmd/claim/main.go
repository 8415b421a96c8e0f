package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/christopherklint97/claim/internal/cache"
	"github.com/christopherklint97/claim/internal/config"
	"github.com/christopherklint97/claim/internal/monday"
	"github.com/christopherklint97/claim/internal/session"
	"github.com/christopherklint97/claim/internal/store"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:          "claim",
	Short:        "Timesheet claims on a monday.com board",
	Long:         "claim reads and writes timesheet claims on a monday.com board, from the command line or an interactive weekly view.",
	SilenceUsage: true,
	RunE:         runUI,
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive weekly view",
	RunE:  runUI,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open config file in your editor",
	RunE:  runConfig,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(uiCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app bundles what every board command needs.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	client *monday.Client
	db     *store.DB
	user   *monday.User
	close  func()
}

// newLogger writes to stderr at debug level with -v, otherwise to the log
// file so the terminal stays clean.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	if verbose {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})), func() {}, nil
	}
	dir, err := config.DataDir()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating data directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "claim.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	return logger, func() { f.Close() }, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newClient(cfg *config.Config, logger *slog.Logger) *monday.Client {
	return monday.NewClient(monday.Options{
		APIKey:         cfg.Monday.APIKey,
		APIURL:         cfg.Monday.APIURL,
		APIVersion:     cfg.Monday.APIVersion,
		BoardID:        cfg.Monday.BoardID,
		DefaultGroupID: cfg.Monday.DefaultGroupID,
	}, logger)
}

// setup loads config, opens the journal, connects to the board and
// resolves the current user. A missing credential is prompted for when
// stdin is a terminal.
func setup(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		if !errors.Is(err, config.ErrNoAPIKey) || !isatty.IsTerminal(os.Stdin.Fd()) {
			closeLog()
			return nil, fmt.Errorf("%w: set MONDAY_API_KEY or run 'claim config'", err)
		}
		key, err := promptAPIKey(ctx, cfg, logger, os.Stdin, os.Stdout)
		if err != nil {
			closeLog()
			return nil, err
		}
		cfg.Monday.APIKey = key
	}

	dataDir, err := config.DataDir()
	if err != nil {
		closeLog()
		return nil, err
	}
	db, err := store.Open(dataDir)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	client := newClient(cfg, logger)
	client.SetStateStore(db)

	user, err := client.Me(ctx)
	if err != nil {
		db.Close()
		closeLog()
		return nil, err
	}
	logger.Info("connected", "user", user.Name, "board", client.BoardID())

	return &app{
		cfg:    cfg,
		logger: logger,
		client: client,
		db:     db,
		user:   user,
		close: func() {
			db.Close()
			closeLog()
		},
	}, nil
}

// promptAPIKey asks for a credential, checks it against the API and saves
// it to the config file.
func promptAPIKey(ctx context.Context, cfg *config.Config, logger *slog.Logger, in io.Reader, out io.Writer) (string, error) {
	fmt.Fprintln(out, "No monday.com API key configured.")
	fmt.Fprintln(out, "Create one under your monday.com profile: Developers > My access tokens.")
	key, err := prompt(bufio.NewReader(in), out, "API key: ")
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", config.ErrNoAPIKey
	}

	test := *cfg
	test.Monday.APIKey = key
	user, err := newClient(&test, logger).Me(ctx)
	if err != nil {
		return "", fmt.Errorf("testing API key: %w", err)
	}
	fmt.Fprintf(out, "Connected as %s (%s)\n", user.Name, user.Email)

	if err := config.SaveAPIKey(key); err != nil {
		return "", fmt.Errorf("saving API key: %w", err)
	}
	path, _ := config.ConfigPath()
	fmt.Fprintf(out, "Saved to %s\n", path)
	return key, nil
}

func prompt(r *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question that defaults to no.
func confirm(r *bufio.Reader, w io.Writer, question string) (bool, error) {
	answer, err := prompt(r, w, question+" (y/N) ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// record journals one write. A journal failure never fails the write.
func record(j session.Journal, logger *slog.Logger, op *store.Operation) {
	if j == nil {
		return
	}
	if _, err := j.RecordOperation(op); err != nil {
		logger.Warn("journal write failed", "action", op.Action, "item", op.ItemID, "error", err)
	}
}

func openCache(cfg *config.Config) (*cache.Cache, error) {
	dir, err := cfg.CacheDir()
	if err != nil {
		return nil, err
	}
	return cache.Load(dir)
}
