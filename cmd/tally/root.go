package tally

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"github.com/saadjs/tally/internal/app"
	"github.com/saadjs/tally/internal/apperr"
	"github.com/saadjs/tally/internal/logging"
)

var (
	dbPath    string
	userID    string
	storeKind string
	dsn       string
	logLevel  string
)

// cfg and logger are resolved once per invocation in loadRuntime.
var (
	cfg    app.Config
	logger = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "tally",
	Short: "tally tracks meals, water, and habits from your terminal",
	Long:  "tally is a local-first meal, water, and habit tracker with daily summaries, rolling progress, and streaks.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadRuntime(cmd)
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	flush := initSentry()
	err := rootCmd.ExecuteContext(ctx)
	if reportable(err) {
		sentry.CaptureException(err)
	}
	flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database (env TALLY_DB)")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "User id whose records are read and written (env TALLY_USER, default local)")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "", "Record store: sqlite or postgres (env TALLY_STORE)")
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Postgres DSN for --store postgres (env TALLY_DSN)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (env TALLY_LOG_LEVEL)")
}

// loadRuntime merges .env, environment and flags. Flags win.
func loadRuntime(cmd *cobra.Command) error {
	loaded, err := app.LoadEnv()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		loaded.DBPath = dbPath
	}
	if flags.Changed("user") {
		loaded.UserID = userID
	}
	if flags.Changed("store") {
		loaded.Store = storeKind
	}
	if flags.Changed("dsn") {
		loaded.DSN = dsn
	}
	if flags.Changed("log-level") {
		loaded.LogLevel = logLevel
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(loaded.LogLevel)
	if err != nil {
		return err
	}
	l, err := logging.New(cmd.ErrOrStderr(), level, loaded.LogFormat)
	if err != nil {
		return err
	}
	cfg = loaded
	logger = l.With("user_id", cfg.UserID, "store", cfg.Store)
	return nil
}

// reportable reports whether err is worth sending to Sentry. Rejected input
// and missing records are the user's to fix.
func reportable(err error) bool {
	if err == nil {
		return false
	}
	switch apperr.KindOf(err) {
	case apperr.InvalidRecord, apperr.NotFound:
		return false
	}
	return true
}

// initSentry enables error reporting when SENTRY_DSN is set and returns the
// flush to run before exit.
func initSentry() func() {
	env, err := app.LoadEnv()
	if err != nil || env.SentryDSN == "" {
		return func() {}
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         env.SentryDSN,
		Release:     "tally@" + version,
		Environment: os.Getenv("TALLY_ENV"),
	}); err != nil {
		slog.Error("sentry init failed", "error", err)
		return func() {}
	}
	return func() { sentry.Flush(2 * time.Second) }
}
