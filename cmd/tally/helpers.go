package tally

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/tally/internal/app"
	"github.com/saadjs/tally/internal/apperr"
	"github.com/saadjs/tally/internal/db"
	"github.com/saadjs/tally/internal/service"
	"github.com/saadjs/tally/internal/store"
	"github.com/saadjs/tally/internal/store/gormstore"
	"github.com/saadjs/tally/internal/store/sqlitestore"
)

func openStore() (store.Store, string, error) {
	switch cfg.Store {
	case app.StorePostgres:
		st, err := gormstore.Open(cfg.DSN)
		if err != nil {
			return nil, "", err
		}
		return st, "postgres", nil
	default:
		path, err := cfg.ResolveDBPath()
		if err != nil {
			return nil, "", err
		}
		sqldb, err := db.Open(path)
		if err != nil {
			return nil, "", err
		}
		if err := db.ApplyMigrations(sqldb); err != nil {
			sqldb.Close()
			return nil, "", err
		}
		return sqlitestore.New(sqldb), path, nil
	}
}

func withService(cmd *cobra.Command, run func(ctx context.Context, svc *service.Service) error) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	svc := service.New(st, loc, service.WithLogger(logger))
	return run(cmd.Context(), svc)
}

func location() *time.Location {
	loc, err := cfg.Location()
	if err != nil {
		return time.Local
	}
	return loc
}

// parseDateTimeOrNow returns the zero time when neither flag is set so the
// service stamps records with its own clock.
func parseDateTimeOrNow(date, timeStr string) (time.Time, error) {
	date = strings.TrimSpace(date)
	timeStr = strings.TrimSpace(timeStr)
	if date == "" && timeStr == "" {
		return time.Time{}, nil
	}
	if date == "" {
		return time.Time{}, fmt.Errorf("--date is required when --time is set")
	}
	if timeStr == "" {
		t, err := time.ParseInLocation("2006-01-02", date, location())
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
		}
		return t.Add(12 * time.Hour), nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeStr, location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date/--time (expected YYYY-MM-DD and HH:MM)")
	}
	return t, nil
}

func parseDateOrToday(date string) (time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", date, location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
	}
	return t, nil
}

// loadFailed keeps a read failure visibly distinct from an empty result.
// Rejected input passes through unchanged; it is not a failed load.
func loadFailed(what string, err error) error {
	switch apperr.KindOf(err) {
	case apperr.InvalidRecord, apperr.NotFound:
		return err
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(w, string(b))
	return nil
}

func formatTime(t time.Time) string {
	return t.In(location()).Format("2006-01-02 15:04")
}
