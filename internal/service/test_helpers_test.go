package service_test

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/saadjs/tally/internal/db"
	"github.com/saadjs/tally/internal/service"
	"github.com/saadjs/tally/internal/store/sqlitestore"
)

// testNow is a Monday evening; every test clock starts here.
var testNow = time.Date(2024, 5, 20, 18, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) *service.Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tally.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	st := sqlitestore.New(sqldb)
	t.Cleanup(func() { _ = st.Close() })

	var seq atomic.Int64
	return service.New(st, time.UTC,
		service.WithClock(func() time.Time { return testNow }),
		service.WithIDs(func() string { return fmt.Sprintf("id-%d", seq.Add(1)) }),
	)
}

func daysAgo(n int, hour int) time.Time {
	y, m, d := testNow.Date()
	return time.Date(y, m, d-n, hour, 0, 0, 0, time.UTC)
}
