package main

import (
	"context"
	"database/sql"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/guilherme-santos/synctasks/file"
	"github.com/guilherme-santos/synctasks/internal"
	"github.com/guilherme-santos/synctasks/internal/cache"
	"github.com/guilherme-santos/synctasks/internal/provider"
	"github.com/guilherme-santos/synctasks/internal/sqlite"
)

type memSource struct {
	cals map[internal.CalendarID]internal.Calendar
}

func (s *memSource) Calendars(context.Context) (map[internal.CalendarID]internal.Calendar, error) {
	return s.cals, nil
}

func (s *memSource) Calendar(_ context.Context, id internal.CalendarID) (internal.Calendar, error) {
	cal, ok := s.cals[id]
	if !ok {
		return nil, nil
	}
	return cal, nil
}

func TestRegisterCalendars(t *testing.T) {
	ctx := context.Background()
	cfg := &file.Config{
		Calendars: []file.CalendarConfig{
			{ID: "cal-1", Name: "Tasks"},
			{ID: "cal-2"},
		},
	}

	local := cache.New()
	registerCalendars(cfg, local)

	cal, err := local.Calendar(ctx, "cal-1")
	if err != nil || cal == nil {
		t.Fatalf("Calendar(cal-1) = %v, %v, want a registered calendar", cal, err)
	}
	if cal.Name() != "Tasks" {
		t.Errorf("Name() = %q, want %q", cal.Name(), "Tasks")
	}

	cal, err = local.Calendar(ctx, "cal-2")
	if err != nil || cal == nil {
		t.Fatalf("Calendar(cal-2) = %v, %v, want a registered calendar", cal, err)
	}
	if cal.Name() != "cal-2" {
		t.Errorf("Name() = %q, want the id as fallback name", cal.Name())
	}
}

func TestSyncFlowBootstrapsConfiguredCalendars(t *testing.T) {
	ctx := context.Background()
	dbFile := filepath.Join(t.TempDir(), "synctasks.db")

	serverCache := cache.New()
	serverCal := serverCache.AddCalendar("cal-1", "Tasks")
	task := internal.NewTask("http://server/cal-1/a.ics", "uid-a", "Do this", false, internal.Synced("t1"))
	task.LastModified = time.Now().Add(-time.Hour)
	if err := serverCal.AddItem(ctx, task); err != nil {
		t.Fatal(err)
	}
	server := &memSource{cals: map[internal.CalendarID]internal.Calendar{
		"cal-1": serverCal,
	}}

	cfg := &file.Config{
		Calendars: []file.CalendarConfig{{ID: "cal-1", Name: "Tasks"}},
	}

	// Two passes, each opening the cache from disk the way the sync
	// command does: the configured calendar must exist from the very
	// first pass, not only once something else persisted it.
	for pass := 1; pass <= 2; pass++ {
		db, err := sql.Open(sqlite.DriverName, dbFile)
		if err != nil {
			t.Fatalf("pass %d: sql.Open() error = %v", pass, err)
		}
		local, err := cache.Open(ctx, sqlite.NewStorage(db))
		if err != nil {
			t.Fatalf("pass %d: cache.Open() error = %v", pass, err)
		}
		registerCalendars(cfg, local)

		p := provider.New(io.Discard, server, local)
		if err := p.Sync(ctx); err != nil {
			t.Fatalf("pass %d: Sync() error = %v", pass, err)
		}
		if err := local.Flush(ctx); err != nil {
			t.Fatalf("pass %d: Flush() error = %v", pass, err)
		}
		db.Close()
	}

	db, err := sql.Open(sqlite.DriverName, dbFile)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer db.Close()

	local, err := cache.Open(ctx, sqlite.NewStorage(db))
	if err != nil {
		t.Fatalf("cache.Open() error = %v", err)
	}
	if local.LastSync().IsZero() {
		t.Error("watermark not persisted")
	}

	cal, err := local.Calendar(ctx, "cal-1")
	if err != nil {
		t.Fatalf("Calendar() error = %v", err)
	}
	if cal == nil {
		t.Fatal("the configured calendar was never persisted")
	}
	got, ok := cal.Items()[task.ID]
	if !ok {
		t.Fatal("the server task was never pulled and persisted")
	}
	if got.Name != task.Name {
		t.Errorf("Name = %q, want %q", got.Name, task.Name)
	}
}
