package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"github.com/guilherme-santos/synctasks/file"
	"github.com/guilherme-santos/synctasks/internal"
	"github.com/guilherme-santos/synctasks/internal/cache"
	"github.com/guilherme-santos/synctasks/internal/sqlite"
)

var ListCommand = _listCommand{
	Name:        "list",
	Description: "Print the cached calendars and their tasks",
}

type _listCommand struct {
	Name        string
	Description string
}

func (l _listCommand) Run(ctx context.Context, cfgFile string, verbose bool, args []string) error {
	cfg, err := file.Load(cfgFile)
	if err != nil {
		return err
	}

	db, err := sql.Open(sqlite.DriverName, cfg.Cache.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	local, err := cache.Open(ctx, sqlite.NewStorage(db))
	if err != nil {
		return fmt.Errorf("unable to open local cache: %w", err)
	}

	cals, err := local.Calendars(ctx)
	if err != nil {
		return err
	}

	w := flag.CommandLine.Output()
	for _, id := range sortedCalendarIDs(cals) {
		cal := cals[id]
		fmt.Fprintf(w, "CAL %s\n", id)

		cal.Lock()
		items := cal.Items()
		ids := make([]internal.ItemID, 0, len(items))
		for itemID := range items {
			ids = append(ids, itemID)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for _, itemID := range ids {
			item := items[itemID]
			completion := " "
			if item.Completed {
				completion = "✓"
			}
			fmt.Fprintf(w, "    %s %s\t%s\n", completion, item.Name, item.ID)
		}
		cal.Unlock()
	}
	return nil
}

func sortedCalendarIDs(cals map[internal.CalendarID]internal.CompleteCalendar) []internal.CalendarID {
	ids := make([]internal.CalendarID, 0, len(cals))
	for id := range cals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
