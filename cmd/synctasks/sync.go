package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/guilherme-santos/synctasks/calendar"
	"github.com/guilherme-santos/synctasks/calendar/caldav"
	"github.com/guilherme-santos/synctasks/calendar/google"
	"github.com/guilherme-santos/synctasks/file"
	"github.com/guilherme-santos/synctasks/internal"
	"github.com/guilherme-santos/synctasks/internal/cache"
	"github.com/guilherme-santos/synctasks/internal/provider"
	"github.com/guilherme-santos/synctasks/internal/sqlite"
)

var SyncCommand = _syncCommand{
	Name:        "sync",
	Description: "Sync the local cache against the configured server",
}

type _syncCommand struct {
	Name        string
	Description string
}

func (s _syncCommand) Run(ctx context.Context, cfgFile string, verbose bool, args []string) error {
	fs := flag.NewFlagSet(s.Name, flag.ExitOnError)
	fs.Usage = func() {
		w := flag.CommandLine.Output()
		fmt.Fprintf(w, "Usage of %s %s:\n", os.Args[0], fs.Name())
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Options:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := file.Load(cfgFile)
	if err != nil {
		return err
	}

	db, err := sql.Open(sqlite.DriverName, cfg.Cache.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	storage := sqlite.NewStorage(db)
	local, err := cache.Open(ctx, storage)
	if err != nil {
		return fmt.Errorf("unable to open local cache: %w", err)
	}
	registerCalendars(cfg, local)

	server, err := newServer(cfg, verbose)
	if err != nil {
		return err
	}

	p := provider.New(flag.CommandLine.Output(), server, local)
	if err := p.Sync(ctx); err != nil {
		return err
	}
	return local.Flush(ctx)
}

// registerCalendars creates the local twins of the configured server
// calendars. The sync pass itself never creates calendars: a server
// calendar with no local twin is skipped.
func registerCalendars(cfg *file.Config, local *cache.Cache) {
	for _, c := range cfg.Calendars {
		name := c.Name
		if name == "" {
			name = c.ID
		}
		local.AddCalendar(internal.CalendarID(c.ID), name)
	}
}

func newServer(cfg *file.Config, verbose bool) (internal.Source, error) {
	mux := calendar.NewMux()

	if cfg.Server.Endpoint != "" {
		client, err := caldav.NewClient(caldav.Config{
			Endpoint: cfg.Server.Endpoint,
			Username: cfg.Server.Username,
			Password: cfg.Server.Password,
			Token:    cfg.Server.Token,
		})
		if err != nil {
			return nil, err
		}
		client.Verbose = verbose
		mux.Register("caldav", client)
	}

	if cfg.Server.CredentialsFile != "" {
		credJSON, err := os.ReadFile(cfg.Server.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read credentials file: %w", err)
		}
		var tokenJSON []byte
		if cfg.Server.TokenFile != "" {
			// Missing token file just means "not logged in yet".
			tokenJSON, _ = os.ReadFile(cfg.Server.TokenFile)
		}
		client, err := google.NewClient(credJSON, tokenJSON)
		if err != nil {
			return nil, err
		}
		client.Verbose = verbose
		mux.Register("google", client)
	}

	return mux.Get(cfg.Server.Platform)
}
