// Package provider merges two item stores, a remote authority and a
// local cache, into a consistent state. Whenever both sides changed the
// same item since the last sync, the server version wins.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/guilherme-santos/synctasks/internal"
)

// ErrSync reports that one or more calendars failed to sync; the
// details were logged to the provider's output.
var ErrSync = errors.New("an error occurred while syncing, check the logs")

type (
	Calendar         = internal.Calendar
	CompleteCalendar = internal.CompleteCalendar
	Item             = internal.Item
	ItemID           = internal.ItemID
)

type Provider struct {
	output io.Writer
	server internal.Source
	local  internal.LocalSource
}

// New creates a provider over a server source and a local cache. The
// two play different roles only in conflict resolution: the server
// always wins.
func New(output io.Writer, server internal.Source, local internal.LocalSource) *Provider {
	if output == nil {
		output = os.Stdout
	}
	return &Provider{
		output: output,
		server: server,
		local:  local,
	}
}

func (p *Provider) Server() internal.Source {
	return p.server
}

func (p *Provider) Local() internal.LocalSource {
	return p.local
}

// LastSync returns the time the local source was last synced, zero if
// never.
func (p *Provider) LastSync() time.Time {
	return p.local.LastSync()
}

// Sync performs one bidirectional pass: additions and deletions made on
// either source are applied to the other, conflicts resolve to the
// server version, and the watermark advances only when every calendar
// was processed without a fatal error.
func (p *Provider) Sync(ctx context.Context) error {
	lastSync := p.local.LastSync()
	p.logf(nil, "Starting a sync, last sync was at %s", relativeTime(lastSync))

	cals, err := p.server.Calendars(ctx)
	if err != nil {
		return fmt.Errorf("unable to get server calendars: %w", err)
	}

	var foundErr bool
	for id, serverCal := range cals {
		if err := ctx.Err(); err != nil {
			return err
		}

		localCal, err := p.local.Calendar(ctx, id)
		if err != nil {
			return fmt.Errorf("unable to get local calendar %s: %w", id, err)
		}
		if localCal == nil {
			// Known gap: no local counterpart is created, the calendar
			// is skipped.
			p.logf(serverCal, "No local counterpart, skipping")
			continue
		}

		if err := p.syncCalendar(ctx, serverCal, localCal, lastSync); err != nil {
			p.logf(serverCal, "Unable to sync: %v", err)
			foundErr = true
		}
	}
	if foundErr {
		return ErrSync
	}

	return p.local.UpdateLastSync(time.Time{})
}

func (p *Provider) syncCalendar(ctx context.Context, serverCal Calendar, localCal CompleteCalendar, lastSync time.Time) error {
	// Lock order is fixed, server before local, for the whole merge of
	// this pair.
	serverCal.Lock()
	defer serverCal.Unlock()
	localCal.Lock()
	defer localCal.Unlock()

	// Pull remote changes.
	localItems := localCal.Items()
	var removeFromLocal []ItemID
	if !lastSync.IsZero() {
		for _, id := range serverCal.FindDeletions(localCal.ItemIDs()) {
			// A never-pushed local item is absent from the server
			// without having been deleted there.
			if item, ok := localItems[id]; ok && item.Status.State == internal.StateNotSynced {
				continue
			}
			removeFromLocal = append(removeFromLocal, id)
		}
	}

	// Removals we make ourselves leave tombstones too; remember them so
	// they are not mistaken for user deletions below.
	removed := make(map[ItemID]bool, len(removeFromLocal))
	for _, id := range removeFromLocal {
		removed[id] = true
	}

	serverMod := serverCal.ModifiedSince(lastSync, "")
	addToLocal := make([]*Item, 0, len(serverMod))
	for id, item := range serverMod {
		if local, ok := localItems[id]; ok {
			if local.Status.State != internal.StateSynced {
				p.logf(serverCal, "Conflict for item %q (%s). Using the server version", item.Name, id)
			}
			removed[id] = true
		}
		addToLocal = append(addToLocal, item)
		// The server always wins, so the stale local copy can go right
		// away; the server version is queued for insertion below.
		removeFromLocal = append(removeFromLocal, id)
	}
	if err := p.removeFromCalendar(ctx, removeFromLocal, localCal, "local"); err != nil {
		return err
	}

	// Push local changes.
	var localDel []ItemID
	if !lastSync.IsZero() {
		localDel = localCal.DeletedSince(lastSync)
	}
	removeFromServer := make([]ItemID, 0, len(localDel))
	for _, id := range localDel {
		if removed[id] {
			continue
		}
		if _, ok := serverMod[id]; ok {
			p.logf(serverCal, "Conflict for item %s, locally deleted and updated on the server. Using the server version", id)
			continue
		}
		removeFromServer = append(removeFromServer, id)
	}

	localMod := localCal.ModifiedSince(lastSync, "")
	addToServer := make([]*Item, 0, len(localMod))
	for id, item := range localMod {
		if _, ok := serverMod[id]; ok {
			p.logf(serverCal, "Conflict for item %q (%s). Using the server version", item.Name, id)
			continue
		}
		addToServer = append(addToServer, item)
	}

	if err := p.removeFromCalendar(ctx, removeFromServer, serverCal, "server"); err != nil {
		return err
	}
	if err := p.moveToCalendar(ctx, addToLocal, localCal, "local"); err != nil {
		return err
	}
	return p.pushToServer(ctx, addToServer, serverCal, localCal)
}

// pushToServer pushes local changes and, when the server assigns an
// item its own id on insert, re-keys the local copy so the next
// snapshot lines up.
func (p *Provider) pushToServer(ctx context.Context, items []*Item, serverCal Calendar, localCal CompleteCalendar) error {
	for _, item := range items {
		oldID := item.ID
		if err := serverCal.AddItem(ctx, item); err != nil {
			return fmt.Errorf("unable to add %s to the server calendar %s: %w", oldID, serverCal.ID(), err)
		}
		if item.ID == oldID {
			continue
		}

		p.logf(serverCal, "Item %s is now %s on the server", oldID, item.ID)
		status := item.Status
		if err := localCal.DeleteItem(ctx, oldID); err != nil {
			return fmt.Errorf("unable to remove %s from the local calendar %s: %w", oldID, localCal.ID(), err)
		}
		item.Status = status
		if err := localCal.AddItem(ctx, item); err != nil {
			return fmt.Errorf("unable to add %s to the local calendar %s: %w", item.ID, localCal.ID(), err)
		}
	}
	return nil
}

func (p *Provider) moveToCalendar(ctx context.Context, items []*Item, cal Calendar, side string) error {
	for _, item := range items {
		if err := cal.AddItem(ctx, item); err != nil {
			return fmt.Errorf("unable to add %s to the %s calendar %s: %w", item.ID, side, cal.ID(), err)
		}
	}
	return nil
}

func (p *Provider) removeFromCalendar(ctx context.Context, ids []ItemID, cal Calendar, side string) error {
	for _, id := range ids {
		p.logf(cal, "Removing %s from the %s calendar", id, side)
		if err := cal.DeleteItem(ctx, id); err != nil {
			return fmt.Errorf("unable to remove %s from the %s calendar %s: %w", id, side, cal.ID(), err)
		}
	}
	return nil
}
