package caldav

import (
	"context"
	"fmt"

	dav "github.com/emersion/go-webdav/caldav"

	cal "github.com/guilherme-santos/synctasks/calendar"
	"github.com/guilherme-santos/synctasks/internal"
	"github.com/guilherme-santos/synctasks/internal/ical"
)

// remoteCalendar is one CalDAV collection: a snapshot of its objects as
// of the fetch, plus PUT/DELETE pushes keyed by object path.
type remoteCalendar struct {
	cal.Snapshot

	client *dav.Client
}

func (rc *remoteCalendar) AddItem(ctx context.Context, item *internal.Item) error {
	body, err := ical.Encode(item)
	if err != nil {
		return err
	}
	obj, err := rc.client.PutCalendarObject(ctx, string(item.ID), body)
	if err != nil {
		return fmt.Errorf("caldav: putting %s: %w", item.ID, err)
	}
	item.MarkSynced(internal.VersionTag(obj.ETag))
	rc.SetItem(item)
	return nil
}

func (rc *remoteCalendar) DeleteItem(ctx context.Context, id internal.ItemID) error {
	// The snapshot is authoritative within a pass: an unknown id is
	// already gone server-side.
	if !rc.Has(id) {
		return nil
	}
	if err := rc.client.RemoveAll(ctx, string(id)); err != nil {
		return fmt.Errorf("caldav: removing %s: %w", id, err)
	}
	rc.RemoveItem(id)
	return nil
}
