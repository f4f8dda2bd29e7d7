package cache

import (
	"context"
	"sync"
	"time"

	"github.com/guilherme-santos/synctasks/internal"
)

// Calendar is the in-memory, fully-observed calendar of the local
// cache. Every deletion leaves a tombstone so the sync layer can
// compute "what was deleted since the watermark" without a transaction
// log.
type Calendar struct {
	sync.Mutex

	id   internal.CalendarID
	name string

	items   map[internal.ItemID]*internal.Item
	deleted map[internal.ItemID]time.Time
}

func NewCalendar(id internal.CalendarID, name string) *Calendar {
	return &Calendar{
		id:      id,
		name:    name,
		items:   make(map[internal.ItemID]*internal.Item),
		deleted: make(map[internal.ItemID]time.Time),
	}
}

func (c *Calendar) ID() internal.CalendarID {
	return c.id
}

func (c *Calendar) Name() string {
	return c.name
}

func (c *Calendar) String() string {
	return string(c.id)
}

func (c *Calendar) ItemIDs() []internal.ItemID {
	ids := make([]internal.ItemID, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	return ids
}

func (c *Calendar) Items() map[internal.ItemID]*internal.Item {
	return c.items
}

func (c *Calendar) Item(id internal.ItemID) (*internal.Item, bool) {
	item, ok := c.items[id]
	return item, ok
}

func (c *Calendar) ModifiedSince(since time.Time, excludeUID string) map[internal.ItemID]*internal.Item {
	mod := make(map[internal.ItemID]*internal.Item)
	for id, item := range c.items {
		if excludeUID != "" && item.UID == excludeUID {
			continue
		}
		if since.IsZero() || item.LastModified.After(since) {
			mod[id] = item
		}
	}
	return mod
}

func (c *Calendar) FindDeletions(known []internal.ItemID) []internal.ItemID {
	var gone []internal.ItemID
	for _, id := range known {
		if _, ok := c.items[id]; !ok {
			gone = append(gone, id)
		}
	}
	return gone
}

func (c *Calendar) AddItem(_ context.Context, item *internal.Item) error {
	c.items[item.ID] = item
	delete(c.deleted, item.ID)
	return nil
}

// DeleteItem removes the item and records a tombstone. The item goes
// through locally-deleted on its way out so callers observing it see a
// consistent status.
func (c *Calendar) DeleteItem(_ context.Context, id internal.ItemID) error {
	item, ok := c.items[id]
	if !ok {
		return nil
	}
	item.Status = internal.LocallyDeleted(item.Status.Tag)
	delete(c.items, id)
	c.deleted[id] = time.Now()
	return nil
}

func (c *Calendar) DeletedSince(since time.Time) []internal.ItemID {
	var ids []internal.ItemID
	for id, at := range c.deleted {
		if at.After(since) {
			ids = append(ids, id)
		}
	}
	return ids
}

// pruneTombstones drops tombstones at or before the watermark; they
// have been pushed (or discarded) by the pass that just completed.
func (c *Calendar) pruneTombstones(watermark time.Time) {
	for id, at := range c.deleted {
		if !at.After(watermark) {
			delete(c.deleted, id)
		}
	}
}

// restoreTombstone is used when loading persisted locally-deleted rows.
func (c *Calendar) restoreTombstone(id internal.ItemID, at time.Time) {
	c.deleted[id] = at
}
