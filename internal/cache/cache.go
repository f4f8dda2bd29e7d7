// Package cache is the local side of a sync pair: an in-memory set of
// fully-observed calendars plus the last-sync watermark, optionally
// persisted to sqlite.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/guilherme-santos/synctasks/internal"
	"github.com/guilherme-santos/synctasks/internal/sqlite"
)

type Cache struct {
	mu        sync.Mutex
	calendars map[internal.CalendarID]*Calendar
	lastSync  time.Time

	storage *sqlite.Storage
}

// New creates an empty, memory-only cache.
func New() *Cache {
	return &Cache{
		calendars: make(map[internal.CalendarID]*Calendar),
	}
}

// Open loads the cache persisted in storage.
func Open(ctx context.Context, storage *sqlite.Storage) (*Cache, error) {
	c := New()
	c.storage = storage

	cals, err := storage.Calendars(ctx)
	if err != nil {
		return nil, err
	}
	for _, calRow := range cals {
		cal := c.AddCalendar(internal.CalendarID(calRow.ID), calRow.Name)

		rows, err := storage.Items(ctx, calRow.ID)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			item, deletedAt := row.Convert()
			if !deletedAt.IsZero() {
				cal.restoreTombstone(item.ID, deletedAt)
				continue
			}
			cal.items[item.ID] = item
		}
	}

	c.lastSync, err = storage.LastSync(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// AddCalendar registers a calendar, returning the existing one when the
// id is already known.
func (c *Cache) AddCalendar(id internal.CalendarID, name string) *Calendar {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cal, ok := c.calendars[id]; ok {
		return cal
	}
	cal := NewCalendar(id, name)
	c.calendars[id] = cal
	return cal
}

func (c *Cache) Calendars(context.Context) (map[internal.CalendarID]internal.CompleteCalendar, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cals := make(map[internal.CalendarID]internal.CompleteCalendar, len(c.calendars))
	for id, cal := range c.calendars {
		cals[id] = cal
	}
	return cals, nil
}

func (c *Cache) Calendar(_ context.Context, id internal.CalendarID) (internal.CompleteCalendar, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cal, ok := c.calendars[id]
	if !ok {
		return nil, nil
	}
	return cal, nil
}

func (c *Cache) LastSync() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSync
}

// UpdateLastSync advances the watermark, a zero t meaning "now", and
// prunes tombstones the completed pass has already processed. The new
// watermark becomes durable on the next Flush, never before the items
// it covers.
func (c *Cache) UpdateLastSync(t time.Time) error {
	if t.IsZero() {
		t = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastSync = t
	for _, cal := range c.calendars {
		cal.Lock()
		cal.pruneTombstones(t)
		cal.Unlock()
	}
	return nil
}

// Flush persists every calendar, its items and its tombstones, and the
// watermark last. An interrupted flush can leave the stored watermark
// behind the items, which only costs a re-pull; the watermark must
// never get ahead of them.
func (c *Cache) Flush(ctx context.Context) error {
	if c.storage == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, cal := range c.calendars {
		cal.Lock()
		rows := make([]sqlite.Item, 0, len(cal.items)+len(cal.deleted))
		for _, item := range cal.items {
			rows = append(rows, sqlite.NewItem(string(cal.id), item))
		}
		for id, at := range cal.deleted {
			rows = append(rows, sqlite.NewTombstone(string(cal.id), string(id), at))
		}
		calRow := sqlite.Calendar{ID: string(cal.id), Name: cal.name}
		cal.Unlock()

		if err := c.storage.ReplaceCalendar(ctx, calRow, rows); err != nil {
			return err
		}
	}
	return c.storage.SaveLastSync(ctx, c.lastSync)
}
