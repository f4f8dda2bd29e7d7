package internal

import (
	"context"
	"sync"
	"time"
)

// ItemID identifies one item inside one calendar. In practice it is the
// URL path of the object on the server; it is unique within a calendar
// and never reused after deletion.
type ItemID string

func (id ItemID) String() string {
	return string(id)
}

// CalendarID identifies a calendar collection. It is stable across
// syncs and pairs a server calendar with its local counterpart.
type CalendarID string

func (id CalendarID) String() string {
	return string(id)
}

// Calendar is a mutable collection of items keyed by ItemID, shared
// between the sync layer and whatever else holds a reference to it
// (e.g. a UI). Callers must hold the lock for the duration of any
// read-compute-write sequence; the query methods are in-memory and
// never block on I/O, while AddItem and DeleteItem may be network
// pushes on the server side.
type Calendar interface {
	sync.Locker

	ID() CalendarID
	Name() string
	String() string

	ItemIDs() []ItemID
	Items() map[ItemID]*Item
	// ModifiedSince returns the items modified strictly after since.
	// A zero since means all items. A non-empty excludeUID skips items
	// with that logical uid.
	ModifiedSince(since time.Time, excludeUID string) map[ItemID]*Item
	// FindDeletions returns the ids from known that are absent from
	// this calendar.
	FindDeletions(known []ItemID) []ItemID

	// AddItem inserts or replaces an item. Implementations backed by a
	// remote authority push the item and update its status to Synced
	// with the tag the server assigned.
	AddItem(ctx context.Context, item *Item) error
	// DeleteItem removes an item. Deleting an absent id is not an
	// error.
	DeleteItem(ctx context.Context, id ItemID) error
}

// CompleteCalendar is a calendar that observes every change made to it,
// so it can additionally report deletions by time. The local cache is
// complete; a remote snapshot is not.
type CompleteCalendar interface {
	Calendar

	// DeletedSince returns the ids of items deleted strictly after
	// since.
	DeletedSince(since time.Time) []ItemID
}

// Source enumerates the calendars of one store, usually a CalDAV server
// or the local cache.
type Source interface {
	Calendars(ctx context.Context) (map[CalendarID]Calendar, error)
	// Calendar resolves a calendar by id, returning (nil, nil) when the
	// source has no such calendar.
	Calendar(ctx context.Context, id CalendarID) (Calendar, error)
}

// LocalSource is the cache side of a sync pair: a source whose
// calendars are complete, and which owns the last-sync watermark.
type LocalSource interface {
	Calendars(ctx context.Context) (map[CalendarID]CompleteCalendar, error)
	Calendar(ctx context.Context, id CalendarID) (CompleteCalendar, error)

	// LastSync returns the watermark of the last successful sync pass,
	// zero if there never was one.
	LastSync() time.Time
	// UpdateLastSync advances the watermark. A zero t means "now".
	UpdateLastSync(t time.Time) error
}
