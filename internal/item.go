package internal

import "time"

// ItemKind discriminates the concrete kinds an Item can be.
type ItemKind string

func (k ItemKind) String() string {
	return string(k)
}

var (
	KindTask  ItemKind = "task"
	KindEvent ItemKind = "event"
)

// VersionTag is an opaque, server-issued version marker (an ETag
// equivalent). Two tags are the same version iff they compare equal;
// tags carry no ordering.
type VersionTag string

type SyncState string

var (
	// Created locally, never pushed.
	StateNotSynced SyncState = "not-synced"
	// Content matches the tagged remote version.
	StateSynced SyncState = "synced"
	// Content changed locally since the tagged remote version.
	StateLocallyModified SyncState = "locally-modified"
	// Deletion pending push, remote version known.
	StateLocallyDeleted SyncState = "locally-deleted"
)

// SyncStatus tracks whether an item is dirty with respect to the remote
// authority. Transitions are caller-driven: whoever mutates an item's
// content must also update its status, the sync layer never diffs
// content to infer dirtiness.
type SyncStatus struct {
	State SyncState
	Tag   VersionTag
}

func NotSynced() SyncStatus {
	return SyncStatus{State: StateNotSynced}
}

func Synced(tag VersionTag) SyncStatus {
	return SyncStatus{State: StateSynced, Tag: tag}
}

func LocallyModified(tag VersionTag) SyncStatus {
	return SyncStatus{State: StateLocallyModified, Tag: tag}
}

func LocallyDeleted(tag VersionTag) SyncStatus {
	return SyncStatus{State: StateLocallyDeleted, Tag: tag}
}

// EventTime is either a whole calendar date or an exact instant.
type EventTime struct {
	Time   time.Time
	AllDay bool
}

// Item is a single calendar object. Tasks are fully supported; events
// are modeled but the sync layer does not extract their fields yet.
type Item struct {
	// ID is the item's URL-shaped key within its calendar.
	ID   ItemID
	Kind ItemKind

	// UID is the caller-supplied logical id, distinct from ID.
	UID          string
	Name         string
	Status       SyncStatus
	LastModified time.Time
	// CreatedAt is zero when the source didn't report a creation date.
	CreatedAt time.Time
	ProdID    string

	// Task only.
	Completed bool

	// Event only.
	StartsAt    EventTime
	EndsAt      EventTime
	Location    string
	Description string
}

func NewTask(id ItemID, uid, name string, completed bool, status SyncStatus) *Item {
	return &Item{
		ID:        id,
		Kind:      KindTask,
		UID:       uid,
		Name:      name,
		Completed: completed,
		Status:    status,
	}
}

func (i *Item) String() string {
	return string(i.ID)
}

// MarkSynced records a successful push or pull of this item.
func (i *Item) MarkSynced(tag VersionTag) {
	i.Status = Synced(tag)
}

// MarkModified records a local content edit. An item that was never
// pushed stays not-synced.
func (i *Item) MarkModified(now time.Time) {
	i.LastModified = now
	if i.Status.State != StateNotSynced {
		i.Status = LocallyModified(i.Status.Tag)
	}
}
