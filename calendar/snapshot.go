package calendar

import (
	"sync"
	"time"

	"github.com/guilherme-santos/synctasks/internal"
)

// Snapshot is the in-memory view of one remote calendar as of the last
// fetch. Remote adapters embed it and provide the push methods that
// complete the internal.Calendar contract.
type Snapshot struct {
	sync.Mutex

	id    internal.CalendarID
	name  string
	items map[internal.ItemID]*internal.Item
}

func NewSnapshot(id internal.CalendarID, name string) Snapshot {
	return Snapshot{
		id:    id,
		name:  name,
		items: make(map[internal.ItemID]*internal.Item),
	}
}

func (s *Snapshot) ID() internal.CalendarID {
	return s.id
}

func (s *Snapshot) Name() string {
	return s.name
}

func (s *Snapshot) String() string {
	return string(s.id)
}

func (s *Snapshot) ItemIDs() []internal.ItemID {
	ids := make([]internal.ItemID, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	return ids
}

func (s *Snapshot) Items() map[internal.ItemID]*internal.Item {
	return s.items
}

func (s *Snapshot) ModifiedSince(since time.Time, excludeUID string) map[internal.ItemID]*internal.Item {
	mod := make(map[internal.ItemID]*internal.Item)
	for id, item := range s.items {
		if excludeUID != "" && item.UID == excludeUID {
			continue
		}
		if since.IsZero() || item.LastModified.After(since) {
			mod[id] = item
		}
	}
	return mod
}

func (s *Snapshot) FindDeletions(known []internal.ItemID) []internal.ItemID {
	var gone []internal.ItemID
	for _, id := range known {
		if _, ok := s.items[id]; !ok {
			gone = append(gone, id)
		}
	}
	return gone
}

// SetItem records an item in the snapshot without pushing anything.
func (s *Snapshot) SetItem(item *internal.Item) {
	s.items[item.ID] = item
}

// RemoveItem drops an item from the snapshot without pushing anything.
func (s *Snapshot) RemoveItem(id internal.ItemID) {
	delete(s.items, id)
}

// Has reports whether the snapshot knows the id.
func (s *Snapshot) Has(id internal.ItemID) bool {
	_, ok := s.items[id]
	return ok
}
