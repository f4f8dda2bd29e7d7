package sqlite

import (
	"time"

	"github.com/guilherme-santos/synctasks/internal"
)

type Calendar struct {
	ID   string
	Name string
}

// Item is one row of the items table. Timestamps are stored as RFC 3339
// strings, empty meaning unset. Rows with a deleted_at are tombstones:
// locally-deleted items whose removal hasn't been pushed yet.
type Item struct {
	ID           string
	CalendarID   string `db:"calendar_id"`
	Kind         string
	UID          string `db:"uid"`
	Name         string
	Completed    bool
	Status       string
	VersionTag   string `db:"version_tag"`
	LastModified string `db:"last_modified"`
	CreatedAt    string `db:"created_at"`
	ProdID       string `db:"prod_id"`
	DeletedAt    string `db:"deleted_at"`
}

func NewItem(calendarID string, item *internal.Item) Item {
	return Item{
		ID:           string(item.ID),
		CalendarID:   calendarID,
		Kind:         string(item.Kind),
		UID:          item.UID,
		Name:         item.Name,
		Completed:    item.Completed,
		Status:       string(item.Status.State),
		VersionTag:   string(item.Status.Tag),
		LastModified: formatTime(item.LastModified),
		CreatedAt:    formatTime(item.CreatedAt),
		ProdID:       item.ProdID,
	}
}

func NewTombstone(calendarID, id string, deletedAt time.Time) Item {
	return Item{
		ID:         id,
		CalendarID: calendarID,
		Kind:       string(internal.KindTask),
		Status:     string(internal.StateLocallyDeleted),
		DeletedAt:  formatTime(deletedAt),
	}
}

func (i Item) Convert() (item *internal.Item, deletedAt time.Time) {
	item = &internal.Item{
		ID:   internal.ItemID(i.ID),
		Kind: internal.ItemKind(i.Kind),
		UID:  i.UID,
		Name: i.Name,
		Status: internal.SyncStatus{
			State: internal.SyncState(i.Status),
			Tag:   internal.VersionTag(i.VersionTag),
		},
		LastModified: parseTime(i.LastModified),
		CreatedAt:    parseTime(i.CreatedAt),
		ProdID:       i.ProdID,
		Completed:    i.Completed,
	}
	return item, parseTime(i.DeletedAt)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
