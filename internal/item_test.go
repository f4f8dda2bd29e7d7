package internal

import (
	"testing"
	"time"
)

func TestMarkModified(t *testing.T) {
	now := time.Date(2021, 3, 21, 0, 16, 0, 0, time.UTC)

	tests := map[string]struct {
		status SyncStatus
		want   SyncStatus
	}{
		"never pushed stays not synced": {
			status: NotSynced(),
			want:   NotSynced(),
		},
		"synced becomes locally modified with the same tag": {
			status: Synced("t1"),
			want:   LocallyModified("t1"),
		},
		"already modified keeps its tag": {
			status: LocallyModified("t1"),
			want:   LocallyModified("t1"),
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			item := NewTask("a", "uid-a", "A task", false, tc.status)
			item.MarkModified(now)
			if item.Status != tc.want {
				t.Errorf("Status = %+v, want %+v", item.Status, tc.want)
			}
			if !item.LastModified.Equal(now) {
				t.Errorf("LastModified = %v, want %v", item.LastModified, now)
			}
		})
	}
}

func TestMarkSynced(t *testing.T) {
	item := NewTask("a", "uid-a", "A task", false, LocallyModified("t1"))
	item.MarkSynced("t2")
	if want := Synced("t2"); item.Status != want {
		t.Errorf("Status = %+v, want %+v", item.Status, want)
	}
}
