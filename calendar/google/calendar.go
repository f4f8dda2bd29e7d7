package google

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/tasks/v1"

	cal "github.com/guilherme-santos/synctasks/calendar"
	"github.com/guilherme-santos/synctasks/internal"
)

// taskCalendar is one Google task list: a snapshot of its tasks plus
// insert/update/delete pushes through the Tasks API.
type taskCalendar struct {
	cal.Snapshot

	svc    *tasks.Service
	listID string
	// The Tasks API addresses tasks by their own id, not by the
	// SelfLink we use as ItemID.
	taskIDs map[internal.ItemID]string
}

func (tc *taskCalendar) AddItem(ctx context.Context, item *internal.Item) error {
	if item.Kind != internal.KindTask {
		return fmt.Errorf("google: item %s: only tasks can be pushed", item.ID)
	}

	task := &tasks.Task{
		Title:  item.Name,
		Status: "needsAction",
	}
	if item.Completed {
		task.Status = "completed"
	}

	var (
		res *tasks.Task
		err error
	)
	for {
		if taskID, ok := tc.taskIDs[item.ID]; ok {
			task.Id = taskID
			res, err = tc.svc.Tasks.Update(tc.listID, taskID, task).Context(ctx).Do()
		} else {
			res, err = tc.svc.Tasks.Insert(tc.listID, task).Context(ctx).Do()
		}
		if err == nil {
			break
		}
		if shouldRetry(err) {
			time.Sleep(defaultSleep)
			continue
		}
		return fmt.Errorf("google: pushing %s: %w", item.ID, err)
	}

	// Inserted tasks come back under a server-assigned SelfLink, which
	// is how the next fetch will key them. Adopt it as the item id.
	if id := internal.ItemID(res.SelfLink); res.SelfLink != "" && id != item.ID {
		tc.RemoveItem(item.ID)
		delete(tc.taskIDs, item.ID)
		item.ID = id
	}

	item.MarkSynced(internal.VersionTag(res.Etag))
	tc.taskIDs[item.ID] = res.Id
	tc.SetItem(item)
	return nil
}

func (tc *taskCalendar) DeleteItem(ctx context.Context, id internal.ItemID) error {
	taskID, ok := tc.taskIDs[id]
	if !ok {
		return nil
	}
	for {
		err := tc.svc.Tasks.Delete(tc.listID, taskID).Context(ctx).Do()
		if err == nil || alreadyDeleted(err) {
			break
		}
		if shouldRetry(err) {
			time.Sleep(defaultSleep)
			continue
		}
		return fmt.Errorf("google: deleting %s: %w", id, err)
	}
	tc.RemoveItem(id)
	delete(tc.taskIDs, id)
	return nil
}

func newItem(t *tasks.Task) *internal.Item {
	updated, err := time.Parse(time.RFC3339, t.Updated)
	if err != nil {
		// A zero LastModified would hide the task from incremental
		// queries; treat an unreadable timestamp as "changed now".
		updated = time.Now()
	}

	id := internal.ItemID(t.SelfLink)
	item := internal.NewTask(id, t.Id, t.Title, t.Status == "completed", internal.Synced(internal.VersionTag(t.Etag)))
	item.LastModified = updated
	return item
}
