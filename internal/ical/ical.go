// Package ical converts between raw iCalendar payloads and items.
//
// A payload must be a single VCALENDAR envelope carrying exactly one
// VTODO or exactly one VEVENT. Anything else is a parse error.
package ical

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/emersion/go-ical"

	"github.com/guilherme-santos/synctasks/internal"
)

const prodID = "-//synctasks//EN"

// Parse decodes a raw iCalendar payload into a single item with the
// given id and sync status.
func Parse(content string, id internal.ItemID, status internal.SyncStatus) (*internal.Item, error) {
	dec := ics.NewDecoder(strings.NewReader(content))

	cal, err := dec.Decode()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("no ical data to parse for item %s", id)
		}
		return nil, fmt.Errorf("unable to parse ical data for item %s: %w", id, err)
	}

	item, err := FromCalendar(cal, id, status)
	if err != nil {
		return nil, err
	}

	// A second envelope in the same payload is rejected, not silently
	// ignored.
	if _, err := dec.Decode(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("item %s: parsing multiple calendars is not supported", id)
	}

	return item, nil
}

// FromCalendar converts an already-decoded VCALENDAR into an item. It
// is used directly by remote sources whose transport hands them parsed
// calendars.
func FromCalendar(cal *ics.Calendar, id internal.ItemID, status internal.SyncStatus) (*internal.Item, error) {
	comp, err := singleComponent(cal, id)
	if err != nil {
		return nil, err
	}

	var calProdID string
	if p := cal.Props.Get(ics.PropProductID); p != nil {
		calProdID = p.Value
	}

	switch comp.Name {
	case ics.CompEvent:
		// Events are not synchronizable yet; keep identity only.
		item := &internal.Item{
			ID:     id,
			Kind:   internal.KindEvent,
			Status: status,
			ProdID: calProdID,
		}
		return item, nil

	case ics.CompToDo:
		return parseTodo(comp, id, status, calProdID)

	default:
		return nil, fmt.Errorf("item %s: unsupported component %s", id, comp.Name)
	}
}

func parseTodo(comp *ics.Component, id internal.ItemID, status internal.SyncStatus, calProdID string) (*internal.Item, error) {
	var (
		name      string
		uid       string
		completed bool
	)
	if p := comp.Props.Get(ics.PropSummary); p != nil {
		name = p.Value
	}
	if p := comp.Props.Get(ics.PropUID); p != nil {
		uid = p.Value
	}
	if p := comp.Props.Get(ics.PropStatus); p != nil {
		// NEEDS-ACTION, IN-PROCESS and CANCELLED all count as not
		// completed.
		completed = p.Value == "COMPLETED"
	}
	if name == "" {
		return nil, fmt.Errorf("missing SUMMARY for item %s", id)
	}
	if uid == "" {
		return nil, fmt.Errorf("missing UID for item %s", id)
	}

	item := internal.NewTask(id, uid, name, completed, status)
	item.ProdID = calProdID
	item.LastModified = propTime(comp, ics.PropLastModified)
	if item.LastModified.IsZero() {
		item.LastModified = propTime(comp, ics.PropDateTimeStamp)
	}
	item.CreatedAt = propTime(comp, ics.PropCreated)
	return item, nil
}

// singleComponent enforces the exactly-one-VTODO-or-VEVENT rule.
func singleComponent(cal *ics.Calendar, id internal.ItemID) (*ics.Component, error) {
	var (
		found *ics.Component
		n     int
	)
	for _, child := range cal.Children {
		switch child.Name {
		case ics.CompToDo, ics.CompEvent, ics.CompJournal:
			found = child
			n++
		}
	}
	if n != 1 || found.Name == ics.CompJournal {
		return nil, fmt.Errorf("item %s: only a single TODO or a single EVENT is supported", id)
	}
	return found, nil
}

// Encode renders an item back into a VCALENDAR envelope for pushing to
// a server.
func Encode(item *internal.Item) (*ics.Calendar, error) {
	if item.Kind != internal.KindTask {
		return nil, fmt.Errorf("item %s: only tasks can be encoded", item.ID)
	}

	cal := ics.NewCalendar()
	cal.Props.SetText(ics.PropVersion, "2.0")
	if item.ProdID != "" {
		cal.Props.SetText(ics.PropProductID, item.ProdID)
	} else {
		cal.Props.SetText(ics.PropProductID, prodID)
	}

	todo := ics.NewComponent(ics.CompToDo)
	todo.Props.SetText(ics.PropUID, item.UID)
	todo.Props.SetText(ics.PropSummary, item.Name)
	if item.Completed {
		todo.Props.SetText(ics.PropStatus, "COMPLETED")
	}

	stamp := item.LastModified
	if stamp.IsZero() {
		stamp = time.Now().UTC()
	}
	todo.Props.SetDateTime(ics.PropDateTimeStamp, stamp.UTC())
	todo.Props.SetDateTime(ics.PropLastModified, stamp.UTC())
	if !item.CreatedAt.IsZero() {
		todo.Props.SetDateTime(ics.PropCreated, item.CreatedAt.UTC())
	}

	cal.Children = append(cal.Children, todo)
	return cal, nil
}

func propTime(comp *ics.Component, name string) time.Time {
	p := comp.Props.Get(name)
	if p == nil {
		return time.Time{}
	}
	t, err := p.DateTime(time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}
