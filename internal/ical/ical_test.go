package ical

import (
	"strings"
	"testing"

	"github.com/guilherme-santos/synctasks/internal"
)

const exampleTodo = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Nextcloud Tasks v0.13.6
BEGIN:VTODO
UID:0633de27-8c32-42be-bcb8-63bc879c6185@some-domain.com
CREATED:20210321T001600
LAST-MODIFIED:20210321T001600
DTSTAMP:20210321T001600
SUMMARY:Do not forget to do this
END:VTODO
END:VCALENDAR
`

const exampleCompletedTodo = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Nextcloud Tasks v0.13.6
BEGIN:VTODO
UID:19960401T080045Z-4000F192713-0052@example.com
CREATED:20210321T001600
LAST-MODIFIED:20210402T081557
DTSTAMP:20210402T081557
SUMMARY:Clean up your room or Mom will be angry
PERCENT-COMPLETE:100
COMPLETED:20210402T081557
STATUS:COMPLETED
END:VTODO
END:VCALENDAR
`

const exampleEvent = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//EN
BEGIN:VEVENT
UID:event-1@example.com
DTSTAMP:20210321T001600
DTSTART:20210321T100000
SUMMARY:A meeting
END:VEVENT
END:VCALENDAR
`

const exampleMultipleEnvelopes = exampleTodo + `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Nextcloud Tasks v0.13.6
BEGIN:VTODO
UID:0633de27-8c32-42be-bcb8-63bc879c6185
CREATED:20210321T001600
LAST-MODIFIED:20210321T001600
DTSTAMP:20210321T001600
SUMMARY:Buy a gift for Mom
END:VTODO
END:VCALENDAR
`

const exampleTodoAndEvent = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//EN
BEGIN:VTODO
UID:todo-1@example.com
DTSTAMP:20210321T001600
SUMMARY:A task
END:VTODO
BEGIN:VEVENT
UID:event-1@example.com
DTSTAMP:20210321T001600
SUMMARY:A meeting
END:VEVENT
END:VCALENDAR
`

const exampleEmptyEnvelope = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//EN
END:VCALENDAR
`

const exampleTwoTodos = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//EN
BEGIN:VTODO
UID:todo-1@example.com
DTSTAMP:20210321T001600
SUMMARY:Call Mom
END:VTODO
BEGIN:VTODO
UID:todo-2@example.com
DTSTAMP:20210321T001600
SUMMARY:Buy a gift for Mom
END:VTODO
END:VCALENDAR
`

func TestParse(t *testing.T) {
	id := internal.ItemID("http://some.id/for/testing")
	status := internal.Synced("test-tag")

	item, err := Parse(exampleTodo, id, status)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if item.Kind != internal.KindTask {
		t.Errorf("Kind = %v, want %v", item.Kind, internal.KindTask)
	}
	if item.Name != "Do not forget to do this" {
		t.Errorf("Name = %q, want %q", item.Name, "Do not forget to do this")
	}
	if item.ID != id {
		t.Errorf("ID = %q, want %q", item.ID, id)
	}
	if want := "0633de27-8c32-42be-bcb8-63bc879c6185@some-domain.com"; item.UID != want {
		t.Errorf("UID = %q, want %q", item.UID, want)
	}
	if item.Completed {
		t.Error("Completed = true, want false")
	}
	if item.Status != status {
		t.Errorf("Status = %+v, want %+v", item.Status, status)
	}
	if item.LastModified.IsZero() {
		t.Error("LastModified is zero, want value from LAST-MODIFIED")
	}
	if item.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero, want value from CREATED")
	}
}

func TestParseCompleted(t *testing.T) {
	id := internal.ItemID("http://some.id/for/testing")

	item, err := Parse(exampleCompletedTodo, id, internal.Synced("test-tag"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !item.Completed {
		t.Error("Completed = false, want true")
	}
}

func TestParseEventPlaceholder(t *testing.T) {
	id := internal.ItemID("http://some.id/for/testing")
	status := internal.Synced("test-tag")

	item, err := Parse(exampleEvent, id, status)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if item.Kind != internal.KindEvent {
		t.Errorf("Kind = %v, want %v", item.Kind, internal.KindEvent)
	}
	if item.ID != id {
		t.Errorf("ID = %q, want %q", item.ID, id)
	}
	if item.Status != status {
		t.Errorf("Status = %+v, want %+v", item.Status, status)
	}
}

func TestParseRejections(t *testing.T) {
	tests := map[string]string{
		"multiple envelopes": exampleMultipleEnvelopes,
		"todo and event":     exampleTodoAndEvent,
		"two todos":          exampleTwoTodos,
		"empty envelope":     exampleEmptyEnvelope,
		"empty payload":      "",
		"missing summary":    strings.Replace(exampleTodo, "SUMMARY:Do not forget to do this\n", "", 1),
		"missing uid":        strings.Replace(exampleTodo, "UID:0633de27-8c32-42be-bcb8-63bc879c6185@some-domain.com\n", "", 1),
		"not ical at all":    "this is not a calendar",
	}

	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(payload, "http://some.id/for/testing", internal.Synced("test-tag"))
			if err == nil {
				t.Error("Parse() error = nil, want rejection")
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	id := internal.ItemID("http://some.id/for/testing")
	orig, err := Parse(exampleCompletedTodo, id, internal.Synced("test-tag"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cal, err := Encode(orig)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	back, err := FromCalendar(cal, id, orig.Status)
	if err != nil {
		t.Fatalf("FromCalendar() error = %v", err)
	}
	if back.Name != orig.Name {
		t.Errorf("Name = %q, want %q", back.Name, orig.Name)
	}
	if back.UID != orig.UID {
		t.Errorf("UID = %q, want %q", back.UID, orig.UID)
	}
	if back.Completed != orig.Completed {
		t.Errorf("Completed = %v, want %v", back.Completed, orig.Completed)
	}
}

func TestEncodeEventUnsupported(t *testing.T) {
	item := &internal.Item{ID: "http://some.id", Kind: internal.KindEvent}
	if _, err := Encode(item); err == nil {
		t.Error("Encode() error = nil, want error for event")
	}
}
