// Package caldav exposes a CalDAV server as a remote item source.
package caldav

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/emersion/go-webdav"
	dav "github.com/emersion/go-webdav/caldav"
	"golang.org/x/oauth2"

	cal "github.com/guilherme-santos/synctasks/calendar"
	"github.com/guilherme-santos/synctasks/internal"
	"github.com/guilherme-santos/synctasks/internal/ical"
)

type Config struct {
	// Endpoint is the server URL, e.g. https://dav.example.com/.
	Endpoint string

	// Basic auth. Takes precedence over Token when set.
	Username string
	Password string
	// OAuth2 bearer token.
	Token string

	HTTPClient *http.Client
}

type Client struct {
	client *dav.Client
	output io.Writer

	Verbose bool
}

func NewClient(cfg Config) (*Client, error) {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}

	var wc webdav.HTTPClient = hc
	switch {
	case cfg.Username != "":
		wc = webdav.HTTPClientWithBasicAuth(hc, cfg.Username, cfg.Password)
	case cfg.Token != "":
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, hc)
		wc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	}

	client, err := dav.NewClient(wc, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("caldav: creating client: %w", err)
	}
	return &Client{
		client: client,
		output: os.Stdout,
	}, nil
}

// Calendars discovers the calendars of the authenticated identity and
// snapshots every item of each one.
func (c *Client) Calendars(ctx context.Context) (map[internal.CalendarID]internal.Calendar, error) {
	principal, err := c.client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("caldav: finding current user principal: %w", err)
	}
	homeSet, err := c.client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("caldav: finding calendar home set: %w", err)
	}
	cals, err := c.client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("caldav: listing calendars: %w", err)
	}

	res := make(map[internal.CalendarID]internal.Calendar, len(cals))
	for _, davCal := range cals {
		rc, err := c.fetchCalendar(ctx, davCal)
		if err != nil {
			return nil, err
		}
		res[rc.ID()] = rc
	}
	return res, nil
}

func (c *Client) Calendar(ctx context.Context, id internal.CalendarID) (internal.Calendar, error) {
	cals, err := c.Calendars(ctx)
	if err != nil {
		return nil, err
	}
	found, ok := cals[id]
	if !ok {
		return nil, nil
	}
	return found, nil
}

func (c *Client) fetchCalendar(ctx context.Context, davCal dav.Calendar) (*remoteCalendar, error) {
	c.logf(nil, "fetching calendar %s", davCal.Path)

	query := &dav.CalendarQuery{
		CompRequest: dav.CalendarCompRequest{
			Name:     "VCALENDAR",
			AllProps: true,
			AllComps: true,
		},
		CompFilter: dav.CompFilter{
			Name: "VCALENDAR",
		},
	}
	objs, err := c.client.QueryCalendar(ctx, davCal.Path, query)
	if err != nil {
		return nil, fmt.Errorf("caldav: querying calendar %s: %w", davCal.Path, err)
	}

	rc := &remoteCalendar{
		Snapshot: cal.NewSnapshot(internal.CalendarID(davCal.Path), davCal.Name),
		client:   c.client,
	}
	for _, obj := range objs {
		id := internal.ItemID(obj.Path)
		item, err := ical.FromCalendar(obj.Data, id, internal.Synced(internal.VersionTag(obj.ETag)))
		if err != nil {
			return nil, err
		}
		if item.LastModified.IsZero() {
			item.LastModified = obj.ModTime
		}
		rc.SetItem(item)
	}
	c.logf(rc, "%d item(s)", len(rc.Items()))
	return rc, nil
}

func (c *Client) logf(calendar internal.Calendar, format string, a ...any) {
	if c.Verbose {
		internal.Logf(c.output, "caldav:", calendar, format, a...)
	}
}
