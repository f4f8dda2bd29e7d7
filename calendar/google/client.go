// Package google exposes Google Tasks as a remote item source: task
// lists become calendars and task etags become version tags.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"

	cal "github.com/guilherme-santos/synctasks/calendar"
	"github.com/guilherme-santos/synctasks/internal"
)

type Client struct {
	oauthCfg *oauth2.Config
	token    *oauth2.Token
	output   io.Writer

	Verbose bool
}

func NewClient(credJSON, tokenJSON []byte) (*Client, error) {
	oauthCfg, err := google.ConfigFromJSON(credJSON, tasks.TasksScope)
	if err != nil {
		return nil, fmt.Errorf("google: parsing credentials file: %v", err)
	}

	c := &Client{
		oauthCfg: oauthCfg,
		output:   os.Stdout,
	}
	if len(tokenJSON) > 0 {
		var tok oauth2.Token
		if err := json.Unmarshal(tokenJSON, &tok); err != nil {
			return nil, fmt.Errorf("google: parsing token: %v", err)
		}
		c.token = &tok
	}
	return c, nil
}

const defaultSleep = 5 * time.Second

func (c *Client) Calendars(ctx context.Context) (map[internal.CalendarID]internal.Calendar, error) {
	svc, err := c.tasksSvc(ctx)
	if err != nil {
		return nil, err
	}

	res := make(map[internal.CalendarID]internal.Calendar)
	var pageToken string
	for {
		lists, err := svc.Tasklists.List().MaxResults(100).PageToken(pageToken).Context(ctx).Do()
		if err != nil {
			if shouldRetry(err) {
				time.Sleep(defaultSleep)
				continue
			}
			return nil, fmt.Errorf("google: listing task lists: %w", err)
		}
		for _, list := range lists.Items {
			tc, err := c.fetchList(ctx, svc, list)
			if err != nil {
				return nil, err
			}
			res[tc.ID()] = tc
		}
		pageToken = lists.NextPageToken
		if pageToken == "" {
			break
		}
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

func (c *Client) fetchList(ctx context.Context, svc *tasks.Service, list *tasks.TaskList) (*taskCalendar, error) {
	tc := &taskCalendar{
		Snapshot: cal.NewSnapshot(internal.CalendarID(list.Id), list.Title),
		svc:      svc,
		listID:   list.Id,
		taskIDs:  make(map[internal.ItemID]string),
	}

	var pageToken string
	for {
		ts, err := svc.Tasks.List(list.Id).
			ShowCompleted(true).
			ShowHidden(true).
			MaxResults(100).
			PageToken(pageToken).
			Context(ctx).
			Do()
		if err != nil {
			if shouldRetry(err) {
				time.Sleep(defaultSleep)
				continue
			}
			return nil, fmt.Errorf("google: listing tasks of %s: %w", list.Id, err)
		}

		for _, t := range ts.Items {
			item := newItem(t)
			tc.SetItem(item)
			tc.taskIDs[item.ID] = t.Id
		}
		pageToken = ts.NextPageToken
		if pageToken == "" {
			break
		}
	}

	c.logf(tc, "%d item(s)", len(tc.Items()))
	return tc, nil
}

func (c *Client) Login(ctx context.Context) ([]byte, error) {
	state := fmt.Sprintf("synctasks-%d", time.Now().UTC().Nanosecond())
	authURL := c.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintf(os.Stdout, "\nGo to the following link in your browser\n%s\n", authURL)

	mux := http.NewServeMux()
	server := &http.Server{
		Addr:    ":8080",
		Handler: mux,
	}

	var (
		token   *oauth2.Token
		authErr error
	)

	mux.HandleFunc("/synctasks", func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			go server.Shutdown(ctx)
		}()

		query := req.URL.Query()
		if query.Get("state") != state {
			authErr = errors.New("oauth link is not valid")
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		token, authErr = c.oauthCfg.Exchange(ctx, query.Get("code"))
		if authErr != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintln(w, "Unable to retrieve token:", authErr)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "All good, you can close this window!")
	})

	serverCh := make(chan struct{})
	var svrErr error
	go func() {
		svrErr = server.ListenAndServe()
		close(serverCh)
	}()

	<-serverCh

	if svrErr != nil && svrErr != http.ErrServerClosed {
		return nil, svrErr
	}
	if authErr != nil {
		return nil, authErr
	}

	c.token = token
	return json.Marshal(token)
}

func (c *Client) tasksSvc(ctx context.Context) (*tasks.Service, error) {
	if c.token == nil {
		return nil, errors.New("google: not logged in, run login first")
	}
	httpClient := c.oauthCfg.Client(ctx, c.token)
	return tasks.NewService(ctx, option.WithHTTPClient(httpClient))
}

func (c *Client) logf(calendar internal.Calendar, format string, a ...any) {
	if c.Verbose {
		internal.Logf(c.output, "google:", calendar, format, a...)
	}
}

func shouldRetry(err error) bool {
	return errIsReason(err, "rateLimitExceeded")
}

func alreadyDeleted(err error) bool {
	if errIsReason(err, "deleted") {
		return true
	}
	var gErr *googleapi.Error
	return errors.As(err, &gErr) && gErr.Code == http.StatusNotFound
}

func errIsReason(err error, reason string) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}

	for _, err := range gErr.Errors {
		switch err.Reason {
		case reason:
			return true
		}
	}
	return false
}
