package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/dalbodeule/calbot/internal/config"
	appLog "github.com/dalbodeule/calbot/internal/log"
	"github.com/dalbodeule/calbot/internal/model"
	"github.com/dalbodeule/calbot/internal/schedule"
)

// Client wraps the Google Calendar API for a single calendar. It implements
// schedule.Provider. Access tokens are minted from the configured refresh
// token by the oauth2 token source; obtaining the refresh token itself is
// out of band.
type Client struct {
	svc        *calendar.Service
	calendarID string
	loc        *time.Location
}

// New builds a Calendar client from refresh-token credentials. It fails
// when the credentials are incomplete or the service cannot be constructed;
// callers are expected to keep running with schedule features disabled.
func New(ctx context.Context, cfg config.GoogleConfig, loc *time.Location) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("gcal: client_id or client_secret missing")
	}
	if cfg.RefreshToken == "" {
		return nil, errors.New("gcal: refresh_token missing; authorize the app and set google.refresh_token")
	}
	if loc == nil {
		loc = time.Local
	}

	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: cfg.TokenURI},
		Scopes:       []string{calendar.CalendarEventsScope},
	}
	ts := oc.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	svc, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("gcal: build service: %w", err)
	}

	appLog.Info("google calendar client ready", "calendar_id", cfg.CalendarID)
	return &Client{svc: svc, calendarID: cfg.CalendarID, loc: loc}, nil
}

// ListDay returns the calendar's events inside [start, end], with recurring
// events expanded server-side and ordered by start time.
func (c *Client) ListDay(ctx context.Context, start, end time.Time) ([]model.Event, error) {
	res, err := c.svc.Events.List(c.calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, requestErr(err)
	}

	events := make([]model.Event, 0, len(res.Items))
	for _, item := range res.Items {
		ev, ok := c.eventFromAPI(item)
		if !ok {
			appLog.Warn("skipping event without resolvable start", "id", item.Id)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// Insert creates the event on the managed calendar. RFC3339 start/end
// strings carry the zone offset; the configured zone's name is attached
// when it is a real IANA name.
func (c *Client) Insert(ctx context.Context, req model.EventRequest) (*model.CreatedEvent, error) {
	tzName := c.loc.String()
	if tzName == "Local" {
		tzName = ""
	}

	ev := &calendar.Event{
		Summary: req.Title,
		Start: &calendar.EventDateTime{
			DateTime: req.Start.Format(time.RFC3339),
			TimeZone: tzName,
		},
		End: &calendar.EventDateTime{
			DateTime: req.End.Format(time.RFC3339),
			TimeZone: tzName,
		},
	}

	created, err := c.svc.Events.Insert(c.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return nil, requestErr(err)
	}
	return &model.CreatedEvent{ID: created.Id, HTMLLink: created.HtmlLink}, nil
}

// Delete removes the event. 404/410 from the provider map to
// schedule.ErrEventNotFound, which callers treat as benign.
func (c *Client) Delete(ctx context.Context, eventID string) error {
	err := c.svc.Events.Delete(c.calendarID, eventID).Context(ctx).Do()
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone) {
		return fmt.Errorf("%w: %v", schedule.ErrEventNotFound, err)
	}
	return requestErr(err)
}

// eventFromAPI normalizes an API event. Returns false when the event lacks
// both a timed start and an all-day date.
func (c *Client) eventFromAPI(item *calendar.Event) (model.Event, bool) {
	ev := model.Event{ID: item.Id, Summary: item.Summary}
	if item.Start == nil {
		return ev, false
	}

	switch {
	case item.Start.DateTime != "":
		st, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return ev, false
		}
		ev.Start = st
		if item.End != nil && item.End.DateTime != "" {
			if et, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
				ev.End = et
			}
		}
	case item.Start.Date != "":
		d, err := time.ParseInLocation("2006-01-02", item.Start.Date, c.loc)
		if err != nil {
			return ev, false
		}
		ev.AllDay = true
		ev.Start = d
	default:
		return ev, false
	}

	return ev, true
}

func requestErr(err error) error {
	return fmt.Errorf("%w: %v", schedule.ErrRequestFailed, err)
}
