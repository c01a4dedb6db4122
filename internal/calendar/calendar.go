// Package calendar mirrors booked appointments into an external calendar.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Adapter creates an event for an appointment and returns the remote event id.
type Adapter interface {
	CreateEvent(ctx context.Context, date time.Time, notes string) (string, error)
}

const (
	eventSummary       = "Consultation"
	defaultDescription = "Medical consultation"
)

type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	CalendarID   string
}

func (c Config) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

type Google struct {
	events     *gcal.EventsService
	calendarID string
}

// NewGoogle builds a client that authenticates with a long-lived refresh
// token. Extra options override the defaults, which is how tests point the
// client at a local server.
func NewGoogle(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Google, error) {
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}
	if len(opts) == 0 {
		if !cfg.Enabled() {
			return nil, errors.New("calendar: google credentials are not configured")
		}
		oc := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gcal.CalendarEventsScope},
		}
		ts := oc.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
		opts = append(opts, option.WithTokenSource(ts))
	}

	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar: %w", err)
	}
	return &Google{events: svc.Events, calendarID: cfg.CalendarID}, nil
}

func (g *Google) CreateEvent(ctx context.Context, date time.Time, notes string) (string, error) {
	if notes == "" {
		notes = defaultDescription
	}
	at := date.UTC().Format(time.RFC3339)
	ev := &gcal.Event{
		Summary:     eventSummary,
		Description: notes,
		Start:       &gcal.EventDateTime{DateTime: at},
		End:         &gcal.EventDateTime{DateTime: at},
	}

	created, err := g.events.Insert(g.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("calendar: insert event: %w", err)
	}
	if created.Id == "" {
		return "", errors.New("calendar: insert event: empty event id")
	}
	return created.Id, nil
}
