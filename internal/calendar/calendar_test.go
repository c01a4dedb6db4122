package calendar_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"clinic-booking/internal/calendar"
)

func newClient(t *testing.T, h http.HandlerFunc, cfg calendar.Config) *calendar.Google {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	g, err := calendar.NewGoogle(context.Background(), cfg,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return g
}

func TestCreateEvent(t *testing.T) {
	var got gcal.Event
	var path string
	g := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"evt-42"}`))
	}, calendar.Config{CalendarID: "clinic"})

	at := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	id, err := g.CreateEvent(context.Background(), at, "checkup")
	require.NoError(t, err)

	assert.Equal(t, "evt-42", id)
	assert.Equal(t, "/calendars/clinic/events", path)
	assert.Equal(t, "Consultation", got.Summary)
	assert.Equal(t, "checkup", got.Description)
	assert.Equal(t, "2030-01-01T10:00:00Z", got.Start.DateTime)
	assert.Equal(t, got.Start.DateTime, got.End.DateTime)
}

func TestCreateEventDefaults(t *testing.T) {
	var got gcal.Event
	var path string
	g := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"id":"evt-1"}`))
	}, calendar.Config{})

	_, err := g.CreateEvent(context.Background(), time.Now().Add(time.Hour), "")
	require.NoError(t, err)
	assert.Equal(t, "/calendars/primary/events", path)
	assert.NotEmpty(t, got.Description)
}

func TestCreateEventRemoteFailure(t *testing.T) {
	g := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":503,"message":"backend down"}}`, http.StatusServiceUnavailable)
	}, calendar.Config{})

	id, err := g.CreateEvent(context.Background(), time.Now().Add(time.Hour), "x")
	assert.Error(t, err)
	assert.Empty(t, id)
}

func TestCreateEventHonoursContext(t *testing.T) {
	release := make(chan struct{})
	g := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, calendar.Config{})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := g.CreateEvent(ctx, time.Now().Add(time.Hour), "x")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestNewGoogleRequiresCredentials(t *testing.T) {
	_, err := calendar.NewGoogle(context.Background(), calendar.Config{})
	assert.Error(t, err)
	assert.True(t, calendar.Config{ClientID: "a", ClientSecret: "b", RefreshToken: "c"}.Enabled())
}
