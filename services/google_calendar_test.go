package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"studio_site_go/config"
	"studio_site_go/models"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func newTestGoogleProvider(t *testing.T, handler http.HandlerFunc) *GoogleCalendarProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	provider, err := newGoogleCalendarProvider(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	assert.NoError(t, err)
	return provider
}

func TestGoogleCalendarProviderListEvents(t *testing.T) {
	var gotQuery string
	provider := newTestGoogleProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/studio@example.com/events"), r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		assert.Equal(t, "true", r.URL.Query().Get("singleEvents"))
		assert.Equal(t, "2025-03-10T09:00:00Z", r.URL.Query().Get("timeMin"))

		json.NewEncoder(w).Encode(calendar.Events{Items: []*calendar.Event{{
			Id:      "abc",
			Summary: "📸 Sessão Agendada",
			Start:   &calendar.EventDateTime{DateTime: "2025-03-10T09:00:00+02:00", TimeZone: "Africa/Maputo"},
			End:     &calendar.EventDateTime{DateTime: "2025-03-10T18:00:00+02:00", TimeZone: "Africa/Maputo"},
			ColorId: "11",
		}}})
	})

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	events, err := provider.ListEvents(context.Background(), "studio@example.com", start, start.Add(9*time.Hour), EventMarker)
	assert.NoError(t, err)
	assert.Equal(t, EventMarker, gotQuery)
	if assert.Len(t, events, 1) {
		assert.Equal(t, "abc", events[0].ID)
		assert.Equal(t, "Africa/Maputo", events[0].TimeZone)
		assert.Equal(t, 9, events[0].Start.Hour())
		assert.Equal(t, "11", events[0].ColorID)
	}
}

func TestGoogleCalendarProviderInsertUpdateDelete(t *testing.T) {
	var inserted, updated calendar.Event
	var deletedPath string

	provider := newTestGoogleProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			json.NewDecoder(r.Body).Decode(&inserted)
			json.NewEncoder(w).Encode(calendar.Event{Id: "new-id", Summary: inserted.Summary})
		case http.MethodPut:
			json.NewDecoder(r.Body).Decode(&updated)
			json.NewEncoder(w).Encode(updated)
		case http.MethodDelete:
			deletedPath = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	mirror := NewCalendarMirror(provider, "primary", time.UTC, "Studio")
	event := mirror.BuildEvent(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), models.StatusBusy, nil)

	id, err := provider.InsertEvent(context.Background(), "primary", event)
	assert.NoError(t, err)
	assert.Equal(t, "new-id", id)
	assert.Equal(t, "📸 Sessão Agendada", inserted.Summary)
	assert.Equal(t, "11", inserted.ColorId)
	assert.Equal(t, "2025-03-10T09:00:00Z", inserted.Start.DateTime)
	if assert.NotNil(t, inserted.Reminders) && assert.Len(t, inserted.Reminders.Overrides, 1) {
		assert.Equal(t, int64(60), inserted.Reminders.Overrides[0].Minutes)
		assert.Equal(t, "popup", inserted.Reminders.Overrides[0].Method)
	}

	event.ID = id
	event.ColorID = "5"
	assert.NoError(t, provider.UpdateEvent(context.Background(), "primary", event))
	assert.Equal(t, "5", updated.ColorId)

	assert.NoError(t, provider.DeleteEvent(context.Background(), "primary", id))
	assert.True(t, strings.HasSuffix(deletedPath, "/events/new-id"), deletedPath)
}

func TestGoogleCalendarProviderErrors(t *testing.T) {
	provider := newTestGoogleProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"calendar not shared"}}`))
	})

	_, err := provider.ListEvents(context.Background(), "primary", time.Now(), time.Now().Add(time.Hour), "")
	assert.Error(t, err)

	err = provider.UpdateEvent(context.Background(), "primary", &CalendarEvent{})
	assert.Error(t, err, "update without ID is rejected locally")
}

func TestNewGoogleCalendarProviderRejectsBadCredentials(t *testing.T) {
	_, err := NewGoogleCalendarProvider(context.Background(), "{not json")
	assert.Error(t, err)
}

func TestNewMirrorFromConfig(t *testing.T) {
	t.Run("NoCredentials", func(t *testing.T) {
		mirror := NewMirrorFromConfig(context.Background(), &config.Config{CalendarTimezone: "Africa/Maputo", GoogleCalendarID: "primary"})
		assert.False(t, mirror.Configured())
	})

	t.Run("BadCredentials", func(t *testing.T) {
		mirror := NewMirrorFromConfig(context.Background(), &config.Config{GoogleServiceAccountKey: "{not json", CalendarTimezone: "Nowhere/City"})
		assert.False(t, mirror.Configured())

		result, err := mirror.Sync(context.Background(), SyncRequest{Date: "2025-03-10", Status: models.StatusBusy})
		assert.NoError(t, err)
		assert.Equal(t, SyncSkipped, result.Outcome)
	})
}
