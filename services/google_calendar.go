package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"studio_site_go/config"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleCalendarProvider implements CalendarProvider on the Google Calendar v3 API
type GoogleCalendarProvider struct {
	events *calendar.EventsService
}

// NewGoogleCalendarProvider authenticates with a service-account key (the JSON
// document downloaded from the Google Cloud console). The calendar must be
// shared with the service account's email.
func NewGoogleCalendarProvider(ctx context.Context, serviceAccountJSON string) (*GoogleCalendarProvider, error) {
	return newGoogleCalendarProvider(ctx,
		option.WithCredentialsJSON([]byte(serviceAccountJSON)),
		option.WithScopes(calendar.CalendarEventsScope),
	)
}

// NewMirrorFromConfig builds the process-wide calendar mirror. Missing or
// unusable credentials leave the mirror unconfigured so every sync is skipped.
func NewMirrorFromConfig(ctx context.Context, cfg *config.Config) *CalendarMirror {
	loc, err := time.LoadLocation(cfg.CalendarTimezone)
	if err != nil {
		log.Printf("[WARNING] Unknown CALENDAR_TIMEZONE %q, using UTC: %v", cfg.CalendarTimezone, err)
		loc = time.UTC
	}

	if !cfg.CalendarConfigured() {
		log.Println("[INFO] Google Calendar credentials not set; calendar mirror disabled")
		return NewCalendarMirror(nil, cfg.GoogleCalendarID, loc, cfg.BusinessName)
	}

	provider, err := NewGoogleCalendarProvider(ctx, cfg.GoogleServiceAccountKey)
	if err != nil {
		log.Printf("[WARNING] Calendar mirror disabled: %v", err)
		return NewCalendarMirror(nil, cfg.GoogleCalendarID, loc, cfg.BusinessName)
	}

	log.Printf("[INFO] Calendar mirror enabled for calendar %s (%s)", cfg.GoogleCalendarID, loc)
	return NewCalendarMirror(provider, cfg.GoogleCalendarID, loc, cfg.BusinessName)
}

func newGoogleCalendarProvider(ctx context.Context, opts ...option.ClientOption) (*GoogleCalendarProvider, error) {
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Calendar client: %w", err)
	}
	return &GoogleCalendarProvider{events: calendar.NewEventsService(svc)}, nil
}

// ListEvents returns expanded single events overlapping [timeMin, timeMax) that match query
func (p *GoogleCalendarProvider) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, query string) ([]CalendarEvent, error) {
	call := p.events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		Context(ctx)
	if query != "" {
		call = call.Q(query)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, err
	}

	events := make([]CalendarEvent, 0, len(resp.Items))
	for _, item := range resp.Items {
		events = append(events, fromGoogleEvent(item))
	}
	return events, nil
}

// InsertEvent creates event and returns the provider-assigned ID
func (p *GoogleCalendarProvider) InsertEvent(ctx context.Context, calendarID string, event *CalendarEvent) (string, error) {
	created, err := p.events.Insert(calendarID, toGoogleEvent(event)).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return created.Id, nil
}

// UpdateEvent replaces the event identified by event.ID
func (p *GoogleCalendarProvider) UpdateEvent(ctx context.Context, calendarID string, event *CalendarEvent) error {
	if event.ID == "" {
		return fmt.Errorf("update requires an event ID")
	}
	_, err := p.events.Update(calendarID, event.ID, toGoogleEvent(event)).Context(ctx).Do()
	return err
}

// DeleteEvent removes the event
func (p *GoogleCalendarProvider) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	return p.events.Delete(calendarID, eventID).Context(ctx).Do()
}

func toGoogleEvent(e *CalendarEvent) *calendar.Event {
	ev := &calendar.Event{
		Summary:     e.Summary,
		Description: e.Description,
		Start: &calendar.EventDateTime{
			DateTime: e.Start.Format(time.RFC3339),
			TimeZone: e.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: e.End.Format(time.RFC3339),
			TimeZone: e.TimeZone,
		},
		ColorId: e.ColorID,
	}
	if e.ReminderMinutes > 0 {
		ev.Reminders = &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "popup", Minutes: int64(e.ReminderMinutes)},
			},
			ForceSendFields: []string{"UseDefault"},
		}
	}
	return ev
}

func fromGoogleEvent(item *calendar.Event) CalendarEvent {
	event := CalendarEvent{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		ColorID:     item.ColorId,
	}
	if item.Start != nil {
		event.TimeZone = item.Start.TimeZone
		if t, err := time.Parse(time.RFC3339, item.Start.DateTime); err == nil {
			event.Start = t
		}
	}
	if item.End != nil {
		if t, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
			event.End = t
		}
	}
	return event
}
