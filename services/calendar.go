package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"studio_site_go/models"
)

const (
	// EventMarker prefixes the title of every event this system writes, so the
	// mirror can tell its own events from anything else on the calendar.
	EventMarker = "📸"

	businessDayStartHour = 9
	businessDayEndHour   = 18

	colorBusy    = "11" // red
	colorPartial = "5"  // yellow

	reminderMinutes = 60
)

var eventTitles = map[models.AvailabilityStatus]string{
	models.StatusBusy:    EventMarker + " Sessão Agendada",
	models.StatusPartial: EventMarker + " Parcialmente Ocupado",
	models.StatusFree:    EventMarker + " Disponível",
}

// CalendarEvent is the provider-neutral shape of a mirrored event
type CalendarEvent struct {
	ID              string
	Summary         string
	Description     string
	Start           time.Time
	End             time.Time
	TimeZone        string
	ColorID         string
	ReminderMinutes int
}

// CalendarProvider is the subset of an external calendar API used by the mirror
type CalendarProvider interface {
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, query string) ([]CalendarEvent, error)
	InsertEvent(ctx context.Context, calendarID string, event *CalendarEvent) (string, error)
	UpdateEvent(ctx context.Context, calendarID string, event *CalendarEvent) error
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// SyncAction selects between reflecting a write and reflecting a delete
type SyncAction string

const (
	SyncActionUpsert SyncAction = "upsert"
	SyncActionDelete SyncAction = "delete"
)

// SyncOutcome describes what the mirror did to the external calendar
type SyncOutcome string

const (
	SyncSkipped         SyncOutcome = "skipped"
	SyncCreated         SyncOutcome = "created"
	SyncUpdated         SyncOutcome = "updated"
	SyncDeleted         SyncOutcome = "deleted"
	SyncNothingToDelete SyncOutcome = "nothing_to_delete"
)

// SyncRequest is one availability change to mirror
type SyncRequest struct {
	Date   string
	Status models.AvailabilityStatus
	Note   *string
	Action SyncAction
}

// SyncResult reports the mirror's action
type SyncResult struct {
	Outcome SyncOutcome
	EventID string
	Message string
}

// Mirror reflects availability changes into an external calendar
type Mirror interface {
	Configured() bool
	Sync(ctx context.Context, req SyncRequest) (*SyncResult, error)
}

// CalendarMirror keeps an external calendar approximately in sync with the
// availability store. It holds no mapping from date to event: every Sync
// looks the event up again inside the business-day window.
type CalendarMirror struct {
	provider     CalendarProvider
	calendarID   string
	location     *time.Location
	businessName string
}

// NewCalendarMirror builds a mirror. A nil provider yields a mirror that skips every sync.
func NewCalendarMirror(provider CalendarProvider, calendarID string, location *time.Location, businessName string) *CalendarMirror {
	if location == nil {
		location = time.UTC
	}
	return &CalendarMirror{
		provider:     provider,
		calendarID:   calendarID,
		location:     location,
		businessName: businessName,
	}
}

// Configured reports whether a provider is attached
func (m *CalendarMirror) Configured() bool {
	return m != nil && m.provider != nil
}

// BusinessWindow returns the fixed [09:00, 18:00) window of day in the mirror's timezone
func (m *CalendarMirror) BusinessWindow(day time.Time) (time.Time, time.Time) {
	y, mo, d := day.Date()
	start := time.Date(y, mo, d, businessDayStartHour, 0, 0, 0, m.location)
	end := time.Date(y, mo, d, businessDayEndHour, 0, 0, 0, m.location)
	return start, end
}

// EventTitle returns the status label used as the event summary
func EventTitle(status models.AvailabilityStatus, businessName string) string {
	if title, ok := eventTitles[status]; ok {
		return title
	}
	return EventMarker + " " + businessName
}

// EventDescription returns the note, or a generated status summary when there is none
func EventDescription(status models.AvailabilityStatus, note *string, businessName string) string {
	if note != nil && strings.TrimSpace(*note) != "" {
		return *note
	}
	return fmt.Sprintf("Status: %s\nGerenciado via %s Admin", status, businessName)
}

// EventColor returns the provider color tag for status
func EventColor(status models.AvailabilityStatus) string {
	if status == models.StatusBusy {
		return colorBusy
	}
	return colorPartial
}

// BuildEvent derives the full mirrored event for a day
func (m *CalendarMirror) BuildEvent(day time.Time, status models.AvailabilityStatus, note *string) *CalendarEvent {
	start, end := m.BusinessWindow(day)
	return &CalendarEvent{
		Summary:         EventTitle(status, m.businessName),
		Description:     EventDescription(status, note, m.businessName),
		Start:           start,
		End:             end,
		TimeZone:        m.location.String(),
		ColorID:         EventColor(status),
		ReminderMinutes: reminderMinutes,
	}
}

// Sync applies one change with a fresh lookup-then-act sequence. Applying the
// same request twice converges to the same external state.
func (m *CalendarMirror) Sync(ctx context.Context, req SyncRequest) (*SyncResult, error) {
	if !m.Configured() {
		return &SyncResult{Outcome: SyncSkipped, Message: "Calendar sync skipped - not configured"}, nil
	}

	day, err := ParseAvailabilityDate(req.Date)
	if err != nil {
		return nil, err
	}

	removing := req.Action == SyncActionDelete || req.Status == models.StatusFree
	if !removing && !req.Status.IsValid() {
		return nil, NewValidationError("status", "Status must be one of: free, partial, busy")
	}

	start, end := m.BusinessWindow(day)
	existing, err := m.findMirrorEvent(ctx, start, end)
	if err != nil {
		return nil, err
	}

	if removing {
		if existing == nil {
			return &SyncResult{Outcome: SyncNothingToDelete, Message: "No event to delete"}, nil
		}
		if err := m.provider.DeleteEvent(ctx, m.calendarID, existing.ID); err != nil {
			return nil, upstream("calendar", "delete event", err)
		}
		return &SyncResult{Outcome: SyncDeleted, EventID: existing.ID, Message: "Event deleted from calendar"}, nil
	}

	event := m.BuildEvent(day, req.Status, req.Note)

	if existing != nil {
		event.ID = existing.ID
		if err := m.provider.UpdateEvent(ctx, m.calendarID, event); err != nil {
			return nil, upstream("calendar", "update event", err)
		}
		return &SyncResult{Outcome: SyncUpdated, EventID: existing.ID, Message: "Event updated in calendar"}, nil
	}

	id, err := m.provider.InsertEvent(ctx, m.calendarID, event)
	if err != nil {
		return nil, upstream("calendar", "insert event", err)
	}
	return &SyncResult{Outcome: SyncCreated, EventID: id, Message: "Event created in calendar"}, nil
}

// findMirrorEvent returns the first marker-prefixed event in the window, or nil
func (m *CalendarMirror) findMirrorEvent(ctx context.Context, start, end time.Time) (*CalendarEvent, error) {
	events, err := m.provider.ListEvents(ctx, m.calendarID, start, end, EventMarker)
	if err != nil {
		return nil, upstream("calendar", "list events", err)
	}
	for i := range events {
		if strings.HasPrefix(events[i].Summary, EventMarker) {
			return &events[i], nil
		}
	}
	return nil, nil
}

// GenerateAvailabilityICS renders booked days as an iCalendar feed of all-day events.
// Free entries are omitted.
func GenerateAvailabilityICS(entries []models.AvailabilityEntry, businessName, host string, now time.Time) ([]byte, error) {
	const dateFormat = "20060102"
	const stampFormat = "20060102T150405Z"
	dtStamp := now.UTC().Format(stampFormat)

	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:-//" + escapeICSText(businessName) + "//Availability//PT\r\n")
	b.WriteString("CALSCALE:GREGORIAN\r\n")
	b.WriteString("METHOD:PUBLISH\r\n")
	b.WriteString("X-WR-CALNAME:" + escapeICSText(businessName) + "\r\n")

	for _, entry := range entries {
		if !entry.Status.IsBooked() {
			continue
		}
		day, err := entry.Day(time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid entry date %q: %w", entry.Date, err)
		}

		b.WriteString("BEGIN:VEVENT\r\n")
		fmt.Fprintf(&b, "UID:%s@%s\r\n", entry.Date, host)
		fmt.Fprintf(&b, "DTSTAMP:%s\r\n", dtStamp)
		fmt.Fprintf(&b, "DTSTART;VALUE=DATE:%s\r\n", day.Format(dateFormat))
		fmt.Fprintf(&b, "DTEND;VALUE=DATE:%s\r\n", day.AddDate(0, 0, 1).Format(dateFormat))
		fmt.Fprintf(&b, "SUMMARY:%s\r\n", escapeICSText(EventTitle(entry.Status, businessName)))
		if note := entry.NoteText(); note != "" {
			fmt.Fprintf(&b, "DESCRIPTION:%s\r\n", escapeICSText(note))
		}
		b.WriteString("TRANSP:OPAQUE\r\n")
		b.WriteString("END:VEVENT\r\n")
	}

	b.WriteString("END:VCALENDAR\r\n")
	return []byte(b.String()), nil
}

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

func escapeICSText(s string) string {
	return icsEscaper.Replace(s)
}
