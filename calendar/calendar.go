// Package calendar wraps a calendar store behind a permission-gated client.
// Low-level operations return errors; the tool-facing operations
// (AddEventToCalendar, UpcomingEventsForModel, EnsureAccess, QuickEvent)
// never do — every failure is captured in a result value so that one bad
// event can not abort the analysis pipeline built on top.
package calendar

import (
	"errors"
	"time"
)

type PermissionState string

const (
	PermissionUnknown      PermissionState = "unknown"
	PermissionGranted      PermissionState = "granted"
	PermissionDenied       PermissionState = "denied"
	PermissionUndetermined PermissionState = "undetermined"
)

var (
	ErrPermissionDenied = errors.New("calendar permission not granted")
	ErrNoCalendar       = errors.New("no calendar available for creating events")
	ErrInvalidInput     = errors.New("invalid calendar input")
)

// Calendar describes one event-capable calendar exposed by the provider.
type Calendar struct {
	ID                  string
	Title               string
	SourceName          string
	IsPrimary           bool
	AllowsModifications bool
}

// Event is a calendar event as stored by the provider.
type Event struct {
	ID        string
	Title     string
	StartDate time.Time
	EndDate   time.Time
	Location  string
	Notes     string
}

// CreateEventOptions carries the fields for a new event. A nil
// AlarmMinutesBefore means no alarm; otherwise a single alert is attached
// at -AlarmMinutesBefore minutes.
type CreateEventOptions struct {
	Title              string
	StartDate          time.Time
	EndDate            time.Time
	Location           string
	Notes              string
	AlarmMinutesBefore *int
}

// EventPatch is a partial update: only non-nil fields are changed.
type EventPatch struct {
	Title              *string
	StartDate          *time.Time
	EndDate            *time.Time
	Location           *string
	Notes              *string
	AlarmMinutesBefore *int
}

// Provider is the underlying calendar platform: permission handling,
// calendar enumeration and event CRUD. Implementations are expected to be
// dumb about policy — permission caching, default-calendar selection and
// validation live in Client.
type Provider interface {
	CheckPermissions() (PermissionState, error)
	RequestPermissions() (PermissionState, error)
	Calendars() ([]Calendar, error)
	CreateEvent(calendarID string, opts CreateEventOptions) (string, error)
	UpdateEvent(eventID string, patch EventPatch) error
	DeleteEvent(eventID string) error
	EventsBetween(calendarIDs []string, start, end time.Time) ([]Event, error)
}

// Result is the never-throw outcome of a tool-facing calendar write.
type Result struct {
	Success bool   `json:"success"`
	EventID string `json:"eventId,omitempty"`
	Error   string `json:"error,omitempty"`
}

func failure(msg string) Result {
	return Result{Success: false, Error: msg}
}

// UpcomingEvent is an event projected to plain serializable fields for
// consumption by a language model.
type UpcomingEvent struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Location  string `json:"location,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type UpcomingResult struct {
	Success bool            `json:"success"`
	Events  []UpcomingEvent `json:"events,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type AccessResult struct {
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
	CalendarsCount int    `json:"calendarsCount,omitempty"`
}
