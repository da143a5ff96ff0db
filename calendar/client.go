package calendar

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	defaultAlarmMinutes    = 15
	defaultDurationMinutes = 60
)

// Client caches permission state and the calendar list on top of a Provider.
// It is an explicitly constructed component — pass it to whoever needs it.
// The cache is guarded by a mutex so two concurrently processed memos can
// not lose an update between overlapping LoadCalendars calls.
type Client struct {
	provider Provider

	mu         sync.Mutex
	permission PermissionState
	calendars  []Calendar

	alarmMinutes    int
	durationMinutes int
}

func NewClient(p Provider) *Client {
	return &Client{
		provider:        p,
		permission:      PermissionUnknown,
		alarmMinutes:    defaultAlarmMinutes,
		durationMinutes: defaultDurationMinutes,
	}
}

// SetDefaults overrides the default alarm offset and quick-event duration.
// Zero values keep the current setting.
func (c *Client) SetDefaults(alarmMinutes, durationMinutes int) {
	if alarmMinutes > 0 {
		c.alarmMinutes = alarmMinutes
	}
	if durationMinutes > 0 {
		c.durationMinutes = durationMinutes
	}
}

// CheckPermissions queries the platform and updates the cached state.
func (c *Client) CheckPermissions() (PermissionState, error) {
	status, err := c.provider.CheckPermissions()
	if err != nil {
		return PermissionUnknown, fmt.Errorf("failed to check calendar permissions: %w", err)
	}
	c.mu.Lock()
	c.permission = status
	c.mu.Unlock()
	return status, nil
}

// RequestPermissions prompts the user and updates the cached state.
func (c *Client) RequestPermissions() (PermissionState, error) {
	status, err := c.provider.RequestPermissions()
	if err != nil {
		return PermissionUnknown, fmt.Errorf("failed to request calendar permissions: %w", err)
	}
	c.mu.Lock()
	c.permission = status
	c.mu.Unlock()
	return status, nil
}

func (c *Client) PermissionStatus() PermissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.permission
}

// LoadCalendars fetches all event-capable calendars and replaces the cache.
func (c *Client) LoadCalendars() ([]Calendar, error) {
	cals, err := c.provider.Calendars()
	if err != nil {
		return nil, fmt.Errorf("failed to load calendars: %w", err)
	}
	c.mu.Lock()
	c.calendars = cals
	c.mu.Unlock()
	return cals, nil
}

// Calendars returns the cached calendar list.
func (c *Client) Calendars() []Calendar {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calendars
}

// DefaultCalendar picks, in priority order: a calendar whose source is
// named "Default", one marked primary, one that allows modification, else
// the first cached calendar. Pure over the cache — never triggers a load.
func (c *Client) DefaultCalendar() *Calendar {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.calendars) == 0 {
		return nil
	}
	for i := range c.calendars {
		if c.calendars[i].SourceName == "Default" {
			return &c.calendars[i]
		}
	}
	for i := range c.calendars {
		if c.calendars[i].IsPrimary {
			return &c.calendars[i]
		}
	}
	for i := range c.calendars {
		if c.calendars[i].AllowsModifications {
			return &c.calendars[i]
		}
	}
	return &c.calendars[0]
}

func (c *Client) findCalendar(id string) *Calendar {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.calendars {
		if c.calendars[i].ID == id {
			return &c.calendars[i]
		}
	}
	return nil
}

// CreateEvent writes an event to the given calendar (or the default one if
// calendarID is empty). Callers must handle the returned error.
func (c *Client) CreateEvent(opts CreateEventOptions, calendarID string) (string, error) {
	if c.PermissionStatus() != PermissionGranted {
		return "", ErrPermissionDenied
	}

	var target *Calendar
	if calendarID != "" {
		target = c.findCalendar(calendarID)
	} else {
		target = c.DefaultCalendar()
	}
	if target == nil {
		return "", ErrNoCalendar
	}

	eventID, err := c.provider.CreateEvent(target.ID, opts)
	if err != nil {
		return "", fmt.Errorf("failed to create calendar event: %w", err)
	}
	return eventID, nil
}

// UpdateEvent applies a partial update: only fields present in the patch
// are changed.
func (c *Client) UpdateEvent(eventID string, patch EventPatch) error {
	if c.PermissionStatus() != PermissionGranted {
		return ErrPermissionDenied
	}
	if err := c.provider.UpdateEvent(eventID, patch); err != nil {
		return fmt.Errorf("failed to update calendar event: %w", err)
	}
	return nil
}

func (c *Client) DeleteEvent(eventID string) error {
	if c.PermissionStatus() != PermissionGranted {
		return ErrPermissionDenied
	}
	if err := c.provider.DeleteEvent(eventID); err != nil {
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}
	return nil
}

// FetchEvents returns events between start and end from the given calendars
// (all cached calendars if none are named).
func (c *Client) FetchEvents(start, end time.Time, calendarIDs []string) ([]Event, error) {
	if c.PermissionStatus() != PermissionGranted {
		return nil, ErrPermissionDenied
	}

	targets := calendarIDs
	if len(targets) == 0 {
		for _, cal := range c.Calendars() {
			targets = append(targets, cal.ID)
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no calendars available")
	}

	events, err := c.provider.EventsBetween(targets, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar events: %w", err)
	}
	return events, nil
}

// AddEventParams are the wire-level parameters of the add_calendar_event
// tool: ISO date strings, everything optional except title and the dates.
type AddEventParams struct {
	Title              string
	StartDate          string
	EndDate            string
	Location           string
	Notes              string
	AlarmMinutesBefore int
}

// AddEventToCalendar is the high-level, never-throw entry point used by the
// tool dispatcher. Every failure short-circuits into a Result.
func (c *Client) AddEventToCalendar(params AddEventParams) Result {
	status, err := c.CheckPermissions()
	if err != nil {
		return failure(err.Error())
	}
	if status != PermissionGranted {
		requested, err := c.RequestPermissions()
		if err != nil {
			return failure(err.Error())
		}
		if requested != PermissionGranted {
			return failure("Calendar permission not granted. Please allow calendar access in device settings.")
		}
	}

	if len(c.Calendars()) == 0 {
		if _, err := c.LoadCalendars(); err != nil {
			return failure(err.Error())
		}
	}

	start, err := parseISOTime(params.StartDate)
	if err != nil {
		return failure(`Invalid date format. Please use ISO date strings (e.g., "2025-08-08T10:00:00.000Z")`)
	}
	end, err := parseISOTime(params.EndDate)
	if err != nil {
		return failure(`Invalid date format. Please use ISO date strings (e.g., "2025-08-08T10:00:00.000Z")`)
	}
	if !start.Before(end) {
		return failure("Start date must be before end date")
	}

	alarm := params.AlarmMinutesBefore
	if alarm <= 0 {
		alarm = c.alarmMinutes
	}

	eventID, err := c.CreateEvent(CreateEventOptions{
		Title:              params.Title,
		StartDate:          start,
		EndDate:            end,
		Location:           params.Location,
		Notes:              params.Notes,
		AlarmMinutesBefore: &alarm,
	}, "")
	if err != nil {
		return failure(err.Error())
	}

	return Result{Success: true, EventID: eventID}
}

// UpcomingEventsForModel fetches events between now and now+days, projected
// to plain serializable fields.
func (c *Client) UpcomingEventsForModel(days int) UpcomingResult {
	if days <= 0 {
		days = 7
	}

	status, err := c.CheckPermissions()
	if err != nil {
		return UpcomingResult{Success: false, Error: err.Error()}
	}
	if status != PermissionGranted {
		return UpcomingResult{Success: false, Error: "Calendar permission not granted"}
	}

	if len(c.Calendars()) == 0 {
		if _, err := c.LoadCalendars(); err != nil {
			return UpcomingResult{Success: false, Error: err.Error()}
		}
	}

	now := time.Now()
	events, err := c.FetchEvents(now, now.AddDate(0, 0, days), nil)
	if err != nil {
		return UpcomingResult{Success: false, Error: err.Error()}
	}

	projected := make([]UpcomingEvent, 0, len(events))
	for _, ev := range events {
		projected = append(projected, UpcomingEvent{
			ID:        ev.ID,
			Title:     ev.Title,
			StartDate: ev.StartDate.Format(time.RFC3339),
			EndDate:   ev.EndDate.Format(time.RFC3339),
			Location:  ev.Location,
			Notes:     ev.Notes,
		})
	}
	return UpcomingResult{Success: true, Events: projected}
}

// EnsureAccess is the composite bootstrap: check permission, request it if
// missing, load calendars on success.
func (c *Client) EnsureAccess() AccessResult {
	status, err := c.CheckPermissions()
	if err != nil {
		return AccessResult{Success: false, Error: err.Error()}
	}

	if status != PermissionGranted {
		requested, err := c.RequestPermissions()
		if err != nil {
			return AccessResult{Success: false, Error: err.Error()}
		}
		if requested != PermissionGranted {
			return AccessResult{Success: false, Error: "Calendar permission denied by user"}
		}
	}

	cals, err := c.LoadCalendars()
	if err != nil {
		return AccessResult{Success: false, Error: err.Error()}
	}
	return AccessResult{Success: true, CalendarsCount: len(cals)}
}

// parseISOTime accepts RFC3339 timestamps with or without fractional
// seconds, plus bare dates.
func parseISOTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty time value", ErrInvalidInput)
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable time %q", ErrInvalidInput, s)
}
