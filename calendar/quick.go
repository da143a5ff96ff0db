package calendar

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var quickTimeRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// QuickEventParams describe a loosely-specified event: a date word, a
// clock time and a duration instead of full timestamps.
type QuickEventParams struct {
	Title           string
	Date            string // "today", "tomorrow" or a parseable date string
	Time            string // strict H:MM / HH:MM
	DurationMinutes int    // 0 means the client default
	Location        string
	Notes           string
}

// QuickEvent resolves the (date, time, duration) triple into concrete start
// and end timestamps and delegates to AddEventToCalendar. It is a pure
// validating transform — no platform I/O happens before delegation, and
// nothing is silently clamped.
func (c *Client) QuickEvent(params QuickEventParams) Result {
	return c.quickEventAt(params, time.Now())
}

// quickEventAt exists so tests can pin "today".
func (c *Client) quickEventAt(params QuickEventParams, now time.Time) Result {
	var day time.Time
	switch strings.ToLower(params.Date) {
	case "today":
		day = now
	case "tomorrow":
		day = now.AddDate(0, 0, 1)
	default:
		parsed, err := parseISOTime(params.Date)
		if err != nil {
			return failure(`Invalid date. Use "today", "tomorrow", or ISO date string`)
		}
		day = parsed
	}

	m := quickTimeRe.FindStringSubmatch(params.Time)
	if m == nil {
		return failure(`Invalid time format. Use HH:MM format (e.g., "10:00" or "14:30")`)
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return failure("Invalid time. Hours must be 0-23, minutes must be 0-59")
	}

	duration := params.DurationMinutes
	if duration <= 0 {
		duration = c.durationMinutes
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), hours, minutes, 0, 0, time.Local)
	end := start.Add(time.Duration(duration) * time.Minute)

	return c.AddEventToCalendar(AddEventParams{
		Title:     params.Title,
		StartDate: start.Format(time.RFC3339),
		EndDate:   end.Format(time.RFC3339),
		Location:  params.Location,
		Notes:     params.Notes,
	})
}
