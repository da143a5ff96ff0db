package tools

import (
	"fmt"

	"voxnote/calendar"
	"voxnote/log"
)

// Dispatcher routes tool calls by name to the calendar client. Every call
// passes through the access gate first: if calendar access cannot be
// obtained, the call fails without reaching the client. Execute never
// panics; a panic in a handler is converted into a failed Result.
type Dispatcher struct {
	client      *calendar.Client
	horizonDays int
}

// NewDispatcher wires a dispatcher to a calendar client. horizonDays is the
// default look-ahead for get_upcoming_events when the model omits "days".
func NewDispatcher(client *calendar.Client, horizonDays int) *Dispatcher {
	if horizonDays <= 0 {
		horizonDays = 7
	}
	return &Dispatcher{client: client, horizonDays: horizonDays}
}

// Execute runs the named tool with the given parameters. It always returns
// a usable Result; failures are reported in Result.Error.
func (d *Dispatcher) Execute(name string, params map[string]any) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("tool %s panicked: %v", name, r)
			result = Result{Success: false, Error: fmt.Sprintf("Tool %s failed: %v", name, r)}
		}
	}()

	if name == ToolEnsureAccess {
		acc := d.client.EnsureAccess()
		return Result{Success: acc.Success, CalendarsCount: acc.CalendarsCount, Error: acc.Error}
	}

	if acc := d.client.EnsureAccess(); !acc.Success {
		return Result{Success: false, Error: "Calendar access required: " + acc.Error}
	}

	switch name {
	case ToolAddEvent:
		res := d.client.AddEventToCalendar(calendar.AddEventParams{
			Title:              getString(params, "title"),
			StartDate:          getString(params, "startDate"),
			EndDate:            getString(params, "endDate"),
			Location:           getString(params, "location"),
			Notes:              getString(params, "notes"),
			AlarmMinutesBefore: getInt(params, "alarmMinutesBefore"),
		})
		return Result{Success: res.Success, EventID: res.EventID, Error: res.Error}

	case ToolUpcomingEvents:
		days := getInt(params, "days")
		if days <= 0 {
			days = d.horizonDays
		}
		res := d.client.UpcomingEventsForModel(days)
		return Result{Success: res.Success, Events: res.Events, Error: res.Error}

	case ToolQuickEvent:
		res := d.client.QuickEvent(calendar.QuickEventParams{
			Title:           getString(params, "title"),
			Date:            getString(params, "date"),
			Time:            getString(params, "time"),
			DurationMinutes: getInt(params, "durationMinutes"),
			Location:        getString(params, "location"),
			Notes:           getString(params, "notes"),
		})
		return Result{Success: res.Success, EventID: res.EventID, Error: res.Error}

	default:
		return Result{Success: false, Error: "Unknown calendar tool: " + name}
	}
}

func getString(params map[string]any, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

// getInt tolerates the numeric shapes that come out of JSON decoding.
func getInt(params map[string]any, key string) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}
