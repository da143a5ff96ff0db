// Package tools publishes the calendar operations as named tools with
// JSON-Schema parameter descriptions, for consumption by a language model's
// function-calling mechanism.
package tools

import (
	"voxnote/calendar"
)

const (
	ToolAddEvent       = "add_calendar_event"
	ToolUpcomingEvents = "get_upcoming_events"
	ToolQuickEvent     = "create_quick_event"
	// ToolEnsureAccess is a pseudo-tool: it is the only name exempt from
	// the access gate in Execute, because it IS the access gate.
	ToolEnsureAccess = "ensure_access"
)

// Spec describes one callable tool in the chat-completions tool format.
type Spec struct {
	Type     string       `json:"type"`
	Function FunctionSpec `json:"function"`
}

type FunctionSpec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  Schema `json:"parameters"`
}

type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Result is the uniform outcome of Execute. Exactly one of the payload
// fields is populated depending on the tool.
type Result struct {
	Success        bool                     `json:"success"`
	EventID        string                   `json:"eventId,omitempty"`
	Events         []calendar.UpcomingEvent `json:"events,omitempty"`
	CalendarsCount int                      `json:"calendarsCount,omitempty"`
	Error          string                   `json:"error,omitempty"`
}

// Specs returns the published tool schemas.
func Specs() []Spec {
	return []Spec{
		{
			Type: "function",
			Function: FunctionSpec{
				Name:        ToolAddEvent,
				Description: "Add an event to the user's calendar",
				Parameters: Schema{
					Type: "object",
					Properties: map[string]Property{
						"title":              {Type: "string", Description: "Event title"},
						"startDate":          {Type: "string", Description: "Event start date and time in ISO format (e.g., '2025-08-08T10:00:00.000Z')"},
						"endDate":            {Type: "string", Description: "Event end date and time in ISO format (e.g., '2025-08-08T12:00:00.000Z')"},
						"location":           {Type: "string", Description: "Event location (optional)"},
						"notes":              {Type: "string", Description: "Event notes or description (optional)"},
						"alarmMinutesBefore": {Type: "number", Description: "Minutes before event to set alarm (default: 15)"},
					},
					Required: []string{"title", "startDate", "endDate"},
				},
			},
		},
		{
			Type: "function",
			Function: FunctionSpec{
				Name:        ToolUpcomingEvents,
				Description: "Get upcoming events from the user's calendar",
				Parameters: Schema{
					Type: "object",
					Properties: map[string]Property{
						"days": {Type: "number", Description: "Number of days to look ahead (default: 7)"},
					},
				},
			},
		},
		{
			Type: "function",
			Function: FunctionSpec{
				Name:        ToolQuickEvent,
				Description: "Create a quick event for today or tomorrow with simple time input",
				Parameters: Schema{
					Type: "object",
					Properties: map[string]Property{
						"title":           {Type: "string", Description: "Event title"},
						"date":            {Type: "string", Description: "Date for the event: 'today', 'tomorrow', or ISO date string"},
						"time":            {Type: "string", Description: "Time in HH:MM format (e.g., '10:00' or '14:30')"},
						"durationMinutes": {Type: "number", Description: "Event duration in minutes (default: 60)"},
						"location":        {Type: "string", Description: "Event location (optional)"},
						"notes":           {Type: "string", Description: "Event notes (optional)"},
					},
					Required: []string{"title", "date", "time"},
				},
			},
		},
	}
}
