// Package analyze turns a transcript into structured insight: a calendar
// event extraction pass followed by a summary pass, both backed by a remote
// chat-completion model.
package analyze

// CandidateEvent is one scheduling intent the model detected in a
// transcript. Fields other than Title fall back to configured defaults.
type CandidateEvent struct {
	Title           string `json:"title"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"durationMinutes"`
	Location        string `json:"location"`
	Notes           string `json:"notes"`
}

// CreatedEvent records one successful calendar write during extraction.
type CreatedEvent struct {
	Title   string
	EventID string
}

// ExtractResult is the outcome of the extraction stage. Errors are ordered
// to match the model's candidate list.
type ExtractResult struct {
	EventsCreated []CreatedEvent
	Errors        []string
}

// NoteEvent is the per-note record of a calendar event, persisted with the
// voice note.
type NoteEvent struct {
	Title   string `json:"title"`
	EventID string `json:"eventId,omitempty"`
	Created bool   `json:"created"`
}

// Analysis is the merged output of the summary and extraction stages.
type Analysis struct {
	Title          string      `json:"title"`
	KeyPoints      []string    `json:"keyPoints"`
	Actions        []string    `json:"actions"`
	Tags           []string    `json:"tags"`
	CalendarEvents []NoteEvent `json:"calendarEvents,omitempty"`
}
