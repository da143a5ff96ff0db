package analyze

import (
	"context"
	"fmt"
	"strings"
	"time"

	"voxnote/config"
	"voxnote/log"
	"voxnote/tools"
)

const extractSystemPrompt = `You are an AI assistant that detects calendar events in voice note transcriptions.

Read the transcription and decide whether it mentions anything that should become a calendar event: meetings, appointments, calls, deadlines with a specific day or time. A task with no scheduled day or time is NOT a calendar event.

Respond with JSON in this exact format:
{
  "hasCalendarEvents": true,
  "events": [
    {
      "title": "Short event title",
      "date": "today, tomorrow, or an ISO date string",
      "time": "HH:MM",
      "durationMinutes": 60,
      "location": "optional location",
      "notes": "optional details"
    }
  ]
}

If there are no calendar events, respond with {"hasCalendarEvents": false, "events": []}. Do not add any explanation or commentary.`

// Extractor detects scheduling intents in a transcript and creates a
// calendar event for each one through the tool dispatcher.
type Extractor struct {
	chat       ChatCompleter
	dispatcher *tools.Dispatcher
	policy     config.QuickEventPolicy
}

func NewExtractor(chat ChatCompleter, dispatcher *tools.Dispatcher, policy config.QuickEventPolicy) *Extractor {
	return &Extractor{chat: chat, dispatcher: dispatcher, policy: policy}
}

// ExtractEvents runs the extraction stage. It never returns an error:
// every failure mode, including a panic, becomes entries in
// ExtractResult.Errors, so a bad extraction can't take the note down with
// it. Candidates are processed sequentially so created events and error
// messages keep the model's ordering.
func (e *Extractor) ExtractEvents(ctx context.Context, transcript string) (result ExtractResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("event extraction panicked: %v", r)
			result = ExtractResult{Errors: []string{fmt.Sprintf("Event extraction failed: %v", r)}}
		}
		log.StageTiming("extract", time.Since(start))
	}()

	content, err := e.chat.Complete(ctx, []ChatMessage{
		{Role: "system", Content: extractSystemPrompt},
		{Role: "user", Content: "Find calendar events in this transcription:\n\n" + transcript},
	})
	if err != nil {
		return ExtractResult{Errors: []string{"Event extraction failed: " + err.Error()}}
	}
	if strings.TrimSpace(content) == "" {
		// No verdict means no events, not a failure.
		return ExtractResult{}
	}

	obj, ok := parseJSONObject("extract", content)
	if !ok {
		return ExtractResult{Errors: []string{"Invalid calendar data structure"}}
	}
	hasRaw, hasOK := obj["hasCalendarEvents"]
	eventsRaw, eventsOK := obj["events"]
	if !hasOK || !eventsOK {
		return ExtractResult{Errors: []string{"Missing required fields in calendar data"}}
	}

	has, _ := hasRaw.(bool)
	list, isList := eventsRaw.([]any)
	if !has || !isList || len(list) == 0 {
		return ExtractResult{}
	}

	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			result.Errors = append(result.Errors, "Skipped malformed event entry")
			continue
		}
		cand := e.candidateFrom(entry)
		if cand.Title == "" {
			result.Errors = append(result.Errors, "Skipped event with no title")
			continue
		}

		res := e.dispatcher.Execute(tools.ToolQuickEvent, map[string]any{
			"title":           cand.Title,
			"date":            cand.Date,
			"time":            cand.Time,
			"durationMinutes": cand.DurationMinutes,
			"location":        cand.Location,
			"notes":           cand.Notes,
		})
		if res.Success {
			result.EventsCreated = append(result.EventsCreated, CreatedEvent{Title: cand.Title, EventID: res.EventID})
			log.EventCreated(cand.Title, res.EventID)
		} else {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to create event %q: %s", cand.Title, res.Error))
			log.EventFailed(cand.Title, res.Error)
		}
	}
	return result
}

// candidateFrom normalizes one model-produced event entry, filling gaps
// with the configured quick-event defaults.
func (e *Extractor) candidateFrom(entry map[string]any) CandidateEvent {
	cand := CandidateEvent{
		Title:           strings.TrimSpace(stringField(entry, "title")),
		Date:            strings.TrimSpace(stringField(entry, "date")),
		Time:            strings.TrimSpace(stringField(entry, "time")),
		DurationMinutes: intField(entry, "durationMinutes"),
		Location:        strings.TrimSpace(stringField(entry, "location")),
		Notes:           strings.TrimSpace(stringField(entry, "notes")),
	}
	if cand.Date == "" {
		cand.Date = e.policy.Date
	}
	if cand.Time == "" {
		cand.Time = e.policy.Time
	}
	if cand.DurationMinutes <= 0 {
		cand.DurationMinutes = e.policy.DurationMinutes
	}
	if cand.Notes != "" {
		cand.Notes = "From voice memo: " + cand.Notes
	} else {
		cand.Notes = "Created from a voice memo"
	}
	return cand
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
