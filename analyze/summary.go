package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"voxnote/log"
)

const summarySystemPrompt = `You are an AI assistant specialized in analyzing voice note transcriptions and converting them into structured summaries.

Your task is to carefully read the transcription and return a structured JSON object with the following information:
1. Title - a concise and informative title that summarizes the main topic (max 50 characters).
2. Key Points - the main ideas, insights, or discussed topics from the content, as clear, short bullet points.
3. Actions - all actionable items or next steps mentioned. These should be concrete and clear.
4. Tags - relevant tags (keywords or categories) that best describe the content contextually.

Make sure the output is readable and helpful, with no extra explanation or commentary. All fields must be present, even if some arrays are empty.

Respond with JSON in this exact format:
{
  "title": "Brief descriptive title",
  "keyPoints": ["Key point 1", "Key point 2", "Key point 3"],
  "actions": ["Action item 1", "Action item 2"],
  "tags": ["tag1", "tag2"]
}`

// Summarizer produces the structured summary for a transcript. Unlike
// extraction, a failed summary is fatal: the summary is the primary value
// of the note, so errors propagate to the caller.
type Summarizer struct {
	chat ChatCompleter
}

func NewSummarizer(chat ChatCompleter) *Summarizer {
	return &Summarizer{chat: chat}
}

func (s *Summarizer) Summarize(ctx context.Context, transcript string, created []CreatedEvent) (*Analysis, error) {
	start := time.Now()
	defer func() { log.StageTiming("summary", time.Since(start)) }()

	system := summarySystemPrompt
	if len(created) > 0 {
		titles := make([]string, len(created))
		for i, ev := range created {
			titles[i] = ev.Title
		}
		system += "\n\nCalendar events were already created from this note: " + strings.Join(titles, ", ") + "."
	}

	content, err := s.chat.Complete(ctx, []ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: "Analyze this transcription and extract key points:\n\n" + transcript},
	})
	if err != nil {
		return nil, fmt.Errorf("error extracting key points: %w", err)
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(stripFences(strings.TrimSpace(content))), &analysis); err != nil {
		return nil, fmt.Errorf("error extracting key points: %w", err)
	}

	for _, ev := range created {
		analysis.CalendarEvents = append(analysis.CalendarEvents, NoteEvent{
			Title:   ev.Title,
			EventID: ev.EventID,
			Created: true,
		})
	}
	return &analysis, nil
}
