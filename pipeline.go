package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"voxnote/analyze"
	"voxnote/log"
	"voxnote/notes"
	"voxnote/transcriber"
)

// Processor runs the full voice-note pipeline: transcript, calendar event
// extraction, summary, persistence. Extraction failures degrade to warnings;
// a failed transcription or summary aborts with an error, leaving the audio
// file on disk.
type Processor struct {
	Store       *notes.Store
	Transcriber transcriber.Transcriber
	Extractor   *analyze.Extractor
	Summarizer  *analyze.Summarizer
	Format      string
}

func (p *Processor) Process(ctx context.Context, audioPath string, durationS int) (*notes.VoiceNote, error) {
	fmt.Println("Transcribing...")
	start := time.Now()
	result, err := p.Transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	log.StageTiming("transcribe", time.Since(start))
	logTranscriptionStats(p, audioPath, durationS, result)

	fmt.Println("Checking for calendar events...")
	extract := p.Extractor.ExtractEvents(ctx, result.Text)
	for _, ev := range extract.EventsCreated {
		fmt.Printf("  Created calendar event: %s\n", ev.Title)
	}
	for _, msg := range extract.Errors {
		fmt.Fprintf(os.Stderr, "  Warning: %s\n", msg)
	}

	fmt.Println("Summarizing...")
	analysis, err := p.Summarizer.Summarize(ctx, result.Text, extract.EventsCreated)
	if err != nil {
		return nil, fmt.Errorf("summary failed: %w", err)
	}

	now := time.Now()
	note := notes.VoiceNote{
		ID:              notes.NewID(now),
		Title:           analysis.Title,
		AudioPath:       audioPath,
		Transcription:   result.Text,
		KeyPoints:       analysis.KeyPoints,
		Actions:         analysis.Actions,
		Tags:            analysis.Tags,
		CreatedAt:       now,
		DurationSeconds: durationS,
		CalendarEvents:  analysis.CalendarEvents,
	}
	applyFallbacks(&note, now)

	if err := p.Store.Add(note); err != nil {
		return nil, fmt.Errorf("saving note: %w", err)
	}
	return &note, nil
}

// applyFallbacks fills the display fields the model left empty, so every
// saved note renders sensibly.
func applyFallbacks(n *notes.VoiceNote, now time.Time) {
	if n.Title == "" {
		n.Title = "Voice Note - " + now.Format("3:04 PM")
	}
	if len(n.KeyPoints) == 0 {
		n.KeyPoints = []string{"No key points identified"}
	}
	if len(n.Actions) == 0 {
		n.Actions = []string{"No actions identified"}
	}
	if len(n.Tags) == 0 {
		n.Tags = []string{"General"}
	}
}

func logTranscriptionStats(p *Processor, audioPath string, durationS int, result *transcriber.Result) {
	stats := log.TranscriptionStats{
		Provider: p.Transcriber.Name(),
		Format:   p.Format,
		AudioS:   float64(durationS),
	}
	if info, err := os.Stat(audioPath); err == nil {
		stats.UploadKB = float64(info.Size()) / 1024
	}
	if m := result.Metrics; m != nil {
		stats.DNSMs = float64(m.DNS.Milliseconds())
		stats.TLSMs = float64(m.TLS.Milliseconds())
		stats.TTFBMs = float64(m.TTFB.Milliseconds())
		stats.TotalMs = float64(m.Total.Milliseconds())
		stats.ConnReuse = m.ConnReused
	}
	log.TranscriptionMetrics(stats)
}
