package transcriber

import (
	"context"
)

// Fake is a scriptable Transcriber for tests.
type Fake struct {
	Text string
	Err  error

	lang  string
	Paths []string
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) SetLanguage(lang string) { f.lang = lang }

func (f *Fake) GetLanguage() string { return f.lang }

func (f *Fake) Warm() {}

func (f *Fake) Transcribe(_ context.Context, audioPath string) (*Result, error) {
	f.Paths = append(f.Paths, audioPath)
	if f.Err != nil {
		return nil, f.Err
	}
	return &Result{Text: f.Text, Metrics: &NetworkMetrics{}}, nil
}
