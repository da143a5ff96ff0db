package transcriber

import (
	"context"
)

type Groq struct {
	baseTranscriber
	apiKey string
}

func NewGroq(apiKey, model string) *Groq {
	if model == "" {
		model = "whisper-large-v3"
	}
	apiURL := "https://api.groq.com/openai/v1/audio/transcriptions"
	return &Groq{
		baseTranscriber: baseTranscriber{
			client: NewTracedClient(apiURL),
			apiURL: apiURL,
			model:  model,
		},
		apiKey: apiKey,
	}
}

func (g *Groq) Name() string { return "groq" }

func (g *Groq) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	return g.transcribeUpload(ctx, g.apiKey, "groq", audioPath)
}
