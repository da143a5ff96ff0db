package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultChatBaseURL = "https://api.groq.com/openai/v1"

// ChatMessage is one turn in a chat-completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompleter sends a message list to a model and returns the content of
// the first choice. Implementations must honor ctx cancellation.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// GroqChat talks to a Groq (OpenAI-compatible) chat-completions endpoint,
// always requesting JSON-object output.
type GroqChat struct {
	// BaseURL may be overridden before first use, e.g. for tests.
	BaseURL string

	apiKey      string
	model       string
	temperature float64
	client      *http.Client
}

func NewGroqChat(apiKey, model string, temperature float64) *GroqChat {
	return &GroqChat{
		BaseURL:     defaultChatBaseURL,
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		client:      &http.Client{Timeout: 60 * time.Second},
	}
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []ChatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (g *GroqChat) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:          g.model,
		Messages:       messages,
		Temperature:    g.temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("chat API error %d: %s", resp.StatusCode, string(body))
	}

	var cResp chatResponse
	if err := json.Unmarshal(body, &cResp); err != nil {
		return "", fmt.Errorf("chat response parse error: %w", err)
	}
	if len(cResp.Choices) == 0 {
		return "", errors.New("no analysis response received")
	}
	return cResp.Choices[0].Message.Content, nil
}

// FakeChat is a scriptable ChatCompleter for tests. Responses are consumed
// in order; Err short-circuits every call.
type FakeChat struct {
	Responses []string
	Err       error

	Calls [][]ChatMessage
}

func (f *FakeChat) Complete(_ context.Context, messages []ChatMessage) (string, error) {
	f.Calls = append(f.Calls, messages)
	if f.Err != nil {
		return "", f.Err
	}
	if len(f.Responses) == 0 {
		return "", errors.New("no analysis response received")
	}
	resp := f.Responses[0]
	f.Responses = f.Responses[1:]
	return resp, nil
}
