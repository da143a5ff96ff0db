package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// transcribeUpload posts the audio file as multipart/form-data and expects
// the transcript back as plain text (response_format=text). Both providers
// speak the same Whisper-style endpoint, so they share this.
func (b *baseTranscriber) transcribeUpload(ctx context.Context, apiKey, provider, audioPath string) (*Result, error) {
	audioData, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	// CreateFormFile hardcodes application/octet-stream; the API wants the
	// real audio MIME type on the part.
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(audioPath)))
	header.Set("Content-Type", mimeForFile(audioPath))
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audioData); err != nil {
		return nil, err
	}

	writer.WriteField("model", b.model)
	writer.WriteField("response_format", "text")
	if b.lang != "" {
		writer.WriteField("language", b.lang)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", b.apiURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("%s API error %d: %s", provider, resp.StatusCode, string(resp.Body))
	}

	text := strings.TrimSpace(string(resp.Body))
	if text == "" {
		return nil, fmt.Errorf("empty transcription response")
	}

	remaining := firstNonEmpty(resp.Header, "x-ratelimit-remaining-requests")
	limit := firstNonEmpty(resp.Header, "x-ratelimit-limit-requests")

	return &Result{
		Text:      text,
		Metrics:   resp.Metrics,
		RateLimit: remaining + "/" + limit,
	}, nil
}
