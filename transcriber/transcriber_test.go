package transcriber

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNetworkMetricsSum(t *testing.T) {
	m := &NetworkMetrics{
		ConnWait:   10 * time.Millisecond,
		DNS:        20 * time.Millisecond,
		TCP:        30 * time.Millisecond,
		TLS:        40 * time.Millisecond,
		ReqHeaders: 5 * time.Millisecond,
		ReqBody:    15 * time.Millisecond,
		TTFB:       50 * time.Millisecond,
		Download:   25 * time.Millisecond,
	}
	got := m.Sum()
	want := 195 * time.Millisecond
	if got != want {
		t.Errorf("Sum() = %v, want %v", got, want)
	}
}

func TestNetworkMetricsFinish(t *testing.T) {
	m := &NetworkMetrics{}
	reqStart := time.Now().Add(-time.Second)
	firstByte := time.Now().Add(-100 * time.Millisecond)

	m.finish(reqStart, firstByte)
	if m.Total < time.Second {
		t.Errorf("Total = %v, want >= 1s", m.Total)
	}
	if m.Download < 100*time.Millisecond || m.Download > time.Second {
		t.Errorf("Download = %v, want ~100ms", m.Download)
	}
}

func TestNetworkMetricsFinishNoFirstByte(t *testing.T) {
	// GotFirstResponseByte never fires when the request dies before the
	// response; Download must not be measured from the zero time.
	m := &NetworkMetrics{}
	m.finish(time.Now(), time.Time{})
	if m.Download != 0 {
		t.Errorf("Download = %v, want 0 without a first-byte timestamp", m.Download)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	h := http.Header{}
	h.Set("X-Rate-Limit", "100")

	if got := firstNonEmpty(h, "X-Missing", "X-Rate-Limit"); got != "100" {
		t.Errorf("got %q, want %q", got, "100")
	}
	if got := firstNonEmpty(h, "X-A", "X-B"); got != "?" {
		t.Errorf("got %q, want %q", got, "?")
	}
}

func TestMimeForFile(t *testing.T) {
	for _, tt := range []struct{ path, want string }{
		{"note.wav", "audio/wav"},
		{"note.WAV", "audio/wav"},
		{"note.webm", "audio/webm"},
		{"note.mp3", "audio/mpeg"},
		{"note.m4a", "audio/mp4"},
		{"note.mp4", "audio/mp4"},
		{"note.ogg", "audio/ogg"},
		{"note.flac", "audio/flac"},
		{"note.xyz", "audio/mp4"},
		{"note", "audio/mp4"},
	} {
		t.Run(tt.path, func(t *testing.T) {
			if got := mimeForFile(tt.path); got != tt.want {
				t.Errorf("mimeForFile(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func writeAudioFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("fake audio bytes"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGroqTranscribe(t *testing.T) {
	var gotAuth, gotModel, gotFormat, gotLang, gotPartType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		gotModel = r.FormValue("model")
		gotFormat = r.FormValue("response_format")
		gotLang = r.FormValue("language")

		if files := r.MultipartForm.File["file"]; len(files) == 1 {
			gotPartType = files[0].Header.Get("Content-Type")
		} else {
			t.Errorf("expected 1 file part, got %d", len(files))
		}

		w.Header().Set("x-ratelimit-remaining-requests", "99")
		w.Header().Set("x-ratelimit-limit-requests", "100")
		w.Write([]byte("hello world\n"))
	}))
	defer srv.Close()

	g := NewGroq("test-key", "")
	g.apiURL = srv.URL
	g.client = NewTracedClient(srv.URL)
	g.SetLanguage("en")

	result, err := g.Transcribe(context.Background(), writeAudioFile(t, "note.wav"))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if result.Text != "hello world" {
		t.Errorf("Text = %q, want %q", result.Text, "hello world")
	}
	if result.RateLimit != "99/100" {
		t.Errorf("RateLimit = %q, want %q", result.RateLimit, "99/100")
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotModel != "whisper-large-v3" {
		t.Errorf("model = %q", gotModel)
	}
	if gotFormat != "text" {
		t.Errorf("response_format = %q", gotFormat)
	}
	if gotLang != "en" {
		t.Errorf("language = %q", gotLang)
	}
	if gotPartType != "audio/wav" {
		t.Errorf("file part Content-Type = %q, want audio/wav", gotPartType)
	}
}

func TestGroqTranscribeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte("invalid api key"))
	}))
	defer srv.Close()

	g := NewGroq("bad-key", "")
	g.apiURL = srv.URL
	g.client = NewTracedClient(srv.URL)

	_, err := g.Transcribe(context.Background(), writeAudioFile(t, "note.flac"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "groq API error 401") {
		t.Errorf("error = %q", err)
	}
}

func TestGroqTranscribeEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("  \n"))
	}))
	defer srv.Close()

	g := NewGroq("k", "")
	g.apiURL = srv.URL
	g.client = NewTracedClient(srv.URL)

	_, err := g.Transcribe(context.Background(), writeAudioFile(t, "note.flac"))
	if err == nil || !strings.Contains(err.Error(), "empty transcription") {
		t.Errorf("error = %v, want empty transcription error", err)
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	g := NewGroq("k", "")
	if _, err := g.Transcribe(context.Background(), "/does/not/exist.wav"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := New(""); err == nil {
		t.Fatal("expected error with no keys set")
	}

	t.Setenv("OPENAI_API_KEY", "ok")
	tr, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	if tr.Name() != "openai" {
		t.Errorf("Name = %q, want openai", tr.Name())
	}

	t.Setenv("GROQ_API_KEY", "gk")
	tr, err = New("whisper-large-v3")
	if err != nil {
		t.Fatal(err)
	}
	if tr.Name() != "groq" {
		t.Errorf("Name = %q, want groq (groq key wins)", tr.Name())
	}
}
