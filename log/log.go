package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog  zerolog.Logger
	diagFile *os.File
	noteFile *os.File
	logMu    sync.Mutex
	logReady bool
	pid      int
	dir      string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	// Priority 2: VOXNOTE_LOG_PATH environment variable
	envPath := os.Getenv("VOXNOTE_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	notePath := filepath.Join(dir, "notes_log.txt")
	noteFile, err = os.OpenFile(notePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if noteFile != nil {
		noteFile.Close()
		noteFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// TranscriptionMetrics records network timings for one remote STT upload.
type TranscriptionStats struct {
	Provider  string
	Format    string
	AudioS    float64
	UploadKB  float64
	DNSMs     float64
	TLSMs     float64
	TTFBMs    float64
	TotalMs   float64
	ConnReuse bool
}

func TranscriptionMetrics(s TranscriptionStats) {
	if !logReady {
		return
	}
	connStatus := "new"
	if s.ConnReuse {
		connStatus = "reused"
	}
	diagLog.Info().
		Str("provider", s.Provider).
		Str("format", s.Format).
		Str("conn", connStatus).
		Float64("audio_s", s.AudioS).
		Float64("upload_kb", s.UploadKB).
		Float64("dns_ms", s.DNSMs).
		Float64("tls_ms", s.TLSMs).
		Float64("ttfb_ms", s.TTFBMs).
		Float64("total_ms", s.TotalMs).
		Msg("transcription")
}

// StageTiming records how long one pipeline stage took.
func StageTiming(stage string, d time.Duration) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("stage", stage).
		Int64("ms", d.Milliseconds()).
		Msg("stage_done")
}

// RepairPath records which JSON parse path succeeded for a model response:
// "direct", "jsonrepair", "fallback" or "failed".
func RepairPath(stage, path string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("stage", stage).
		Str("path", path).
		Msg("json_parse")
}

// EventCreated records a calendar event created from a transcript.
func EventCreated(title, eventID string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("title", title).
		Str("event_id", eventID).
		Msg("calendar_event_created")
}

// EventFailed records a per-candidate calendar creation failure.
func EventFailed(title, reason string) {
	if !logReady {
		return
	}
	diagLog.Warn().
		Str("title", title).
		Str("reason", reason).
		Msg("calendar_event_failed")
}

// NoteSaved appends a one-line record of a persisted note to the notes log.
func NoteSaved(id, title string, durationS int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("id", id).
		Str("title", title).
		Int("duration_s", durationS).
		Msg("note_saved")
	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\t%s\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, id, title)
	noteFile.WriteString(line)
}

func SessionStart(provider, model, format string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("provider", provider).
		Str("model", model).
		Str("format", format).
		Msg("session_start")
}

func SessionEnd(count int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("count", count).
		Msg("session_end")
}
