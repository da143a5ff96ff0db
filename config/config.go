package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// QuickEventPolicy holds the defaults applied to model-detected events that
// omit a date, time or duration. These are product policy, not constants:
// a transcript like "meet for the budget review" has no explicit schedule,
// and the policy decides where such an event lands.
type QuickEventPolicy struct {
	// Date is the default date token: "today", "tomorrow" or an ISO date.
	Date string `yaml:"date" json:"date"`
	// Time is the default start time in HH:MM.
	Time string `yaml:"time" json:"time"`
	// DurationMinutes is the default event length.
	DurationMinutes int `yaml:"duration_minutes" json:"duration_minutes"`
	// AlarmMinutesBefore is the default reminder offset.
	AlarmMinutesBefore int `yaml:"alarm_minutes_before" json:"alarm_minutes_before"`
}

// Config is the top-level application configuration. API keys are
// deliberately absent: they come from the environment (GROQ_API_KEY,
// OPENAI_API_KEY) and are never written to disk.
type Config struct {
	// Language is the transcription language code (e.g. "en").
	Language string `yaml:"language" json:"language"`

	// Format is the recording upload format: "wav" or "flac".
	Format string `yaml:"format" json:"format"`

	// TranscribeModel is the remote speech-to-text model name.
	TranscribeModel string `yaml:"transcribe_model" json:"transcribe_model"`

	// SummaryModel is the chat model used for note summarization.
	SummaryModel string `yaml:"summary_model" json:"summary_model"`

	// ExtractModel is the chat model used for calendar-event detection.
	ExtractModel string `yaml:"extract_model" json:"extract_model"`

	// ChatBaseURL overrides the chat-completions endpoint. Empty selects
	// Groq or OpenAI automatically based on which API key is set.
	ChatBaseURL string `yaml:"chat_base_url,omitempty" json:"chat_base_url,omitempty"`

	// Temperature is pinned low so event detection stays deterministic.
	Temperature float64 `yaml:"temperature" json:"temperature"`

	// HorizonDays is how far ahead get_upcoming_events looks by default.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// QuickEvent is the default policy for loosely-specified events.
	QuickEvent QuickEventPolicy `yaml:"quick_event" json:"quick_event"`

	// CalendarPath is the ICS file backing the local calendar store.
	CalendarPath string `yaml:"calendar_path" json:"calendar_path"`

	// NotesPath is the JSON file holding the persisted note collection.
	NotesPath string `yaml:"notes_path" json:"notes_path"`

	// AudioDir is where recorded memo audio files are kept.
	AudioDir string `yaml:"audio_dir" json:"audio_dir"`
}

func DefaultConfig() *Config {
	dataDir := defaultDataDir()
	return &Config{
		Language:        "en",
		Format:          "flac",
		TranscribeModel: "whisper-large-v3",
		SummaryModel:    "llama-3.1-8b-instant",
		ExtractModel:    "llama-3.1-8b-instant",
		Temperature:     0.1,
		HorizonDays:     7,
		QuickEvent: QuickEventPolicy{
			Date:               "tomorrow",
			Time:               "10:00",
			DurationMinutes:    60,
			AlarmMinutesBefore: 15,
		},
		CalendarPath: filepath.Join(dataDir, "calendar.ics"),
		NotesPath:    filepath.Join(dataDir, "notes.json"),
		AudioDir:     filepath.Join(dataDir, "audio"),
	}
}

// Normalize fills in missing/zero values so partially-filled configs from
// older versions still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Language == "" {
		c.Language = def.Language
	}
	switch c.Format {
	case "wav", "flac":
	default:
		c.Format = def.Format
	}
	if c.TranscribeModel == "" {
		c.TranscribeModel = def.TranscribeModel
	}
	if c.SummaryModel == "" {
		c.SummaryModel = def.SummaryModel
	}
	if c.ExtractModel == "" {
		c.ExtractModel = def.ExtractModel
	}
	if c.Temperature <= 0 {
		c.Temperature = def.Temperature
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = def.HorizonDays
	}
	if c.QuickEvent.Date == "" {
		c.QuickEvent.Date = def.QuickEvent.Date
	}
	if c.QuickEvent.Time == "" {
		c.QuickEvent.Time = def.QuickEvent.Time
	}
	if c.QuickEvent.DurationMinutes <= 0 {
		c.QuickEvent.DurationMinutes = def.QuickEvent.DurationMinutes
	}
	if c.QuickEvent.AlarmMinutesBefore <= 0 {
		c.QuickEvent.AlarmMinutesBefore = def.QuickEvent.AlarmMinutesBefore
	}
	if c.CalendarPath == "" {
		c.CalendarPath = def.CalendarPath
	}
	if c.NotesPath == "" {
		c.NotesPath = def.NotesPath
	}
	if c.AudioDir == "" {
		c.AudioDir = def.AudioDir
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	return filepath.Join(defaultConfigDir(), "config.yaml")
}

// Load loads configuration from the given YAML path. If the file does not
// exist, a default config is written there (0600) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename, 0600).
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".voxnote-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}

func defaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "voxnote")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "voxnote"
	}
	return filepath.Join(home, ".config", "voxnote")
}

func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "voxnote")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "voxnote"
	}
	return filepath.Join(home, ".local", "share", "voxnote")
}
