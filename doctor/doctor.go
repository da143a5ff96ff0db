// Package doctor runs interactive end-to-end diagnostics: configuration,
// API keys, storage, calendar and the microphone-to-transcript path.
package doctor

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"voxnote/audio"
	"voxnote/calendar"
	"voxnote/config"
	"voxnote/encoder"
	"voxnote/notes"
	"voxnote/transcriber"
)

// Run executes the diagnostic checks and returns an exit code (0=all pass,
// 1=any fail).
func Run(configPath string) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("voxnote doctor - interactive system diagnostics")
	fmt.Println("===============================================")

	allPass := true

	cfg := checkConfig(configPath)
	if cfg == nil {
		allPass = false
		cfg = config.DefaultConfig()
	}
	if !checkAPIKey() {
		allPass = false
	}
	if !checkNotesStore(cfg) {
		allPass = false
	}
	if !checkCalendarStore(cfg) {
		allPass = false
	}
	if allPass && !checkMicAndTranscription(cfg) {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkConfig(configPath string) *config.Config {
	fmt.Println()
	fmt.Println("[1/5] Configuration")

	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return nil
	}
	fmt.Printf("  PASS: config loaded (format=%s, language=%s)\n", cfg.Format, cfg.Language)
	return cfg
}

func checkAPIKey() bool {
	fmt.Println()
	fmt.Println("[2/5] API key")

	if os.Getenv("GROQ_API_KEY") != "" {
		fmt.Println("  PASS: GROQ_API_KEY is set")
		return true
	}
	if os.Getenv("OPENAI_API_KEY") != "" {
		fmt.Println("  PASS: OPENAI_API_KEY is set")
		return true
	}
	fmt.Println("  FAIL: set GROQ_API_KEY or OPENAI_API_KEY")
	return false
}

func checkNotesStore(cfg *config.Config) bool {
	fmt.Println()
	fmt.Println("[3/5] Notes storage")

	store := notes.NewStore(cfg.NotesPath)
	if _, err := store.All(); err != nil {
		fmt.Printf("  FAIL: cannot read notes file: %v\n", err)
		return false
	}

	// Probe writability next to the real file without touching it.
	probe := filepath.Join(filepath.Dir(cfg.NotesPath), ".doctor-probe")
	if err := os.MkdirAll(filepath.Dir(cfg.NotesPath), 0o755); err != nil {
		fmt.Printf("  FAIL: cannot create notes dir: %v\n", err)
		return false
	}
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		fmt.Printf("  FAIL: notes dir not writable: %v\n", err)
		return false
	}
	os.Remove(probe)

	fmt.Printf("  PASS: %s readable and writable\n", cfg.NotesPath)
	return true
}

func checkCalendarStore(cfg *config.Config) bool {
	fmt.Println()
	fmt.Println("[4/5] Calendar store")

	// Round-trip against a scratch store so the real calendar stays clean.
	scratch := filepath.Join(os.TempDir(), fmt.Sprintf("voxnote-doctor-%d.ics", time.Now().UnixNano()))
	defer os.Remove(scratch)
	defer os.Remove(scratch + ".access")

	provider := calendar.NewFileProvider(scratch, calendar.WithPrompt(func() bool { return true }))
	client := calendar.NewClient(provider)
	if res := client.EnsureAccess(); !res.Success {
		fmt.Printf("  FAIL: calendar access: %s\n", res.Error)
		return false
	}

	start := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	end := time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339)
	res := client.AddEventToCalendar(calendar.AddEventParams{
		Title:     "doctor check",
		StartDate: start,
		EndDate:   end,
	})
	if !res.Success {
		fmt.Printf("  FAIL: event creation: %s\n", res.Error)
		return false
	}

	upcoming := client.UpcomingEventsForModel(1)
	if !upcoming.Success || len(upcoming.Events) == 0 {
		fmt.Println("  FAIL: created event not found on readback")
		return false
	}

	fmt.Printf("  PASS: event round-trip OK (real store: %s)\n", cfg.CalendarPath)
	return true
}

func checkMicAndTranscription(cfg *config.Config) bool {
	fmt.Println()
	fmt.Println("[5/5] Microphone and transcription")

	reader := bufio.NewReader(os.Stdin)

	sys, err := audio.Open()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer sys.Close()

	device, err := audio.SelectDevice(sys)
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("Using device: %s\n", device.Name)

	trans, err := transcriber.New(cfg.TranscribeModel)
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	trans.SetLanguage(cfg.Language)

	fmt.Println()
	fmt.Print("Press Enter and speak for 3 seconds...")
	reader.ReadString('\n')

	stop := make(chan struct{})
	go func() {
		time.Sleep(3 * time.Second)
		close(stop)
	}()

	pcm, err := recordAudio(sys, device, stop)
	if err != nil {
		fmt.Printf("  FAIL: recording error: %v\n", err)
		return false
	}
	if len(pcm) == 0 {
		fmt.Println("  FAIL: no audio captured")
		return false
	}
	fmt.Printf("  Recorded %.1f KB, transcribing...\n", float64(len(pcm))/1024)

	audioPath, err := encodeToTemp(pcm, cfg.Format)
	if err != nil {
		fmt.Printf("  FAIL: encoding error: %v\n", err)
		return false
	}
	defer os.Remove(audioPath)

	result, err := trans.Transcribe(context.Background(), audioPath)
	if err != nil {
		fmt.Printf("  FAIL: transcription error: %v\n", err)
		return false
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		text = "(no speech detected)"
	}
	fmt.Printf("\n  Transcribed text: %s\n\n", text)

	// Fresh reader to clear any buffered input.
	confirmReader := bufio.NewReader(os.Stdin)
	fmt.Print("Is this correct? [y/n]: ")
	confirm, _ := confirmReader.ReadString('\n')
	confirm = strings.TrimSpace(strings.ToLower(confirm))

	if confirm == "y" || confirm == "yes" {
		fmt.Println("  PASS: transcription verified by user")
		return true
	}
	fmt.Println("  FAIL: transcription not confirmed")
	return false
}

func encodeToTemp(pcm []byte, format string) (string, error) {
	enc, ext, err := encoder.New(format)
	if err != nil {
		return "", err
	}

	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(uint16(pcm[i*2]) | uint16(pcm[i*2+1])<<8)
	}
	for i := 0; i < len(samples); i += encoder.BlockSize {
		end := min(i+encoder.BlockSize, len(samples))
		if err := enc.EncodeBlock(samples[i:end]); err != nil {
			return "", err
		}
	}
	if err := enc.Close(); err != nil {
		return "", err
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("voxnote-doctor-%d.%s", time.Now().UnixNano(), ext))
	if err := os.WriteFile(path, enc.Bytes(), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

func recordAudio(sys audio.System, device *audio.Device, stop <-chan struct{}) ([]byte, error) {
	var pcmBuf []byte
	var bufMu sync.Mutex
	var stopped bool
	done := make(chan struct{})

	stream, err := sys.OpenStream(device, audio.StreamConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		return nil, err
	}

	stream.SetCallback(func(pcm []byte, frames uint32) {
		bufMu.Lock()
		if stopped {
			bufMu.Unlock()
			return
		}
		pcmBuf = append(pcmBuf, pcm...)
		bufMu.Unlock()
	})

	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, err
	}

	fmt.Print("  Recording")
	ticker := time.NewTicker(500 * time.Millisecond)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	<-stop
	close(done)

	stream.Stop()
	fmt.Println(" done")
	stream.Close()

	bufMu.Lock()
	stopped = true
	raw := pcmBuf
	bufMu.Unlock()

	return raw, nil
}
