package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"voxnote/analyze"
	"voxnote/calendar"
	"voxnote/config"
	"voxnote/doctor"
	"voxnote/log"
	"voxnote/notes"
	"voxnote/tools"
	"voxnote/transcriber"
)

var version = "dev"

func main() {
	run()
}

func run() {
	fileFlag := flag.String("file", "", "Process an existing audio file instead of recording")
	listFlag := flag.Bool("list", false, "List saved notes and exit")
	searchFlag := flag.String("search", "", "Filter -list output by title, transcript or tag")
	showFlag := flag.String("show", "", "Print one note by id and exit")
	deleteFlag := flag.String("delete", "", "Delete a note by id and exit")
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	formatFlag := flag.String("format", "", "Audio format: wav or flac (default from config)")
	langFlag := flag.String("lang", "", "Language code for transcription (e.g., en, es, fr)")
	configFlag := flag.String("config", "", "Config file path (default: OS-specific location)")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("voxnote %s\n", version)
		os.Exit(0)
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	configPath := *configFlag
	if configPath == "" {
		configPath = config.DefaultPath()
	}

	if *doctorFlag {
		os.Exit(doctor.Run(configPath))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *langFlag != "" {
		cfg.Language = *langFlag
	}
	if *formatFlag != "" {
		cfg.Format = *formatFlag
	}
	cfg.Normalize()

	store := notes.NewStore(cfg.NotesPath)

	switch {
	case *listFlag:
		os.Exit(listNotes(store, *searchFlag))
	case *showFlag != "":
		os.Exit(showNote(store, *showFlag))
	case *deleteFlag != "":
		os.Exit(deleteNote(store, *deleteFlag))
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	trans, err := transcriber.New(cfg.TranscribeModel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	trans.SetLanguage(cfg.Language)
	log.SessionStart(trans.Name(), cfg.SummaryModel, cfg.Format)

	// Open the TLS connection while the user is still talking.
	go trans.Warm()

	provider := calendar.NewFileProvider(cfg.CalendarPath)
	client := calendar.NewClient(provider)
	client.SetDefaults(cfg.QuickEvent.AlarmMinutesBefore, cfg.QuickEvent.DurationMinutes)
	dispatcher := tools.NewDispatcher(client, cfg.HorizonDays)

	extractChat, summaryChat := newChatClients(cfg)
	proc := &Processor{
		Store:       store,
		Transcriber: trans,
		Extractor:   analyze.NewExtractor(extractChat, dispatcher, cfg.QuickEvent),
		Summarizer:  analyze.NewSummarizer(summaryChat),
		Format:      cfg.Format,
	}

	audioPath := *fileFlag
	durationS := 0
	if audioPath == "" {
		audioPath, durationS, err = recordToFile(cfg, *deviceFlag, *setupFlag)
		if err != nil {
			log.Errorf("recording error: %v", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		// An empty path means the capture was a key tap; a short memo may
		// legitimately truncate to zero whole seconds and is still kept.
		if audioPath == "" {
			fmt.Println("Nothing recorded.")
			return
		}
		fmt.Printf("Saved audio: %s\n", audioPath)
	}

	note, err := proc.Process(context.Background(), audioPath, durationS)
	if err != nil {
		// The audio file is already on disk; only the analysis is lost.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "The recording is kept at %s\n", audioPath)
		os.Exit(1)
	}

	printNote(note)
	log.SessionEnd(1)
}

// newChatClients builds the chat clients for extraction and summary. The
// same provider serves both; only the model differs.
func newChatClients(cfg *config.Config) (analyze.ChatCompleter, analyze.ChatCompleter) {
	key := os.Getenv("GROQ_API_KEY")
	base := ""
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
		base = "https://api.openai.com/v1"
	}
	if cfg.ChatBaseURL != "" {
		base = cfg.ChatBaseURL
	}
	extract := analyze.NewGroqChat(key, cfg.ExtractModel, cfg.Temperature)
	summary := analyze.NewGroqChat(key, cfg.SummaryModel, cfg.Temperature)
	if base != "" {
		extract.BaseURL = base
		summary.BaseURL = base
	}
	return extract, summary
}

func listNotes(store *notes.Store, query string) int {
	list, err := store.Search(query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(list) == 0 {
		fmt.Println("No notes.")
		return 0
	}
	for _, n := range list {
		events := ""
		if len(n.CalendarEvents) > 0 {
			events = fmt.Sprintf("  [%d event(s)]", len(n.CalendarEvents))
		}
		fmt.Printf("%s  %s  %s%s\n", n.ID, n.CreatedAt.Format("2006-01-02 15:04"), n.Title, events)
	}
	return 0
}

func showNote(store *notes.Store, id string) int {
	n, err := store.Get(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	printNote(n)
	return 0
}

func deleteNote(store *notes.Store, id string) int {
	if err := store.Delete(id); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("Deleted note %s\n", id)
	return 0
}

func printNote(n *notes.VoiceNote) {
	fmt.Printf("\n%s\n", n.Title)
	fmt.Printf("%s · %ds · %s\n\n", n.CreatedAt.Format("2006-01-02 15:04"), n.DurationSeconds, n.AudioPath)

	fmt.Println("Transcription:")
	fmt.Printf("  %s\n\n", n.Transcription)

	fmt.Println("Key points:")
	for _, p := range n.KeyPoints {
		fmt.Printf("  - %s\n", p)
	}
	fmt.Println("Actions:")
	for _, a := range n.Actions {
		fmt.Printf("  - %s\n", a)
	}
	fmt.Printf("Tags: %v\n", n.Tags)

	if len(n.CalendarEvents) > 0 {
		fmt.Println("Calendar events:")
		for _, ev := range n.CalendarEvents {
			fmt.Printf("  - %s (%s)\n", ev.Title, ev.EventID)
		}
	}
}
