package calendar

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"voxnote/log"
)

const localCalendarID = "voxnote-local"

// FileProvider is a calendar platform backed by a single ICS file on disk.
// Consent is modeled explicitly: the user is prompted once, and the answer
// is persisted in a sidecar file next to the store, so the permission
// lifecycle matches a device calendar (undetermined -> prompt -> granted or
// denied).
type FileProvider struct {
	path   string
	prompt func() bool

	mu    sync.Mutex
	state PermissionState
}

// FileProviderOption configures a FileProvider.
type FileProviderOption func(*FileProvider)

// WithPrompt replaces the interactive consent prompt.
func WithPrompt(prompt func() bool) FileProviderOption {
	return func(p *FileProvider) { p.prompt = prompt }
}

// NewFileProvider opens (or prepares to create) the ICS store at path and
// restores any previously persisted consent decision.
func NewFileProvider(path string, opts ...FileProviderOption) *FileProvider {
	p := &FileProvider{
		path:   path,
		prompt: stdinPrompt,
		state:  PermissionUndetermined,
	}
	for _, opt := range opts {
		opt(p)
	}
	switch readAccessFile(accessPath(path)) {
	case "granted":
		p.state = PermissionGranted
	case "denied":
		p.state = PermissionDenied
	}
	return p
}

func (p *FileProvider) CheckPermissions() (PermissionState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state, nil
}

func (p *FileProvider) RequestPermissions() (PermissionState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == PermissionGranted || p.state == PermissionDenied {
		return p.state, nil
	}
	if p.prompt() {
		p.state = PermissionGranted
	} else {
		p.state = PermissionDenied
	}
	if err := writeAccessFile(accessPath(p.path), string(p.state)); err != nil {
		log.Warnf("could not persist calendar consent: %v", err)
	}
	return p.state, nil
}

func (p *FileProvider) Calendars() ([]Calendar, error) {
	return []Calendar{{
		ID:                  localCalendarID,
		Title:               "Voice Memos",
		SourceName:          "Default",
		IsPrimary:           true,
		AllowsModifications: true,
	}}, nil
}

func (p *FileProvider) CreateEvent(calendarID string, opts CreateEventOptions) (string, error) {
	if calendarID != localCalendarID {
		return "", fmt.Errorf("unknown calendar %q", calendarID)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	cal, err := p.load()
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	ev := cal.AddEvent(id)
	ev.SetDtStampTime(time.Now())
	ev.SetCreatedTime(time.Now())
	applyEventFields(ev, opts)

	if err := p.save(cal); err != nil {
		return "", err
	}
	return id, nil
}

func (p *FileProvider) UpdateEvent(eventID string, patch EventPatch) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cal, err := p.load()
	if err != nil {
		return err
	}

	ev := findEvent(cal, eventID)
	if ev == nil {
		return fmt.Errorf("event %q not found", eventID)
	}

	if patch.Title != nil {
		ev.SetSummary(*patch.Title)
	}
	if patch.StartDate != nil {
		ev.SetStartAt(*patch.StartDate)
	}
	if patch.EndDate != nil {
		ev.SetEndAt(*patch.EndDate)
	}
	if patch.Location != nil {
		ev.SetLocation(*patch.Location)
	}
	if patch.Notes != nil {
		ev.SetDescription(*patch.Notes)
	}
	if patch.AlarmMinutesBefore != nil {
		setAlarm(ev, *patch.AlarmMinutesBefore)
	}

	return p.save(cal)
}

func (p *FileProvider) DeleteEvent(eventID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cal, err := p.load()
	if err != nil {
		return err
	}

	kept := cal.Components[:0]
	removed := false
	for _, comp := range cal.Components {
		if ve, ok := comp.(*ical.VEvent); ok && eventUID(ve) == eventID {
			removed = true
			continue
		}
		kept = append(kept, comp)
	}
	if !removed {
		return fmt.Errorf("event %q not found", eventID)
	}
	cal.Components = kept

	return p.save(cal)
}

func (p *FileProvider) EventsBetween(calendarIDs []string, start, end time.Time) ([]Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cal, err := p.load()
	if err != nil {
		return nil, err
	}

	var events []Event
	for _, ve := range cal.Events() {
		ev, perr := parseEvent(ve)
		if perr != nil {
			// Skip the malformed entry, keep the rest readable.
			log.Warnf("skipping unreadable calendar entry: %v", perr)
			continue
		}
		if ev.EndDate.Before(start) || ev.StartDate.After(end) {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// Path returns the location of the backing ICS file.
func (p *FileProvider) Path() string { return p.path }

func (p *FileProvider) load() (*ical.Calendar, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cal := ical.NewCalendar()
			cal.SetMethod(ical.MethodPublish)
			cal.SetProductId("-//voxnote//EN")
			return cal, nil
		}
		return nil, fmt.Errorf("reading calendar store: %w", err)
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing calendar store: %w", err)
	}
	return cal, nil
}

// save writes atomically: temp file in the same directory, then rename.
func (p *FileProvider) save(cal *ical.Calendar) error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".voxnote-cal-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(cal.Serialize()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, p.path)
}

func applyEventFields(ev *ical.VEvent, opts CreateEventOptions) {
	ev.SetSummary(opts.Title)
	ev.SetStartAt(opts.StartDate)
	ev.SetEndAt(opts.EndDate)
	if opts.Location != "" {
		ev.SetLocation(opts.Location)
	}
	if opts.Notes != "" {
		ev.SetDescription(opts.Notes)
	}
	if opts.AlarmMinutesBefore != nil {
		setAlarm(ev, *opts.AlarmMinutesBefore)
	}
}

func setAlarm(ev *ical.VEvent, minutesBefore int) {
	alarm := ev.AddAlarm()
	alarm.SetAction(ical.ActionDisplay)
	alarm.SetTrigger(fmt.Sprintf("-PT%dM", minutesBefore))
}

func findEvent(cal *ical.Calendar, eventID string) *ical.VEvent {
	for _, ve := range cal.Events() {
		if eventUID(ve) == eventID {
			return ve
		}
	}
	return nil
}

func eventUID(ve *ical.VEvent) string {
	if prop := ve.GetProperty(ical.ComponentPropertyUniqueId); prop != nil {
		return prop.Value
	}
	return ""
}

func parseEvent(ve *ical.VEvent) (Event, error) {
	var out Event
	out.ID = eventUID(ve)
	if out.ID == "" {
		return out, fmt.Errorf("missing UID")
	}
	if prop := ve.GetProperty(ical.ComponentPropertySummary); prop != nil {
		out.Title = prop.Value
	}
	if prop := ve.GetProperty(ical.ComponentPropertyLocation); prop != nil {
		out.Location = prop.Value
	}
	if prop := ve.GetProperty(ical.ComponentPropertyDescription); prop != nil {
		out.Notes = prop.Value
	}
	start, err := ve.GetStartAt()
	if err != nil {
		return out, fmt.Errorf("event %s: %w", out.ID, err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return out, fmt.Errorf("event %s: %w", out.ID, err)
	}
	out.StartDate = start
	out.EndDate = end
	return out, nil
}

func accessPath(storePath string) string {
	return storePath + ".access"
}

func readAccessFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func writeAccessFile(path, state string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(state+"\n"), 0o600)
}

func stdinPrompt() bool {
	fmt.Print("Allow voxnote to access your calendar? [y/N] ")
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

