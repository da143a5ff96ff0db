package calendar

import (
	"fmt"
	"time"
)

// FakeProvider is a scriptable in-memory Provider for tests.
type FakeProvider struct {
	State        PermissionState // returned by CheckPermissions
	RequestState PermissionState // state after RequestPermissions

	CheckErr     error
	RequestErr   error
	CalendarsErr error
	CreateErr    error
	// CreateErrByTitle fails creation for specific event titles, which lets
	// tests break one candidate out of a batch.
	CreateErrByTitle map[string]error

	Cals    []Calendar
	Created []CreatedCall
	Events  []Event

	Requested bool
	nextID    int
}

type CreatedCall struct {
	CalendarID string
	Opts       CreateEventOptions
}

// NewFakeProvider returns a provider with permission granted and a single
// modifiable default calendar.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		State:        PermissionGranted,
		RequestState: PermissionGranted,
		Cals: []Calendar{{
			ID:                  "fake-cal",
			Title:               "Fake",
			SourceName:          "Default",
			IsPrimary:           true,
			AllowsModifications: true,
		}},
	}
}

func (f *FakeProvider) CheckPermissions() (PermissionState, error) {
	if f.CheckErr != nil {
		return PermissionUnknown, f.CheckErr
	}
	return f.State, nil
}

func (f *FakeProvider) RequestPermissions() (PermissionState, error) {
	f.Requested = true
	if f.RequestErr != nil {
		return PermissionUnknown, f.RequestErr
	}
	f.State = f.RequestState
	return f.RequestState, nil
}

func (f *FakeProvider) Calendars() ([]Calendar, error) {
	if f.CalendarsErr != nil {
		return nil, f.CalendarsErr
	}
	return f.Cals, nil
}

func (f *FakeProvider) CreateEvent(calendarID string, opts CreateEventOptions) (string, error) {
	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	if err, ok := f.CreateErrByTitle[opts.Title]; ok {
		return "", err
	}
	f.nextID++
	id := fmt.Sprintf("evt-%d", f.nextID)
	f.Created = append(f.Created, CreatedCall{CalendarID: calendarID, Opts: opts})
	f.Events = append(f.Events, Event{
		ID:        id,
		Title:     opts.Title,
		StartDate: opts.StartDate,
		EndDate:   opts.EndDate,
		Location:  opts.Location,
		Notes:     opts.Notes,
	})
	return id, nil
}

func (f *FakeProvider) UpdateEvent(eventID string, patch EventPatch) error {
	for i := range f.Events {
		if f.Events[i].ID != eventID {
			continue
		}
		if patch.Title != nil {
			f.Events[i].Title = *patch.Title
		}
		if patch.StartDate != nil {
			f.Events[i].StartDate = *patch.StartDate
		}
		if patch.EndDate != nil {
			f.Events[i].EndDate = *patch.EndDate
		}
		if patch.Location != nil {
			f.Events[i].Location = *patch.Location
		}
		if patch.Notes != nil {
			f.Events[i].Notes = *patch.Notes
		}
		return nil
	}
	return fmt.Errorf("event %q not found", eventID)
}

func (f *FakeProvider) DeleteEvent(eventID string) error {
	for i := range f.Events {
		if f.Events[i].ID == eventID {
			f.Events = append(f.Events[:i], f.Events[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("event %q not found", eventID)
}

func (f *FakeProvider) EventsBetween(_ []string, start, end time.Time) ([]Event, error) {
	var out []Event
	for _, ev := range f.Events {
		if ev.EndDate.Before(start) || ev.StartDate.After(end) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}
