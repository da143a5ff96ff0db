package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grantedClient(t *testing.T) (*Client, *FakeProvider) {
	t.Helper()
	fake := NewFakeProvider()
	c := NewClient(fake)
	res := c.EnsureAccess()
	require.True(t, res.Success, "EnsureAccess: %s", res.Error)
	return c, fake
}

func TestDefaultCalendarPriority(t *testing.T) {
	fake := NewFakeProvider()
	fake.Cals = []Calendar{
		{ID: "a", AllowsModifications: true},
		{ID: "b", IsPrimary: true},
		{ID: "c", SourceName: "Default"},
	}
	c := NewClient(fake)
	_, err := c.LoadCalendars()
	require.NoError(t, err)

	assert.Equal(t, "c", c.DefaultCalendar().ID, "source named Default wins")

	fake.Cals = fake.Cals[:2]
	_, err = c.LoadCalendars()
	require.NoError(t, err)
	assert.Equal(t, "b", c.DefaultCalendar().ID, "primary wins next")

	fake.Cals = fake.Cals[:1]
	_, err = c.LoadCalendars()
	require.NoError(t, err)
	assert.Equal(t, "a", c.DefaultCalendar().ID, "modifiable wins next")

	fake.Cals = []Calendar{{ID: "x"}, {ID: "y"}}
	_, err = c.LoadCalendars()
	require.NoError(t, err)
	assert.Equal(t, "x", c.DefaultCalendar().ID, "first calendar is the fallback")
}

func TestDefaultCalendarEmptyCache(t *testing.T) {
	c := NewClient(NewFakeProvider())
	assert.Nil(t, c.DefaultCalendar())
}

func TestCreateEventRequiresPermission(t *testing.T) {
	fake := NewFakeProvider()
	fake.State = PermissionDenied
	c := NewClient(fake)
	_, err := c.CheckPermissions()
	require.NoError(t, err)

	_, err = c.CreateEvent(CreateEventOptions{Title: "x"}, "")
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Empty(t, fake.Created)
}

func TestCreateEventNoCalendar(t *testing.T) {
	fake := NewFakeProvider()
	fake.Cals = nil
	c := NewClient(fake)
	_, err := c.CheckPermissions()
	require.NoError(t, err)

	_, err = c.CreateEvent(CreateEventOptions{Title: "x"}, "")
	assert.ErrorIs(t, err, ErrNoCalendar)
}

func TestAddEventToCalendarSuccess(t *testing.T) {
	c, fake := grantedClient(t)

	res := c.AddEventToCalendar(AddEventParams{
		Title:     "Budget review",
		StartDate: "2025-08-08T10:00:00.000Z",
		EndDate:   "2025-08-08T11:00:00.000Z",
		Location:  "Room 1",
	})
	require.True(t, res.Success, res.Error)
	assert.NotEmpty(t, res.EventID)
	require.Len(t, fake.Created, 1)
	assert.Equal(t, "Budget review", fake.Created[0].Opts.Title)
	require.NotNil(t, fake.Created[0].Opts.AlarmMinutesBefore)
	assert.Equal(t, 15, *fake.Created[0].Opts.AlarmMinutesBefore, "default alarm is 15 minutes")
}

func TestAddEventToCalendarInvalidDates(t *testing.T) {
	c, fake := grantedClient(t)

	res := c.AddEventToCalendar(AddEventParams{
		Title:     "x",
		StartDate: "not a date",
		EndDate:   "2025-08-08T11:00:00Z",
	})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Invalid date format")
	assert.Empty(t, fake.Created, "no platform call on invalid input")
}

func TestAddEventToCalendarStartAfterEnd(t *testing.T) {
	for _, tc := range []struct{ name, start, end string }{
		{"after", "2025-08-08T12:00:00Z", "2025-08-08T11:00:00Z"},
		{"equal", "2025-08-08T11:00:00Z", "2025-08-08T11:00:00Z"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, fake := grantedClient(t)
			res := c.AddEventToCalendar(AddEventParams{Title: "x", StartDate: tc.start, EndDate: tc.end})
			assert.False(t, res.Success)
			assert.Contains(t, res.Error, "before end date")
			assert.Empty(t, fake.Created)
		})
	}
}

func TestAddEventToCalendarRequestsPermissionOnce(t *testing.T) {
	fake := NewFakeProvider()
	fake.State = PermissionUndetermined
	fake.RequestState = PermissionGranted
	c := NewClient(fake)

	res := c.AddEventToCalendar(AddEventParams{
		Title:     "x",
		StartDate: "2025-08-08T10:00:00Z",
		EndDate:   "2025-08-08T11:00:00Z",
	})
	assert.True(t, res.Success, res.Error)
	assert.True(t, fake.Requested)
}

func TestAddEventToCalendarPermissionDeniedNeverThrows(t *testing.T) {
	fake := NewFakeProvider()
	fake.State = PermissionUndetermined
	fake.RequestState = PermissionDenied
	c := NewClient(fake)

	res := c.AddEventToCalendar(AddEventParams{
		Title:     "x",
		StartDate: "2025-08-08T10:00:00Z",
		EndDate:   "2025-08-08T11:00:00Z",
	})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "permission not granted")
	assert.Empty(t, fake.Created)
}

func TestAddEventToCalendarPlatformErrorCaptured(t *testing.T) {
	c, fake := grantedClient(t)
	fake.CreateErr = errors.New("store unavailable")

	res := c.AddEventToCalendar(AddEventParams{
		Title:     "x",
		StartDate: "2025-08-08T10:00:00Z",
		EndDate:   "2025-08-08T11:00:00Z",
	})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "store unavailable")
}

func TestUpdateEventPartialFields(t *testing.T) {
	c, fake := grantedClient(t)
	res := c.AddEventToCalendar(AddEventParams{
		Title:     "Original",
		StartDate: "2025-08-08T10:00:00Z",
		EndDate:   "2025-08-08T11:00:00Z",
		Location:  "Room 1",
	})
	require.True(t, res.Success)

	newTitle := "Renamed"
	require.NoError(t, c.UpdateEvent(res.EventID, EventPatch{Title: &newTitle}))

	require.Len(t, fake.Events, 1)
	assert.Equal(t, "Renamed", fake.Events[0].Title)
	assert.Equal(t, "Room 1", fake.Events[0].Location, "absent fields stay untouched")
}

func TestUpcomingEventsForModel(t *testing.T) {
	c, fake := grantedClient(t)
	now := time.Now()
	fake.Events = []Event{
		{ID: "1", Title: "soon", StartDate: now.Add(24 * time.Hour), EndDate: now.Add(25 * time.Hour)},
		{ID: "2", Title: "far", StartDate: now.AddDate(0, 0, 30), EndDate: now.AddDate(0, 0, 30).Add(time.Hour)},
	}

	res := c.UpcomingEventsForModel(7)
	require.True(t, res.Success, res.Error)
	require.Len(t, res.Events, 1)
	assert.Equal(t, "soon", res.Events[0].Title)
	_, err := time.Parse(time.RFC3339, res.Events[0].StartDate)
	assert.NoError(t, err, "dates are ISO strings")
}

func TestUpcomingEventsPermissionDenied(t *testing.T) {
	fake := NewFakeProvider()
	fake.State = PermissionDenied
	c := NewClient(fake)

	res := c.UpcomingEventsForModel(7)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "permission not granted")
}

func TestEnsureAccess(t *testing.T) {
	t.Run("already granted", func(t *testing.T) {
		fake := NewFakeProvider()
		c := NewClient(fake)
		res := c.EnsureAccess()
		assert.True(t, res.Success)
		assert.Equal(t, 1, res.CalendarsCount)
		assert.False(t, fake.Requested)
	})

	t.Run("granted after prompt", func(t *testing.T) {
		fake := NewFakeProvider()
		fake.State = PermissionUndetermined
		c := NewClient(fake)
		res := c.EnsureAccess()
		assert.True(t, res.Success)
		assert.True(t, fake.Requested)
	})

	t.Run("denied by user", func(t *testing.T) {
		fake := NewFakeProvider()
		fake.State = PermissionUndetermined
		fake.RequestState = PermissionDenied
		c := NewClient(fake)
		res := c.EnsureAccess()
		assert.False(t, res.Success)
		assert.Equal(t, "Calendar permission denied by user", res.Error)
	})

	t.Run("platform error", func(t *testing.T) {
		fake := NewFakeProvider()
		fake.CheckErr = errors.New("boom")
		c := NewClient(fake)
		res := c.EnsureAccess()
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "boom")
	})
}
