package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxnote/calendar"
)

func testDispatcher(t *testing.T) (*Dispatcher, *calendar.FakeProvider) {
	t.Helper()
	fake := calendar.NewFakeProvider()
	return NewDispatcher(calendar.NewClient(fake), 7), fake
}

func TestSpecsShape(t *testing.T) {
	specs := Specs()
	require.Len(t, specs, 3)

	byName := map[string]Spec{}
	for _, s := range specs {
		assert.Equal(t, "function", s.Type)
		byName[s.Function.Name] = s
	}

	add := byName[ToolAddEvent]
	assert.ElementsMatch(t, []string{"title", "startDate", "endDate"}, add.Function.Parameters.Required)

	quick := byName[ToolQuickEvent]
	assert.ElementsMatch(t, []string{"title", "date", "time"}, quick.Function.Parameters.Required)
	assert.Contains(t, quick.Function.Parameters.Properties, "durationMinutes")

	up := byName[ToolUpcomingEvents]
	assert.Empty(t, up.Function.Parameters.Required)

	// The schemas must serialize cleanly for the chat API payload.
	data, err := json.Marshal(specs)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"object"`)
}

func TestExecuteAddEvent(t *testing.T) {
	d, fake := testDispatcher(t)

	res := d.Execute(ToolAddEvent, map[string]any{
		"title":              "Budget review",
		"startDate":          "2025-08-08T10:00:00.000Z",
		"endDate":            "2025-08-08T11:00:00.000Z",
		"alarmMinutesBefore": float64(30),
	})
	require.True(t, res.Success, res.Error)
	assert.NotEmpty(t, res.EventID)
	require.Len(t, fake.Created, 1)
	require.NotNil(t, fake.Created[0].Opts.AlarmMinutesBefore)
	assert.Equal(t, 30, *fake.Created[0].Opts.AlarmMinutesBefore)
}

func TestExecuteQuickEvent(t *testing.T) {
	d, fake := testDispatcher(t)

	res := d.Execute(ToolQuickEvent, map[string]any{
		"title": "Standup",
		"date":  "tomorrow",
		"time":  "10:00",
	})
	require.True(t, res.Success, res.Error)
	require.Len(t, fake.Created, 1)
	assert.Equal(t, "Standup", fake.Created[0].Opts.Title)
}

func TestExecuteUpcomingEventsDefaultHorizon(t *testing.T) {
	d, _ := testDispatcher(t)

	res := d.Execute(ToolUpcomingEvents, map[string]any{})
	assert.True(t, res.Success, res.Error)
	assert.Empty(t, res.Events)
}

func TestExecuteUnknownTool(t *testing.T) {
	d, _ := testDispatcher(t)

	res := d.Execute("delete_everything", nil)
	assert.False(t, res.Success)
	assert.Equal(t, "Unknown calendar tool: delete_everything", res.Error)
}

func TestExecuteAccessGate(t *testing.T) {
	fake := calendar.NewFakeProvider()
	fake.State = calendar.PermissionUndetermined
	fake.RequestState = calendar.PermissionDenied
	d := NewDispatcher(calendar.NewClient(fake), 7)

	res := d.Execute(ToolAddEvent, map[string]any{
		"title":     "x",
		"startDate": "2025-08-08T10:00:00Z",
		"endDate":   "2025-08-08T11:00:00Z",
	})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Calendar access required")
	assert.Empty(t, fake.Created)
}

func TestExecuteMissingParamsFailGracefully(t *testing.T) {
	d, fake := testDispatcher(t)

	res := d.Execute(ToolAddEvent, map[string]any{"title": "x"})
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.Empty(t, fake.Created)
}

func TestExecuteEnsureAccess(t *testing.T) {
	d, _ := testDispatcher(t)

	res := d.Execute(ToolEnsureAccess, nil)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.CalendarsCount)
}
