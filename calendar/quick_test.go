package calendar

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuickEventDurationExact(t *testing.T) {
	for _, date := range []string{"today", "tomorrow", "Today", "TOMORROW"} {
		for _, tc := range []struct {
			time     string
			duration int
		}{
			{"10:00", 0}, // default 60
			{"9:05", 30},
			{"23:59", 90},
		} {
			t.Run(fmt.Sprintf("%s_%s", date, tc.time), func(t *testing.T) {
				c, fake := grantedClient(t)
				res := c.QuickEvent(QuickEventParams{
					Title:           "Standup",
					Date:            date,
					Time:            tc.time,
					DurationMinutes: tc.duration,
				})
				require.True(t, res.Success, res.Error)
				require.Len(t, fake.Created, 1)

				want := tc.duration
				if want == 0 {
					want = 60
				}
				opts := fake.Created[0].Opts
				assert.Equal(t, time.Duration(want)*time.Minute, opts.EndDate.Sub(opts.StartDate))
			})
		}
	}
}

func TestQuickEventDateResolution(t *testing.T) {
	now := time.Date(2025, 8, 8, 18, 30, 0, 0, time.Local)

	c, fake := grantedClient(t)
	res := c.quickEventAt(QuickEventParams{Title: "x", Date: "tomorrow", Time: "10:00"}, now)
	require.True(t, res.Success, res.Error)

	start := fake.Created[0].Opts.StartDate.In(time.Local)
	assert.Equal(t, 2025, start.Year())
	assert.Equal(t, time.August, start.Month())
	assert.Equal(t, 9, start.Day())
	assert.Equal(t, 10, start.Hour())
	assert.Equal(t, 0, start.Minute())
}

func TestQuickEventExplicitDate(t *testing.T) {
	c, fake := grantedClient(t)
	res := c.QuickEvent(QuickEventParams{Title: "x", Date: "2025-12-24", Time: "14:30"})
	require.True(t, res.Success, res.Error)

	start := fake.Created[0].Opts.StartDate.In(time.Local)
	assert.Equal(t, 24, start.Day())
	assert.Equal(t, 14, start.Hour())
	assert.Equal(t, 30, start.Minute())
}

func TestQuickEventInvalidDate(t *testing.T) {
	c, fake := grantedClient(t)
	res := c.QuickEvent(QuickEventParams{Title: "x", Date: "next blursday", Time: "10:00"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Invalid date")
	assert.Empty(t, fake.Created)
}

func TestQuickEventInvalidTimeRejected(t *testing.T) {
	for _, bad := range []string{"", "10", "10:0", "10:000", "1000", "10.30", "ten:30", "24:00", "10:60", "-1:30"} {
		t.Run(bad, func(t *testing.T) {
			c, fake := grantedClient(t)
			res := c.QuickEvent(QuickEventParams{Title: "x", Date: "today", Time: bad})
			assert.False(t, res.Success)
			assert.Contains(t, res.Error, "Invalid time")
			assert.Empty(t, fake.Created, "no calendar write on invalid time")
		})
	}
}

func TestQuickEventValidTimeEdges(t *testing.T) {
	for _, good := range []string{"0:00", "00:00", "23:59", "9:05"} {
		t.Run(good, func(t *testing.T) {
			c, _ := grantedClient(t)
			res := c.QuickEvent(QuickEventParams{Title: "x", Date: "today", Time: good})
			assert.True(t, res.Success, res.Error)
		})
	}
}
