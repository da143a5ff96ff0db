package notes

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxnote/analyze"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "voice_notes.json"))
}

func note(id, title string) VoiceNote {
	return VoiceNote{
		ID:        id,
		Title:     title,
		KeyPoints: []string{"point"},
		Actions:   []string{"action"},
		Tags:      []string{"General"},
		CreatedAt: time.Now(),
	}
}

func TestStoreEmptyFile(t *testing.T) {
	s := testStore(t)
	list, err := s.All()
	require.NoError(t, err)
	assert.Empty(t, list, "missing file reads as empty list")
}

func TestStoreAddNewestFirst(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Add(note("1", "first")))
	require.NoError(t, s.Add(note("2", "second")))

	list, err := s.All()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2", list[0].ID, "most recent note comes first")
	assert.Equal(t, "1", list[1].ID)
}

func TestStoreGetAndDelete(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Add(note("1", "keep")))
	require.NoError(t, s.Add(note("2", "drop")))

	got, err := s.Get("2")
	require.NoError(t, err)
	assert.Equal(t, "drop", got.Title)

	require.NoError(t, s.Delete("2"))
	_, err = s.Get("2")
	assert.Error(t, err)

	list, err := s.All()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "keep", list[0].Title)

	assert.Error(t, s.Delete("2"), "deleting a missing note errors")
}

func TestStoreSearch(t *testing.T) {
	s := testStore(t)
	n1 := note("1", "Budget planning")
	n1.Transcription = "quarterly numbers"
	n2 := note("2", "Groceries")
	n2.Tags = []string{"shopping"}
	require.NoError(t, s.Add(n1))
	require.NoError(t, s.Add(n2))

	for query, wantID := range map[string]string{
		"budget":    "1",
		"QUARTERLY": "1",
		"shopping":  "2",
	} {
		got, err := s.Search(query)
		require.NoError(t, err)
		require.Len(t, got, 1, "query %q", query)
		assert.Equal(t, wantID, got[0].ID)
	}

	all, err := s.Search("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := s.Search("nothing matches this")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStoreCalendarEventsPersist(t *testing.T) {
	s := testStore(t)
	n := note("1", "Meeting")
	n.CalendarEvents = []analyze.NoteEvent{{Title: "Budget review", EventID: "evt-1", Created: true}}
	require.NoError(t, s.Add(n))

	got, err := s.Get("1")
	require.NoError(t, err)
	require.Len(t, got.CalendarEvents, 1)
	assert.True(t, got.CalendarEvents[0].Created)
	assert.Equal(t, "evt-1", got.CalendarEvents[0].EventID)
}

func TestStoreNoTempFileLeftBehind(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Add(note("1", "x")))

	_, err := os.Stat(s.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must be renamed away")
}

func TestStoreCorruptFile(t *testing.T) {
	s := testStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))
	_, err := s.All()
	assert.Error(t, err, "corrupt store surfaces an error instead of wiping data")
}

func TestNewID(t *testing.T) {
	ts := time.UnixMilli(1733000000000)
	assert.Equal(t, "1733000000000", NewID(ts))
}
