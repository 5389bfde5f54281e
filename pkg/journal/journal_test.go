package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal(t *testing.T) {
	j, err := Open(t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	entries := []*Entry{
		{ButtonID: "run", ButtonName: "!RUN", Event: "activated", EditedAt: base, RecordedAt: base},
		{ButtonID: "run", ButtonName: "!RUN", Event: "deactivated", EditedAt: base.Add(time.Minute), RecordedAt: base.Add(time.Second)},
		{ButtonID: "clear", ButtonName: "!CLEAR", Event: "activated", EditedAt: base, RecordedAt: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		require.NoError(t, j.Record(e))
		assert.NotEmpty(t, e.ID)
	}

	all, err := j.List(Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "clear", all[0].ButtonID, "newest first")
	assert.Equal(t, "activated", all[2].Event)
	assert.True(t, base.Equal(all[2].EditedAt))

	byName, err := j.List(Filter{Button: "!RUN"})
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	byID, err := j.List(Filter{Button: "run", Event: "deactivated"})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, entries[1].ID, byID[0].ID)

	limited, err := j.List(Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestJournalPersists(t *testing.T) {
	dir := t.TempDir()
	j, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, j.Record(&Entry{ButtonID: "run", ButtonName: "!RUN", Event: "activated"}))
	require.NoError(t, j.Close())

	again, err := Open(dir)
	require.NoError(t, err)
	defer again.Close()
	got, err := again.List(Filter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].RecordedAt.IsZero())
}

func TestRecordValidates(t *testing.T) {
	j, err := Open(t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	assert.Error(t, j.Record(&Entry{Event: "activated"}))
	assert.Error(t, j.Record(&Entry{ButtonID: "run"}))
}
