package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oinstituto/atlas/core/entry"
)

func ids(entries []entry.Entry) []string {
	res := make([]string, 0, len(entries))
	for _, e := range entries {
		res = append(res, e.ID)
	}
	return res
}

func TestBoard(t *testing.T) {
	b := NewBoard()
	b.Load([]entry.Entry{{ID: "1"}, {ID: "2"}, {ID: "1"}})
	assert.Equal(t, []string{"1", "2"}, ids(b.Snapshot()))

	tests := []struct {
		name    string
		change  entry.Change
		changed bool
		want    []string
	}{
		{"insert", entry.Change{Op: entry.OpInsert, Entry: entry.Entry{ID: "3"}}, true, []string{"1", "2", "3"}},
		{"duplicate insert", entry.Change{Op: entry.OpInsert, Entry: entry.Entry{ID: "2"}}, false, []string{"1", "2", "3"}},
		{"delete", entry.Change{Op: entry.OpDelete, Entry: entry.Entry{ID: "2"}}, true, []string{"1", "3"}},
		{"delete unknown", entry.Change{Op: entry.OpDelete, Entry: entry.Entry{ID: "9"}}, false, []string{"1", "3"}},
		{"reinsert deleted", entry.Change{Op: entry.OpInsert, Entry: entry.Entry{ID: "2"}}, true, []string{"1", "3", "2"}},
		{"resync is not applied", entry.Change{Op: entry.OpResync}, false, []string{"1", "3", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.changed, b.Apply(tt.change))
			assert.Equal(t, tt.want, ids(b.Snapshot()))
		})
	}
}

func TestBoard_Counts(t *testing.T) {
	b := NewBoard()
	b.Load([]entry.Entry{{ID: "a"}, {ID: "b"}})

	for _, id := range []string{"c", "d", "e"} {
		b.Apply(entry.Change{Op: entry.OpInsert, Entry: entry.Entry{ID: id}})
	}
	for _, id := range []string{"a", "d"} {
		b.Apply(entry.Change{Op: entry.OpDelete, Entry: entry.Entry{ID: id}})
	}
	assert.Equal(t, 2+3-2, b.Len())
	assert.Equal(t, []string{"b", "c", "e"}, ids(b.Snapshot()))
}

func TestBoard_KeepsSummaries(t *testing.T) {
	b := NewBoard()
	b.Apply(entry.Change{Op: entry.OpInsert, Entry: entry.Entry{ID: "1", Name: "Ana", Email: "ana@x.com", LessonPlanMarkdown: "# plan"}})
	snap := b.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "Ana", snap[0].Name)
	assert.Empty(t, snap[0].Email)
	assert.Empty(t, snap[0].LessonPlanMarkdown)
}
