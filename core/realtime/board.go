package realtime

import (
	"sync"

	"github.com/oinstituto/atlas/core/entry"
)

// Board is the in-memory, arrival-ordered list of entries shown on the dashboard.
type Board struct {
	mu      sync.RWMutex
	entries []entry.Entry
	ids     map[string]struct{}
}

func NewBoard() *Board {
	return &Board{ids: make(map[string]struct{})}
}

// Load replaces the board contents, dropping duplicate ids.
func (b *Board) Load(entries []entry.Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = make([]entry.Entry, 0, len(entries))
	b.ids = make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := b.ids[e.ID]; ok {
			continue
		}
		b.ids[e.ID] = struct{}{}
		b.entries = append(b.entries, e.Summary())
	}
}

// Apply inserts or removes one entry. It reports whether the board changed.
func (b *Board) Apply(ch entry.Change) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch ch.Op {
	case entry.OpInsert:
		if _, ok := b.ids[ch.Entry.ID]; ok {
			return false
		}
		b.ids[ch.Entry.ID] = struct{}{}
		b.entries = append(b.entries, ch.Entry.Summary())
		return true
	case entry.OpDelete:
		if _, ok := b.ids[ch.Entry.ID]; !ok {
			return false
		}
		delete(b.ids, ch.Entry.ID)
		for i, e := range b.entries {
			if e.ID == ch.Entry.ID {
				b.entries = append(b.entries[:i], b.entries[i+1:]...)
				break
			}
		}
		return true
	}
	return false
}

func (b *Board) Snapshot() []entry.Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap := make([]entry.Entry, len(b.entries))
	copy(snap, b.entries)
	return snap
}

func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
