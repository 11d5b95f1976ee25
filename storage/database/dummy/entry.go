package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/oinstituto/atlas/core"
	"github.com/oinstituto/atlas/core/entry"
)

type entryRepository struct {
	db   *entryTable
	feed interface{ Publish(entry.Change) }
}

var _ entry.Repository = (*entryRepository)(nil) // interface compliance check

func NewEntryRepository(db *DB) *entryRepository {
	return &entryRepository{db: db.entry, feed: db.feed}
}

func (repo *entryRepository) query() []entry.Entry {
	entries := make([]entry.Entry, 0, len(repo.db.table))
	for _, e := range repo.db.table {
		entries = append(entries, *e)
	}
	return entries
}

func (repo *entryRepository) CreateEntry(_ context.Context, e entry.Entry) (entry.Entry, error) {
	repo.db.Lock()
	repo.db.next++
	repo.db.seq[e.ID] = repo.db.next
	repo.db.table[e.ID] = &e
	repo.db.Unlock()

	repo.feed.Publish(entry.Change{Op: entry.OpInsert, Entry: e.Summary()})
	return e, nil
}

func (repo *entryRepository) GetEntry(_ context.Context, id string) (entry.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if e, ok := repo.db.table[id]; ok {
		return *e, nil
	}
	return entry.Entry{}, entry.ErrNotFound
}

func (repo *entryRepository) QueryEntries(_ context.Context, ordering []core.DBOrdering) ([]entry.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := repo.query()
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		for _, ord := range ordering {
			var cmp int
			switch ord.Field {
			case "created_at":
				cmp = a.CreatedAt.Compare(b.CreatedAt)
			case "name":
				cmp = strings.Compare(a.Name, b.Name)
			}
			if cmp == 0 {
				continue
			}
			if ord.Ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return repo.db.seq[a.ID] < repo.db.seq[b.ID]
	})
	return entries, nil
}

func (repo *entryRepository) MarkPlanSent(_ context.Context, id string) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	e, ok := repo.db.table[id]
	if !ok || e.PlanSent {
		return false, nil
	}
	e.PlanSent = true
	return true, nil
}

func (repo *entryRepository) delete(keep func(e *entry.Entry) bool) int64 {
	repo.db.Lock()
	deleted := make([]entry.Entry, 0)
	for id, e := range repo.db.table {
		if keep(e) {
			continue
		}
		deleted = append(deleted, *e)
		delete(repo.db.table, id)
	}
	sort.Slice(deleted, func(i, j int) bool { return repo.db.seq[deleted[i].ID] < repo.db.seq[deleted[j].ID] })
	for _, e := range deleted {
		delete(repo.db.seq, e.ID)
	}
	repo.db.Unlock()

	for _, e := range deleted {
		repo.feed.Publish(entry.Change{Op: entry.OpDelete, Entry: e.Summary()})
	}
	return int64(len(deleted))
}

func (repo *entryRepository) DeleteEntries(_ context.Context, ids ...string) (int64, error) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return repo.delete(func(e *entry.Entry) bool {
		_, found := set[e.ID]
		return !found
	}), nil
}

func (repo *entryRepository) DeleteAllEntries(_ context.Context) (int64, error) {
	return repo.delete(func(*entry.Entry) bool { return false }), nil
}
