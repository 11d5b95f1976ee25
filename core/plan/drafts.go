package plan

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrDraftNotFound = errors.New("draft not found")

// DraftState is the view of a draft returned to clients.
type DraftState struct {
	ID         string         `json:"id"`
	Step       Step           `json:"step"`
	Title      string         `json:"title"`
	Form       FormSubmission `json:"form"`
	CanAdvance bool           `json:"can_advance"`
	IsLast     bool           `json:"is_last"`
}

type draft struct {
	collector *Collector
	touched   time.Time
}

// DraftStore keeps in-progress forms, keyed by id.
// Drafts untouched for longer than ttl are dropped.
type DraftStore struct {
	mu        sync.Mutex
	drafts    map[string]*draft
	validator *FormValidator
	ttl       time.Duration
	now       func() time.Time
}

func NewDraftStore(validator *FormValidator, ttl time.Duration) *DraftStore {
	return &DraftStore{
		drafts:    make(map[string]*draft),
		validator: validator,
		ttl:       ttl,
		now:       time.Now,
	}
}

func (ds *DraftStore) Create() DraftState {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.purge()
	id := uuid.NewString()
	d := &draft{collector: NewCollector(ds.validator), touched: ds.now()}
	ds.drafts[id] = d
	return state(id, d.collector)
}

// With runs fn on the draft's collector while holding the store lock.
func (ds *DraftStore) With(id string, fn func(c *Collector) error) (DraftState, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	d, ok := ds.drafts[id]
	if !ok {
		return DraftState{}, ErrDraftNotFound
	}
	d.touched = ds.now()
	err := fn(d.collector)
	return state(id, d.collector), err
}

func (ds *DraftStore) Get(id string) (DraftState, error) {
	return ds.With(id, func(*Collector) error { return nil })
}

func (ds *DraftStore) Delete(id string) {
	ds.mu.Lock()
	delete(ds.drafts, id)
	ds.mu.Unlock()
}

func (ds *DraftStore) Len() int {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return len(ds.drafts)
}

// purge expects the lock to be held.
func (ds *DraftStore) purge() {
	if ds.ttl <= 0 {
		return
	}
	cutoff := ds.now().Add(-ds.ttl)
	for id, d := range ds.drafts {
		if d.touched.Before(cutoff) {
			delete(ds.drafts, id)
		}
	}
}

func state(id string, c *Collector) DraftState {
	return DraftState{
		ID:         id,
		Step:       c.Step(),
		Title:      c.Step().Title(),
		Form:       c.Form(),
		CanAdvance: c.CanAdvance(),
		IsLast:     c.Step() == LastStep,
	}
}
