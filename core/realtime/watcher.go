package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/oinstituto/atlas/core"
	"github.com/oinstituto/atlas/core/entry"
)

type (
	// Lister fetches the current entries, oldest first.
	Lister interface {
		Query(ctx context.Context, ordering ...core.DBOrdering) ([]entry.Entry, error)
	}

	// Observer is called, in arrival order, for every change applied to the board.
	// It must not block.
	Observer func(ch entry.Change)

	// Watcher keeps a Board in sync with the entries table.
	Watcher struct {
		feed   Feed
		lister Lister
		board  *Board
		logger core.Logger

		mu        sync.Mutex // serializes board updates and observer (de)registration
		observers map[int]Observer
		nextObsID int

		ready     chan struct{}
		readyOnce sync.Once
		err       error // set once the feed is lost
	}
)

func NewWatcher(feed Feed, lister Lister, board *Board, logger core.Logger) *Watcher {
	return &Watcher{
		feed:      feed,
		lister:    lister,
		board:     board,
		logger:    logger,
		observers: make(map[int]Observer),
		ready:     make(chan struct{}),
	}
}

// Board returns the board kept by w.
func (w *Watcher) Board() *Board { return w.board }

// Ready is closed once the initial fetch has been loaded.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Err reports a lost change feed; the board no longer follows the table.
func (w *Watcher) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *Watcher) lost(ctx context.Context) error {
	if ctx.Err() != nil { // the subscription was closed by ctx
		return ctx.Err()
	}
	err := core.NewShutdownError("dashboard: " + ErrFeedClosed.Error())
	w.mu.Lock()
	w.err = err
	w.mu.Unlock()
	return err
}

// Run subscribes to the feed before fetching the initial entries, so that no row
// inserted in between is missed. Rows seen twice are dropped by id.
// Run returns when ctx is done, or with a shutdown error when the feed closes.
func (w *Watcher) Run(ctx context.Context) error {
	sub, err := w.feed.Subscribe(ctx)
	if err != nil {
		return errors.Wrap(err, "subscribing to change feed")
	}
	defer sub.Close()

	if err = w.load(ctx); err != nil {
		return err
	}
	w.readyOnce.Do(func() { close(w.ready) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sub.Done():
			return w.lost(ctx)
		case ch, ok := <-sub.Changes():
			if !ok {
				return w.lost(ctx)
			}
			if ch.Op == entry.OpResync {
				w.logger.Warn("change feed resync requested, reloading entries")
				if err = w.load(ctx); err != nil {
					return err
				}
				continue
			}
			w.apply(ch)
		}
	}
}

func (w *Watcher) load(ctx context.Context) error {
	entries, err := w.lister.Query(ctx)
	if err != nil {
		return errors.Wrap(err, "fetching initial entries")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.board.Load(entries)
	w.logger.Debug(fmt.Sprintf("dashboard loaded with %d entries", len(entries)))
	for _, obs := range w.observers {
		obs(entry.Change{Op: entry.OpResync})
	}
	return nil
}

func (w *Watcher) apply(ch entry.Change) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.board.Apply(ch) {
		return
	}
	for _, obs := range w.observers {
		obs(ch)
	}
}

// Attach registers obs and returns the board snapshot it starts from.
// Every change applied after the snapshot is passed to obs.
func (w *Watcher) Attach(obs Observer) (snapshot []entry.Entry, detach func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextObsID
	w.nextObsID++
	w.observers[id] = obs

	return w.board.Snapshot(), func() {
		w.mu.Lock()
		delete(w.observers, id)
		w.mu.Unlock()
	}
}
