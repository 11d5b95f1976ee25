package realtime_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oinstituto/atlas/core"
	"github.com/oinstituto/atlas/core/entry"
	"github.com/oinstituto/atlas/core/realtime"
	dummydb "github.com/oinstituto/atlas/storage/database/dummy"
	"github.com/oinstituto/atlas/testutil"
)

// racyLister inserts a row after the feed subscription but before returning the list,
// so the row is seen both in the fetch and on the feed.
type racyLister struct {
	svc    *entry.Service
	repo   entry.Repository
	t      *testing.T
	inject sync.Once
}

func (l *racyLister) Query(ctx context.Context, ordering ...core.DBOrdering) ([]entry.Entry, error) {
	l.inject.Do(func() {
		testutil.CreateEntry(l.t, l.repo, "Racy", "IA")
	})
	return l.svc.Query(ctx, ordering...)
}

type recorder struct {
	mu      sync.Mutex
	changes []entry.Change
}

func (r *recorder) observe(ch entry.Change) {
	r.mu.Lock()
	r.changes = append(r.changes, ch)
	r.mu.Unlock()
}

func (r *recorder) ops() []entry.ChangeOp {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]entry.ChangeOp, 0, len(r.changes))
	for _, ch := range r.changes {
		ops = append(ops, ch.Op)
	}
	return ops
}

func names(entries []entry.Entry) []string {
	res := make([]string, 0, len(entries))
	for _, e := range entries {
		res = append(res, e.Name)
	}
	return res
}

func TestWatcher(t *testing.T) {
	db, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewEntryRepository(db)
	svc := entry.NewService(repo)

	base := time.Now().UTC().Add(-time.Hour)
	testutil.CreateEntry(t, repo, "Ana", "Robótica", base)
	testutil.CreateEntry(t, repo, "Carlos", "IA", base.Add(time.Minute))

	lister := &racyLister{svc: svc, repo: repo, t: t}
	w := realtime.NewWatcher(db.Feed(), lister, realtime.NewBoard(), testutil.NewLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-w.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("watcher not ready")
	}

	rec := new(recorder)
	_, detach := w.Attach(rec.observe)
	defer detach()

	// the racy row was fetched and also delivered by the feed: it must show once
	require.Eventually(t, func() bool { return w.Board().Len() == 3 }, time.Second, 10*time.Millisecond)

	beatriz := testutil.CreateEntry(t, repo, "Beatriz", "Moda")
	require.Eventually(t, func() bool { return w.Board().Len() == 4 }, time.Second, 10*time.Millisecond)

	_, err = svc.Delete(ctx, beatriz.ID)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return w.Board().Len() == 3 }, time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"Ana", "Carlos", "Racy"}, names(w.Board().Snapshot()))
	assert.Eventually(t, func() bool {
		ops := rec.ops()
		return len(ops) == 2 && ops[0] == entry.OpInsert && ops[1] == entry.OpDelete
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err = <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

type staticFeed struct {
	sub *realtime.Subscription
}

func (f staticFeed) Subscribe(context.Context) (*realtime.Subscription, error) {
	return f.sub, nil
}

func TestWatcher_Resync(t *testing.T) {
	db, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewEntryRepository(db)
	svc := entry.NewService(repo)

	sub := realtime.NewSubscription(8, nil)
	w := realtime.NewWatcher(staticFeed{sub}, svc, realtime.NewBoard(), testutil.NewLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	<-w.Ready()
	assert.Equal(t, 0, w.Board().Len())

	// rows inserted while the feed was down are only seen after a resync
	testutil.CreateEntry(t, repo, "Ana", "IA")
	testutil.CreateEntry(t, repo, "João", "TI")
	require.True(t, sub.Deliver(entry.Change{Op: entry.OpResync}))

	assert.Eventually(t, func() bool { return w.Board().Len() == 2 }, time.Second, 10*time.Millisecond)

	sub.Close()
}

func TestWatcher_FeedLost(t *testing.T) {
	db, err := dummydb.Open()
	require.NoError(t, err)
	svc := entry.NewService(dummydb.NewEntryRepository(db))

	sub := realtime.NewSubscription(8, nil)
	w := realtime.NewWatcher(staticFeed{sub}, svc, realtime.NewBoard(), testutil.NewLogger())

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()
	<-w.Ready()
	assert.NoError(t, w.Err())

	sub.Close()
	select {
	case err = <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher still running after the feed closed")
	}
	assert.True(t, core.IsShutdown(err), "got %v", err)
	assert.Equal(t, err, w.Err())
}

func TestWatcher_Cancel(t *testing.T) {
	db, err := dummydb.Open()
	require.NoError(t, err)
	svc := entry.NewService(dummydb.NewEntryRepository(db))
	w := realtime.NewWatcher(realtime.NewBroker(8), svc, realtime.NewBoard(), testutil.NewLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	<-w.Ready()

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.NoError(t, w.Err())
}
