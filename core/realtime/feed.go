package realtime

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/oinstituto/atlas/core/entry"
)

var ErrFeedClosed = errors.New("change feed closed")

type (
	// Feed is a source of row-level changes on the entries table.
	Feed interface {
		Subscribe(ctx context.Context) (*Subscription, error)
	}

	// Subscription delivers changes in arrival order until closed.
	Subscription struct {
		changes chan entry.Change
		done    chan struct{}
		once    sync.Once
		onClose func()
	}
)

// NewSubscription is used by Feed implementations.
// onClose runs once, after the subscription is marked done.
func NewSubscription(buffer int, onClose func()) *Subscription {
	return &Subscription{
		changes: make(chan entry.Change, buffer),
		done:    make(chan struct{}),
		onClose: onClose,
	}
}

func (s *Subscription) Changes() <-chan entry.Change { return s.changes }

// Done is closed when the subscription is closed.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Deliver blocks until the change is queued or the subscription is closed.
func (s *Subscription) Deliver(ch entry.Change) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.changes <- ch:
		return true
	case <-s.done:
		return false
	}
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		close(s.done)
		if s.onClose != nil {
			s.onClose()
		}
	})
}

// Broker is an in-process Feed. Repositories without a native change-feed publish to it.
type Broker struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
}

var _ Feed = (*Broker)(nil) // interface compliance check

func NewBroker(buffer int) *Broker {
	return &Broker{subs: make(map[*Subscription]struct{}), buffer: buffer}
}

func (b *Broker) Subscribe(ctx context.Context) (*Subscription, error) {
	var sub *Subscription
	sub = NewSubscription(b.buffer, func() {
		b.mu.Lock()
		delete(b.subs, sub)
		b.mu.Unlock()
	})

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.Done():
		}
	}()
	return sub, nil
}

// Publish delivers ch to every open subscription.
func (b *Broker) Publish(ch entry.Change) {
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.Deliver(ch)
	}
}
