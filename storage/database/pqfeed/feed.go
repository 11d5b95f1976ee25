// Package pqfeed turns Postgres LISTEN/NOTIFY messages on the entries table into a realtime.Feed.
package pqfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/oinstituto/atlas/core"
	"github.com/oinstituto/atlas/core/entry"
	"github.com/oinstituto/atlas/core/realtime"
)

// Channel is notified by the professor_entries trigger.
const Channel = "professor_entries_changes"

const (
	minReconnect = 10 * time.Second
	maxReconnect = time.Minute
	pingInterval = 90 * time.Second
	bufferSize   = 64
)

// Feed holds one LISTEN connection and fans its notifications out to subscribers.
type Feed struct {
	listener *pq.Listener
	broker   *realtime.Broker
	logger   core.Logger
}

var _ realtime.Feed = (*Feed)(nil) // interface compliance check

func New(dsn string, logger core.Logger) (*Feed, error) {
	f := &Feed{broker: realtime.NewBroker(bufferSize), logger: logger}
	f.listener = pq.NewListener(dsn, minReconnect, maxReconnect, f.onEvent)
	if err := f.listener.Listen(Channel); err != nil {
		_ = f.listener.Close()
		return nil, errors.Wrapf(err, "listening on %s", Channel)
	}
	return f, nil
}

func (f *Feed) onEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnectionAttemptFailed:
		f.logger.Error("pqfeed: connection attempt failed", err)
	case pq.ListenerEventDisconnected:
		f.logger.Warn(fmt.Sprintf("pqfeed: disconnected: %v", err))
	case pq.ListenerEventReconnected:
		f.logger.Info("pqfeed: reconnected")
	}
}

func (f *Feed) Subscribe(ctx context.Context) (*realtime.Subscription, error) {
	return f.broker.Subscribe(ctx)
}

// Run forwards notifications until ctx is done, then closes the listener.
// A reconnection may have lost notifications: subscribers get a RESYNC change.
func (f *Feed) Run(ctx context.Context) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return f.listener.Close()

		case <-ticker.C:
			go func() {
				if err := f.listener.Ping(); err != nil {
					f.logger.Warn(fmt.Sprintf("pqfeed: ping: %v", err))
				}
			}()

		case n, ok := <-f.listener.Notify:
			if !ok {
				return realtime.ErrFeedClosed
			}
			if n == nil {
				f.broker.Publish(entry.Change{Op: entry.OpResync})
				continue
			}
			ch, err := Decode(n.Extra)
			if err != nil {
				f.logger.Error("pqfeed: decoding notification", err)
				continue
			}
			f.broker.Publish(ch)
		}
	}
}

// Decode parses a trigger payload.
func Decode(payload string) (entry.Change, error) {
	var ch entry.Change
	if err := json.Unmarshal([]byte(payload), &ch); err != nil {
		return entry.Change{}, errors.Wrap(err, "decoding change")
	}
	switch ch.Op {
	case entry.OpInsert, entry.OpDelete:
	default:
		return entry.Change{}, errors.Errorf("unexpected change op %q", ch.Op)
	}
	if ch.Entry.ID == "" {
		return entry.Change{}, errors.New("change without entry id")
	}
	ch.Entry.CreatedAt = ch.Entry.CreatedAt.UTC()
	return ch, nil
}
