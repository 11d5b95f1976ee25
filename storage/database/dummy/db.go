// Package dummydb is an in-memory storage engine, used in tests and when no
// database is configured.
package dummydb

import (
	"sync"

	"github.com/oinstituto/atlas/core/document"
	"github.com/oinstituto/atlas/core/entry"
	"github.com/oinstituto/atlas/core/realtime"
)

type (
	DB struct {
		entry    *entryTable
		document *documentTable
		feed     *realtime.Broker
	}

	entryTable struct {
		sync.RWMutex
		table map[string]*entry.Entry
		seq   map[string]int // insertion order, ties on created_at
		next  int
	}

	documentTable struct {
		sync.RWMutex
		table map[int64]*document.Document
		pk    int64
	}
)

func Open() (*DB, error) {
	db := &DB{
		entry:    &entryTable{table: make(map[string]*entry.Entry), seq: make(map[string]int)},
		document: &documentTable{table: make(map[int64]*document.Document)},
		feed:     realtime.NewBroker(64),
	}
	return db, nil
}

// Feed publishes every insert and delete made through the entry repository.
func (db *DB) Feed() *realtime.Broker {
	return db.feed
}
