// Package shared holds the wiring used by both the API and the admin CLI.
package shared

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/oinstituto/atlas/core"
	"github.com/oinstituto/atlas/core/document"
	"github.com/oinstituto/atlas/core/entry"
	"github.com/oinstituto/atlas/core/realtime"
	emailsvc "github.com/oinstituto/atlas/services/email"
	logsvc "github.com/oinstituto/atlas/services/logger"
	"github.com/oinstituto/atlas/storage/database"
	dummydb "github.com/oinstituto/atlas/storage/database/dummy"
	"github.com/oinstituto/atlas/storage/database/gormlite"
	"github.com/oinstituto/atlas/storage/database/pqfeed"
	sqlxrepos "github.com/oinstituto/atlas/storage/database/sqlx"
)

const (
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
	EngineMemory   = "memory"
)

// Storage bundles the repositories and change-feed of one storage engine.
type Storage struct {
	Engine    string
	Entries   entry.Repository
	Documents document.Repository
	Feed      realtime.Feed
	DB        *sql.DB // postgres only; used by migrations

	run     func(ctx context.Context) error
	closers []func() error
}

// RunFeed pumps the change-feed until ctx is done. Engines with an in-process
// feed have nothing to pump.
func (s *Storage) RunFeed(ctx context.Context) error {
	if s.run == nil {
		<-ctx.Done()
		return nil
	}
	return s.run(ctx)
}

func (s *Storage) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// OpenStorage opens the configured engine. Postgres is created and migrated
// when needed.
func OpenStorage(ctx context.Context, conf *core.Config, logger core.Logger) (*Storage, error) {
	s := &Storage{Engine: conf.Database.Engine}

	switch conf.Database.Engine {
	case EnginePostgres:
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, err
		}
		db, err := database.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		if err = database.Migrate(db.DB); err != nil {
			_ = s.Close()
			return nil, err
		}
		feed, err := pqfeed.New(database.DSN(conf.Database.Name, false, conf), logger)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.Entries = sqlxrepos.NewEntryRepository(db)
		s.Documents = sqlxrepos.NewDocumentRepository(db)
		s.Feed = feed
		s.DB = db.DB
		s.run = feed.Run

	case EngineSQLite:
		db, err := gormlite.Open(conf.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		s.Entries = gormlite.NewEntryRepository(db)
		s.Documents = gormlite.NewDocumentRepository(db)
		s.Feed = db.Feed()

	case EngineMemory:
		db, err := dummydb.Open()
		if err != nil {
			return nil, err
		}
		s.Entries = dummydb.NewEntryRepository(db)
		s.Documents = dummydb.NewDocumentRepository(db)
		s.Feed = db.Feed()

	default:
		return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}

	logger.Info(fmt.Sprintf("storage engine: %s", s.Engine))
	return s, nil
}

// NewLogger returns a Rollbar logger writing to stdout with prefix, enabled
// outside debug mode.
func NewLogger(conf *core.Config, prefix string) *logsvc.RollbarLogger {
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, prefix, log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	return logger
}

// NewEmailService prints emails in debug mode and sends them through SendGrid otherwise.
func NewEmailService(conf *core.Config) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(log.New(os.Stdout, "MAIL : ", log.LstdFlags), conf)
	}
	return emailsvc.NewSendgridService(conf)
}
