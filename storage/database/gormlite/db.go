// Package gormlite is a single-file storage engine built on gorm and a CGO-free sqlite driver.
// Vector search is done in process.
package gormlite

import (
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oinstituto/atlas/core/document"
	"github.com/oinstituto/atlas/core/realtime"
)

type (
	entryModel struct {
		ID                 string `gorm:"primaryKey"`
		Name               string `gorm:"not null"`
		Email              string
		Expectation        string
		Discipline         string
		Grade              string
		Content            string
		Vibe               string
		Space              string
		Grouping           string
		Challenge          string
		LessonPlanMarkdown string
		PlanSent           bool      `gorm:"not null;default:false"`
		CreatedAt          time.Time `gorm:"not null;index"`
		Seq                int64     `gorm:"autoIncrement:false;index"` // insertion order
	}

	documentModel struct {
		ID        int64             `gorm:"primaryKey;autoIncrement"`
		Titulo    string            `gorm:"index"`
		Content   string            `gorm:"not null"`
		Metadata  document.Metadata `gorm:"serializer:json"`
		Embedding []float32         `gorm:"serializer:json"`
	}
)

func (entryModel) TableName() string    { return "professor_entries" }
func (documentModel) TableName() string { return "documents" }

// DB is an open sqlite database plus the in-process feed of its entry changes.
type DB struct {
	gorm *gorm.DB
	feed *realtime.Broker
}

// Open opens (creating if needed) the sqlite file at path and migrates it.
func Open(path string) (*DB, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, errors.Wrapf(err, "opening sqlite %s", path)
	}
	if err = gdb.AutoMigrate(&entryModel{}, &documentModel{}); err != nil {
		return nil, errors.Wrap(err, "migrating sqlite")
	}
	return &DB{gorm: gdb, feed: realtime.NewBroker(64)}, nil
}

func (db *DB) Feed() *realtime.Broker {
	return db.feed
}

func (db *DB) Close() error {
	sqlDB, err := db.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
