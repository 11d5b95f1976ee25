package gormlite

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/oinstituto/atlas/core"
	"github.com/oinstituto/atlas/core/entry"
)

func toEntryModel(e entry.Entry) entryModel {
	return entryModel{
		ID:                 e.ID,
		Name:               e.Name,
		Email:              e.Email,
		Expectation:        e.Expectation,
		Discipline:         e.Discipline,
		Grade:              e.Grade,
		Content:            e.Content,
		Vibe:               e.Vibe,
		Space:              e.Space,
		Grouping:           e.Grouping,
		Challenge:          e.Challenge,
		LessonPlanMarkdown: e.LessonPlanMarkdown,
		PlanSent:           e.PlanSent,
		CreatedAt:          e.CreatedAt.UTC(),
	}
}

func (m entryModel) entry() entry.Entry {
	return entry.Entry{
		ID:                 m.ID,
		Name:               m.Name,
		Email:              m.Email,
		Expectation:        m.Expectation,
		Discipline:         m.Discipline,
		Grade:              m.Grade,
		Content:            m.Content,
		Vibe:               m.Vibe,
		Space:              m.Space,
		Grouping:           m.Grouping,
		Challenge:          m.Challenge,
		LessonPlanMarkdown: m.LessonPlanMarkdown,
		PlanSent:           m.PlanSent,
		CreatedAt:          m.CreatedAt.UTC(),
	}
}

type entryRepository struct {
	db *DB
}

var _ entry.Repository = (*entryRepository)(nil) // interface compliance check

func NewEntryRepository(db *DB) *entryRepository {
	return &entryRepository{db: db}
}

func (repo *entryRepository) CreateEntry(ctx context.Context, e entry.Entry) (entry.Entry, error) {
	m := toEntryModel(e)
	err := repo.db.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int64
		if err := tx.Model(&entryModel{}).Select("COALESCE(MAX(seq), 0)").Scan(&last).Error; err != nil {
			return err
		}
		m.Seq = last + 1
		return tx.Create(&m).Error
	})
	if err != nil {
		return entry.Entry{}, errors.Wrap(err, "inserting entry")
	}
	repo.db.feed.Publish(entry.Change{Op: entry.OpInsert, Entry: e.Summary()})
	return e, nil
}

func (repo *entryRepository) GetEntry(ctx context.Context, id string) (entry.Entry, error) {
	var m entryModel
	if err := repo.db.gorm.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entry.Entry{}, entry.ErrNotFound
		}
		return entry.Entry{}, errors.Wrap(err, "selecting entry")
	}
	return m.entry(), nil
}

func (repo *entryRepository) QueryEntries(ctx context.Context, ordering []core.DBOrdering) ([]entry.Entry, error) {
	q := repo.db.gorm.WithContext(ctx)
	for _, ord := range ordering {
		q = q.Order(ord.String())
	}

	var models []entryModel
	if err := q.Order("seq").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "selecting entries")
	}
	entries := make([]entry.Entry, 0, len(models))
	for _, m := range models {
		entries = append(entries, m.entry())
	}
	return entries, nil
}

func (repo *entryRepository) MarkPlanSent(ctx context.Context, id string) (bool, error) {
	res := repo.db.gorm.WithContext(ctx).Model(&entryModel{}).
		Where("id = ? AND plan_sent = ?", id, false).
		Update("plan_sent", true)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "updating entry")
	}
	return res.RowsAffected == 1, nil
}

// deleteWhere deletes the matching rows and publishes one DELETE per row.
func (repo *entryRepository) deleteWhere(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var deleted []entryModel
	err := repo.db.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(query, args...).Order("seq").Find(&deleted).Error; err != nil {
			return err
		}
		return tx.Where(query, args...).Delete(&entryModel{}).Error
	})
	if err != nil {
		return 0, errors.Wrap(err, "deleting entries")
	}
	for _, m := range deleted {
		repo.db.feed.Publish(entry.Change{Op: entry.OpDelete, Entry: m.entry().Summary()})
	}
	return int64(len(deleted)), nil
}

func (repo *entryRepository) DeleteEntries(ctx context.Context, ids ...string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return repo.deleteWhere(ctx, "id IN ?", ids)
}

func (repo *entryRepository) DeleteAllEntries(ctx context.Context) (int64, error) {
	return repo.deleteWhere(ctx, "1 = 1")
}
