package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/oinstituto/atlas/core"
	"github.com/oinstituto/atlas/core/entry"
)

const entryColumns = `id, name, email, expectation, discipline, grade, content, vibe, space, grouping,
	challenge, lesson_plan_markdown, plan_sent, created_at`

type entryRow struct {
	ID                 string      `db:"id"`
	Name               string      `db:"name"`
	Email              null.String `db:"email"`
	Expectation        null.String `db:"expectation"`
	Discipline         null.String `db:"discipline"`
	Grade              null.String `db:"grade"`
	Content            null.String `db:"content"`
	Vibe               null.String `db:"vibe"`
	Space              null.String `db:"space"`
	Grouping           null.String `db:"grouping"`
	Challenge          null.String `db:"challenge"`
	LessonPlanMarkdown null.String `db:"lesson_plan_markdown"`
	PlanSent           bool        `db:"plan_sent"`
	CreatedAt          time.Time   `db:"created_at"`
}

func str(s string) null.String {
	return null.NewString(s, s != "")
}

func toEntryRow(e entry.Entry) entryRow {
	return entryRow{
		ID:                 e.ID,
		Name:               e.Name,
		Email:              str(e.Email),
		Expectation:        str(e.Expectation),
		Discipline:         str(e.Discipline),
		Grade:              str(e.Grade),
		Content:            str(e.Content),
		Vibe:               str(e.Vibe),
		Space:              str(e.Space),
		Grouping:           str(e.Grouping),
		Challenge:          str(e.Challenge),
		LessonPlanMarkdown: str(e.LessonPlanMarkdown),
		PlanSent:           e.PlanSent,
		CreatedAt:          e.CreatedAt.UTC(),
	}
}

func (row entryRow) entry() entry.Entry {
	return entry.Entry{
		ID:                 row.ID,
		Name:               row.Name,
		Email:              row.Email.String,
		Expectation:        row.Expectation.String,
		Discipline:         row.Discipline.String,
		Grade:              row.Grade.String,
		Content:            row.Content.String,
		Vibe:               row.Vibe.String,
		Space:              row.Space.String,
		Grouping:           row.Grouping.String,
		Challenge:          row.Challenge.String,
		LessonPlanMarkdown: row.LessonPlanMarkdown.String,
		PlanSent:           row.PlanSent,
		CreatedAt:          row.CreatedAt.UTC(),
	}
}

type entryRepository struct {
	db sqlx.ExtContext
}

var _ entry.Repository = (*entryRepository)(nil) // interface compliance check

func NewEntryRepository(db sqlx.ExtContext) *entryRepository {
	return &entryRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to entry.ErrNotFound
func trapNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return entry.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *entryRepository) CreateEntry(ctx context.Context, e entry.Entry) (entry.Entry, error) {
	q := `INSERT INTO professor_entries (` + entryColumns + `)
		VALUES (:id, :name, :email, :expectation, :discipline, :grade, :content, :vibe, :space, :grouping,
			:challenge, :lesson_plan_markdown, :plan_sent, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, toEntryRow(e)); err != nil {
		return entry.Entry{}, errors.Wrap(err, "inserting entry")
	}
	return e, nil
}

func (repo *entryRepository) GetEntry(ctx context.Context, id string) (entry.Entry, error) {
	var row entryRow
	q := `SELECT ` + entryColumns + ` FROM professor_entries WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.db, &row, q, id); err != nil {
		return entry.Entry{}, trapNoRowsErr(err, "selecting entry")
	}
	return row.entry(), nil
}

func (repo *entryRepository) QueryEntries(ctx context.Context, ordering []core.DBOrdering) ([]entry.Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM professor_entries`
	if len(ordering) > 0 {
		ords := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			ords = append(ords, ord.String())
		}
		q += " ORDER BY " + strings.Join(ords, ", ") + ", id"
	}

	var rows []entryRow
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting entries")
	}
	entries := make([]entry.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.entry())
	}
	return entries, nil
}

func (repo *entryRepository) MarkPlanSent(ctx context.Context, id string) (bool, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE professor_entries SET plan_sent = true WHERE id = $1 AND plan_sent = false`, id)
	if err != nil {
		return false, errors.Wrap(err, "updating entry")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "updating entry")
	}
	return n == 1, nil
}

func (repo *entryRepository) DeleteEntries(ctx context.Context, ids ...string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In(`DELETE FROM professor_entries WHERE id IN (?)`, ids)
	if err != nil {
		return 0, errors.Wrap(err, "building delete")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(q), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting entries")
	}
	return res.RowsAffected()
}

// DeleteAllEntries deletes row by row (no TRUNCATE) so the change-feed sees every deletion.
func (repo *entryRepository) DeleteAllEntries(ctx context.Context) (int64, error) {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM professor_entries`)
	if err != nil {
		return 0, errors.Wrap(err, "deleting entries")
	}
	return res.RowsAffected()
}
