package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/oinstituto/atlas/core/document"
)

type documentRow struct {
	ID         int64          `db:"id"`
	Content    string         `db:"content"`
	Metadata   types.JSONText `db:"metadata"`
	Similarity float64        `db:"similarity"`
}

func (row documentRow) document() (document.Document, error) {
	doc := document.Document{ID: row.ID, Content: row.Content}
	if len(row.Metadata) > 0 {
		if err := row.Metadata.Unmarshal(&doc.Metadata); err != nil {
			return document.Document{}, errors.Wrapf(err, "decoding metadata of document %d", row.ID)
		}
	}
	return doc, nil
}

type documentRepository struct {
	db sqlx.ExtContext
}

var _ document.Repository = (*documentRepository)(nil) // interface compliance check

func NewDocumentRepository(db sqlx.ExtContext) *documentRepository {
	return &documentRepository{db: db}
}

func (repo *documentRepository) MatchDocuments(ctx context.Context, embedding []float32, threshold float64, count int) ([]document.Match, error) {
	var rows []documentRow
	q := `SELECT id, content, metadata, similarity FROM match_documents($1, $2, $3)`
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, pgvector.NewVector(embedding), threshold, count); err != nil {
		return nil, errors.Wrap(err, "matching documents")
	}

	matches := make([]document.Match, 0, len(rows))
	for _, row := range rows {
		doc, err := row.document()
		if err != nil {
			return nil, err
		}
		matches = append(matches, document.Match{Document: doc, Similarity: row.Similarity})
	}
	return matches, nil
}

func (repo *documentRepository) QueryDocuments(ctx context.Context, limit int) ([]document.Document, error) {
	var rows []documentRow
	q := `SELECT id, content, metadata FROM documents ORDER BY id LIMIT $1`
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, limit); err != nil {
		return nil, errors.Wrap(err, "selecting documents")
	}

	docs := make([]document.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := row.document()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (repo *documentRepository) GetDocument(ctx context.Context, id int64) (document.Document, error) {
	var row documentRow
	q := `SELECT id, content, metadata FROM documents WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.db, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return document.Document{}, document.ErrNotFound
		}
		return document.Document{}, errors.Wrap(err, "selecting document")
	}
	return row.document()
}

func (repo *documentRepository) DocumentTitleExists(ctx context.Context, title string) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM documents WHERE metadata->>'titulo' = $1)`
	if err := sqlx.GetContext(ctx, repo.db, &exists, q, title); err != nil {
		return false, errors.Wrap(err, "checking document title")
	}
	return exists, nil
}

func (repo *documentRepository) CreateDocument(ctx context.Context, doc document.Document) (document.Document, error) {
	meta, err := json.Marshal(doc.Metadata)
	if err != nil {
		return document.Document{}, errors.Wrap(err, "encoding metadata")
	}
	q := `INSERT INTO documents (content, metadata, embedding) VALUES ($1, $2, $3) RETURNING id`
	if err = sqlx.GetContext(ctx, repo.db, &doc.ID, q, doc.Content, string(meta), pgvector.NewVector(doc.Embedding)); err != nil {
		return document.Document{}, errors.Wrap(err, "inserting document")
	}
	return doc, nil
}
