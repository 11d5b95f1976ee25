package dummydb

import (
	"context"
	"sort"

	"github.com/oinstituto/atlas/core/document"
)

type documentRepository struct {
	db *documentTable
}

var _ document.Repository = (*documentRepository)(nil) // interface compliance check

func NewDocumentRepository(db *DB) *documentRepository {
	return &documentRepository{db: db.document}
}

// query returns the documents ordered by id.
func (repo *documentRepository) query() []document.Document {
	docs := make([]document.Document, 0, len(repo.db.table))
	for _, d := range repo.db.table {
		docs = append(docs, *d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

func (repo *documentRepository) MatchDocuments(_ context.Context, embedding []float32, threshold float64, count int) ([]document.Match, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return document.Rank(repo.query(), embedding, threshold, count), nil
}

func (repo *documentRepository) QueryDocuments(_ context.Context, limit int) ([]document.Document, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	docs := repo.query()
	if limit >= 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (repo *documentRepository) GetDocument(_ context.Context, id int64) (document.Document, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if d, ok := repo.db.table[id]; ok {
		return *d, nil
	}
	return document.Document{}, document.ErrNotFound
}

func (repo *documentRepository) DocumentTitleExists(_ context.Context, title string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, d := range repo.db.table {
		if d.Metadata.Titulo == title {
			return true, nil
		}
	}
	return false, nil
}

func (repo *documentRepository) CreateDocument(_ context.Context, doc document.Document) (document.Document, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	doc.ID = repo.db.pk
	repo.db.table[doc.ID] = &doc
	return doc, nil
}
