package gormlite

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/oinstituto/atlas/core/document"
)

func (m documentModel) document() document.Document {
	return document.Document{ID: m.ID, Content: m.Content, Metadata: m.Metadata, Embedding: m.Embedding}
}

type documentRepository struct {
	db *DB
}

var _ document.Repository = (*documentRepository)(nil) // interface compliance check

func NewDocumentRepository(db *DB) *documentRepository {
	return &documentRepository{db: db}
}

func (repo *documentRepository) MatchDocuments(ctx context.Context, embedding []float32, threshold float64, count int) ([]document.Match, error) {
	var models []documentModel
	if err := repo.db.gorm.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "selecting documents")
	}
	docs := make([]document.Document, 0, len(models))
	for _, m := range models {
		docs = append(docs, m.document())
	}
	return document.Rank(docs, embedding, threshold, count), nil
}

func (repo *documentRepository) QueryDocuments(ctx context.Context, limit int) ([]document.Document, error) {
	var models []documentModel
	if err := repo.db.gorm.WithContext(ctx).Omit("embedding").Order("id").Limit(limit).Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "selecting documents")
	}
	docs := make([]document.Document, 0, len(models))
	for _, m := range models {
		docs = append(docs, m.document())
	}
	return docs, nil
}

func (repo *documentRepository) GetDocument(ctx context.Context, id int64) (document.Document, error) {
	var m documentModel
	if err := repo.db.gorm.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return document.Document{}, document.ErrNotFound
		}
		return document.Document{}, errors.Wrap(err, "selecting document")
	}
	return m.document(), nil
}

func (repo *documentRepository) DocumentTitleExists(ctx context.Context, title string) (bool, error) {
	var n int64
	if err := repo.db.gorm.WithContext(ctx).Model(&documentModel{}).Where("titulo = ?", title).Count(&n).Error; err != nil {
		return false, errors.Wrap(err, "checking document title")
	}
	return n > 0, nil
}

func (repo *documentRepository) CreateDocument(ctx context.Context, doc document.Document) (document.Document, error) {
	m := documentModel{
		Titulo:    doc.Metadata.Titulo,
		Content:   doc.Content,
		Metadata:  doc.Metadata,
		Embedding: doc.Embedding,
	}
	if err := repo.db.gorm.WithContext(ctx).Create(&m).Error; err != nil {
		return document.Document{}, errors.Wrap(err, "inserting document")
	}
	doc.ID = m.ID
	return doc, nil
}
