package document

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/oinstituto/atlas/core"
)

var ErrNotFound = errors.New("document not found")

type (
	// Matcher runs the similarity search over stored documents.
	// Matches are ordered by decreasing similarity.
	Matcher interface {
		MatchDocuments(ctx context.Context, embedding []float32, threshold float64, count int) ([]Match, error)
	}

	Repository interface {
		Matcher
		QueryDocuments(ctx context.Context, limit int) ([]Document, error)
		GetDocument(ctx context.Context, id int64) (Document, error)
		DocumentTitleExists(ctx context.Context, title string) (bool, error)
		CreateDocument(ctx context.Context, doc Document) (Document, error)
	}

	ServiceOptions struct {
		SearchThreshold float64
		SearchCount     int
		ListLimit       int
	}

	// Service backs the innovation gallery.
	Service struct {
		repo     Repository
		embedder core.Embedder
		logger   core.Logger
		opts     ServiceOptions
	}
)

func NewService(repo Repository, embedder core.Embedder, logger core.Logger, opts ServiceOptions) *Service {
	if opts.SearchCount <= 0 {
		opts.SearchCount = 10
	}
	if opts.ListLimit <= 0 {
		opts.ListLimit = 100
	}
	return &Service{repo: repo, embedder: embedder, logger: logger, opts: opts}
}

// Browse lists gallery cards matching filter.
func (svc *Service) Browse(ctx context.Context, filter Filter) ([]Card, Options, error) {
	docs, err := svc.repo.QueryDocuments(ctx, svc.opts.ListLimit)
	if err != nil {
		return nil, Options{}, errors.Wrap(err, "querying documents")
	}
	cards := make([]Card, 0, len(docs))
	for i, doc := range docs {
		cards = append(cards, NewCard(doc, i, browseCountryFallback))
	}
	return filter.Apply(cards), FilterOptions(cards), nil
}

// Search runs a semantic search. It never fails: errors are logged and yield no cards.
func (svc *Service) Search(ctx context.Context, query string) []Card {
	query = core.CleanString(query)
	if query == "" {
		return []Card{}
	}

	embedding, err := svc.embedder.Embed(ctx, query)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("gallery search: embedding %q", query), err)
		return []Card{}
	}
	matches, err := svc.repo.MatchDocuments(ctx, embedding, svc.opts.SearchThreshold, svc.opts.SearchCount)
	if err != nil {
		svc.logger.Error("gallery search: matching documents", err)
		return []Card{}
	}
	svc.logger.Debug(fmt.Sprintf("gallery search %q: %d documents", query, len(matches)))

	cards := make([]Card, 0, len(matches))
	for i, m := range matches {
		cards = append(cards, NewCard(m.Document, i, searchCountryFallback))
	}
	return cards
}

func (svc *Service) Get(ctx context.Context, id int64) (Detail, error) {
	doc, err := svc.repo.GetDocument(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	return NewDetail(doc), nil
}
