package plan

import (
	"context"
	"fmt"
	"strings"

	"github.com/oinstituto/atlas/core"
	"github.com/oinstituto/atlas/core/document"
)

const (
	defaultSchoolTitle = "Escola Inovadora"
	contextSeparator   = "\n\n---\n\n"
)

// Retriever finds knowledge documents related to a form and renders them as prompt context.
type Retriever struct {
	embedder  core.Embedder
	matcher   document.Matcher
	logger    core.Logger
	threshold float64
	count     int
}

// NewRetriever keeps at most count documents; a count below 1 disables retrieval.
func NewRetriever(embedder core.Embedder, matcher document.Matcher, logger core.Logger, threshold float64, count int) *Retriever {
	if count < 0 {
		count = 0
	}
	return &Retriever{
		embedder:  embedder,
		matcher:   matcher,
		logger:    logger,
		threshold: threshold,
		count:     count,
	}
}

// Query builds the search text of a form: style, space, challenge, discipline and topic.
func Query(form FormSubmission) string {
	parts := make([]string, 0, 5)
	for _, p := range []string{form.Vibe, form.Space, form.Challenge, form.Discipline, form.Content} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Retrieve returns the rendered context for query, or "" when nothing matches.
// Failures are logged, never returned.
func (r *Retriever) Retrieve(ctx context.Context, query string) string {
	if r.count == 0 || strings.TrimSpace(query) == "" {
		return ""
	}

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Error("retriever: embedding query", err)
		return ""
	}
	matches, err := r.matcher.MatchDocuments(ctx, embedding, r.threshold, r.count)
	if err != nil {
		r.logger.Error("retriever: matching documents", err)
		return ""
	}

	blocks := make([]string, 0, r.count)
	for _, m := range matches {
		if len(blocks) == r.count {
			break
		}
		if m.Similarity < r.threshold {
			continue
		}
		title := m.Metadata.Titulo
		if title == "" {
			title = defaultSchoolTitle
		}
		blocks = append(blocks, fmt.Sprintf("### %s\n%s", title, m.Content))
	}
	r.logger.Debug(fmt.Sprintf("retriever: %d/%d documents kept", len(blocks), len(matches)))
	return strings.Join(blocks, contextSeparator)
}
