package document

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/oinstituto/atlas/core"
)

// sourceFile is the layout of the extracted episode files.
type sourceFile struct {
	PageContent string   `json:"pageContent"`
	Metadata    Metadata `json:"metadata"`
}

// IngestReport counts what happened to every source file.
type IngestReport struct {
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

func (r IngestReport) String() string {
	return fmt.Sprintf("inserted=%d skipped=%d failed=%d", r.Inserted, r.Skipped, r.Failed)
}

// Ingester loads episode files into the knowledge base.
type Ingester struct {
	repo     Repository
	embedder core.Embedder
	logger   core.Logger
}

func NewIngester(repo Repository, embedder core.Embedder, logger core.Logger) *Ingester {
	return &Ingester{repo: repo, embedder: embedder, logger: logger}
}

// Ingest processes every *.json file in dir, in name order. Files with empty
// content or with a title that already exists are skipped. A failing file does
// not stop the run.
func (ing *Ingester) Ingest(ctx context.Context, dir string) (IngestReport, error) {
	var report IngestReport

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return report, errors.Wrapf(err, "listing %s", dir)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		inserted, err := ing.ingestFile(ctx, path)
		switch {
		case err != nil:
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			ing.logger.Error(fmt.Sprintf("ingest %s", path), err)
		case inserted:
			report.Inserted++
		default:
			report.Skipped++
		}
	}

	ing.logger.Info(fmt.Sprintf("ingest %s: %s", dir, report))
	return report, nil
}

func (ing *Ingester) ingestFile(ctx context.Context, path string) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, errors.Wrap(err, "reading file")
	}
	var src sourceFile
	if err := json.Unmarshal(raw, &src); err != nil {
		return false, errors.Wrap(err, "decoding file")
	}

	if strings.TrimSpace(src.PageContent) == "" {
		ing.logger.Debug(fmt.Sprintf("ingest %s: empty content", path))
		return false, nil
	}
	if src.Metadata.Titulo != "" {
		exists, err := ing.repo.DocumentTitleExists(ctx, src.Metadata.Titulo)
		if err != nil {
			return false, errors.Wrap(err, "checking title")
		}
		if exists {
			ing.logger.Debug(fmt.Sprintf("ingest %s: %q already exists", path, src.Metadata.Titulo))
			return false, nil
		}
	}

	embedding, err := ing.embedder.Embed(ctx, src.PageContent)
	if err != nil {
		return false, errors.Wrap(err, "embedding content")
	}
	if _, err := ing.repo.CreateDocument(ctx, Document{
		Content:   src.PageContent,
		Metadata:  src.Metadata,
		Embedding: embedding,
	}); err != nil {
		return false, errors.Wrap(err, "inserting document")
	}
	return true, nil
}
