// Package testutil holds fixtures shared by the package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/oinstituto/atlas/core"
	"github.com/oinstituto/atlas/core/document"
	"github.com/oinstituto/atlas/core/entry"
	logsvc "github.com/oinstituto/atlas/services/logger"
)

// NewLogger returns a logger that drops everything.
func NewLogger() core.Logger {
	return logsvc.NewDiscardLogger()
}

// NewConfig returns the configuration used by tests.
func NewConfig() *core.Config {
	conf := core.NewConfig()
	conf.TestMode = true
	conf.Debug = true
	conf.AppName = "Atlas"
	conf.SecretKey = "test-secret"
	conf.SetDefaultFromEmail("Agente de Inovação <meajuda@oinstituto.cc>")
	conf.AI.ChatProvider = "mock"
	conf.AI.EmbedProvider = "mock"
	conf.AI.EmbeddingDimensions = 64
	return conf
}

// CreateEntry inserts an entry straight through the repository.
func CreateEntry(t *testing.T, repo entry.Repository, name, expectation string, createdAt ...time.Time) entry.Entry {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	e, err := repo.CreateEntry(context.Background(), entry.Entry{
		ID:          uuid.NewString(),
		Name:        name,
		Expectation: expectation,
		CreatedAt:   tstamp,
	})
	if err != nil {
		t.Fatalf("CreateEntry() failed: %v", err)
	}
	return e
}

// CreateDocument embeds content and inserts the document.
func CreateDocument(t *testing.T, repo document.Repository, embedder core.Embedder, meta document.Metadata, content string) document.Document {
	t.Helper()

	emb, err := embedder.Embed(context.Background(), content)
	if err != nil {
		t.Fatalf("CreateDocument() failed to embed: %v", err)
	}
	doc, err := repo.CreateDocument(context.Background(), document.Document{Content: content, Metadata: meta, Embedding: emb})
	if err != nil {
		t.Fatalf("CreateDocument() failed: %v", err)
	}
	return doc
}
