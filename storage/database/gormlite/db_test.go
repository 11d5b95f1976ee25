package gormlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oinstituto/atlas/core"
	"github.com/oinstituto/atlas/core/document"
	"github.com/oinstituto/atlas/core/entry"
	aisvc "github.com/oinstituto/atlas/services/ai"
	"github.com/oinstituto/atlas/storage/database/gormlite"
	"github.com/oinstituto/atlas/testutil"
)

func open(t *testing.T) *gormlite.DB {
	db, err := gormlite.Open(filepath.Join(t.TempDir(), "atlas.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func names(entries []entry.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestEntryRepository(t *testing.T) {
	db := open(t)
	repo := gormlite.NewEntryRepository(db)
	ctx := context.Background()

	sub, err := db.Feed().Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ana := testutil.CreateEntry(t, repo, "Ana", "IA", base)
	testutil.CreateEntry(t, repo, "Carlos", "TI", base)
	testutil.CreateEntry(t, repo, "Beatriz", "Moda", base.Add(-time.Minute))

	got, err := repo.GetEntry(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
	assert.True(t, base.Equal(got.CreatedAt))

	_, err = repo.GetEntry(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, entry.ErrNotFound)

	entries, err := repo.QueryEntries(ctx, []core.DBOrdering{{Field: "created_at", Ascending: true}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Beatriz", "Ana", "Carlos"}, names(entries), "ties keep insertion order")

	ok, err := repo.MarkPlanSent(ctx, ana.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.MarkPlanSent(ctx, ana.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := repo.DeleteEntries(ctx, ana.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = repo.DeleteAllEntries(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	var ops []entry.ChangeOp
	for len(ops) < 6 {
		select {
		case c := <-sub.Changes():
			ops = append(ops, c.Op)
		case <-time.After(time.Second):
			t.Fatalf("got %v, want 6 changes", ops)
		}
	}
	assert.Equal(t, []entry.ChangeOp{
		entry.OpInsert, entry.OpInsert, entry.OpInsert,
		entry.OpDelete, entry.OpDelete, entry.OpDelete,
	}, ops)
}

func TestDocumentRepository(t *testing.T) {
	db := open(t)
	repo := gormlite.NewDocumentRepository(db)
	embedder := aisvc.NewMockEmbedder(64)
	ctx := context.Background()

	lumiar := testutil.CreateDocument(t, repo, embedder, document.Metadata{
		Titulo:           "Escola Lumiar - Brasil",
		PilarInovacao:    "Autonomia",
		CompetenciasBNCC: []string{"EF01"},
	}, "robótica educacional")
	testutil.CreateDocument(t, repo, embedder, document.Metadata{Titulo: "Escola da Ponte - Portugal"}, "assembleias de estudantes")

	got, err := repo.GetDocument(ctx, lumiar.ID)
	require.NoError(t, err)
	assert.Equal(t, lumiar.Metadata, got.Metadata)
	assert.Equal(t, lumiar.Embedding, got.Embedding)

	_, err = repo.GetDocument(ctx, 999)
	assert.ErrorIs(t, err, document.ErrNotFound)

	exists, err := repo.DocumentTitleExists(ctx, "Escola Lumiar - Brasil")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.DocumentTitleExists(ctx, "Escola Nova")
	require.NoError(t, err)
	assert.False(t, exists)

	docs, err := repo.QueryDocuments(ctx, 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, lumiar.ID, docs[0].ID)

	emb, err := embedder.Embed(ctx, "robótica educacional")
	require.NoError(t, err)
	matches, err := repo.MatchDocuments(ctx, emb, 0.5, 3)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, lumiar.ID, matches[0].ID)
	assert.InDelta(t, 1, matches[0].Similarity, 1e-6)
}
