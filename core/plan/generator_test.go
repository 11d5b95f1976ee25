package plan

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oinstituto/atlas/core/document"
	aisvc "github.com/oinstituto/atlas/services/ai"
	"github.com/oinstituto/atlas/testutil"
)

func TestPrompts(t *testing.T) {
	sys := SystemPrompt("  ")
	assert.Contains(t, sys, "Use este contexto de escolas inovadoras para enriquecer suas recomendações:\nSem contexto específico disponível.\n")
	assert.Contains(t, SystemPrompt("### Escola Lumiar\nprojetos"), "recomendações:\n### Escola Lumiar\nprojetos\n")

	user := UserPrompt(completeForm())
	for _, line := range []string{
		"- Disciplina: Matemática",
		"- Série/Ano: 6º ano - Fundamental",
		"- Tema/Conteúdo: Frações equivalentes",
		"- Estilo (Vibe): Mão na Massa",
		"- Espaço físico: Sala de aula tradicional",
		"- Agrupamento: Duplas",
		"**Desafio da Turma**\nFalta de engajamento/atenção\n",
	} {
		assert.Contains(t, user, line)
	}
	assert.NotContains(t, user, "&", "prompts are plain text")
}

func TestGenerator_Generate(t *testing.T) {
	completer := aisvc.NewMockCompleter()
	gen := NewGenerator(completer, testutil.NewLogger(), GeneratorOptions{})

	md, err := gen.Generate(context.Background(), completeForm(), "")
	require.NoError(t, err)
	assert.Equal(t, aisvc.MockPlan, md)

	reqs := completer.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "gpt-4o", reqs[0].Model)
	assert.Equal(t, 0.7, reqs[0].Temperature)
	assert.Equal(t, 3000, reqs[0].MaxTokens)
	assert.Equal(t, SystemPrompt(""), reqs[0].System)
	assert.Equal(t, UserPrompt(completeForm()), reqs[0].User)

	tests := []struct {
		name string
		text string
		err  error
	}{
		{"provider error", "", errors.New("429 Too Many Requests")},
		{"empty completion", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer.Respond(tt.text, tt.err)
			_, err := gen.Generate(context.Background(), completeForm(), "")
			assert.ErrorIs(t, err, ErrGenerationFailed)
			assert.Equal(t, "Não foi possível gerar o plano de aula.", err.Error())
		})
	}
}

type stubMatcher struct {
	matches   []document.Match
	err       error
	threshold float64
	count     int
	calls     int
}

func (m *stubMatcher) MatchDocuments(_ context.Context, _ []float32, threshold float64, count int) ([]document.Match, error) {
	m.calls++
	m.threshold, m.count = threshold, count
	return m.matches, m.err
}

func match(title, content string, sim float64) document.Match {
	return document.Match{
		Document:   document.Document{Content: content, Metadata: document.Metadata{Titulo: title}},
		Similarity: sim,
	}
}

func TestQuery(t *testing.T) {
	assert.Equal(t,
		"Mão na Massa Sala de aula tradicional Falta de engajamento/atenção Matemática Frações equivalentes",
		Query(completeForm()),
	)
	assert.Equal(t, "Social História", Query(FormSubmission{Vibe: "Social", Space: " ", Discipline: "História"}))
	assert.Empty(t, Query(FormSubmission{}))
}

func TestRetriever_Retrieve(t *testing.T) {
	ctx := context.Background()
	embedder := aisvc.NewMockEmbedder(64)

	matcher := &stubMatcher{matches: []document.Match{
		match("Escola Lumiar - Brasil", "projetos", 0.9),
		match("", "sem título", 0.8),
		match("Escola Baixa", "ignorada", 0.4),
		match("Escola da Ponte - Portugal", "assembleias", 0.7),
		match("Quarta", "excedente", 0.6),
	}}
	r := NewRetriever(embedder, matcher, testutil.NewLogger(), 0.5, 3)

	got := r.Retrieve(ctx, "robótica")
	assert.Equal(t,
		"### Escola Lumiar - Brasil\nprojetos\n\n---\n\n### Escola Inovadora\nsem título\n\n---\n\n### Escola da Ponte - Portugal\nassembleias",
		got,
	)
	assert.Equal(t, 0.5, matcher.threshold)
	assert.Equal(t, 3, matcher.count)

	assert.Empty(t, r.Retrieve(ctx, "  "))
	assert.Equal(t, 1, matcher.calls, "blank queries are not searched")

	matcher.matches = nil
	assert.Empty(t, r.Retrieve(ctx, "robótica"))

	matcher.err = errors.New("connection refused")
	assert.Empty(t, r.Retrieve(ctx, "robótica"))

	matcher.err = nil
	embedder.SetErr(errors.New("401 Unauthorized"))
	assert.Empty(t, r.Retrieve(ctx, "robótica"))
}

func TestRetriever_NoCount(t *testing.T) {
	for _, count := range []int{0, -1} {
		matcher := &stubMatcher{matches: []document.Match{match("Escola Lumiar - Brasil", "projetos", 0.9)}}
		r := NewRetriever(aisvc.NewMockEmbedder(64), matcher, testutil.NewLogger(), 0.5, count)
		assert.Empty(t, r.Retrieve(context.Background(), "robótica"), "count %d", count)
		assert.Zero(t, matcher.calls, "count %d", count)
	}
}
