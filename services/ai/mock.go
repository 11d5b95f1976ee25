package aisvc

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"

	"github.com/oinstituto/atlas/core"
	"github.com/oinstituto/atlas/core/expectation"
)

// MockEmbedder hashes the words of a text into a fixed-size vector, so that
// texts sharing words are similar. It needs no network.
type MockEmbedder struct {
	Dimensions int

	mu  sync.Mutex
	Err error
}

var _ core.Embedder = (*MockEmbedder)(nil)

func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 64
	}
	return &MockEmbedder{Dimensions: dimensions}
}

func (m *MockEmbedder) SetErr(err error) {
	m.mu.Lock()
	m.Err = err
	m.mu.Unlock()
}

func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	err := m.Err
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	vec := make([]float32, m.Dimensions)
	for _, word := range strings.Fields(expectation.Fold(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		vec[h.Sum32()%uint32(m.Dimensions)]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
	}
	return vec, nil
}

// MockPlan is what MockCompleter answers by default.
const MockPlan = `# Plano de Aula

## 1. ACOLHIDA SCRIPTADA (5-10 min)
"Bom dia, turma! Hoje vamos investigar juntos."

## 2. QUESTÃO DISPARADORA
**Como isso aparece no nosso dia a dia?**

## 3. MÃO NA MASSA (Mínimo 500 palavras)
1. Organize os grupos.
2. Distribua os materiais.
- Papel do professor: mediar.

## 4. SISTEMATIZAÇÃO (10-15 min)
Síntese coletiva do aprendizado.

## 5. RESUMO DE IMPACTO
*Esta aula transforma a experiência de aprendizagem.*`

// MockCompleter answers with a fixed text and records every request.
type MockCompleter struct {
	mu       sync.Mutex
	text     string
	err      error
	requests []core.CompletionRequest
}

var _ core.Completer = (*MockCompleter)(nil)

func NewMockCompleter() *MockCompleter {
	return &MockCompleter{text: MockPlan}
}

// Respond sets the next answers: text, or err when not nil.
func (m *MockCompleter) Respond(text string, err error) {
	m.mu.Lock()
	m.text, m.err = text, err
	m.mu.Unlock()
}

func (m *MockCompleter) Requests() []core.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.CompletionRequest(nil), m.requests...)
}

func (m *MockCompleter) Complete(_ context.Context, req core.CompletionRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}
