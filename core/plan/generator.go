package plan

import (
	"context"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/oinstituto/atlas/core"
)

const (
	noContext = "Sem contexto específico disponível."

	DefaultModel       = "gpt-4o"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 3000
)

var ErrGenerationFailed = errors.New("Não foi possível gerar o plano de aula.")

var systemPrompt = template.Must(template.New("system").Parse(`Você é um Coordenador Pedagógico Sênior especializado em T&D (Treinamento e Desenvolvimento).

Use este contexto de escolas inovadoras para enriquecer suas recomendações:
{{.}}

# Sua Missão
Gerar um Plano de Aula completo e inovador que o professor possa aplicar imediatamente.

# Estrutura Obrigatória (Padrão Nova Escola)

## 1. ACOLHIDA SCRIPTADA (5-10 min)
Script exato do que o professor deve dizer/fazer ao iniciar a aula.
Inclua uma dinâmica de aquecimento relacionada ao tema.

## 2. QUESTÃO DISPARADORA
Uma pergunta provocativa que engaje os alunos e conecte com suas vivências.
Deve gerar curiosidade e debate inicial.

## 3. MÃO NA MASSA (Mínimo 500 palavras)
Descrição detalhada da atividade principal:
- Passo a passo numerado
- Materiais necessários
- Como organizar os grupos/espaços
- Papel do professor durante a atividade
- Possíveis intervenções e mediações
- Variações para diferentes níveis

## 4. SISTEMATIZAÇÃO (10-15 min)
Como fechar a aula:
- Síntese coletiva do aprendizado
- Registro individual ou em grupo
- Conexão com próximas aulas

## 5. RESUMO DE IMPACTO
Um parágrafo final motivacional explicando como esta aula pode transformar a experiência de aprendizagem.

# Regras de Geração
1. Cite as escolas inovadoras que inspiraram as práticas (quando aplicável)
2. Considere o desafio comportamental informado e ofereça estratégias específicas
3. Adapte ao espaço físico disponível
4. Use linguagem acessível e motivadora
5. Seja ESPECÍFICO - o professor deve poder aplicar amanhã`))

var userPrompt = template.Must(template.New("user").Parse(`Gere um Plano de Aula completo (em Markdown) para:

**Contexto**
- Disciplina: {{.Discipline}}
- Série/Ano: {{.Grade}}
- Tema/Conteúdo: {{.Content}}

**Metodologia**
- Estilo (Vibe): {{.Vibe}}
- Espaço físico: {{.Space}}
- Agrupamento: {{.Grouping}}

**Desafio da Turma**
{{.Challenge}}

---

Por favor, siga rigorosamente a estrutura: Acolhida Scriptada, Questão Disparadora, Mão na Massa (mínimo 500 palavras) e Sistematização. Finalize com o Resumo de Impacto.`))

// SystemPrompt embeds the retrieved knowledge, or a fallback when there is none.
func SystemPrompt(knowledge string) string {
	if strings.TrimSpace(knowledge) == "" {
		knowledge = noContext
	}
	var sb strings.Builder
	_ = systemPrompt.Execute(&sb, knowledge)
	return sb.String()
}

func UserPrompt(form FormSubmission) string {
	var sb strings.Builder
	_ = userPrompt.Execute(&sb, form)
	return sb.String()
}

type GeneratorOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Generator writes lesson plans with a chat completion.
type Generator struct {
	completer core.Completer
	logger    core.Logger
	opts      GeneratorOptions
}

func NewGenerator(completer core.Completer, logger core.Logger, opts GeneratorOptions) *Generator {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	return &Generator{completer: completer, logger: logger, opts: opts}
}

// Generate returns the plan Markdown, or ErrGenerationFailed.
func (g *Generator) Generate(ctx context.Context, form FormSubmission, knowledge string) (string, error) {
	text, err := g.completer.Complete(ctx, core.CompletionRequest{
		Model:       g.opts.Model,
		System:      SystemPrompt(knowledge),
		User:        UserPrompt(form),
		Temperature: g.opts.Temperature,
		MaxTokens:   g.opts.MaxTokens,
	})
	if err != nil {
		g.logger.Error("generator: completion", err)
		return "", ErrGenerationFailed
	}
	if text == "" {
		g.logger.Warn("generator: empty completion")
		return "", ErrGenerationFailed
	}
	return text, nil
}
