package aisvc

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/oinstituto/atlas/core"
)

// Gemini serves completions and embeddings through the Gemini API.
type Gemini struct {
	client     *genai.Client
	embedModel string
	dimensions int
}

var (
	_ core.Completer = (*Gemini)(nil)
	_ core.Embedder  = (*Gemini)(nil)
)

func NewGemini(ctx context.Context, apiKey, embedModel string, dimensions int) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating gemini client")
	}
	return &Gemini{client: client, embedModel: embedModel, dimensions: dimensions}, nil
}

// Complete returns the text of the first candidate that has any.
func (g *Gemini) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(req.Temperature)),
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	contents := []*genai.Content{genai.NewContentFromText(req.User, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return "", errors.Wrap(err, "generating content")
	}

	var sb strings.Builder
	if resp != nil {
		for _, cand := range resp.Candidates {
			if cand == nil || cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part != nil {
					sb.WriteString(part.Text)
				}
			}
			if sb.Len() > 0 {
				break
			}
		}
	}
	return sb.String(), nil
}

func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	config := &genai.EmbedContentConfig{}
	if g.dimensions > 0 {
		dim := int32(g.dimensions)
		config.OutputDimensionality = &dim
	}

	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	res, err := g.client.Models.EmbedContent(ctx, g.embedModel, contents, config)
	if err != nil {
		return nil, errors.Wrap(err, "embedding content")
	}
	if res == nil || len(res.Embeddings) == 0 || len(res.Embeddings[0].Values) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return res.Embeddings[0].Values, nil
}
