// Package aisvc holds the embedding and chat-completion providers.
package aisvc

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/pkg/errors"

	"github.com/oinstituto/atlas/core"
)

const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

var (
	defaultChatModels = map[string]string{
		ProviderOpenAI:    "gpt-4o",
		ProviderGemini:    "gemini-2.5-flash",
		ProviderAnthropic: string(anthropic.ModelClaudeSonnet4_5),
	}
	defaultEmbeddingModels = map[string]string{
		ProviderOpenAI: "text-embedding-3-small",
		ProviderGemini: "gemini-embedding-001",
	}
)

// ChatModel is the configured chat model, or the default model of the chat provider.
func ChatModel(conf core.AIConfig) string {
	if conf.ChatModel != "" {
		return conf.ChatModel
	}
	return defaultChatModels[conf.ChatProvider]
}

// EmbeddingModel is the configured embedding model, or the default model of the
// embedding provider.
func EmbeddingModel(conf core.AIConfig) string {
	if conf.EmbeddingModel != "" {
		return conf.EmbeddingModel
	}
	return defaultEmbeddingModels[conf.EmbedProvider]
}

// Providers returns the configured embedder and completer.
func Providers(ctx context.Context, conf core.AIConfig) (core.Embedder, core.Completer, error) {
	embedModel := EmbeddingModel(conf)
	var (
		gemini *Gemini
		err    error
	)
	geminiClient := func() (*Gemini, error) {
		if gemini == nil {
			gemini, err = NewGemini(ctx, conf.GeminiKey, embedModel, conf.EmbeddingDimensions)
		}
		return gemini, err
	}
	openai := func() *OpenAI {
		return NewOpenAI(conf.OpenAIEndpoint, conf.OpenAIKey, embedModel, conf.EmbeddingDimensions, conf.Timeout)
	}

	var embedder core.Embedder
	switch conf.EmbedProvider {
	case ProviderOpenAI:
		embedder = openai()
	case ProviderGemini:
		if embedder, err = geminiClient(); err != nil {
			return nil, nil, err
		}
	case ProviderMock:
		embedder = NewMockEmbedder(conf.EmbeddingDimensions)
	default:
		return nil, nil, errors.Errorf("unknown embedding provider %q", conf.EmbedProvider)
	}

	var completer core.Completer
	switch conf.ChatProvider {
	case ProviderOpenAI:
		completer = openai()
	case ProviderGemini:
		if completer, err = geminiClient(); err != nil {
			return nil, nil, err
		}
	case ProviderAnthropic:
		completer = NewAnthropic(conf.AnthropicKey)
	case ProviderMock:
		completer = NewMockCompleter()
	default:
		return nil, nil, errors.Errorf("unknown chat provider %q", conf.ChatProvider)
	}
	return embedder, completer, nil
}
