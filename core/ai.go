package core

import "context"

type (
	// Embedder turns text into a fixed-dimension vector.
	Embedder interface {
		Embed(ctx context.Context, text string) ([]float32, error)
	}

	CompletionRequest struct {
		Model       string
		System      string
		User        string
		Temperature float64
		MaxTokens   int
	}

	// Completer returns the text of the first completion for a system/user message pair.
	Completer interface {
		Complete(ctx context.Context, req CompletionRequest) (string, error)
	}
)
