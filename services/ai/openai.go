package aisvc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/oinstituto/atlas/core"
)

// OpenAI talks to an OpenAI-compatible REST endpoint (chat completions and embeddings).
type OpenAI struct {
	endpoint   string
	key        string
	embedModel string
	dimensions int
	httpc      *http.Client
}

var (
	_ core.Completer = (*OpenAI)(nil)
	_ core.Embedder  = (*OpenAI)(nil)
)

func NewOpenAI(endpoint, key, embedModel string, dimensions int, timeout time.Duration) *OpenAI {
	return &OpenAI{
		endpoint:   strings.TrimRight(endpoint, "/"),
		key:        key,
		embedModel: embedModel,
		dimensions: dimensions,
		httpc:      &http.Client{Timeout: timeout},
	}
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *OpenAI) post(ctx context.Context, path string, body, out interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "encoding request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(b))
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.Wrapf(err, "POST %s", path)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return errors.Errorf("POST %s: %d %s", path, resp.StatusCode, apiErr.Error.Message)
		}
		return errors.Errorf("POST %s: %d %s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decoding %s response", path)
	}
	return nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Complete returns the content of the first choice, "" when there is none.
func (c *OpenAI) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	body := struct {
		Model       string        `json:"model"`
		Messages    []chatMessage `json:"messages"`
		Temperature float64       `json:"temperature"`
		MaxTokens   int           `json:"max_tokens,omitempty"`
	}{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	var out struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := c.post(ctx, "/v1/chat/completions", body, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}

func (c *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	body := map[string]interface{}{
		"model":           c.embedModel,
		"input":           text,
		"encoding_format": "float",
	}
	var out struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := c.post(ctx, "/v1/embeddings", body, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, errors.New("no embedding returned")
	}
	emb := out.Data[0].Embedding
	if c.dimensions > 0 && len(emb) != c.dimensions {
		return nil, errors.Errorf("embedding dimension mismatch: expected %d, got %d", c.dimensions, len(emb))
	}
	return emb, nil
}
