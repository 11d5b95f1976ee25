package expectation

import (
	"time"

	"github.com/oinstituto/atlas/core/entry"
)

// CloudSize is how many entries the community cloud shows.
const CloudSize = 15

type Bubble struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Word      string    `json:"word"`
	Category  Category  `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// Cloud returns the latest entries, newest first. entries must be in arrival order.
func Cloud(entries []entry.Entry) []Bubble {
	n := len(entries)
	if n > CloudSize {
		n = CloudSize
	}
	bubbles := make([]Bubble, 0, n)
	for i := len(entries) - 1; i >= 0 && len(bubbles) < n; i-- {
		e := entries[i]
		bubbles = append(bubbles, Bubble{
			ID:        e.ID,
			Name:      e.Name,
			Word:      e.Expectation,
			Category:  Normalize(e.Expectation),
			CreatedAt: e.CreatedAt,
		})
	}
	return bubbles
}

// Words extracts the expectation words of entries.
func Words(entries []entry.Entry) []string {
	words := make([]string, 0, len(entries))
	for _, e := range entries {
		words = append(words, e.Expectation)
	}
	return words
}
