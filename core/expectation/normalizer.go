// Package expectation turns the free-text "what do you expect" words sent by attendees
// into categories, chart slices and the community cloud.
package expectation

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Category string

const (
	Motivacao    Category = "Motivação"
	Conhecimento Category = "Conhecimento"
	Inovacao     Category = "Inovação"
	Engajamento  Category = "Engajamento"
	Outros       Category = "Outros"
)

// categoryKeys is walked in order: the first key matching a word decides its category.
var categoryKeys = []struct {
	key      string
	category Category
}{
	{"motivacao", Motivacao},
	{"motivação", Motivacao},
	{"inspiracao", Motivacao},
	{"inspiração", Motivacao},
	{"animacao", Motivacao},
	{"empolgação", Motivacao},
	{"entusiasmo", Motivacao},

	{"conhecimento", Conhecimento},
	{"aprendizado", Conhecimento},
	{"aprender", Conhecimento},
	{"saber", Conhecimento},
	{"estudo", Conhecimento},
	{"tecnica", Conhecimento},
	{"conteudo", Conhecimento},
	{"conteúdo", Conhecimento},

	{"inovacao", Inovacao},
	{"inovação", Inovacao},
	{"tecnologia", Inovacao},
	{"futuro", Inovacao},
	{"criatividade", Inovacao},
	{"novo", Inovacao},
	{"novidade", Inovacao},
	{"ia", Inovacao},

	{"engajamento", Engajamento},
	{"participacão", Engajamento},
	{"interacão", Engajamento},
	{"interação", Engajamento},
	{"colaboração", Engajamento},
	{"networking", Engajamento},
	{"troca", Engajamento},
}

// Categories lists every category, Outros last.
var Categories = []Category{Motivacao, Conhecimento, Inovacao, Engajamento, Outros}

// Fold lowercases, trims and strips accents from s.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return folded
}

// Normalize maps a free-text word to its category.
// A key matches when either the folded word contains it or it contains the folded word.
func Normalize(word string) Category {
	if word == "" {
		return Outros
	}
	folded := Fold(word)
	for _, ck := range categoryKeys {
		key := Fold(ck.key)
		if strings.Contains(folded, key) || strings.Contains(key, folded) {
			return ck.category
		}
	}
	return Outros
}
