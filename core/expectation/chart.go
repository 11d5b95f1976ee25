package expectation

import (
	"sort"
	"unicode"
	"unicode/utf8"
)

const (
	topSlices  = 5
	otherColor = "#6B7280" // gray-500
)

var sliceColors = []string{
	"#F43F5E", // rose-500
	"#3B82F6", // blue-500
	"#10B981", // emerald-500
	"#A855F7", // purple-500
	"#F59E0B", // amber-500
}

type (
	Slice struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
		Color string `json:"color"`
	}

	CategoryCount struct {
		Category Category `json:"category"`
		Count    int      `json:"count"`
	}
)

// DisplayWord is the chart label of a word: folded, "IA" kept as an acronym,
// otherwise with its first letter upper-cased. Only a missing word counts as
// "Outros"; a blank one keeps an empty label.
func DisplayWord(word string) string {
	if word == "" {
		word = string(Outros)
	}
	w := Fold(word)
	if w == "ia" {
		return "IA"
	}
	if w == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(w)
	return string(unicode.ToUpper(r)) + w[size:]
}

// Chart counts words and returns the 5 most frequent ones, plus an "Outros"
// slice summing the rest when there is a rest. Ties keep first-seen order.
func Chart(words []string) []Slice {
	if len(words) == 0 {
		return []Slice{}
	}

	type wordCount struct {
		word  string
		count int
	}
	index := make(map[string]int)
	sorted := make([]wordCount, 0)
	for _, w := range words {
		label := DisplayWord(w)
		i, ok := index[label]
		if !ok {
			i = len(sorted)
			index[label] = i
			sorted = append(sorted, wordCount{word: label})
		}
		sorted[i].count++
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].count > sorted[j].count
	})

	slices := make([]Slice, 0, topSlices+1)
	var rest int
	for i, wc := range sorted {
		if i < topSlices {
			slices = append(slices, Slice{Name: wc.word, Value: wc.count, Color: sliceColors[i%len(sliceColors)]})
		} else {
			rest += wc.count
		}
	}
	if rest > 0 {
		slices = append(slices, Slice{Name: string(Outros), Value: rest, Color: otherColor})
	}
	return slices
}

// CountCategories normalizes every word and counts the results, in Categories order.
func CountCategories(words []string) []CategoryCount {
	counts := make(map[Category]int, len(Categories))
	for _, w := range words {
		counts[Normalize(w)]++
	}
	res := make([]CategoryCount, 0, len(Categories))
	for _, c := range Categories {
		res = append(res, CategoryCount{Category: c, Count: counts[c]})
	}
	return res
}
