package document

import (
	"math"
	"sort"
)

// CosineSimilarity returns 0 when the vectors differ in length or one of them is null.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Rank scores docs against embedding like match_documents does: similarity
// strictly above threshold, best first, at most count results.
// Engines without vector support use it.
func Rank(docs []Document, embedding []float32, threshold float64, count int) []Match {
	matches := make([]Match, 0, len(docs))
	for _, doc := range docs {
		if sim := CosineSimilarity(doc.Embedding, embedding); sim > threshold {
			matches = append(matches, Match{Document: doc, Similarity: sim})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	if count >= 0 && len(matches) > count {
		matches = matches[:count]
	}
	return matches
}
