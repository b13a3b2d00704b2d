package search

import (
	"math"
	"sort"

	"github.com/kbase-cloud/kbsearch/internal/domain"
)

// cosine returns the cosine similarity between two vectors, or 0 when
// either vector is empty, zero-length, or the dimensions disagree.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// rank scores every searchable article against the query vector, keeps those
// at or above the threshold, and orders them by descending similarity with
// article ID as the deterministic tie-break.
func rank(query []float32, articles []domain.Article, threshold float64) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, len(articles))
	for i := range articles {
		a := &articles[i]
		if !a.Searchable() {
			continue
		}
		sim := cosine(query, a.ContentEmbedding)
		if sim < threshold {
			continue
		}
		results = append(results, domain.SearchResult{
			ArticleID:  a.ID,
			Title:      a.Title,
			Content:    a.Content,
			Similarity: sim,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].ArticleID < results[j].ArticleID
	})
	return results
}
