package search

import (
	"context"

	"github.com/kbase-cloud/kbsearch/internal/domain"
)

// ArticleLister provides the candidate set for ranking.
type ArticleLister interface {
	List(ctx context.Context) ([]domain.Article, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
