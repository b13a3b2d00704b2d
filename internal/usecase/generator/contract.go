package generator

import (
	"context"

	"github.com/kbase-cloud/kbsearch/internal/domain"
)

// ArticleStore is the vector-store contract the generator writes through.
// It is the only writer of embedding fields and their in-progress flags.
type ArticleStore interface {
	Get(ctx context.Context, id string) (domain.Article, error)
	MarkEmbeddingInProgress(ctx context.Context, id string) error
	StoreEmbeddings(ctx context.Context, id string, metadata, content []float32) error
	ClearEmbeddingInProgress(ctx context.Context, id string) error
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
