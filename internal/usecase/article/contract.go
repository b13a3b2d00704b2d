package article

import (
	"context"

	"github.com/kbase-cloud/kbsearch/internal/domain"
)

// ArticleStore persists article records.
type ArticleStore interface {
	Put(ctx context.Context, a *domain.Article) error
	Get(ctx context.Context, id string) (domain.Article, error)
	List(ctx context.Context) ([]domain.Article, error)
	Delete(ctx context.Context, id string) error
}

// Generator schedules background embedding generation.
type Generator interface {
	Enqueue(articleID string)
}

// Tagger resolves tag names to IDs and sweeps unreferenced tags.
type Tagger interface {
	EnsureByName(ctx context.Context, names []string) ([]string, error)
	Sweep(ctx context.Context) error
}
