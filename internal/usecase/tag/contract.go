package tag

import (
	"context"

	"github.com/kbase-cloud/kbsearch/internal/domain"
)

// TagStore persists tags. The sweeper is the only caller of Delete.
type TagStore interface {
	Put(ctx context.Context, t *domain.Tag) error
	List(ctx context.Context) ([]domain.Tag, error)
	Delete(ctx context.Context, id string) error
}

// ArticleLister provides the article set whose tag references define which
// tags are still in use.
type ArticleLister interface {
	List(ctx context.Context) ([]domain.Article, error)
}
