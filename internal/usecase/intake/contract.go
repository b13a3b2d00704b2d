package intake

import (
	"context"

	"github.com/kbase-cloud/kbsearch/internal/domain"
)

// Searcher retrieves candidate articles for a ticket. The intake flow calls
// the search engine in process, not over HTTP.
type Searcher interface {
	Search(ctx context.Context, query string, limit int, threshold float64) ([]domain.SearchResult, error)
}

// Composer turns a ticket and its candidate articles into a reply draft.
type Composer interface {
	Compose(ctx context.Context, ticketText string, candidates []domain.SearchResult) (string, error)
}
