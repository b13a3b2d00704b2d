package kbsearch

import (
	"context"

	"github.com/kbase-cloud/kbsearch/internal/domain"
)

// Embedder maps text to a fixed-length vector. Implemented by the caller;
// any OpenAI-compatible embedding client fits.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult is the outcome of one embedding call.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Status is an article's publication state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Article is the public article shape. Embedding vectors stay internal;
// Indexed reports whether the article is currently findable by search.
type Article struct {
	ID          string
	Slug        string
	Title       string
	Description string
	Content     string
	Status      Status
	TagIDs      []string
	Indexed     bool
	CreatedAt   int64
	UpdatedAt   int64
}

// Tag is the public tag shape.
type Tag struct {
	ID    string
	Name  string
	Slug  string
	Color string
}

// SearchResult is a single ranked hit.
type SearchResult struct {
	ArticleID  string
	Title      string
	Content    string
	Similarity float64
}

// SearchOptions configures a search call. A zero Limit selects the default
// of 10. Threshold is the minimum similarity; pass a negative value to
// disable the floor entirely.
type SearchOptions struct {
	Limit     int
	Threshold float64
}

func fromArticle(a *domain.Article) Article {
	return Article{
		ID:          a.ID,
		Slug:        a.Slug,
		Title:       a.Title,
		Description: a.Description,
		Content:     a.Content,
		Status:      Status(a.Status),
		TagIDs:      a.TagIDs,
		Indexed:     a.Searchable(),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func fromTag(t domain.Tag) Tag {
	return Tag{ID: t.ID, Name: t.Name, Slug: t.Slug, Color: t.Color}
}

func fromSearchResults(results []domain.SearchResult) []SearchResult {
	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{
			ArticleID:  r.ArticleID,
			Title:      r.Title,
			Content:    r.Content,
			Similarity: r.Similarity,
		}
	}
	return out
}

func toDomainStatus(s Status) domain.Status {
	return domain.Status(s)
}
