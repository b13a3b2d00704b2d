package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kbase-cloud/kbsearch/internal/domain"
)

type stubLister struct {
	articles []domain.Article
	err      error
}

func (s *stubLister) List(context.Context) ([]domain.Article, error) {
	return s.articles, s.err
}

type stubEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	s.calls++
	if s.err != nil {
		return domain.EmbeddingResult{}, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return domain.EmbeddingResult{Embedding: v}, nil
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0, 0}}, nil
}

func published(id string, embedding []float32) domain.Article {
	return domain.Article{
		ID:               id,
		Title:            "title " + id,
		Content:          "content " + id,
		Status:           domain.StatusPublished,
		ContentEmbedding: embedding,
	}
}

func newService(lister ArticleLister, embedder Embedder) *Service {
	return New(lister, embedder, Options{}, zap.NewNop())
}

func TestSearch_RanksDescendingWithThreshold(t *testing.T) {
	lister := &stubLister{articles: []domain.Article{
		published("a", []float32{1, 0, 0}),          // sim 1.0
		published("b", []float32{0.7, 0.7, 0}),      // sim ~0.71
		published("c", []float32{0, 1, 0}),          // sim 0, below threshold
	}}
	svc := newService(lister, &stubEmbedder{})

	results, err := svc.Search(context.Background(), "password reset", 10, 0.5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ArticleID != "a" || results[1].ArticleID != "b" {
		t.Errorf("unexpected order: %q, %q", results[0].ArticleID, results[1].ArticleID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Similarity > results[i-1].Similarity {
			t.Error("results not sorted by non-increasing similarity")
		}
	}
}

func TestSearch_EmptyQueryIsInvalid(t *testing.T) {
	embedder := &stubEmbedder{}
	svc := newService(&stubLister{}, embedder)

	for _, q := range []string{"", "   ", "\n\t"} {
		if _, err := svc.Search(context.Background(), q, 10, 0); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("query %q: expected ErrInvalidArgument, got %v", q, err)
		}
	}
	if embedder.calls != 0 {
		t.Error("expected no provider call for empty queries")
	}
}

func TestSearch_ImpossibleThresholdReturnsEmpty(t *testing.T) {
	lister := &stubLister{articles: []domain.Article{published("a", []float32{1, 0, 0})}}
	svc := newService(lister, &stubEmbedder{})

	results, err := svc.Search(context.Background(), "zzqxnonexistent000", 10, 1.1)
	if err != nil {
		t.Fatalf("expected empty result, not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestSearch_SkipsUnsearchableArticles(t *testing.T) {
	draft := published("draft", []float32{1, 0, 0})
	draft.Status = domain.StatusDraft
	archived := published("archived", []float32{1, 0, 0})
	archived.Status = domain.StatusArchived
	pending := published("pending", nil) // embedding never generated

	lister := &stubLister{articles: []domain.Article{
		draft, archived, pending,
		published("live", []float32{1, 0, 0}),
	}}
	svc := newService(lister, &stubEmbedder{})

	results, err := svc.Search(context.Background(), "anything", 10, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ArticleID != "live" {
		t.Fatalf("expected only the published indexed article, got %+v", results)
	}
}

func TestSearch_TruncatesToLimit(t *testing.T) {
	lister := &stubLister{articles: []domain.Article{
		published("a", []float32{1, 0, 0}),
		published("b", []float32{1, 0, 0}),
		published("c", []float32{1, 0, 0}),
	}}
	svc := newService(lister, &stubEmbedder{})

	results, err := svc.Search(context.Background(), "anything", 2, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(results))
	}
	// Identical similarity: IDs break the tie deterministically.
	if results[0].ArticleID != "a" || results[1].ArticleID != "b" {
		t.Errorf("unexpected tie-break order: %q, %q", results[0].ArticleID, results[1].ArticleID)
	}
}

func TestSearch_ProviderErrorPropagates(t *testing.T) {
	embedder := &stubEmbedder{err: domain.ErrEmbeddingProviderError}
	svc := newService(&stubLister{}, embedder)

	if _, err := svc.Search(context.Background(), "query", 10, 0); !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Errorf("expected provider error, got %v", err)
	}
}

func TestSearch_ZeroLimitUsesDefault(t *testing.T) {
	articles := make([]domain.Article, 0, 15)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		articles = append(articles, published(id, []float32{1, 0, 0}))
	}
	svc := newService(&stubLister{articles: articles}, &stubEmbedder{})

	results, err := svc.Search(context.Background(), "anything", 0, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 10 {
		t.Errorf("expected default limit of 10, got %d", len(results))
	}
}
