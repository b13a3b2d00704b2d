package intake

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kbase-cloud/kbsearch/internal/domain"
)

type stubSearcher struct {
	results   []domain.SearchResult
	err       error
	limit     int
	threshold float64
}

func (s *stubSearcher) Search(_ context.Context, _ string, limit int, threshold float64) ([]domain.SearchResult, error) {
	s.limit = limit
	s.threshold = threshold
	return s.results, s.err
}

type stubComposer struct {
	reply string
	err   error
	calls int
}

func (s *stubComposer) Compose(context.Context, string, []domain.SearchResult) (string, error) {
	s.calls++
	return s.reply, s.err
}

func TestDraftReply_ComposesFromCandidates(t *testing.T) {
	searcher := &stubSearcher{results: []domain.SearchResult{
		{ArticleID: "a1", Title: "Reset Password", Similarity: 0.9},
	}}
	composer := &stubComposer{reply: "Hi! See our reset-password article."}
	svc := New(searcher, composer, Options{MaxCandidates: 3, MinSimilarity: 0.5}, zap.NewNop())

	draft, err := svc.DraftReply(context.Background(), "I forgot my password")
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if draft.Reply == "" || len(draft.Candidates) != 1 {
		t.Errorf("unexpected draft: %+v", draft)
	}
	if searcher.limit != 3 || searcher.threshold != 0.5 {
		t.Errorf("search called with limit=%d threshold=%v", searcher.limit, searcher.threshold)
	}
}

func TestDraftReply_NoCandidatesSkipsComposer(t *testing.T) {
	composer := &stubComposer{}
	svc := New(&stubSearcher{}, composer, Options{}, zap.NewNop())

	draft, err := svc.DraftReply(context.Background(), "something very obscure")
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if draft.Reply != "" || len(draft.Candidates) != 0 {
		t.Errorf("expected empty draft, got %+v", draft)
	}
	if composer.calls != 0 {
		t.Error("composer must not run without candidates")
	}
}

func TestDraftReply_EmptyTicketIsInvalid(t *testing.T) {
	svc := New(&stubSearcher{}, &stubComposer{}, Options{}, zap.NewNop())
	if _, err := svc.DraftReply(context.Background(), "  "); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestDraftReply_SearchErrorPropagates(t *testing.T) {
	searcher := &stubSearcher{err: domain.ErrEmbeddingProviderError}
	svc := New(searcher, &stubComposer{}, Options{}, zap.NewNop())

	if _, err := svc.DraftReply(context.Background(), "help"); !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Errorf("expected provider error, got %v", err)
	}
}
