package generator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kbase-cloud/kbsearch/internal/domain"
)

// --- Mocks ---

type fakeStore struct {
	mu       sync.Mutex
	articles map[string]domain.Article
	markErr  error
	storeErr error

	marks   int
	stores  int
	clears  int
}

func newFakeStore(articles ...domain.Article) *fakeStore {
	s := &fakeStore{articles: make(map[string]domain.Article)}
	for _, a := range articles {
		s.articles[a.ID] = a
	}
	return s
}

func (s *fakeStore) Get(_ context.Context, id string) (domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return domain.Article{}, domain.ErrArticleNotFound
	}
	return a, nil
}

func (s *fakeStore) MarkEmbeddingInProgress(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return s.markErr
	}
	s.marks++
	a := s.articles[id]
	a.MetadataEmbeddingInProgress = true
	a.ContentEmbeddingInProgress = true
	s.articles[id] = a
	return nil
}

func (s *fakeStore) StoreEmbeddings(_ context.Context, id string, metadata, content []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeErr != nil {
		return s.storeErr
	}
	s.stores++
	a := s.articles[id]
	a.MetadataEmbedding = metadata
	a.ContentEmbedding = content
	a.MetadataEmbeddingInProgress = false
	a.ContentEmbeddingInProgress = false
	s.articles[id] = a
	return nil
}

func (s *fakeStore) ClearEmbeddingInProgress(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	a := s.articles[id]
	a.MetadataEmbeddingInProgress = false
	a.ContentEmbeddingInProgress = false
	s.articles[id] = a
	return nil
}

func (s *fakeStore) article(id string) domain.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.articles[id]
}

func (s *fakeStore) counts() (marks, stores, clears int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marks, s.stores, s.clears
}

type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
	err   error
	block bool // wait for context cancellation before returning
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return domain.EmbeddingResult{}, ctx.Err()
	}
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: []float32{float32(len(text)), 1}}, nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached within deadline")
}

func testArticle() domain.Article {
	return domain.Article{
		ID:      "a1",
		Title:   "Reset Password",
		Content: "Click forgot password on the login page.",
		Status:  domain.StatusPublished,
	}
}

func testConfig() Config {
	return Config{Workers: 2, QueueSize: 8, JobTimeout: time.Second, DrainTimeout: time.Second}
}

// --- Tests ---

func TestPool_GeneratesAndStores(t *testing.T) {
	store := newFakeStore(testArticle())
	embed := &fakeEmbedder{}
	pool := NewPool(store, embed, testConfig(), zap.NewNop())
	defer pool.Close(context.Background())

	pool.Enqueue("a1")

	waitFor(t, func() bool {
		_, stores, _ := store.counts()
		return stores == 1
	})

	a := store.article("a1")
	if len(a.MetadataEmbedding) == 0 || len(a.ContentEmbedding) == 0 {
		t.Error("expected both vectors stored")
	}
	if a.MetadataEmbeddingInProgress || a.ContentEmbeddingInProgress {
		t.Error("expected both flags cleared after success")
	}
	if embed.callCount() != 2 {
		t.Errorf("expected 2 provider calls (metadata + content), got %d", embed.callCount())
	}
}

func TestPool_ProviderFailure_ResetsFlagsKeepsVectors(t *testing.T) {
	a := testArticle()
	a.MetadataEmbedding = []float32{9, 9}
	a.ContentEmbedding = []float32{8, 8}
	store := newFakeStore(a)
	embed := &fakeEmbedder{err: errors.New("provider down")}
	pool := NewPool(store, embed, testConfig(), zap.NewNop())
	defer pool.Close(context.Background())

	pool.Enqueue("a1")

	waitFor(t, func() bool {
		_, _, clears := store.counts()
		return clears == 1
	})

	got := store.article("a1")
	if got.MetadataEmbeddingInProgress || got.ContentEmbeddingInProgress {
		t.Error("expected flags reset after failure")
	}
	if got.MetadataEmbedding[0] != 9 || got.ContentEmbedding[0] != 8 {
		t.Error("expected previous embeddings untouched after failure")
	}
	if _, stores, _ := store.counts(); stores != 0 {
		t.Error("expected no partial vectors persisted")
	}
}

func TestPool_ArticleMissing_NoProviderCall(t *testing.T) {
	store := newFakeStore()
	embed := &fakeEmbedder{}
	pool := NewPool(store, embed, testConfig(), zap.NewNop())

	pool.Enqueue("missing")
	if err := pool.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	if embed.callCount() != 0 {
		t.Errorf("expected no provider calls for missing article, got %d", embed.callCount())
	}
}

func TestPool_MarkFails_NoProviderCall(t *testing.T) {
	store := newFakeStore(testArticle())
	store.markErr = errors.New("write failed")
	embed := &fakeEmbedder{}
	pool := NewPool(store, embed, testConfig(), zap.NewNop())

	pool.Enqueue("a1")
	if err := pool.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	if embed.callCount() != 0 {
		t.Error("expected no provider calls when the flag write fails")
	}
}

func TestPool_Close_DrainsQueuedJobs(t *testing.T) {
	store := newFakeStore(testArticle())
	embed := &fakeEmbedder{}
	pool := NewPool(store, embed, Config{Workers: 1, QueueSize: 8, JobTimeout: time.Second}, zap.NewNop())

	for i := 0; i < 3; i++ {
		pool.Enqueue("a1")
	}
	if err := pool.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, stores, _ := store.counts(); stores != 3 {
		t.Errorf("expected 3 completed jobs after drain, got %d", stores)
	}
}

func TestPool_CloseTimeout_ResetsInflightFlags(t *testing.T) {
	store := newFakeStore(testArticle())
	embed := &fakeEmbedder{block: true}
	pool := NewPool(store, embed, Config{Workers: 1, QueueSize: 8, JobTimeout: 10 * time.Second}, zap.NewNop())

	pool.Enqueue("a1")
	waitFor(t, func() bool { return embed.callCount() > 0 })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := pool.Close(ctx); err == nil {
		t.Fatal("expected drain deadline error")
	}

	waitFor(t, func() bool {
		a := store.article("a1")
		return !a.MetadataEmbeddingInProgress && !a.ContentEmbeddingInProgress
	})
}

func TestPool_EnqueueAfterClose_Dropped(t *testing.T) {
	store := newFakeStore(testArticle())
	embed := &fakeEmbedder{}
	pool := NewPool(store, embed, testConfig(), zap.NewNop())
	if err := pool.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	pool.Enqueue("a1") // must not panic on the closed queue

	if embed.callCount() != 0 {
		t.Error("expected no work after close")
	}
}
