package kbsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kbase-cloud/kbsearch/internal/db"
	dbRedis "github.com/kbase-cloud/kbsearch/internal/db/redis"
	"github.com/kbase-cloud/kbsearch/internal/domain"
	articlerepo "github.com/kbase-cloud/kbsearch/internal/repository/article"
	tagrepo "github.com/kbase-cloud/kbsearch/internal/repository/tag"
	articleuc "github.com/kbase-cloud/kbsearch/internal/usecase/article"
	"github.com/kbase-cloud/kbsearch/internal/usecase/generator"
	searchuc "github.com/kbase-cloud/kbsearch/internal/usecase/search"
	taguc "github.com/kbase-cloud/kbsearch/internal/usecase/tag"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the kbsearch SDK entry point: the knowledge-base services wired
// over a direct database connection, for embedding into a host application
// instead of running the HTTP server.
type Client struct {
	store      db.Store
	articleSvc *articleuc.Service
	tagSvc     *taguc.Service
	searchSvc  *searchuc.Service
	pool       *generator.Pool
}

// New creates a kbsearch Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("kbsearch: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("kbsearch: create redis store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("kbsearch: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Embedder: noop unless configured — writes still work, but articles
	// stay out of the search index until an embedder is provided.
	var domEmb domain.Embedder = &noopEmbedder{}
	if cfg.embedder != nil {
		domEmb = &embedderAdapter{inner: cfg.embedder}
	}

	articleRepo := articlerepo.New(store)
	tagRepo := tagrepo.New(store)

	pool := generator.NewPool(articleRepo, domEmb, generator.Config{
		Workers:   cfg.workers,
		QueueSize: cfg.queueSize,
	}, logger)

	tagSvc := taguc.New(tagRepo, articleRepo, logger)
	articleSvc := articleuc.New(articleRepo, pool, tagSvc, articleuc.Pagination{}, logger)
	searchSvc := searchuc.New(articleRepo, domEmb, searchuc.Options{}, logger)

	return &Client{
		store:      store,
		articleSvc: articleSvc,
		tagSvc:     tagSvc,
		searchSvc:  searchSvc,
		pool:       pool,
	}
}

// Close drains in-flight embedding jobs and releases all resources.
func (c *Client) Close(ctx context.Context) error {
	var err error
	if c.pool != nil {
		err = c.pool.Close(ctx)
	}
	if c.store != nil {
		c.store.Close()
	}
	return err
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Articles returns the article management service.
func (c *Client) Articles() *ArticleService {
	return &ArticleService{svc: c.articleSvc}
}

// Tags returns the tag management service.
func (c *Client) Tags() *TagService {
	return &TagService{svc: c.tagSvc}
}

// Search executes a semantic search over published articles.
func (c *Client) Search(ctx context.Context, query string, opts *SearchOptions) ([]SearchResult, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}
	results, err := c.searchSvc.Search(ctx, query, opts.Limit, opts.Threshold)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return fromSearchResults(results), nil
}

// embedderAdapter wraps the public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder returns an error on Embed call (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"kbsearch: embedder not configured (use WithEmbedder)",
	)
}
