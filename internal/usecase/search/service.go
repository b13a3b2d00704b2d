package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kbase-cloud/kbsearch/internal/domain"
)

// Options bounds and defaults for search parameters.
type Options struct {
	DefaultLimit     int
	DefaultThreshold float64
	MaxLimit         int
}

// Service ranks published articles against an embedded query.
type Service struct {
	articles ArticleLister
	embedder Embedder
	opts     Options
	logger   *zap.Logger
}

// New creates a search service.
func New(articles ArticleLister, embedder Embedder, opts Options, logger *zap.Logger) *Service {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 10
	}
	if opts.DefaultThreshold == 0 {
		opts.DefaultThreshold = 0.5
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 100
	}
	return &Service{articles: articles, embedder: embedder, opts: opts, logger: logger}
}

// Search embeds the query and returns the articles whose content embedding
// clears the threshold, best match first. A query that matches nothing is an
// empty result, not an error. limit <= 0 selects the configured default.
func (s *Service) Search(ctx context.Context, query string, limit int, threshold float64) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidArgument)
	}
	if limit <= 0 {
		limit = s.opts.DefaultLimit
	}
	if limit > s.opts.MaxLimit {
		limit = s.opts.MaxLimit
	}

	res, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	articles, err := s.articles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	results := rank(res.Embedding, articles, threshold)
	if len(results) > limit {
		results = results[:limit]
	}

	s.logger.Debug("search ranked",
		zap.Int("candidates", len(articles)),
		zap.Int("results", len(results)),
		zap.Float64("threshold", threshold),
	)
	return results, nil
}
