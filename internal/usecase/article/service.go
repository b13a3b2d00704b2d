package article

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kbase-cloud/kbsearch/internal/domain"
)

// Pagination bounds for listing.
type Pagination struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Service owns the article write path: validation, persistence, tag
// resolution, and the decision of when a save triggers embedding generation.
type Service struct {
	articles  ArticleStore
	generator Generator
	tagger    Tagger
	pages     Pagination
	logger    *zap.Logger

	now func() int64 // unix ms, swappable in tests
}

// New creates an article service.
func New(articles ArticleStore, generator Generator, tagger Tagger, pages Pagination, logger *zap.Logger) *Service {
	if pages.DefaultPageSize <= 0 {
		pages.DefaultPageSize = 20
	}
	if pages.MaxPageSize <= 0 {
		pages.MaxPageSize = 100
	}
	return &Service{
		articles:  articles,
		generator: generator,
		tagger:    tagger,
		pages:     pages,
		logger:    logger,
		now:       func() int64 { return time.Now().UnixMilli() },
	}
}

// CreateInput carries the agent-supplied fields of a new article.
type CreateInput struct {
	Slug        string
	Title       string
	Description string
	Content     string
	Status      domain.Status
	TagNames    []string
}

// Create validates and stores a new article, then schedules embedding
// generation. The write succeeds even if generation later fails; the article
// is simply absent from search until a successful retry.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Article, error) {
	if strings.TrimSpace(in.Title) == "" {
		return domain.Article{}, fmt.Errorf("%w: title is required", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(in.Content) == "" {
		return domain.Article{}, fmt.Errorf("%w: content is required", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(in.Slug) == "" {
		return domain.Article{}, fmt.Errorf("%w: slug is required", domain.ErrInvalidArgument)
	}
	if in.Status == "" {
		in.Status = domain.StatusDraft
	}
	if !in.Status.Valid() {
		return domain.Article{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidArgument, in.Status)
	}

	tagIDs, err := s.tagger.EnsureByName(ctx, in.TagNames)
	if err != nil {
		return domain.Article{}, fmt.Errorf("resolve tags: %w", err)
	}

	now := s.now()
	a := domain.Article{
		ID:          uuid.NewString(),
		Slug:        in.Slug,
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		Status:      in.Status,
		TagIDs:      tagIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.articles.Put(ctx, &a); err != nil {
		return domain.Article{}, err
	}

	s.generator.Enqueue(a.ID)
	return a, nil
}

// UpdateInput carries the fields of an update; nil pointers leave a field
// unchanged.
type UpdateInput struct {
	Slug        *string
	Title       *string
	Description *string
	Content     *string
	Status      *domain.Status
	TagNames    *[]string
}

// Update applies a partial update. Embedding generation is re-triggered only
// when title, description, or content actually changed: a status flip or a
// tag edit alone never costs a provider call.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (domain.Article, error) {
	a, err := s.articles.Get(ctx, id)
	if err != nil {
		return domain.Article{}, err
	}

	textChanged := false
	if in.Title != nil && *in.Title != a.Title {
		if strings.TrimSpace(*in.Title) == "" {
			return domain.Article{}, fmt.Errorf("%w: title must not be empty", domain.ErrInvalidArgument)
		}
		a.Title = *in.Title
		textChanged = true
	}
	if in.Description != nil && *in.Description != a.Description {
		a.Description = *in.Description
		textChanged = true
	}
	if in.Content != nil && *in.Content != a.Content {
		if strings.TrimSpace(*in.Content) == "" {
			return domain.Article{}, fmt.Errorf("%w: content must not be empty", domain.ErrInvalidArgument)
		}
		a.Content = *in.Content
		textChanged = true
	}
	if in.Slug != nil {
		if strings.TrimSpace(*in.Slug) == "" {
			return domain.Article{}, fmt.Errorf("%w: slug must not be empty", domain.ErrInvalidArgument)
		}
		a.Slug = *in.Slug
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return domain.Article{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidArgument, *in.Status)
		}
		a.Status = *in.Status
	}

	tagsChanged := false
	if in.TagNames != nil {
		ids, err := s.tagger.EnsureByName(ctx, *in.TagNames)
		if err != nil {
			return domain.Article{}, fmt.Errorf("resolve tags: %w", err)
		}
		a.TagIDs = ids
		tagsChanged = true
	}

	a.UpdatedAt = s.now()
	if err := s.articles.Put(ctx, &a); err != nil {
		return domain.Article{}, err
	}

	if tagsChanged {
		if err := s.tagger.Sweep(ctx); err != nil {
			return domain.Article{}, fmt.Errorf("sweep after tag replace: %w", err)
		}
	}
	if textChanged {
		s.generator.Enqueue(a.ID)
	}
	return a, nil
}

// ReplaceTags replaces the article's tag associations wholesale and sweeps
// tags the replacement orphaned.
func (s *Service) ReplaceTags(ctx context.Context, id string, names []string) (domain.Article, error) {
	return s.Update(ctx, id, UpdateInput{TagNames: &names})
}

// Delete removes the article and sweeps tags only it referenced.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.articles.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.tagger.Sweep(ctx); err != nil {
		return fmt.Errorf("sweep after delete: %w", err)
	}
	return nil
}

// Get returns one article. Anonymous callers only see published articles;
// anything else reads as not found rather than leaking its existence.
func (s *Service) Get(ctx context.Context, id string, editor bool) (domain.Article, error) {
	a, err := s.articles.Get(ctx, id)
	if err != nil {
		return domain.Article{}, err
	}
	if !editor && a.Status != domain.StatusPublished {
		return domain.Article{}, domain.ErrArticleNotFound
	}
	return a, nil
}

// List returns a page of articles, newest first. Anonymous callers are
// restricted to published articles.
func (s *Service) List(ctx context.Context, page, limit int, editor bool) ([]domain.Article, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = s.pages.DefaultPageSize
	}
	if limit > s.pages.MaxPageSize {
		limit = s.pages.MaxPageSize
	}

	all, err := s.articles.List(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]domain.Article, 0, len(all))
	for _, a := range all {
		if !editor && a.Status != domain.StatusPublished {
			continue
		}
		visible = append(visible, a)
	}
	sort.Slice(visible, func(i, j int) bool {
		if visible[i].CreatedAt != visible[j].CreatedAt {
			return visible[i].CreatedAt > visible[j].CreatedAt
		}
		return visible[i].ID < visible[j].ID
	})

	start := (page - 1) * limit
	if start >= len(visible) {
		return []domain.Article{}, nil
	}
	end := start + limit
	if end > len(visible) {
		end = len(visible)
	}
	return visible[start:end], nil
}
