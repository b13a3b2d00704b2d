package kbsearch

import (
	"context"
	"fmt"

	articleuc "github.com/kbase-cloud/kbsearch/internal/usecase/article"
	taguc "github.com/kbase-cloud/kbsearch/internal/usecase/tag"
)

// ArticleService manages knowledge-base articles. SDK callers are trusted
// editors: listing and reads include drafts and archived articles.
type ArticleService struct {
	svc *articleuc.Service
}

// CreateArticleParams carries the fields of a new article.
type CreateArticleParams struct {
	Slug        string
	Title       string
	Description string
	Content     string
	Status      Status
	Tags        []string
}

// Create stores a new article and schedules embedding generation in the
// background; the returned article will not be Indexed yet.
func (s *ArticleService) Create(ctx context.Context, p CreateArticleParams) (Article, error) {
	a, err := s.svc.Create(ctx, articleuc.CreateInput{
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
		Content:     p.Content,
		Status:      toDomainStatus(p.Status),
		TagNames:    p.Tags,
	})
	if err != nil {
		return Article{}, fmt.Errorf("create article: %w", err)
	}
	return fromArticle(&a), nil
}

// UpdateArticleParams carries a partial update; nil fields stay unchanged.
type UpdateArticleParams struct {
	Slug        *string
	Title       *string
	Description *string
	Content     *string
	Status      *Status
	Tags        *[]string
}

// Update applies a partial update. Embedding generation re-runs only when
// title, description, or content changed.
func (s *ArticleService) Update(ctx context.Context, id string, p UpdateArticleParams) (Article, error) {
	in := articleuc.UpdateInput{
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
		Content:     p.Content,
		TagNames:    p.Tags,
	}
	if p.Status != nil {
		st := toDomainStatus(*p.Status)
		in.Status = &st
	}

	a, err := s.svc.Update(ctx, id, in)
	if err != nil {
		return Article{}, fmt.Errorf("update article: %w", err)
	}
	return fromArticle(&a), nil
}

// ReplaceTags replaces the article's tags wholesale and sweeps tags the
// replacement orphaned.
func (s *ArticleService) ReplaceTags(ctx context.Context, id string, tags []string) (Article, error) {
	a, err := s.svc.ReplaceTags(ctx, id, tags)
	if err != nil {
		return Article{}, fmt.Errorf("replace tags: %w", err)
	}
	return fromArticle(&a), nil
}

// Delete removes the article and sweeps tags only it referenced.
func (s *ArticleService) Delete(ctx context.Context, id string) error {
	if err := s.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// Get returns one article by ID.
func (s *ArticleService) Get(ctx context.Context, id string) (Article, error) {
	a, err := s.svc.Get(ctx, id, true)
	if err != nil {
		return Article{}, fmt.Errorf("get article: %w", err)
	}
	return fromArticle(&a), nil
}

// List returns a page of articles, newest first.
func (s *ArticleService) List(ctx context.Context, page, limit int) ([]Article, error) {
	articles, err := s.svc.List(ctx, page, limit, true)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	out := make([]Article, len(articles))
	for i := range articles {
		out[i] = fromArticle(&articles[i])
	}
	return out, nil
}

// TagService manages tags.
type TagService struct {
	svc *taguc.Service
}

// Create stores a new tag.
func (s *TagService) Create(ctx context.Context, name string) (Tag, error) {
	t, err := s.svc.Create(ctx, name)
	if err != nil {
		return Tag{}, fmt.Errorf("create tag: %w", err)
	}
	return fromTag(t), nil
}

// List returns all tags.
func (s *TagService) List(ctx context.Context) ([]Tag, error) {
	tags, err := s.svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	out := make([]Tag, len(tags))
	for i, t := range tags {
		out[i] = fromTag(t)
	}
	return out, nil
}
