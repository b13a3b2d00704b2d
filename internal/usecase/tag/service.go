package tag

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kbase-cloud/kbsearch/internal/domain"
)

// Service manages tag lifecycle: explicit creation, implicit creation during
// article saves, and the consistency sweep that removes unreferenced tags.
type Service struct {
	tags     TagStore
	articles ArticleLister
	logger   *zap.Logger
}

// New creates a tag service.
func New(tags TagStore, articles ArticleLister, logger *zap.Logger) *Service {
	return &Service{tags: tags, articles: articles, logger: logger}
}

// Create stores a new tag. Name is required.
func (s *Service) Create(ctx context.Context, name string) (domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Tag{}, fmt.Errorf("%w: tag name is required", domain.ErrInvalidArgument)
	}
	t := domain.Tag{
		ID:    uuid.NewString(),
		Name:  name,
		Slug:  domain.Slugify(name),
		Color: domain.DefaultTagColor(name),
	}
	if err := s.tags.Put(ctx, &t); err != nil {
		return domain.Tag{}, err
	}
	return t, nil
}

// List returns all tags.
func (s *Service) List(ctx context.Context) ([]domain.Tag, error) {
	return s.tags.List(ctx)
}

// EnsureByName resolves tag names to IDs, creating any tag that does not
// exist yet. Matching is by slug so "How To" and "how-to" are the same tag.
// Blank names are skipped.
func (s *Service) EnsureByName(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}

	existing, err := s.tags.List(ctx)
	if err != nil {
		return nil, err
	}
	bySlug := make(map[string]string, len(existing))
	for _, t := range existing {
		bySlug[t.Slug] = t.ID
	}

	ids := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		slug := domain.Slugify(name)
		if id, ok := bySlug[slug]; ok {
			ids = append(ids, id)
			continue
		}
		t, err := s.Create(ctx, name)
		if err != nil {
			return nil, err
		}
		bySlug[slug] = t.ID
		ids = append(ids, t.ID)
	}
	return ids, nil
}

// Sweep deletes every tag no article references. With zero used tags, every
// tag is eligible. A tag that disappears mid-sweep is tolerated: Delete of
// an absent tag is a no-op and tags are non-critical metadata.
func (s *Service) Sweep(ctx context.Context) error {
	articles, err := s.articles.List(ctx)
	if err != nil {
		return fmt.Errorf("list articles for sweep: %w", err)
	}
	used := make(map[string]struct{})
	for i := range articles {
		for _, id := range articles[i].TagIDs {
			used[id] = struct{}{}
		}
	}

	tags, err := s.tags.List(ctx)
	if err != nil {
		return fmt.Errorf("list tags for sweep: %w", err)
	}

	var removed int
	for _, t := range tags {
		if _, ok := used[t.ID]; ok {
			continue
		}
		if err := s.tags.Delete(ctx, t.ID); err != nil {
			return fmt.Errorf("sweep tag %s: %w", t.ID, err)
		}
		removed++
	}
	if removed > 0 {
		s.logger.Debug("swept unused tags", zap.Int("removed", removed))
	}
	return nil
}
